package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/northbeam/accounts-service/internal/domain"
)

func seedAccount(t *testing.T, s *AccountStore) domain.Account {
	t.Helper()
	a, err := s.Create(context.Background(), domain.Account{
		ID:                    "acct-1",
		Email:                 "a@x.com",
		PasswordHash:          "hash",
		Name:                  "Ana",
		VerificationToken:     "123456",
		VerificationExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return a
}

func TestCreate_DuplicateEmail(t *testing.T) {
	t.Parallel()

	s := NewAccountStore()
	seedAccount(t, s)

	_, err := s.Create(context.Background(), domain.Account{
		ID: "acct-2", Email: "a@x.com", PasswordHash: "other",
	})
	if !domain.Is(err, "email_already_exists") {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreate_DuplicateVerificationCode(t *testing.T) {
	t.Parallel()

	s := NewAccountStore()
	seedAccount(t, s)

	_, err := s.Create(context.Background(), domain.Account{
		ID:                    "acct-2",
		Email:                 "b@x.com",
		PasswordHash:          "other",
		VerificationToken:     "123456",
		VerificationExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if !domain.Is(err, "verification_code_taken") {
		t.Fatalf("expected verification_code_taken, got %v", err)
	}
	// The bystander must stay untouched and unverified.
	a, err := s.GetByID(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a.IsVerified {
		t.Fatal("existing account must not be verified by a colliding insert")
	}
}

func TestConsumeVerificationToken_ExactlyOnce(t *testing.T) {
	t.Parallel()

	s := NewAccountStore()
	seedAccount(t, s)
	now := time.Now()

	// Two concurrent requests with the same valid code: exactly one wins.
	const n = 8
	var wg sync.WaitGroup
	wins := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ConsumeVerificationToken(context.Background(), "123456", now); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for range wins {
		won++
	}
	if won != 1 {
		t.Fatalf("expected exactly one successful consumption, got %d", won)
	}

	a, _ := s.GetByID(context.Background(), "acct-1")
	if !a.IsVerified || a.HasPendingVerification() {
		t.Fatalf("expected verified account with cleared pair, got %+v", a)
	}
}

func TestConsumeResetToken_ExpiryIsStrict(t *testing.T) {
	t.Parallel()

	s := NewAccountStore()
	seedAccount(t, s)

	exp := time.Now().Add(time.Hour)
	if err := s.SetResetToken(context.Background(), "acct-1", "opaque", exp); err != nil {
		t.Fatalf("set reset: %v", err)
	}

	// At the expiry instant the token is already dead.
	if _, err := s.ConsumeResetToken(context.Background(), "opaque", "newhash", exp); !domain.Is(err, "token_invalid_or_expired") {
		t.Fatalf("expected expired at boundary, got %v", err)
	}

	a, err := s.ConsumeResetToken(context.Background(), "opaque", "newhash", exp.Add(-time.Minute))
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if a.PasswordHash != "newhash" || a.HasPendingReset() {
		t.Fatalf("expected swapped hash and cleared pair, got %+v", a)
	}
}

func TestTouchLastLogin(t *testing.T) {
	t.Parallel()

	s := NewAccountStore()
	seedAccount(t, s)

	at := time.Now().Add(time.Minute)
	a, err := s.TouchLastLogin(context.Background(), "acct-1", at)
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if !a.LastLogin.Equal(at) {
		t.Fatalf("expected %v, got %v", at, a.LastLogin)
	}

	if _, err := s.TouchLastLogin(context.Background(), "gone", at); !domain.Is(err, "account_not_found") {
		t.Fatalf("expected not found, got %v", err)
	}
}

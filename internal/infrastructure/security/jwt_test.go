package security

import (
	"testing"
	"time"

	"github.com/northbeam/accounts-service/internal/domain"
)

func TestJWTSigner_RoundTrip(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("test-secret", "accounts-service")

	tok, err := s.Sign("acct-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.AccountID != "acct-1" {
		t.Fatalf("expected acct-1, got %q", claims.AccountID)
	}
	if !claims.Exp.After(time.Now()) {
		t.Fatalf("expected future expiry")
	}
}

func TestJWTSigner_Expired(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("test-secret", "accounts-service")

	tok, err := s.Sign("acct-1", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = s.Verify(tok)
	if !domain.Is(err, "session_expired") {
		t.Fatalf("expected session_expired, got %v", err)
	}
}

func TestJWTSigner_WrongSecret(t *testing.T) {
	t.Parallel()

	a := NewJWTSigner("secret-a", "accounts-service")
	b := NewJWTSigner("secret-b", "accounts-service")

	tok, err := a.Sign("acct-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = b.Verify(tok)
	if !domain.Is(err, "session_invalid") {
		t.Fatalf("expected session_invalid, got %v", err)
	}
}

func TestJWTSigner_Garbage(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("test-secret", "accounts-service")
	if _, err := s.Verify("not.a.jwt"); !domain.Is(err, "session_invalid") {
		t.Fatalf("expected session_invalid, got %v", err)
	}
}

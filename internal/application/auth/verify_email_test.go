package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestVerifyEmail_WrongCode(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newSvcForTest(t)
	if _, err := svc.Signup(context.Background(), "a@x.com", "pw123", "A"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, err := svc.VerifyEmail(context.Background(), "000000")
	requireDomainCode(t, err, "token_invalid_or_expired")
}

func TestVerifyEmail_Success_SingleUse(t *testing.T) {
	t.Parallel()

	svc, store, _, _, notifier := newSvcForTest(t)
	res, err := svc.Signup(context.Background(), "a@x.com", "pw123", "A")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	code := res.Account.VerificationToken

	a, err := svc.VerifyEmail(context.Background(), code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !a.IsVerified {
		t.Fatalf("expected verified account")
	}
	if a.HasPendingVerification() {
		t.Fatalf("token pair must be cleared on consumption")
	}

	stored, _ := store.byEmailAccount("a@x.com")
	if !stored.IsVerified || stored.VerificationToken != "" {
		t.Fatalf("persisted state not updated: %+v", stored)
	}

	// Replay fails with the same ambiguous error as a wrong code.
	_, err = svc.VerifyEmail(context.Background(), code)
	requireDomainCode(t, err, "token_invalid_or_expired")

	kinds := notifier.sentKinds()
	if len(kinds) != 2 || kinds[1] != MailWelcome {
		t.Fatalf("expected verification then welcome mail, got %v", kinds)
	}
}

func TestVerifyEmail_ExpiredCode(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newSvcForTest(t)
	res, err := svc.Signup(context.Background(), "a@x.com", "pw123", "A")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	// A day and a minute later the never-consumed code is stale.
	svc.now = func() time.Time { return time.Now().Add(24*time.Hour + time.Minute) }

	_, err = svc.VerifyEmail(context.Background(), res.Account.VerificationToken)
	requireDomainCode(t, err, "token_invalid_or_expired")
}

func TestVerifyEmail_EmptyCode(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newSvcForTest(t)
	_, err := svc.VerifyEmail(context.Background(), "   ")
	requireDomainCode(t, err, "missing_field")
}

func TestVerifyEmail_WelcomeMailFailure_DoesNotFailVerification(t *testing.T) {
	t.Parallel()

	svc, _, _, _, notifier := newSvcForTest(t)
	res, err := svc.Signup(context.Background(), "a@x.com", "pw123", "A")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	notifier.sendErr = errors.New("broker down")
	if _, err := svc.VerifyEmail(context.Background(), res.Account.VerificationToken); err != nil {
		t.Fatalf("verification must not fail on welcome mail errors: %v", err)
	}
}

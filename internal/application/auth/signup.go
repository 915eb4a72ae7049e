package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/northbeam/accounts-service/internal/domain"
)

// Signup creates an unverified account, issues a session for it and
// queues the verification email. The store's unique constraint on email
// is the authority on duplicates; a concurrent signup race surfaces here
// as ErrEmailAlreadyExists.
func (s *Service) Signup(ctx context.Context, email, password, name string) (Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if email == "" {
		return Result{}, domain.ErrMissingField("email")
	}
	if password == "" {
		return Result{}, domain.ErrMissingField("password")
	}
	if name == "" {
		return Result{}, domain.ErrMissingField("name")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Result{}, domain.ErrHashFailed(err)
	}

	now := s.now()

	// Six-digit codes can collide with another pending account; the store
	// rejects the duplicate, so retry with a fresh code a few times before
	// giving up.
	var created domain.Account
	var code string
	for attempt := 0; ; attempt++ {
		code, err = newVerificationCode()
		if err != nil {
			return Result{}, domain.ErrRandomFailed(err)
		}

		created, err = s.accounts.Create(ctx, domain.Account{
			ID:                    uuid.NewString(),
			Email:                 email,
			PasswordHash:          hash,
			Name:                  name,
			IsVerified:            false,
			VerificationToken:     code,
			VerificationExpiresAt: now.Add(s.verificationTTL),
			LastLogin:             now,
		})
		if err == nil {
			break
		}
		if attempt < 2 && domain.Is(err, "verification_code_taken") {
			continue
		}
		return Result{}, err
	}

	token, err := s.signer.Sign(created.ID, s.sessionTTL)
	if err != nil {
		return Result{}, domain.ErrTokenSignFailed(err)
	}

	s.notify(ctx, Mail{
		Kind: MailVerification,
		To:   created.Email,
		Code: code,
	})

	return Result{Account: created, SessionToken: token}, nil
}

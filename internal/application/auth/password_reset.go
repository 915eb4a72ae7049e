package auth

import (
	"context"
	"strings"

	"github.com/northbeam/accounts-service/internal/domain"
)

// ForgotPassword issues a reset token for the account behind email and
// queues the reset mail. The token comes from a cryptographically secure
// source and expires after the (short) reset TTL.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.ErrMissingField("email")
	}

	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return domain.ErrRandomFailed(err)
	}

	if err := s.accounts.SetResetToken(ctx, a.ID, token, s.now().Add(s.resetTTL)); err != nil {
		return err
	}

	s.notify(ctx, Mail{
		Kind: MailPasswordReset,
		To:   a.Email,
		Link: s.resetLink(token),
	})

	return nil
}

// ResetPassword consumes a reset token and installs the new password.
// Hash replacement and token clearing happen in one atomic store step;
// a second request with the same token loses the race and fails.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if newPassword == "" {
		return domain.ErrMissingField("password")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.ErrHashFailed(err)
	}

	a, err := s.accounts.ConsumeResetToken(ctx, token, hash, s.now())
	if err != nil {
		return err
	}

	s.notify(ctx, Mail{
		Kind: MailResetSuccess,
		To:   a.Email,
		Name: a.Name,
	})

	return nil
}

package auth

import (
	"context"
	"strings"

	"github.com/northbeam/accounts-service/internal/domain"
)

// VerifyEmail consumes a verification code. The store clears the token
// pair and flips IsVerified in one atomic step, so a replayed code fails
// with the same ambiguous error as a wrong or expired one.
func (s *Service) VerifyEmail(ctx context.Context, code string) (domain.Account, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Account{}, domain.ErrMissingField("code")
	}

	a, err := s.accounts.ConsumeVerificationToken(ctx, code, s.now())
	if err != nil {
		return domain.Account{}, err
	}

	s.notify(ctx, Mail{
		Kind: MailWelcome,
		To:   a.Email,
		Name: a.Name,
	})

	return a, nil
}

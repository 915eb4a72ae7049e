package auth

import (
	"context"
	"strings"

	"github.com/northbeam/accounts-service/internal/domain"
)

// Login authenticates an account and issues a session credential.
// Unknown email and wrong password return the same error so callers
// cannot enumerate accounts.
func (s *Service) Login(ctx context.Context, email, password string) (Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Result{}, domain.ErrInvalidCredentials()
	}

	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		// Hide not-found behind invalid credentials.
		if domain.Is(err, "account_not_found") {
			return Result{}, domain.ErrInvalidCredentials()
		}
		return Result{}, err
	}

	if err := s.hasher.Compare(a.PasswordHash, password); err != nil {
		return Result{}, domain.ErrInvalidCredentials()
	}

	token, err := s.signer.Sign(a.ID, s.sessionTTL)
	if err != nil {
		return Result{}, domain.ErrTokenSignFailed(err)
	}

	a, err = s.accounts.TouchLastLogin(ctx, a.ID, s.now())
	if err != nil {
		return Result{}, err
	}

	return Result{Account: a, SessionToken: token}, nil
}

// Logout is stateless from the store's perspective: the only session
// state lives in the client cookie, which the transport layer clears.
func (s *Service) Logout(ctx context.Context) error {
	return nil
}

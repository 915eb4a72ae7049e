package auth

import (
	"context"
	"strings"

	"github.com/northbeam/accounts-service/internal/domain"
)

// CheckSession resolves an already-verified session identity back to its
// account. The id comes from the transport's cookie middleware; a stale
// id (account gone) is a not-found, not an auth failure.
func (s *Service) CheckSession(ctx context.Context, accountID string) (domain.Account, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return domain.Account{}, domain.ErrSessionInvalid()
	}
	return s.accounts.GetByID(ctx, accountID)
}

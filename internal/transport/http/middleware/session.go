package middleware

import (
	"net/http"
	"strings"

	"github.com/northbeam/accounts-service/internal/application/auth"
	"github.com/northbeam/accounts-service/internal/domain"
	"github.com/northbeam/accounts-service/internal/infrastructure/security"
)

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// Session verifies the signed session cookie and injects the account id
// into the request context. Handlers behind it can assume an
// authenticated caller.
func Session(signer auth.SessionSigner, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := security.ReadSessionCookie(r)
			if err != nil || strings.TrimSpace(raw) == "" {
				writeErr(w, r, domain.ErrSessionMissing())
				return
			}

			claims, err := signer.Verify(raw)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			if strings.TrimSpace(claims.AccountID) == "" {
				writeErr(w, r, domain.ErrSessionInvalid())
				return
			}

			ctx := WithAccountID(r.Context(), claims.AccountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

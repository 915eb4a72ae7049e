package response

import (
	"net/http"

	appctx "github.com/northbeam/accounts-service/internal/pkg/context"
)

// RequestIDFromContext returns the request id set by the RequestID
// middleware, or "" when the middleware is not installed.
func RequestIDFromContext(r *http.Request) string {
	return appctx.GetRequestID(r.Context())
}

package http_handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/northbeam/accounts-service/internal/application/auth"
	"github.com/northbeam/accounts-service/internal/domain"
	"github.com/northbeam/accounts-service/internal/infrastructure/security"
	"github.com/northbeam/accounts-service/internal/logger"
	"github.com/northbeam/accounts-service/internal/transport/http/dto"
	"github.com/northbeam/accounts-service/internal/transport/http/middleware"
	"github.com/northbeam/accounts-service/internal/transport/http/response"
)

type AuthHandler struct {
	svc           *auth.Service
	sessionTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(svc *auth.Service, sessionTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		svc:           svc,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("account_id", res.Account.ID).
		Str("email", res.Account.Email).
		Msg("account_created")

	security.SetSessionCookie(w, res.SessionToken, h.sessionTTL, h.secureCookies)
	response.Created(w, "account created", dto.NewUserView(res.Account))
}

// VerifyEmail handles POST /api/auth/verify-email.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	acct, err := h.svc.VerifyEmail(r.Context(), req.Code)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("account_id", acct.ID).
		Msg("email_verified")

	response.OK(w, "email verified", dto.NewUserView(acct))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		// Shape the failure like a bad credential pair so the endpoint
		// never says which part was wrong.
		response.WriteError(w, r, domain.ErrInvalidCredentials())
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("account_id", res.Account.ID).
		Msg("logged_in")

	security.SetSessionCookie(w, res.SessionToken, h.sessionTTL, h.secureCookies)
	response.OK(w, "logged in", dto.NewUserView(res.Account))
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context()); err != nil {
		response.WriteError(w, r, err)
		return
	}

	security.ClearSessionCookie(w, h.secureCookies)
	response.OK(w, "logged out", nil)
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, "password reset link sent", nil)
}

// ResetPassword handles POST /api/auth/reset-password/{token}.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" {
		response.WriteError(w, r, domain.ErrMissingField("token"))
		return
	}

	var req dto.ResetPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.ResetPassword(r.Context(), token, req.Password); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, "password reset successful", nil)
}

// CheckAuth handles GET /api/auth/check-auth. It runs behind the
// session middleware, which put the account id in the context.
func (h *AuthHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrSessionInvalid())
		return
	}

	acct, err := h.svc.CheckSession(r.Context(), accountID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, "", dto.NewUserView(acct))
}

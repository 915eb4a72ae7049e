package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/northbeam/accounts-service/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Signup(w http.ResponseWriter, r *http.Request)
	VerifyEmail(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
	CheckAuth(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health HealthHandler
	Auth   AuthHandler

	SessionMW func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.SessionMW == nil {
		return nil, fmt.Errorf("nil Session middleware")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", deps.Auth.Signup)
		r.Post("/verify-email", deps.Auth.VerifyEmail)
		r.Post("/login", deps.Auth.Login)
		r.Post("/logout", deps.Auth.Logout)

		r.Post("/forgot-password", deps.Auth.ForgotPassword)
		r.Post("/reset-password/{token}", deps.Auth.ResetPassword)

		r.With(deps.SessionMW).Get("/check-auth", deps.Auth.CheckAuth)
	})

	return r, nil
}

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/northbeam/accounts-service/internal/domain"
	"github.com/northbeam/accounts-service/internal/logger"
)

// Service orchestrates the credential and token lifecycle: signup,
// verification, login, logout, password reset and session checks.
type Service struct {
	accounts AccountStore
	hasher   PasswordHasher
	signer   SessionSigner
	notifier Notifier

	sessionTTL      time.Duration
	verificationTTL time.Duration
	resetTTL        time.Duration

	// Base URL the reset link is built from, e.g. https://app.example.com
	clientOrigin string

	now func() time.Time
}

type Config struct {
	SessionTTL      time.Duration
	VerificationTTL time.Duration
	ResetTTL        time.Duration
	ClientOrigin    string
}

func NewService(accounts AccountStore, hasher PasswordHasher, signer SessionSigner, notifier Notifier, cfg Config) *Service {
	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	verificationTTL := cfg.VerificationTTL
	if verificationTTL <= 0 {
		verificationTTL = 24 * time.Hour
	}
	resetTTL := cfg.ResetTTL
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}

	return &Service{
		accounts: accounts,
		hasher:   hasher,
		signer:   signer,
		notifier: notifier,

		sessionTTL:      sessionTTL,
		verificationTTL: verificationTTL,
		resetTTL:        resetTTL,
		clientOrigin:    strings.TrimRight(cfg.ClientOrigin, "/"),

		now: time.Now,
	}
}

// Result is the common output of operations that authenticate the caller.
type Result struct {
	Account      domain.Account
	SessionToken string
}

// notify hands a mail to the notifier. Dispatch failures are logged and
// never fail the triggering operation.
func (s *Service) notify(ctx context.Context, m Mail) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, m); err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("kind", string(m.Kind)).
			Msg("notification dispatch failed")
	}
}

func (s *Service) resetLink(token string) string {
	return s.clientOrigin + "/reset-password/" + token
}

// newVerificationCode returns a six digit numeric code. Short enough to
// type from an email, bounded by the 24h expiry and single use.
func newVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// newResetToken returns a URL-safe opaque token from a cryptographically
// secure source. Reset tokens travel in links, so they carry far more
// entropy than the typed verification code.
func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

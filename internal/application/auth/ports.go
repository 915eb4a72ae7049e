package auth

import (
	"context"
	"time"

	"github.com/northbeam/accounts-service/internal/domain"
)

/*
AccountStore
------------
Persistence port for accounts. Only describes WHAT the auth service
needs, not HOW it is stored.

Two guarantees the implementation must provide:
  - Create enforces email uniqueness at the storage level (a racing
    duplicate insert surfaces as ErrEmailAlreadyExists, never as two rows).
  - The Consume* methods read-and-clear in one atomic step: of two
    concurrent calls with the same valid token, exactly one succeeds and
    the other gets ErrTokenInvalidOrExpired.
*/
type AccountStore interface {
	Create(ctx context.Context, a domain.Account) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)

	// ConsumeVerificationToken matches a pending verification code with a
	// strictly-future expiry, marks the account verified and clears the
	// token pair. A miss (wrong, expired or already consumed) returns
	// ErrTokenInvalidOrExpired.
	ConsumeVerificationToken(ctx context.Context, code string, now time.Time) (domain.Account, error)

	// SetResetToken stores a pending reset token pair on the account.
	SetResetToken(ctx context.Context, accountID, token string, expiresAt time.Time) error

	// ConsumeResetToken matches a pending reset token with a strictly-future
	// expiry, replaces the password hash and clears the token pair.
	ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (domain.Account, error)

	// TouchLastLogin records a successful login and returns the updated account.
	TouchLastLogin(ctx context.Context, accountID string, at time.Time) (domain.Account, error)
}

/*
PasswordHasher
--------------
Abstracts bcrypt. Compare returns nil on match.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

/*
SessionSigner
-------------
Issues and verifies the signed session credential carried in the client
cookie. Validity is purely signature + expiry; there is no server-side
session table.
*/
type SessionClaims struct {
	AccountID string
	Exp       time.Time
}

type SessionSigner interface {
	Sign(accountID string, ttl time.Duration) (string, error)
	Verify(token string) (SessionClaims, error)
}

/*
Notifier
--------
External email-delivery collaborator. Delivery is fire-and-forget:
the service never blocks an operation on it and never retries; failures
are logged only.
*/
type MailKind string

const (
	MailVerification  MailKind = "verification"
	MailWelcome       MailKind = "welcome"
	MailPasswordReset MailKind = "password_reset"
	MailResetSuccess  MailKind = "reset_success"
)

type Mail struct {
	Kind MailKind
	To   string

	// Payload fields; which ones are set depends on Kind.
	Name string // welcome
	Code string // verification
	Link string // password reset
}

type Notifier interface {
	Send(ctx context.Context, m Mail) error
}

package domain

import "time"

// Account is the persisted user identity owned by the credential store.
// PasswordHash must never leave the store/service boundary in a response.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	IsVerified   bool

	// Pending email verification. Both fields are set together and cleared
	// together when the code is consumed.
	VerificationToken     string
	VerificationExpiresAt time.Time

	// Pending password reset. Same pairing rule as the verification fields.
	ResetToken     string
	ResetExpiresAt time.Time

	LastLogin time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPendingVerification reports whether a verification code is outstanding.
func (a Account) HasPendingVerification() bool {
	return a.VerificationToken != "" && !a.VerificationExpiresAt.IsZero()
}

// HasPendingReset reports whether a password reset token is outstanding.
func (a Account) HasPendingReset() bool {
	return a.ResetToken != "" && !a.ResetExpiresAt.IsZero()
}

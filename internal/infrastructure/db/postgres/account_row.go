package postgres

import (
	"database/sql"

	"github.com/northbeam/accounts-service/internal/domain"
)

// accountRow mirrors the accounts table. Token columns are nullable:
// NULL means no pending verification/reset.
type accountRow struct {
	ID                    string
	Email                 string
	PasswordHash          string
	Name                  string
	IsVerified            bool
	VerificationToken     sql.NullString
	VerificationExpiresAt sql.NullTime
	ResetToken            sql.NullString
	ResetExpiresAt        sql.NullTime
	LastLogin             sql.NullTime
	CreatedAt             sql.NullTime
	UpdatedAt             sql.NullTime
}

func (r accountRow) toDomain() domain.Account {
	a := domain.Account{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Name:         r.Name,
		IsVerified:   r.IsVerified,
	}
	if r.VerificationToken.Valid {
		a.VerificationToken = r.VerificationToken.String
	}
	if r.VerificationExpiresAt.Valid {
		a.VerificationExpiresAt = r.VerificationExpiresAt.Time
	}
	if r.ResetToken.Valid {
		a.ResetToken = r.ResetToken.String
	}
	if r.ResetExpiresAt.Valid {
		a.ResetExpiresAt = r.ResetExpiresAt.Time
	}
	if r.LastLogin.Valid {
		a.LastLogin = r.LastLogin.Time
	}
	if r.CreatedAt.Valid {
		a.CreatedAt = r.CreatedAt.Time
	}
	if r.UpdatedAt.Valid {
		a.UpdatedAt = r.UpdatedAt.Time
	}
	return a
}

func (r *accountRow) scanTargets() []any {
	return []any{
		&r.ID,
		&r.Email,
		&r.PasswordHash,
		&r.Name,
		&r.IsVerified,
		&r.VerificationToken,
		&r.VerificationExpiresAt,
		&r.ResetToken,
		&r.ResetExpiresAt,
		&r.LastLogin,
		&r.CreatedAt,
		&r.UpdatedAt,
	}
}

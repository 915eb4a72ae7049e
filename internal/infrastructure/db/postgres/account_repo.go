package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/northbeam/accounts-service/internal/domain"
)

const accountCols = `id, email, password_hash, name, is_verified,
	verification_token, verification_expires_at,
	reset_token, reset_expires_at,
	last_login, created_at, updated_at`

// AccountRepo persists accounts in Postgres. Email uniqueness is enforced
// by the unique constraint on accounts.email, and token consumption is a
// single conditional UPDATE so two racing consumers cannot both win.
type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// mapUniqueViolation translates a 23505 into the domain conflict that the
// violated constraint stands for, keyed by constraint name so a colliding
// verification code is not mistaken for a duplicate email.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	if pgErr.ConstraintName == "accounts_verification_token_idx" {
		return domain.ErrVerificationCodeTaken()
	}
	return domain.ErrEmailAlreadyExists()
}

func nullableToken(token string, expiresAt time.Time) (sql.NullString, sql.NullTime) {
	if token == "" {
		return sql.NullString{}, sql.NullTime{}
	}
	return sql.NullString{String: token, Valid: true}, sql.NullTime{Time: expiresAt, Valid: true}
}

func (r *AccountRepo) scanOne(row *sql.Row) (domain.Account, error) {
	var ar accountRow
	if err := row.Scan(ar.scanTargets()...); err != nil {
		return domain.Account{}, err
	}
	return ar.toDomain(), nil
}

func (r *AccountRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	a.Email = normalizeEmail(a.Email)
	if a.ID == "" {
		return domain.Account{}, domain.ErrMissingField("id")
	}
	if a.Email == "" {
		return domain.Account{}, domain.ErrMissingField("email")
	}
	if a.PasswordHash == "" {
		return domain.Account{}, domain.ErrMissingField("password_hash")
	}

	verTok, verExp := nullableToken(a.VerificationToken, a.VerificationExpiresAt)

	const q = `
INSERT INTO accounts (id, email, password_hash, name, is_verified,
                      verification_token, verification_expires_at, last_login)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + accountCols + `;
`
	created, err := r.scanOne(r.db.QueryRowContext(ctx, q,
		a.ID, a.Email, a.PasswordHash, a.Name, a.IsVerified,
		verTok, verExp, a.LastLogin,
	))
	if err != nil {
		if conflict := mapUniqueViolation(err); conflict != nil {
			return domain.Account{}, conflict
		}
		return domain.Account{}, domain.ErrStoreUnavailable(err)
	}
	return created, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.Account{}, domain.ErrMissingField("email")
	}

	const q = `
SELECT ` + accountCols + `
FROM accounts
WHERE email = $1
LIMIT 1;
`
	a, err := r.scanOne(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound()
		}
		return domain.Account{}, domain.ErrStoreUnavailable(err)
	}
	return a, nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Account{}, domain.ErrMissingField("id")
	}

	const q = `
SELECT ` + accountCols + `
FROM accounts
WHERE id = $1
LIMIT 1;
`
	a, err := r.scanOne(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound()
		}
		return domain.Account{}, domain.ErrStoreUnavailable(err)
	}
	return a, nil
}

// ConsumeVerificationToken flips is_verified and clears the pair in one
// statement. The WHERE clause is the whole validity check: token match
// plus strictly-future expiry. No match means wrong, stale or replayed.
func (r *AccountRepo) ConsumeVerificationToken(ctx context.Context, code string, now time.Time) (domain.Account, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Account{}, domain.ErrMissingField("code")
	}

	const q = `
UPDATE accounts
SET is_verified = TRUE,
    verification_token = NULL,
    verification_expires_at = NULL,
    updated_at = NOW()
WHERE verification_token = $1
  AND verification_expires_at > $2
RETURNING ` + accountCols + `;
`
	a, err := r.scanOne(r.db.QueryRowContext(ctx, q, code, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrTokenInvalidOrExpired()
		}
		return domain.Account{}, domain.ErrStoreUnavailable(err)
	}
	return a, nil
}

func (r *AccountRepo) SetResetToken(ctx context.Context, accountID, token string, expiresAt time.Time) error {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return domain.ErrMissingField("account_id")
	}
	if token == "" {
		return domain.ErrMissingField("token")
	}

	const q = `
UPDATE accounts
SET reset_token = $2,
    reset_expires_at = $3,
    updated_at = NOW()
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, accountID, token, expiresAt)
	if err != nil {
		return domain.ErrStoreUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrAccountNotFound()
	}
	return nil
}

// ConsumeResetToken swaps the password hash and clears the pair in one
// statement, mirroring ConsumeVerificationToken.
func (r *AccountRepo) ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (domain.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Account{}, domain.ErrMissingField("token")
	}
	if newHash == "" {
		return domain.Account{}, domain.ErrMissingField("password_hash")
	}

	const q = `
UPDATE accounts
SET password_hash = $2,
    reset_token = NULL,
    reset_expires_at = NULL,
    updated_at = NOW()
WHERE reset_token = $1
  AND reset_expires_at > $3
RETURNING ` + accountCols + `;
`
	a, err := r.scanOne(r.db.QueryRowContext(ctx, q, token, newHash, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrTokenInvalidOrExpired()
		}
		return domain.Account{}, domain.ErrStoreUnavailable(err)
	}
	return a, nil
}

func (r *AccountRepo) TouchLastLogin(ctx context.Context, accountID string, at time.Time) (domain.Account, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return domain.Account{}, domain.ErrMissingField("account_id")
	}

	const q = `
UPDATE accounts
SET last_login = $2,
    updated_at = $2
WHERE id = $1
RETURNING ` + accountCols + `;
`
	a, err := r.scanOne(r.db.QueryRowContext(ctx, q, accountID, at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound()
		}
		return domain.Account{}, domain.ErrStoreUnavailable(err)
	}
	return a, nil
}

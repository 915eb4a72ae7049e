package memory

import (
	"context"
	"sync"
	"time"

	"github.com/northbeam/accounts-service/internal/domain"
)

// AccountStore is a mutex-guarded in-memory store for dev and tests.
// The single lock gives the same atomicity the Postgres store gets from
// conditional UPDATEs: uniqueness on insert, read-and-clear on consume.
type AccountStore struct {
	mu      sync.Mutex
	byID    map[string]domain.Account
	byEmail map[string]string // email -> id
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		byID:    make(map[string]domain.Account),
		byEmail: make(map[string]string),
	}
}

func (s *AccountStore) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		return domain.Account{}, domain.ErrMissingField("id")
	}
	if _, exists := s.byEmail[a.Email]; exists {
		return domain.Account{}, domain.ErrEmailAlreadyExists()
	}
	// Same uniqueness the Postgres partial index enforces: a pending code
	// may belong to at most one account.
	if a.VerificationToken != "" {
		for _, other := range s.byID {
			if other.VerificationToken == a.VerificationToken {
				return domain.Account{}, domain.ErrVerificationCodeTaken()
			}
		}
	}

	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	s.byID[a.ID] = a
	s.byEmail[a.Email] = a.ID
	return a, nil
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return s.byID[id], nil
}

func (s *AccountStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return a, nil
}

func (s *AccountStore) ConsumeVerificationToken(ctx context.Context, code string, now time.Time) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range s.byID {
		if a.VerificationToken == code && a.VerificationExpiresAt.After(now) {
			a.IsVerified = true
			a.VerificationToken = ""
			a.VerificationExpiresAt = time.Time{}
			a.UpdatedAt = now
			s.byID[id] = a
			return a, nil
		}
	}
	return domain.Account{}, domain.ErrTokenInvalidOrExpired()
}

func (s *AccountStore) SetResetToken(ctx context.Context, accountID, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[accountID]
	if !ok {
		return domain.ErrAccountNotFound()
	}
	a.ResetToken = token
	a.ResetExpiresAt = expiresAt
	a.UpdatedAt = time.Now()
	s.byID[accountID] = a
	return nil
}

func (s *AccountStore) ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range s.byID {
		if a.ResetToken == token && a.ResetExpiresAt.After(now) {
			a.PasswordHash = newHash
			a.ResetToken = ""
			a.ResetExpiresAt = time.Time{}
			a.UpdatedAt = now
			s.byID[id] = a
			return a, nil
		}
	}
	return domain.Account{}, domain.ErrTokenInvalidOrExpired()
}

func (s *AccountStore) TouchLastLogin(ctx context.Context, accountID string, at time.Time) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[accountID]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	a.LastLogin = at
	a.UpdatedAt = at
	s.byID[accountID] = a
	return a, nil
}

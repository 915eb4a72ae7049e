package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/northbeam/accounts-service/internal/domain"
)

/*
Fakes for ports
*/

type fakeStore struct {
	mu sync.Mutex

	byID    map[string]domain.Account
	byEmail map[string]string // email -> id

	// injected errors (if set, method returns error)
	createErr     error
	getByEmailErr error
	getByIDErr    error
	setResetErr   error
	touchErr      error

	// codeConflicts fails that many Creates with a code-taken conflict
	// before letting one through.
	codeConflicts int
	createCalls   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byID:    map[string]domain.Account{},
		byEmail: map[string]string{},
	}
}

func (f *fakeStore) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.createErr != nil {
		return domain.Account{}, f.createErr
	}
	if f.codeConflicts > 0 {
		f.codeConflicts--
		return domain.Account{}, domain.ErrVerificationCodeTaken()
	}
	if _, exists := f.byEmail[a.Email]; exists {
		return domain.Account{}, domain.ErrEmailAlreadyExists()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	f.byID[a.ID] = a
	f.byEmail[a.Email] = a.ID
	return a, nil
}

func (f *fakeStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.Account{}, f.getByEmailErr
	}
	id, ok := f.byEmail[email]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return f.byID[id], nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.Account{}, f.getByIDErr
	}
	a, ok := f.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return a, nil
}

func (f *fakeStore) ConsumeVerificationToken(ctx context.Context, code string, now time.Time) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, a := range f.byID {
		if a.VerificationToken == code && a.VerificationExpiresAt.After(now) {
			a.IsVerified = true
			a.VerificationToken = ""
			a.VerificationExpiresAt = time.Time{}
			a.UpdatedAt = now
			f.byID[id] = a
			return a, nil
		}
	}
	return domain.Account{}, domain.ErrTokenInvalidOrExpired()
}

func (f *fakeStore) SetResetToken(ctx context.Context, accountID, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setResetErr != nil {
		return f.setResetErr
	}
	a, ok := f.byID[accountID]
	if !ok {
		return domain.ErrAccountNotFound()
	}
	a.ResetToken = token
	a.ResetExpiresAt = expiresAt
	f.byID[accountID] = a
	return nil
}

func (f *fakeStore) ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, a := range f.byID {
		if a.ResetToken == token && a.ResetExpiresAt.After(now) {
			a.PasswordHash = newHash
			a.ResetToken = ""
			a.ResetExpiresAt = time.Time{}
			a.UpdatedAt = now
			f.byID[id] = a
			return a, nil
		}
	}
	return domain.Account{}, domain.ErrTokenInvalidOrExpired()
}

func (f *fakeStore) TouchLastLogin(ctx context.Context, accountID string, at time.Time) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.touchErr != nil {
		return domain.Account{}, f.touchErr
	}
	a, ok := f.byID[accountID]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	a.LastLogin = at
	a.UpdatedAt = at
	f.byID[accountID] = a
	return a, nil
}

// byEmailAccount is a test convenience.
func (f *fakeStore) byEmailAccount(email string) (domain.Account, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byEmail[email]
	if !ok {
		return domain.Account{}, false
	}
	return f.byID[id], true
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func (f *fakeHasher) Hash(pw string) (string, error) {
	if f.hashFn != nil {
		return f.hashFn(pw)
	}
	return "hash:" + pw, nil
}

func (f *fakeHasher) Compare(hash, pw string) error {
	if f.compareFn != nil {
		return f.compareFn(hash, pw)
	}
	if hash != "hash:"+pw {
		return errors.New("mismatch")
	}
	return nil
}

type fakeSigner struct {
	signErr error
}

func (f *fakeSigner) Sign(accountID string, ttl time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return "session:" + accountID, nil
}

func (f *fakeSigner) Verify(token string) (SessionClaims, error) {
	id, ok := strings.CutPrefix(token, "session:")
	if !ok {
		return SessionClaims{}, domain.ErrSessionInvalid()
	}
	return SessionClaims{AccountID: id, Exp: time.Now().Add(time.Hour)}, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []Mail
	sendErr error
}

func (f *fakeNotifier) Send(ctx context.Context, m Mail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeNotifier) sentKinds() []MailKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	kinds := make([]MailKind, 0, len(f.sent))
	for _, m := range f.sent {
		kinds = append(kinds, m.Kind)
	}
	return kinds
}

/*
Helpers
*/

func newSvcForTest(t *testing.T) (*Service, *fakeStore, *fakeHasher, *fakeSigner, *fakeNotifier) {
	t.Helper()

	store := newFakeStore()
	hasher := &fakeHasher{}
	signer := &fakeSigner{}
	notifier := &fakeNotifier{}

	svc := NewService(store, hasher, signer, notifier, Config{
		ClientOrigin: "https://app.example.com",
	})
	return svc, store, hasher, signer, notifier
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code %q, got %v", code, err)
	}
}

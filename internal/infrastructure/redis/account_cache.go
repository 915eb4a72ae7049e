package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/northbeam/accounts-service/internal/application/auth"
	"github.com/northbeam/accounts-service/internal/domain"
)

// CachedAccountStore decorates an auth.AccountStore with a Redis cache
// for by-id lookups, which the session-check endpoint hits on every
// authenticated request.
// - Read path: Redis -> store fallback -> Redis fill
// - Write path: store first, then best-effort cache update
// Redis being down never fails an operation; the store stays the source
// of truth.
type CachedAccountStore struct {
	inner   auth.AccountStore
	rdb     *goredis.Client
	ttl     time.Duration
	keyPref string
}

func NewCachedAccountStore(inner auth.AccountStore, client *Client, ttl time.Duration) *CachedAccountStore {
	var rdb *goredis.Client
	if client != nil {
		rdb = client.rdb
	}
	return &CachedAccountStore{
		inner:   inner,
		rdb:     rdb,
		ttl:     ttl,
		keyPref: "acct:",
	}
}

func (c *CachedAccountStore) key(accountID string) string {
	return c.keyPref + accountID
}

func (c *CachedAccountStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, c.key(id)).Bytes()
		if err == nil {
			var a domain.Account
			if uerr := json.Unmarshal(raw, &a); uerr == nil {
				return a, nil
			}
			// corrupt entry -> fall back to store
		}
		// goredis.Nil or redis error -> fall back to store
	}

	a, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	c.fill(ctx, a)
	return a, nil
}

// fill is a best-effort cache write.
func (c *CachedAccountStore) fill(ctx context.Context, a domain.Account) {
	if c.rdb == nil || a.ID == "" {
		return
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, c.key(a.ID), raw, c.ttl).Err()
}

func (c *CachedAccountStore) drop(ctx context.Context, accountID string) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, c.key(accountID)).Err()
}

/*
Mutations go to the store first; the cache follows. Methods that return
the updated account overwrite the entry, SetResetToken only invalidates.
*/

func (c *CachedAccountStore) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	created, err := c.inner.Create(ctx, a)
	if err != nil {
		return domain.Account{}, err
	}
	c.fill(ctx, created)
	return created, nil
}

func (c *CachedAccountStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	return c.inner.GetByEmail(ctx, email)
}

func (c *CachedAccountStore) ConsumeVerificationToken(ctx context.Context, code string, now time.Time) (domain.Account, error) {
	a, err := c.inner.ConsumeVerificationToken(ctx, code, now)
	if err != nil {
		return domain.Account{}, err
	}
	c.fill(ctx, a)
	return a, nil
}

func (c *CachedAccountStore) SetResetToken(ctx context.Context, accountID, token string, expiresAt time.Time) error {
	if err := c.inner.SetResetToken(ctx, accountID, token, expiresAt); err != nil {
		return err
	}
	c.drop(ctx, accountID)
	return nil
}

func (c *CachedAccountStore) ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (domain.Account, error) {
	a, err := c.inner.ConsumeResetToken(ctx, token, newHash, now)
	if err != nil {
		return domain.Account{}, err
	}
	c.fill(ctx, a)
	return a, nil
}

func (c *CachedAccountStore) TouchLastLogin(ctx context.Context, accountID string, at time.Time) (domain.Account, error) {
	a, err := c.inner.TouchLastLogin(ctx, accountID, at)
	if err != nil {
		return domain.Account{}, err
	}
	c.fill(ctx, a)
	return a, nil
}

package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client wraps the go-redis client behind the small surface bootstrap and
// the account cache need. Losing it only costs the cache; Postgres stays
// the source of truth.
type Client struct {
	rdb *goredis.Client
}

// New configures a client without dialing; the first command connects.
// Bootstrap follows up with Ping so a dead Redis is noticed at startup,
// not on the first cached read.
func New(addr, password string, db int) *Client {
	return &Client{
		rdb: goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Ping bounds its own deadline so bootstrap and the readiness endpoint
// never hang on an unreachable Redis.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

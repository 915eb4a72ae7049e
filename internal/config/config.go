package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// App
	Env string // dev / staging / prod
	// HTTP
	HTTPAddr string
	// Auth / Security
	JWTSecret  string
	SessionTTL time.Duration
	BcryptCost int

	// Token flows (email verify / password reset)
	VerificationTokenTTL time.Duration
	ResetTokenTTL        time.Duration

	// ClientOrigin is the frontend base URL reset links point at.
	ClientOrigin string

	// Infrastructure. The database is required; Redis and RabbitMQ are
	// optional and the service degrades without them (no cache, mails
	// logged instead of queued).
	DBAddr        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RabbitURL     string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// IsProd reports whether cookies must be Secure.
func (c *Config) IsProd() bool { return c.Env == "prod" }

func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}

	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}

	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr == "" {
		return nil, fmt.Errorf("missing required env var: DB_ADDR")
	}
	if err := validatePostgresDSN(cfg.DBAddr); err != nil {
		return nil, err
	}

	cfg.ClientOrigin = os.Getenv("CLIENT_ORIGIN")
	if cfg.ClientOrigin == "" {
		return nil, fmt.Errorf("missing required env var: CLIENT_ORIGIN")
	}

	// optional infrastructure
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RabbitURL = os.Getenv("RABBIT_URL")

	rdb, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.RedisDB = rdb

	cost, err := getInt("BCRYPT_COST", 10)
	if err != nil {
		return nil, err
	}
	cfg.BcryptCost = cost

	// TTLs, optional with defaults
	st, err := getDuration("SESSION_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = st

	vt, err := getDuration("VERIFICATION_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.VerificationTokenTTL = vt

	rt, err := getDuration("RESET_TOKEN_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.ResetTokenTTL = rt

	// HTTP timeouts, optional with defaults
	readT, err := getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPReadTimeout = readT

	writeT, err := getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPWriteTimeout = writeT

	idleT, err := getDuration("HTTP_IDLE_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.HTTPIdleTimeout = idleT

	return cfg, nil
}

// validatePostgresDSN fails fast on a DSN that sql.Open would accept
// but that clearly points somewhere else.
func validatePostgresDSN(dsn string) error {
	u, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("invalid DB_ADDR: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("DB_ADDR must be a postgres:// DSN, got scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		return fmt.Errorf("DB_ADDR must name a database")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q: %w", key, v, err)
	}
	return n, nil
}

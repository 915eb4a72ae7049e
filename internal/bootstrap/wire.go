package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/northbeam/accounts-service/internal/application/auth"
	"github.com/northbeam/accounts-service/internal/config"
	"github.com/northbeam/accounts-service/internal/infrastructure/db/postgres"
	"github.com/northbeam/accounts-service/internal/infrastructure/memory"
	"github.com/northbeam/accounts-service/internal/infrastructure/messaging"
	"github.com/northbeam/accounts-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/northbeam/accounts-service/internal/infrastructure/redis"
	"github.com/northbeam/accounts-service/internal/infrastructure/security"
	"github.com/northbeam/accounts-service/internal/logger"
	http_handlers "github.com/northbeam/accounts-service/internal/transport/http/handlers"
	"github.com/northbeam/accounts-service/internal/transport/http/middleware"
	"github.com/northbeam/accounts-service/internal/transport/http/response"
	"github.com/northbeam/accounts-service/internal/transport/http/router"
)

// Accounts read through Redis for this long before hitting Postgres
// again; mutations refresh or drop entries eagerly.
const accountCacheTTL = 5 * time.Minute

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string) (DBCloser, error)

	Migrate func(addr string) error

	NewRedis func(addr, password string, db int) RedisClient

	NewNotifier func(rabbitURL string) (auth.Notifier, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type DBCloser interface {
	Close() error
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) db + schema
	db, err := deps.NewDB(cfg.DBAddr)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	if deps.Migrate != nil {
		if err := deps.Migrate(cfg.DBAddr); err != nil {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	}

	sqlDB, ok := db.(*sql.DB)
	if !ok {
		runCleanup(cleanupFns)
		return nil, nil, errors.New("bootstrap: NewDB did not return *sql.DB")
	}

	accountRepo := postgres.NewAccountRepo(sqlDB)

	// 2) redis (best-effort)
	var redisCli RedisClient
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := c.Ping(ctx); err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; cache disabled")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	var accounts auth.AccountStore = accountRepo
	var cachePinger http_handlers.Pinger
	if redisCli != nil {
		cachePinger = redisCli
		// The cache layer needs the concrete client; an injected test
		// double still serves as the readiness pinger, just uncached.
		if rc, ok := redisCli.(*redis.Client); ok {
			accounts = redis.NewCachedAccountStore(accountRepo, rc, accountCacheTTL)
		}
	}

	// 3) notifier
	var notifier auth.Notifier
	switch {
	case deps.NewNotifier == nil || cfg.RabbitURL == "":
		logger.Logger.Warn().Msg("rabbitmq not configured; mails are logged only")
		notifier = memory.NewLogNotifier()
	default:
		n, err := deps.NewNotifier(cfg.RabbitURL)
		if err != nil {
			if cfg.Env == "dev" {
				logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; mails are logged only")
				notifier = memory.NewLogNotifier()
			} else {
				runCleanup(cleanupFns)
				return nil, nil, err
			}
		} else {
			notifier = n
			if c, ok := n.(interface{ Close() error }); ok {
				cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			}
		}
	}

	// Mail never blocks a request; the dispatcher drains on shutdown.
	dispatcher := messaging.NewAsyncDispatcher(notifier)
	cleanupFns = append(cleanupFns, dispatcher.Close)

	// 4) security
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewJWTSigner(cfg.JWTSecret, "accounts-service")

	// 5) service
	authSvc := auth.NewService(
		accounts,
		hasher,
		signer,
		dispatcher,
		auth.Config{
			SessionTTL:      cfg.SessionTTL,
			VerificationTTL: cfg.VerificationTokenTTL,
			ResetTTL:        cfg.ResetTokenTTL,
			ClientOrigin:    cfg.ClientOrigin,
		},
	)

	// 6) handlers + middleware
	secureCookies := cfg.Env != "dev"

	authH := http_handlers.NewAuthHandler(authSvc, cfg.SessionTTL, secureCookies)
	healthH := http_handlers.NewHealthHandler(sqlDB, cachePinger)

	sessionMW := middleware.Session(signer, response.WriteError)

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health:    healthH,
		Auth:      authH,
		SessionMW: sessionMW,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB: func(addr string) (DBCloser, error) {
			return config.NewDB(addr)
		},
		Migrate: postgres.RunMigrations,
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewNotifier: func(url string) (auth.Notifier, error) {
			return rabbitmq.NewNotifier(url)
		},
		NewRouter: func(d router.Deps) (http.Handler, error) {
			return router.New(d)
		},
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

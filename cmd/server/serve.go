package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	_ "github.com/todoapp/todo-service/docs"
	"github.com/todoapp/todo-service/internal/api"
	"github.com/todoapp/todo-service/internal/api/handler"
	"github.com/todoapp/todo-service/internal/api/middleware"
	"github.com/todoapp/todo-service/internal/core/ports"
	"github.com/todoapp/todo-service/internal/core/service"
	mongostore "github.com/todoapp/todo-service/internal/infrastructure/db/mongo"
	redisstore "github.com/todoapp/todo-service/internal/infrastructure/db/redis"
	"github.com/todoapp/todo-service/internal/infrastructure/queue"
	"github.com/todoapp/todo-service/internal/pkg/config"
	"github.com/todoapp/todo-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP API. Redis rate limiting and the MongoDB audit trail
are enabled only when REDIS_ADDR and MONGO_URI are set.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		auditor ports.AuthAuditor
		limiter middleware.Limiter
		checks  []handler.DependencyCheck
	)

	if cfg.Mongo.URI != "" {
		store, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return oops.Code("MONGO_CONNECT_FAILED").With("operation", "connect audit store").Wrap(err)
		}
		defer func() { _ = store.Close() }()

		audit := store.AuditRepository()
		if err := audit.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("audit index creation failed")
		}
		dispatcher := queue.NewAuditDispatcher(audit, 0, logger.Component("audit"))
		dispatcher.Start()
		defer dispatcher.Close()
		auditor = dispatcher
		checks = append(checks, handler.MongoCheck(store.DB))
		log.Info().Str("database", cfg.Mongo.Database).Msg("auth audit trail enabled")
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return oops.Code("REDIS_CONNECT_FAILED").With("operation", "connect rate limiter").Wrap(err)
		}
		defer func() { _ = rdb.Close() }()

		limiter = redisstore.NewRateLimiter(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window)
		checks = append(checks, handler.RedisCheck(rdb))
		log.Info().Int("limit", cfg.RateLimit.Limit).Dur("window", cfg.RateLimit.Window).Msg("auth rate limiting enabled")
	}

	extractor, err := api.NewIPExtractor(cfg.TrustedProxies)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("setting", "TRUSTED_PROXIES").Wrap(err)
	}

	provider := newProvider(cfg, log, auditor)
	defer provider.Close()
	checks = append([]handler.DependencyCheck{handler.PostgresCheck(provider)}, checks...)

	if cfg.Session.SweepInterval > 0 {
		sweeper := service.NewSessionSweeper(provider, cfg.Session.SweepInterval, logger.Component("sweeper"))
		// Deferred after provider.Close, so it runs first and no sweep outlives the pool.
		stopSweeper := sweeper.Start(ctx)
		defer stopSweeper()
	}

	e := api.NewRouter(api.Dependencies{
		Runner:       provider,
		Log:          log,
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.IsProduction(),
		Limiter:      limiter,
		IPExtractor:  extractor,
		Checks:       checks,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	log.Info().Msg("server stopped")
	return nil
}

package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/todoapp/todo-service/internal/core/credential"
	"github.com/todoapp/todo-service/internal/core/ports"
	"github.com/todoapp/todo-service/internal/core/service"
	"github.com/todoapp/todo-service/internal/infrastructure/db/postgres"
	"github.com/todoapp/todo-service/internal/infrastructure/scope"
	"github.com/todoapp/todo-service/internal/pkg/config"
	"github.com/todoapp/todo-service/pkg/logger"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "todo-service",
	})
}

// newProvider builds the request-scope provider. The pool is opened on the
// first scope, not here.
func newProvider(cfg *config.Config, log zerolog.Logger, auditor ports.AuthAuditor) *scope.Provider {
	open := func(ctx context.Context) (scope.Pool, error) {
		return postgres.Connect(ctx, postgres.Config{
			URL:      cfg.Postgres.URL,
			MaxConns: cfg.Postgres.MaxConns,
		})
	}

	return scope.NewProvider(open, scope.Dependencies{
		Hasher:  credential.NewArgon2idHasher(credential.DefaultArgon2Params),
		Auditor: auditor,
		Sessions: service.SessionOptions{
			TTL:        cfg.Session.TTL,
			CookieName: cfg.Session.CookieName,
			Secure:     cfg.IsProduction(),
		},
		MaxTodos: cfg.Todos.MaxPerUser,
		Log:      log,
	})
}

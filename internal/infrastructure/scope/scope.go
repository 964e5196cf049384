// Package scope builds the per-request bundle of repositories and services
// and guarantees its persistence context is released.
package scope

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/todoapp/todo-service/internal/core/domain"
	"github.com/todoapp/todo-service/internal/core/ports"
	"github.com/todoapp/todo-service/internal/core/service"
	"github.com/todoapp/todo-service/internal/infrastructure/db/postgres"
	"github.com/todoapp/todo-service/internal/pkg/metrics"
)

// ErrPanic wraps a panic recovered inside a scope.
var ErrPanic = errors.New("request scope panicked")

// Pool is the process-wide connection pool. *pgxpool.Pool satisfies it.
type Pool interface {
	postgres.Beginner
	Ping(ctx context.Context) error
	Close()
}

// Opener creates the pool. It is called at most once per Provider.
type Opener func(ctx context.Context) (Pool, error)

// Dependencies are the process-wide singletons every scope shares.
type Dependencies struct {
	Hasher   domain.PasswordHasher
	Auditor  ports.AuthAuditor
	Sessions service.SessionOptions
	MaxTodos int
	Log      zerolog.Logger
}

// Provider implements ports.ScopeRunner.
type Provider struct {
	pool   func() (Pool, error)
	opened atomic.Bool
	deps   Dependencies
}

// NewProvider returns a Provider that opens its pool lazily on first use.
// Concurrent first callers wait for the same open; its result, failure
// included, is shared by every later call.
func NewProvider(open Opener, deps Dependencies) *Provider {
	p := &Provider{deps: deps}
	p.pool = sync.OnceValues(func() (Pool, error) {
		pool, err := open(context.Background())
		if err != nil {
			return nil, err
		}
		p.opened.Store(true)
		return pool, nil
	})
	return p
}

// WithScope runs fn against a fresh unit of work. Whatever fn does, the unit
// is released before WithScope returns; errors from fn pass through unchanged
// and a panic comes back as an error wrapping ErrPanic.
func (p *Provider) WithScope(ctx context.Context, fn func(ctx context.Context, s ports.Scope) error) (err error) {
	pool, err := p.pool()
	if err != nil {
		return fmt.Errorf("acquire pool: %w", err)
	}

	uow := postgres.NewUnitOfWork(pool)
	start := time.Now()
	metrics.UnitsOfWorkInFlight.Inc()

	defer func() {
		outcome := "ok"
		if r := recover(); r != nil {
			outcome = "panic"
			err = fmt.Errorf("%w: %v", ErrPanic, r)
			p.deps.Log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("request scope panicked")
		} else if err != nil {
			outcome = "error"
		}

		if uow.InTransaction() {
			metrics.UnitsOfWorkRolledBackTotal.Inc()
		}
		if relErr := uow.Release(ctx); relErr != nil {
			p.deps.Log.Error().Err(relErr).Msg("failed to release unit of work")
		}

		metrics.UnitsOfWorkInFlight.Dec()
		metrics.UnitsOfWorkTotal.WithLabelValues(outcome).Inc()
		metrics.UnitOfWorkDuration.Observe(time.Since(start).Seconds())
	}()

	return fn(ctx, p.newScope(uow))
}

// Ping checks the pool, opening it if needed.
func (p *Provider) Ping(ctx context.Context) error {
	pool, err := p.pool()
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Close closes the pool if it was ever opened.
func (p *Provider) Close() {
	if !p.opened.Load() {
		return
	}
	if pool, err := p.pool(); err == nil {
		pool.Close()
	}
}

type requestScope struct {
	auth  *service.AuthService
	todos *service.TodoService
}

func (s *requestScope) Auth() ports.AuthService  { return s.auth }
func (s *requestScope) Todos() ports.TodoService { return s.todos }

// newScope wires every repository and service on the same unit of work.
func (p *Provider) newScope(uow *postgres.UnitOfWork) *requestScope {
	users := postgres.NewUserRepository(uow)
	sessions := postgres.NewSessionRepository(uow)
	todos := postgres.NewTodoRepository(uow)

	authn := service.NewAuthenticationService(sessions, p.deps.Sessions)

	return &requestScope{
		auth:  service.NewAuthService(users, authn, uow, p.deps.Hasher, p.deps.Auditor, p.deps.Log),
		todos: service.NewTodoService(todos, users, uow, p.deps.MaxTodos, p.deps.Log),
	}
}

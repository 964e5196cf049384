package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/todoapp/todo-service/internal/core/ports"
)

const defaultSweepInterval = time.Hour

// SessionSweeper periodically deletes expired sessions. Each pass runs in its
// own request scope so it shares nothing with in-flight HTTP requests.
type SessionSweeper struct {
	runner   ports.ScopeRunner
	interval time.Duration
	log      zerolog.Logger
}

// NewSessionSweeper creates a sweeper. If interval <= 0, defaultSweepInterval is used.
func NewSessionSweeper(runner ports.ScopeRunner, interval time.Duration, log zerolog.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &SessionSweeper{runner: runner, interval: interval, log: log}
}

// Run sweeps once per interval until ctx is cancelled. It blocks.
func (s *SessionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.log.Error().Err(err).Msg("session sweep failed")
			}
		}
	}
}

// Start runs the sweeper in the background. The returned stop cancels it and
// waits for any in-flight sweep to finish.
func (s *SessionSweeper) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// SweepOnce deletes every expired session and returns how many were removed.
func (s *SessionSweeper) SweepOnce(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.runner.WithScope(ctx, func(ctx context.Context, sc ports.Scope) error {
		n, err := sc.Auth().CleanupExpiredSessions(ctx)
		deleted = n
		return err
	})
	return deleted, err
}

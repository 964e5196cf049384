package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"github.com/todoapp/todo-service/internal/core/ports"
)

// fixtureRunner runs every scope against the same fixture and signals after each.
type fixtureRunner struct {
	f     *fixture
	err   error
	swept chan struct{}
}

func (r *fixtureRunner) WithScope(ctx context.Context, fn func(ctx context.Context, s ports.Scope) error) error {
	if r.err != nil {
		return r.err
	}
	err := fn(ctx, r.f)
	if r.swept != nil {
		select {
		case r.swept <- struct{}{}:
		default:
		}
	}
	return err
}

func TestSessionSweeper_SweepOnce(t *testing.T) {
	f := newFixture(t)
	a := f.signUp(t, "alice")
	f.signUp(t, "bob")
	if err := f.auth.SignOut(context.Background(), a.Session.ID); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	sweeper := NewSessionSweeper(&fixtureRunner{f: f}, time.Minute, zerolog.Nop())
	n, err := sweeper.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if n != 1 || f.sessions.len() != 1 {
		t.Fatalf("expected one session swept, got n=%d remaining=%d", n, f.sessions.len())
	}
}

func TestSessionSweeper_SweepOnce_ScopeError(t *testing.T) {
	boom := errors.New("pool unavailable")
	sweeper := NewSessionSweeper(&fixtureRunner{err: boom}, time.Minute, zerolog.Nop())

	if _, err := sweeper.SweepOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected scope error, got %v", err)
	}
}

func TestSessionSweeper_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t)
	a := f.signUp(t, "alice")
	if err := f.auth.SignOut(context.Background(), a.Session.ID); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	runner := &fixtureRunner{f: f, swept: make(chan struct{}, 1)}
	sweeper := NewSessionSweeper(runner, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	select {
	case <-runner.swept:
	case <-time.After(2 * time.Second):
		t.Fatalf("sweeper never ran")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("sweeper did not stop after cancel")
	}

	if f.sessions.len() != 0 {
		t.Fatalf("expected the expired session to be swept, %d remain", f.sessions.len())
	}
}

// blockingRunner holds each scope open until release is closed.
type blockingRunner struct {
	entered  chan struct{}
	release  chan struct{}
	finished chan struct{}
	once     sync.Once
}

func (r *blockingRunner) WithScope(ctx context.Context, _ func(ctx context.Context, s ports.Scope) error) error {
	select {
	case r.entered <- struct{}{}:
	default:
	}
	<-r.release
	r.once.Do(func() { close(r.finished) })
	return nil
}

func TestSessionSweeper_StopWaitsForInFlightSweep(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &blockingRunner{
		entered:  make(chan struct{}, 1),
		release:  make(chan struct{}),
		finished: make(chan struct{}),
	}
	stop := NewSessionSweeper(runner, 5*time.Millisecond, zerolog.Nop()).Start(context.Background())

	select {
	case <-runner.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("sweeper never ran")
	}

	stopped := make(chan struct{})
	go func() {
		stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatalf("stop returned while a sweep was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(runner.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("stop did not return after the sweep finished")
	}

	select {
	case <-runner.finished:
	default:
		t.Fatalf("sweep must finish before stop returns")
	}
}

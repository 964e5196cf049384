package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/todoapp/todo-service/internal/core/ports"
	"github.com/todoapp/todo-service/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

var (
	ErrQueueFull   = errors.New("audit queue full")
	ErrQueueClosed = errors.New("audit queue closed")
)

// AuditDispatcher moves auth audit writes off the request path. Events are
// routed to a fixed set of workers by consistent hashing on the username,
// which keeps each user's events in order.
type AuditDispatcher struct {
	workers []chan ports.AuthEvent
	sink    ports.AuthAuditor
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAuditDispatcher creates an AuditDispatcher writing to sink with
// numWorkers sharded workers. If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(sink ports.AuthAuditor, numWorkers int, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan ports.AuthEvent, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AuthEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers run until Close.
func (d *AuditDispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Record implements ports.AuthAuditor. It never blocks: a full shard drops
// the event and returns ErrQueueFull.
func (d *AuditDispatcher) Record(_ context.Context, event ports.AuthEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.AuditEventsDroppedTotal.Inc()
		return ErrQueueClosed
	}

	select {
	case d.workers[d.shardIndex(event.Username)] <- event:
		return nil
	default:
		metrics.AuditEventsDroppedTotal.Inc()
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for the queued ones to be written.
func (d *AuditDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps a username deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *AuditDispatcher) runWorker(id int, ch <-chan ports.AuthEvent) {
	defer d.wg.Done()

	for event := range ch {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := d.sink.Record(ctx, event)
		cancel()
		if err != nil {
			d.log.Error().Err(err).
				Str("event", string(event.Type)).
				Str("username", event.Username).
				Int("worker_id", id).
				Msg("audit write failed")
		}
	}
}

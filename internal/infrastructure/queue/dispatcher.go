package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/itdesk/helpdesk-api/internal/core/domain"
	"github.com/itdesk/helpdesk-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// AuditDispatcher moves audit writes off the request path. Entries are routed
// to a fixed set of workers by target user, so the trail of a single user is
// written in order. It implements ports.AuditRepository; reads go straight to
// the underlying store.
type AuditDispatcher struct {
	workers []chan domain.AuditEntry
	store   ports.AuditRepository
	log     zerolog.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewAuditDispatcher creates an AuditDispatcher with numWorkers sharded
// workers writing to store. If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, store ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.AuditEntry, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEntry, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. They run until Stop.
func (d *AuditDispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Stop closes the queues and waits for queued entries to be written, or for
// ctx to expire.
func (d *AuditDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Record enqueues entry without blocking. A full queue drops the entry with a
// warning, matching the non-fatal contract of audit writes.
func (d *AuditDispatcher) Record(_ context.Context, entry *domain.AuditEntry) error {
	e := *entry
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("action", string(e.Action)).Msg("audit dispatcher stopped, entry dropped")
		return nil
	}

	select {
	case d.workers[d.shardIndex(e.TargetID)] <- e:
	default:
		d.log.Warn().
			Str("action", string(e.Action)).
			Str("target", e.TargetUsername).
			Msg("audit queue full, entry dropped")
	}
	return nil
}

// Recent reads from the underlying store.
func (d *AuditDispatcher) Recent(ctx context.Context, limit int) ([]*domain.AuditEntry, error) {
	return d.store.Recent(ctx, limit)
}

// shardIndex maps a target id deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(targetID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(targetID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *AuditDispatcher) runWorker(id int, ch <-chan domain.AuditEntry) {
	defer d.wg.Done()
	for entry := range ch {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := d.store.Record(ctx, &entry); err != nil {
			d.log.Error().Err(err).
				Str("action", string(entry.Action)).
				Str("target", entry.TargetUsername).
				Int("worker_id", id).
				Msg("audit write failed")
		}
		cancel()
	}
}

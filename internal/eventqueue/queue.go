// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package eventqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/focusguard/internal/config"
	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/metrics"
	"github.com/tomtom215/focusguard/internal/recorder"
	"github.com/tomtom215/focusguard/internal/wal"
)

// ErrQueueClosed is returned by Serve after the queue has shut down.
var ErrQueueClosed = errors.New("event queue closed")

// Deliverer persists one event. *recorder.Recorder implements it.
type Deliverer interface {
	RecordEvent(ctx context.Context, e recorder.Event) (*recorder.Event, error)
}

// WAL is the subset of the write-ahead log used by the queue.
type WAL interface {
	Write(ctx context.Context, payload interface{}) (string, error)
	Confirm(ctx context.Context, entryID string) error
	Delete(ctx context.Context, entryID string) error
	UpdateAttempt(ctx context.Context, entryID string, lastError string) error
	GetPending(ctx context.Context) ([]*wal.Entry, error)
}

// Item is the unit persisted in the WAL.
type Item struct {
	Event recorder.Event `json:"event"`
}

// Config controls buffering, retries and the breaker.
type Config struct {
	BufferSize       int
	Workers          int
	MaxAttempts      int
	BaseBackoff      time.Duration
	MaxBackoff       time.Duration
	DeliveryTimeout  time.Duration
	BreakerThreshold uint32
	BreakerTimeout   time.Duration
	// EntryTTL bounds how old a replayed WAL entry may be.
	EntryTTL time.Duration
}

// ConfigFrom maps the queue and wal sections of the service configuration.
func ConfigFrom(q config.QueueConfig, w config.WALConfig) Config {
	return Config{
		BufferSize:       q.BufferSize,
		Workers:          q.Workers,
		MaxAttempts:      q.MaxAttempts,
		BaseBackoff:      q.BaseBackoff,
		MaxBackoff:       q.MaxBackoff,
		DeliveryTimeout:  q.DeliveryTimeout,
		BreakerThreshold: q.BreakerThreshold,
		BreakerTimeout:   q.BreakerTimeout,
		EntryTTL:         w.EntryTTL,
	}
}

// Stats is a point-in-time view of the queue.
type Stats struct {
	Depth        int    `json:"depth"`
	InFlight     int    `json:"in_flight"`
	Enqueued     uint64 `json:"enqueued"`
	Delivered    uint64 `json:"delivered"`
	Dropped      uint64 `json:"dropped"`
	Retries      uint64 `json:"retries"`
	BreakerState string `json:"breaker_state"`
	Closed       bool   `json:"closed"`
}

type job struct {
	item     Item
	walID    string
	attempts int
}

// Queue is a bounded asynchronous delivery queue.
type Queue struct {
	cfg     Config
	deliver Deliverer
	wal     WAL
	breaker *gobreaker.CircuitBreaker[*recorder.Event]
	jobs    chan job

	mu      sync.Mutex
	closed  bool
	pending int
	idle    chan struct{}

	enqueued  atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	retries   atomic.Uint64
}

// New creates a queue. w may be nil to run without durability.
func New(cfg Config, deliver Deliverer, w WAL) *Queue {
	if cfg.BufferSize < 1 {
		cfg.BufferSize = 1024
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 100 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.BaseBackoff {
		cfg.MaxBackoff = cfg.BaseBackoff
	}
	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = 5
	}

	idle := make(chan struct{})
	close(idle)
	return &Queue{
		cfg:     cfg,
		deliver: deliver,
		wal:     w,
		breaker: newBreaker("recorder", cfg),
		jobs:    make(chan job, cfg.BufferSize),
		idle:    idle,
	}
}

func newBreaker(name string, cfg Config) *gobreaker.CircuitBreaker[*recorder.Event] {
	return gobreaker.NewCircuitBreaker[*recorder.Event](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
		// rejected events say nothing about recorder health
		IsSuccessful: func(err error) bool {
			return err == nil || permanent(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordBreakerTransition(name, from.String(), to.String(), int(to))
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})
}

// permanent reports errors that retrying cannot fix.
func permanent(err error) bool {
	return errors.Is(err, recorder.ErrInvalidSessionID) ||
		errors.Is(err, recorder.ErrSessionNotFound) ||
		errors.Is(err, recorder.ErrInvalidEvent)
}

// Enqueue hands e to the workers. It never blocks: it returns false and
// drops the event when the queue is full or closed. An empty event ID is
// filled in so that retried deliveries are idempotent.
func (q *Queue) Enqueue(e recorder.Event) bool {
	if e.ID == "" {
		e.ID = recorder.NewID()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.drop("closed", e, nil)
		return false
	}
	select {
	case q.jobs <- job{item: Item{Event: e}}:
		q.begin()
		q.enqueued.Add(1)
		metrics.QueueEnqueued.Inc()
		metrics.QueueDepth.Set(float64(len(q.jobs)))
		return true
	default:
		q.drop("full", e, nil)
		return false
	}
}

// begin and finish track events that are queued or being delivered.
// begin must be called with q.mu held.
func (q *Queue) begin() {
	if q.pending == 0 {
		q.idle = make(chan struct{})
	}
	q.pending++
}

func (q *Queue) finish() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending--
	if q.pending == 0 {
		close(q.idle)
	}
}

// Flush waits until every accepted event has been delivered or dropped, or
// ctx is done.
func (q *Queue) Flush(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flush: %w", ctx.Err())
	}
}

// Stats returns current counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	pending, closed := q.pending, q.closed
	q.mu.Unlock()
	depth := len(q.jobs)
	return Stats{
		Depth:        depth,
		InFlight:     pending - depth,
		Enqueued:     q.enqueued.Load(),
		Delivered:    q.delivered.Load(),
		Dropped:      q.dropped.Load(),
		Retries:      q.retries.Load(),
		BreakerState: q.breaker.State().String(),
		Closed:       closed,
	}
}

// Serve runs the delivery workers until ctx is canceled. Pending WAL entries
// from a previous run are replayed first. On shutdown, events still in the
// buffer are left in the WAL (or dropped without one).
func (q *Queue) Serve(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.mu.Unlock()

	logging.Info().
		Int("workers", q.cfg.Workers).
		Int("buffer", q.cfg.BufferSize).
		Bool("wal", q.wal != nil).
		Msg("Event queue started")

	var wg sync.WaitGroup
	for i := 0; i < q.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.work(ctx)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		q.replay(ctx)
	}()

	<-ctx.Done()
	wg.Wait()
	q.shutdown()
	return ctx.Err()
}

func (q *Queue) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-q.jobs:
			metrics.QueueDepth.Set(float64(len(q.jobs)))
			q.process(ctx, j)
		}
	}
}

func (q *Queue) replay(ctx context.Context) {
	if q.wal == nil {
		return
	}
	entries, err := q.wal.GetPending(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to read pending WAL entries")
		return
	}
	if len(entries) > 0 {
		logging.Info().Int("entries", len(entries)).Msg("Replaying pending recorder deliveries")
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		var item Item
		if err := entry.UnmarshalPayload(&item); err != nil {
			logging.Warn().Err(err).Str("entry_id", entry.ID).Msg("Discarding unreadable WAL entry")
			_ = q.wal.Delete(ctx, entry.ID)
			continue
		}
		if q.cfg.EntryTTL > 0 && time.Since(entry.CreatedAt) > q.cfg.EntryTTL {
			q.drop("expired", item.Event, nil)
			_ = q.wal.Delete(ctx, entry.ID)
			continue
		}
		q.mu.Lock()
		q.begin()
		q.mu.Unlock()
		q.process(ctx, job{item: item, walID: entry.ID, attempts: entry.Attempts})
	}
}

func (q *Queue) process(ctx context.Context, j job) {
	defer q.finish()

	if q.wal != nil && j.walID == "" {
		id, err := q.wal.Write(ctx, j.item)
		if err != nil {
			logging.Warn().Err(err).Str("session_id", j.item.Event.SessionID).Msg("WAL write failed, delivering without durability")
		}
		j.walID = id
	}

	log := logging.With().Str("session_id", j.item.Event.SessionID).Str("event_id", j.item.Event.ID).Logger()
	var lastErr error
	for ; j.attempts < q.cfg.MaxAttempts; j.attempts++ {
		if j.attempts > 0 {
			q.retries.Add(1)
			metrics.QueueRetries.Inc()
			if !sleepCtx(ctx, q.backoff(j.attempts-1)) {
				// shutting down; the WAL entry (if any) is replayed next start
				return
			}
		}

		lastErr = q.attempt(ctx, j.item.Event)
		if lastErr == nil {
			q.delivered.Add(1)
			metrics.QueueDelivered.Inc()
			q.confirm(ctx, j.walID)
			return
		}
		if permanent(lastErr) {
			log.Warn().Err(lastErr).Msg("Recorder rejected event, dropping")
			q.drop("rejected", j.item.Event, nil)
			q.forget(ctx, j.walID)
			return
		}
		if ctx.Err() != nil {
			return
		}
		log.Debug().Err(lastErr).Int("attempt", j.attempts+1).Msg("Event delivery failed")
		if j.walID != "" {
			_ = q.wal.UpdateAttempt(ctx, j.walID, lastErr.Error())
		}
	}

	q.drop("exhausted", j.item.Event, lastErr)
	q.forget(ctx, j.walID)
}

func (q *Queue) attempt(ctx context.Context, e recorder.Event) error {
	dctx, cancel := ctx, context.CancelFunc(func() {})
	if q.cfg.DeliveryTimeout > 0 {
		dctx, cancel = context.WithTimeout(ctx, q.cfg.DeliveryTimeout)
	}
	defer cancel()
	_, err := q.breaker.Execute(func() (*recorder.Event, error) {
		return q.deliver.RecordEvent(dctx, e)
	})
	return err
}

// backoff returns base * 2^attempt, capped at MaxBackoff.
func (q *Queue) backoff(attempt int) time.Duration {
	d := q.cfg.BaseBackoff
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= q.cfg.MaxBackoff {
			return q.cfg.MaxBackoff
		}
	}
	return d
}

func (q *Queue) confirm(ctx context.Context, walID string) {
	if walID == "" {
		return
	}
	if err := q.wal.Confirm(ctx, walID); err != nil {
		logging.Warn().Err(err).Str("entry_id", walID).Msg("Failed to confirm WAL entry")
	}
}

func (q *Queue) forget(ctx context.Context, walID string) {
	if walID == "" {
		return
	}
	if err := q.wal.Delete(ctx, walID); err != nil && !errors.Is(err, wal.ErrEntryNotFound) {
		logging.Warn().Err(err).Str("entry_id", walID).Msg("Failed to delete WAL entry")
	}
}

func (q *Queue) drop(reason string, e recorder.Event, err error) {
	q.dropped.Add(1)
	metrics.QueueDropped.WithLabelValues(reason).Inc()
	ev := logging.Warn().
		Str("reason", reason).
		Str("session_id", e.SessionID).
		Str("type", string(e.Type)).
		Str("message", e.Message)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("Dropped recorder event")
}

// shutdown closes the queue and accounts for events left in the buffer.
// With a WAL they are persisted for the next run.
func (q *Queue) shutdown() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case j := <-q.jobs:
			if q.wal != nil {
				if _, err := q.wal.Write(ctx, j.item); err == nil {
					q.finish()
					continue
				}
			}
			q.drop("shutdown", j.item.Event, nil)
			q.finish()
		default:
			metrics.QueueDepth.Set(0)
			logging.Info().Msg("Event queue stopped")
			return
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (q *Queue) String() string { return "event-queue" }

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

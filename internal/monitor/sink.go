// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package monitor

import (
	"context"
	"time"

	"github.com/tomtom215/focusguard/internal/detection"
	"github.com/tomtom215/focusguard/internal/eventbus"
	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/metrics"
	"github.com/tomtom215/focusguard/internal/recorder"
)

// Enqueuer is implemented by *eventqueue.Queue.
type Enqueuer interface {
	Enqueue(e recorder.Event) bool
}

// Publisher is implemented by *eventbus.Bus.
type Publisher interface {
	PublishAnomaly(ctx context.Context, a eventbus.AnomalyMessage) error
}

// FanoutSink forwards detector events to the recorder queue and the event
// bus. Emit never blocks: bus publishes go through a bounded buffer drained
// by Serve and are dropped when it is full.
type FanoutSink struct {
	queue   Enqueuer
	bus     Publisher
	pending chan eventbus.AnomalyMessage
	timeout time.Duration
}

// NewFanoutSink builds a sink. Either target may be nil.
func NewFanoutSink(queue Enqueuer, bus Publisher) *FanoutSink {
	return &FanoutSink{
		queue:   queue,
		bus:     bus,
		pending: make(chan eventbus.AnomalyMessage, 256),
		timeout: 5 * time.Second,
	}
}

// Emit implements EventSink. The recorder event and the bus message share
// one ID.
func (s *FanoutSink) Emit(sess Session, e detection.Event) {
	id := recorder.NewID()
	if s.queue != nil {
		s.queue.Enqueue(recorder.Event{
			ID:        id,
			SessionID: sess.ID,
			Timestamp: e.Timestamp,
			Type:      e.Type,
			Message:   e.Message,
		})
	}
	if s.bus == nil {
		return
	}
	select {
	case s.pending <- eventbus.NewAnomalyMessage(id, sess.ID, sess.CandidateName, e):
	default:
		metrics.BusPublished.WithLabelValues("dropped").Inc()
		logging.Warn().Str("session_id", sess.ID).Msg("Anomaly publish buffer full, dropping")
	}
}

// Serve publishes buffered anomalies until ctx is canceled.
func (s *FanoutSink) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case a := <-s.pending:
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			if err := s.bus.PublishAnomaly(pctx, a); err != nil {
				logging.Debug().Err(err).Str("session_id", a.SessionID).Msg("Anomaly publish failed")
			}
			cancel()
		}
	}
}

func (s *FanoutSink) String() string { return "anomaly-fanout" }

// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/focusguard/internal/config"
	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/metrics"
)

// ErrBusClosed is returned by operations on a closed bus.
var ErrBusClosed = errors.New("event bus closed")

const (
	BackendInProcess = "gochannel"
	BackendNATS      = "nats"

	// maxDeliver bounds redelivery of a message whose handler keeps failing.
	maxDeliver = 5
)

// Handler consumes one anomaly. Returning an error nacks the message.
type Handler func(ctx context.Context, a AnomalyMessage) error

// Bus publishes anomalies and hands them to named consumers.
type Bus struct {
	topic     string
	backend   string
	publisher message.Publisher
	subscribe func(name string) (message.Subscriber, error)
	breaker   *gobreaker.CircuitBreaker[interface{}]
	logger    watermill.LoggerAdapter
	server    *EmbeddedServer

	mu          sync.Mutex
	closed      bool
	subscribers []message.Subscriber
}

func newLogger() watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger())
}

// NewInProcess returns a bus backed by a Watermill GoChannel.
// Every consumer receives every message.
func NewInProcess(topic string) *Bus {
	logger := newLogger()
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
	b := &Bus{
		topic:     topic,
		backend:   BackendInProcess,
		publisher: ch,
		logger:    logger,
	}
	b.subscribe = func(string) (message.Subscriber, error) { return ch, nil }
	b.breaker = newBreaker("eventbus")
	return b
}

// New builds the bus described by cfg: in-process unless NATS is enabled.
func New(cfg config.NATSConfig) (*Bus, error) {
	if !cfg.Enabled {
		return NewInProcess(cfg.Topic), nil
	}

	var srv *EmbeddedServer
	url := cfg.URL
	if cfg.EmbeddedServer {
		s, err := NewEmbeddedServer(cfg)
		if err != nil {
			return nil, err
		}
		srv = s
		url = s.ClientURL()
	}

	logger := newLogger()
	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOptions(cfg, logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		if srv != nil {
			_ = srv.Shutdown(context.Background())
		}
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	b := &Bus{
		topic:     cfg.Topic,
		backend:   BackendNATS,
		publisher: pub,
		logger:    logger,
		server:    srv,
		breaker:   newBreaker("eventbus"),
	}
	// one queue group per consumer name, so each consumer sees every anomaly
	b.subscribe = func(name string) (message.Subscriber, error) {
		group := cfg.QueueGroup + "-" + name
		return wmNats.NewSubscriber(wmNats.SubscriberConfig{
			URL:              url,
			QueueGroupPrefix: group,
			SubscribersCount: 1,
			AckWaitTimeout:   cfg.AckWait,
			CloseTimeout:     30 * time.Second,
			NatsOptions:      natsOptions(cfg, logger),
			Unmarshaler:      &wmNats.NATSMarshaler{},
			JetStream: wmNats.JetStreamConfig{
				AutoProvision: true,
				DurablePrefix: group,
				SubscribeOptions: []natsgo.SubOpt{
					natsgo.DeliverNew(),
					natsgo.AckWait(cfg.AckWait),
					natsgo.MaxDeliver(maxDeliver),
				},
			},
		}, logger)
	}

	logging.Info().Str("url", url).Str("topic", cfg.Topic).Bool("embedded", srv != nil).Msg("Event bus connected to NATS")
	return b, nil
}

func natsOptions(cfg config.NATSConfig, logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[interface{}] {
	return gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordBreakerTransition(name, from.String(), to.String(), int(to))
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})
}

// Backend names the transport in use.
func (b *Bus) Backend() string { return b.backend }

// Topic is the anomaly topic.
func (b *Bus) Topic() string { return b.topic }

// BreakerState reports the publish breaker state.
func (b *Bus) BreakerState() string { return b.breaker.State().String() }

// PublishAnomaly publishes a to the anomaly topic.
func (b *Bus) PublishAnomaly(_ context.Context, a AnomalyMessage) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrBusClosed
	}
	if a.ID == "" {
		a.ID = watermill.NewUUID()
	}

	msg, err := encode(a)
	if err != nil {
		return err
	}
	msg.Metadata.Set(natsgo.MsgIdHdr, a.ID)

	_, err = b.breaker.Execute(func() (interface{}, error) {
		return nil, b.publisher.Publish(b.topic, msg)
	})
	metrics.BusPublished.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("publish anomaly: %w", err)
	}
	return nil
}

// Consume delivers anomalies to h until ctx is canceled. Messages that
// fail to decode are acked and discarded. Handler errors nack the message
// after a short backoff; a message failing maxDeliver times is dropped.
func (b *Bus) Consume(ctx context.Context, name string, h Handler) error {
	sub, err := b.subscriber(name)
	if err != nil {
		return err
	}
	messages, err := sub.Subscribe(ctx, b.topic)
	if err != nil {
		return fmt.Errorf("subscribe %s to %s: %w", name, b.topic, err)
	}

	log := logging.With().Str("consumer", name).Str("topic", b.topic).Logger()
	log.Debug().Msg("Bus consumer started")

	failures := make(map[string]int)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			a, err := decode(msg)
			if err != nil {
				log.Warn().Err(err).Msg("Discarding undecodable anomaly")
				msg.Ack()
				continue
			}
			if err := h(ctx, a); err != nil {
				failures[msg.UUID]++
				n := failures[msg.UUID]
				if n >= maxDeliver {
					delete(failures, msg.UUID)
					log.Error().Err(err).Str("anomaly_id", a.ID).Int("attempts", n).Msg("Anomaly handler failed, giving up")
					msg.Ack()
					continue
				}
				log.Warn().Err(err).Str("anomaly_id", a.ID).Int("attempts", n).Msg("Anomaly handler failed")
				if !sleepCtx(ctx, nackDelay(n)) {
					msg.Nack()
					return ctx.Err()
				}
				msg.Nack()
				continue
			}
			delete(failures, msg.UUID)
			msg.Ack()
		}
	}
}

func (b *Bus) subscriber(name string) (message.Subscriber, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	sub, err := b.subscribe(name)
	if err != nil {
		return nil, fmt.Errorf("create subscriber %s: %w", name, err)
	}
	if b.backend == BackendNATS {
		b.subscribers = append(b.subscribers, sub)
	}
	return sub, nil
}

func nackDelay(attempt int) time.Duration {
	d := 100 * time.Millisecond << uint(attempt-1)
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

// Close shuts down subscribers, the publisher and the embedded server.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subscribers
	b.subscribers = nil
	b.mu.Unlock()

	var errs []error
	for _, s := range subs {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	if b.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := b.server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Consumer adapts one named consumer to a supervisor service.
type Consumer struct {
	bus     *Bus
	name    string
	handler Handler
}

// Consumer returns a service that runs h under name.
func (b *Bus) Consumer(name string, h Handler) *Consumer {
	return &Consumer{bus: b, name: name, handler: h}
}

// Serve implements suture.Service.
func (c *Consumer) Serve(ctx context.Context) error {
	return c.bus.Consume(ctx, c.name, c.handler)
}

func (c *Consumer) String() string { return "bus-consumer-" + c.name }

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

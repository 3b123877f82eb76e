// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/focusguard/internal/detection"
)

const pingCategory detection.Category = "ping"

// collector records anomalies delivered to a consumer.
type collector struct {
	mu       sync.Mutex
	got      []AnomalyMessage
	pinged   chan struct{}
	once     sync.Once
	failures int
}

func newCollector() *collector {
	return &collector{pinged: make(chan struct{})}
}

func (c *collector) handle(_ context.Context, a AnomalyMessage) error {
	if a.Category == pingCategory {
		c.once.Do(func() { close(c.pinged) })
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures > 0 {
		c.failures--
		return errors.New("downstream unavailable")
	}
	c.got = append(c.got, a)
	return nil
}

func (c *collector) received() []AnomalyMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]AnomalyMessage(nil), c.got...)
}

// runConsumer starts a consumer and waits until it is subscribed. The
// in-process bus does not retain messages published before a subscriber
// exists, so readiness is probed with ping messages.
func runConsumer(t *testing.T, b *Bus, name string, c *collector) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = b.Consume(ctx, name, c.handle)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	deadline := time.After(5 * time.Second)
	for {
		_ = b.PublishAnomaly(context.Background(), AnomalyMessage{Category: pingCategory})
		select {
		case <-c.pinged:
			return
		case <-deadline:
			t.Fatal("consumer never subscribed")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func sampleAnomaly() AnomalyMessage {
	ev := detection.Event{
		Category:  detection.CategoryMultipleFaces,
		Type:      detection.TypeAlert,
		Message:   "Multiple faces detected: 2 people in frame",
		Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		FaceCount: 2,
	}
	return NewAnomalyMessage("", "65e1a2b3c4d5e6f708192a3b", "Ada", ev)
}

func TestInProcess_PublishConsume(t *testing.T) {
	b := NewInProcess("anomalies")
	defer b.Close()
	if b.Backend() != BackendInProcess {
		t.Errorf("Backend = %q", b.Backend())
	}

	c := newCollector()
	runConsumer(t, b, "test", c)

	if err := b.PublishAnomaly(context.Background(), sampleAnomaly()); err != nil {
		t.Fatalf("PublishAnomaly: %v", err)
	}
	waitFor(t, func() bool { return len(c.received()) == 1 })

	got := c.received()[0]
	if got.SessionID != "65e1a2b3c4d5e6f708192a3b" || got.FaceCount != 2 || got.Type != detection.TypeAlert {
		t.Errorf("received %+v", got)
	}
	if got.ID == "" {
		t.Error("published anomaly has no ID")
	}
}

func TestInProcess_EveryConsumerReceives(t *testing.T) {
	b := NewInProcess("anomalies")
	defer b.Close()

	ws, hook := newCollector(), newCollector()
	runConsumer(t, b, "websocket", ws)
	runConsumer(t, b, "webhook", hook)

	if err := b.PublishAnomaly(context.Background(), sampleAnomaly()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return len(ws.received()) == 1 && len(hook.received()) == 1 })
}

func TestInProcess_HandlerErrorRedelivers(t *testing.T) {
	b := NewInProcess("anomalies")
	defer b.Close()

	c := newCollector()
	runConsumer(t, b, "flaky", c)
	c.mu.Lock()
	c.failures = 2
	c.mu.Unlock()

	if err := b.PublishAnomaly(context.Background(), sampleAnomaly()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return len(c.received()) == 1 })
}

func TestInProcess_UndecodableMessageDiscarded(t *testing.T) {
	b := NewInProcess("anomalies")
	defer b.Close()

	c := newCollector()
	runConsumer(t, b, "test", c)

	if err := b.publisher.Publish(b.topic, message.NewMessage("bad", []byte("{not json"))); err != nil {
		t.Fatal(err)
	}
	if err := b.PublishAnomaly(context.Background(), sampleAnomaly()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return len(c.received()) == 1 })
}

func TestPublishAfterClose(t *testing.T) {
	b := NewInProcess("anomalies")
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := b.PublishAnomaly(context.Background(), sampleAnomaly()); !errors.Is(err, ErrBusClosed) {
		t.Errorf("PublishAnomaly = %v, want ErrBusClosed", err)
	}
	if err := b.Consume(context.Background(), "late", newCollector().handle); !errors.Is(err, ErrBusClosed) {
		t.Errorf("Consume = %v, want ErrBusClosed", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestNewAnomalyMessage(t *testing.T) {
	ev := detection.Event{
		Category:   detection.CategorySuspiciousObject,
		Type:       detection.TypeAlert,
		Message:    "Suspicious object detected: cell phone (91.0% confidence)",
		Timestamp:  time.Unix(1700000000, 0).UTC(),
		Elapsed:    1500 * time.Millisecond,
		Label:      "cell phone",
		Confidence: 0.91,
	}
	a := NewAnomalyMessage("id-1", "sess", "Grace", ev)
	if a.ElapsedMS != 1500 || a.Label != "cell phone" || a.CandidateName != "Grace" || a.ID != "id-1" {
		t.Errorf("NewAnomalyMessage = %+v", a)
	}

	msg, err := encode(a)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Metadata.Get(metaCategory) != string(detection.CategorySuspiciousObject) {
		t.Errorf("category metadata = %q", msg.Metadata.Get(metaCategory))
	}
	back, err := decode(msg)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Timestamp.Equal(a.Timestamp) || back.Message != a.Message {
		t.Errorf("decode = %+v", back)
	}
}

func TestNackDelay(t *testing.T) {
	if d := nackDelay(1); d != 100*time.Millisecond {
		t.Errorf("nackDelay(1) = %v", d)
	}
	if d := nackDelay(3); d != 400*time.Millisecond {
		t.Errorf("nackDelay(3) = %v", d)
	}
	if d := nackDelay(20); d != 5*time.Second {
		t.Errorf("nackDelay(20) = %v", d)
	}
}

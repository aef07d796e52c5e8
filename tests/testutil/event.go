package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erp/stockcore/internal/domain/shared"
)

// eventLog is the thread-safe record behind the fakes below.
type eventLog struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func (l *eventLog) record(events ...shared.DomainEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, events...)
	return l.err
}

func (l *eventLog) snapshot() []shared.DomainEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]shared.DomainEvent(nil), l.events...)
}

func (l *eventLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// SetError makes every later call fail with err. Events are still recorded.
func (l *eventLog) SetError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

// MockEventHandler is a shared.EventHandler that records what it receives.
type MockEventHandler struct {
	eventLog
	eventTypes []string
}

// NewMockEventHandler subscribes to eventTypes, or to everything when none are given.
func NewMockEventHandler(eventTypes ...string) *MockEventHandler {
	return &MockEventHandler{eventTypes: eventTypes}
}

func (h *MockEventHandler) EventTypes() []string { return h.eventTypes }

func (h *MockEventHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	return h.record(event)
}

// Handled returns the received events in delivery order.
func (h *MockEventHandler) Handled() []shared.DomainEvent { return h.snapshot() }

func (h *MockEventHandler) HandledCount() int { return h.count() }

// RecordingPublisher is a shared.EventPublisher that keeps everything it is
// given, in order.
type RecordingPublisher struct {
	eventLog
}

func (p *RecordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	return p.record(events...)
}

// Events returns the recorded events.
func (p *RecordingPublisher) Events() []shared.DomainEvent { return p.snapshot() }

// Types returns the recorded event types in publish order.
func (p *RecordingPublisher) Types() []string {
	events := p.snapshot()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

// TestEvent is a bare domain event on a throwaway aggregate.
type TestEvent struct {
	shared.BaseDomainEvent
	Data string
}

func NewTestEvent(eventType string) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test-data",
	}
}

// WaitForEventCount polls until handler has seen at least count events.
// It reports false on timeout.
func WaitForEventCount(handler *MockEventHandler, count int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	tick := time.NewTicker(5 * time.Millisecond)
	defer tick.Stop()
	for {
		if handler.HandledCount() >= count {
			return true
		}
		select {
		case <-deadline:
			return handler.HandledCount() >= count
		case <-tick.C:
		}
	}
}

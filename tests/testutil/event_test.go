package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventHandler_Handle(t *testing.T) {
	handler := NewMockEventHandler("TestEvent")
	event := NewTestEvent("TestEvent")

	err := handler.Handle(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, []string{"TestEvent"}, handler.EventTypes())
	assert.Equal(t, 1, handler.HandledCount())
	assert.Equal(t, event, handler.Handled()[0])
}

func TestMockEventHandler_SetError(t *testing.T) {
	handler := NewMockEventHandler("TestEvent")
	handler.SetError(assert.AnError)

	err := handler.Handle(context.Background(), NewTestEvent("TestEvent"))
	assert.Equal(t, assert.AnError, err)
}

func TestNewTestEvent(t *testing.T) {
	first, second := NewTestEvent("CustomEvent"), NewTestEvent("CustomEvent")

	assert.NotEqual(t, first.EventID(), second.EventID())
	assert.Equal(t, "CustomEvent", first.EventType())
	assert.Equal(t, "TestAggregate", first.AggregateType())
	assert.False(t, first.OccurredAt().IsZero())
}

func TestRecordingPublisher(t *testing.T) {
	p := &RecordingPublisher{}
	first, second := NewTestEvent("A"), NewTestEvent("B")

	require.NoError(t, p.Publish(context.Background(), first, second))
	p.SetError(assert.AnError)
	assert.Equal(t, assert.AnError, p.Publish(context.Background(), NewTestEvent("C")))

	assert.Equal(t, []string{"A", "B", "C"}, p.Types())
	assert.Len(t, p.Events(), 3)
}

func TestWaitForEventCount(t *testing.T) {
	handler := NewMockEventHandler()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		_ = handler.Handle(context.Background(), NewTestEvent("TestEvent"))
		_ = handler.Handle(context.Background(), NewTestEvent("TestEvent"))
	}()

	assert.True(t, WaitForEventCount(handler, 2, time.Second))
	wg.Wait()
	assert.False(t, WaitForEventCount(handler, 3, 20*time.Millisecond))
}

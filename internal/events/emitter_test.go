package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	events []*TaskRequestEvent
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *TaskRequestEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	newEvent := func(t *testing.T, eventType string) *TaskRequestEvent {
		t.Helper()
		event, err := NewTaskRequestEvent(eventType, map[string]string{"dream_id": "d1"})
		require.NoError(t, err)
		return event
	}

	t.Run("no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		assert.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t, "dream_analysis")))
	})

	t.Run("nil event", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		assert.ErrorIs(t, emitter.EmitEvent(context.Background(), nil), ErrEmptyEventType)
	})

	t.Run("delivers to all handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		first, second := &recordingHandler{}, &recordingHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event := newEvent(t, "dream_analysis")
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, []*TaskRequestEvent{event}, first.events)
		assert.Equal(t, []*TaskRequestEvent{event}, second.events)
	})

	t.Run("typed handlers only see their type", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		analysis, other := &recordingHandler{}, &recordingHandler{}
		emitter.RegisterHandlerFor("dream_analysis", analysis)
		emitter.RegisterHandlerFor("cleanup", other)

		require.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t, "dream_analysis")))

		assert.Len(t, analysis.events, 1)
		assert.Empty(t, other.events)
	})

	t.Run("failing handler does not stop delivery", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		errA, errB := errors.New("handler a failed"), errors.New("handler b failed")
		failingA := &recordingHandler{err: errA}
		healthy := &recordingHandler{}
		failingB := &recordingHandler{err: errB}
		emitter.RegisterHandler(failingA)
		emitter.RegisterHandler(healthy)
		emitter.RegisterHandler(failingB)

		err := emitter.EmitEvent(context.Background(), newEvent(t, "dream_analysis"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errA)
		assert.ErrorIs(t, err, errB)
		assert.Len(t, healthy.events, 1)
		assert.Len(t, failingB.events, 1)
	})

	t.Run("handler func adapter", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		var calls int
		emitter.RegisterHandler(HandlerFunc(func(ctx context.Context, event *TaskRequestEvent) error {
			calls++
			return nil
		}))

		require.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t, "dream_analysis")))
		assert.Equal(t, 1, calls)
	})
}

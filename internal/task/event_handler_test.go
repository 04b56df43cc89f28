package task

import (
	"context"
	"errors"
	"testing"

	"github.com/dreamtracer/dreamtracer-api/internal/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitFunc func(ctx context.Context, task Task) error

func (f submitFunc) Submit(ctx context.Context, task Task) error { return f(ctx, task) }

func TestTaskFactoryEventHandler_HandleEvent(t *testing.T) {
	t.Parallel()

	factory := NewDreamAnalysisTaskFactory(&fakeProcessor{}, discardLogger())

	newEvent := func(t *testing.T, eventType string, payload any) *events.TaskRequestEvent {
		t.Helper()
		event, err := events.NewTaskRequestEvent(eventType, payload)
		require.NoError(t, err)
		return event
	}

	t.Run("submits dream analysis task", func(t *testing.T) {
		t.Parallel()
		var submitted []Task
		handler := NewTaskFactoryEventHandler(factory, submitFunc(func(ctx context.Context, task Task) error {
			submitted = append(submitted, task)
			return nil
		}), discardLogger())

		payload := AnalysisRequestPayload{TaskID: uuid.New(), DreamID: uuid.New()}
		require.NoError(t, handler.HandleEvent(context.Background(), newEvent(t, TaskTypeDreamAnalysis, payload)))

		require.Len(t, submitted, 1)
		assert.Equal(t, payload.TaskID, submitted[0].ID())
		assert.Equal(t, payload.DreamID, submitted[0].(*DreamAnalysisTask).DreamID())
	})

	t.Run("ignores other types", func(t *testing.T) {
		t.Parallel()
		handler := NewTaskFactoryEventHandler(factory, submitFunc(func(ctx context.Context, task Task) error {
			t.Fatal("unexpected submit")
			return nil
		}), discardLogger())

		assert.NoError(t, handler.HandleEvent(context.Background(), newEvent(t, "cleanup", map[string]string{})))
	})

	t.Run("factory error", func(t *testing.T) {
		t.Parallel()
		handler := NewTaskFactoryEventHandler(factory, submitFunc(func(ctx context.Context, task Task) error {
			return nil
		}), discardLogger())

		payload := AnalysisRequestPayload{TaskID: uuid.New()}
		err := handler.HandleEvent(context.Background(), newEvent(t, TaskTypeDreamAnalysis, payload))
		assert.ErrorIs(t, err, ErrEmptyDreamID)
	})

	t.Run("submit error", func(t *testing.T) {
		t.Parallel()
		handler := NewTaskFactoryEventHandler(factory, submitFunc(func(ctx context.Context, task Task) error {
			return ErrQueueFull
		}), discardLogger())

		payload := AnalysisRequestPayload{TaskID: uuid.New(), DreamID: uuid.New()}
		err := handler.HandleEvent(context.Background(), newEvent(t, TaskTypeDreamAnalysis, payload))
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("malformed payload", func(t *testing.T) {
		t.Parallel()
		handler := NewTaskFactoryEventHandler(factory, submitFunc(func(ctx context.Context, task Task) error {
			return nil
		}), discardLogger())

		event := newEvent(t, TaskTypeDreamAnalysis, "not an object")
		err := handler.HandleEvent(context.Background(), event)
		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrQueueFull))
	})
}

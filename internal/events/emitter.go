package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"github.com/dreamtracer/dreamtracer-api/internal/redact"
)

// ErrEmptyEventType is returned when an event has no type.
var ErrEmptyEventType = errors.New("event type cannot be empty")

// InMemoryEventEmitter dispatches events synchronously to registered handlers.
// Handlers registered for a specific type only see events of that type.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []registration
	logger   *slog.Logger
}

type registration struct {
	eventType string // empty matches every type
	handler   EventHandler
}

// NewInMemoryEventEmitter creates an emitter with no handlers.
func NewInMemoryEventEmitter(log *slog.Logger) *InMemoryEventEmitter {
	if log == nil {
		log = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: log.With("component", "in_memory_event_emitter"),
	}
}

// RegisterHandler subscribes handler to every event.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.register("", handler)
}

// RegisterHandlerFor subscribes handler to events of eventType only.
func (e *InMemoryEventEmitter) RegisterHandlerFor(eventType string, handler EventHandler) {
	e.register(eventType, handler)
}

func (e *InMemoryEventEmitter) register(eventType string, handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, registration{eventType: eventType, handler: handler})
	e.logger.Debug("registered event handler",
		"event_type", eventType,
		"handler_count", len(e.handlers))
}

// EmitEvent delivers event to every matching handler. A failing handler does
// not stop delivery. All handler errors are joined into the returned error.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *TaskRequestEvent) error {
	if event == nil || event.Type == "" {
		return ErrEmptyEventType
	}
	log := logger.FromContextOrDefault(ctx, e.logger).With(
		"event_id", event.ID,
		"event_type", event.Type)

	e.mu.RLock()
	matched := make([]EventHandler, 0, len(e.handlers))
	for _, reg := range e.handlers {
		if reg.eventType == "" || reg.eventType == event.Type {
			matched = append(matched, reg.handler)
		}
	}
	e.mu.RUnlock()

	if len(matched) == 0 {
		log.Warn("no handlers registered for event")
		return nil
	}
	log.Debug("emitting event", "handler_count", len(matched))

	var errs []error
	for i, handler := range matched {
		if err := handler.HandleEvent(ctx, event); err != nil {
			log.Error("handler failed to process event",
				"handler_index", i,
				"error", redact.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

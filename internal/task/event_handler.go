package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dreamtracer/dreamtracer-api/internal/events"
	"github.com/google/uuid"
)

// TaskFactory creates executable tasks from event payloads.
type TaskFactory interface {
	CreateTask(taskID, dreamID uuid.UUID) (Task, error)
}

// Submitter accepts tasks for background execution.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// AnalysisRequestPayload is the payload of a dream_analysis task request event.
type AnalysisRequestPayload struct {
	TaskID  uuid.UUID `json:"task_id"`
	DreamID uuid.UUID `json:"dream_id"`
}

// TaskFactoryEventHandler turns task request events into submitted tasks.
type TaskFactoryEventHandler struct {
	taskFactory TaskFactory
	taskRunner  Submitter
	logger      *slog.Logger
}

// NewTaskFactoryEventHandler creates a handler that builds tasks with
// taskFactory and submits them to taskRunner.
func NewTaskFactoryEventHandler(
	taskFactory TaskFactory,
	taskRunner Submitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		taskFactory: taskFactory,
		taskRunner:  taskRunner,
		logger:      logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent implements events.EventHandler. Events of other types are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if event.Type != TaskTypeDreamAnalysis {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload AnalysisRequestPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	task, err := h.taskFactory.CreateTask(payload.TaskID, payload.DreamID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"dream_id", payload.DreamID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.taskRunner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted",
		"task_id", task.ID(),
		"dream_id", payload.DreamID,
		"event_id", event.ID)
	return nil
}

var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)

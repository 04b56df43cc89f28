package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNilProcessor = errors.New("dream processor cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
	ErrEmptyDreamID = errors.New("dream ID cannot be empty")
)

// DreamProcessor runs the analysis for a stored dream and records the outcome
// on the dream.
type DreamProcessor interface {
	// ProcessDream analyzes the dream, persists the analysis and marks the
	// dream completed.
	ProcessDream(ctx context.Context, dreamID uuid.UUID) error

	// MarkFailed records that the dream's analysis failed.
	MarkFailed(ctx context.Context, dreamID uuid.UUID) error
}

// DreamAnalysisPayload is the serialized data stored with the task.
type DreamAnalysisPayload struct {
	DreamID uuid.UUID `json:"dream_id"`
}

// DreamAnalysisTask analyzes one dream in the background.
type DreamAnalysisTask struct {
	id        uuid.UUID
	dreamID   uuid.UUID
	processor DreamProcessor
	logger    *slog.Logger

	mu     sync.Mutex
	status TaskStatus
}

// NewDreamAnalysisTask creates a task with the given id. A nil id gets a
// fresh one.
func NewDreamAnalysisTask(
	id uuid.UUID,
	dreamID uuid.UUID,
	processor DreamProcessor,
	logger *slog.Logger,
) (*DreamAnalysisTask, error) {
	if processor == nil {
		return nil, ErrNilProcessor
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if dreamID == uuid.Nil {
		return nil, ErrEmptyDreamID
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &DreamAnalysisTask{
		id:        id,
		dreamID:   dreamID,
		processor: processor,
		logger:    logger.With("task_type", TaskTypeDreamAnalysis, "dream_id", dreamID),
		status:    TaskStatusPending,
	}, nil
}

// ID implements Task.
func (t *DreamAnalysisTask) ID() uuid.UUID { return t.id }

// Type implements Task.
func (t *DreamAnalysisTask) Type() string { return TaskTypeDreamAnalysis }

// DreamID returns the dream this task analyzes.
func (t *DreamAnalysisTask) DreamID() uuid.UUID { return t.dreamID }

// Payload implements Task.
func (t *DreamAnalysisTask) Payload() []byte {
	data, err := json.Marshal(DreamAnalysisPayload{DreamID: t.dreamID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte("{}")
	}
	return data
}

// Status implements Task.
func (t *DreamAnalysisTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *DreamAnalysisTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Execute runs the analysis. When it fails the dream is marked failed so the
// user can request analysis again.
func (t *DreamAnalysisTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)
	t.logger.Info("starting dream analysis task")

	if err := ctx.Err(); err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	if err := t.processor.ProcessDream(ctx, t.dreamID); err != nil {
		t.setStatus(TaskStatusFailed)
		if markErr := t.processor.MarkFailed(context.WithoutCancel(ctx), t.dreamID); markErr != nil {
			t.logger.Error("failed to mark dream analysis as failed", "error", markErr)
		}
		return fmt.Errorf("failed to analyze dream: %w", err)
	}

	t.setStatus(TaskStatusCompleted)
	t.logger.Info("dream analysis task completed")
	return nil
}

package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskTypeDreamAnalysis runs the analysis pipeline for one dream.
const TaskTypeDreamAnalysis = "dream_analysis"

// Task represents a unit of background work to be processed
type Task interface {
	ID() uuid.UUID
	Type() string
	// Payload returns the task data as JSON.
	Payload() []byte
	Status() TaskStatus
	Execute(ctx context.Context) error
}

// Record is the persisted form of a task.
type Record struct {
	ID           uuid.UUID       `json:"task_id"`
	Type         string          `json:"type"`
	Payload      json.RawMessage `json:"payload"`
	Status       TaskStatus      `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TaskStore defines the interface for persisting tasks
type TaskStore interface {
	SaveTask(ctx context.Context, task Task) error

	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetTask returns store.ErrTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, taskID uuid.UUID) (*Record, error)

	GetPendingTasks(ctx context.Context) ([]*Record, error)

	// GetProcessingTasks retrieves tasks with "processing" status. A non-zero
	// olderThan restricts the result to tasks that have not been updated for
	// at least that long.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]*Record, error)

	WithTx(tx *sql.Tx) TaskStore
}

// Rebuilder recreates an executable task from its persisted record.
type Rebuilder interface {
	Rebuild(rec *Record) (Task, error)
}

// Recorder receives task lifecycle observations.
type Recorder interface {
	TaskStarted()
	TaskFinished(taskType, status string)
}

package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// TaskStore is a testify mock of task.TaskStore.
type TaskStore struct {
	mock.Mock
}

func records(args mock.Arguments) ([]*task.Record, error) {
	rs, _ := args.Get(0).([]*task.Record)
	return rs, args.Error(1)
}

func (m *TaskStore) SaveTask(ctx context.Context, t task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *TaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status task.TaskStatus, errorMsg string) error {
	return m.Called(ctx, taskID, status, errorMsg).Error(0)
}

func (m *TaskStore) GetTask(ctx context.Context, taskID uuid.UUID) (*task.Record, error) {
	args := m.Called(ctx, taskID)
	if rec, ok := args.Get(0).(*task.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskStore) GetPendingTasks(ctx context.Context) ([]*task.Record, error) {
	return records(m.Called(ctx))
}

func (m *TaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]*task.Record, error) {
	return records(m.Called(ctx, olderThan))
}

func (m *TaskStore) WithTx(*sql.Tx) task.TaskStore { return m }

var _ task.TaskStore = (*TaskStore)(nil)

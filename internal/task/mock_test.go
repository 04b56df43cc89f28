package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
)

// memoryTaskStore is an in-memory TaskStore for tests.
type memoryTaskStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Record
	saveErr error
	updates []TaskStatus
}

func newMemoryTaskStore() *memoryTaskStore {
	return &memoryTaskStore{records: map[uuid.UUID]*Record{}}
}

func (s *memoryTaskStore) SaveTask(_ context.Context, t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	now := time.Now().UTC()
	s.records[t.ID()] = &Record{
		ID:        t.ID(),
		Type:      t.Type(),
		Payload:   json.RawMessage(t.Payload()),
		Status:    t.Status(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (s *memoryTaskStore) UpdateTaskStatus(_ context.Context, id uuid.UUID, status TaskStatus, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, status)
	rec, ok := s.records[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	rec.Status = status
	rec.ErrorMessage = msg
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memoryTaskStore) GetTask(_ context.Context, id uuid.UUID) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *memoryTaskStore) GetPendingTasks(context.Context) ([]*Record, error) {
	return s.byStatus(TaskStatusPending, 0), nil
}

func (s *memoryTaskStore) GetProcessingTasks(_ context.Context, olderThan time.Duration) ([]*Record, error) {
	return s.byStatus(TaskStatusProcessing, olderThan), nil
}

func (s *memoryTaskStore) byStatus(status TaskStatus, olderThan time.Duration) []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Record
	for _, rec := range s.records {
		if rec.Status != status {
			continue
		}
		if olderThan > 0 && time.Since(rec.UpdatedAt) < olderThan {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out
}

func (s *memoryTaskStore) WithTx(*sql.Tx) TaskStore { return s }

func (s *memoryTaskStore) put(rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
}

func (s *memoryTaskStore) status(id uuid.UUID) TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		return rec.Status
	}
	return ""
}

// fakeTask runs fn when executed.
type fakeTask struct {
	id uuid.UUID
	fn func(ctx context.Context) error
}

func newFakeTask(fn func(ctx context.Context) error) *fakeTask {
	return &fakeTask{id: uuid.New(), fn: fn}
}

func (t *fakeTask) ID() uuid.UUID      { return t.id }
func (t *fakeTask) Type() string       { return "fake" }
func (t *fakeTask) Payload() []byte    { return []byte(`{}`) }
func (t *fakeTask) Status() TaskStatus { return TaskStatusPending }
func (t *fakeTask) Execute(ctx context.Context) error {
	if t.fn == nil {
		return nil
	}
	return t.fn(ctx)
}

// fakeProcessor records calls made by DreamAnalysisTask.
type fakeProcessor struct {
	mu         sync.Mutex
	processErr error
	processed  []uuid.UUID
	failed     []uuid.UUID
	done       chan uuid.UUID
}

func (p *fakeProcessor) ProcessDream(_ context.Context, dreamID uuid.UUID) error {
	p.mu.Lock()
	p.processed = append(p.processed, dreamID)
	err := p.processErr
	p.mu.Unlock()
	if p.done != nil {
		p.done <- dreamID
	}
	return err
}

func (p *fakeProcessor) MarkFailed(_ context.Context, dreamID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = append(p.failed, dreamID)
	return nil
}

type countingRecorder struct {
	mu       sync.Mutex
	started  int
	finished map[string]int
}

func (r *countingRecorder) TaskStarted() {
	r.mu.Lock()
	r.started++
	r.mu.Unlock()
}

func (r *countingRecorder) TaskFinished(_ string, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished == nil {
		r.finished = map[string]int{}
	}
	r.finished[status]++
}

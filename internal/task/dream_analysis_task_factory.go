package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// DreamAnalysisTaskFactory creates DreamAnalysisTask instances
type DreamAnalysisTaskFactory struct {
	processor DreamProcessor
	logger    *slog.Logger
}

// NewDreamAnalysisTaskFactory creates a new factory for DreamAnalysisTasks
func NewDreamAnalysisTaskFactory(processor DreamProcessor, logger *slog.Logger) *DreamAnalysisTaskFactory {
	return &DreamAnalysisTaskFactory{
		processor: processor,
		logger:    logger.With("component", "dream_analysis_task_factory"),
	}
}

// CreateTask creates a task with the given id for dreamID.
func (f *DreamAnalysisTaskFactory) CreateTask(taskID, dreamID uuid.UUID) (Task, error) {
	t, err := NewDreamAnalysisTask(taskID, dreamID, f.processor, f.logger)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Rebuild implements Rebuilder.
func (f *DreamAnalysisTaskFactory) Rebuild(rec *Record) (Task, error) {
	var payload DreamAnalysisPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", TaskTypeDreamAnalysis, err)
	}
	return f.CreateTask(rec.ID, payload.DreamID)
}

var _ Rebuilder = (*DreamAnalysisTaskFactory)(nil)

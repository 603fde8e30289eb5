package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"hostsync/internal/database"
	"hostsync/internal/metrics"
	"hostsync/internal/models"
	"hostsync/internal/notify"
	"hostsync/internal/schema"

	"github.com/rs/zerolog"
)

type TaskService struct {
	db       *database.DB
	notifier notify.Notifier
	logger   zerolog.Logger
}

func NewTaskService(db *database.DB, notifier notify.Notifier, logger *zerolog.Logger) *TaskService {
	return &TaskService{
		db:       db,
		notifier: notifier,
		logger:   logger.With().Str("component", "task_service").Logger(),
	}
}

// Create persists a new task; a duplicate ID is warned and swallowed.
func (s *TaskService) Create(ctx context.Context, fields map[string]any, announce bool) error {
	descriptor, _ := schema.ForKind(models.KindTask)
	task := models.NewTaskFromFields(descriptor.Filter(fields))

	err := s.db.CreateTask(ctx, task)
	if errors.Is(err, database.ErrDuplicate) {
		metrics.IncDuplicate(models.KindTask)
		s.notifier.Warn(ctx, fmt.Sprintf("Duplicate task creation for task ID: %d", task.ID))
		return nil
	}
	if err != nil {
		return err
	}

	if announce {
		s.notifier.Inform(ctx, fmt.Sprintf("Task created with ID: %d", task.ID))
	}
	return nil
}

// Update snapshots then applies, like ReservationService.Update. Unknown
// task IDs come back as database.ErrNotFound; tasks have no upstream
// fetch-by-id recovery path, so the caller treats that as an error.
func (s *TaskService) Update(ctx context.Context, fields map[string]any, announce bool) error {
	descriptor, _ := schema.ForKind(models.KindTask)
	filtered := descriptor.Filter(fields)

	id, ok := fieldID(filtered)
	if !ok {
		return errors.New("task update without id")
	}

	task, err := s.db.GetTask(ctx, id)
	if err != nil {
		return err
	}

	revision, err := json.Marshal(task.FieldMap())
	if err != nil {
		return fmt.Errorf("failed to serialize task revision: %w", err)
	}

	task.ApplyFields(filtered)
	if err := s.db.UpdateTask(ctx, task, revision); err != nil {
		return err
	}

	if announce {
		s.notifier.Inform(ctx, fmt.Sprintf("Task %d updated", id))
	}
	return nil
}

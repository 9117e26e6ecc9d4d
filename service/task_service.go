package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/layer-3/todo/core"
	"github.com/layer-3/todo/metrics"
	"github.com/layer-3/todo/ports"
)

// Task operations reported in events and metrics
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpToggle = "toggle"
	OpDelete = "delete"
)

// TaskService manages the tasks of authenticated users
type TaskService struct {
	tasks    ports.TaskStore
	eventPub ports.EventPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewTaskService creates a new task service
func NewTaskService(tasks ports.TaskStore, eventPub ports.EventPublisher, m *metrics.Metrics, logger *slog.Logger) *TaskService {
	return &TaskService{
		tasks:    tasks,
		eventPub: eventPub,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns the owner's tasks
func (s *TaskService) List(ctx context.Context, owner string) ([]core.Task, error) {
	tasks, err := s.tasks.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Create adds a task for owner
func (s *TaskService) Create(ctx context.Context, owner, title string, completed bool) (core.Task, error) {
	task, err := core.NewTask(owner, title, s.now().UTC())
	if err != nil {
		return core.Task{}, err
	}
	task.Completed = completed

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return core.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	s.changed(ctx, OpCreate, created)
	return created, nil
}

// Update overwrites title and completion status of one of owner's tasks
func (s *TaskService) Update(ctx context.Context, owner, id, title string, completed bool) (core.Task, error) {
	if err := core.ValidateTitle(title); err != nil {
		return core.Task{}, err
	}

	updated, err := s.tasks.Update(ctx, core.Task{ID: id, Owner: owner, Title: title, Completed: completed})
	if err != nil {
		return core.Task{}, fmt.Errorf("failed to update task: %w", err)
	}

	s.changed(ctx, OpUpdate, updated)
	return updated, nil
}

// Toggle flips the completion status of one of owner's tasks
func (s *TaskService) Toggle(ctx context.Context, owner, id string) (core.Task, error) {
	toggled, err := s.tasks.Toggle(ctx, owner, id)
	if err != nil {
		return core.Task{}, fmt.Errorf("failed to toggle task: %w", err)
	}

	s.changed(ctx, OpToggle, toggled)
	return toggled, nil
}

// Delete removes one of owner's tasks
func (s *TaskService) Delete(ctx context.Context, owner, id string) error {
	if err := s.tasks.Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.changed(ctx, OpDelete, core.Task{ID: id, Owner: owner})
	return nil
}

func (s *TaskService) changed(ctx context.Context, op string, task core.Task) {
	s.metrics.IncrementTaskChanged(op)

	if err := s.eventPub.PublishTaskChanged(ctx, op, task); err != nil {
		s.logger.WarnContext(ctx, "failed to publish task event", "op", op, "task_id", task.ID, "error", err)
	}
}

package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/daybook/internal/model"
)

const (
	DefaultDoneRemarks   = "Marked done"
	DefaultReopenRemarks = "Reopened"
)

type Store interface {
	CreateTask(ctx context.Context, in model.Task) (model.Task, error)
	GetTask(ctx context.Context, id int64) (model.Task, error)
	UpdateTask(ctx context.Context, in model.Task) error
	DeleteTask(ctx context.Context, id int64) error
	ListTasksByDate(ctx context.Context, day model.DayKey) ([]model.Task, error)
	ListPendingTasks(ctx context.Context, before model.DayKey) ([]model.Task, error)
	ListRepeatingTasks(ctx context.Context) ([]model.Task, error)
}

type Service struct {
	store  Store
	logger zerolog.Logger
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "tasks").Logger(),
	}
}

// EndOfDay is the due time given to tasks created without one.
func EndOfDay(day model.DayKey, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}

func (s *Service) GetByID(ctx context.Context, id int64) (model.Task, error) {
	return s.store.GetTask(ctx, id)
}

func (s *Service) GetAllByDate(ctx context.Context, day model.DayKey) ([]model.Task, error) {
	items, err := s.store.ListTasksByDate(ctx, day)
	if err != nil {
		s.logger.Error().
			Err(err).
			Stringer("day", day).
			Msg("failed to list tasks by date")
		return nil, err
	}
	return items, nil
}

// GetPending returns unfinished tasks due before today.
func (s *Service) GetPending(ctx context.Context, today model.DayKey) ([]model.Task, error) {
	items, err := s.store.ListPendingTasks(ctx, today)
	if err != nil {
		s.logger.Error().
			Err(err).
			Stringer("today", today).
			Msg("failed to list pending tasks")
		return nil, err
	}
	return items, nil
}

func (s *Service) GetRepeating(ctx context.Context) ([]model.Task, error) {
	items, err := s.store.ListRepeatingTasks(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list repeating tasks")
		return nil, err
	}
	return items, nil
}

// Create fills defaults, validates and stores a new task. The returned task
// carries the store-assigned id.
func (s *Service) Create(ctx context.Context, in model.Task) (model.Task, error) {
	task := normalize(in)
	task.ID = model.NewID
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	out, err := s.store.CreateTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task", task.Name).
			Msg("failed to create task")
		return model.Task{}, err
	}
	s.logger.Debug().
		Int64("task_id", out.ID).
		Int64("ref_task_id", out.RefTaskID).
		Stringer("due_date", out.DueDate).
		Msg("created task")
	return out, nil
}

func (s *Service) Update(ctx context.Context, in model.Task) error {
	if !in.Persisted() {
		return fmt.Errorf("%w: task has no id", model.ErrValidation)
	}
	task := normalize(in)
	if err := task.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateTask(ctx, task); err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to update task")
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTask(ctx, id); err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to delete task")
		return err
	}
	s.logger.Debug().
		Int64("task_id", id).
		Msg("deleted task")
	return nil
}

// SetDone toggles completion and records remarks, falling back to a default
// note when none is given.
func (s *Service) SetDone(ctx context.Context, task model.Task, done bool, remarks string) (model.Task, error) {
	out := task.Clone()
	out.Done = done
	out.Remarks = strings.TrimSpace(remarks)
	if out.Remarks == "" {
		out.Remarks = DefaultReopenRemarks
		if done {
			out.Remarks = DefaultDoneRemarks
		}
	}
	if err := s.Update(ctx, out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

func normalize(in model.Task) model.Task {
	out := in.Clone()
	out.Name = strings.TrimSpace(out.Name)
	if strings.TrimSpace(out.List) == "" {
		out.List = model.DefaultList
	}
	if out.Type == "" {
		out.Type = model.TaskTypeLive
	}
	if out.Detail == nil {
		out.Detail = map[string]string{}
	}
	if out.RefTaskID == 0 {
		out.RefTaskID = model.NoRef
	}
	return out
}

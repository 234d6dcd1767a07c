package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandeepkv93/daybook/internal/model"
)

var (
	ErrNotFound     = errors.New("storage: not found")
	ErrStoreFailure = errors.New("storage: store failure")
)

// Error carries the failing operation alongside the driver error. It matches
// both ErrStoreFailure and the underlying cause under errors.Is.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() []error { return []error{ErrStoreFailure, e.Err} }

func failure(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	return &Error{Op: op, Err: err}
}

type Repository interface {
	CreateTask(ctx context.Context, in model.Task) (model.Task, error)
	GetTask(ctx context.Context, id int64) (model.Task, error)
	UpdateTask(ctx context.Context, in model.Task) error
	DeleteTask(ctx context.Context, id int64) error
	ListTasksByDate(ctx context.Context, day model.DayKey) ([]model.Task, error)
	ListPendingTasks(ctx context.Context, before model.DayKey) ([]model.Task, error)
	ListRepeatingTasks(ctx context.Context) ([]model.Task, error)

	GetSetting(ctx context.Context, name string) (model.Setting, error)
	CreateSetting(ctx context.Context, in model.Setting) (model.Setting, error)
	UpdateSetting(ctx context.Context, in model.Setting) error
	ListSettings(ctx context.Context) ([]model.Setting, error)
}

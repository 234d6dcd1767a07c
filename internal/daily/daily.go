// Package daily runs the once-per-day maintenance of the task list: it
// materializes recurring occurrences, carries unfinished tasks forward and
// keeps reminders fresh, each concern behind its own durable run-once guard.
package daily

import (
	"context"
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

// Guard names, stored as settings.
const (
	GuardTaskScheduler        = "taskSchedulerRunDate"
	GuardPendingTaskCopy      = "pendingTaskCopyRunDate"
	GuardNotificationsSummary = "initNotificationsSummaryRunDate"
)

type TaskStore interface {
	GetAllByDate(ctx context.Context, day model.DayKey) ([]model.Task, error)
	GetPending(ctx context.Context, today model.DayKey) ([]model.Task, error)
	GetRepeating(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, in model.Task) (model.Task, error)
}

// SettingsStore reports a missing setting as ok=false with a nil error.
type SettingsStore interface {
	Get(ctx context.Context, name string) (model.Setting, bool, error)
	Add(ctx context.Context, in model.Setting) (model.Setting, error)
	Update(ctx context.Context, in model.Setting) error
}

type SettingsBootstrap interface {
	InitDefaults(ctx context.Context) error
}

type Reminders interface {
	ReloadReminders(ctx context.Context) error
	LoadInitialSummary(ctx context.Context) error
}

// View is the screen that shows the loaded day.
type View interface {
	Reload(ctx context.Context) error
	HardReset(ctx context.Context, now time.Time) error
	SetMinutesNow(minutes int64)
}

type ConfirmRequest struct {
	Today   model.DayKey
	Pending []model.Task
}

type Decision struct {
	Accepted bool
	Comment  string
}

// Confirmer asks the user once whether the whole pending set should be
// carried forward. An error means no answer was obtained.
type Confirmer interface {
	Confirm(ctx context.Context, req ConfirmRequest) (Decision, error)
}

// StaticConfirmer answers every request the same way.
type StaticConfirmer struct {
	Accept  bool
	Comment string
}

func (s StaticConfirmer) Confirm(context.Context, ConfirmRequest) (Decision, error) {
	return Decision{Accepted: s.Accept, Comment: s.Comment}, nil
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, req ConfirmRequest) (Decision, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, req ConfirmRequest) (Decision, error) {
	return f(ctx, req)
}

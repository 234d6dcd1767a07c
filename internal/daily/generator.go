package daily

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/daybook/internal/model"
)

type Generator struct {
	tasks  TaskStore
	guard  *RunOnce
	logger zerolog.Logger
}

func NewGenerator(tasks TaskStore, guard *RunOnce, logger zerolog.Logger) *Generator {
	return &Generator{
		tasks:  tasks,
		guard:  guard,
		logger: logger.With().Str("component", "generator").Logger(),
	}
}

// ExecuteDailySchedule materializes today's occurrence of every repeating
// template whose rule fires today and reports whether anything was created.
// Individual create failures are joined into the returned error and do not
// stop the pass; the guard is marked once the pass is attempted.
func (g *Generator) ExecuteDailySchedule(ctx context.Context, today model.DayKey) (bool, error) {
	run, err := g.guard.ShouldRun(ctx, GuardTaskScheduler, today)
	if err != nil || !run {
		return false, err
	}

	templates, err := g.tasks.GetRepeating(ctx)
	if err != nil {
		return false, fmt.Errorf("list repeating tasks: %w", err)
	}
	existing, err := g.tasks.GetAllByDate(ctx, today)
	if err != nil {
		return false, fmt.Errorf("list tasks for %s: %w", today, err)
	}
	materialized := make(map[int64]bool, len(existing))
	for _, task := range existing {
		if task.RefTaskID != model.NoRef {
			materialized[task.RefTaskID] = true
		}
	}

	var errs []error
	created := 0
	for _, tpl := range templates {
		if !tpl.Persisted() || !tpl.Repeating() {
			continue
		}
		// A template due today is itself today's occurrence.
		if tpl.DueDate >= today {
			continue
		}
		if materialized[tpl.ID] || !tpl.Repeat.OccursOn(tpl.DueAt, today) {
			continue
		}
		occ, err := g.tasks.Create(ctx, Occurrence(tpl, today))
		if err != nil {
			g.logger.Warn().
				Err(err).
				Int64("template_id", tpl.ID).
				Msg("failed to create occurrence")
			errs = append(errs, fmt.Errorf("create occurrence of task %d: %w", tpl.ID, err))
			continue
		}
		materialized[tpl.ID] = true
		created++
		g.logger.Debug().
			Int64("template_id", tpl.ID).
			Int64("task_id", occ.ID).
			Stringer("day", today).
			Msg("created occurrence")
	}

	if err := g.guard.MarkRan(ctx, GuardTaskScheduler, today); err != nil {
		errs = append(errs, err)
	}
	g.logger.Info().
		Stringer("day", today).
		Int("templates", len(templates)).
		Int("created", created).
		Msg("daily schedule executed")
	return created > 0, errors.Join(errs...)
}

// Occurrence builds the unsaved task for tpl on day, due at the template's
// time of day.
func Occurrence(tpl model.Task, day model.DayKey) model.Task {
	occ := model.NewTask(tpl.Name, model.AtClock(day, tpl.DueAt))
	occ.List = tpl.List
	occ.Type = tpl.Type
	if tpl.Detail != nil {
		occ.Detail = maps.Clone(tpl.Detail)
	}
	occ.RefTaskID = tpl.ID
	return occ
}

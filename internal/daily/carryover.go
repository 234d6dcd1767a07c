package daily

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/daybook/internal/model"
)

var ErrNoConfirmer = errors.New("daily: carryover needs a confirmer")

type Carryover struct {
	tasks  TaskStore
	guard  *RunOnce
	logger zerolog.Logger
}

func NewCarryover(tasks TaskStore, guard *RunOnce, logger zerolog.Logger) *Carryover {
	return &Carryover{
		tasks:  tasks,
		guard:  guard,
		logger: logger.With().Str("component", "carryover").Logger(),
	}
}

// ResolvePendingCarryover copies every unfinished task due before today one
// day forward, either unconditionally or after a single decision from
// confirmer. It returns the clones that were stored.
//
// The guard stays unmarked when the pending set cannot be read or no
// decision is obtained, so the next pass asks again. Otherwise it is marked
// once, even if some clones failed.
func (c *Carryover) ResolvePendingCarryover(ctx context.Context, today model.DayKey, autoImport bool, confirmer Confirmer) ([]model.Task, error) {
	run, err := c.guard.ShouldRun(ctx, GuardPendingTaskCopy, today)
	if err != nil || !run {
		return nil, err
	}

	pending, err := c.tasks.GetPending(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("list pending tasks: %w", err)
	}
	if len(pending) == 0 {
		return []model.Task{}, c.guard.MarkRan(ctx, GuardPendingTaskCopy, today)
	}

	decision := Decision{Accepted: autoImport}
	if !autoImport {
		if confirmer == nil {
			return nil, ErrNoConfirmer
		}
		decision, err = confirmer.Confirm(ctx, ConfirmRequest{Today: today, Pending: clonePending(pending)})
		if err != nil {
			return nil, fmt.Errorf("confirm carryover: %w", err)
		}
	}

	carried := []model.Task{}
	var errs []error
	if decision.Accepted {
		carried, errs = c.copyForward(ctx, pending, decision.Comment)
	}
	if err := c.guard.MarkRan(ctx, GuardPendingTaskCopy, today); err != nil {
		errs = append(errs, err)
	}

	c.logger.Info().
		Stringer("day", today).
		Int("pending", len(pending)).
		Bool("auto_import", autoImport).
		Bool("accepted", decision.Accepted).
		Int("carried", len(carried)).
		Msg("pending carryover resolved")
	return carried, errors.Join(errs...)
}

func (c *Carryover) copyForward(ctx context.Context, pending []model.Task, comment string) ([]model.Task, []error) {
	var errs []error
	carried := make([]model.Task, 0, len(pending))
	byDay := make(map[model.DayKey][]model.Task)

	for _, p := range pending {
		clone := CloneForward(p)
		if note := strings.TrimSpace(comment); note != "" {
			clone.Remarks = note
		}

		onDay, ok := byDay[clone.DueDate]
		if !ok {
			var err error
			onDay, err = c.tasks.GetAllByDate(ctx, clone.DueDate)
			if err != nil {
				errs = append(errs, fmt.Errorf("list tasks for %s: %w", clone.DueDate, err))
				continue
			}
			byDay[clone.DueDate] = onDay
		}
		if alreadyCarried(onDay, clone) {
			continue
		}

		created, err := c.tasks.Create(ctx, clone)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Int64("task_id", p.ID).
				Msg("failed to carry task forward")
			errs = append(errs, fmt.Errorf("carry task %d: %w", p.ID, err))
			continue
		}
		byDay[clone.DueDate] = append(onDay, created)
		carried = append(carried, created)
	}
	return carried, errs
}

// CloneForward returns an unsaved copy of p due one calendar day after p,
// with a fresh lineage. The rule is dropped: a carried task is a one-off.
func CloneForward(p model.Task) model.Task {
	clone := p.Clone()
	clone.ID = model.NewID
	clone.SetDue(model.AddDays(p.DueAt, 1))
	clone.RefTaskID = model.NoRef
	clone.Done = false
	clone.Repeat = nil
	clone.CreatedAt = time.Time{}
	return clone
}

// alreadyCarried reports whether day already holds an open carried copy
// with the clone's name and due time, e.g. from an earlier carryover of the
// same chain. Finished tasks, occurrences and templates never count.
func alreadyCarried(day []model.Task, clone model.Task) bool {
	for _, t := range day {
		if t.Done || t.Repeating() || t.RefTaskID != model.NoRef {
			continue
		}
		if t.Name == clone.Name && t.DueAt.Equal(clone.DueAt) {
			return true
		}
	}
	return false
}

func clonePending(in []model.Task) []model.Task {
	out := make([]model.Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

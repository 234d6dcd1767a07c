// Package agenda keeps the loaded day's task list and title in step with the
// date cursor and publishes a snapshot after every change.
package agenda

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/daybook/internal/clock"
	"github.com/sandeepkv93/daybook/internal/cursor"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/pubsub"
)

// DueSoonMinutes is the window in which an open task counts as due soon.
const DueSoonMinutes = 60

type TaskSource interface {
	GetAllByDate(ctx context.Context, day model.DayKey) ([]model.Task, error)
}

type Snapshot struct {
	Day        model.DayKey
	LoadedAt   time.Time
	Title      string
	Tasks      []model.Task
	MinutesNow int64
	Err        error
}

// DueSoon reports whether t is open and due within the next DueSoonMinutes.
func (s Snapshot) DueSoon(t model.Task) bool {
	if t.Done {
		return false
	}
	left := t.DueAt.Unix()/60 - s.MinutesNow
	return left >= 0 && left <= DueSoonMinutes
}

// Overdue reports whether t is open and already past due.
func (s Snapshot) Overdue(t model.Task) bool {
	return !t.Done && t.DueAt.Unix()/60 < s.MinutesNow
}

type Agenda struct {
	cursor   *cursor.Cursor
	tasks    TaskSource
	clock    clock.Clock
	logger   zerolog.Logger
	registry *pubsub.Registry
	out      *pubsub.Broker[Snapshot]

	reloading sync.Mutex

	mu      sync.Mutex
	minutes int64
	last    Snapshot
	wg      sync.WaitGroup
}

func New(c *cursor.Cursor, tasks TaskSource, clk clock.Clock, logger zerolog.Logger) *Agenda {
	if clk == nil {
		clk = clock.System{}
	}
	return &Agenda{
		cursor:   c,
		tasks:    tasks,
		clock:    clk,
		logger:   logger.With().Str("component", "agenda").Logger(),
		registry: pubsub.NewRegistry(),
		out:      pubsub.NewBroker[Snapshot](8),
		minutes:  clk.Now().Unix() / 60,
	}
}

// Start follows cursor changes until Close, reloading on each one.
func (a *Agenda) Start(ctx context.Context) {
	sub := a.cursor.Subscribe()
	a.registry.Track(sub)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.C():
				if !ok {
					return
				}
				_ = a.Reload(ctx)
			}
		}
	}()
}

func (a *Agenda) Cursor() *cursor.Cursor { return a.cursor }

func (a *Agenda) Previous() { a.cursor.LoadPreviousDay() }

func (a *Agenda) Next() { a.cursor.LoadNextDay() }

// Reload fetches the loaded day's tasks and publishes a fresh snapshot. A
// result for a day the cursor has already left is dropped. Reloads run one
// at a time, so a later call never publishes an older read.
func (a *Agenda) Reload(ctx context.Context) error {
	a.reloading.Lock()
	defer a.reloading.Unlock()

	day, at := a.cursor.Loaded()
	items, err := a.tasks.GetAllByDate(ctx, day)
	if err != nil {
		a.logger.Warn().
			Err(err).
			Stringer("day", day).
			Msg("failed to load tasks")
	}
	if current, _ := a.cursor.Loaded(); current != day {
		a.logger.Debug().
			Stringer("day", day).
			Stringer("current", current).
			Msg("dropping stale reload")
		return err
	}

	a.mu.Lock()
	snap := Snapshot{
		Day:        day,
		LoadedAt:   at,
		Title:      cursor.Title(at, a.clock.Now()),
		Tasks:      items,
		MinutesNow: a.minutes,
		Err:        err,
	}
	if err != nil {
		// Only the same day may fall back to what was last shown.
		snap.Tasks = []model.Task{}
		if a.last.Day == day {
			snap.Tasks = a.last.Tasks
		}
	}
	a.last = snap
	a.mu.Unlock()

	a.out.Publish(snap)
	return err
}

// HardReset moves the cursor to now without a navigation event and reloads.
func (a *Agenda) HardReset(ctx context.Context, now time.Time) error {
	a.cursor.Reset(now)
	return a.Reload(ctx)
}

// Show jumps straight to day, keeping the current time of day.
func (a *Agenda) Show(ctx context.Context, day model.DayKey) error {
	return a.HardReset(ctx, model.AtClock(day, a.clock.Now()))
}

// SetMinutesNow refreshes due-soon state and the title without hitting the
// store.
func (a *Agenda) SetMinutesNow(minutes int64) {
	a.mu.Lock()
	a.minutes = minutes
	if a.last.Day == 0 {
		a.mu.Unlock()
		return
	}
	snap := a.last
	snap.MinutesNow = minutes
	snap.Title = cursor.Title(snap.LoadedAt, a.clock.Now())
	a.last = snap
	a.mu.Unlock()

	a.out.Publish(snap)
}

func (a *Agenda) Current() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

func (a *Agenda) Subscribe() *pubsub.Subscription[Snapshot] {
	return a.out.Subscribe()
}

// Close releases the cursor subscription, waits for the follower and ends
// every snapshot subscription.
func (a *Agenda) Close() {
	a.registry.Close()
	a.wg.Wait()
	a.out.Close()
}

package reminders

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/daybook/internal/clock"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/pubsub"
	"github.com/sandeepkv93/daybook/internal/scheduler"
)

const DefaultLead = 15 * time.Minute

type Kind string

const (
	KindSummary Kind = "summary"
	KindSoft    Kind = "soft"
	KindHard    Kind = "hard"
)

type Notification struct {
	ID     string
	TaskID int64
	Kind   Kind
	Title  string
	Body   string
	At     time.Time
}

// Notifier delivers a notification outside the app.
type Notifier interface {
	Notify(n Notification) error
}

type NopNotifier struct{}

func (NopNotifier) Notify(Notification) error { return nil }

// BellNotifier rings the terminal bell.
type BellNotifier struct {
	W io.Writer
}

func (b BellNotifier) Notify(Notification) error {
	_, err := io.WriteString(b.W, "\a")
	return err
}

type TaskSource interface {
	GetAllByDate(ctx context.Context, day model.DayKey) ([]model.Task, error)
	GetPending(ctx context.Context, today model.DayKey) ([]model.Task, error)
}

type Service struct {
	tasks    TaskSource
	engine   *scheduler.Engine
	clock    clock.Clock
	lead     time.Duration
	notifier Notifier
	logger   zerolog.Logger
	out      *pubsub.Broker[[]Notification]

	mu     sync.Mutex
	active []Notification
}

type Options struct {
	Lead     time.Duration
	Buffer   int
	Notifier Notifier
}

func NewService(tasks TaskSource, clk clock.Clock, opts Options, logger zerolog.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if opts.Lead <= 0 {
		opts.Lead = DefaultLead
	}
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}
	return &Service{
		tasks:    tasks,
		engine:   scheduler.NewEngine(opts.Buffer).WithNow(clk.Now),
		clock:    clk,
		lead:     opts.Lead,
		notifier: opts.Notifier,
		logger:   logger.With().Str("component", "reminders").Logger(),
		out:      pubsub.NewBroker[[]Notification](4),
	}
}

// ReloadReminders replaces the queue with soft and hard reminders for
// today's open tasks that are still ahead of now.
func (s *Service) ReloadReminders(ctx context.Context) error {
	now := s.clock.Now()
	today := model.DayKeyOf(now)
	items, err := s.tasks.GetAllByDate(ctx, today)
	if err != nil {
		return fmt.Errorf("list tasks for reminders: %w", err)
	}
	rems := Build(items, now, s.lead)
	if err := s.engine.Replace(rems); err != nil {
		return err
	}
	s.logger.Debug().
		Stringer("day", today).
		Int("scheduled", len(rems)).
		Msg("reminders reloaded")
	return nil
}

// Build returns the reminders for items that fire after now, in trigger
// order.
func Build(items []model.Task, now time.Time, lead time.Duration) []model.Reminder {
	out := make([]model.Reminder, 0, len(items)*2)
	for _, t := range items {
		if t.Done || !t.Persisted() || !t.DueAt.After(now) {
			continue
		}
		if soft := t.DueAt.Add(-lead); soft.After(now) {
			out = append(out, model.Reminder{
				ID:          model.ReminderID(t.ID, model.ReminderTypeSoft, t.DueDate),
				TaskID:      t.ID,
				TaskName:    t.Name,
				TriggerTime: soft,
				Type:        model.ReminderTypeSoft,
				Enabled:     true,
			})
		}
		out = append(out, model.Reminder{
			ID:          model.ReminderID(t.ID, model.ReminderTypeHard, t.DueDate),
			TaskID:      t.ID,
			TaskName:    t.Name,
			TriggerTime: t.DueAt,
			Type:        model.ReminderTypeHard,
			Enabled:     true,
		})
	}
	slices.SortStableFunc(out, func(a, b model.Reminder) int {
		return a.TriggerTime.Compare(b.TriggerTime)
	})
	return out
}

// LoadInitialSummary posts one notification with today's open and overdue
// counts.
func (s *Service) LoadInitialSummary(ctx context.Context) error {
	now := s.clock.Now()
	today := model.DayKeyOf(now)
	items, err := s.tasks.GetAllByDate(ctx, today)
	if err != nil {
		return fmt.Errorf("list tasks for summary: %w", err)
	}
	overdue, err := s.tasks.GetPending(ctx, today)
	if err != nil {
		return fmt.Errorf("list overdue tasks for summary: %w", err)
	}
	open := 0
	for _, t := range items {
		if !t.Done {
			open++
		}
	}
	s.post(Notification{
		ID:    "summary-" + today.String(),
		Kind:  KindSummary,
		Title: "Today",
		Body:  fmt.Sprintf("%d open task(s) today, %d overdue", open, len(overdue)),
		At:    now,
	})
	return nil
}

// Run pumps fired reminders into notifications until ctx ends.
func (s *Service) Run(ctx context.Context) {
	s.engine.Start()
	defer s.engine.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case rem, ok := <-s.engine.C():
			if !ok {
				return
			}
			s.post(s.fromReminder(rem))
		}
	}
}

func (s *Service) fromReminder(rem model.Reminder) Notification {
	n := Notification{
		ID:     rem.ID,
		TaskID: rem.TaskID,
		Kind:   KindHard,
		Title:  rem.TaskName,
		Body:   "due now",
		At:     rem.TriggerTime,
	}
	if rem.Type == model.ReminderTypeSoft {
		n.Kind = KindSoft
		n.Body = "due at " + rem.TriggerTime.Add(s.lead).Format("15:04")
	}
	return n
}

func (s *Service) post(n Notification) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.active, func(a Notification) bool { return a.ID == n.ID })
	if idx >= 0 {
		s.active[idx] = n
	} else {
		s.active = append(s.active, n)
	}
	snapshot := slices.Clone(s.active)
	s.mu.Unlock()

	if err := s.notifier.Notify(n); err != nil {
		s.logger.Warn().
			Err(err).
			Str("notification", n.ID).
			Msg("failed to deliver notification")
	}
	s.logger.Info().
		Str("notification", n.ID).
		Str("kind", string(n.Kind)).
		Msg("notification posted")
	s.out.Publish(snapshot)
}

func (s *Service) Active() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.active)
}

// DeactivateAll acknowledges every active notification.
func (s *Service) DeactivateAll() {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
	s.out.Publish([]Notification{})
}

func (s *Service) Pending() []model.Reminder {
	return s.engine.Pending()
}

func (s *Service) Subscribe() *pubsub.Subscription[[]Notification] {
	return s.out.Subscribe()
}

func (s *Service) Close() {
	s.engine.Stop()
	s.out.Close()
}

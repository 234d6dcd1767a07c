package daily

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/daybook/internal/clock"
	"github.com/sandeepkv93/daybook/internal/model"
)

const DefaultTick = time.Minute

// Report summarizes one maintenance pass. Err joins every failure of the
// pass; none of them stop the remaining steps.
type Report struct {
	Today   model.DayKey
	Created bool
	Carried []model.Task
	Err     error
}

type Deps struct {
	Clock     clock.Clock
	Tasks     TaskStore
	Settings  SettingsStore
	Bootstrap SettingsBootstrap
	Reminders Reminders
	View      View
	Confirmer Confirmer
	Tick      time.Duration
}

type Orchestrator struct {
	clock     clock.Clock
	guard     *RunOnce
	generator *Generator
	carryover *Carryover
	settings  SettingsStore
	bootstrap SettingsBootstrap
	reminders Reminders
	view      View
	confirmer Confirmer
	tick      time.Duration
	logger    zerolog.Logger

	// pass is held for the whole of a maintenance pass.
	pass sync.Mutex

	mu         sync.Mutex
	today      model.DayKey
	minutesNow int64
}

func NewOrchestrator(deps Deps, logger zerolog.Logger) *Orchestrator {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Tick <= 0 {
		deps.Tick = DefaultTick
	}
	guard := NewRunOnce(deps.Settings)
	return &Orchestrator{
		clock:     deps.Clock,
		guard:     guard,
		generator: NewGenerator(deps.Tasks, guard, logger),
		carryover: NewCarryover(deps.Tasks, guard, logger),
		settings:  deps.Settings,
		bootstrap: deps.Bootstrap,
		reminders: deps.Reminders,
		view:      deps.View,
		confirmer: deps.Confirmer,
		tick:      deps.Tick,
		logger:    logger.With().Str("component", "orchestrator").Logger(),
	}
}

func (o *Orchestrator) Guard() *RunOnce { return o.guard }

// Today is the wall-clock day sampled at the last pass or tick.
func (o *Orchestrator) Today() model.DayKey {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.today
}

func (o *Orchestrator) MinutesNow() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.minutesNow
}

// Run starts the minute ticker, launches a full maintenance pass beside it
// and ticks until ctx ends. A pass waiting on a carryover decision does not
// hold up the ticks. On return the ticker is stopped and any running pass
// has finished.
func (o *Orchestrator) Run(ctx context.Context) error {
	var passes sync.WaitGroup
	defer passes.Wait()
	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()

	background := func(pass func()) {
		passes.Add(1)
		go func() {
			defer passes.Done()
			pass()
		}()
	}

	o.pass.Lock()
	o.sample(o.clock.Now())
	background(func() {
		defer o.pass.Unlock()
		o.runPass(ctx)
	})

	for {
		select {
		case <-ctx.Done():
			o.logger.Debug().Msg("maintenance loop stopped")
			return nil
		case <-ticker.C:
			o.beat(ctx, background)
		}
	}
}

// Bootstrap runs every maintenance step for the current wall-clock day in
// order. Steps already done today short-circuit on their guards. It waits
// for a pass already in flight.
func (o *Orchestrator) Bootstrap(ctx context.Context) Report {
	o.pass.Lock()
	defer o.pass.Unlock()
	return o.runPass(ctx)
}

func (o *Orchestrator) runPass(ctx context.Context) Report {
	now := o.clock.Now()
	today := model.DayKeyOf(now)
	o.sample(now)
	report := Report{Today: today}
	var errs []error

	if o.bootstrap != nil {
		if err := o.bootstrap.InitDefaults(ctx); err != nil {
			errs = append(errs, fmt.Errorf("init settings: %w", err))
		}
	}

	if err := o.initSummary(ctx, today); err != nil {
		errs = append(errs, err)
	}
	if err := o.refreshReminders(ctx); err != nil {
		errs = append(errs, err)
	}

	created, err := o.generator.ExecuteDailySchedule(ctx, today)
	if err != nil {
		errs = append(errs, fmt.Errorf("daily schedule: %w", err))
	}
	report.Created = created
	if created {
		if err := o.reload(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	autoImport, err := o.autoImport(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	carried, err := o.carryover.ResolvePendingCarryover(ctx, today, autoImport, o.confirmer)
	if err != nil {
		errs = append(errs, fmt.Errorf("pending carryover: %w", err))
	}
	report.Carried = carried
	if len(carried) > 0 {
		if err := o.reload(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	report.Err = errors.Join(errs...)
	event := o.logger.Info()
	if report.Err != nil {
		event = o.logger.Warn().Err(report.Err)
	}
	event.
		Stringer("day", today).
		Bool("created", report.Created).
		Int("carried", len(report.Carried)).
		Msg("daily maintenance complete")
	return report
}

// Tick handles one timer beat. On day rollover the view is hard reset and a
// full pass runs for the new day; otherwise the minute clock and reminders
// are refreshed. It reports whether a rollover pass ran.
func (o *Orchestrator) Tick(ctx context.Context) bool {
	return o.beat(ctx, func(pass func()) { pass() })
}

// beat hands a rollover pass to start. While another pass holds the lock
// the rollover is deferred to a later beat and only the minute clock and
// reminders move.
func (o *Orchestrator) beat(ctx context.Context, start func(pass func())) bool {
	now := o.clock.Now()
	day := model.DayKeyOf(now)
	if from := o.Today(); day != from {
		if o.pass.TryLock() {
			o.logger.Info().
				Stringer("from", from).
				Stringer("to", day).
				Msg("day rollover")
			if o.view != nil {
				if err := o.view.HardReset(ctx, now); err != nil {
					o.logger.Warn().Err(err).Msg("hard reset failed")
				}
			}
			o.sample(now)
			start(func() {
				defer o.pass.Unlock()
				o.runPass(ctx)
			})
			return true
		}
		o.logger.Debug().Stringer("to", day).Msg("rollover waits for running pass")
		o.sampleMinutes(now)
	} else {
		o.sample(now)
	}

	if err := o.refreshReminders(ctx); err != nil {
		o.logger.Warn().Err(err).Msg("reminder refresh failed")
	}
	return false
}

func (o *Orchestrator) sample(now time.Time) {
	o.mu.Lock()
	o.today = model.DayKeyOf(now)
	o.mu.Unlock()
	o.sampleMinutes(now)
}

func (o *Orchestrator) sampleMinutes(now time.Time) {
	minutes := now.Unix() / 60
	o.mu.Lock()
	o.minutesNow = minutes
	o.mu.Unlock()
	if o.view != nil {
		o.view.SetMinutesNow(minutes)
	}
}

func (o *Orchestrator) initSummary(ctx context.Context, today model.DayKey) error {
	if o.reminders == nil {
		return nil
	}
	run, err := o.guard.ShouldRun(ctx, GuardNotificationsSummary, today)
	if err != nil || !run {
		return err
	}
	if err := o.reminders.LoadInitialSummary(ctx); err != nil {
		return fmt.Errorf("reminder summary: %w", err)
	}
	return o.guard.MarkRan(ctx, GuardNotificationsSummary, today)
}

func (o *Orchestrator) refreshReminders(ctx context.Context) error {
	if o.reminders == nil {
		return nil
	}
	if err := o.reminders.ReloadReminders(ctx); err != nil {
		return fmt.Errorf("reload reminders: %w", err)
	}
	return nil
}

func (o *Orchestrator) autoImport(ctx context.Context) (bool, error) {
	item, ok, err := o.settings.Get(ctx, model.SettingAutoImportPendingTasks)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", model.SettingAutoImportPendingTasks, err)
	}
	return ok && item.Bool(), nil
}

func (o *Orchestrator) reload(ctx context.Context) error {
	if o.view == nil {
		return nil
	}
	if err := o.view.Reload(ctx); err != nil {
		return fmt.Errorf("reload view: %w", err)
	}
	return nil
}

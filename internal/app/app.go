// Package app wires storage, services and daily maintenance into one
// runnable unit shared by the terminal UI and the headless commands.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/daybook/internal/agenda"
	"github.com/sandeepkv93/daybook/internal/clock"
	"github.com/sandeepkv93/daybook/internal/config"
	"github.com/sandeepkv93/daybook/internal/cursor"
	"github.com/sandeepkv93/daybook/internal/daily"
	"github.com/sandeepkv93/daybook/internal/reminders"
	"github.com/sandeepkv93/daybook/internal/settings"
	"github.com/sandeepkv93/daybook/internal/storage"
	"github.com/sandeepkv93/daybook/internal/tasks"
)

type Options struct {
	Clock     clock.Clock
	Location  *time.Location
	Confirmer daily.Confirmer
	Notifier  reminders.Notifier
}

type App struct {
	Config       config.Config
	Clock        clock.Clock
	Store        *storage.SQLiteRepository
	Tasks        *tasks.Service
	Settings     *settings.Service
	Cursor       *cursor.Cursor
	Agenda       *agenda.Agenda
	Reminders    *reminders.Service
	Orchestrator *daily.Orchestrator

	logger zerolog.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func New(cfg config.Config, logger zerolog.Logger, opts Options) (*App, error) {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Notifier == nil {
		opts.Notifier = reminders.NopNotifier{}
		if cfg.DesktopNotifications {
			opts.Notifier = reminders.DesktopNotifier{}
		}
	}

	store, err := storage.Open(cfg.DBDriver, cfg.DBPath,
		storage.WithLocation(opts.Location),
		storage.WithNow(opts.Clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	taskSvc := tasks.NewService(store, logger)
	settingSvc := settings.NewService(store, logger)
	cur := cursor.New(opts.Clock.Now())
	view := agenda.New(cur, taskSvc, opts.Clock, logger)
	reminderSvc := reminders.NewService(taskSvc, opts.Clock, reminders.Options{
		Lead:     cfg.ReminderLead(),
		Buffer:   cfg.SchedulerBuffer,
		Notifier: opts.Notifier,
	}, logger)

	orch := daily.NewOrchestrator(daily.Deps{
		Clock:     opts.Clock,
		Tasks:     taskSvc,
		Settings:  settingSvc,
		Bootstrap: settingSvc,
		Reminders: reminderSvc,
		View:      view,
		Confirmer: opts.Confirmer,
		Tick:      cfg.Tick(),
	}, logger)

	logger.Debug().
		Str("db_path", cfg.DBPath).
		Str("db_driver", cfg.DBDriver).
		Msg("app initialized")

	return &App{
		Config:       cfg,
		Clock:        opts.Clock,
		Store:        store,
		Tasks:        taskSvc,
		Settings:     settingSvc,
		Cursor:       cur,
		Agenda:       view,
		Reminders:    reminderSvc,
		Orchestrator: orch,
		logger:       logger.With().Str("component", "app").Logger(),
	}, nil
}

// Start loads the current day and launches the agenda follower, the
// reminder pump and the maintenance loop. They stop on Close or when ctx
// ends.
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)

	a.Agenda.Start(ctx)
	if err := a.Agenda.Reload(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("initial load failed")
	}

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.Reminders.Run(ctx)
	}()
	go func() {
		defer a.wg.Done()
		if err := a.Orchestrator.Run(ctx); err != nil {
			a.logger.Error().Err(err).Msg("maintenance loop failed")
		}
	}()
}

// Maintain runs one maintenance pass without starting background loops.
func (a *App) Maintain(ctx context.Context) daily.Report {
	if err := a.Agenda.Reload(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("initial load failed")
	}
	return a.Orchestrator.Bootstrap(ctx)
}

func (a *App) Close() error {
	var err error
	a.once.Do(func() {
		if a.cancel != nil {
			a.cancel()
		}
		a.wg.Wait()
		a.Agenda.Close()
		a.Cursor.Close()
		a.Reminders.Close()
		a.Settings.Close()
		err = a.Store.Close()
	})
	if err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daybook/internal/app"
	"github.com/sandeepkv93/daybook/internal/config"
	"github.com/sandeepkv93/daybook/internal/cursor"
	"github.com/sandeepkv93/daybook/internal/daily"
	"github.com/sandeepkv93/daybook/internal/logging"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/reminders"
	"github.com/sandeepkv93/daybook/internal/update"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "daybook",
		Short:         "Day-by-day task planner for the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd.Context(), configPath(cmd))
		},
	}
	root.PersistentFlags().String("config", "", "Path to config.toml (default: user config dir)")

	root.AddCommand(newMaintainCmd(os.Stdout), newShowCmd(os.Stdout))
	return root
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}
	return config.LoadOrCreate(path)
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runShell(parent context.Context, path string) error {
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	// The terminal belongs to the shell, so logs go to a file.
	logger, logFile, err := logging.File(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, stop := signalContext(parent)
	defer stop()

	confirmer := update.NewPromptConfirmer()
	defer confirmer.Close()

	var notifier reminders.Notifier = reminders.BellNotifier{W: os.Stderr}
	if cfg.DesktopNotifications {
		notifier = reminders.DesktopNotifier{}
	}
	a, err := app.New(cfg, logger, app.Options{Confirmer: confirmer, Notifier: notifier})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()
	a.Start(ctx)

	m := update.NewModel(update.Deps{
		Agenda:        a.Agenda,
		Tasks:         a.Tasks,
		Notifications: a.Reminders,
		Confirmer:     confirmer,
		Clock:         a.Clock,
		Logger:        logger,
	})
	defer m.Close()

	logger.Info().Str("config", path).Str("db_path", cfg.DBPath).Msg("shell started")
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return fmt.Errorf("run shell: %w", err)
	}
	// Unblock a maintenance pass still waiting on a carryover answer.
	confirmer.Close()
	return nil
}

func newMaintainCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintain",
		Short: "Run one daily maintenance pass and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			accept, _ := cmd.Flags().GetBool("accept")
			comment, _ := cmd.Flags().GetString("comment")

			cfg, err := loadConfig(configPath(cmd))
			if err != nil {
				return err
			}
			logger, err := logging.Console(cfg.LogLevel)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			a, err := app.New(cfg, logger, app.Options{
				Confirmer: daily.StaticConfirmer{Accept: accept, Comment: comment},
			})
			if err != nil {
				return err
			}
			defer a.Close()

			report := a.Maintain(ctx)
			printReport(out, report)
			return report.Err
		},
	}
	cmd.Flags().Bool("accept", false, "Copy unfinished tasks from earlier days to today")
	cmd.Flags().String("comment", "", "Remarks stored on carried tasks")
	return cmd
}

func printReport(out io.Writer, r daily.Report) {
	fmt.Fprintf(out, "maintenance for %s\n", r.Today.Time(time.UTC).Format("Mon Jan 2, 2006"))
	if r.Created {
		fmt.Fprintln(out, "  repeating tasks: generated")
	} else {
		fmt.Fprintln(out, "  repeating tasks: already up to date")
	}
	fmt.Fprintf(out, "  carried forward: %d\n", len(r.Carried))
	for _, t := range r.Carried {
		fmt.Fprintf(out, "    - %s (%s)\n", t.Name, t.DueAt.Format("Mon Jan 2 15:04"))
	}
	if r.Err != nil {
		fmt.Fprintf(out, "  errors: %v\n", r.Err)
	}
}

func newShowCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the tasks of one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, _ := cmd.Flags().GetString("date")

			cfg, err := loadConfig(configPath(cmd))
			if err != nil {
				return err
			}
			logger, err := logging.Console(cfg.LogLevel)
			if err != nil {
				return err
			}
			a, err := app.New(cfg, logger, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			day := model.DayKeyOf(a.Clock.Now())
			if raw != "" {
				if day, err = model.ParseDayKey(raw); err != nil {
					return err
				}
			}
			items, err := a.Tasks.GetAllByDate(cmd.Context(), day)
			if err != nil {
				return err
			}
			printDay(out, day, items, a.Clock.Now())
			return nil
		},
	}
	cmd.Flags().StringP("date", "d", "", "Day to show in YYYY-MM-DD format (default: today)")
	return cmd
}

func printDay(out io.Writer, day model.DayKey, items []model.Task, now time.Time) {
	fmt.Fprintln(out, cursor.Title(day.Time(now.Location()), now))
	if len(items) == 0 {
		fmt.Fprintln(out, "  (no tasks)")
		return
	}
	for i, t := range items {
		mark := "[ ]"
		if t.Done {
			mark = "[x]"
		}
		line := fmt.Sprintf("%2d. %s %s  %s", i+1, mark, t.DueAt.Format("15:04"), t.Name)
		if t.Repeating() {
			line += "  (" + t.RepeatString() + ")"
		}
		fmt.Fprintln(out, line)
	}
}

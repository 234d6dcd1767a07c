package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daybook/internal/commands"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/tasks"
)

func (m Model) openPalette() (Model, tea.Cmd) {
	m.Mode = ModePalette
	m.commandInput.SetValue("")
	m.Status = StatusBar{Text: "command palette active"}
	cmd := m.commandInput.Focus()
	return m, cmd
}

func (m *Model) closePalette() {
	m.Mode = ModeList
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Cancel):
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case key.Matches(msg, m.Keys.Submit):
		raw := strings.TrimSpace(m.commandInput.Value())
		m.closePalette()
		return m.startOp(m.runCommand(raw))
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

// runCommand parses and executes raw off the UI goroutine.
func (m Model) runCommand(raw string) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		cmd, err := commands.Parse(raw)
		if err != nil {
			return "", err
		}
		res, err := commands.Execute(cmd, m.handlers(ctx))
		if err != nil {
			return "", err
		}
		return res.Message, nil
	}
}

func (m Model) handlers(ctx context.Context) commands.Handlers {
	return commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			day, loc := m.loadedDay()
			due := tasks.EndOfDay(day, loc)
			if a.At != "" {
				hm, err := time.Parse("15:04", a.At)
				if err != nil {
					return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
				}
				y, mo, d := day.Date()
				due = time.Date(y, mo, d, hm.Hour(), hm.Minute(), 0, 0, loc)
			}
			created, err := m.tasks.Create(ctx, model.NewTask(a.Name, due))
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added %q due %s", created.Name, created.DueAt.Format("Mon Jan 2 15:04"))}, nil
		},
		Done: func(s commands.StatusArgs) (commands.Result, error) {
			return m.setDone(ctx, s, true)
		},
		Reopen: func(s commands.StatusArgs) (commands.Result, error) {
			return m.setDone(ctx, s, false)
		},
		Delete: func(d commands.DeleteArgs) (commands.Result, error) {
			task, err := m.target(d.Target)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.tasks.Delete(ctx, task.ID); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("deleted %q", task.Name)}, nil
		},
		Repeat: func(r commands.RepeatArgs) (commands.Result, error) {
			task, err := m.target(r.Target)
			if err != nil {
				return commands.Result{}, err
			}
			rule, err := model.ParseRepeat(r.Rule)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			task.Repeat = rule
			if err := m.tasks.Update(ctx, task); err != nil {
				return commands.Result{}, err
			}
			if rule == nil {
				return commands.Result{Message: fmt.Sprintf("%q no longer repeats", task.Name)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("%q repeats %s", task.Name, rule)}, nil
		},
		Show: func(s commands.ShowArgs) (commands.Result, error) {
			day, err := m.resolveDay(s.Day)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.agenda.Show(ctx, day); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "showing " + day.Time(time.UTC).Format("Mon Jan 2, 2006")}, nil
		},
		Prev: func() (commands.Result, error) {
			m.agenda.Previous()
			return commands.Result{Message: "previous day"}, nil
		},
		Next: func() (commands.Result, error) {
			m.agenda.Next()
			return commands.Result{Message: "next day"}, nil
		},
		Today: func() (commands.Result, error) {
			if err := m.agenda.HardReset(ctx, m.clock.Now()); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "back to today"}, nil
		},
	}
}

func (m Model) setDone(ctx context.Context, s commands.StatusArgs, done bool) (commands.Result, error) {
	task, err := m.target(s.Target)
	if err != nil {
		return commands.Result{}, err
	}
	out, err := m.tasks.SetDone(ctx, task, done, s.Comment)
	if err != nil {
		return commands.Result{}, err
	}
	verb := "reopened"
	if done {
		verb = "completed"
	}
	return commands.Result{Message: fmt.Sprintf("%s %q (%s)", verb, out.Name, out.Remarks)}, nil
}

// target resolves a palette target to a task of the loaded day.
func (m Model) target(target string) (model.Task, error) {
	idx := m.Selected
	if n := commands.Target(target); n > 0 {
		idx = n - 1
	}
	if idx < 0 || idx >= len(m.Snapshot.Tasks) {
		return model.Task{}, &commands.CommandError{
			Code:    commands.ErrCodeInvalidArgument,
			Message: fmt.Sprintf("no task %s on this day", target),
		}
	}
	return m.Snapshot.Tasks[idx], nil
}

func (m Model) resolveDay(raw string) (model.DayKey, error) {
	today := model.DayKeyOf(m.clock.Now())
	switch raw {
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDays(-1), nil
	case "tomorrow":
		return today.AddDays(1), nil
	}
	day, err := model.ParseDayKey(raw)
	if err != nil {
		return 0, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
	}
	return day, nil
}

func (m Model) loadedDay() (model.DayKey, *time.Location) {
	if m.Snapshot.Day != 0 {
		return m.Snapshot.Day, m.Snapshot.LoadedAt.Location()
	}
	now := m.clock.Now()
	return model.DayKeyOf(now), now.Location()
}

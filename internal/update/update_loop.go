package update

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daybook/internal/daily"
	"github.com/sandeepkv93/daybook/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitSnapshot(), m.waitNotifications(), m.waitConfirm())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(typed, m.Keys.ForceEnd) {
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.Mode {
		case ModePalette:
			return m.handlePaletteKey(typed)
		case ModeRemarks:
			return m.handleRemarksKey(typed)
		case ModeDelete:
			return m.handleDeleteKey(typed)
		case ModeCarryover:
			return m.handleCarryoverKey(typed)
		case ModeCarryoverComment:
			return m.handleCarryoverCommentKey(typed)
		default:
			return m.handleListKey(typed)
		}
	case tea.WindowSizeMsg:
		m.detail.Width = max(typed.Width/2-6, 20)
		m.input.Width = max(typed.Width-20, 20)
		m.commandInput.Width = max(typed.Width-20, 20)
		m.syncDetail()
		return m, nil
	case spinner.TickMsg:
		if m.Busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case SnapshotMsg:
		m.applySnapshot(typed.Snapshot)
		return m, m.waitSnapshot()
	case NotificationsMsg:
		m.Notifications = typed.Items
		return m, m.waitNotifications()
	case ConfirmRequestMsg:
		m.Pending = typed.Prompt
		m.Mode = ModeCarryover
		m.input.Blur()
		m.commandInput.Blur()
		m.Status = StatusBar{Text: fmt.Sprintf("%d unfinished task(s) from earlier days", len(typed.Prompt.Request.Pending))}
		return m, nil
	case opResultMsg:
		m.Busy = false
		if typed.snapshot != nil {
			m.applySnapshot(*typed.snapshot)
		}
		if typed.err != nil {
			m.LastError = typed.err
			m.Status = StatusBar{Text: typed.err.Error(), IsError: true}
			m.logger.Warn().Err(typed.err).Msg("operation failed")
			return m, nil
		}
		m.Status = StatusBar{Text: typed.text}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.Quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.Keys.PrevDay):
		if m.agenda != nil {
			m.agenda.Previous()
		}
		return m, nil
	case key.Matches(msg, m.Keys.NextDay):
		if m.agenda != nil {
			m.agenda.Next()
		}
		return m, nil
	case key.Matches(msg, m.Keys.Up):
		if m.Selected > 0 {
			m.Selected--
			m.syncDetail()
		}
		return m, nil
	case key.Matches(msg, m.Keys.Down):
		if m.Selected < len(m.Snapshot.Tasks)-1 {
			m.Selected++
			m.syncDetail()
		}
		return m, nil
	case key.Matches(msg, m.Keys.Toggle):
		task, ok := m.SelectedTask()
		if !ok {
			m.Status = StatusBar{Text: "no task selected", IsError: true}
			return m, nil
		}
		m.Mode = ModeRemarks
		m.input.SetValue("")
		m.input.Placeholder = "remarks (optional)"
		m.input.Prompt = "> "
		verb := "Mark done"
		if task.Done {
			verb = "Reopen"
		}
		m.Status = StatusBar{Text: fmt.Sprintf("%s %q: enter remarks, [enter] save, [esc] cancel", verb, task.Name)}
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.Keys.Delete):
		task, ok := m.SelectedTask()
		if !ok {
			m.Status = StatusBar{Text: "no task selected", IsError: true}
			return m, nil
		}
		m.Mode = ModeDelete
		m.Status = StatusBar{Text: fmt.Sprintf("delete %q? [y/n]", task.Name)}
		return m, nil
	case key.Matches(msg, m.Keys.Palette):
		return m.openPalette()
	case key.Matches(msg, m.Keys.Dismiss):
		m.dismissNotifications()
		return m, nil
	case key.Matches(msg, m.Keys.Help):
		m.HelpVisible = !m.HelpVisible
		return m, nil
	}
	return m, nil
}

func (m Model) handleRemarksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Cancel):
		m.Mode = ModeList
		m.input.Blur()
		m.Status = StatusBar{Text: "cancelled"}
		return m, nil
	case key.Matches(msg, m.Keys.Submit):
		task, ok := m.SelectedTask()
		remarks := strings.TrimSpace(m.input.Value())
		m.Mode = ModeList
		m.input.Blur()
		if !ok {
			return m, nil
		}
		svc := m.tasks
		return m.startOp(func(ctx context.Context) (string, error) {
			out, err := svc.SetDone(ctx, task, !task.Done, remarks)
			if err != nil {
				return "", err
			}
			if out.Done {
				return fmt.Sprintf("completed %q (%s)", out.Name, out.Remarks), nil
			}
			return fmt.Sprintf("reopened %q (%s)", out.Name, out.Remarks), nil
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Accept):
		task, ok := m.SelectedTask()
		m.Mode = ModeList
		if !ok {
			return m, nil
		}
		svc := m.tasks
		return m.startOp(func(ctx context.Context) (string, error) {
			if err := svc.Delete(ctx, task.ID); err != nil {
				return "", err
			}
			return fmt.Sprintf("deleted %q", task.Name), nil
		})
	case key.Matches(msg, m.Keys.Decline), key.Matches(msg, m.Keys.Cancel):
		m.Mode = ModeList
		m.Status = StatusBar{Text: "delete cancelled"}
	}
	return m, nil
}

func (m Model) handleCarryoverKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Accept):
		m.Mode = ModeCarryoverComment
		m.input.SetValue("")
		m.input.Placeholder = "comment for the carried tasks (optional)"
		m.input.Prompt = "> "
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.Keys.Decline):
		return m.answerCarryover(daily.Decision{Accepted: false})
	}
	return m, nil
}

func (m Model) handleCarryoverCommentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Cancel):
		m.Mode = ModeCarryover
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.Keys.Submit):
		comment := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		return m.answerCarryover(daily.Decision{Accepted: true, Comment: comment})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) answerCarryover(d daily.Decision) (tea.Model, tea.Cmd) {
	if m.Pending != nil {
		m.Pending.Answer(d)
	}
	m.Pending = nil
	m.Mode = ModeList
	if d.Accepted {
		m.Status = StatusBar{Text: "carrying unfinished tasks forward"}
	} else {
		m.Status = StatusBar{Text: "unfinished tasks left where they are"}
	}
	return m, m.waitConfirm()
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	busy := ""
	if m.Busy {
		busy = m.spinner.View()
	}
	rows := make([]views.TaskRow, 0, len(m.Snapshot.Tasks))
	for _, task := range m.Snapshot.Tasks {
		repeat := ""
		if task.Repeating() {
			repeat = task.RepeatString()
		}
		rows = append(rows, views.TaskRow{
			Name:    task.Name,
			Due:     task.DueAt.Format("15:04"),
			Repeat:  repeat,
			Done:    task.Done,
			Overdue: m.Snapshot.Overdue(task),
			DueSoon: m.Snapshot.DueSoon(task),
		})
	}
	loadErr := ""
	if m.Snapshot.Err != nil {
		loadErr = m.Snapshot.Err.Error()
	}
	title := m.Snapshot.Title
	if title == "" {
		title = "loading..."
	}

	return views.RenderApp(views.AppData{
		Header: fmt.Sprintf("daybook | %s | %d task(s)", title, len(m.Snapshot.Tasks)),
		LeftPane: views.RenderDayPanel(views.DayPanelData{
			Title:    title,
			Rows:     rows,
			Selected: m.Selected,
			Busy:     busy,
			Err:      loadErr,
		}),
		RightPane:    m.detail.View() + m.renderHelpIfVisible(),
		Prompt:       m.renderPrompt(),
		StatusLine:   m.Status.Text,
		StatusError:  m.Status.IsError,
		Notification: m.renderNotificationsView(),
		Footer:       m.helpModel.ShortHelpView(m.Keys.ShortHelp()),
	})
}

func (m Model) renderPrompt() string {
	switch m.Mode {
	case ModePalette:
		return views.RenderCommandPalette(true, m.commandInput.View())
	case ModeRemarks:
		return views.RenderPrompt(views.PromptData{
			Question:  "remarks",
			InputView: m.input.View(),
			Hint:      "[enter] save  [esc] cancel",
		})
	case ModeCarryover, ModeCarryoverComment:
		if m.Pending == nil {
			return ""
		}
		names := make([]string, 0, len(m.Pending.Request.Pending))
		for _, t := range m.Pending.Request.Pending {
			names = append(names, "- "+t.Name+" ("+t.DueAt.Format("Mon Jan 2")+")")
		}
		data := views.PromptData{
			Question: fmt.Sprintf("Copy %d unfinished task(s) forward?\n%s", len(names), strings.Join(names, "\n")),
			Hint:     "[y] yes  [n] no",
		}
		if m.Mode == ModeCarryoverComment {
			data.InputView = m.input.View()
			data.Hint = "[enter] confirm  [esc] back"
		}
		return views.RenderPrompt(data)
	}
	return ""
}

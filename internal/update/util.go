package update

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daybook/internal/agenda"
	"github.com/sandeepkv93/daybook/internal/reminders"
)

// waitFor turns one receive on ch into a message. A closed channel yields
// no message, which ends the listen loop.
func waitFor[T any](ch <-chan T, wrap func(T) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return wrap(v)
	}
}

func (m Model) waitSnapshot() tea.Cmd {
	if m.snapshots == nil {
		return nil
	}
	return waitFor(m.snapshots.C(), func(s agenda.Snapshot) tea.Msg { return SnapshotMsg{Snapshot: s} })
}

func (m Model) waitNotifications() tea.Cmd {
	if m.noteSub == nil {
		return nil
	}
	return waitFor(m.noteSub.C(), func(items []reminders.Notification) tea.Msg { return NotificationsMsg{Items: items} })
}

func (m Model) waitConfirm() tea.Cmd {
	if m.confirmer == nil {
		return nil
	}
	return waitFor(m.confirmer.Requests(), func(p *ConfirmPrompt) tea.Msg { return ConfirmRequestMsg{Prompt: p} })
}

// startOp marks the shell busy and runs op off the UI goroutine. On success
// the loaded day is reloaded so the result carries fresh state.
func (m Model) startOp(op func(ctx context.Context) (string, error)) (Model, tea.Cmd) {
	m.Busy = true
	ag := m.agenda
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		text, err := op(ctx)
		if err != nil || ag == nil {
			return opResultMsg{text: text, err: err}
		}
		if err := ag.Reload(ctx); err != nil {
			return opResultMsg{text: text, err: err}
		}
		snap := ag.Current()
		return opResultMsg{text: text, snapshot: &snap}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/rs/zerolog"

	"github.com/sandeepkv93/daybook/internal/agenda"
	"github.com/sandeepkv93/daybook/internal/clock"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/pubsub"
	"github.com/sandeepkv93/daybook/internal/reminders"
)

const opTimeout = 10 * time.Second

type Mode string

const (
	ModeList             Mode = "list"
	ModePalette          Mode = "palette"
	ModeRemarks          Mode = "remarks"
	ModeDelete           Mode = "delete"
	ModeCarryover        Mode = "carryover"
	ModeCarryoverComment Mode = "carryover-comment"
)

type StatusBar struct {
	Text    string
	IsError bool
}

// TaskService is the write side the shell needs.
type TaskService interface {
	Create(ctx context.Context, in model.Task) (model.Task, error)
	Update(ctx context.Context, in model.Task) error
	Delete(ctx context.Context, id int64) error
	SetDone(ctx context.Context, task model.Task, done bool, remarks string) (model.Task, error)
}

type NotificationCenter interface {
	DeactivateAll()
	Subscribe() *pubsub.Subscription[[]reminders.Notification]
}

type Deps struct {
	Agenda        *agenda.Agenda
	Tasks         TaskService
	Notifications NotificationCenter
	Confirmer     *PromptConfirmer
	Clock         clock.Clock
	Logger        zerolog.Logger
}

type Model struct {
	Mode          Mode
	Snapshot      agenda.Snapshot
	Selected      int
	Notifications []reminders.Notification
	Pending       *ConfirmPrompt
	Status        StatusBar
	HelpVisible   bool
	Keys          KeyMap
	Busy          bool
	Quitting      bool
	LastError     error

	agenda    *agenda.Agenda
	tasks     TaskService
	notes     NotificationCenter
	confirmer *PromptConfirmer
	clock     clock.Clock
	logger    zerolog.Logger

	snapshots *pubsub.Subscription[agenda.Snapshot]
	noteSub   *pubsub.Subscription[[]reminders.Notification]

	input        textinput.Model
	commandInput textinput.Model
	helpModel    help.Model
	detail       viewport.Model
	spinner      spinner.Model
}

type SnapshotMsg struct {
	Snapshot agenda.Snapshot
}

type NotificationsMsg struct {
	Items []reminders.Notification
}

type ConfirmRequestMsg struct {
	Prompt *ConfirmPrompt
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// opResultMsg reports a finished store operation together with the view
// state it left behind.
type opResultMsg struct {
	text     string
	err      error
	snapshot *agenda.Snapshot
}

func NewModel(deps Deps) Model {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	m := Model{
		Mode:      ModeList,
		Keys:      DefaultKeyMap(),
		agenda:    deps.Agenda,
		tasks:     deps.Tasks,
		notes:     deps.Notifications,
		confirmer: deps.Confirmer,
		clock:     deps.Clock,
		logger:    deps.Logger.With().Str("component", "shell").Logger(),
	}
	if m.agenda != nil {
		m.Snapshot = m.agenda.Current()
		m.snapshots = m.agenda.Subscribe()
	}
	if m.notes != nil {
		m.noteSub = m.notes.Subscribe()
	}
	m.initBubbleComponents()
	m.syncDetail()
	return m
}

func (m *Model) initBubbleComponents() {
	m.input = textinput.New()
	m.input.CharLimit = 256
	m.input.Width = 48

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.Placeholder = "add pay rent @18:30"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
	m.helpModel.ShowAll = true

	m.detail = viewport.New(50, 12)

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
}

// SelectedTask returns the highlighted task of the loaded day.
func (m Model) SelectedTask() (model.Task, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Snapshot.Tasks) {
		return model.Task{}, false
	}
	return m.Snapshot.Tasks[m.Selected], true
}

func (m *Model) applySnapshot(snap agenda.Snapshot) {
	if snap.Day != m.Snapshot.Day {
		m.Selected = 0
	}
	m.Snapshot = snap
	m.clampSelection()
	m.syncDetail()
}

func (m *Model) clampSelection() {
	if m.Selected >= len(m.Snapshot.Tasks) {
		m.Selected = len(m.Snapshot.Tasks) - 1
	}
	if m.Selected < 0 {
		m.Selected = 0
	}
}

// Close releases the shell's subscriptions.
func (m Model) Close() {
	if m.snapshots != nil {
		m.snapshots.Close()
	}
	if m.noteSub != nil {
		m.noteSub.Close()
	}
}

package update

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/daybook/internal/views"
)

type KeyMap struct {
	PrevDay  key.Binding
	NextDay  key.Binding
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Delete   key.Binding
	Palette  key.Binding
	Dismiss  key.Binding
	Help     key.Binding
	Quit     key.Binding
	Accept   key.Binding
	Decline  key.Binding
	Submit   key.Binding
	Cancel   key.Binding
	ForceEnd key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevDay:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "previous day")),
		NextDay:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next day")),
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "select up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "select down")),
		Toggle:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle done")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		Palette:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "command palette")),
		Dismiss:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "dismiss notifications")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Accept:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		Decline:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		ForceEnd: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevDay, k.NextDay, k.Toggle, k.Palette, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevDay, k.NextDay, k.Up, k.Down},
		{k.Toggle, k.Delete, k.Dismiss},
		{k.Palette, k.Help, k.Quit},
	}
}

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return "\n\n" + views.RenderHelpPanel(views.HelpPanelData{
		Bindings: paletteHelp,
		HelpView: m.helpModel.View(m.Keys),
	})
}

var paletteHelp = []string{
	"/add <name> [@HH:MM]",
	"/done [n] [remarks]   /reopen [n] [remarks]",
	"/delete [n]",
	"/repeat [n] <daily|weekdays|weekly|monthly|yearly|every-N-days|no-repeat>",
	"/show <today|yesterday|tomorrow|YYYY-MM-DD>",
	"/prev  /next  /today",
}

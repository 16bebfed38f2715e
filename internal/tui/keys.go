package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the dashboard keybindings. Update handlers and the help
// bar both read from it, so the two cannot drift apart.
type keyMap struct {
	Quit       key.Binding
	CycleFocus key.Binding
	Agents     key.Binding
	Projects   key.Binding
	Down       key.Binding
	Up         key.Binding
	Settings   key.Binding
	Dismiss    key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	CycleFocus: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "cycle focus"),
	),
	Agents: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "agents"),
	),
	Projects: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "projects"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/k", "select agent"),
	),
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
	),
	Settings: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "settings"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("esc"),
	),
}

// HelpView renders the one-line help bar from the dashboard bindings.
// Bindings without help text (Up rides along with Down) are left out.
func HelpView() string {
	shown := []key.Binding{keys.CycleFocus, keys.Agents, keys.Projects, keys.Down, keys.Settings, keys.Quit}
	parts := make([]string, 0, len(shown))
	for _, b := range shown {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return StyleHelp.Render(strings.Join(parts, " | "))
}

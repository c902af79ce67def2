package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Back      key.Binding
	Forward   key.Binding
	JumpBack  key.Binding
	JumpFwd   key.Binding
	Start     key.Binding
	End       key.Binding
	Narrative key.Binding
	StepUp    key.Binding
	StepDown  key.Binding
	Clear     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Forward, k.Narrative, k.Clear, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Back, k.Forward, k.JumpBack, k.JumpFwd},
		{k.Start, k.End, k.Narrative, k.StepUp, k.StepDown},
		{k.Clear, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Back: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "back 1%"),
	),
	Forward: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "forward 1%"),
	),
	JumpBack: key.NewBinding(
		key.WithKeys("pgup", "H"),
		key.WithHelp("pgup/H", "back 10%"),
	),
	JumpFwd: key.NewBinding(
		key.WithKeys("pgdown", "L"),
		key.WithHelp("pgdn/L", "forward 10%"),
	),
	Start: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("g", "first commit"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("G", "last commit"),
	),
	Narrative: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "narrative"),
	),
	StepUp: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous step"),
	),
	StepDown: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next step"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc", "c"),
		key.WithHelp("esc", "clear brush"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

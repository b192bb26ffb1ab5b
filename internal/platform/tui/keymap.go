package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tomcoolpxl/tank-wars/internal/core"
	"github.com/tomcoolpxl/tank-wars/internal/sim"
)

// MatchKeyMap holds the in-match key bindings.
type MatchKeyMap struct {
	AngleUp   key.Binding
	AngleDown key.Binding
	PowerUp   key.Binding
	PowerDown key.Binding
	Fire      key.Binding
	PlayAgain key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultMatchKeyMap returns the standard bindings. Angle grows to the
// left, so the left arrow raises it.
func DefaultMatchKeyMap() MatchKeyMap {
	return MatchKeyMap{
		AngleUp: key.NewBinding(
			key.WithKeys("left", "a"),
			key.WithHelp("←/a", "aim left"),
		),
		AngleDown: key.NewBinding(
			key.WithKeys("right", "d"),
			key.WithHelp("→/d", "aim right"),
		),
		PowerUp: key.NewBinding(
			key.WithKeys("up", "w"),
			key.WithHelp("↑/w", "power +"),
		),
		PowerDown: key.NewBinding(
			key.WithKeys("down", "s"),
			key.WithHelp("↓/s", "power -"),
		),
		Fire: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "fire"),
		),
		PlayAgain: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "play again"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k MatchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.AngleUp, k.AngleDown, k.PowerUp, k.PowerDown, k.Fire, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k MatchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.AngleUp, k.AngleDown, k.PowerUp, k.PowerDown},
		{k.Fire, k.PlayAgain, k.Help, k.Quit},
	}
}

// Action maps a key press to a semantic action.
func (k MatchKeyMap) Action(msg tea.KeyMsg) core.Action {
	switch {
	case key.Matches(msg, k.Quit):
		return core.ActionQuit
	case key.Matches(msg, k.AngleUp):
		return core.ActionAngleUp
	case key.Matches(msg, k.AngleDown):
		return core.ActionAngleDown
	case key.Matches(msg, k.PowerUp):
		return core.ActionPowerUp
	case key.Matches(msg, k.PowerDown):
		return core.ActionPowerDown
	case key.Matches(msg, k.Fire):
		return core.ActionFire
	case key.Matches(msg, k.PlayAgain):
		return core.ActionPlayAgain
	case key.Matches(msg, k.Help):
		return core.ActionHelp
	}
	return core.ActionNone
}

// simInputs converts the aim actions of a frame to simulation inputs.
func simInputs(f core.InputFrame) sim.Inputs {
	return sim.Inputs{
		AngleUp:   f.Has(core.ActionAngleUp),
		AngleDown: f.Has(core.ActionAngleDown),
		PowerUp:   f.Has(core.ActionPowerUp),
		PowerDown: f.Has(core.ActionPowerDown),
	}
}

// ListKeyMap holds bindings shared by the lobby and history screens.
type ListKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// DefaultListKeyMap returns the standard list bindings.
func DefaultListKeyMap() ListKeyMap {
	return ListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k ListKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ListKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Select}, {k.Back, k.Quit}}
}

package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tomcoolpxl/tank-wars/internal/core"
)

func TestMatchKeyMapAction(t *testing.T) {
	keys := DefaultMatchKeyMap()
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want core.Action
	}{
		{"left raises angle", tea.KeyMsg{Type: tea.KeyLeft}, core.ActionAngleUp},
		{"right lowers angle", tea.KeyMsg{Type: tea.KeyRight}, core.ActionAngleDown},
		{"up adds power", tea.KeyMsg{Type: tea.KeyUp}, core.ActionPowerUp},
		{"s removes power", runeKey('s'), core.ActionPowerDown},
		{"space fires", runeKey(' '), core.ActionFire},
		{"enter fires", tea.KeyMsg{Type: tea.KeyEnter}, core.ActionFire},
		{"r plays again", runeKey('r'), core.ActionPlayAgain},
		{"q quits", runeKey('q'), core.ActionQuit},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit},
		{"unbound", runeKey('z'), core.ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keys.Action(tt.msg); got != tt.want {
				t.Errorf("Action(%q) = %v, want %v", tt.msg.String(), got, tt.want)
			}
		})
	}
}

func TestSimInputs(t *testing.T) {
	var f core.InputFrame
	f.Set(core.ActionAngleUp)
	f.Set(core.ActionPowerDown)
	f.Set(core.ActionFire)

	in := simInputs(f)
	if !in.AngleUp || in.AngleDown || in.PowerUp || !in.PowerDown {
		t.Errorf("simInputs() = %+v", in)
	}
}

package tui

import (
	"fmt"
	"strings"

	"github.com/tomcoolpxl/tank-wars/internal/core"
	"github.com/tomcoolpxl/tank-wars/internal/sim"
)

// hudRows is the height of the status area under the world.
const hudRows = 3

const healthBarWidth = 10

// hudState is what the HUD shows besides the simulation itself.
type hudState struct {
	names   [2]string
	local   int // -1 when both tanks are local
	status  string
	warning bool
}

func healthBar(hp int) string {
	hp = core.Clamp(hp, 0, sim.MaxHealth)
	filled := (hp*healthBarWidth + sim.MaxHealth - 1) / sim.MaxHealth
	return strings.Repeat("█", filled) + strings.Repeat("░", healthBarWidth-filled)
}

// windLabel shows direction and strength, e.g. "<<< 9" or "3 >".
func windLabel(w int) string {
	arrows := (core.Abs(w) + 4) / 5
	switch {
	case w < 0:
		return fmt.Sprintf("%s %d", strings.Repeat("<", arrows), -w)
	case w > 0:
		return fmt.Sprintf("%d %s", w, strings.Repeat(">", arrows))
	default:
		return "calm"
	}
}

func timerLabel(ticks int) string {
	secs := (ticks + sim.TicksPerSecond - 1) / sim.TicksPerSecond
	return fmt.Sprintf("%2ds", max(secs, 0))
}

// drawHUD fills the rows from top down with health, aim and turn state.
func drawHUD(scr *core.Screen, s *sim.Simulation, h hudState, top int) {
	w := scr.Width()
	for x := range w {
		scr.Set(x, top, '─', core.ColorDim)
	}

	left := s.Tank(0)
	right := s.Tank(1)
	l := fmt.Sprintf("%s %s %3d", h.names[0], healthBar(left.Health), left.Health)
	r := fmt.Sprintf("%3d %s %s", right.Health, healthBar(right.Health), h.names[1])
	scr.DrawText(1, top+1, l, core.TankColor(0))
	scr.DrawText(w-len([]rune(r))-1, top+1, r, core.TankColor(1))

	rules := s.Rules()
	scr.DrawTextCentered(top+1, "wind "+windLabel(rules.Wind), core.ColorText)

	line := turnLine(s, h)
	color := core.TankColor(rules.ActivePlayer)
	if s.IsOver() {
		color = core.ColorWarn
	}
	scr.DrawText(1, top+2, line, color)

	if h.status != "" {
		c := core.ColorDim
		if h.warning {
			c = core.ColorWarn
		}
		scr.DrawText(w-len([]rune(h.status))-1, top+2, h.status, c)
	}
}

func turnLine(s *sim.Simulation, h hudState) string {
	rules := s.Rules()
	if s.Phase() == sim.PhaseLobby {
		return "waiting to start"
	}
	if s.IsOver() {
		return "game over"
	}
	t := s.Tank(rules.ActivePlayer)
	who := h.names[rules.ActivePlayer]
	if h.local == rules.ActivePlayer {
		who = "your"
	} else {
		who += "'s"
	}

	switch s.Phase() {
	case sim.PhaseTurnAim:
		return fmt.Sprintf("turn %d  %s shot  angle %3d°  power %3d  %s",
			rules.Turn, who, t.AimAngle, t.AimPower, timerLabel(rules.TurnTimer))
	case sim.PhaseProjectileFlight:
		return fmt.Sprintf("turn %d  shell in flight", rules.Turn)
	default:
		return fmt.Sprintf("turn %d  settling", rules.Turn)
	}
}

// outcomeText describes how the match ended from the viewer's seat.
func outcomeText(winner, local int, names [2]string) string {
	switch winner {
	case sim.WinnerDraw:
		return "DRAW"
	case sim.WinnerAborted:
		return "MATCH ABORTED"
	case 0, 1:
		if local < 0 {
			return strings.ToUpper(names[winner]) + " WINS"
		}
		if winner == local {
			return "YOU WIN"
		}
		return "YOU LOSE"
	default:
		return ""
	}
}

// drawOverlay draws a centred box with lines of text.
func drawOverlay(scr *core.Screen, rows int, lines []string, c core.Color) {
	width := 0
	for _, l := range lines {
		width = max(width, len([]rune(l)))
	}
	boxW := width + 4
	boxH := len(lines) + 2
	x := (scr.Width() - boxW) / 2
	y := (rows - boxH) / 2
	box := core.NewRect(x, y, boxW, boxH)
	scr.FillRect(box, ' ', core.ColorDefault)
	scr.DrawBox(box, c)
	for i, l := range lines {
		scr.DrawTextCentered(y+1+i, l, c)
	}
}

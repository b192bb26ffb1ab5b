package tui

import (
	"strings"
	"testing"

	"github.com/tomcoolpxl/tank-wars/internal/core"
	"github.com/tomcoolpxl/tank-wars/internal/sim"
)

func TestRenderScreenKeepsText(t *testing.T) {
	scr := core.NewScreen(20, 3)
	scr.DrawText(2, 1, "hello", core.ColorText)
	scr.DrawText(10, 1, "tank", core.ColorTank1)

	out := RenderScreen(scr)
	if n := strings.Count(out, "\n"); n != 2 {
		t.Errorf("got %d newlines, want 2", n)
	}
	for _, want := range []string{"hello", "tank"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered screen lacks %q", want)
		}
	}
}

func TestDrawWorldShowsTerrainAndTanks(t *testing.T) {
	s := sim.New(1234)
	s.Start()
	scr := core.NewScreen(100, 32)
	rows := scr.Height() - hudRows

	drawWorld(scr, scene{sim: s}, rows)

	counts := map[core.Color]int{}
	for y := range scr.Height() {
		for x := range scr.Width() {
			counts[scr.Get(x, y).Color]++
		}
	}
	for _, c := range []core.Color{core.ColorTerrain, core.ColorTerrainEdge, core.ColorTank0, core.ColorTank1} {
		if counts[c] == 0 {
			t.Errorf("no cells drawn in colour %d", c)
		}
	}
	for x := range scr.Width() {
		if c := scr.Get(x, rows).Color; c != core.ColorDefault {
			t.Fatalf("world drawn into HUD row at column %d", x)
		}
	}
}

func TestBarrelRune(t *testing.T) {
	tests := []struct {
		angle int
		want  rune
	}{
		{0, '─'},
		{45, '╱'},
		{90, '│'},
		{135, '╲'},
		{180, '─'},
	}
	for _, tt := range tests {
		if got := barrelRune(tt.angle); got != tt.want {
			t.Errorf("barrelRune(%d) = %q, want %q", tt.angle, got, tt.want)
		}
	}
}

func TestHealthBar(t *testing.T) {
	tests := []struct {
		name string
		hp   int
		full int
	}{
		{"full", sim.MaxHealth, healthBarWidth},
		{"dead", 0, 0},
		{"scratch left", 1, 1},
		{"half", 50, 5},
		{"over max", 150, healthBarWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := healthBar(tt.hp)
			if got := strings.Count(bar, "█"); got != tt.full {
				t.Errorf("healthBar(%d) has %d full cells, want %d", tt.hp, got, tt.full)
			}
			if n := len([]rune(bar)); n != healthBarWidth {
				t.Errorf("bar width = %d", n)
			}
		})
	}
}

func TestWindLabel(t *testing.T) {
	tests := []struct {
		wind int
		want string
	}{
		{0, "calm"},
		{3, "3 >"},
		{-9, "<< 9"},
		{15, "15 >>>"},
	}
	for _, tt := range tests {
		if got := windLabel(tt.wind); got != tt.want {
			t.Errorf("windLabel(%d) = %q, want %q", tt.wind, got, tt.want)
		}
	}
}

func TestOutcomeText(t *testing.T) {
	names := [2]string{"alice", "bob"}
	tests := []struct {
		name   string
		winner int
		local  int
		want   string
	}{
		{"hotseat winner", 1, -1, "BOB WINS"},
		{"local win", 0, 0, "YOU WIN"},
		{"local loss", 0, 1, "YOU LOSE"},
		{"draw", sim.WinnerDraw, 0, "DRAW"},
		{"aborted", sim.WinnerAborted, -1, "MATCH ABORTED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcomeText(tt.winner, tt.local, names); got != tt.want {
				t.Errorf("outcomeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHUDShowsAimForActivePlayer(t *testing.T) {
	s := sim.New(5)
	s.Start()
	scr := core.NewScreen(100, 10)

	drawHUD(scr, s, hudState{names: [2]string{"P1", "P2"}, local: 0}, 7)

	line := scr.Row(9)
	for _, want := range []string{"turn 1", "your shot", "angle  45", "power  50"} {
		if !strings.Contains(line, want) {
			t.Errorf("turn line %q lacks %q", line, want)
		}
	}
}

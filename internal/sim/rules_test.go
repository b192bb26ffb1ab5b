package sim

import (
	"testing"

	"github.com/tomcoolpxl/tank-wars/internal/rng"
)

type scriptedSource struct {
	values []int
}

func (s *scriptedSource) NextInt(lo, hi int) int {
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

func TestRulesStartInLobby(t *testing.T) {
	r := NewRules()
	if r.Phase != PhaseLobby || r.Winner != WinnerNone {
		t.Errorf("new rules = %+v", r)
	}
}

func TestRulesStartMatch(t *testing.T) {
	r := NewRules()
	r.StartMatch(rng.New(123))
	if r.Phase != PhaseTurnAim {
		t.Errorf("phase = %v, want TurnAim", r.Phase)
	}
	if r.Turn != 1 || r.ActivePlayer != 0 {
		t.Errorf("turn=%d active=%d, want 1 and 0", r.Turn, r.ActivePlayer)
	}
	if r.TurnTimer != TurnDurationTicks {
		t.Errorf("timer = %d, want %d", r.TurnTimer, TurnDurationTicks)
	}
}

func TestRulesCyclePlayers(t *testing.T) {
	r := NewRules()
	src := rng.New(123)
	r.StartMatch(src)

	want := []struct{ player, turn int }{{1, 2}, {0, 3}, {1, 4}}
	for _, w := range want {
		r.TurnTimer = 7
		r.NextTurn(src)
		if r.ActivePlayer != w.player || r.Turn != w.turn {
			t.Errorf("got player %d turn %d, want player %d turn %d", r.ActivePlayer, r.Turn, w.player, w.turn)
		}
		if r.TurnTimer != TurnDurationTicks || r.Phase != PhaseTurnAim {
			t.Errorf("turn %d not reset: %+v", r.Turn, r)
		}
	}
}

func TestDrawWindTruncatesTowardZero(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{-15, 14, 0},
		{15, 14, 14},
		{-15, -14, -14},
		{-1, 0, 0},
		{15, 15, 15},
	}
	for _, tt := range tests {
		src := &scriptedSource{values: []int{tt.a, tt.b}}
		if got := DrawWind(src); got != tt.want {
			t.Errorf("DrawWind(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDrawWindRange(t *testing.T) {
	src := rng.New(2024)
	for range 500 {
		w := DrawWind(src)
		if w < -WindMax || w > WindMax {
			t.Fatalf("wind %d out of range", w)
		}
	}
}

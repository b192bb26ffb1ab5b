package tui

import (
	"strings"
	"testing"

	"github.com/tomcoolpxl/tank-wars/internal/lockstep"
	"github.com/tomcoolpxl/tank-wars/internal/sim"
	"github.com/tomcoolpxl/tank-wars/internal/storage"
)

func playOut(t *testing.T, m *ReplayModel) {
	t.Helper()
	for i := 0; !m.Finished(); i++ {
		if i > 200000 {
			t.Fatal("replay did not finish")
		}
		m.step()
	}
}

func TestReplayModelMatchesHeadlessReplay(t *testing.T) {
	tests := []struct {
		name  string
		seed  uint32
		shots []storage.Shot
	}{
		{"no shots", 7, nil},
		{"two shots", 12345, []storage.Shot{
			{Turn: 1, Player: 0, Angle: 45, Power: 50},
			{Turn: 2, Player: 1, Angle: 135, Power: 60},
		}},
		{"gap uses timer", 99, []storage.Shot{
			{Turn: 1, Player: 0, Angle: 60, Power: 80},
			{Turn: 3, Player: 0, Angle: 30, Power: 90},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]lockstep.ShotRecord, len(tt.shots))
			for i, s := range tt.shots {
				records[i] = lockstep.ShotRecord{Turn: s.Turn, Angle: s.Angle, Power: s.Power}
			}
			want, err := lockstep.Replay(tt.seed, records)
			if err != nil {
				t.Fatalf("Replay: %v", err)
			}

			m := NewReplayModel(storage.MatchRecord{MatchID: "m", Seed: tt.seed}, tt.shots, 100, 32, 30, nil)
			playOut(t, m)

			if got := m.sim.Hash(); got != want.FinalHash {
				t.Errorf("final hash = %08x, want %08x", got, want.FinalHash)
			}
			if got := m.sim.Turn(); got != want.Turns {
				t.Errorf("turns = %d, want %d", got, want.Turns)
			}
		})
	}
}

func TestReplayModelShowsRecordedOutcome(t *testing.T) {
	// Left during the first turn, before anyone fired.
	rec := storage.MatchRecord{MatchID: "aborted-1", Seed: 3, Winner: sim.WinnerAborted, Turns: 1}
	m := NewReplayModel(rec, nil, 100, 32, 30, nil)
	playOut(t, m)

	if m.sim.IsOver() {
		t.Fatal("nothing was fired, the match cannot be over")
	}
	if out := m.View(); !strings.Contains(out, "MATCH ABORTED") {
		t.Errorf("view missing aborted overlay:\n%s", out)
	}
}

func TestReplayModelSpeedKeys(t *testing.T) {
	m := NewReplayModel(storage.MatchRecord{Seed: 1}, nil, 100, 32, 30, nil)
	for range 10 {
		m.Update(runeKey('+'))
	}
	if m.speed != maxReplaySpeed {
		t.Errorf("speed = %d, want %d", m.speed, maxReplaySpeed)
	}
	for range 10 {
		m.Update(runeKey('-'))
	}
	if m.speed != 1 {
		t.Errorf("speed = %d, want 1", m.speed)
	}
	m.Update(runeKey('p'))
	if !m.paused {
		t.Error("p should pause")
	}
}

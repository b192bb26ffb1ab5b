package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tomcoolpxl/tank-wars/internal/lockstep"
	"github.com/tomcoolpxl/tank-wars/internal/multiplayer"
	"github.com/tomcoolpxl/tank-wars/internal/sim"
)

func testOptions() MatchOptions {
	return MatchOptions{
		FPS:              30,
		TickRate:         sim.TicksPerSecond,
		MaxTicksPerFrame: 10,
		Width:            100,
		Height:           32,
		Peer:             lockstep.Config{FallbackGraceTicks: lockstep.DefaultFallbackGraceTicks},
	}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// frames feeds n frames spaced one stalled frame apart, so each runs the
// maximum number of ticks.
func frames(m *MatchModel, start time.Time, n int) time.Time {
	now := start
	for range n {
		now = now.Add(time.Second)
		m.Update(FrameMsg(now))
	}
	return now
}

func TestHotseatFireReachesBothSeats(t *testing.T) {
	m := NewHotseatMatch(42, testOptions())
	start := time.Unix(1_700_000_000, 0)
	m.Update(FrameMsg(start))

	if got := m.Sim().ActivePlayer(); got != 0 {
		t.Fatalf("first turn belongs to player %d, want 0", got)
	}

	m.Update(runeKey(' '))
	now := frames(m, start, 1)

	host, guest := m.seats[0].peer, m.seats[1].peer
	if len(host.Shots()) != 1 {
		t.Fatalf("host recorded %d shots, want 1", len(host.Shots()))
	}

	for i := 0; i < 400; i++ {
		if (host.Sim().Turn() >= 2 && guest.Sim().Turn() >= 2) || host.Sim().IsOver() {
			break
		}
		now = frames(m, now, 1)
	}
	frames(m, now, 2)

	if guest.Sim().Turn() != host.Sim().Turn() {
		t.Errorf("seats on different turns: host %d, guest %d", host.Sim().Turn(), guest.Sim().Turn())
	}
	if len(guest.Shots()) == 0 || guest.Shots()[0] != host.Shots()[0] {
		t.Errorf("guest shot log %v, host %v", guest.Shots(), host.Shots())
	}
	if host.Desyncs() != 0 || guest.Desyncs() != 0 {
		t.Errorf("desyncs: host %d, guest %d", host.Desyncs(), guest.Desyncs())
	}
}

func TestHotseatAimMovesActiveTank(t *testing.T) {
	m := NewHotseatMatch(7, testOptions())
	start := time.Unix(1_700_000_000, 0)
	m.Update(FrameMsg(start))

	before := m.Sim().Tank(0).AimAngle
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	frames(m, start, 1)

	if got := m.Sim().Tank(0).AimAngle; got != before+1 {
		t.Errorf("aim angle = %d, want %d", got, before+1)
	}
	if got := m.Sim().Tank(1).AimAngle; got != 135 {
		t.Errorf("inactive tank aim changed to %d", got)
	}
}

func TestNetworkMatchConnectionLost(t *testing.T) {
	a, b := multiplayer.NewPipe(16)
	m := NewNetworkMatch(a, multiplayer.RoleHost, 99, testOptions())
	m.Update(FrameMsg(time.Unix(1_700_000_000, 0)))

	b.Close()
	m.Update(FrameMsg(time.Unix(1_700_000_001, 0)))

	if !m.ConnectionLost() {
		t.Fatal("expected the lost connection to be noticed")
	}
	if w := m.Sim().Winner(); w != sim.WinnerAborted {
		t.Errorf("winner = %d, want aborted", w)
	}
	if v := m.View(); !strings.Contains(v, "CONNECTION LOST") {
		t.Errorf("view does not report the lost connection:\n%s", v)
	}
}

func TestQuitAbortsRunningMatch(t *testing.T) {
	type exited struct{}

	a, b := multiplayer.NewPipe(16)
	opts := testOptions()
	opts.Exit = func() tea.Msg { return exited{} }
	m := NewNetworkMatch(a, multiplayer.RoleGuest, 5, opts)

	_, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(exited); !ok {
		t.Error("quit did not return the exit command")
	}

	var gotAbort bool
	for !gotAbort {
		select {
		case msg := <-b.Inbox():
			_, gotAbort = msg.(lockstep.Abort)
		default:
			t.Fatal("abort was not sent to the other side")
		}
	}
}

func TestFinishedRoundReportedOnce(t *testing.T) {
	var results []RoundResult
	opts := testOptions()
	opts.OnFinish = func(r RoundResult) { results = append(results, r) }

	a, b := multiplayer.NewPipe(16)
	m := NewNetworkMatch(a, multiplayer.RoleHost, 11, opts)
	if err := b.Send(lockstep.Abort{Reason: "test"}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	start := time.Unix(1_700_000_000, 0)
	m.Update(FrameMsg(start))
	frames(m, start, 3)

	if len(results) != 1 {
		t.Fatalf("got %d reports, want 1", len(results))
	}
	r := results[0]
	if r.Round != 1 || r.Seed != 11 || r.Winner != sim.WinnerAborted || r.Err == nil {
		t.Errorf("unexpected report %+v", r)
	}
}

func TestRematchStatusLines(t *testing.T) {
	a, _ := multiplayer.NewPipe(16)
	m := NewNetworkMatch(a, multiplayer.RoleGuest, 3, testOptions())

	if got := m.rematchStatus(); !strings.Contains(got, "play again") {
		t.Errorf("idle status = %q", got)
	}
	m.seats[0].rematch.Handle(lockstep.PlayAgainReady{})
	if got := m.rematchStatus(); got != "OPPONENT WANTS TO PLAY AGAIN!" {
		t.Errorf("remote ready status = %q", got)
	}
	m.rematchUp = true
	if got := m.rematchStatus(); got != "WAITING FOR HOST..." {
		t.Errorf("guest ready status = %q", got)
	}
}

func TestHotseatPlayAgainStartsNextRound(t *testing.T) {
	opts := testOptions()
	opts.NewSeed = func() uint32 { return 77 }
	m := NewHotseatMatch(5, opts)

	if err := m.seats[0].peer.Abort("test"); err != nil {
		t.Fatalf("Abort() failed: %v", err)
	}
	start := time.Unix(1_700_000_000, 0)
	m.Update(FrameMsg(start))
	if !m.seats[1].peer.Sim().IsOver() {
		t.Fatal("guest seat did not see the abort")
	}

	m.Update(runeKey('r'))
	frames(m, start, 1)

	if m.Round() != 2 {
		t.Fatalf("round = %d, want 2", m.Round())
	}
	for i, s := range m.seats {
		if s.peer.Sim().IsOver() {
			t.Errorf("seat %d still over after play again", i)
		}
		if s.peer.Sim().Seed() != 77 {
			t.Errorf("seat %d seed = %d, want 77", i, s.peer.Sim().Seed())
		}
	}
}

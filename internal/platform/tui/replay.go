package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tomcoolpxl/tank-wars/internal/core"
	"github.com/tomcoolpxl/tank-wars/internal/lockstep"
	"github.com/tomcoolpxl/tank-wars/internal/sim"
	"github.com/tomcoolpxl/tank-wars/internal/storage"
)

const maxReplaySpeed = 8

// replayKeys are the bindings of the replay viewer.
type replayKeys struct {
	Pause  key.Binding
	Faster key.Binding
	Slower key.Binding
	Back   key.Binding
}

func defaultReplayKeys() replayKeys {
	return replayKeys{
		Pause:  key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause")),
		Faster: key.NewBinding(key.WithKeys("+", "=", "right"), key.WithHelp("+", "faster")),
		Slower: key.NewBinding(key.WithKeys("-", "left"), key.WithHelp("-", "slower")),
		Back:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "back")),
	}
}

// ReplayModel plays back a stored match from its seed and shot log. The
// turn timer covers turns with no recorded shot, as it did live. Playback
// stops once the last recorded turn has settled, which is where an
// aborted match ended.
type ReplayModel struct {
	rec      storage.MatchRecord
	shots    map[int]lockstep.ShotRecord
	lastTurn int
	sim      *sim.Simulation
	clock    *lockstep.Clock
	screen   *core.Screen
	keys     replayKeys
	fps      int
	speed    int
	paused   bool
	trail    []point
	flash    []flash
	exit     tea.Cmd
}

// NewReplayModel creates a viewer for rec. exit is returned when the
// viewer is closed; nil means quit the program.
func NewReplayModel(rec storage.MatchRecord, shots []storage.Shot, width, height, fps int, exit tea.Cmd) *ReplayModel {
	if exit == nil {
		exit = tea.Quit
	}
	if fps <= 0 {
		fps = core.DefaultConfig().FPS
	}
	byTurn := make(map[int]lockstep.ShotRecord, len(shots))
	lastTurn := 0
	for _, s := range shots {
		byTurn[s.Turn] = lockstep.ShotRecord{Turn: s.Turn, Angle: s.Angle, Power: s.Power}
		lastTurn = max(lastTurn, s.Turn)
	}
	s := sim.New(rec.Seed)
	s.Start()
	return &ReplayModel{
		rec:      rec,
		shots:    byTurn,
		lastTurn: lastTurn,
		sim:      s,
		clock:    lockstep.NewClock(sim.TicksPerSecond, lockstep.DefaultMaxTicksPerFrame*maxReplaySpeed),
		screen:   core.NewScreen(width, height),
		keys:     defaultReplayKeys(),
		fps:      fps,
		speed:    1,
		exit:     exit,
	}
}

// Init starts the frame loop.
func (m *ReplayModel) Init() tea.Cmd {
	return frameCmd(m.fps)
}

// Update advances playback.
func (m *ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, m.exit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Faster):
			m.speed = min(m.speed*2, maxReplaySpeed)
		case key.Matches(msg, m.keys.Slower):
			m.speed = max(m.speed/2, 1)
		}
	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
	case FrameMsg:
		n := m.clock.Advance(time.Time(msg))
		if !m.paused {
			for range n * m.speed {
				m.step()
			}
		}
		m.ageFlashes()
		return m, frameCmd(m.fps)
	}
	return m, nil
}

// step runs one tick, firing the recorded shot when its turn is aiming.
func (m *ReplayModel) step() {
	if m.Finished() {
		return
	}
	if m.sim.Phase() == sim.PhaseTurnAim {
		if shot, ok := m.shots[m.sim.Turn()]; ok {
			m.sim.Fire(shot.Angle, shot.Power, m.sim.ActivePlayer())
			delete(m.shots, shot.Turn)
		}
	}
	m.sim.Step(sim.Inputs{})

	for _, e := range m.sim.Events() {
		switch e.Kind {
		case sim.EventTurnStart:
			m.trail = m.trail[:0]
		case sim.EventExplosion:
			m.flash = append(m.flash, flash{x: e.X, y: e.Y, frames: flashFrames})
		}
	}
	if p, ok := m.sim.Projectile(); ok {
		m.trail = append(m.trail, point{x: p.X.ToInt(), y: p.Y.ToInt()})
		if len(m.trail) > trailLength*4 {
			m.trail = m.trail[len(m.trail)-trailLength*4:]
		}
	}
}

func (m *ReplayModel) ageFlashes() {
	kept := m.flash[:0]
	for _, f := range m.flash {
		if f.frames--; f.frames > 0 {
			kept = append(kept, f)
		}
	}
	m.flash = kept
}

// View renders the replay with a status line.
func (m *ReplayModel) View() string {
	m.screen.Clear()
	rows := m.screen.Height() - hudRows
	if rows < 1 {
		return "terminal too small"
	}
	drawWorld(m.screen, scene{sim: m.sim, trail: m.trail, flashes: m.flash}, rows)

	status := fmt.Sprintf("replay %s  x%d", m.rec.MatchID, m.speed)
	if m.paused {
		status += "  paused"
	}
	drawHUD(m.screen, m.sim, hudState{names: [2]string{"P1", "P2"}, local: -1, status: status}, rows)

	if m.Finished() {
		winner := m.sim.Winner()
		if !m.sim.IsOver() {
			winner = m.rec.Winner
		}
		drawOverlay(m.screen, rows, []string{
			outcomeText(winner, -1, [2]string{"P1", "P2"}),
			fmt.Sprintf("after %d turns", m.rec.Turns),
			"",
			"q: back",
		}, core.ColorWarn)
	}
	return RenderScreen(m.screen)
}

// Finished reports whether playback reached the end of the match.
func (m *ReplayModel) Finished() bool {
	return m.sim.IsOver() || m.sim.Turn() > m.lastTurn
}

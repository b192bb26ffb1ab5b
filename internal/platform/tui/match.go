package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/tomcoolpxl/tank-wars/internal/config"
	"github.com/tomcoolpxl/tank-wars/internal/core"
	"github.com/tomcoolpxl/tank-wars/internal/lockstep"
	"github.com/tomcoolpxl/tank-wars/internal/multiplayer"
	"github.com/tomcoolpxl/tank-wars/internal/sim"
)

// RoundResult describes one finished round, as seen by the reporting seat.
type RoundResult struct {
	Round     int
	Seed      uint32
	Winner    int
	Turns     int
	Ticks     int
	FinalHash uint32
	Desyncs   int
	Shots     []lockstep.ShotRecord
	Err       error
	Duration  time.Duration
}

// MatchOptions configures a MatchModel.
type MatchOptions struct {
	FPS              int
	TickRate         int
	MaxTicksPerFrame int
	Width, Height    int

	Names      [2]string
	Peer       lockstep.Config // LocalPlayer and Authoritative are set per seat
	LinkBuffer int             // Hot-seat pipe capacity

	// NewSeed picks the seed of a rematch. Only the host side calls it.
	NewSeed func() uint32
	// OnFinish runs once per round when the match ends. It runs on the
	// UI goroutine and must not block.
	OnFinish func(RoundResult)
	// Exit is returned when the player quits. Defaults to tea.Quit.
	Exit tea.Cmd
	// ScreenshotDir enables ctrl+s when set.
	ScreenshotDir string

	Logger *log.Logger
}

// MatchOptionsFromConfig fills the timing and protocol fields from cfg.
func MatchOptionsFromConfig(cfg config.Config) MatchOptions {
	return MatchOptions{
		FPS:              cfg.Runtime.FPS,
		TickRate:         sim.TicksPerSecond,
		MaxTicksPerFrame: cfg.Runtime.MaxTicksPerFrame,
		Width:            core.DefaultConfig().ScreenW,
		Height:           core.DefaultConfig().ScreenH,
		Names:            [2]string{"P1", "P2"},
		LinkBuffer:       cfg.Protocol.LinkBuffer,
		Peer: lockstep.Config{
			FallbackGraceTicks: cfg.Protocol.FallbackGraceTicks,
			SimOptions:         []sim.Option{sim.WithPreExplosionDelay(cfg.Protocol.PreExplosionDelay)},
		},
		ScreenshotDir: config.UserPath("screenshots"),
	}
}

// seat is one lockstep endpoint driven by this model.
type seat struct {
	role    multiplayer.Role
	conn    multiplayer.Conn
	peer    *lockstep.Peer
	rematch *multiplayer.Rematch
}

// MatchModel is the Bubble Tea model for a running match. It drives one
// seat for a networked match or both seats of an in-process pipe for a
// hot-seat game on a shared keyboard.
type MatchModel struct {
	opts   MatchOptions
	log    *log.Logger
	seats  []*seat
	local  int // player index of the only seat, -1 for hot-seat
	clock  *lockstep.Clock
	screen *core.Screen
	keys   MatchKeyMap
	help   help.Model

	input    core.InputFrame
	fire     bool
	showHelp bool

	trail   []point
	flashes []flash

	round     int
	started   time.Time
	reported  bool
	connLost  bool
	rematchUp bool // play-again requested locally
	quitting  bool
}

// NewHotseatMatch creates a two-player match on one keyboard. Both seats
// run their own peer over an in-process pipe, exactly as two machines
// would.
func NewHotseatMatch(seed uint32, opts MatchOptions) *MatchModel {
	a, b := multiplayer.NewPipe(opts.LinkBuffer)
	m := newMatchModel(opts, -1)
	m.seats = []*seat{
		m.newSeat(multiplayer.RoleHost, a),
		m.newSeat(multiplayer.RoleGuest, b),
	}
	m.startRound(seed)
	return m
}

// NewNetworkMatch creates a match for one side of conn. The seed must be
// the one both sides agreed during the handshake.
func NewNetworkMatch(conn multiplayer.Conn, role multiplayer.Role, seed uint32, opts MatchOptions) *MatchModel {
	m := newMatchModel(opts, role.Player())
	m.seats = []*seat{m.newSeat(role, conn)}
	m.startRound(seed)
	return m
}

func newMatchModel(opts MatchOptions, local int) *MatchModel {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Exit == nil {
		opts.Exit = tea.Quit
	}
	if opts.Names[0] == "" {
		opts.Names[0] = "P1"
	}
	if opts.Names[1] == "" {
		opts.Names[1] = "P2"
	}
	def := core.DefaultConfig()
	if opts.Width <= 0 {
		opts.Width = def.ScreenW
	}
	if opts.Height <= 0 {
		opts.Height = def.ScreenH
	}
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	return &MatchModel{
		opts:   opts,
		log:    logger,
		local:  local,
		clock:  lockstep.NewClock(opts.TickRate, opts.MaxTicksPerFrame),
		screen: core.NewScreen(opts.Width, opts.Height),
		keys:   DefaultMatchKeyMap(),
		help:   help.New(),
	}
}

func (m *MatchModel) newSeat(role multiplayer.Role, conn multiplayer.Conn) *seat {
	return &seat{
		role:    role,
		conn:    conn,
		rematch: multiplayer.NewRematch(role, m.opts.NewSeed),
	}
}

// startRound replaces every seat's peer with a fresh one on seed.
func (m *MatchModel) startRound(seed uint32) {
	for _, s := range m.seats {
		m.restartSeat(s, seed)
	}
}

func (m *MatchModel) restartSeat(s *seat, seed uint32) {
	cfg := m.opts.Peer
	cfg.LocalPlayer = s.role.Player()
	cfg.Authoritative = s.role.Authoritative()
	s.peer = lockstep.NewPeer(seed, s.conn, m.log.With("role", s.role), cfg)
	if err := s.peer.Start(); err != nil {
		m.log.Error("failed to start match", "err", err)
	}
	if s == m.seats[0] {
		m.round++
		m.started = time.Now()
		m.reported = false
		m.rematchUp = false
		m.trail = nil
		m.flashes = nil
		m.clock.Reset()
	}
}

// Sim returns the simulation shown on screen. In hot-seat that is the
// active player's seat, which sees its own aim before the other seat does.
func (m *MatchModel) Sim() *sim.Simulation { return m.shown().peer.Sim() }

func (m *MatchModel) shown() *seat {
	if len(m.seats) > 1 {
		for _, s := range m.seats {
			if s.peer.IsLocalTurn() {
				return s
			}
		}
	}
	return m.seats[0]
}

// Round returns the number of the round being played, from 1.
func (m *MatchModel) Round() int { return m.round }

// ConnectionLost reports whether the link to the other side dropped.
func (m *MatchModel) ConnectionLost() bool { return m.connLost }

// Init starts the frame loop.
func (m *MatchModel) Init() tea.Cmd {
	return frameCmd(m.opts.FPS)
}

// Update handles messages and advances the match.
func (m *MatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil
	case FrameMsg:
		m.frame(time.Time(msg))
		if m.quitting {
			return m, nil
		}
		return m, frameCmd(m.opts.FPS)
	}
	return m, nil
}

func (m *MatchModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return nil
	}

	switch a := m.keys.Action(msg); a {
	case core.ActionQuit:
		m.leave()
		return m.opts.Exit
	case core.ActionHelp:
		m.showHelp = !m.showHelp
	case core.ActionFire:
		m.fire = true
	case core.ActionPlayAgain:
		m.playAgain()
	case core.ActionNone:
	default:
		m.input.Set(a)
	}
	return nil
}

// leave aborts a running match so the other side stops waiting.
func (m *MatchModel) leave() {
	m.quitting = true
	for _, s := range m.seats {
		if s.peer.Sim().IsOver() || m.connLost {
			continue
		}
		if err := s.peer.Abort("player left"); err != nil {
			m.log.Debug("abort not delivered", "err", err)
		}
	}
}

func (m *MatchModel) playAgain() {
	if !m.Sim().IsOver() || m.connLost || m.rematchUp {
		return
	}
	m.rematchUp = true
	for _, s := range m.seats {
		if err := m.applyRematch(s, s.rematch.Ready()); err != nil {
			m.log.Warn("play again failed", "err", err)
		}
	}
}

func (m *MatchModel) applyRematch(s *seat, step multiplayer.RematchStep) error {
	for _, msg := range step.Send {
		if err := s.conn.Send(msg); err != nil {
			return fmt.Errorf("send %T: %w", msg, err)
		}
	}
	if step.Start {
		m.log.Info("starting another round", "role", s.role, "seed", step.Seed)
		m.restartSeat(s, step.Seed)
	}
	return nil
}

// frame runs one render frame: inbound messages, then a local shot, then
// however many ticks the clock owes.
func (m *MatchModel) frame(now time.Time) {
	for _, s := range m.seats {
		m.drain(s)
	}
	m.checkConnection()

	if m.fire {
		m.fire = false
		for _, s := range m.seats {
			if !s.peer.IsLocalTurn() {
				continue
			}
			if _, err := s.peer.FireLocal(); err != nil {
				m.log.Warn("fire failed", "err", err)
			}
			break
		}
	}

	n := m.clock.Advance(now)
	in := simInputs(m.input)
	for i := range n {
		if i == 1 {
			in = sim.Inputs{}
		}
		for _, s := range m.seats {
			if err := s.peer.Tick(in); err != nil {
				m.log.Warn("tick failed", "err", err)
			}
		}
		m.observe()
	}
	if n > 0 {
		m.input.Clear()
	}
	m.ageFlashes()
	m.report()
}

func (m *MatchModel) drain(s *seat) {
	err := lockstep.DrainFunc(s.conn.Inbox(), func(msg lockstep.Message) error {
		if step, ok := s.rematch.Handle(msg); ok {
			return m.applyRematch(s, step)
		}
		return s.peer.Handle(msg)
	})
	if err != nil {
		m.log.Warn("inbound message rejected", "role", s.role, "err", err)
	}
}

func (m *MatchModel) checkConnection() {
	if m.connLost {
		return
	}
	select {
	case <-m.seats[0].conn.Done():
	default:
		return
	}
	m.connLost = true
	m.log.Warn("connection lost")
	for _, s := range m.seats {
		if !s.peer.Sim().IsOver() {
			if err := s.peer.Abort("connection lost"); err != nil {
				m.log.Debug("abort not delivered", "err", err)
			}
		}
	}
}

// observe records shell positions and explosions after a tick.
func (m *MatchModel) observe() {
	s := m.Sim()
	for _, e := range s.Events() {
		switch e.Kind {
		case sim.EventTurnStart:
			m.trail = m.trail[:0]
		case sim.EventExplosion:
			m.flashes = append(m.flashes, flash{x: e.X, y: e.Y, frames: flashFrames})
		}
	}
	if p, ok := s.Projectile(); ok {
		m.trail = append(m.trail, point{x: p.X.ToInt(), y: p.Y.ToInt()})
		if len(m.trail) > trailLength*4 {
			m.trail = m.trail[len(m.trail)-trailLength*4:]
		}
	}
}

func (m *MatchModel) ageFlashes() {
	kept := m.flashes[:0]
	for _, f := range m.flashes {
		if f.frames--; f.frames > 0 {
			kept = append(kept, f)
		}
	}
	m.flashes = kept
}

// report hands the finished round to OnFinish once. In hot-seat the
// host seat speaks for both.
func (m *MatchModel) report() {
	if m.reported || !m.seats[0].peer.Sim().IsOver() {
		return
	}
	m.reported = true
	p := m.seats[0].peer
	s := p.Sim()
	res := RoundResult{
		Round:     m.round,
		Seed:      s.Seed(),
		Winner:    s.Winner(),
		Turns:     s.Turn(),
		Ticks:     s.Tick(),
		FinalHash: s.Hash(),
		Desyncs:   p.Desyncs(),
		Shots:     p.Shots(),
		Err:       p.Err(),
		Duration:  time.Since(m.started),
	}
	if res.Err != nil {
		m.log.Info("round aborted", "round", res.Round, "err", res.Err)
	} else {
		m.log.Info("round finished", "round", res.Round, "winner", res.Winner, "turns", res.Turns)
	}
	if m.opts.OnFinish != nil {
		m.opts.OnFinish(res)
	}
}

// View renders the world, the HUD and any overlay.
func (m *MatchModel) View() string {
	if m.quitting {
		return ""
	}
	m.render()
	out := RenderScreen(m.screen)
	if m.showHelp {
		out += "\n" + m.help.FullHelpView(m.keys.FullHelp())
	}
	return out
}

func (m *MatchModel) render() {
	m.screen.Clear()
	rows := m.screen.Height() - hudRows
	if rows < 1 {
		m.screen.DrawText(0, 0, "terminal too small", core.ColorWarn)
		return
	}
	s := m.Sim()
	drawWorld(m.screen, scene{sim: s, trail: m.trail, flashes: m.flashes}, rows)
	drawHUD(m.screen, s, m.hud(), rows)

	if s.IsOver() || m.connLost {
		lines, c := m.overlayLines()
		drawOverlay(m.screen, rows, lines, c)
	}
}

func (m *MatchModel) hud() hudState {
	h := hudState{names: m.opts.Names, local: m.local}
	p := m.seats[0].peer
	switch {
	case m.connLost:
		h.status, h.warning = "CONNECTION LOST", true
	case p.Desyncs() > 0:
		h.status, h.warning = fmt.Sprintf("resynced x%d", p.Desyncs()), true
	case m.local >= 0:
		h.status = "online · " + m.seats[0].role.String()
	default:
		h.status = "hot-seat"
	}
	return h
}

func (m *MatchModel) overlayLines() ([]string, core.Color) {
	s := m.Sim()
	if m.connLost {
		return []string{"CONNECTION LOST", "", "press q to leave"}, core.ColorWarn
	}

	lines := []string{outcomeText(s.Winner(), m.local, m.opts.Names)}
	if s.Winner() != sim.WinnerAborted {
		lines = append(lines, fmt.Sprintf("after %d turns", s.Turn()))
	}
	lines = append(lines, "", m.rematchStatus())
	return lines, core.ColorWarn
}

func (m *MatchModel) rematchStatus() string {
	if m.local < 0 {
		return "r: play again   q: quit"
	}
	r := m.seats[0].rematch
	switch {
	case m.rematchUp && m.seats[0].role == multiplayer.RoleGuest:
		return "WAITING FOR HOST..."
	case m.rematchUp:
		return "WAITING FOR OPPONENT..."
	case r.RemoteReady():
		return "OPPONENT WANTS TO PLAY AGAIN!"
	default:
		return "r: play again   q: quit"
	}
}

func (m *MatchModel) saveScreenshot() {
	if m.opts.ScreenshotDir == "" {
		return
	}
	m.render()
	if err := os.MkdirAll(m.opts.ScreenshotDir, 0o755); err != nil {
		m.log.Warn("screenshot failed", "err", err)
		return
	}
	name := fmt.Sprintf("tankwars_%s.txt", time.Now().Format("20060102_150405"))
	path := filepath.Join(m.opts.ScreenshotDir, name)
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.log.Warn("screenshot failed", "err", err)
		return
	}
	m.log.Info("screenshot saved", "path", path)
}

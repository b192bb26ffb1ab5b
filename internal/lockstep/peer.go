package lockstep

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/tomcoolpxl/tank-wars/internal/sim"
)

// DefaultFallbackGraceTicks is how long a peer waits at an expired remote
// turn before firing on the remote player's behalf.
const DefaultFallbackGraceTicks = 300

// Config describes one side of a match.
type Config struct {
	// LocalPlayer is the tank index (0 or 1) this peer controls.
	LocalPlayer int
	// Authoritative peers answer a checksum mismatch with a Sync. Exactly one
	// side of a match should set it; by convention the host.
	Authoritative bool
	// FallbackGraceTicks is the wait at an expired remote turn before the
	// local side fires the remote tank's last known aim. Zero or less
	// disables the fallback.
	FallbackGraceTicks int
	// SimOptions are passed to sim.New for every match this peer plays.
	SimOptions []sim.Option
}

// Peer drives one local simulation and speaks the lockstep protocol with
// the other side. It is not safe for concurrent use: a single loop calls
// Handle for inbound messages and Tick once per simulation tick.
type Peer struct {
	cfg  Config
	sim  *sim.Simulation
	link Link
	log  *log.Logger

	pendingShots map[int]Shot
	localHashes  map[int]uint32
	remoteHashes map[int]uint32
	shots        []ShotRecord

	desyncs     int
	expiredWait int
	overSent    bool
	err         error
}

// NewPeer creates a peer for a match on seed. The simulation waits in the
// lobby until Start.
func NewPeer(seed uint32, link Link, logger *log.Logger, cfg Config) *Peer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	cfg.LocalPlayer &= 1
	return &Peer{
		cfg:          cfg,
		sim:          sim.New(seed, cfg.SimOptions...),
		link:         link,
		log:          logger.With("player", cfg.LocalPlayer),
		pendingShots: make(map[int]Shot),
		localHashes:  make(map[int]uint32),
		remoteHashes: make(map[int]uint32),
	}
}

// Start begins the match and publishes the opening checksum as turn 0.
func (p *Peer) Start() error {
	p.sim.Start()
	p.log.Info("match started", "seed", p.sim.Seed(), "authoritative", p.cfg.Authoritative)
	return p.sendHash(0)
}

// Sim exposes the simulation for rendering. Callers must not mutate it.
func (p *Peer) Sim() *sim.Simulation { return p.sim }

// LocalPlayer returns the tank index this peer controls.
func (p *Peer) LocalPlayer() int { return p.cfg.LocalPlayer }

// Authoritative reports whether this peer answers mismatches with a Sync.
func (p *Peer) Authoritative() bool { return p.cfg.Authoritative }

// IsLocalTurn reports whether the local player owns the current turn.
func (p *Peer) IsLocalTurn() bool {
	return p.sim.ActivePlayer() == p.cfg.LocalPlayer
}

// Shots returns the shot log so far.
func (p *Peer) Shots() []ShotRecord {
	out := make([]ShotRecord, len(p.shots))
	copy(out, p.shots)
	return out
}

// Desyncs returns the number of checksum mismatches seen.
func (p *Peer) Desyncs() int { return p.desyncs }

// Err returns the reason the match was aborted, if it was.
func (p *Peer) Err() error { return p.err }

// Tick advances the simulation one step with the local player's inputs.
// Inputs are ignored while the remote player owns the turn.
func (p *Peer) Tick(in sim.Inputs) error {
	if p.sim.IsOver() {
		return nil
	}

	local := p.IsLocalTurn()
	p.sim.SetAutoFire(local)
	if !local {
		in = sim.Inputs{}
	}

	prevTurn := p.sim.Turn()
	p.sim.Step(in)

	// Checksums are taken before any buffered remote shot is applied so
	// both sides hash the same instant of the turn change.
	if p.sim.Turn() != prevTurn {
		if err := p.sendHash(prevTurn); err != nil {
			return err
		}
	}
	if p.sim.IsOver() {
		return p.finish()
	}

	for _, e := range p.sim.Events() {
		if e.Kind == sim.EventFire && e.Player == p.cfg.LocalPlayer {
			p.log.Debug("turn timer expired, auto-fired", "turn", p.sim.Turn())
			if err := p.publishShot(p.sim.Turn(), e.Value, e.Extra); err != nil {
				return err
			}
		}
	}

	if err := p.processPendingShots(); err != nil {
		return err
	}
	return p.passiveFallback()
}

// FireLocal fires the local tank's current aim. It reports false when it is
// not the local player's turn to shoot.
func (p *Peer) FireLocal() (bool, error) {
	if p.sim.Phase() != sim.PhaseTurnAim || !p.IsLocalTurn() {
		return false, nil
	}
	t := p.sim.Tank(p.cfg.LocalPlayer)
	turn := p.sim.Turn()
	if !p.sim.Fire(t.AimAngle, t.AimPower, p.cfg.LocalPlayer) {
		return false, nil
	}
	return true, p.publishShot(turn, t.AimAngle, t.AimPower)
}

// Handle applies one message from the other peer. A returned error means
// the match has been aborted because of that message.
func (p *Peer) Handle(msg Message) error {
	switch m := msg.(type) {
	case Shot:
		return p.handleShot(m)
	case Hash:
		p.remoteHashes[m.Turn] = m.Hash
		return p.compareHashes()
	case Sync:
		return p.handleSync(m)
	case Abort:
		p.handleAbort(m)
	default:
		p.log.Debug("ignoring message outside the match protocol", "type", fmt.Sprintf("%T", msg))
	}
	return nil
}

// Abort ends the match locally, then tells the other side.
func (p *Peer) Abort(reason string) error {
	if p.sim.Winner() == sim.WinnerAborted {
		return nil
	}
	p.sim.Abort()
	p.overSent = true
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s", ErrAborted, reason)
	}
	p.log.Warn("match aborted", "reason", reason)
	return p.send(Abort{Reason: reason})
}

// handleShot checks a remote shot on arrival, whatever the phase, and
// buffers it until its turn is aiming.
func (p *Peer) handleShot(m Shot) error {
	if p.sim.IsOver() {
		return nil
	}
	if m.Turn < p.sim.Turn() {
		p.log.Debug("dropping shot for a past turn", "turn", m.Turn, "current", p.sim.Turn())
		return nil
	}
	if owner := (ShotRecord{Turn: m.Turn}).Player(); owner == p.cfg.LocalPlayer {
		return p.fail(fmt.Errorf("%w: remote shot for turn %d, which belongs to the local player", ErrProtocol, m.Turn))
	}
	if _, _, err := ValidateShot(m); err != nil {
		return p.fail(err)
	}
	if _, dup := p.pendingShots[m.Turn]; dup {
		p.log.Debug("dropping duplicate shot", "turn", m.Turn)
		return nil
	}
	p.pendingShots[m.Turn] = m
	return p.processPendingShots()
}

// processPendingShots fires a buffered remote shot once the simulation is
// aiming on the shot's turn. Later turns stay buffered.
func (p *Peer) processPendingShots() error {
	if p.sim.Phase() != sim.PhaseTurnAim {
		return nil
	}
	turn := p.sim.Turn()
	for t := range p.pendingShots {
		if t < turn {
			delete(p.pendingShots, t)
		}
	}
	shot, ok := p.pendingShots[turn]
	if !ok {
		return nil
	}
	delete(p.pendingShots, turn)

	// Owner and range were checked on arrival. A Sync can still move the
	// turn under a buffered shot.
	if p.IsLocalTurn() {
		return p.fail(fmt.Errorf("%w: remote shot for turn %d while local player is active", ErrProtocol, turn))
	}
	angle, power, err := ValidateShot(shot)
	if err != nil {
		return p.fail(err)
	}

	active := p.sim.ActivePlayer()
	if p.sim.Fire(angle, power, active) {
		p.expiredWait = 0
		p.shots = append(p.shots, ShotRecord{Turn: turn, Angle: angle, Power: power})
		p.log.Debug("remote shot", "turn", turn, "angle", angle, "power", power)
	}
	return nil
}

// passiveFallback fires for a remote player whose turn timer ran out long
// ago and whose shot never arrived.
func (p *Peer) passiveFallback() error {
	if p.cfg.FallbackGraceTicks <= 0 || p.IsLocalTurn() ||
		p.sim.Phase() != sim.PhaseTurnAim || p.sim.Rules().TurnTimer > 0 {
		p.expiredWait = 0
		return nil
	}
	p.expiredWait++
	if p.expiredWait < p.cfg.FallbackGraceTicks {
		return nil
	}
	p.expiredWait = 0

	active := p.sim.ActivePlayer()
	t := p.sim.Tank(active)
	turn := p.sim.Turn()
	if p.sim.Fire(t.AimAngle, t.AimPower, active) {
		p.shots = append(p.shots, ShotRecord{Turn: turn, Angle: t.AimAngle, Power: t.AimPower})
		p.log.Warn("remote shot overdue, firing last known aim", "turn", turn)
	}
	return nil
}

func (p *Peer) handleSync(m Sync) error {
	if err := p.sim.ApplySnapshot(m.State); err != nil {
		return p.fail(fmt.Errorf("%w: bad sync: %v", ErrProtocol, err))
	}
	turn := p.sim.Turn()
	for t := range p.localHashes {
		if t <= m.Turn {
			delete(p.localHashes, t)
		}
	}
	for t := range p.remoteHashes {
		if t <= m.Turn {
			delete(p.remoteHashes, t)
		}
	}
	p.overSent = p.sim.IsOver()
	p.expiredWait = 0
	p.log.Info("state resynchronized", "turn", m.Turn, "now", turn, "hash", p.sim.Hash())
	return p.processPendingShots()
}

func (p *Peer) handleAbort(m Abort) {
	if p.sim.Winner() == sim.WinnerAborted {
		return
	}
	p.sim.Abort()
	p.overSent = true
	p.err = fmt.Errorf("%w by peer: %s", ErrAborted, m.Reason)
	p.log.Warn("peer aborted the match", "reason", m.Reason)
}

func (p *Peer) fail(cause error) error {
	p.err = cause
	if err := p.Abort(cause.Error()); err != nil {
		p.log.Error("failed to send abort", "err", err)
	}
	return cause
}

func (p *Peer) finish() error {
	if p.overSent {
		return nil
	}
	p.overSent = true
	p.log.Info("match over", "winner", p.sim.Winner(), "turn", p.sim.Turn())
	return p.sendHash(p.sim.Turn())
}

func (p *Peer) publishShot(turn, angle, power int) error {
	p.shots = append(p.shots, ShotRecord{Turn: turn, Angle: angle, Power: power})
	return p.send(Shot{Turn: turn, Angle: float64(angle), Power: float64(power)})
}

func (p *Peer) sendHash(turn int) error {
	h := p.sim.Hash()
	p.localHashes[turn] = h
	if err := p.send(Hash{Turn: turn, Hash: h}); err != nil {
		return err
	}
	return p.compareHashes()
}

// compareHashes checks every turn both sides have reported. On a mismatch
// the authoritative side pushes its current state.
func (p *Peer) compareHashes() error {
	for turn, remote := range p.remoteHashes {
		local, ok := p.localHashes[turn]
		if !ok {
			continue
		}
		delete(p.localHashes, turn)
		delete(p.remoteHashes, turn)
		if local == remote {
			continue
		}

		p.desyncs++
		p.log.Warn("desync detected", "turn", turn, "local", local, "remote", remote)
		if p.cfg.Authoritative {
			if err := p.send(Sync{Turn: p.sim.Turn(), State: p.sim.Snapshot()}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Peer) send(msg Message) error {
	if p.link == nil {
		return nil
	}
	if err := p.link.Send(msg); err != nil {
		return fmt.Errorf("lockstep: send %T: %w", msg, err)
	}
	return nil
}

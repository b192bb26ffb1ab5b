package sim

import (
	"github.com/tomcoolpxl/tank-wars/internal/core"
	"github.com/tomcoolpxl/tank-wars/internal/fixed"
	"github.com/tomcoolpxl/tank-wars/internal/rng"
)

// Inputs are the aiming controls held during one tick. They act on the
// active tank only.
type Inputs struct {
	AngleUp   bool
	AngleDown bool
	PowerUp   bool
	PowerDown bool
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithPreExplosionDelay holds an impact for the given number of ticks before
// the blast is applied. Zero (the default) applies it on impact.
func WithPreExplosionDelay(ticks int) Option {
	return func(s *Simulation) {
		s.preExplosionDelay = max(0, ticks)
	}
}

type point struct {
	X, Y int
}

// Simulation owns the whole match state. It is not safe for concurrent use;
// one goroutine drives it one tick at a time.
type Simulation struct {
	seed     uint32
	rng      *rng.XorShift32
	terrain  *Terrain
	tanks    [2]*Tank
	shell    *Projectile
	rules    Rules
	tick     int
	events   []Event
	autoFire bool

	preExplosionDelay int
	pending           *point
}

// New builds a match for the seed: terrain, spawn columns and the RNG stream
// all follow from it. The match waits in the lobby until Start.
func New(seed uint32, opts ...Option) *Simulation {
	s := &Simulation{
		seed:     seed,
		rng:      rng.New(seed),
		terrain:  GenerateTerrain(seed),
		rules:    NewRules(),
		autoFire: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	for id := range s.tanks {
		lo, hi := SpawnRanges[id][0], SpawnRanges[id][1]
		x := s.rng.NextInt(lo, hi)
		y := s.terrain.HeightAt(x) + TankHeight/2
		s.tanks[id] = NewTank(id, fixed.FromInt(x), fixed.FromInt(y))
	}
	return s
}

// Start leaves the lobby and begins turn 1.
func (s *Simulation) Start() {
	if s.rules.Phase != PhaseLobby {
		return
	}
	s.rules.StartMatch(s.rng)
	s.emit(Event{Kind: EventTurnStart, Player: s.rules.ActivePlayer, Value: s.rules.Turn})
}

// SetAutoFire controls whether an expired turn timer fires the active tank.
// A peer enables it only while it owns the turn, so exactly one side
// originates every shot.
func (s *Simulation) SetAutoFire(enabled bool) {
	s.autoFire = enabled
}

// Step advances the match by one tick.
func (s *Simulation) Step(in Inputs) {
	s.events = s.events[:0]
	s.tick++

	switch s.rules.Phase {
	case PhaseTurnAim:
		s.stepAim(in)
	case PhaseProjectileFlight:
		s.stepFlight()
	case PhasePreExplosion:
		s.stepPreExplosion()
	case PhasePostExplosionStabilize:
		s.stepStabilize()
	}
}

func (s *Simulation) stepAim(in Inputs) {
	if s.rules.TurnTimer > 0 {
		s.rules.TurnTimer--
	}
	t := s.tanks[s.rules.ActivePlayer]
	t.ApplyInputs(in)

	if s.rules.TurnTimer <= 0 && s.autoFire {
		s.Fire(t.AimAngle, t.AimPower, s.rules.ActivePlayer)
	}
}

func (s *Simulation) stepFlight() {
	if s.shell == nil {
		s.enterStabilize()
		return
	}
	res := s.shell.Step(s.terrain, s.tanks[:])
	if res.Outcome == OutcomeNone {
		return
	}
	s.shell = nil

	switch {
	case res.Outcome.Explodes():
		s.emit(Event{Kind: EventExplosionStart, X: res.X, Y: res.Y, Player: res.TankID})
		if s.preExplosionDelay > 0 {
			s.pending = &point{X: res.X, Y: res.Y}
			s.rules.Phase = PhasePreExplosion
			s.rules.DelayTimer = s.preExplosionDelay
			return
		}
		s.detonate(res.X, res.Y)
	case res.Outcome == OutcomeOutOfBounds:
		s.emit(Event{Kind: EventOutOfBounds, X: res.X, Y: res.Y})
	case res.Outcome == OutcomeTimeout:
		s.emit(Event{Kind: EventTimeout, X: res.X, Y: res.Y})
	}
	s.enterStabilize()
}

func (s *Simulation) stepPreExplosion() {
	s.rules.DelayTimer--
	if s.rules.DelayTimer > 0 {
		return
	}
	if s.pending != nil {
		s.detonate(s.pending.X, s.pending.Y)
		s.pending = nil
	}
	s.enterStabilize()
}

func (s *Simulation) detonate(x, y int) {
	hits := ApplyExplosion(x, y, s.terrain, s.tanks[:])
	s.emit(Event{Kind: EventExplosion, X: x, Y: y, Value: ExplosionDamageRadius})
	for _, h := range hits {
		t := s.tanks[h.TankID]
		s.emit(Event{Kind: EventDamage, X: t.PixelX(), Y: t.PixelY(), Player: h.TankID, Value: h.Damage})
	}
}

func (s *Simulation) enterStabilize() {
	s.rules.Phase = PhasePostExplosionStabilize
	s.rules.StabilizeTimer = StabilizationCapTicks
}

func (s *Simulation) stepStabilize() {
	settled := true
	for _, t := range s.tanks {
		t.Step(s.terrain)
		if t.Alive && !t.Stable {
			settled = false
		}
	}
	s.rules.StabilizeTimer--

	if !settled && s.rules.StabilizeTimer > 0 {
		return
	}
	if s.checkWin() {
		return
	}
	s.rules.NextTurn(s.rng)
	s.emit(Event{Kind: EventTurnStart, Player: s.rules.ActivePlayer, Value: s.rules.Turn})
}

func (s *Simulation) checkWin() bool {
	alive := 0
	last := -1
	for _, t := range s.tanks {
		if t.Alive {
			alive++
			last = t.ID
		}
	}
	switch alive {
	case 0:
		s.endMatch(WinnerDraw)
	case 1:
		s.endMatch(last)
	default:
		return false
	}
	return true
}

func (s *Simulation) endMatch(winner int) {
	s.rules.Phase = PhaseGameOver
	s.rules.Winner = winner
	s.emit(Event{Kind: EventGameOver, Player: winner})
}

// Fire launches a shell for player. It does nothing and returns false unless
// the match is aiming and player owns the turn. Angle and power are clamped.
func (s *Simulation) Fire(angle, power, player int) bool {
	if s.rules.Phase != PhaseTurnAim || player != s.rules.ActivePlayer {
		return false
	}
	t := s.tanks[player]
	if !t.Alive {
		return false
	}
	t.SetAim(angle, power)

	muzzleY := t.Y + fixed.FromInt(TankHeight/2)
	s.shell = NewProjectile(t.X, muzzleY, t.AimAngle, t.AimPower, s.rules.Wind, t.ID)
	s.rules.Phase = PhaseProjectileFlight
	s.emit(Event{Kind: EventFire, X: t.PixelX(), Y: muzzleY.ToInt(), Player: player, Value: t.AimAngle, Extra: t.AimPower})
	return true
}

// Abort ends the match immediately with WinnerAborted.
func (s *Simulation) Abort() {
	if s.rules.Phase == PhaseGameOver && s.rules.Winner == WinnerAborted {
		return
	}
	s.shell = nil
	s.pending = nil
	s.endMatch(WinnerAborted)
}

func (s *Simulation) emit(e Event) {
	s.events = append(s.events, e)
}

// Events returns the events raised by the most recent tick (or by Start,
// Fire and Abort since then).
func (s *Simulation) Events() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Seed returns the match seed.
func (s *Simulation) Seed() uint32 { return s.seed }

// Tick returns the number of ticks stepped so far.
func (s *Simulation) Tick() int { return s.tick }

// Phase returns the current state-machine phase.
func (s *Simulation) Phase() Phase { return s.rules.Phase }

// Rules returns a copy of the rules state.
func (s *Simulation) Rules() Rules { return s.rules }

// Turn returns the current turn number.
func (s *Simulation) Turn() int { return s.rules.Turn }

// ActivePlayer returns the index of the player whose turn it is.
func (s *Simulation) ActivePlayer() int { return s.rules.ActivePlayer }

// Winner returns the winner, or WinnerNone while the match runs.
func (s *Simulation) Winner() int { return s.rules.Winner }

// IsOver reports whether the match has ended.
func (s *Simulation) IsOver() bool { return s.rules.Phase == PhaseGameOver }

// Tank returns a copy of a tank's state.
func (s *Simulation) Tank(id int) Tank { return *s.tanks[id&1] }

// Projectile returns a copy of the shell in flight, if any.
func (s *Simulation) Projectile() (Projectile, bool) {
	if s.shell == nil {
		return Projectile{}, false
	}
	return *s.shell, true
}

// HeightAt returns the terrain height at column x.
func (s *Simulation) HeightAt(x int) int { return s.terrain.HeightAt(x) }

// Heights returns a copy of the terrain samples.
func (s *Simulation) Heights() []int32 { return s.terrain.Clone().Heights }

// Bounds returns the world as a rectangle.
func (s *Simulation) Bounds() core.Rect { return core.NewRect(0, 0, Width, Height) }

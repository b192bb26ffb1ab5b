package sim

import (
	"fmt"

	"github.com/tomcoolpxl/tank-wars/internal/fixed"
)

// TankState is the serializable form of a Tank.
type TankState struct {
	X, Y      int64
	VX, VY    int64
	Health    int
	Alive     bool
	BaseAngle int
	AimAngle  int
	AimPower  int
	Stable    bool
}

// ProjectileState is the serializable form of a Projectile.
type ProjectileState struct {
	X, Y       int64
	VX, VY     int64
	WindAccel  int64
	Shooter    int
	TicksAlive int
}

// Snapshot is the complete match state, used to resynchronize a peer that
// has diverged. Uses primitive types only for stable serialization.
type Snapshot struct {
	Seed     uint32
	Tick     int
	RNGState uint32
	Heights  []int32
	Tanks    [2]TankState

	HasProjectile bool
	Projectile    ProjectileState

	HasPending bool
	PendingX   int
	PendingY   int

	Phase          int
	ActivePlayer   int
	Turn           int
	TurnTimer      int
	StabilizeTimer int
	DelayTimer     int
	Wind           int
	Winner         int
}

// Snapshot captures the current state.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Seed:           s.seed,
		Tick:           s.tick,
		RNGState:       s.rng.State(),
		Heights:        s.terrain.Clone().Heights,
		Phase:          int(s.rules.Phase),
		ActivePlayer:   s.rules.ActivePlayer,
		Turn:           s.rules.Turn,
		TurnTimer:      s.rules.TurnTimer,
		StabilizeTimer: s.rules.StabilizeTimer,
		DelayTimer:     s.rules.DelayTimer,
		Wind:           s.rules.Wind,
		Winner:         s.rules.Winner,
	}
	for i, t := range s.tanks {
		snap.Tanks[i] = TankState{
			X:         int64(t.X),
			Y:         int64(t.Y),
			VX:        int64(t.VX),
			VY:        int64(t.VY),
			Health:    t.Health,
			Alive:     t.Alive,
			BaseAngle: t.BaseAngle,
			AimAngle:  t.AimAngle,
			AimPower:  t.AimPower,
			Stable:    t.Stable,
		}
	}
	if p := s.shell; p != nil {
		snap.HasProjectile = true
		snap.Projectile = ProjectileState{
			X:          int64(p.X),
			Y:          int64(p.Y),
			VX:         int64(p.VX),
			VY:         int64(p.VY),
			WindAccel:  int64(p.WindAccel),
			Shooter:    p.Shooter,
			TicksAlive: p.TicksAlive,
		}
	}
	if s.pending != nil {
		snap.HasPending = true
		snap.PendingX = s.pending.X
		snap.PendingY = s.pending.Y
	}
	return snap
}

// ApplySnapshot replaces the current state. The snapshot is checked for
// shape before anything is modified, so a rejected snapshot leaves the
// simulation untouched.
func (s *Simulation) ApplySnapshot(snap Snapshot) error {
	if len(snap.Heights) != TerrainSamples {
		return fmt.Errorf("sim: snapshot has %d terrain samples, want %d", len(snap.Heights), TerrainSamples)
	}
	if snap.Phase < int(PhaseLobby) || snap.Phase > int(PhaseGameOver) {
		return fmt.Errorf("sim: snapshot phase %d out of range", snap.Phase)
	}
	if snap.ActivePlayer != 0 && snap.ActivePlayer != 1 {
		return fmt.Errorf("sim: snapshot active player %d out of range", snap.ActivePlayer)
	}

	s.seed = snap.Seed
	s.tick = snap.Tick
	s.rng.SetState(snap.RNGState)
	s.terrain = &Terrain{Heights: append([]int32(nil), snap.Heights...)}

	for i, ts := range snap.Tanks {
		s.tanks[i] = &Tank{
			ID:        i,
			X:         fixed.Fixed(ts.X),
			Y:         fixed.Fixed(ts.Y),
			VX:        fixed.Fixed(ts.VX),
			VY:        fixed.Fixed(ts.VY),
			Health:    ts.Health,
			Alive:     ts.Alive,
			BaseAngle: ts.BaseAngle,
			AimAngle:  ts.AimAngle,
			AimPower:  ts.AimPower,
			Stable:    ts.Stable,
		}
	}

	s.shell = nil
	if snap.HasProjectile {
		ps := snap.Projectile
		s.shell = &Projectile{
			X:          fixed.Fixed(ps.X),
			Y:          fixed.Fixed(ps.Y),
			VX:         fixed.Fixed(ps.VX),
			VY:         fixed.Fixed(ps.VY),
			WindAccel:  fixed.Fixed(ps.WindAccel),
			Shooter:    ps.Shooter,
			TicksAlive: ps.TicksAlive,
			Active:     true,
		}
	}

	s.pending = nil
	if snap.HasPending {
		s.pending = &point{X: snap.PendingX, Y: snap.PendingY}
	}

	s.rules = Rules{
		Phase:          Phase(snap.Phase),
		ActivePlayer:   snap.ActivePlayer,
		Turn:           snap.Turn,
		TurnTimer:      snap.TurnTimer,
		StabilizeTimer: snap.StabilizeTimer,
		DelayTimer:     snap.DelayTimer,
		Wind:           snap.Wind,
		Winner:         snap.Winner,
	}
	s.events = s.events[:0]
	return nil
}

// Hash returns the order-sensitive checksum both peers compare at the end of
// every turn. The turn timer is left out so a tick of jitter in when a peer
// observed the timer does not register as divergence.
func (snap *Snapshot) Hash() uint32 {
	var h hasher
	for _, v := range snap.Heights {
		h.add32(uint32(v)) //#nosec G115 -- hash computation
	}
	for _, t := range snap.Tanks {
		h.add64(t.X)
		h.add64(t.Y)
		h.add64(t.VX)
		h.add64(t.VY)
		h.addInt(t.Health)
		h.addInt(t.AimAngle)
		h.addInt(t.AimPower)
		h.addBool(t.Alive)
	}
	h.addBool(snap.HasProjectile)
	if snap.HasProjectile {
		h.add64(snap.Projectile.X)
		h.add64(snap.Projectile.Y)
		h.add64(snap.Projectile.VX)
		h.add64(snap.Projectile.VY)
	}
	if snap.HasPending {
		h.addInt(snap.PendingX)
		h.addInt(snap.PendingY)
	}
	h.addInt(snap.Wind)
	h.addInt(snap.Turn)
	h.addInt(snap.ActivePlayer)
	h.addInt(snap.Phase)
	h.add32(snap.RNGState)
	return uint32(h)
}

// Hash returns the checksum of the current state.
func (s *Simulation) Hash() uint32 {
	snap := s.Snapshot()
	return snap.Hash()
}

type hasher uint32

func (h *hasher) add32(v uint32) {
	*h = *h*31 + hasher(v)
}

func (h *hasher) add64(v int64) {
	h.add32(uint32(v))       //#nosec G115 -- low word
	h.add32(uint32(v >> 32)) //#nosec G115 -- high word
}

func (h *hasher) addInt(v int) {
	h.add64(int64(v))
}

func (h *hasher) addBool(b bool) {
	if b {
		h.add32(1)
	} else {
		h.add32(0)
	}
}

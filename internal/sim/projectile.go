package sim

import "github.com/tomcoolpxl/tank-wars/internal/fixed"

// Outcome is how a projectile's flight ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeOutOfBounds
	OutcomeTerrainHit
	OutcomeTankHit
	OutcomeTimeout
)

// String returns a human-readable name.
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeOutOfBounds:
		return "out-of-bounds"
	case OutcomeTerrainHit:
		return "terrain"
	case OutcomeTankHit:
		return "tank"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Explodes reports whether the outcome detonates.
func (o Outcome) Explodes() bool {
	return o == OutcomeTerrainHit || o == OutcomeTankHit
}

// FlightResult is returned by Projectile.Step.
type FlightResult struct {
	Outcome Outcome
	X, Y    int // impact point in pixels, valid when Outcome explodes
	TankID  int // tank struck, valid for OutcomeTankHit
}

// Projectile is a shell in flight.
type Projectile struct {
	X, Y       fixed.Fixed
	VX, VY     fixed.Fixed
	WindAccel  fixed.Fixed
	Shooter    int
	TicksAlive int
	Active     bool
}

// NewProjectile launches a shell from (x, y). Angle is in degrees with 0
// pointing right and 90 straight up; power is 0..100.
func NewProjectile(x, y fixed.Fixed, angle, power, wind, shooter int) *Projectile {
	v0 := fixed.FromInt(power * PowerToVel)
	return &Projectile{
		X:         x,
		Y:         y,
		VX:        launchComponent(v0, fixed.Cos(angle)),
		VY:        launchComponent(v0, fixed.Sin(angle)),
		WindAccel: fixed.Fixed(wind) * WindAccelPerTick,
		Shooter:   shooter,
		Active:    true,
	}
}

// launchComponent converts one axis of the launch speed from px/s to
// px/tick. An axis that should move but truncates to zero gets one unit.
func launchComponent(v0, trig fixed.Fixed) fixed.Fixed {
	v := fixed.Mul(v0, trig) / TicksPerSecond
	if v == 0 && v0 != 0 && trig != 0 {
		return fixed.Fixed(trig.Sign())
	}
	return v
}

// Step advances the shell one tick and resolves collisions in priority
// order: world bounds, terrain, tank domes, lifetime.
func (p *Projectile) Step(terrain *Terrain, tanks []*Tank) FlightResult {
	if !p.Active {
		return FlightResult{}
	}

	p.VX += p.WindAccel
	p.VY -= GravityPerTick
	p.X += p.VX
	p.Y += p.VY
	p.TicksAlive++

	x, y := p.X.ToInt(), p.Y.ToInt()

	if x < 0 || x >= Width || y < 0 || y >= Height {
		p.Active = false
		return FlightResult{Outcome: OutcomeOutOfBounds, X: x, Y: y}
	}

	if y <= terrain.HeightAt(x) {
		p.Active = false
		return FlightResult{Outcome: OutcomeTerrainHit, X: x, Y: y}
	}

	for _, t := range tanks {
		if !t.Alive {
			continue
		}
		if t.ID == p.Shooter && p.TicksAlive < SelfCollisionGraceTicks {
			continue
		}
		if t.Dome().Contains(x, y) {
			p.Active = false
			return FlightResult{Outcome: OutcomeTankHit, X: x, Y: y, TankID: t.ID}
		}
	}

	if p.TicksAlive >= ProjectileLifetimeTicks {
		p.Active = false
		return FlightResult{Outcome: OutcomeTimeout, X: x, Y: y}
	}

	return FlightResult{}
}

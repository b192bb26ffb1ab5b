package sim

import (
	"github.com/tomcoolpxl/tank-wars/internal/core"
	"github.com/tomcoolpxl/tank-wars/internal/fixed"
)

// Tank is one player's vehicle. X, Y is the hull centre in fixed-point.
type Tank struct {
	ID        int
	X, Y      fixed.Fixed
	VX, VY    fixed.Fixed
	Health    int
	Alive     bool
	BaseAngle int // platform tilt in degrees, from the terrain slope
	AimAngle  int
	AimPower  int
	Stable    bool
}

// NewTank creates a full-health tank at the given fixed-point position.
func NewTank(id int, x, y fixed.Fixed) *Tank {
	return &Tank{
		ID:       id,
		X:        x,
		Y:        y,
		Health:   MaxHealth,
		Alive:    true,
		AimAngle: startAimAngle[id&1],
		AimPower: StartAimPower,
	}
}

// PixelX returns the tank's column.
func (t *Tank) PixelX() int { return t.X.ToInt() }

// PixelY returns the tank's row (hull centre).
func (t *Tank) PixelY() int { return t.Y.ToInt() }

// Dome returns the projectile hit footprint as a rectangle in pixels.
func (t *Tank) Dome() core.Rect {
	return core.NewRect(t.PixelX()-DomeRadiusX, t.PixelY(), 2*DomeRadiusX+1, DomeRadiusY+1)
}

// SetAim writes a clamped aim onto the tank.
func (t *Tank) SetAim(angle, power int) {
	t.AimAngle = core.Clamp(angle, MinAimAngle, MaxAimAngle)
	t.AimPower = core.Clamp(power, MinAimPower, MaxAimPower)
}

// ApplyInputs nudges the aim by one step per held control.
func (t *Tank) ApplyInputs(in Inputs) {
	angle, power := t.AimAngle, t.AimPower
	if in.AngleUp {
		angle++
	}
	if in.AngleDown {
		angle--
	}
	if in.PowerUp {
		power++
	}
	if in.PowerDown {
		power--
	}
	t.SetAim(angle, power)
}

// Damage subtracts health, killing the tank at zero.
func (t *Tank) Damage(amount int) {
	t.Health = max(0, t.Health-amount)
	if t.Health == 0 {
		t.Alive = false
	}
}

func (t *Tank) kill() {
	t.Health = 0
	t.Alive = false
}

func (t *Tank) snapTo(ground int) {
	t.Y = fixed.FromInt(ground + TankHeight/2)
	t.VX = 0
	t.VY = 0
}

// Step advances the tank by one tick. Tanks never slide: they either rest on
// the terrain or fall straight down.
func (t *Tank) Step(terrain *Terrain) {
	if !t.Alive {
		return
	}

	x, y := t.PixelX(), t.PixelY()
	ground := terrain.HeightAt(x)
	bottom := y - TankHeight/2
	if bottom < 0 {
		t.kill()
		return
	}

	hl := terrain.HeightAt(x - TankSlopeSampleDist)
	hr := terrain.HeightAt(x + TankSlopeSampleDist)
	t.BaseAngle = fixed.Atan2(int64(hr-hl), 2*TankSlopeSampleDist)

	switch {
	case core.Abs(bottom-ground) <= TankGroundEpsilon:
		t.snapTo(ground)
	case bottom > ground:
		t.VY -= GravityPerTick
		t.VX = 0
	default:
		// Crater opened underneath or terrain rose around us.
		t.snapTo(ground)
	}

	t.X += t.VX
	t.Y += t.VY

	fx, fy := t.PixelX(), t.PixelY()
	if fx < 0 || fx >= Width || fy < 0 {
		t.kill()
	}
	if t.Health <= 0 {
		t.Alive = false
	}

	t.Stable = t.VX.Abs() < TankStabilityThreshold && t.VY.Abs() < TankStabilityThreshold
}

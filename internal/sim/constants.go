// Package sim is the deterministic artillery simulation. Both peers of a
// match run it from the same seed and feed it the same shots; every value it
// produces is an integer so the two copies never drift apart.
package sim

import "github.com/tomcoolpxl/tank-wars/internal/fixed"

// World geometry. Y grows upward; y=0 is the bottom of the world.
const (
	Width          = 800
	Height         = 600
	TicksPerSecond = 60
)

// Terrain.
const (
	TerrainStep      = 2
	TerrainSamples   = Width / TerrainStep
	TerrainMinHeight = 80
	TerrainMaxHeight = 450

	terrainBaseMin      = 150
	terrainBaseMax      = 300
	terrainTrendStep    = 2
	terrainTrendMax     = 5
	terrainSmoothPasses = 3
)

// Tanks.
const (
	TankWidth           = 24
	TankHeight          = 12
	MaxHealth           = 100
	TankGroundEpsilon   = 2
	TankSlopeSampleDist = 8

	TankStabilityThreshold fixed.Fixed = 1000

	// Hit footprint above the tank centre: x in [tx-DomeRadiusX, tx+DomeRadiusX],
	// y in [ty, ty+DomeRadiusY].
	DomeRadiusX = 12
	DomeRadiusY = 12
)

// Aim limits.
const (
	MinAimAngle   = 0
	MaxAimAngle   = 180
	MinAimPower   = 0
	MaxAimPower   = 100
	StartAimPower = 50
)

// Ballistics.
const (
	PowerToVel = 4 // px/s per unit of power

	GravityPerTick   fixed.Fixed = 50_000
	WindAccelPerTick fixed.Fixed = 300 // per unit of wind
	WindMax                      = 15

	ProjectileLifetimeTicks = 600
	SelfCollisionGraceTicks = 20
)

// Explosions.
const (
	ExplosionDamageRadius = 60
	ExplosionDeformRadius = 45
)

// Turn timing.
const (
	TurnDurationTicks     = 1200
	StabilizationCapTicks = 480
)

// SpawnRanges holds the inclusive spawn column range for each player.
var SpawnRanges = [2][2]int{
	{40, 320},
	{480, 760},
}

var startAimAngle = [2]int{45, 135}

package sim

import (
	"github.com/tomcoolpxl/tank-wars/internal/core"
	"github.com/tomcoolpxl/tank-wars/internal/fixed"
	"github.com/tomcoolpxl/tank-wars/internal/rng"
)

// Terrain is the height profile of the battlefield, one sample per
// TerrainStep pixels. Explosions only ever lower it.
type Terrain struct {
	Heights []int32
}

// NewTerrain returns flat terrain at height 0.
func NewTerrain() *Terrain {
	return &Terrain{Heights: make([]int32, TerrainSamples)}
}

// GenerateTerrain builds the terrain for a seed. It uses its own generator
// so the simulation's RNG stream is untouched by terrain generation.
func GenerateTerrain(seed uint32) *Terrain {
	t := NewTerrain()
	r := rng.New(seed)

	h := r.NextInt(terrainBaseMin, terrainBaseMax)
	trend := 0
	for i := range t.Heights {
		trend = core.Clamp(trend+r.NextInt(-terrainTrendStep, terrainTrendStep), -terrainTrendMax, terrainTrendMax)
		h = core.Clamp(h+trend, TerrainMinHeight, TerrainMaxHeight)
		t.Heights[i] = int32(h) //#nosec G115 -- clamped to terrain range
	}

	// Smoothing is in place: each sample sees its already-smoothed left neighbour.
	for range terrainSmoothPasses {
		for i := 1; i < len(t.Heights)-1; i++ {
			sum := t.Heights[i-1] + t.Heights[i] + t.Heights[i+1]
			t.Heights[i] = sum / 3
		}
	}
	return t
}

// HeightAt returns the surface height at pixel column x. Columns outside the
// world read the nearest edge sample.
func (t *Terrain) HeightAt(x int) int {
	if x < 0 {
		return int(t.Heights[0])
	}
	if x >= Width {
		return int(t.Heights[len(t.Heights)-1])
	}
	return int(t.Heights[x/TerrainStep])
}

// DeformCrater carves a circular bite of radius r centred on column cx.
// Each affected sample is lowered by the half-chord of the circle at its
// horizontal offset, never below 0.
func (t *Terrain) DeformCrater(cx, _ int, r int) {
	if r <= 0 {
		return
	}
	r2 := int64(r) * int64(r)
	first := max(0, floorDiv(cx-r, TerrainStep))
	last := min(len(t.Heights)-1, floorDiv(cx+r, TerrainStep))

	for i := first; i <= last; i++ {
		dx := int64(core.Abs(i*TerrainStep - cx))
		if dx > int64(r) {
			continue
		}
		depth := int32(fixed.Isqrt(r2 - dx*dx)) //#nosec G115 -- depth <= r
		t.Heights[i] = max(0, t.Heights[i]-depth)
	}
}

// Clone returns an independent copy.
func (t *Terrain) Clone() *Terrain {
	c := &Terrain{Heights: make([]int32, len(t.Heights))}
	copy(c.Heights, t.Heights)
	return c
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

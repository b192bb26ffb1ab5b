package fixed

import (
	"math"
	"sort"
)

var (
	sinTable [181]Fixed
	cosTable [181]Fixed
	// tanEdges[d] is tan(d+0.5 degrees) in fixed-point: the ratio at which
	// the quantized angle steps from d to d+1.
	tanEdges [90]Fixed
)

// Tables are filled exactly once. After init only integer lookups happen,
// so every peer reads the same values regardless of platform float behaviour
// during play.
func init() {
	for d := range 181 {
		r := float64(d) * math.Pi / 180
		sinTable[d] = Fixed(math.Round(math.Sin(r) * Scale))
		cosTable[d] = Fixed(math.Round(math.Cos(r) * Scale))
	}
	sinTable[180] = 0
	cosTable[90] = 0
	for d := range 90 {
		r := (float64(d) + 0.5) * math.Pi / 180
		tanEdges[d] = Fixed(math.Round(math.Tan(r) * Scale))
	}
}

func normalizeDeg(deg int) int {
	d := deg % 360
	if d < 0 {
		d += 360
	}
	return d
}

// Sin returns sin(deg) in fixed-point.
func Sin(deg int) Fixed {
	d := normalizeDeg(deg)
	if d <= 180 {
		return sinTable[d]
	}
	return -sinTable[d-180]
}

// Cos returns cos(deg) in fixed-point.
func Cos(deg int) Fixed {
	d := normalizeDeg(deg)
	if d <= 180 {
		return cosTable[d]
	}
	return -cosTable[d-180]
}

// Atan2 returns the angle of (dx, dy) in whole degrees, in (-180, 180].
// The inputs are plain integers (pixels or fixed-point, only the ratio matters).
func Atan2(dy, dx int64) int {
	if dx == 0 {
		switch {
		case dy > 0:
			return 90
		case dy < 0:
			return -90
		}
		return 0
	}

	ratio := Div(Fixed(magnitude(dy)), Fixed(magnitude(dx))) //#nosec G115 -- magnitudes of pixel deltas
	base := sort.Search(len(tanEdges), func(i int) bool {
		return tanEdges[i] > ratio
	})

	deg := base
	if dx < 0 {
		deg = 180 - base
	}
	if dy < 0 {
		deg = -deg
	}
	if deg == -180 {
		deg = 180
	}
	return deg
}

package fixed

import "math/bits"

// Isqrt returns floor(sqrt(n)) for n >= 0 and 0 for negative n.
// Newton's method is started from a power of two above the root so the
// iteration decreases monotonically onto the floor.
func Isqrt(n int64) int64 {
	if n < 0 {
		return 0
	}
	if n < 2 {
		return n
	}
	x := int64(1) << ((bits.Len64(uint64(n)) + 1) / 2) //#nosec G115 -- n is positive
	for {
		y := (x + n/x) / 2
		if y >= x {
			return x
		}
		x = y
	}
}

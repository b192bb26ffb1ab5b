// Package rng provides the seeded generator that drives every random choice
// in a match: terrain shape, spawn columns and wind.
package rng

// XorShift32 is a 32-bit xorshift generator. Its whole state is one word,
// which is folded into the simulation hash and carried in snapshots.
type XorShift32 struct {
	state uint32
}

// New creates a generator. A zero seed is remapped to 1 because xorshift
// never leaves the all-zero state.
func New(seed uint32) *XorShift32 {
	if seed == 0 {
		seed = 1
	}
	return &XorShift32{state: seed}
}

// NextU32 advances the generator and returns the new state.
func (r *XorShift32) NextU32() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// NextInt returns a value in [min, max] inclusive.
// If max < min, min is returned without advancing the generator.
func (r *XorShift32) NextInt(lo, hi int) int {
	if hi < lo {
		return lo
	}
	span := uint32(hi - lo + 1) //#nosec G115 -- span of game ranges is small
	return lo + int(r.NextU32()%span)
}

// State returns the raw generator state.
func (r *XorShift32) State() uint32 {
	return r.state
}

// SetState restores a state captured with State.
func (r *XorShift32) SetState(s uint32) {
	if s == 0 {
		s = 1
	}
	r.state = s
}

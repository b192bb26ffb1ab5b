package lockstep

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomcoolpxl/tank-wars/internal/sim"
)

var (
	// ErrProtocol means the other peer broke turn order.
	ErrProtocol = errors.New("lockstep: protocol violation")
	// ErrSecurity means the other peer sent values outside the contract.
	ErrSecurity = errors.New("lockstep: security violation")
	// ErrAborted is returned once the match has been aborted.
	ErrAborted = errors.New("lockstep: match aborted")
)

// ValidateShot checks a remote shot and returns its integer angle and power.
func ValidateShot(s Shot) (angle, power int, err error) {
	angle, err = wholeInRange("angle", s.Angle, sim.MinAimAngle, sim.MaxAimAngle)
	if err != nil {
		return 0, 0, err
	}
	power, err = wholeInRange("power", s.Power, sim.MinAimPower, sim.MaxAimPower)
	if err != nil {
		return 0, 0, err
	}
	return angle, power, nil
}

func wholeInRange(name string, v float64, lo, hi int) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s is not finite", ErrSecurity, name)
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %s %v is not a whole number", ErrSecurity, name, v)
	}
	if v < float64(lo) || v > float64(hi) {
		return 0, fmt.Errorf("%w: %s %v outside [%d, %d]", ErrSecurity, name, v, lo, hi)
	}
	return int(v), nil
}

package lockstep

import (
	"errors"
	"fmt"

	"github.com/tomcoolpxl/tank-wars/internal/sim"
)

// ErrReplayStalled is returned when a replay runs past its tick budget.
var ErrReplayStalled = errors.New("lockstep: replay did not finish")

// ReplayResult is the outcome of re-running a recorded match.
type ReplayResult struct {
	// Hashes maps each turn to the checksum a live peer would have sent
	// for it. Turn 0 is the opening checksum.
	Hashes    map[int]uint32
	Turns     int
	Ticks     int
	Winner    int
	FinalHash uint32
}

// Replay re-simulates a match headlessly from its seed and shot log. Turns
// without a recorded shot fall back to the turn timer. The run stops after
// the last recorded shot's turn has settled or when the match ends,
// whichever comes first.
func Replay(seed uint32, shots []ShotRecord, opts ...sim.Option) (ReplayResult, error) {
	byTurn := make(map[int]ShotRecord, len(shots))
	lastTurn := 0
	for _, s := range shots {
		if _, dup := byTurn[s.Turn]; dup {
			return ReplayResult{}, fmt.Errorf("lockstep: two shots recorded for turn %d", s.Turn)
		}
		byTurn[s.Turn] = s
		lastTurn = max(lastTurn, s.Turn)
	}

	s := sim.New(seed, opts...)
	s.Start()
	res := ReplayResult{Hashes: map[int]uint32{0: s.Hash()}}

	budget := (lastTurn + 1) * (sim.TurnDurationTicks + sim.ProjectileLifetimeTicks + sim.StabilizationCapTicks + 1)
	for !s.IsOver() && s.Turn() <= lastTurn {
		if res.Ticks >= budget {
			return res, ErrReplayStalled
		}
		if s.Phase() == sim.PhaseTurnAim {
			if shot, ok := byTurn[s.Turn()]; ok {
				s.Fire(shot.Angle, shot.Power, s.ActivePlayer())
				delete(byTurn, shot.Turn)
			}
		}
		prev := s.Turn()
		s.Step(sim.Inputs{})
		res.Ticks++
		if s.Turn() != prev {
			res.Hashes[prev] = s.Hash()
		}
	}

	if s.IsOver() {
		res.Hashes[s.Turn()] = s.Hash()
	}
	res.Turns = s.Turn()
	res.Winner = s.Winner()
	res.FinalHash = s.Hash()
	return res, nil
}

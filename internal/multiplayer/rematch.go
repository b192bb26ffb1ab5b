package multiplayer

import "github.com/tomcoolpxl/tank-wars/internal/lockstep"

// RematchStep is what a rematch transition asks the caller to do.
type RematchStep struct {
	Send  []lockstep.Message
	Start bool   // Restart the match now
	Seed  uint32 // Seed for the restarted match, when Start is set
}

// Rematch runs the play-again handshake after a match ends. Both sides
// flag readiness; the host picks the next seed once both are ready and
// the guest restarts when that seed arrives.
type Rematch struct {
	role        Role
	newSeed     func() uint32
	localReady  bool
	remoteReady bool
}

// NewRematch creates a handshake for one side. newSeed may be nil.
func NewRematch(role Role, newSeed func() uint32) *Rematch {
	if newSeed == nil {
		newSeed = NewSeed
	}
	return &Rematch{role: role, newSeed: newSeed}
}

// LocalReady reports whether this side asked for a rematch.
func (r *Rematch) LocalReady() bool { return r.localReady }

// RemoteReady reports whether the other side asked for a rematch.
func (r *Rematch) RemoteReady() bool { return r.remoteReady }

// Ready marks this side as wanting another round. Repeated calls are no-ops.
func (r *Rematch) Ready() RematchStep {
	if r.localReady {
		return RematchStep{}
	}
	r.localReady = true
	if r.role == RoleHost && r.remoteReady {
		return r.start()
	}
	return RematchStep{Send: []lockstep.Message{lockstep.PlayAgainReady{}}}
}

// Handle consumes play-again messages. ok is false for any other message,
// which the caller should route to the peer.
func (r *Rematch) Handle(msg lockstep.Message) (step RematchStep, ok bool) {
	switch m := msg.(type) {
	case lockstep.PlayAgainReady:
		r.remoteReady = true
		if r.role == RoleHost && r.localReady {
			return r.start(), true
		}
		return RematchStep{}, true
	case lockstep.PlayAgainStart:
		if r.role != RoleGuest {
			return RematchStep{}, true
		}
		r.reset()
		return RematchStep{Start: true, Seed: m.Seed}, true
	default:
		return RematchStep{}, false
	}
}

func (r *Rematch) start() RematchStep {
	seed := r.newSeed()
	r.reset()
	return RematchStep{
		Send:  []lockstep.Message{lockstep.PlayAgainStart{Seed: seed}},
		Start: true,
		Seed:  seed,
	}
}

func (r *Rematch) reset() {
	r.localReady = false
	r.remoteReady = false
}

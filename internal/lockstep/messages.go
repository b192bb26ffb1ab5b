// Package lockstep keeps two copies of the simulation in step. Peers trade
// only shots and per-turn checksums; a full snapshot crosses the wire only
// when the checksums disagree.
package lockstep

import "github.com/tomcoolpxl/tank-wars/internal/sim"

// Message is anything one peer sends to the other.
type Message interface {
	lockstepMessage()
}

// Shot announces the shot fired on a turn. Angle and power are carried as
// float64 so a value that is not a whole number can be detected and
// rejected instead of being silently truncated.
type Shot struct {
	Turn  int
	Angle float64
	Power float64
}

func (Shot) lockstepMessage() {}

// Hash carries a peer's state checksum taken as a turn ended.
type Hash struct {
	Turn int
	Hash uint32
}

func (Hash) lockstepMessage() {}

// Sync carries the authoritative peer's full state after a mismatch.
type Sync struct {
	Turn  int
	State sim.Snapshot
}

func (Sync) lockstepMessage() {}

// Abort ends the match on both sides.
type Abort struct {
	Reason string
}

func (Abort) lockstepMessage() {}

// MatchInit tells the guest which seed the host chose.
type MatchInit struct {
	Seed uint32
}

func (MatchInit) lockstepMessage() {}

// PlayAgainReady says this side wants a rematch.
type PlayAgainReady struct{}

func (PlayAgainReady) lockstepMessage() {}

// PlayAgainStart is sent by the host once both sides are ready.
type PlayAgainStart struct {
	Seed uint32
}

func (PlayAgainStart) lockstepMessage() {}

// Link is the outbound half of a reliable, ordered channel to the other peer.
type Link interface {
	Send(Message) error
}

// ShotRecord is one entry of a match's shot log.
type ShotRecord struct {
	Turn  int
	Angle int
	Power int
}

// Player returns the tank that fired. Player 0 opens turn 1 and the turn
// always alternates.
func (r ShotRecord) Player() int {
	return (r.Turn - 1) & 1
}

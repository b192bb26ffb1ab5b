// Package multiplayer pairs two players and carries lockstep messages
// between them: an in-process pipe for hot-seat and SSH-hosted matches and
// a websocket link for matches across machines.
package multiplayer

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// SessionID uniquely identifies a player's session (e.g., SSH connection).
type SessionID string

// MatchID uniquely identifies a match.
type MatchID string

// Role is which end of a match a peer holds. The host plays tank 0 and is
// the authoritative side when checksums disagree.
type Role int

const (
	RoleHost Role = iota
	RoleGuest
)

// String returns a human-readable name for the role.
func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleGuest:
		return "guest"
	default:
		return "unknown"
	}
}

// Player returns the tank index the role controls.
func (r Role) Player() int {
	if r == RoleGuest {
		return 1
	}
	return 0
}

// Authoritative reports whether this role answers desyncs with a Sync.
func (r Role) Authoritative() bool {
	return r == RoleHost
}

// MatchMode defines how a match is connected.
type MatchMode int

const (
	// MatchModeHotseat runs both peers in one process, sharing a keyboard.
	MatchModeHotseat MatchMode = iota

	// MatchModeSSH pairs two SSH sessions on the same server.
	MatchModeSSH

	// MatchModeNetwork links two processes over a websocket.
	MatchModeNetwork
)

// String returns a human-readable name for the match mode.
func (m MatchMode) String() string {
	switch m {
	case MatchModeHotseat:
		return "hotseat"
	case MatchModeSSH:
		return "ssh"
	case MatchModeNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// NewSeed draws a match seed from the OS entropy source.
func NewSeed() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint32(time.Now().UnixNano()) //#nosec G115 -- fallback seed, truncation intended
	}
	if s := binary.LittleEndian.Uint32(b[:]); s != 0 {
		return s
	}
	return 1
}

// NewMatchID builds a match identifier from a prefix and the current time.
func NewMatchID(prefix string) MatchID {
	return MatchID(prefix + "-" + time.Now().UTC().Format("20060102-150405.000000000"))
}

package multiplayer

import (
	"sync"
	"time"
)

// MatchResult contains the outcome of a hosted match.
type MatchResult struct {
	MatchID MatchID
	Reason  MatchEndReason
	Left    SessionID // Set when a player disconnected
}

// OnlineMatch pairs two sessions over an in-process pipe. The simulation
// runs inside each session; the match only owns the link and watches for
// either side going away.
type OnlineMatch struct {
	id      MatchID
	code    string
	seed    uint32
	started time.Time

	hostSession  SessionHandle
	guestSession SessionHandle
	hostEnd      *PipeEnd
	guestEnd     *PipeEnd

	done     chan struct{}
	doneOnce sync.Once

	disconnectChan chan SessionID
}

// NewOnlineMatch creates a match and the pipe joining its two sessions.
func NewOnlineMatch(id MatchID, code string, seed uint32, host, guest SessionHandle) *OnlineMatch {
	hostEnd, guestEnd := NewPipe(0)
	return &OnlineMatch{
		id:             id,
		code:           code,
		seed:           seed,
		started:        time.Now(),
		hostSession:    host,
		guestSession:   guest,
		hostEnd:        hostEnd,
		guestEnd:       guestEnd,
		done:           make(chan struct{}),
		disconnectChan: make(chan SessionID, 2),
	}
}

// ID returns the match identifier.
func (m *OnlineMatch) ID() MatchID {
	return m.id
}

// Code returns the join code used to create this match.
func (m *OnlineMatch) Code() string {
	return m.code
}

// Seed returns the seed of the first round.
func (m *OnlineMatch) Seed() uint32 {
	return m.seed
}

// Started returns when the match was created.
func (m *OnlineMatch) Started() time.Time {
	return m.started
}

// Host returns the host session.
func (m *OnlineMatch) Host() SessionHandle {
	return m.hostSession
}

// Guest returns the guest session.
func (m *OnlineMatch) Guest() SessionHandle {
	return m.guestSession
}

// Has reports whether the session plays in this match.
func (m *OnlineMatch) Has(id SessionID) bool {
	return m.hostSession.ID() == id || m.guestSession.ID() == id
}

// StartedEvent builds the event that hands a session its end of the link.
func (m *OnlineMatch) StartedEvent(role Role) MatchStartedEvent {
	var conn Conn = m.hostEnd
	if role == RoleGuest {
		conn = m.guestEnd
	}
	return MatchStartedEvent{
		MatchID: m.id,
		Role:    role,
		Seed:    m.seed,
		Conn:    conn,
		Code:    m.code,
	}
}

// PlayerDisconnected signals that a player has left.
func (m *OnlineMatch) PlayerDisconnected(sessionID SessionID) {
	select {
	case m.disconnectChan <- sessionID:
	default:
	}
}

// Run blocks until a player leaves or the match is stopped, then closes
// the pipe so the remaining peer sees the opponent vanish. onComplete is
// not called after Stop.
func (m *OnlineMatch) Run(onComplete func(MatchResult)) {
	defer m.closeLink()

	for {
		select {
		case <-m.hostSession.Done():
			m.finish(onComplete, m.hostSession.ID())
			return
		case <-m.guestSession.Done():
			m.finish(onComplete, m.guestSession.ID())
			return
		case id := <-m.disconnectChan:
			if !m.Has(id) {
				continue
			}
			m.finish(onComplete, id)
			return
		case <-m.done:
			return
		}
	}
}

func (m *OnlineMatch) finish(onComplete func(MatchResult), left SessionID) {
	if onComplete == nil {
		return
	}
	onComplete(MatchResult{
		MatchID: m.id,
		Reason:  MatchEndReasonDisconnect,
		Left:    left,
	})
}

func (m *OnlineMatch) closeLink() {
	_ = m.hostEnd.Close() //nolint:errcheck // pipe close never fails
}

// Stop ends the match without a result.
func (m *OnlineMatch) Stop() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}

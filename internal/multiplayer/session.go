package multiplayer

import "sync"

// SessionHandle is how the coordinator reaches a connected player without
// knowing about SSH or Bubble Tea.
type SessionHandle interface {
	ID() SessionID

	// Send queues an event. It must not block the coordinator for long.
	Send(evt SessionEvent)

	// Done closes when the session ends.
	Done() <-chan struct{}
}

// ChannelSession is a SessionHandle backed by a buffered channel that the
// TUI layer drains.
type ChannelSession struct {
	id       SessionID
	events   chan SessionEvent
	done     chan struct{}
	doneOnce sync.Once
}

// NewChannelSession creates a session with room for bufferSize events.
func NewChannelSession(id SessionID, bufferSize int) *ChannelSession {
	if bufferSize < 1 {
		bufferSize = 64
	}
	return &ChannelSession{
		id:     id,
		events: make(chan SessionEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Send queues evt. Lobby chatter is dropped when the buffer is full;
// match start and end events wait for room because the session cannot
// recover without them.
func (s *ChannelSession) Send(evt SessionEvent) {
	select {
	case <-s.done:
		return
	default:
	}

	switch evt.(type) {
	case MatchStartedEvent, MatchEndedEvent:
		select {
		case s.events <- evt:
		case <-s.done:
		}
	default:
		select {
		case s.events <- evt:
		default:
		}
	}
}

// Events returns the channel the session reads from.
func (s *ChannelSession) Events() <-chan SessionEvent {
	return s.events
}

// Done returns the done channel.
func (s *ChannelSession) Done() <-chan struct{} {
	return s.done
}

// Close ends the session. Safe to call more than once.
func (s *ChannelSession) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// SessionRegistry tracks connected sessions.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[SessionID]SessionHandle
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[SessionID]SessionHandle)}
}

// Register adds a session.
func (r *SessionRegistry) Register(session SessionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
}

// Unregister removes a session.
func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get looks a session up by ID.
func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

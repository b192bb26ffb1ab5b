package multiplayer

// SessionEvent represents an event sent from the coordinator to a session.
type SessionEvent interface {
	sessionEvent()
}

// LobbyCreatedEvent is sent when a lobby is successfully created.
type LobbyCreatedEvent struct {
	Code string
}

func (LobbyCreatedEvent) sessionEvent() {}

// LobbyErrorEvent is sent when a lobby operation fails.
type LobbyErrorEvent struct {
	Message string
}

func (LobbyErrorEvent) sessionEvent() {}

// LobbyJoinedEvent is sent to both host and joiner when someone joins.
type LobbyJoinedEvent struct {
	Code       string
	Role       Role
	OpponentID SessionID
}

func (LobbyJoinedEvent) sessionEvent() {}

// LobbyPlayerLeftEvent is sent when a player leaves the lobby before match starts.
type LobbyPlayerLeftEvent struct {
	Code string
}

func (LobbyPlayerLeftEvent) sessionEvent() {}

// MatchStartedEvent hands a session its end of the match link. Both
// sessions receive the same seed.
type MatchStartedEvent struct {
	MatchID MatchID
	Role    Role
	Seed    uint32
	Conn    Conn
	Code    string
}

func (MatchStartedEvent) sessionEvent() {}

// MatchEndedEvent is sent when the match ends or the lobby closes under
// a session.
type MatchEndedEvent struct {
	MatchID MatchID
	Reason  MatchEndReason
}

func (MatchEndedEvent) sessionEvent() {}

// MatchEndReason describes why a match ended.
type MatchEndReason int

const (
	MatchEndReasonCompleted  MatchEndReason = iota // Normal game completion
	MatchEndReasonDisconnect                       // Opponent disconnected
	MatchEndReasonCancelled                        // Match was cancelled
	MatchEndReasonHostLeft                         // Host left the lobby
	MatchEndReasonJoinerLeft                       // Joiner left the lobby
	MatchEndReasonAborted                          // A peer aborted the round
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "Match completed"
	case MatchEndReasonDisconnect:
		return "Opponent disconnected"
	case MatchEndReasonCancelled:
		return "Match cancelled"
	case MatchEndReasonHostLeft:
		return "Host left"
	case MatchEndReasonJoinerLeft:
		return "Opponent left"
	case MatchEndReasonAborted:
		return "Match aborted"
	default:
		return "Unknown"
	}
}

// CoordinatorMessage represents a message from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// CreateLobbyMsg requests creation of a new lobby.
type CreateLobbyMsg struct {
	SessionID SessionID
}

func (CreateLobbyMsg) coordinatorMessage() {}

// JoinLobbyMsg requests joining an existing lobby.
type JoinLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (JoinLobbyMsg) coordinatorMessage() {}

// CancelLobbyMsg requests cancellation of a hosted lobby.
type CancelLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (CancelLobbyMsg) coordinatorMessage() {}

// LeaveLobbyMsg requests leaving a joined lobby.
type LeaveLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (LeaveLobbyMsg) coordinatorMessage() {}

// LeaveMatchMsg requests leaving an active match.
type LeaveMatchMsg struct {
	SessionID SessionID
	MatchID   MatchID
}

func (LeaveMatchMsg) coordinatorMessage() {}

// MatchFinishedMsg is reported by the host session when a round ends, so
// the coordinator can persist it. Shots is the full shot log.
type MatchFinishedMsg struct {
	SessionID SessionID
	MatchID   MatchID
	Round     int // 1 for the first round, incremented by each rematch
	Seed      uint32
	Winner    int
	Turns     int
	Ticks     int
	FinalHash uint32
	Shots     []ShotEntry
}

func (MatchFinishedMsg) coordinatorMessage() {}

// ShotEntry is one fired shot in a finished match.
type ShotEntry struct {
	Turn   int
	Player int
	Angle  int
	Power  int
}

// SessionDisconnectedMsg is sent when a session disconnects.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}

package multiplayer

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomcoolpxl/tank-wars/internal/sim"
)

// Lobby is a hosted match waiting for its second player.
type Lobby struct {
	Code      string
	Host      SessionHandle
	CreatedAt time.Time
}

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	LobbyTimeout  time.Duration // How long before an unjoined lobby expires
	CleanupPeriod time.Duration // How often to sweep expired lobbies
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		LobbyTimeout:  2 * time.Minute,
		CleanupPeriod: 30 * time.Second,
	}
}

// MatchResultSaver persists finished rounds. It keeps the coordinator free
// of any storage dependency.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData is one finished round as reported by the host.
type MatchResultData struct {
	MatchID      string
	Mode         string
	Seed         uint32
	HostSession  string
	GuestSession string
	Winner       int
	Turns        int
	Ticks        int
	FinalHash    uint32
	EndReason    string
	DurationSecs int
	Shots        []ShotEntry
}

// Coordinator pairs SSH sessions into matches. Each lobby becomes a match
// the moment someone joins it.
type Coordinator struct {
	config      CoordinatorConfig
	sessions    *SessionRegistry
	resultSaver MatchResultSaver // Optional, can be nil
	log         *log.Logger
	newSeed     func() uint32

	mu      sync.RWMutex
	lobbies map[string]*Lobby
	matches map[MatchID]*OnlineMatch

	sessionLobby map[SessionID]string
	sessionMatch map[SessionID]MatchID

	msgChan  chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewCoordinator creates a new coordinator.
func NewCoordinator(cfg CoordinatorConfig, sessions *SessionRegistry, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = DefaultCoordinatorConfig().CleanupPeriod
	}
	return &Coordinator{
		config:       cfg,
		sessions:     sessions,
		log:          logger,
		newSeed:      NewSeed,
		lobbies:      make(map[string]*Lobby),
		matches:      make(map[MatchID]*OnlineMatch),
		sessionLobby: make(map[SessionID]string),
		sessionMatch: make(map[SessionID]MatchID),
		msgChan:      make(chan CoordinatorMessage, 256),
		done:         make(chan struct{}),
	}
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

// SetSeedSource replaces the seed generator. Tests use it to pin seeds.
func (c *Coordinator) SetSeedSource(fn func() uint32) {
	c.newSeed = fn
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	go c.cleanupLoop()
}

// Stop shuts down the coordinator and every running match.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		for _, m := range c.matches {
			m.Stop()
		}
		c.mu.Unlock()
	})
}

// Send sends a message to the coordinator for async processing.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case CreateLobbyMsg:
		c.handleCreateLobby(m)
	case JoinLobbyMsg:
		c.handleJoinLobby(m)
	case CancelLobbyMsg:
		c.handleCancelLobby(m)
	case LeaveLobbyMsg:
		c.handleLeaveLobby(m)
	case LeaveMatchMsg:
		c.handleLeaveMatch(m)
	case MatchFinishedMsg:
		c.handleMatchFinished(m)
	case SessionDisconnectedMsg:
		c.handleSessionDisconnected(m)
	}
}

func (c *Coordinator) handleCreateLobby(msg CreateLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	if c.busy(msg.SessionID) {
		c.mu.Unlock()
		session.Send(LobbyErrorEvent{Message: "Already in a lobby or match"})
		return
	}

	code := c.generateUniqueCode()
	c.lobbies[code] = &Lobby{Code: code, Host: session, CreatedAt: time.Now()}
	c.sessionLobby[msg.SessionID] = code
	c.mu.Unlock()

	c.log.Info("lobby created", "code", code, "session", msg.SessionID)
	session.Send(LobbyCreatedEvent{Code: code})
}

func (c *Coordinator) handleJoinLobby(msg JoinLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy(msg.SessionID) {
		session.Send(LobbyErrorEvent{Message: "Already in a lobby or match"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(msg.Code))
	lobby, exists := c.lobbies[code]
	if !exists {
		session.Send(LobbyErrorEvent{Message: "Lobby not found"})
		return
	}
	if lobby.Host.ID() == msg.SessionID {
		session.Send(LobbyErrorEvent{Message: "Cannot join your own lobby"})
		return
	}

	lobby.Host.Send(LobbyJoinedEvent{Code: code, Role: RoleHost, OpponentID: msg.SessionID})
	session.Send(LobbyJoinedEvent{Code: code, Role: RoleGuest, OpponentID: lobby.Host.ID()})

	c.startMatch(lobby, session)
}

// startMatch must be called with the lock held.
func (c *Coordinator) startMatch(lobby *Lobby, guest SessionHandle) {
	matchID := MatchID(fmt.Sprintf("match-%s-%d", lobby.Code, time.Now().UnixNano()))
	match := NewOnlineMatch(matchID, lobby.Code, c.newSeed(), lobby.Host, guest)

	hostID := lobby.Host.ID()
	guestID := guest.ID()
	c.matches[matchID] = match
	delete(c.sessionLobby, hostID)
	c.sessionMatch[hostID] = matchID
	c.sessionMatch[guestID] = matchID
	delete(c.lobbies, lobby.Code)

	c.log.Info("match started", "match", matchID, "host", hostID, "guest", guestID, "seed", match.Seed())

	lobby.Host.Send(match.StartedEvent(RoleHost))
	guest.Send(match.StartedEvent(RoleGuest))

	go match.Run(func(result MatchResult) {
		c.handleMatchEnded(result)
	})
}

func (c *Coordinator) handleMatchEnded(result MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	match, exists := c.matches[result.MatchID]
	if !exists {
		return
	}

	for _, s := range []SessionHandle{match.Host(), match.Guest()} {
		delete(c.sessionMatch, s.ID())
		if s.ID() != result.Left {
			s.Send(MatchEndedEvent{MatchID: result.MatchID, Reason: result.Reason})
		}
	}
	delete(c.matches, result.MatchID)

	c.log.Info("match ended", "match", result.MatchID, "reason", result.Reason, "left", result.Left)
}

func (c *Coordinator) handleMatchFinished(msg MatchFinishedMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	// Only the host reports, so each round is stored once.
	if !exists || match.Host().ID() != msg.SessionID {
		return
	}

	c.log.Info("round finished", "match", msg.MatchID, "winner", msg.Winner, "turns", msg.Turns)
	if c.resultSaver == nil {
		return
	}

	reason := MatchEndReasonCompleted
	if msg.Winner == sim.WinnerAborted {
		reason = MatchEndReasonAborted
	}
	recordID := string(msg.MatchID)
	if msg.Round > 1 {
		recordID = fmt.Sprintf("%s-r%d", msg.MatchID, msg.Round)
	}
	data := MatchResultData{
		MatchID:      recordID,
		Mode:         MatchModeSSH.String(),
		Seed:         msg.Seed,
		HostSession:  string(match.Host().ID()),
		GuestSession: string(match.Guest().ID()),
		Winner:       msg.Winner,
		Turns:        msg.Turns,
		Ticks:        msg.Ticks,
		FinalHash:    msg.FinalHash,
		EndReason:    reason.String(),
		DurationSecs: int(time.Since(match.Started()).Seconds()),
		Shots:        msg.Shots,
	}
	if err := c.resultSaver.SaveMatchResult(data); err != nil {
		c.log.Error("save match result", "match", msg.MatchID, "err", err)
	}
}

func (c *Coordinator) handleCancelLobby(msg CancelLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, exists := c.lobbies[strings.ToUpper(msg.Code)]
	if !exists || lobby.Host.ID() != msg.SessionID {
		return
	}
	c.dropLobby(lobby)
}

func (c *Coordinator) handleLeaveLobby(msg LeaveLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, exists := c.lobbies[strings.ToUpper(msg.Code)]
	if !exists || lobby.Host.ID() != msg.SessionID {
		return
	}
	c.dropLobby(lobby)
}

func (c *Coordinator) handleLeaveMatch(msg LeaveMatchMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if !exists {
		return
	}
	match.PlayerDisconnected(msg.SessionID)
}

func (c *Coordinator) handleSessionDisconnected(msg SessionDisconnectedMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		if lobby, exists := c.lobbies[code]; exists {
			c.dropLobby(lobby)
		}
		delete(c.sessionLobby, msg.SessionID)
	}

	if matchID, inMatch := c.sessionMatch[msg.SessionID]; inMatch {
		if match, exists := c.matches[matchID]; exists {
			match.PlayerDisconnected(msg.SessionID)
		}
	}
}

// dropLobby must be called with the lock held.
func (c *Coordinator) dropLobby(lobby *Lobby) {
	delete(c.lobbies, lobby.Code)
	delete(c.sessionLobby, lobby.Host.ID())
	c.log.Info("lobby closed", "code", lobby.Code)
}

// busy must be called with the lock held.
func (c *Coordinator) busy(id SessionID) bool {
	_, inLobby := c.sessionLobby[id]
	_, inMatch := c.sessionMatch[id]
	return inLobby || inMatch
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpiredLobbies(time.Now())
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) cleanupExpiredLobbies(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, lobby := range c.lobbies {
		if now.Sub(lobby.CreatedAt) > c.config.LobbyTimeout {
			lobby.Host.Send(LobbyErrorEvent{Message: "Lobby expired"})
			c.dropLobby(lobby)
		}
	}
}

func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := c.lobbies[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a 6-character code from the base32 alphabet.
func generateJoinCode() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	return base32.StdEncoding.EncodeToString(b[:])[:6]
}

// GetLobby returns a lobby by code.
func (c *Coordinator) GetLobby(code string) (*Lobby, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lobbies[strings.ToUpper(code)]
	return l, ok
}

// GetMatch returns a match by ID.
func (c *Coordinator) GetMatch(id MatchID) (*OnlineMatch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matches[id]
	return m, ok
}

// LobbyCount returns the number of open lobbies.
func (c *Coordinator) LobbyCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lobbies)
}

// MatchCount returns the number of running matches.
func (c *Coordinator) MatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matches)
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/tomcoolpxl/tank-wars/internal/multiplayer"
	"github.com/tomcoolpxl/tank-wars/internal/storage"
)

// LobbyState is the step of the SSH session flow.
type LobbyState int

const (
	LobbyStateMenu      LobbyState = iota // Choose host, join or history
	LobbyStateHosting                     // Hosting, waiting for a guest
	LobbyStateEnterCode                   // Typing a join code
	LobbyStateJoining                     // Code sent, waiting for the coordinator
	LobbyStateInMatch                     // Playing
	LobbyStateHistory                     // Browsing stored matches
)

type menuItem struct {
	title string
	desc  string
}

var lobbyMenu = []menuItem{
	{"Host a match", "get a code to share with your opponent"},
	{"Join a match", "enter the code your opponent gave you"},
	{"Match history", "browse and replay finished matches"},
	{"Quit", ""},
}

// matchExitMsg is sent when the player leaves a match.
type matchExitMsg struct{}

// historyExitMsg is sent when the player leaves the history screen.
type historyExitMsg struct{}

// LobbyModel is the top-level model of an SSH session: a menu, the
// host/join flow through the coordinator and then the match itself.
type LobbyModel struct {
	state       LobbyState
	width       int
	height      int
	keys        ListKeyMap
	cursor      int
	sessionID   multiplayer.SessionID
	coordinator *multiplayer.Coordinator
	events      <-chan multiplayer.SessionEvent
	store       *storage.Store
	opts        MatchOptions
	log         *log.Logger

	lobbyCode string
	codeInput textinput.Model
	notice    string

	match   *MatchModel
	matchID multiplayer.MatchID
	history *HistoryModel

	quitting bool
}

// NewLobbyModel creates the session model for one SSH connection.
func NewLobbyModel(
	sessionID multiplayer.SessionID,
	coordinator *multiplayer.Coordinator,
	events <-chan multiplayer.SessionEvent,
	store *storage.Store,
	opts MatchOptions,
) *LobbyModel {
	ti := textinput.New()
	ti.Placeholder = "ABC123"
	ti.CharLimit = 6
	ti.Width = 8

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &LobbyModel{
		state:       LobbyStateMenu,
		width:       opts.Width,
		height:      opts.Height,
		keys:        DefaultListKeyMap(),
		sessionID:   sessionID,
		coordinator: coordinator,
		events:      events,
		store:       store,
		opts:        opts,
		log:         logger.With("session", sessionID),
		codeInput:   ti,
	}
}

// State returns the current step of the flow.
func (m *LobbyModel) State() LobbyState { return m.state }

// Init starts listening for coordinator events.
func (m *LobbyModel) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent returns a command that waits for the next coordinator
// event. Exactly one is outstanding at any time.
func (m *LobbyModel) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		evt, ok := <-events
		if !ok {
			return nil
		}
		return evt
	}
}

// Update handles messages.
func (m *LobbyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = wsm.Width, wsm.Height
		m.opts.Width, m.opts.Height = wsm.Width, wsm.Height
	}

	switch msg := msg.(type) {
	case multiplayer.SessionEvent:
		return m, tea.Batch(m.handleEvent(msg), m.waitForEvent())
	case matchExitMsg:
		m.coordinator.Send(multiplayer.LeaveMatchMsg{SessionID: m.sessionID, MatchID: m.matchID})
		m.match = nil
		m.state = LobbyStateMenu
		return m, nil
	case historyExitMsg:
		m.history = nil
		m.state = LobbyStateMenu
		return m, nil
	}

	switch m.state {
	case LobbyStateInMatch:
		_, cmd := m.match.Update(msg)
		return m, cmd
	case LobbyStateHistory:
		_, cmd := m.history.Update(msg)
		return m, cmd
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		return m, m.handleKey(k)
	}
	return m, nil
}

func (m *LobbyModel) handleEvent(evt multiplayer.SessionEvent) tea.Cmd {
	switch e := evt.(type) {
	case multiplayer.LobbyCreatedEvent:
		m.lobbyCode = e.Code
		m.state = LobbyStateHosting
	case multiplayer.LobbyErrorEvent:
		m.notice = e.Message
		if m.state == LobbyStateJoining {
			m.state = LobbyStateEnterCode
			return m.codeInput.Focus()
		}
	case multiplayer.LobbyJoinedEvent:
		m.log.Info("paired", "code", e.Code, "role", e.Role, "opponent", e.OpponentID)
	case multiplayer.LobbyPlayerLeftEvent:
		m.notice = "the other player left"
	case multiplayer.MatchStartedEvent:
		return m.startMatch(e)
	case multiplayer.MatchEndedEvent:
		m.log.Info("match ended", "match", e.MatchID, "reason", e.Reason)
		if m.state != LobbyStateInMatch {
			m.notice = e.Reason.String()
			m.state = LobbyStateMenu
		}
	}
	return nil
}

func (m *LobbyModel) startMatch(e multiplayer.MatchStartedEvent) tea.Cmd {
	opts := m.opts
	opts.Exit = func() tea.Msg { return matchExitMsg{} }
	opts.Logger = m.log.With("match", e.MatchID)
	if e.Role == multiplayer.RoleHost {
		opts.Names = [2]string{"you", "guest"}
		opts.OnFinish = m.reportRound(e.MatchID)
	} else {
		opts.Names = [2]string{"host", "you"}
	}

	m.matchID = e.MatchID
	m.match = NewNetworkMatch(e.Conn, e.Role, e.Seed, opts)
	m.state = LobbyStateInMatch
	m.notice = ""
	return m.match.Init()
}

// reportRound forwards a finished round to the coordinator for storage.
func (m *LobbyModel) reportRound(id multiplayer.MatchID) func(RoundResult) {
	return func(r RoundResult) {
		shots := make([]multiplayer.ShotEntry, len(r.Shots))
		for i, s := range r.Shots {
			shots[i] = multiplayer.ShotEntry{Turn: s.Turn, Player: s.Player(), Angle: s.Angle, Power: s.Power}
		}
		msg := multiplayer.MatchFinishedMsg{
			SessionID: m.sessionID,
			MatchID:   id,
			Round:     r.Round,
			Seed:      r.Seed,
			Winner:    r.Winner,
			Turns:     r.Turns,
			Ticks:     r.Ticks,
			FinalHash: r.FinalHash,
			Shots:     shots,
		}
		go m.coordinator.Send(msg)
	}
}

func (m *LobbyModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.state {
	case LobbyStateMenu:
		return m.handleMenuKey(msg)
	case LobbyStateHosting:
		if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Quit) {
			m.coordinator.Send(multiplayer.CancelLobbyMsg{SessionID: m.sessionID, Code: m.lobbyCode})
			m.lobbyCode = ""
			m.state = LobbyStateMenu
		}
	case LobbyStateEnterCode:
		return m.handleCodeKey(msg)
	case LobbyStateJoining:
		if key.Matches(msg, m.keys.Back) {
			m.coordinator.Send(multiplayer.LeaveLobbyMsg{SessionID: m.sessionID, Code: m.codeInput.Value()})
			m.state = LobbyStateEnterCode
			return m.codeInput.Focus()
		}
	}
	return nil
}

func (m *LobbyModel) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Up):
		m.cursor = (m.cursor + len(lobbyMenu) - 1) % len(lobbyMenu)
	case key.Matches(msg, m.keys.Down):
		m.cursor = (m.cursor + 1) % len(lobbyMenu)
	case key.Matches(msg, m.keys.Select):
		m.notice = ""
		switch m.cursor {
		case 0:
			m.coordinator.Send(multiplayer.CreateLobbyMsg{SessionID: m.sessionID})
		case 1:
			m.codeInput.Reset()
			m.state = LobbyStateEnterCode
			return m.codeInput.Focus()
		case 2:
			m.history = NewHistoryModel(m.store, m.width, m.height, m.opts.FPS, func() tea.Msg { return historyExitMsg{} })
			m.state = LobbyStateHistory
			return m.history.Init()
		default:
			return m.quit()
		}
	}
	return nil
}

func (m *LobbyModel) handleCodeKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.codeInput.Blur()
		m.state = LobbyStateMenu
		return nil
	case key.Matches(msg, m.keys.Select):
		code := strings.ToUpper(strings.TrimSpace(m.codeInput.Value()))
		if code == "" {
			return nil
		}
		m.codeInput.SetValue(code)
		m.codeInput.Blur()
		m.notice = ""
		m.state = LobbyStateJoining
		m.coordinator.Send(multiplayer.JoinLobbyMsg{SessionID: m.sessionID, Code: code})
		return nil
	}
	var cmd tea.Cmd
	m.codeInput, cmd = m.codeInput.Update(msg)
	return cmd
}

func (m *LobbyModel) quit() tea.Cmd {
	if m.state == LobbyStateHosting {
		m.coordinator.Send(multiplayer.CancelLobbyMsg{SessionID: m.sessionID, Code: m.lobbyCode})
	}
	m.quitting = true
	return tea.Quit
}

// View renders the current step.
func (m *LobbyModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.state {
	case LobbyStateInMatch:
		return m.match.View()
	case LobbyStateHistory:
		return m.history.View()
	case LobbyStateHosting:
		return page(m.width,
			theme.Title.Render("HOSTING"),
			theme.Description.Render("Share this code with your opponent:"),
			theme.Code.Render(m.lobbyCode),
			theme.Description.Render("Waiting for player to join..."),
			theme.Footer.Render("esc: cancel"),
		)
	case LobbyStateEnterCode:
		return page(m.width,
			theme.Title.Render("JOIN"),
			theme.Description.Render("Enter the match code:"),
			m.codeInput.View(),
			m.noticeView(),
			theme.Footer.Render("enter: connect  |  esc: back"),
		)
	case LobbyStateJoining:
		return page(m.width,
			theme.Title.Render("CONNECTING"),
			theme.Description.Render(fmt.Sprintf("Joining %s...", m.codeInput.Value())),
			theme.Footer.Render("esc: cancel"),
		)
	}
	return m.menuView()
}

func (m *LobbyModel) menuView() string {
	var items strings.Builder
	for i, it := range lobbyMenu {
		if i > 0 {
			items.WriteString("\n")
		}
		if i == m.cursor {
			items.WriteString(theme.ItemActive.Render("> " + it.title))
		} else {
			items.WriteString(theme.Item.Render("  " + it.title))
		}
	}
	desc := lobbyMenu[m.cursor].desc
	return page(m.width,
		theme.Title.Render("T A N K   W A R S"),
		items.String(),
		theme.Description.Render(desc),
		m.noticeView(),
		theme.Footer.Render("↑/↓: move  |  enter: select  |  q: quit"),
	)
}

func (m *LobbyModel) noticeView() string {
	if m.notice == "" {
		return ""
	}
	return theme.Error.Render(m.notice)
}

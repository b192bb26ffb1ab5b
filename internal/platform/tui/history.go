package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tomcoolpxl/tank-wars/internal/sim"
	"github.com/tomcoolpxl/tank-wars/internal/storage"
)

// History layout constants
const (
	minWidthForStats = 100 // Minimum width to show the stats panel
	statsWidth       = 24
	maxHistoryRows   = 200
)

// HistoryModel lists stored matches and opens a replay of the selected one.
type HistoryModel struct {
	store     *storage.Store
	matches   []storage.MatchRecord
	stats     storage.Stats
	loadErr   error
	table     table.Model
	help      help.Model
	keys      ListKeyMap
	width     int
	height    int
	showStats bool
	fps       int
	exit      tea.Cmd

	replay   *ReplayModel
	quitting bool
}

// NewHistoryModel creates a history screen. exit is returned when the
// player backs out; nil means quit the program.
func NewHistoryModel(store *storage.Store, width, height, fps int, exit tea.Cmd) *HistoryModel {
	if exit == nil {
		exit = tea.Quit
	}
	m := &HistoryModel{
		store:     store,
		help:      help.New(),
		keys:      DefaultListKeyMap(),
		width:     width,
		height:    height,
		showStats: width >= minWidthForStats,
		fps:       fps,
		exit:      exit,
	}
	m.table = m.createTable()
	m.load()
	return m
}

func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Mode", Width: 8},
		{Title: "Result", Width: 10},
		{Title: "Turns", Width: 5},
		{Title: "Seed", Width: 10},
		{Title: "Match", Width: 20},
	}

	tableWidth := m.width - 6
	if m.showStats {
		tableWidth -= statsWidth + 4
	}
	used := 0
	for _, c := range columns[:5] {
		used += c.Width + 2
	}
	columns[5].Width = max(8, min(32, tableWidth-used))

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-8)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m *HistoryModel) load() {
	if m.store == nil {
		m.matches = nil
		m.updateRows()
		return
	}
	m.matches, m.loadErr = m.store.RecentMatches(maxHistoryRows)
	if m.loadErr == nil {
		m.stats, m.loadErr = m.store.Stats()
	}
	m.updateRows()
}

func (m *HistoryModel) updateRows() {
	rows := make([]table.Row, len(m.matches))
	for i, r := range m.matches {
		rows[i] = table.Row{
			r.CreatedAt.Local().Format("Jan 02 15:04"),
			r.Mode,
			resultLabel(r.Winner),
			fmt.Sprintf("%d", r.Turns),
			fmt.Sprintf("%d", r.Seed),
			r.MatchID,
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func resultLabel(winner int) string {
	switch winner {
	case 0:
		return "P1 won"
	case 1:
		return "P2 won"
	case sim.WinnerDraw:
		return "draw"
	case sim.WinnerAborted:
		return "aborted"
	default:
		return "?"
	}
}

// Init implements tea.Model.
func (m *HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles navigation and opens replays.
func (m *HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.replay != nil {
		if _, ok := msg.(replayDoneMsg); ok {
			m.replay = nil
			return m, nil
		}
		if wsm, ok := msg.(tea.WindowSizeMsg); ok {
			m.resize(wsm)
		}
		_, cmd := m.replay.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			return m, m.exit
		case key.Matches(msg, m.keys.Select):
			return m, m.openReplay()
		}
	case tea.WindowSizeMsg:
		m.resize(msg)
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *HistoryModel) resize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.showStats = m.width >= minWidthForStats
	m.table = m.createTable()
	m.updateRows()
	m.help.Width = msg.Width
}

func (m *HistoryModel) openReplay() tea.Cmd {
	i := m.table.Cursor()
	if m.store == nil || i < 0 || i >= len(m.matches) {
		return nil
	}
	rec := m.matches[i]
	shots, err := m.store.Shots(rec.MatchID)
	if err != nil {
		m.loadErr = err
		return nil
	}
	m.replay = NewReplayModel(rec, shots, m.width, m.height, m.fps, func() tea.Msg { return replayDoneMsg{} })
	return m.replay.Init()
}

// View renders the table, or the replay when one is open.
func (m *HistoryModel) View() string {
	if m.quitting {
		return ""
	}
	if m.replay != nil {
		return m.replay.View()
	}

	var b strings.Builder
	b.WriteString(theme.Title.MarginBottom(1).Render(centerText("MATCH HISTORY", m.width)))
	b.WriteString("\n\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	body := box.Render(m.tableContent())
	if m.showStats {
		body = lipgloss.JoinHorizontal(lipgloss.Top, box.Width(statsWidth).Render(m.statsContent()), "  ", body)
	}
	b.WriteString(centerText(body, m.width))

	if m.loadErr != nil {
		b.WriteString("\n")
		b.WriteString(theme.Error.Render(centerText(m.loadErr.Error(), m.width)))
	}
	b.WriteString("\n")
	b.WriteString(theme.Footer.Render(m.help.View(m.keys)))
	return b.String()
}

func (m *HistoryModel) tableContent() string {
	if len(m.matches) == 0 {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4).
			Render("No matches recorded yet.\nFinish a match to see it here.")
	}
	return m.table.View()
}

func (m *HistoryModel) statsContent() string {
	st := m.stats
	lines := []string{
		"Totals",
		strings.Repeat("-", statsWidth-4),
		fmt.Sprintf("matches   %d", st.Matches),
		fmt.Sprintf("P1 wins   %d", st.HostWins),
		fmt.Sprintf("P2 wins   %d", st.GuestWins),
		fmt.Sprintf("draws     %d", st.Draws),
		fmt.Sprintf("aborted   %d", st.Aborted),
		fmt.Sprintf("avg turns %.1f", st.AvgTurns),
	}
	return strings.Join(lines, "\n")
}

type replayDoneMsg struct{}

// RunHistory shows the history screen until the player quits.
func RunHistory(store *storage.Store, width, height, fps int) error {
	_, err := tea.NewProgram(NewHistoryModel(store, width, height, fps, nil), tea.WithAltScreen()).Run()
	return err
}

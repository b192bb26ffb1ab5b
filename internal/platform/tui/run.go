package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tomcoolpxl/tank-wars/internal/multiplayer"
	"github.com/tomcoolpxl/tank-wars/internal/storage"
)

// RunHotseat plays hot-seat rounds on the local terminal until the
// players quit.
func RunHotseat(seed uint32, opts MatchOptions) error {
	return runMatch(NewHotseatMatch(seed, opts))
}

// RunNetwork plays one side of a connected, handshaken link.
func RunNetwork(conn multiplayer.Conn, role multiplayer.Role, seed uint32, opts MatchOptions) error {
	defer conn.Close()
	return runMatch(NewNetworkMatch(conn, role, seed, opts))
}

func runMatch(m *MatchModel) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RunReplay plays back a stored match until the viewer quits.
func RunReplay(rec storage.MatchRecord, shots []storage.Shot, width, height, fps int) error {
	_, err := tea.NewProgram(NewReplayModel(rec, shots, width, height, fps, nil), tea.WithAltScreen()).Run()
	return err
}

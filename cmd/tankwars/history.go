package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tomcoolpxl/tank-wars/internal/platform/tui"
	"github.com/tomcoolpxl/tank-wars/internal/sim"
	"github.com/tomcoolpxl/tank-wars/internal/storage"
)

var flagHistoryPlain bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse finished matches",
	Long: `Show stored matches in a table. Select one with Enter to watch a
replay. With --plain, or when stdout is not a terminal, the list is
printed instead.

Examples:
  tankwars history
  tankwars history --plain`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var replayCmd = &cobra.Command{
	Use:   "replay <match-id>",
	Short: "Replay a stored match",
	Long: `Re-simulate a stored match from its seed and shot log.

Controls:
  Space    - Pause
  +/-      - Change speed
  Q/Esc    - Quit

Examples:
  tankwars replay hotseat-20250101-120000.000000000-r1`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	historyCmd.Flags().BoolVar(&flagHistoryPlain, "plain", false, "Print the list instead of opening the browser")
}

func runHistory(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer store.Close()

	if flagHistoryPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return printHistory(store)
	}
	w, h := terminalSize()
	return tui.RunHistory(store, w, h, cfg.Runtime.FPS)
}

func printHistory(store *storage.Store) error {
	matches, err := store.RecentMatches(20)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Play 'tankwars play' to record the first one!")
		return nil
	}

	fmt.Printf("  %-16s  %-8s  %-8s  %5s  %-10s  %s\n", "Date", "Mode", "Winner", "Turns", "Seed", "Match")
	fmt.Printf("  %-16s  %-8s  %-8s  %5s  %-10s  %s\n", "----", "----", "------", "-----", "----", "-----")
	for _, m := range matches {
		fmt.Printf("  %-16s  %-8s  %-8s  %5d  %-10d  %s\n",
			m.CreatedAt.Local().Format("2006-01-02 15:04"), m.Mode, winnerLabel(m.Winner), m.Turns, m.Seed, m.MatchID)
	}

	st, err := store.Stats()
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Total: %d matches, P1 %d, P2 %d, draws %d, aborted %d, %.1f turns on average\n",
		st.Matches, st.HostWins, st.GuestWins, st.Draws, st.Aborted, st.AvgTurns)
	return nil
}

func winnerLabel(w int) string {
	switch w {
	case 0:
		return "P1"
	case 1:
		return "P2"
	case sim.WinnerDraw:
		return "draw"
	case sim.WinnerAborted:
		return "aborted"
	default:
		return "-"
	}
}

func runReplay(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.MatchByID(args[0])
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no match %q in %s", args[0], cfg.DBPath())
	}
	shots, err := store.Shots(rec.MatchID)
	if err != nil {
		return err
	}

	w, h := terminalSize()
	return tui.RunReplay(*rec, shots, w, h, cfg.Runtime.FPS)
}

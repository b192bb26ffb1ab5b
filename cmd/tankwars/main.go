// tankwars is a two-player artillery duel for the terminal. Both players
// run the same deterministic simulation and exchange only their shots.
//
// Usage:
//
//	tankwars play               - Hot-seat match on one keyboard
//	tankwars host               - Host a match over a websocket
//	tankwars join <url>         - Join a hosted match
//	tankwars serve              - Start the SSH lobby server
//	tankwars history            - Browse finished matches
//	tankwars replay <match-id>  - Replay a stored match
//	tankwars verify             - Check that two runs stay in lockstep
//
// Global flags:
//
//	--config <path>     - Config file (default search: ~/.tankwars, ./configs)
//	--seed <value>      - Match seed (0 = random)
//	--fps <rate>        - Render frames per second
//	--db <path>         - Match history database
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     uint32
	flagFPS      int
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tankwars",
	Short: "Tank Wars - a lockstep artillery duel in your terminal",
	Long: `Tank Wars is a turn-based artillery game for two players. Each
player aims a tank on destructible terrain and fires in turn; wind changes
every turn. Both sides simulate the match themselves and only exchange
shots, so a networked match stays in sync without a server.

Examples:
  tankwars play
  tankwars host --listen :7777
  tankwars join ws://192.168.1.20:7777
  tankwars serve
  tankwars history`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().Uint32Var(&flagSeed, "seed", 0, "Match seed (0 = random)")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Render frames per second (0 = from config)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to match history database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(verifyCmd)
}

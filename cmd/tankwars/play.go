package main

import (
	"github.com/spf13/cobra"

	"github.com/tomcoolpxl/tank-wars/internal/multiplayer"
	"github.com/tomcoolpxl/tank-wars/internal/platform/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a hot-seat match on one keyboard",
	Long: `Start a match for two players sharing this terminal. Players take
turns at the same keys; the HUD shows whose shot it is.

Controls:
  Left/A, Right/D  - Raise / lower the barrel
  Up/W, Down/S     - More / less power
  Space/Enter      - Fire
  R                - Play again (after game over)
  ?                - Help
  Q/Esc/Ctrl+C     - Quit

Examples:
  tankwars play
  tankwars play --seed 12345`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog := fileLogger(cfg, "play")
	defer closeLog()

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	seed := seedOrRandom()
	user := localUser()
	opts := matchOptions(cfg, logger)
	opts.OnFinish = roundSaver(store, multiplayer.NewMatchID("hotseat"), multiplayer.MatchModeHotseat, user, user, logger)

	logger.Info("hot-seat match", "seed", seed)
	return tui.RunHotseat(seed, opts)
}

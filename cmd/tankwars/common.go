package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/tomcoolpxl/tank-wars/internal/config"
	"github.com/tomcoolpxl/tank-wars/internal/core"
	"github.com/tomcoolpxl/tank-wars/internal/multiplayer"
	"github.com/tomcoolpxl/tank-wars/internal/platform/tui"
	"github.com/tomcoolpxl/tank-wars/internal/sim"
	"github.com/tomcoolpxl/tank-wars/internal/storage"
)

// loadConfig reads the config file and applies the global flags on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagFPS > 0 {
		cfg.Runtime.FPS = flagFPS
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, cfg.Validate()
}

// fileLogger opens the log file for an interactive command. Failing to
// open it is not fatal; the command runs without logs.
func fileLogger(cfg config.Config, prefix string) (*log.Logger, func()) {
	logger, closer, err := tui.NewFileLogger(cfg.LogPath(), cfg.LogLevel(), prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return log.New(io.Discard), func() {}
	}
	return logger, func() { _ = closer.Close() }
}

// openStore opens the history database. Failure is reported and the game
// continues without history.
func openStore(cfg config.Config) *storage.Store {
	store, err := storage.Open(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open match database: %v\n", err)
		return nil
	}
	return store
}

// matchOptions builds match options sized to the current terminal.
func matchOptions(cfg config.Config, logger *log.Logger) tui.MatchOptions {
	opts := tui.MatchOptionsFromConfig(cfg)
	opts.Width, opts.Height = terminalSize()
	opts.Logger = logger
	return opts
}

func terminalSize() (int, int) {
	def := core.DefaultConfig()
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return def.ScreenW, def.ScreenH
	}
	return w, h
}

func seedOrRandom() uint32 {
	if flagSeed != 0 {
		return flagSeed
	}
	return multiplayer.NewSeed()
}

// roundSaver stores each finished round under base-rN.
func roundSaver(store *storage.Store, base multiplayer.MatchID, mode multiplayer.MatchMode, host, guest string, logger *log.Logger) func(tui.RoundResult) {
	return func(r tui.RoundResult) {
		if store == nil {
			return
		}
		shots := make([]storage.Shot, len(r.Shots))
		for i, s := range r.Shots {
			shots[i] = storage.Shot{Turn: s.Turn, Player: s.Player(), Angle: s.Angle, Power: s.Power}
		}
		rec := storage.MatchRecord{
			MatchID:      fmt.Sprintf("%s-r%d", base, r.Round),
			Mode:         mode.String(),
			Seed:         r.Seed,
			HostSession:  host,
			GuestSession: guest,
			Winner:       r.Winner,
			Turns:        r.Turns,
			Ticks:        r.Ticks,
			FinalHash:    r.FinalHash,
			EndReason:    endReason(r),
			Duration:     int(r.Duration / time.Second),
		}
		if _, err := store.SaveMatch(rec, shots); err != nil {
			logger.Error("failed to save match", "match", rec.MatchID, "err", err)
		}
	}
}

func endReason(r tui.RoundResult) string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case r.Winner == sim.WinnerDraw:
		return "draw"
	default:
		return "completed"
	}
}

func localUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

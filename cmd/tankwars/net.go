package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomcoolpxl/tank-wars/internal/multiplayer"
	"github.com/tomcoolpxl/tank-wars/internal/platform/tui"
)

var flagListen string

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Host a match for one opponent over the network",
	Long: `Listen for one opponent on a websocket, pick the match seed and
start playing as the left tank. The host answers any checksum mismatch
with its own state.

Examples:
  tankwars host
  tankwars host --listen :9000 --seed 42`,
	Args: cobra.NoArgs,
	RunE: runHost,
}

var joinCmd = &cobra.Command{
	Use:   "join <url>",
	Short: "Join a hosted match",
	Long: `Connect to a host started with 'tankwars host' and play as the
right tank. The scheme and path are optional.

Examples:
  tankwars join ws://192.168.1.20:7777
  tankwars join 192.168.1.20:7777`,
	Args: cobra.ExactArgs(1),
	RunE: runJoin,
}

func init() {
	hostCmd.Flags().StringVar(&flagListen, "listen", "", "Address to listen on (default from config net.listen_addr)")
}

func runHost(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagListen != "" {
		cfg.Net.ListenAddr = flagListen
	}
	logger, closeLog := fileLogger(cfg, "host")
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Waiting for an opponent on %s (path %s)\n", cfg.Net.ListenAddr, multiplayer.WSPath)
	fmt.Println("Press Ctrl+C to give up")
	conn, err := multiplayer.Listen(ctx, cfg.Net.ListenAddr, logger)
	if err != nil {
		return err
	}

	seed, err := multiplayer.Handshake(ctx, conn, multiplayer.RoleHost, seedOrRandom())
	if err != nil {
		conn.Close()
		return err
	}
	stop()

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}
	opts := matchOptions(cfg, logger)
	opts.Names = [2]string{"you", "guest"}
	opts.OnFinish = roundSaver(store, multiplayer.NewMatchID("net"), multiplayer.MatchModeNetwork, localUser(), "remote", logger)

	logger.Info("network match", "role", multiplayer.RoleHost, "seed", seed)
	return tui.RunNetwork(conn, multiplayer.RoleHost, seed, opts)
}

func runJoin(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog := fileLogger(cfg, "join")
	defer closeLog()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Net.DialTimeout)
	defer cancel()

	conn, err := multiplayer.Dial(ctx, args[0], logger)
	if err != nil {
		return err
	}
	seed, err := multiplayer.Handshake(ctx, conn, multiplayer.RoleGuest, 0)
	if err != nil {
		conn.Close()
		return err
	}
	cancel()

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}
	opts := matchOptions(cfg, logger)
	opts.Names = [2]string{"host", "you"}
	opts.OnFinish = roundSaver(store, multiplayer.NewMatchID("net"), multiplayer.MatchModeNetwork, "remote", localUser(), logger)

	logger.Info("network match", "role", multiplayer.RoleGuest, "seed", seed)
	return tui.RunNetwork(conn, multiplayer.RoleGuest, seed, opts)
}

package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tomcoolpxl/tank-wars/internal/platform/tui"
)

var (
	flagSSHHost string
	flagSSHPort int
	flagHostKey string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Tank Wars SSH server",
	Long: `Start an SSH server where players meet. One player hosts and gets a
six-character code; the other joins with it and the match starts. Finished
matches are stored in the server's history database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, uses server.host_key_path from the config
    (relative paths live under ~/.tankwars), generated on first start

Examples:
  tankwars serve
  tankwars serve --port 2222
  tankwars serve --host-key ./my_host_key

Players connect with:
  ssh -t localhost -p 2323`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHHost, "host", "", "Address to bind (default from config)")
	serveCmd.Flags().IntVar(&flagSSHPort, "port", 0, "SSH port (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagSSHHost != "" {
		cfg.Server.Host = flagSSHHost
	}
	if flagSSHPort != 0 {
		cfg.Server.Port = flagSSHPort
	}
	if flagHostKey != "" {
		cfg.Server.HostKeyPath = flagHostKey
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The server has no alt-screen of its own, so it logs to stderr.
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           cfg.LogLevel(),
		Prefix:          "tankwars-ssh",
	})

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	server, err := tui.NewSSHServer(cfg, store, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Starting Tank Wars SSH server on %s\n", server.Addr())
	fmt.Printf("Connect with: ssh -t localhost -p %d\n", cfg.Server.Port)
	fmt.Println("Press Ctrl+C to stop")
	return server.ListenAndServe()
}

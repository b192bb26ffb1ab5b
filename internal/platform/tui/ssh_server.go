package tui

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/tomcoolpxl/tank-wars/internal/config"
	"github.com/tomcoolpxl/tank-wars/internal/multiplayer"
	"github.com/tomcoolpxl/tank-wars/internal/storage"
)

// sessionEventBuffer is the per-session coordinator event queue.
const sessionEventBuffer = 32

// SSHServer hosts the lobby over SSH. Every session gets its own Bubble
// Tea program; the coordinator pairs them into matches.
type SSHServer struct {
	cfg         config.Config
	server      *ssh.Server
	store       *storage.Store
	sessions    *multiplayer.SessionRegistry
	coordinator *multiplayer.Coordinator
	logger      *log.Logger
}

// NewSSHServer creates a server from cfg. store may be nil, in which case
// results are not saved and history is empty.
func NewSSHServer(cfg config.Config, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "tankwars-ssh",
		})
	}

	sessions := multiplayer.NewSessionRegistry()
	coord := multiplayer.NewCoordinator(multiplayer.CoordinatorConfig{
		LobbyTimeout:  cfg.Server.LobbyTimeout,
		CleanupPeriod: cfg.Server.CleanupPeriod,
	}, sessions, logger.WithPrefix("coordinator"))
	if store != nil {
		coord.SetResultSaver(store)
	}

	srv := &SSHServer{
		cfg:         cfg,
		store:       store,
		sessions:    sessions,
		coordinator: coord,
		logger:      logger,
	}

	hostKeyPath := cfg.Server.HostKeyPath
	if !filepath.IsAbs(hostKeyPath) {
		if p := config.UserPath(hostKeyPath); p != "" {
			hostKeyPath = p
		}
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(srv.Addr()),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.Server.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.sessionMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}
	srv.server = server
	return srv, nil
}

// sessionKey carries the session handle from the middleware to the
// Bubble Tea handler.
type sessionKey struct{}

// sessionMiddleware registers each connection with the coordinator and
// reports the disconnect when the session ends.
func (s *SSHServer) sessionMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		id := multiplayer.SessionID(fmt.Sprintf("%s@%s-%d", sess.User(), sess.RemoteAddr(), time.Now().UnixNano()))
		handle := multiplayer.NewChannelSession(id, sessionEventBuffer)
		s.sessions.Register(handle)
		sess.Context().SetValue(sessionKey{}, handle)

		s.logger.Info("session started", "user", sess.User(), "remote", sess.RemoteAddr().String(), "session", id)
		next(sess)

		s.coordinator.Send(multiplayer.SessionDisconnectedMsg{SessionID: id})
		s.sessions.Unregister(id)
		handle.Close()
		s.logger.Info("session ended", "user", sess.User(), "session", id)
	}
}

// teaHandler creates the lobby model for one session.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		wish.Fatalln(sess, "tank wars needs an interactive terminal: ssh -t")
		return nil, nil
	}
	handle, ok := sess.Context().Value(sessionKey{}).(*multiplayer.ChannelSession)
	if !ok {
		s.logger.Error("session was not registered", "user", sess.User())
		return nil, nil
	}

	opts := MatchOptionsFromConfig(s.cfg)
	opts.Width = pty.Window.Width
	opts.Height = pty.Window.Height
	opts.ScreenshotDir = ""
	opts.Logger = s.logger.With("user", sess.User())

	model := NewLobbyModel(handle.ID(), s.coordinator, handle.Events(), s.store, opts)
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// ListenAndServe starts the server and blocks until SIGINT or SIGTERM.
func (s *SSHServer) ListenAndServe() error {
	s.coordinator.Start()
	s.logger.Info("starting SSH server", "address", s.Addr())

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-done:
		s.logger.Info("shutting down...")
		return s.Shutdown()
	case err := <-errc:
		s.coordinator.Stop()
		return fmt.Errorf("ssh server: %w", err)
	}
}

// Shutdown stops the coordinator and then the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.coordinator.Stop()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port))
}

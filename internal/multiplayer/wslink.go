package multiplayer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomcoolpxl/tank-wars/internal/lockstep"
)

// WSPath is the HTTP path a host serves the match on.
const WSPath = "/tankwars"

const (
	wsWriteTimeout = 5 * time.Second
	wsInboxSize    = 256
)

// WSConn is a Conn over a websocket. Each message travels as one binary
// frame holding an Encode'd envelope.
type WSConn struct {
	conn  *websocket.Conn
	log   *log.Logger
	inbox chan lockstep.Message
	done  chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
}

func newWSConn(conn *websocket.Conn, logger *log.Logger) *WSConn {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &WSConn{
		conn:  conn,
		log:   logger,
		inbox: make(chan lockstep.Message, wsInboxSize),
		done:  make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Send writes one message.
func (c *WSConn) Send(msg lockstep.Message) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	data, err := Encode(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		c.closeWith(err)
		return fmt.Errorf("multiplayer: write: %w", err)
	}
	return nil
}

// Inbox returns decoded messages from the other peer.
func (c *WSConn) Inbox() <-chan lockstep.Message { return c.inbox }

// Done closes when the socket is gone.
func (c *WSConn) Done() <-chan struct{} { return c.done }

// Err returns the error that closed the connection, if any.
func (c *WSConn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// Close sends a close frame and tears the socket down.
func (c *WSConn) Close() error {
	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)) //nolint:errcheck // best effort
	c.writeMu.Unlock()
	c.closeWith(nil)
	return nil
}

func (c *WSConn) closeWith(err error) {
	c.closeOnce.Do(func() {
		c.errMu.Lock()
		c.err = err
		c.errMu.Unlock()
		close(c.done)
		c.conn.Close()
	})
}

func (c *WSConn) readLoop() {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Info("peer closed the connection")
				err = nil
			} else {
				c.log.Warn("read failed", "err", err)
			}
			c.closeWith(err)
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}

		msg, err := Decode(data)
		if err != nil {
			c.log.Warn("dropping connection after malformed message", "err", err)
			c.closeWith(err)
			return
		}

		select {
		case c.inbox <- msg:
		case <-c.done:
			return
		}
	}
}

// Listen serves WSPath on addr and returns the first peer to connect.
// Later connection attempts are refused. The listener is closed before
// Listen returns.
func Listen(ctx context.Context, addr string, logger *log.Logger) (*WSConn, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("multiplayer: listen %s: %w", addr, err)
	}
	return Accept(ctx, ln, logger)
}

// Accept is Listen on an existing listener.
func Accept(ctx context.Context, ln net.Listener, logger *log.Logger) (*WSConn, error) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	accepted := make(chan *websocket.Conn, 1)
	var (
		mu    sync.Mutex
		taken bool
	)
	mux := http.NewServeMux()
	mux.HandleFunc(WSPath, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if taken {
			http.Error(w, "match already has two players", http.StatusConflict)
			return
		}
		// A failed upgrade leaves the slot open for the next caller.
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if logger != nil {
				logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
			}
			return
		}
		taken = true
		accepted <- conn
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	// Hijacked websocket connections survive server shutdown.
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx) //nolint:errcheck // listener teardown only
	}()

	select {
	case conn := <-accepted:
		if logger != nil {
			logger.Info("peer connected", "remote", conn.RemoteAddr().String())
		}
		return newWSConn(conn, logger), nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = ErrClosed
		}
		return nil, fmt.Errorf("multiplayer: serve: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Dial connects to a host. raw is ws://host:port; the scheme and WSPath
// are added when missing.
func Dial(ctx context.Context, raw string, logger *log.Logger) (*WSConn, error) {
	target, err := hostURL(raw)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("multiplayer: dial %s: %w", target, err)
	}
	return newWSConn(conn, logger), nil
}

// hostURL fills in the parts of a join address the player may leave out.
// A path the player did give is kept, minus any trailing slash.
func hostURL(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "ws://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("multiplayer: bad host address %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("multiplayer: bad host address %q: no host", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	if u.Path == "" {
		u.Path = WSPath
	}
	return u.String(), nil
}

// Handshake exchanges the match seed: the host sends it, the guest waits
// for it. It returns the seed both sides will play.
func Handshake(ctx context.Context, c Conn, role Role, seed uint32) (uint32, error) {
	if role == RoleHost {
		if err := c.Send(lockstep.MatchInit{Seed: seed}); err != nil {
			return 0, err
		}
		return seed, nil
	}
	for {
		select {
		case msg := <-c.Inbox():
			if init, ok := msg.(lockstep.MatchInit); ok {
				return init.Seed, nil
			}
		case <-c.Done():
			return 0, ErrClosed
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

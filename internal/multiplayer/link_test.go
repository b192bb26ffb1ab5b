package multiplayer

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/tomcoolpxl/tank-wars/internal/lockstep"
)

func recv(t *testing.T, c Conn) lockstep.Message {
	t.Helper()
	select {
	case m := <-c.Inbox():
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a message")
		return nil
	}
}

func TestPipeDeliversInOrder(t *testing.T) {
	a, b := NewPipe(4)

	for turn := 0; turn < 3; turn++ {
		if err := a.Send(lockstep.Hash{Turn: turn, Hash: uint32(turn) + 100}); err != nil {
			t.Fatalf("Send() failed: %v", err)
		}
	}
	if err := b.Send(lockstep.Abort{Reason: "bye"}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}

	for turn := 0; turn < 3; turn++ {
		got, ok := recv(t, b).(lockstep.Hash)
		if !ok || got.Turn != turn {
			t.Errorf("message %d: got %#v", turn, got)
		}
	}
	if got, ok := recv(t, a).(lockstep.Abort); !ok || got.Reason != "bye" {
		t.Errorf("reverse direction: got %#v", got)
	}
}

func TestPipeCloseAffectsBothEnds(t *testing.T) {
	a, b := NewPipe(1)
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatal("second close should be a no-op")
	}

	for name, end := range map[string]*PipeEnd{"a": a, "b": b} {
		if err := end.Send(lockstep.PlayAgainReady{}); !errors.Is(err, ErrClosed) {
			t.Errorf("%s: Send() after close = %v, want ErrClosed", name, err)
		}
		select {
		case <-end.Done():
		default:
			t.Errorf("%s: Done() not closed", name)
		}
	}
}

func TestPipeSendUnblocksOnClose(t *testing.T) {
	a, _ := NewPipe(1)
	if err := a.Send(lockstep.MatchInit{Seed: 1}); err != nil {
		t.Fatal(err)
	}

	errc := make(chan error, 1)
	go func() { errc <- a.Send(lockstep.MatchInit{Seed: 2}) }()

	time.Sleep(10 * time.Millisecond)
	_ = a.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("blocked Send() = %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Send() stayed blocked after close")
	}
}

func TestWebsocketLink(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type accepted struct {
		conn *WSConn
		err  error
	}
	acc := make(chan accepted, 1)
	go func() {
		c, err := Accept(ctx, ln, nil)
		acc <- accepted{c, err}
	}()

	guest, err := Dial(ctx, "ws://"+ln.Addr().String(), nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	defer guest.Close()

	a := <-acc
	if a.err != nil {
		t.Fatalf("Accept() failed: %v", a.err)
	}
	host := a.conn
	defer host.Close()

	seed, err := Handshake(ctx, host, RoleHost, 4242)
	if err != nil || seed != 4242 {
		t.Fatalf("host handshake = %d, %v", seed, err)
	}
	seed, err = Handshake(ctx, guest, RoleGuest, 0)
	if err != nil || seed != 4242 {
		t.Fatalf("guest handshake = %d, %v", seed, err)
	}

	if err := guest.Send(lockstep.Shot{Turn: 1, Angle: 135, Power: 60}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	shot, ok := recv(t, host).(lockstep.Shot)
	if !ok || shot != (lockstep.Shot{Turn: 1, Angle: 135, Power: 60}) {
		t.Errorf("host received %#v", shot)
	}

	if err := host.Close(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-guest.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("guest did not notice the host closing")
	}
	if err := guest.Send(lockstep.Hash{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Send() after peer close = %v, want ErrClosed", err)
	}
}

func TestAcceptSurvivesFailedUpgrade(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	acc := make(chan error, 1)
	go func() {
		c, err := Accept(ctx, ln, nil)
		if err == nil {
			defer c.Close()
		}
		acc <- err
	}()

	// A plain HTTP request cannot be upgraded.
	resp, err := http.Get("http://" + ln.Addr().String() + WSPath)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("plain GET status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	guest, err := Dial(ctx, ln.Addr().String(), nil)
	if err != nil {
		t.Fatalf("Dial() after a failed upgrade: %v", err)
	}
	defer guest.Close()
	if err := <-acc; err != nil {
		t.Fatalf("Accept() failed: %v", err)
	}
}

func TestHostURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"192.168.1.20:7777", "ws://192.168.1.20:7777/tankwars"},
		{"ws://h:7777", "ws://h:7777/tankwars"},
		{"ws://h:7777/", "ws://h:7777/tankwars"},
		{"ws://h:7777/tankwars", "ws://h:7777/tankwars"},
		{"ws://h:7777/tankwars/", "ws://h:7777/tankwars"},
		{"wss://h/games/duel", "wss://h/games/duel"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := hostURL(tt.in)
			if err != nil {
				t.Fatalf("hostURL(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("hostURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if _, err := hostURL("ws://"); err == nil {
		t.Error("address without a host accepted")
	}
}

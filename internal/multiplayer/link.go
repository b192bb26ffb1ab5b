package multiplayer

import (
	"errors"
	"sync"

	"github.com/tomcoolpxl/tank-wars/internal/lockstep"
)

// ErrClosed is returned when sending on a closed connection.
var ErrClosed = errors.New("multiplayer: connection closed")

// Conn is a reliable, ordered, bidirectional message channel to the other peer.
type Conn interface {
	lockstep.Link

	// Inbox delivers messages from the other peer in send order.
	Inbox() <-chan lockstep.Message

	// Done closes when the connection is gone, from either side.
	Done() <-chan struct{}

	Close() error
}

// PipeEnd is one end of an in-process connection.
type PipeEnd struct {
	out    chan<- lockstep.Message
	in     <-chan lockstep.Message
	done   chan struct{}
	closer *sync.Once
}

// NewPipe creates a connected pair. Sends block once buffer messages are
// waiting unread, so nothing is ever dropped.
func NewPipe(buffer int) (*PipeEnd, *PipeEnd) {
	if buffer < 1 {
		buffer = 256
	}
	ab := make(chan lockstep.Message, buffer)
	ba := make(chan lockstep.Message, buffer)
	done := make(chan struct{})
	once := &sync.Once{}
	return &PipeEnd{out: ab, in: ba, done: done, closer: once},
		&PipeEnd{out: ba, in: ab, done: done, closer: once}
}

// Send delivers msg to the other end.
func (p *PipeEnd) Send(msg lockstep.Message) error {
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	select {
	case p.out <- msg:
		return nil
	case <-p.done:
		return ErrClosed
	}
}

// Inbox returns the channel of messages from the other end.
func (p *PipeEnd) Inbox() <-chan lockstep.Message { return p.in }

// Done closes when either end is closed.
func (p *PipeEnd) Done() <-chan struct{} { return p.done }

// Close shuts both ends. Safe to call more than once.
func (p *PipeEnd) Close() error {
	p.closer.Do(func() { close(p.done) })
	return nil
}

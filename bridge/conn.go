package bridge

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/stewi1014/artmorph/logger"
)

// NewPipeListener returns both ends of an in-process connection. The
// listener hands out its end exactly once.
func NewPipeListener() (client net.Conn, listener net.Listener) {
	clientPipe, listenerPipe := net.Pipe()
	return clientPipe, &pipeListener{
		pipe: listenerPipe,
		done: make(chan struct{}),
	}
}

type pipeListener struct {
	mu     sync.Mutex
	pipe   net.Conn
	given  bool
	closed bool
	done   chan struct{}
}

func (p *pipeListener) Accept() (net.Conn, error) {
	p.mu.Lock()
	if !p.given && !p.closed {
		p.given = true
		p.mu.Unlock()
		return p.pipe, nil
	}
	p.mu.Unlock()

	<-p.done
	return nil, net.ErrClosed
}

func (p *pipeListener) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)
	return p.pipe.Close()
}

func (p *pipeListener) Addr() net.Addr {
	return p.pipe.LocalAddr()
}

// Conn sends and receives bridge messages. Send may be called from any
// goroutine.
type Conn struct {
	conn net.Conn

	mu  sync.Mutex
	enc *gob.Encoder
	dec *gob.Decoder
}

func NewConn(conn net.Conn) *Conn {
	return &Conn{
		conn: conn,
		enc:  gob.NewEncoder(conn),
		dec:  gob.NewDecoder(conn),
	}
}

// Send writes an *Event or *Snapshot (or their values).
func (c *Conn) Send(msg any) error {
	switch m := msg.(type) {
	case Event:
		msg = &m
	case Snapshot:
		msg = &m
	case *Event, *Snapshot:
	default:
		return fmt.Errorf("bridge: cannot send %T", msg)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enc.Encode(&msg); err != nil {
		return fmt.Errorf("bridge send: %w", err)
	}
	return nil
}

// Receive decodes messages and passes them to the matching handler until the
// connection closes or ctx is done. A nil handler drops that message type.
// A closed connection ends Receive without error.
func (c *Conn) Receive(ctx context.Context, onEvent func(Event), onSnapshot func(Snapshot)) error {
	stop := context.AfterFunc(ctx, func() {
		c.conn.Close()
	})
	defer stop()

	for {
		var v any
		if err := c.dec.Decode(&v); err != nil {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
			if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return fmt.Errorf("bridge receive: %w", err)
		}

		switch msg := v.(type) {
		case *Event:
			if onEvent != nil {
				onEvent(*msg)
			}
		case *Snapshot:
			if onSnapshot != nil {
				onSnapshot(*msg)
			}
		default:
			logger.Logger().Warn("unknown bridge message", "type", fmt.Sprintf("%T", v))
		}
	}
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

package transport

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// outboundQueueSize bounds the per-connection send buffer. A peer that
// isn't draining its socket gets dropped rather than stalling the writer
// goroutine, per the non-blocking-sends requirement.
const outboundQueueSize = 64

var errConnClosed = errors.New("transport: connection closed")

// Config holds the websocket tuning knobs, mirrored from internal/config.
type Config struct {
	ReadLimitBytes int64
	WriteTimeout   time.Duration
	PongWait       time.Duration
	PingInterval   time.Duration
}

// Conn wraps a single participant's websocket connection: a bounded,
// non-blocking outbound queue plus a ping/pong keepalive loop. All writes
// to the underlying socket happen on one goroutine (writePump); Send is
// safe to call from any goroutine.
type Conn struct {
	ws  *websocket.Conn
	cfg Config

	outbound chan []byte
	done     chan struct{}
	closeMu  sync.Mutex
	closed   bool
}

// NewConn wraps an already-upgraded websocket connection and starts its
// keepalive/write pump goroutine.
func NewConn(ws *websocket.Conn, cfg Config) *Conn {
	ws.SetReadLimit(cfg.ReadLimitBytes)
	_ = ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		_ = ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
		return nil
	})

	c := &Conn{
		ws:       ws,
		cfg:      cfg,
		outbound: make(chan []byte, outboundQueueSize),
		done:     make(chan struct{}),
	}
	go c.writePump()
	return c
}

// Send marshals v to JSON and enqueues it for delivery. If the outbound
// queue is full — the peer isn't consuming — the connection is closed
// rather than blocking the caller, per the non-blocking-sends requirement.
func (c *Conn) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	select {
	case c.outbound <- data:
		return nil
	case <-c.done:
		return errConnClosed
	default:
		c.Close()
		return errConnClosed
	}
}

// ReadLoop blocks reading frames off the connection, invoking handle for
// each raw message, until the connection errors or is closed. The caller
// owns translating read errors into a dispatcher close event.
func (c *Conn) ReadLoop(handle func(raw []byte)) error {
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			return err
		}
		handle(raw)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.outbound:
			if !ok {
				return
			}
			if c.cfg.WriteTimeout > 0 {
				_ = c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if c.cfg.WriteTimeout > 0 {
				deadline = time.Now().Add(c.cfg.WriteTimeout)
			}
			_ = c.ws.SetWriteDeadline(deadline)
			if err := c.ws.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Close terminates the connection. Safe to call multiple times and from
// any goroutine; closing an already-closed Conn is a no-op.
func (c *Conn) Close() error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	return c.ws.Close()
}

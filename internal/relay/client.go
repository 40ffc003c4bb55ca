package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"rtchat/internal/domain"
)

const (
	// Time allowed to write a frame to the server.
	writeWait = 10 * time.Second

	// Time allowed for the server's open packet after the dial succeeds.
	openWait = 10 * time.Second

	// Fallbacks when the open packet omits ping timing.
	defaultPingInterval = 25 * time.Second
	defaultPingTimeout  = 20 * time.Second

	// Maximum frame size accepted from the server.
	maxMessageSize = 1 << 20
)

var (
	// ErrNotConnected is returned by Emit before the namespace connect is
	// acknowledged or after the connection has gone away.
	ErrNotConnected = errors.New("relay: not connected")

	errAlreadyConnected = errors.New("relay: connect called twice")
)

// Client is a Socket.IO event client over a single WebSocket.
type Client struct {
	endpoint string
	dialer   *websocket.Dialer
	log      *slog.Logger

	mu        sync.Mutex
	handlers  map[string][]domain.Handler
	conn      *websocket.Conn
	connected bool

	wmu sync.Mutex

	done     chan struct{}
	doneOnce sync.Once
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for transport diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithDialer replaces the default WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// NewClient returns a Client for the server at base, e.g.
// http://127.0.0.1:8080. Nothing is dialled until Connect.
func NewClient(base string, opts ...Option) (*Client, error) {
	endpoint, err := endpointURL(base)
	if err != nil {
		return nil, err
	}
	c := &Client{
		endpoint: endpoint,
		dialer:   websocket.DefaultDialer,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		handlers: make(map[string][]domain.Handler),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the WebSocket URL the client dials.
func (c *Client) Endpoint() string { return c.endpoint }

// On registers h for event. Handlers for one event run in registration order.
func (c *Client) On(event string, h domain.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

// Connect dials the server, completes the Engine.IO open exchange and asks
// to join the default namespace. The "connect" event fires from the read
// loop once the server acknowledges. A Client connects at most once.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return errAlreadyConnected
	}
	c.mu.Unlock()

	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("relay dial %s: %w", c.endpoint, err)
	}
	conn.SetReadLimit(maxMessageSize)

	hs, err := readOpen(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return err
	}
	readWait := hs.readWait()
	_ = conn.SetReadDeadline(time.Now().Add(readWait))

	if err := c.writeFrame(conn, []byte{engineMessage, socketConnect}); err != nil {
		_ = conn.Close()
		return fmt.Errorf("relay namespace connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.log.Debug("relay open", "sid", hs.SID, "ping_interval_ms", hs.PingInterval)

	go c.readLoop(conn, readWait)
	return nil
}

// Emit sends event with payload. It does not wait for any acknowledgement.
func (c *Client) Emit(event string, payload any) error {
	c.mu.Lock()
	conn, ok := c.conn, c.connected
	c.mu.Unlock()
	if !ok {
		return ErrNotConnected
	}
	frame, err := encodeEvent(event, payload)
	if err != nil {
		return err
	}
	if err := c.writeFrame(conn, frame); err != nil {
		return fmt.Errorf("relay emit %q: %w", event, err)
	}
	return nil
}

// Connected reports whether the namespace connect has been acknowledged.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Done is closed once the connection is gone for good.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close leaves the namespace and closes the socket. It is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	conn, wasConnected := c.conn, c.connected
	c.connected = false
	c.mu.Unlock()

	if conn == nil {
		c.doneOnce.Do(func() { close(c.done) })
		return nil
	}
	if wasConnected {
		_ = c.writeFrame(conn, []byte{engineMessage, socketDisconnect})
	}
	_ = conn.Close()
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn, readWait time.Duration) {
	reason := "transport closed"
	defer func() { c.shutdown(conn, reason) }()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("relay read failed", "err", err)
			}
			reason = err.Error()
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))

		p, err := decodePacket(frame)
		if err != nil {
			c.log.Warn("relay dropped packet", "err", err)
			continue
		}

		switch p.engine {
		case enginePing:
			if err := c.writeFrame(conn, []byte{enginePong}); err != nil {
				reason = err.Error()
				return
			}
		case engineClose:
			reason = "server closed transport"
			return
		case engineMessage:
			switch p.socket {
			case socketConnect:
				c.mu.Lock()
				c.connected = true
				c.mu.Unlock()
				c.dispatch(domain.EventConnect, p.data)
			case socketConnectError:
				c.dispatch(domain.EventConnectError, p.data)
			case socketDisconnect:
				reason = "server disconnect"
				return
			case socketEvent:
				c.dispatch(p.event, p.firstArg())
			}
		}
	}
}

func (c *Client) shutdown(conn *websocket.Conn, reason string) {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	_ = conn.Close()

	c.log.Debug("relay disconnected", "reason", reason)
	body, _ := json.Marshal(reason)
	c.dispatch(domain.EventDisconnect, body)
	c.doneOnce.Do(func() { close(c.done) })
}

// dispatch runs every handler for event. A panicking handler is logged and
// does not stop the read loop.
func (c *Client) dispatch(event string, payload json.RawMessage) {
	c.mu.Lock()
	hs := append([]domain.Handler(nil), c.handlers[event]...)
	c.mu.Unlock()

	for _, h := range hs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.log.Error("relay handler panicked", "event", event, "panic", r)
				}
			}()
			h(payload)
		}()
	}
}

func (c *Client) writeFrame(conn *websocket.Conn, frame []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, frame)
}

func readOpen(ctx context.Context, conn *websocket.Conn) (handshake, error) {
	deadline := time.Now().Add(openWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)

	_, frame, err := conn.ReadMessage()
	if err != nil {
		return handshake{}, fmt.Errorf("relay open: %w", err)
	}
	p, err := decodePacket(frame)
	if err != nil {
		return handshake{}, fmt.Errorf("relay open: %w", err)
	}
	if p.engine != engineOpen {
		return handshake{}, fmt.Errorf("relay open: unexpected packet type %q", p.engine)
	}
	var hs handshake
	if err := json.Unmarshal(p.data, &hs); err != nil {
		return handshake{}, fmt.Errorf("relay open: %w", err)
	}
	return hs, nil
}

// readWait is how long the client waits for the next frame before
// considering the server gone.
func (h handshake) readWait() time.Duration {
	interval := time.Duration(h.PingInterval) * time.Millisecond
	if interval <= 0 {
		interval = defaultPingInterval
	}
	timeout := time.Duration(h.PingTimeout) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	return interval + timeout
}

// Compile-time assertion that Client implements domain.Transport.
var _ domain.Transport = (*Client)(nil)

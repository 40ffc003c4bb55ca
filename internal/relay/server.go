package relay

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"rtchat/internal/domain"
	"rtchat/internal/protocol/token"
)

// ServerConfig configures a development relay.
type ServerConfig struct {
	// Verifier checks the token in each authenticate event. A nil
	// Verifier rejects every bot.
	Verifier *token.Verifier

	PingInterval time.Duration // default 25s
	PingTimeout  time.Duration // default 20s

	Logger *slog.Logger

	// OnMessage receives message events from authenticated bots. It runs
	// on the connection's read goroutine.
	OnMessage func(sid string, payload json.RawMessage)
}

// Server is an in-memory Socket.IO relay for local runs and tests.
type Server struct {
	cfg      ServerConfig
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*serverConn
}

type serverConn struct {
	sid    string
	ws     *websocket.Conn
	wmu    sync.Mutex
	authed bool // guarded by Server.mu
}

// NewServer returns a relay using cfg.
func NewServer(cfg ServerConfig) *Server {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = defaultPingTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		cfg: cfg,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // bots are not browsers
			},
		},
		conns: make(map[string]*serverConn),
	}
}

// Handler returns an http.Handler serving the relay under /socket.io/.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/socket.io/", s)
	return mux
}

// ServeHTTP upgrades a Socket.IO WebSocket request and serves it until the
// peer goes away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("EIO") != "4" || q.Get("transport") != "websocket" {
		http.Error(w, "websocket transport with EIO=4 required", http.StatusBadRequest)
		return
	}
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("relay upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := &serverConn{sid: uuid.NewString(), ws: ws}
	s.serve(c)
}

func (s *Server) serve(c *serverConn) {
	log := s.log.With("sid", c.sid)
	defer func() {
		s.mu.Lock()
		delete(s.conns, c.sid)
		s.mu.Unlock()
		_ = c.ws.Close()
		log.Info("relay connection closed")
	}()

	open, err := json.Marshal(handshake{
		SID:          c.sid,
		Upgrades:     []string{},
		PingInterval: int(s.cfg.PingInterval / time.Millisecond),
		PingTimeout:  int(s.cfg.PingTimeout / time.Millisecond),
		MaxPayload:   maxMessageSize,
	})
	if err != nil {
		return
	}
	if err := c.write(append([]byte{engineOpen}, open...)); err != nil {
		return
	}

	s.mu.Lock()
	s.conns[c.sid] = c
	s.mu.Unlock()
	log.Info("relay connection opened")

	stop := make(chan struct{})
	defer close(stop)
	go s.pingLoop(c, stop)

	readWait := s.cfg.PingInterval + s.cfg.PingTimeout
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(readWait))

	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(readWait))

		p, err := decodePacket(frame)
		if err != nil {
			log.Warn("relay dropped packet", "err", err)
			continue
		}
		switch p.engine {
		case engineClose:
			return
		case engineMessage:
			switch p.socket {
			case socketConnect:
				ack, err := encodeSocket(socketConnect, map[string]string{"sid": c.sid})
				if err != nil || c.write(ack) != nil {
					return
				}
			case socketDisconnect:
				return
			case socketEvent:
				s.handleEvent(log, c, p)
			}
		}
	}
}

func (s *Server) handleEvent(log *slog.Logger, c *serverConn, p packet) {
	switch p.event {
	case domain.EventAuthenticate:
		var body domain.AuthenticatePayload
		if err := json.Unmarshal(p.firstArg(), &body); err != nil || body.Token == "" {
			log.Warn("relay authenticate without token")
			s.emitError(c, "authenticate requires a token")
			return
		}
		if s.cfg.Verifier == nil {
			s.emitError(c, "authentication failed")
			return
		}
		claims, err := s.cfg.Verifier.Verify(body.Token)
		if err != nil {
			log.Warn("relay rejected token", "err", err)
			s.emitError(c, "authentication failed")
			return
		}
		s.mu.Lock()
		c.authed = true
		s.mu.Unlock()
		log.Info("relay bot authenticated", "iss", claims.Issuer)
		_ = c.emit(domain.EventAuthenticated, map[string]string{"iss": claims.Issuer})

	case domain.EventMessage:
		s.mu.RLock()
		authed := c.authed
		s.mu.RUnlock()
		if !authed {
			s.emitError(c, "not authenticated")
			return
		}
		if s.cfg.OnMessage != nil {
			s.cfg.OnMessage(c.sid, p.firstArg())
		}

	default:
		log.Debug("relay ignored event", "event", p.event)
	}
}

func (s *Server) emitError(c *serverConn, msg string) {
	_ = c.emit(domain.EventError, domain.ErrorPayload{Message: msg})
}

func (s *Server) pingLoop(c *serverConn, stop <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := c.write([]byte{enginePing}); err != nil {
				return
			}
		}
	}
}

// Broadcast sends event to every authenticated bot and returns how many
// sends succeeded.
func (s *Server) Broadcast(event string, payload any) int {
	s.mu.RLock()
	targets := make([]*serverConn, 0, len(s.conns))
	for _, c := range s.conns {
		if c.authed {
			targets = append(targets, c)
		}
	}
	s.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if err := c.emit(event, payload); err != nil {
			s.log.Warn("relay broadcast failed", "sid", c.sid, "err", err)
			continue
		}
		sent++
	}
	return sent
}

// Authenticated returns the number of currently authenticated bots.
func (s *Server) Authenticated() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.conns {
		if c.authed {
			n++
		}
	}
	return n
}

// Close drops every open connection.
func (s *Server) Close() {
	s.mu.RLock()
	conns := make([]*serverConn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.RUnlock()
	for _, c := range conns {
		_ = c.write([]byte{engineClose})
		_ = c.ws.Close()
	}
}

func (c *serverConn) emit(event string, payload any) error {
	frame, err := encodeEvent(event, payload)
	if err != nil {
		return err
	}
	return c.write(frame)
}

func (c *serverConn) write(frame []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, frame)
}

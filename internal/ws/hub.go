package ws

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/web2native/bridge/internal/audit"
	"github.com/web2native/bridge/internal/bridge"
	"github.com/web2native/bridge/internal/codec"
	"github.com/web2native/bridge/internal/correlation"
	"github.com/web2native/bridge/internal/logging"
	"github.com/web2native/bridge/internal/monitoring"
	"github.com/web2native/bridge/internal/policy"
	"github.com/web2native/bridge/internal/registry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // pages are served from arbitrary dev-server ports
	},
}

// Deps carries everything a session's gateway shares with the rest of the
// host. Registry, Enforcer, and Codec are required.
type Deps struct {
	Registry *registry.Registry
	Enforcer *policy.Enforcer
	Codec    *codec.Codec
	Auditor  audit.Recorder
	Logger   *logging.Logger
	Metrics  *monitoring.Metrics

	// SessionRPS and SessionBurst bound how fast a single page may issue
	// commands. Zero values select the defaults.
	SessionRPS   float64
	SessionBurst int
}

// Hub tracks live page sessions and fans control events out to them.
type Hub struct {
	deps   Deps
	logger *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewHub creates a hub.
func NewHub(deps Deps) (*Hub, error) {
	switch {
	case deps.Registry == nil:
		return nil, fmt.Errorf("hub requires a registry")
	case deps.Enforcer == nil:
		return nil, fmt.Errorf("hub requires an enforcer")
	case deps.Codec == nil:
		return nil, fmt.Errorf("hub requires a codec")
	}

	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	if deps.SessionRPS <= 0 {
		deps.SessionRPS = defaultSessionRPS
	}
	if deps.SessionBurst <= 0 {
		deps.SessionBurst = defaultSessionBurst
	}

	return &Hub{
		deps:     deps,
		logger:   deps.Logger.Component("ws"),
		sessions: make(map[string]*Session),
	}, nil
}

// Handle upgrades an HTTP request and runs the session until the page goes
// away. It blocks for the lifetime of the connection.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s, err := h.attach(conn)
	if err != nil {
		h.logger.Error("session setup failed", zap.Error(err))
		conn.Close()
		return
	}

	go s.writeLoop()
	s.readLoop(c.Request.Context())
}

// attach builds a session around an upgraded connection and registers it.
// Each session gets its own gateway and correlation table so request ids
// from different pages never collide.
func (h *Hub) attach(conn *websocket.Conn) (*Session, error) {
	s := &Session{
		id:      uuid.New().String(),
		conn:    conn,
		hub:     h,
		table:   correlation.NewTable(),
		limiter: rate.NewLimiter(rate.Limit(h.deps.SessionRPS), h.deps.SessionBurst),
		codec:   h.deps.Codec,
		metrics: h.deps.Metrics,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}
	s.logger = h.logger.With(zap.String("session_id", s.id))

	gateway, err := bridge.New(bridge.Options{
		Registry: h.deps.Registry,
		Enforcer: h.deps.Enforcer,
		Table:    s.table,
		Codec:    h.deps.Codec,
		Sink:     bridge.SinkFunc(s.deliver),
		Auditor:  h.deps.Auditor,
		Logger:   h.deps.Logger,
		Metrics:  h.deps.Metrics,
	})
	if err != nil {
		return nil, err
	}
	s.gateway = gateway

	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()

	if h.deps.Metrics != nil {
		h.deps.Metrics.IncWSConnections()
	}
	s.logger.Info("page session opened")
	return s, nil
}

func (h *Hub) detach(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s.id)
	h.mu.Unlock()

	if h.deps.Metrics != nil {
		h.deps.Metrics.DecWSConnections()
	}
}

// BroadcastEvent pushes a control event frame to every live session and
// reports how many received it.
func (h *Hub) BroadcastEvent(name string) int {
	frame, err := sonic.Marshal(Event{Event: name})
	if err != nil {
		h.logger.Error("event encoding failed", zap.String("event", name), zap.Error(err))
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, s := range h.sessions {
		if s.enqueue(frame) {
			delivered++
		}
	}
	return delivered
}

// SessionCount reports the number of live sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Pending reports in-flight requests keyed by session id.
func (h *Hub) Pending() map[string][]correlation.Pending {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string][]correlation.Pending, len(h.sessions))
	for id, s := range h.sessions {
		out[id] = s.table.Snapshot()
	}
	return out
}

// Shutdown cancels pending requests and disconnects every session.
func (h *Hub) Shutdown(reason string) {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.close(reason)
	}
}

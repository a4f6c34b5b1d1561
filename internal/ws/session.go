package ws

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/web2native/bridge/internal/bridge"
	"github.com/web2native/bridge/internal/codec"
	"github.com/web2native/bridge/internal/correlation"
	"github.com/web2native/bridge/internal/logging"
	"github.com/web2native/bridge/internal/monitoring"
	"github.com/web2native/bridge/internal/shared/types"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64

	defaultSessionRPS   = 20
	defaultSessionBurst = 40
)

// Event is a non-command control frame exchanged with the page shim.
type Event struct {
	Event string `json:"event"`
}

// Control frame names.
const (
	EventUnload = "unload"
	EventReload = "reload"
	EventFinish = "finish"
	EventPing   = "ping"
	EventPong   = "pong"
)

// Session is one connected page context. It owns the socket, a gateway, and
// the correlation table for requests issued by that page.
type Session struct {
	id      string
	conn    *websocket.Conn
	hub     *Hub
	gateway *bridge.Gateway
	table   *correlation.Table
	limiter *rate.Limiter
	codec   *codec.Codec
	metrics *monitoring.Metrics
	logger  *logging.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// ID reports the session id assigned at upgrade.
func (s *Session) ID() string {
	return s.id
}

// readLoop consumes page frames until the socket drops, then tears the
// session down. Runs on the upgrade goroutine.
func (s *Session) readLoop(ctx context.Context) {
	defer s.close("socket closed")

	s.conn.SetReadLimit(int64(s.codec.MaxBytes()))
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("session read failed", zap.Error(err))
			}
			return
		}
		s.handleFrame(ctx, raw)
	}
}

// handleFrame classifies one inbound frame as a control event or a command.
func (s *Session) handleFrame(ctx context.Context, raw []byte) {
	if s.metrics != nil {
		s.metrics.RecordWSMessage("in")
	}

	// Best-effort probe. An undecodable frame still goes to the gateway,
	// which owns the malformed-command path.
	var probe struct {
		Event string `json:"event"`
		ID    string `json:"id"`
	}
	_ = sonic.Unmarshal(raw, &probe)

	if probe.Event != "" {
		s.handleEvent(probe.Event)
		return
	}

	if !s.limiter.Allow() {
		s.logger.Warn("session command rate exceeded", zap.String("request_id", probe.ID))
		if s.metrics != nil {
			s.metrics.RecordDenial(string(types.KindPolicyBlocked))
		}
		if probe.ID != "" {
			s.deliver(types.Fail(types.KindPolicyBlocked,
				"command rate exceeded for this session").Envelope(probe.ID))
		}
		return
	}

	s.gateway.HandleRaw(ctx, raw)
}

func (s *Session) handleEvent(name string) {
	switch name {
	case EventUnload:
		cancelled := s.gateway.CancelAll("page unload")
		s.logger.Info("page unloading", zap.Int("cancelled", cancelled))
	case EventPing:
		s.enqueueEvent(EventPong)
	default:
		s.logger.Warn("unknown control event", zap.String("event", name))
	}
}

// deliver is the session gateway's sink. Providers resolve from their own
// goroutines, so frames are queued for the write loop rather than written
// here.
func (s *Session) deliver(env types.ResultEnvelope) {
	frame, err := s.codec.EncodeResult(env)
	if err != nil {
		s.logger.Error("result encoding failed",
			zap.String("request_id", env.RequestID),
			zap.Error(err))
		return
	}
	if !s.enqueue(frame) {
		s.logger.Warn("send queue full, dropping result",
			zap.String("request_id", env.RequestID))
	}
}

func (s *Session) enqueueEvent(name string) {
	frame, err := sonic.Marshal(Event{Event: name})
	if err != nil {
		s.logger.Error("event encoding failed", zap.String("event", name), zap.Error(err))
		return
	}
	s.enqueue(frame)
}

// enqueue hands a frame to the write loop without ever blocking a provider
// goroutine. The send channel is never closed; after shutdown frames are
// simply refused.
func (s *Session) enqueue(frame []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

// writeLoop serializes all socket writes and keeps the connection alive with
// periodic pings.
func (s *Session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case frame := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
			if s.metrics != nil {
				s.metrics.RecordWSMessage("out")
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// close tears the session down exactly once: pending requests are cancelled,
// the hub forgets the session, and the write loop is released.
func (s *Session) close(reason string) {
	s.closeOnce.Do(func() {
		cancelled := s.gateway.CancelAll(reason)
		close(s.done)
		s.hub.detach(s)
		s.conn.Close()
		s.logger.Info("page session closed",
			zap.String("reason", reason),
			zap.Int("cancelled", cancelled))
	})
}

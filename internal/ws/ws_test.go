package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web2native/bridge/internal/codec"
	"github.com/web2native/bridge/internal/policy"
	"github.com/web2native/bridge/internal/registry"
	"github.com/web2native/bridge/internal/shared/types"
)

type scriptedProvider struct {
	service types.Service
	behave  func(inv types.Invocation, resolve types.ResolveFunc)
}

func (p *scriptedProvider) Definition() types.Service { return p.service }

func (p *scriptedProvider) Invoke(_ context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	p.behave(inv, resolve)
}

func echoProvider() *scriptedProvider {
	return &scriptedProvider{
		service: types.Service{
			ID:   "echo",
			Name: "Echo",
			Commands: []types.Command{{
				Name:   "echo",
				Params: []types.Param{{Name: "text", Type: types.ParamString, Required: true}},
			}},
		},
		behave: func(inv types.Invocation, resolve types.ResolveFunc) {
			text, _ := inv.String("text")
			resolve(types.Succeed(map[string]interface{}{"text": text}))
		},
	}
}

// holdProvider parks every invocation until the test releases it through the
// captured resolve.
type holdProvider struct {
	mu      sync.Mutex
	pending types.ResolveFunc
	invoked chan struct{}
}

func newHoldProvider() *holdProvider {
	return &holdProvider{invoked: make(chan struct{}, 1)}
}

func (p *holdProvider) Definition() types.Service {
	return types.Service{
		ID:       "hold",
		Name:     "Hold",
		Commands: []types.Command{{Name: "hold", Async: true}},
	}
}

func (p *holdProvider) Invoke(_ context.Context, _ types.Invocation, resolve types.ResolveFunc) {
	p.mu.Lock()
	p.pending = resolve
	p.mu.Unlock()
	p.invoked <- struct{}{}
}

func (p *holdProvider) release(outcome types.Outcome) {
	p.mu.Lock()
	resolve := p.pending
	p.mu.Unlock()
	resolve(outcome)
}

func newTestHub(t *testing.T, mutate func(*Deps), providers ...types.Provider) (*Hub, *httptest.Server) {
	t.Helper()

	reg := registry.New()
	for _, p := range providers {
		require.NoError(t, reg.Register(p))
	}

	deps := Deps{
		Registry: reg,
		Enforcer: policy.NewEnforcer(policy.NewFlags(nil)),
		Codec:    codec.New(0),
	}
	if mutate != nil {
		mutate(&deps)
	}

	hub, err := NewHub(deps)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", hub.Handle)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return hub, srv
}

func dialPage(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendCommand(t *testing.T, conn *websocket.Conn, id, cmd string, args ...interface{}) {
	t.Helper()
	frame, err := sonic.Marshal(map[string]interface{}{"id": id, "cmd": cmd, "args": args})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func readEnvelope(t *testing.T, conn *websocket.Conn) types.ResultEnvelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var env types.ResultEnvelope
	require.NoError(t, sonic.Unmarshal(raw, &env))
	return env
}

func totalPending(hub *Hub) int {
	total := 0
	for _, pending := range hub.Pending() {
		total += len(pending)
	}
	return total
}

func TestCommandRoundTrip(t *testing.T) {
	_, srv := newTestHub(t, nil, echoProvider())
	conn := dialPage(t, srv)

	sendCommand(t, conn, "req_1", "echo", "hello")

	env := readEnvelope(t, conn)
	assert.Equal(t, "req_1", env.RequestID)
	assert.True(t, env.Ok)
	assert.Equal(t, "hello", env.Data["text"])
}

func TestAsyncResultReachesPage(t *testing.T) {
	hold := newHoldProvider()
	_, srv := newTestHub(t, nil, hold)
	conn := dialPage(t, srv)

	sendCommand(t, conn, "req_async", "hold")
	<-hold.invoked

	hold.release(types.Succeed(map[string]interface{}{"value": "late"}))

	env := readEnvelope(t, conn)
	assert.Equal(t, "req_async", env.RequestID)
	assert.True(t, env.Ok)
	assert.Equal(t, "late", env.Data["value"])
}

func TestUnloadCancelsPending(t *testing.T) {
	hold := newHoldProvider()
	hub, srv := newTestHub(t, nil, hold, echoProvider())
	conn := dialPage(t, srv)

	sendCommand(t, conn, "req_doomed", "hold")
	<-hold.invoked
	require.Eventually(t, func() bool { return totalPending(hub) == 1 },
		time.Second, 10*time.Millisecond)

	frame, err := sonic.Marshal(Event{Event: EventUnload})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
	require.Eventually(t, func() bool { return totalPending(hub) == 0 },
		time.Second, 10*time.Millisecond)

	// The cancelled request's late resolution must never reach the page, so
	// the next frame the page sees is the echo reply.
	hold.release(types.Succeed(map[string]interface{}{"value": "ghost"}))
	sendCommand(t, conn, "req_after", "echo", "still alive")

	env := readEnvelope(t, conn)
	assert.Equal(t, "req_after", env.RequestID)
	assert.True(t, env.Ok)
	assert.Equal(t, "still alive", env.Data["text"])
}

func TestSocketCloseCancelsPending(t *testing.T) {
	hold := newHoldProvider()
	hub, srv := newTestHub(t, nil, hold)
	conn := dialPage(t, srv)

	sendCommand(t, conn, "req_orphan", "hold")
	<-hold.invoked
	require.Eventually(t, func() bool { return hub.SessionCount() == 1 },
		time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.SessionCount() == 0 },
		time.Second, 10*time.Millisecond)
	assert.Zero(t, totalPending(hub))

	// Resolving after teardown must be harmless.
	hold.release(types.Succeed(nil))
}

func TestSessionRateLimitAnswersPolicyBlocked(t *testing.T) {
	_, srv := newTestHub(t, func(d *Deps) {
		d.SessionRPS = 1
		d.SessionBurst = 1
	}, echoProvider())
	conn := dialPage(t, srv)

	sendCommand(t, conn, "req_1", "echo", "first")
	sendCommand(t, conn, "req_2", "echo", "second")

	first := readEnvelope(t, conn)
	assert.Equal(t, "req_1", first.RequestID)
	assert.True(t, first.Ok)

	second := readEnvelope(t, conn)
	assert.Equal(t, "req_2", second.RequestID)
	assert.False(t, second.Ok)
	require.NotNil(t, second.Error)
	assert.Equal(t, types.KindPolicyBlocked, second.Error.Kind)
}

func TestPingAnsweredWithPong(t *testing.T) {
	_, srv := newTestHub(t, nil, echoProvider())
	conn := dialPage(t, srv)

	frame, err := sonic.Marshal(Event{Event: EventPing})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, sonic.Unmarshal(raw, &event))
	assert.Equal(t, EventPong, event.Event)
}

func TestBroadcastReloadReachesEverySession(t *testing.T) {
	hub, srv := newTestHub(t, nil, echoProvider())
	first := dialPage(t, srv)
	second := dialPage(t, srv)
	require.Eventually(t, func() bool { return hub.SessionCount() == 2 },
		time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, hub.BroadcastEvent(EventReload))

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var event Event
		require.NoError(t, sonic.Unmarshal(raw, &event))
		assert.Equal(t, EventReload, event.Event)
	}
}

func TestNewHubRequiresCoreDeps(t *testing.T) {
	_, err := NewHub(Deps{})
	assert.ErrorContains(t, err, "registry")

	_, err = NewHub(Deps{Registry: registry.New()})
	assert.ErrorContains(t, err, "enforcer")

	_, err = NewHub(Deps{Registry: registry.New(), Enforcer: policy.NewEnforcer(policy.NewFlags(nil))})
	assert.ErrorContains(t, err, "codec")
}

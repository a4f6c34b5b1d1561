// Package sim runs a scripted page against the dispatch stack in process.
//
// The page is a goja VM loaded with the same bridge.js the devhost serves.
// Its transport hands command text straight to a private gateway, and results
// come back as queued callback invocations. Scripts use the callback API:
//
//	Bridge.invoke("getDeviceInfo", [], function (msg) {
//	    console.log(msg.ok, msg.data.description);
//	});
//
// Every VM touch happens on one loop goroutine. Providers resolving from
// their own goroutines go through the job queue, so callbacks always fire
// between script runs, never in the middle of one.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/web2native/bridge/internal/audit"
	"github.com/web2native/bridge/internal/bridge"
	"github.com/web2native/bridge/internal/codec"
	"github.com/web2native/bridge/internal/correlation"
	"github.com/web2native/bridge/internal/logging"
	"github.com/web2native/bridge/internal/monitoring"
	"github.com/web2native/bridge/internal/policy"
	"github.com/web2native/bridge/internal/registry"
	"github.com/web2native/bridge/internal/shared/types"
	"github.com/web2native/bridge/web"
)

const (
	// DefaultTimeout bounds one script execution.
	DefaultTimeout = 5 * time.Second

	jobBuffer    = 256
	maxCallStack = 1024
)

// LogEntry is one captured console line.
type LogEntry struct {
	Level   string
	Message string
	Time    time.Time
}

// Options configures a scripted page. Registry, Enforcer, and Codec are
// required; the page builds its own gateway and correlation table, exactly
// like a WebSocket session does.
type Options struct {
	Registry *registry.Registry
	Enforcer *policy.Enforcer
	Codec    *codec.Codec
	Auditor  audit.Recorder
	Logger   *logging.Logger
	Metrics  *monitoring.Metrics
	Timeout  time.Duration
}

// Page is one scripted page context.
type Page struct {
	vm      *goja.Runtime
	gateway *bridge.Gateway
	codec   *codec.Codec
	logger  *logging.Logger
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	receive goja.Callable

	jobs      chan func()
	done      chan struct{}
	closeOnce sync.Once

	consoleMu sync.Mutex
	console   []LogEntry
}

// Open builds the VM, loads the shim, and binds the in-process transport.
func Open(opts Options) (*Page, error) {
	switch {
	case opts.Registry == nil:
		return nil, fmt.Errorf("page requires a registry")
	case opts.Enforcer == nil:
		return nil, fmt.Errorf("page requires an enforcer")
	case opts.Codec == nil:
		return nil, fmt.Errorf("page requires a codec")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Page{
		vm:      goja.New(),
		codec:   opts.Codec,
		logger:  logger.Component("sim"),
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(chan func(), jobBuffer),
		done:    make(chan struct{}),
	}
	p.vm.SetMaxCallStackSize(maxCallStack)

	gateway, err := bridge.New(bridge.Options{
		Registry: opts.Registry,
		Enforcer: opts.Enforcer,
		Table:    correlation.NewTable(),
		Codec:    opts.Codec,
		Sink:     bridge.SinkFunc(p.deliver),
		Auditor:  opts.Auditor,
		Logger:   opts.Logger,
		Metrics:  opts.Metrics,
	})
	if err != nil {
		cancel()
		return nil, err
	}
	p.gateway = gateway

	if err := p.setupGlobals(); err != nil {
		cancel()
		return nil, err
	}
	if err := p.loadShim(); err != nil {
		cancel()
		return nil, err
	}

	go p.loop()
	return p, nil
}

func (p *Page) setupGlobals() error {
	p.vm.Set("require", goja.Undefined())
	p.vm.Set("process", goja.Undefined())
	p.vm.Set("module", goja.Undefined())
	p.vm.Set("exports", goja.Undefined())

	console := p.vm.NewObject()
	console.Set("log", p.makeConsoleFunc("log"))
	console.Set("info", p.makeConsoleFunc("info"))
	console.Set("warn", p.makeConsoleFunc("warn"))
	console.Set("error", p.makeConsoleFunc("error"))
	p.vm.Set("console", console)

	// Scripted pages drive themselves through bridge callbacks; wall-clock
	// timers stay inert.
	p.vm.Set("setTimeout", func(goja.FunctionCall) goja.Value { return goja.Undefined() })
	p.vm.Set("setInterval", func(goja.FunctionCall) goja.Value { return goja.Undefined() })

	return nil
}

// loadShim evaluates bridge.js and swaps its transport for a direct line
// into the gateway.
func (p *Page) loadShim() error {
	if _, err := p.vm.RunString(string(web.BridgeJS)); err != nil {
		return fmt.Errorf("load shim: %w", err)
	}

	p.vm.Set("__dispatch", func(text string) {
		p.gateway.HandleRaw(p.ctx, []byte(text))
	})
	if _, err := p.vm.RunString(`Bridge._useTransport({ send: function (text) { __dispatch(text); } });`); err != nil {
		return fmt.Errorf("bind transport: %w", err)
	}

	bridgeObj := p.vm.Get("Bridge")
	if bridgeObj == nil {
		return fmt.Errorf("shim did not install Bridge")
	}
	receive, ok := goja.AssertFunction(bridgeObj.ToObject(p.vm).Get("_receive"))
	if !ok {
		return fmt.Errorf("shim did not export a receive hook")
	}
	p.receive = receive
	return nil
}

func (p *Page) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}

		p.consoleMu.Lock()
		p.console = append(p.console, LogEntry{Level: level, Message: msg, Time: time.Now()})
		p.consoleMu.Unlock()

		p.logger.Debug("console", zap.String("level", level), zap.String("message", msg))
		return goja.Undefined()
	}
}

func (p *Page) loop() {
	for {
		select {
		case job := <-p.jobs:
			job()
		case <-p.done:
			return
		}
	}
}

// Run executes one script on the page and waits for it to finish. Result
// callbacks queued while the script ran fire afterwards, in arrival order.
func (p *Page) Run(ctx context.Context, script string) error {
	errc := make(chan error, 1)
	job := func() { errc <- p.exec(ctx, script) }

	select {
	case p.jobs <- job:
	case <-p.done:
		return fmt.Errorf("page is closed")
	}

	select {
	case err := <-errc:
		return err
	case <-p.done:
		return fmt.Errorf("page closed during script")
	}
}

func (p *Page) exec(ctx context.Context, script string) error {
	// Clear any straggler interrupt a previous watchdog lost the race on.
	p.vm.ClearInterrupt()

	stop := make(chan struct{})
	timer := time.NewTimer(p.timeout)
	go func() {
		defer timer.Stop()
		select {
		case <-timer.C:
			p.vm.Interrupt("script timeout exceeded")
		case <-ctx.Done():
			p.vm.Interrupt("context cancelled")
		case <-stop:
		}
	}()

	_, err := p.vm.RunString(script)
	close(stop)
	p.vm.ClearInterrupt()
	return err
}

// deliver is the page gateway's sink. Frames are queued as callback jobs so
// the VM is only ever touched from the loop goroutine.
func (p *Page) deliver(env types.ResultEnvelope) {
	frame, err := p.codec.EncodeResult(env)
	if err != nil {
		p.logger.Error("result encoding failed",
			zap.String("request_id", env.RequestID),
			zap.Error(err))
		return
	}

	job := func() {
		if _, err := p.receive(goja.Undefined(), p.vm.ToValue(string(frame))); err != nil {
			p.logger.Warn("result callback failed",
				zap.String("request_id", env.RequestID),
				zap.Error(err))
			p.vm.ClearInterrupt()
		}
	}

	select {
	case p.jobs <- job:
	case <-p.done:
	default:
		p.logger.Warn("job queue full, dropping result",
			zap.String("request_id", env.RequestID))
	}
}

// Drain waits until every queued result callback has run.
func (p *Page) Drain() {
	flushed := make(chan struct{})
	select {
	case p.jobs <- func() { close(flushed) }:
	case <-p.done:
		return
	}

	select {
	case <-flushed:
	case <-p.done:
	}
}

// Console returns a copy of captured console output.
func (p *Page) Console() []LogEntry {
	p.consoleMu.Lock()
	defer p.consoleMu.Unlock()
	return append([]LogEntry{}, p.console...)
}

// Close cancels in-flight requests and stops the loop.
func (p *Page) Close() error {
	p.closeOnce.Do(func() {
		p.cancel()
		p.gateway.CancelAll("page closed")
		close(p.done)
	})
	return nil
}

package bridge

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/web2native/bridge/internal/audit"
	"github.com/web2native/bridge/internal/codec"
	"github.com/web2native/bridge/internal/correlation"
	"github.com/web2native/bridge/internal/logging"
	"github.com/web2native/bridge/internal/monitoring"
	"github.com/web2native/bridge/internal/policy"
	"github.com/web2native/bridge/internal/registry"
	"github.com/web2native/bridge/internal/shared/id"
	"github.com/web2native/bridge/internal/shared/types"
)

// Sink receives result envelopes for delivery into the page context.
type Sink interface {
	Deliver(env types.ResultEnvelope)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(env types.ResultEnvelope)

// Deliver implements Sink.
func (f SinkFunc) Deliver(env types.ResultEnvelope) { f(env) }

// Options configures a Gateway. Registry, Enforcer, Table, Codec, and Sink
// are required; the rest default to inert implementations.
type Options struct {
	Registry *registry.Registry
	Enforcer *policy.Enforcer
	Table    *correlation.Table
	Codec    *codec.Codec
	Sink     Sink
	Auditor  audit.Recorder
	Logger   *logging.Logger
	Metrics  *monitoring.Metrics
}

// Gateway parses inbound command envelopes, authorizes them, dispatches to
// providers, and routes each eventual result back to the page.
type Gateway struct {
	registry *registry.Registry
	enforcer *policy.Enforcer
	table    *correlation.Table
	codec    *codec.Codec
	sink     Sink
	auditor  audit.Recorder
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// New creates a gateway.
func New(opts Options) (*Gateway, error) {
	switch {
	case opts.Registry == nil:
		return nil, fmt.Errorf("gateway requires a registry")
	case opts.Enforcer == nil:
		return nil, fmt.Errorf("gateway requires an enforcer")
	case opts.Table == nil:
		return nil, fmt.Errorf("gateway requires a correlation table")
	case opts.Codec == nil:
		return nil, fmt.Errorf("gateway requires a codec")
	case opts.Sink == nil:
		return nil, fmt.Errorf("gateway requires a sink")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &Gateway{
		registry: opts.Registry,
		enforcer: opts.Enforcer,
		table:    opts.Table,
		codec:    opts.Codec,
		sink:     opts.Sink,
		auditor:  opts.Auditor,
		logger:   logger.Component("gateway"),
		metrics:  opts.Metrics,
	}, nil
}

// HandleRaw decodes a textual command and dispatches it. Undecodable input
// with a recoverable request id is answered with MalformedCommand; without
// one there is nothing to address, so the failure is only logged.
func (g *Gateway) HandleRaw(ctx context.Context, raw []byte) {
	env, err := g.codec.DecodeCommand(raw)
	if err != nil {
		g.logger.Warn("rejecting undecodable command",
			zap.String("request_id", env.RequestID),
			zap.Error(err))

		if env.RequestID != "" {
			g.reject(env.RequestID, env.Name, types.KindMalformedCommand, err.Error())
		}
		return
	}
	g.Dispatch(ctx, env)
}

// Dispatch runs one decoded command through the gateway state machine. It
// returns as soon as the command is rejected or handed to its provider; the
// result arrives through the sink.
func (g *Gateway) Dispatch(ctx context.Context, env types.CommandEnvelope) {
	requestID := env.RequestID
	if requestID == "" {
		requestID = id.NewRequestID().String()
	}

	entry, ok := g.registry.Resolve(env.Name)
	if !ok {
		g.reject(requestID, env.Name, types.KindUnknownCommand,
			fmt.Sprintf("command %q is not registered", env.Name))
		return
	}

	args, err := bindArgs(entry.Command, env.Args)
	if err != nil {
		g.reject(requestID, env.Name, types.KindMalformedCommand, err.Error())
		return
	}

	decision := g.enforcer.Authorize(entry.Command)
	g.recordAudit(audit.Event{
		Time:      time.Now(),
		Stage:     audit.StageAuthorization,
		RequestID: requestID,
		Command:   env.Name,
		Allowed:   decision.Allowed,
		Kind:      string(decision.Kind),
		Message:   decision.Message,
	})
	if !decision.Allowed {
		g.metrics.RecordDenial(string(decision.Kind))
		g.logger.Info("command denied",
			zap.String("request_id", requestID),
			zap.String("command", env.Name),
			zap.String("reason", string(decision.Kind)),
			zap.String("flag", string(decision.Flag)))
		g.emit(requestID, types.Fail(decision.Kind, decision.Message))
		return
	}

	if _, err := g.table.Begin(requestID, entry.ServiceID, entry.Command); err != nil {
		g.reject(requestID, env.Name, types.KindConflict,
			fmt.Sprintf("request id %q is already pending", requestID))
		return
	}
	g.metrics.IncPending()

	inv := types.Invocation{RequestID: requestID, Command: env.Name, Args: args}
	g.invoke(ctx, entry, inv, g.resolver(requestID))

	if entry.Command.Async {
		g.table.MarkAwaiting(requestID)
	}
}

// CancelAll discards every pending request. Fired by host lifecycle when the
// page unloads; no results are emitted for the discarded set.
func (g *Gateway) CancelAll(reason string) int {
	n := g.table.CancelAll()

	if n > 0 {
		g.metrics.DecPending(n)
		g.metrics.AddCancelled(n)
		g.logger.Info("cancelled pending requests",
			zap.Int("count", n),
			zap.String("reason", reason))
	}
	g.recordAudit(audit.Event{
		Time:    time.Now(),
		Stage:   audit.StageCancellation,
		Message: fmt.Sprintf("%s: cancelled %d pending requests", reason, n),
		Allowed: true,
	})
	return n
}

// resolver binds a request id to the correlation table. The returned callback
// is handed to the provider; only its first call wins, later or duplicate
// calls are swallowed.
func (g *Gateway) resolver(requestID string) types.ResolveFunc {
	return func(outcome types.Outcome) {
		res, err := g.table.Resolve(requestID, outcome)
		if err != nil {
			// Late callback after cancellation, or a provider double
			// callback. The page has moved on; discard.
			g.metrics.IncSwallowed()
			g.logger.Debug("discarded callback for unknown request",
				zap.String("request_id", requestID))
			return
		}
		g.metrics.DecPending(1)

		label := "ok"
		if !outcome.Ok {
			label = "error"
			if outcome.Err != nil {
				label = string(outcome.Err.Kind)
			}
		}
		g.metrics.RecordCommand(res.Command.Name, label, res.Elapsed)
		g.recordAudit(audit.Event{
			Time:      time.Now(),
			Stage:     audit.StageResolution,
			RequestID: requestID,
			Command:   res.Command.Name,
			Allowed:   outcome.Ok,
			Kind:      label,
			ElapsedMs: res.Elapsed.Milliseconds(),
		})

		g.sink.Deliver(outcome.Envelope(requestID))
	}
}

// invoke runs the provider with panic isolation: a panicking provider resolves
// as ProviderFailure instead of tearing down the dispatch context.
func (g *Gateway) invoke(ctx context.Context, entry registry.Entry, inv types.Invocation, resolve types.ResolveFunc) {
	defer func() {
		if r := recover(); r != nil {
			g.metrics.IncProviderPanic()
			g.logger.Error("provider panicked",
				zap.String("request_id", inv.RequestID),
				zap.String("command", inv.Command),
				zap.Any("panic", r))
			resolve(types.Fail(types.KindProviderFailure, fmt.Sprintf("provider panic: %v", r)))
		}
	}()

	entry.Provider.Invoke(ctx, inv, resolve)
}

// reject emits a typed error for a command that never reached a provider.
func (g *Gateway) reject(requestID, command string, kind types.ErrorKind, message string) {
	g.metrics.RecordCommand(command, string(kind), 0)
	g.recordAudit(audit.Event{
		Time:      time.Now(),
		Stage:     audit.StageRejection,
		RequestID: requestID,
		Command:   command,
		Kind:      string(kind),
		Message:   message,
	})
	g.logger.Info("command rejected",
		zap.String("request_id", requestID),
		zap.String("command", command),
		zap.String("kind", string(kind)))
	g.emit(requestID, types.Fail(kind, message))
}

func (g *Gateway) emit(requestID string, outcome types.Outcome) {
	g.sink.Deliver(outcome.Envelope(requestID))
}

func (g *Gateway) recordAudit(e audit.Event) {
	if g.auditor == nil {
		return
	}
	if err := g.auditor.Record(e); err != nil {
		g.logger.Warn("audit record failed", zap.Error(err))
	}
}

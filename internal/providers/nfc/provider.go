package nfc

import (
	"context"
	"fmt"
	"sync"

	"github.com/web2native/bridge/internal/host"
	"github.com/web2native/bridge/internal/shared/types"
)

// Host is the device slice for tag discovery.
type Host interface {
	AwaitTag(ctx context.Context) (host.Tag, error)
}

// Provider implements the NFC scan lifecycle. It owns the NFCScanActive flag:
// set while a scan runs, cleared when the scan settles on any path. A started
// scan resolves its request when a tag is discovered; stopping first settles
// the pending request so the page never waits on a scan that cannot finish.
type Provider struct {
	host       Host
	scanActive func(bool)

	mu      sync.Mutex
	pending types.ResolveFunc
	cancel  context.CancelFunc
}

// NewProvider creates an NFC provider. scanActive is the writer for the
// NFCScanActive flag.
func NewProvider(host Host, scanActive func(bool)) *Provider {
	if scanActive == nil {
		scanActive = func(bool) {}
	}
	return &Provider{host: host, scanActive: scanActive}
}

// Definition returns service metadata.
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "nfc",
		Name:        "NFC Service",
		Description: "NFC tag scanning",
		Commands: []types.Command{
			{
				Name:        "startNFCScan",
				Description: "Scan until a tag is discovered",
				Requires:    []types.Flag{types.FlagNFCAvailable},
				Forbids:     []types.Flag{types.FlagNFCScanActive},
				Async:       true,
			},
			{
				Name:        "stopNFCScan",
				Description: "Stop the running scan",
				Requires:    []types.Flag{types.FlagNFCAvailable},
			},
		},
	}
}

// Invoke runs an NFC command.
func (p *Provider) Invoke(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	switch inv.Command {
	case "startNFCScan":
		p.start(ctx, resolve)
	case "stopNFCScan":
		p.stop(resolve)
	default:
		resolve(failure(fmt.Sprintf("unknown command: %s", inv.Command)))
	}
}

func (p *Provider) start(ctx context.Context, resolve types.ResolveFunc) {
	scanCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	if p.pending != nil {
		p.mu.Unlock()
		cancel()
		resolve(failure("a scan is already active"))
		return
	}
	p.pending = resolve
	p.cancel = cancel
	p.scanActive(true)
	p.mu.Unlock()

	go p.scan(scanCtx)
}

func (p *Provider) scan(ctx context.Context) {
	tag, err := p.host.AwaitTag(ctx)

	p.mu.Lock()
	resolve := p.pending
	if resolve == nil {
		// Stop already settled this scan; the tag, if any, is dropped.
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.pending = nil
	p.cancel = nil
	p.scanActive(false)
	p.mu.Unlock()
	cancel()

	if err != nil {
		resolve(failure(fmt.Sprintf("scan aborted: %v", err)))
		return
	}
	resolve(types.Succeed(map[string]interface{}{
		"tagId":   tag.ID,
		"payload": tag.Payload,
	}))
}

func (p *Provider) stop(resolve types.ResolveFunc) {
	p.mu.Lock()
	pending := p.pending
	cancel := p.cancel
	p.pending = nil
	p.cancel = nil
	if pending != nil {
		p.scanActive(false)
	}
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if pending != nil {
		pending(failure("scan stopped before a tag was discovered"))
	}
	resolve(types.Succeed(map[string]interface{}{"stopped": pending != nil}))
}

func failure(message string) types.Outcome {
	return types.Fail(types.KindProviderFailure, message)
}

package browser

import (
	"context"
	"fmt"
	"net/url"

	"github.com/web2native/bridge/internal/shared/types"
)

// Host is the device slice for handing URLs to the system browser.
type Host interface {
	OpenExternal(ctx context.Context, url string) error
}

// Preflighter probes a URL before it leaves for the system browser.
type Preflighter interface {
	Check(ctx context.Context, target string) error
}

// Provider implements opening URLs in the external browser. Only web URLs are
// allowed out; everything else stays inside the shell. With a preflighter the
// command turns asynchronous and the URL is probed before the handoff.
type Provider struct {
	host      Host
	preflight Preflighter
}

// NewProvider creates a browser provider. preflight may be nil.
func NewProvider(host Host, preflight Preflighter) *Provider {
	return &Provider{host: host, preflight: preflight}
}

// Definition returns service metadata.
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "browser",
		Name:        "Browser Service",
		Description: "Open URLs in the system browser",
		Commands: []types.Command{
			{
				Name:        "openExternalBrowser",
				Description: "Open a web URL in the system browser",
				Params: []types.Param{
					{Name: "url", Type: types.ParamString, Description: "Target URL", Required: true},
				},
				Async: p.preflight != nil,
			},
		},
	}
}

// Invoke runs a browser command.
func (p *Provider) Invoke(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	switch inv.Command {
	case "openExternalBrowser":
		p.open(ctx, inv, resolve)
	default:
		resolve(failure(fmt.Sprintf("unknown command: %s", inv.Command)))
	}
}

func (p *Provider) open(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	raw, ok := inv.String("url")
	if !ok {
		resolve(failure("url argument required"))
		return
	}

	target, err := url.Parse(raw)
	if err != nil {
		resolve(failure(fmt.Sprintf("invalid url: %v", err)))
		return
	}
	if (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		resolve(failure(fmt.Sprintf("only http and https URLs can be opened, got %q", raw)))
		return
	}

	if p.preflight == nil {
		p.handoff(ctx, raw, resolve)
		return
	}

	go func() {
		if err := p.preflight.Check(ctx, raw); err != nil {
			resolve(failure(fmt.Sprintf("preflight failed: %v", err)))
			return
		}
		p.handoff(ctx, raw, resolve)
	}()
}

func (p *Provider) handoff(ctx context.Context, raw string, resolve types.ResolveFunc) {
	if err := p.host.OpenExternal(ctx, raw); err != nil {
		resolve(failure(fmt.Sprintf("open failed: %v", err)))
		return
	}
	resolve(types.Succeed(map[string]interface{}{"opened": true}))
}

func failure(message string) types.Outcome {
	return types.Fail(types.KindProviderFailure, message)
}

package shell

import (
	"context"
	"fmt"

	"github.com/web2native/bridge/internal/shared/types"
)

// Host is the device slice for shell lifecycle control.
type Host interface {
	ClearCache(ctx context.Context) error
	Reload(ctx context.Context) error
	Finish(ctx context.Context) error
}

// Provider implements WebView cache and shell lifecycle commands.
type Provider struct {
	host Host
}

// NewProvider creates a shell provider.
func NewProvider(host Host) *Provider {
	return &Provider{host: host}
}

// Definition returns service metadata.
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "shell",
		Name:        "Shell Service",
		Description: "WebView cache and shell lifecycle",
		Commands: []types.Command{
			{
				Name:        "clearCache",
				Description: "Wipe the WebView cache",
			},
			{
				Name:        "reloadPage",
				Description: "Reload the current page",
			},
			{
				Name:        "finishApp",
				Description: "Close the shell application",
			},
		},
	}
}

// Invoke runs a shell command.
func (p *Provider) Invoke(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	switch inv.Command {
	case "clearCache":
		if err := p.host.ClearCache(ctx); err != nil {
			resolve(failure(fmt.Sprintf("clear cache failed: %v", err)))
			return
		}
		resolve(types.Succeed(map[string]interface{}{"cleared": true}))

	case "reloadPage":
		// Resolve before the reload tears the page down; a result sent after
		// the page is gone would be cancelled with everything else.
		resolve(types.Succeed(nil))
		_ = p.host.Reload(ctx)

	case "finishApp":
		resolve(types.Succeed(nil))
		_ = p.host.Finish(ctx)

	default:
		resolve(failure(fmt.Sprintf("unknown command: %s", inv.Command)))
	}
}

func failure(message string) types.Outcome {
	return types.Fail(types.KindProviderFailure, message)
}

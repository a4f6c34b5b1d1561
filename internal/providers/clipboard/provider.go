package clipboard

import (
	"context"
	"fmt"

	"github.com/web2native/bridge/internal/shared/types"
)

// Host is the device slice for clipboard writes.
type Host interface {
	WriteClipboard(ctx context.Context, text string) error
}

// Provider implements clipboard writes. Copying is forbidden while the secure
// screen is active; that gate lives in the command definition and is enforced
// before this provider runs.
type Provider struct {
	host Host
}

// NewProvider creates a clipboard provider.
func NewProvider(host Host) *Provider {
	return &Provider{host: host}
}

// Definition returns service metadata.
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "clipboard",
		Name:        "Clipboard Service",
		Description: "Copy page text to the device clipboard",
		Commands: []types.Command{
			{
				Name:        "copyToClipboard",
				Description: "Copy text to the clipboard",
				Params: []types.Param{
					{Name: "text", Type: types.ParamString, Description: "Text to copy", Required: true},
				},
				Forbids: []types.Flag{types.FlagSecureScreenActive},
			},
		},
	}
}

// Invoke runs a clipboard command.
func (p *Provider) Invoke(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	switch inv.Command {
	case "copyToClipboard":
		p.copy(ctx, inv, resolve)
	default:
		resolve(failure(fmt.Sprintf("unknown command: %s", inv.Command)))
	}
}

func (p *Provider) copy(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	text, ok := inv.String("text")
	if !ok {
		resolve(failure("text argument required"))
		return
	}

	if err := p.host.WriteClipboard(ctx, text); err != nil {
		resolve(failure(fmt.Sprintf("copy failed: %v", err)))
		return
	}
	resolve(types.Succeed(map[string]interface{}{"copied": true}))
}

func failure(message string) types.Outcome {
	return types.Fail(types.KindProviderFailure, message)
}

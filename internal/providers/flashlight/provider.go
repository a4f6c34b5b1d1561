package flashlight

import (
	"context"
	"fmt"

	"github.com/web2native/bridge/internal/shared/types"
)

// Host is the device slice for the torch.
type Host interface {
	SetFlashlight(ctx context.Context, on bool) error
}

// Provider implements the flashlight toggle.
type Provider struct {
	host Host
}

// NewProvider creates a flashlight provider.
func NewProvider(host Host) *Provider {
	return &Provider{host: host}
}

// Definition returns service metadata.
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "flashlight",
		Name:        "Flashlight Service",
		Description: "Torch control",
		Commands: []types.Command{
			{
				Name:        "toggleFlashlight",
				Description: "Turn the torch on or off",
				Params: []types.Param{
					{Name: "status", Type: types.ParamBool, Description: "Desired torch state", Required: true},
				},
				Requires: []types.Flag{types.FlagFlashlightAvailable},
			},
		},
	}
}

// Invoke runs a flashlight command.
func (p *Provider) Invoke(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	switch inv.Command {
	case "toggleFlashlight":
		status, ok := inv.Bool("status")
		if !ok {
			resolve(failure("status argument required"))
			return
		}
		if err := p.host.SetFlashlight(ctx, status); err != nil {
			resolve(failure(fmt.Sprintf("flashlight toggle failed: %v", err)))
			return
		}
		resolve(types.Succeed(map[string]interface{}{"on": status}))
	default:
		resolve(failure(fmt.Sprintf("unknown command: %s", inv.Command)))
	}
}

func failure(message string) types.Outcome {
	return types.Fail(types.KindProviderFailure, message)
}

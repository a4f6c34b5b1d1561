package haptics

import (
	"context"
	"fmt"
	"time"

	"github.com/web2native/bridge/internal/shared/types"
)

// Host is the device slice for vibration.
type Host interface {
	Vibrate(ctx context.Context, d time.Duration) error
}

// Provider implements vibration feedback.
type Provider struct {
	host Host
}

// NewProvider creates a haptics provider.
func NewProvider(host Host) *Provider {
	return &Provider{host: host}
}

// Definition returns service metadata.
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "haptics",
		Name:        "Haptics Service",
		Description: "Vibration feedback",
		Commands: []types.Command{
			{
				Name:        "vibrate",
				Description: "Vibrate the device for a duration",
				Params: []types.Param{
					{Name: "durationMs", Type: types.ParamNumber, Description: "Vibration length in milliseconds", Required: true},
				},
			},
		},
	}
}

// Invoke runs a haptics command.
func (p *Provider) Invoke(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	switch inv.Command {
	case "vibrate":
		p.vibrate(ctx, inv, resolve)
	default:
		resolve(failure(fmt.Sprintf("unknown command: %s", inv.Command)))
	}
}

func (p *Provider) vibrate(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	ms, ok := inv.Number("durationMs")
	if !ok {
		resolve(failure("durationMs argument required"))
		return
	}
	if ms < 0 {
		resolve(failure("durationMs must not be negative"))
		return
	}

	if err := p.host.Vibrate(ctx, time.Duration(ms)*time.Millisecond); err != nil {
		resolve(failure(fmt.Sprintf("vibrate failed: %v", err)))
		return
	}
	resolve(types.Succeed(nil))
}

func failure(message string) types.Outcome {
	return types.Fail(types.KindProviderFailure, message)
}

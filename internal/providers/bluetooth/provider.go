package bluetooth

import (
	"context"
	"fmt"

	"github.com/web2native/bridge/internal/shared/types"
)

// Host is the device slice for the bluetooth radio.
type Host interface {
	SetBluetooth(ctx context.Context, on bool) error
}

// Provider implements the bluetooth toggle. It owns the BluetoothEnabled
// state flag, which tracks the radio state the host applied.
type Provider struct {
	host    Host
	enabled func(bool)
}

// NewProvider creates a bluetooth provider. enabled is the writer for the
// BluetoothEnabled flag.
func NewProvider(host Host, enabled func(bool)) *Provider {
	if enabled == nil {
		enabled = func(bool) {}
	}
	return &Provider{host: host, enabled: enabled}
}

// Definition returns service metadata.
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "bluetooth",
		Name:        "Bluetooth Service",
		Description: "Bluetooth radio control",
		Commands: []types.Command{
			{
				Name:        "toggleBluetooth",
				Description: "Turn the bluetooth radio on or off",
				Params: []types.Param{
					{Name: "status", Type: types.ParamBool, Description: "Desired radio state", Required: true},
				},
				Requires: []types.Flag{types.FlagBluetoothAvailable},
			},
		},
	}
}

// Invoke runs a bluetooth command.
func (p *Provider) Invoke(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	switch inv.Command {
	case "toggleBluetooth":
		status, ok := inv.Bool("status")
		if !ok {
			resolve(failure("status argument required"))
			return
		}
		if err := p.host.SetBluetooth(ctx, status); err != nil {
			resolve(failure(fmt.Sprintf("bluetooth toggle failed: %v", err)))
			return
		}
		p.enabled(status)
		resolve(types.Succeed(map[string]interface{}{"enabled": status}))
	default:
		resolve(failure(fmt.Sprintf("unknown command: %s", inv.Command)))
	}
}

func failure(message string) types.Outcome {
	return types.Fail(types.KindProviderFailure, message)
}

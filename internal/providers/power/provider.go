package power

import (
	"context"
	"fmt"

	"github.com/web2native/bridge/internal/host"
	"github.com/web2native/bridge/internal/shared/types"
)

// Host is the device slice for power state reads.
type Host interface {
	Battery(ctx context.Context) (host.BatteryStatus, error)
	PowerSaveMode(ctx context.Context) (bool, error)
}

// Provider implements battery and power-save reads.
type Provider struct {
	host Host
}

// NewProvider creates a power provider.
func NewProvider(host Host) *Provider {
	return &Provider{host: host}
}

// Definition returns service metadata.
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "power",
		Name:        "Power Service",
		Description: "Battery status and power-save mode",
		Commands: []types.Command{
			{
				Name:        "getBatteryStatus",
				Description: "Read battery level and charging state",
			},
			{
				Name:        "isPowerSaveMode",
				Description: "Report whether power saving is active",
			},
		},
	}
}

// Invoke runs a power command.
func (p *Provider) Invoke(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	switch inv.Command {
	case "getBatteryStatus":
		p.batteryStatus(ctx, resolve)
	case "isPowerSaveMode":
		p.powerSaveMode(ctx, resolve)
	default:
		resolve(failure(fmt.Sprintf("unknown command: %s", inv.Command)))
	}
}

func (p *Provider) batteryStatus(ctx context.Context, resolve types.ResolveFunc) {
	b, err := p.host.Battery(ctx)
	if err != nil {
		resolve(failure(fmt.Sprintf("battery read failed: %v", err)))
		return
	}
	resolve(success(map[string]interface{}{
		"level":    b.Level,
		"charging": b.Charging,
	}))
}

func (p *Provider) powerSaveMode(ctx context.Context, resolve types.ResolveFunc) {
	on, err := p.host.PowerSaveMode(ctx)
	if err != nil {
		resolve(failure(fmt.Sprintf("power-save read failed: %v", err)))
		return
	}
	resolve(success(map[string]interface{}{"enabled": on}))
}

func success(data map[string]interface{}) types.Outcome {
	return types.Succeed(data)
}

func failure(message string) types.Outcome {
	return types.Fail(types.KindProviderFailure, message)
}

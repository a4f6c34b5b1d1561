package device

import (
	"context"
	"fmt"

	"github.com/web2native/bridge/internal/host"
	"github.com/web2native/bridge/internal/shared/types"
)

// Host is the device slice for identity reads.
type Host interface {
	Identity() host.Identity
}

// Provider implements device identity reads.
type Provider struct {
	host Host
}

// NewProvider creates a device provider.
func NewProvider(host Host) *Provider {
	return &Provider{host: host}
}

// Definition returns service metadata.
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "device",
		Name:        "Device Service",
		Description: "Device identity and shell package info",
		Commands: []types.Command{
			{
				Name:        "getDeviceInfo",
				Description: "Read manufacturer, model, platform, and OS version",
			},
			{
				Name:        "getPackageName",
				Description: "Read the shell application package name",
			},
		},
	}
}

// Invoke runs a device command.
func (p *Provider) Invoke(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	switch inv.Command {
	case "getDeviceInfo":
		id := p.host.Identity()
		resolve(types.Succeed(map[string]interface{}{
			"description":  id.Description(),
			"manufacturer": id.Manufacturer,
			"model":        id.Model,
			"platform":     id.Platform,
			"osVersion":    id.OSVersion,
		}))
	case "getPackageName":
		resolve(types.Succeed(map[string]interface{}{
			"packageName": p.host.Identity().PackageName,
		}))
	default:
		resolve(types.Fail(types.KindProviderFailure, fmt.Sprintf("unknown command: %s", inv.Command)))
	}
}

package biometric

import (
	"context"
	"fmt"

	"github.com/web2native/bridge/internal/shared/types"
)

// Host is the device slice for the biometric prompt.
type Host interface {
	PromptBiometric(ctx context.Context) (bool, error)
}

// Provider implements the biometric login gate. The prompt takes as long as
// the user takes, so the command is asynchronous and resolves from its own
// goroutine. A failed match is a normal outcome, not a provider failure; the
// page decides what an unauthenticated user may do.
type Provider struct {
	host Host
}

// NewProvider creates a biometric provider.
func NewProvider(host Host) *Provider {
	return &Provider{host: host}
}

// Definition returns service metadata.
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "biometric",
		Name:        "Biometric Service",
		Description: "Biometric authentication prompt",
		Commands: []types.Command{
			{
				Name:        "loginBiometric",
				Description: "Prompt for biometric authentication",
				Requires:    []types.Flag{types.FlagBiometricEnrolled},
				Async:       true,
			},
		},
	}
}

// Invoke runs a biometric command.
func (p *Provider) Invoke(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	switch inv.Command {
	case "loginBiometric":
		go p.login(ctx, resolve)
	default:
		resolve(types.Fail(types.KindProviderFailure, fmt.Sprintf("unknown command: %s", inv.Command)))
	}
}

func (p *Provider) login(ctx context.Context, resolve types.ResolveFunc) {
	authenticated, err := p.host.PromptBiometric(ctx)
	if err != nil {
		resolve(types.Fail(types.KindProviderFailure, fmt.Sprintf("biometric prompt failed: %v", err)))
		return
	}
	resolve(types.Succeed(map[string]interface{}{"authenticated": authenticated}))
}

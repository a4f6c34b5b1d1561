package screen

import (
	"context"
	"fmt"

	"github.com/web2native/bridge/internal/shared/types"
)

// Host is the device slice for window state.
type Host interface {
	SetSecureScreen(ctx context.Context, active bool) error
	SetKeepScreenOn(ctx context.Context, on bool) error
}

// Provider implements the secure-screen and keep-screen-on toggles. It owns
// the SecureScreenActive flag: the flag follows the applied window state, so
// commands forbidden under secure screen see a fresh value immediately.
type Provider struct {
	host         Host
	secureScreen func(bool)
}

// NewProvider creates a screen provider. secureScreen is the writer for the
// SecureScreenActive flag.
func NewProvider(host Host, secureScreen func(bool)) *Provider {
	if secureScreen == nil {
		secureScreen = func(bool) {}
	}
	return &Provider{host: host, secureScreen: secureScreen}
}

// Definition returns service metadata.
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "screen",
		Name:        "Screen Service",
		Description: "Secure-screen and wake-lock window state",
		Commands: []types.Command{
			{
				Name:        "enableSecureScreen",
				Description: "Block screenshots and screen capture",
			},
			{
				Name:        "disableSecureScreen",
				Description: "Allow screenshots and screen capture again",
			},
			{
				Name:        "toggleKeepScreenOn",
				Description: "Hold or release the screen wake lock",
				Params: []types.Param{
					{Name: "enabled", Type: types.ParamBool, Description: "Keep the screen on", Required: true},
				},
			},
		},
	}
}

// Invoke runs a screen command.
func (p *Provider) Invoke(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	switch inv.Command {
	case "enableSecureScreen":
		p.setSecureScreen(ctx, true, resolve)
	case "disableSecureScreen":
		p.setSecureScreen(ctx, false, resolve)
	case "toggleKeepScreenOn":
		p.keepScreenOn(ctx, inv, resolve)
	default:
		resolve(failure(fmt.Sprintf("unknown command: %s", inv.Command)))
	}
}

func (p *Provider) setSecureScreen(ctx context.Context, active bool, resolve types.ResolveFunc) {
	if err := p.host.SetSecureScreen(ctx, active); err != nil {
		resolve(failure(fmt.Sprintf("secure screen toggle failed: %v", err)))
		return
	}

	// Flag follows the window state the host actually applied.
	p.secureScreen(active)
	resolve(types.Succeed(map[string]interface{}{"active": active}))
}

func (p *Provider) keepScreenOn(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	enabled, ok := inv.Bool("enabled")
	if !ok {
		resolve(failure("enabled argument required"))
		return
	}

	if err := p.host.SetKeepScreenOn(ctx, enabled); err != nil {
		resolve(failure(fmt.Sprintf("keep-screen-on toggle failed: %v", err)))
		return
	}
	resolve(types.Succeed(map[string]interface{}{"enabled": enabled}))
}

func failure(message string) types.Outcome {
	return types.Fail(types.KindProviderFailure, message)
}

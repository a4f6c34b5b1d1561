package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/web2native/bridge/internal/shared/types"
)

// Host is the device slice for notifications.
type Host interface {
	Notify(ctx context.Context, title, message string) error
}

// Provider implements notification delivery. Title and message come straight
// from page content, so both are stripped of markup before they reach the
// notification shade.
type Provider struct {
	host      Host
	sanitizer *bluemonday.Policy
}

// NewProvider creates a notify provider.
func NewProvider(host Host) *Provider {
	return &Provider{
		host:      host,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Definition returns service metadata.
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "notify",
		Name:        "Notification Service",
		Description: "Local notifications from page content",
		Commands: []types.Command{
			{
				Name:        "pushNotification",
				Description: "Show a local notification",
				Params: []types.Param{
					{Name: "title", Type: types.ParamString, Description: "Notification title", Required: true},
					{Name: "message", Type: types.ParamString, Description: "Notification body", Required: true},
				},
				Requires: []types.Flag{types.FlagNotificationsAllowed},
			},
		},
	}
}

// Invoke runs a notify command.
func (p *Provider) Invoke(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	switch inv.Command {
	case "pushNotification":
		p.push(ctx, inv, resolve)
	default:
		resolve(failure(fmt.Sprintf("unknown command: %s", inv.Command)))
	}
}

func (p *Provider) push(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	title, _ := inv.String("title")
	message, _ := inv.String("message")

	title = strings.TrimSpace(p.sanitizer.Sanitize(title))
	message = strings.TrimSpace(p.sanitizer.Sanitize(message))
	if title == "" {
		resolve(failure("title is empty after sanitization"))
		return
	}

	if err := p.host.Notify(ctx, title, message); err != nil {
		resolve(failure(fmt.Sprintf("notification failed: %v", err)))
		return
	}
	resolve(types.Succeed(map[string]interface{}{"delivered": true}))
}

func failure(message string) types.Outcome {
	return types.Fail(types.KindProviderFailure, message)
}

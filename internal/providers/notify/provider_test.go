package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web2native/bridge/internal/shared/types"
)

type mockHost struct {
	titles   []string
	messages []string
}

func (m *mockHost) Notify(ctx context.Context, title, message string) error {
	m.titles = append(m.titles, title)
	m.messages = append(m.messages, message)
	return nil
}

func push(p *Provider, title, message string) types.Outcome {
	var out types.Outcome
	p.Invoke(context.Background(), types.Invocation{
		Command: "pushNotification",
		Args:    map[string]interface{}{"title": title, "message": message},
	}, func(o types.Outcome) { out = o })
	return out
}

func TestDefinitionRequiresPermission(t *testing.T) {
	def := NewProvider(&mockHost{}).Definition()

	require.Len(t, def.Commands, 1)
	assert.Contains(t, def.Commands[0].Requires, types.FlagNotificationsAllowed)
}

func TestPushNotification(t *testing.T) {
	host := &mockHost{}
	p := NewProvider(host)

	out := push(p, "Order shipped", "Arriving Tuesday")
	require.True(t, out.Ok)
	assert.Equal(t, true, out.Data["delivered"])
	assert.Equal(t, []string{"Order shipped"}, host.titles)
}

func TestPushStripsMarkup(t *testing.T) {
	host := &mockHost{}
	p := NewProvider(host)

	out := push(p, `<b onclick="x()">Sale</b>`, `<script>alert(1)</script>50% off`)
	require.True(t, out.Ok)
	assert.Equal(t, "Sale", host.titles[0])
	assert.Equal(t, "50% off", host.messages[0])
}

func TestPushRejectsMarkupOnlyTitle(t *testing.T) {
	host := &mockHost{}
	p := NewProvider(host)

	out := push(p, "<script>alert(1)</script>", "body")
	require.False(t, out.Ok)
	assert.Equal(t, types.KindProviderFailure, out.Err.Kind)
	assert.Empty(t, host.titles, "nothing may reach the shade without a title")
}

package haptics

import (
	"context"
	"testing"
	"time"

	"github.com/web2native/bridge/internal/shared/types"
)

type mockHost struct {
	vibrations []time.Duration
	err        error
}

func (m *mockHost) Vibrate(ctx context.Context, d time.Duration) error {
	m.vibrations = append(m.vibrations, d)
	return m.err
}

func collect(outcomes *[]types.Outcome) types.ResolveFunc {
	return func(o types.Outcome) { *outcomes = append(*outcomes, o) }
}

func TestProviderDefinition(t *testing.T) {
	p := NewProvider(&mockHost{})
	def := p.Definition()

	if def.ID != "haptics" {
		t.Errorf("Expected ID 'haptics', got '%s'", def.ID)
	}
	if len(def.Commands) != 1 {
		t.Fatalf("Expected 1 command, got %d", len(def.Commands))
	}
	if def.Commands[0].Name != "vibrate" {
		t.Errorf("Expected command 'vibrate', got '%s'", def.Commands[0].Name)
	}
	if def.Commands[0].Async {
		t.Error("vibrate must be synchronous")
	}
}

func TestVibrate(t *testing.T) {
	host := &mockHost{}
	p := NewProvider(host)

	var outcomes []types.Outcome
	p.Invoke(context.Background(), types.Invocation{
		Command: "vibrate",
		Args:    map[string]interface{}{"durationMs": float64(300)},
	}, collect(&outcomes))

	if len(outcomes) != 1 {
		t.Fatalf("Expected 1 outcome, got %d", len(outcomes))
	}
	if !outcomes[0].Ok {
		t.Errorf("Expected success, got %+v", outcomes[0].Err)
	}
	if len(host.vibrations) != 1 || host.vibrations[0] != 300*time.Millisecond {
		t.Errorf("Expected one 300ms vibration, got %v", host.vibrations)
	}
}

func TestVibrateNegativeDuration(t *testing.T) {
	host := &mockHost{}
	p := NewProvider(host)

	var outcomes []types.Outcome
	p.Invoke(context.Background(), types.Invocation{
		Command: "vibrate",
		Args:    map[string]interface{}{"durationMs": float64(-5)},
	}, collect(&outcomes))

	if outcomes[0].Ok {
		t.Error("Expected failure for negative duration")
	}
	if outcomes[0].Err.Kind != types.KindProviderFailure {
		t.Errorf("Expected ProviderFailure, got %s", outcomes[0].Err.Kind)
	}
	if len(host.vibrations) != 0 {
		t.Error("Host must not vibrate on invalid input")
	}
}

func TestUnknownCommand(t *testing.T) {
	p := NewProvider(&mockHost{})

	var outcomes []types.Outcome
	p.Invoke(context.Background(), types.Invocation{Command: "hum"}, collect(&outcomes))

	if outcomes[0].Ok {
		t.Error("Expected failure for unknown command")
	}
}

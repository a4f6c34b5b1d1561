package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/web2native/bridge/internal/shared/types"
)

type mockProvider struct {
	id       string
	commands []types.Command
}

func (m *mockProvider) Definition() types.Service {
	return types.Service{
		ID:          m.id,
		Name:        "Mock Provider",
		Description: "A mock provider for testing",
		Commands:    m.commands,
	}
}

func (m *mockProvider) Invoke(ctx context.Context, inv types.Invocation, resolve types.ResolveFunc) {
	resolve(types.Succeed(map[string]interface{}{"result": "success"}))
}

func command(name string) types.Command {
	return types.Command{Name: name, Description: "test command"}
}

func TestRegister(t *testing.T) {
	r := New()
	p := &mockProvider{id: "haptics", commands: []types.Command{command("vibrate")}}

	if err := r.Register(p); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	entry, ok := r.Resolve("vibrate")
	if !ok {
		t.Fatal("Command should be registered")
	}
	if entry.ServiceID != "haptics" {
		t.Errorf("Expected service haptics, got %s", entry.ServiceID)
	}
}

func TestRegisterDuplicateCommand(t *testing.T) {
	r := New()
	if err := r.Register(&mockProvider{id: "a", commands: []types.Command{command("vibrate")}}); err != nil {
		t.Fatalf("First register failed: %v", err)
	}

	err := r.Register(&mockProvider{id: "b", commands: []types.Command{command("vibrate")}})
	if !errors.Is(err, ErrDuplicateCommand) {
		t.Errorf("Expected ErrDuplicateCommand, got %v", err)
	}

	// First registration must stay intact.
	entry, ok := r.Resolve("vibrate")
	if !ok || entry.ServiceID != "a" {
		t.Errorf("Original registration should survive, got %+v ok=%v", entry, ok)
	}
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name     string
		provider *mockProvider
	}{
		{"empty service id", &mockProvider{id: "", commands: []types.Command{command("x")}}},
		{"no commands", &mockProvider{id: "svc"}},
		{"empty command name", &mockProvider{id: "svc", commands: []types.Command{command("")}}},
		{"unknown param type", &mockProvider{id: "svc", commands: []types.Command{{
			Name:   "bad",
			Params: []types.Param{{Name: "x", Type: "object", Required: true}},
		}}}},
		{"duplicate param name", &mockProvider{id: "svc", commands: []types.Command{{
			Name: "bad",
			Params: []types.Param{
				{Name: "x", Type: types.ParamString, Required: true},
				{Name: "x", Type: types.ParamString, Required: true},
			},
		}}}},
		{"required after optional", &mockProvider{id: "svc", commands: []types.Command{{
			Name: "bad",
			Params: []types.Param{
				{Name: "x", Type: types.ParamString, Required: false},
				{Name: "y", Type: types.ParamString, Required: true},
			},
		}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := New().Register(tc.provider); err == nil {
				t.Error("Register should fail")
			}
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	r := New()

	if _, ok := r.Resolve("missing"); ok {
		t.Error("Resolve should report missing command")
	}
}

func TestNamesSorted(t *testing.T) {
	r := New()
	r.Register(&mockProvider{id: "svc", commands: []types.Command{
		command("vibrate"),
		command("getBatteryStatus"),
		command("finishApp"),
	}})

	names := r.Names()
	if len(names) != 3 {
		t.Fatalf("Expected 3 names, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i] < names[i-1] {
			t.Errorf("Names should be sorted: %v", names)
		}
	}
}

func TestStats(t *testing.T) {
	r := New()
	r.Register(&mockProvider{id: "nfc", commands: []types.Command{
		{Name: "startNFCScan", Async: true},
		{Name: "stopNFCScan"},
	}})
	r.Register(&mockProvider{id: "haptics", commands: []types.Command{command("vibrate")}})

	stats := r.Stats()
	if stats["total_services"] != 2 {
		t.Errorf("Expected 2 services, got %v", stats["total_services"])
	}
	if stats["total_commands"] != 3 {
		t.Errorf("Expected 3 commands, got %v", stats["total_commands"])
	}
	if stats["async_commands"] != 1 {
		t.Errorf("Expected 1 async command, got %v", stats["async_commands"])
	}
}

// Package registry maps stable command names to capability providers.
//
// Registration happens once during bridge initialization, before any command
// can be dispatched; there is no dynamic re-registration at runtime. Provider
// sets are fixed per build.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/web2native/bridge/internal/shared/types"
)

// ErrDuplicateCommand reports a command name registered twice.
var ErrDuplicateCommand = fmt.Errorf("duplicate command name")

// Entry binds one command to its owning provider.
type Entry struct {
	ServiceID string
	Command   types.Command
	Provider  types.Provider
}

// Registry manages command discovery and provider lookup.
type Registry struct {
	commands sync.Map // command name -> Entry
	services sync.Map // service id -> types.Service
	names    []string
	mu       sync.Mutex // guards names during registration
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Register adds every command of a provider bundle. Fails with
// ErrDuplicateCommand if any command name is already taken; commands
// registered before the failing one stay registered, so registration errors
// are fatal at startup by convention.
func (r *Registry) Register(provider types.Provider) error {
	def := provider.Definition()
	if def.ID == "" {
		return fmt.Errorf("service ID cannot be empty")
	}
	if len(def.Commands) == 0 {
		return fmt.Errorf("service %s declares no commands", def.ID)
	}

	for _, cmd := range def.Commands {
		if cmd.Name == "" {
			return fmt.Errorf("service %s: command name cannot be empty", def.ID)
		}
		if err := validateSchema(cmd); err != nil {
			return fmt.Errorf("service %s: command %s: %w", def.ID, cmd.Name, err)
		}

		entry := Entry{ServiceID: def.ID, Command: cmd, Provider: provider}
		if _, loaded := r.commands.LoadOrStore(cmd.Name, entry); loaded {
			return fmt.Errorf("%w: %s", ErrDuplicateCommand, cmd.Name)
		}

		r.mu.Lock()
		r.names = append(r.names, cmd.Name)
		r.mu.Unlock()
	}

	r.services.Store(def.ID, def)
	return nil
}

// Resolve retrieves the entry for a command name.
func (r *Registry) Resolve(name string) (Entry, bool) {
	val, ok := r.commands.Load(name)
	if !ok {
		return Entry{}, false
	}
	return val.(Entry), true
}

// Names returns all registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.names))
	copy(out, r.names)
	sort.Strings(out)
	return out
}

// List returns all registered service definitions, sorted by ID.
func (r *Registry) List() []types.Service {
	var services []types.Service
	r.services.Range(func(_, value interface{}) bool {
		services = append(services, value.(types.Service))
		return true
	})
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services
}

// Stats returns registry statistics.
func (r *Registry) Stats() map[string]interface{} {
	var services, commands, async int
	r.services.Range(func(_, value interface{}) bool {
		def := value.(types.Service)
		services++
		commands += len(def.Commands)
		for _, cmd := range def.Commands {
			if cmd.Async {
				async++
			}
		}
		return true
	})

	return map[string]interface{}{
		"total_services": services,
		"total_commands": commands,
		"async_commands": async,
	}
}

// validateSchema rejects schemas that cannot be bound positionally: params
// must have unique names and no required param may follow an optional one.
func validateSchema(cmd types.Command) error {
	seen := make(map[string]bool, len(cmd.Params))
	optionalSeen := false

	for _, p := range cmd.Params {
		if p.Name == "" {
			return fmt.Errorf("param name cannot be empty")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate param name %q", p.Name)
		}
		seen[p.Name] = true

		switch p.Type {
		case types.ParamString, types.ParamNumber, types.ParamBool:
		default:
			return fmt.Errorf("param %q has unknown type %q", p.Name, p.Type)
		}

		if !p.Required {
			optionalSeen = true
		} else if optionalSeen {
			return fmt.Errorf("required param %q follows an optional param", p.Name)
		}
	}
	return nil
}

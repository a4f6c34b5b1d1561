package types

import "context"

// ParamType enumerates the JSON scalar types a command argument may carry.
type ParamType string

const (
	ParamString ParamType = "string"
	ParamNumber ParamType = "number"
	ParamBool   ParamType = "boolean"
)

// Service is a provider bundle definition.
type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Commands    []Command `json:"commands"`
}

// Command describes one page-callable command. Registered once at bridge
// initialization and immutable afterwards.
type Command struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params,omitempty"`
	Requires    []Flag  `json:"requires,omitempty"`
	Forbids     []Flag  `json:"forbids,omitempty"`
	Async       bool    `json:"async,omitempty"`
}

// Param is one positional argument slot of a command schema.
type Param struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required"`
}

// Invocation carries schema-bound arguments to a provider. Args is keyed by
// param name after positional binding.
type Invocation struct {
	RequestID string
	Command   string
	Args      map[string]interface{}
}

// String returns a string argument by param name.
func (inv Invocation) String(name string) (string, bool) {
	v, ok := inv.Args[name].(string)
	return v, ok
}

// Number returns a numeric argument by param name.
func (inv Invocation) Number(name string) (float64, bool) {
	v, ok := inv.Args[name].(float64)
	return v, ok
}

// Bool returns a boolean argument by param name.
func (inv Invocation) Bool(name string) (bool, bool) {
	v, ok := inv.Args[name].(bool)
	return v, ok
}

// ResolveFunc delivers a provider's resolution for one invocation. It may be
// called from any goroutine; only the first call for a request id wins.
type ResolveFunc func(Outcome)

// Provider is a capability provider bundle. Invoke must not block the calling
// context beyond scheduling; synchronous commands resolve inline, asynchronous
// ones call resolve later from their own goroutine.
type Provider interface {
	Definition() Service
	Invoke(ctx context.Context, inv Invocation, resolve ResolveFunc)
}

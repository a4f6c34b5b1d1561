// Package policy evaluates whether a command is currently permitted.
//
// The Flags store is the process-wide mutable capability state. Mutation
// rights are deliberately narrow: the enforcer only reads, and each provider
// receives a Writer bound to the flags it owns (the screen provider flips
// SecureScreenActive, the bluetooth provider flips BluetoothEnabled). Host
// lifecycle code reports external changes through Set.
package policy

import (
	"fmt"
	"sync"

	"github.com/web2native/bridge/internal/shared/types"
)

// Flags holds current capability flag state, guarded for concurrent access
// from provider callbacks and the dispatch path.
type Flags struct {
	mu    sync.RWMutex
	flags map[types.Flag]bool
}

// NewFlags creates a flag store seeded with initial device state.
func NewFlags(seed map[types.Flag]bool) *Flags {
	flags := make(map[types.Flag]bool, len(seed))
	for flag, value := range seed {
		flags[flag] = value
	}
	return &Flags{flags: flags}
}

// Get reads one flag. Absent flags read false.
func (f *Flags) Get(flag types.Flag) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.flags[flag]
}

// Set writes one flag. This is the host's onFlagChanged entry point.
func (f *Flags) Set(flag types.Flag, value bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[flag] = value
}

// Writer returns a setter bound to a single flag, handed to the provider
// that owns it.
func (f *Flags) Writer(flag types.Flag) func(bool) {
	return func(value bool) {
		f.Set(flag, value)
	}
}

// Snapshot copies current flag state for debug output.
func (f *Flags) Snapshot() map[types.Flag]bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[types.Flag]bool, len(f.flags))
	for flag, value := range f.flags {
		out[flag] = value
	}
	return out
}

// Decision is the enforcer's answer for one authorization.
type Decision struct {
	Allowed bool
	Kind    types.ErrorKind
	Flag    types.Flag
	Message string
}

// Enforcer authorizes commands against current flag state. It never mutates
// flags.
type Enforcer struct {
	flags *Flags
}

// NewEnforcer creates an enforcer reading from the given store.
func NewEnforcer(flags *Flags) *Enforcer {
	return &Enforcer{flags: flags}
}

// Authorize evaluates a command's flag requirements against current state.
// Runtime-mutable flags are read fresh on every call, never cached; the same
// command may authorize differently between two dispatches. Requires are
// checked in declared order, then Forbids; the first failure wins.
func (e *Enforcer) Authorize(cmd types.Command) Decision {
	for _, flag := range cmd.Requires {
		if !e.flags.Get(flag) {
			return Decision{
				Kind:    flag.DenyKind(),
				Flag:    flag,
				Message: requireMessage(flag),
			}
		}
	}

	for _, flag := range cmd.Forbids {
		if e.flags.Get(flag) {
			return Decision{
				Kind:    types.KindPolicyBlocked,
				Flag:    flag,
				Message: fmt.Sprintf("blocked while %s is set", flag),
			}
		}
	}

	return Decision{Allowed: true}
}

func requireMessage(flag types.Flag) string {
	switch flag.Class() {
	case types.ClassPermission:
		return fmt.Sprintf("permission %s is not granted", flag)
	case types.ClassHardware:
		return fmt.Sprintf("capability %s is not present on this device", flag)
	default:
		return fmt.Sprintf("required state %s is not active", flag)
	}
}

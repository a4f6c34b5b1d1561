// Package resilience provides a circuit breaker for outbound calls.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker refuses calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the breaker state.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Breaker trips after a run of consecutive failures and, after a cooldown,
// lets a single probe through before closing again.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	onChange  func(name string, from, to State)

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// Option configures a breaker.
type Option func(*Breaker)

// WithStateChange installs a state transition callback.
func WithStateChange(fn func(name string, from, to State)) Option {
	return func(b *Breaker) { b.onChange = fn }
}

// New creates a breaker that opens after threshold consecutive failures and
// probes again after cooldown. threshold <= 0 selects 5, cooldown <= 0 selects
// 30 seconds.
func New(name string, threshold int, cooldown time.Duration, opts ...Option) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	b := &Breaker{name: name, threshold: threshold, cooldown: cooldown}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the breaker name.
func (b *Breaker) Name() string { return b.name }

// State returns the current state, accounting for cooldown expiry.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState(time.Now())
}

// Execute runs fn unless the breaker is open. The probe slot in half-open
// state admits one call at a time.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.admit(time.Now()); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			b.report(false)
			panic(r)
		}
	}()

	err := fn()
	b.report(err == nil)
	return err
}

func (b *Breaker) admit(now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentState(now) {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.probing {
			return ErrCircuitOpen
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) report(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	state := b.currentState(now)
	b.probing = false

	if success {
		b.failures = 0
		if state == StateHalfOpen {
			b.setState(StateClosed, now)
		}
		return
	}

	b.failures++
	if state == StateHalfOpen || b.failures >= b.threshold {
		b.setState(StateOpen, now)
	}
}

// currentState must be called with the lock held.
func (b *Breaker) currentState(now time.Time) State {
	if b.state == StateOpen && now.Sub(b.openedAt) >= b.cooldown {
		b.setState(StateHalfOpen, now)
	}
	return b.state
}

// setState must be called with the lock held.
func (b *Breaker) setState(state State, now time.Time) {
	if b.state == state {
		return
	}
	prev := b.state
	b.state = state

	if state == StateOpen {
		b.openedAt = now
		b.failures = 0
	}

	if b.onChange != nil {
		b.onChange(b.name, prev, state)
	}
}

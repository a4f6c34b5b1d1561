// Package correlation owns the process-wide pending request table.
//
// Every dispatched command has exactly one entry here until it resolves or is
// cancelled. Entries are deleted at terminal transitions, which is what makes
// exactly-once resolution structural: a second resolve, a provider double
// callback, or a callback racing a cancellation all observe ErrUnknownRequest
// instead of reaching the page.
//
// Lock ordering: the table mutex is a leaf lock. Nothing is called while it
// is held, so provider callbacks and dispatch may contend freely.
package correlation

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/web2native/bridge/internal/shared/types"
)

var (
	// ErrConflict reports a request id that is already pending.
	ErrConflict = errors.New("request id already pending")
	// ErrUnknownRequest reports a resolve or cancel for an id with no
	// pending entry.
	ErrUnknownRequest = errors.New("no pending entry for request id")
)

// State tracks a live entry's position in its lifecycle. Terminal states are
// never stored; they are the transitions that delete the entry.
type State string

const (
	StateDispatched       State = "dispatched"
	StateAwaitingProvider State = "awaiting_provider"
)

// Pending is one in-flight request. Owned exclusively by the table; callers
// receive copies.
type Pending struct {
	RequestID   string        `json:"request_id"`
	ServiceID   string        `json:"service_id"`
	Command     types.Command `json:"command"`
	SubmittedAt time.Time     `json:"submitted_at"`
	State       State         `json:"state"`
}

// Resolution is handed back when an entry reaches its terminal resolve.
type Resolution struct {
	RequestID string
	ServiceID string
	Command   types.Command
	Outcome   types.Outcome
	Elapsed   time.Duration
}

// Table maps request ids to pending entries.
type Table struct {
	mu      sync.Mutex
	entries map[string]*Pending
}

// NewTable creates an empty correlation table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Pending)}
}

// Begin records a new pending entry. Fails with ErrConflict if the id is
// already pending; the existing entry is untouched.
func (t *Table) Begin(requestID, serviceID string, cmd types.Command) (Pending, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[requestID]; exists {
		return Pending{}, ErrConflict
	}

	entry := &Pending{
		RequestID:   requestID,
		ServiceID:   serviceID,
		Command:     cmd,
		SubmittedAt: time.Now(),
		State:       StateDispatched,
	}
	t.entries[requestID] = entry
	return *entry, nil
}

// MarkAwaiting transitions an entry to AwaitingProvider after an async
// provider has returned without resolving. A missing entry means the provider
// already resolved inline; that is not an error.
func (t *Table) MarkAwaiting(requestID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, ok := t.entries[requestID]; ok {
		entry.State = StateAwaitingProvider
	}
}

// Resolve completes a pending entry and removes it. Only the first of a
// resolve/cancel pair for a given id wins; the loser observes
// ErrUnknownRequest.
func (t *Table) Resolve(requestID string, outcome types.Outcome) (Resolution, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[requestID]
	if !ok {
		return Resolution{}, ErrUnknownRequest
	}
	delete(t.entries, requestID)

	return Resolution{
		RequestID: requestID,
		ServiceID: entry.ServiceID,
		Command:   entry.Command,
		Outcome:   outcome,
		Elapsed:   time.Since(entry.SubmittedAt),
	}, nil
}

// Cancel discards a pending entry without producing a resolution. Any later
// provider callback for the id observes ErrUnknownRequest and is swallowed by
// the gateway.
func (t *Table) Cancel(requestID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[requestID]; !ok {
		return ErrUnknownRequest
	}
	delete(t.entries, requestID)
	return nil
}

// CancelAll discards every pending entry and reports how many were dropped.
// Fired when the hosting page unloads; stale callbacks target a page context
// that no longer exists.
func (t *Table) CancelAll() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.entries)
	t.entries = make(map[string]*Pending)
	return n
}

// Len reports the number of pending entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Snapshot copies the pending set, oldest first, for the debug surface.
func (t *Table) Snapshot() []Pending {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Pending, 0, len(t.entries))
	for _, entry := range t.entries {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out
}

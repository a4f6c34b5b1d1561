// Package audit records authorization decisions and command outcomes.
//
// The trail exists for the security posture around sensitive toggles: when a
// page is denied a capability, the denial, its reason, and the request that
// triggered it stay inspectable after the fact. Stores are append-only from
// the dispatch path; reads serve the debug surface.
package audit

import (
	"sync"
	"time"
)

// Stage identifies where in the dispatch lifecycle an event was recorded.
type Stage string

const (
	StageAuthorization Stage = "authorization"
	StageRejection     Stage = "rejection"
	StageResolution    Stage = "resolution"
	StageCancellation  Stage = "cancellation"
)

// Event is one audit record.
type Event struct {
	Time      time.Time `json:"time"`
	Stage     Stage     `json:"stage"`
	RequestID string    `json:"request_id,omitempty"`
	Command   string    `json:"command,omitempty"`
	Allowed   bool      `json:"allowed"`
	Kind      string    `json:"kind,omitempty"`
	Message   string    `json:"message,omitempty"`
	ElapsedMs int64     `json:"elapsed_ms,omitempty"`
}

// Recorder is the write side used by the dispatch path.
type Recorder interface {
	Record(e Event) error
}

// Reader is the query side used by the debug surface.
type Reader interface {
	Recent(n int) ([]Event, error)
}

// Store combines both sides.
type Store interface {
	Recorder
	Reader
	Close() error
}

// Memory is a bounded in-memory audit store. The oldest events are dropped
// once capacity is reached.
type Memory struct {
	mu       sync.Mutex
	events   []Event
	capacity int
}

// NewMemory creates a memory store. capacity <= 0 selects 1000.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Memory{capacity: capacity}
}

// Record appends an event, evicting the oldest past capacity.
func (m *Memory) Record(e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, e)
	if len(m.events) > m.capacity {
		m.events = m.events[len(m.events)-m.capacity:]
	}
	return nil
}

// Recent returns up to n events, newest first.
func (m *Memory) Recent(n int) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n <= 0 || n > len(m.events) {
		n = len(m.events)
	}

	out := make([]Event, 0, n)
	for i := len(m.events) - 1; i >= len(m.events)-n; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}

// Close is a no-op for the memory store.
func (m *Memory) Close() error { return nil }

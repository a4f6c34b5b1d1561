package audit

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func denialEvent(requestID string) Event {
	return Event{
		Time:      time.Now(),
		Stage:     StageAuthorization,
		RequestID: requestID,
		Command:   "loginBiometric",
		Allowed:   false,
		Kind:      "PermissionMissing",
		Message:   "permission biometric_enrolled is not granted",
	}
}

func TestMemoryRecordAndRecent(t *testing.T) {
	store := NewMemory(10)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Record(denialEvent(fmt.Sprintf("req_%d", i))))
	}

	events, err := store.Recent(2)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Newest first.
	assert.Equal(t, "req_2", events[0].RequestID)
	assert.Equal(t, "req_1", events[1].RequestID)
}

func TestMemoryEviction(t *testing.T) {
	store := NewMemory(3)

	for i := 0; i < 5; i++ {
		store.Record(denialEvent(fmt.Sprintf("req_%d", i)))
	}

	events, err := store.Recent(0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "req_4", events[0].RequestID)
	assert.Equal(t, "req_2", events[2].RequestID)
}

func TestSQLiteRecordAndRecent(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Record(denialEvent("req_1")))
	require.NoError(t, store.Record(Event{
		Stage:     StageResolution,
		RequestID: "req_2",
		Command:   "vibrate",
		Allowed:   true,
		ElapsedMs: 12,
	}))

	events, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "req_2", events[0].RequestID)
	assert.Equal(t, StageResolution, events[0].Stage)
	assert.True(t, events[0].Allowed)
	assert.Equal(t, int64(12), events[0].ElapsedMs)

	assert.Equal(t, "req_1", events[1].RequestID)
	assert.Equal(t, "PermissionMissing", events[1].Kind)
	assert.False(t, events[1].Allowed)
	assert.False(t, events[1].Time.IsZero())
}

func TestSQLiteRecentLimit(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer store.Close()

	for i := 0; i < 20; i++ {
		require.NoError(t, store.Record(denialEvent(fmt.Sprintf("req_%d", i))))
	}

	events, err := store.Recent(5)
	require.NoError(t, err)
	assert.Len(t, events, 5)
	assert.Equal(t, "req_19", events[0].RequestID)
}

func TestOpenSQLiteEmptyPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	assert.Error(t, err)
}

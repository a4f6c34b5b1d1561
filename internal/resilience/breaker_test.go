package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failN(b *Breaker, n int) {
	for i := 0; i < n; i++ {
		b.Execute(func() error { return errBoom })
	}
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := New("test", 3, time.Minute)
	assert.Equal(t, StateClosed, b.State())

	failN(b, 2)
	assert.Equal(t, StateClosed, b.State(), "below threshold stays closed")

	failN(b, 1)
	assert.Equal(t, StateOpen, b.State())

	err := b.Execute(func() error {
		t.Fatal("open breaker must not run the call")
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestBreakerSuccessResetsRun(t *testing.T) {
	b := New("test", 3, time.Minute)

	failN(b, 2)
	require.NoError(t, b.Execute(func() error { return nil }))
	failN(b, 2)

	assert.Equal(t, StateClosed, b.State(), "non-consecutive failures must not trip")
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := New("test", 1, 10*time.Millisecond)

	failN(b, 1)
	require.Equal(t, StateOpen, b.State())

	time.Sleep(15 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, b.State())

	// Probe success closes the circuit.
	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerProbeFailureReopens(t *testing.T) {
	b := New("test", 1, 10*time.Millisecond)

	failN(b, 1)
	time.Sleep(15 * time.Millisecond)
	require.Equal(t, StateHalfOpen, b.State())

	err := b.Execute(func() error { return errBoom })
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerSingleProbe(t *testing.T) {
	b := New("test", 1, 10*time.Millisecond)

	failN(b, 1)
	time.Sleep(15 * time.Millisecond)
	require.Equal(t, StateHalfOpen, b.State())

	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Execute(func() error {
			<-release
			return nil
		})
	}()

	// While the probe is in flight, everything else is refused.
	assert.Eventually(t, func() bool {
		return errors.Is(b.Execute(func() error { return nil }), ErrCircuitOpen)
	}, time.Second, time.Millisecond)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerStateChangeCallback(t *testing.T) {
	var transitions []string
	b := New("preflight", 1, time.Minute, WithStateChange(func(name string, from, to State) {
		transitions = append(transitions, from.String()+">"+to.String())
	}))

	failN(b, 1)
	assert.Equal(t, []string{"closed>open"}, transitions)
	assert.Equal(t, "preflight", b.Name())
}

func TestBreakerPanicCountsAsFailure(t *testing.T) {
	b := New("test", 1, time.Minute)

	assert.Panics(t, func() {
		b.Execute(func() error { panic("kaboom") })
	})
	assert.Equal(t, StateOpen, b.State())
}

package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web2native/bridge/internal/resilience"
)

func TestCheckReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(time.Second)
	assert.NoError(t, c.Check(context.Background(), srv.URL))
}

func TestCheckClientErrorIsReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	// A 404 still means somebody answers at that address.
	c := New(time.Second)
	assert.NoError(t, c.Check(context.Background(), srv.URL))
}

func TestCheckHeadFallsBackToGet(t *testing.T) {
	var sawGet bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			sawGet = true
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	c := New(time.Second)
	require.NoError(t, c.Check(context.Background(), srv.URL))
	assert.True(t, sawGet)
}

func TestCheckServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(time.Second)
	err := c.Check(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestCheckUnreachableOpensBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	c := New(200 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.Error(t, c.Check(context.Background(), srv.URL))
	}

	assert.Equal(t, resilience.StateOpen, c.BreakerState())
	assert.ErrorIs(t, c.Check(context.Background(), srv.URL), resilience.ErrCircuitOpen)
}

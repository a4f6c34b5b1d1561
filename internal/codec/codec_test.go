package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web2native/bridge/internal/shared/types"
)

func TestDecodeCommand(t *testing.T) {
	c := New(0)

	env, err := c.DecodeCommand([]byte(`{"id":"req_1","cmd":"vibrate","args":[500]}`))
	require.NoError(t, err)

	assert.Equal(t, "req_1", env.RequestID)
	assert.Equal(t, "vibrate", env.Name)
	require.Len(t, env.Args, 1)
	assert.Equal(t, float64(500), env.Args[0])
}

func TestDecodeCommandNoArgs(t *testing.T) {
	c := New(0)

	env, err := c.DecodeCommand([]byte(`{"id":"req_2","cmd":"getBatteryStatus"}`))
	require.NoError(t, err)

	assert.Equal(t, "getBatteryStatus", env.Name)
	assert.Empty(t, env.Args)
}

func TestDecodeCommandMalformed(t *testing.T) {
	c := New(0)

	cases := []struct {
		name string
		raw  string
	}{
		{"truncated json", `{"id":"req_3","cmd":`},
		{"args not an array", `{"id":"req_3","cmd":"vibrate","args":500}`},
		{"not an object", `[1,2,3]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.DecodeCommand([]byte(tc.raw))
			assert.Error(t, err)
		})
	}
}

func TestDecodeCommandMissingName(t *testing.T) {
	c := New(0)

	env, err := c.DecodeCommand([]byte(`{"id":"req_4","args":[]}`))
	require.ErrorIs(t, err, ErrMissingCommand)

	// Request id survives so the error reply can be addressed.
	assert.Equal(t, "req_4", env.RequestID)
}

func TestDecodeCommandTooLarge(t *testing.T) {
	c := New(128)

	raw := `{"id":"req_5","cmd":"copyToClipboard","args":["` + strings.Repeat("x", 256) + `"]}`
	_, err := c.DecodeCommand([]byte(raw))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestEncodeResultOk(t *testing.T) {
	c := New(0)

	data, err := c.EncodeResult(types.Succeed(map[string]interface{}{
		"level":    87.0,
		"charging": true,
	}).Envelope("req_6"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"req_6","ok":true,"data":{"level":87,"charging":true}}`, string(data))
}

func TestEncodeResultVoid(t *testing.T) {
	c := New(0)

	data, err := c.EncodeResult(types.Succeed(nil).Envelope("req_7"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"req_7","ok":true}`, string(data))
}

func TestEncodeResultError(t *testing.T) {
	c := New(0)

	data, err := c.EncodeResult(types.Fail(types.KindPolicyBlocked, "secure screen active").Envelope("req_8"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"req_8","ok":false,"error":{"kind":"PolicyBlocked","message":"secure screen active"}}`, string(data))
}

func TestRoundTripPreservesTaxonomy(t *testing.T) {
	c := New(0)

	kinds := []types.ErrorKind{
		types.KindUnknownCommand,
		types.KindMalformedCommand,
		types.KindPermissionMissing,
		types.KindCapabilityUnavailable,
		types.KindPolicyBlocked,
		types.KindProviderFailure,
		types.KindConflict,
	}

	for _, kind := range kinds {
		data, err := c.EncodeResult(types.Fail(kind, "x").Envelope("req_9"))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"kind":"`+string(kind)+`"`)
	}
}

// Package codec converts between the page's textual command/result
// representation and the gateway's typed envelopes.
//
// Wire format, inbound: {"id": "...", "cmd": "...", "args": [...]}
// Wire format, outbound: {"id": "...", "ok": true, "data": {...}} or
// {"id": "...", "ok": false, "error": {"kind": "...", "message": "..."}}
package codec

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/web2native/bridge/internal/shared/types"
)

// DefaultMaxBytes bounds inbound envelope size when no limit is configured.
const DefaultMaxBytes = 64 * 1024

var (
	// ErrTooLarge reports an inbound envelope above the size limit.
	ErrTooLarge = errors.New("envelope exceeds size limit")
	// ErrMissingCommand reports an envelope without a command name.
	ErrMissingCommand = errors.New("envelope has no command name")
)

// Codec encodes and decodes bridge envelopes.
type Codec struct {
	maxBytes int
}

// New creates a codec. maxBytes <= 0 selects DefaultMaxBytes.
func New(maxBytes int) *Codec {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Codec{maxBytes: maxBytes}
}

// MaxBytes reports the inbound envelope size limit.
func (c *Codec) MaxBytes() int {
	return c.maxBytes
}

// DecodeCommand parses a raw page command. On validation errors the returned
// envelope still carries whatever fields parsed, so callers can address an
// error reply to the originating request id when one is present.
func (c *Codec) DecodeCommand(raw []byte) (types.CommandEnvelope, error) {
	var env types.CommandEnvelope

	if len(raw) > c.maxBytes {
		return env, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(raw), c.maxBytes)
	}
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("invalid command envelope: %w", err)
	}
	if env.Name == "" {
		return env, ErrMissingCommand
	}
	return env, nil
}

// EncodeResult serializes a result envelope for delivery to the page.
func (c *Codec) EncodeResult(env types.ResultEnvelope) ([]byte, error) {
	data, err := sonic.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode result %s: %w", env.RequestID, err)
	}
	return data, nil
}

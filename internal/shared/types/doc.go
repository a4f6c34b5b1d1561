// Package types provides shared data structures for the bridge core.
//
// This package defines the types exchanged between the embedded page, the
// gateway, and capability providers, keeping every component on one wire
// vocabulary.
//
// Envelope Types:
//   - CommandEnvelope: Decoded page command (id, name, positional args)
//   - ResultEnvelope: The single result delivered back for a request id
//   - Outcome: Provider-side resolution before it is addressed to a request
//   - ErrorInfo, ErrorKind: Typed error taxonomy surfaced to the page
//
// Capability Types:
//   - Service: Provider bundle definition
//   - Command: One page-callable command with schema and flag requirements
//   - Param, ParamType: Positional argument schema
//   - Flag, FlagClass: Capability flags gating authorization
//
// Dispatch Types:
//   - Invocation: Bound arguments handed to a provider
//   - ResolveFunc: The single-shot resolution callback
//
// Example Usage:
//
//	cmd := types.Command{
//	    Name:     "toggleFlashlight",
//	    Params:   []types.Param{{Name: "status", Type: types.ParamBool, Required: true}},
//	    Requires: []types.Flag{types.FlagFlashlightAvailable},
//	}
package types

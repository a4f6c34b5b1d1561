// Package web carries the embedded page assets served by the devhost: the
// bridge shim and a demo page exercising every registered command.
package web

import _ "embed"

// BridgeJS is the page-side shim served at /bridge.js.
//
//go:embed bridge.js
var BridgeJS []byte

// IndexHTML is the demo page served at /.
//
//go:embed index.html
var IndexHTML []byte

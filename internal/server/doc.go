// Package server assembles the devhost: it builds the simulated device from a
// profile, registers every capability provider, and exposes the page-facing
// HTTP surface.
//
// Routes:
//   - GET  /           demo page exercising every registered command
//   - GET  /bridge.js  page-side shim
//   - GET  /ws         page transport (optional pairing token)
//   - GET  /health     liveness plus registry and session counts
//   - GET  /metrics    Prometheus exposition
//   - GET  /debug/*    services, pending requests, audit trail, device state
//   - POST /debug/tag  inject an NFC tag into a waiting scan
//
// The server owns process-wide pieces (device, flags, audit store); each
// connected page gets its own gateway through the ws hub.
package server

// Package ws carries the page transport: one WebSocket session per connected
// page, each with its own dispatch gateway and correlation table.
//
// Frame formats (Page → Host):
//   - command envelope: {"id": "...", "cmd": "...", "args": [...]}
//   - unload: page context is going away, cancel everything in flight
//   - ping: keep-alive probe, answered with pong
//
// Frame formats (Host → Page):
//   - result envelope: {"id": "...", "ok": ...}
//   - reload: host asked the page to reload itself
//   - pong: keep-alive answer
//
// Lifecycle:
//   - Upgrade assigns a session id and builds a per-session gateway so
//     request ids from different pages never collide
//   - An unload frame and a dropped socket both cancel the session's
//     pending requests; cancelled requests never produce a result frame
//   - A per-session token bucket answers PolicyBlocked when a page floods
//     the bridge with commands
//
// Example Usage:
//
//	hub, _ := ws.NewHub(deps)
//	router.GET("/ws", hub.Handle)
package ws

// Package middleware provides HTTP middleware for the devhost server.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing for pages served off-host
//   - RateLimit: Per-IP token bucket rate limiting with idle eviction
//   - GlobalRateLimit: Shared token bucket across all clients
//   - PairingToken: Optional shared-secret gate for the bridge socket
//
// Rate Limiting:
//   - Per-IP tracking with automatic cleanup of idle clients
//   - Token bucket algorithm (golang.org/x/time/rate)
//   - Configurable RPS and burst capacity
//
// Pairing:
//   - Token accepted as a "token" query parameter or bearer header
//   - Constant-time comparison
//   - Empty configured token disables the check
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
//	router.GET("/ws", middleware.PairingToken(cfg.PairingToken), handler)
package middleware

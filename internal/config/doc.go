// Package config provides 12-factor configuration management for the devhost.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, pairing token)
//   - Bridge: Dispatch limits (envelope size, per-session command rate)
//   - Profile: Device profile file selection
//   - Browser: External-browser preflight behavior
//   - Audit: Authorization audit trail storage
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Devhost running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, PAIRING_TOKEN
//   - BRIDGE_MAX_ENVELOPE_BYTES, BRIDGE_SESSION_RPS, BRIDGE_SESSION_BURST
//   - DEVICE_PROFILE, BROWSER_PREFLIGHT, BROWSER_PREFLIGHT_TIMEOUT
//   - AUDIT_ENABLED, AUDIT_DB, AUDIT_CAPACITY
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config

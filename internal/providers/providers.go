// Package providers bundles the capability providers of the bridge.
//
// Each provider implements the dispatch-facing half of one device capability
// through a standardized command interface, backed by a narrow slice of the
// host surface. Authorization gates (required permissions, hardware presence,
// forbidden states) live in the command definitions; providers run only after
// those gates pass.
//
// Available Providers:
//   - Biometric: authentication prompt (async)
//   - Haptics: vibration feedback
//   - Clipboard: copy page text to the device clipboard
//   - Browser: open URLs in the system browser, optional preflight
//   - NFC: tag scan lifecycle (async)
//   - Flashlight, Bluetooth: hardware toggles
//   - Notify: local notifications, sanitized
//   - Power: battery and power-save reads
//   - Screen: secure-screen and wake-lock window state
//   - Device: identity and package info
//   - Shell: cache wipe, reload, finish
//
// Provider Interface:
//   - Definition(): Returns service metadata and command definitions
//   - Invoke(): Runs one bound invocation, resolving exactly once
package providers

import (
	"github.com/web2native/bridge/internal/host"
	"github.com/web2native/bridge/internal/policy"
	"github.com/web2native/bridge/internal/providers/biometric"
	"github.com/web2native/bridge/internal/providers/bluetooth"
	"github.com/web2native/bridge/internal/providers/browser"
	"github.com/web2native/bridge/internal/providers/clipboard"
	"github.com/web2native/bridge/internal/providers/device"
	"github.com/web2native/bridge/internal/providers/flashlight"
	"github.com/web2native/bridge/internal/providers/haptics"
	"github.com/web2native/bridge/internal/providers/nfc"
	"github.com/web2native/bridge/internal/providers/notify"
	"github.com/web2native/bridge/internal/providers/power"
	"github.com/web2native/bridge/internal/providers/screen"
	"github.com/web2native/bridge/internal/providers/shell"
	"github.com/web2native/bridge/internal/shared/types"
)

// Deps carries what the provider bundles need.
type Deps struct {
	Surface   host.Surface
	Flags     *policy.Flags
	Preflight browser.Preflighter
}

// All builds every provider against one device surface. Flag writers are
// handed only to the providers that own the respective flag.
func All(deps Deps) []types.Provider {
	return []types.Provider{
		biometric.NewProvider(deps.Surface),
		haptics.NewProvider(deps.Surface),
		clipboard.NewProvider(deps.Surface),
		browser.NewProvider(deps.Surface, deps.Preflight),
		nfc.NewProvider(deps.Surface, deps.Flags.Writer(types.FlagNFCScanActive)),
		flashlight.NewProvider(deps.Surface),
		bluetooth.NewProvider(deps.Surface, deps.Flags.Writer(types.FlagBluetoothEnabled)),
		notify.NewProvider(deps.Surface),
		power.NewProvider(deps.Surface),
		screen.NewProvider(deps.Surface, deps.Flags.Writer(types.FlagSecureScreenActive)),
		device.NewProvider(deps.Surface),
		shell.NewProvider(deps.Surface),
	}
}

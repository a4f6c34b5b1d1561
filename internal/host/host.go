// Package host defines the surface the bridge expects from the platform shell.
//
// On a phone these calls cross into the native side of the WebView shell; in
// this repo the devhost's simulated device implements the same surface so the
// full dispatch loop runs on a workstation. Providers depend on narrow
// per-package slices of it, never on the whole interface.
package host

import (
	"context"
	"fmt"
	"time"
)

// Identity is the static device identity reported to pages.
type Identity struct {
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Platform     string `json:"platform"`
	OSVersion    string `json:"osVersion"`
	PackageName  string `json:"packageName"`
}

// Description composes the human-readable device string, e.g.
// "Samsung SM-S901B (Android 14)".
func (id Identity) Description() string {
	return fmt.Sprintf("%s %s (%s %s)", id.Manufacturer, id.Model, id.Platform, id.OSVersion)
}

// BatteryStatus is one combined battery read.
type BatteryStatus struct {
	Level    float64 `json:"level"`
	Charging bool    `json:"charging"`
}

// Tag is one discovered NFC tag.
type Tag struct {
	ID      string `json:"tagId"`
	Payload string `json:"payload"`
}

// Surface is the full device surface. The simulated device implements all of
// it; a real shell would back each method with the platform API.
type Surface interface {
	Identity() Identity

	Vibrate(ctx context.Context, d time.Duration) error
	WriteClipboard(ctx context.Context, text string) error
	OpenExternal(ctx context.Context, url string) error
	Notify(ctx context.Context, title, message string) error

	Battery(ctx context.Context) (BatteryStatus, error)
	PowerSaveMode(ctx context.Context) (bool, error)

	SetFlashlight(ctx context.Context, on bool) error
	SetBluetooth(ctx context.Context, on bool) error
	SetSecureScreen(ctx context.Context, active bool) error
	SetKeepScreenOn(ctx context.Context, on bool) error

	// PromptBiometric blocks until the user answers the prompt or ctx ends.
	PromptBiometric(ctx context.Context) (bool, error)

	// AwaitTag blocks until a tag is discovered or ctx ends.
	AwaitTag(ctx context.Context) (Tag, error)

	ClearCache(ctx context.Context) error
	Reload(ctx context.Context) error
	Finish(ctx context.Context) error
}

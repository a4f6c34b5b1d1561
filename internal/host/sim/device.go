// Package sim is an in-memory device implementing the host surface.
//
// It behaves the way a phone-side shell would as seen from the bridge: setters
// are idempotent, reads reflect current state, prompts and tag discovery take
// profile-configured time. Every surface call lands in an event log so tests
// and the debug routes can observe what the "device" did.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/web2native/bridge/internal/host"
	"github.com/web2native/bridge/internal/logging"
	"github.com/web2native/bridge/internal/profile"
)

const maxEvents = 1000

// Event is one recorded surface call.
type Event struct {
	Time   time.Time `json:"time"`
	Kind   string    `json:"kind"`
	Detail string    `json:"detail,omitempty"`
}

// Hooks let the embedding host react to page-affecting calls. A devhost wires
// Reload and Finish to its active page sessions; unset hooks are no-ops.
type Hooks struct {
	Reload func(ctx context.Context) error
	Finish func(ctx context.Context) error
}

// Device is the simulated phone.
type Device struct {
	identity  host.Identity
	biometric profile.Biometric
	nfc       profile.NFC
	sysClip   bool

	mu           sync.Mutex
	clip         string
	flashlightOn bool
	bluetoothOn  bool
	secureScreen bool
	keepScreenOn bool
	battery      host.BatteryStatus
	powerSave    bool
	events       []Event
	hooks        Hooks

	tags   chan host.Tag
	logger *logging.Logger
}

// New builds a device from a profile.
func New(p profile.Profile, logger *logging.Logger) *Device {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Device{
		identity:  p.Identity(),
		biometric: p.Biometric,
		nfc:       p.NFC,
		sysClip:   p.Clipboard.Mode == profile.ClipboardSystem,
		battery:   host.BatteryStatus{Level: p.Battery.Level, Charging: p.Battery.Charging},
		powerSave: p.PowerSave,
		tags:      make(chan host.Tag, 4),
		logger:    logger.Component("device"),
	}
}

// SetHooks installs lifecycle hooks. Call before serving traffic.
func (d *Device) SetHooks(h Hooks) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = h
}

func (d *Device) record(kind, detail string) {
	d.mu.Lock()
	d.events = append(d.events, Event{Time: time.Now(), Kind: kind, Detail: detail})
	if len(d.events) > maxEvents {
		d.events = d.events[len(d.events)-maxEvents:]
	}
	d.mu.Unlock()

	d.logger.Debug("device event", zap.String("kind", kind), zap.String("detail", detail))
}

// Events returns a copy of the event log, oldest first.
func (d *Device) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}

// Identity reports the static device identity.
func (d *Device) Identity() host.Identity { return d.identity }

// Vibrate records a vibration of the given duration.
func (d *Device) Vibrate(ctx context.Context, dur time.Duration) error {
	d.record("vibrate", dur.String())
	return nil
}

// WriteClipboard stores text in the configured clipboard backend.
func (d *Device) WriteClipboard(ctx context.Context, text string) error {
	if d.sysClip {
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("system clipboard: %w", err)
		}
		d.record("clipboard", "system write")
		return nil
	}

	d.mu.Lock()
	d.clip = text
	d.mu.Unlock()
	d.record("clipboard", "memory write")
	return nil
}

// ReadClipboard returns the memory clipboard contents.
func (d *Device) ReadClipboard() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clip
}

// OpenExternal records handing a URL to the system browser.
func (d *Device) OpenExternal(ctx context.Context, url string) error {
	d.record("open_external", url)
	return nil
}

// Notify records a displayed notification.
func (d *Device) Notify(ctx context.Context, title, message string) error {
	d.record("notification", title)
	return nil
}

// Battery reports the current simulated battery state.
func (d *Device) Battery(ctx context.Context) (host.BatteryStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.battery, nil
}

// SetBattery updates the simulated battery state.
func (d *Device) SetBattery(s host.BatteryStatus) {
	d.mu.Lock()
	d.battery = s
	d.mu.Unlock()
}

// PowerSaveMode reports whether power saving is active.
func (d *Device) PowerSaveMode(ctx context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.powerSave, nil
}

// SetPowerSave updates the simulated power-save state.
func (d *Device) SetPowerSave(on bool) {
	d.mu.Lock()
	d.powerSave = on
	d.mu.Unlock()
}

// SetFlashlight turns the torch on or off.
func (d *Device) SetFlashlight(ctx context.Context, on bool) error {
	d.mu.Lock()
	d.flashlightOn = on
	d.mu.Unlock()
	d.record("flashlight", fmt.Sprintf("on=%t", on))
	return nil
}

// SetBluetooth turns the radio on or off.
func (d *Device) SetBluetooth(ctx context.Context, on bool) error {
	d.mu.Lock()
	d.bluetoothOn = on
	d.mu.Unlock()
	d.record("bluetooth", fmt.Sprintf("on=%t", on))
	return nil
}

// SetSecureScreen applies the capture-blocking window state.
func (d *Device) SetSecureScreen(ctx context.Context, active bool) error {
	d.mu.Lock()
	d.secureScreen = active
	d.mu.Unlock()
	d.record("secure_screen", fmt.Sprintf("active=%t", active))
	return nil
}

// SetKeepScreenOn applies the wake-lock window state.
func (d *Device) SetKeepScreenOn(ctx context.Context, on bool) error {
	d.mu.Lock()
	d.keepScreenOn = on
	d.mu.Unlock()
	d.record("keep_screen_on", fmt.Sprintf("on=%t", on))
	return nil
}

// PromptBiometric simulates the prompt: waits the configured delay, then
// answers with the profile's outcome.
func (d *Device) PromptBiometric(ctx context.Context) (bool, error) {
	d.record("biometric_prompt", "")

	select {
	case <-time.After(d.biometric.PromptDelay()):
		return d.biometric.Authenticated, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// AwaitTag blocks until a tag is discovered or ctx ends. With a configured
// discovery delay the profile tag arrives on schedule; otherwise only
// injected tags are discovered.
func (d *Device) AwaitTag(ctx context.Context) (host.Tag, error) {
	var timed <-chan time.Time
	if d.nfc.DiscoverAfterMs > 0 {
		timer := time.NewTimer(d.nfc.DiscoverAfter())
		defer timer.Stop()
		timed = timer.C
	}

	select {
	case <-timed:
		tag := host.Tag{ID: d.nfc.TagID, Payload: d.nfc.Payload}
		d.record("nfc_tag", tag.ID)
		return tag, nil
	case tag := <-d.tags:
		d.record("nfc_tag", tag.ID)
		return tag, nil
	case <-ctx.Done():
		return host.Tag{}, ctx.Err()
	}
}

// InjectTag makes a tag discoverable by the next (or current) scan. Returns
// false when the injection buffer is full.
func (d *Device) InjectTag(tag host.Tag) bool {
	select {
	case d.tags <- tag:
		return true
	default:
		d.logger.Warn("tag injection dropped", zap.String("tag_id", tag.ID))
		return false
	}
}

// ClearCache records a WebView cache wipe.
func (d *Device) ClearCache(ctx context.Context) error {
	d.record("clear_cache", "")
	return nil
}

// Reload asks the page to reload.
func (d *Device) Reload(ctx context.Context) error {
	d.record("reload", "")

	d.mu.Lock()
	hook := d.hooks.Reload
	d.mu.Unlock()
	if hook != nil {
		return hook(ctx)
	}
	return nil
}

// Finish closes the shell activity.
func (d *Device) Finish(ctx context.Context) error {
	d.record("finish", "")

	d.mu.Lock()
	hook := d.hooks.Finish
	d.mu.Unlock()
	if hook != nil {
		return hook(ctx)
	}
	return nil
}

// State is a point-in-time view of the device for the debug surface.
type State struct {
	Identity     host.Identity      `json:"identity"`
	FlashlightOn bool               `json:"flashlightOn"`
	BluetoothOn  bool               `json:"bluetoothOn"`
	SecureScreen bool               `json:"secureScreen"`
	KeepScreenOn bool               `json:"keepScreenOn"`
	Battery      host.BatteryStatus `json:"battery"`
	PowerSave    bool               `json:"powerSave"`
}

// Snapshot returns the current device state.
func (d *Device) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return State{
		Identity:     d.identity,
		FlashlightOn: d.flashlightOn,
		BluetoothOn:  d.bluetoothOn,
		SecureScreen: d.secureScreen,
		KeepScreenOn: d.keepScreenOn,
		Battery:      d.battery,
		PowerSave:    d.powerSave,
	}
}

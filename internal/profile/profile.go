// Package profile loads device profiles for the simulated host.
//
// A profile describes one device: its identity, which capabilities it has,
// which permissions the user granted, and how the simulated hardware behaves
// (battery state, NFC tag timing, biometric prompt outcome). Profiles are YAML
// or TOML, picked by file extension.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/web2native/bridge/internal/host"
	"github.com/web2native/bridge/internal/shared/types"
)

// Clipboard modes for the simulated device.
const (
	ClipboardMemory = "memory"
	ClipboardSystem = "system"
)

// Profile is one device description.
type Profile struct {
	Device    Device          `yaml:"device" toml:"device" json:"device"`
	Flags     map[string]bool `yaml:"flags" toml:"flags" json:"flags"`
	Battery   Battery         `yaml:"battery" toml:"battery" json:"battery"`
	PowerSave bool            `yaml:"power_save" toml:"power_save" json:"power_save"`
	Clipboard ClipboardConfig `yaml:"clipboard" toml:"clipboard" json:"clipboard"`
	NFC       NFC             `yaml:"nfc" toml:"nfc" json:"nfc"`
	Biometric Biometric       `yaml:"biometric" toml:"biometric" json:"biometric"`
	Browser   Browser         `yaml:"browser" toml:"browser" json:"browser"`
}

// Device is the reported identity.
type Device struct {
	Manufacturer string `yaml:"manufacturer" toml:"manufacturer" json:"manufacturer"`
	Model        string `yaml:"model" toml:"model" json:"model"`
	Platform     string `yaml:"platform" toml:"platform" json:"platform"`
	OSVersion    string `yaml:"os_version" toml:"os_version" json:"os_version"`
	PackageName  string `yaml:"package_name" toml:"package_name" json:"package_name"`
}

// Battery is the simulated battery state.
type Battery struct {
	Level    float64 `yaml:"level" toml:"level" json:"level"`
	Charging bool    `yaml:"charging" toml:"charging" json:"charging"`
}

// ClipboardConfig selects the clipboard backend.
type ClipboardConfig struct {
	Mode string `yaml:"mode" toml:"mode" json:"mode"`
}

// NFC configures simulated tag discovery. A scan discovers the configured tag
// after DiscoverAfterMs; zero means the scan waits for an injected tag.
type NFC struct {
	TagID           string `yaml:"tag_id" toml:"tag_id" json:"tag_id"`
	Payload         string `yaml:"payload" toml:"payload" json:"payload"`
	DiscoverAfterMs int    `yaml:"discover_after_ms" toml:"discover_after_ms" json:"discover_after_ms"`
}

// DiscoverAfter returns the configured discovery delay.
func (n NFC) DiscoverAfter() time.Duration {
	return time.Duration(n.DiscoverAfterMs) * time.Millisecond
}

// Biometric configures the simulated prompt.
type Biometric struct {
	Authenticated bool `yaml:"authenticated" toml:"authenticated" json:"authenticated"`
	PromptDelayMs int  `yaml:"prompt_delay_ms" toml:"prompt_delay_ms" json:"prompt_delay_ms"`
}

// PromptDelay returns the configured prompt delay.
func (b Biometric) PromptDelay() time.Duration {
	return time.Duration(b.PromptDelayMs) * time.Millisecond
}

// Browser configures outbound URL handling.
type Browser struct {
	Preflight bool `yaml:"preflight" toml:"preflight" json:"preflight"`
}

// Default returns a fully equipped device: every capability present, every
// permission granted, biometric prompts succeeding.
func Default() Profile {
	return Profile{
		Device: Device{
			Manufacturer: "Acme",
			Model:        "Simulator",
			Platform:     "Android",
			OSVersion:    "14",
			PackageName:  "com.acme.simulator",
		},
		Flags: map[string]bool{
			string(types.FlagBiometricEnrolled):    true,
			string(types.FlagNotificationsAllowed): true,
			string(types.FlagNFCAvailable):         true,
			string(types.FlagBluetoothAvailable):   true,
			string(types.FlagFlashlightAvailable):  true,
		},
		Battery:   Battery{Level: 80, Charging: false},
		Clipboard: ClipboardConfig{Mode: ClipboardMemory},
		NFC:       NFC{TagID: "04:a2:2f:92", Payload: "hello from tag", DiscoverAfterMs: 150},
		Biometric: Biometric{Authenticated: true, PromptDelayMs: 50},
	}
}

// Load reads a profile file, YAML or TOML by extension.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}

	var p Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("parse yaml profile: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("parse toml profile: %w", err)
		}
	default:
		return Profile{}, fmt.Errorf("unsupported profile format %q (want .yaml, .yml, or .toml)", filepath.Ext(path))
	}

	if err := p.validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// LoadOrDefault loads path when non-empty, otherwise the default profile.
func LoadOrDefault(path string) (Profile, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (p Profile) validate() error {
	if p.Battery.Level < 0 || p.Battery.Level > 100 {
		return fmt.Errorf("battery level %.1f out of range [0,100]", p.Battery.Level)
	}
	switch p.Clipboard.Mode {
	case "", ClipboardMemory, ClipboardSystem:
	default:
		return fmt.Errorf("unknown clipboard mode %q (want %q or %q)", p.Clipboard.Mode, ClipboardMemory, ClipboardSystem)
	}
	if p.NFC.DiscoverAfterMs < 0 {
		return fmt.Errorf("nfc discover_after_ms must not be negative")
	}
	if p.Biometric.PromptDelayMs < 0 {
		return fmt.Errorf("biometric prompt_delay_ms must not be negative")
	}
	return nil
}

// Identity converts the device section to the host identity.
func (p Profile) Identity() host.Identity {
	return host.Identity{
		Manufacturer: p.Device.Manufacturer,
		Model:        p.Device.Model,
		Platform:     p.Device.Platform,
		OSVersion:    p.Device.OSVersion,
		PackageName:  p.Device.PackageName,
	}
}

// SeedFlags converts the flags section to typed seed state for the flag store.
func (p Profile) SeedFlags() map[types.Flag]bool {
	seed := make(map[types.Flag]bool, len(p.Flags))
	for k, v := range p.Flags {
		seed[types.Flag(k)] = v
	}
	return seed
}

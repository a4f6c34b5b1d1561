package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web2native/bridge/internal/shared/types"
)

func writeProfile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeProfile(t, "pixel.yaml", `
device:
  manufacturer: Google
  model: Pixel 8
  platform: Android
  os_version: "14"
  package_name: com.example.shop
flags:
  biometric_enrolled: true
  nfc_available: false
battery:
  level: 42.5
  charging: true
power_save: true
clipboard:
  mode: memory
nfc:
  tag_id: "aa:bb"
  payload: ticket-001
  discover_after_ms: 250
biometric:
  authenticated: false
  prompt_delay_ms: 10
browser:
  preflight: true
`)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Google", p.Device.Manufacturer)
	assert.Equal(t, "com.example.shop", p.Device.PackageName)
	assert.Equal(t, 42.5, p.Battery.Level)
	assert.True(t, p.Battery.Charging)
	assert.True(t, p.PowerSave)
	assert.True(t, p.Browser.Preflight)
	assert.False(t, p.Biometric.Authenticated)

	assert.Equal(t, "Google Pixel 8 (Android 14)", p.Identity().Description())

	seed := p.SeedFlags()
	assert.True(t, seed[types.FlagBiometricEnrolled])
	assert.False(t, seed[types.FlagNFCAvailable])
}

func TestLoadTOML(t *testing.T) {
	path := writeProfile(t, "galaxy.toml", `
power_save = false

[device]
manufacturer = "Samsung"
model = "SM-S901B"
platform = "Android"
os_version = "13"
package_name = "com.example.bank"

[flags]
flashlight_available = true
secure_screen_active = true

[battery]
level = 100.0
charging = false

[clipboard]
mode = "system"

[nfc]
tag_id = "cc:dd"
payload = "badge"
discover_after_ms = 0

[biometric]
authenticated = true
prompt_delay_ms = 5
`)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Samsung SM-S901B (Android 13)", p.Identity().Description())
	assert.Equal(t, ClipboardSystem, p.Clipboard.Mode)
	assert.True(t, p.SeedFlags()[types.FlagSecureScreenActive])
	assert.Zero(t, p.NFC.DiscoverAfter())
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"bad extension", "profile.ini", "x=1", "unsupported profile format"},
		{"bad yaml", "p.yaml", "device: [", "parse yaml profile"},
		{"battery range", "p.yaml", "battery:\n  level: 180\n", "out of range"},
		{"clipboard mode", "p.yaml", "clipboard:\n  mode: quantum\n", "unknown clipboard mode"},
		{"negative delay", "p.yaml", "nfc:\n  discover_after_ms: -1\n", "must not be negative"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeProfile(t, tc.file, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	p, err := LoadOrDefault("")
	require.NoError(t, err)

	// The default device has every capability so a fresh devhost can run any
	// command without a profile file.
	seed := p.SeedFlags()
	for _, f := range []types.Flag{
		types.FlagBiometricEnrolled,
		types.FlagNotificationsAllowed,
		types.FlagNFCAvailable,
		types.FlagBluetoothAvailable,
		types.FlagFlashlightAvailable,
	} {
		assert.True(t, seed[f], "default profile should grant %s", f)
	}
	assert.NotEmpty(t, p.Device.PackageName)
}

package types

// Flag is a capability flag gating command authorization. Some flags are
// static per device, others are runtime-mutable and owned by the provider
// that flips them.
type Flag string

const (
	FlagBiometricEnrolled    Flag = "biometric_enrolled"
	FlagNotificationsAllowed Flag = "notifications_allowed"
	FlagNFCAvailable         Flag = "nfc_available"
	FlagBluetoothAvailable   Flag = "bluetooth_available"
	FlagFlashlightAvailable  Flag = "flashlight_available"
	FlagSecureScreenActive   Flag = "secure_screen_active"
	FlagBluetoothEnabled     Flag = "bluetooth_enabled"
	FlagNFCScanActive        Flag = "nfc_scan_active"
)

// FlagClass determines which denial kind an unmet required flag maps to.
type FlagClass string

const (
	ClassPermission FlagClass = "permission"
	ClassHardware   FlagClass = "hardware"
	ClassState      FlagClass = "state"
)

// Class reports the flag's class. Unknown flags are treated as state flags so
// profile-defined extras stay expressible.
func (f Flag) Class() FlagClass {
	switch f {
	case FlagBiometricEnrolled, FlagNotificationsAllowed:
		return ClassPermission
	case FlagNFCAvailable, FlagBluetoothAvailable, FlagFlashlightAvailable:
		return ClassHardware
	default:
		return ClassState
	}
}

// DenyKind maps an unmet required flag to its taxonomy kind.
func (f Flag) DenyKind() ErrorKind {
	switch f.Class() {
	case ClassPermission:
		return KindPermissionMissing
	case ClassHardware:
		return KindCapabilityUnavailable
	default:
		return KindPolicyBlocked
	}
}

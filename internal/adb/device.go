package adb

import "strings"

// ConnectionType indicates how a device is connected.
type ConnectionType string

const (
	USB     ConnectionType = "usb"
	WiFi    ConnectionType = "wifi"
	Unknown ConnectionType = "unknown"
)

// Device states reported by `adb devices` and `adb get-state`.
const (
	StateDevice        = "device"
	StateUnauthorized  = "unauthorized"
	StateAuthorizing   = "authorizing"
	StateRecovery      = "recovery"
	StateOffline       = "offline"
	StateNoPermissions = "no permissions"
)

// Device represents a device known to the adb server.
type Device struct {
	Serial      string
	State       string // "device", "offline", "unauthorized", etc.
	ConnType    ConnectionType
	Model       string
	Product     string
	TransportID string
}

// IsOnline returns true if the device is in "device" state (ready).
func (d Device) IsOnline() bool {
	return d.State == StateDevice
}

// IsProtocolCapable reports whether the device can host a debug shell, either
// right away or once the user accepts the authorization prompt.
func (d Device) IsProtocolCapable() bool {
	switch d.State {
	case StateDevice, StateUnauthorized, StateAuthorizing, StateRecovery:
		return true
	}
	return false
}

// DisplayName is the model name with adb's underscores turned back into
// spaces, falling back to the serial.
func (d Device) DisplayName() string {
	if d.Model == "" {
		return d.Serial
	}
	return strings.ReplaceAll(d.Model, "_", " ")
}

package session

import "errors"

// Failure signals returned by the Manager. Callers distinguish them with errors.Is
// so each can be surfaced with its own message.
var (
	// ErrUserCancelled means the device picker was dismissed without a selection.
	ErrUserCancelled = errors.New("no device selected")
	// ErrDeviceNotFound means the requested device is not attached to the adb server.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrNotConnected means the operation is not valid in the current state.
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyConnected means the requested layer is already established.
	ErrAlreadyConnected = errors.New("already connected")
	// ErrBusy means a command or authorization wait is already in flight.
	ErrBusy = errors.New("a command is already executing")
	// ErrCapabilityMismatch means the selected device cannot speak the debug protocol.
	ErrCapabilityMismatch = errors.New("device is not debug-bridge capable")
	// ErrAuthorization means the device refused, or never completed, authorization.
	ErrAuthorization = errors.New("debug authorization rejected or failed")
	// ErrTransport wraps I/O failures while opening, sending or receiving.
	ErrTransport = errors.New("transport error")
	// ErrEmptyCommand is returned for a blank command string.
	ErrEmptyCommand = errors.New("empty command")
)

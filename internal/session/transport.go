package session

import "context"

// Picker selects and claims a device. It returns ErrUserCancelled (possibly
// wrapped) when the user dismisses the selection.
type Picker interface {
	Open(ctx context.Context) (Transport, error)
}

// Transport is a claimed bus-level handle to one device.
type Transport interface {
	// Name is the human readable device name used in prompts.
	Name() string
	IsProtocolCapable() bool
	// Establish performs the debug-bridge handshake. onAwaiting is invoked once
	// if the device is waiting for the user to accept the connection.
	Establish(ctx context.Context, banner string, onAwaiting func()) (Protocol, error)
	Close() error
}

// Protocol is an authorized debug-bridge session layered on a Transport.
type Protocol interface {
	// OpenChannel opens one command channel and sends command over it.
	OpenChannel(ctx context.Context, command string) (Channel, error)
}

// Channel is a single request/response exchange.
type Channel interface {
	// ReceiveAll reads until the device closes its side of the channel.
	ReceiveAll(ctx context.Context) ([]byte, error)
	Close() error
}

package adb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FluidXR/wearctl/internal/logfields"
	"github.com/FluidXR/wearctl/internal/session"
)

// Transport is a device claimed through the adb server.
type Transport struct {
	client *Client
	device Device
	name   string
	log    *slog.Logger

	// ownsConnection is set when the picker ran `adb connect` for this device.
	ownsConnection bool
}

var _ session.Transport = (*Transport)(nil)

func (t *Transport) Name() string { return t.name }

func (t *Transport) IsProtocolCapable() bool { return t.device.IsProtocolCapable() }

// Establish waits until the adb server reports the device as authorized. The
// host identity (banner) is negotiated by the adb server itself, so it is only
// logged here.
func (t *Transport) Establish(ctx context.Context, banner string, onAwaiting func()) (session.Protocol, error) {
	serial := t.device.Serial
	t.log.Debug("Starting debug handshake", logfields.Serial(serial), slog.String("banner", banner))

	state, err := t.client.GetState(ctx, serial)
	if err != nil {
		return nil, err
	}
	switch state {
	case StateDevice, StateRecovery:
	case StateUnauthorized, StateAuthorizing:
		onAwaiting()
		if err := t.client.WaitForDevice(ctx, serial); err != nil {
			return nil, fmt.Errorf("waiting for authorization: %w", err)
		}
		if state, err = t.client.GetState(ctx, serial); err != nil {
			return nil, err
		}
		if state != StateDevice {
			return nil, fmt.Errorf("device %s is %s", serial, state)
		}
	default:
		return nil, fmt.Errorf("device %s is %s", serial, state)
	}
	return &Protocol{client: t.client, serial: serial}, nil
}

// Close releases the device. A wireless connection opened by the picker is
// dropped again; anything else is left as the adb server had it.
func (t *Transport) Close() error {
	if !t.ownsConnection {
		return nil
	}
	return t.client.Disconnect(context.Background(), t.device.Serial)
}

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/FluidXR/wearctl/internal/logfields"
	"github.com/FluidXR/wearctl/internal/metrics"
)

// DefaultBanner is the host identity sent during the debug-bridge handshake.
const DefaultBanner = "host::"

// Options configures a Manager. The zero value is usable.
type Options struct {
	Banner   string
	Logger   *slog.Logger
	Recorder metrics.Recorder
}

// Manager owns at most one transport and one protocol session and serializes
// every command sent through them. It is safe for concurrent use.
type Manager struct {
	picker Picker
	banner string
	log    *slog.Logger
	rec    metrics.Recorder

	mu          sync.Mutex
	state       State
	transport   Transport
	protocol    Protocol
	sessionID   string
	opening     bool // picker in progress
	authorizing bool // handshake in progress
}

// NewManager creates a Manager in the Disconnected state.
func NewManager(picker Picker, opts Options) *Manager {
	m := &Manager{
		picker: picker,
		banner: opts.Banner,
		log:    opts.Logger,
		rec:    opts.Recorder,
		state:  Disconnected,
	}
	if m.banner == "" {
		m.banner = DefaultBanner
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	if m.rec == nil {
		m.rec = metrics.NoopRecorder{}
	}
	return m
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// DeviceName returns the display name of the claimed device, or "" when disconnected.
func (m *Manager) DeviceName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transport == nil {
		return ""
	}
	return m.transport.Name()
}

// SessionID identifies the current protocol session instance. It is "" when no
// protocol session exists and changes every time one is established.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// setState must be called with mu held.
func (m *Manager) setState(to State) {
	from := m.state
	m.state = to
	m.rec.IncStateTransition(from.String(), to.String())
	m.log.Debug("Session state changed", logfields.FromState(from.String()), logfields.ToState(to.String()))
}

// ConnectTransport asks the picker for a device and claims it. A cancelled or
// failed selection leaves the manager Disconnected.
func (m *Manager) ConnectTransport(ctx context.Context) error {
	m.mu.Lock()
	if m.state != Disconnected {
		m.mu.Unlock()
		m.log.Warn("A transport connection has already been established")
		return ErrAlreadyConnected
	}
	if m.opening {
		m.mu.Unlock()
		return ErrBusy
	}
	m.opening = true
	m.mu.Unlock()

	t, err := m.picker.Open(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.opening = false
	if err != nil {
		m.log.Warn("No device selected", logfields.Error(err))
		if errors.Is(err, ErrUserCancelled) || errors.Is(err, ErrDeviceNotFound) {
			return err
		}
		return fmt.Errorf("%w: open device: %w", ErrTransport, err)
	}
	m.transport = t
	m.setState(TransportConnected)
	m.log.Info("Transport connection created", logfields.Device(t.Name()))
	return nil
}

// ConnectProtocol establishes the debug-bridge session on the claimed device.
// onAwaiting is called with the device name while the device waits for the user
// to accept the connection; nil selects a default that logs a prompt. The call
// blocks until the device answers or ctx is done. On any handshake failure the
// manager stays TransportConnected so the caller can retry.
func (m *Manager) ConnectProtocol(ctx context.Context, onAwaiting func(deviceName string)) error {
	m.mu.Lock()
	switch m.state {
	case Disconnected:
		m.mu.Unlock()
		m.log.Warn("A transport connection must be established first")
		return ErrNotConnected
	case ProtocolConnected:
		m.mu.Unlock()
		m.log.Warn("A debug connection has already been established")
		return ErrAlreadyConnected
	case Executing:
		m.mu.Unlock()
		return ErrBusy
	}
	if m.authorizing {
		m.mu.Unlock()
		return ErrBusy
	}
	t := m.transport
	if !t.IsProtocolCapable() {
		m.mu.Unlock()
		m.log.Error("Cannot initialize a debug connection, the device is not debug-bridge capable", logfields.Device(t.Name()))
		return ErrCapabilityMismatch
	}
	m.authorizing = true
	m.mu.Unlock()

	name := t.Name()
	if onAwaiting == nil {
		onAwaiting = m.defaultPrompt
	}
	var once sync.Once
	notify := func() {
		once.Do(func() {
			m.rec.IncAuthorizationPrompt()
			go onAwaiting(name)
		})
	}

	p, err := t.Establish(ctx, m.banner, notify)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.authorizing = false
	if err != nil {
		m.log.Error("Failed to create a debug connection", logfields.Device(name), logfields.Error(err))
		return fmt.Errorf("%w: %w", ErrAuthorization, err)
	}
	m.protocol = p
	m.sessionID = uuid.NewString()
	m.setState(ProtocolConnected)
	m.log.Info("Debug connection established", logfields.Device(name), logfields.SessionID(m.sessionID))
	return nil
}

func (m *Manager) defaultPrompt(deviceName string) {
	m.log.Warn(fmt.Sprintf("Accept the debug connection on your %s watch", deviceName), logfields.Device(deviceName))
}

// Disconnect closes the protocol session (if any) and the transport. It is
// rejected with ErrBusy while a command or handshake is in flight.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	switch {
	case m.state == Disconnected:
		m.mu.Unlock()
		m.log.Warn("Tried to disconnect a device that wasn't connected")
		return ErrNotConnected
	case m.state == Executing, m.authorizing:
		m.mu.Unlock()
		return ErrBusy
	}
	t := m.transport
	m.protocol = nil
	m.sessionID = ""
	m.transport = nil
	m.setState(Disconnected)
	m.mu.Unlock()

	if err := t.Close(); err != nil {
		m.log.Warn("Closing the transport failed", logfields.Device(t.Name()), logfields.Error(err))
		return fmt.Errorf("%w: close: %w", ErrTransport, err)
	}
	m.log.Info("Successfully terminated the transport connection", logfields.Device(t.Name()))
	return nil
}

package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/FluidXR/wearctl/internal/logfields"
	"github.com/FluidXR/wearctl/internal/metrics"
)

// RunCommand runs one shell command on the device and returns its decoded
// output. Only one command may run at a time; a concurrent call fails with
// ErrBusy without touching the device. The manager is back in ProtocolConnected
// when RunCommand returns, whatever the outcome.
func (m *Manager) RunCommand(ctx context.Context, command string) (string, error) {
	m.mu.Lock()
	switch m.state {
	case ProtocolConnected:
	case Executing:
		m.mu.Unlock()
		return "", m.reject(command, ErrBusy)
	default:
		m.mu.Unlock()
		return "", m.reject(command, ErrNotConnected)
	}
	if strings.TrimSpace(command) == "" {
		m.mu.Unlock()
		return "", m.reject(command, ErrEmptyCommand)
	}
	p := m.protocol
	m.setState(Executing)
	m.mu.Unlock()

	start := time.Now()
	output, err := m.execute(ctx, p, command)
	elapsed := time.Since(start)

	m.mu.Lock()
	m.setState(ProtocolConnected)
	m.mu.Unlock()

	m.rec.ObserveCommandDuration(elapsed)
	if err != nil {
		m.rec.IncCommandResult(metrics.ResultTransport)
		m.log.Debug("Command failed", logfields.Command(command), logfields.Error(err))
		return "", err
	}
	m.rec.IncCommandResult(metrics.ResultSuccess)
	m.log.Debug("Command finished",
		logfields.Command(command),
		logfields.Output(output),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return output, nil
}

// reject records a command that never reached the device.
func (m *Manager) reject(command string, err error) error {
	m.log.Debug("Command rejected", logfields.Command(command), logfields.Error(err))
	m.rec.IncCommandResult(metrics.ResultRejected)
	return err
}

func (m *Manager) execute(ctx context.Context, p Protocol, command string) (string, error) {
	ch, err := p.OpenChannel(ctx, command)
	if err != nil {
		return "", fmt.Errorf("%w: open channel: %w", ErrTransport, err)
	}
	// Successive commands fail on some devices unless each channel is closed.
	defer func() {
		if cerr := ch.Close(); cerr != nil {
			m.log.Debug("Closing command channel failed", logfields.Command(command), logfields.Error(cerr))
		}
	}()

	data, err := ch.ReceiveAll(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: receive: %w", ErrTransport, err)
	}
	return decodeOutput(data), nil
}

// decodeOutput turns raw channel bytes into text. A leading BOM is dropped and
// invalid UTF-8 sequences become U+FFFD.
func decodeOutput(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	text, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(text)
}

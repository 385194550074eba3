package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FluidXR/wearctl/internal/metrics"
)

func TestRunCommand_TrimmableOutput(t *testing.T) {
	tr := watch(map[string]string{"getprop ro.product.model": "Ticwatch E\n"})
	m := connected(t, tr)

	out, err := m.RunCommand(context.Background(), "getprop ro.product.model")
	require.NoError(t, err)
	assert.Equal(t, "Ticwatch E\n", out)
	assert.Equal(t, ProtocolConnected, m.State())
	assert.Equal(t, []string{"getprop ro.product.model"}, tr.protocol.sent())
	assert.EqualValues(t, 1, tr.protocol.closes.Load())
}

func TestRunCommand_NoOutput(t *testing.T) {
	m := connected(t, watch(nil))
	out, err := m.RunCommand(context.Background(), "pm enable com.example")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestRunCommand_EmptyCommand(t *testing.T) {
	tr := watch(nil)
	m := connected(t, tr)
	_, err := m.RunCommand(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyCommand)
	assert.Zero(t, tr.protocol.opens.Load())
	assert.Equal(t, ProtocolConnected, m.State())
}

func TestRunCommand_EmptyCommandWhileDisconnected(t *testing.T) {
	m, _ := newTestManager(t, watch(nil))
	_, err := m.RunCommand(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, Disconnected, m.State())
}

func TestRunCommand_RejectionsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tr := watch(nil)
	m := NewManager(&fakePicker{transport: tr}, Options{Logger: log})

	_, err := m.RunCommand(context.Background(), "getprop ro.serialno")
	require.ErrorIs(t, err, ErrNotConnected)
	assert.Contains(t, buf.String(), `msg="Command rejected"`)
	assert.Contains(t, buf.String(), `cmd="getprop ro.serialno"`)
	assert.Contains(t, buf.String(), ErrNotConnected.Error())
}

func TestRunCommand_TransportConnectedIsNotConnected(t *testing.T) {
	tr := watch(nil)
	m, _ := newTestManager(t, tr)
	require.NoError(t, m.ConnectTransport(context.Background()))

	_, err := m.RunCommand(context.Background(), "getprop ro.serialno")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, TransportConnected, m.State())
	assert.Zero(t, tr.protocol.opens.Load())
}

func TestRunCommand_TransportErrorsReleaseGate(t *testing.T) {
	cases := []struct {
		name    string
		openErr error
		recvErr error
	}{
		{"open", errors.New("closed by peer"), nil},
		{"receive", nil, errors.New("broken pipe")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := watch(map[string]string{"echo ok": "ok"})
			m := connected(t, tr)
			tr.protocol.openErr = tc.openErr
			tr.protocol.recvErr = tc.recvErr

			_, err := m.RunCommand(context.Background(), "echo ok")
			assert.ErrorIs(t, err, ErrTransport)
			assert.Equal(t, ProtocolConnected, m.State())

			tr.protocol.openErr = nil
			tr.protocol.recvErr = nil
			out, err := m.RunCommand(context.Background(), "echo ok")
			require.NoError(t, err)
			assert.Equal(t, "ok", out)
		})
	}
}

func TestRunCommand_ContextCancelledDuringReceive(t *testing.T) {
	tr := watch(nil)
	tr.protocol.block = make(chan struct{})
	m := connected(t, tr)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := m.RunCommand(ctx, "logcat")
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, ProtocolConnected, m.State())
}

func TestRunCommand_OnlyOneInFlight(t *testing.T) {
	tr := watch(map[string]string{"dumpsys battery | grep level": "  level: 87\n"})
	tr.protocol.block = make(chan struct{})
	m := connected(t, tr)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := m.RunCommand(ctx, "dumpsys battery | grep level")
		first <- err
	}()
	require.Eventually(t, func() bool { return m.State() == Executing }, 2*time.Second, time.Millisecond)

	const contenders = 8
	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := range contenders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = m.RunCommand(ctx, "getprop ro.serialno")
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrBusy)
	}
	assert.EqualValues(t, 1, tr.protocol.opens.Load())

	// Neither teardown nor a new handshake may interrupt the command.
	assert.ErrorIs(t, m.Disconnect(), ErrBusy)
	assert.ErrorIs(t, m.ConnectProtocol(ctx, nil), ErrBusy)
	assert.Equal(t, Executing, m.State())

	close(tr.protocol.block)
	require.NoError(t, <-first)
	assert.Equal(t, ProtocolConnected, m.State())
}

func TestRunCommand_RecordsMetrics(t *testing.T) {
	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	tr := watch(map[string]string{"getprop ro.serialno": "M6600TB1234F\n"})
	m := NewManager(&fakePicker{transport: tr}, Options{Logger: quietLogger(), Recorder: rec})
	ctx := context.Background()

	_, err := m.RunCommand(ctx, "getprop ro.serialno")
	require.ErrorIs(t, err, ErrNotConnected)
	require.NoError(t, m.ConnectTransport(ctx))
	require.NoError(t, m.ConnectProtocol(ctx, nil))
	_, err = m.RunCommand(ctx, "getprop ro.serialno")
	require.NoError(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "wearctl_command_results_total")
	assert.Contains(t, names, "wearctl_command_duration_seconds")
	assert.Contains(t, names, "wearctl_state_transitions_total")
}

func TestDecodeOutput(t *testing.T) {
	assert.Equal(t, "", decodeOutput(nil))
	assert.Equal(t, "8.0.0\n", decodeOutput([]byte("8.0.0\n")))
	assert.Equal(t, "a�b", decodeOutput([]byte{'a', 0xff, 'b'}))
}

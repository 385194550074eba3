package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/FluidXR/wearctl/internal/adb"
	"github.com/FluidXR/wearctl/internal/config"
	"github.com/FluidXR/wearctl/internal/device"
	"github.com/FluidXR/wearctl/internal/logfields"
	"github.com/FluidXR/wearctl/internal/packages"
	"github.com/FluidXR/wearctl/internal/session"
)

// watchSession is a connected watch for the lifetime of one CLI command.
type watchSession struct {
	mgr    *session.Manager
	picker *adb.Picker
	cfg    *config.Config

	// serial is the watch's hardware serial; it is the same over USB and wireless.
	serial string
}

var (
	_ device.Runner   = (*watchSession)(nil)
	_ packages.Runner = (*watchSession)(nil)
)

// targetDevice resolves --device, falling back to the configured device.
func targetDevice(cfg *config.Config) string {
	name := flagDevice
	if name == "" {
		name = cfg.Device
	}
	return cfg.ResolveDevice(name)
}

// connectWatch claims a device and waits for the debug prompt to be accepted.
func connectWatch(ctx context.Context) (*watchSession, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	picker := &adb.Picker{
		Client:    adb.NewClient(cfg.ADBPath),
		Serial:    targetDevice(cfg),
		Nicknames: cfg.Nicknames(),
		Prompt:    adb.StdinPrompt(os.Stdin, os.Stdout),
		Logger:    slog.Default(),
	}
	mgr := session.NewManager(picker, session.Options{
		Banner:   cfg.Banner,
		Logger:   slog.Default(),
		Recorder: recorder,
	})

	if err := mgr.ConnectTransport(ctx); err != nil {
		return nil, err
	}

	authCtx := ctx
	if cfg.AuthTimeout > 0 {
		var cancel context.CancelFunc
		authCtx, cancel = context.WithTimeout(ctx, cfg.AuthTimeout)
		defer cancel()
	}
	err = mgr.ConnectProtocol(authCtx, func(name string) {
		fmt.Printf("Accept the USB debugging prompt on your %s watch...\n", name)
	})
	if err != nil {
		_ = mgr.Disconnect()
		return nil, err
	}
	w := &watchSession{mgr: mgr, picker: picker, cfg: cfg}
	w.identify(ctx)
	return w, nil
}

// identify reads the hardware serial so journal entries for a watch do not
// depend on the link it was reached over. It falls back to the configured
// device for the adb serial.
func (w *watchSession) identify(ctx context.Context) {
	w.serial = w.cfg.SerialFor(w.picker.Selected())
	out, err := w.RunCommand(ctx, device.CmdSerialNumber)
	if err != nil {
		slog.Debug("Reading the hardware serial failed", logfields.Serial(w.serial), logfields.Error(err))
		return
	}
	if serial := strings.TrimSpace(out); serial != "" && serial != "unknown" {
		w.serial = serial
	}
}

// Serial identifies the connected watch in the journal.
func (w *watchSession) Serial() string { return w.serial }

func (w *watchSession) Name() string { return w.mgr.DeviceName() }

// RunCommand runs one command, bounded by the configured command timeout.
func (w *watchSession) RunCommand(ctx context.Context, command string) (string, error) {
	if w.cfg.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.CommandTimeout)
		defer cancel()
	}
	return w.mgr.RunCommand(ctx, command)
}

func (w *watchSession) SessionID() string { return w.mgr.SessionID() }

func (w *watchSession) Close() {
	if err := w.mgr.Disconnect(); err != nil {
		slog.Debug("Disconnect failed", "error", err)
	}
}

// describeError turns session failures into messages a user can act on.
func describeError(err error) string {
	switch {
	case errors.Is(err, session.ErrUserCancelled):
		return fmt.Sprintf("No device selected: %v", err)
	case errors.Is(err, session.ErrDeviceNotFound):
		return fmt.Sprintf("The watch is not attached: %v. Check 'wearctl devices'.", err)
	case errors.Is(err, session.ErrCapabilityMismatch):
		return "The selected device is not in a mode that allows USB debugging (try rebooting it normally)."
	case errors.Is(err, session.ErrAuthorization) && errors.Is(err, context.DeadlineExceeded):
		return "Timed out waiting for the debugging prompt to be accepted on the watch."
	case errors.Is(err, session.ErrAuthorization):
		return fmt.Sprintf("The watch did not authorize this computer. Accept the prompt on the watch and try again. (%v)", err)
	case errors.Is(err, session.ErrBusy):
		return "The watch is busy running another command."
	case errors.Is(err, session.ErrNotConnected):
		return "Not connected to a watch."
	case errors.Is(err, session.ErrTransport):
		return fmt.Sprintf("Lost connection to the watch: %v", err)
	}
	return err.Error()
}

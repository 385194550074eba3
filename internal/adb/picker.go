package adb

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/FluidXR/wearctl/internal/logfields"
	"github.com/FluidXR/wearctl/internal/session"
)

// PromptFunc asks the user to choose one of devices and returns its index.
// It returns session.ErrUserCancelled if the user declines.
type PromptFunc func(devices []Device) (int, error)

// Picker selects the device to claim. A preferred serial wins; otherwise a
// single attached device is used as-is and several devices are offered to Prompt.
type Picker struct {
	Client    *Client
	Serial    string
	Nicknames map[string]string
	Prompt    PromptFunc
	Logger    *slog.Logger

	selected string
}

// Selected returns the serial of the device most recently claimed by Open.
func (p *Picker) Selected() string { return p.selected }

var _ session.Picker = (*Picker)(nil)

// Open implements session.Picker.
func (p *Picker) Open(ctx context.Context) (session.Transport, error) {
	devices, err := p.Client.Devices(ctx)
	if err != nil {
		return nil, err
	}

	if p.Serial != "" {
		d, ok := findDevice(devices, p.Serial)
		connected := false
		if !ok && strings.Contains(p.Serial, ":") {
			// Wireless devices have to be connected before adb lists them.
			if err := p.Client.Connect(ctx, p.Serial); err != nil {
				return nil, err
			}
			if devices, err = p.Client.Devices(ctx); err != nil {
				return nil, err
			}
			d, ok = findDevice(devices, p.Serial)
			connected = ok
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", session.ErrDeviceNotFound, p.Serial)
		}
		return p.claim(d, connected), nil
	}

	switch len(devices) {
	case 0:
		return nil, fmt.Errorf("%w: no devices attached", session.ErrUserCancelled)
	case 1:
		return p.claim(devices[0], false), nil
	}
	if p.Prompt == nil {
		return nil, fmt.Errorf("%w: %d devices attached, pick one with --device", session.ErrUserCancelled, len(devices))
	}
	i, err := p.Prompt(devices)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(devices) {
		return nil, fmt.Errorf("%w: invalid choice %d", session.ErrUserCancelled, i+1)
	}
	return p.claim(devices[i], false), nil
}

func (p *Picker) claim(d Device, connected bool) *Transport {
	name := d.DisplayName()
	if nick := p.Nicknames[d.Serial]; nick != "" {
		name = nick
	}
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	p.selected = d.Serial
	log.Debug("Device selected", logfields.Serial(d.Serial), logfields.Device(name), logfields.State(d.State))
	return &Transport{client: p.Client, device: d, name: name, log: log, ownsConnection: connected}
}

func findDevice(devices []Device, serial string) (Device, bool) {
	for _, d := range devices {
		if d.Serial == serial {
			return d, true
		}
	}
	return Device{}, false
}

// StdinPrompt returns a PromptFunc that lists devices on out and reads a
// 1-based choice from in. An empty answer cancels.
func StdinPrompt(in io.Reader, out io.Writer) PromptFunc {
	reader := bufio.NewReader(in)
	return func(devices []Device) (int, error) {
		fmt.Fprintln(out, "Several devices are attached:")
		for i, d := range devices {
			fmt.Fprintf(out, "  %d) %-20s %s [%s] [%s]\n", i+1, d.Serial, d.DisplayName(), d.ConnType, d.State)
		}
		fmt.Fprint(out, "Select a device (or press Enter to cancel): ")
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return 0, session.ErrUserCancelled
		}
		n, err := strconv.Atoi(answer)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", session.ErrUserCancelled, answer)
		}
		return n - 1, nil
	}
}

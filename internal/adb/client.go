package adb

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long a cancelled adb process may keep its output open.
const waitDelay = 2 * time.Second

// Client wraps adb command-line calls.
type Client struct {
	// Path is the adb binary; empty means "adb" from PATH.
	Path string
}

// NewClient creates a new adb client.
func NewClient(path string) *Client {
	return &Client{Path: path}
}

func (c *Client) bin() string {
	if c.Path == "" {
		return "adb"
	}
	return c.Path
}

func (c *Client) command(ctx context.Context, serial string, args ...string) *exec.Cmd {
	if serial != "" {
		args = append([]string{"-s", serial}, args...)
	}
	cmd := exec.CommandContext(ctx, c.bin(), args...)
	cmd.WaitDelay = waitDelay
	return cmd
}

// Devices returns all devices known to the adb server.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	out, err := c.command(ctx, "", "devices", "-l").CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("adb devices: %w\n%s", err, out)
	}
	return parseDeviceList(string(out)), nil
}

// Connect connects to a wireless adb device.
func (c *Client) Connect(ctx context.Context, addr string) error {
	out, err := c.command(ctx, "", "connect", addr).CombinedOutput()
	if err != nil {
		return fmt.Errorf("adb connect %s: %w\n%s", addr, err, out)
	}
	output := string(out)
	if strings.Contains(output, "connected") && !strings.Contains(output, "cannot") {
		return nil
	}
	return fmt.Errorf("adb connect %s: %s", addr, strings.TrimSpace(output))
}

// Disconnect drops a wireless adb connection.
func (c *Client) Disconnect(ctx context.Context, addr string) error {
	out, err := c.command(ctx, "", "disconnect", addr).CombinedOutput()
	if err != nil {
		return fmt.Errorf("adb disconnect %s: %w\n%s", addr, err, out)
	}
	return nil
}

// GetState returns the state of one device. adb reports unauthorized and
// offline devices as an error; those are returned as states, not errors.
func (c *Client) GetState(ctx context.Context, serial string) (string, error) {
	out, err := c.command(ctx, serial, "get-state").CombinedOutput()
	output := strings.TrimSpace(string(out))
	for _, s := range []string{StateUnauthorized, StateAuthorizing, StateOffline} {
		if strings.Contains(output, "device "+s) || output == s {
			return s, nil
		}
	}
	if err != nil {
		return "", fmt.Errorf("adb get-state %s: %w\n%s", serial, err, output)
	}
	return output, nil
}

// WaitForDevice blocks until the device is online and authorized or ctx is done.
func (c *Client) WaitForDevice(ctx context.Context, serial string) error {
	out, err := c.command(ctx, serial, "wait-for-device").CombinedOutput()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return fmt.Errorf("adb wait-for-device %s: %w\n%s", serial, err, out)
	}
	return nil
}

// parseDeviceList parses `adb devices -l` output.
func parseDeviceList(output string) []Device {
	var devices []Device
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "List of") || strings.HasPrefix(line, "*") || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		d := Device{
			Serial: fields[0],
			State:  fields[1],
		}
		rest := fields[2:]
		if d.State == "no" && len(rest) > 0 && rest[0] == "permissions" {
			d.State = StateNoPermissions
			rest = rest[1:]
		}
		// Determine connection type
		if strings.Contains(d.Serial, ":") {
			d.ConnType = WiFi
		} else {
			d.ConnType = USB
		}
		// Parse key:value pairs
		for _, f := range rest {
			parts := strings.SplitN(f, ":", 2)
			if len(parts) != 2 {
				continue
			}
			switch parts[0] {
			case "model":
				d.Model = parts[1]
			case "product":
				d.Product = parts[1]
			case "transport_id":
				d.TransportID = parts[1]
			}
		}
		devices = append(devices, d)
	}
	return devices
}

// Package device queries identifying information and battery level from a
// connected watch.
package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Shell commands used by Query, one per field.
const (
	CmdModel           = "getprop ro.product.model"
	CmdSerialNumber    = "getprop ro.serialno"
	CmdPlatformVersion = "getprop ro.build.version.release"
	CmdBatteryLevel    = "dumpsys battery | grep level"
)

// ErrSessionChanged is returned when the debug session was replaced while a
// query was running, so its fields may describe different connections.
var ErrSessionChanged = errors.New("debug session changed during query")

// Runner executes shell commands one at a time against a single debug session.
type Runner interface {
	RunCommand(ctx context.Context, command string) (string, error)
	SessionID() string
}

// Stats is a snapshot of a device's identity and battery level.
type Stats struct {
	Model           string `json:"model"`
	SerialNumber    string `json:"serial_number"`
	PlatformVersion string `json:"platform_version"`
	BatteryPercent  string `json:"battery_percent"`
}

// Query runs the four stats commands in order, waiting for each before sending
// the next. Any failure fails the whole query; no partial Stats is returned.
func Query(ctx context.Context, r Runner) (Stats, error) {
	session := r.SessionID()

	var s Stats
	fields := []struct {
		cmd   string
		parse func(string) string
		dst   *string
	}{
		{CmdModel, strings.TrimSpace, &s.Model},
		{CmdSerialNumber, strings.TrimSpace, &s.SerialNumber},
		{CmdPlatformVersion, strings.TrimSpace, &s.PlatformVersion},
		{CmdBatteryLevel, ParseBatteryLevel, &s.BatteryPercent},
	}

	for _, f := range fields {
		out, err := r.RunCommand(ctx, f.cmd)
		if err != nil {
			return Stats{}, fmt.Errorf("%s: %w", f.cmd, err)
		}
		if r.SessionID() != session {
			return Stats{}, ErrSessionChanged
		}
		*f.dst = f.parse(out)
	}
	return s, nil
}

// ParseBatteryLevel extracts the value from a "level: 87" line.
func ParseBatteryLevel(output string) string {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

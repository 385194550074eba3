package logfields

import "log/slog"

// Canonical log field names shared by the session, device and package layers.
const (
	KeyDevice     = "device"
	KeySerial     = "serial"
	KeySessionID  = "session_id"
	KeyState      = "state"
	KeyFromState  = "from"
	KeyToState    = "to"
	KeyCommand    = "cmd"
	KeyOutput     = "output"
	KeyPackage    = "package"
	KeyAction     = "action"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func Device(name string) slog.Attr     { return slog.String(KeyDevice, name) }
func Serial(s string) slog.Attr        { return slog.String(KeySerial, s) }
func SessionID(id string) slog.Attr    { return slog.String(KeySessionID, id) }
func State(s string) slog.Attr         { return slog.String(KeyState, s) }
func FromState(s string) slog.Attr     { return slog.String(KeyFromState, s) }
func ToState(s string) slog.Attr       { return slog.String(KeyToState, s) }
func Command(cmd string) slog.Attr     { return slog.String(KeyCommand, cmd) }
func Output(out string) slog.Attr      { return slog.String(KeyOutput, out) }
func Package(name string) slog.Attr    { return slog.String(KeyPackage, name) }
func Action(a string) slog.Attr        { return slog.String(KeyAction, a) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

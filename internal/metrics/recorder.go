package metrics

import "time"

// ResultLabel enumerates command result categories for counters.
type ResultLabel string

const (
	ResultSuccess   ResultLabel = "success"
	ResultTransport ResultLabel = "transport_error"
	ResultRejected  ResultLabel = "rejected"
)

// Recorder defines observability hooks for the connection manager and the
// package operations built on it. The zero-cost default is NoopRecorder.
type Recorder interface {
	ObserveCommandDuration(d time.Duration)
	IncCommandResult(result ResultLabel)
	IncStateTransition(from, to string)
	IncAuthorizationPrompt()
	IncPackageOperation(action string, success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveCommandDuration(time.Duration) {}
func (NoopRecorder) IncCommandResult(ResultLabel)         {}
func (NoopRecorder) IncStateTransition(string, string)    {}
func (NoopRecorder) IncAuthorizationPrompt()              {}
func (NoopRecorder) IncPackageOperation(string, bool)     {}

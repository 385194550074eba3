package metrics

import (
	"bytes"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveCommandDuration(150 * time.Millisecond)
	pr.IncCommandResult(ResultSuccess)
	pr.IncStateTransition("Disconnected", "TransportConnected")
	pr.IncAuthorizationPrompt()
	pr.IncPackageOperation("disable", false)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 5)
}

func TestPrometheusRecorder_WriteText(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncCommandResult(ResultTransport)
	pr.IncPackageOperation("enable", true)

	var buf bytes.Buffer
	require.NoError(t, pr.WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, `wearctl_command_results_total{result="transport_error"} 1`)
	assert.Contains(t, out, `wearctl_package_operations_total{action="enable",result="success"} 1`)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveCommandDuration(time.Second)
	r.IncCommandResult(ResultRejected)
	r.IncStateTransition("a", "b")
	r.IncAuthorizationPrompt()
	r.IncPackageOperation("disable", true)
}

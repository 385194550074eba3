package metrics

import (
	"io"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg              *prom.Registry
	commandDuration  prom.Histogram
	commandResults   *prom.CounterVec
	stateTransitions *prom.CounterVec
	authPrompts      prom.Counter
	packageOps       *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the wearctl metrics on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.commandDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "wearctl",
		Name:      "command_duration_seconds",
		Help:      "Duration of shell commands executed on the device",
		Buckets:   prom.DefBuckets,
	})
	pr.commandResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "wearctl",
		Name:      "command_results_total",
		Help:      "Shell command results by outcome",
	}, []string{"result"})
	pr.stateTransitions = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "wearctl",
		Name:      "state_transitions_total",
		Help:      "Connection manager state transitions",
	}, []string{"from", "to"})
	pr.authPrompts = prom.NewCounter(prom.CounterOpts{
		Namespace: "wearctl",
		Name:      "authorization_prompts_total",
		Help:      "Times the device asked the user to accept the debug connection",
	})
	pr.packageOps = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "wearctl",
		Name:      "package_operations_total",
		Help:      "Package enable/disable operations by result",
	}, []string{"action", "result"})
	reg.MustRegister(pr.commandDuration, pr.commandResults, pr.stateTransitions, pr.authPrompts, pr.packageOps)
	return pr
}

func (p *PrometheusRecorder) ObserveCommandDuration(d time.Duration) {
	p.commandDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCommandResult(result ResultLabel) {
	p.commandResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncStateTransition(from, to string) {
	p.stateTransitions.WithLabelValues(from, to).Inc()
}

func (p *PrometheusRecorder) IncAuthorizationPrompt() {
	p.authPrompts.Inc()
}

func (p *PrometheusRecorder) IncPackageOperation(action string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	p.packageOps.WithLabelValues(action, result).Inc()
}

// WriteText writes every gathered metric family to w in the Prometheus text format.
func (p *PrometheusRecorder) WriteText(w io.Writer) error {
	mfs, err := p.reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

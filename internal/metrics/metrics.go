// Package metrics counts command invocations and exports them as a
// Prometheus node-exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nuext"

// DefaultTextfile is where the textfile is written unless configured.
const DefaultTextfile = "/tmp/nix-mox-metrics.prom"

// Recorder collects invocation metrics in a private registry.
type Recorder struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastRun     *prometheus.GaugeVec
	now         func() time.Time
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_invocations_total",
			Help:      "Command invocations by command and result.",
		}, []string{"command", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Interpreter run time per command.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		}, []string{"command"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "command_last_run_timestamp_seconds",
			Help:      "Unix time of the last invocation per command.",
		}, []string{"command"}),
		now: time.Now,
	}
	r.registry.MustRegister(r.invocations, r.duration, r.lastRun)
	return r
}

// Observe records one finished invocation. Durations are only recorded for
// invocations that ran a process.
func (r *Recorder) Observe(command, result string, duration time.Duration) {
	r.invocations.WithLabelValues(command, result).Inc()
	if duration > 0 {
		r.duration.WithLabelValues(command).Observe(duration.Seconds())
	}
	r.lastRun.WithLabelValues(command).Set(float64(r.now().Unix()))
}

// Registry exposes the underlying registry for inspection.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the current metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

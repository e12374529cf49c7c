package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SimCollector bundles Prometheus metrics for trajectory runs. It satisfies
// gotraj.Recorder.
type SimCollector struct {
	gatherer prometheus.Gatherer

	Runs         *prometheus.CounterVec
	RunSteps     prometheus.Histogram
	RunDurations prometheus.Histogram
	LastRange    prometheus.Gauge
}

// NewSimCollector registers run metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gotraj_runs_total",
		Help: "Total number of trajectory runs, labeled by outcome.",
	}, []string{"outcome"}), "gotraj_runs_total")
	if err != nil {
		return nil, err
	}

	steps, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gotraj_run_steps",
		Help:    "Integration steps per trajectory run.",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	}), "gotraj_run_steps")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gotraj_run_duration_seconds",
		Help:    "Wall time of a trajectory run in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}), "gotraj_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	lastRange, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gotraj_last_range_meters",
		Help: "Range of the most recent successful run.",
	}), "gotraj_last_range_meters")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:     gatherer,
		Runs:         runs,
		RunSteps:     steps,
		RunDurations: durations,
		LastRange:    lastRange,
	}, nil
}

// RecordRun records the outcome of one Simulate call.
func (c *SimCollector) RecordRun(outcome string, steps int, elapsed time.Duration, rangeM float64) {
	if c == nil {
		return
	}
	c.Runs.WithLabelValues(outcome).Inc()
	c.RunSteps.Observe(float64(steps))
	c.RunDurations.Observe(elapsed.Seconds())
	if outcome == "ok" {
		c.LastRange.Set(rangeM)
	}
}

// WriteTextfile dumps the gathered metrics in the text exposition format,
// suitable for the node_exporter textfile collector.
func (c *SimCollector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.gatherer); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

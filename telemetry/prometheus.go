// SPDX-License-Identifier: MIT

package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/graphnn/nn"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "graphnn"

// Prometheus is an nn.Recorder backed by client_golang collectors.
type Prometheus struct {
	forwards   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	degenerate *prometheus.CounterVec
}

var _ nn.Recorder = (*Prometheus)(nil)

// NewPrometheus creates and registers the collectors on reg. An empty namespace
// means DefaultNamespace. On a registration error (e.g. a duplicate) nothing
// stays registered and the error is returned.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	p := &Prometheus{
		forwards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layer_forward_total",
			Help:      "Successful forward calls per layer.",
		}, []string{"layer"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layer_forward_duration_seconds",
			Help:      "Forward call latency per layer.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
		}, []string{"layer"}),
		degenerate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layer_degenerate_total",
			Help:      "Numerical fallbacks applied per layer and kind.",
		}, []string{"layer", "kind"}),
	}
	collectors := []prometheus.Collector{p.forwards, p.latency, p.degenerate}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			for _, done := range collectors[:i] {
				reg.Unregister(done)
			}
			return nil, err
		}
	}

	return p, nil
}

// ObserveForward implements nn.Recorder.
func (p *Prometheus) ObserveForward(layer string, elapsed time.Duration) {
	p.forwards.WithLabelValues(layer).Inc()
	p.latency.WithLabelValues(layer).Observe(elapsed.Seconds())
}

// ObserveDegenerate implements nn.Recorder.
func (p *Prometheus) ObserveDegenerate(layer, kind string, count int) {
	p.degenerate.WithLabelValues(layer, kind).Add(float64(count))
}

// ForwardCounter exposes the forward counter child for layer.
func (p *Prometheus) ForwardCounter(layer string) prometheus.Counter {
	return p.forwards.WithLabelValues(layer)
}

// DegenerateCounter exposes the degeneracy counter child for (layer, kind).
func (p *Prometheus) DegenerateCounter(layer, kind string) prometheus.Counter {
	return p.degenerate.WithLabelValues(layer, kind)
}

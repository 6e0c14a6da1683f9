package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const defaultMetricsNamespace = "flowerfield"

// Config contains metrics configuration.
type Config struct {
	// Namespace is the prometheus namespace for all metrics. If empty, defaults to "flowerfield".
	Namespace string
	// Registerer is the prometheus registerer to use. If nil, prometheus.DefaultRegisterer is used.
	Registerer prometheus.Registerer
}

// Registry holds all flowerfield metrics.
type Registry struct {
	RendersTotal      *prometheus.CounterVec
	RenderDuration    prometheus.Histogram
	FlowersDrawnTotal prometheus.Counter
	ConfigUpdates     *prometheus.CounterVec
	HTTPRequestsTotal *prometheus.CounterVec
	LiveClients       prometheus.Gauge
}

// New creates all metrics and registers them.
func New(cfg Config) (*Registry, error) {
	registerer := cfg.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = defaultMetricsNamespace
	}

	r := &Registry{
		RendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "render",
			Name:      "passes_total",
			Help:      "Number of completed render passes by trigger.",
		}, []string{"trigger"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "render",
			Name:      "pass_duration_seconds",
			Help:      "Duration of a render pass including PNG encoding.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		FlowersDrawnTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "render",
			Name:      "flowers_total",
			Help:      "Number of flowers drawn.",
		}),
		ConfigUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "config",
			Name:      "updates_total",
			Help:      "Number of configuration updates by result.",
		}, []string{"result"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Number of HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		LiveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "live",
			Name:      "clients",
			Help:      "Number of connected live view clients.",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.RendersTotal, r.RenderDuration, r.FlowersDrawnTotal,
		r.ConfigUpdates, r.HTTPRequestsTotal, r.LiveClients,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObservePass records one completed pass. Safe to call on a nil Registry.
func (r *Registry) ObservePass(trigger string, flowers int, seconds float64) {
	if r == nil {
		return
	}
	r.RendersTotal.WithLabelValues(trigger).Inc()
	r.FlowersDrawnTotal.Add(float64(flowers))
	r.RenderDuration.Observe(seconds)
}

// ObserveConfigUpdate records a config update attempt. Safe on nil.
func (r *Registry) ObserveConfigUpdate(err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	r.ConfigUpdates.WithLabelValues(result).Inc()
}

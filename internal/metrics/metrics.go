// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the server's collectors and the registry they live in.
type Metrics struct {
	Registry *prometheus.Registry

	Frames    *prometheus.CounterVec // by route
	Votes     *prometheus.CounterVec // by outcome, choice
	KVErrors  *prometheus.CounterVec // by op
	CardFails prometheus.Counter
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors and any extra collectors (e.g. caches).
func New(extra ...prometheus.Collector) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dailywish_frames_total",
			Help: "Frame documents served, by route.",
		}, []string{"route"}),
		Votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dailywish_votes_total",
			Help: "Vote attempts, by outcome and choice.",
		}, []string{"outcome", "choice"}),
		KVErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dailywish_kv_errors_total",
			Help: "Key-value store failures, by operation.",
		}, []string{"op"}),
		CardFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dailywish_card_fallbacks_total",
			Help: "Card renders that fell back to the static SVG.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Frames, m.Votes, m.KVErrors, m.CardFails,
	)
	for _, c := range extra {
		if c != nil {
			reg.MustRegister(c)
		}
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

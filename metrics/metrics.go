// Package metrics exposes world loading and transfer counters to
// Prometheus. A nil *Metrics is valid and records nothing.
package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tileworlds"

type Metrics struct {
	worldsLoaded     prometheus.Counter
	doorsResolved    prometheus.Counter
	transfers        prometheus.Counter
	degradedFixtures prometheus.Counter
	fixtures         *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		worldsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worlds_loaded_total",
			Help:      "Worlds parsed and built by the graph loader.",
		}),
		doorsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "doors_resolved_total",
			Help:      "Doors whose destination world was resolved.",
		}),
		transfers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Entity bodies moved between world physics spaces.",
		}),
		degradedFixtures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_fixtures_total",
			Help:      "Interactable fixtures registered without a door link.",
		}),
		fixtures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fixtures",
			Help:      "Static fixtures per world.",
		}, []string{"world"}),
	}
	reg.MustRegister(m.worldsLoaded, m.doorsResolved, m.transfers, m.degradedFixtures, m.fixtures)
	return m
}

func (m *Metrics) WorldLoaded() {
	if m == nil {
		return
	}
	m.worldsLoaded.Inc()
}

func (m *Metrics) DoorResolved() {
	if m == nil {
		return
	}
	m.doorsResolved.Inc()
}

func (m *Metrics) Transferred() {
	if m == nil {
		return
	}
	m.transfers.Inc()
}

func (m *Metrics) SetFixtures(world string, n, degraded int) {
	if m == nil {
		return
	}
	m.fixtures.WithLabelValues(world).Set(float64(n))
	m.degradedFixtures.Add(float64(degraded))
}

// Serve exposes reg on addr under /metrics in a background goroutine.
func Serve(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		log.Printf("metrics: serving /metrics on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("metrics: server stopped: %v", err)
		}
	}()
}

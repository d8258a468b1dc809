package server

import (
	"time"

	"cast_check/analysis"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	registry *prometheus.Registry

	reports   prometheus.Counter
	abilities prometheus.Counter
	failures  prometheus.Counter
	cacheHits prometheus.Counter
	duration  prometheus.Histogram
	queued    prometheus.Gauge
	running   prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &metrics{
		registry: reg,
		reports: f.NewCounter(prometheus.CounterOpts{
			Namespace: "cast_check",
			Name:      "reports_computed_total",
			Help:      "Fights analysed.",
		}),
		abilities: f.NewCounter(prometheus.CounterOpts{
			Namespace: "cast_check",
			Name:      "abilities_scored_total",
			Help:      "Ability results produced.",
		}),
		failures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "cast_check",
			Name:      "ability_failures_total",
			Help:      "Abilities whose computation failed.",
		}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "cast_check",
			Name:      "cache_hits_total",
			Help:      "Requests answered from the report cache.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cast_check",
			Name:      "compute_duration_seconds",
			Help:      "Time spent computing one request.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		queued: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "cast_check",
			Name:      "queue_length",
			Help:      "Websocket jobs waiting for a slot.",
		}),
		running: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "cast_check",
			Name:      "jobs_running",
			Help:      "Websocket jobs being computed.",
		}),
	}
}

func (m *metrics) observe(reports []*analysis.Report, took time.Duration) {
	m.duration.Observe(took.Seconds())
	for _, r := range reports {
		m.reports.Inc()
		m.abilities.Add(float64(len(r.Results)))
		m.failures.Add(float64(len(r.Failures)))
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cyclesTotal    *prometheus.CounterVec
	decisionsTotal *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastPrice      *prometheus.GaugeVec
	cycleDuration  prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bandtrader_cycles_total",
				Help: "Total evaluation cycles by outcome",
			},
			[]string{"outcome"},
		),
		decisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bandtrader_decisions_total",
				Help: "Total decisions by kind",
			},
			[]string{"kind"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bandtrader_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bandtrader_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bandtrader_cycle_duration_seconds",
				Help:    "Duration of evaluation cycles in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordCycle records a completed cycle with its outcome.
func (r *Recorder) RecordCycle(outcome string) {
	r.cyclesTotal.WithLabelValues(outcome).Inc()
}

// RecordDecision records a decision by kind.
func (r *Recorder) RecordDecision(kind string) {
	r.decisionsTotal.WithLabelValues(kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordCycleDuration records the duration of one cycle in seconds.
func (r *Recorder) RecordCycleDuration(seconds float64) {
	r.cycleDuration.Observe(seconds)
}

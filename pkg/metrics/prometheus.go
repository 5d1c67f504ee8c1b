package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	upstreamRequests *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	signalsTotal     *prometheus.CounterVec
	predictionsTotal *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
	latency          *prometheus.HistogramVec
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// New returns the process-wide recorder registered on the default registry.
func New() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = NewWithRegistry(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// NewWithRegistry creates a recorder registered on reg (tests use a fresh registry).
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketdash_upstream_requests_total",
				Help: "Market data provider requests by outcome",
			},
			[]string{"provider", "result"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketdash_cache_lookups_total",
				Help: "Read-through cache lookups by kind and result",
			},
			[]string{"kind", "result"},
		),
		signalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketdash_signals_generated_total",
				Help: "Trading signals generated by type",
			},
			[]string{"signal_type"},
		),
		predictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketdash_predictions_generated_total",
				Help: "Predictions generated by model and horizon",
			},
			[]string{"model", "horizon"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketdash_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketdash_last_price",
				Help: "Last fetched close price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketdash_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	reg.MustRegister(r.upstreamRequests, r.cacheLookups, r.signalsTotal, r.predictionsTotal,
		r.errorsTotal, r.lastPrice, r.latency)
	return r
}

// RecordUpstream records a provider call outcome ("ok", "retry", "error", "fallback").
func (r *Recorder) RecordUpstream(provider, result string) {
	r.upstreamRequests.WithLabelValues(provider, result).Inc()
}

// RecordCache records a cache hit or miss.
func (r *Recorder) RecordCache(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(kind, result).Inc()
}

// RecordSignal counts a generated signal.
func (r *Recorder) RecordSignal(signalType string) {
	r.signalsTotal.WithLabelValues(signalType).Inc()
}

// RecordPrediction counts a generated prediction.
func (r *Recorder) RecordPrediction(model, horizon string) {
	r.predictionsTotal.WithLabelValues(model, horizon).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

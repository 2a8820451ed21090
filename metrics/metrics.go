package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go-token-swap"
)

// Metrics prometheus collectors for swaps and the price feed, registered on
// their own registry.
type Metrics struct {
	registry *prometheus.Registry
	swaps    *prometheus.CounterVec
	rejected *prometheus.CounterVec
	duration prometheus.Histogram
	fetches  *prometheus.CounterVec
	quotes   prometheus.Gauge
}

func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		swaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swaps_total",
			Help:      "Settled swap attempts by outcome.",
		}, []string{"status"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swaps_rejected_total",
			Help:      "Submissions rejected before settlement by reason.",
		}, []string{"reason"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "swap_duration_seconds",
			Help:      "Time from submission to recorded outcome.",
			Buckets:   prometheus.DefBuckets,
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_fetches_total",
			Help:      "Price feed fetches by outcome.",
		}, []string{"outcome"}),
		quotes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "price_quotes",
			Help:      "Quotes in the most recent successful price fetch.",
		}),
	}
	m.registry.MustRegister(m.swaps, m.rejected, m.duration, m.fetches, m.quotes)
	return m
}

func (m *Metrics) SwapCompleted(status swap.Status, took time.Duration) {
	m.swaps.WithLabelValues(string(status)).Inc()
	m.duration.Observe(took.Seconds())
}

func (m *Metrics) SwapRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

// FeedFetched records a price fetch; it has the shape of a prices.Subscriber
func (m *Metrics) FeedFetched(quotes []swap.Quote, err error) {
	if err != nil {
		m.fetches.WithLabelValues("error").Inc()
		return
	}
	m.fetches.WithLabelValues("ok").Inc()
	m.quotes.Set(float64(len(quotes)))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

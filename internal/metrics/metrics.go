// Package metrics exposes the sync engine's counters to prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "messenger"

// Send results.
const (
	SendOK      = "ok"
	SendDenied  = "denied"
	SendInvalid = "invalid"
	SendFailed  = "failed"
)

type Metrics struct {
	ViewsPublished      prometheus.Counter
	StalePassesDropped  prometheus.Counter
	TranslationFailures prometheus.Counter
	Sends               *prometheus.CounterVec
	PassDuration        prometheus.Histogram
}

// New builds the collectors and registers them on reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ViewsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views_published_total",
			Help:      "Reconciled views handed to subscribers.",
		}),
		StalePassesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_passes_dropped_total",
			Help:      "Reconciliation passes discarded because a newer snapshot arrived.",
		}),
		TranslationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_failures_total",
			Help:      "Messages shown untranslated because the translator failed or timed out.",
		}),
		Sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_total",
			Help:      "Send attempts by result.",
		}, []string{"result"}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Wall time of one reconciliation pass, translation included.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ViewsPublished, m.StalePassesDropped, m.TranslationFailures, m.Sends, m.PassDuration)
	}
	return m
}

func (m *Metrics) ObserveSend(result string) {
	m.Sends.WithLabelValues(result).Inc()
}

func (m *Metrics) ObservePass(start time.Time) {
	m.PassDuration.Observe(time.Since(start).Seconds())
}

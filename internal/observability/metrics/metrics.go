package metrics

import "github.com/prometheus/client_golang/prometheus"

// RelayMetrics exposes counters/histograms for the webhook relay flow.
type RelayMetrics struct {
	inboundTotal   *prometheus.CounterVec
	providerErrors *prometheus.CounterVec
	replyLatency   *prometheus.HistogramVec
}

func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	m := &RelayMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatrelay",
			Subsystem: "messaging",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound channel webhooks by intent and outcome",
		}, []string{"intent", "status"}),
		providerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatrelay",
			Subsystem: "providers",
			Name:      "errors_total",
			Help:      "Total external provider failures",
		}, []string{"provider"}),
		replyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chatrelay",
			Subsystem: "messaging",
			Name:      "reply_latency_seconds",
			Help:      "Latency from webhook receipt to reply decision",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.providerErrors, m.replyLatency)
	return m
}

func (m *RelayMetrics) ObserveInbound(intent, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(intent, status).Inc()
}

func (m *RelayMetrics) ObserveProviderError(provider string) {
	if m == nil {
		return
	}
	m.providerErrors.WithLabelValues(provider).Inc()
}

func (m *RelayMetrics) ObserveReplyLatency(intent string, seconds float64) {
	if m == nil {
		return
	}
	m.replyLatency.WithLabelValues(intent).Observe(seconds)
}

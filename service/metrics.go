package service

import (
	"github.com/layer-3/walletlink/core"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the coordinator's prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	signRequests         *prometheus.CounterVec
	pollAttempts         *prometheus.CounterVec
	simulationMode       prometheus.Gauge
	accountFetchFailures *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		signRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walletlink",
			Name:      "sign_requests_total",
			Help:      "Sign requests by kind and terminal state.",
		}, []string{"kind", "state"}),
		pollAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walletlink",
			Name:      "poll_attempts_total",
			Help:      "Status polls issued to the signing backend.",
		}, []string{"kind"}),
		simulationMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "walletlink",
			Name:      "simulation_mode",
			Help:      "1 when the coordinator runs against the simulated backend.",
		}),
		accountFetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walletlink",
			Name:      "account_fetch_failures_total",
			Help:      "Failed account data calls by call name.",
		}, []string{"call"}),
	}

	if reg != nil {
		reg.MustRegister(m.signRequests, m.pollAttempts, m.simulationMode, m.accountFetchFailures)
	}

	return m
}

func (m *Metrics) signRequestFinished(kind core.RequestKind, state core.RequestState) {
	if m == nil {
		return
	}
	m.signRequests.WithLabelValues(string(kind), state.String()).Inc()
}

func (m *Metrics) pollAttempt(kind core.RequestKind) {
	if m == nil {
		return
	}
	m.pollAttempts.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) setSimulated(simulated bool) {
	if m == nil {
		return
	}
	if simulated {
		m.simulationMode.Set(1)
	} else {
		m.simulationMode.Set(0)
	}
}

func (m *Metrics) accountFetchFailed(call string) {
	if m == nil {
		return
	}
	m.accountFetchFailures.WithLabelValues(call).Inc()
}

// Package metrics holds the Prometheus collectors recorded by the transport and the
// session refresh interceptor.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcomes
const (
	RefreshSuccess        = "success"
	RefreshFailure        = "failure"
	RefreshNoToken        = "no_refresh_token"
	RefreshRetryExhausted = "retry_exhausted"
	// the request went out before the current token was issued and is replayed with it
	RefreshAlreadyDone = "already_refreshed"
	// a sign out happened while the refresh call was in flight
	RefreshAbandoned = "abandoned"
)

type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Refreshes       *prometheus.CounterVec
	QueuedRequests  prometheus.Counter
	SignOuts        prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves them unregistered,
// which keeps tests and short lived CLI runs away from the global registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gym_client",
			Name:      "http_requests_total",
			Help:      "HTTP requests issued by the gym client, by method and status code.",
		}, []string{"method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gym_client",
			Name:      "http_request_duration_seconds",
			Help:      "Round trip latency of gym API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gym_client",
			Name:      "token_refreshes_total",
			Help:      "Access token refresh attempts by outcome.",
		}, []string{"outcome"}),
		QueuedRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gym_client",
			Name:      "refresh_queued_requests_total",
			Help:      "Requests parked behind an in-flight token refresh.",
		}),
		SignOuts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gym_client",
			Name:      "forced_sign_outs_total",
			Help:      "Sign outs forced by an unrecoverable authentication failure.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Requests, m.RequestDuration, m.Refreshes, m.QueuedRequests, m.SignOuts)
	}
	return m
}

// ObserveRequest is nil-safe so callers without metrics don't need to branch
func (m *Metrics) ObserveRequest(method string, status int, took time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.Requests.WithLabelValues(method, code).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(took.Seconds())
}

func (m *Metrics) ObserveRefresh(outcome string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveQueued() {
	if m == nil {
		return
	}
	m.QueuedRequests.Inc()
}

func (m *Metrics) ObserveSignOut() {
	if m == nil {
		return
	}
	m.SignOuts.Inc()
}

package dsm

import (
	"context"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports request counters and latencies per API.
type Metrics struct {
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dsm",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Requests sent, by API and HTTP status.",
		}, []string{"api", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dsm",
			Subsystem: "client",
			Name:      "transport_failures_total",
			Help:      "Requests that failed before a response was received.",
		}, []string{"api"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dsm",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Time from sending a request to receiving its response.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"api"}),
	}

	if reg == nil {
		return metrics, nil
	}

	for _, collector := range []prometheus.Collector{metrics.requests, metrics.failures, metrics.latency} {
		err := reg.Register(collector)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}

	return metrics, nil
}

// Install adds the metrics interceptors to chain.
func (m *Metrics) Install(chain *InterceptorChain) {
	chain.OnRequest(TimingInterceptor()).OnResponse(m.ResponseInterceptor())
}

// ResponseInterceptor records one response.
func (m *Metrics) ResponseInterceptor() ResponseInterceptor {
	return func(ctx context.Context, req *HTTPRequest, resp *HTTPResponse) error {
		if elapsed, ok := Elapsed(req); ok {
			m.latency.WithLabelValues(req.API).Observe(elapsed.Seconds())
		}

		if resp.StatusCode == 0 {
			m.failures.WithLabelValues(req.API).Inc()

			return nil
		}

		m.requests.WithLabelValues(req.API, strconv.Itoa(resp.StatusCode)).Inc()

		return nil
	}
}

// Requests returns the request counter, for tests and custom exporters.
func (m *Metrics) Requests() *prometheus.CounterVec {
	return m.requests
}

// Failures returns the transport failure counter.
func (m *Metrics) Failures() *prometheus.CounterVec {
	return m.failures
}

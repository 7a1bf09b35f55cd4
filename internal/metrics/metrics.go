// Package metrics registers the prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors the HTTP layer and the invoice write path
// report into.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InvoicesCreated prometheus.Counter
	RevenueTotal    prometheus.Counter
}

// New registers the collectors on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the collectors on the given registerer.
// Re-registration (e.g. across tests) reuses the existing collector.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		RequestsTotal: registerCounterVec(reg, prometheus.CounterOpts{
			Name: "pos_http_requests_total",
			Help: "Total number of HTTP requests served",
		}, []string{"method", "path", "status"}),
		RequestDuration: registerHistogramVec(reg, prometheus.HistogramOpts{
			Name:    "pos_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		InvoicesCreated: registerCounter(reg, prometheus.CounterOpts{
			Name: "pos_invoices_created_total",
			Help: "Total number of invoices created",
		}),
		RevenueTotal: registerCounter(reg, prometheus.CounterOpts{
			Name: "pos_invoice_revenue_total",
			Help: "Cumulative revenue of created invoices (VND)",
		}),
	}
}

func registerCounter(reg prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return already.ExistingCollector.(prometheus.Counter)
		}
		panic(err)
	}
	return c
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return already.ExistingCollector.(*prometheus.CounterVec)
		}
		panic(err)
	}
	return c
}

func registerHistogramVec(reg prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := reg.Register(h); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return already.ExistingCollector.(*prometheus.HistogramVec)
		}
		panic(err)
	}
	return h
}

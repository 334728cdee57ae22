package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service counters. Each controller has its own registry.
type Metrics struct {
	registry *prometheus.Registry

	documentsDecoded *prometheus.CounterVec
	documentsEncoded *prometheus.CounterVec
	profilesArchived prometheus.Counter
	requestDuration  *prometheus.HistogramVec
}

// NewMetrics creates and registers the service metrics
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.documentsDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snowprofile_documents_decoded_total",
			Help: "Documents received, by format and result",
		},
		[]string{"format", "result"}, // result: ok, invalid, error
	)
	m.documentsEncoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snowprofile_documents_encoded_total",
			Help: "Documents written, by format",
		},
		[]string{"format"},
	)
	m.profilesArchived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "snowprofile_profiles_archived_total",
			Help: "Profiles stored in the archive",
		},
	)
	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snowprofile_http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "code"},
	)

	m.registry.MustRegister(m.documentsDecoded, m.documentsEncoded, m.profilesArchived, m.requestDuration)
	return m
}

// Registry exposes the registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

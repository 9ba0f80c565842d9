package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the extractor.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesTotal      *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	ListingsTotal   prometheus.Counter
	MissingFields   *prometheus.CounterVec
	DuplicatesTotal prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "internships_pages_total",
			Help: "Result pages requested, by outcome.",
		},
		[]string{"outcome"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "internships_request_duration_seconds",
			Help:    "Round-trip latency of result page requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	listings := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "internships_listings_total",
			Help: "Listings appended to the aggregate record.",
		},
	)
	missing := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "internships_missing_fields_total",
			Help: "Listing fields filled with the sentinel, by field.",
		},
		[]string{"field"},
	)
	duplicates := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "internships_duplicate_listings_total",
			Help: "Listings skipped because their link was already seen.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "internships_errors_total",
			Help: "Page failures by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(pages, requestDuration, listings, missing, duplicates, errorsTotal)

	return &Metrics{
		Registry:        registry,
		PagesTotal:      pages,
		RequestDuration: requestDuration,
		ListingsTotal:   listings,
		MissingFields:   missing,
		DuplicatesTotal: duplicates,
		ErrorsTotal:     errorsTotal,
	}
}

// IncPage increments the pages counter for an outcome label.
func (m *Metrics) IncPage(outcome string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// AddListings increments the listings counter.
func (m *Metrics) AddListings(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ListingsTotal.Add(float64(n))
}

// IncMissing increments the sentinel counter for a field.
func (m *Metrics) IncMissing(field string) {
	if m == nil {
		return
	}
	m.MissingFields.WithLabelValues(field).Inc()
}

// AddDuplicates increments the duplicates counter.
func (m *Metrics) AddDuplicates(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DuplicatesTotal.Add(float64(n))
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

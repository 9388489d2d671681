package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce        sync.Once
	apiRequestsTotal    *prometheus.CounterVec
	apiLatencySeconds   *prometheus.HistogramVec
	apiErrorsTotal      *prometheus.CounterVec
	gradesTotal         *prometheus.CounterVec
	submissionsTotal    *prometheus.CounterVec
	dashboardCacheTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learnhub_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		gradesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_grades_total",
			Help: "Grades recorded or updated, by letter.",
		}, []string{"operation", "letter"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_submissions_total",
			Help: "Accepted submissions by initial status.",
		}, []string{"status"})

		dashboardCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_dashboard_cache_total",
			Help: "Student dashboard cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal, gradesTotal, submissionsTotal, dashboardCacheTotal)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// Grades exposes the grade counter.
func Grades() *prometheus.CounterVec {
	RegisterMetrics()
	return gradesTotal
}

// Submissions exposes the submission counter.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// DashboardCache exposes the dashboard cache hit/miss counter.
func DashboardCache() *prometheus.CounterVec {
	RegisterMetrics()
	return dashboardCacheTotal
}

// MetricsHandler serves the scrape endpoint for the default registry.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}

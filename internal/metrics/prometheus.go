package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder exports metrics on its own registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	tenantResolutions *prometheus.CounterVec
	tenantsRegistered prometheus.Counter
	logins            *prometheus.CounterVec
	noteOps           *prometheus.CounterVec
	activityPublished *prometheus.CounterVec
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// NewPrometheus creates a recorder with Go runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		tenantResolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notedesk_tenant_resolutions_total",
			Help: "Tenant resolutions by outcome",
		}, []string{"outcome"}),
		tenantsRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "notedesk_tenants_registered_total",
			Help: "Companies registered",
		}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notedesk_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		noteOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notedesk_note_operations_total",
			Help: "Note mutations by operation",
		}, []string{"op"}),
		activityPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notedesk_activity_events_total",
			Help: "Activity events by publish status",
		}, []string{"status"}),
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notedesk_http_requests_total",
			Help: "HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notedesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func (p *PrometheusRecorder) IncTenantResolution(outcome string) {
	p.tenantResolutions.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncTenantRegistered() { p.tenantsRegistered.Inc() }

func (p *PrometheusRecorder) IncLogin(outcome string) { p.logins.WithLabelValues(outcome).Inc() }

func (p *PrometheusRecorder) IncNoteCreated() { p.noteOps.WithLabelValues("create").Inc() }

func (p *PrometheusRecorder) IncNoteUpdated() { p.noteOps.WithLabelValues("update").Inc() }

func (p *PrometheusRecorder) IncNoteDeleted() { p.noteOps.WithLabelValues("delete").Inc() }

func (p *PrometheusRecorder) IncActivityPublished(status string) {
	p.activityPublished.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/coachdesk/core/sms"
)

// Metrics owns its registry so several instances can live in one process (tests).
type Metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	deliveries *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coachdesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coachdesk",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coachdesk",
			Name:      "sms_deliveries_total",
			Help:      "SMS delivery attempts by audience and status.",
		}, []string{"audience", "status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.deliveries,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// EchoMiddleware records every request under its route pattern.
func (m *Metrics) EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			status := ctx.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status < http.StatusBadRequest {
					status = http.StatusInternalServerError
				}
			}
			path := ctx.Path()
			if path == "" {
				path = "unmatched"
			}
			m.requests.WithLabelValues(ctx.Request().Method, path, strconv.Itoa(status)).Inc()
			m.latency.WithLabelValues(ctx.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// InstrumentLogs counts every appended delivery log entry.
func (m *Metrics) InstrumentLogs(repo sms.LogRepository) sms.LogRepository {
	return &logRepository{LogRepository: repo, deliveries: m.deliveries}
}

type logRepository struct {
	sms.LogRepository
	deliveries *prometheus.CounterVec
}

func (repo *logRepository) AppendLog(ctx context.Context, entry sms.LogEntry) (sms.LogEntry, error) {
	entry, err := repo.LogRepository.AppendLog(ctx, entry)
	if err == nil {
		repo.deliveries.WithLabelValues(entry.Audience, entry.Status).Inc()
	}
	return entry, err
}

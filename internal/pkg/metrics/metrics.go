package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mimapa",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mimapa",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mimapa",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Map-specific metrics
	MarkersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mimapa",
		Subsystem: "map",
		Name:      "markers_created_total",
		Help:      "Total markers created",
	})

	MarkersDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mimapa",
		Subsystem: "map",
		Name:      "markers_deleted_total",
		Help:      "Total markers deleted",
	})

	VisitsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mimapa",
		Subsystem: "map",
		Name:      "visits_recorded_total",
		Help:      "Total visits appended to the ledger",
	})

	VisitRecordFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mimapa",
		Subsystem: "map",
		Name:      "visit_record_failures_total",
		Help:      "Total visit recordings dropped due to ledger faults",
	})

	// Outcome is one of hit, empty, error.
	GeocodeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mimapa",
		Subsystem: "geocode",
		Name:      "requests_total",
		Help:      "Total geocoding provider requests by outcome",
	}, []string{"outcome"})

	ActiveSlotHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mimapa",
		Subsystem: "slot",
		Name:      "hits_total",
		Help:      "Total active-marker slot reads that returned a marker",
	})

	ActiveSlotMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mimapa",
		Subsystem: "slot",
		Name:      "misses_total",
		Help:      "Total active-marker slot reads that came back empty",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mimapa",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mimapa",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mimapa",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mimapa",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics updates database pool gauges from pgx pool stats.
// Accepts the stat through a small interface so this package does not
// import pgxpool.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}

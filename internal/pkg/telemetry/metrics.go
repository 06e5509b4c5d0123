package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// External provider health
	MetricGeocodeLatency  = "geocode.provider_latency"
	MetricGeocodeHitRatio = "geocode.hit_ratio"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricMarkersSaved   = "business.markers_saved"
	MetricVisitsRecorded = "business.visits_recorded"
)

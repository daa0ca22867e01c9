package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name. Incremented by
// the cache package's client hook.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "koinonia_redis_errors_total",
	Help: "Total number of Redis errors by command",
}, []string{"command"})

// EngagementToggles counts ledger toggle mutations by kind and resulting state.
var EngagementToggles = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "koinonia_engagement_toggles_total",
	Help: "Total number of engagement toggles by kind and new state",
}, []string{"kind", "state"})

// EngagementAppends counts append-only ledger events by kind. Views carry a
// countable label recording the view-policy decision.
var EngagementAppends = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "koinonia_engagement_appends_total",
	Help: "Total number of append-only engagement events by kind",
}, []string{"kind", "countable"})

var (
	promOnce     sync.Once
	promInstance *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the fiberprometheus middleware for HTTP-level metrics.
// fiberprometheus registers against the default Prometheus registry, so the
// instance is shared process-wide.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInstance = fiberprometheus.New(serviceName)
	})
	return promInstance
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}

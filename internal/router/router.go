package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ruanmelo/agenda-api/internal/handler"
	"github.com/ruanmelo/agenda-api/internal/middleware"
	"github.com/ruanmelo/agenda-api/pkg/metrics"
)

// Handler registers a domain's routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
	CORS      middleware.CORSConfig
	Timeout   time.Duration
}

type Router struct {
	engine *gin.Engine

	auth    *middleware.AuthMiddleware
	health  *handler.Handler
	public  Handler
	domains []Handler
	admin   []Handler

	metrics *metrics.Metrics
}

// New assembles the engine with the ambient middleware chain. Domain handlers
// are split into three tiers: public (no auth), authenticated, and admin-only.
func New(
	auth *middleware.AuthMiddleware,
	health *handler.Handler,
	public Handler,
	domains []Handler,
	admin []Handler,
	m *metrics.Metrics,
	logger zerolog.Logger,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:  engine,
		auth:    auth,
		health:  health,
		public:  public,
		domains: domains,
		admin:   admin,
		metrics: m,
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
		middleware.CORS(config.CORS),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	handler.RegisterValidation()

	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)

	// Public surface: guest booking and provider lookups.
	r.public.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	for _, h := range r.domains {
		h.RegisterRoutes(protected)
	}

	adminOnly := protected.Group("")
	adminOnly.Use(r.auth.RequireAdmin())
	for _, h := range r.admin {
		h.RegisterRoutes(adminOnly)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.health.LivenessCheck)
		health.GET("/ready", r.health.ReadinessCheck)
	}
	rg.GET("/metrics", r.health.MetricsHandler)
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		r.metrics.HTTPRequests.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		r.metrics.HTTPLatency.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

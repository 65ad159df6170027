package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/hebamio/midwife-api/internal/handler"
	"github.com/hebamio/midwife-api/internal/middleware"
	"github.com/hebamio/midwife-api/pkg/validator"
)

// Handler registers routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// ProtectedHandler additionally registers routes behind authentication.
type ProtectedHandler interface {
	Handler
	RegisterProtectedRoutes(*gin.RouterGroup)
}

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	authH        Handler
	midwifeH     ProtectedHandler
	appointmentH ProtectedHandler
	leadH        ProtectedHandler
	bookingH     ProtectedHandler
	h            *handler.Handler
	metrics      *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type Config struct {
	RateLimit     rate.Limit
	RateBurst     int
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH Handler,
	midwifeH ProtectedHandler,
	appointmentH ProtectedHandler,
	leadH ProtectedHandler,
	bookingH ProtectedHandler,
	h *handler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	if v, ok := binding.Validator.Engine().(*playgroundvalidator.Validate); ok {
		// Booking payloads carry HH:MM and dd/mm/yyyy strings.
		_ = validator.Register(v)
	}

	r := &Router{
		engine:       engine,
		auth:         auth,
		authH:        authH,
		midwifeH:     midwifeH,
		appointmentH: appointmentH,
		leadH:        leadH,
		bookingH:     bookingH,
		h:            h,
		metrics:      initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: 30 * time.Second}),
		middleware.CORS(config.CORSConfig),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)

	// Public routes: directory, auth and the booking surface.
	r.authH.RegisterRoutes(api)
	r.midwifeH.RegisterRoutes(api)
	r.bookingH.RegisterRoutes(api)
	r.leadH.RegisterRoutes(api)
	r.appointmentH.RegisterRoutes(api)

	// Protected routes: everything a logged-in midwife manages.
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.midwifeH.RegisterProtectedRoutes(protected)
	r.appointmentH.RegisterProtectedRoutes(protected)
	r.leadH.RegisterProtectedRoutes(protected)
	r.bookingH.RegisterProtectedRoutes(protected)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}

package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akulbansal1/carelink/internal/handler"
	"github.com/akulbansal1/carelink/internal/middleware"
	"github.com/akulbansal1/carelink/pkg/logger"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AdminHandler additionally exposes routes gated behind the admin
// session.
type AdminHandler interface {
	Handler
	RegisterAdminRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitRPS  float64
	RateBurst     int
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
	CacheMaxAge   int
	Logger        *logger.Logger
}

type Router struct {
	engine       *gin.Engine
	sessionMW    *middleware.SessionMiddleware
	authH        AdminHandler
	patientH     AdminHandler
	doctorH      AdminHandler
	appointmentH AdminHandler
	medicineH    Handler
	contactH     Handler
	h            *handler.Handler
	metrics      *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func NewRouter(
	sessionMW *middleware.SessionMiddleware,
	authH AdminHandler,
	patientH AdminHandler,
	doctorH AdminHandler,
	appointmentH AdminHandler,
	medicineH Handler,
	contactH Handler,
	h *handler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:       engine,
		sessionMW:    sessionMW,
		authH:        authH,
		patientH:     patientH,
		doctorH:      doctorH,
		appointmentH: appointmentH,
		medicineH:    medicineH,
		contactH:     contactH,
		h:            h,
		metrics:      initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(config.Logger),
		r.metricsMiddleware(),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimitRPS,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	if config.CacheMaxAge > 0 {
		engine.Use(middleware.CacheControl(config.CacheMaxAge))
	}

	return r
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) Setup() {
	r.engine.GET("/health", r.h.HealthCheck)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	// Public surface: login plus the patient-facing views.
	r.authH.RegisterRoutes(api)
	r.patientH.RegisterRoutes(api)
	r.doctorH.RegisterRoutes(api)
	r.appointmentH.RegisterRoutes(api)
	r.medicineH.RegisterRoutes(api)
	r.contactH.RegisterRoutes(api)

	// Admin surface: everything here requires a live session.
	admin := api.Group("")
	admin.Use(r.sessionMW.RequireSession())
	r.authH.RegisterAdminRoutes(admin)
	r.patientH.RegisterAdminRoutes(admin)
	r.doctorH.RegisterAdminRoutes(admin)
	r.appointmentH.RegisterAdminRoutes(admin)
}

func initRouterMetrics(prefix string) *routerMetrics {
	if prefix == "" {
		prefix = "carelink"
	}
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_requests_total",
			Help: "HTTP requests processed",
		}, []string{"method", "path", "status"}),
		errorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_request_errors_total",
			Help: "HTTP requests that ended in an error status",
		}, []string{"method", "path", "status"}),
	}
	prometheus.MustRegister(m.requestDuration, m.requestTotal, m.errorTotal)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		}
	}
}

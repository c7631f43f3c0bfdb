package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/amire/crewboard/docs"
	httpHandlers "github.com/amire/crewboard/internal/adapters/http"
	"github.com/amire/crewboard/internal/adapters/repository"
	"github.com/amire/crewboard/internal/application/services"
	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/config"
	"github.com/amire/crewboard/internal/infrastructure/database"
	"github.com/amire/crewboard/internal/infrastructure/logger"
	"github.com/amire/crewboard/internal/infrastructure/realtime"
	"github.com/amire/crewboard/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
	db     *database.DB
	hub    *realtime.Hub
	cancel context.CancelFunc
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// NewCustomValidator reports fields by their JSON names
func NewCustomValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate validates structs and turns failures into 400s
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("validation failed: %s failed on %s", fe.Field(), fe.Tag())).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusBadRequest, "validation failed").SetInternal(err)
}

// New creates a new server instance
func New(cfg *config.Config, db *database.DB, appLogger *logger.Logger) (*Server, error) {
	loc, err := cfg.Client.Location()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.Validator = NewCustomValidator()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
		db:     db,
		hub:    realtime.NewHub(appLogger),
	}

	server.setupMiddleware()

	var events ports.EventPublisher = server.hub
	if cfg.Metrics.Enabled {
		events = server.setupMetrics(events)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	jobRepo := repository.NewJobRepository(db.DB)
	memberRepo := repository.NewMemberRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg.JWT, appLogger)
	jobService := services.NewJobService(jobRepo, memberRepo, events, loc, appLogger)
	teamService := services.NewTeamService(memberRepo, events, loc, appLogger)

	server.setupRoutes(routeHandlers{
		auth:    httpHandlers.NewAuthHandler(authService, appLogger),
		version: httpHandlers.NewVersionHandler(cfg.App.Version),
		jobs:    httpHandlers.NewJobHandler(jobService, loc, appLogger),
		team:    httpHandlers.NewTeamHandler(teamService, appLogger),
		ws:      httpHandlers.NewWebSocketHandler(server.hub, server.originAllowed, appLogger),
	}, authService)

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			reqLogger := s.logger.WithRequestID(values.RequestID)
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				reqLogger.WithError(values.Error).Errorw("HTTP request failed", fields...)
			} else {
				reqLogger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.allowedOrigins(),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.POST, echo.DELETE},
	}))

	// Rate limiting middleware
	limit := rate.Every(s.config.Security.RateLimitWindow / time.Duration(max(s.config.Security.RateLimitRequests, 1)))
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: limit, Burst: s.config.Security.RateLimitRequests, ExpiresIn: s.config.Security.RateLimitWindow},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, httpHandlers.MessageResponse{Message: "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, httpHandlers.MessageResponse{Message: "rate limit exceeded"})
		},
	}))

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	}))

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Timeout middleware; the websocket handler hijacks the connection
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasSuffix(c.Request().URL.Path, "/ws")
		},
		Timeout:      s.config.Server.RequestTimeout,
		ErrorMessage: `{"message":"request timed out"}`,
	}))
}

type routeHandlers struct {
	auth    *httpHandlers.AuthHandler
	version *httpHandlers.VersionHandler
	jobs    *httpHandlers.JobHandler
	team    *httpHandlers.TeamHandler
	ws      *httpHandlers.WebSocketHandler
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(h routeHandlers, auth TokenValidator) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := s.echo.Group(s.config.Server.BasePath)

	// Public routes
	v1.POST("/login", h.auth.Login)
	v1.GET("/version", h.version.Version)

	authed := authMiddleware(auth, s.logger)
	writers := requireRole(s.logger, entities.UserRoleAdmin, entities.UserRoleStaff)

	// Job routes (authenticated)
	jobGroup := v1.Group("/jobs", authed)
	jobGroup.GET("", h.jobs.ListJobs)
	jobGroup.POST("", h.jobs.CreateJob, writers)
	jobGroup.GET("/:id", h.jobs.GetJob)
	jobGroup.PUT("/:id", h.jobs.ReplaceJob, writers)
	jobGroup.DELETE("/:id", h.jobs.DeleteJob, writers)

	// Team routes (authenticated)
	teamGroup := v1.Group("/team", authed)
	teamGroup.GET("", h.team.ListMembers)
	teamGroup.POST("", h.team.CreateMember, writers)
	teamGroup.GET("/:id", h.team.GetMember)
	teamGroup.PUT("/:id", h.team.ReplaceMember, writers)
	teamGroup.DELETE("/:id", h.team.DeleteMember, requireRole(s.logger, entities.UserRoleAdmin))

	// Change feed
	v1.GET("/ws", h.ws.Subscribe, authed)
}

// setupMetrics configures Prometheus metrics and returns events wrapped
// so that published changes are counted
func (s *Server) setupMetrics(events ports.EventPublisher) ports.EventPublisher {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewboard_events_published_total",
			Help: "Change events published to subscribers",
		},
		[]string{"type"},
	)

	registry.MustRegister(requestsTotal, requestDuration, eventsTotal)

	// Custom metrics middleware
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))

	return &countingPublisher{next: events, counter: eventsTotal}
}

type countingPublisher struct {
	next    ports.EventPublisher
	counter *prometheus.CounterVec
}

func (p *countingPublisher) Publish(eventType string, data any) {
	p.counter.WithLabelValues(eventType).Inc()
	p.next.Publish(eventType, data)
}

func (s *Server) allowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(s.config.Security.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func (s *Server) originAllowed(origin string) bool {
	for _, o := range s.allowedOrigins() {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := s.db.Check(ctx); err != nil {
		status = "error"
		checks["database"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"stats":  s.db.Stats(),
		}
	}

	response := map[string]interface{}{
		"status":  status,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"checks":  checks,
		"version": s.config.App.Version,
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.db.Check(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "database_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start runs the event hub and serves HTTP until Shutdown
func (s *Server) Start(address string) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.hub.Run(ctx)

	s.logger.Infow("Starting server", "address", address, "base_path", s.config.Server.BasePath)
	err := s.echo.StartServer(&http.Server{
		Addr:         address,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	})
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	if s.cancel != nil {
		s.cancel()
	}
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := httpHandlers.MessageResponse{Message: http.StatusText(code)}

		var he *echo.HTTPError
		if errors.As(httpHandlers.ErrorStatus(err), &he) {
			code = he.Code
			msg.Message = fmt.Sprint(he.Message)
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		}

		if code >= http.StatusInternalServerError {
			log.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				log.Errorw("Error sending response", "error", err)
			}
		}
	}
}

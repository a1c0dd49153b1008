// Package http implements the REST API of Enrollment Hub on top of gin.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/alem-hub/enrollment-hub/internal/application/command"
	"github.com/alem-hub/enrollment-hub/internal/application/query"
	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
	"github.com/alem-hub/enrollment-hub/internal/interface/http/handlers"
	"github.com/alem-hub/enrollment-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Host - address to bind (default: "0.0.0.0").
	Host string

	// Port - port to listen on (default: 8080).
	Port int

	// ReadTimeout - maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout - maximum duration for writing the response.
	WriteTimeout time.Duration

	// IdleTimeout - maximum duration for idle connections.
	IdleTimeout time.Duration

	// MaxHeaderBytes - maximum size of request headers.
	MaxHeaderBytes int

	// AllowedOrigins - allowed origins for CORS. "*" allows any.
	AllowedOrigins []string

	// RequestTimeout - deadline put on every request context.
	RequestTimeout time.Duration

	// MaxRequestBytes - maximum size of a request body.
	MaxRequestBytes int64

	// Version - reported by the root and health endpoints.
	Version string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     60 * time.Second,
		MaxHeaderBytes:  1 << 20,
		AllowedOrigins:  []string{"*"},
		RequestTimeout:  5 * time.Second,
		MaxRequestBytes: 1 << 20,
		Version:         "v1",
	}
}

// Address returns the server address string.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Dependencies contains all dependencies required by HTTP handlers.
type Dependencies struct {
	// Command Handlers (write side)
	CreateStudent  *command.CreateStudentHandler
	UpdateStudent  *command.UpdateStudentHandler
	CreateCourse   *command.CreateCourseHandler
	UpdateCourse   *command.UpdateCourseHandler
	EnrollStudent  *command.EnrollStudentHandler
	UpdateProgress *command.UpdateProgressHandler
	SoftDelete     *command.SoftDeleteHandler

	// Read side
	Projector *query.Projector

	// Logger
	Logger *logger.Logger

	// Health Check Dependencies
	HealthChecker handlers.HealthChecker
}

// NewDependencies builds every handler over one store and one publisher.
func NewDependencies(
	uow enrollment.UnitOfWorkFactory,
	publisher shared.EventPublisher,
	admission command.EnrollStudentHandlerConfig,
	log *logger.Logger,
) Dependencies {
	return Dependencies{
		CreateStudent:  command.NewCreateStudentHandler(uow, publisher),
		UpdateStudent:  command.NewUpdateStudentHandler(uow, publisher),
		CreateCourse:   command.NewCreateCourseHandler(uow, publisher),
		UpdateCourse:   command.NewUpdateCourseHandler(uow, publisher),
		EnrollStudent:  command.NewEnrollStudentHandler(uow, publisher, admission),
		UpdateProgress: command.NewUpdateProgressHandler(uow, publisher),
		SoftDelete:     command.NewSoftDeleteHandler(uow, publisher),
		Projector:      query.NewProjector(uow),
		Logger:         log,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server represents the HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	engine     *gin.Engine
	httpServer *http.Server
	logger     *logger.Logger

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer creates a new HTTP server with the given configuration and dependencies.
func NewServer(config Config, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.HealthChecker == nil {
		deps.HealthChecker = handlers.NewNoopHealthChecker()
	}
	registerValidators()

	s := &Server{
		config:    config,
		deps:      deps,
		engine:    gin.New(),
		logger:    deps.Logger.With(logger.Component("http")),
		startedAt: time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           config.Address(),
		Handler:        s.engine,
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		IdleTimeout:    config.IdleTimeout,
		MaxHeaderBytes: config.MaxHeaderBytes,
	}

	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE & ROUTING
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) setupMiddleware() {
	s.engine.Use(
		handlers.Recovery(s.logger),
		handlers.RequestID(),
		handlers.AccessLog(s.logger),
		s.corsMiddleware(),
		handlers.SecurityHeaders(),
		handlers.RequestSizeLimit(s.config.MaxRequestBytes),
		handlers.Timeout(s.config.RequestTimeout),
	)

	s.engine.NoRoute(func(c *gin.Context) {
		handlers.RespondError(c, http.StatusNotFound, handlers.CodeNotFound, "Route not found", c.Request.URL.Path)
	})
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", handlers.RequestIDHeader},
		ExposeHeaders: []string{handlers.RequestIDHeader},
		MaxAge:        24 * time.Hour,
	}

	origins := s.config.AllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func (s *Server) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Health & Status Endpoints
	// ─────────────────────────────────────────────────────────────────────────
	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/ready", s.handleReady)
	s.engine.GET("/live", s.handleLive)

	api := s.engine.Group("/api/v1")

	// ─────────────────────────────────────────────────────────────────────────
	// Students
	// ─────────────────────────────────────────────────────────────────────────
	api.GET("/students", s.handleListStudents)
	api.POST("/students", s.handleCreateStudent)
	api.GET("/students/:id", s.handleGetStudent)
	api.PUT("/students/:id", s.handleUpdateStudent)
	api.DELETE("/students/:id", s.handleSoftDelete(shared.KindStudent))
	api.GET("/students/:id/courses", s.handleStudentCourses)
	api.PUT("/students/:id/courses/:courseId/progress", s.handleUpdateProgressByStudentCourse)

	// ─────────────────────────────────────────────────────────────────────────
	// Courses
	// ─────────────────────────────────────────────────────────────────────────
	api.GET("/courses", s.handleListCourses)
	api.POST("/courses", s.handleCreateCourse)
	api.GET("/courses/:id", s.handleGetCourse)
	api.PUT("/courses/:id", s.handleUpdateCourse)
	api.DELETE("/courses/:id", s.handleSoftDelete(shared.KindCourse))
	api.GET("/courses/:id/students", s.handleCourseStudents)

	// ─────────────────────────────────────────────────────────────────────────
	// Enrollments
	// ─────────────────────────────────────────────────────────────────────────
	api.GET("/enrollments", s.handleListEnrollments)
	api.POST("/enrollments", s.handleEnroll)
	api.GET("/enrollments/:id", s.handleGetEnrollment)
	api.PUT("/enrollments/:id/progress", s.handleUpdateProgress)
	api.DELETE("/enrollments/:id", s.handleSoftDelete(shared.KindEnrollment))

	// ─────────────────────────────────────────────────────────────────────────
	// Administration
	// ─────────────────────────────────────────────────────────────────────────
	api.GET("/audit", s.handleAudit)
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", logger.String("address", s.config.Address()))

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Uptime returns the server uptime.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startedAt)
}

// Address returns the server address.
func (s *Server) Address() string {
	return s.config.Address()
}

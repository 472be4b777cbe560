// Package api exposes the engine to the UI over a local HTTP gateway.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/symptoguide-engine/internal/assessment"
	"github.com/symptoguide-engine/internal/domain"
	"github.com/symptoguide-engine/internal/hospitals"
	"github.com/symptoguide-engine/internal/middleware"
	"github.com/symptoguide-engine/internal/prefs"
	"github.com/symptoguide-engine/internal/session"
)

// Server is the HTTP gateway. It owns no business logic; handlers translate
// between HTTP and the engine packages.
type Server struct {
	config       domain.ConfigManager
	router       *gin.Engine
	server       *http.Server
	logger       *logrus.Logger
	backend      domain.PredictionAPI
	sessions     *session.Store
	orchestrator *assessment.Orchestrator
	matcher      *hospitals.Matcher
	locator      *SwitchableLocator
	departments  domain.DepartmentStore
	history      *prefs.SQLiteStore
}

// Deps carries everything the gateway serves. History may be nil when the
// prefs database is unavailable; the history endpoint then reports 503.
type Deps struct {
	Config       domain.ConfigManager
	Logger       *logrus.Logger
	Backend      domain.PredictionAPI
	Sessions     *session.Store
	Orchestrator *assessment.Orchestrator
	Matcher      *hospitals.Matcher
	Locator      *SwitchableLocator
	Departments  domain.DepartmentStore
	History      *prefs.SQLiteStore
}

// NewServer creates the gateway and wires its routes.
func NewServer(deps Deps) *Server {
	cfg := deps.Config.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestLogger(deps.Logger))

	s := &Server{
		config:       deps.Config,
		router:       router,
		logger:       deps.Logger,
		backend:      deps.Backend,
		sessions:     deps.Sessions,
		orchestrator: deps.Orchestrator,
		matcher:      deps.Matcher,
		locator:      deps.Locator,
		departments:  deps.Departments,
		history:      deps.History,
	}
	s.setupRoutes()
	return s
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.GetGatewayConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("gateway listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start gateway: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/sessions", s.handleCreateSession)
		api.GET("/sessions/:id", s.handleGetSession)
		api.DELETE("/sessions/:id", s.handleDeleteSession)

		api.POST("/sessions/:id/symptoms", s.handleAddSymptom)
		api.DELETE("/sessions/:id/symptoms/:label", s.handleRemoveSymptom)
		api.PUT("/sessions/:id/severity", s.handleSetSeverity)
		api.PUT("/sessions/:id/details", s.handleSetDetails)
		api.PUT("/sessions/:id/medical-history", s.handleSetMedicalHistory)
		api.PUT("/sessions/:id/followups/:index", s.handleAnswerFollowUp)
		api.POST("/sessions/:id/next", s.handleNext)
		api.POST("/sessions/:id/prev", s.handlePrev)

		api.POST("/sessions/:id/submit", s.handleSubmit)
		api.GET("/sessions/:id/results", s.handleResults)

		api.POST("/extract-symptoms", s.handleExtractSymptoms)
		api.GET("/symptoms", s.handleListSymptoms)
		api.GET("/symptom-keywords", s.handleListSymptomKeywords)

		api.GET("/department", s.handleGetDepartment)
		api.PUT("/department", s.handleSetDepartment)
		api.GET("/history", s.handleHistory)

		api.GET("/hospitals", s.handleHospitals)
		api.POST("/hospitals/refresh", s.handleHospitalsRefresh)
		api.PUT("/hospitals/filters", s.handleHospitalFilters)
		api.DELETE("/hospitals/filters", s.handleClearHospitalFilters)
		api.POST("/hospitals/:id/focus", s.handleFocusHospital)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// Package api exposes the study flows over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cebuano/internal/metrics"
	"cebuano/internal/middleware"
	"cebuano/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig holds the collaborators of the HTTP router
type RouterConfig struct {
	Study    *service.StudyService
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// NewRouter builds the gin engine with every route registered
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Logger, cfg.Metrics))

	router.GET("/healthz", HealthCheck)
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	study := NewStudyHandler(cfg.Study, cfg.Logger)

	api := router.Group("/api")
	api.Use(middleware.RequireLearner(cfg.Study.Settings(), cfg.Logger))
	{
		api.GET("/settings", study.GetSettings)
		api.PUT("/settings", study.PutSettings)

		api.GET("/:kind/due", study.GetDue)
		api.POST("/:kind/reviews", study.PostReview)
		api.GET("/:kind/progress", study.GetProgress)
	}

	return router
}

// Server runs the HTTP API
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer creates a new server listening on addr
func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/seriouslegend2/hungerhearts-sub000/config"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/api/handlers"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/api/middleware"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/auth"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/metrics"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/services"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Services bundles the domain services the HTTP surface depends on.
type Services struct {
	Identity *services.IdentityService
	Posts    *services.PostService
	Requests *services.RequestService
	Orders   *services.OrderService
}

// Server represents the HTTP server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
	services   Services
	tokens     *auth.Manager
	metrics    *metrics.Metrics
	tracer     tracing.Tracer
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, svcs Services, tokens *auth.Manager, m *metrics.Metrics, tracer tracing.Tracer) *Server {
	server := &Server{
		config:   cfg,
		services: svcs,
		tokens:   tokens,
		metrics:  m,
		tracer:   tracer,
	}

	router := server.setupRouter()
	server.router = router

	httpServer := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  cfg.ServerTimeout,
		WriteTimeout: cfg.ServerTimeout,
	}
	server.httpServer = httpServer

	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers.RegisterValidations()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	if app := s.tracer.Application(); app != nil {
		router.Use(middleware.NewRelicMiddleware(app))
	}

	userAuth := middleware.RequireRole(s.tokens, auth.RoleUser)
	donorAuth := middleware.RequireRole(s.tokens, auth.RoleDonor)
	boyAuth := middleware.RequireRole(s.tokens, auth.RoleDeliveryBoy)
	moderatorAuth := middleware.RequireRole(s.tokens, auth.RoleModerator)

	authHandler := handlers.NewAuthHandler(s.services.Identity, s.tokens, s.config.Auth)
	authHandler.RegisterRoutes(router)

	boyHandler := handlers.NewDeliveryBoyHandler(s.services.Identity, s.tokens, s.config.Auth)
	boyHandler.RegisterRoutes(router, userAuth, boyAuth)

	moderatorHandler := handlers.NewModeratorHandler(s.services.Identity)
	moderatorHandler.RegisterRoutes(router, moderatorAuth)

	postHandler := handlers.NewPostHandler(s.services.Posts)
	postHandler.RegisterRoutes(router, donorAuth)

	requestHandler := handlers.NewRequestHandler(s.services.Requests)
	requestHandler.RegisterRoutes(router, userAuth, donorAuth)

	orderHandler := handlers.NewOrderHandler(s.services.Orders)
	orderHandler.RegisterRoutes(router, userAuth, boyAuth)

	metricsHandler := handlers.NewMetricsHandler(s.metrics, s.tracer)
	metricsHandler.RegisterRoutes(router)

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}

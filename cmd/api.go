package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/seriouslegend2/hungerhearts-sub000/config"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/api"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/auth"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/cache"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/database"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/messaging"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/metrics"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/repositories"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/search"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/services"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/tracing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long:  `Start the HTTP API server for posts, requests, orders and accounts`,
	RunE:  runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	// Configure logging
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize MongoDB
	mongoDB, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoDB.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to close MongoDB connection")
		}
	}()
	if err := mongoDB.EnsureIndexes(ctx); err != nil {
		return err
	}

	// Initialize cache
	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
	}

	// Initialize tracer
	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		tracer = tracing.Disabled()
	}

	// Initialize Elasticsearch client
	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search functionality")
	}

	// Initialize the event publisher
	var publisher messaging.Publisher
	if cfg.Azure.QueueConnStr != "" {
		bus, err := messaging.NewServiceBus(cfg.Azure)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Service Bus, continuing without event publishing")
		} else {
			publisher = bus
			defer func() {
				if err := bus.Close(); err != nil {
					log.Error().Err(err).Msg("Failed to close Service Bus")
				}
			}()
		}
	}

	// Initialize metrics
	metricsCollector := metrics.NewMetrics()
	metricsCollector.SetHealth("mongodb", true)
	metricsCollector.SetHealth("redis", redisCache.Enabled())

	// Initialize repositories
	db := mongoDB.Database()
	userRepo := repositories.NewUserRepository(db)
	donorRepo := repositories.NewDonorRepository(db)
	moderatorRepo := repositories.NewModeratorRepository(db)
	boyRepo := repositories.NewDeliveryBoyRepository(db)
	postRepo := repositories.NewPostRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	// Initialize services
	ratingService := services.NewRatingService(userRepo, donorRepo, metricsCollector, int64(cfg.Rating.BatchSize))
	svcs := api.Services{
		Identity: services.NewIdentityService(userRepo, donorRepo, boyRepo, moderatorRepo),
		Posts:    services.NewPostService(postRepo, donorRepo, redisCache, elasticClient, metricsCollector, cfg.Redis.PostsTTL),
		Requests: services.NewRequestService(requestRepo, postRepo, userRepo, donorRepo, ratingService, publisher, metricsCollector, tracer),
		Orders:   services.NewOrderService(orderRepo, requestRepo, postRepo, userRepo, boyRepo, ratingService, publisher, metricsCollector, tracer, cfg.Orders.AllowPickupSkip),
	}

	// Initialize and start the server
	tokens := auth.NewManager(cfg.Auth.Secret, cfg.Auth.TokenExpiry)
	server := api.NewServer(cfg, svcs, tokens, metricsCollector, tracer)

	// Start the server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	// Shutdown the server
	if err := server.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutting down API server")
	return nil
}

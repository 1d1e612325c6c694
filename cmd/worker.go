package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/seriouslegend2/hungerhearts-sub000/config"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/database"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/messaging"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/metrics"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/repositories"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker to consume order events and keep derived ratings fresh`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
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

	// Create an error group to manage goroutines
	g, ctx := errgroup.WithContext(ctx)

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

	// Initialize metrics
	metricsCollector := metrics.NewMetrics()

	// Initialize the rating service
	db := mongoDB.Database()
	userRepo := repositories.NewUserRepository(db)
	donorRepo := repositories.NewDonorRepository(db)
	ratingService := services.NewRatingService(userRepo, donorRepo, metricsCollector, int64(cfg.Rating.BatchSize))

	// Initialize Azure Service Bus client
	azureBus, err := messaging.NewServiceBus(cfg.Azure)
	if err != nil {
		return err
	}
	defer func() {
		if err := azureBus.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Service Bus")
		}
	}()

	// Start the service bus processor
	g.Go(func() error {
		log.Info().Str("queue", cfg.Azure.QueueName).Msg("Starting Azure Service Bus processor")
		return azureBus.ProcessMessages(ctx, ratingService.HandleOrderEvent)
	})

	// Start the rating recompute cron job as a fallback mechanism
	g.Go(func() error {
		log.Info().Msg("Starting rating recompute cron job as fallback mechanism")

		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.Rating.RefreshInterval),
			gocron.NewTask(func() {
				log.Info().Msg("Running fallback rating recompute to catch any missed events")
				if err := ratingService.RecomputeAll(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to recompute ratings in fallback job")
				}
			}),
		)
		if err != nil {
			return err
		}

		scheduler.Start()

		// Wait for context cancellation
		<-ctx.Done()

		return scheduler.Shutdown()
	})

	// Wait for any goroutine to exit
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}

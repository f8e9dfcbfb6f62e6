package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sjsage522/pricecontext/config"
	"sjsage522/pricecontext/helpers"
	"sjsage522/pricecontext/internal"
	"sjsage522/pricecontext/internal/fetcher"
	"sjsage522/pricecontext/internal/rates"
	"sjsage522/pricecontext/internal/site"
	"sjsage522/pricecontext/logger"
	"sjsage522/pricecontext/services/cache"
	"sjsage522/pricecontext/services/publisher"
	"sjsage522/pricecontext/services/settings"
	"sjsage522/pricecontext/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Strs("pages", cfg.PageURLs).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	// Create and start worker
	w := worker.NewWorker(
		ctx,
		cfg.PageURLs,
		services.Dependencies,
		helpers.NewLogger(cfg.ErrorLogFile),
		cfg.RefreshInterval,
	)

	log.Info().
		Int("session_count", len(w.Sessions())).
		Msg("Created page sessions")

	// Start worker in a goroutine
	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting price context worker")
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	internal.Dependencies
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Settings != nil {
		s.Settings.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	// Initialize cache service
	cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	if cacheService == nil {
		return nil, fmt.Errorf("failed to create cache service")
	}
	services.Cache = cacheService

	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	// Initialize settings store
	switch cfg.SettingsBackend {
	case config.SettingsBackendMemory:
		services.Settings = settings.NewMemoryStore()
	default:
		services.Settings = settings.NewRedisStore(cfg.RedisAddr, cfg.RedisDB, cfg.SettingsPrefix)
	}

	logger.Info("Using %s settings backend (prefix: %s)", cfg.SettingsBackend, cfg.SettingsPrefix)

	// Initialize publisher
	redisPublisher := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	if redisPublisher == nil {
		return nil, fmt.Errorf("failed to create redis publisher")
	}
	services.Publisher = redisPublisher

	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	// Initialize page pipeline
	sites, err := site.DefaultTable()
	if err != nil {
		return nil, fmt.Errorf("failed to load site profiles: %w", err)
	}
	services.Sites = sites
	services.Rates = rates.NewProvider(cfg.RatesURL, cacheService, cfg.RatesCacheTTL)
	services.Fetcher = fetcher.New(cacheService, cfg.FetchBlockTime)

	return services, nil
}

package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	httpapi "github.com/pupwalk/pupwalk/internal/api/http"
	"github.com/pupwalk/pupwalk/internal/community"
	"github.com/pupwalk/pupwalk/internal/config"
	"github.com/pupwalk/pupwalk/internal/realtime"
	"github.com/pupwalk/pupwalk/internal/scheduler"
	"github.com/pupwalk/pupwalk/internal/store"
	"github.com/pupwalk/pupwalk/internal/weather"
	"github.com/pupwalk/pupwalk/internal/weather/providers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Snapshot provider, selected by configuration.
	var provider weather.SnapshotProvider
	switch cfg.WeatherProvider {
	case "weatherapi":
		provider = providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey)
	case "openmeteo":
		provider = providers.NewOpenMeteoProvider(httpClient)
	default:
		log.Printf("INFO: using deterministic mock weather provider")
		provider = providers.NewMockProvider()
	}
	weatherService := weather.NewService(provider, cfg.HTTPTimeout)

	// Community record store: Postgres when configured, in-memory otherwise.
	var records community.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pg.Close()
		records = pg
	} else {
		log.Printf("INFO: DATABASE_URL not set; using in-memory record store")
		records = store.NewMemoryStore()
	}

	// Change notifier: Redis pub/sub when configured, in-process otherwise.
	var notifier realtime.Notifier
	if cfg.RedisAddr != "" {
		rn, err := realtime.NewRedisNotifier(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer rn.Close()
		notifier = rn
	} else {
		log.Printf("INFO: REDIS_ADDR not set; using in-process change notifier")
		notifier = realtime.NewMemoryNotifier()
	}

	communityService := community.NewService(records, notifier)

	// Warm snapshot history with configured retention.
	snapshots := store.NewSnapshotStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Scheduler that periodically refreshes saved home locations.
	sched := scheduler.New(cfg.FetchInterval, weatherService, communityService, snapshots)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "pupwalk",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "pupwalk",
			"provider": weatherService.ProviderName(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Weather:   weatherService,
		Community: communityService,
		Snapshots: snapshots,
		Notifier:  notifier,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

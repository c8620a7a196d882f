package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go"

	"meetmaster/config"
	"meetmaster/internal/handlers"
	"meetmaster/internal/services"
	"meetmaster/monitoring"
	"meetmaster/security"
	"meetmaster/utils"

	_ "meetmaster/migrations"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub (optional, realtime pushes are best-effort)
	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey

		pn = pubnub.NewPubNub(pnConfig)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services
	eventService := services.NewEventService(app)
	notifyService := services.NewNotifyService(app, redisClient, pn, cfg)

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(app, eventService, notifyService)
	userHandler := handlers.NewUserHandler(app)
	limiter := security.NewRateLimiter(redisClient)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Periodic sweep finalizing incoming events whose date has passed.
	// The sweep is silent: no notifications for time-driven transitions.
	app.Cron().MustAdd("finalize_past_events", cfg.SweepCron, func() {
		count, err := eventService.Sweep(context.Background(), time.Now(), cfg.SweepBatchSize)
		monitoring.TrackSweep(count, err)
		if err != nil {
			log.Printf("sweep: %v", err)
			return
		}
		if count > 0 {
			slog.Info("finalized past events", "count", count)
		}
	})

	// Start background dispatch workers
	for i := 0; i < cfg.NotifyWorkers; i++ {
		go notifyService.Worker(ctx)
	}

	if cfg.EnableMetrics {
		monitoring.NewMonitor(redisClient, services.NotifyQueueKey)
		go monitoring.StartMetricsServer(cfg.MetricsPort)
	}

	// Setup graceful shutdown
	go handleShutdown(cancel)

	// Register routes
	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Event endpoints
		e.Router.GET("/api/v1/events", eventHandler.List)
		e.Router.POST("/api/v1/events", eventHandler.Create)
		e.Router.GET("/api/v1/events/{eventId}", eventHandler.Get)
		e.Router.PATCH("/api/v1/events/{eventId}", eventHandler.Update)
		e.Router.DELETE("/api/v1/events/{eventId}", eventHandler.Delete)
		e.Router.POST("/api/v1/events/{eventId}/cancel", eventHandler.Cancel)
		e.Router.GET("/api/v1/events/{eventId}/attendees", eventHandler.Attendees)
		e.Router.POST("/api/v1/events/{eventId}/attend", eventHandler.Attend)
		e.Router.POST("/api/v1/events/{eventId}/unattend", eventHandler.Unattend)

		// User endpoints
		e.Router.GET("/api/v1/users", userHandler.List)
		e.Router.POST("/api/v1/users", userHandler.Create).
			BindFunc(limiter.AntiBot(), limiter.Limit("signup", int64(cfg.SignupRateLimit), cfg.SignupRateWindow))
		e.Router.GET("/api/v1/users/{userId}", userHandler.Get)
		e.Router.PATCH("/api/v1/users/{userId}", userHandler.Update)
		e.Router.DELETE("/api/v1/users/{userId}", userHandler.Delete)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	return app.Start()
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, stopping dispatch workers...")
	cancel()
}

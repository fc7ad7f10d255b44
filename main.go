package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"prospectcrm/config"
	"prospectcrm/middleware"
	"prospectcrm/routes"
	"prospectcrm/utils"
	"prospectcrm/worker"
)

func main() {
	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := config.AppConfig

	utils.SetupLogger(cfg.IsProduction())
	if err := utils.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		logrus.Warnf("Sentry disabled: %v", err)
	}
	defer utils.FlushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the store backing
	backing, err := config.OpenBacking(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to open store: %v", err)
	}
	defer backing.Close()

	deps := routes.Dependencies{
		Store:        backing,
		JWTSecret:    cfg.JWTSecret,
		RateLimit:    cfg.RateLimitPerMinute,
		APIBaseURL:   cfg.APIBaseURL,
		DatascopeURL: cfg.DatascopeURL,
		Backend:      cfg.StoreBackend,
	}

	if cfg.SMTPEnabled() {
		deps.Mailer = utils.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.FromEmail)
	} else {
		logrus.Info("SMTP not configured, emails are recorded without delivery")
	}

	if cfg.Redis.Enabled {
		client, err := config.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logrus.Fatalf("Failed to connect to redis: %v", err)
		}
		storage := middleware.NewRedisStorage(client, cfg.Redis.Prefix+"rl:")
		defer storage.Close()
		deps.RateLimitStorage = storage
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName: "prospectcrm",
	})
	app.Use(recover.New())
	app.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins...)))

	routes.SetupRoutes(app, deps)

	// Start the follow-up worker
	followUp := worker.NewFollowUpWorker(backing, cfg.FollowUpInterval, logrus.WithField("component", "followup"))
	go followUp.Start(ctx)

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("Server shutdown failed: %v", err)
		}
	}()

	// Start server
	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Errorf("Server stopped: %v", err)
	}
}

// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"kalamkart/cmd"
	"kalamkart/internal/data/repository"
	"kalamkart/internal/usecase"
	"kalamkart/internal/wire"
	"kalamkart/internal/worker"
	"kalamkart/pkg/database"
	"kalamkart/pkg/invoice"
	"kalamkart/pkg/mailer"
	"kalamkart/pkg/media"
	"kalamkart/pkg/metrics"
	"kalamkart/pkg/oauth"
	"kalamkart/pkg/payment"
	"kalamkart/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	// Connect to databases
	mongo, err := database.InitMongo(ctx, config.Mongo)
	if err != nil {
		logger.Fatal("Failed to connect to mongo", zap.Error(err))
	}
	logger.Info("Mongo connected", zap.String("db", config.Mongo.Name), zap.Bool("transactions", mongo.Transactional()))

	var rdb *redis.Client
	if config.Redis.URL != "" {
		rdb, err = database.InitRedis(ctx, config.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		logger.Info("Redis connected, idempotency keys enabled")
	} else {
		logger.Warn("REDIS_URL not set, idempotency keys are checked against mongo only")
	}

	var pg database.PgxIface
	if config.Outbox.DSN != "" {
		pg, err = database.InitPostgres(ctx, config.Outbox)
		if err != nil {
			logger.Fatal("Failed to connect to outbox database", zap.Error(err))
		}
		logger.Info("Postgres outbox connected")
	} else {
		logger.Warn("OUTBOX_DSN not set, email jobs are kept in memory")
	}

	// Initialize all repositories
	repos := repository.NewRepository(mongo, rdb, pg, logger)

	setupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := repos.EnsureIndexes(setupCtx); err != nil {
		logger.Fatal("Failed to ensure indexes", zap.Error(err))
	}
	if err := repos.Outbox.EnsureSchema(setupCtx); err != nil {
		logger.Fatal("Failed to ensure outbox schema", zap.Error(err))
	}
	cancel()

	// Outbound collaborators
	var sender mailer.Sender = mailer.NewLogSender(logger)
	if config.Email.Host != "" {
		sender = mailer.NewSMTPSender(config.Email, logger)
	}

	var uploader media.Uploader = media.Disabled{}
	if config.Cloudinary.URL != "" {
		cld, err := media.NewCloudinaryUploader(config.Cloudinary.URL, logger)
		if err != nil {
			logger.Fatal("Failed to init media storage", zap.Error(err))
		}
		uploader = cld
	}

	tokens := utils.NewTokenManager(config.JWT.Secret, time.Duration(config.JWT.ExpiryHours)*time.Hour)

	service := usecase.NewService(repos, config, usecase.Deps{
		Tokens:   tokens,
		Mailer:   sender,
		Media:    uploader,
		Google:   oauth.NewGoogleVerifier(config.Google.ClientID),
		Khalti:   payment.NewKhaltiClient(config.Payment, logger),
		Invoices: invoice.NewRenderer(),
	}, logger)

	// Wire all dependencies
	app := wire.Wiring(service, tokens, config, logger)

	// Background workers
	dispatcher := worker.NewDispatcher(repos.Outbox, sender, config.Email, logger)
	dispatcher.Start(ctx)

	scheduler, err := worker.NewScheduler(service.Order, repos, app.Limiter, config.Repair, logger)
	if err != nil {
		logger.Fatal("Failed to create scheduler", zap.Error(err))
	}
	scheduler.Start()

	// Start server
	if err := cmd.APIServer(ctx, app.Router, config.App.Port, config.App.ShutdownTimeout, logger); err != nil {
		logger.Error("Server error", zap.Error(err))
	}

	// Stop background work before closing the stores it uses
	if err := scheduler.Stop(); err != nil {
		logger.Warn("Scheduler shutdown", zap.Error(err))
	}
	dispatcher.Stop()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := mongo.Close(closeCtx); err != nil {
		logger.Warn("Failed to close mongo", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}
	if pg != nil {
		pg.Close()
	}

	logger.Info("Shutdown complete")
}

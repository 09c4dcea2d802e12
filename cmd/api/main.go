package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/ecotask-api/internal/config"
	"github.com/noah-isme/ecotask-api/internal/database"
	"github.com/noah-isme/ecotask-api/internal/handler"
	"github.com/noah-isme/ecotask-api/internal/middleware"
	"github.com/noah-isme/ecotask-api/internal/repository"
	"github.com/noah-isme/ecotask-api/internal/router"
	"github.com/noah-isme/ecotask-api/internal/service"
	"github.com/noah-isme/ecotask-api/pkg/ai"
	cloud "github.com/noah-isme/ecotask-api/pkg/cloudinary"
)

const reviewChannelBase = "ecotask"

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AppEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	rubric, err := cfg.Rubric()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid rubric weights")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	healthChecks := map[string]handler.HealthCheckFunc{
		"database": databaseCheck(db),
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Drain()
	}

	var storage service.FileStorage
	cloudCfg := cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}
	if cloudCfg.Enabled() {
		uploader, err := cloud.New(cloudCfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create cloudinary client")
		}
		storage = uploader
	} else {
		logger.Warn().Msg("cloudinary not configured, data URI photos are stored inline")
	}

	reasoner := buildReasoner(context.Background(), cfg, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)

	publisher := service.NewReviewPublisher(redisClient, natsConn, reviewChannelBase, logger)
	contentVerifier := service.NewContentVerifier(reasoner, logger, service.WithPhotoLimit(cfg.MaxPhotos))

	taskService := service.NewTaskService(taskRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, taskRepo, storage, validate, logger)
	evaluationService := service.NewEvaluationService(evaluationRepo, submissionRepo, reasoner, rubric, validate, logger)
	verificationService := service.NewVerificationService(submissionRepo, taskRepo, contentVerifier, publisher, validate, logger,
		service.VerificationConfig{FlagDegraded: cfg.FlagDegraded})

	evaluationHandler := handler.NewEvaluationHandler(evaluationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    32 * 1024 * 1024,
		ErrorHandler: handler.ErrorHandler(logger),
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler:   evaluationHandler,
		VerificationHandler: handler.NewVerificationHandler(verificationService, logger),
		TaskHandler:         handler.NewTaskHandler(taskService, logger),
		SubmissionHandler:   handler.NewSubmissionHandler(submissionService, evaluationHandler, logger),
		HealthChecks:        healthChecks,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Str("ai_provider", cfg.AIProvider).Msg("server started")
	waitForShutdown(app, logger)
}

// buildReasoner returns nil when the selected provider has no credentials; the
// pipelines then fall back to their unavailable behavior.
func buildReasoner(ctx context.Context, cfg config.Config, logger zerolog.Logger) ai.Reasoner {
	switch cfg.AIProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			logger.Warn().Msg("gemini api key missing, AI analysis disabled")
			return nil
		}
		reasoner, err := ai.NewGeminiReasoner(ctx, ai.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.AIModel,
			BaseURL: cfg.AIBaseURL,
			Timeout: cfg.AITimeout,
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create gemini client")
		}
		return reasoner
	default:
		if cfg.OpenAIAPIKey == "" {
			logger.Warn().Msg("openai api key missing, AI analysis disabled")
			return nil
		}
		reasoner, err := ai.NewOpenAIReasoner(ai.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.AIBaseURL,
			Model:   cfg.AIModel,
			Timeout: cfg.AITimeout,
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create openai client")
		}
		return reasoner
	}
}

func databaseCheck(db *gorm.DB) handler.HealthCheckFunc {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}

package middleware

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

const (
	allowedOrigins = "*"
	allowedHeaders = "Origin, Content-Type, Accept, Authorization, X-Client-Info, Apikey, X-Correlation-ID"
	allowedMethods = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
)

// Config customises the middleware registration pipeline.
type Config struct {
	Logger *zerolog.Logger
	// DisableAccessLog turns off the fiber access log, mostly for tests.
	DisableAccessLog bool
}

// Register attaches the common middlewares used across the API.
func Register(app *fiber.App, cfg Config) {
	requestLogger := zerolog.New(io.Discard)
	if cfg.Logger != nil {
		requestLogger = *cfg.Logger
	}

	app.Use(Preflight())
	app.Use(recover.New())
	app.Use(CorrelationID(requestLogger))
	app.Use(Observability(requestLogger))
	if !cfg.DisableAccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowHeaders:  allowedHeaders,
		AllowMethods:  allowedMethods,
		ExposeHeaders: "X-Correlation-ID",
	}))
}

package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ecotask-api/internal/middleware"
	"github.com/noah-isme/ecotask-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		builder := base.With()
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			builder = builder.Str("correlation_id", correlation)
		}
		if userID := middleware.UserID(c); userID != "" {
			builder = builder.Str("user_id", userID)
		}
		logger = builder.Logger()
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// validationMessage renders the first failing field in a readable form.
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		first := validationErrors[0]
		return fmt.Sprintf("invalid %s: failed %s", strings.ToLower(first.Field()), first.Tag())
	}
	return "invalid request"
}

// ErrorHandler renders errors that escape handlers, including recovered
// panics, as JSON bodies with an "error" field. Verify-photo callers always
// get the flagged failure body.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		}

		if status >= fiber.StatusInternalServerError {
			requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		}

		if isVerificationRoute(c) {
			return SendVerificationFailure(c, status, message)
		}
		return utils.SendError(c, status, message)
	}
}

func isVerificationRoute(c *fiber.Ctx) bool {
	return strings.HasSuffix(strings.TrimRight(c.Path(), "/"), "/verify-photo")
}

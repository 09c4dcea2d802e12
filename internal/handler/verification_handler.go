package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ecotask-api/internal/dto"
	"github.com/noah-isme/ecotask-api/internal/middleware"
	"github.com/noah-isme/ecotask-api/internal/service"
)

const verificationFailedNotes = "Verification failed - manual review required"

// VerificationHandler serves photo verification.
type VerificationHandler struct {
	service service.VerificationService
	logger  zerolog.Logger
}

// NewVerificationHandler builds a verification handler instance.
func NewVerificationHandler(service service.VerificationService, logger zerolog.Logger) *VerificationHandler {
	return &VerificationHandler{
		service: service,
		logger:  logger.With().Str("component", "verification_handler").Logger(),
	}
}

// Verify handles POST /verify-photo.
func (h *VerificationHandler) Verify(c *fiber.Ctx) error {
	var payload dto.VerifyPhotoRequest
	if err := c.BodyParser(&payload); err != nil {
		return SendVerificationFailure(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Verify(c.UserContext(), middleware.UserID(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingIdentifiers):
			return SendVerificationFailure(c, fiber.StatusBadRequest, "submission_id is required")
		case isValidationError(err):
			return SendVerificationFailure(c, fiber.StatusBadRequest, validationMessage(err))
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("verification failed")
			return SendVerificationFailure(c, fiber.StatusInternalServerError, "verification failed")
		}
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// SendVerificationFailure writes the degraded "flag for review" failure body.
func SendVerificationFailure(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.VerifyPhotoErrorResponse{
		Error:   message,
		Score:   0,
		Flagged: true,
		Notes:   verificationFailedNotes,
	})
}

// DenyVerification is the 401 body for verify-photo callers without a valid token.
func DenyVerification(c *fiber.Ctx, message string) error {
	return SendVerificationFailure(c, fiber.StatusUnauthorized, message)
}

// ThrottleVerification is the 429 body for verify-photo callers over their limit.
func ThrottleVerification(c *fiber.Ctx, message string) error {
	return SendVerificationFailure(c, fiber.StatusTooManyRequests, message)
}

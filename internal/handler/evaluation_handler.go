package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ecotask-api/internal/dto"
	"github.com/noah-isme/ecotask-api/internal/middleware"
	"github.com/noah-isme/ecotask-api/internal/service"
	"github.com/noah-isme/ecotask-api/internal/utils"
	"github.com/noah-isme/ecotask-api/pkg/ai"
)

// EvaluationHandler serves rubric evaluations.
type EvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler builds an evaluation handler instance.
func NewEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Evaluate handles POST /evaluate-task.
func (h *EvaluationHandler) Evaluate(c *fiber.Ctx) error {
	var payload dto.EvaluateTaskRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendFunctionError(c, fiber.StatusBadRequest, "invalid request body")
	}

	evaluation, err := h.service.Evaluate(c.UserContext(), middleware.UserID(c), payload)
	if err != nil {
		return h.handleEvaluateError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.EvaluateTaskResponse{Evaluation: evaluation})
}

// History handles GET /submissions/:id/evaluations.
func (h *EvaluationHandler) History(c *fiber.Ctx) error {
	evaluations, err := h.service.History(c.UserContext(), c.Params("id"), middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "not allowed to view these evaluations")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to load evaluation history")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to load evaluations")
		}
	}

	return utils.SendSuccess(c, "evaluations retrieved", evaluations)
}

func (h *EvaluationHandler) handleEvaluateError(c *fiber.Ctx, err error) error {
	logger := requestLogger(h.logger, c)

	switch {
	case errors.Is(err, service.ErrMissingIdentifiers):
		return utils.SendFunctionError(c, fiber.StatusBadRequest, "taskId and submissionId are required")
	case isValidationError(err):
		return utils.SendFunctionError(c, fiber.StatusBadRequest, validationMessage(err))
	case errors.Is(err, ai.ErrRateLimited):
		logger.Warn().Err(err).Msg("evaluation rate limited upstream")
		return utils.SendFunctionError(c, fiber.StatusTooManyRequests, "Rate limit exceeded, please try again later.")
	case errors.Is(err, ai.ErrQuotaExhausted):
		logger.Warn().Err(err).Msg("evaluation quota exhausted upstream")
		return utils.SendFunctionError(c, fiber.StatusPaymentRequired, "AI credits exhausted, please add funds.")
	case errors.Is(err, service.ErrReasonerUnavailable):
		logger.Error().Err(err).Msg("evaluation requested without a reasoning provider")
		return utils.SendFunctionError(c, fiber.StatusInternalServerError, "evaluation service not configured")
	case errors.Is(err, ai.ErrMalformedResponse):
		logger.Error().Err(err).Msg("evaluation reply rejected")
		return utils.SendFunctionError(c, fiber.StatusInternalServerError, "AI returned an invalid evaluation, please retry")
	default:
		logger.Error().Err(err).Msg("evaluation failed")
		return utils.SendFunctionError(c, fiber.StatusInternalServerError, "failed to evaluate task")
	}
}

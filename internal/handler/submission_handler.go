package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ecotask-api/internal/dto"
	"github.com/noah-isme/ecotask-api/internal/middleware"
	"github.com/noah-isme/ecotask-api/internal/service"
	"github.com/noah-isme/ecotask-api/internal/utils"
)

// SubmissionHandler manages submission endpoints.
type SubmissionHandler struct {
	service     service.SubmissionService
	evaluations *EvaluationHandler
	logger      zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance. evaluations
// serves the nested evaluation history route and may be nil.
func NewSubmissionHandler(service service.SubmissionService, evaluations *EvaluationHandler, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:     service,
		evaluations: evaluations,
		logger:      logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id/review", middleware.RequireRole("teacher", "admin"), h.review)
	if h.evaluations != nil {
		router.Get("/:id/evaluations", h.evaluations.History)
	}
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Create(c.UserContext(), middleware.UserID(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission created", submission)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	submission, err := h.service.Get(c.UserContext(), c.Params("id"), middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) review(c *fiber.Ctx) error {
	var payload dto.SubmissionReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Review(c.UserContext(), c.Params("id"), middleware.UserID(c), middleware.UserRole(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "submission reviewed", submission)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	case errors.Is(err, service.ErrInvalidLocation), errors.Is(err, service.ErrInvalidPhoto):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTaskNotFound), errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("submission request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

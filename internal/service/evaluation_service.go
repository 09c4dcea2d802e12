package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/ecotask-api/internal/dto"
	"github.com/noah-isme/ecotask-api/internal/models"
	"github.com/noah-isme/ecotask-api/internal/observability"
	"github.com/noah-isme/ecotask-api/internal/repository"
	"github.com/noah-isme/ecotask-api/internal/scoring"
	"github.com/noah-isme/ecotask-api/pkg/ai"
)

// EvaluationService scores submissions against the rubric and keeps the history.
type EvaluationService interface {
	Evaluate(ctx context.Context, userID string, payload dto.EvaluateTaskRequest) (dto.EvaluationResponse, error)
	History(ctx context.Context, submissionID string, viewerID string, role string) ([]dto.EvaluationResponse, error)
}

var rubricContract = newRubricContract()

func newRubricContract() ai.Contract {
	min, max := ai.Bounds(0, 100)
	three := 3
	return ai.MustContract(
		"submit_rubric_evaluation",
		"Score the submission on the four rubric criteria.",
		ai.Field{Name: "completeness", Type: ai.FieldInteger, Description: "Did the student fully complete the task? 0-100.", Minimum: min, Maximum: max},
		ai.Field{Name: "quality", Type: ai.FieldInteger, Description: "How well was the task executed? 0-100.", Minimum: min, Maximum: max},
		ai.Field{Name: "effort", Type: ai.FieldInteger, Description: "How much effort was evident? 0-100.", Minimum: min, Maximum: max},
		ai.Field{Name: "impact", Type: ai.FieldInteger, Description: "Environmental impact achieved, 0-100.", Minimum: min, Maximum: max},
		ai.Field{Name: "improvement_points", Type: ai.FieldStringArray, Description: "Exactly three concrete suggestions.", MinItems: &three, MaxItems: &three},
		ai.Field{Name: "summary", Type: ai.FieldString, Description: "One to two sentence summary."},
	)
}

type rubricPayload struct {
	Completeness      int      `json:"completeness"`
	Quality           int      `json:"quality"`
	Effort            int      `json:"effort"`
	Impact            int      `json:"impact"`
	ImprovementPoints []string `json:"improvement_points"`
	Summary           string   `json:"summary"`
}

type evaluationService struct {
	evaluations repository.EvaluationRepository
	submissions repository.SubmissionRepository
	reasoner    ai.Reasoner
	rubric      scoring.Rubric
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewEvaluationService constructs the rubric evaluation pipeline.
func NewEvaluationService(evaluationRepo repository.EvaluationRepository, submissionRepo repository.SubmissionRepository, reasoner ai.Reasoner, rubric scoring.Rubric, validate *validator.Validate, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		evaluations: evaluationRepo,
		submissions: submissionRepo,
		reasoner:    reasoner,
		rubric:      rubric,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/ecotask-api/internal/service/evaluation"),
	}
}

func (s *evaluationService) Evaluate(ctx context.Context, userID string, payload dto.EvaluateTaskRequest) (dto.EvaluationResponse, error) {
	if strings.TrimSpace(payload.TaskID) == "" || strings.TrimSpace(payload.SubmissionID) == "" {
		return dto.EvaluationResponse{}, ErrMissingIdentifiers
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.EvaluationResponse{}, err
	}
	if s.reasoner == nil {
		return dto.EvaluationResponse{}, ErrReasonerUnavailable
	}

	ctx, span := s.tracer.Start(ctx, "evaluation.evaluate", trace.WithAttributes(
		attribute.String("submission.id", payload.SubmissionID),
		attribute.String("task.id", payload.TaskID),
	))
	defer span.End()

	raw, err := s.reasoner.Reason(ctx, ai.ReasoningRequest{
		System:   s.systemPrompt(),
		Prompt:   s.userPrompt(payload),
		Contract: rubricContract,
	})
	if err != nil {
		return dto.EvaluationResponse{}, s.fail(span, fmt.Errorf("evaluate submission: %w", err))
	}

	var result rubricPayload
	if err := rubricContract.Decode(raw, &result); err != nil {
		return dto.EvaluationResponse{}, s.fail(span, err)
	}

	scores := scoring.RubricScores{
		Completeness: result.Completeness,
		Quality:      result.Quality,
		Effort:       result.Effort,
		Impact:       result.Impact,
	}

	evaluation := models.AIEvaluation{
		UserID:            userID,
		TaskID:            payload.TaskID,
		SubmissionID:      payload.SubmissionID,
		Completeness:      scores.Completeness,
		Quality:           scores.Quality,
		Effort:            scores.Effort,
		Impact:            scores.Impact,
		OverallScore:      s.rubric.Overall(scores),
		ImprovementPoints: trimAll(result.ImprovementPoints),
		Summary:           strings.TrimSpace(result.Summary),
		Provider:          s.reasoner.Provider(),
	}

	if err := s.evaluations.Create(ctx, &evaluation); err != nil {
		observability.PersistenceFailures().WithLabelValues("evaluation").Inc()
		return dto.EvaluationResponse{}, s.fail(span, fmt.Errorf("persist evaluation: %w", err))
	}

	span.SetAttributes(attribute.Int("evaluation.overall_score", evaluation.OverallScore))
	observability.EvaluationOutcomes().WithLabelValues("stored").Inc()

	return dto.NewEvaluationResponse(evaluation), nil
}

func (s *evaluationService) History(ctx context.Context, submissionID string, viewerID string, role string) ([]dto.EvaluationResponse, error) {
	if s.submissions != nil {
		submission, err := s.submissions.GetByID(ctx, submissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSubmissionNotFound
			}
			return nil, err
		}
		if submission.UserID != viewerID && !isReviewer(role) {
			return nil, ErrForbidden
		}
	}

	evaluations, err := s.evaluations.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.EvaluationResponse, 0, len(evaluations))
	for _, evaluation := range evaluations {
		items = append(items, dto.NewEvaluationResponse(evaluation))
	}
	return items, nil
}

func (s *evaluationService) fail(span trace.Span, err error) error {
	observability.EvaluationOutcomes().WithLabelValues(ai.FailureReason(err)).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (s *evaluationService) systemPrompt() string {
	return fmt.Sprintf("You are an environmental education evaluator. Score student task submissions on four criteria, "+
		"each from 0 to 100: completeness (weight %d%%), quality (weight %d%%), effort (weight %d%%) and impact (weight %d%%). "+
		"Give exactly three specific improvement points and a one to two sentence summary. Report only through the "+
		"submit_rubric_evaluation function.",
		s.rubric.Weight(scoring.Completeness), s.rubric.Weight(scoring.Quality),
		s.rubric.Weight(scoring.Effort), s.rubric.Weight(scoring.Impact))
}

func (s *evaluationService) userPrompt(payload dto.EvaluateTaskRequest) string {
	builder := strings.Builder{}
	builder.WriteString("# Task\n")
	builder.WriteString(s.clean(payload.TaskTitle))
	builder.WriteString("\n\n## Description\n")
	builder.WriteString(s.clean(payload.TaskDescription))
	builder.WriteString("\n\n## Submission\n")
	details := s.clean(payload.SubmissionDetails)
	if details == "" {
		details = "Task marked as completed without additional details."
	}
	builder.WriteString(details)
	return builder.String()
}

func (s *evaluationService) clean(input string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(input))
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, strings.TrimSpace(value))
	}
	return out
}

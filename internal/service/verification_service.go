package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/ecotask-api/internal/dto"
	"github.com/noah-isme/ecotask-api/internal/observability"
	"github.com/noah-isme/ecotask-api/internal/repository"
	"github.com/noah-isme/ecotask-api/internal/scoring"
)

const missingLocationIndicator = "Location required but not provided"

// VerificationService runs the photo and location verification pipeline.
type VerificationService interface {
	Verify(ctx context.Context, userID string, payload dto.VerifyPhotoRequest) (dto.VerifyPhotoResponse, error)
}

// VerificationConfig holds the verification policy knobs.
type VerificationConfig struct {
	// FlagDegraded forces flagged=true whenever the content analysis fell back
	// to the neutral score.
	FlagDegraded bool
}

type verificationService struct {
	submissions repository.SubmissionRepository
	tasks       repository.TaskRepository
	content     ContentVerifier
	publisher   ReviewPublisher
	aggregator  scoring.Aggregator
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewVerificationService constructs the verification pipeline. tasks and publisher are optional.
func NewVerificationService(submissionRepo repository.SubmissionRepository, taskRepo repository.TaskRepository, content ContentVerifier, publisher ReviewPublisher, validate *validator.Validate, logger zerolog.Logger, cfg VerificationConfig) VerificationService {
	return &verificationService{
		submissions: submissionRepo,
		tasks:       taskRepo,
		content:     content,
		publisher:   publisher,
		aggregator:  scoring.Aggregator{FlagDegraded: cfg.FlagDegraded},
		validator:   validate,
		logger:      logger.With().Str("component", "verification_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/ecotask-api/internal/service/verification"),
		now:         time.Now,
	}
}

type taskContext struct {
	category    string
	description string
	fence       *scoring.Geofence
}

func (s *verificationService) Verify(ctx context.Context, userID string, payload dto.VerifyPhotoRequest) (dto.VerifyPhotoResponse, error) {
	if strings.TrimSpace(payload.SubmissionID) == "" {
		return dto.VerifyPhotoResponse{}, ErrMissingIdentifiers
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.VerifyPhotoResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "verification.verify", trace.WithAttributes(
		attribute.String("submission.id", payload.SubmissionID),
		attribute.Int("photos", len(payload.Photos)),
	))
	defer span.End()

	task := s.resolveTask(ctx, payload)

	locationValid, bonus, indicators := s.checkLocation(payload, task.fence)

	analysis := s.content.Analyze(ctx, ContentInput{
		TaskCategory:    task.category,
		TaskDescription: task.description,
		Photos:          payload.Photos,
	})
	indicators = append(indicators, analysis.Indicators()...)

	result := s.aggregator.Aggregate(scoring.Signals{
		RawContentScore: analysis.Score,
		LocationBonus:   bonus,
		LocationValid:   locationValid,
		ContentMatch:    analysis.ContentMatch,
		Summary:         analysis.Summary,
		FraudIndicators: indicators,
		Degraded:        analysis.Degraded,
	})

	span.SetAttributes(
		attribute.Int("verification.score", result.Score),
		attribute.Bool("verification.flagged", result.Flagged),
		attribute.String("verification.analysis", analysis.Reason),
	)
	observability.VerificationOutcomes().WithLabelValues(outcomeLabel(result.Flagged), analysis.Reason).Inc()

	verifiedAt := s.now().UTC()
	s.persist(ctx, payload.SubmissionID, result, verifiedAt)

	if result.Flagged && s.publisher != nil {
		event := ReviewEvent{
			SubmissionID:    payload.SubmissionID,
			TaskID:          payload.TaskID,
			UserID:          userID,
			Score:           result.Score,
			FraudIndicators: result.FraudIndicators,
			Notes:           result.Notes,
			VerifiedAt:      verifiedAt,
		}
		if err := s.publisher.PublishFlagged(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("submission_id", payload.SubmissionID).Msg("failed to publish review event")
		}
	}

	return toVerifyResponse(result), nil
}

// resolveTask prefers task fields from the request and fills gaps from the stored task.
func (s *verificationService) resolveTask(ctx context.Context, payload dto.VerifyPhotoRequest) taskContext {
	task := taskContext{
		category:    strings.TrimSpace(payload.TaskCategory),
		description: strings.TrimSpace(payload.TaskDescription),
	}
	if payload.TaskLocationLat != nil && payload.TaskLocationLng != nil && payload.TaskLocationRadiusM != nil && *payload.TaskLocationRadiusM > 0 {
		task.fence = &scoring.Geofence{
			Center:  scoring.Coordinate{Lat: *payload.TaskLocationLat, Lng: *payload.TaskLocationLng},
			RadiusM: *payload.TaskLocationRadiusM,
		}
	}

	complete := task.category != "" && task.description != "" && task.fence != nil
	if complete || s.tasks == nil || strings.TrimSpace(payload.TaskID) == "" {
		return task
	}

	stored, err := s.tasks.GetByID(ctx, payload.TaskID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Str("task_id", payload.TaskID).Msg("failed to load task for verification")
		}
		return task
	}

	if task.category == "" {
		task.category = stored.Category
	}
	if task.description == "" {
		task.description = stored.Description
	}
	if task.fence == nil && stored.HasGeofence() {
		task.fence = &scoring.Geofence{
			Center:  scoring.Coordinate{Lat: *stored.LocationLat, Lng: *stored.LocationLng},
			RadiusM: *stored.LocationRadiusM,
		}
	}
	return task
}

func (s *verificationService) checkLocation(payload dto.VerifyPhotoRequest, fence *scoring.Geofence) (bool, float64, []string) {
	if fence == nil {
		return true, scoring.NoBonus, nil
	}
	if payload.Lat == nil || payload.Lng == nil {
		return false, scoring.NoBonus, []string{missingLocationIndicator}
	}

	distance, inside := scoring.WithinRadius(scoring.Coordinate{Lat: *payload.Lat, Lng: *payload.Lng}, *fence)
	if !inside {
		return false, scoring.NoBonus, []string{scoring.LocationIndicator(distance, fence.RadiusM)}
	}
	return true, scoring.DistanceBonus(distance), nil
}

// persist is best-effort: failures are logged and never change the returned result.
func (s *verificationService) persist(ctx context.Context, submissionID string, result scoring.VerificationResult, verifiedAt time.Time) {
	if s.submissions == nil {
		return
	}

	err := s.submissions.UpdateVerification(ctx, submissionID, repository.VerificationUpdate{
		Score:           result.Score,
		Notes:           result.Notes,
		Flagged:         result.Flagged,
		LocationValid:   result.LocationValid,
		ContentMatch:    result.ContentMatch,
		FraudIndicators: result.FraudIndicators,
		VerifiedAt:      verifiedAt,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("submission_id", submissionID).Msg("failed to persist verification result")
		observability.PersistenceFailures().WithLabelValues("verification").Inc()
	}
}

func toVerifyResponse(result scoring.VerificationResult) dto.VerifyPhotoResponse {
	indicators := result.FraudIndicators
	if indicators == nil {
		indicators = []string{}
	}
	return dto.VerifyPhotoResponse{
		Score:           result.Score,
		Notes:           result.Notes,
		Flagged:         result.Flagged,
		LocationValid:   result.LocationValid,
		ContentMatch:    result.ContentMatch,
		FraudIndicators: indicators,
	}
}

func outcomeLabel(flagged bool) string {
	if flagged {
		return "flagged"
	}
	return "clear"
}

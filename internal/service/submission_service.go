package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/ecotask-api/internal/dto"
	"github.com/noah-isme/ecotask-api/internal/models"
	"github.com/noah-isme/ecotask-api/internal/repository"
	"github.com/noah-isme/ecotask-api/pkg/ai"
)

const maxPhotoBytes = 8 * 1024 * 1024

// FileStorage abstracts evidence upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// SubmissionService manages the submission lifecycle outside the verification pipeline.
type SubmissionService interface {
	Create(ctx context.Context, userID string, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id string, viewerID string, role string) (dto.SubmissionResponse, error)
	Review(ctx context.Context, id string, reviewerID string, role string, payload dto.SubmissionReviewRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	tasks       repository.TaskRepository
	storage     FileStorage
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewSubmissionService constructs a submission service. storage may be nil, in
// which case data URI photos are stored as given.
func NewSubmissionService(submissionRepo repository.SubmissionRepository, taskRepo repository.TaskRepository, storage FileStorage, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissionRepo,
		tasks:       taskRepo,
		storage:     storage,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

func (s *submissionService) Create(ctx context.Context, userID string, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}
	if (payload.Lat == nil) != (payload.Lng == nil) {
		return dto.SubmissionResponse{}, ErrInvalidLocation
	}

	if _, err := s.tasks.GetByID(ctx, payload.TaskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrTaskNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	photos := make([]string, 0, len(payload.Photos))
	for index, photo := range payload.Photos {
		stored, err := s.storePhoto(ctx, payload.TaskID, index, strings.TrimSpace(photo))
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		photos = append(photos, stored)
	}

	submission := models.Submission{
		TaskID:  payload.TaskID,
		UserID:  userID,
		Photos:  photos,
		Lat:     payload.Lat,
		Lng:     payload.Lng,
		Details: strings.TrimSpace(s.sanitizer.Sanitize(payload.Details)),
		Status:  models.SubmissionStatusPending,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Get(ctx context.Context, id string, viewerID string, role string) (dto.SubmissionResponse, error) {
	submission, err := s.find(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if submission.UserID != viewerID && !isReviewer(role) {
		return dto.SubmissionResponse{}, ErrForbidden
	}
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Review(ctx context.Context, id string, reviewerID string, role string, payload dto.SubmissionReviewRequest) (dto.SubmissionResponse, error) {
	if !isReviewer(role) {
		return dto.SubmissionResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	err := s.submissions.UpdateReview(ctx, id, repository.ReviewUpdate{
		Status:     payload.Status,
		ReviewerID: reviewerID,
		Feedback:   strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback)),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.find(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) find(ctx context.Context, id string) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}
	return submission, nil
}

// storePhoto accepts https URLs as-is and validates data URIs by sniffing their
// content; validated images are moved to storage when it is configured.
func (s *submissionService) storePhoto(ctx context.Context, taskID string, index int, photo string) (string, error) {
	if strings.HasPrefix(photo, "https://") {
		return photo, nil
	}
	if !strings.HasPrefix(photo, "data:") {
		return "", ErrInvalidPhoto
	}

	_, data, err := ai.DecodeDataURI(photo)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhoto, err)
	}
	if len(data) == 0 || len(data) > maxPhotoBytes {
		return "", fmt.Errorf("%w: photo size out of range", ErrInvalidPhoto)
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrInvalidPhoto, detected.String())
	}

	if s.storage == nil {
		return photo, nil
	}

	name := fmt.Sprintf("%s-photo-%d%s", taskID, index+1, detected.Extension())
	url, err := s.storage.Upload(ctx, name, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	return url, nil
}

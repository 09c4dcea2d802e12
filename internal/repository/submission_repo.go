package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/ecotask-api/internal/models"
)

// VerificationUpdate carries the verification columns written onto a submission.
type VerificationUpdate struct {
	Score           int
	Notes           string
	Flagged         bool
	LocationValid   bool
	ContentMatch    bool
	FraudIndicators []string
	VerifiedAt      time.Time
}

// ReviewUpdate carries a reviewer decision.
type ReviewUpdate struct {
	Status     string
	ReviewerID string
	Feedback   string
}

// SubmissionRepository exposes persistence helpers for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id string) (models.Submission, error)
	UpdateVerification(ctx context.Context, id string, update VerificationUpdate) error
	UpdateReview(ctx context.Context, id string, update ReviewUpdate) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository constructs a submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

// UpdateVerification overwrites the previous verification outcome in place.
// Concurrent writers for the same id are last-write-wins.
func (r *submissionRepository) UpdateVerification(ctx context.Context, id string, update VerificationUpdate) error {
	indicators := update.FraudIndicators
	if indicators == nil {
		indicators = []string{}
	}

	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"ai_score":         update.Score,
			"ai_notes":         update.Notes,
			"ai_flagged":       update.Flagged,
			"location_valid":   update.LocationValid,
			"content_match":    update.ContentMatch,
			"fraud_indicators": datatypes.JSONSlice[string](indicators),
			"verified_at":      update.VerifiedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *submissionRepository) UpdateReview(ctx context.Context, id string, update ReviewUpdate) error {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            update.Status,
			"reviewer_id":       update.ReviewerID,
			"reviewer_feedback": update.Feedback,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

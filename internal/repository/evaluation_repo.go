package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/ecotask-api/internal/models"
)

// EvaluationRepository stores rubric evaluations. It has no update or delete path.
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.AIEvaluation) error
	ListBySubmission(ctx context.Context, submissionID string) ([]models.AIEvaluation, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository constructs an evaluation repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.AIEvaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

func (r *evaluationRepository) ListBySubmission(ctx context.Context, submissionID string) ([]models.AIEvaluation, error) {
	var evaluations []models.AIEvaluation
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("evaluated_at DESC").
		Find(&evaluations).Error
	if err != nil {
		return nil, err
	}
	return evaluations, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AIEvaluation captures one rubric evaluation of a submission. Rows are never
// updated; each evaluation call appends a new one.
type AIEvaluation struct {
	ID                string                      `gorm:"primaryKey;size:36" json:"id"`
	UserID            string                      `gorm:"size:64;not null;index" json:"user_id"`
	TaskID            string                      `gorm:"size:36;not null;index" json:"task_id"`
	SubmissionID      string                      `gorm:"size:36;not null;index" json:"submission_id"`
	Completeness      int                         `gorm:"not null" json:"completeness"`
	Quality           int                         `gorm:"not null" json:"quality"`
	Effort            int                         `gorm:"not null" json:"effort"`
	Impact            int                         `gorm:"not null" json:"impact"`
	OverallScore      int                         `gorm:"not null" json:"overall_score"`
	ImprovementPoints datatypes.JSONSlice[string] `json:"improvement_points"`
	Summary           string                      `gorm:"type:text" json:"summary"`
	Provider          string                      `gorm:"size:32" json:"provider"`
	EvaluatedAt       time.Time                   `gorm:"not null;index" json:"evaluated_at"`
}

// TableName keeps the table name aligned with the dashboard queries.
func (AIEvaluation) TableName() string {
	return "ai_evaluations"
}

// BeforeCreate assigns the identifier and evaluation timestamp.
func (e *AIEvaluation) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.EvaluatedAt.IsZero() {
		e.EvaluatedAt = time.Now().UTC()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submission review states. Only reviewers move a submission out of pending.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// Submission is one actor's attempt at a task. The AI* columns hold the most
// recent verification outcome and are overwritten on every run.
type Submission struct {
	ID               string                      `gorm:"primaryKey;size:36" json:"id"`
	TaskID           string                      `gorm:"size:36;not null;index" json:"task_id"`
	UserID           string                      `gorm:"size:64;not null;index" json:"user_id"`
	Photos           datatypes.JSONSlice[string] `json:"photos"`
	Lat              *float64                    `json:"lat"`
	Lng              *float64                    `json:"lng"`
	Details          string                      `gorm:"type:text" json:"details"`
	Status           string                      `gorm:"size:16;not null;default:pending" json:"status"`
	ReviewerID       string                      `gorm:"size:64" json:"reviewer_id"`
	ReviewerFeedback string                      `gorm:"type:text" json:"reviewer_feedback"`
	AIScore          *int                        `json:"ai_score"`
	AINotes          string                      `gorm:"type:text" json:"ai_notes"`
	AIFlagged        bool                        `gorm:"default:false" json:"ai_flagged"`
	LocationValid    *bool                       `json:"location_valid"`
	ContentMatch     *bool                       `json:"content_match"`
	FraudIndicators  datatypes.JSONSlice[string] `json:"fraud_indicators"`
	VerifiedAt       *time.Time                  `json:"verified_at"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// BeforeCreate assigns a UUID and the initial status.
func (s *Submission) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = SubmissionStatusPending
	}
	return nil
}

// IsVerified reports whether a verification outcome has been attached.
func (s Submission) IsVerified() bool {
	return s.VerifiedAt != nil
}

package dto

import (
	"time"

	"github.com/noah-isme/ecotask-api/internal/models"
)

// SubmissionCreateRequest is the payload for submitting task evidence.
type SubmissionCreateRequest struct {
	TaskID  string   `json:"task_id" validate:"required"`
	Photos  []string `json:"photos" validate:"max=10,dive,required"`
	Lat     *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng     *float64 `json:"lng" validate:"omitempty,longitude"`
	Details string   `json:"details" validate:"max=10000"`
}

// SubmissionReviewRequest is a reviewer decision.
type SubmissionReviewRequest struct {
	Status   string `json:"status" validate:"required,oneof=approved rejected"`
	Feedback string `json:"feedback" validate:"max=2000"`
}

// SubmissionResponse renders a submission with its latest verification outcome.
type SubmissionResponse struct {
	ID               string     `json:"id"`
	TaskID           string     `json:"task_id"`
	UserID           string     `json:"user_id"`
	Photos           []string   `json:"photos"`
	Lat              *float64   `json:"lat,omitempty"`
	Lng              *float64   `json:"lng,omitempty"`
	Details          string     `json:"details"`
	Status           string     `json:"status"`
	ReviewerFeedback string     `json:"reviewer_feedback,omitempty"`
	AIScore          *int       `json:"ai_score,omitempty"`
	AINotes          string     `json:"ai_notes,omitempty"`
	AIFlagged        bool       `json:"ai_flagged"`
	LocationValid    *bool      `json:"location_valid,omitempty"`
	ContentMatch     *bool      `json:"content_match,omitempty"`
	FraudIndicators  []string   `json:"fraud_indicators"`
	VerifiedAt       *time.Time `json:"verified_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	photos := []string(submission.Photos)
	if photos == nil {
		photos = []string{}
	}
	indicators := []string(submission.FraudIndicators)
	if indicators == nil {
		indicators = []string{}
	}

	return SubmissionResponse{
		ID:               submission.ID,
		TaskID:           submission.TaskID,
		UserID:           submission.UserID,
		Photos:           photos,
		Lat:              submission.Lat,
		Lng:              submission.Lng,
		Details:          submission.Details,
		Status:           submission.Status,
		ReviewerFeedback: submission.ReviewerFeedback,
		AIScore:          submission.AIScore,
		AINotes:          submission.AINotes,
		AIFlagged:        submission.AIFlagged,
		LocationValid:    submission.LocationValid,
		ContentMatch:     submission.ContentMatch,
		FraudIndicators:  indicators,
		VerifiedAt:       submission.VerifiedAt,
		CreatedAt:        submission.CreatedAt,
	}
}

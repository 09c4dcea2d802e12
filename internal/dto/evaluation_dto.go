package dto

import (
	"time"

	"github.com/noah-isme/ecotask-api/internal/models"
	"github.com/noah-isme/ecotask-api/internal/scoring"
)

// EvaluateTaskRequest is the body of POST /evaluate-task.
type EvaluateTaskRequest struct {
	TaskID            string `json:"taskId"`
	SubmissionID      string `json:"submissionId"`
	TaskTitle         string `json:"taskTitle" validate:"max=255"`
	TaskDescription   string `json:"taskDescription" validate:"max=5000"`
	SubmissionDetails string `json:"submissionDetails" validate:"max=10000"`
}

// EvaluationResponse is a persisted rubric evaluation.
type EvaluationResponse struct {
	ID                string               `json:"id"`
	OverallScore      int                  `json:"overall_score"`
	RubricScores      scoring.RubricScores `json:"rubric_scores"`
	ImprovementPoints []string             `json:"improvement_points"`
	Summary           string               `json:"summary"`
	EvaluatedAt       time.Time            `json:"evaluated_at"`
}

// EvaluateTaskResponse wraps the evaluation for the function endpoint.
type EvaluateTaskResponse struct {
	Evaluation EvaluationResponse `json:"evaluation"`
}

// NewEvaluationResponse converts an AIEvaluation model into a DTO.
func NewEvaluationResponse(evaluation models.AIEvaluation) EvaluationResponse {
	points := []string(evaluation.ImprovementPoints)
	if points == nil {
		points = []string{}
	}

	return EvaluationResponse{
		ID:           evaluation.ID,
		OverallScore: evaluation.OverallScore,
		RubricScores: scoring.RubricScores{
			Completeness: evaluation.Completeness,
			Quality:      evaluation.Quality,
			Effort:       evaluation.Effort,
			Impact:       evaluation.Impact,
		},
		ImprovementPoints: points,
		Summary:           evaluation.Summary,
		EvaluatedAt:       evaluation.EvaluatedAt,
	}
}

package dto

import (
	"time"

	"github.com/noah-isme/ecotask-api/internal/models"
)

// TaskCreateRequest is the payload for creating a task.
type TaskCreateRequest struct {
	Title           string   `json:"title" validate:"required,max=255"`
	Description     string   `json:"description" validate:"required"`
	Category        string   `json:"category" validate:"required,oneof=recycling conservation water community energy other"`
	Difficulty      string   `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Points          int      `json:"points" validate:"required,gt=0"`
	LocationLat     *float64 `json:"location_lat" validate:"omitempty,latitude"`
	LocationLng     *float64 `json:"location_lng" validate:"omitempty,longitude"`
	LocationRadiusM *float64 `json:"location_radius_m" validate:"omitempty,gt=0"`
}

// TaskResponse is a task rendered for API consumers.
type TaskResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Difficulty      string    `json:"difficulty"`
	Points          int       `json:"points"`
	LocationLat     *float64  `json:"location_lat,omitempty"`
	LocationLng     *float64  `json:"location_lng,omitempty"`
	LocationRadiusM *float64  `json:"location_radius_m,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// TaskListResponse is a page of tasks.
type TaskListResponse struct {
	Items []TaskResponse `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
}

// NewTaskResponse converts a Task model into a DTO.
func NewTaskResponse(task models.Task) TaskResponse {
	return TaskResponse{
		ID:              task.ID,
		Title:           task.Title,
		Description:     task.Description,
		Category:        task.Category,
		Difficulty:      task.Difficulty,
		Points:          task.Points,
		LocationLat:     task.LocationLat,
		LocationLng:     task.LocationLng,
		LocationRadiusM: task.LocationRadiusM,
		CreatedAt:       task.CreatedAt,
	}
}

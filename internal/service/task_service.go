package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/ecotask-api/internal/dto"
	"github.com/noah-isme/ecotask-api/internal/models"
	"github.com/noah-isme/ecotask-api/internal/repository"
)

// TaskService exposes task catalogue operations.
type TaskService interface {
	Create(ctx context.Context, creatorID string, role string, payload dto.TaskCreateRequest) (dto.TaskResponse, error)
	Get(ctx context.Context, id string) (dto.TaskResponse, error)
	List(ctx context.Context, filter repository.TaskFilter) (dto.TaskListResponse, error)
}

type taskService struct {
	repo      repository.TaskRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewTaskService constructs a task service.
func NewTaskService(repo repository.TaskRepository, validate *validator.Validate, logger zerolog.Logger) TaskService {
	return &taskService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "task_service").Logger(),
	}
}

func (s *taskService) Create(ctx context.Context, creatorID string, role string, payload dto.TaskCreateRequest) (dto.TaskResponse, error) {
	if !isReviewer(role) {
		return dto.TaskResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	set := 0
	for _, v := range []*float64{payload.LocationLat, payload.LocationLng, payload.LocationRadiusM} {
		if v != nil {
			set++
		}
	}
	if set != 0 && set != 3 {
		return dto.TaskResponse{}, ErrInvalidGeofence
	}
	if payload.LocationRadiusM != nil && *payload.LocationRadiusM <= 0 {
		return dto.TaskResponse{}, ErrInvalidGeofence
	}

	task := models.Task{
		Title:           strings.TrimSpace(payload.Title),
		Description:     strings.TrimSpace(payload.Description),
		Category:        strings.ToLower(payload.Category),
		Difficulty:      strings.ToLower(payload.Difficulty),
		Points:          payload.Points,
		LocationLat:     payload.LocationLat,
		LocationLng:     payload.LocationLng,
		LocationRadiusM: payload.LocationRadiusM,
		CreatedBy:       creatorID,
	}

	if err := s.repo.Create(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	s.logger.Info().Str("task_id", task.ID).Str("category", task.Category).Msg("task created")
	return dto.NewTaskResponse(task), nil
}

func (s *taskService) Get(ctx context.Context, id string) (dto.TaskResponse, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskResponse{}, ErrTaskNotFound
		}
		return dto.TaskResponse{}, err
	}
	return dto.NewTaskResponse(task), nil
}

func (s *taskService) List(ctx context.Context, filter repository.TaskFilter) (dto.TaskListResponse, error) {
	tasks, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.TaskListResponse{}, err
	}

	items := make([]dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, dto.NewTaskResponse(task))
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	return dto.TaskListResponse{Items: items, Total: total, Page: page}, nil
}

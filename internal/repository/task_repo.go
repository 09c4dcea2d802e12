package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/ecotask-api/internal/models"
)

// TaskFilter narrows task listings.
type TaskFilter struct {
	Category string
	Page     int
	PageSize int
}

// TaskRepository exposes persistence helpers for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (models.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository constructs a task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", strings.ToLower(category))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Limit(pageSize).Offset((page - 1) * pageSize).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecotask-api/internal/dto"
)

func TestTaskCreateRequiresReviewerRole(t *testing.T) {
	svc := NewTaskService(&stubTaskRepo{}, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	_, err := svc.Create(context.Background(), "user-1", "student", dto.TaskCreateRequest{})
	require.True(t, errors.Is(err, ErrForbidden))
}

func TestTaskCreateValidatesGeofence(t *testing.T) {
	svc := NewTaskService(&stubTaskRepo{}, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	payload := dto.TaskCreateRequest{
		Title:       "Count birds",
		Description: "Count birds in a local park",
		Category:    "conservation",
		Difficulty:  "easy",
		Points:      15,
		LocationLat: floatPtr(10),
		LocationLng: floatPtr(20),
	}
	_, err := svc.Create(context.Background(), "teacher-1", "teacher", payload)
	require.True(t, errors.Is(err, ErrInvalidGeofence))

	payload.LocationRadiusM = floatPtr(250)
	resp, err := svc.Create(context.Background(), "teacher-1", "teacher", payload)
	require.NoError(t, err)
	require.Equal(t, "task-created", resp.ID)
	require.Equal(t, 250.0, *resp.LocationRadiusM)
}

func TestTaskCreateRejectsUnknownCategory(t *testing.T) {
	svc := NewTaskService(&stubTaskRepo{}, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	_, err := svc.Create(context.Background(), "teacher-1", "admin", dto.TaskCreateRequest{
		Title: "Something", Description: "d", Category: "mining", Difficulty: "easy", Points: 5,
	})
	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))
}

func TestTaskGetNotFound(t *testing.T) {
	svc := NewTaskService(&stubTaskRepo{}, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	_, err := svc.Get(context.Background(), "missing")
	require.True(t, errors.Is(err, ErrTaskNotFound))
}

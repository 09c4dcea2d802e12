package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/noah-isme/ecotask-api/internal/models"
	"github.com/noah-isme/ecotask-api/internal/repository"
	"github.com/noah-isme/ecotask-api/pkg/ai"
)

type stubReasoner struct {
	reply string
	err   error

	mu       sync.Mutex
	calls    int
	requests []ai.ReasoningRequest
}

func (s *stubReasoner) Reason(ctx context.Context, req ai.ReasoningRequest) (json.RawMessage, error) {
	s.mu.Lock()
	s.calls++
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.reply), nil
}

func (s *stubReasoner) Provider() string { return "stub" }

type stubSubmissionRepo struct {
	stored       map[string]models.Submission
	verification map[string]repository.VerificationUpdate
	updateErr    error
	updates      int
}

func newStubSubmissionRepo(submissions ...models.Submission) *stubSubmissionRepo {
	repo := &stubSubmissionRepo{
		stored:       map[string]models.Submission{},
		verification: map[string]repository.VerificationUpdate{},
	}
	for _, submission := range submissions {
		repo.stored[submission.ID] = submission
	}
	return repo
}

func (s *stubSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = "sub-created"
	}
	s.stored[submission.ID] = *submission
	return nil
}

func (s *stubSubmissionRepo) GetByID(ctx context.Context, id string) (models.Submission, error) {
	submission, ok := s.stored[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (s *stubSubmissionRepo) UpdateVerification(ctx context.Context, id string, update repository.VerificationUpdate) error {
	s.updates++
	if s.updateErr != nil {
		return s.updateErr
	}
	s.verification[id] = update
	return nil
}

func (s *stubSubmissionRepo) UpdateReview(ctx context.Context, id string, update repository.ReviewUpdate) error {
	submission, ok := s.stored[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	submission.Status = update.Status
	submission.ReviewerID = update.ReviewerID
	submission.ReviewerFeedback = update.Feedback
	s.stored[id] = submission
	return nil
}

type stubTaskRepo struct {
	tasks map[string]models.Task
	err   error
}

func (s *stubTaskRepo) Create(ctx context.Context, task *models.Task) error {
	if s.err != nil {
		return s.err
	}
	if task.ID == "" {
		task.ID = "task-created"
	}
	if s.tasks == nil {
		s.tasks = map[string]models.Task{}
	}
	s.tasks[task.ID] = *task
	return nil
}

func (s *stubTaskRepo) GetByID(ctx context.Context, id string) (models.Task, error) {
	if s.err != nil {
		return models.Task{}, s.err
	}
	task, ok := s.tasks[id]
	if !ok {
		return models.Task{}, gorm.ErrRecordNotFound
	}
	return task, nil
}

func (s *stubTaskRepo) List(ctx context.Context, filter repository.TaskFilter) ([]models.Task, int64, error) {
	return nil, 0, errors.New("not implemented")
}

type stubEvaluationRepo struct {
	created []models.AIEvaluation
	err     error
}

func (s *stubEvaluationRepo) Create(ctx context.Context, evaluation *models.AIEvaluation) error {
	if s.err != nil {
		return s.err
	}
	if evaluation.ID == "" {
		evaluation.ID = "eval-" + string(rune('a'+len(s.created)))
	}
	s.created = append(s.created, *evaluation)
	return nil
}

func (s *stubEvaluationRepo) ListBySubmission(ctx context.Context, submissionID string) ([]models.AIEvaluation, error) {
	var out []models.AIEvaluation
	for i := len(s.created) - 1; i >= 0; i-- {
		if s.created[i].SubmissionID == submissionID {
			out = append(out, s.created[i])
		}
	}
	return out, nil
}

type stubPublisher struct {
	events []ReviewEvent
	err    error
}

func (s *stubPublisher) PublishFlagged(ctx context.Context, event ReviewEvent) error {
	s.events = append(s.events, event)
	return s.err
}

func floatPtr(v float64) *float64 { return &v }

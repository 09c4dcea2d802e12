package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecotask-api/internal/dto"
	"github.com/noah-isme/ecotask-api/internal/models"
	"github.com/noah-isme/ecotask-api/internal/scoring"
	"github.com/noah-isme/ecotask-api/pkg/ai"
)

const rubricReply = `{
	"completeness": 90,
	"quality": 85,
	"effort": 95,
	"impact": 100,
	"improvement_points": ["Add a before photo", "Weigh the collected waste", "Invite a friend"],
	"summary": "Thorough clean-up with measurable impact."
}`

func newEvaluationFixture(reasoner ai.Reasoner) (EvaluationService, *stubEvaluationRepo, *stubSubmissionRepo) {
	evaluations := &stubEvaluationRepo{}
	submissions := newStubSubmissionRepo(models.Submission{ID: "sub-1", TaskID: "task-1", UserID: "user-1"})
	svc := NewEvaluationService(evaluations, submissions, reasoner, scoring.StandardRubric(),
		validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	return svc, evaluations, submissions
}

func evaluateRequest() dto.EvaluateTaskRequest {
	return dto.EvaluateTaskRequest{
		TaskID:            "task-1",
		SubmissionID:      "sub-1",
		TaskTitle:         "Beach clean-up",
		TaskDescription:   "Collect litter from a beach",
		SubmissionDetails: "Collected <b>3 bags</b> of plastic<script>alert(1)</script>",
	}
}

func TestEvaluateComputesOverallScoreLocally(t *testing.T) {
	reasoner := &stubReasoner{reply: rubricReply}
	svc, evaluations, _ := newEvaluationFixture(reasoner)

	resp, err := svc.Evaluate(context.Background(), "user-1", evaluateRequest())
	require.NoError(t, err)
	require.Equal(t, 92, resp.OverallScore)
	require.Equal(t, scoring.RubricScores{Completeness: 90, Quality: 85, Effort: 95, Impact: 100}, resp.RubricScores)
	require.Len(t, resp.ImprovementPoints, 3)
	require.Equal(t, "Thorough clean-up with measurable impact.", resp.Summary)

	require.Len(t, evaluations.created, 1)
	require.Equal(t, "user-1", evaluations.created[0].UserID)
	require.Equal(t, "stub", evaluations.created[0].Provider)

	prompt := reasoner.requests[0].Prompt
	require.Contains(t, prompt, "Collected 3 bags of plastic")
	require.NotContains(t, prompt, "<script>")
	require.Contains(t, reasoner.requests[0].System, "completeness (weight 30%)")
}

func TestEvaluateAppendsHistory(t *testing.T) {
	svc, evaluations, _ := newEvaluationFixture(&stubReasoner{reply: rubricReply})

	first, err := svc.Evaluate(context.Background(), "user-1", evaluateRequest())
	require.NoError(t, err)
	second, err := svc.Evaluate(context.Background(), "user-1", evaluateRequest())
	require.NoError(t, err)

	require.NotEqual(t, first.ID, second.ID)
	require.Len(t, evaluations.created, 2)

	history, err := svc.History(context.Background(), "sub-1", "user-1", "student")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, second.ID, history[0].ID)
}

func TestEvaluateMalformedReplyPersistsNothing(t *testing.T) {
	replies := []string{
		`{"completeness": "ninety", "quality": 85, "effort": 95, "impact": 100, "improvement_points": ["a","b","c"], "summary": "x"}`,
		`{"completeness": 90, "quality": 85, "effort": 95, "improvement_points": ["a","b","c"], "summary": "x"}`,
		`{"completeness": 90, "quality": 85, "effort": 95, "impact": 100, "improvement_points": ["a"], "summary": "x"}`,
		`Here you go: {"completeness": 90}`,
	}

	for _, reply := range replies {
		svc, evaluations, _ := newEvaluationFixture(&stubReasoner{reply: reply})

		_, err := svc.Evaluate(context.Background(), "user-1", evaluateRequest())
		require.Error(t, err)
		require.True(t, errors.Is(err, ai.ErrMalformedResponse), "reply %s", reply)
		require.Empty(t, evaluations.created)
	}
}

func TestEvaluatePropagatesUpstreamRefusals(t *testing.T) {
	for _, sentinel := range []error{ai.ErrRateLimited, ai.ErrQuotaExhausted, ai.ErrUpstreamUnavailable} {
		svc, evaluations, _ := newEvaluationFixture(&stubReasoner{err: fmt.Errorf("%w: refused", sentinel)})

		_, err := svc.Evaluate(context.Background(), "user-1", evaluateRequest())
		require.True(t, errors.Is(err, sentinel))
		require.Empty(t, evaluations.created)
	}
}

func TestEvaluateSurfacesPersistenceFailure(t *testing.T) {
	svc, evaluations, _ := newEvaluationFixture(&stubReasoner{reply: rubricReply})
	evaluations.err = errors.New("insert failed")

	_, err := svc.Evaluate(context.Background(), "user-1", evaluateRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "persist evaluation")
}

func TestEvaluateRequiresIdentifiers(t *testing.T) {
	reasoner := &stubReasoner{reply: rubricReply}
	svc, _, _ := newEvaluationFixture(reasoner)

	req := evaluateRequest()
	req.SubmissionID = ""
	_, err := svc.Evaluate(context.Background(), "user-1", req)
	require.True(t, errors.Is(err, ErrMissingIdentifiers))

	req = evaluateRequest()
	req.TaskID = " "
	_, err = svc.Evaluate(context.Background(), "user-1", req)
	require.True(t, errors.Is(err, ErrMissingIdentifiers))
	require.Zero(t, reasoner.calls)
}

func TestEvaluateWithoutReasoner(t *testing.T) {
	svc, _, _ := newEvaluationFixture(nil)

	_, err := svc.Evaluate(context.Background(), "user-1", evaluateRequest())
	require.True(t, errors.Is(err, ErrReasonerUnavailable))
}

func TestEvaluationHistoryAccess(t *testing.T) {
	svc, _, _ := newEvaluationFixture(&stubReasoner{reply: rubricReply})

	_, err := svc.History(context.Background(), "sub-1", "someone-else", "student")
	require.True(t, errors.Is(err, ErrForbidden))

	_, err = svc.History(context.Background(), "sub-1", "teacher-1", "teacher")
	require.NoError(t, err)

	_, err = svc.History(context.Background(), "missing", "user-1", "student")
	require.True(t, errors.Is(err, ErrSubmissionNotFound))
}

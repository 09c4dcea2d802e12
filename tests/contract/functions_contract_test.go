package contract_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecotask-api/internal/dto"
	"github.com/noah-isme/ecotask-api/internal/handler"
	"github.com/noah-isme/ecotask-api/internal/scoring"
	"github.com/noah-isme/ecotask-api/pkg/ai"
)

type stubEvaluationService struct {
	response dto.EvaluationResponse
	err      error
}

func (s stubEvaluationService) Evaluate(context.Context, string, dto.EvaluateTaskRequest) (dto.EvaluationResponse, error) {
	return s.response, s.err
}

func (s stubEvaluationService) History(context.Context, string, string, string) ([]dto.EvaluationResponse, error) {
	return []dto.EvaluationResponse{s.response}, s.err
}

type stubVerificationService struct {
	response dto.VerifyPhotoResponse
	err      error
}

func (s stubVerificationService) Verify(context.Context, string, dto.VerifyPhotoRequest) (dto.VerifyPhotoResponse, error) {
	return s.response, s.err
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func newApp(evaluation stubEvaluationService, verification stubVerificationService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	})
	app.Post("/evaluate-task", handler.NewEvaluationHandler(evaluation, zerolog.Nop()).Evaluate)
	app.Post("/verify-photo", handler.NewVerificationHandler(verification, zerolog.Nop()).Verify)
	return app
}

func post(t *testing.T, app *fiber.App, path string, body interface{}) (int, interface{}) {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	return resp.StatusCode, payload
}

func TestEvaluateTaskContract(t *testing.T) {
	schema := compileSchema(t, "evaluate_task.schema.json")

	app := newApp(stubEvaluationService{response: dto.EvaluationResponse{
		ID:                "eval-1",
		OverallScore:      92,
		RubricScores:      scoring.RubricScores{Completeness: 90, Quality: 85, Effort: 95, Impact: 100},
		ImprovementPoints: []string{"a", "b", "c"},
		Summary:           "Thorough clean-up.",
		EvaluatedAt:       time.Now().UTC(),
	}}, stubVerificationService{})

	status, payload := post(t, app, "/evaluate-task", map[string]string{"taskId": "t", "submissionId": "s"})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, schema.Validate(payload))
}

func TestEvaluateTaskErrorContract(t *testing.T) {
	schema := compileSchema(t, "function_error.schema.json")

	for _, err := range []error{ai.ErrRateLimited, ai.ErrQuotaExhausted, ai.ErrMalformedResponse} {
		app := newApp(stubEvaluationService{err: err}, stubVerificationService{})
		status, payload := post(t, app, "/evaluate-task", map[string]string{"taskId": "t", "submissionId": "s"})
		require.GreaterOrEqual(t, status, http.StatusBadRequest)
		require.NoError(t, schema.Validate(payload), err.Error())
	}
}

func TestVerifyPhotoContract(t *testing.T) {
	schema := compileSchema(t, "verify_photo.schema.json")

	app := newApp(stubEvaluationService{}, stubVerificationService{response: dto.VerifyPhotoResponse{
		Score:           96,
		Notes:           "Photos show sorted recycling.",
		LocationValid:   true,
		ContentMatch:    true,
		FraudIndicators: []string{},
	}})

	status, payload := post(t, app, "/verify-photo", map[string]string{"submission_id": "s"})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, schema.Validate(payload))
}

func TestVerifyPhotoErrorContract(t *testing.T) {
	schema := compileSchema(t, "verify_photo_error.schema.json")

	app := newApp(stubEvaluationService{}, stubVerificationService{err: context.DeadlineExceeded})
	status, payload := post(t, app, "/verify-photo", map[string]string{"submission_id": "s"})
	require.Equal(t, http.StatusInternalServerError, status)
	require.NoError(t, schema.Validate(payload))
}

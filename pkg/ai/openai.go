package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	reasoningDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ecotask",
		Subsystem: "ai",
		Name:      "reasoning_duration_seconds",
		Help:      "Duration of structured reasoning requests",
	}, []string{"provider"})

	reasoningFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecotask",
		Subsystem: "ai",
		Name:      "reasoning_failures_total",
		Help:      "Number of structured reasoning failures by reason",
	}, []string{"provider", "reason"})
)

// OpenAIConfig defines configuration options for the OpenAI reasoner.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// OpenAIReasoner implements Reasoner against any OpenAI-compatible chat completion API.
// The contract is enforced through a forced function call.
type OpenAIReasoner struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIReasoner builds a new reasoner using the provided configuration.
func NewOpenAIReasoner(cfg OpenAIConfig) (*OpenAIReasoner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	config.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIReasoner{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/ecotask-api/pkg/ai/openai"),
		logger: cfg.Logger.With().Str("component", "openai_reasoner").Logger(),
	}, nil
}

// Provider reports the provider label used in metrics and records.
func (r *OpenAIReasoner) Provider() string {
	return "openai"
}

// Reason sends the request and returns the arguments of the forced function call.
func (r *OpenAIReasoner) Reason(parent context.Context, req ReasoningRequest) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(parent, r.cfg.Timeout)
	defer cancel()

	ctx, span := r.tracer.Start(ctx, "openai.reason", trace.WithAttributes(
		attribute.String("model", r.cfg.Model),
		attribute.String("contract", req.Contract.Name),
		attribute.Int("images", len(req.Images)),
	))
	defer span.End()

	parameters, err := json.Marshal(req.Contract.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal contract: %w", err)
	}

	request := openai.ChatCompletionRequest{
		Model:       r.cfg.Model,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			userMessage(req),
		},
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        req.Contract.Name,
				Description: req.Contract.Description,
				Parameters:  json.RawMessage(parameters),
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: req.Contract.Name},
		},
	}

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, request)
	reasoningDuration.WithLabelValues(r.Provider()).Observe(time.Since(start).Seconds())
	if err != nil {
		classified := classifyOpenAIError(err)
		r.fail(span, classified)
		return nil, classified
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
		r.fail(span, err)
		return nil, err
	}

	for _, call := range resp.Choices[0].Message.ToolCalls {
		if call.Function.Name == req.Contract.Name {
			span.SetAttributes(attribute.Int("usage.total_tokens", resp.Usage.TotalTokens))
			return json.RawMessage(call.Function.Arguments), nil
		}
	}

	err = fmt.Errorf("%w: function %s was not called", ErrMalformedResponse, req.Contract.Name)
	r.fail(span, err)
	return nil, err
}

func (r *OpenAIReasoner) fail(span trace.Span, err error) {
	reasoningFailures.WithLabelValues(r.Provider(), FailureReason(err)).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func userMessage(req ReasoningRequest) openai.ChatCompletionMessage {
	if len(req.Images) == 0 {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt}
	}

	parts := make([]openai.ChatMessagePart, 0, len(req.Images)+1)
	parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: req.Prompt})
	for _, image := range req.Images {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: image.URL, Detail: openai.ImageURLDetailAuto},
		})
	}

	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts}
}

func classifyOpenAIError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	return classifyStatus(status, err)
}

func classifyStatus(status int, err error) error {
	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
	default:
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
}

// FailureReason maps a classified reasoner error to a short label.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrQuotaExhausted):
		return "quota_exhausted"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "unavailable"
	}
}

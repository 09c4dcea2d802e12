package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

// GeminiConfig defines configuration options for the Gemini reasoner.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// GeminiReasoner implements Reasoner with Gemini's schema-constrained JSON mode.
type GeminiReasoner struct {
	client *genai.Client
	cfg    GeminiConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewGeminiReasoner creates a Gemini backed reasoner.
func NewGeminiReasoner(ctx context.Context, cfg GeminiConfig) (*GeminiReasoner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiReasoner{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/ecotask-api/pkg/ai/gemini"),
		logger: cfg.Logger.With().Str("component", "gemini_reasoner").Logger(),
	}, nil
}

// Provider reports the provider label used in metrics and records.
func (r *GeminiReasoner) Provider() string {
	return "gemini"
}

// Reason sends the request with a response schema and returns the JSON reply.
func (r *GeminiReasoner) Reason(parent context.Context, req ReasoningRequest) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(parent, r.cfg.Timeout)
	defer cancel()

	ctx, span := r.tracer.Start(ctx, "gemini.reason", trace.WithAttributes(
		attribute.String("model", r.cfg.Model),
		attribute.String("contract", req.Contract.Name),
		attribute.Int("images", len(req.Images)),
	))
	defer span.End()

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, image := range req.Images {
		part, err := geminiImagePart(image)
		if err != nil {
			err = fmt.Errorf("%w: unreadable image: %v", ErrMalformedResponse, err)
			r.fail(span, err)
			return nil, err
		}
		parts = append(parts, part)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    req.Contract.GenAISchema(),
	}

	start := time.Now()
	resp, err := r.client.Models.GenerateContent(ctx, r.cfg.Model, []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}, config)
	reasoningDuration.WithLabelValues(r.Provider()).Observe(time.Since(start).Seconds())
	if err != nil {
		classified := classifyGeminiError(err)
		r.fail(span, classified)
		return nil, classified
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		err := fmt.Errorf("%w: empty candidate", ErrMalformedResponse)
		r.fail(span, err)
		return nil, err
	}

	return json.RawMessage(text), nil
}

func (r *GeminiReasoner) fail(span trace.Span, err error) {
	reasoningFailures.WithLabelValues(r.Provider(), FailureReason(err)).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func geminiImagePart(image Image) (*genai.Part, error) {
	if strings.HasPrefix(image.URL, "data:") {
		mimeType, data, err := DecodeDataURI(image.URL)
		if err != nil {
			return nil, err
		}
		return genai.NewPartFromBytes(data, mimeType), nil
	}
	return genai.NewPartFromURI(image.URL, imageMIMEType(image.URL)), nil
}

// imageMIMEType guesses the type of a remote photo from its path extension.
func imageMIMEType(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "image/jpeg"
	}
	mimeType := mime.TypeByExtension(strings.ToLower(path.Ext(u.Path)))
	if mimeType == "" {
		return "image/jpeg"
	}
	if base, _, ok := strings.Cut(mimeType, ";"); ok {
		mimeType = strings.TrimSpace(base)
	}
	return mimeType
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyStatus(apiErrPtr.Code, err)
	}
	return classifyStatus(0, err)
}

// DecodeDataURI splits a base64 data URI into its declared MIME type and payload.
func DecodeDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, fmt.Errorf("not a data uri")
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return "", nil, fmt.Errorf("data uri missing payload")
	}
	if !strings.HasSuffix(header, ";base64") {
		return "", nil, fmt.Errorf("data uri must be base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri: %w", err)
	}

	mime := strings.TrimSuffix(header, ";base64")
	if mime == "" {
		mime = "application/octet-stream"
	}
	return mime, data, nil
}

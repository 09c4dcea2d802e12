package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/ecotask-api/internal/scoring"
	"github.com/noah-isme/ecotask-api/pkg/ai"
)

// MaxAnalyzedPhotos is the fixed number of photos sent for content analysis.
const MaxAnalyzedPhotos = 3

// NeutralContentScore is assigned when the analysis could not be performed.
const NeutralContentScore = 70

const (
	noPhotosIndicator     = "No photos submitted"
	rateLimitedNotes      = "AI analysis rate limited - manual review required"
	unavailableNotes      = "AI analysis unavailable - manual review required"
	failedNotes           = "AI analysis failed - manual review required"
	defaultFraudIndicator = "AI detected potential fraud"
)

var contentContract = ai.MustContract(
	"report_photo_verification",
	"Report whether the photos genuinely document completion of the task.",
	ai.Field{Name: "score", Type: ai.FieldInteger, Description: "Relevance of the photos to the task, 0-100."},
	ai.Field{Name: "content_match", Type: ai.FieldBoolean, Description: "True when the photos show the task being done."},
	ai.Field{Name: "fraud_detected", Type: ai.FieldBoolean, Description: "True for stock, screenshot, duplicated or manipulated images."},
	ai.Field{Name: "fraud_reasons", Type: ai.FieldStringArray, Description: "Short reasons for any suspected fraud."},
	ai.Field{Name: "summary", Type: ai.FieldString, Description: "One or two sentence assessment."},
)

const contentSystemPrompt = "You verify photo evidence for environmental action tasks. Check that the photos show the described " +
	"activity, look like genuine photos taken by the submitter (not stock images, screenshots or edited images), and are " +
	"consistent with each other. Report the result only through the report_photo_verification function."

// ContentInput is the evidence handed to the content verifier.
type ContentInput struct {
	TaskCategory    string
	TaskDescription string
	Photos          []string
}

// ContentAnalysis is the normalized outcome of a content verification.
type ContentAnalysis struct {
	Score         int
	ContentMatch  bool
	FraudDetected bool
	FraudReasons  []string
	Summary       string
	// Degraded is set when the neutral fallback was used instead of a real analysis.
	Degraded bool
	Reason   string
}

// Indicators returns the fraud indicators this analysis contributes.
func (a ContentAnalysis) Indicators() []string {
	if !a.FraudDetected {
		return nil
	}
	if len(a.FraudReasons) == 0 {
		return []string{defaultFraudIndicator}
	}
	return a.FraudReasons
}

// ContentVerifier analyzes photo evidence. It never fails: every upstream
// problem is folded into a degraded analysis.
type ContentVerifier interface {
	Analyze(ctx context.Context, input ContentInput) ContentAnalysis
}

type contentVerifier struct {
	reasoner  ai.Reasoner
	logger    zerolog.Logger
	maxPhotos int
}

// ContentVerifierOption customizes a content verifier.
type ContentVerifierOption func(*contentVerifier)

// WithPhotoLimit lowers the number of photos sent for analysis. Values outside
// 1..MaxAnalyzedPhotos are ignored.
func WithPhotoLimit(limit int) ContentVerifierOption {
	return func(v *contentVerifier) {
		if limit > 0 && limit <= MaxAnalyzedPhotos {
			v.maxPhotos = limit
		}
	}
}

// NewContentVerifier wraps a reasoner with the photo verification contract and fallback policy.
// A nil reasoner yields the "unavailable" fallback for every request with photos.
func NewContentVerifier(reasoner ai.Reasoner, logger zerolog.Logger, opts ...ContentVerifierOption) ContentVerifier {
	v := &contentVerifier{
		reasoner:  reasoner,
		logger:    logger.With().Str("component", "content_verifier").Logger(),
		maxPhotos: MaxAnalyzedPhotos,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type contentPayload struct {
	Score         int      `json:"score"`
	ContentMatch  bool     `json:"content_match"`
	FraudDetected bool     `json:"fraud_detected"`
	FraudReasons  []string `json:"fraud_reasons"`
	Summary       string   `json:"summary"`
}

func (v *contentVerifier) Analyze(ctx context.Context, input ContentInput) ContentAnalysis {
	photos := make([]string, 0, len(input.Photos))
	for _, photo := range input.Photos {
		if trimmed := strings.TrimSpace(photo); trimmed != "" {
			photos = append(photos, trimmed)
		}
	}

	if len(photos) == 0 {
		return ContentAnalysis{
			Score:         0,
			ContentMatch:  false,
			FraudDetected: true,
			FraudReasons:  []string{noPhotosIndicator},
			Summary:       "No photo evidence was provided.",
			Reason:        "no_photos",
		}
	}

	if v.reasoner == nil {
		return degradedAnalysis(unavailableNotes, "unavailable")
	}

	if len(photos) > v.maxPhotos {
		photos = photos[:v.maxPhotos]
	}

	images := make([]ai.Image, 0, len(photos))
	for _, photo := range photos {
		images = append(images, ai.Image{URL: photo})
	}

	raw, err := v.reasoner.Reason(ctx, ai.ReasoningRequest{
		System:   contentSystemPrompt,
		Prompt:   buildContentPrompt(input, len(photos)),
		Images:   images,
		Contract: contentContract,
	})
	if err != nil {
		return v.fallback(err)
	}

	var payload contentPayload
	if err := contentContract.Decode(raw, &payload); err != nil {
		return v.fallback(err)
	}

	reasons := make([]string, 0, len(payload.FraudReasons))
	for _, reason := range payload.FraudReasons {
		if trimmed := strings.TrimSpace(reason); trimmed != "" {
			reasons = append(reasons, trimmed)
		}
	}

	return ContentAnalysis{
		Score:         scoring.ClampScore(payload.Score),
		ContentMatch:  payload.ContentMatch,
		FraudDetected: payload.FraudDetected,
		FraudReasons:  reasons,
		Summary:       strings.TrimSpace(payload.Summary),
		Reason:        "analyzed",
	}
}

func (v *contentVerifier) fallback(err error) ContentAnalysis {
	reason := ai.FailureReason(err)
	v.logger.Warn().Err(err).Str("reason", reason).Msg("content analysis degraded to neutral score")

	switch {
	case errors.Is(err, ai.ErrRateLimited):
		return degradedAnalysis(rateLimitedNotes, reason)
	case errors.Is(err, ai.ErrQuotaExhausted):
		return degradedAnalysis(unavailableNotes, reason)
	default:
		return degradedAnalysis(failedNotes, reason)
	}
}

func degradedAnalysis(notes, reason string) ContentAnalysis {
	return ContentAnalysis{
		Score:        NeutralContentScore,
		ContentMatch: true,
		Summary:      notes,
		Degraded:     true,
		Reason:       reason,
	}
}

func buildContentPrompt(input ContentInput, photoCount int) string {
	builder := strings.Builder{}
	builder.WriteString("# Task Category\n")
	builder.WriteString(input.TaskCategory)
	builder.WriteString("\n\n## Task Description\n")
	builder.WriteString(input.TaskDescription)
	builder.WriteString(fmt.Sprintf("\n\n## Evidence\n%d photo(s) attached.", photoCount))
	return builder.String()
}

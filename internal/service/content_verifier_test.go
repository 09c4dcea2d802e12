package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecotask-api/pkg/ai"
)

const cleanContentReply = `{"score": 80, "content_match": true, "fraud_detected": false, "fraud_reasons": [], "summary": "Photos show litter collected on a beach."}`

func TestContentVerifierNormalizesReply(t *testing.T) {
	reasoner := &stubReasoner{reply: cleanContentReply}
	verifier := NewContentVerifier(reasoner, zerolog.Nop())

	analysis := verifier.Analyze(context.Background(), ContentInput{TaskCategory: "conservation", TaskDescription: "Clean a beach", Photos: []string{"https://cdn.test/1.jpg"}})
	require.Equal(t, 80, analysis.Score)
	require.True(t, analysis.ContentMatch)
	require.False(t, analysis.Degraded)
	require.Empty(t, analysis.Indicators())
	require.Equal(t, "Photos show litter collected on a beach.", analysis.Summary)
}

func TestContentVerifierSendsAtMostThreePhotos(t *testing.T) {
	reasoner := &stubReasoner{reply: cleanContentReply}
	verifier := NewContentVerifier(reasoner, zerolog.Nop())

	photos := []string{"https://cdn.test/1.jpg", "https://cdn.test/2.jpg", "https://cdn.test/3.jpg", "https://cdn.test/4.jpg", "https://cdn.test/5.jpg"}
	verifier.Analyze(context.Background(), ContentInput{Photos: photos})

	require.Equal(t, 1, reasoner.calls)
	require.Len(t, reasoner.requests[0].Images, MaxAnalyzedPhotos)
	require.Equal(t, "https://cdn.test/3.jpg", reasoner.requests[0].Images[2].URL)
}

func TestContentVerifierZeroPhotosIsTerminal(t *testing.T) {
	reasoner := &stubReasoner{reply: cleanContentReply}
	verifier := NewContentVerifier(reasoner, zerolog.Nop())

	analysis := verifier.Analyze(context.Background(), ContentInput{Photos: []string{" ", ""}})
	require.Zero(t, reasoner.calls)
	require.Equal(t, 0, analysis.Score)
	require.False(t, analysis.Degraded)
	require.Equal(t, []string{"No photos submitted"}, analysis.Indicators())
}

func TestContentVerifierFallbacks(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		reply string
		notes string
	}{
		{name: "rate limited", err: fmt.Errorf("%w: 429", ai.ErrRateLimited), notes: "AI analysis rate limited - manual review required"},
		{name: "quota exhausted", err: fmt.Errorf("%w: 402", ai.ErrQuotaExhausted), notes: "AI analysis unavailable - manual review required"},
		{name: "transport", err: fmt.Errorf("%w: timeout", ai.ErrUpstreamUnavailable), notes: "AI analysis failed - manual review required"},
		{name: "malformed", reply: `{"score": "high"}`, notes: "AI analysis failed - manual review required"},
		{name: "free text", reply: `The photos look fine, score 90`, notes: "AI analysis failed - manual review required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verifier := NewContentVerifier(&stubReasoner{reply: tc.reply, err: tc.err}, zerolog.Nop())

			analysis := verifier.Analyze(context.Background(), ContentInput{Photos: []string{"https://cdn.test/1.jpg"}})
			require.Equal(t, NeutralContentScore, analysis.Score)
			require.True(t, analysis.Degraded)
			require.True(t, analysis.ContentMatch)
			require.Empty(t, analysis.Indicators(), "degraded analysis must not add fraud indicators")
			require.Equal(t, tc.notes, analysis.Summary)
		})
	}
}

func TestContentVerifierDegradesOnUndecodableGeminiPhotos(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"score\": 95, \"content_match\": true, \"fraud_detected\": false, \"fraud_reasons\": [], \"summary\": \"looks great\"}"}]}}]}`))
	}))
	t.Cleanup(server.Close)

	reasoner, err := ai.NewGeminiReasoner(context.Background(), ai.GeminiConfig{
		APIKey:  "test-key",
		BaseURL: server.URL + "/",
		Timeout: 2 * time.Second,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	verifier := NewContentVerifier(reasoner, zerolog.Nop())

	analysis := verifier.Analyze(context.Background(), ContentInput{
		TaskCategory: "recycling",
		Photos:       []string{"data:image/png;base64,!!!", "data:image/jpeg;base64,???"},
	})
	require.Zero(t, atomic.LoadInt32(&calls))
	require.True(t, analysis.Degraded)
	require.Equal(t, NeutralContentScore, analysis.Score)
	require.Equal(t, "AI analysis failed - manual review required", analysis.Summary)
	require.Equal(t, "malformed", analysis.Reason)
}

func TestContentVerifierWithoutReasonerDegrades(t *testing.T) {
	verifier := NewContentVerifier(nil, zerolog.Nop())

	analysis := verifier.Analyze(context.Background(), ContentInput{Photos: []string{"https://cdn.test/1.jpg"}})
	require.True(t, analysis.Degraded)
	require.Equal(t, NeutralContentScore, analysis.Score)
}

func TestContentVerifierFraudIndicators(t *testing.T) {
	reasoner := &stubReasoner{reply: `{"score": 140, "content_match": false, "fraud_detected": true, "fraud_reasons": ["Stock photo watermark", " "], "summary": "Looks like a stock image."}`}
	verifier := NewContentVerifier(reasoner, zerolog.Nop())

	analysis := verifier.Analyze(context.Background(), ContentInput{Photos: []string{"https://cdn.test/1.jpg"}})
	require.Equal(t, 100, analysis.Score)
	require.Equal(t, []string{"Stock photo watermark"}, analysis.Indicators())

	reasoner.reply = `{"score": 30, "content_match": true, "fraud_detected": true, "fraud_reasons": [], "summary": "Edited."}`
	analysis = verifier.Analyze(context.Background(), ContentInput{Photos: []string{"https://cdn.test/1.jpg"}})
	require.Equal(t, []string{"AI detected potential fraud"}, analysis.Indicators())
}

func TestContentVerifierPhotoLimitOption(t *testing.T) {
	reasoner := &stubReasoner{reply: `{"score": 80, "content_match": true, "fraud_detected": false, "fraud_reasons": [], "summary": "ok"}`}
	photos := []string{"https://cdn.test/1.jpg", "https://cdn.test/2.jpg", "https://cdn.test/3.jpg"}

	NewContentVerifier(reasoner, zerolog.Nop(), WithPhotoLimit(1)).Analyze(context.Background(), ContentInput{Photos: photos})
	NewContentVerifier(reasoner, zerolog.Nop(), WithPhotoLimit(9)).Analyze(context.Background(), ContentInput{Photos: photos})

	require.Len(t, reasoner.requests, 2)
	require.Len(t, reasoner.requests[0].Images, 1)
	require.Len(t, reasoner.requests[1].Images, MaxAnalyzedPhotos)
}

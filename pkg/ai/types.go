package ai

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrRateLimited indicates the reasoning service refused the call with HTTP 429.
	ErrRateLimited = errors.New("reasoning service rate limited")
	// ErrQuotaExhausted indicates the reasoning service refused the call with HTTP 402.
	ErrQuotaExhausted = errors.New("reasoning service quota exhausted")
	// ErrMalformedResponse indicates the reply did not satisfy the structured output contract.
	ErrMalformedResponse = errors.New("malformed reasoning response")
	// ErrUpstreamUnavailable covers every other transport or status failure, timeouts included.
	ErrUpstreamUnavailable = errors.New("reasoning service unavailable")
)

// Image is a single piece of photo evidence, either a data URI or a remote URL.
type Image struct {
	URL string
}

// ReasoningRequest is one structured-output call against a Reasoner.
type ReasoningRequest struct {
	System   string
	Prompt   string
	Images   []Image
	Contract Contract
}

// Reasoner evaluates text and image evidence and returns a JSON document that
// satisfies the request contract. Implementations must classify failures into
// the sentinel errors of this package.
type Reasoner interface {
	Reason(ctx context.Context, req ReasoningRequest) (json.RawMessage, error)
	Provider() string
}

package scoring

import (
	"fmt"
	"math"
	"strings"
)

// LowContentScoreThreshold is the raw content score below which a result is always flagged.
const LowContentScoreThreshold = 50

// Signals are the inputs gathered by the location check and the content analysis.
type Signals struct {
	RawContentScore int
	LocationBonus   float64
	LocationValid   bool
	ContentMatch    bool
	Summary         string
	FraudIndicators []string
	// Degraded marks a neutral fallback analysis. It only forces a flag when
	// the aggregator is configured to do so.
	Degraded bool
}

// VerificationResult is the final outcome of a photo/location verification.
type VerificationResult struct {
	Score           int      `json:"score"`
	Flagged         bool     `json:"flagged"`
	LocationValid   bool     `json:"location_valid"`
	ContentMatch    bool     `json:"content_match"`
	FraudIndicators []string `json:"fraud_indicators"`
	Notes           string   `json:"notes"`
}

// Aggregator merges verification signals into a VerificationResult.
type Aggregator struct {
	FlagDegraded bool
}

// Aggregate combines the signals. The score is the bonus-adjusted raw score
// clamped to 0-100; notes carry the summary plus a flag suffix.
func (a Aggregator) Aggregate(s Signals) VerificationResult {
	bonus := s.LocationBonus
	if bonus <= 0 {
		bonus = NoBonus
	}

	indicators := make([]string, 0, len(s.FraudIndicators))
	for _, indicator := range s.FraudIndicators {
		if trimmed := strings.TrimSpace(indicator); trimmed != "" {
			indicators = append(indicators, trimmed)
		}
	}

	flagged := len(indicators) > 0 ||
		!s.ContentMatch ||
		!s.LocationValid ||
		s.RawContentScore < LowContentScoreThreshold ||
		(a.FlagDegraded && s.Degraded)

	return VerificationResult{
		Score:           ClampScore(int(math.Round(float64(s.RawContentScore) * bonus))),
		Flagged:         flagged,
		LocationValid:   s.LocationValid,
		ContentMatch:    s.ContentMatch,
		FraudIndicators: indicators,
		Notes:           ComposeNotes(s.Summary, indicators),
	}
}

// ComposeNotes appends fraud indicators to the summary as "<summary> | Flags: a, b".
func ComposeNotes(summary string, indicators []string) string {
	summary = strings.TrimSpace(summary)
	if len(indicators) == 0 {
		return summary
	}
	return fmt.Sprintf("%s | Flags: %s", summary, strings.Join(indicators, ", "))
}

// LocationIndicator describes a submission reported outside its geofence.
func LocationIndicator(distance, radius float64) string {
	return fmt.Sprintf("Location too far: %dm away (allowed: %dm)", int(math.Round(distance)), int(math.Round(radius)))
}

package scoring

import (
	"fmt"
	"math"
)

// Criterion names one rubric dimension.
type Criterion string

const (
	Completeness Criterion = "completeness"
	Quality      Criterion = "quality"
	Effort       Criterion = "effort"
	Impact       Criterion = "impact"
)

// Criteria lists the rubric dimensions in their canonical order.
var Criteria = []Criterion{Completeness, Quality, Effort, Impact}

// RubricScores holds the four 0-100 sub-scores of an evaluation.
type RubricScores struct {
	Completeness int `json:"completeness"`
	Quality      int `json:"quality"`
	Effort       int `json:"effort"`
	Impact       int `json:"impact"`
}

// Get returns the sub-score for a criterion.
func (s RubricScores) Get(c Criterion) int {
	switch c {
	case Completeness:
		return s.Completeness
	case Quality:
		return s.Quality
	case Effort:
		return s.Effort
	case Impact:
		return s.Impact
	default:
		return 0
	}
}

// RubricWeights are percentage weights per criterion.
type RubricWeights struct {
	Completeness int
	Quality      int
	Effort       int
	Impact       int
}

// DefaultWeights is the standard 30/25/20/25 split.
var DefaultWeights = RubricWeights{Completeness: 30, Quality: 25, Effort: 20, Impact: 25}

// Rubric is an immutable, validated weight table.
type Rubric struct {
	weights RubricWeights
}

// NewRubric validates that every weight is non-negative and that they sum to exactly 100.
func NewRubric(weights RubricWeights) (Rubric, error) {
	values := []int{weights.Completeness, weights.Quality, weights.Effort, weights.Impact}
	total := 0
	for _, w := range values {
		if w < 0 {
			return Rubric{}, fmt.Errorf("rubric weights must be non-negative")
		}
		total += w
	}
	if total != 100 {
		return Rubric{}, fmt.Errorf("rubric weights must sum to 100, got %d", total)
	}
	return Rubric{weights: weights}, nil
}

// StandardRubric returns the rubric built from DefaultWeights.
func StandardRubric() Rubric {
	return Rubric{weights: DefaultWeights}
}

// Weight returns the percentage weight of a criterion.
func (r Rubric) Weight(c Criterion) int {
	switch c {
	case Completeness:
		return r.weights.Completeness
	case Quality:
		return r.weights.Quality
	case Effort:
		return r.weights.Effort
	case Impact:
		return r.weights.Impact
	default:
		return 0
	}
}

// Overall computes round(sum(score*weight)/100) with every sub-score clamped to 0-100.
func (r Rubric) Overall(scores RubricScores) int {
	sum := 0
	for _, c := range Criteria {
		sum += ClampScore(scores.Get(c)) * r.Weight(c)
	}
	return ClampScore(int(math.Round(float64(sum) / 100)))
}

// ClampScore bounds a score to the 0-100 range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

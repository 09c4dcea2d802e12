package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRubricOverallUniformScores(t *testing.T) {
	rubric := StandardRubric()
	require.Equal(t, 80, rubric.Overall(RubricScores{Completeness: 80, Quality: 80, Effort: 80, Impact: 80}))
}

func TestRubricOverallSingleCriterion(t *testing.T) {
	rubric := StandardRubric()
	require.Equal(t, 30, rubric.Overall(RubricScores{Completeness: 100}))
	require.Equal(t, 25, rubric.Overall(RubricScores{Quality: 100}))
	require.Equal(t, 20, rubric.Overall(RubricScores{Effort: 100}))
	require.Equal(t, 25, rubric.Overall(RubricScores{Impact: 100}))
}

func TestRubricOverallRoundsWeightedSum(t *testing.T) {
	rubric := StandardRubric()
	// (90*30 + 85*25 + 95*20 + 100*25) / 100 = 92.25
	require.Equal(t, 92, rubric.Overall(RubricScores{Completeness: 90, Quality: 85, Effort: 95, Impact: 100}))
	// (71*30 + 70*25 + 70*25 + 70*25) / 100 = 70.3
	require.Equal(t, 70, rubric.Overall(RubricScores{Completeness: 71, Quality: 70, Effort: 70, Impact: 70}))
	// (75*30 + 75*25 + 75*20 + 73*25) / 100 = 74.5, half rounds up
	require.Equal(t, 75, rubric.Overall(RubricScores{Completeness: 75, Quality: 75, Effort: 75, Impact: 73}))
}

func TestRubricOverallClampsSubScores(t *testing.T) {
	rubric := StandardRubric()
	require.Equal(t, 100, rubric.Overall(RubricScores{Completeness: 400, Quality: 100, Effort: 100, Impact: 100}))
	require.Equal(t, 0, rubric.Overall(RubricScores{Completeness: -20}))
}

func TestNewRubricValidatesWeights(t *testing.T) {
	_, err := NewRubric(RubricWeights{Completeness: 30, Quality: 30, Effort: 20, Impact: 25})
	require.Error(t, err)

	_, err = NewRubric(RubricWeights{Completeness: -10, Quality: 60, Effort: 25, Impact: 25})
	require.Error(t, err)

	rubric, err := NewRubric(RubricWeights{Completeness: 25, Quality: 25, Effort: 25, Impact: 25})
	require.NoError(t, err)
	require.Equal(t, 25, rubric.Weight(Effort))
}

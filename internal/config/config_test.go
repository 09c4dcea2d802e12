package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecotask-api/internal/scoring"
)

func newViper(values map[string]interface{}) *viper.Viper {
	v := viper.New()
	for key, value := range values {
		v.Set(key, value)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]interface{}{"jwt.secret": "secret"}))
	require.NoError(t, err)

	require.Equal(t, "EcoTask API", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "openai", cfg.AIProvider)
	require.Equal(t, 8*time.Second, cfg.AITimeout)
	require.Equal(t, scoring.DefaultWeights, cfg.RubricWeights)
	require.True(t, cfg.FlagDegraded)
	require.Equal(t, 3, cfg.MaxPhotos)
	require.Equal(t, 20, cfg.RateLimitMax)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
	require.Equal(t, "ecotask/evidence", cfg.CloudinaryUploadFolder)
}

func TestFromViperOverrides(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]interface{}{
		"jwt.secret":                 "secret",
		"ai.provider":                "Gemini",
		"ai.timeout":                 "3s",
		"verification.flag_degraded": false,
		"verification.max_photos":    2,
		"rubric.completeness":        40,
		"rubric.quality":             20,
		"rubric.effort":              20,
		"rubric.impact":              20,
		"app.port":                   ":9090",
	}))
	require.NoError(t, err)

	require.Equal(t, "gemini", cfg.AIProvider)
	require.Equal(t, 3*time.Second, cfg.AITimeout)
	require.False(t, cfg.FlagDegraded)
	require.Equal(t, 2, cfg.MaxPhotos)
	require.Equal(t, ":9090", cfg.HTTPAddress())

	rubric, err := cfg.Rubric()
	require.NoError(t, err)
	require.Equal(t, 40, rubric.Weight(scoring.Completeness))
}

func TestFromViperRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]interface{}{
		"missing secret":   {},
		"unknown provider": {"jwt.secret": "s", "ai.provider": "llama"},
		"bad timeout":      {"jwt.secret": "s", "ai.timeout": "soon"},
		"weights not 100":  {"jwt.secret": "s", "rubric.impact": 50},
		"too many photos":  {"jwt.secret": "s", "verification.max_photos": 5},
		"bad window":       {"jwt.secret": "s", "rate_limit.window": "-1m"},
	}

	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := fromViper(newViper(values))
			require.Error(t, err)
		})
	}
}

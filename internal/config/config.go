package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/ecotask-api/internal/scoring"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	AIProvider             string
	AIModel                string
	AIBaseURL              string
	AITimeout              time.Duration
	OpenAIAPIKey           string
	GeminiAPIKey           string
	RubricWeights          scoring.RubricWeights
	FlagDegraded           bool
	MaxPhotos              int
	RateLimitMax           int
	RateLimitWindow        time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Rubric builds the validated rubric from the configured weight table.
func (c Config) Rubric() (scoring.Rubric, error) {
	return scoring.NewRubric(c.RubricWeights)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ECOTASK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "EcoTask API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "ecotask/evidence")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.timeout", "8s")
	v.SetDefault("rubric.completeness", scoring.DefaultWeights.Completeness)
	v.SetDefault("rubric.quality", scoring.DefaultWeights.Quality)
	v.SetDefault("rubric.effort", scoring.DefaultWeights.Effort)
	v.SetDefault("rubric.impact", scoring.DefaultWeights.Impact)
	v.SetDefault("verification.flag_degraded", true)
	v.SetDefault("verification.max_photos", 3)
	v.SetDefault("rate_limit.max", 20)
	v.SetDefault("rate_limit.window", "1m")
}

func fromViper(v *viper.Viper) (Config, error) {
	setDefaults(v)

	timeout, err := time.ParseDuration(v.GetString("ai.timeout"))
	if err != nil || timeout <= 0 {
		return Config{}, fmt.Errorf("invalid ai timeout %q", v.GetString("ai.timeout"))
	}

	window, err := time.ParseDuration(v.GetString("rate_limit.window"))
	if err != nil || window <= 0 {
		return Config{}, fmt.Errorf("invalid rate limit window %q", v.GetString("rate_limit.window"))
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		AIProvider:             strings.ToLower(strings.TrimSpace(v.GetString("ai.provider"))),
		AIModel:                v.GetString("ai.model"),
		AIBaseURL:              v.GetString("ai.base_url"),
		AITimeout:              timeout,
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		GeminiAPIKey:           v.GetString("gemini_api_key"),
		RubricWeights: scoring.RubricWeights{
			Completeness: v.GetInt("rubric.completeness"),
			Quality:      v.GetInt("rubric.quality"),
			Effort:       v.GetInt("rubric.effort"),
			Impact:       v.GetInt("rubric.impact"),
		},
		FlagDegraded:    v.GetBool("verification.flag_degraded"),
		MaxPhotos:       v.GetInt("verification.max_photos"),
		RateLimitMax:    v.GetInt("rate_limit.max"),
		RateLimitWindow: window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.AIProvider {
	case "openai", "gemini":
	default:
		return Config{}, fmt.Errorf("unsupported ai provider %q", cfg.AIProvider)
	}

	if _, err := cfg.Rubric(); err != nil {
		return Config{}, err
	}

	if cfg.MaxPhotos <= 0 || cfg.MaxPhotos > 3 {
		return Config{}, fmt.Errorf("verification max photos must be between 1 and 3, got %d", cfg.MaxPhotos)
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 20
	}

	return cfg, nil
}

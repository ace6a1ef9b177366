package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	"alcyxob/fitness-coach/internal/planner"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	S3         S3Config         `mapstructure:"s3"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Generation GenerationConfig `mapstructure:"generation"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	ArchivePrefix   string `mapstructure:"archive_prefix"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"` // duration string, e.g. "1h"
}

// LLMConfig points at an OpenAI-compatible chat completions endpoint.
type LLMConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	FallbackModel string        `mapstructure:"fallback_model"`
	Temperature   float64       `mapstructure:"temperature"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// GenerationConfig tunes the plan engine. Zero values fall back to engine defaults.
type GenerationConfig struct {
	WorkoutAttempts       int     `mapstructure:"workout_attempts"`
	MealAttempts          int     `mapstructure:"meal_attempts"`
	HistoryDays           int     `mapstructure:"history_days"`
	FatigueLookbackDays   int     `mapstructure:"fatigue_lookback_days"`
	RecencyWindowDays     int     `mapstructure:"recency_window_days"`
	RecencyWeight         float64 `mapstructure:"recency_weight"`
	CalorieTolerance      float64 `mapstructure:"calorie_tolerance"`
	CalorieSoftTolerance  float64 `mapstructure:"calorie_soft_tolerance"`
	MealCandidatesPerSlot int     `mapstructure:"meal_candidates_per_slot"`
	MealOptions           int     `mapstructure:"meal_options"`
}

// Tuning maps the generation section onto engine settings.
func (g GenerationConfig) Tuning() planner.Tuning {
	t := planner.DefaultTuning()
	if g.WorkoutAttempts > 0 {
		t.WorkoutAttempts = g.WorkoutAttempts
	}
	if g.MealAttempts > 0 {
		t.MealAttempts = g.MealAttempts
	}
	if g.HistoryDays > 0 {
		t.HistoryDays = g.HistoryDays
	}
	if g.FatigueLookbackDays > 0 {
		t.FatigueLookbackDays = g.FatigueLookbackDays
	}
	if g.RecencyWindowDays > 0 {
		t.RecencyWindowDays = g.RecencyWindowDays
	}
	if g.RecencyWeight > 0 {
		t.RecentWeight = g.RecencyWeight
	}
	if g.CalorieTolerance > 0 {
		t.CalorieTolerance = g.CalorieTolerance
	}
	if g.CalorieSoftTolerance > 0 {
		t.CalorieSoftTolerance = g.CalorieSoftTolerance
	}
	if g.MealCandidatesPerSlot > 0 {
		t.MealCandidatesPerSlot = g.MealCandidatesPerSlot
	}
	if g.MealOptions > 0 {
		t.MealOptions = g.MealOptions
	}
	return t
}

type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Spec     string `mapstructure:"spec"`     // cron spec with seconds, e.g. "0 0 3 * * *"
	Timezone string `mapstructure:"timezone"` // IANA name
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, llm.api_key -> LLM_API_KEY
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "fitness_coach")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.archive_prefix", "plans")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.fallback_model", "")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.timeout", "60s")

	d := planner.DefaultTuning()
	v.SetDefault("generation.workout_attempts", d.WorkoutAttempts)
	v.SetDefault("generation.meal_attempts", d.MealAttempts)
	v.SetDefault("generation.history_days", d.HistoryDays)
	v.SetDefault("generation.fatigue_lookback_days", d.FatigueLookbackDays)
	v.SetDefault("generation.recency_window_days", d.RecencyWindowDays)
	v.SetDefault("generation.recency_weight", d.RecentWeight)
	v.SetDefault("generation.calorie_tolerance", d.CalorieTolerance)
	v.SetDefault("generation.calorie_soft_tolerance", d.CalorieSoftTolerance)
	v.SetDefault("generation.meal_candidates_per_slot", d.MealCandidatesPerSlot)
	v.SetDefault("generation.meal_options", d.MealOptions)

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.spec", "0 0 3 * * *")
	v.SetDefault("scheduler.timezone", "UTC")

	// A missing file is fine; env vars and defaults still apply.
	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil
	} else if err != nil {
		return
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return
	}
	return config, nil
}

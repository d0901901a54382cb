// Package config loads process configuration the same way the rest of this
// lineage does: a .env file in development, environment variables in every
// environment, typed getters with hard-coded fallbacks.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Segmentation SegmentationConfig
	Assignment   AssignmentConfig
	Dialogue     DialogueConfig
	Reallocation ReallocationConfig
	Generator    GeneratorConfig
	Persistence  PersistenceConfig
}

type AppConfig struct {
	Environment string
	LogFilePath string
}

// SegmentationConfig holds the thresholds from spec.md §4.A step 5-6.
type SegmentationConfig struct {
	SimilarityThreshold float64 // τ, default 0.75
	MaxGroupSize        int     // default 5
	MinGroupSize        int     // default 2
	MinParagraphChars   int     // default 20
}

// AssignmentConfig selects the assignment mode; the balanced-mode target
// ratios are fixed in pkg/assign and are not configurable.
type AssignmentConfig struct {
	DefaultMode string // "greedy" or "balanced"
}

// DialogueConfig holds the conversation state machine's timing constants.
type DialogueConfig struct {
	HistoryWindow    int           // N, default 10 turns in the context block
	GeneratorDeadline time.Duration // default 30s
}

// ReallocationConfig holds the interruption/reallocator's stability knobs
// from spec.md §4.E.
type ReallocationConfig struct {
	ConfidenceGate     float64 // default 0.7
	DemotionThreshold   int     // positions; default 2
	HysteresisTurns     int     // default 7
	BoundedDelayTurns   int     // default 3
}

type GeneratorConfig struct {
	Provider string // "ollama" or "stub"
	BaseURL  string
	Model    string
}

type PersistenceConfig struct {
	Provider string // "redis" or "memory"
	RedisURL string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "tutor-engine.log.json"),
		},
		Segmentation: SegmentationConfig{
			SimilarityThreshold: getEnvAsFloat("SEGMENT_SIMILARITY_THRESHOLD", 0.75),
			MaxGroupSize:        getEnvAsInt("SEGMENT_MAX_GROUP_SIZE", 5),
			MinGroupSize:        getEnvAsInt("SEGMENT_MIN_GROUP_SIZE", 2),
			MinParagraphChars:   getEnvAsInt("SEGMENT_MIN_PARAGRAPH_CHARS", 20),
		},
		Assignment: AssignmentConfig{
			DefaultMode: getEnv("ASSIGNMENT_MODE", "balanced"),
		},
		Dialogue: DialogueConfig{
			HistoryWindow:     getEnvAsInt("DIALOGUE_HISTORY_WINDOW", 10),
			GeneratorDeadline: getEnvAsDuration("DIALOGUE_GENERATOR_DEADLINE", 30*time.Second),
		},
		Reallocation: ReallocationConfig{
			ConfidenceGate:    getEnvAsFloat("REALLOC_CONFIDENCE_GATE", 0.7),
			DemotionThreshold: getEnvAsInt("REALLOC_DEMOTION_THRESHOLD", 2),
			HysteresisTurns:   getEnvAsInt("REALLOC_HYSTERESIS_TURNS", 7),
			BoundedDelayTurns: getEnvAsInt("REALLOC_BOUNDED_DELAY_TURNS", 3),
		},
		Generator: GeneratorConfig{
			Provider: getEnv("GENERATOR_PROVIDER", "stub"),
			BaseURL:  getEnv("GENERATOR_BASE_URL", "http://localhost:11434"),
			Model:    getEnv("GENERATOR_MODEL", "llama3"),
		},
		Persistence: PersistenceConfig{
			Provider: getEnv("SESSION_STORE_PROVIDER", "memory"),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

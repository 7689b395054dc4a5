// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds runtime settings. DatabaseURL and GoogleAPIKey are optional:
// without a database the engine runs on its in-memory stores, and without an
// API key the analyzer and embedder are disabled.
type Config struct {
	DatabaseURL         string        `env:"DATABASE_URL"`
	GoogleAPIKey        string        `env:"GOOGLE_API_KEY"`
	AnalyzerModel       string        `env:"ANALYZER_MODEL" envDefault:"gemini-2.0-flash"`
	EmbeddingModel      string        `env:"EMBEDDING_MODEL" envDefault:"text-embedding-004"`
	DecayTick           time.Duration `env:"DECAY_TICK" envDefault:"1m"`
	EventBuffer         int           `env:"EVENT_BUFFER" envDefault:"64"`
	TopK                int           `env:"TOP_K" envDefault:"5"`
	SimilarityThreshold float64       `env:"SIMILARITY_THRESHOLD" envDefault:"0.7"`
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.DecayTick <= 0 {
		cfg.DecayTick = time.Minute
	}
	return cfg, nil
}

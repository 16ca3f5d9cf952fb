package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/abhisek/quizpath/internal/policy"
)

// Config holds CLI runtime settings resolved from the environment.
type Config struct {
	// DBPath is the SQLite database file; empty means the default
	// XDG location.
	DBPath string

	// GraphPath and BankPath locate the concept store export and the
	// quiz bank JSON files.
	GraphPath string
	BankPath  string

	// LearnerID identifies the active learner.
	LearnerID string

	// LogMode is "dev", "prod", or "off".
	LogMode string

	// Policy is the stock policy with environment overrides applied.
	Policy policy.Policy
}

// Load reads .env (if present) and the environment. Missing values get
// sensible defaults; an invalid value is an error.
func Load() (*Config, error) {
	// A missing .env file is fine; explicit env vars win either way.
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:    os.Getenv("QUIZPATH_DB"),
		GraphPath: getenv("QUIZPATH_GRAPH", "graph.json"),
		BankPath:  getenv("QUIZPATH_BANK", "bank.json"),
		LearnerID: getenv("QUIZPATH_LEARNER", "default"),
		LogMode:   getenv("QUIZPATH_LOG", "off"),
		Policy:    policy.Default(),
	}

	if v := os.Getenv("QUIZPATH_FALLBACK"); v != "" {
		cfg.Policy.Fallback = policy.FallbackStrategy(v)
	}
	if v := os.Getenv("QUIZPATH_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("QUIZPATH_SEED: %w", err)
		}
		cfg.Policy = cfg.Policy.WithSeed(seed)
	}

	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

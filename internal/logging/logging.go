package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// New builds a zap logger for the given mode: "prod" for JSON output,
// "dev" for console output, "off" for a no-op logger.
func New(mode string) (*zap.Logger, error) {
	switch strings.ToLower(mode) {
	case "off", "":
		return zap.NewNop(), nil
	case "prod", "production":
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		return cfg.Build()
	case "dev", "development", "debug":
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		return cfg.Build()
	default:
		return nil, fmt.Errorf("unknown log mode %q", mode)
	}
}

package utils

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadEnv reads ENV_FILE (default .env) into the process environment without
// overriding variables that are already set.
func LoadEnv(logger *zap.Logger) {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		logger.Warn("ENV file not found or failed to load, using defaults", zap.String("path", path))
	} else {
		logger.Info("ENV file loaded successfully", zap.String("path", path))
	}
}

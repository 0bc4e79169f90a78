package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment overrides.
const (
	EnvDataDir   = "JOBAGENT_DATA_DIR"
	EnvConvexURL = "JOBAGENT_CONVEX_URL"
	EnvLogLevel  = "JOBAGENT_LOG_LEVEL"
)

// LoadDotenv loads .env files into the environment if present. Variables
// already set win.
func LoadDotenv(paths ...string) {
	for _, p := range paths {
		// Missing .env should not kill startup
		_ = godotenv.Load(p)
	}
}

// OverlayEnv applies JOBAGENT_* variables on top of cfg.
func OverlayEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.App.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvConvexURL)); v != "" {
		cfg.Enrichment.ConvexURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.App.LogLevel = v
	}
}

package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL       string
	StateDir         string
	LogCollectorAddr string
	HTTPDebug        bool
	HTTPTimeout      time.Duration
}

const defaultAPIBaseURL = "https://altura.up.railway.app/api"

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	stateDir := getenv("ALTURA_STATE_DIR", "")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		stateDir = filepath.Join(home, ".altura")
	}

	// No timeout by default: long multipart uploads over mobile links are
	// expected, and callers control cancellation via context.
	timeout := time.Duration(0)
	if raw := getenv("ALTURA_HTTP_TIMEOUT", ""); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	return Config{
		APIBaseURL:       getenv("ALTURA_API_URL", defaultAPIBaseURL),
		StateDir:         stateDir,
		LogCollectorAddr: getenv("ALTURA_LOG_COLLECTOR_ADDR", ""),
		HTTPDebug:        getenv("ALTURA_HTTP_DEBUG", "false") == "true",
		HTTPTimeout:      timeout,
	}
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Default values applied when the corresponding environment variable is unset.
const (
	DefaultModel        = "fal-ai/minimax/image-01"
	DefaultQueueURL     = "https://queue.fal.run"
	DefaultOutputDir    = "images"
	DefaultPollInterval = 500 * time.Millisecond
)

// Config is the process configuration. It is read once at startup and never
// mutated afterwards; components receive it by value or pointer and treat it
// as read-only.
type Config struct {
	APIKey       string
	Model        string
	QueueURL     string
	OutputDir    string
	PollInterval time.Duration
	LogLevel     string
	LogFormat    string
}

// LoadConfig reads configuration from environment variables and applies
// defaults. A missing FAL_KEY is not an error here: the server still starts
// and reports the problem on every tool call.
func LoadConfig() *Config {
	return &Config{
		APIKey:       strings.TrimSpace(os.Getenv("FAL_KEY")),
		Model:        getEnv("MINIMAX_MODEL", DefaultModel),
		QueueURL:     strings.TrimRight(getEnv("FAL_QUEUE_URL", DefaultQueueURL), "/"),
		OutputDir:    getEnv("MINIMAX_OUTPUT_DIR", DefaultOutputDir),
		PollInterval: time.Millisecond * time.Duration(getEnvInt("MINIMAX_POLL_INTERVAL_MS", int(DefaultPollInterval/time.Millisecond))),
		LogLevel:     getEnv("MINIMAX_MCP_LOG_LEVEL", "info"),
		LogFormat:    getEnv("MINIMAX_MCP_LOG_FORMAT", "json"),
	}
}

// HasCredentials reports whether an API key was configured at startup.
func (c *Config) HasCredentials() bool {
	return c != nil && c.APIKey != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

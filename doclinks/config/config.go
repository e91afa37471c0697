package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultModel        = "gpt-4o-mini"
	DefaultFixedSiteURL = "https://modelcontextprotocol.io"
)

type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	LLMModel      string
	IncludeCost   bool

	HTTPAddr  string
	JWTSecret string

	Headless          bool
	SettleDelay       time.Duration
	NavigationTimeout time.Duration
	MaxPageChars      int
	FixedSiteURL      string
	TaskTemplatesPath string
	AgentConfigPath   string

	LogDir   string
	LogLevel string
}

// LoadConfig reads .env (when present) and then the process environment.
func LoadConfig() Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	return Config{
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		LLMModel:          getEnv("LLM_MODEL", DefaultModel),
		IncludeCost:       getEnvBool("INCLUDE_COST", true),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8000"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		Headless:          getEnvBool("HEADLESS", true),
		SettleDelay:       getEnvDuration("SETTLE_DELAY", 1500*time.Millisecond),
		NavigationTimeout: getEnvDuration("NAVIGATION_TIMEOUT", 30*time.Second),
		MaxPageChars:      getEnvInt("MAX_PAGE_CHARS", 6000),
		FixedSiteURL:      getEnv("FIXED_SITE_URL", DefaultFixedSiteURL),
		TaskTemplatesPath: getEnv("TASK_TEMPLATES", ""),
		AgentConfigPath:   getEnv("AGENT_CONFIG", ""),
		LogDir:            getEnv("LOG_DIR", "./logs"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// getEnvDuration accepts Go durations ("1.5s") or plain seconds ("1.5").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}

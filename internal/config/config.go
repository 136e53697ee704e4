package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	LLMProvider string
	LLMAPIKey   string
	LLMModel    string
	LLMTimeout  time.Duration

	JWTSecret []byte
	TokenTTL  time.Duration

	TimeZone       string
	ParseRateLimit int64
	CORSOrigins    []string

	LogLevel string
	LogJSON  bool
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from environment variables only.
func FromEnv() *Config {
	cfg := &Config{
		Port: envOr("PORT", "8080"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     envInt("DB_PORT", 5432),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  envOr("DB_SSLMODE", "disable"),

		LLMTimeout: envDuration("LLM_TIMEOUT", 20*time.Second),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:  envDuration("TOKEN_TTL", 365*24*time.Hour),

		TimeZone:       envOr("TIME_ZONE", "Asia/Ho_Chi_Minh"),
		ParseRateLimit: int64(envInt("PARSE_RATE_LIMIT", 20)),
		CORSOrigins:    envList("CORS_ORIGINS", []string{"*"}),

		LogLevel: envOr("LOG_LEVEL", "info"),
		LogJSON:  envBool("LOG_JSON", false),
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	openAIKey := os.Getenv("OPENAI_API_KEY")

	provider := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	if provider == "" {
		switch {
		case geminiKey != "":
			provider = ProviderGemini
		case openAIKey != "":
			provider = ProviderOpenAI
		}
	}

	switch provider {
	case ProviderGemini:
		cfg.LLMProvider = ProviderGemini
		cfg.LLMAPIKey = geminiKey
		cfg.LLMModel = envOr("GEMINI_MODEL", "gemini-1.5-flash")
	case ProviderOpenAI:
		cfg.LLMProvider = ProviderOpenAI
		cfg.LLMAPIKey = openAIKey
		cfg.LLMModel = envOr("OPENAI_MODEL", "gpt-4o-mini")
	}

	return cfg
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// LLMConfigured reports whether a completion provider can be built.
func (c *Config) LLMConfigured() bool {
	return c.LLMProvider != "" && c.LLMAPIKey != ""
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// DBConfigured reports whether a Postgres host was given.
func (c *Config) DBConfigured() bool {
	return c.DBHost != ""
}

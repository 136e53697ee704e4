package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LLM_PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY", "GEMINI_MODEL", "OPENAI_MODEL"} {
		t.Setenv(k, "")
	}
}

func TestFromEnv(t *testing.T) {
	t.Run("Should apply defaults when nothing is set", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("PORT", "")
		t.Setenv("DB_PORT", "not-a-number")
		t.Setenv("LLM_TIMEOUT", "")
		t.Setenv("CORS_ORIGINS", "")

		cfg := FromEnv()

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 5432, cfg.DBPort)
		assert.Equal(t, 20*time.Second, cfg.LLMTimeout)
		assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.TimeZone)
		assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
		assert.False(t, cfg.LLMConfigured())
	})

	t.Run("Should infer gemini from its key", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("GEMINI_API_KEY", "g-key")

		cfg := FromEnv()

		assert.Equal(t, ProviderGemini, cfg.LLMProvider)
		assert.Equal(t, "g-key", cfg.LLMAPIKey)
		assert.Equal(t, "gemini-1.5-flash", cfg.LLMModel)
		assert.True(t, cfg.LLMConfigured())
	})

	t.Run("Should honour explicit provider over key inference", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("GEMINI_API_KEY", "g-key")
		t.Setenv("OPENAI_API_KEY", "o-key")
		t.Setenv("LLM_PROVIDER", "OpenAI")
		t.Setenv("OPENAI_MODEL", "gpt-4.1-mini")

		cfg := FromEnv()

		assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
		assert.Equal(t, "o-key", cfg.LLMAPIKey)
		assert.Equal(t, "gpt-4.1-mini", cfg.LLMModel)
	})

	t.Run("Should split CORS origins", func(t *testing.T) {
		t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

		cfg := FromEnv()

		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	})
}

func TestConnString(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: 5433, DBUser: "u", DBPassword: "p", DBName: "unisync", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=unisync sslmode=disable", cfg.ConnString())
}

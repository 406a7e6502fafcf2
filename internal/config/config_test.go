package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"RESUMEADVISOR_AI_APIKEY", "GROQ_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY"} {
		t.Setenv(name, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearKeyEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err, "a missing API key must not prevent startup")

	assert.Equal(t, ProviderGroq, cfg.AI.Provider)
	assert.Equal(t, DefaultEndpoint, cfg.AI.Endpoint)
	assert.Equal(t, DefaultModel, cfg.AI.Model)
	assert.Empty(t, cfg.AI.APIKey)
	assert.Equal(t, "temp", cfg.Server.UploadDir)
	assert.Equal(t, []string{"*"}, cfg.Server.CORS.AllowedOrigins)

	upload := cfg.GetUploadConfig()
	assert.Equal(t, 60*time.Second, upload.AttemptTimeout())
	assert.Equal(t, 3, upload.Attempts())
	assert.False(t, upload.RetriesTransportErrors())
	assert.False(t, upload.CircuitBreaker.Enabled)

	direct := cfg.GetDirectConfig()
	assert.Equal(t, 1, direct.Attempts())
	assert.Equal(t, DefaultModel, direct.Model)
}

func TestLoadConfigProviderKeyFallback(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "gsk-from-env", cfg.AI.APIKey)
	assert.Equal(t, "gsk-from-env", cfg.GetUploadConfig().APIKey)
	assert.Equal(t, "gsk-from-env", cfg.GetDirectConfig().APIKey)
}

func TestLoadConfigPrefixedKeyWins(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-from-env")
	t.Setenv("RESUMEADVISOR_AI_APIKEY", "explicit")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.AI.APIKey)
}

func TestLoadConfigOperationOverrides(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("RESUMEADVISOR_AI_UPLOAD_MAXATTEMPTS", "5")
	t.Setenv("RESUMEADVISOR_AI_DIRECT_TIMEOUT", "15s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.GetUploadConfig().Attempts())
	assert.Equal(t, 15*time.Second, cfg.GetDirectConfig().AttemptTimeout())
}

func TestLoadConfigGeminiProviderDefaults(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("RESUMEADVISOR_AI_PROVIDER", ProviderGemini)
	t.Setenv("GEMINI_API_KEY", "gemini-from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, GeminiModel, cfg.AI.Model)
	assert.Empty(t, cfg.AI.Endpoint)

	upload := cfg.GetUploadConfig()
	assert.Equal(t, ProviderGemini, upload.Provider)
	assert.Equal(t, GeminiModel, upload.Model)
	assert.Equal(t, "gemini-from-env", upload.APIKey)
	assert.Equal(t, GeminiModel, cfg.GetDirectConfig().Model)
}

func TestLoadConfigExplicitModelKept(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("RESUMEADVISOR_AI_PROVIDER", ProviderGemini)
	t.Setenv("RESUMEADVISOR_AI_MODEL", "gemini-1.5-pro")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", cfg.GetUploadConfig().Model)
}

func TestLoadConfigOperationProviderDoesNotInheritKey(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-from-env")
	t.Setenv("RESUMEADVISOR_AI_UPLOAD_PROVIDER", ProviderGemini)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	upload := cfg.GetUploadConfig()
	assert.Equal(t, ProviderGemini, upload.Provider)
	assert.Empty(t, upload.APIKey, "the groq key must not be sent to another provider")
	assert.Equal(t, GeminiModel, upload.Model)
	assert.Empty(t, upload.Endpoint)

	direct := cfg.GetDirectConfig()
	assert.Equal(t, ProviderGroq, direct.Provider)
	assert.Equal(t, "gsk-from-env", direct.APIKey)
	assert.Equal(t, DefaultModel, direct.Model)
	assert.Equal(t, DefaultEndpoint, direct.Endpoint)
}

func TestLoadConfigOperationProviderKeyFromEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-from-env")
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("RESUMEADVISOR_AI_DIRECT_PROVIDER", ProviderOpenAI)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	direct := cfg.GetDirectConfig()
	assert.Equal(t, "sk-from-env", direct.APIKey)
	assert.Equal(t, OpenAIEndpoint, direct.Endpoint)
	assert.Equal(t, OpenAIModel, direct.Model)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AI: AIConfig{
				Provider:    ProviderGroq,
				Timeout:     time.Minute,
				MaxAttempts: 3,
			},
			Server: ServerConfig{
				Port: "5000",
				TLS:  TLSConfig{Mode: "disabled"},
			},
			App: AppConfig{
				DefaultFormat:    "json",
				SupportedFormats: []string{"json", "text"},
			},
		}
	}
	zero := 0

	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{name: "valid without api key", mutate: func(c *Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.AI.Provider = "llamafile" }, errorMsg: "unsupported AI provider"},
		{name: "zero timeout", mutate: func(c *Config) { c.AI.Timeout = 0 }, errorMsg: "timeout must be positive"},
		{name: "zero attempts", mutate: func(c *Config) { c.AI.MaxAttempts = 0 }, errorMsg: "maxAttempts"},
		{name: "zero upload attempts", mutate: func(c *Config) { c.AI.Upload.MaxAttempts = &zero }, errorMsg: "ai.upload.maxAttempts"},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, errorMsg: "port is required"},
		{name: "bad default format", mutate: func(c *Config) { c.App.DefaultFormat = "xml" }, errorMsg: "invalid default format"},
		{name: "bad tls mode", mutate: func(c *Config) { c.Server.TLS.Mode = "on" }, errorMsg: "TLS configuration error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestGetUploadConfigOperationKeyWins(t *testing.T) {
	timeout := 5 * time.Second
	cfg := &Config{
		AI: AIConfig{
			Provider:    ProviderGroq,
			Endpoint:    DefaultEndpoint,
			Model:       DefaultModel,
			APIKey:      "global",
			Timeout:     time.Minute,
			MaxAttempts: 3,
			Upload: OperationAIConfig{
				APIKey:  "upload-only",
				Timeout: &timeout,
			},
		},
	}

	upload := cfg.GetUploadConfig()
	assert.Equal(t, "upload-only", upload.APIKey)
	assert.Equal(t, 5*time.Second, upload.AttemptTimeout())
	assert.Equal(t, 3, upload.Attempts())

	direct := cfg.GetDirectConfig()
	assert.Equal(t, "global", direct.APIKey)
	assert.Equal(t, time.Minute, direct.AttemptTimeout())

	// the global section is never mutated by resolution
	assert.Nil(t, cfg.AI.Direct.Timeout)
}

func TestGetUploadConfigOtherProvider(t *testing.T) {
	cfg := &Config{
		AI: AIConfig{
			Provider: ProviderGroq,
			Endpoint: DefaultEndpoint,
			Model:    DefaultModel,
			APIKey:   "global",
			Timeout:  time.Minute,
			Upload:   OperationAIConfig{Provider: ProviderGemini},
		},
	}

	upload := cfg.GetUploadConfig()
	assert.Empty(t, upload.APIKey)
	assert.Empty(t, upload.Endpoint)
	assert.Equal(t, GeminiModel, upload.Model)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
	assert.Empty(t, splitAndTrim(""))
}

package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel    = "meta-llama/llama-4-scout-17b-16e-instruct"

	OpenAIEndpoint = "https://api.openai.com/v1/chat/completions"
	OpenAIModel    = "gpt-4o-mini"
	GeminiModel    = "gemini-2.0-flash"
)

type providerDefault struct {
	endpoint string
	model    string
}

// Endpoint and model used when none is configured for a provider. Gemini has
// no endpoint default; the SDK picks its own base URL.
var providerDefaults = map[string]providerDefault{
	ProviderGroq:   {endpoint: DefaultEndpoint, model: DefaultModel},
	ProviderOpenAI: {endpoint: OpenAIEndpoint, model: OpenAIModel},
	ProviderGemini: {model: GeminiModel},
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", ProviderGroq)
	v.SetDefault("ai.endpoint", "")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxAttempts", 3)

	// Upload path: structured analysis, retried until the reply parses
	v.SetDefault("ai.upload.timeout", 60*time.Second)
	v.SetDefault("ai.upload.maxAttempts", 3)
	v.SetDefault("ai.upload.retryOnTransportError", false)

	// Direct path: single attempt, raw reply
	v.SetDefault("ai.direct.timeout", 60*time.Second)
	v.SetDefault("ai.direct.maxAttempts", 1)
	v.SetDefault("ai.direct.retryOnTransportError", false)

	for _, op := range []string{"upload", "direct"} {
		// Registered so the matching environment variables are picked up
		for _, key := range []string{"provider", "endpoint", "model", "apiKey"} {
			v.SetDefault("ai."+op+"."+key, "")
		}

		prefix := "ai." + op + ".circuitBreaker."
		v.SetDefault(prefix+"enabled", false)
		v.SetDefault(prefix+"maxRequests", 3)
		v.SetDefault(prefix+"interval", 60*time.Second)
		v.SetDefault(prefix+"timeout", 60*time.Second)
		v.SetDefault(prefix+"minRequests", 3)
		v.SetDefault(prefix+"failureThreshold", 0.6)
	}

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.readTimeout", 30*time.Second)
	// Three upload attempts at 60s each must fit in one response
	v.SetDefault("server.writeTimeout", 200*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.staticDir", "frontend")
	v.SetDefault("server.uploadDir", "temp")

	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.caFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.clientAuthPolicy", "require")
	v.SetDefault("server.tls.autoReload.enabled", true)
	v.SetDefault("server.tls.autoReload.debounceDelay", time.Second)

	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.cors.allowedOrigins", []string{"*"})
	v.SetDefault("server.cors.maxAge", 10*time.Minute)

	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "text")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 10*1024*1024) // 10MB

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.aiKey", "")
	v.SetDefault("vault.secrets.tlsCerts", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumeadvisor")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}

package config

import "time"

// applyOperationDefaults fills unset operation fields from the global AI
// section. Endpoint, model and key are only inherited when the operation uses
// the global provider; another provider gets its own defaults and no key.
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	sameProvider := opCfg.Provider == "" || opCfg.Provider == c.AI.Provider
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}

	endpoint, model := c.AI.Endpoint, c.AI.Model
	if !sameProvider {
		defaults := providerDefaults[opCfg.Provider]
		endpoint, model = defaults.endpoint, defaults.model
	}
	if opCfg.Endpoint == "" {
		opCfg.Endpoint = endpoint
	}
	if opCfg.Model == "" {
		opCfg.Model = model
	}
	if opCfg.Timeout == nil {
		timeout := c.AI.Timeout
		opCfg.Timeout = &timeout
	}
	if opCfg.APIKey == "" && sameProvider {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxAttempts == nil {
		attempts := c.AI.MaxAttempts
		opCfg.MaxAttempts = &attempts
	}
	if opCfg.RetryOnTransportError == nil {
		retry := false
		opCfg.RetryOnTransportError = &retry
	}
}

// GetUploadConfig returns the AI configuration for document uploads with
// fallback to global config
func (c *Config) GetUploadConfig() OperationAIConfig {
	config := c.AI.Upload
	c.applyOperationDefaults(&config)
	return config
}

// GetDirectConfig returns the AI configuration for direct text analysis
// with fallback to global config
func (c *Config) GetDirectConfig() OperationAIConfig {
	config := c.AI.Direct
	c.applyOperationDefaults(&config)
	return config
}

// AttemptTimeout returns the per-attempt timeout, zero meaning none.
func (o OperationAIConfig) AttemptTimeout() time.Duration {
	if o.Timeout == nil {
		return 0
	}
	return *o.Timeout
}

// Attempts returns the configured attempt cap, at least 1.
func (o OperationAIConfig) Attempts() int {
	if o.MaxAttempts == nil || *o.MaxAttempts < 1 {
		return 1
	}
	return *o.MaxAttempts
}

// RetriesTransportErrors reports whether transport failures consume a retry.
func (o OperationAIConfig) RetriesTransportErrors() bool {
	return o.RetryOnTransportError != nil && *o.RetryOnTransportError
}

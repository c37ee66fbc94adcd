package config

import (
	"time"

	"github.com/pagemill/pagemill/internal/engine"
	"github.com/pagemill/pagemill/internal/gemini"
)

// Config holds pagemill configuration.
// Loaded from ./config.yaml or ~/.pagemill/config.yaml.
type Config struct {
	Gemini GeminiCfg `mapstructure:"gemini" yaml:"gemini"`
	Batch  BatchCfg  `mapstructure:"batch" yaml:"batch"`
}

// GeminiCfg configures the inference backend.
type GeminiCfg struct {
	APIKey         string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	Model          string `mapstructure:"model" yaml:"model"`
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// BatchCfg tunes chunking and the batch wave loop.
type BatchCfg struct {
	PageBatchSize           int `mapstructure:"page_batch_size" yaml:"page_batch_size"`                       // pages per chunk
	PayloadBudgetBytes      int `mapstructure:"payload_budget_bytes" yaml:"payload_budget_bytes"`             // per-job request size cap
	MaxRetries              int `mapstructure:"max_retries" yaml:"max_retries"`                               // requeues per task
	PollIntervalSeconds     int `mapstructure:"poll_interval_seconds" yaml:"poll_interval_seconds"`           // between polling sweeps
	RetryDelaySeconds       int `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds"`               // before a retry wave
	StatusRetryDelaySeconds int `mapstructure:"status_retry_delay_seconds" yaml:"status_retry_delay_seconds"` // after a failed status check
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Gemini: GeminiCfg{
			APIKey:         "${GEMINI_API_KEY}",
			Model:          gemini.DefaultModel,
			BaseURL:        gemini.DefaultBaseURL,
			TimeoutSeconds: 120,
		},
		Batch: BatchCfg{
			PageBatchSize:           4,
			PayloadBudgetBytes:      engine.DefaultPayloadBudget,
			MaxRetries:              engine.DefaultMaxRetries,
			PollIntervalSeconds:     10,
			RetryDelaySeconds:       1,
			StatusRetryDelaySeconds: 5,
		},
	}
}

// ClientConfig converts to the Gemini client's config, resolving
// ${ENV_VAR} references in the API key.
func (c *Config) ClientConfig() gemini.Config {
	return gemini.Config{
		APIKey:  ResolveEnvVars(c.Gemini.APIKey),
		BaseURL: c.Gemini.BaseURL,
		Model:   c.Gemini.Model,
		Timeout: time.Duration(c.Gemini.TimeoutSeconds) * time.Second,
	}
}

// EngineConfig converts to the engine's wave-loop config.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		PayloadBudget:    c.Batch.PayloadBudgetBytes,
		MaxRetries:       c.Batch.MaxRetries,
		PollInterval:     time.Duration(c.Batch.PollIntervalSeconds) * time.Second,
		RetryDelay:       time.Duration(c.Batch.RetryDelaySeconds) * time.Second,
		StatusRetryDelay: time.Duration(c.Batch.StatusRetryDelaySeconds) * time.Second,
	}
}

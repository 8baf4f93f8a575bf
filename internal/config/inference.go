package config

import (
	"errors"
	"time"
)

const (
	defaultInferenceTimeout = 15 * time.Second
	defaultMinCallGap       = 100 * time.Millisecond
	defaultInferenceModel   = "gpt-4o-mini"
)

// InferenceConfig configures the hosted text-completion service used for
// normalization, classification, and geocoding inference.
type InferenceConfig struct {
	// Endpoint is the chat-completions URL.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// APIKey authenticates requests.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// Model names the completion model.
	Model string `yaml:"model" mapstructure:"model"`
	// Timeout bounds each inference call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// MinCallGap is the minimum gap enforced between consecutive calls,
	// shared across all callers.
	MinCallGap time.Duration `yaml:"min_call_gap" mapstructure:"min_call_gap"`
}

// NewInferenceConfig returns an inference configuration with default values.
func NewInferenceConfig() *InferenceConfig {
	return &InferenceConfig{
		Model:      defaultInferenceModel,
		Timeout:    defaultInferenceTimeout,
		MinCallGap: defaultMinCallGap,
	}
}

func (c *InferenceConfig) setDefaults() {
	if c.Model == "" {
		c.Model = defaultInferenceModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultInferenceTimeout
	}
	if c.MinCallGap <= 0 {
		c.MinCallGap = defaultMinCallGap
	}
}

// Validate validates the inference configuration.
func (c *InferenceConfig) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if c.APIKey == "" {
		return errors.New("api_key is required")
	}
	return nil
}

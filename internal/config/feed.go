package config

import (
	"errors"
	"time"
)

const (
	defaultFeedTimeout   = 30 * time.Second
	defaultFeedBatchSize = 50
)

// FeedConfig configures the external source feed.
type FeedConfig struct {
	// URL is the feed endpoint returning a JSON array of listings.
	URL string `yaml:"url" mapstructure:"url"`
	// Timeout bounds the feed fetch.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// BatchSize is the number of listings processed per progress log line.
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`
}

// NewFeedConfig returns a feed configuration with default values.
func NewFeedConfig() *FeedConfig {
	return &FeedConfig{
		Timeout:   defaultFeedTimeout,
		BatchSize: defaultFeedBatchSize,
	}
}

func (c *FeedConfig) setDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultFeedTimeout
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultFeedBatchSize
	}
}

// Validate validates the feed configuration.
func (c *FeedConfig) Validate() error {
	if c.URL == "" {
		return errors.New("url is required")
	}
	return nil
}

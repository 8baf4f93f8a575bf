package config

import "time"

const (
	defaultServerAddress      = ":8081"
	defaultServerReadTimeout  = 30 * time.Second
	defaultServerWriteTimeout = 30 * time.Second
)

// ServerConfig configures the operator HTTP API.
type ServerConfig struct {
	Address      string        `yaml:"address" mapstructure:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// NewServerConfig returns a server configuration with default values.
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:      defaultServerAddress,
		ReadTimeout:  defaultServerReadTimeout,
		WriteTimeout: defaultServerWriteTimeout,
	}
}

func (c *ServerConfig) setDefaults() {
	if c.Address == "" {
		c.Address = defaultServerAddress
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = defaultServerReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultServerWriteTimeout
	}
}

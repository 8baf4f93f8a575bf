// Package config provides configuration management for the importer.
// It handles loading, validation, and access to configuration values from
// YAML files and environment variables.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/estatelink/property-importer/internal/logger"
)

// Config represents the application configuration.
type Config struct {
	// Logging holds logger configuration.
	Logging *logger.Config `yaml:"logging" mapstructure:"logging"`
	// Feed holds source feed configuration.
	Feed *FeedConfig `yaml:"feed" mapstructure:"feed"`
	// Database holds destination store configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Storage holds object storage configuration for photo assets.
	Storage *StorageConfig `yaml:"storage" mapstructure:"storage"`
	// Inference holds text-completion service configuration.
	Inference *InferenceConfig `yaml:"inference" mapstructure:"inference"`
	// Importer holds pipeline and scheduling configuration.
	Importer *ImporterConfig `yaml:"importer" mapstructure:"importer"`
	// Server holds the operator HTTP API configuration.
	Server *ServerConfig `yaml:"server" mapstructure:"server"`
}

// Load reads configuration from the given path (and the environment) and
// applies defaults. A missing config file is not an error; environment
// variables alone can carry a full configuration.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvPrefix("IMPORTER")
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	setDefaults(cfg)
	applyEnvOverrides(v, cfg)

	return cfg, nil
}

// setDefaults initializes nil sections and fills zero values.
func setDefaults(cfg *Config) {
	if cfg.Logging == nil {
		cfg.Logging = &logger.Config{Level: "info", Encoding: "console"}
	}
	if cfg.Feed == nil {
		cfg.Feed = NewFeedConfig()
	}
	if cfg.Database == nil {
		cfg.Database = NewDatabaseConfig()
	}
	if cfg.Storage == nil {
		cfg.Storage = NewStorageConfig()
	}
	if cfg.Inference == nil {
		cfg.Inference = NewInferenceConfig()
	}
	if cfg.Importer == nil {
		cfg.Importer = NewImporterConfig()
	}
	if cfg.Server == nil {
		cfg.Server = NewServerConfig()
	}

	cfg.Feed.setDefaults()
	cfg.Database.setDefaults()
	cfg.Storage.setDefaults()
	cfg.Inference.setDefaults()
	cfg.Importer.setDefaults()
	cfg.Server.setDefaults()
}

// applyEnvOverrides maps flat environment variables onto config sections for
// values that are commonly supplied outside the YAML file (credentials).
func applyEnvOverrides(v *viper.Viper, cfg *Config) {
	set := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	set("FEED_URL", &cfg.Feed.URL)
	set("DATABASE_HOST", &cfg.Database.Host)
	set("DATABASE_PORT", &cfg.Database.Port)
	set("DATABASE_USER", &cfg.Database.User)
	set("DATABASE_PASSWORD", &cfg.Database.Password)
	set("DATABASE_NAME", &cfg.Database.DBName)
	set("STORAGE_ENDPOINT", &cfg.Storage.Endpoint)
	set("STORAGE_ACCESS_KEY", &cfg.Storage.AccessKey)
	set("STORAGE_SECRET_KEY", &cfg.Storage.SecretKey)
	set("INFERENCE_ENDPOINT", &cfg.Inference.Endpoint)
	set("INFERENCE_API_KEY", &cfg.Inference.APIKey)
}

// Validate checks that all required configuration is present. It must pass
// before the first run; missing credentials are a hard failure.
func (c *Config) Validate() error {
	if err := c.Feed.Validate(); err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Inference.Validate(); err != nil {
		return fmt.Errorf("inference: %w", err)
	}
	if err := c.Importer.Validate(); err != nil {
		return fmt.Errorf("importer: %w", err)
	}
	return nil
}

// Warnings returns non-fatal configuration findings. Missing optional fields
// degrade functionality rather than failing validation.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Importer.DefaultAgencyID == "" {
		warnings = append(warnings,
			"importer.default_agency_id is not set; imported properties will have no agency association")
	}
	return warnings
}

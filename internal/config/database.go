package config

import "errors"

// DatabaseConfig configures the destination PostgreSQL store.
type DatabaseConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     string `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	SSLMode  string `yaml:"sslmode" mapstructure:"sslmode"`
}

// NewDatabaseConfig returns a database configuration with default values.
func NewDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Host:    "localhost",
		Port:    "5432",
		SSLMode: "disable",
	}
}

func (c *DatabaseConfig) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == "" {
		c.Port = "5432"
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.User == "" {
		return errors.New("user is required")
	}
	if c.Password == "" {
		return errors.New("password is required")
	}
	if c.DBName == "" {
		return errors.New("dbname is required")
	}
	return nil
}

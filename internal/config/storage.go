package config

import "errors"

// StorageConfig configures the object storage service holding photo assets.
type StorageConfig struct {
	// Endpoint is the storage server address (e.g., "minio:9000").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// AccessKey for storage authentication.
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	// SecretKey for storage authentication.
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	// UseSSL enables HTTPS for storage connections.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// Bucket is the bucket photo variants are uploaded into.
	Bucket string `yaml:"bucket" mapstructure:"bucket"`
	// PublicBaseURL is the externally reachable prefix for uploaded objects.
	PublicBaseURL string `yaml:"public_base_url" mapstructure:"public_base_url"`
}

// NewStorageConfig returns a storage configuration with default values.
func NewStorageConfig() *StorageConfig {
	return &StorageConfig{
		Endpoint: "localhost:9000",
		Bucket:   "property-photos",
	}
}

func (c *StorageConfig) setDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:9000"
	}
	if c.Bucket == "" {
		c.Bucket = "property-photos"
	}
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.AccessKey == "" {
		return errors.New("access_key is required")
	}
	if c.SecretKey == "" {
		return errors.New("secret_key is required")
	}
	if c.Bucket == "" {
		return errors.New("bucket is required")
	}
	return nil
}

package config

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	defaultSchedule            = "0 3 * * *" // daily at 03:00
	defaultTimezone            = "Europe/Skopje"
	defaultMaxConcurrentImages = 3
	defaultStopTimeout         = 2 * time.Minute
)

// GeocodeBounds is the plausible bounding region for resolved coordinates.
// Results outside the box are treated as failed resolutions.
type GeocodeBounds struct {
	MinLatitude  float64 `yaml:"min_latitude" mapstructure:"min_latitude"`
	MaxLatitude  float64 `yaml:"max_latitude" mapstructure:"max_latitude"`
	MinLongitude float64 `yaml:"min_longitude" mapstructure:"min_longitude"`
	MaxLongitude float64 `yaml:"max_longitude" mapstructure:"max_longitude"`
	// FallbackLatitude/FallbackLongitude is the region's administrative
	// center, returned (and cached) when resolution fails.
	FallbackLatitude  float64 `yaml:"fallback_latitude" mapstructure:"fallback_latitude"`
	FallbackLongitude float64 `yaml:"fallback_longitude" mapstructure:"fallback_longitude"`
}

// ImporterConfig configures the import pipeline and its schedule.
type ImporterConfig struct {
	// Schedule is a cron expression governing automatic runs.
	Schedule string `yaml:"schedule" mapstructure:"schedule"`
	// Timezone the schedule is evaluated in.
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
	// MaxConcurrentImages caps in-flight image operations globally.
	MaxConcurrentImages int `yaml:"max_concurrent_images" mapstructure:"max_concurrent_images"`
	// DefaultAgencyID is an optional agency association applied to imported
	// properties. Missing value degrades with a warning.
	DefaultAgencyID string `yaml:"default_agency_id" mapstructure:"default_agency_id"`
	// StopTimeout bounds how long a graceful stop waits for an in-flight run.
	StopTimeout time.Duration `yaml:"stop_timeout" mapstructure:"stop_timeout"`
	// Geocode bounds and fallback; defaults cover the Skopje region.
	Geocode GeocodeBounds `yaml:"geocode" mapstructure:"geocode"`
}

// NewImporterConfig returns an importer configuration with default values.
func NewImporterConfig() *ImporterConfig {
	return &ImporterConfig{
		Schedule:            defaultSchedule,
		Timezone:            defaultTimezone,
		MaxConcurrentImages: defaultMaxConcurrentImages,
		StopTimeout:         defaultStopTimeout,
		Geocode:             defaultGeocodeBounds(),
	}
}

func defaultGeocodeBounds() GeocodeBounds {
	return GeocodeBounds{
		MinLatitude:       40.85,
		MaxLatitude:       42.40,
		MinLongitude:      20.45,
		MaxLongitude:      23.05,
		FallbackLatitude:  41.9981,
		FallbackLongitude: 21.4254,
	}
}

func (c *ImporterConfig) setDefaults() {
	if c.Schedule == "" {
		c.Schedule = defaultSchedule
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.MaxConcurrentImages <= 0 {
		c.MaxConcurrentImages = defaultMaxConcurrentImages
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = defaultStopTimeout
	}
	if c.Geocode == (GeocodeBounds{}) {
		c.Geocode = defaultGeocodeBounds()
	}
}

// Validate validates the importer configuration.
func (c *ImporterConfig) Validate() error {
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return errors.New("schedule is not a valid cron expression")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return errors.New("timezone is not a valid IANA zone name")
	}
	if c.Geocode.MinLatitude >= c.Geocode.MaxLatitude ||
		c.Geocode.MinLongitude >= c.Geocode.MaxLongitude {
		return errors.New("geocode bounds are inverted")
	}
	return nil
}

// Package common provides shared wiring for command implementations.
package common

import (
	"fmt"

	"github.com/estatelink/property-importer/internal/config"
	"github.com/estatelink/property-importer/internal/logger"
)

// CommandDeps holds common dependencies for all commands.
type CommandDeps struct {
	Logger logger.Interface
	Config *config.Config
}

// NewCommandDeps loads configuration, validates it, and builds the logger.
// Configuration warnings (missing optional fields) are logged, not fatal.
func NewCommandDeps(configPath string) (*CommandDeps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	for _, warning := range cfg.Warnings() {
		log.Warn(warning)
	}

	return &CommandDeps{Logger: log, Config: cfg}, nil
}

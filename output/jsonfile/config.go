package jsonfile

import (
	"fmt"
	"os"

	"github.com/relex/etl-sink-agent/base"
	"github.com/relex/etl-sink-agent/base/bconfig"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
)

// Config defines the configuration for the NDJSON file batch writer
type Config struct {
	bconfig.Header `yaml:",inline"`
	Directory      string `yaml:"directory"` // destination directory, one file per stream; may contain environment variables
	Compress       bool   `yaml:"compress"`  // gzip-compress the files
}

// NewWriter creates the destination directory if needed and creates a file batch writer
func (cfg *Config) NewWriter(parentLogger logger.Logger, metricCreator promreg.MetricCreator) (base.BatchWriter, error) {
	directory := os.ExpandEnv(cfg.Directory)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory '%s': %w", directory, err)
	}
	return newWriter(parentLogger, directory, cfg.Compress, metricCreator), nil
}

// VerifyConfig checks configuration
func (cfg *Config) VerifyConfig() error {
	if len(cfg.Directory) == 0 {
		return fmt.Errorf(".directory is unspecified")
	}
	return nil
}

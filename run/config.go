package run

import (
	"fmt"

	"github.com/relex/etl-sink-agent/base/bconfig"
	"github.com/relex/etl-sink-agent/checkpoint"
	"github.com/relex/etl-sink-agent/input/tapreader"
	"github.com/relex/etl-sink-agent/output"
	"github.com/relex/etl-sink-agent/stream"
	"github.com/relex/etl-sink-agent/util"
)

// Config defines the root of etl-sink-agent config file
type Config struct {
	Streams     StreamsConfig              `yaml:"streams"`
	Buffer      stream.BufferConfig        `yaml:"buffer"`
	Checkpoints CheckpointsConfig          `yaml:"checkpoints"`
	Output      bconfig.OutputConfigHolder `yaml:"output"`
}

// StreamsConfig defines which declared streams are accepted, by glob patterns on stream names
type StreamsConfig struct {
	Include []string `yaml:"include"` // empty means accept all
	Exclude []string `yaml:"exclude"` // exclusion wins over inclusion
}

// CheckpointsConfig defines the checkpoint emission settings
type CheckpointsConfig struct {
	Emit            *bool  `yaml:"emit"`            // default true
	MaxWatermarkLag uint64 `yaml:"maxWatermarkLag"` // 0 for default
}

func init() {
	output.Register()
}

// TrackerSettings converts the config section to tracker settings, filling in defaults
func (cfg CheckpointsConfig) TrackerSettings() checkpoint.Settings {
	settings := checkpoint.DefaultSettings()
	if cfg.Emit != nil {
		settings.EmitCheckpoints = *cfg.Emit
	}
	if cfg.MaxWatermarkLag != 0 {
		settings.MaxWatermarkLag = cfg.MaxWatermarkLag
	}
	return settings
}

// NewStreamFilter compiles the configured stream patterns
func (cfg StreamsConfig) NewStreamFilter() (*tapreader.StreamFilter, error) {
	return tapreader.NewStreamFilter(cfg.Include, cfg.Exclude)
}

// LoadConfigFile loads config from the path and verifies all configurations
func LoadConfigFile(filepath string) (*Config, error) {
	cref := &Config{}
	if err := util.UnmarshalYamlFile(filepath, cref); err != nil {
		return nil, err
	}
	if err := cref.verify(); err != nil {
		return nil, err
	}
	return cref, nil
}

func (cfg *Config) verify() error {
	if _, err := cfg.Streams.NewStreamFilter(); err != nil {
		return fmt.Errorf("streams: %w", err)
	}
	if err := cfg.Buffer.VerifyConfig(); err != nil {
		return fmt.Errorf("buffer: %w", err)
	}
	if cfg.Output.Value == nil {
		return fmt.Errorf("output: undefined")
	}
	if err := cfg.Output.Value.VerifyConfig(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}

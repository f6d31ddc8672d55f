// Package nullsink provides a batch writer that discards everything, for config verification
// and benchmarking of the upstream pipeline
package nullsink

import (
	"github.com/relex/etl-sink-agent/base"
	"github.com/relex/etl-sink-agent/base/bconfig"
	"github.com/relex/etl-sink-agent/defs"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promext"
	"github.com/relex/gotils/promexporter/promreg"
)

// Config defines the configuration for the discarding batch writer
type Config struct {
	bconfig.Header `yaml:",inline"`
}

// NewWriter creates a discarding batch writer
func (cfg *Config) NewWriter(parentLogger logger.Logger, metricCreator promreg.MetricCreator) (base.BatchWriter, error) {
	outputMetricCreator := metricCreator.AddOrGetPrefix("output_", []string{defs.LabelOutput}, []string{"null"})
	return &writer{
		logger: parentLogger.WithField(defs.LabelComponent, "NullWriter"),
		discardedRowsTotal: outputMetricCreator.AddOrGetCounter("discarded_rows_total",
			"Numbers of rows discarded", nil, nil),
	}, nil
}

// VerifyConfig checks configuration
func (cfg *Config) VerifyConfig() error {
	return nil
}

type writer struct {
	logger             logger.Logger
	discardedRowsTotal promext.RWCounter
}

func (w *writer) CreateStream(schema base.StreamSchema) error {
	return nil
}

func (w *writer) WriteBatch(schema base.StreamSchema, records []base.Record) error {
	w.discardedRowsTotal.Add(uint64(len(records)))
	return nil
}

func (w *writer) Close() error {
	return nil
}

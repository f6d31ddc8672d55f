// Package run wires the sink agent together and runs it over one input sequence
package run

import (
	"io"

	"github.com/relex/etl-sink-agent/checkpoint"
	"github.com/relex/etl-sink-agent/defs"
	"github.com/relex/etl-sink-agent/input/tapreader"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
)

// Run loads the config and processes the given input sequence to the end
//
// A fatal input or write error aborts the run; buffered records of other streams may remain
// unpersisted, which is safe because the checkpoints covering them were never emitted
func Run(configFile string, source io.Reader, checkpointSink io.Writer) error {
	config, configErr := LoadConfigFile(configFile)
	if configErr != nil {
		return configErr
	}

	metricFactory := promreg.NewMetricFactory("etlsink_", nil, nil)
	return RunWithConfig(config, source, checkpointSink, metricFactory)
}

// RunWithConfig processes the given input sequence with a loaded config
func RunWithConfig(config *Config, source io.Reader, checkpointSink io.Writer,
	metricFactory promreg.MetricCreator) error {

	runLogger := logger.WithField(defs.LabelComponent, "Launcher")

	writer, werr := config.Output.Value.NewWriter(logger.Root(), metricFactory)
	if werr != nil {
		return werr
	}

	filter, ferr := config.Streams.NewStreamFilter()
	if ferr != nil {
		writer.Close()
		return ferr
	}

	emitter := checkpoint.NewEmitter(logger.Root(), checkpointSink, metricFactory)
	tracker := checkpoint.NewTracker(logger.Root(), writer, emitter, metricFactory, config.Checkpoints.TrackerSettings())
	reader := tapreader.NewReader(logger.Root(), source, filter, newTargetSink(tracker, writer, config.Buffer), metricFactory)

	runErr := reader.Run()
	if runErr != nil {
		writer.Close() // keep the original error
		return runErr
	}

	if pending := tracker.PendingCheckpoints(); pending > 0 {
		// unreachable after a forced final flush, but worth failing loudly over
		runLogger.Errorf("BUG: %d checkpoints still pending after final flush", pending)
	}

	if cerr := writer.Close(); cerr != nil {
		return cerr
	}
	runLogger.Info("clean exit")
	return nil
}

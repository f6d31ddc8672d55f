// Package jsonfile provides a batch writer appending records as NDJSON files, one file per
// stream, optionally gzip-compressed. Mainly for local runs and verification.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/relex/etl-sink-agent/base"
	"github.com/relex/etl-sink-agent/defs"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promext"
	"github.com/relex/gotils/promexporter/promreg"
)

type writer struct {
	logger    logger.Logger
	directory string
	compress  bool
	files     map[string]*streamFile
	metrics   writerMetrics
}

type streamFile struct {
	file    *os.File
	gzipper *gzip.Writer // nil if compression is off
	encoder *json.Encoder
}

type writerMetrics struct {
	writtenRowsTotal promext.RWCounter
	writeErrorsTotal promext.RWCounter
}

func newWriter(parentLogger logger.Logger, directory string, compress bool,
	metricCreator promreg.MetricCreator) base.BatchWriter {

	outputMetricCreator := metricCreator.AddOrGetPrefix("output_", []string{defs.LabelOutput}, []string{"jsonFile"})
	return &writer{
		logger:    parentLogger.WithField(defs.LabelComponent, "JSONFileWriter"),
		directory: directory,
		compress:  compress,
		files:     make(map[string]*streamFile, 20),
		metrics: writerMetrics{
			writtenRowsTotal: outputMetricCreator.AddOrGetCounter("written_rows_total",
				"Numbers of rows committed by batch writes", nil, nil),
			writeErrorsTotal: outputMetricCreator.AddOrGetCounter("write_errors_total",
				"Numbers of failed batch writes", nil, nil),
		},
	}
}

// CreateStream opens the stream's destination file for appending
func (w *writer) CreateStream(schema base.StreamSchema) error {
	if _, exists := w.files[schema.Stream]; exists {
		return nil
	}
	_, err := w.openStreamFile(schema.Stream)
	return err
}

// WriteBatch appends the records as JSON lines and syncs the file
func (w *writer) WriteBatch(schema base.StreamSchema, records []base.Record) error {
	if len(records) == 0 {
		return nil
	}
	destination, exists := w.files[schema.Stream]
	if !exists {
		opened, oerr := w.openStreamFile(schema.Stream)
		if oerr != nil {
			w.metrics.writeErrorsTotal.Inc()
			return oerr
		}
		destination = opened
	}

	for _, record := range records {
		if err := destination.encoder.Encode(record); err != nil {
			w.metrics.writeErrorsTotal.Inc()
			return fmt.Errorf("failed to write record for stream '%s': %w", schema.Stream, err)
		}
	}
	if err := destination.sync(); err != nil {
		w.metrics.writeErrorsTotal.Inc()
		return fmt.Errorf("failed to sync file for stream '%s': %w", schema.Stream, err)
	}
	w.metrics.writtenRowsTotal.Add(uint64(len(records)))
	return nil
}

// Close flushes and closes all stream files
func (w *writer) Close() error {
	var firstErr error
	for stream, destination := range w.files {
		if err := destination.close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close file for stream '%s': %w", stream, err)
		}
	}
	w.files = make(map[string]*streamFile)
	return firstErr
}

func (w *writer) openStreamFile(stream string) (*streamFile, error) {
	name := stream + ".ndjson"
	if w.compress {
		name += ".gz"
	}
	path := filepath.Join(w.directory, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open '%s': %w", path, err)
	}

	destination := &streamFile{file: file}
	if w.compress {
		destination.gzipper = gzip.NewWriter(file)
		destination.encoder = json.NewEncoder(destination.gzipper)
	} else {
		destination.encoder = json.NewEncoder(file)
	}
	w.files[stream] = destination
	w.logger.Infof("opened output file: %s", path)
	return destination, nil
}

func (destination *streamFile) sync() error {
	if destination.gzipper != nil {
		if err := destination.gzipper.Flush(); err != nil {
			return err
		}
	}
	return destination.file.Sync()
}

func (destination *streamFile) close() error {
	if destination.gzipper != nil {
		if err := destination.gzipper.Close(); err != nil {
			destination.file.Close()
			return err
		}
	}
	return destination.file.Close()
}

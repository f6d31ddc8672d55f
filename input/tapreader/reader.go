// Package tapreader reads and dispatches the line-based message protocol from the upstream
// producer: schema declarations, records and checkpoint state markers
package tapreader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/relex/etl-sink-agent/base"
	"github.com/relex/etl-sink-agent/defs"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promext"
	"github.com/relex/gotils/promexporter/promreg"
)

// Sink consumes parsed messages in input order
//
// The reader is the only caller and runs on a single goroutine: the calls are never
// concurrent with each other
type Sink interface {
	// OnSchema handles a stream declaration or redeclaration
	OnSchema(schema base.StreamSchema) error

	// OnRecord handles one record of a declared stream
	OnRecord(stream string, record base.Record) error

	// OnState handles a checkpoint marker with its opaque payload
	OnState(payload interface{}) error

	// Flush gives the sink a chance to flush buffers; called after every line, and once
	// with force at end of input
	Flush(force bool) error
}

// Reader is the dispatch loop over one input sequence, normally the process stdin
type Reader struct {
	logger  logger.Logger
	source  io.Reader
	filter  *StreamFilter
	sink    Sink
	metrics readerMetrics
}

type readerMetrics struct {
	schemaMessagesTotal   promext.RWCounter
	recordMessagesTotal   promext.RWCounter
	stateMessagesTotal    promext.RWCounter
	filteredMessagesTotal promext.RWCounter
}

// NewReader creates a Reader over the given source
func NewReader(parentLogger logger.Logger, source io.Reader, filter *StreamFilter, sink Sink,
	metricCreator promreg.MetricCreator) *Reader {

	messages := metricCreator.AddOrGetCounterVec("input_messages_total",
		"Numbers of input messages by type", []string{"type"}, nil)
	return &Reader{
		logger: parentLogger.WithField(defs.LabelComponent, "TapReader"),
		source: source,
		filter: filter,
		sink:   sink,
		metrics: readerMetrics{
			schemaMessagesTotal:   messages.WithLabelValues("schema"),
			recordMessagesTotal:   messages.WithLabelValues("record"),
			stateMessagesTotal:    messages.WithLabelValues("state"),
			filteredMessagesTotal: messages.WithLabelValues("filtered"),
		},
	}
}

// Run processes the input to the end: parse, filter and dispatch every line, flush
// opportunistically after each one, and force a final flush at end of input
//
// The first error aborts the run; the upstream contract leaves nothing to retry here
func (reader *Reader) Run() error {
	scanner := bufio.NewScanner(reader.source)
	scanner.Buffer(make([]byte, 0, defs.InputLineInitialBufferSize), defs.InputLineBufferSize)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := reader.processLine(line); err != nil {
			return fmt.Errorf("line %d: %w", lineNumber, err)
		}
		if err := reader.sink.Flush(false); err != nil {
			return fmt.Errorf("line %d: %w", lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("line %d: failed to read input: %w", lineNumber+1, err)
	}

	reader.logger.Infof("end of input, flushing all buffers: lines=%d", lineNumber)
	return reader.sink.Flush(true)
}

func (reader *Reader) processLine(line []byte) error {
	message, perr := ParseMessage(line)
	if perr != nil {
		return perr
	}

	switch message.Type {
	case MessageTypeSchema:
		if !reader.filter.Accept(message.Stream) {
			reader.logger.Infof("skip filtered stream: %s", message.Stream)
			reader.metrics.filteredMessagesTotal.Inc()
			return nil
		}
		reader.metrics.schemaMessagesTotal.Inc()
		return reader.sink.OnSchema(message.Schema)

	case MessageTypeRecord:
		if !reader.filter.Accept(message.Stream) {
			reader.metrics.filteredMessagesTotal.Inc()
			return nil
		}
		reader.metrics.recordMessagesTotal.Inc()
		return reader.sink.OnRecord(message.Stream, message.Record)

	case MessageTypeState:
		reader.metrics.stateMessagesTotal.Inc()
		return reader.sink.OnState(message.State)

	default:
		// ParseMessage rejects unknown types already
		return fmt.Errorf("unsupported message type '%s'", message.Type)
	}
}

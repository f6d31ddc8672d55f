package run

import (
	"github.com/relex/etl-sink-agent/base"
	"github.com/relex/etl-sink-agent/checkpoint"
	"github.com/relex/etl-sink-agent/stream"
)

// targetSink glues the tap reader to the checkpoint tracker and the batch writer: stream
// declarations create the backing store object and an in-memory buffer, everything else is
// delegated to the tracker
type targetSink struct {
	tracker      *checkpoint.Tracker
	writer       base.BatchWriter
	bufferConfig stream.BufferConfig
}

func newTargetSink(tracker *checkpoint.Tracker, writer base.BatchWriter, bufferConfig stream.BufferConfig) *targetSink {
	return &targetSink{
		tracker:      tracker,
		writer:       writer,
		bufferConfig: bufferConfig,
	}
}

func (sink *targetSink) OnSchema(schema base.StreamSchema) error {
	if err := sink.writer.CreateStream(schema); err != nil {
		return err
	}
	sink.tracker.RegisterStream(schema, stream.NewMemBuffer(sink.bufferConfig))
	return nil
}

func (sink *targetSink) OnRecord(streamName string, record base.Record) error {
	return sink.tracker.HandleRecord(streamName, record)
}

func (sink *targetSink) OnState(payload interface{}) error {
	return sink.tracker.HandleCheckpoint(payload)
}

func (sink *targetSink) Flush(force bool) error {
	return sink.tracker.FlushIfNeeded(force)
}

package checkpoint

import (
	"github.com/relex/etl-sink-agent/base"
	"github.com/relex/etl-sink-agent/defs"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promext"
	"github.com/relex/gotils/promexporter/promreg"
)

// Settings defines the tunables of a Tracker
type Settings struct {
	EmitCheckpoints bool   // false turns HandleCheckpoint into a no-op; records still load
	MaxWatermarkLag uint64 // ceiling of (sequence - safe threshold) before all buffers are flushed eagerly
}

// DefaultSettings returns the production defaults
func DefaultSettings() Settings {
	return Settings{
		EmitCheckpoints: true,
		MaxWatermarkLag: defs.CheckpointMaxWatermarkLag,
	}
}

// streamHandle pairs a stream's buffer collaborator with its declared schema
type streamHandle struct {
	schema base.StreamSchema
	buffer base.RecordBuffer
}

// Tracker coordinates per-stream record buffering, batch flushes and checkpoint emission
// for one input sequence
//
// It is defined for a single logical worker: HandleRecord, HandleCheckpoint and FlushIfNeeded
// must never be called concurrently for the same Tracker.
type Tracker struct {
	logger   logger.Logger
	ledger   *Ledger
	queue    markerQueue
	emitter  *Emitter
	writer   base.BatchWriter
	streams  map[string]*streamHandle
	settings Settings
	metrics  trackerMetrics
}

type trackerMetrics struct {
	bufferedRecordsTotal  promext.RWCounter
	flushedBatchesTotal   promext.RWCounter
	flushedRecordsTotal   promext.RWCounter
	eagerFlushesTotal     promext.RWCounter
	discardedMarkersTotal promext.RWCounter
	queuedMarkers         promext.RWGauge
}

// NewTracker creates a Tracker writing batches through the given BatchWriter and re-emitting
// checkpoints through the given Emitter
func NewTracker(parentLogger logger.Logger, writer base.BatchWriter, emitter *Emitter,
	metricCreator promreg.MetricCreator, settings Settings) *Tracker {

	metrics := trackerMetrics{
		bufferedRecordsTotal: metricCreator.AddOrGetCounter("buffered_records_total",
			"Numbers of records accepted into stream buffers", nil, nil),
		flushedBatchesTotal: metricCreator.AddOrGetCounter("flushed_batches_total",
			"Numbers of batches written to the downstream store", nil, nil),
		flushedRecordsTotal: metricCreator.AddOrGetCounter("flushed_records_total",
			"Numbers of records written to the downstream store", nil, nil),
		eagerFlushesTotal: metricCreator.AddOrGetCounter("eager_flushes_total",
			"Numbers of all-stream flushes forced by the watermark lag guard", nil, nil),
		discardedMarkersTotal: metricCreator.AddOrGetCounter("discarded_checkpoints_total",
			"Numbers of checkpoint markers superseded by a later safe marker", nil, nil),
		queuedMarkers: metricCreator.AddOrGetGauge("queued_checkpoints",
			"Current numbers of pending checkpoint markers", nil, nil),
	}
	metrics.queuedMarkers.Set(0)

	return &Tracker{
		logger:   parentLogger.WithField(defs.LabelComponent, "CheckpointTracker"),
		ledger:   NewLedger(),
		queue:    markerQueue{},
		emitter:  emitter,
		writer:   writer,
		streams:  make(map[string]*streamHandle, 20),
		settings: settings,
		metrics:  metrics,
	}
}

// RegisterStream registers a declared stream with its buffer collaborator
//
// On redeclaration the schema is updated but the existing buffer and the watermarks are
// preserved, so a mid-run schema update never loses buffered records or flush progress
func (tracker *Tracker) RegisterStream(schema base.StreamSchema, buffer base.RecordBuffer) {
	if handle, exists := tracker.streams[schema.Stream]; exists {
		tracker.logger.Infof("stream redeclared: %s", schema.Stream)
		handle.schema = schema
		return
	}
	tracker.streams[schema.Stream] = &streamHandle{schema: schema, buffer: buffer}
	tracker.ledger.Register(schema.Stream)
}

// HandleRecord accepts one record: the global sequence advances and the record is buffered
//
// A record for an unregistered stream is fatal to the current input and returned as
// UnregisteredStreamError, never retried
func (tracker *Tracker) HandleRecord(stream string, record base.Record) error {
	handle, exists := tracker.streams[stream]
	if !exists {
		return &base.UnregisteredStreamError{Stream: stream}
	}
	if _, err := tracker.ledger.RecordAdded(stream); err != nil {
		return err
	}
	handle.buffer.Add(record)
	tracker.metrics.bufferedRecordsTotal.Inc()
	return nil
}

// HandleCheckpoint enqueues a checkpoint marker tagged with the current global sequence and
// attempts immediate emission, in case the queue is already safe
func (tracker *Tracker) HandleCheckpoint(payload interface{}) error {
	if !tracker.settings.EmitCheckpoints {
		return nil
	}
	tracker.queue.Enqueue(payload, tracker.ledger.Sequence())
	tracker.metrics.queuedMarkers.Inc()
	return tracker.tryEmit(false)
}

// FlushIfNeeded flushes the streams that need it and attempts checkpoint emission afterwards
//
// A stream needs flushing when its buffer reports full, when forceAll is set (end-of-input),
// or when the watermark lag guard trips: if pending checkpoints trail the global sequence by
// more than MaxWatermarkLag, every stream is flushed and emission is forced, trading a
// possibly undersized batch for guaranteed forward progress
func (tracker *Tracker) FlushIfNeeded(forceAll bool) error {
	streamsToFlush := make(map[string]struct{}, len(tracker.streams))
	for stream, handle := range tracker.streams {
		if forceAll || handle.buffer.Full() {
			streamsToFlush[stream] = struct{}{}
		}
	}

	force := forceAll
	if tracker.queue.Len() > 0 && uint64(tracker.ledger.Lag()) > tracker.settings.MaxWatermarkLag {
		tracker.logger.Info("eagerly flushing all buffers as max watermark lag has been encountered")
		tracker.metrics.eagerFlushesTotal.Inc()
		force = true
		for stream := range tracker.streams {
			streamsToFlush[stream] = struct{}{}
		}
	}

	// inter-stream order is irrelevant: writes to different streams are independent, and a
	// failure aborts the pass leaving already-flushed streams advanced, which is legal state
	for stream := range streamsToFlush {
		if err := tracker.flushStream(stream); err != nil {
			return err
		}
	}

	return tracker.tryEmit(force)
}

// PendingCheckpoints returns the number of queued markers, for logging at end of input
func (tracker *Tracker) PendingCheckpoints() int {
	return tracker.queue.Len()
}

func (tracker *Tracker) flushStream(stream string) error {
	handle := tracker.streams[stream]
	records := handle.buffer.Peek()
	if err := tracker.writer.WriteBatch(handle.schema, records); err != nil {
		return &base.WriteError{Stream: stream, Err: err}
	}
	handle.buffer.Reset()
	tracker.ledger.RecordsFlushed(stream)
	tracker.metrics.flushedBatchesTotal.Inc()
	tracker.metrics.flushedRecordsTotal.Add(uint64(len(records)))
	tracker.logger.Debugf("flushed stream=%s records=%d watermark=%d", stream, len(records), tracker.ledger.Sequence())
	return nil
}

// tryEmit pops every marker at or below the safe threshold (or every marker, when forced),
// keeps only the last popped payload and hands it to the emitter
//
// Intermediate popped markers are discarded: a resuming consumer only cares about the most
// recent safe checkpoint
func (tracker *Tracker) tryEmit(force bool) error {
	threshold := tracker.ledger.SafeThreshold()
	var chosen interface{}
	popped := 0
	for {
		watermark, ok := tracker.queue.PeekWatermark()
		if !ok || (!force && watermark > threshold) {
			break
		}
		entry, _ := tracker.queue.Pop()
		chosen = entry.payload
		popped++
	}
	if popped == 0 {
		return nil
	}
	tracker.metrics.queuedMarkers.Sub(int64(popped))
	if popped > 1 {
		tracker.metrics.discardedMarkersTotal.Add(uint64(popped - 1))
	}
	return tracker.emitter.Emit(chosen)
}

// Package checkpoint implements the coordination between per-stream record buffering,
// batch flushes to the downstream store, and the re-emission of upstream checkpoint markers.
//
// The upstream protocol carries no tag linking a checkpoint to the streams it covers, so a
// checkpoint may only be re-emitted once every record that preceded it in the input has been
// durably persisted. Safety is inferred conservatively from arrival order alone: each accepted
// record takes the next value of a single global sequence, and a checkpoint received at
// sequence N is safe once every stream that has ever received records has flushed up to N.
package checkpoint

import (
	"github.com/relex/etl-sink-agent/base"
	"github.com/relex/gotils/logger"
)

// GlobalSequence is a strictly increasing counter over all accepted records, shared across
// streams. It is a pure ordering token, never wall-clock time, and never resets during a run.
type GlobalSequence uint64

// streamMarks holds the watermarks of one registered stream
type streamMarks struct {
	addWatermark   GlobalSequence // sequence of the most recent record buffered for the stream, 0 if none
	flushWatermark GlobalSequence // sequence up to which the stream's records have been committed
	hasRecords     bool           // set on first record; streams without records never pin the threshold
}

// Ledger tracks per-stream add and flush watermarks over the global record sequence.
// It is the single owner of both the sequence counter and all stream watermark state.
type Ledger struct {
	sequence GlobalSequence
	marks    map[string]*streamMarks
}

// NewLedger creates an empty Ledger
func NewLedger() *Ledger {
	return &Ledger{
		sequence: 0,
		marks:    make(map[string]*streamMarks, 20),
	}
}

// Register adds a stream to the ledger
//
// Re-registering a known stream (e.g. a schema redeclaration mid-run) preserves its
// watermarks, so flush progress is never lost
func (ledger *Ledger) Register(stream string) {
	if _, exists := ledger.marks[stream]; exists {
		return
	}
	ledger.marks[stream] = &streamMarks{}
}

// IsRegistered reports whether the stream has been registered
func (ledger *Ledger) IsRegistered(stream string) bool {
	_, exists := ledger.marks[stream]
	return exists
}

// RecordAdded accepts one record for the stream: the global sequence is incremented and
// becomes the stream's add watermark
func (ledger *Ledger) RecordAdded(stream string) (GlobalSequence, error) {
	marks, exists := ledger.marks[stream]
	if !exists {
		return 0, &base.UnregisteredStreamError{Stream: stream}
	}
	ledger.sequence++
	marks.addWatermark = ledger.sequence
	marks.hasRecords = true
	return ledger.sequence, nil
}

// RecordsFlushed commits everything added so far for the stream: the flush watermark
// advances to the add watermark, as flushes always cover the whole buffered batch
func (ledger *Ledger) RecordsFlushed(stream string) GlobalSequence {
	marks, exists := ledger.marks[stream]
	if !exists {
		logger.Panicf("BUG: flush of unregistered stream '%s'", stream)
	}
	if marks.flushWatermark > marks.addWatermark {
		logger.Panicf("BUG: stream '%s' flush watermark %d ahead of add watermark %d",
			stream, marks.flushWatermark, marks.addWatermark)
	}
	marks.flushWatermark = marks.addWatermark
	return marks.flushWatermark
}

// Sequence returns the current global sequence, i.e. the number of records accepted so far
func (ledger *Ledger) Sequence() GlobalSequence {
	return ledger.sequence
}

// SafeThreshold returns the sequence up to which every stream that has ever received records
// has durably committed, or 0 if no stream has received any record
//
// Streams registered but never fed records are excluded: their zero flush watermark would
// otherwise pin the threshold forever and starve checkpoint emission
func (ledger *Ledger) SafeThreshold() GlobalSequence {
	threshold := GlobalSequence(0)
	first := true
	for _, marks := range ledger.marks {
		if !marks.hasRecords {
			continue
		}
		if first || marks.flushWatermark < threshold {
			threshold = marks.flushWatermark
			first = false
		}
	}
	return threshold
}

// Lag returns how far the safe threshold trails the global sequence
func (ledger *Ledger) Lag() GlobalSequence {
	return ledger.sequence - ledger.SafeThreshold()
}

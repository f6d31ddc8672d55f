// Package stream provides the in-memory per-stream record buffer used between flushes
package stream

import (
	"fmt"

	"github.com/c2h5oh/datasize"
	"github.com/relex/etl-sink-agent/base"
	"github.com/relex/etl-sink-agent/defs"
)

// BufferConfig defines the bounds of one in-memory stream buffer
type BufferConfig struct {
	MaxRecords int               `yaml:"maxRecords"` // max numbers of buffered records before Full, 0 for default
	MaxBufSize datasize.ByteSize `yaml:"maxBufSize"` // max estimated size of buffered records before Full, 0 for default
}

// VerifyConfig checks configuration and fills in defaults
func (cfg *BufferConfig) VerifyConfig() error {
	if cfg.MaxRecords < 0 {
		return fmt.Errorf(".maxRecords is negative")
	}
	if cfg.MaxRecords == 0 {
		cfg.MaxRecords = defs.BufferMaxNumRecords
	}
	if cfg.MaxBufSize.Bytes() == 0 {
		cfg.MaxBufSize = datasize.ByteSize(defs.BufferMaxTotalBytes)
	}
	return nil
}

// memBuffer implements base.RecordBuffer bounded by record count and estimated size
type memBuffer struct {
	records     []base.Record
	queuedBytes int64
	maxRecords  int
	maxBytes    int64
}

// NewMemBuffer creates an empty in-memory buffer with the configured bounds
func NewMemBuffer(cfg BufferConfig) base.RecordBuffer {
	return &memBuffer{
		records:     make([]base.Record, 0, 512),
		queuedBytes: 0,
		maxRecords:  cfg.MaxRecords,
		maxBytes:    int64(cfg.MaxBufSize.Bytes()),
	}
}

func (buffer *memBuffer) Add(record base.Record) {
	buffer.records = append(buffer.records, record)
	buffer.queuedBytes += estimateRecordSize(record)
}

func (buffer *memBuffer) Full() bool {
	return len(buffer.records) >= buffer.maxRecords || buffer.queuedBytes >= buffer.maxBytes
}

func (buffer *memBuffer) Len() int {
	return len(buffer.records)
}

func (buffer *memBuffer) QueuedBytes() int64 {
	return buffer.queuedBytes
}

func (buffer *memBuffer) Peek() []base.Record {
	return buffer.records
}

func (buffer *memBuffer) Reset() {
	buffer.records = buffer.records[:0]
	buffer.queuedBytes = 0
}

// estimateRecordSize approximates the in-memory size of a decoded record
//
// The estimate only drives the buffer size bound; exactness doesn't matter as long as it
// grows with the data
func estimateRecordSize(record base.Record) int64 {
	size := int64(48) // map overhead
	for key, value := range record {
		size += int64(len(key)) + estimateValueSize(value)
	}
	return size
}

func estimateValueSize(value interface{}) int64 {
	switch typed := value.(type) {
	case nil:
		return 8
	case bool, float64, int, int64:
		return 16
	case string:
		return int64(len(typed)) + 16
	case []interface{}:
		size := int64(24)
		for _, element := range typed {
			size += estimateValueSize(element)
		}
		return size
	case map[string]interface{}:
		size := int64(48)
		for key, element := range typed {
			size += int64(len(key)) + estimateValueSize(element)
		}
		return size
	default:
		return 32
	}
}

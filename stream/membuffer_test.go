package stream

import (
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/relex/etl-sink-agent/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemBufferRecordBound(t *testing.T) {
	buffer := NewMemBuffer(BufferConfig{MaxRecords: 3, MaxBufSize: datasize.MB})

	assert.False(t, buffer.Full())
	buffer.Add(base.Record{"id": 1})
	buffer.Add(base.Record{"id": 2})
	assert.False(t, buffer.Full())
	buffer.Add(base.Record{"id": 3})
	assert.True(t, buffer.Full())
	assert.Equal(t, 3, buffer.Len())

	records := buffer.Peek()
	require.Len(t, records, 3)
	assert.Equal(t, base.Record{"id": 1}, records[0])
	assert.Equal(t, base.Record{"id": 3}, records[2])

	buffer.Reset()
	assert.Equal(t, 0, buffer.Len())
	assert.Equal(t, int64(0), buffer.QueuedBytes())
	assert.False(t, buffer.Full())
}

func TestMemBufferSizeBound(t *testing.T) {
	buffer := NewMemBuffer(BufferConfig{MaxRecords: 1000000, MaxBufSize: 200 * datasize.B})

	buffer.Add(base.Record{"name": "whiskers", "tags": []interface{}{"indoor", "tabby"}})
	before := buffer.QueuedBytes()
	assert.Greater(t, before, int64(0))

	buffer.Add(base.Record{"name": "rex", "attrs": map[string]interface{}{"weight": float64(31.5)}})
	assert.Greater(t, buffer.QueuedBytes(), before)
	assert.True(t, buffer.Full())
}

func TestBufferConfigDefaults(t *testing.T) {
	cfg := BufferConfig{}
	require.NoError(t, cfg.VerifyConfig())
	assert.Greater(t, cfg.MaxRecords, 0)
	assert.Greater(t, cfg.MaxBufSize.Bytes(), uint64(0))

	bad := BufferConfig{MaxRecords: -1}
	assert.Error(t, bad.VerifyConfig())
}

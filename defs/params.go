package defs

var (
	// InputLineBufferSize defines the buffer size in bytes to read one message line from the upstream producer
	//
	// A single RECORD or STATE message must fit in the buffer; the reader fails loudly if the limit is exceeded
	InputLineBufferSize = 64 * 1024 * 1024

	// InputLineInitialBufferSize defines the initial line buffer size before growing towards InputLineBufferSize
	InputLineInitialBufferSize = 64 * 1024

	// BufferMaxNumRecords defines the default maximum numbers of records buffered per stream before a flush is signaled
	BufferMaxNumRecords = 200000

	// BufferMaxTotalBytes defines the default maximum estimated size of records buffered per stream before a flush is signaled
	BufferMaxTotalBytes = int64(100 * 1024 * 1024)

	// CheckpointMaxWatermarkLag defines the default ceiling of (global sequence - safe threshold) before all stream
	// buffers are flushed eagerly to unblock checkpoint emission
	//
	// The guard only matters when stream rates are wildly imbalanced: one stream fills and flushes its buffer
	// repeatedly while another never fills, pinning the safe threshold and starving emission
	CheckpointMaxWatermarkLag = uint64(1000000)
)

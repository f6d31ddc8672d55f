package base

// RecordBuffer buffers the records of a single stream between flushes
//
// Add must never block on I/O; persistence happens only through BatchWriter when the
// flush coordinator decides to. The buffer hands back an all-or-nothing contiguous batch:
// Peek returns everything added since the last Reset, in add order.
type RecordBuffer interface {
	// Add buffers one record
	Add(record Record)

	// Full reports whether the buffer has reached its row or size bound and should be flushed
	Full() bool

	// Len returns the number of buffered records
	Len() int

	// QueuedBytes returns the estimated total size of buffered records
	QueuedBytes() int64

	// Peek returns all buffered records in add order; the slice is only usable until the next Add or Reset
	Peek() []Record

	// Reset clears the buffer after a successful batch write
	Reset()
}

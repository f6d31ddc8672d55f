package checkpoint

// markerEntry is one pending checkpoint marker tagged with the global sequence at arrival
type markerEntry struct {
	payload   interface{}    // decoded checkpoint value, opaque to the sink
	watermark GlobalSequence // number of records accepted when the marker arrived
}

// markerQueue is a FIFO of pending checkpoint markers in arrival order
//
// Arrival order equals consideration order for emission: entries are never reordered.
// FIFO arrival plus the monotonic global sequence keeps watermarks ascending.
type markerQueue struct {
	entries []markerEntry
	head    int
}

// Enqueue appends a marker to the back
func (queue *markerQueue) Enqueue(payload interface{}, watermark GlobalSequence) {
	if queue.head > 0 && queue.head == len(queue.entries) {
		queue.entries = queue.entries[:0]
		queue.head = 0
	}
	queue.entries = append(queue.entries, markerEntry{payload: payload, watermark: watermark})
}

// PeekWatermark returns the watermark of the front entry, or false if the queue is empty
func (queue *markerQueue) PeekWatermark() (GlobalSequence, bool) {
	if queue.Len() == 0 {
		return 0, false
	}
	return queue.entries[queue.head].watermark, true
}

// Pop removes and returns the front entry, or false if the queue is empty
func (queue *markerQueue) Pop() (markerEntry, bool) {
	if queue.Len() == 0 {
		return markerEntry{}, false
	}
	entry := queue.entries[queue.head]
	queue.entries[queue.head] = markerEntry{} // release payload for GC
	queue.head++
	return entry, true
}

// Len returns the number of pending markers
func (queue *markerQueue) Len() int {
	return len(queue.entries) - queue.head
}

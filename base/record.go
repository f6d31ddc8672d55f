package base

// Record is one decoded record payload from the upstream producer
//
// The contents are opaque to buffering and checkpoint coordination; only the store-facing
// BatchWriter interprets individual fields
type Record map[string]interface{}

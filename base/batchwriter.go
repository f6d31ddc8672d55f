package base

// BatchWriter persists record batches to the downstream store
//
// Implementations own connection management, transactions and any retry policy; the
// checkpoint coordination above them never retries a failed write on its own
type BatchWriter interface {
	// CreateStream prepares the store for a declared stream, e.g. creates the backing table
	//
	// It may be called again for the same stream on schema redeclaration
	CreateStream(schema StreamSchema) error

	// WriteBatch durably persists the given records of one stream
	//
	// Either every record is committed or the error describes a write that left nothing behind
	WriteBatch(schema StreamSchema, records []Record) error

	// Close releases connections or file handles
	Close() error
}

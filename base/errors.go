package base

import (
	"fmt"
)

// UnregisteredStreamError indicates a record arrived for a stream whose schema was never declared
//
// The upstream producer violated message ordering (schema must precede records); the error is
// fatal to the current input and never retried
type UnregisteredStreamError struct {
	Stream string
}

func (err *UnregisteredStreamError) Error() string {
	return fmt.Sprintf("a record for stream '%s' was encountered before a corresponding schema", err.Stream)
}

// WriteError wraps a batch write failure from the downstream store for one stream
type WriteError struct {
	Stream string
	Err    error
}

func (err *WriteError) Error() string {
	return fmt.Sprintf("failed to write batch for stream '%s': %s", err.Stream, err.Err.Error())
}

func (err *WriteError) Unwrap() error {
	return err.Err
}

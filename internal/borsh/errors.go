package borsh

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEndOfBuffer is returned when fewer bytes remain than a read needs.
	ErrUnexpectedEndOfBuffer = errors.New("unexpected end of buffer")

	// ErrSchemaMismatch is returned when a byte is outside its valid domain
	// (presence byte not 0/1) or a value does not fit its declared schema.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrInvalidUTF8 is returned by strict string reads.
	ErrInvalidUTF8 = errors.New("invalid utf-8")
)

// DecodeError records where a read failed.
type DecodeError struct {
	Offset int    // cursor position when the read started
	What   string // primitive or field path being read
	Err    error  // one of the package sentinels
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("borsh: read %s at offset %d: %v", e.What, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

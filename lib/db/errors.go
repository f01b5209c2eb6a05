package db

import (
	"errors"
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message. The code is what classification predicates and the
// RPC layer dispatch on, so it must survive wrapping and serialization.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("DatabaseError (code %s): %s", e.Code, e.Msg)
}

// Is makes errors.Is match two *Error values by code, so sentinel
// comparisons like errors.Is(err, db.ErrKeyNotFound) work for any error
// carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new database error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewCorruptionError creates the normalized error for a corruption
// classification. The message is preserved verbatim: it becomes the frozen
// message of a guarded store once the latch trips.
func NewCorruptionError(msg string) *Error {
	return NewError(RetCCorruption, msg)
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Operation executed successfully.
	RetCInternalError                   // 1: Operation failed due to an internal error.
	RetCNotFound                        // 2: No value is stored for the requested key.
	RetCCorruption                      // 3: The database state is unreliable.
	RetCClosed                          // 4: The database has been closed.
	RetCInvalidOperation                // 5: Invalid operation.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCNotFound:
		return "NotFound"
	case RetCCorruption:
		return "Corruption"
	case RetCClosed:
		return "Closed"
	case RetCInvalidOperation:
		return "InvalidOperation"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Sentinel Errors
// --------------------------------------------------------------------------

var (
	// ErrKeyNotFound is returned by Get when no value is stored for a key.
	ErrKeyNotFound = NewError(RetCNotFound, "key not found")
	// ErrClosed is returned by all operations on a closed database.
	ErrClosed = NewError(RetCClosed, "database closed")
)

// --------------------------------------------------------------------------
// Classification Predicates
// --------------------------------------------------------------------------

// corruptionMarkers are substrings of engine error messages that indicate
// the stored state can no longer be trusted. They cover the wording used
// by the common storage engines (pebble, leveldb, bolt) for on-disk
// faults.
var corruptionMarkers = []string{
	"corrupt",
	"checksum mismatch",
	"bad magic",
	"unexpected eof",
}

// IsCorruption reports whether err indicates unreliable database state.
// If it does, the second return value is the normalized corruption error
// (code RetCCorruption) that callers should record; otherwise it is nil.
//
// An error already carrying RetCCorruption is corruption by definition.
// Anything else is matched against the known engine corruption markers.
// Benign conditions (not found, closed) are never corruption.
func IsCorruption(err error) (bool, error) {
	if err == nil {
		return false, nil
	}

	var dbErr *Error
	if errors.As(err, &dbErr) {
		switch dbErr.Code {
		case RetCCorruption:
			return true, dbErr
		case RetCNotFound, RetCClosed:
			return false, nil
		}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range corruptionMarkers {
		if strings.Contains(msg, marker) {
			return true, NewCorruptionError(err.Error())
		}
	}

	return false, nil
}

// IsNotFound reports whether err indicates that no value is stored for the
// requested key.
func IsNotFound(err error) bool {
	var dbErr *Error
	if errors.As(err, &dbErr) {
		return dbErr.Code == RetCNotFound
	}
	return false
}

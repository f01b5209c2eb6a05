// Package guarded provides a corruption-latching decorator for database
// backends.
//
// The decorator wraps an arbitrary db.IDatabase and adds a permanent,
// one-way failure mode: the first time the inner database reports an error
// classified as corruption (see db.IsCorruption), the wrapper freezes that
// error and thereafter rejects every operation - on every handle sharing
// the wrapper - without ever touching the inner database again. This
// protects callers from continuing to read or write a database whose state
// may be inconsistent after a detected fault.
//
// Behavior summary:
//
//   - Gate check: every operation first checks the latch and fails
//     immediately with the frozen error once corrupted. The check is a
//     lock-free atomic load, safe to run on every call.
//
//   - Latch transition: when an inner error is classified as corruption,
//     the normalized error and the corrupted flag become visible together,
//     inside a single critical section. Concurrent detections converge on
//     exactly one retained message.
//
//   - Has: probes via the inner Get and translates a not-found error into
//     a false result. No other operation performs this translation.
//
//   - Passthrough: errors that are neither corruption nor (for Has)
//     not-found are returned unchanged. The wrapper adds no retries and no
//     recovery path; there is no way to un-corrupt a latched store.
//
//   - Iterator factories: gate-checked but never classified. An iterator
//     construction failure does not trip the latch.
//
// The wrapper is safe for concurrent use by any number of goroutines.
package guarded

// Package db defines the capability bundle for key-value database backends
// and the error taxonomy shared by all of them.
//
// The package focuses on:
//   - A unified interface (IDatabase) for key-value operations across
//     different backends
//   - A capability-set design: the bundle is composed of small interfaces
//     (read/write/delete, close, health check, iterator factory) so
//     decorators and adapters can be written against exactly the
//     capabilities they need
//   - A structured error system using typed return codes, plus the
//     classification predicates (IsCorruption, IsNotFound) consumed by the
//     guarded store decorator
//
// Key Components:
//
//   - IDatabase Interface: The core abstraction all backends implement.
//     Every IDatabase is a drop-in substitute for any other; in particular
//     the guarded decorator in the guarded subpackage exposes exactly this
//     interface, so callers cannot distinguish a guarded database from a
//     bare one except by its latching behavior.
//
//   - IIterator Interface: Ascending-order traversal over a key range,
//     optionally bounded by a start key and a key prefix.
//
//   - Error System: A structured error reporting mechanism using typed
//     error codes and descriptive messages. The codes cross the RPC
//     boundary unchanged, which is what allows a guarded store to wrap a
//     remote database and still classify its errors correctly.
//
// Implementations:
//
//	The module includes three implementations of the IDatabase interface:
//
//	- In-memory engine (engines/memdb): a concurrent map-backed backend
//	  with snapshot iterators. Suitable as a state machine backend and for
//	  tests.
//
//	- Replicated backend (engines/raftdb): a Dragonboat RAFT-replicated
//	  backend that distributes writes across multiple nodes with strong
//	  consistency guarantees.
//
//	- Guarded decorator (guarded): wraps any IDatabase and permanently
//	  latches on the first error classified as corruption, refusing all
//	  further operations.
package db

// Package memdb provides an in-memory implementation of the db.IDatabase
// capability bundle.
//
// Data is held in a concurrent hash map; reads and writes copy their
// values, so callers can never alias internal storage. Iterators take a
// sorted snapshot of the matching entries at creation time and are
// therefore stable under concurrent modification.
//
// The engine backs the RAFT state machine in engines/raftdb and serves as
// the reference implementation for the conformance suite in lib/db/testing.
package memdb

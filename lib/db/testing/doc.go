// Package testing provides the shared conformance and benchmark suites for
// db.IDatabase implementations.
//
// RunDatabaseTests exercises the full capability bundle (reads, writes,
// deletes, iterators, health, close semantics, edge cases, concurrency) and
// is run against every backend and against decorated backends, so drop-in
// substitutability is tested, not assumed.
//
// RunDatabaseBenchmarks measures the individual operations plus a mixed
// read-heavy workload.
package testing

package db

// --------------------------------------------------------------------------
// Capability Interfaces
// --------------------------------------------------------------------------

// IKeyValueReaderWriterDeleter defines the basic read, write and delete
// operations every database backend must support. Keys and values are raw
// byte slices; implementations must not retain or mutate the slices passed
// in and must return copies of stored data.
type IKeyValueReaderWriterDeleter interface {
	// Has returns whether a value is stored for the given key.
	Has(key []byte) (loaded bool, err error)
	// Get returns the value stored for the given key.
	// If no value is stored, the returned error satisfies IsNotFound.
	Get(key []byte) (value []byte, err error)
	// Put inserts or updates the value for the given key.
	Put(key []byte, value []byte) (err error)
	// Delete removes the value for the given key.
	// Deleting a missing key is not an error.
	Delete(key []byte) (err error)
}

// ICloser closes a database backend. After Close, all other operations
// must fail with an error satisfying code RetCClosed.
type ICloser interface {
	Close() (err error)
}

// IHealthChecker reports on the health of a database backend.
// The returned payload is implementation defined (typically JSON metadata)
// and may be nil.
type IHealthChecker interface {
	HealthCheck() (report []byte, err error)
}

// IIteratee is the iterator factory capability. All four entry points
// create an iterator positioned at the first matching key; the convenience
// variants are equivalent to NewIteratorWithStartAndPrefix with empty byte
// slices substituted for the missing bound.
type IIteratee interface {
	// NewIterator creates an iterator over all keys in ascending order.
	NewIterator() (IIterator, error)
	// NewIteratorWithStart creates an iterator over all keys >= start.
	NewIteratorWithStart(start []byte) (IIterator, error)
	// NewIteratorWithPrefix creates an iterator over all keys with the
	// given prefix.
	NewIteratorWithPrefix(prefix []byte) (IIterator, error)
	// NewIteratorWithStartAndPrefix creates an iterator over all keys with
	// the given prefix, starting at the first key >= start.
	NewIteratorWithStartAndPrefix(start, prefix []byte) (IIterator, error)
}

// IDatabase is the full capability bundle a backend must implement to be
// usable by the rest of the system. Any IDatabase can transparently be
// substituted for any other - decorators such as the guarded store rely on
// this to be drop-in replacements for the database they wrap.
type IDatabase interface {
	IKeyValueReaderWriterDeleter
	ICloser
	IHealthChecker
	IIteratee
}

// --------------------------------------------------------------------------
// Iterator Interface
// --------------------------------------------------------------------------

// IIterator walks a key range in ascending key order.
//
// Usage:
//
//	it, err := database.NewIteratorWithPrefix([]byte("user/"))
//	if err != nil { ... }
//	defer it.Release()
//	for it.Next() {
//		process(it.Key(), it.Value())
//	}
//	if err := it.Error(); err != nil { ... }
type IIterator interface {
	// Next advances the iterator and reports whether a pair is available.
	// It returns false once the range is exhausted or an error occurred.
	Next() bool
	// Error returns the error that stopped iteration, or nil if the
	// iterator is exhausted or still running.
	Error() error
	// Key returns the key of the current pair. Only valid after a call to
	// Next returned true.
	Key() []byte
	// Value returns the value of the current pair. Only valid after a call
	// to Next returned true.
	Value() []byte
	// Release frees all resources held by the iterator.
	Release()
}

// --------------------------------------------------------------------------
// Factory Type
// --------------------------------------------------------------------------

// DatabaseFactory is a function type that creates a new database backend.
// It is used to abstract backend creation from the components that consume
// databases (state machines, servers, test suites).
type DatabaseFactory func() IDatabase

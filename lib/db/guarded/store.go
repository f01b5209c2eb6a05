package guarded

import (
	"sync"
	"sync/atomic"

	"github.com/gkvlabs/gKV/lib/db"
)

// storeImpl wraps another db.IDatabase and blocks all further calls to it
// at the first sign of corruption. The latch is one-way: once tripped it is
// never reset, not even by Close.
type storeImpl struct {
	inner db.IDatabase

	// corrupted is the lock-free fast path checked on every operation.
	// It is only ever flipped from false to true, and only inside the
	// critical section below, after corruptionErr has been written. A
	// caller that observes corrupted==true is therefore guaranteed to read
	// the complete frozen error under mu.
	corrupted     atomic.Bool
	mu            sync.RWMutex
	corruptionErr error // frozen first corruption error, write-once
}

// New wraps a database so that the first error classified as corruption
// permanently latches the wrapper: every subsequent operation fails with
// the frozen corruption error and the inner database is never invoked
// again. The wrapper takes exclusive ownership of the inner database; no
// other component may use it directly.
func New(inner db.IDatabase) db.IDatabase {
	return &storeImpl{inner: inner}
}

// --------------------------------------------------------------------------
// Latch Handling
// --------------------------------------------------------------------------

// gate returns the frozen corruption error if the latch has tripped, or
// nil while the store is healthy. It is called first by every operation.
func (s *storeImpl) gate() error {
	if !s.corrupted.Load() {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corruptionErr
}

// handle classifies an inner error. If it is corruption, the normalized
// error is recorded (first writer wins) and the frozen error is returned
// with ok=true. Otherwise ok is false and the caller must propagate the
// original error unchanged.
func (s *storeImpl) handle(err error) (error, bool) {
	isCorruption, normalized := db.IsCorruption(err)
	if !isCorruption {
		return nil, false
	}
	return s.latch(normalized), true
}

// latch records the normalized corruption error and flips the corrupted
// flag, as a single critical section. Concurrent callers racing to trip
// the latch converge on whichever error was recorded first; later arrivals
// discard their own and get the frozen one back.
func (s *storeImpl) latch(normalized error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.corruptionErr == nil {
		s.corruptionErr = normalized
		// flag is flipped last so no reader can observe the flag without
		// the message
		s.corrupted.Store(true)
	}
	return s.corruptionErr
}

// --------------------------------------------------------------------------
// Interface Methods (docu see db/interface.go)
// --------------------------------------------------------------------------

// Has reports whether the inner database holds a value for key. It probes
// via the inner Get: a successful read maps to true and a not-found error
// maps to false. Only Has performs this boolean translation; all other
// operations propagate not-found errors as-is.
func (s *storeImpl) Has(key []byte) (bool, error) {
	if err := s.gate(); err != nil {
		return false, err
	}
	if _, err := s.inner.Get(key); err != nil {
		if frozen, ok := s.handle(err); ok {
			return false, frozen
		}
		if db.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *storeImpl) Get(key []byte) ([]byte, error) {
	if err := s.gate(); err != nil {
		return nil, err
	}
	value, err := s.inner.Get(key)
	if err != nil {
		if frozen, ok := s.handle(err); ok {
			return nil, frozen
		}
		return nil, err
	}
	return value, nil
}

func (s *storeImpl) Put(key []byte, value []byte) error {
	if err := s.gate(); err != nil {
		return err
	}
	if err := s.inner.Put(key, value); err != nil {
		if frozen, ok := s.handle(err); ok {
			return frozen
		}
		return err
	}
	return nil
}

func (s *storeImpl) Delete(key []byte) error {
	if err := s.gate(); err != nil {
		return err
	}
	if err := s.inner.Delete(key); err != nil {
		if frozen, ok := s.handle(err); ok {
			return frozen
		}
		return err
	}
	return nil
}

func (s *storeImpl) Close() error {
	if err := s.gate(); err != nil {
		return err
	}
	if err := s.inner.Close(); err != nil {
		if frozen, ok := s.handle(err); ok {
			return frozen
		}
		return err
	}
	return nil
}

func (s *storeImpl) HealthCheck() ([]byte, error) {
	if err := s.gate(); err != nil {
		return nil, err
	}
	report, err := s.inner.HealthCheck()
	if err != nil {
		if frozen, ok := s.handle(err); ok {
			return nil, frozen
		}
		return nil, err
	}
	return report, nil
}

// --------------------------------------------------------------------------
// Iterator Factory
// --------------------------------------------------------------------------

func (s *storeImpl) NewIterator() (db.IIterator, error) {
	return s.NewIteratorWithStartAndPrefix(nil, nil)
}

func (s *storeImpl) NewIteratorWithStart(start []byte) (db.IIterator, error) {
	return s.NewIteratorWithStartAndPrefix(start, nil)
}

func (s *storeImpl) NewIteratorWithPrefix(prefix []byte) (db.IIterator, error) {
	return s.NewIteratorWithStartAndPrefix(nil, prefix)
}

// NewIteratorWithStartAndPrefix performs only the gate check and then
// forwards to the inner factory. Construction failures are deliberately
// not classified and never trip the latch: a failed iterator constructor
// is not treated as a store-health signal. This asymmetry with the other
// operations is intentional and must be preserved.
func (s *storeImpl) NewIteratorWithStartAndPrefix(start, prefix []byte) (db.IIterator, error) {
	if err := s.gate(); err != nil {
		return nil, err
	}
	return s.inner.NewIteratorWithStartAndPrefix(start, prefix)
}

package guarded

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gkvlabs/gKV/lib/db"
	"github.com/gkvlabs/gKV/lib/db/engines/memdb"
)

// --------------------------------------------------------------------------
// Test Double
// --------------------------------------------------------------------------

// faultyDB is a test double that counts every call and fails with
// configurable errors. A nil error field means the operation succeeds.
type faultyDB struct {
	calls atomic.Int64

	getErr    func(key []byte) error
	putErr    error
	deleteErr error
	closeErr  error
	healthErr error
	iterErr   error
}

func (f *faultyDB) Has(key []byte) (bool, error) {
	f.calls.Add(1)
	if f.getErr != nil {
		if err := f.getErr(key); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (f *faultyDB) Get(key []byte) ([]byte, error) {
	f.calls.Add(1)
	if f.getErr != nil {
		if err := f.getErr(key); err != nil {
			return nil, err
		}
	}
	return []byte("value"), nil
}

func (f *faultyDB) Put(key, value []byte) error {
	f.calls.Add(1)
	return f.putErr
}

func (f *faultyDB) Delete(key []byte) error {
	f.calls.Add(1)
	return f.deleteErr
}

func (f *faultyDB) Close() error {
	f.calls.Add(1)
	return f.closeErr
}

func (f *faultyDB) HealthCheck() ([]byte, error) {
	f.calls.Add(1)
	return nil, f.healthErr
}

func (f *faultyDB) NewIterator() (db.IIterator, error) {
	return f.NewIteratorWithStartAndPrefix(nil, nil)
}

func (f *faultyDB) NewIteratorWithStart(start []byte) (db.IIterator, error) {
	return f.NewIteratorWithStartAndPrefix(start, nil)
}

func (f *faultyDB) NewIteratorWithPrefix(prefix []byte) (db.IIterator, error) {
	return f.NewIteratorWithStartAndPrefix(nil, prefix)
}

func (f *faultyDB) NewIteratorWithStartAndPrefix(start, prefix []byte) (db.IIterator, error) {
	f.calls.Add(1)
	if f.iterErr != nil {
		return nil, f.iterErr
	}
	return nil, fmt.Errorf("faultyDB has no iterator")
}

// corruptionFor returns a getErr function that fails with a corruption
// error for the given key and not-found for everything else.
func corruptionFor(key string, msg string) func([]byte) error {
	return func(k []byte) error {
		if string(k) == key {
			return db.NewCorruptionError(msg)
		}
		return db.ErrKeyNotFound
	}
}

// --------------------------------------------------------------------------
// Healthy Path
// --------------------------------------------------------------------------

func TestHealthyOperations(t *testing.T) {
	database := New(memdb.New())
	defer database.Close()

	if err := database.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	value, err := database.Get([]byte("a"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(value, []byte("1")) {
		t.Errorf("Expected value %q, got %q", "1", value)
	}

	has, err := database.Has([]byte("a"))
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !has {
		t.Errorf("Expected Has to return true for existing key")
	}

	if _, err := database.HealthCheck(); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}

func TestHasTranslatesNotFound(t *testing.T) {
	database := New(memdb.New())
	defer database.Close()

	has, err := database.Has([]byte("missing"))
	if err != nil {
		t.Fatalf("Has returned error for missing key: %v", err)
	}
	if has {
		t.Errorf("Expected Has to return false for missing key")
	}

	// Get must propagate the not-found error unchanged instead
	if _, err := database.Get([]byte("missing")); !db.IsNotFound(err) {
		t.Errorf("Expected not-found error from Get, got %v", err)
	}
}

func TestDropInTransparency(t *testing.T) {
	database := New(memdb.New())
	defer database.Close()

	for i := 0; i < 10; i++ {
		key := []byte(fmt.Sprintf("iter-key-%d", i))
		if err := database.Put(key, []byte{byte(i)}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	it, err := database.NewIteratorWithPrefix([]byte("iter-key-"))
	if err != nil {
		t.Fatalf("NewIteratorWithPrefix failed: %v", err)
	}
	defer it.Release()

	count := 0
	for it.Next() {
		count++
	}
	if err := it.Error(); err != nil {
		t.Fatalf("Iterator failed: %v", err)
	}
	if count != 10 {
		t.Errorf("Expected 10 pairs, iterated %d", count)
	}
}

// --------------------------------------------------------------------------
// Latch Behavior
// --------------------------------------------------------------------------

func TestLatchPermanence(t *testing.T) {
	inner := &faultyDB{getErr: corruptionFor("x", "disk read error")}
	database := New(inner)

	_, err := database.Get([]byte("x"))
	if err == nil {
		t.Fatal("Expected corruption error from Get")
	}
	isCorruption, _ := db.IsCorruption(err)
	if !isCorruption {
		t.Fatalf("Expected corruption classification, got %v", err)
	}
	frozen := err.Error()

	callsAfterLatch := inner.calls.Load()

	// every operation must now fail with the identical frozen error and
	// the inner database must receive no further calls
	checks := []struct {
		name string
		op   func() error
	}{
		{"Has", func() error { _, err := database.Has([]byte("a")); return err }},
		{"Get", func() error { _, err := database.Get([]byte("a")); return err }},
		{"Put", func() error { return database.Put([]byte("a"), []byte("1")) }},
		{"Delete", func() error { return database.Delete([]byte("a")) }},
		{"Close", func() error { return database.Close() }},
		{"HealthCheck", func() error { _, err := database.HealthCheck(); return err }},
		{"NewIterator", func() error { _, err := database.NewIterator(); return err }},
		{"NewIteratorWithStart", func() error { _, err := database.NewIteratorWithStart([]byte("a")); return err }},
		{"NewIteratorWithPrefix", func() error { _, err := database.NewIteratorWithPrefix([]byte("a")); return err }},
		{"NewIteratorWithStartAndPrefix", func() error {
			_, err := database.NewIteratorWithStartAndPrefix([]byte("a"), []byte("b"))
			return err
		}},
	}

	for _, check := range checks {
		err := check.op()
		if err == nil {
			t.Errorf("%s: expected error after latch", check.name)
			continue
		}
		if err.Error() != frozen {
			t.Errorf("%s: expected frozen error %q, got %q", check.name, frozen, err.Error())
		}
	}

	if calls := inner.calls.Load(); calls != callsAfterLatch {
		t.Errorf("Inner database received %d calls after the latch tripped", calls-callsAfterLatch)
	}
}

func TestHasFailsAfterLatch(t *testing.T) {
	inner := &faultyDB{getErr: corruptionFor("x", "bad block")}
	database := New(inner)

	// trip the latch
	if _, err := database.Get([]byte("x")); err == nil {
		t.Fatal("Expected corruption error")
	}

	// Has must fail now, never answer false
	if _, err := database.Has([]byte("missing")); err == nil {
		t.Error("Expected Has to fail after latch, got success")
	}
}

func TestPassthroughFidelity(t *testing.T) {
	opaque := errors.New("transient network glitch")
	inner := &faultyDB{
		getErr: func([]byte) error { return opaque },
	}
	database := New(inner)

	_, err := database.Get([]byte("a"))
	if !errors.Is(err, opaque) {
		t.Fatalf("Expected the original error back, got %v", err)
	}

	// the error must not have latched the store
	inner.getErr = nil
	if _, err := database.Get([]byte("a")); err != nil {
		t.Errorf("Store latched by a non-corruption error: %v", err)
	}
}

func TestWriteErrorsLatch(t *testing.T) {
	inner := &faultyDB{putErr: db.NewCorruptionError("write failed: corrupt page")}
	database := New(inner)

	if err := database.Put([]byte("a"), []byte("1")); err == nil {
		t.Fatal("Expected corruption error from Put")
	}
	if err := database.Delete([]byte("a")); err == nil {
		t.Error("Expected frozen error from Delete after latch")
	} else if err.Error() != db.NewCorruptionError("write failed: corrupt page").Error() {
		t.Errorf("Unexpected frozen error: %v", err)
	}
}

func TestIteratorFactoryNeverLatches(t *testing.T) {
	inner := &faultyDB{iterErr: db.NewCorruptionError("iterator setup corrupt")}
	database := New(inner)

	// the factory error is returned to the caller...
	if _, err := database.NewIterator(); err == nil {
		t.Fatal("Expected error from NewIterator")
	}

	// ...but it must not have tripped the latch
	inner.getErr = func([]byte) error { return nil }
	if _, err := database.Get([]byte("a")); err != nil {
		t.Errorf("Iterator factory error latched the store: %v", err)
	}
}

func TestCloseNeverResets(t *testing.T) {
	inner := &faultyDB{getErr: corruptionFor("x", "m")}
	database := New(inner)

	if _, err := database.Get([]byte("x")); err == nil {
		t.Fatal("Expected corruption error")
	}
	if err := database.Close(); err == nil {
		t.Fatal("Expected Close to fail after latch")
	}
	if _, err := database.Get([]byte("y")); err == nil {
		t.Error("Latch reset after Close")
	}
}

// --------------------------------------------------------------------------
// Concurrency
// --------------------------------------------------------------------------

// TestConcurrentLatchRace lets many goroutines race to trip the latch with
// distinct messages while readers hammer the gate. Exactly one message may
// win, every caller must observe that complete message, and nobody may see
// the corrupted state with an empty message.
func TestConcurrentLatchRace(t *testing.T) {
	numWriters := 16
	numReaders := 16
	rounds := 50

	for round := 0; round < rounds; round++ {
		messages := make(map[string]bool)
		for i := 0; i < numWriters; i++ {
			messages[fmt.Sprintf("corruption-%d", i)] = true
		}

		// only the writers' keys classify as corruption; the readers'
		// key reports plain not-found until the latch trips
		inner := &faultyDB{
			getErr: func(key []byte) error {
				if bytes.HasPrefix(key, []byte("corruption-")) {
					return db.NewCorruptionError(string(key))
				}
				return db.ErrKeyNotFound
			},
		}
		database := New(inner)

		var (
			wg       sync.WaitGroup
			start    = make(chan struct{})
			observed sync.Map
		)

		wg.Add(numWriters + numReaders)
		for i := 0; i < numWriters; i++ {
			go func(id int) {
				defer wg.Done()
				<-start
				_, err := database.Get([]byte(fmt.Sprintf("corruption-%d", id)))
				if err == nil {
					t.Error("Expected corruption error")
					return
				}
				observed.Store(err.Error(), true)
			}(i)
		}
		for i := 0; i < numReaders; i++ {
			go func() {
				defer wg.Done()
				<-start
				for j := 0; j < 20; j++ {
					_, err := database.Has([]byte("reader-key"))
					if err == nil {
						continue // raced ahead of the latch, inner says not-found
					}
					var dbErr *db.Error
					if errors.As(err, &dbErr) && dbErr.Code == db.RetCCorruption && dbErr.Msg == "" {
						t.Error("Observed corrupted state with empty message")
					}
					observed.Store(err.Error(), true)
				}
			}()
		}

		close(start)
		wg.Wait()

		// after the dust settles, exactly one frozen message remains
		_, err := database.Get([]byte("afterwards"))
		if err == nil {
			t.Fatal("Expected frozen error after race")
		}
		var dbErr *db.Error
		if !errors.As(err, &dbErr) {
			t.Fatalf("Expected *db.Error, got %T", err)
		}
		if !messages[dbErr.Msg] {
			t.Fatalf("Frozen message %q is not one of the raced messages", dbErr.Msg)
		}

		// every error anyone observed must be the same frozen one
		frozen := err.Error()
		observed.Range(func(key, _ any) bool {
			if key.(string) != frozen {
				t.Errorf("Observed error %q differs from frozen %q", key, frozen)
			}
			return true
		})
	}
}

func TestIdempotentTransition(t *testing.T) {
	inner := &faultyDB{getErr: corruptionFor("x", "first")}
	database := New(inner)

	if _, err := database.Get([]byte("x")); err == nil {
		t.Fatal("Expected corruption error")
	}

	// change what the inner database would report; the gate must
	// short-circuit before any re-classification could happen
	inner.getErr = corruptionFor("x", "second")
	callsBefore := inner.calls.Load()

	_, err := database.Get([]byte("x"))
	if err == nil {
		t.Fatal("Expected frozen error")
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Msg != "first" {
		t.Errorf("Expected frozen message %q, got %v", "first", err)
	}
	if inner.calls.Load() != callsBefore {
		t.Error("Inner database was invoked after the latch tripped")
	}
}

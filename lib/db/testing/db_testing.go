package testing

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/gkvlabs/gKV/lib/db"
)

// RunDatabaseTests runs a comprehensive test suite for an IDatabase
// implementation. Every backend (and every decorator that claims to be a
// drop-in substitute) must pass this suite unchanged.
func RunDatabaseTests(t *testing.T, name string, factory db.DatabaseFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("NotFound", func(t *testing.T) {
			testNotFound(t, factory())
		})

		t.Run("Iterator", func(t *testing.T) {
			testIterator(t, factory())
		})

		t.Run("IteratorBounds", func(t *testing.T) {
			testIteratorBounds(t, factory())
		})

		t.Run("HealthCheck", func(t *testing.T) {
			testHealthCheck(t, factory())
		})

		t.Run("Close", func(t *testing.T) {
			testClose(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("ConcurrentUsage", func(t *testing.T) {
			testConcurrentUsage(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, database db.IDatabase) {
	defer database.Close()

	testKey := []byte("test-key")
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	if err := database.Put(testKey, testValue1); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	result, err := database.Get(testKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	// overwrite
	if err := database.Put(testKey, testValue2); err != nil {
		t.Fatalf("Put (overwrite) failed: %v", err)
	}

	result, err = database.Get(testKey)
	if err != nil {
		t.Fatalf("Get after overwrite failed: %v", err)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	// Get must return a copy, not a reference to the stored value
	retrieved, _ := database.Get(testKey)
	retrieved[0] = 'X'
	original, _ := database.Get(testKey)
	if bytes.Equal(retrieved, original) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}

	// Put must not retain the caller's buffer
	mutable := []byte("mutable-value")
	if err := database.Put([]byte("mutable-key"), mutable); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	mutable[0] = 'X'
	stored, _ := database.Get([]byte("mutable-key"))
	if bytes.Equal(stored, mutable) {
		t.Errorf("Put should copy the value, not retain the caller's buffer")
	}
}

func testHas(t *testing.T, database db.IDatabase) {
	defer database.Close()

	testKey := []byte("has-test-key")

	has, err := database.Has(testKey)
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if has {
		t.Errorf("Expected Has to return false for nonexistent key")
	}

	if err := database.Put(testKey, []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	has, err = database.Has(testKey)
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !has {
		t.Errorf("Expected Has to return true after Put")
	}
}

func testDelete(t *testing.T, database db.IDatabase) {
	defer database.Close()

	testKey := []byte("delete-test-key")

	if err := database.Put(testKey, []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := database.Delete(testKey); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if has, _ := database.Has(testKey); has {
		t.Errorf("Expected key to not exist after Delete")
	}

	// deleting a missing key is not an error
	if err := database.Delete([]byte("nonexistent-key")); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
}

func testNotFound(t *testing.T, database db.IDatabase) {
	defer database.Close()

	_, err := database.Get([]byte("nonexistent-key"))
	if err == nil {
		t.Fatal("Expected error for missing key")
	}
	if !db.IsNotFound(err) {
		t.Errorf("Expected a not-found error, got %v", err)
	}
}

func testIterator(t *testing.T, database db.IDatabase) {
	defer database.Close()

	numKeys := 100
	for i := 0; i < numKeys; i++ {
		key := []byte(fmt.Sprintf("key-%03d", i))
		value := []byte(fmt.Sprintf("value-%03d", i))
		if err := database.Put(key, value); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	it, err := database.NewIterator()
	if err != nil {
		t.Fatalf("NewIterator failed: %v", err)
	}
	defer it.Release()

	var prev []byte
	count := 0
	for it.Next() {
		if prev != nil && bytes.Compare(prev, it.Key()) >= 0 {
			t.Errorf("Keys not in ascending order: %s >= %s", prev, it.Key())
		}
		prev = append(prev[:0], it.Key()...)

		expected := append([]byte("value-"), it.Key()[len("key-"):]...)
		if !bytes.Equal(it.Value(), expected) {
			t.Errorf("Expected value %s for key %s, got %s", expected, it.Key(), it.Value())
		}
		count++
	}
	if err := it.Error(); err != nil {
		t.Fatalf("Iterator failed: %v", err)
	}
	if count != numKeys {
		t.Errorf("Expected %d pairs, iterated %d", numKeys, count)
	}

	// exhausted iterators stay exhausted
	if it.Next() {
		t.Errorf("Next returned true after exhaustion")
	}
}

func testIteratorBounds(t *testing.T, database db.IDatabase) {
	defer database.Close()

	keys := []string{"a/1", "a/2", "a/3", "b/1", "b/2", "c/1"}
	for _, key := range keys {
		if err := database.Put([]byte(key), []byte(key)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	collect := func(it db.IIterator) []string {
		defer it.Release()
		var result []string
		for it.Next() {
			result = append(result, string(it.Key()))
		}
		return result
	}

	equal := func(got, want []string) bool {
		if len(got) != len(want) {
			return false
		}
		for i := range got {
			if got[i] != want[i] {
				return false
			}
		}
		return true
	}

	it, err := database.NewIteratorWithPrefix([]byte("a/"))
	if err != nil {
		t.Fatalf("NewIteratorWithPrefix failed: %v", err)
	}
	if got := collect(it); !equal(got, []string{"a/1", "a/2", "a/3"}) {
		t.Errorf("Prefix iteration returned %v", got)
	}

	it, err = database.NewIteratorWithStart([]byte("b/2"))
	if err != nil {
		t.Fatalf("NewIteratorWithStart failed: %v", err)
	}
	if got := collect(it); !equal(got, []string{"b/2", "c/1"}) {
		t.Errorf("Start iteration returned %v", got)
	}

	it, err = database.NewIteratorWithStartAndPrefix([]byte("a/2"), []byte("a/"))
	if err != nil {
		t.Fatalf("NewIteratorWithStartAndPrefix failed: %v", err)
	}
	if got := collect(it); !equal(got, []string{"a/2", "a/3"}) {
		t.Errorf("Start+prefix iteration returned %v", got)
	}

	// no matches is an empty iterator, not an error
	it, err = database.NewIteratorWithPrefix([]byte("zzz/"))
	if err != nil {
		t.Fatalf("NewIteratorWithPrefix failed: %v", err)
	}
	if got := collect(it); len(got) != 0 {
		t.Errorf("Expected empty iteration, got %v", got)
	}
}

func testHealthCheck(t *testing.T, database db.IDatabase) {
	defer database.Close()

	if _, err := database.HealthCheck(); err != nil {
		t.Errorf("HealthCheck failed on healthy database: %v", err)
	}
}

func testClose(t *testing.T, database db.IDatabase) {
	if err := database.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := database.Put([]byte("k"), []byte("v")); err == nil {
		t.Errorf("Expected Put to fail after Close")
	}
	if _, err := database.Get([]byte("k")); err == nil {
		t.Errorf("Expected Get to fail after Close")
	}
	if !errors.Is(database.Put([]byte("k"), []byte("v")), db.ErrClosed) {
		t.Errorf("Expected closed error after Close")
	}
}

func testEdgeCases(t *testing.T, database db.IDatabase) {
	defer database.Close()

	// empty key
	if err := database.Put([]byte{}, []byte("value for empty key")); err != nil {
		t.Fatalf("Put with empty key failed: %v", err)
	}
	result, err := database.Get([]byte{})
	if err != nil {
		t.Errorf("Empty key not found after Put: %v", err)
	} else if !bytes.Equal(result, []byte("value for empty key")) {
		t.Errorf("Value mismatch for empty key")
	}

	// empty value
	if err := database.Put([]byte("empty-value-key"), []byte{}); err != nil {
		t.Fatalf("Put with empty value failed: %v", err)
	}
	result, err = database.Get([]byte("empty-value-key"))
	if err != nil {
		t.Errorf("Key for empty value not found after Put: %v", err)
	} else if len(result) != 0 {
		t.Errorf("Empty value resulted in non-empty value: %v", result)
	}

	// nil value
	if err := database.Put([]byte("nil-value-key"), nil); err != nil {
		t.Fatalf("Put with nil value failed: %v", err)
	}
	result, err = database.Get([]byte("nil-value-key"))
	if err != nil {
		t.Errorf("Key for nil value not found after Put: %v", err)
	} else if len(result) != 0 {
		t.Errorf("Nil value resulted in non-empty value: %v", result)
	}

	// large value
	largeValue := make([]byte, 4*1024*1024)
	for i := range largeValue {
		largeValue[i] = byte(i % 256)
	}
	if err := database.Put([]byte("large-value-key"), largeValue); err != nil {
		t.Fatalf("Put with large value failed: %v", err)
	}
	result, err = database.Get([]byte("large-value-key"))
	if err != nil {
		t.Errorf("Key for large value not found after Put: %v", err)
	} else if !bytes.Equal(result, largeValue) {
		t.Errorf("Large value mismatch")
	}
}

func testConcurrentUsage(t *testing.T, database db.IDatabase) {
	defer database.Close()

	numWorkers := 8
	opsPerWorker := 1000

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()

			for i := 0; i < opsPerWorker; i++ {
				key := []byte(fmt.Sprintf("worker-%d-key-%d", workerId, i%100))

				switch {
				case i%10 < 7:
					if err := database.Put(key, []byte(fmt.Sprintf("value-%d", i))); err != nil {
						t.Errorf("Put failed: %v", err)
						return
					}
				case i%10 < 9:
					if _, err := database.Get(key); err != nil && !db.IsNotFound(err) {
						t.Errorf("Get failed: %v", err)
						return
					}
				default:
					if err := database.Delete(key); err != nil {
						t.Errorf("Delete failed: %v", err)
						return
					}
				}
			}
		}(w)
	}

	wg.Wait()

	// verify each worker's keyspace is internally consistent
	for w := 0; w < numWorkers; w++ {
		for i := 0; i < 100; i++ {
			key := []byte(fmt.Sprintf("worker-%d-key-%d", w, i))
			has, err := database.Has(key)
			if err != nil {
				t.Fatalf("Has failed during verification: %v", err)
			}
			if has {
				if _, err := database.Get(key); err != nil {
					t.Errorf("Key %s exists but Get failed: %v", key, err)
				}
			}
		}
	}
}

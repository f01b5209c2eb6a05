package testing

import (
	"fmt"
	"testing"

	"github.com/gkvlabs/gKV/lib/db"
)

// RunDatabaseBenchmarks runs a benchmark suite for an IDatabase
// implementation. The suite measures the individual operations plus a
// mixed read-heavy workload.
func RunDatabaseBenchmarks(b *testing.B, name string, factory db.DatabaseFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Put", func(b *testing.B) {
			benchmarkPut(b, factory())
		})

		b.Run("PutOverwrite", func(b *testing.B) {
			benchmarkPutOverwrite(b, factory())
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory())
		})

		b.Run("Has", func(b *testing.B) {
			benchmarkHas(b, factory())
		})

		b.Run("Delete", func(b *testing.B) {
			benchmarkDelete(b, factory())
		})

		b.Run("Iterate", func(b *testing.B) {
			benchmarkIterate(b, factory())
		})

		b.Run("Mixed", func(b *testing.B) {
			benchmarkMixed(b, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

var benchValue = []byte("benchmark-value-benchmark-value-benchmark-value-")

func benchmarkPut(b *testing.B, database db.IDatabase) {
	defer database.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := []byte(fmt.Sprintf("key-%d", i))
		if err := database.Put(key, benchValue); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}
}

func benchmarkPutOverwrite(b *testing.B, database db.IDatabase) {
	defer database.Close()

	key := []byte("overwrite-key")
	if err := database.Put(key, benchValue); err != nil {
		b.Fatalf("Put failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := database.Put(key, benchValue); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}
}

func benchmarkGet(b *testing.B, database db.IDatabase) {
	defer database.Close()

	numKeys := 10_000
	for i := 0; i < numKeys; i++ {
		key := []byte(fmt.Sprintf("key-%d", i))
		if err := database.Put(key, benchValue); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := []byte(fmt.Sprintf("key-%d", i%numKeys))
		if _, err := database.Get(key); err != nil {
			b.Fatalf("Get failed: %v", err)
		}
	}
}

func benchmarkHas(b *testing.B, database db.IDatabase) {
	defer database.Close()

	numKeys := 10_000
	for i := 0; i < numKeys; i++ {
		key := []byte(fmt.Sprintf("key-%d", i))
		if err := database.Put(key, benchValue); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// every other probe misses
		key := []byte(fmt.Sprintf("key-%d", i%(numKeys*2)))
		if _, err := database.Has(key); err != nil {
			b.Fatalf("Has failed: %v", err)
		}
	}
}

func benchmarkDelete(b *testing.B, database db.IDatabase) {
	defer database.Close()

	for i := 0; i < b.N; i++ {
		key := []byte(fmt.Sprintf("key-%d", i))
		if err := database.Put(key, benchValue); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := []byte(fmt.Sprintf("key-%d", i))
		if err := database.Delete(key); err != nil {
			b.Fatalf("Delete failed: %v", err)
		}
	}
}

func benchmarkIterate(b *testing.B, database db.IDatabase) {
	defer database.Close()

	numKeys := 1_000
	for i := 0; i < numKeys; i++ {
		key := []byte(fmt.Sprintf("key-%04d", i))
		if err := database.Put(key, benchValue); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it, err := database.NewIterator()
		if err != nil {
			b.Fatalf("NewIterator failed: %v", err)
		}
		count := 0
		for it.Next() {
			count++
		}
		it.Release()
		if count != numKeys {
			b.Fatalf("Expected %d pairs, iterated %d", numKeys, count)
		}
	}
}

func benchmarkMixed(b *testing.B, database db.IDatabase) {
	defer database.Close()

	numKeys := 10_000
	for i := 0; i < numKeys; i++ {
		key := []byte(fmt.Sprintf("key-%d", i))
		if err := database.Put(key, benchValue); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := []byte(fmt.Sprintf("key-%d", i%numKeys))

			switch {
			case i%10 < 8:
				if _, err := database.Get(key); err != nil && !db.IsNotFound(err) {
					b.Errorf("Get failed: %v", err)
					return
				}
			case i%10 == 8:
				if err := database.Put(key, benchValue); err != nil {
					b.Errorf("Put failed: %v", err)
					return
				}
			default:
				if err := database.Delete(key); err != nil {
					b.Errorf("Delete failed: %v", err)
					return
				}
			}
			i++
		}
	})
}

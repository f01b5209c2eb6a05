package memdb

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/gkvlabs/gKV/lib/db"
	"github.com/gkvlabs/gKV/lib/db/guarded"
	dbtesting "github.com/gkvlabs/gKV/lib/db/testing"
)

func TestMemDBConformance(t *testing.T) {
	dbtesting.RunDatabaseTests(t, "memdb", New)
}

// The guarded wrapper must be a drop-in substitute: with a healthy inner
// database it passes the exact same conformance suite as the bare engine.
func TestGuardedMemDBConformance(t *testing.T) {
	dbtesting.RunDatabaseTests(t, "guarded(memdb)", func() db.IDatabase {
		return guarded.New(New())
	})
}

func TestHealthCheckReportsKeyCount(t *testing.T) {
	database := New()
	defer database.Close()

	for _, key := range []string{"a", "b", "c"} {
		if err := database.Put([]byte(key), []byte("v")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	report, err := database.HealthCheck()
	if err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}

	var parsed struct {
		Engine string `json:"engine"`
		Keys   int    `json:"keys"`
	}
	if err := json.Unmarshal(report, &parsed); err != nil {
		t.Fatalf("HealthCheck returned invalid JSON: %v", err)
	}
	if parsed.Engine != "memdb" {
		t.Errorf("Expected engine memdb, got %s", parsed.Engine)
	}
	if parsed.Keys != 3 {
		t.Errorf("Expected 3 keys, got %d", parsed.Keys)
	}
}

// Iterators snapshot at creation time, so concurrent writes after the
// iterator exists must not show up in the iteration.
func TestIteratorSnapshotIsolation(t *testing.T) {
	database := New()
	defer database.Close()

	if err := database.Put([]byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	it, err := database.NewIterator()
	if err != nil {
		t.Fatalf("NewIterator failed: %v", err)
	}
	defer it.Release()

	if err := database.Put([]byte("k2"), []byte("v2")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := database.Delete([]byte("k1")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var keys [][]byte
	for it.Next() {
		keys = append(keys, append([]byte(nil), it.Key()...))
	}
	if len(keys) != 1 || !bytes.Equal(keys[0], []byte("k1")) {
		t.Errorf("Expected snapshot to contain only k1, got %q", keys)
	}
}

func BenchmarkMemDB(b *testing.B) {
	dbtesting.RunDatabaseBenchmarks(b, "memdb", New)
}

func BenchmarkGuardedMemDB(b *testing.B) {
	dbtesting.RunDatabaseBenchmarks(b, "guarded(memdb)", func() db.IDatabase {
		return guarded.New(New())
	})
}

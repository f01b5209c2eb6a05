package client

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/gkvlabs/gKV/lib/db"
	"github.com/gkvlabs/gKV/lib/db/engines/memdb"
	"github.com/gkvlabs/gKV/lib/db/guarded"
	dbtesting "github.com/gkvlabs/gKV/lib/db/testing"
	"github.com/gkvlabs/gKV/rpc/common"
	"github.com/gkvlabs/gKV/rpc/serializer"
	"github.com/gkvlabs/gKV/rpc/server"
)

// loopbackTransport short-circuits the network: every Send is handled by a
// real server adapter over a real serializer, so the full message round trip
// is exercised without sockets.
type loopbackTransport struct {
	adapter    server.IRPCServerAdapter
	database   db.IDatabase
	serializer serializer.IRPCSerializer
	closed     bool
}

func newLoopbackTransport(database db.IDatabase, s serializer.IRPCSerializer) *loopbackTransport {
	return &loopbackTransport{
		adapter:    server.NewDatabaseServerAdapter(),
		database:   database,
		serializer: s,
	}
}

func (t *loopbackTransport) Connect(common.ClientConfig) error { return nil }

func (t *loopbackTransport) Send(_ uint64, data []byte) ([]byte, error) {
	if t.closed {
		return nil, fmt.Errorf("transport closed")
	}
	var req common.Message
	if err := t.serializer.Deserialize(data, &req); err != nil {
		return nil, err
	}
	resp := t.adapter.Handle(&req, t.database)
	return t.serializer.Serialize(*resp)
}

func (t *loopbackTransport) Close() error {
	t.closed = true
	return nil
}

func newLoopbackDatabase(t *testing.T, backend db.IDatabase) db.IDatabase {
	t.Helper()
	s := serializer.NewBinarySerializer()
	remote, err := NewRPCDatabase(1, common.ClientConfig{}, newLoopbackTransport(backend, s), s)
	if err != nil {
		t.Fatalf("failed to create RPC database: %v", err)
	}
	return remote
}

// The remote client must behave like any other db.IDatabase, with one
// exception: Close only affects the client, not the backend. The shared
// conformance suite covers everything up to Close semantics, so the backend
// is recreated per subtest via the factory.
func TestRPCDatabaseConformance(t *testing.T) {
	dbtesting.RunDatabaseTests(t, "rpc", func() db.IDatabase {
		return newLoopbackDatabase(t, memdb.New())
	})
}

func TestRPCDatabaseErrorCodes(t *testing.T) {
	remote := newLoopbackDatabase(t, memdb.New())
	defer remote.Close()

	_, err := remote.Get([]byte("missing"))
	if err == nil {
		t.Fatal("Expected error for missing key")
	}
	if !db.IsNotFound(err) {
		t.Errorf("Expected not-found classification to survive the wire, got %v", err)
	}
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("Expected errors.Is match on ErrKeyNotFound, got %v", err)
	}
}

func TestRPCDatabaseCorruptionSurvivesWire(t *testing.T) {
	// A guarded backend that latches corrupted must report a typed
	// corruption error to the remote client, and stay fenced for every
	// later request.
	backend := guarded.New(&writeFailDB{
		IDatabase: memdb.New(),
		err:       fmt.Errorf("checksum mismatch in block 7"),
	})
	remote := newLoopbackDatabase(t, backend)
	defer remote.Close()

	err := remote.Put([]byte("k"), []byte("v"))
	if err == nil {
		t.Fatal("Expected corruption error from failing shard")
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Code != db.RetCCorruption {
		t.Fatalf("Expected corruption code on client side, got %v", err)
	}
	if ok, _ := db.IsCorruption(err); !ok {
		t.Errorf("Expected client-side IsCorruption to classify %v", err)
	}

	// Reads are fenced too now, with the same frozen message
	_, err = remote.Get([]byte("k"))
	if !errors.As(err, &dbErr) || dbErr.Code != db.RetCCorruption {
		t.Fatalf("Expected shard to stay fenced, got %v", err)
	}
	if dbErr.Msg != "checksum mismatch in block 7" {
		t.Errorf("Expected frozen message, got %q", dbErr.Msg)
	}
}

// writeFailDB delegates everything to the embedded database except Put,
// which always fails with the configured error.
type writeFailDB struct {
	db.IDatabase
	err error
}

func (w *writeFailDB) Put([]byte, []byte) error { return w.err }

func TestRPCDatabaseIterator(t *testing.T) {
	remote := newLoopbackDatabase(t, memdb.New())
	defer remote.Close()

	for i := 0; i < 10; i++ {
		key := []byte(fmt.Sprintf("key-%02d", i))
		if err := remote.Put(key, []byte(fmt.Sprintf("value-%02d", i))); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	it, err := remote.NewIteratorWithStart([]byte("key-05"))
	if err != nil {
		t.Fatalf("NewIteratorWithStart failed: %v", err)
	}
	defer it.Release()

	var count int
	last := []byte(nil)
	for it.Next() {
		if last != nil && bytes.Compare(it.Key(), last) <= 0 {
			t.Errorf("Keys out of order: %s after %s", it.Key(), last)
		}
		last = append([]byte(nil), it.Key()...)
		count++
	}
	if err := it.Error(); err != nil {
		t.Fatalf("Iterator error: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected 5 entries from key-05 on, got %d", count)
	}

	// Exhaustion is sticky
	if it.Next() {
		t.Error("Expected Next to keep returning false after exhaustion")
	}
}

func TestRPCDatabaseIteratorAfterRelease(t *testing.T) {
	remote := newLoopbackDatabase(t, memdb.New())
	defer remote.Close()

	if err := remote.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	it, err := remote.NewIterator()
	if err != nil {
		t.Fatalf("NewIterator failed: %v", err)
	}
	it.Release()

	if it.Next() {
		t.Error("Expected Next to return false after Release")
	}
	if err := it.Error(); err != nil {
		t.Errorf("Expected no error after Release, got %v", err)
	}
}

func TestRPCDatabaseClientClose(t *testing.T) {
	backend := memdb.New()
	remote := newLoopbackDatabase(t, backend)

	if err := remote.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := remote.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// The client refuses further operations ...
	if err := remote.Put([]byte("k2"), []byte("v2")); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Expected ErrClosed after client close, got %v", err)
	}
	if err := remote.Close(); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Expected ErrClosed on double close, got %v", err)
	}

	// ... but the backend shard is untouched
	if value, err := backend.Get([]byte("k")); err != nil || !bytes.Equal(value, []byte("v")) {
		t.Errorf("Expected backend to keep serving after client close, got %s/%v", value, err)
	}
}

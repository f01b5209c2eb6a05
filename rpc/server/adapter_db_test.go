package server

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gkvlabs/gKV/lib/db"
	"github.com/gkvlabs/gKV/lib/db/engines/memdb"
	"github.com/gkvlabs/gKV/lib/db/guarded"
	"github.com/gkvlabs/gKV/rpc/common"
)

func TestAdapterBasicOperations(t *testing.T) {
	adapter := NewDatabaseServerAdapter()
	database := memdb.New()
	defer database.Close()

	// Put
	resp := adapter.Handle(common.NewPutRequest([]byte("k1"), []byte("v1")), database)
	if err := resp.GetError(); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Get
	resp = adapter.Handle(common.NewGetRequest([]byte("k1")), database)
	if err := resp.GetError(); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(resp.Value, []byte("v1")) {
		t.Errorf("Expected v1, got %s", resp.Value)
	}

	// Has
	resp = adapter.Handle(common.NewHasRequest([]byte("k1")), database)
	if err := resp.GetError(); err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !resp.Ok {
		t.Errorf("Expected Ok=true for existing key")
	}

	// Delete
	resp = adapter.Handle(common.NewDeleteRequest([]byte("k1")), database)
	if err := resp.GetError(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	resp = adapter.Handle(common.NewHasRequest([]byte("k1")), database)
	if resp.Ok {
		t.Errorf("Expected Ok=false after delete")
	}

	// Health
	resp = adapter.Handle(common.NewHealthRequest(), database)
	if err := resp.GetError(); err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if len(resp.Value) == 0 {
		t.Errorf("Expected a health report")
	}
}

func TestAdapterGetMissingKey(t *testing.T) {
	adapter := NewDatabaseServerAdapter()
	database := memdb.New()
	defer database.Close()

	resp := adapter.Handle(common.NewGetRequest([]byte("missing")), database)
	err := resp.GetError()
	if err == nil {
		t.Fatal("Expected error for missing key")
	}
	if !db.IsNotFound(err) {
		t.Errorf("Expected a not-found error, got %v", err)
	}
}

func TestAdapterIteratorFlow(t *testing.T) {
	adapter := NewDatabaseServerAdapter()
	database := memdb.New()
	defer database.Close()

	for _, key := range []string{"a/1", "a/2", "b/1"} {
		if resp := adapter.Handle(common.NewPutRequest([]byte(key), []byte("v-"+key)), database); resp.GetError() != nil {
			t.Fatalf("Put failed: %v", resp.GetError())
		}
	}

	// Create iterator over the "a/" prefix
	resp := adapter.Handle(common.NewIterNewRequest(nil, []byte("a/")), database)
	if err := resp.GetError(); err != nil {
		t.Fatalf("IterNew failed: %v", err)
	}
	id := resp.ID
	if id == 0 {
		t.Fatal("Expected a non-zero iterator handle")
	}

	// Drain the iterator
	var keys []string
	for {
		resp = adapter.Handle(common.NewIterNextRequest(id), database)
		if err := resp.GetError(); err != nil {
			t.Fatalf("IterNext failed: %v", err)
		}
		if !resp.Ok {
			break
		}
		keys = append(keys, string(resp.Key))
	}
	if len(keys) != 2 || keys[0] != "a/1" || keys[1] != "a/2" {
		t.Errorf("Unexpected iteration result: %v", keys)
	}

	// No deferred error
	resp = adapter.Handle(common.NewIterErrRequest(id), database)
	if err := resp.GetError(); err != nil {
		t.Errorf("IterErr reported: %v", err)
	}

	// Release, then the handle is gone
	adapter.Handle(common.NewIterReleaseRequest(id), database)
	resp = adapter.Handle(common.NewIterNextRequest(id), database)
	if resp.GetError() == nil {
		t.Error("Expected error for released iterator handle")
	}
}

func TestAdapterUnknownIterator(t *testing.T) {
	adapter := NewDatabaseServerAdapter()
	database := memdb.New()
	defer database.Close()

	resp := adapter.Handle(common.NewIterNextRequest(999), database)
	if resp.GetError() == nil {
		t.Error("Expected error for unknown iterator handle")
	}

	// Releasing an unknown handle is a no-op
	resp = adapter.Handle(common.NewIterReleaseRequest(999), database)
	if err := resp.GetError(); err != nil {
		t.Errorf("Release of unknown handle failed: %v", err)
	}
}

func TestAdapterUnsupportedMessageType(t *testing.T) {
	adapter := NewDatabaseServerAdapter()
	database := memdb.New()
	defer database.Close()

	resp := adapter.Handle(&common.Message{MsgType: common.MsgTCustom}, database)
	if resp.MsgType != common.MsgTError {
		t.Errorf("Expected error response, got %s", resp.MsgType)
	}
}

func TestAdapterNilDatabase(t *testing.T) {
	adapter := NewDatabaseServerAdapter()

	resp := adapter.Handle(common.NewGetRequest([]byte("k")), nil)
	if resp.MsgType != common.MsgTError {
		t.Errorf("Expected error response, got %s", resp.MsgType)
	}
}

// Corruption reported by a shard backend must reach the client with its
// return code intact, and the shard must stay fenced afterwards.
func TestAdapterCorruptionFencing(t *testing.T) {
	adapter := NewDatabaseServerAdapter()
	corruptionErr := db.NewCorruptionError("bad magic in segment 3")
	database := guarded.New(&corruptDB{err: corruptionErr})

	resp := adapter.Handle(common.NewPutRequest([]byte("k"), []byte("v")), database)
	err := resp.GetError()
	if err == nil {
		t.Fatal("Expected corruption error")
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Code != db.RetCCorruption {
		t.Fatalf("Expected corruption code, got %v", err)
	}

	// Even reads fail now, with the same frozen message
	resp = adapter.Handle(common.NewGetRequest([]byte("k")), database)
	err = resp.GetError()
	if err == nil {
		t.Fatal("Expected the shard to stay fenced")
	}
	if !errors.As(err, &dbErr) || dbErr.Code != db.RetCCorruption {
		t.Fatalf("Expected corruption code on later request, got %v", err)
	}
	if dbErr.Msg != "bad magic in segment 3" {
		t.Errorf("Expected frozen message, got %q", dbErr.Msg)
	}
}

// corruptDB fails every operation with a fixed error.
type corruptDB struct {
	err error
}

func (c *corruptDB) Has([]byte) (bool, error)          { return false, c.err }
func (c *corruptDB) Get([]byte) ([]byte, error)        { return nil, c.err }
func (c *corruptDB) Put([]byte, []byte) error          { return c.err }
func (c *corruptDB) Delete([]byte) error               { return c.err }
func (c *corruptDB) Close() error                      { return c.err }
func (c *corruptDB) HealthCheck() ([]byte, error)      { return nil, c.err }
func (c *corruptDB) NewIterator() (db.IIterator, error) { return nil, c.err }
func (c *corruptDB) NewIteratorWithStart([]byte) (db.IIterator, error) {
	return nil, c.err
}
func (c *corruptDB) NewIteratorWithPrefix([]byte) (db.IIterator, error) {
	return nil, c.err
}
func (c *corruptDB) NewIteratorWithStartAndPrefix([]byte, []byte) (db.IIterator, error) {
	return nil, c.err
}

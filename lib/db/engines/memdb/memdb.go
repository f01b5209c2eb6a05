package memdb

import (
	"bytes"
	"encoding/json"
	"sort"
	"sync/atomic"

	"github.com/gkvlabs/gKV/lib/db"
	"github.com/gkvlabs/gKV/lib/db/util"
	"github.com/puzpuzpuz/xsync/v3"
)

// memImpl implements db.IDatabase on top of a concurrent hash map.
// Iterators operate on a snapshot of the matching entries taken at
// creation time, so they are unaffected by concurrent writes.
type memImpl struct {
	data   *xsync.MapOf[string, []byte]
	closed atomic.Bool
}

// New creates a new empty in-memory database.
//
// Thread-safety: the returned database is safe for concurrent use.
func New() db.IDatabase {
	return &memImpl{
		data: xsync.NewMapOf[string, []byte](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see db/interface.go)
// --------------------------------------------------------------------------

func (m *memImpl) Has(key []byte) (bool, error) {
	if m.closed.Load() {
		return false, db.ErrClosed
	}
	_, ok := m.data.Load(string(key))
	return ok, nil
}

func (m *memImpl) Get(key []byte) ([]byte, error) {
	if m.closed.Load() {
		return nil, db.ErrClosed
	}
	value, ok := m.data.Load(string(key))
	if !ok {
		return nil, db.ErrKeyNotFound
	}

	// return a copy so callers cannot mutate the stored value
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (m *memImpl) Put(key []byte, value []byte) error {
	if m.closed.Load() {
		return db.ErrClosed
	}

	// copy the value to prevent aliasing with the caller's buffer
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	m.data.Store(string(key), valueCopy)
	return nil
}

func (m *memImpl) Delete(key []byte) error {
	if m.closed.Load() {
		return db.ErrClosed
	}
	m.data.Delete(string(key))
	return nil
}

func (m *memImpl) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return db.ErrClosed
	}
	m.data.Clear()
	return nil
}

func (m *memImpl) HealthCheck() ([]byte, error) {
	if m.closed.Load() {
		return nil, db.ErrClosed
	}

	// sample the current value sizes for the report
	histogram := util.NewSizeHistogram()
	var sizes []float64
	m.data.Range(func(_ string, value []byte) bool {
		histogram.AddSample(len(value))
		sizes = append(sizes, float64(len(value)))
		return true
	})

	report := struct {
		Engine          string     `json:"engine"`
		Keys            int        `json:"keys"`
		ValueSizes      util.Stats `json:"value_sizes"`
		MedianValueSize int        `json:"median_value_size"`
	}{
		Engine:          "memdb",
		Keys:            m.data.Size(),
		ValueSizes:      util.NewStats(sizes),
		MedianValueSize: histogram.MedianEstimate(),
	}
	return json.Marshal(report)
}

// --------------------------------------------------------------------------
// Iterator Factory
// --------------------------------------------------------------------------

func (m *memImpl) NewIterator() (db.IIterator, error) {
	return m.NewIteratorWithStartAndPrefix(nil, nil)
}

func (m *memImpl) NewIteratorWithStart(start []byte) (db.IIterator, error) {
	return m.NewIteratorWithStartAndPrefix(start, nil)
}

func (m *memImpl) NewIteratorWithPrefix(prefix []byte) (db.IIterator, error) {
	return m.NewIteratorWithStartAndPrefix(nil, prefix)
}

func (m *memImpl) NewIteratorWithStartAndPrefix(start, prefix []byte) (db.IIterator, error) {
	if m.closed.Load() {
		return nil, db.ErrClosed
	}
	return db.NewSliceIterator(m.snapshot(start, prefix)), nil
}

// snapshot collects all entries matching the start and prefix bounds,
// sorted in ascending key order. Keys and values are copied.
func (m *memImpl) snapshot(start, prefix []byte) []db.KVPair {
	var pairs []db.KVPair

	m.data.Range(func(key string, value []byte) bool {
		keyBytes := []byte(key)
		if len(prefix) > 0 && !bytes.HasPrefix(keyBytes, prefix) {
			return true
		}
		if len(start) > 0 && bytes.Compare(keyBytes, start) < 0 {
			return true
		}

		valueCopy := make([]byte, len(value))
		copy(valueCopy, value)
		pairs = append(pairs, db.KVPair{Key: keyBytes, Value: valueCopy})
		return true
	})

	sort.Slice(pairs, func(i, j int) bool {
		return bytes.Compare(pairs[i].Key, pairs[j].Key) < 0
	})

	return pairs
}

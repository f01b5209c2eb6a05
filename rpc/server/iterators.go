package server

import (
	"sync/atomic"

	"github.com/gkvlabs/gKV/lib/db"
	"github.com/puzpuzpuz/xsync/v3"
)

// iteratorRegistry holds the open server-side iterators of one shard.
// Clients drive the iterators via IterNext/IterErr/IterRelease messages
// addressed by the handle returned from IterNew.
type iteratorRegistry struct {
	iterators *xsync.MapOf[uint64, db.IIterator]
	nextID    atomic.Uint64
}

func newIteratorRegistry() *iteratorRegistry {
	return &iteratorRegistry{
		iterators: xsync.NewMapOf[uint64, db.IIterator](),
	}
}

// register stores the iterator and returns its handle.
func (r *iteratorRegistry) register(it db.IIterator) uint64 {
	id := r.nextID.Add(1)
	r.iterators.Store(id, it)
	return id
}

// get looks up the iterator for a handle.
func (r *iteratorRegistry) get(id uint64) (db.IIterator, bool) {
	return r.iterators.Load(id)
}

// release removes the iterator and frees its resources.
// Releasing an unknown handle is a no-op.
func (r *iteratorRegistry) release(id uint64) {
	if it, ok := r.iterators.LoadAndDelete(id); ok {
		it.Release()
	}
}

// size returns the number of open iterators.
func (r *iteratorRegistry) size() int {
	return r.iterators.Size()
}

package db

// --------------------------------------------------------------------------
// Key-Value Pair
// --------------------------------------------------------------------------

// KVPair is a single key-value pair, used wherever a range of entries is
// materialized (snapshot iterators, lookup results, wire messages).
type KVPair struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

// --------------------------------------------------------------------------
// Slice-Backed Iterator
// --------------------------------------------------------------------------

// NewSliceIterator creates an iterator over a materialized, already sorted
// list of pairs. It is used by backends that take a snapshot of their
// matching entries at iterator-creation time.
func NewSliceIterator(pairs []KVPair) IIterator {
	return &sliceIterator{pairs: pairs, index: -1}
}

type sliceIterator struct {
	pairs []KVPair
	index int
}

func (it *sliceIterator) Next() bool {
	if it.index+1 >= len(it.pairs) {
		it.index = len(it.pairs)
		return false
	}
	it.index++
	return true
}

func (it *sliceIterator) Error() error {
	return nil
}

func (it *sliceIterator) Key() []byte {
	if it.index < 0 || it.index >= len(it.pairs) {
		return nil
	}
	return it.pairs[it.index].Key
}

func (it *sliceIterator) Value() []byte {
	if it.index < 0 || it.index >= len(it.pairs) {
		return nil
	}
	return it.pairs[it.index].Value
}

func (it *sliceIterator) Release() {
	it.pairs = nil
	it.index = 0
}

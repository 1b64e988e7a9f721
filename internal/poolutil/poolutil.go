// Package poolutil pools the scratch collections the extractor allocates
// once per snapshot/frame, to keep a large load or export from
// forcing one GC-visible allocation per item.
package poolutil

import "sync"

// IDSlicePool pools []uint64-backed identity ID scratch slices used while
// accumulating frame and snapshot ID lists during export (pkg/extractor).
var IDSlicePool = sync.Pool{
	New: func() interface{} {
		s := make([]uint64, 0, 32)
		return &s
	},
}

// GetIDSlice returns a zero-length scratch slice from the pool.
func GetIDSlice() *[]uint64 {
	s := IDSlicePool.Get().(*[]uint64)
	*s = (*s)[:0]
	return s
}

// PutIDSlice returns s to the pool.
func PutIDSlice(s *[]uint64) {
	IDSlicePool.Put(s)
}

// SetPool pools map[uint64]struct{} scratch sets used for membership tests
// over an identity-ID population, e.g. pkg/extractor's pruning variant
// testing whether an edge's endpoints fall inside the exported subset.
var SetPool = sync.Pool{
	New: func() interface{} {
		return make(map[uint64]struct{}, 32)
	},
}

// GetSet returns an emptied scratch set from the pool.
func GetSet() map[uint64]struct{} {
	m := SetPool.Get().(map[uint64]struct{})
	for k := range m {
		delete(m, k)
	}
	return m
}

// PutSet returns m to the pool.
func PutSet(m map[uint64]struct{}) {
	SetPool.Put(m)
}

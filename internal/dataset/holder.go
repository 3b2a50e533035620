package dataset

import "sync/atomic"

// Holder publishes the current Dataset snapshot to concurrent readers.
// A reload builds a new Dataset and swaps it in; readers that already took
// a snapshot keep using the old one.
type Holder struct {
	current atomic.Pointer[Dataset]
	version atomic.Uint64
}

// NewHolder returns a Holder serving ds as version 1.
func NewHolder(ds *Dataset) *Holder {
	h := &Holder{}
	h.current.Store(ds)
	h.version.Store(1)
	return h
}

// Load returns the current snapshot.
func (h *Holder) Load() *Dataset {
	return h.current.Load()
}

// Version returns the number of snapshots published so far.
func (h *Holder) Version() uint64 {
	return h.version.Load()
}

// Swap publishes ds and returns its version.
func (h *Holder) Swap(ds *Dataset) uint64 {
	h.current.Store(ds)
	return h.version.Add(1)
}

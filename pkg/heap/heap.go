// Package heap implements TLC's allocation table: a map from allocation id
// to MemoryHandle, a monotonically increasing id counter, per-object
// refcount and mark-flag storage, and the minor-GC candidate list.
//
// Grounded on the teacher's pkg/codegen/runtime.go (Obj.mark, inc_ref,
// dec_ref, the FreeNode free list) and pkg/memory/genref.go
// (GenRefContext's id-indexed Alloc/Deref lifecycle) — see DESIGN.md.
package heap

import (
	"fmt"

	"github.com/barnii77/tlcrt/pkg/rterr"
	"github.com/barnii77/tlcrt/pkg/value"
)

// AllocID uniquely identifies a heap object for the lifetime of a Heap.
// Ids start at 1 and are never reused (spec.md §3 invariant 4).
type AllocID uint64

const markedBit uint8 = 1 << 0

// MemoryHandle is a heap object: a variable-length array of Values plus
// the bookkeeping the two collectors need. No field is exported; refcount
// and the mark bit may only change through Heap and package gc.
type MemoryHandle struct {
	id       AllocID
	data     []value.Value
	refCount int32
	flags    uint8
}

// ID returns the handle's allocation id.
func (h *MemoryHandle) ID() AllocID { return h.id }

// Len returns the number of cells in the handle's data array.
func (h *MemoryHandle) Len() int { return len(h.data) }

// RefCount returns the handle's current reference count. Exposed for
// pkg/rtcheck and tests; mutation only happens via Heap.IncRef/DecRef.
func (h *MemoryHandle) RefCount() int32 { return h.refCount }

// Marked reports whether the major-GC mark bit is set.
func (h *MemoryHandle) Marked() bool { return h.flags&markedBit != 0 }

// SetMarked sets or clears the major-GC mark bit. Only package gc calls
// this.
func (h *MemoryHandle) SetMarked(marked bool) {
	if marked {
		h.flags |= markedBit
	} else {
		h.flags &^= markedBit
	}
}

// Cells returns the handle's data array. The returned slice aliases the
// handle's storage and must not be mutated by callers outside this
// package; package gc uses it read-only to scan outgoing references.
func (h *MemoryHandle) Cells() []value.Value { return h.data }

// Cell returns the value at index i without bounds checking; callers must
// have already validated i.
func (h *MemoryHandle) Cell(i int64) value.Value { return h.data[i] }

// SetCell overwrites the value at index i without bounds checking or
// refcount adjustment; callers (pkg/tlcrt) are responsible for the
// decref-old/incref-new discipline before calling this.
func (h *MemoryHandle) SetCell(i int64, v value.Value) { h.data[i] = v }

// Push appends v to the handle's data array without refcount adjustment.
func (h *MemoryHandle) Push(v value.Value) { h.data = append(h.data, v) }

// PopLast removes and returns the last cell without refcount adjustment.
// ok is false if the array was empty.
func (h *MemoryHandle) PopLast() (v value.Value, ok bool) {
	n := len(h.data)
	if n == 0 {
		return value.Value{}, false
	}
	v = h.data[n-1]
	h.data = h.data[:n-1]
	return v, true
}

// Heap is the allocation table: AllocID -> *MemoryHandle, a monotonic id
// counter, and the minor-GC candidate list.
type Heap struct {
	objects    map[AllocID]*MemoryHandle
	nextID     AllocID
	candidates []AllocID
}

// New creates an empty heap. The first Alloc returns id 1.
func New() *Heap {
	return &Heap{
		objects: make(map[AllocID]*MemoryHandle),
		nextID:  1,
	}
}

// Alloc creates a MemoryHandle of size zero-valued (INTEGER(0)) cells,
// assigns it the next allocation id, and inserts it into the heap.
// Refcount starts at 0 — the result is not rooted until the caller stores
// it into a reference slot. Fails with ErrInvalidSize when size < 0.
func (heap *Heap) Alloc(size int64) (*MemoryHandle, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: alloc size %d", rterr.ErrInvalidSize, size)
	}
	h := &MemoryHandle{
		id:   heap.nextID,
		data: make([]value.Value, size),
	}
	heap.objects[h.id] = h
	heap.nextID++
	return h, nil
}

// Get looks up a handle by allocation id.
func (heap *Heap) Get(id AllocID) (*MemoryHandle, bool) {
	h, ok := heap.objects[id]
	return h, ok
}

// Delete removes a handle from the heap map. It is a no-op if the id is
// already absent.
func (heap *Heap) Delete(id AllocID) {
	delete(heap.objects, id)
}

// Len returns the number of live heap objects.
func (heap *Heap) Len() int { return len(heap.objects) }

// IDs returns every live allocation id. Order is unspecified, matching
// spec.md's "keys unique, unordered" description of the heap map.
func (heap *Heap) IDs() []AllocID {
	ids := make([]AllocID, 0, len(heap.objects))
	for id := range heap.objects {
		ids = append(ids, id)
	}
	return ids
}

// EnqueueCandidate appends id to the minor-GC candidate list. Duplicates
// are permitted (spec.md §3): minor GC re-checks the live refcount before
// acting on any entry.
func (heap *Heap) EnqueueCandidate(id AllocID) {
	heap.candidates = append(heap.candidates, id)
}

// DrainCandidates returns the current candidate list and clears it.
func (heap *Heap) DrainCandidates() []AllocID {
	drained := heap.candidates
	heap.candidates = nil
	return drained
}

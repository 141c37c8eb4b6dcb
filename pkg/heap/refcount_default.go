//go:build !no_minor_gc

package heap

// RefCountingEnabled reports whether the minor-GC front-end is compiled
// in. Mirrors the tinygo pattern of selecting a GC backend at compile time
// via a build tag (see _examples/other_examples/*tinygo*gc_*.go) — here the
// choice is refcounting-enabled vs. refcounting-elided, not which GC
// algorithm runs.
const RefCountingEnabled = true

// IncRef increments the refcount of the object at id. No-op if id is not
// present (defensive: callers already validate the handle before this is
// reached, but a stale id must never panic here).
func (heap *Heap) IncRef(id AllocID) {
	if h, ok := heap.objects[id]; ok {
		h.refCount++
	}
}

// DecRef decrements the refcount of the object at id. When the count
// drops to zero or below, id is appended to the candidate list; the object
// is not destroyed here — destruction is deferred to the next MinorGC
// (spec.md §4.C "Decref contract").
func (heap *Heap) DecRef(id AllocID) {
	h, ok := heap.objects[id]
	if !ok {
		return
	}
	h.refCount--
	if h.refCount <= 0 {
		heap.EnqueueCandidate(id)
	}
}

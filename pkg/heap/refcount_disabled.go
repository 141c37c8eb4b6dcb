//go:build no_minor_gc

package heap

// RefCountingEnabled reports whether the minor-GC front-end is compiled
// in. See refcount_default.go for the enabled variant.
const RefCountingEnabled = false

// IncRef is a no-op when the minor-GC front-end is elided at build time
// (spec.md §4.E). Refcounts stay at their zero value forever; major GC is
// unaffected since it never consults them.
func (heap *Heap) IncRef(id AllocID) {}

// DecRef is a no-op when the minor-GC front-end is elided at build time
// (spec.md §4.E). The candidate list is never appended to in this build.
func (heap *Heap) DecRef(id AllocID) {}

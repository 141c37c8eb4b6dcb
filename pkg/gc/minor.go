package gc

import "github.com/barnii77/tlcrt/pkg/heap"

// MinorGC drains the heap's candidate list and releases every candidate
// whose live refcount is still <= 0 (spec.md §4.F/§4.G). Re-checking the
// refcount matters: an object can be enqueued by a decref and then have
// its count raised again by a later incref before MinorGC ever runs.
//
// If the minor-GC front-end is compiled out (build tag no_minor_gc),
// RefCountingEnabled is false and this is a no-op — the candidate list is
// never populated in that build.
func MinorGC(h *heap.Heap) {
	if !heap.RefCountingEnabled {
		return
	}

	candidates := h.DrainCandidates()
	if len(candidates) == 0 {
		return
	}

	// The candidate list may contain duplicate ids (spec.md §3 says this
	// is harmless for the list itself), but release's decouple phase
	// decrefs every surviving id's children exactly once per entry in its
	// input — feeding it a duplicated id would double-decref that id's
	// children. Dedupe here, once, before building the release set.
	seen := make(map[heap.AllocID]bool, len(candidates))
	var garbage []heap.AllocID
	for _, id := range candidates {
		if seen[id] {
			continue
		}
		seen[id] = true
		obj, ok := h.Get(id)
		if !ok {
			continue
		}
		if obj.RefCount() <= 0 {
			garbage = append(garbage, id)
		}
	}

	release(h, garbage)
}

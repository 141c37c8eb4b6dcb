// Package gc implements the two collectors that sit on top of pkg/heap:
// MinorGC, a refcount-candidate sweep, and Major, an incremental
// mark-and-sweep state machine. Both share the release procedure in this
// file (spec.md §4.F).
package gc

import (
	"github.com/barnii77/tlcrt/pkg/heap"
)

// release performs the three-phase garbage release spec.md §4.F mandates:
// filter out ids no longer present, decouple every surviving id's
// outgoing HANDLE cells (decref targets that still exist), then destroy
// every surviving id. The two-phase decouple-then-destroy split lets
// cycles inside ids have their peers' refcounts updated before any member
// is removed.
//
// ids must not contain duplicates; callers that build ids from a source
// that may repeat (the minor-GC candidate list) must deduplicate first —
// releasing the same id twice would double-decref its children.
func release(h *heap.Heap, ids []heap.AllocID) {
	surviving := ids[:0:0]
	for _, id := range ids {
		if _, ok := h.Get(id); ok {
			surviving = append(surviving, id)
		}
	}

	for _, id := range surviving {
		obj, _ := h.Get(id)
		for _, cell := range obj.Cells() {
			if !cell.IsHandle() {
				continue
			}
			target := heap.AllocID(cell.AllocID())
			if _, ok := h.Get(target); ok {
				h.DecRef(target)
			}
		}
	}

	for _, id := range surviving {
		h.Delete(id)
	}
}

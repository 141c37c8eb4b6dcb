package gc

import (
	"github.com/barnii77/tlcrt/pkg/heap"
	"github.com/barnii77/tlcrt/pkg/roots"
	"github.com/barnii77/tlcrt/pkg/value"
)

// Phase is a state in the incremental major-GC state machine (spec.md
// §4.H). The machine advances Idle -> ResetFlags -> SeedRoots -> Mark ->
// Finalize -> Idle, suspending mid-Mark whenever a step budget runs out.
type Phase uint8

const (
	Idle Phase = iota
	ResetFlags
	SeedRoots
	Mark
	Finalize
)

// Major is the incremental mark-and-sweep collector. All fields are
// persistent across suspended Run calls; a Major must not be shared
// between heaps.
//
// Grounded on the teacher's pkg/codegen/runtime.go (scan_tag / the
// recursive scanner) for the mark step itself, and pkg/memory/scc.go's
// TarjanState for the shape of a cursor that survives suspension across
// calls — the Tarjan-specific bookkeeping (lowlink, on-stack) has no
// counterpart here since this is plain reachability marking, not cycle
// detection.
type Major struct {
	phase Phase

	visited      map[heap.AllocID]bool
	frontier     []heap.AllocID
	nextFrontier []heap.AllocID
	// queued mirrors membership in frontier and nextFrontier combined, so
	// a handle already scheduled for this or the next wave is never
	// appended twice.
	queued map[heap.AllocID]bool

	handleCursor int
	cellCursor   int
}

// NewMajor creates a Major collector in its Idle phase.
func NewMajor() *Major {
	return &Major{}
}

// Phase reports the collector's current state, mainly for tests and
// diagnostics.
func (m *Major) Phase() Phase { return m.phase }

// enqueueFrontier schedules target into the wave currently being
// assembled, provided it is neither already visited nor already queued.
func (m *Major) enqueueFrontier(target heap.AllocID) {
	if m.visited[target] || m.queued[target] {
		return
	}
	m.frontier = append(m.frontier, target)
	m.queued[target] = true
}

// enqueueNextFrontier schedules target into the wave that will run after
// the one currently being scanned.
func (m *Major) enqueueNextFrontier(target heap.AllocID) {
	if m.visited[target] || m.queued[target] {
		return
	}
	m.nextFrontier = append(m.nextFrontier, target)
	m.queued[target] = true
}

// reseedIntoCurrentWave is the write-barrier-free interleaving strategy
// chosen for concurrent mutation during an in-progress Mark (spec.md
// §4.H open question): rather than instrument every mutator write with a
// barrier, it re-walks the current root set and folds any root-held
// handle not already visited or queued directly into the wave now being
// scanned, marking it visited immediately since the wave is what's
// actively being processed. This can rescan a handle the mutator has
// since made unreachable, but never misses one the mutator newly rooted.
//
// Called unconditionally at the top of every Run call while phase ==
// Mark, and again at every wave swap: a call can resume mid-handle and
// drain straight through to Finalize without ever reaching a wave-start
// boundary, so the top-of-call reseed is the one that must never be
// skipped — the wave-swap reseed is complementary, not a substitute.
func (m *Major) reseedIntoCurrentWave(rs *roots.Set) {
	rs.ForEachVar(func(_ int64, v value.Value) {
		if !v.IsHandle() {
			return
		}
		target := heap.AllocID(v.AllocID())
		if m.visited[target] || m.queued[target] {
			return
		}
		m.frontier = append(m.frontier, target)
		m.visited[target] = true
		m.queued[target] = true
	})
}

// Run advances the collector by at most maxSteps marking steps, where a
// step is one array-cell scan during the Mark phase. A negative maxSteps
// means run to completion in this call. ResetFlags, SeedRoots and
// Finalize are unbudgeted: once Run enters one of those phases it always
// finishes it before returning or consuming the step budget. A call with
// maxSteps == 0 stops in Mark and destroys nothing.
func (m *Major) Run(h *heap.Heap, rs *roots.Set, maxSteps int64) {
	unlimited := maxSteps < 0
	var steps int64

	// Every call that resumes an in-progress Mark re-walks the root set
	// first, regardless of where handleCursor/cellCursor currently sit.
	// Gating this on "start of a fresh wave" alone misses the case where
	// a call is entered and exhausts mid-handle, drains straight through
	// to an empty nextFrontier, and jumps to Finalize without ever
	// starting a new wave — an object rooted between the pausing call and
	// this one would then never be reseeded at all.
	if m.phase == Mark {
		m.reseedIntoCurrentWave(rs)
	}

	for {
		switch m.phase {
		case Idle:
			m.visited = make(map[heap.AllocID]bool)
			m.frontier = nil
			m.nextFrontier = nil
			m.queued = make(map[heap.AllocID]bool)
			m.handleCursor = 0
			m.cellCursor = 0
			m.phase = ResetFlags

		case ResetFlags:
			for _, id := range h.IDs() {
				if obj, ok := h.Get(id); ok {
					obj.SetMarked(false)
				}
			}
			m.phase = SeedRoots

		case SeedRoots:
			rs.ForEachVar(func(_ int64, v value.Value) {
				if v.IsHandle() {
					m.enqueueFrontier(heap.AllocID(v.AllocID()))
				}
			})
			m.phase = Mark
			m.handleCursor = 0
			m.cellCursor = 0

		case Mark:
			// A spent budget (always the case for maxSteps == 0) stops
			// here, so a zero-step call does no marking work and never
			// reaches Finalize.
			if !unlimited && steps >= maxSteps {
				return
			}

			// The current wave is exhausted once the handle cursor has
			// walked off the end of frontier — frontier itself is never
			// truncated as handleCursor advances, only replaced wholesale
			// at a wave swap.
			if m.handleCursor >= len(m.frontier) {
				if len(m.nextFrontier) == 0 {
					m.phase = Finalize
					continue
				}
				m.frontier, m.nextFrontier = m.nextFrontier, nil
				m.handleCursor = 0
				m.cellCursor = 0
			}

			if m.handleCursor == 0 && m.cellCursor == 0 {
				for _, id := range m.frontier {
					m.visited[id] = true
					delete(m.queued, id)
				}
				m.reseedIntoCurrentWave(rs)
			}

			for m.handleCursor < len(m.frontier) {
				id := m.frontier[m.handleCursor]
				obj, ok := h.Get(id)
				if !ok {
					// Filter posture (spec.md §4.F): an id major GC still
					// references may have been destroyed by an
					// intervening MinorGC. Skip it rather than fault.
					m.handleCursor++
					m.cellCursor = 0
					continue
				}
				if m.cellCursor == 0 {
					obj.SetMarked(true)
				}
				cells := obj.Cells()
				for m.cellCursor < len(cells) {
					cell := cells[m.cellCursor]
					m.cellCursor++
					steps++
					if cell.IsHandle() {
						m.enqueueNextFrontier(heap.AllocID(cell.AllocID()))
					}
					if !unlimited && steps >= maxSteps {
						return
					}
				}
				m.handleCursor++
				m.cellCursor = 0
			}

		case Finalize:
			var garbage []heap.AllocID
			for _, id := range h.IDs() {
				if obj, ok := h.Get(id); ok && !obj.Marked() {
					garbage = append(garbage, id)
				}
			}
			release(h, garbage)
			m.visited = nil
			m.frontier = nil
			m.nextFrontier = nil
			m.queued = nil
			m.handleCursor = 0
			m.cellCursor = 0
			m.phase = Idle
			return
		}
	}
}

package tlcrt_test

import (
	"testing"

	"github.com/barnii77/tlcrt/pkg/tlcrt"
	"github.com/barnii77/tlcrt/pkg/value"
)

// These scenarios exercise the mutator surface end to end, the way a
// small interpreter driving Context would: allocate, wire references
// through variable and array slots, run one or both collectors, and
// check what survives.

func TestScenarioSimpleAllocAndFree(t *testing.T) {
	c := tlcrt.New()
	h, err := c.Alloc(1)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := c.Assign(0, h); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := c.Erase(0); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	c.MinorGC()
	if c.HeapLen() != 0 {
		t.Fatalf("HeapLen() = %d, want 0 after erasing the only reference", c.HeapLen())
	}
}

func TestScenarioSharedReferenceSurvivesOneErase(t *testing.T) {
	c := tlcrt.New()
	h, _ := c.Alloc(0)
	if err := c.Assign(0, h); err != nil {
		t.Fatal(err)
	}
	if err := c.Assign(1, h); err != nil {
		t.Fatal(err)
	}
	if err := c.Erase(0); err != nil {
		t.Fatal(err)
	}
	c.MinorGC()
	if c.HeapLen() != 1 {
		t.Fatalf("HeapLen() = %d, want 1: second variable still holds a reference", c.HeapLen())
	}
	if err := c.Erase(1); err != nil {
		t.Fatal(err)
	}
	c.MinorGC()
	if c.HeapLen() != 0 {
		t.Fatalf("HeapLen() = %d, want 0 after the last reference is erased", c.HeapLen())
	}
}

func TestScenarioReassigningVariableReleasesOldValue(t *testing.T) {
	c := tlcrt.New()
	first, _ := c.Alloc(0)
	second, _ := c.Alloc(0)
	if err := c.Assign(0, first); err != nil {
		t.Fatal(err)
	}
	if err := c.Assign(0, second); err != nil {
		t.Fatal(err)
	}
	c.MinorGC()
	if c.HeapLen() != 1 {
		t.Fatalf("HeapLen() = %d, want 1: reassignment must release the superseded value", c.HeapLen())
	}
	got, _ := c.Read(second, 0)
	_ = got // second holds no cells; this read's result is not checked
	if _, err := c.Read(first, 0); err == nil {
		t.Fatal("first array should have been collected and no longer resolvable")
	}
}

func TestScenarioDeepChainCollectedTogether(t *testing.T) {
	c := tlcrt.New()
	root, _ := c.Alloc(1)
	prev := root
	const depth = 20
	for i := 0; i < depth; i++ {
		next, _ := c.Alloc(1)
		if err := c.Write(prev, 0, next); err != nil {
			t.Fatal(err)
		}
		prev = next
	}
	if err := c.Assign(0, root); err != nil {
		t.Fatal(err)
	}
	if c.HeapLen() != depth+1 {
		t.Fatalf("HeapLen() = %d, want %d", c.HeapLen(), depth+1)
	}
	if err := c.Erase(0); err != nil {
		t.Fatal(err)
	}
	// Each MinorGC releases one link; the decref of the next link queues
	// it for the following MinorGC.
	for i := 0; i <= depth; i++ {
		c.MinorGC()
	}
	if c.HeapLen() != 0 {
		t.Fatalf("HeapLen() = %d, want 0: dropping the head must collect the whole chain, one link per MinorGC", c.HeapLen())
	}
}

func TestScenarioMinorGCCannotBreakCycleMajorGCCan(t *testing.T) {
	c := tlcrt.New()
	a, _ := c.Alloc(1)
	b, _ := c.Alloc(1)
	if err := c.Write(a, 0, b); err != nil {
		t.Fatal(err)
	}
	if err := c.Write(b, 0, a); err != nil {
		t.Fatal(err)
	}
	if err := c.Assign(0, a); err != nil {
		t.Fatal(err)
	}
	if err := c.Erase(0); err != nil {
		t.Fatal(err)
	}
	c.MinorGC()
	if c.HeapLen() != 2 {
		t.Fatalf("HeapLen() = %d, want 2: minor GC alone must not break a self-sustaining cycle", c.HeapLen())
	}
	c.MajorGC(-1)
	if c.HeapLen() != 0 {
		t.Fatalf("HeapLen() = %d, want 0: major GC must collect the unrooted cycle", c.HeapLen())
	}
}

func TestScenarioMajorGCZeroStepsDestroysNothing(t *testing.T) {
	c := tlcrt.New()
	a, _ := c.Alloc(1)
	b, _ := c.Alloc(1)
	if err := c.Write(a, 0, b); err != nil {
		t.Fatal(err)
	}
	if err := c.Write(b, 0, a); err != nil {
		t.Fatal(err)
	}
	if err := c.Assign(0, a); err != nil {
		t.Fatal(err)
	}
	if err := c.Erase(0); err != nil {
		t.Fatal(err)
	}
	// The cycle is now unrooted and would be swept by a full run, but a
	// zero-step call must never reach the destroy phase.
	c.MajorGC(0)
	if c.HeapLen() != 2 {
		t.Fatalf("HeapLen() = %d, want 2: MajorGC(0) must not destroy any object", c.HeapLen())
	}
}

func TestScenarioMajorGCIsIdempotentOnStableHeap(t *testing.T) {
	c := tlcrt.New()
	rooted, _ := c.Alloc(0)
	if err := c.Assign(0, rooted); err != nil {
		t.Fatal(err)
	}
	c.Alloc(0) // unrooted, collected by the first pass

	c.MajorGC(-1)
	if c.HeapLen() != 1 {
		t.Fatalf("HeapLen() = %d, want 1 after the first pass", c.HeapLen())
	}

	c.MajorGC(-1)
	if c.HeapLen() != 1 {
		t.Fatalf("HeapLen() = %d, want 1: a second full pass over a stable heap must change nothing", c.HeapLen())
	}
	if !c.VarIsDefined(0) {
		t.Fatal("the surviving root's variable slot must be untouched by the second pass")
	}
}

// TestScenarioMajorGCDoesNotSweepObjectRootedMidPauseWithoutWaveSwap is
// the exact repro of a bug once present here: resuming a paused Mark
// whose remaining cells are all INTEGER (so no wave swap ever happens
// before Finalize) used to skip reseeding the root set entirely,
// destroying a variable rooted between the pausing and resuming calls.
func TestScenarioMajorGCDoesNotSweepObjectRootedMidPauseWithoutWaveSwap(t *testing.T) {
	c := tlcrt.New()
	a, _ := c.Alloc(1)
	if err := c.Assign(0, a); err != nil {
		t.Fatal(err)
	}

	c.MajorGC(1) // pauses mid-handle; a's only cell is INTEGER(0)

	late, _ := c.Alloc(1)
	if err := c.Assign(1, late); err != nil {
		t.Fatal(err)
	}

	c.MajorGC(-1) // must not destroy late

	if _, err := c.Read(late, 0); err != nil {
		t.Fatalf("Read on late failed, meaning it was incorrectly swept: %v", err)
	}
}

func TestScenarioFunctionSlotsUnaffectedByGC(t *testing.T) {
	c := tlcrt.New()
	if err := c.DefineFunction(0, "body"); err != nil {
		t.Fatal(err)
	}
	c.MinorGC()
	c.MajorGC(-1)
	if !c.FunIsDefined(0) {
		t.Fatal("function slots must survive both collectors: they are not GC roots or garbage")
	}
}

func TestScenarioIncrementalMajorGCInterleavedWithMutation(t *testing.T) {
	c := tlcrt.New()
	a, _ := c.Alloc(1)
	b, _ := c.Alloc(0)
	if err := c.Write(a, 0, b); err != nil {
		t.Fatal(err)
	}
	if err := c.Assign(0, a); err != nil {
		t.Fatal(err)
	}

	late, _ := c.Alloc(0)

	c.MajorGC(1) // start an incremental pass, do a little work
	if err := c.Assign(1, late); err != nil {
		t.Fatal(err)
	}
	c.MajorGC(-1) // finish it

	if c.HeapLen() != 3 {
		t.Fatalf("HeapLen() = %d, want 3: object rooted mid-pass must survive", c.HeapLen())
	}
}

func TestScenarioArrayOfHandlesCollectedElementwise(t *testing.T) {
	c := tlcrt.New()
	arr, _ := c.Alloc(3)
	if err := c.Assign(0, arr); err != nil {
		t.Fatal(err)
	}
	var members []value.Value
	for i := int64(0); i < 3; i++ {
		m, _ := c.Alloc(0)
		if err := c.Write(arr, i, m); err != nil {
			t.Fatal(err)
		}
		members = append(members, m)
	}
	if c.HeapLen() != 4 {
		t.Fatalf("HeapLen() = %d, want 4", c.HeapLen())
	}

	if err := c.Write(arr, 1, value.Int(0)); err != nil {
		t.Fatal(err)
	}
	c.MinorGC()
	if c.HeapLen() != 3 {
		t.Fatalf("HeapLen() = %d, want 3: only the overwritten member should be collected", c.HeapLen())
	}

	if err := c.Erase(0); err != nil {
		t.Fatal(err)
	}
	// The first MinorGC releases the array, which queues its members; the
	// second releases them.
	c.MinorGC()
	c.MinorGC()
	if c.HeapLen() != 0 {
		t.Fatalf("HeapLen() = %d, want 0: dropping the array must release all remaining members", c.HeapLen())
	}
}

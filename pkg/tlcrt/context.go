// Package tlcrt wires the heap, root set and collectors behind the single
// mutator surface TLC's evaluator drives (spec.md §6). Context is the sole
// owner of all mutable runtime state; it performs no internal locking,
// matching the teacher's single-threaded Evaluator (see DESIGN.md).
package tlcrt

import (
	"fmt"

	"github.com/barnii77/tlcrt/pkg/gc"
	"github.com/barnii77/tlcrt/pkg/heap"
	"github.com/barnii77/tlcrt/pkg/roots"
	"github.com/barnii77/tlcrt/pkg/rterr"
	"github.com/barnii77/tlcrt/pkg/value"
)

// Context bundles a heap, its root set, and the incremental major
// collector attached to that heap. Every mutator below implements the
// precondition-check-before-mutation discipline spec.md §6 requires:
// operations either fully apply or return an error leaving state
// unchanged.
type Context struct {
	heap  *heap.Heap
	roots *roots.Set
	major *gc.Major
}

// New creates a Context with an empty heap and root set.
func New() *Context {
	return &Context{
		heap:  heap.New(),
		roots: roots.New(),
		major: gc.NewMajor(),
	}
}

// resolve validates that v is a HANDLE pointing at a live heap object and
// returns it. Every mutator that dereferences a Value calls this first.
func (c *Context) resolve(v value.Value) (*heap.MemoryHandle, error) {
	if !v.IsHandle() {
		return nil, fmt.Errorf("%w: expected HANDLE, got %s", rterr.ErrInvalidHandle, v.Tag)
	}
	obj, ok := c.heap.Get(heap.AllocID(v.AllocID()))
	if !ok {
		return nil, fmt.Errorf("%w: alloc id %d not live", rterr.ErrInvalidHandle, v.AllocID())
	}
	return obj, nil
}

// Alloc creates a new heap array of size cells, all initialized to
// INTEGER(0). The returned Value is a HANDLE with refcount 0; it is not
// rooted until the caller stores it into a reference slot.
func (c *Context) Alloc(size int64) (value.Value, error) {
	obj, err := c.heap.Alloc(size)
	if err != nil {
		return value.Value{}, err
	}
	return value.FromHandle(uint64(obj.ID())), nil
}

// Read returns the value stored at index i of the array v points to.
func (c *Context) Read(v value.Value, i int64) (value.Value, error) {
	obj, err := c.resolve(v)
	if err != nil {
		return value.Value{}, err
	}
	if i < 0 || i >= int64(obj.Len()) {
		return value.Value{}, fmt.Errorf("%w: index %d, length %d", rterr.ErrIndexOutOfBounds, i, obj.Len())
	}
	return obj.Cell(i), nil
}

// Write stores newVal at index i of the array v points to, decref-ing the
// value it replaces and incref-ing newVal if it is a HANDLE. The
// precondition (handle validity, bounds) is checked before either
// refcount changes.
func (c *Context) Write(v value.Value, i int64, newVal value.Value) error {
	obj, err := c.resolve(v)
	if err != nil {
		return err
	}
	if i < 0 || i >= int64(obj.Len()) {
		return fmt.Errorf("%w: index %d, length %d", rterr.ErrIndexOutOfBounds, i, obj.Len())
	}
	old := obj.Cell(i)
	obj.SetCell(i, newVal)
	c.decrefIfHandle(old)
	c.increfIfHandle(newVal)
	return nil
}

// Push appends val to the array v points to, incref-ing val if it is a
// HANDLE.
func (c *Context) Push(v value.Value, val value.Value) error {
	obj, err := c.resolve(v)
	if err != nil {
		return err
	}
	obj.Push(val)
	c.increfIfHandle(val)
	return nil
}

// Pop removes and returns the last cell of the array v points to,
// decref-ing it if it was a HANDLE. Fails with ErrEmptyPop if the array
// is empty.
func (c *Context) Pop(v value.Value) (value.Value, error) {
	obj, err := c.resolve(v)
	if err != nil {
		return value.Value{}, err
	}
	popped, ok := obj.PopLast()
	if !ok {
		return value.Value{}, fmt.Errorf("%w: alloc id %d", rterr.ErrEmptyPop, v.AllocID())
	}
	c.decrefIfHandle(popped)
	return popped, nil
}

// Assign stores val into variable slot id, decref-ing the value it
// replaces (or the implicit INTEGER(0) if the slot was undefined — a
// zero-value Value already reads as INTEGER(0) since Integer is the Tag
// zero value, so no branch is needed to get this right) and incref-ing
// val if it is a HANDLE. This also defines the slot if it was not
// already.
func (c *Context) Assign(id int64, val value.Value) error {
	old, _ := c.roots.GetVar(id)
	c.roots.SetVar(id, val)
	c.decrefIfHandle(old)
	c.increfIfHandle(val)
	return nil
}

// Erase removes variable slot id, decref-ing its value if it was a
// HANDLE. Fails with ErrUndefinedVariable if the slot was not defined.
func (c *Context) Erase(id int64) error {
	old, ok := c.roots.GetVar(id)
	if !ok {
		return fmt.Errorf("%w: var %d", rterr.ErrUndefinedVariable, id)
	}
	c.roots.DeleteVar(id)
	c.decrefIfHandle(old)
	return nil
}

// VarIsDefined reports whether variable slot id currently holds a value.
func (c *Context) VarIsDefined(id int64) bool {
	return c.roots.HasVar(id)
}

// DefineFunction stores fn (an opaque, caller-defined value never
// inspected or scanned by either collector) into function slot id.
func (c *Context) DefineFunction(id int64, fn any) error {
	c.roots.SetFunc(id, fn)
	return nil
}

// EraseFunction removes function slot id. Fails with ErrUndefinedFunction
// if the slot was not defined.
func (c *Context) EraseFunction(id int64) error {
	if !c.roots.HasFunc(id) {
		return fmt.Errorf("%w: func %d", rterr.ErrUndefinedFunction, id)
	}
	c.roots.DeleteFunc(id)
	return nil
}

// FunIsDefined reports whether function slot id currently holds a value.
func (c *Context) FunIsDefined(id int64) bool {
	return c.roots.HasFunc(id)
}

// MinorGC drains the refcount-candidate list and releases everything
// still unreferenced. A no-op when the minor-GC front-end is compiled out
// (build tag no_minor_gc).
func (c *Context) MinorGC() {
	gc.MinorGC(c.heap)
}

// MajorGC advances the incremental mark-and-sweep collector by at most
// maxSteps marking steps. A negative maxSteps runs the collector to
// completion in this call; otherwise Run may suspend mid-Mark and must be
// called again later to make further progress.
func (c *Context) MajorGC(maxSteps int64) {
	c.major.Run(c.heap, c.roots, maxSteps)
}

// MajorGCPhase reports the incremental collector's current phase, mainly
// for tests and diagnostics.
func (c *Context) MajorGCPhase() gc.Phase {
	return c.major.Phase()
}

// HeapLen returns the number of live heap objects. Exposed for tests and
// pkg/rtcheck.
func (c *Context) HeapLen() int {
	return c.heap.Len()
}

// RefCountingEnabled reports whether the minor-GC front-end is compiled
// in (build tag no_minor_gc flips this off). pkg/rtcheck uses this to
// skip refcount verification in builds where refcounts are never
// maintained.
func RefCountingEnabled() bool {
	return heap.RefCountingEnabled
}

// ForEachHeapObject calls fn once per live heap object with its
// allocation id, current refcount, and outgoing cells. Used by
// pkg/rtcheck to recompute expected refcounts independently of the
// running collectors.
func (c *Context) ForEachHeapObject(fn func(id uint64, refCount int32, cells []value.Value)) {
	for _, id := range c.heap.IDs() {
		obj, ok := c.heap.Get(id)
		if !ok {
			continue
		}
		fn(uint64(id), obj.RefCount(), obj.Cells())
	}
}

// ForEachRootVar calls fn once per defined variable slot.
func (c *Context) ForEachRootVar(fn func(id int64, v value.Value)) {
	c.roots.ForEachVar(fn)
}

func (c *Context) increfIfHandle(v value.Value) {
	if v.IsHandle() {
		c.heap.IncRef(heap.AllocID(v.AllocID()))
	}
}

func (c *Context) decrefIfHandle(v value.Value) {
	if v.IsHandle() {
		c.heap.DecRef(heap.AllocID(v.AllocID()))
	}
}

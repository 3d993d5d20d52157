package layout

import "github.com/wippyai/structview/registry"

type frameKind uint8

const (
	frameRoot frameKind = iota
	frameStruct
	frameUnion
	frameArray
	framePointer
)

type frame struct {
	base     uint64
	cursor   uint64
	size     int
	elemSize int
	index    int // completed elements of an array frame
	kind     frameKind
}

// Tracker follows the current address during a registry walk.
//
// A visitor calls Leaf for scalars, EnterAggregate, EnterArray or
// EnterPointer before returning Continue from the matching hook, and Exit
// from VisitExit. When it returns Skip it calls Advance or Leaf instead, so
// the skipped bytes are still accounted.
type Tracker struct {
	frames  []frame
	ptrSize int
}

// NewTracker starts a walk at base.
func NewTracker(base uint64, pointerSize int) *Tracker {
	return &Tracker{
		frames:  []frame{{kind: frameRoot, base: base, cursor: base}},
		ptrSize: pointerSize,
	}
}

func (t *Tracker) top() *frame {
	return &t.frames[len(t.frames)-1]
}

// Addr returns the address of the next member.
func (t *Tracker) Addr() uint64 {
	f := t.top()
	if f.kind == frameUnion {
		return f.base
	}
	return f.cursor
}

// Depth returns the number of open frames below the root.
func (t *Tracker) Depth() int {
	return len(t.frames) - 1
}

// PointerDepth returns how many followed pointers are open.
func (t *Tracker) PointerDepth() int {
	n := 0
	for _, f := range t.frames {
		if f.kind == framePointer {
			n++
		}
	}
	return n
}

// InArray reports whether the innermost frame is an array.
func (t *Tracker) InArray() bool {
	return t.top().kind == frameArray
}

// Index returns the index of the current element within the innermost
// array, or -1. Every Advance of the array frame, including the one made
// when a child frame exits, completes one element.
func (t *Tracker) Index() int {
	f := t.top()
	if f.kind != frameArray {
		return -1
	}
	return f.index
}

// Leaf returns the address of a scalar of size bytes and moves past it.
func (t *Tracker) Leaf(size int) uint64 {
	addr := t.Addr()
	t.Advance(size)
	return addr
}

// Advance moves the current position by n bytes. Inside a union the
// position never moves.
func (t *Tracker) Advance(n int) {
	f := t.top()
	switch f.kind {
	case frameUnion:
		return
	case frameArray:
		f.index++
	}
	f.cursor += uint64(n)
}

// EnterAggregate opens a struct or union frame at the current address.
func (t *Tracker) EnterAggregate(agg registry.Aggregate) uint64 {
	addr := t.Addr()
	kind := frameStruct
	if agg.Union {
		kind = frameUnion
	}
	t.frames = append(t.frames, frame{kind: kind, base: addr, cursor: addr, size: agg.Size})
	return addr
}

// EnterArray opens an array frame for m at the current address.
func (t *Tracker) EnterArray(m registry.Member) uint64 {
	addr := t.Addr()
	t.frames = append(t.frames, frame{kind: frameArray, base: addr, cursor: addr, elemSize: m.ElemSize()})
	return addr
}

// EnterPointer opens a frame at target for the pointee of the pointer at
// the current address.
func (t *Tracker) EnterPointer(target uint64) {
	t.frames = append(t.frames, frame{kind: framePointer, base: target, cursor: target, size: t.ptrSize})
}

// Exit closes the innermost frame and moves its parent past it. The root
// frame is never closed.
func (t *Tracker) Exit() {
	if len(t.frames) == 1 {
		return
	}
	f := t.frames[len(t.frames)-1]
	t.frames = t.frames[:len(t.frames)-1]

	switch f.kind {
	case frameArray:
		t.Advance(int(f.cursor - f.base))
	default:
		t.Advance(f.size)
	}
}

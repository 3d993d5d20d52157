package layout

import (
	"strconv"
	"strings"

	"github.com/wippyai/structview/errors"
	"github.com/wippyai/structview/registry"
)

// Leaf is one scalar, pointer, padding run or collapsed aggregate of a
// flattened type.
type Leaf struct {
	Path     string
	TypeName string
	Offset   uint64
	Size     int
	Kind     registry.Primitive
	Pointer  bool
	Padding  bool
}

// Flatten walks typeName and returns its leaves with offsets relative to
// the root. Pointers are leaves and are never followed. Aggregates nested
// deeper than maxDepth become a single leaf; maxDepth 0 means no limit.
func Flatten(reg *registry.Registry, rootName, typeName string, maxDepth int) ([]Leaf, error) {
	f := &flattener{
		t:        NewTracker(0, reg.PointerSize()),
		ptrSize:  reg.PointerSize(),
		maxDepth: maxDepth,
	}
	if !reg.Visit(rootName, typeName, f) {
		return nil, errors.New(errors.PhaseLayout, errors.KindUnknownType).
			Path(rootName).
			Type(typeName).
			Detail("type could not be walked").
			Build()
	}
	return f.leaves, nil
}

type flattener struct {
	t        *Tracker
	path     []string
	leaves   []Leaf
	ptrSize  int
	maxDepth int
	depth    int
}

var _ registry.Visitor = (*flattener)(nil)

func (f *flattener) name(m registry.Member) string {
	if f.t.InArray() {
		return m.Name + "[" + strconv.Itoa(f.t.Index()) + "]"
	}
	return m.Name
}

func (f *flattener) add(name string, l Leaf) {
	l.Path = strings.Join(append(f.path, name), ".")
	f.leaves = append(f.leaves, l)
}

func (f *flattener) VisitScalar(m registry.Member, a registry.Alias) registry.Result {
	name := f.name(m)
	size := m.ElemSize()
	f.add(name, Leaf{
		TypeName: m.TypeName,
		Offset:   f.t.Leaf(size),
		Size:     size,
		Kind:     a.Kind,
	})
	return registry.Continue
}

func (f *flattener) VisitAggregateEnter(m registry.Member, agg registry.Aggregate) registry.Result {
	name := f.name(m)
	if f.maxDepth > 0 && f.depth >= f.maxDepth {
		f.add(name, Leaf{
			TypeName: agg.Name,
			Offset:   f.t.Leaf(agg.Size),
			Size:     agg.Size,
		})
		return registry.Skip
	}
	f.t.EnterAggregate(agg)
	f.path = append(f.path, name)
	f.depth++
	return registry.Continue
}

func (f *flattener) VisitArrayEnter(m registry.Member) registry.Result {
	if m.Padding {
		f.add(m.Name, Leaf{
			TypeName: m.TypeName,
			Offset:   f.t.Leaf(m.Size),
			Size:     m.Size,
			Kind:     m.Type.Prim,
			Padding:  true,
		})
		return registry.Skip
	}
	f.t.EnterArray(m)
	return registry.Continue
}

func (f *flattener) VisitPointer(m registry.Member, a registry.Alias) registry.Result {
	f.add(f.name(m), Leaf{
		TypeName: m.TypeName,
		Offset:   f.t.Leaf(f.ptrSize),
		Size:     f.ptrSize,
		Kind:     registry.Pointer,
		Pointer:  true,
	})
	return registry.Skip
}

func (f *flattener) VisitExit(m registry.Member) registry.Result {
	if !f.t.InArray() {
		f.path = f.path[:len(f.path)-1]
		f.depth--
	}
	f.t.Exit()
	return registry.Continue
}

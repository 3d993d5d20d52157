package registry

// Result tells the traversal engine how to proceed after a hook.
type Result uint8

const (
	// Continue proceeds normally.
	Continue Result = iota
	// Skip declines a pointer, aggregate or array subtree. The subtree's
	// exit hook is not called. On scalar and exit hooks it equals Continue.
	Skip
	// Abort stops the whole traversal; Visit returns false.
	Abort
)

var resultNames = [...]string{
	Continue: "continue",
	Skip:     "skip",
	Abort:    "abort",
}

func (r Result) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return "unknown"
}

// Visitor receives callbacks while a type is walked.
//
// Array elements are dispatched with the array member itself, so
// m.ArraySize is non-zero for every element.
type Visitor interface {
	VisitScalar(m Member, a Alias) Result
	VisitAggregateEnter(m Member, agg Aggregate) Result
	VisitArrayEnter(m Member) Result
	VisitPointer(m Member, a Alias) Result
	VisitExit(m Member) Result
}

// Funcs adapts plain functions to Visitor. Nil hooks return Continue,
// except Pointer, which returns Skip so cyclic types terminate.
type Funcs struct {
	Scalar         func(m Member, a Alias) Result
	AggregateEnter func(m Member, agg Aggregate) Result
	ArrayEnter     func(m Member) Result
	Pointer        func(m Member, a Alias) Result
	Exit           func(m Member) Result
}

var _ Visitor = Funcs{}

func (f Funcs) VisitScalar(m Member, a Alias) Result {
	if f.Scalar == nil {
		return Continue
	}
	return f.Scalar(m, a)
}

func (f Funcs) VisitAggregateEnter(m Member, agg Aggregate) Result {
	if f.AggregateEnter == nil {
		return Continue
	}
	return f.AggregateEnter(m, agg)
}

func (f Funcs) VisitArrayEnter(m Member) Result {
	if f.ArrayEnter == nil {
		return Continue
	}
	return f.ArrayEnter(m)
}

func (f Funcs) VisitPointer(m Member, a Alias) Result {
	if f.Pointer == nil {
		return Skip
	}
	return f.Pointer(m, a)
}

func (f Funcs) VisitExit(m Member) Result {
	if f.Exit == nil {
		return Continue
	}
	return f.Exit(m)
}

// Visit walks typeName under the member name rootName. It returns false if
// a hook aborted or a type could not be resolved.
//
// The engine has no depth limit: following a pointer of a self-referential
// type recurses until the visitor returns Skip from VisitPointer.
// Registry locks are held only for individual lookups, so hooks may call
// back into the registry.
func (r *Registry) Visit(rootName, rootTypeName string, v Visitor) bool {
	r.mu.RLock()
	ref, size, ok := r.resolveLocked(rootTypeName)
	r.mu.RUnlock()
	if !ok {
		return false
	}
	root := Member{
		Name:     rootName,
		TypeName: ref.Name,
		Type:     ref,
		Size:     size,
	}
	return r.dispatch(root, v)
}

func (r *Registry) dispatch(m Member, v Visitor) bool {
	switch m.Type.Kind {
	case RefAlias, RefPrimitive:
		a, ok := r.aliasOf(m.Type)
		if !ok {
			return false
		}
		if a.IsPointer() {
			return r.visitPointer(m, a, v)
		}
		return v.VisitScalar(m, a) != Abort

	case RefPointer:
		a := Alias{
			Name:   m.Type.Name,
			Kind:   Pointer,
			Size:   r.ptrSize,
			Target: m.Type,
		}
		return r.visitPointer(m, a, v)

	case RefAggregate:
		return r.visitAggregate(m, v)

	default:
		return false
	}
}

func (r *Registry) visitPointer(m Member, a Alias, v Visitor) bool {
	switch v.VisitPointer(m, a) {
	case Abort:
		return false
	case Skip:
		return true
	}

	elem := a.Target.Elem
	if elem == nil {
		return false
	}
	size, ok := r.refSize(*elem)
	if !ok {
		return false
	}
	target := Member{
		Name:     "*" + m.Name,
		TypeName: elem.Name,
		Type:     *elem,
		Size:     size,
	}
	if !r.dispatch(target, v) {
		return false
	}
	return v.VisitExit(m) != Abort
}

func (r *Registry) visitAggregate(m Member, v Visitor) bool {
	r.mu.RLock()
	stored, ok := r.aggregates[m.Type.Name]
	var agg Aggregate
	if ok {
		agg = stored.snapshot()
	}
	r.mu.RUnlock()
	if !ok {
		return false
	}

	switch v.VisitAggregateEnter(m, agg) {
	case Abort:
		return false
	case Skip:
		return true
	}

	for _, child := range agg.Members {
		if child.ArraySize == 0 {
			if !r.dispatch(child, v) {
				return false
			}
			continue
		}

		switch v.VisitArrayEnter(child) {
		case Abort:
			return false
		case Skip:
			continue
		}
		for i := 0; i < child.ArraySize; i++ {
			if !r.dispatch(child, v) {
				return false
			}
		}
		if v.VisitExit(child) == Abort {
			return false
		}
	}
	return v.VisitExit(m) != Abort
}

// refSize returns the current size of the type behind ref.
func (r *Registry) refSize(ref TypeRef) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch ref.Kind {
	case RefAlias:
		if a, ok := r.aliases[ref.Name]; ok {
			return a.Size, true
		}
	case RefPrimitive:
		if a, ok := r.prims[ref.Name]; ok {
			return a.Size, true
		}
	case RefAggregate:
		if a, ok := r.aggregates[ref.Name]; ok {
			return a.Size, true
		}
	case RefPointer:
		if r.refResolvesLocked(ref) {
			return r.ptrSize, true
		}
	}
	return 0, false
}

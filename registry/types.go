package registry

import "strings"

// RefKind discriminates TypeRef.
type RefKind uint8

const (
	RefInvalid RefKind = iota
	RefPrimitive
	RefAlias
	RefAggregate
	RefPointer
)

var refKindNames = [...]string{
	RefInvalid:   "invalid",
	RefPrimitive: "primitive",
	RefAlias:     "alias",
	RefAggregate: "aggregate",
	RefPointer:   "pointer",
}

func (k RefKind) String() string {
	if int(k) < len(refKindNames) {
		return refKindNames[k]
	}
	return "unknown"
}

// TypeRef is a type name resolved to the namespace it lives in.
// Name is always the spelling the reference was resolved from; Elem is set
// only for RefPointer.
type TypeRef struct {
	Elem *TypeRef
	Name string
	Kind RefKind
	Prim Primitive
}

func (t TypeRef) String() string {
	return t.Name
}

// IsPointer reports whether t denotes a pointer to another named type.
func (t TypeRef) IsPointer() bool {
	return t.Kind == RefPointer
}

// Alias is a named type resolving to a primitive kind, optionally a pointer
// to another named type. Primitives are exposed as aliases with empty owner.
type Alias struct {
	Target TypeRef
	Owner  string
	Name   string
	ID     uint64
	Size   int
	Bits   int
	Kind   Primitive
}

// Pointee returns the pointed-to type name, or "" for non-pointer aliases.
func (a Alias) Pointee() string {
	if a.Target.Kind == RefPointer && a.Target.Elem != nil {
		return a.Target.Elem.Name
	}
	return ""
}

// IsPointer reports whether a is a pointer alias.
func (a Alias) IsPointer() bool {
	return a.Target.Kind == RefPointer
}

// Member is one entry of an aggregate or one function argument.
// ArraySize 0 means scalar; Size is the accounted total in bytes.
type Member struct {
	Type      TypeRef
	Name      string
	TypeName  string
	ArraySize int
	Size      int
	Padding   bool
}

// Count returns the number of elements, 1 for scalars.
func (m Member) Count() int {
	if m.ArraySize > 0 {
		return m.ArraySize
	}
	return 1
}

// ElemSize returns the size of a single element.
func (m Member) ElemSize() int {
	return m.Size / m.Count()
}

// Aggregate is a struct or union with an accumulated size.
type Aggregate struct {
	Owner   string
	Name    string
	Members []Member
	ID      uint64
	Size    int
	Union   bool
}

// Member returns the member with the given name.
func (a Aggregate) Member(name string) (Member, bool) {
	for _, m := range a.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// CallConv is a function calling convention.
type CallConv uint8

const (
	Cdecl CallConv = iota
	Stdcall
	Thiscall
	Fastcall
	Delphi
)

var callConvNames = [...]string{
	Cdecl:    "cdecl",
	Stdcall:  "stdcall",
	Thiscall: "thiscall",
	Fastcall: "fastcall",
	Delphi:   "delphi",
}

func (c CallConv) String() string {
	if int(c) < len(callConvNames) {
		return callConvNames[c]
	}
	return "unknown"
}

// ParseCallConv maps a convention name (case-insensitive, optional leading
// underscores) to a CallConv. The empty string is cdecl.
func ParseCallConv(s string) (CallConv, bool) {
	s = strings.ToLower(strings.TrimLeft(s, "_"))
	if s == "" {
		return Cdecl, true
	}
	for i, name := range callConvNames {
		if name == s {
			return CallConv(i), true
		}
	}
	return Cdecl, false
}

// Function is descriptive metadata about a callable.
// Return is nil for void functions.
type Function struct {
	Return     *TypeRef
	Owner      string
	Name       string
	ReturnType string
	Args       []Member
	ID         uint64
	CallConv   CallConv
	NoReturn   bool
}

func (a *Alias) snapshot() Alias {
	return *a
}

func (a *Aggregate) snapshot() Aggregate {
	cp := *a
	cp.Members = append([]Member(nil), a.Members...)
	return cp
}

func (f *Function) snapshot() Function {
	cp := *f
	cp.Args = append([]Member(nil), f.Args...)
	if f.Return != nil {
		ret := *f.Return
		cp.Return = &ret
	}
	return cp
}

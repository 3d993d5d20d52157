package registry

import "unsafe"

// Primitive is the closed set of machine-level kinds every alias resolves to.
type Primitive uint8

const (
	Int8 Primitive = iota
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Dsint // pointer-width signed integer
	Duint // pointer-width unsigned integer
	Pointer
	Float
	Double

	primitiveCount
)

// HostPointerSize is the pointer width of the running process.
const HostPointerSize = int(unsafe.Sizeof(uintptr(0)))

var primitiveNames = [...]string{
	Int8:    "int8",
	Uint8:   "uint8",
	Int16:   "int16",
	Uint16:  "uint16",
	Int32:   "int32",
	Uint32:  "uint32",
	Int64:   "int64",
	Uint64:  "uint64",
	Dsint:   "dsint",
	Duint:   "duint",
	Pointer: "pointer",
	Float:   "float",
	Double:  "double",
}

// fixed sizes; zero means pointer-width
var primitiveSizes = [...]int{
	Int8:    1,
	Uint8:   1,
	Int16:   2,
	Uint16:  2,
	Int32:   4,
	Uint32:  4,
	Int64:   8,
	Uint64:  8,
	Dsint:   0,
	Duint:   0,
	Pointer: 0,
	Float:   4,
	Double:  8,
}

func (p Primitive) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return "unknown"
}

// Valid reports whether p is one of the defined kinds.
func (p Primitive) Valid() bool {
	return p < primitiveCount
}

// Signed reports whether values of p carry a sign.
func (p Primitive) Signed() bool {
	switch p {
	case Int8, Int16, Int32, Int64, Dsint, Float, Double:
		return true
	default:
		return false
	}
}

func (p Primitive) IsFloat() bool {
	return p == Float || p == Double
}

// PointerWidth reports whether the size of p follows the target pointer size.
func (p Primitive) PointerWidth() bool {
	return p.Valid() && primitiveSizes[p] == 0
}

// Size returns the canonical byte size of p for the given pointer size.
func (p Primitive) Size(pointerSize int) int {
	if !p.Valid() {
		return 0
	}
	if s := primitiveSizes[p]; s != 0 {
		return s
	}
	return pointerSize
}

// primitiveSpellings maps canonical C and Windows spellings to kinds.
// "long" follows LLP64 (4 bytes).
var primitiveSpellings = []struct {
	names []string
	kind  Primitive
}{
	{kind: Int8, names: []string{"int8_t", "int8", "char", "byte", "bool", "signed char", "CHAR", "INT8"}},
	{kind: Uint8, names: []string{"uint8_t", "uint8", "uchar", "unsigned char", "ubyte", "UCHAR", "UINT8", "BYTE", "BOOLEAN"}},
	{kind: Int16, names: []string{"int16_t", "int16", "wchar_t", "char16_t", "short", "SHORT", "WCHAR"}},
	{kind: Uint16, names: []string{"uint16_t", "uint16", "ushort", "unsigned short", "USHORT", "WORD"}},
	{kind: Int32, names: []string{"int32_t", "int32", "int", "long", "INT", "INT32", "LONG", "BOOL"}},
	{kind: Uint32, names: []string{"uint32_t", "uint32", "unsigned int", "unsigned long", "UINT", "UINT32", "ULONG", "DWORD"}},
	{kind: Int64, names: []string{"int64_t", "int64", "long long", "LONGLONG", "INT64"}},
	{kind: Uint64, names: []string{"uint64_t", "uint64", "unsigned long long", "ULONGLONG", "UINT64", "QWORD", "DWORD64"}},
	{kind: Dsint, names: []string{"dsint", "intptr_t", "ptrdiff_t", "LONG_PTR", "INT_PTR"}},
	{kind: Duint, names: []string{"duint", "size_t", "uintptr_t", "SIZE_T", "ULONG_PTR", "UINT_PTR"}},
	{kind: Pointer, names: []string{"ptr", "pointer", "void*", "PVOID", "LPVOID"}},
	{kind: Float, names: []string{"float", "FLOAT"}},
	{kind: Double, names: []string{"double", "DOUBLE"}},
}

// PrimitiveNames returns every built-in spelling of kind.
func PrimitiveNames(kind Primitive) []string {
	for _, s := range primitiveSpellings {
		if s.kind == kind {
			return append([]string(nil), s.names...)
		}
	}
	return nil
}

func (r *Registry) setupPrimitives() {
	for _, s := range primitiveSpellings {
		for _, name := range s.names {
			r.prims[name] = &Alias{
				Name:   name,
				Kind:   s.kind,
				Size:   s.kind.Size(r.ptrSize),
				Target: TypeRef{Kind: RefPrimitive, Name: name, Prim: s.kind},
			}
		}
	}
}

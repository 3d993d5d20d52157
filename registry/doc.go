// Package registry stores C-like type layouts and walks them.
//
// A Registry holds four kinds of entries:
//
//	primitives  built-in spellings such as "char", "int", "size_t", "DWORD"
//	aliases     named primitives, bit-sized integers and pointer aliases
//	aggregates  structs and unions grown one member at a time
//	functions   return type, calling convention and argument list
//
// Type names are resolved once, when a member or argument is appended, into
// a TypeRef. A "T*" spelling whose base is known resolves to a pointer and
// gets a pointer alias owned by PointerOwner.
//
// # Sizes
//
// Aggregates keep a running size. A struct member adds its total size, a
// union member raises the size to the largest member. Sizeof never recurses.
// An explicit member offset past the current size inserts a "__padN" char
// array; an offset before it is rejected.
//
// # Traversal
//
// Visit calls a Visitor for every scalar, aggregate, array and pointer in
// declaration order. Returning Abort from any hook stops the walk. Returning
// Skip from VisitPointer declines to follow that pointer, which is how
// visitors bound the depth of self-referential types.
//
// # Ownership
//
// Every entry carries an owner. Clear removes all entries of one owner and
// invalidates builders that still point at them.
package registry

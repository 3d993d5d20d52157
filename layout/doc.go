// Package layout computes member offsets for registered types.
//
// The registry stores sizes only; offsets exist while a type is walked.
// Tracker does that bookkeeping for any registry.Visitor, Calculator
// produces a per-aggregate offset table, and Flatten lists every leaf of a
// type with its offset from the root.
//
// # Layout Rules
//
//   - Struct members follow each other with no implicit alignment.
//   - Union members all start at the union's base.
//   - Array elements are ElemSize apart.
//   - Padding inserted for explicit offsets is an ordinary char array
//     flagged as padding.
//
// # Usage
//
//	info, err := layout.NewCalculator(reg).Calculate("_FILETIME")
//	// info.Size, info.Fields[i].Offset
//
//	leaves, err := layout.Flatten(reg, "ft", "_FILETIME", 0)
package layout

// Package render dumps raw memory as a tree of typed values.
//
// A Dumper is a registry.Visitor that reads each scalar at the address a
// layout.Tracker computes and writes one line per value:
//
//	st: ST @0x1000
//	  a: char[3] @0x1000 = "abc"
//	  y: int @0x1003 = 42
//
// Pointers are printed with their value and followed up to MaxDepth
// levels. Null pointers are never followed.
package render

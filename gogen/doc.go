// Package gogen renders registered types as Go declarations using jennifer.
//
// Structs keep their registry layout: padding members become blank byte
// arrays, and a member whose natural Go type would be realigned is emitted
// as a byte array with its C type noted beside it. Unions become byte
// arrays of their size. Pointers are uintptr for 8-byte registries and
// uint32 for 4-byte ones, so generated layouts assume a 64-bit host.
//
// A Generator caches struct alignments; create a new one after the registry
// changes.
package gogen

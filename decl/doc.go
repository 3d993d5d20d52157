// Package decl loads type declarations from TOML files into a registry.
//
// A declaration file lists aliases, structs, unions and functions:
//
//	pointer_size = 8
//
//	[[alias]]
//	name = "HANDLE"
//	type = "void*"
//
//	[[struct]]
//	name = "_FILETIME"
//	member = [
//	    { name = "dwLowDateTime", type = "DWORD" },
//	    { name = "dwHighDateTime", type = "DWORD" },
//	]
//
//	[[function]]
//	name = "GetSystemTimeAsFileTime"
//	callconv = "stdcall"
//	arg = [{ name = "lpSystemTimeAsFileTime", type = "_FILETIME*" }]
//
// Aggregates may be declared in any order; members that embed another
// aggregate of the same file are filled after it. Every entry is registered
// under one owner, so Reload can replace a whole file at once. A file whose
// new contents fail to apply keeps its previous entries.
package decl

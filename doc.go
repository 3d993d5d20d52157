// Package structview models C-like type layout and walks raw memory by it.
//
// The module is built around a registry of primitive types, named aliases
// (including pointer aliases), structs and unions grown member by member, and
// functions with typed argument lists. The registry keeps running sizes for
// every aggregate and drives a visitor over any registered type, which is the
// basis of a debugger style "structure viewer".
//
// # Architecture Overview
//
//	structview/         Root package with the Memory interface
//	├── registry/       Types, sizes, traversal engine, owner lifecycle
//	├── layout/         Offset tracking and per-member layout tables
//	├── render/         Visitor that dumps memory as an indented tree
//	├── memory/         Memory adapters (byte slices, wazero linear memory)
//	├── decl/           TOML declaration files feeding the registry
//	├── witimport/      Component Model (WIT) types registered as C layouts
//	├── gogen/          Go mirror types generated from registered entries
//	├── errors/         Structured error types
//	└── cmd/structview  Command line and interactive viewer
//
// # Quick Start
//
//	reg := registry.New()
//
//	st, err := reg.BeginStruct("demo", "ST")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = st.AppendMember("a", "char", 3)
//	_ = st.AppendMember("y", "int", 0)
//
//	fmt.Println(reg.Sizeof("ST")) // 7
//
//	mem := memory.NewBytes(0x1000, raw)
//	err = render.Dump(reg, mem, os.Stdout, "st", "ST", 0x1000, render.Options{})
//
// # Ownership
//
// Every alias, aggregate and function is tagged with an owner. Clear evicts
// all entries of one owner at once, which is how a declaration file is
// reloaded. Built-in primitives have no owner and are never evicted.
//
// # Thread Safety
//
// Registry is safe for concurrent use. Visit holds the registry lock only
// for individual lookups, so visitors may call back into the registry.
package structview

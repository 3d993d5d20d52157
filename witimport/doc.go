// Package witimport registers WebAssembly Component Model types in a
// registry using their Canonical ABI layout.
//
// Records and tuples become structs whose members sit at their canonical
// offsets; alignment gaps become padding members. Variants, options and
// results become a struct holding a tag and a payload union. Strings and
// lists become {ptr, len} pairs of uint32_t, enums and flags become unsigned
// aliases of their storage width, and resource handles become uint32_t
// aliases.
//
//	reg := registry.New(registry.WithPointerSize(4))
//	im := witimport.New(reg, witimport.WithOwner("wasi:filesystem"))
//	if err := im.Import(descriptorStat); err != nil {
//	    return err
//	}
//
// Import is not atomic. A failed import may leave some types registered;
// Clear the importer's owner to remove them.
package witimport

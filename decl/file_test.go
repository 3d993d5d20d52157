package decl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wippyai/structview/errors"
	"github.com/wippyai/structview/registry"
)

const windowsDecls = `
pointer_size = 8

[[alias]]
name = "DWORD"
type = "unsigned int"

[[alias]]
name = "LPFILETIME"
pointee = "_FILETIME"

[[alias]]
name = "FLAGS"
type = "DWORD"
bits = 5

# Declared before the struct it embeds.
[[struct]]
name = "Wrapper"
member = [
    { name = "ft", type = "_FILETIME" },
    { name = "next", type = "Wrapper*" },
]

[[struct]]
name = "_FILETIME"
member = [
    { name = "dwLowDateTime", type = "DWORD" },
    { name = "dwHighDateTime", type = "DWORD" },
]

[[struct]]
name = "Header"
pad_to = 32
member = [
    { name = "magic", type = "char", array = 4 },
    { name = "length", type = "DWORD", offset = 8 },
]

[[union]]
name = "Value"
member = [
    { name = "i", type = "int" },
    { name = "d", type = "double" },
]

[[function]]
name = "GetSystemTimeAsFileTime"
callconv = "stdcall"
arg = [{ name = "lpSystemTimeAsFileTime", type = "LPFILETIME" }]

[[function]]
name = "ExitProcess"
callconv = "__stdcall"
noreturn = true
arg = [{ name = "uExitCode", type = "UINT" }]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndApply(t *testing.T) {
	path := writeFile(t, "windows.toml", windowsDecls)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Path != path || f.PointerSize != 8 {
		t.Errorf("file = %+v", f)
	}

	reg := registry.New(f.RegistryOptions()...)
	if err := f.Apply(reg, path); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	sizes := []struct {
		name string
		want int
	}{
		{"DWORD", 4},
		{"LPFILETIME", 8},
		{"FLAGS", 1},
		{"_FILETIME", 8},
		{"Wrapper", 16},
		{"Header", 32},
		{"Value", 8},
	}
	for _, tt := range sizes {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.Sizeof(tt.name); got != tt.want {
				t.Errorf("Sizeof(%s) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}

	flags, _ := reg.Alias("FLAGS")
	if flags.Bits != 5 || flags.Kind != registry.Uint32 {
		t.Errorf("FLAGS = %+v", flags)
	}

	hdr, _ := reg.Aggregate("Header")
	names := make([]string, len(hdr.Members))
	for i, m := range hdr.Members {
		names[i] = m.Name
	}
	want := []string{"magic", "__pad0", "length", "__pad1"}
	if len(names) != len(want) {
		t.Fatalf("Header members = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Header members = %v, want %v", names, want)
			break
		}
	}

	fn, ok := reg.Function("ExitProcess")
	if !ok || fn.CallConv != registry.Stdcall || !fn.NoReturn || fn.Return != nil {
		t.Errorf("ExitProcess = %+v", fn)
	}
	if owners := reg.Owners(); len(owners) != 2 || owners[1] != path {
		t.Errorf("owners = %v", owners)
	}
}

func TestApplyUnknownArgTypeRollsBack(t *testing.T) {
	f, err := Parse([]byte(`
[[alias]]
name = "COUNT"
type = "unsigned int"

[[struct]]
name = "S"
member = [{ name = "x", type = "COUNT" }]

[[function]]
name = "f"
arg = [{ name = "a", type = "Missing" }]
`))
	if err != nil {
		t.Fatal(err)
	}

	reg := registry.New()
	err = f.Apply(reg, "broken")
	if !errors.IsKind(err, errors.KindUnknownType) {
		t.Fatalf("Apply = %v, want unknown type", err)
	}
	if reg.Sizeof("COUNT") != 0 || reg.Sizeof("S") != 0 {
		t.Error("partial declarations should be rolled back")
	}
	if _, ok := reg.Function("f"); ok {
		t.Error("function should be rolled back")
	}
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind errors.Kind
	}{
		{
			name: "embedding cycle",
			src: `
[[struct]]
name = "A"
member = [{ name = "b", type = "B" }]

[[struct]]
name = "B"
member = [{ name = "a", type = "A" }]
`,
			kind: errors.KindInvalidArgument,
		},
		{
			name: "duplicate alias",
			src: `
[[alias]]
name = "X"
type = "int"

[[alias]]
name = "X"
type = "int"
`,
			kind: errors.KindDuplicateName,
		},
		{
			name: "alias of aggregate",
			src: `
[[struct]]
name = "S"
member = [{ name = "x", type = "int" }]

[[alias]]
name = "T"
type = "S"
`,
			kind: errors.KindInvalidArgument,
		},
		{
			name: "bits on unknown type",
			src: `
[[alias]]
name = "F"
type = "NOPE"
bits = 3
`,
			kind: errors.KindUnknownType,
		},
		{
			name: "bad callconv",
			src: `
[[function]]
name = "f"
callconv = "pascal"
`,
			kind: errors.KindInvalidArgument,
		},
		{
			name: "offset before size",
			src: `
[[struct]]
name = "S"
member = [
    { name = "a", type = "int" },
    { name = "b", type = "int", offset = 2 },
]
`,
			kind: errors.KindInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.src))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			reg := registry.New()
			err = f.Apply(reg, "test")
			if !errors.IsKind(err, tt.kind) {
				t.Fatalf("Apply = %v, want kind %s", err, tt.kind)
			}
			if len(reg.Owners()) != 0 {
				t.Errorf("owners left after failed apply: %v", reg.Owners())
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind errors.Kind
	}{
		{"syntax", "[[struct]\nname = ", errors.KindInvalidData},
		{"unknown key", "[[alias]]\nname = \"A\"\ntype = \"int\"\nsize = 4\n", errors.KindInvalidData},
		{"pointer size", "pointer_size = 2\n", errors.KindInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if !errors.IsKind(err, tt.kind) {
				t.Errorf("Parse = %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestApplyPointerSizeMismatch(t *testing.T) {
	f, err := Parse([]byte("pointer_size = 4\n"))
	if err != nil {
		t.Fatal(err)
	}
	reg := registry.New(registry.WithPointerSize(8))
	if err := f.Apply(reg, "x"); !errors.IsKind(err, errors.KindInvalidArgument) {
		t.Errorf("Apply = %v, want invalid argument", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.IsKind(err, errors.KindNotFound) {
		t.Errorf("Load = %v, want not found", err)
	}
}

func TestReloadReplacesEntries(t *testing.T) {
	path := writeFile(t, "types.toml", `
[[struct]]
name = "S"
member = [{ name = "a", type = "int" }]

[[alias]]
name = "OLD"
type = "int"
`)
	reg := registry.New()
	must(t, reg.RegisterAlias("other", "KEEP", registry.Int16))
	f := loadApplied(t, reg, path)
	if reg.Sizeof("S") != 4 || reg.Sizeof("OLD") != 4 {
		t.Fatal("first load did not register")
	}

	if err := os.WriteFile(path, []byte(`
[[struct]]
name = "S"
member = [
    { name = "a", type = "int" },
    { name = "b", type = "long long" },
]
`), 0o644); err != nil {
		t.Fatal(err)
	}
	next, err := Reload(reg, f)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if len(next.Structs[0].Members) != 2 {
		t.Errorf("Reload returned %+v", next.Structs)
	}
	if got := reg.Sizeof("S"); got != 12 {
		t.Errorf("Sizeof(S) after reload = %d, want 12", got)
	}
	if reg.Sizeof("OLD") != 0 {
		t.Error("OLD should be gone after reload")
	}
	if reg.Sizeof("KEEP") != 2 {
		t.Error("other owners must survive reload")
	}
}

func TestReloadFailureKeepsEntries(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		kind     errors.Kind
	}{
		{"syntax error", "[[alias]\n", errors.KindInvalidData},
		{"unknown type", "[[alias]]\nname = \"A\"\ntype = \"nosuchtype\"\n", errors.KindUnknownType},
		{"partial apply", `
[[alias]]
name = "A"
type = "short"

[[struct]]
name = "S"
member = [{ name = "x", type = "missing" }]
`, errors.KindUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "types.toml", `
[[alias]]
name = "A"
type = "int"

[[struct]]
name = "P"
member = [{ name = "a", type = "A" }, { name = "b", type = "A" }]
`)
			reg := registry.New()
			f := loadApplied(t, reg, path)

			if err := os.WriteFile(path, []byte(tt.contents), 0o644); err != nil {
				t.Fatal(err)
			}
			next, err := Reload(reg, f)
			if !errors.IsKind(err, tt.kind) || next != nil {
				t.Fatalf("Reload = %v, %v, want kind %s", next, err, tt.kind)
			}
			if reg.Sizeof("A") != 4 || reg.Sizeof("P") != 8 {
				t.Errorf("sizes after failed reload: A=%d P=%d", reg.Sizeof("A"), reg.Sizeof("P"))
			}
			if reg.Sizeof("S") != 0 {
				t.Error("S from the rejected file is registered")
			}
		})
	}
}

func TestReloadNeedsPath(t *testing.T) {
	f, err := Parse([]byte("[[alias]]\nname = \"A\"\ntype = \"int\"\n"))
	must(t, err)
	if _, err := Reload(registry.New(), f); !errors.IsKind(err, errors.KindInvalidArgument) {
		t.Errorf("Reload without a path = %v", err)
	}
	if _, err := Reload(registry.New(), nil); !errors.IsKind(err, errors.KindInvalidArgument) {
		t.Errorf("Reload(nil) = %v", err)
	}
}

func loadApplied(t *testing.T, reg *registry.Registry, path string) *File {
	t.Helper()
	f, err := Load(path)
	must(t, err)
	must(t, f.Apply(reg, f.Path))
	return f
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

package registry

import (
	"math"
	"testing"

	"github.com/wippyai/structview/errors"
)

func TestSizeofPrimitives(t *testing.T) {
	r := New(WithPointerSize(8))

	tests := []struct {
		name string
		size int
	}{
		{"char", 1},
		{"unsigned char", 1},
		{"BYTE", 1},
		{"short", 2},
		{"WORD", 2},
		{"int", 4},
		{"long", 4},
		{"DWORD", 4},
		{"unsigned int", 4},
		{"long long", 8},
		{"QWORD", 8},
		{"float", 4},
		{"double", 8},
		{"size_t", 8},
		{"dsint", 8},
		{"void*", 8},
		{"nope", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Sizeof(tt.name); got != tt.size {
				t.Errorf("Sizeof(%q) = %d, want %d", tt.name, got, tt.size)
			}
		})
	}
}

func TestPointerSizeOption(t *testing.T) {
	r := New(WithPointerSize(4))
	if r.PointerSize() != 4 {
		t.Fatalf("PointerSize = %d, want 4", r.PointerSize())
	}
	if got := r.Sizeof("size_t"); got != 4 {
		t.Errorf("Sizeof(size_t) = %d, want 4", got)
	}
	if got := r.Sizeof("int*"); got != 4 {
		t.Errorf("Sizeof(int*) = %d, want 4", got)
	}

	r = New(WithPointerSize(3))
	if r.PointerSize() != HostPointerSize {
		t.Errorf("invalid pointer size should be ignored, got %d", r.PointerSize())
	}
}

func TestPrimitiveKinds(t *testing.T) {
	if !Int32.Signed() || Uint32.Signed() {
		t.Error("signedness mismatch")
	}
	if !Double.IsFloat() || Int64.IsFloat() {
		t.Error("float mismatch")
	}
	if !Duint.PointerWidth() || Uint64.PointerWidth() {
		t.Error("pointer width mismatch")
	}
	if Primitive(200).Valid() || Primitive(200).Size(8) != 0 {
		t.Error("out of range kind should be invalid")
	}
	if Uint16.String() != "uint16" {
		t.Errorf("String() = %q", Uint16.String())
	}

	names := PrimitiveNames(Uint16)
	found := false
	for _, n := range names {
		if n == "WORD" {
			found = true
		}
	}
	if !found {
		t.Errorf("PrimitiveNames(Uint16) = %v, want WORD", names)
	}
}

func TestRegisterAlias(t *testing.T) {
	r := New(WithPointerSize(8))

	if err := r.RegisterAlias("demo", "HANDLE", Pointer); err != nil {
		t.Fatalf("RegisterAlias: %v", err)
	}
	if got := r.Sizeof("HANDLE"); got != 8 {
		t.Errorf("Sizeof(HANDLE) = %d, want 8", got)
	}

	a, ok := r.Alias("HANDLE")
	if !ok {
		t.Fatal("alias not found")
	}
	if a.Owner != "demo" || a.Kind != Pointer || a.IsPointer() {
		t.Errorf("unexpected alias %+v", a)
	}

	p, ok := r.Alias("int")
	if !ok || p.Owner != "" || p.Kind != Int32 {
		t.Errorf("primitive lookup = %+v, %v", p, ok)
	}
}

func TestRegisterAliasErrors(t *testing.T) {
	r := New()
	if err := r.RegisterAlias("demo", "T", Int32); err != nil {
		t.Fatal(err)
	}
	if _, err := r.BeginStruct("demo", "S"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		run  func() error
		kind errors.Kind
	}{
		{"empty owner", func() error { return r.RegisterAlias("", "X", Int32) }, errors.KindInvalidArgument},
		{"empty name", func() error { return r.RegisterAlias("demo", "", Int32) }, errors.KindInvalidArgument},
		{"bad kind", func() error { return r.RegisterAlias("demo", "X", Primitive(99)) }, errors.KindInvalidArgument},
		{"duplicate alias", func() error { return r.RegisterAlias("other", "T", Int8) }, errors.KindDuplicateName},
		{"collides with struct", func() error { return r.RegisterAlias("demo", "S", Int8) }, errors.KindDuplicateName},
		{"unknown pointee", func() error { return r.RegisterPointerAlias("demo", "PX", "MISSING") }, errors.KindUnknownType},
		{"bits too wide", func() error { return r.RegisterAlias("demo", "X", Uint8, WithBits(9)) }, errors.KindInvalidArgument},
		{"negative bits", func() error { return r.RegisterAlias("demo", "X", Uint8, WithBits(-1)) }, errors.KindInvalidArgument},
		{"bit pointer", func() error {
			return r.RegisterAlias("demo", "X", Pointer, WithBits(3), WithPointee("int"))
		}, errors.KindInvalidArgument},
		{"from unknown", func() error { return r.RegisterAliasFromExisting("demo", "X", "MISSING") }, errors.KindUnknownType},
		{"from aggregate", func() error { return r.RegisterAliasFromExisting("demo", "X", "S") }, errors.KindInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsKind(err, tt.kind) {
				t.Errorf("error %v is not %s", err, tt.kind)
			}
		})
	}

	if got := r.Sizeof("T"); got != 4 {
		t.Errorf("failed duplicate changed first alias: Sizeof(T) = %d", got)
	}
	if _, ok := r.Alias("X"); ok {
		t.Error("failed registrations must not leave entries behind")
	}
}

func TestBitAlias(t *testing.T) {
	r := New()
	if err := r.RegisterAlias("demo", "flags3", Uint8, WithBits(3)); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterAlias("demo", "wide12", Uint16, WithBits(12)); err != nil {
		t.Fatal(err)
	}
	if got := r.Sizeof("flags3"); got != 1 {
		t.Errorf("Sizeof(flags3) = %d, want 1", got)
	}
	if got := r.Sizeof("wide12"); got != 2 {
		t.Errorf("Sizeof(wide12) = %d, want 2", got)
	}
	a, _ := r.Alias("wide12")
	if a.Bits != 12 {
		t.Errorf("Bits = %d, want 12", a.Bits)
	}
}

func TestPointerAliases(t *testing.T) {
	r := New(WithPointerSize(8))
	if _, err := r.BeginStruct("demo", "Node"); err != nil {
		t.Fatal(err)
	}

	t.Run("explicit", func(t *testing.T) {
		if err := r.RegisterPointerAlias("demo", "PNode", "Node"); err != nil {
			t.Fatal(err)
		}
		a, _ := r.Alias("PNode")
		if !a.IsPointer() || a.Pointee() != "Node" || a.Size != 8 {
			t.Errorf("unexpected alias %+v", a)
		}
	})

	t.Run("lazy", func(t *testing.T) {
		name, err := r.ResolvePointerAlias("Node *")
		if err != nil {
			t.Fatal(err)
		}
		if name != "Node*" {
			t.Errorf("name = %q, want Node*", name)
		}
		a, ok := r.Alias("Node*")
		if !ok || a.Owner != PointerOwner || a.Pointee() != "Node" {
			t.Errorf("lazy alias = %+v, %v", a, ok)
		}
		again, err := r.ResolvePointerAlias("Node*")
		if err != nil || again != name {
			t.Errorf("second resolve = %q, %v", again, err)
		}
	})

	t.Run("double pointer", func(t *testing.T) {
		name, err := r.ResolvePointerAlias("Node**")
		if err != nil {
			t.Fatal(err)
		}
		a, _ := r.Alias(name)
		if a.Pointee() != "Node*" {
			t.Errorf("Pointee = %q, want Node*", a.Pointee())
		}
	})

	t.Run("primitive base", func(t *testing.T) {
		if _, err := r.ResolvePointerAlias("int*"); err != nil {
			t.Errorf("int* should resolve: %v", err)
		}
	})

	t.Run("unknown base", func(t *testing.T) {
		_, err := r.ResolvePointerAlias("Missing*")
		if !errors.IsKind(err, errors.KindUnknownType) {
			t.Errorf("expected unknown type, got %v", err)
		}
		_, err = r.ResolvePointerAlias("Node")
		if !errors.IsKind(err, errors.KindUnknownType) {
			t.Errorf("non-pointer spelling should fail, got %v", err)
		}
	})

	t.Run("from existing", func(t *testing.T) {
		if err := r.RegisterAliasFromExisting("demo", "LPNODE", "PNode"); err != nil {
			t.Fatal(err)
		}
		a, _ := r.Alias("LPNODE")
		if a.Pointee() != "Node" {
			t.Errorf("pointee lost: %+v", a)
		}
		if err := r.RegisterAliasFromExisting("demo", "MYDWORD", "DWORD"); err != nil {
			t.Fatal(err)
		}
		if a, _ := r.Alias("MYDWORD"); a.Kind != Uint32 || a.Size != 4 {
			t.Errorf("MYDWORD = %+v", a)
		}
	})
}

func TestAliasShadowsPrimitive(t *testing.T) {
	r := New()
	if got := r.Sizeof("int"); got != 4 {
		t.Fatalf("Sizeof(int) = %d", got)
	}

	st, _ := r.BeginStruct("demo", "Before")
	if err := st.AppendMember("x", "int", 0); err != nil {
		t.Fatal(err)
	}

	if err := r.RegisterAlias("demo", "int", Int64); err != nil {
		t.Fatalf("shadowing a primitive should be allowed: %v", err)
	}
	if got := r.Sizeof("int"); got != 8 {
		t.Errorf("Sizeof(int) after shadow = %d, want 8", got)
	}
	if got := r.Sizeof("Before"); got != 4 {
		t.Errorf("existing struct resized by shadowing: %d", got)
	}

	r.Clear("demo")
	if got := r.Sizeof("int"); got != 4 {
		t.Errorf("primitive not restored after Clear: %d", got)
	}
}

func TestStructSizes(t *testing.T) {
	r := New()

	st, err := r.BeginStruct("demo", "ST")
	if err != nil {
		t.Fatal(err)
	}
	if err := st.AppendMember("a", "char", 3); err != nil {
		t.Fatal(err)
	}
	if err := st.AppendMember("y", "int", 0); err != nil {
		t.Fatal(err)
	}
	if got := r.Sizeof("ST"); got != 7 {
		t.Errorf("Sizeof(ST) = %d, want 7", got)
	}

	ft, _ := r.BeginStruct("demo", "_FILETIME")
	_ = ft.AppendMember("dwLowDateTime", "unsigned int", 0)
	_ = ft.AppendMember("dwHighDateTime", "unsigned int", 0)
	if got := r.Sizeof("_FILETIME"); got != 8 {
		t.Errorf("Sizeof(_FILETIME) = %d, want 8", got)
	}

	ut, _ := r.BeginUnion("demo", "UT")
	for _, m := range []struct{ name, typ string }{
		{"a", "char"}, {"b", "short"}, {"c", "int"}, {"d", "long long"},
	} {
		if err := ut.AppendMember(m.name, m.typ, 0); err != nil {
			t.Fatal(err)
		}
	}
	if got := r.Sizeof("UT"); got != 8 {
		t.Errorf("Sizeof(UT) = %d, want 8", got)
	}

	nested, _ := r.BeginStruct("demo", "Nested")
	_ = nested.AppendMember("st", "ST", 2)
	_ = nested.AppendMember("ut", "UT", 0)
	_ = nested.AppendMember("ft", "_FILETIME", 0)
	if got, want := r.Sizeof("Nested"), 7*2+8+8; got != want {
		t.Errorf("Sizeof(Nested) = %d, want %d", got, want)
	}
}

func TestStructSizeIsSumOfMembers(t *testing.T) {
	types := []string{"char", "short", "int", "long long", "double", "float", "BYTE"}
	r := New()
	st, _ := r.BeginStruct("demo", "S")
	u, _ := r.BeginUnion("demo", "U")

	sum, largest := 0, 0
	for i, typ := range types {
		n := i % 3
		if err := st.AppendMember(typ+"_m", typ, n); err != nil {
			t.Fatal(err)
		}
		if err := u.AppendMember(typ+"_m", typ, n); err != nil {
			t.Fatal(err)
		}
		total := r.Sizeof(typ) * max(n, 1)
		sum += total
		largest = max(largest, total)

		if got := r.Sizeof("S"); got != sum {
			t.Errorf("after %s: struct size %d, want %d", typ, got, sum)
		}
		if got := r.Sizeof("U"); got != largest {
			t.Errorf("after %s: union size %d, want %d", typ, got, largest)
		}
	}
}

func TestExplicitOffsets(t *testing.T) {
	r := New()
	st, _ := r.BeginStruct("demo", "P")
	if err := st.AppendMember("a", "char", 0); err != nil {
		t.Fatal(err)
	}

	t.Run("padding", func(t *testing.T) {
		if err := st.AppendMemberAt("b", "int", 0, 4); err != nil {
			t.Fatal(err)
		}
		if got := r.Sizeof("P"); got != 8 {
			t.Errorf("Sizeof(P) = %d, want 8", got)
		}
		agg, _ := r.Aggregate("P")
		if len(agg.Members) != 3 {
			t.Fatalf("members = %+v", agg.Members)
		}
		pad := agg.Members[1]
		if !pad.Padding || pad.Name != "__pad0" || pad.TypeName != "char" || pad.ArraySize != 3 || pad.Size != 3 {
			t.Errorf("padding member = %+v", pad)
		}
		if agg.Members[2].Name != "b" || agg.Members[2].Padding {
			t.Errorf("real member = %+v", agg.Members[2])
		}
	})

	t.Run("exact offset", func(t *testing.T) {
		if err := st.AppendMemberAt("c", "short", 0, 8); err != nil {
			t.Fatal(err)
		}
		if got := r.Sizeof("P"); got != 10 {
			t.Errorf("Sizeof(P) = %d, want 10", got)
		}
	})

	t.Run("regression", func(t *testing.T) {
		err := st.AppendMemberAt("d", "char", 0, 9)
		if !errors.IsKind(err, errors.KindInvalidArgument) {
			t.Errorf("expected invalid argument, got %v", err)
		}
		if got := r.Sizeof("P"); got != 10 {
			t.Errorf("failed append changed size to %d", got)
		}
	})

	t.Run("second padding name", func(t *testing.T) {
		if err := st.AppendMemberAt("e", "char", 0, 12); err != nil {
			t.Fatal(err)
		}
		agg, _ := r.Aggregate("P")
		if _, ok := agg.Member("__pad1"); !ok {
			t.Errorf("expected __pad1 in %+v", agg.Members)
		}
		if got := r.Sizeof("P"); got != 13 {
			t.Errorf("Sizeof(P) = %d, want 13", got)
		}
	})

	t.Run("pad to", func(t *testing.T) {
		if err := st.PadTo(16); err != nil {
			t.Fatal(err)
		}
		if got := r.Sizeof("P"); got != 16 {
			t.Errorf("Sizeof(P) = %d, want 16", got)
		}
		if err := st.PadTo(16); err != nil {
			t.Errorf("PadTo current size should be a no-op: %v", err)
		}
		if err := st.PadTo(8); !errors.IsKind(err, errors.KindInvalidArgument) {
			t.Errorf("PadTo smaller size should fail, got %v", err)
		}
	})

	t.Run("union", func(t *testing.T) {
		u, _ := r.BeginUnion("demo", "PU")
		if err := u.AppendMemberAt("a", "int", 0, 0); err != nil {
			t.Fatal(err)
		}
		if err := u.AppendMemberAt("c", "short", 0, 0); !errors.IsKind(err, errors.KindInvalidArgument) {
			t.Errorf("offset 0 below union size 4 should fail, got %v", err)
		}
		if err := u.AppendMember("c", "short", 0); err != nil {
			t.Errorf("implicit union member: %v", err)
		}
		if err := u.AppendMemberAt("b", "int", 0, 4); !errors.IsKind(err, errors.KindInvalidArgument) {
			t.Errorf("non-zero union offset should fail, got %v", err)
		}
		if err := u.PadTo(12); err != nil {
			t.Fatal(err)
		}
		if got := r.Sizeof("PU"); got != 12 {
			t.Errorf("Sizeof(PU) = %d, want 12", got)
		}
	})

	t.Run("union regression", func(t *testing.T) {
		u, _ := r.BeginUnion("demo", "U")
		if err := u.AppendMember("a", "int", 0); err != nil {
			t.Fatal(err)
		}
		if err := u.AppendMemberAt("b", "char", 0, 0); !errors.IsKind(err, errors.KindInvalidArgument) {
			t.Errorf("expected invalid argument, got %v", err)
		}
		agg, _ := r.Aggregate("U")
		if len(agg.Members) != 1 || r.Sizeof("U") != 4 {
			t.Errorf("failed append changed U: %+v", agg)
		}
	})

	t.Run("negative", func(t *testing.T) {
		if err := r.AddMemberAt("P", "n", "char", 0, -1); !errors.IsKind(err, errors.KindInvalidArgument) {
			t.Errorf("negative offset should fail, got %v", err)
		}
	})
}

func TestMemberSizeOverflow(t *testing.T) {
	tests := []struct {
		name   string
		union  bool
		prefix int
		array  int
		offset int
	}{
		{name: "wraps negative", array: math.MaxInt64 / 4},
		{name: "wraps to zero", array: 1 << 61},
		{name: "after members", prefix: 8, array: math.MaxInt64 / 8},
		{name: "after padding", array: math.MaxInt64/8 - 1, offset: 64},
		{name: "union", union: true, array: math.MaxInt64 / 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			b, err := r.BeginAggregate("demo", "S", tt.union)
			if err != nil {
				t.Fatal(err)
			}
			if tt.prefix > 0 {
				if err := b.AppendMember("p", "char", tt.prefix); err != nil {
					t.Fatal(err)
				}
			}
			before := r.Sizeof("S")

			if tt.offset > 0 {
				err = b.AppendMemberAt("a", "long long", tt.array, tt.offset)
			} else {
				err = b.AppendMember("a", "long long", tt.array)
			}
			if !errors.IsKind(err, errors.KindInvalidArgument) {
				t.Errorf("expected invalid argument, got %v", err)
			}
			if got := r.Sizeof("S"); got != before {
				t.Errorf("Sizeof(S) = %d, want %d", got, before)
			}
			agg, _ := r.Aggregate("S")
			if _, ok := agg.Member("__pad0"); ok {
				t.Error("padding added by a rejected member")
			}
		})
	}

	r := New()
	b, _ := r.BeginStruct("demo", "Big")
	if err := b.AppendMember("a", "char", math.MaxInt-1); err != nil {
		t.Fatalf("largest fitting member rejected: %v", err)
	}
	if err := b.AppendMember("b", "char", 0); err != nil {
		t.Fatalf("filling to MaxInt rejected: %v", err)
	}
	if err := b.AppendMember("c", "char", 0); !errors.IsKind(err, errors.KindInvalidArgument) {
		t.Errorf("expected invalid argument past MaxInt, got %v", err)
	}
}

func TestAddMemberErrors(t *testing.T) {
	r := New()
	st, _ := r.BeginStruct("demo", "S")
	_ = st.AppendMember("a", "int", 0)

	tests := []struct {
		name     string
		parent   string
		member   string
		typeName string
		array    int
		kind     errors.Kind
	}{
		{"unknown parent", "Missing", "x", "int", 0, errors.KindNotFound},
		{"empty name", "S", "", "int", 0, errors.KindInvalidArgument},
		{"duplicate member", "S", "a", "int", 0, errors.KindInvalidArgument},
		{"negative array", "S", "x", "int", -1, errors.KindInvalidArgument},
		{"self embedding", "S", "x", "S", 0, errors.KindInvalidArgument},
		{"unknown type", "S", "x", "Missing", 0, errors.KindUnknownType},
		{"unknown pointer base", "S", "x", "Missing*", 0, errors.KindUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.AddMember(tt.parent, tt.member, tt.typeName, tt.array)
			if !errors.IsKind(err, tt.kind) {
				t.Errorf("AddMember error = %v, want %s", err, tt.kind)
			}
		})
	}

	if got := r.Sizeof("S"); got != 4 {
		t.Errorf("failed appends changed size to %d", got)
	}
	if _, ok := r.Alias("Missing*"); ok {
		t.Error("failed append left a pointer alias")
	}
}

func TestSelfReferenceThroughPointer(t *testing.T) {
	r := New(WithPointerSize(8))
	node, _ := r.BeginStruct("demo", "Node")
	if err := node.AppendMember("value", "int", 0); err != nil {
		t.Fatal(err)
	}
	if err := node.AppendMember("next", "Node*", 0); err != nil {
		t.Fatal(err)
	}
	if got := r.Sizeof("Node"); got != 12 {
		t.Errorf("Sizeof(Node) = %d, want 12", got)
	}

	agg, _ := r.Aggregate("Node")
	next, _ := agg.Member("next")
	if next.Type.Kind != RefAlias || next.TypeName != "Node*" {
		t.Errorf("next member = %+v", next)
	}
	if a, ok := r.Alias("Node*"); !ok || a.Owner != PointerOwner {
		t.Errorf("lazy pointer alias = %+v, %v", a, ok)
	}
}

func TestDuplicateAggregate(t *testing.T) {
	r := New()
	first, err := r.BeginStruct("a", "S")
	if err != nil {
		t.Fatal(err)
	}
	_ = first.AppendMember("x", "int", 0)

	if _, err := r.BeginUnion("b", "S"); !errors.IsKind(err, errors.KindDuplicateName) {
		t.Errorf("expected duplicate, got %v", err)
	}
	agg, _ := r.Aggregate("S")
	if agg.Union || agg.Owner != "a" || agg.Size != 4 {
		t.Errorf("first registration changed: %+v", agg)
	}

	if _, err := r.BeginStruct("", "T"); !errors.IsKind(err, errors.KindInvalidArgument) {
		t.Errorf("empty owner should fail, got %v", err)
	}
}

func TestFunctions(t *testing.T) {
	r := New()
	_, _ = r.BeginStruct("demo", "RECT")

	fn, err := r.RegisterFunction("demo", "GetWindowRect", "BOOL", Stdcall, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := fn.AppendArg("hWnd", "PVOID"); err != nil {
		t.Fatal(err)
	}
	if err := fn.AppendArg("lpRect", "RECT*"); err != nil {
		t.Fatal(err)
	}
	if err := r.AddArg("GetWindowRect", "extra", "int"); err != nil {
		t.Fatal(err)
	}

	got, ok := r.Function("GetWindowRect")
	if !ok {
		t.Fatal("function not found")
	}
	if got.CallConv != Stdcall || got.NoReturn || got.Return == nil || got.Return.Name != "BOOL" {
		t.Errorf("unexpected function %+v", got)
	}
	if len(got.Args) != 3 || got.Args[1].TypeName != "RECT*" || got.Args[1].Type.Kind != RefAlias {
		t.Errorf("args = %+v", got.Args)
	}

	exit, err := r.RegisterFunction("demo", "ExitProcess", "void", Stdcall, true)
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := r.Function(exit.Name()); f.Return != nil || !f.NoReturn {
		t.Errorf("void function = %+v", f)
	}

	tests := []struct {
		name string
		run  func() error
		kind errors.Kind
	}{
		{"duplicate function", func() error {
			_, err := r.RegisterFunction("other", "GetWindowRect", "", Cdecl, false)
			return err
		}, errors.KindDuplicateName},
		{"unknown return", func() error {
			_, err := r.RegisterFunction("demo", "F", "Missing", Cdecl, false)
			return err
		}, errors.KindUnknownType},
		{"empty owner", func() error {
			_, err := r.RegisterFunction("", "F", "", Cdecl, false)
			return err
		}, errors.KindInvalidArgument},
		{"unknown function", func() error { return r.AddArg("Missing", "a", "int") }, errors.KindNotFound},
		{"empty arg", func() error { return fn.AppendArg("", "int") }, errors.KindInvalidArgument},
		{"duplicate arg", func() error { return fn.AppendArg("hWnd", "int") }, errors.KindInvalidArgument},
		{"unknown arg type", func() error { return fn.AppendArg("x", "Missing") }, errors.KindUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.IsKind(err, tt.kind) {
				t.Errorf("error = %v, want %s", err, tt.kind)
			}
		})
	}

	if _, ok := r.Function("F"); ok {
		t.Error("failed registration left a function behind")
	}
}

func TestParseCallConv(t *testing.T) {
	tests := []struct {
		in   string
		want CallConv
		ok   bool
	}{
		{"", Cdecl, true},
		{"cdecl", Cdecl, true},
		{"__stdcall", Stdcall, true},
		{"FASTCALL", Fastcall, true},
		{"thiscall", Thiscall, true},
		{"delphi", Delphi, true},
		{"pascal", Cdecl, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCallConv(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseCallConv(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestListings(t *testing.T) {
	r := New()
	_ = r.RegisterAlias("b", "Z", Int8)
	_ = r.RegisterAlias("a", "A", Int8)
	_, _ = r.BeginStruct("a", "S")
	_, _ = r.RegisterFunction("c", "f", "", Cdecl, false)

	if got := r.Aliases(); len(got) != 2 || got[0] != "A" || got[1] != "Z" {
		t.Errorf("Aliases() = %v", got)
	}
	if got := r.Aggregates(); len(got) != 1 || got[0] != "S" {
		t.Errorf("Aggregates() = %v", got)
	}
	if got := r.Functions(); len(got) != 1 || got[0] != "f" {
		t.Errorf("Functions() = %v", got)
	}
	if got := r.Owners(); len(got) != 3 || got[0] != "a" {
		t.Errorf("Owners() = %v", got)
	}
}

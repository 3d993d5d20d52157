package gogen

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"github.com/wippyai/structview/errors"
	"github.com/wippyai/structview/registry"
)

// Generator emits Go declarations for registered types and functions.
type Generator struct {
	reg    *registry.Registry
	aligns map[string]int
}

// New creates a generator reading from reg.
func New(reg *registry.Registry) *Generator {
	return &Generator{
		reg:    reg,
		aligns: make(map[string]int),
	}
}

// field is one generated struct field. A field whose natural Go type would
// move it off its registry offset is emitted as a byte array instead.
type field struct {
	natural *jen.Statement
	name    string
	cName   string
	cType   string
	size    int
	align   int
	offset  int
	padding bool
	bytes   bool
}

func (f *field) goType() *jen.Statement {
	if f.bytes || f.padding {
		return jen.Index(jen.Lit(f.size)).Byte()
	}
	return f.natural
}

// Struct returns the declaration of a struct or union. Unions are emitted
// as byte arrays of their size.
func (g *Generator) Struct(name string) (*jen.Statement, error) {
	agg, ok := g.reg.Aggregate(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseGenerate, "aggregate", name)
	}
	id := Identifier(name)

	if agg.Union {
		return jen.Commentf("%s is the C union %s (%d bytes).", id, name, agg.Size).Line().
			Type().Id(id).Index(jen.Lit(agg.Size)).Byte(), nil
	}

	fields, _, err := g.layout(agg)
	if err != nil {
		return nil, err
	}
	return jen.Commentf("%s is the C struct %s (%d bytes).", id, name, agg.Size).Line().
		Type().Id(id).StructFunc(func(grp *jen.Group) {
			for i := range fields {
				f := &fields[i]
				if f.padding {
					grp.Id("_").Add(f.goType())
					continue
				}
				stmt := grp.Id(f.name).Add(f.goType())
				if f.bytes {
					stmt.Comment(f.cType + " at offset " + strconv.Itoa(f.offset))
				}
			}
		}), nil
}

// Func returns a function type declaration for a registered function.
func (g *Generator) Func(name string) (*jen.Statement, error) {
	fn, ok := g.reg.Function(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseGenerate, "function", name)
	}

	params := make([]jen.Code, 0, len(fn.Args))
	seen := make(map[string]int)
	for _, arg := range fn.Args {
		typ, _, err := g.memberType(arg)
		if err != nil {
			return nil, errors.WithPath(errors.PhaseGenerate, err, name, arg.Name)
		}
		params = append(params, jen.Id(uniqueName(paramName(arg.Name), seen)).Add(typ))
	}

	id := Identifier(name)
	stmt := jen.Commentf("%s is the signature of %s (%s).", id, name, fn.CallConv)
	if fn.NoReturn {
		stmt.Line().Comment("It does not return.")
	}
	stmt.Line().Type().Id(id).Func().Params(params...)
	if fn.Return != nil {
		typ, _, err := g.refType(*fn.Return)
		if err != nil {
			return nil, errors.WithPath(errors.PhaseGenerate, err, name, "return")
		}
		stmt.Add(typ)
	}
	return stmt, nil
}

// Alias returns a named type declaration for a user alias.
func (g *Generator) Alias(name string) (*jen.Statement, error) {
	a, ok := g.reg.Alias(name)
	if !ok || !userAlias(a) {
		return nil, errors.NotFound(errors.PhaseGenerate, "alias", name)
	}
	id := Identifier(name)
	stmt := jen.Commentf("%s is the C type %s.", id, name)
	if p := a.Pointee(); p != "" {
		stmt = jen.Commentf("%s is the C type %s (pointer to %s).", id, name, p)
	}
	return stmt.Line().Type().Id(id).Add(g.scalarType(a)), nil
}

// File builds a Go file holding names and every type they depend on.
// Names may be aggregates, aliases or functions.
func (g *Generator) File(pkg string, names ...string) (*jen.File, error) {
	order, err := g.dependencies(names)
	if err != nil {
		return nil, err
	}

	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by structview. DO NOT EDIT.")
	for _, d := range order {
		var (
			stmt *jen.Statement
			err  error
		)
		switch d.kind {
		case declAggregate:
			stmt, err = g.Struct(d.name)
		case declAlias:
			stmt, err = g.Alias(d.name)
		case declFunction:
			stmt, err = g.Func(d.name)
		}
		if err != nil {
			return nil, err
		}
		f.Add(stmt)
		f.Line()
	}
	return f, nil
}

// Save writes the file for names to path.
func (g *Generator) Save(path, pkg string, names ...string) error {
	f, err := g.File(pkg, names...)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return errors.Wrap(errors.PhaseGenerate, errors.KindInvalidData, err, "save "+path)
	}
	return nil
}

// layout computes the fields of a struct and its Go alignment. Fields are
// demoted to byte arrays until every field sits at its registry offset and
// the struct size is a multiple of its alignment.
func (g *Generator) layout(agg registry.Aggregate) ([]field, int, error) {
	fields := make([]field, 0, len(agg.Members))
	seen := make(map[string]int)
	offset := 0
	for _, m := range agg.Members {
		f := field{
			cName:   m.Name,
			cType:   cTypeName(m),
			size:    m.Size,
			offset:  offset,
			padding: m.Padding,
			align:   1,
		}
		offset += m.Size
		if !m.Padding {
			f.name = uniqueName(Identifier(m.Name), seen)
			typ, align, err := g.memberType(m)
			if err != nil {
				return nil, 0, errors.WithPath(errors.PhaseGenerate, err, agg.Name, m.Name)
			}
			f.natural = typ
			f.align = align
			if f.offset%align != 0 {
				f.bytes = true
				f.align = 1
			}
		}
		fields = append(fields, f)
	}

	align := 1
	for {
		align = 1
		for _, f := range fields {
			align = max(align, f.align)
		}
		if agg.Size%align == 0 {
			break
		}
		for i := range fields {
			if fields[i].align == align {
				fields[i].bytes = true
				fields[i].align = 1
			}
		}
	}
	return fields, align, nil
}

// memberType returns the Go type of a member and its alignment.
func (g *Generator) memberType(m registry.Member) (*jen.Statement, int, error) {
	typ, align, err := g.refType(m.Type)
	if err != nil {
		return nil, 0, err
	}
	if m.ArraySize > 0 {
		return jen.Index(jen.Lit(m.ArraySize)).Add(typ), align, nil
	}
	return typ, align, nil
}

func (g *Generator) refType(ref registry.TypeRef) (*jen.Statement, int, error) {
	switch ref.Kind {
	case registry.RefAggregate:
		agg, ok := g.reg.Aggregate(ref.Name)
		if !ok {
			return nil, 0, errors.UnknownType(errors.PhaseGenerate, nil, ref.Name)
		}
		align, err := g.aggregateAlign(agg)
		if err != nil {
			return nil, 0, err
		}
		return jen.Id(Identifier(ref.Name)), align, nil
	case registry.RefPointer:
		return g.pointerType(), g.reg.PointerSize(), nil
	case registry.RefPrimitive:
		// Stays primitive even if an alias shadows the spelling later.
		return g.primitiveType(ref.Prim), scalarAlign(ref.Prim.Size(g.reg.PointerSize())), nil
	case registry.RefAlias:
		a, ok := g.reg.Alias(ref.Name)
		if !ok {
			return nil, 0, errors.UnknownType(errors.PhaseGenerate, nil, ref.Name)
		}
		if userAlias(a) {
			return jen.Id(Identifier(a.Name)), scalarAlign(a.Size), nil
		}
		return g.scalarType(a), scalarAlign(a.Size), nil
	}
	return nil, 0, errors.UnknownType(errors.PhaseGenerate, nil, ref.Name)
}

func (g *Generator) aggregateAlign(agg registry.Aggregate) (int, error) {
	if agg.Union {
		return 1, nil
	}
	if align, ok := g.aligns[agg.Name]; ok {
		return align, nil
	}
	// Provisional entry; stops aggregates that embed each other.
	g.aligns[agg.Name] = 1
	_, align, err := g.layout(agg)
	if err != nil {
		return 0, err
	}
	g.aligns[agg.Name] = align
	return align, nil
}

// scalarType maps an alias to its underlying Go type.
func (g *Generator) scalarType(a registry.Alias) *jen.Statement {
	if a.IsPointer() {
		return g.pointerType()
	}
	if a.Bits > 0 {
		switch a.Size {
		case 1:
			return jen.Uint8()
		case 2:
			return jen.Uint16()
		case 4:
			return jen.Uint32()
		case 8:
			return jen.Uint64()
		}
		return jen.Index(jen.Lit(a.Size)).Byte()
	}
	return g.primitiveType(a.Kind)
}

func (g *Generator) primitiveType(p registry.Primitive) *jen.Statement {
	wide := g.reg.PointerSize() == 8
	switch p {
	case registry.Int8:
		return jen.Int8()
	case registry.Uint8:
		return jen.Uint8()
	case registry.Int16:
		return jen.Int16()
	case registry.Uint16:
		return jen.Uint16()
	case registry.Int32:
		return jen.Int32()
	case registry.Uint32:
		return jen.Uint32()
	case registry.Int64:
		return jen.Int64()
	case registry.Uint64:
		return jen.Uint64()
	case registry.Dsint:
		if wide {
			return jen.Int64()
		}
		return jen.Int32()
	case registry.Duint:
		if wide {
			return jen.Uint64()
		}
		return jen.Uint32()
	case registry.Pointer:
		return g.pointerType()
	case registry.Float:
		return jen.Float32()
	case registry.Double:
		return jen.Float64()
	}
	return jen.Index(jen.Lit(p.Size(g.reg.PointerSize()))).Byte()
}

func (g *Generator) pointerType() *jen.Statement {
	if g.reg.PointerSize() == 4 {
		return jen.Uint32()
	}
	return jen.Uintptr()
}

func scalarAlign(size int) int {
	switch {
	case size >= 8:
		return 8
	case size >= 4:
		return 4
	case size >= 2:
		return 2
	}
	return 1
}

// userAlias reports whether a is a named alias rather than a primitive or
// an implicit pointer spelling.
func userAlias(a registry.Alias) bool {
	return a.Owner != "" && a.Owner != registry.PointerOwner
}

func cTypeName(m registry.Member) string {
	if m.ArraySize > 0 {
		return m.TypeName + "[" + strconv.Itoa(m.ArraySize) + "]"
	}
	return m.TypeName
}

// Identifier turns a C name into an exported Go identifier.
func Identifier(name string) string {
	name = strings.TrimLeft(name, "_")
	var b strings.Builder
	for _, r := range name {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return "X"
	}
	runes := []rune(s)
	if unicode.IsDigit(runes[0]) {
		return "X" + s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// paramName turns a C argument name into a Go parameter name.
func paramName(name string) string {
	id := Identifier(name)
	runes := []rune(id)
	runes[0] = unicode.ToLower(runes[0])
	s := string(runes)
	if isGoKeyword(s) {
		return s + "_"
	}
	return s
}

func uniqueName(name string, seen map[string]int) string {
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	return name + "_" + strconv.Itoa(n)
}

func isGoKeyword(s string) bool {
	switch s {
	case "break", "case", "chan", "const", "continue", "default", "defer",
		"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
		"interface", "map", "package", "range", "return", "select", "struct",
		"switch", "type", "var":
		return true
	}
	return false
}

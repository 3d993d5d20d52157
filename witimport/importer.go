package witimport

import (
	"strconv"
	"strings"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/structview/errors"
	"github.com/wippyai/structview/registry"
)

// DefaultOwner tags imported entries unless WithOwner is given.
const DefaultOwner = "wit"

// Option configures an Importer.
type Option func(*Importer)

// WithOwner sets the owner imported entries are registered under.
func WithOwner(owner string) Option {
	return func(im *Importer) {
		im.owner = owner
	}
}

// WithLogger sets the importer's logger.
func WithLogger(l *zap.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.log = l
		}
	}
}

// Importer registers Component Model types with their Canonical ABI
// layout. Offsets are explicit, so alignment gaps become padding members.
type Importer struct {
	reg     *registry.Registry
	calc    *Calculator
	log     *zap.Logger
	names   map[*wit.TypeDef]string
	derived map[string]struct{}
	owner   string
	anon    int
}

// New creates an importer that registers into reg.
func New(reg *registry.Registry, opts ...Option) *Importer {
	im := &Importer{
		reg:     reg,
		calc:    NewCalculator(),
		log:     Logger(),
		names:   make(map[*wit.TypeDef]string),
		derived: make(map[string]struct{}),
		owner:   DefaultOwner,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Owner returns the owner imported entries are registered under.
func (im *Importer) Owner() string {
	return im.owner
}

// Calculator returns the layout calculator shared by the importer.
func (im *Importer) Calculator() *Calculator {
	return im.calc
}

// Import registers defs and every anonymous type they reference.
// Types already imported are skipped.
func (im *Importer) Import(defs ...*wit.TypeDef) error {
	for _, t := range defs {
		if t == nil {
			return errors.InvalidArgument(errors.PhaseImport, "nil type definition")
		}
		name, err := im.TypeName(t)
		if err != nil {
			return err
		}
		im.log.Info("wit type imported",
			zap.String("owner", im.owner),
			zap.String("name", name),
			zap.Uint32("size", im.calc.Calculate(t).Size))
	}
	return nil
}

// TypeName returns the registry name of t, registering it first if needed.
func (im *Importer) TypeName(t wit.Type) (string, error) {
	switch typ := t.(type) {
	case wit.Bool:
		return "bool", nil
	case wit.S8:
		return "int8_t", nil
	case wit.U8:
		return "uint8_t", nil
	case wit.S16:
		return "int16_t", nil
	case wit.U16:
		return "uint16_t", nil
	case wit.S32:
		return "int32_t", nil
	case wit.U32, wit.Char:
		return "uint32_t", nil
	case wit.S64:
		return "int64_t", nil
	case wit.U64:
		return "uint64_t", nil
	case wit.F32:
		return "float", nil
	case wit.F64:
		return "double", nil
	case wit.String:
		return im.slice("string")
	case *wit.TypeDef:
		return im.typeDef(typ)
	case nil:
		return "", errors.InvalidArgument(errors.PhaseImport, "nil type")
	default:
		return "", errors.Unsupported(errors.PhaseImport, label(t))
	}
}

func (im *Importer) typeDef(t *wit.TypeDef) (string, error) {
	if name, ok := im.names[t]; ok {
		return name, nil
	}

	name := im.nameOf(t)
	if _, ok := im.derived[name]; ok {
		im.names[t] = name
		return name, nil
	}

	var err error
	switch kind := t.Kind.(type) {
	case *wit.Record:
		err = im.record(name, t, kind)
	case *wit.Tuple:
		err = im.tuple(name, t, kind)
	case *wit.Variant:
		cases := make([]variantCase, len(kind.Cases))
		for i, cs := range kind.Cases {
			cases[i] = variantCase{name: fieldName(cs.Name), typ: cs.Type}
		}
		err = im.variant(name, t, cases)
	case *wit.Option:
		err = im.variant(name, t, []variantCase{{name: "none"}, {name: "some", typ: kind.Type}})
	case *wit.Result:
		err = im.variant(name, t, []variantCase{{name: "ok", typ: kind.OK}, {name: "err", typ: kind.Err}})
	case *wit.Enum:
		err = im.enum(name, t)
	case *wit.Flags:
		err = im.flags(name, t, len(kind.Flags))
	case *wit.List:
		_, err = im.sliceNamed(name)
	case *wit.Own, *wit.Borrow:
		err = im.reg.RegisterAlias(im.owner, name, registry.Uint32)
	case wit.Type:
		var target string
		if target, err = im.TypeName(kind); err != nil {
			return "", err
		}
		if _, isAgg := im.reg.Aggregate(target); isAgg || t.Name == nil {
			// Aggregates cannot be aliased; the name resolves to the target.
			im.names[t] = target
			return target, nil
		}
		err = im.reg.RegisterAliasFromExisting(im.owner, name, target)
	default:
		return "", errors.Unsupported(errors.PhaseImport, label(t))
	}
	if err != nil {
		return "", errors.WithPath(errors.PhaseImport, err, name)
	}

	im.names[t] = name
	im.derived[name] = struct{}{}
	return name, nil
}

// record registers a struct with each field at its canonical offset.
func (im *Importer) record(name string, t *wit.TypeDef, r *wit.Record) error {
	types := make([]wit.Type, len(r.Fields))
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		types[i] = f.Type
		names[i] = fieldName(f.Name)
	}
	return im.sequence(name, t, names, types)
}

func (im *Importer) tuple(name string, t *wit.TypeDef, tup *wit.Tuple) error {
	names := make([]string, len(tup.Types))
	for i := range tup.Types {
		names[i] = "f" + strconv.Itoa(i)
	}
	return im.sequence(name, t, names, tup.Types)
}

func (im *Importer) sequence(name string, t *wit.TypeDef, names []string, types []wit.Type) error {
	// Field types first, so the struct is built in one pass.
	typeNames := make([]string, len(types))
	for i, typ := range types {
		n, err := im.TypeName(typ)
		if err != nil {
			return errors.WithPath(errors.PhaseImport, err, names[i])
		}
		typeNames[i] = n
	}

	info := im.calc.Calculate(t)
	b, err := im.reg.BeginStruct(im.owner, name)
	if err != nil {
		return err
	}
	for i := range names {
		if err := b.AppendMemberAt(names[i], typeNames[i], 0, int(info.Offsets[i])); err != nil {
			return err
		}
	}
	return im.finish(b, info)
}

type variantCase struct {
	typ  wit.Type
	name string
}

// variant registers struct { tag; union payload } with the payload at its
// canonical offset. Cases without a payload have no union member.
func (im *Importer) variant(name string, t *wit.TypeDef, cases []variantCase) error {
	info := im.calc.Calculate(t)
	tag := discriminantType(len(cases))

	type payloadMember struct{ name, typ string }
	var payload []payloadMember
	for _, cs := range cases {
		if cs.typ == nil {
			continue
		}
		n, err := im.TypeName(cs.typ)
		if err != nil {
			return errors.WithPath(errors.PhaseImport, err, cs.name)
		}
		payload = append(payload, payloadMember{name: cs.name, typ: n})
	}

	var unionName string
	if len(payload) > 0 {
		unionName = name + "_payload"
		u, err := im.reg.BeginUnion(im.owner, unionName)
		if err != nil {
			return err
		}
		for _, m := range payload {
			if err := u.AppendMember(m.name, m.typ, 0); err != nil {
				return err
			}
		}
	}

	b, err := im.reg.BeginStruct(im.owner, name)
	if err != nil {
		return err
	}
	if err := b.AppendMember("tag", tag, 0); err != nil {
		return err
	}
	if unionName != "" {
		if err := b.AppendMemberAt("payload", unionName, 0, int(info.Payload)); err != nil {
			return err
		}
	}
	return im.finish(b, info)
}

// enum registers an enum as an unsigned alias of its discriminant width.
func (im *Importer) enum(name string, t *wit.TypeDef) error {
	info := im.calc.Calculate(t)
	return im.reg.RegisterAlias(im.owner, name, unsignedKind(info.Size))
}

// flags registers up to 64 flags as an unsigned alias and wider sets as a
// struct of uint32_t words.
func (im *Importer) flags(name string, t *wit.TypeDef, n int) error {
	info := im.calc.Calculate(t)
	if n > 0 && n <= 64 {
		return im.reg.RegisterAlias(im.owner, name, unsignedKind(info.Size))
	}
	b, err := im.reg.BeginStruct(im.owner, name)
	if err != nil {
		return err
	}
	if n > 0 {
		if err := b.AppendMember("bits", "uint32_t", int(info.Size/4)); err != nil {
			return err
		}
	}
	return im.finish(b, info)
}

// slice registers the {ptr, len} pair used by strings and lists.
func (im *Importer) slice(name string) (string, error) {
	if _, ok := im.derived[name]; ok {
		return name, nil
	}
	if _, err := im.sliceNamed(name); err != nil {
		return "", errors.WithPath(errors.PhaseImport, err, name)
	}
	return name, nil
}

func (im *Importer) sliceNamed(name string) (string, error) {
	b, err := im.reg.BeginStruct(im.owner, name)
	if err != nil {
		return "", err
	}
	if err := b.AppendMember("ptr", "uint32_t", 0); err != nil {
		return "", err
	}
	if err := b.AppendMember("len", "uint32_t", 0); err != nil {
		return "", err
	}
	im.derived[name] = struct{}{}
	return name, nil
}

// finish pads the struct to its canonical size.
func (im *Importer) finish(b *registry.AggregateBuilder, info Info) error {
	if err := b.PadTo(int(info.Size)); err != nil {
		return errors.New(errors.PhaseImport, errors.KindInvalidData).
			Path(b.Name()).
			Value(info.Size).
			Cause(err).
			Detail("members exceed canonical size %d", info.Size).
			Build()
	}
	im.log.Debug("wit aggregate laid out",
		zap.String("name", b.Name()),
		zap.Uint32("size", info.Size),
		zap.Uint32("align", info.Align))
	return nil
}

// nameOf returns the declared name of t, or one derived from its structure.
// Anonymous records, variants, enums and flags get a numbered name since
// their label does not identify the layout.
func (im *Importer) nameOf(t *wit.TypeDef) string {
	if t.Name != nil && *t.Name != "" {
		return fieldName(*t.Name)
	}
	switch t.Kind.(type) {
	case *wit.Record, *wit.Variant, *wit.Enum, *wit.Flags:
		im.anon++
		return kindLabel(t.Kind) + "_" + strconv.Itoa(im.anon)
	}
	return label(t)
}

// label derives a C identifier from the structure of t.
func label(t wit.Type) string {
	switch typ := t.(type) {
	case nil:
		return "void"
	case wit.Bool:
		return "bool"
	case wit.S8:
		return "s8"
	case wit.U8:
		return "u8"
	case wit.S16:
		return "s16"
	case wit.U16:
		return "u16"
	case wit.S32:
		return "s32"
	case wit.U32:
		return "u32"
	case wit.S64:
		return "s64"
	case wit.U64:
		return "u64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char32"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if typ == nil {
			return "handle"
		}
		if typ.Name != nil && *typ.Name != "" {
			return fieldName(*typ.Name)
		}
		return kindLabel(typ.Kind)
	default:
		return "unknown"
	}
}

func kindLabel(kind wit.TypeDefKind) string {
	switch k := kind.(type) {
	case *wit.List:
		return "list_" + label(k.Type)
	case *wit.Option:
		return "option_" + label(k.Type)
	case *wit.Result:
		return "result_" + label(k.OK) + "_" + label(k.Err)
	case *wit.Tuple:
		parts := make([]string, len(k.Types))
		for i, typ := range k.Types {
			parts[i] = label(typ)
		}
		return "tuple_" + strings.Join(parts, "_")
	case *wit.Own:
		return "own_" + label(k.Type)
	case *wit.Borrow:
		return "borrow_" + label(k.Type)
	case *wit.Record:
		return "record_" + strconv.Itoa(len(k.Fields))
	case *wit.Variant:
		return "variant_" + strconv.Itoa(len(k.Cases))
	case *wit.Enum:
		return "enum_" + strconv.Itoa(len(k.Cases))
	case *wit.Flags:
		return "flags_" + strconv.Itoa(len(k.Flags))
	case *wit.Resource:
		return "resource"
	case wit.Type:
		return label(k)
	default:
		return "unknown"
	}
}

// fieldName turns a WIT kebab-case name into a C identifier.
func fieldName(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}

func discriminantType(numCases int) string {
	switch discriminantSize(numCases) {
	case 1:
		return "uint8_t"
	case 2:
		return "uint16_t"
	default:
		return "uint32_t"
	}
}

func unsignedKind(size uint32) registry.Primitive {
	switch size {
	case 1:
		return registry.Uint8
	case 2:
		return registry.Uint16
	case 8:
		return registry.Uint64
	default:
		return registry.Uint32
	}
}

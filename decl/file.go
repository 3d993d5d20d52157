package decl

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/wippyai/structview/errors"
	"github.com/wippyai/structview/registry"
)

// File is a parsed declaration file.
type File struct {
	Aliases     []Alias     `toml:"alias"`
	Structs     []Aggregate `toml:"struct"`
	Unions      []Aggregate `toml:"union"`
	Functions   []Function  `toml:"function"`
	PointerSize int         `toml:"pointer_size"`

	// Path is the file the declarations were read from (set at load time).
	Path string `toml:"-"`
}

// Alias declares a named type. Type names an existing alias or primitive;
// Pointee turns the alias into a pointer.
type Alias struct {
	Name    string `toml:"name"`
	Type    string `toml:"type"`
	Pointee string `toml:"pointee"`
	Bits    int    `toml:"bits"`
}

// Aggregate declares a struct or union.
type Aggregate struct {
	Name    string   `toml:"name"`
	Members []Member `toml:"member"`
	PadTo   int      `toml:"pad_to"`
}

// Member declares one aggregate member. Offset is optional.
type Member struct {
	Offset *int   `toml:"offset"`
	Name   string `toml:"name"`
	Type   string `toml:"type"`
	Array  int    `toml:"array"`
}

// Function declares a function and its arguments.
type Function struct {
	Name     string `toml:"name"`
	Returns  string `toml:"returns"`
	CallConv string `toml:"callconv"`
	Args     []Arg  `toml:"arg"`
	NoReturn bool   `toml:"noreturn"`
}

// Arg declares one function argument.
type Arg struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// Load reads and parses a declaration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "read "+path)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.WithPath(errors.PhaseLoad, err, path)
	}
	f.Path = path
	return f, nil
}

// Parse decodes TOML declarations. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.ParseFailed("declarations", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.InvalidData(errors.PhaseLoad, nil, "unknown keys: "+strings.Join(keys, ", "))
	}
	if f.PointerSize != 0 && f.PointerSize != 4 && f.PointerSize != 8 {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Value(f.PointerSize).
			Detail("pointer_size must be 4 or 8, got %d", f.PointerSize).
			Build()
	}
	return &f, nil
}

// RegistryOptions returns the registry options the file asks for.
func (f *File) RegistryOptions() []registry.Option {
	if f.PointerSize == 0 {
		return nil
	}
	return []registry.Option{registry.WithPointerSize(f.PointerSize)}
}

// Apply registers every declaration under owner. On error, everything
// registered under owner is removed again.
func (f *File) Apply(reg *registry.Registry, owner string) error {
	if f.PointerSize != 0 && f.PointerSize != reg.PointerSize() {
		return errors.New(errors.PhaseLoad, errors.KindInvalidArgument).
			Path(f.Path).
			Value(f.PointerSize).
			Detail("file wants pointer size %d, registry uses %d", f.PointerSize, reg.PointerSize()).
			Build()
	}

	if err := f.apply(reg, owner); err != nil {
		reg.Clear(owner)
		return err
	}

	Logger().Info("declarations applied",
		zap.String("owner", owner),
		zap.String("path", f.Path),
		zap.Int("aliases", len(f.Aliases)),
		zap.Int("aggregates", len(f.Structs)+len(f.Unions)),
		zap.Int("functions", len(f.Functions)))
	return nil
}

func (f *File) apply(reg *registry.Registry, owner string) error {
	filler := &aggregateFiller{
		reg:   reg,
		decls: make(map[string]*pendingAggregate),
	}
	for i := range f.Structs {
		if err := filler.begin(owner, &f.Structs[i], false); err != nil {
			return err
		}
	}
	for i := range f.Unions {
		if err := filler.begin(owner, &f.Unions[i], true); err != nil {
			return err
		}
	}

	for _, a := range f.Aliases {
		if err := applyAlias(reg, owner, a); err != nil {
			return wrap(err, "alias", a.Name)
		}
	}

	for _, name := range filler.order {
		if err := filler.fill(name); err != nil {
			return err
		}
	}

	for _, fn := range f.Functions {
		if err := applyFunction(reg, owner, fn); err != nil {
			return wrap(err, "function", fn.Name)
		}
	}
	return nil
}

func applyAlias(reg *registry.Registry, owner string, a Alias) error {
	switch {
	case a.Pointee != "":
		return reg.RegisterPointerAlias(owner, a.Name, a.Pointee)
	case a.Bits > 0:
		base, ok := reg.Alias(a.Type)
		if !ok {
			return errors.UnknownType(errors.PhaseLoad, nil, a.Type)
		}
		return reg.RegisterAlias(owner, a.Name, base.Kind, registry.WithBits(a.Bits))
	default:
		return reg.RegisterAliasFromExisting(owner, a.Name, a.Type)
	}
}

func applyFunction(reg *registry.Registry, owner string, fn Function) error {
	cc, ok := registry.ParseCallConv(fn.CallConv)
	if !ok {
		return errors.New(errors.PhaseLoad, errors.KindInvalidArgument).
			Value(fn.CallConv).
			Detail("unknown calling convention %q", fn.CallConv).
			Build()
	}
	b, err := reg.RegisterFunction(owner, fn.Name, fn.Returns, cc, fn.NoReturn)
	if err != nil {
		return err
	}
	for _, arg := range fn.Args {
		if err := b.AppendArg(arg.Name, arg.Type); err != nil {
			return err
		}
	}
	return nil
}

type pendingAggregate struct {
	decl     *Aggregate
	builder  *registry.AggregateBuilder
	kind     string
	filling  bool
	complete bool
}

// aggregateFiller appends members so that an embedded aggregate of the same
// file is complete before its size is taken.
type aggregateFiller struct {
	reg   *registry.Registry
	decls map[string]*pendingAggregate
	order []string
}

func (a *aggregateFiller) begin(owner string, d *Aggregate, union bool) error {
	kind := "struct"
	if union {
		kind = "union"
	}
	b, err := a.reg.BeginAggregate(owner, d.Name, union)
	if err != nil {
		return wrap(err, kind, d.Name)
	}
	a.decls[d.Name] = &pendingAggregate{decl: d, builder: b, kind: kind}
	a.order = append(a.order, d.Name)
	return nil
}

func (a *aggregateFiller) fill(name string) error {
	p := a.decls[name]
	if p.complete {
		return nil
	}
	if p.filling {
		return errors.New(errors.PhaseLoad, errors.KindInvalidArgument).
			Path(p.kind, name).
			Detail("aggregate embeds itself through another aggregate").
			Build()
	}
	p.filling = true

	for _, m := range p.decl.Members {
		if dep, ok := a.decls[m.Type]; ok && dep != p {
			if err := a.fill(m.Type); err != nil {
				return err
			}
		}
	}

	for _, m := range p.decl.Members {
		var err error
		if m.Offset != nil {
			err = p.builder.AppendMemberAt(m.Name, m.Type, m.Array, *m.Offset)
		} else {
			err = p.builder.AppendMember(m.Name, m.Type, m.Array)
		}
		if err != nil {
			return wrap(err, p.kind, name)
		}
	}
	if p.decl.PadTo > 0 {
		if err := p.builder.PadTo(p.decl.PadTo); err != nil {
			return wrap(err, p.kind, name)
		}
	}

	p.filling = false
	p.complete = true
	return nil
}

// Reload re-reads the file prev was loaded from and replaces its entries,
// which are owned by prev.Path. The file is parsed before anything is
// removed, and prev is applied again when the new contents fail, so a
// broken file leaves the registry as it was.
func Reload(reg *registry.Registry, prev *File) (*File, error) {
	if prev == nil || prev.Path == "" {
		return nil, errors.InvalidArgument(errors.PhaseLoad, "reload needs a file loaded from a path")
	}
	path := prev.Path

	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	removed := reg.Clear(path)
	Logger().Debug("declarations cleared",
		zap.String("path", path),
		zap.Int("removed", removed))

	if err := f.Apply(reg, path); err != nil {
		if rerr := prev.Apply(reg, path); rerr != nil {
			Logger().Error("previous declarations not restored",
				zap.String("path", path),
				zap.Error(rerr))
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Path(path).
				Cause(err).
				Detail("previous declarations not restored: %v", rerr).
				Build()
		}
		Logger().Info("previous declarations restored", zap.String("path", path))
		return nil, err
	}
	return f, nil
}

// wrap re-homes err in the load phase under path, keeping its kind.
func wrap(err error, path ...string) error {
	kind := errors.KindInvalidData
	var e *errors.Error
	if stderrors.As(err, &e) {
		kind = e.Kind
	}
	return errors.New(errors.PhaseLoad, kind).
		Path(path...).
		Cause(err).
		Build()
}

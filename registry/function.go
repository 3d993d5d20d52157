package registry

import (
	"go.uber.org/zap"

	"github.com/wippyai/structview/errors"
)

// FunctionBuilder appends arguments to one function.
type FunctionBuilder struct {
	reg  *Registry
	name string
	id   uint64
}

// Name returns the function being built.
func (b *FunctionBuilder) Name() string {
	return b.name
}

// AppendArg appends an argument.
func (b *FunctionBuilder) AppendArg(name, typeName string) error {
	return b.reg.addArg(b.name, b.id, name, typeName)
}

// RegisterFunction registers a function. An empty or "void" return type
// means the function returns nothing.
func (r *Registry) RegisterFunction(owner, name, returnType string, cc CallConv, noReturn bool) (*FunctionBuilder, error) {
	if err := checkOwnerName("function", owner, name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.functions[name]; ok {
		return nil, errors.DuplicateName(errors.PhaseRegister, "function", name)
	}

	var ret *TypeRef
	if returnType != "" && returnType != "void" {
		ref, _, ok := r.resolveLocked(returnType)
		if !ok {
			return nil, errors.UnknownType(errors.PhaseRegister, []string{name}, returnType)
		}
		if ref.Kind == RefPointer {
			var err error
			if ref, err = r.ensurePointerAliasLocked(returnType); err != nil {
				return nil, err
			}
		}
		ret = &ref
	}

	fn := &Function{
		Owner:      owner,
		Name:       name,
		ReturnType: returnType,
		Return:     ret,
		CallConv:   cc,
		NoReturn:   noReturn,
		ID:         r.newIDLocked(),
	}
	r.functions[name] = fn
	r.trackLocked(owner, entryKey{kind: entryFunction, name: name})

	r.log.Debug("function registered",
		zap.String("owner", owner),
		zap.String("name", name),
		zap.String("returns", returnType),
		zap.Stringer("callconv", cc))

	return &FunctionBuilder{reg: r, name: name, id: fn.ID}, nil
}

// AddArg appends an argument to the named function.
func (r *Registry) AddArg(function, name, typeName string) error {
	return r.addArg(function, 0, name, typeName)
}

func (r *Registry) addArg(function string, id uint64, name, typeName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn, ok := r.functions[function]
	if !ok || (id != 0 && fn.ID != id) {
		return errors.NotFound(errors.PhaseRegister, "function", function)
	}
	if name == "" {
		return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
			Path(function).
			Detail("argument name cannot be empty").
			Build()
	}
	for _, a := range fn.Args {
		if a.Name == name {
			return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
				Path(function, name).
				Detail("duplicate argument name").
				Build()
		}
	}

	ref, size, ok := r.resolveLocked(typeName)
	if !ok {
		return errors.UnknownType(errors.PhaseRegister, []string{function, name}, typeName)
	}
	if ref.Kind == RefPointer {
		var err error
		if ref, err = r.ensurePointerAliasLocked(typeName); err != nil {
			return err
		}
	}

	fn.Args = append(fn.Args, Member{
		Name:     name,
		TypeName: ref.Name,
		Type:     ref,
		Size:     size,
	})
	return nil
}

package registry

import (
	"go.uber.org/zap"

	"github.com/wippyai/structview/errors"
)

// AliasOption configures RegisterAlias.
type AliasOption func(*aliasConfig)

type aliasConfig struct {
	pointee string
	bits    int
}

// WithPointee makes the alias a pointer to the named type.
func WithPointee(name string) AliasOption {
	return func(c *aliasConfig) {
		c.pointee = name
	}
}

// WithBits makes the alias a bit-sized integer. Its size is the number of
// bytes needed to hold n bits.
func WithBits(n int) AliasOption {
	return func(c *aliasConfig) {
		c.bits = n
	}
}

// RegisterAlias registers name as an alias of the primitive kind.
func (r *Registry) RegisterAlias(owner, name string, kind Primitive, opts ...AliasOption) error {
	var cfg aliasConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := checkOwnerName("alias", owner, name); err != nil {
		return err
	}
	if !kind.Valid() {
		return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
			Name(name).
			Owner(owner).
			Value(kind).
			Detail("unknown primitive kind %d", kind).
			Build()
	}
	if cfg.pointee != "" && cfg.bits != 0 {
		return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
			Name(name).
			Owner(owner).
			Detail("pointer alias cannot be bit-sized").
			Build()
	}
	if cfg.bits < 0 || cfg.bits > 8*kind.Size(r.ptrSize) {
		return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
			Name(name).
			Owner(owner).
			Value(cfg.bits).
			Detail("bit size %d out of range for %s", cfg.bits, kind).
			Build()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isDefinedLocked(name) {
		return errors.DuplicateName(errors.PhaseRegister, "type", name)
	}

	target := TypeRef{Kind: RefPrimitive, Name: kind.String(), Prim: kind}
	size := kind.Size(r.ptrSize)
	if cfg.pointee != "" {
		elem, _, ok := r.resolveLocked(cfg.pointee)
		if !ok {
			return errors.UnknownType(errors.PhaseRegister, []string{name}, cfg.pointee)
		}
		if elem.Kind == RefPointer {
			var err error
			if elem, err = r.ensurePointerAliasLocked(cfg.pointee); err != nil {
				return err
			}
		}
		target = TypeRef{Kind: RefPointer, Name: name, Elem: &elem}
		size = r.ptrSize
	}
	if cfg.bits > 0 {
		size = (cfg.bits + 7) / 8
	}

	r.insertAliasLocked(&Alias{
		Owner:  owner,
		Name:   name,
		Kind:   kind,
		Size:   size,
		Bits:   cfg.bits,
		Target: target,
	})
	return nil
}

// RegisterPointerAlias registers name as a pointer to pointee.
func (r *Registry) RegisterPointerAlias(owner, name, pointee string) error {
	return r.RegisterAlias(owner, name, Pointer, WithPointee(pointee))
}

// RegisterAliasFromExisting registers name with the kind of an existing
// alias or primitive. Pointer and bit-size information is carried over.
func (r *Registry) RegisterAliasFromExisting(owner, name, existing string) error {
	r.mu.RLock()
	ref, _, ok := r.resolveLocked(existing)
	var src Alias
	switch {
	case !ok:
	case ref.Kind == RefAlias:
		src = r.aliases[ref.Name].snapshot()
	case ref.Kind == RefPrimitive:
		src = r.prims[ref.Name].snapshot()
	}
	r.mu.RUnlock()

	switch {
	case !ok:
		return errors.UnknownType(errors.PhaseRegister, []string{name}, existing)
	case ref.Kind == RefAggregate:
		return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
			Name(name).
			Owner(owner).
			Type(existing).
			Detail("cannot alias an aggregate").
			Build()
	case ref.Kind == RefPointer:
		return r.RegisterAlias(owner, name, Pointer, WithPointee(ref.Elem.Name))
	}

	var opts []AliasOption
	if p := src.Pointee(); p != "" {
		opts = append(opts, WithPointee(p))
	}
	if src.Bits > 0 {
		opts = append(opts, WithBits(src.Bits))
	}
	return r.RegisterAlias(owner, name, src.Kind, opts...)
}

// ResolvePointerAlias returns the name of the pointer alias for a "T*"
// spelling, registering it under PointerOwner if needed.
func (r *Registry) ResolvePointerAlias(typeName string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref, err := r.ensurePointerAliasLocked(typeName)
	if err != nil {
		return "", err
	}
	return ref.Name, nil
}

// ensurePointerAliasLocked returns an alias reference for typeName, creating
// reserved-owner pointer aliases for every level of a "T**" chain.
func (r *Registry) ensurePointerAliasLocked(typeName string) (TypeRef, error) {
	name := normalizePointer(typeName)
	if _, ok := r.aliases[name]; ok {
		return TypeRef{Kind: RefAlias, Name: name}, nil
	}
	base, ok := pointerBase(name)
	if !ok {
		return TypeRef{}, errors.UnknownType(errors.PhaseRegister, nil, typeName)
	}
	elem, _, ok := r.resolveLocked(base)
	if !ok {
		return TypeRef{}, errors.UnknownType(errors.PhaseRegister, nil, typeName)
	}
	if elem.Kind == RefPointer {
		var err error
		if elem, err = r.ensurePointerAliasLocked(base); err != nil {
			return TypeRef{}, err
		}
	}

	r.insertAliasLocked(&Alias{
		Owner:  PointerOwner,
		Name:   name,
		Kind:   Pointer,
		Size:   r.ptrSize,
		Target: TypeRef{Kind: RefPointer, Name: name, Elem: &elem},
	})
	return TypeRef{Kind: RefAlias, Name: name}, nil
}

func (r *Registry) insertAliasLocked(a *Alias) {
	a.ID = r.newIDLocked()
	r.aliases[a.Name] = a
	r.trackLocked(a.Owner, entryKey{kind: entryAlias, name: a.Name})

	r.log.Debug("alias registered",
		zap.String("owner", a.Owner),
		zap.String("name", a.Name),
		zap.Stringer("kind", a.Kind),
		zap.Int("size", a.Size),
		zap.String("pointee", a.Pointee()))
}

// aliasOf returns the stored alias or primitive behind ref.
func (r *Registry) aliasOf(ref TypeRef) (Alias, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var a *Alias
	var ok bool
	switch ref.Kind {
	case RefAlias:
		a, ok = r.aliases[ref.Name]
	case RefPrimitive:
		a, ok = r.prims[ref.Name]
	}
	if !ok {
		return Alias{}, false
	}
	return a.snapshot(), true
}

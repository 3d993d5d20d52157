package registry

import (
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/structview/errors"
)

const paddingPrefix = "__pad"

// AggregateBuilder appends members to one struct or union.
// It becomes invalid once its aggregate is removed by Clear.
type AggregateBuilder struct {
	reg  *Registry
	name string
	id   uint64
}

// Name returns the aggregate being built.
func (b *AggregateBuilder) Name() string {
	return b.name
}

// AppendMember appends a member. arraySize 0 means scalar.
func (b *AggregateBuilder) AppendMember(name, typeName string, arraySize int) error {
	return b.reg.addMember(b.name, b.id, name, typeName, arraySize, -1)
}

// AppendMemberAt appends a member at an explicit offset, inserting padding
// when the offset is past the current size.
func (b *AggregateBuilder) AppendMemberAt(name, typeName string, arraySize, offset int) error {
	if offset < 0 {
		return negativeOffset(b.name, name, offset)
	}
	return b.reg.addMember(b.name, b.id, name, typeName, arraySize, offset)
}

// PadTo grows the aggregate to size bytes with a padding member.
func (b *AggregateBuilder) PadTo(size int) error {
	return b.reg.padTo(b.name, b.id, size)
}

// BeginAggregate registers an empty struct or union.
func (r *Registry) BeginAggregate(owner, name string, union bool) (*AggregateBuilder, error) {
	if err := checkOwnerName("aggregate", owner, name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isDefinedLocked(name) {
		return nil, errors.DuplicateName(errors.PhaseRegister, "type", name)
	}

	agg := &Aggregate{
		Owner: owner,
		Name:  name,
		Union: union,
		ID:    r.newIDLocked(),
	}
	r.aggregates[name] = agg
	r.trackLocked(owner, entryKey{kind: entryAggregate, name: name})

	r.log.Debug("aggregate registered",
		zap.String("owner", owner),
		zap.String("name", name),
		zap.Bool("union", union))

	return &AggregateBuilder{reg: r, name: name, id: agg.ID}, nil
}

// BeginStruct is BeginAggregate for a struct.
func (r *Registry) BeginStruct(owner, name string) (*AggregateBuilder, error) {
	return r.BeginAggregate(owner, name, false)
}

// BeginUnion is BeginAggregate for a union.
func (r *Registry) BeginUnion(owner, name string) (*AggregateBuilder, error) {
	return r.BeginAggregate(owner, name, true)
}

// AddMember appends a member to the named aggregate.
func (r *Registry) AddMember(parent, name, typeName string, arraySize int) error {
	return r.addMember(parent, 0, name, typeName, arraySize, -1)
}

// AddMemberAt appends a member to the named aggregate at an explicit offset.
func (r *Registry) AddMemberAt(parent, name, typeName string, arraySize, offset int) error {
	if offset < 0 {
		return negativeOffset(parent, name, offset)
	}
	return r.addMember(parent, 0, name, typeName, arraySize, offset)
}

// addMember validates everything before mutating. offset < 0 means none;
// id 0 accepts any generation.
func (r *Registry) addMember(parent string, id uint64, name, typeName string, arraySize, offset int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	agg, err := r.aggregateLocked(parent, id)
	if err != nil {
		return err
	}
	if name == "" {
		return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
			Path(parent).
			Detail("member name cannot be empty").
			Build()
	}
	if _, dup := agg.Member(name); dup {
		return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
			Path(parent, name).
			Detail("duplicate member name").
			Build()
	}
	if arraySize < 0 {
		return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
			Path(parent, name).
			Value(arraySize).
			Detail("negative array size %d", arraySize).
			Build()
	}
	if typeName == parent {
		return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
			Path(parent, name).
			Type(typeName).
			Detail("aggregate cannot embed itself").
			Build()
	}

	ref, size, ok := r.resolveLocked(typeName)
	if !ok {
		return errors.UnknownType(errors.PhaseRegister, []string{parent, name}, typeName)
	}

	if offset >= 0 {
		switch {
		case offset < agg.Size:
			return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
				Path(parent, name).
				Value(offset).
				Detail("offset %d precedes current size %d", offset, agg.Size).
				Build()
		case agg.Union && offset != 0:
			return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
				Path(parent, name).
				Value(offset).
				Detail("union member offset must be 0, got %d", offset).
				Build()
		}
	}

	count := max(arraySize, 1)
	start := agg.Size
	if agg.Union {
		start = 0
	} else if offset > start {
		start = offset
	}
	if size > 0 && count > (math.MaxInt-start)/size {
		return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
			Path(parent, name).
			Value(arraySize).
			Detail("member of %d x %d bytes at offset %d overflows the aggregate size", count, size, start).
			Build()
	}

	if ref.Kind == RefPointer {
		if ref, err = r.ensurePointerAliasLocked(typeName); err != nil {
			return err
		}
	}
	if !agg.Union && offset > agg.Size {
		r.appendPaddingLocked(agg, offset-agg.Size)
	}

	r.appendLocked(agg, Member{
		Name:      name,
		TypeName:  ref.Name,
		Type:      ref,
		ArraySize: arraySize,
		Size:      size * count,
	})
	return nil
}

func (r *Registry) padTo(parent string, id uint64, size int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	agg, err := r.aggregateLocked(parent, id)
	if err != nil {
		return err
	}
	if size < agg.Size {
		return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
			Path(parent).
			Value(size).
			Detail("pad target %d precedes current size %d", size, agg.Size).
			Build()
	}
	if size == agg.Size {
		return nil
	}
	n := size - agg.Size
	if agg.Union {
		n = size
	}
	r.appendPaddingLocked(agg, n)
	return nil
}

func (r *Registry) aggregateLocked(name string, id uint64) (*Aggregate, error) {
	agg, ok := r.aggregates[name]
	if !ok || (id != 0 && agg.ID != id) {
		return nil, errors.NotFound(errors.PhaseRegister, "aggregate", name)
	}
	return agg, nil
}

// appendPaddingLocked adds a char[n] member under the first free __padN name.
func (r *Registry) appendPaddingLocked(agg *Aggregate, n int) {
	var name string
	for i := 0; ; i++ {
		name = paddingPrefix + strconv.Itoa(i)
		if _, taken := agg.Member(name); !taken {
			break
		}
	}
	r.appendLocked(agg, Member{
		Name:      name,
		TypeName:  "char",
		Type:      TypeRef{Kind: RefPrimitive, Name: "char", Prim: Int8},
		ArraySize: n,
		Size:      n,
		Padding:   true,
	})
}

func (r *Registry) appendLocked(agg *Aggregate, m Member) {
	agg.Members = append(agg.Members, m)

	if agg.Union {
		agg.Size = max(agg.Size, m.Size)
	} else {
		agg.Size += m.Size
	}

	r.log.Debug("member appended",
		zap.String("aggregate", agg.Name),
		zap.String("member", m.Name),
		zap.String("type", m.TypeName),
		zap.Int("array", m.ArraySize),
		zap.Int("size", agg.Size))
}

func negativeOffset(parent, name string, offset int) error {
	return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
		Path(parent, name).
		Value(offset).
		Detail("negative offset %d", offset).
		Build()
}

package gogen

import (
	"github.com/wippyai/structview/errors"
	"github.com/wippyai/structview/registry"
)

type declKind uint8

const (
	declAggregate declKind = iota
	declAlias
	declFunction
)

type decl struct {
	name string
	kind declKind
}

// dependencies orders names and the types they use so every declaration
// follows the ones it refers to. Pointer targets are not followed.
func (g *Generator) dependencies(names []string) ([]decl, error) {
	var order []decl
	state := make(map[decl]bool) // false: in progress, true: done

	var visit func(d decl) error
	visitRef := func(ref registry.TypeRef) error {
		switch ref.Kind {
		case registry.RefAggregate:
			return visit(decl{name: ref.Name, kind: declAggregate})
		case registry.RefAlias:
			if a, ok := g.reg.Alias(ref.Name); ok && userAlias(a) {
				return visit(decl{name: ref.Name, kind: declAlias})
			}
		}
		return nil
	}

	visit = func(d decl) error {
		if _, seen := state[d]; seen {
			return nil
		}
		state[d] = false

		switch d.kind {
		case declAggregate:
			agg, ok := g.reg.Aggregate(d.name)
			if !ok {
				return errors.NotFound(errors.PhaseGenerate, "aggregate", d.name)
			}
			if !agg.Union {
				for _, m := range agg.Members {
					if err := visitRef(m.Type); err != nil {
						return err
					}
				}
			}
		case declFunction:
			fn, ok := g.reg.Function(d.name)
			if !ok {
				return errors.NotFound(errors.PhaseGenerate, "function", d.name)
			}
			if fn.Return != nil {
				if err := visitRef(*fn.Return); err != nil {
					return err
				}
			}
			for _, arg := range fn.Args {
				if err := visitRef(arg.Type); err != nil {
					return err
				}
			}
		}

		state[d] = true
		order = append(order, d)
		return nil
	}

	for _, name := range names {
		d, err := g.classify(name)
		if err != nil {
			return nil, err
		}
		if err := visit(d); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (g *Generator) classify(name string) (decl, error) {
	if _, ok := g.reg.Aggregate(name); ok {
		return decl{name: name, kind: declAggregate}, nil
	}
	if _, ok := g.reg.Function(name); ok {
		return decl{name: name, kind: declFunction}, nil
	}
	if a, ok := g.reg.Alias(name); ok && userAlias(a) {
		return decl{name: name, kind: declAlias}, nil
	}
	return decl{}, errors.NotFound(errors.PhaseGenerate, "type or function", name)
}

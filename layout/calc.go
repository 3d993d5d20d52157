package layout

import (
	"github.com/wippyai/structview/errors"
	"github.com/wippyai/structview/registry"
)

// Field is one member of an aggregate with its offset.
type Field struct {
	Name      string
	TypeName  string
	Offset    int
	Size      int
	ArraySize int
	Padding   bool
}

// Info is the layout of one aggregate.
type Info struct {
	Name   string
	Fields []Field
	Size   int
	Union  bool
}

// Field returns the named field.
func (i Info) Field(name string) (Field, bool) {
	for _, f := range i.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Calculator computes direct member offsets of registered aggregates.
type Calculator struct {
	reg   *registry.Registry
	cache map[cacheKey]Info
}

type cacheKey struct {
	id      uint64
	members int
}

func NewCalculator(reg *registry.Registry) *Calculator {
	return &Calculator{
		reg:   reg,
		cache: make(map[cacheKey]Info),
	}
}

// Calculate returns the layout of the named struct or union. Results are
// cached per aggregate generation and member count, so appends and
// re-registrations are picked up.
func (c *Calculator) Calculate(name string) (Info, error) {
	agg, ok := c.reg.Aggregate(name)
	if !ok {
		return Info{}, errors.NotFound(errors.PhaseLayout, "aggregate", name)
	}

	key := cacheKey{id: agg.ID, members: len(agg.Members)}
	if cached, ok := c.cache[key]; ok {
		return cached, nil
	}

	info := Info{
		Name:   agg.Name,
		Size:   agg.Size,
		Union:  agg.Union,
		Fields: make([]Field, 0, len(agg.Members)),
	}

	offset := 0
	for _, m := range agg.Members {
		f := Field{
			Name:      m.Name,
			TypeName:  m.TypeName,
			Size:      m.Size,
			ArraySize: m.ArraySize,
			Padding:   m.Padding,
		}
		if !agg.Union {
			f.Offset = offset
			offset += m.Size
		}
		info.Fields = append(info.Fields, f)
	}

	c.cache[key] = info
	return info, nil
}

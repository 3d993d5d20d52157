package witimport

import "go.bytecodealliance.org/wit"

// Info is the Canonical ABI layout of a type.
type Info struct {
	// Offsets holds record field or tuple element offsets in order.
	Offsets []uint32
	Size    uint32
	Align   uint32
	// Payload is the payload offset of variants, options and results.
	Payload uint32
}

// Calculator computes Canonical ABI sizes, alignments and offsets.
type Calculator struct {
	cache map[*wit.TypeDef]Info
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*wit.TypeDef]Info),
	}
}

func (c *Calculator) Calculate(t wit.Type) Info {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Size: 1, Align: 1}
	case wit.U16, wit.S16:
		return Info{Size: 2, Align: 2}
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Size: 4, Align: 4}
	case wit.U64, wit.S64, wit.F64:
		return Info{Size: 8, Align: 8}
	case wit.String:
		return Info{Size: 8, Align: 4} // [ptr: u32, len: u32]
	case *wit.TypeDef:
		return c.calculateTypeDef(typ)
	default:
		return Info{Size: 0, Align: 1}
	}
}

func (c *Calculator) calculateTypeDef(t *wit.TypeDef) Info {
	if cached, ok := c.cache[t]; ok {
		return cached
	}

	var info Info

	switch kind := t.Kind.(type) {
	case *wit.Record:
		types := make([]wit.Type, len(kind.Fields))
		for i, f := range kind.Fields {
			types[i] = f.Type
		}
		info = c.calculateSequence(types)
	case *wit.Tuple:
		info = c.calculateSequence(kind.Types)
	case *wit.Variant:
		payloads := make([]wit.Type, len(kind.Cases))
		for i, cs := range kind.Cases {
			payloads[i] = cs.Type
		}
		info = c.calculateVariant(payloads)
	case *wit.Option:
		info = c.calculateVariant([]wit.Type{nil, kind.Type})
	case *wit.Result:
		info = c.calculateVariant([]wit.Type{kind.OK, kind.Err})
	case *wit.Enum:
		size := discriminantSize(len(kind.Cases))
		info = Info{Size: size, Align: size}
	case *wit.Flags:
		info = flagsInfo(len(kind.Flags))
	case *wit.List:
		info = Info{Size: 8, Align: 4}
	case *wit.Own, *wit.Borrow:
		info = Info{Size: 4, Align: 4}
	case wit.Type:
		info = c.Calculate(kind)
	default:
		info = Info{Size: 0, Align: 1}
	}

	c.cache[t] = info
	return info
}

// calculateSequence lays out record fields and tuple elements.
func (c *Calculator) calculateSequence(types []wit.Type) Info {
	if len(types) == 0 {
		return Info{Size: 0, Align: 1}
	}

	offsets := make([]uint32, len(types))
	maxAlign := uint32(1)
	offset := uint32(0)

	for i, typ := range types {
		elem := c.Calculate(typ)

		offset = alignTo(offset, elem.Align)
		offsets[i] = offset

		if elem.Align > maxAlign {
			maxAlign = elem.Align
		}

		offset += elem.Size
	}

	return Info{
		Size:    alignTo(offset, maxAlign),
		Align:   maxAlign,
		Offsets: offsets,
	}
}

// calculateVariant lays out a discriminant followed by the largest payload.
// Nil entries are cases without a payload.
func (c *Calculator) calculateVariant(payloads []wit.Type) Info {
	if len(payloads) == 0 {
		return Info{Size: 0, Align: 1}
	}

	discSize := discriminantSize(len(payloads))

	maxAlign := discSize
	maxSize := uint32(0)

	for _, p := range payloads {
		if p == nil {
			continue
		}
		layout := c.Calculate(p)
		if layout.Align > maxAlign {
			maxAlign = layout.Align
		}
		if layout.Size > maxSize {
			maxSize = layout.Size
		}
	}

	payload := alignTo(discSize, maxAlign)
	return Info{
		Size:    alignTo(payload+maxSize, maxAlign),
		Align:   maxAlign,
		Payload: payload,
	}
}

func flagsInfo(n int) Info {
	switch {
	case n == 0:
		return Info{Size: 0, Align: 1}
	case n <= 8:
		return Info{Size: 1, Align: 1}
	case n <= 16:
		return Info{Size: 2, Align: 2}
	case n <= 32:
		return Info{Size: 4, Align: 4}
	case n <= 64:
		return Info{Size: 8, Align: 8}
	}
	// >64 flags: multiple u32s
	return Info{Size: uint32((n+31)/32) * 4, Align: 4}
}

func alignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

func discriminantSize(numCases int) uint32 {
	if numCases <= 256 {
		return 1
	} else if numCases <= 65536 {
		return 2
	}
	return 4
}

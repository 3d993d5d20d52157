package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/structview"
	"github.com/wippyai/structview/errors"
	"github.com/wippyai/structview/layout"
	"github.com/wippyai/structview/registry"
)

// DefaultMaxDepth is the number of pointer levels followed when
// Options.MaxDepth is zero.
const DefaultMaxDepth = 1

// Options controls dump output.
type Options struct {
	// Styler decorates output tokens. Nil writes plain text.
	Styler Styler
	// Indent is repeated once per nesting level. Defaults to two spaces.
	Indent string
	// MaxDepth is the number of pointer levels to follow. Negative
	// disables following.
	MaxDepth    int
	ShowPadding bool
}

// Dumper writes the values of a walked type read from memory.
type Dumper struct {
	mem      structview.Memory
	w        io.Writer
	t        *layout.Tracker
	err      error
	opts     Options
	ptrSize  int
	maxDepth int
}

var _ registry.Visitor = (*Dumper)(nil)

// NewDumper prepares a dump of the value at addr.
func NewDumper(reg *registry.Registry, mem structview.Memory, w io.Writer, addr uint64, opts Options) *Dumper {
	if opts.Styler == nil {
		opts.Styler = plain
	}
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	maxDepth := opts.MaxDepth
	switch {
	case maxDepth == 0:
		maxDepth = DefaultMaxDepth
	case maxDepth < 0:
		maxDepth = 0
	}
	return &Dumper{
		mem:      mem,
		w:        w,
		t:        layout.NewTracker(addr, reg.PointerSize()),
		opts:     opts,
		ptrSize:  reg.PointerSize(),
		maxDepth: maxDepth,
	}
}

// Dump writes typeName at addr to w.
func Dump(reg *registry.Registry, mem structview.Memory, w io.Writer, root, typeName string, addr uint64, opts Options) error {
	d := NewDumper(reg, mem, w, addr, opts)
	if !reg.Visit(root, typeName, d) {
		if d.err != nil {
			return d.err
		}
		return errors.UnknownType(errors.PhaseRender, []string{root}, typeName)
	}
	return d.err
}

// Err returns the first memory or write error.
func (d *Dumper) Err() error {
	return d.err
}

func (d *Dumper) fail(err error, m registry.Member) registry.Result {
	if d.err == nil {
		d.err = errors.WithPath(errors.PhaseRender, err, m.Name)
	}
	return registry.Abort
}

func (d *Dumper) label(m registry.Member) string {
	if d.t.InArray() {
		return "[" + strconv.Itoa(d.t.Index()) + "]"
	}
	return m.Name
}

func (d *Dumper) line(name, typ string, addr uint64, value, note string) registry.Result {
	s := d.opts.Styler
	var b strings.Builder
	b.WriteString(strings.Repeat(d.opts.Indent, d.t.Depth()))
	b.WriteString(s(TokenName, name))
	b.WriteString(": ")
	b.WriteString(s(TokenType, typ))
	b.WriteString(" ")
	b.WriteString(s(TokenAddr, fmt.Sprintf("@0x%x", addr)))
	if value != "" {
		b.WriteString(" = ")
		b.WriteString(s(TokenValue, value))
	}
	if note != "" {
		b.WriteString(" ")
		b.WriteString(s(TokenNote, "("+note+")"))
	}
	b.WriteByte('\n')

	if _, err := io.WriteString(d.w, b.String()); err != nil {
		if d.err == nil {
			d.err = errors.Wrap(errors.PhaseRender, errors.KindInvalidData, err, "write dump")
		}
		return registry.Abort
	}
	return registry.Continue
}

func (d *Dumper) VisitScalar(m registry.Member, a registry.Alias) registry.Result {
	name := d.label(m)
	size := m.ElemSize()
	addr := d.t.Leaf(size)
	v, err := d.readUint(addr, size)
	if err != nil {
		return d.fail(err, m)
	}
	return d.line(name, m.TypeName, addr, formatValue(a, v, size), "")
}

func (d *Dumper) VisitAggregateEnter(m registry.Member, agg registry.Aggregate) registry.Result {
	addr := d.t.Addr()
	typ := agg.Name
	if agg.Union {
		typ = "union " + typ
	}
	if res := d.line(d.label(m), typ, addr, "", ""); res != registry.Continue {
		return res
	}
	d.t.EnterAggregate(agg)
	return registry.Continue
}

func (d *Dumper) VisitArrayEnter(m registry.Member) registry.Result {
	addr := d.t.Addr()
	typ := m.TypeName + "[" + strconv.Itoa(m.ArraySize) + "]"

	switch {
	case m.Padding:
		d.t.Advance(m.Size)
		if !d.opts.ShowPadding {
			return registry.Skip
		}
		if res := d.line(m.Name, typ, addr, "", "padding"); res != registry.Continue {
			return res
		}
		return registry.Skip

	case isCharArray(m):
		data, err := d.mem.Read(addr, uint32(m.Size))
		if err != nil {
			return d.fail(err, m)
		}
		d.t.Advance(m.Size)
		if res := d.line(m.Name, typ, addr, quoteC(data), ""); res != registry.Continue {
			return res
		}
		return registry.Skip
	}

	if res := d.line(m.Name, typ, addr, "", ""); res != registry.Continue {
		return res
	}
	d.t.EnterArray(m)
	return registry.Continue
}

func (d *Dumper) VisitPointer(m registry.Member, a registry.Alias) registry.Result {
	addr := d.t.Addr()
	v, err := d.readUint(addr, d.ptrSize)
	if err != nil {
		return d.fail(err, m)
	}
	name := d.label(m)

	switch {
	case v == 0:
		d.t.Advance(d.ptrSize)
		if res := d.line(name, m.TypeName, addr, "NULL", ""); res != registry.Continue {
			return res
		}
		return registry.Skip

	case d.t.PointerDepth() >= d.maxDepth:
		d.t.Advance(d.ptrSize)
		if res := d.line(name, m.TypeName, addr, fmt.Sprintf("0x%x", v), ""); res != registry.Continue {
			return res
		}
		return registry.Skip
	}

	if res := d.line(name, m.TypeName, addr, fmt.Sprintf("0x%x", v), ""); res != registry.Continue {
		return res
	}
	d.t.EnterPointer(v)
	return registry.Continue
}

func (d *Dumper) VisitExit(m registry.Member) registry.Result {
	d.t.Exit()
	return registry.Continue
}

// readUint reads size bytes little-endian. Odd sizes come from bit aliases.
func (d *Dumper) readUint(addr uint64, size int) (uint64, error) {
	switch size {
	case 0:
		return 0, nil
	case 1:
		v, err := d.mem.ReadU8(addr)
		return uint64(v), err
	case 2:
		v, err := d.mem.ReadU16(addr)
		return uint64(v), err
	case 4:
		v, err := d.mem.ReadU32(addr)
		return uint64(v), err
	case 8:
		return d.mem.ReadU64(addr)
	}

	n := min(size, 8)
	data, err := d.mem.Read(addr, uint32(n))
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(data[i])
	}
	return v, nil
}

func formatValue(a registry.Alias, v uint64, size int) string {
	bits := min(size*8, 64)
	if a.Bits > 0 && a.Bits < bits {
		bits = a.Bits
	}
	if bits < 64 {
		v &= 1<<bits - 1
	}

	switch {
	case a.Kind == registry.Float && size == 4:
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(v))), 'g', -1, 32)
	case a.Kind == registry.Double && size == 8:
		return strconv.FormatFloat(math.Float64frombits(v), 'g', -1, 64)
	case a.Kind == registry.Pointer || a.Kind == registry.Duint:
		return fmt.Sprintf("0x%x", v)
	case a.Kind.Signed() && !a.Kind.IsFloat():
		shift := 64 - bits
		return strconv.FormatInt(int64(v<<shift)>>shift, 10)
	default:
		return strconv.FormatUint(v, 10)
	}
}

func isCharArray(m registry.Member) bool {
	if m.Type.Kind != registry.RefPrimitive {
		return false
	}
	if m.Type.Prim != registry.Int8 && m.Type.Prim != registry.Uint8 {
		return false
	}
	return strings.Contains(strings.ToLower(m.TypeName), "char")
}

// quoteC quotes data up to the first NUL.
func quoteC(data []byte) string {
	if i := strings.IndexByte(string(data), 0); i >= 0 {
		data = data[:i]
	}
	return strconv.Quote(string(data))
}

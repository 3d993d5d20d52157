package registry

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/structview/errors"
)

// PointerOwner is the reserved owner of pointer aliases created lazily for
// "T*" type names.
const PointerOwner = "*"

type entryKind uint8

const (
	entryAlias entryKind = iota
	entryAggregate
	entryFunction
)

type entryKey struct {
	name string
	kind entryKind
}

// Registry stores primitives, aliases, aggregates and functions.
type Registry struct {
	log        *zap.Logger
	prims      map[string]*Alias
	aliases    map[string]*Alias
	aggregates map[string]*Aggregate
	functions  map[string]*Function
	owners     map[string]map[entryKey]struct{}
	nextID     uint64
	ptrSize    int
	mu         sync.RWMutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithPointerSize sets the target pointer width. Only 4 and 8 are accepted;
// other values leave the host pointer size in place.
func WithPointerSize(n int) Option {
	return func(r *Registry) {
		if n == 4 || n == 8 {
			r.ptrSize = n
		}
	}
}

// WithLogger overrides the package logger for one registry.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// New creates a registry with the primitive table bootstrapped.
func New(opts ...Option) *Registry {
	r := &Registry{
		log:        Logger(),
		prims:      make(map[string]*Alias),
		aliases:    make(map[string]*Alias),
		aggregates: make(map[string]*Aggregate),
		functions:  make(map[string]*Function),
		owners:     make(map[string]map[entryKey]struct{}),
		ptrSize:    HostPointerSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.setupPrimitives()
	return r
}

// PointerSize returns the configured target pointer width in bytes.
func (r *Registry) PointerSize() int {
	return r.ptrSize
}

// Sizeof returns the byte size of typeName, or 0 if it is unknown.
// A "T*" spelling whose base is known has the pointer size even when no
// pointer alias was registered for it yet.
func (r *Registry) Sizeof(typeName string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, size, ok := r.resolveLocked(typeName)
	if !ok {
		return 0
	}
	return size
}

// Lookup resolves typeName without registering anything.
func (r *Registry) Lookup(typeName string) (TypeRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, _, ok := r.resolveLocked(typeName)
	return ref, ok
}

// Alias returns the alias or primitive named name.
func (r *Registry) Alias(name string) (Alias, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.aliases[name]; ok {
		return a.snapshot(), true
	}
	if a, ok := r.prims[name]; ok {
		return a.snapshot(), true
	}
	return Alias{}, false
}

// Aggregate returns the struct or union named name.
func (r *Registry) Aggregate(name string) (Aggregate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.aggregates[name]; ok {
		return a.snapshot(), true
	}
	return Aggregate{}, false
}

// Function returns the function named name.
func (r *Registry) Function(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.functions[name]; ok {
		return f.snapshot(), true
	}
	return Function{}, false
}

// Aliases returns the sorted names of all registered (non-primitive) aliases.
func (r *Registry) Aliases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.aliases)
}

// Aggregates returns the sorted names of all structs and unions.
func (r *Registry) Aggregates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.aggregates)
}

// Functions returns the sorted names of all functions.
func (r *Registry) Functions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.functions)
}

// Owners returns the sorted set of owners with at least one entry.
func (r *Registry) Owners() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.owners)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// isDefinedLocked reports whether name collides with an alias or aggregate.
// Primitives are a separate namespace.
func (r *Registry) isDefinedLocked(name string) bool {
	if _, ok := r.aliases[name]; ok {
		return true
	}
	_, ok := r.aggregates[name]
	return ok
}

// resolveLocked maps a type spelling to a reference and its size.
// Lookup order: alias, aggregate, primitive, then "T*" pointer synthesis.
func (r *Registry) resolveLocked(typeName string) (TypeRef, int, bool) {
	if typeName == "" {
		return TypeRef{}, 0, false
	}
	if a, ok := r.aliases[typeName]; ok {
		return TypeRef{Kind: RefAlias, Name: typeName}, a.Size, true
	}
	if s, ok := r.aggregates[typeName]; ok {
		return TypeRef{Kind: RefAggregate, Name: typeName}, s.Size, true
	}
	if p, ok := r.prims[typeName]; ok {
		return TypeRef{Kind: RefPrimitive, Name: typeName, Prim: p.Kind}, p.Size, true
	}
	if norm := normalizePointer(typeName); norm != typeName {
		return r.resolveLocked(norm)
	}
	if base, ok := pointerBase(typeName); ok {
		elem, _, ok := r.resolveLocked(base)
		if !ok {
			return TypeRef{}, 0, false
		}
		return TypeRef{Kind: RefPointer, Name: typeName, Elem: &elem}, r.ptrSize, true
	}
	return TypeRef{}, 0, false
}

// refResolvesLocked reports whether every name ref depends on still exists.
func (r *Registry) refResolvesLocked(ref TypeRef) bool {
	switch ref.Kind {
	case RefPrimitive:
		_, ok := r.prims[ref.Name]
		return ok
	case RefAlias:
		_, ok := r.aliases[ref.Name]
		return ok
	case RefAggregate:
		_, ok := r.aggregates[ref.Name]
		return ok
	case RefPointer:
		return ref.Elem != nil && r.refResolvesLocked(*ref.Elem)
	default:
		return false
	}
}

// pointerBase strips one trailing pointer marker.
func pointerBase(typeName string) (string, bool) {
	if !strings.HasSuffix(typeName, "*") {
		return "", false
	}
	base := strings.TrimSpace(strings.TrimSuffix(typeName, "*"))
	if base == "" {
		return "", false
	}
	return base, true
}

// normalizePointer removes blanks around pointer markers: "Node * *" -> "Node**".
func normalizePointer(typeName string) string {
	if !strings.HasSuffix(typeName, "*") {
		return typeName
	}
	base := strings.TrimRight(typeName, "* \t")
	stars := strings.Count(typeName[len(base):], "*")
	return base + strings.Repeat("*", stars)
}

func (r *Registry) newIDLocked() uint64 {
	r.nextID++
	return r.nextID
}

func (r *Registry) trackLocked(owner string, key entryKey) {
	set, ok := r.owners[owner]
	if !ok {
		set = make(map[entryKey]struct{})
		r.owners[owner] = set
	}
	set[key] = struct{}{}
}

func checkOwnerName(what, owner, name string) error {
	if owner == "" {
		return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
			Name(name).
			Detail("%s owner cannot be empty", what).
			Build()
	}
	if name == "" {
		return errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
			Owner(owner).
			Detail("%s name cannot be empty", what).
			Build()
	}
	return nil
}

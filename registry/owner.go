package registry

import "go.uber.org/zap"

// Clear removes every entry tagged with owner, or every owned entry when
// owner is empty. Primitives are never removed. Pointer aliases created for
// "T*" spellings are dropped once their base type is gone. It returns the
// number of removed entries.
func (r *Registry) Clear(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var owners []string
	if owner == "" {
		owners = sortedKeys(r.owners)
	} else if _, ok := r.owners[owner]; ok {
		owners = []string{owner}
	}

	removed := 0
	for _, o := range owners {
		for key := range r.owners[o] {
			r.removeLocked(key)
			removed++
		}
		delete(r.owners, o)
	}
	if removed > 0 {
		removed += r.dropDanglingPointersLocked()
	}

	r.log.Debug("registry cleared",
		zap.String("owner", owner),
		zap.Int("removed", removed))
	return removed
}

func (r *Registry) removeLocked(key entryKey) {
	switch key.kind {
	case entryAlias:
		delete(r.aliases, key.name)
	case entryAggregate:
		delete(r.aggregates, key.name)
	case entryFunction:
		delete(r.functions, key.name)
	}
}

// dropDanglingPointersLocked repeats until a pass removes nothing, since
// dropping "T*" can leave "T**" dangling.
func (r *Registry) dropDanglingPointersLocked() int {
	set := r.owners[PointerOwner]
	removed := 0
	for changed := true; changed; {
		changed = false
		for key := range set {
			a, ok := r.aliases[key.name]
			if ok && r.refResolvesLocked(a.Target) {
				continue
			}
			delete(r.aliases, key.name)
			delete(set, key)
			removed++
			changed = true
		}
	}
	if set != nil && len(set) == 0 {
		delete(r.owners, PointerOwner)
	}
	return removed
}

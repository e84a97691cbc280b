// Package strreg implements the namespaced string-interning registry used
// to keep synchronized state free of variable-length strings: everything
// that would otherwise be a string (entity type names, tag names, field
// names) is interned once into a small integer id, and only the id
// crosses the wire or enters a snapshot.
package strreg

import (
	"fmt"
	"sort"
)

// Namespace groups interned strings into independent id spaces (e.g. one
// namespace for entity type names, another for tags) so that ids assigned
// in one namespace never collide with another.
type Namespace string

// Registry is a namespaced bijection between strings and positive int32
// ids, with deterministic, insertion-ordered id allocation.
type Registry struct {
	forward map[Namespace]map[string]int32
	reverse map[Namespace]map[int32]string
	nextID  map[Namespace]int32
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		forward: make(map[Namespace]map[string]int32),
		reverse: make(map[Namespace]map[int32]string),
		nextID:  make(map[Namespace]int32),
	}
}

// Intern returns the id for str within ns, assigning a new id on first
// insertion. Ids start at 1; 0 is never a valid intern id. Determinism
// depends on every peer calling Intern for a given (ns, str) pair in the
// same relative order — the registry itself does not enforce that, the
// caller (always inside a simulation phase) does.
func (r *Registry) Intern(ns Namespace, str string) int32 {
	table := r.forward[ns]
	if table == nil {
		table = make(map[string]int32)
		r.forward[ns] = table
		r.reverse[ns] = make(map[int32]string)
	}
	if id, ok := table[str]; ok {
		return id
	}
	r.nextID[ns]++
	id := r.nextID[ns]
	table[str] = id
	r.reverse[ns][id] = str
	return id
}

// Get performs the reverse lookup: namespace + id -> string.
func (r *Registry) Get(ns Namespace, id int32) (string, bool) {
	table := r.reverse[ns]
	if table == nil {
		return "", false
	}
	str, ok := table[id]
	return str, ok
}

// Lookup performs the forward lookup without interning: returns the id
// for str within ns if it has already been interned.
func (r *Registry) Lookup(ns Namespace, str string) (int32, bool) {
	table := r.forward[ns]
	if table == nil {
		return 0, false
	}
	id, ok := table[str]
	return id, ok
}

// NamespaceState is the serializable snapshot of a single namespace: a
// list of (id, string) pairs in ascending id order, plus the next id to
// assign.
type NamespaceState struct {
	Namespace Namespace
	NextID    int32
	Entries   []Entry
}

// Entry is a single (id, string) pair within a namespace.
type Entry struct {
	ID  int32
	Str string
}

// State returns the full serializable state of the registry: one
// NamespaceState per namespace that has at least one entry, ordered by
// namespace name ascending for deterministic encoding.
func (r *Registry) State() []NamespaceState {
	namespaces := make([]Namespace, 0, len(r.forward))
	for ns := range r.forward {
		namespaces = append(namespaces, ns)
	}
	sort.Slice(namespaces, func(i, j int) bool { return namespaces[i] < namespaces[j] })

	out := make([]NamespaceState, 0, len(namespaces))
	for _, ns := range namespaces {
		ids := make([]int32, 0, len(r.reverse[ns]))
		for id := range r.reverse[ns] {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		entries := make([]Entry, 0, len(ids))
		for _, id := range ids {
			entries = append(entries, Entry{ID: id, Str: r.reverse[ns][id]})
		}

		out = append(out, NamespaceState{
			Namespace: ns,
			NextID:    r.nextID[ns],
			Entries:   entries,
		})
	}
	return out
}

// Restore replaces the registry's contents with a previously captured
// State, discarding anything interned since.
func (r *Registry) Restore(states []NamespaceState) error {
	forward := make(map[Namespace]map[string]int32)
	reverse := make(map[Namespace]map[int32]string)
	nextID := make(map[Namespace]int32)

	for _, ns := range states {
		fwd := make(map[string]int32, len(ns.Entries))
		rev := make(map[int32]string, len(ns.Entries))
		for _, e := range ns.Entries {
			if _, dup := rev[e.ID]; dup {
				return fmt.Errorf("strreg: duplicate id %d in namespace %q", e.ID, ns.Namespace)
			}
			fwd[e.Str] = e.ID
			rev[e.ID] = e.Str
		}
		forward[ns.Namespace] = fwd
		reverse[ns.Namespace] = rev
		nextID[ns.Namespace] = ns.NextID
	}

	r.forward = forward
	r.reverse = reverse
	r.nextID = nextID
	return nil
}


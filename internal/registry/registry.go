// Package registry holds named definition slots shared by the validator and
// serializer trees. Names are reserved before any body is compiled so that
// references can point at slots that are filled later.
package registry

import "sort"

type slot[T any] struct {
	val    T
	filled bool
}

// Registry maps definition names to compiled bodies. It is written only
// during compilation and read-only afterwards.
type Registry[T any] struct {
	slots map[string]*slot[T]
}

// New returns an empty registry.
func New[T any]() *Registry[T] { return &Registry[T]{slots: map[string]*slot[T]{}} }

// Reserve registers name with an empty slot. It reports false when the name
// is already taken.
func (r *Registry[T]) Reserve(name string) bool {
	if _, ok := r.slots[name]; ok {
		return false
	}
	r.slots[name] = &slot[T]{}
	return true
}

// Reserved reports whether name was reserved.
func (r *Registry[T]) Reserved(name string) bool {
	_, ok := r.slots[name]
	return ok
}

// Fill stores the body of name, reserving it when needed.
func (r *Registry[T]) Fill(name string, v T) {
	s, ok := r.slots[name]
	if !ok {
		s = &slot[T]{}
		r.slots[name] = s
	}
	s.val, s.filled = v, true
}

// Lookup returns the body of name once filled.
func (r *Registry[T]) Lookup(name string) (T, bool) {
	s, ok := r.slots[name]
	if !ok || !s.filled {
		var zero T
		return zero, false
	}
	return s.val, true
}

// Unfilled lists reserved names without a body, sorted.
func (r *Registry[T]) Unfilled() []string {
	var out []string
	for name, s := range r.slots {
		if !s.filled {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Names lists every reserved name, sorted.
func (r *Registry[T]) Names() []string {
	out := make([]string, 0, len(r.slots))
	for name := range r.slots {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

package serializer

import (
	"sync"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/internal/registry"
)

// Definitions is the registry of named serializers shared by Ref nodes.
type Definitions = registry.Registry[Serializer]

// NewDefinitions returns an empty registry.
func NewDefinitions() *Definitions { return registry.New[Serializer]() }

// Ref delegates to a named definition resolved on first use.
type Ref struct {
	Name string

	defs   *Definitions
	once   sync.Once
	target Serializer
}

// NewRef binds a reference to a registry without resolving it.
func NewRef(name string, defs *Definitions) *Ref { return &Ref{Name: name, defs: defs} }

func (r *Ref) resolve() Serializer {
	r.once.Do(func() { r.target, _ = r.defs.Lookup(r.Name) })
	return r.target
}

func (r *Ref) Match(v any) bool {
	if t := r.resolve(); t != nil {
		return t.Match(v)
	}
	return false
}

func (r *Ref) Serialize(v any, st *State) (any, error) {
	t := r.resolve()
	if t == nil {
		return nil, skema.SchemaErrorf(r.Name, "unresolved reference %q", r.Name)
	}
	return t.Serialize(v, st)
}

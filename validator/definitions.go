package validator

import (
	"sync"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/internal/registry"
)

// Definitions is the registry of named validators shared by Ref nodes. The
// compiler reserves every name before compiling any body and fills the
// slots afterwards; once compilation ends the registry is read-only.
type Definitions = registry.Registry[Validator]

// NewDefinitions returns an empty registry.
func NewDefinitions() *Definitions { return registry.New[Validator]() }

// Ref delegates to a named definition resolved on first use.
type Ref struct {
	Name string

	defs   *Definitions
	once   sync.Once
	target Validator
}

// NewRef binds a reference to a registry without resolving it.
func NewRef(name string, defs *Definitions) *Ref { return &Ref{Name: name, defs: defs} }

func (r *Ref) resolve() Validator {
	r.once.Do(func() { r.target, _ = r.defs.Lookup(r.Name) })
	return r.target
}

func (r *Ref) Validate(in any, st *State) (skema.Value, skema.Issues) {
	target := r.resolve()
	if target == nil {
		return nil, skema.Issues{skema.NewIssue(skema.ErrorKindSchema, skema.CodeCustomError, in, map[string]any{
			"message": "unresolved reference " + r.Name,
		})}
	}
	if iss := st.enter(in); iss != nil {
		return nil, iss
	}
	defer st.leave()
	return target.Validate(in, st)
}

package dsl

import (
	"fmt"

	skema "github.com/reoring/skema"
)

type objectBuilder struct {
	s   *skema.Schema
	idx map[string]int
	err error
}

type fieldStep struct {
	b   *objectBuilder
	pos int
}

// Object creates a model builder. Undeclared keys are ignored until Forbid or
// Allow says otherwise.
func Object(name string) *objectBuilder {
	return &objectBuilder{
		s:   &skema.Schema{Type: skema.TypeModel, Name: name, Extra: skema.ExtraIgnore},
		idx: map[string]int{},
	}
}

func (b *objectBuilder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf("dsl: "+format, args...)
	}
}

// Field declares a field. Fields are required unless they get a default or
// are marked Optional.
func (b *objectBuilder) Field(name string, ad Builder) *fieldStep {
	if _, dup := b.idx[name]; dup {
		b.fail("%s: duplicate field %q", b.s.Name, name)
	}
	f := skema.Field{Name: name}
	if ad == nil {
		b.fail("%s: field %q has no schema", b.s.Name, name)
	} else if s, err := ad.Build(); err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("%s.%s: %w", b.s.Name, name, err)
		}
	} else {
		f.Schema = s
	}
	b.idx[name] = len(b.s.Fields)
	b.s.Fields = append(b.s.Fields, f)
	return &fieldStep{b: b, pos: len(b.s.Fields) - 1}
}

// Require marks one or more declared fields as required.
func (b *objectBuilder) Require(names ...string) *objectBuilder {
	for _, n := range names {
		i, ok := b.idx[n]
		if !ok {
			b.fail("%s: require of undeclared field %q", b.s.Name, n)
			continue
		}
		yes := true
		b.s.Fields[i].Required = &yes
	}
	return b
}

// Forbid rejects undeclared keys.
func (b *objectBuilder) Forbid() *objectBuilder {
	b.s.Extra = skema.ExtraForbid
	b.s.ExtrasSchema = nil
	return b
}

// Ignore drops undeclared keys.
func (b *objectBuilder) Ignore() *objectBuilder {
	b.s.Extra = skema.ExtraIgnore
	b.s.ExtrasSchema = nil
	return b
}

// Allow keeps undeclared keys as extras, validated by extras when non-nil.
func (b *objectBuilder) Allow(extras Builder) *objectBuilder {
	b.s.Extra = skema.ExtraAllow
	b.s.ExtrasSchema = nil
	if extras != nil {
		s, err := extras.Build()
		if err != nil {
			if b.err == nil {
				b.err = err
			}
			return b
		}
		b.s.ExtrasSchema = s
	}
	return b
}

// PopulateByName accepts the field name as well as its alias on input.
func (b *objectBuilder) PopulateByName() *objectBuilder {
	b.s.PopulateByName = true
	return b
}

// Ref registers the model as a named definition, so fields can point back at
// it with RefTo.
func (b *objectBuilder) Ref(name string) *objectBuilder {
	if name == "" {
		b.fail("%s: empty ref name", b.s.Name)
	}
	b.s.Ref = name
	return b
}

// Build returns the model schema. Fields are copied, child schemas shared.
func (b *objectBuilder) Build() (*skema.Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	cp := *b.s
	cp.Fields = append([]skema.Field(nil), b.s.Fields...)
	return &cp, nil
}

func (b *objectBuilder) MustBuild() *skema.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func (f *fieldStep) field() *skema.Field { return &f.b.s.Fields[f.pos] }

// Required marks the field as required. A default still fills it when absent.
func (f *fieldStep) Required() *objectBuilder {
	yes := true
	f.field().Required = &yes
	return f.b
}

// Optional lets the field be absent without a default.
func (f *fieldStep) Optional() *objectBuilder {
	no := false
	f.field().Required = &no
	return f.b
}

// Default fills the field when it is missing. The default is taken as is,
// without validation, and does not count as set.
func (f *fieldStep) Default(v any) *objectBuilder {
	fd := f.field()
	fd.Default = v
	fd.HasDefault = true
	return f.b
}

// Alias is the key used on input and, with ByAlias, on output.
func (f *fieldStep) Alias(alias string) *fieldStep {
	f.field().Alias = alias
	return f
}

// Exclude keeps the field out of serialized output.
func (f *fieldStep) Exclude() *fieldStep {
	f.field().Exclude = true
	return f
}

func (f *fieldStep) Field(name string, ad Builder) *fieldStep { return f.b.Field(name, ad) }
func (f *fieldStep) Require(names ...string) *objectBuilder   { return f.b.Require(names...) }
func (f *fieldStep) Forbid() *objectBuilder                   { return f.b.Forbid() }
func (f *fieldStep) Ignore() *objectBuilder                   { return f.b.Ignore() }
func (f *fieldStep) Allow(extras Builder) *objectBuilder      { return f.b.Allow(extras) }
func (f *fieldStep) PopulateByName() *objectBuilder           { return f.b.PopulateByName() }
func (f *fieldStep) Ref(name string) *objectBuilder           { return f.b.Ref(name) }
func (f *fieldStep) Build() (*skema.Schema, error)            { return f.b.Build() }
func (f *fieldStep) MustBuild() *skema.Schema                 { return f.b.MustBuild() }

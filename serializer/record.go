package serializer

import (
	skema "github.com/reoring/skema"
)

// Field is one declared field of a Record serializer.
type Field struct {
	Name       string
	Alias      string
	Serializer Serializer
	// Default is compared against the value under ExcludeDefaults.
	Default skema.Value
	// Exclude always drops the field.
	Exclude bool
}

// Record serializes structured records from *skema.Record values or host
// mappings and structs.
type Record struct {
	Name   string
	Fields []Field
	// Extras serializes collected extras; nil infers them.
	Extras Serializer
}

func (r *Record) Match(v any) bool {
	x := skema.Unwrap(v)
	if rec, ok := x.(*skema.Record); ok {
		return r.Name == "" || rec.Name == "" || rec.Name == r.Name
	}
	if _, ok := x.(skema.Value); ok {
		// a *skema.Map carries no record identity
		return false
	}
	m, _, ok := skema.AsMapping(x)
	if !ok {
		return false
	}
	for _, f := range r.Fields {
		if _, found := m.Get(f.Name); !found && f.Default == nil {
			if f.Alias == "" {
				return false
			}
			if _, found := m.Get(f.Alias); !found {
				return false
			}
		}
	}
	return true
}

func (r *Record) Serialize(v any, st *State) (any, error) {
	x := skema.Unwrap(v)
	if rec, ok := x.(*skema.Record); ok {
		return r.fromRecord(rec, st)
	}
	m, _, ok := skema.AsMapping(x)
	if !ok {
		return st.unexpected(r.kind(), v)
	}
	leave, err := st.enter(v)
	if err != nil {
		return nil, err
	}
	defer leave()
	out := st.newObject(len(r.Fields))
	for _, f := range r.Fields {
		raw, found := m.Get(f.Name)
		if !found && f.Alias != "" {
			raw, found = m.Get(f.Alias)
		}
		if !found {
			continue
		}
		p := skema.PresenceSeen
		if skema.IsNull(raw) {
			p |= skema.PresenceWasNull
		}
		if err := r.field(f, raw, p, out, st); err != nil {
			return nil, err
		}
	}
	return out.result(), nil
}

func (r *Record) fromRecord(rec *skema.Record, st *State) (any, error) {
	leave, err := st.enter(rec)
	if err != nil {
		return nil, err
	}
	defer leave()
	out := st.newObject(len(r.Fields))
	for _, f := range r.Fields {
		val, ok := rec.Get(f.Name)
		if !ok {
			continue
		}
		if err := r.field(f, val, rec.Presence(f.Name), out, st); err != nil {
			return nil, err
		}
	}
	if err := st.extras(rec, out, r.Extras); err != nil {
		return nil, err
	}
	return out.result(), nil
}

func (r *Record) field(f Field, raw any, p skema.Presence, out *object, st *State) error {
	if f.Exclude {
		return nil
	}
	if !st.keep(p, raw, f.Default) {
		return nil
	}
	fl, ok := st.filt.child(f.Name)
	if !ok {
		return nil
	}
	key := f.Name
	if st.opt.ByAlias && f.Alias != "" {
		key = f.Alias
	}
	restore := st.descend(skema.FieldLoc(f.Name), fl)
	item, err := serializeWith(f.Serializer, raw, st)
	restore()
	if err != nil {
		return err
	}
	out.set(key, item)
	return nil
}

func (r *Record) kind() string {
	if r.Name == "" {
		return "model"
	}
	return r.Name
}

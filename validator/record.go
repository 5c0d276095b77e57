package validator

import (
	"fmt"

	skema "github.com/reoring/skema"
)

// RecordField is one declared field of a Record validator.
type RecordField struct {
	Name      string
	Alias     string
	Validator Validator
	Required  bool
	// Default is applied when the field is absent and HasDefault is set.
	Default    skema.Value
	HasDefault bool
}

// Record validates a fixed set of named fields plus an extras policy.
type Record struct {
	Name           string
	Fields         []RecordField
	Extra          skema.ExtraBehavior
	ExtrasSchema   Validator
	PopulateByName bool

	known map[string]bool
}

// NewRecord builds a Record and indexes the keys its fields are looked up by.
func NewRecord(name string, fields []RecordField, extra skema.ExtraBehavior, extras Validator, populateByName bool) *Record {
	r := &Record{
		Name:           name,
		Fields:         fields,
		Extra:          extra,
		ExtrasSchema:   extras,
		PopulateByName: populateByName,
		known:          make(map[string]bool, len(fields)),
	}
	for _, f := range fields {
		for _, k := range r.lookupKeys(f) {
			r.known[k] = true
		}
	}
	return r
}

// lookupKeys lists the input keys a field is read from, in priority order.
func (r *Record) lookupKeys(f RecordField) []string {
	if f.Alias == "" {
		return []string{f.Name}
	}
	if r.PopulateByName && f.Alias != f.Name {
		return []string{f.Alias, f.Name}
	}
	return []string{f.Alias}
}

func (r *Record) Validate(in any, st *State) (skema.Value, skema.Issues) {
	if iss := st.enter(in); iss != nil {
		return nil, iss
	}
	defer st.leave()
	m, _, ok := skema.AsMapping(in)
	if !ok {
		return nil, skema.Issues{skema.NewIssue(skema.ErrorKindType, skema.CodeModelType, in, map[string]any{
			"class_name": r.className(),
			"got":        skema.KindName(in),
		})}
	}
	out := skema.NewRecord(r.Name, len(r.Fields))
	var all skema.Issues
	for _, f := range r.Fields {
		raw, key, found := r.lookup(m, f)
		if !found {
			switch {
			case f.HasDefault:
				out.Set(f.Name, f.Default, skema.PresenceDefaultApplied)
			case f.Required:
				miss := skema.NewIssue(skema.ErrorKindMissing, skema.CodeMissing, nil, nil)
				miss.Loc = skema.Location{skema.FieldLoc(key)}
				all = append(all, miss)
			}
		} else {
			p := skema.PresenceSeen
			if skema.IsNull(raw) {
				p |= skema.PresenceWasNull
			}
			val, iss := f.Validator.Validate(raw, st)
			if iss != nil {
				all = append(all, iss.Prefix(skema.FieldLoc(key))...)
			} else {
				out.Set(f.Name, val, p)
				st.fieldsSet++
			}
		}
		if st.FailFast && len(all) > 0 {
			return nil, all
		}
	}
	if r.Extra == skema.ExtraForbid || r.Extra == skema.ExtraAllow {
		all = append(all, r.extras(m, out, st)...)
	}
	if len(all) > 0 {
		return nil, all
	}
	return out, nil
}

func (r *Record) lookup(m skema.Mapping, f RecordField) (any, string, bool) {
	keys := r.lookupKeys(f)
	for _, k := range keys {
		if v, ok := m.Get(k); ok {
			return v, k, true
		}
	}
	return nil, keys[0], false
}

func (r *Record) extras(m skema.Mapping, out *skema.Record, st *State) skema.Issues {
	var all skema.Issues
	m.Range(func(k, v any) bool {
		name := keyText(k)
		if r.known[name] {
			return true
		}
		if r.Extra == skema.ExtraForbid {
			iss := skema.NewIssue(skema.ErrorKindExtraForbidden, skema.CodeExtraForbidden, v, nil)
			iss.Loc = skema.Location{skema.FieldLoc(name)}
			all = append(all, iss)
			return !st.FailFast
		}
		val, iss := itemsOrAny(r.ExtrasSchema).Validate(v, st)
		if iss != nil {
			all = append(all, iss.Prefix(skema.FieldLoc(name))...)
			return !st.FailFast
		}
		if out.Extra == nil {
			out.Extra = skema.NewMap(0)
		}
		out.Extra.Set(skema.Str(name), val)
		return true
	})
	return all
}

func (r *Record) className() string {
	if r.Name == "" {
		return "model"
	}
	return r.Name
}

// String names the record for debugging.
func (r *Record) String() string { return fmt.Sprintf("Record(%s, %d fields)", r.className(), len(r.Fields)) }

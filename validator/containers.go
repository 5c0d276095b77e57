package validator

import (
	"fmt"

	skema "github.com/reoring/skema"
)

// List validates homogeneous sequences. A nil Items accepts any member.
type List struct {
	Strict bool
	Items  Validator
	Length Length
}

func (v *List) Validate(in any, st *State) (skema.Value, skema.Issues) {
	if iss := st.enter(in); iss != nil {
		return nil, iss
	}
	defer st.leave()
	seq, kind, ok := skema.AsSequence(in)
	if !ok {
		return nil, typeIssue(skema.CodeListType, in, "list")
	}
	if kind != skema.SeqList {
		if st.IsStrict(v.Strict) {
			return nil, typeIssue(skema.CodeListType, in, "list")
		}
		st.Floor(ExactnessLax)
	}
	out, iss := validateMembers(seq, itemsOrAny(v.Items), 0, st)
	n := seq.Len()
	if iss == nil {
		n = len(out)
	}
	if st.FailFast && iss != nil {
		return nil, iss
	}
	if !v.Length.IsZero() {
		iss = append(iss, v.Length.check(n, in, skema.CodeTooShort, skema.CodeTooLong, map[string]any{"field_type": "List"})...)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return skema.List(out), nil
}

// validateMembers validates seq[from:] with item, prefixing issues with the
// member index.
func validateMembers(seq skema.Sequence, item Validator, from int, st *State) ([]skema.Value, skema.Issues) {
	out := make([]skema.Value, 0, seq.Len()-from)
	var all skema.Issues
	for i := from; i < seq.Len(); i++ {
		val, iss := item.Validate(seq.At(i), st)
		if iss != nil {
			all = append(all, iss.Prefix(skema.Index(i))...)
			if st.FailFast {
				return nil, all
			}
			continue
		}
		out = append(out, val)
	}
	if len(all) > 0 {
		return nil, all
	}
	return out, nil
}

func itemsOrAny(v Validator) Validator {
	if v == nil {
		return Any{}
	}
	return v
}

// Tuple validates fixed-shape sequences. With Prefix empty it is
// homogeneous over Items; otherwise Prefix fixes the leading positions and
// Items, when set, validates a variadic tail.
type Tuple struct {
	Strict bool
	Prefix []Validator
	Items  Validator
	Length Length
}

func (v *Tuple) Validate(in any, st *State) (skema.Value, skema.Issues) {
	if iss := st.enter(in); iss != nil {
		return nil, iss
	}
	defer st.leave()
	seq, kind, ok := skema.AsSequence(in)
	if !ok {
		return nil, typeIssue(skema.CodeTupleType, in, "tuple")
	}
	if kind == skema.SeqSet || kind == skema.SeqFrozenSet {
		if st.IsStrict(v.Strict) {
			return nil, typeIssue(skema.CodeTupleType, in, "tuple")
		}
		st.Floor(ExactnessLax)
	}
	n := seq.Len()
	if len(v.Prefix) == 0 {
		out, iss := validateMembers(seq, itemsOrAny(v.Items), 0, st)
		if iss == nil && !v.Length.IsZero() {
			iss = v.Length.check(n, in, skema.CodeTooShort, skema.CodeTooLong, map[string]any{"field_type": "Tuple"})
		}
		if iss != nil {
			return nil, iss
		}
		return skema.Tuple(out), nil
	}

	out := make([]skema.Value, 0, n)
	var all skema.Issues
	for i, pv := range v.Prefix {
		if i >= n {
			miss := skema.NewIssue(skema.ErrorKindMissing, skema.CodeMissing, nil, nil)
			miss.Loc = skema.Location{skema.Index(i)}
			all = append(all, miss)
			continue
		}
		val, iss := pv.Validate(seq.At(i), st)
		if iss != nil {
			all = append(all, iss.Prefix(skema.Index(i))...)
			if st.FailFast {
				return nil, all
			}
			continue
		}
		out = append(out, val)
	}
	if n > len(v.Prefix) {
		if v.Items == nil {
			all = append(all, valueIssue(skema.CodeTooLong, in, map[string]any{
				"field_type":    "Tuple",
				"max_length":    len(v.Prefix),
				"actual_length": n,
			})...)
		} else {
			tail, iss := validateMembers(seq, v.Items, len(v.Prefix), st)
			all = append(all, iss...)
			out = append(out, tail...)
		}
	}
	if len(all) == 0 && !v.Length.IsZero() {
		all = v.Length.check(n, in, skema.CodeTooShort, skema.CodeTooLong, map[string]any{"field_type": "Tuple"})
	}
	if len(all) > 0 {
		return nil, all
	}
	return skema.Tuple(out), nil
}

// Set validates collections of distinct members.
type Set struct {
	Strict     bool
	Frozen     bool
	Items      Validator
	Length     Length
	Duplicates skema.DuplicatePolicy
}

func (v *Set) Validate(in any, st *State) (skema.Value, skema.Issues) {
	if iss := st.enter(in); iss != nil {
		return nil, iss
	}
	defer st.leave()
	code, fieldType := skema.CodeSetType, "Set"
	if v.Frozen {
		code, fieldType = skema.CodeFrozenSetType, "Frozenset"
	}
	seq, kind, ok := skema.AsSequence(in)
	if !ok {
		return nil, typeIssue(code, in, fieldType)
	}
	if kind != skema.SeqSet && kind != skema.SeqFrozenSet && !st.JSON {
		if st.IsStrict(v.Strict) {
			return nil, typeIssue(code, in, fieldType)
		}
		st.Floor(ExactnessLax)
	}
	item := itemsOrAny(v.Items)
	out := skema.NewSet(seq.Len())
	out.Frozen = v.Frozen
	var all skema.Issues
	for i := 0; i < seq.Len(); i++ {
		val, iss := item.Validate(seq.At(i), st)
		if iss != nil {
			all = append(all, iss.Prefix(skema.Index(i))...)
			if st.FailFast {
				return nil, all
			}
			continue
		}
		if !out.Add(val) && v.Duplicates == skema.DuplicatesForbid {
			dup := valueIssue(skema.CodeSetDuplicate, seq.At(i), nil)
			all = append(all, dup.Prefix(skema.Index(i))...)
		}
	}
	n := seq.Len()
	if len(all) == 0 {
		n = out.Len()
	}
	if !v.Length.IsZero() && (len(all) == 0 || !st.FailFast) {
		all = append(all, v.Length.check(n, in, skema.CodeTooShort, skema.CodeTooLong, map[string]any{"field_type": fieldType})...)
	}
	if len(all) > 0 {
		return nil, all
	}
	return out, nil
}

// Dict validates mappings. Key issues are located at [key, "[key]"].
type Dict struct {
	Strict bool
	Keys   Validator
	Values Validator
	Length Length
}

func (v *Dict) Validate(in any, st *State) (skema.Value, skema.Issues) {
	if iss := st.enter(in); iss != nil {
		return nil, iss
	}
	defer st.leave()
	m, kind, ok := skema.AsMapping(in)
	if !ok {
		return nil, typeIssue(skema.CodeDictType, in, "dict")
	}
	if kind == skema.MappingRecord {
		if st.IsStrict(v.Strict) {
			return nil, typeIssue(skema.CodeDictType, in, "dict")
		}
		st.Floor(ExactnessLax)
	}
	keys, vals := itemsOrAny(v.Keys), itemsOrAny(v.Values)
	out := skema.NewMap(m.Len())
	var all skema.Issues
	m.Range(func(k, val any) bool {
		seg := skema.Key(keyText(k))
		kv, kiss := v.validateKey(keys, k, st)
		if kiss != nil {
			all = append(all, kiss.Prefix(seg, skema.Key("[key]"))...)
		}
		vv, viss := vals.Validate(val, st)
		if viss != nil {
			all = append(all, viss.Prefix(seg)...)
		}
		if kiss == nil && viss == nil {
			out.Set(kv, vv)
		}
		return len(all) == 0 || !st.FailFast
	})
	n := m.Len()
	if len(all) == 0 {
		n = out.Len()
	}
	if !v.Length.IsZero() && (len(all) == 0 || !st.FailFast) {
		all = append(all, v.Length.check(n, in, skema.CodeTooShort, skema.CodeTooLong, map[string]any{"field_type": "Dictionary"})...)
	}
	if len(all) > 0 {
		return nil, all
	}
	return out, nil
}

// validateKey runs the key validator. JSON object keys are always strings,
// so they are coerced laxly without lowering the exactness of the call.
func (v *Dict) validateKey(keys Validator, k any, st *State) (skema.Value, skema.Issues) {
	if !st.JSON {
		return keys.Validate(k, st)
	}
	mode, ex := st.Mode, st.exactness
	st.Mode = skema.StrictOff
	out, iss := keys.Validate(k, st)
	st.Mode, st.exactness = mode, ex
	return out, iss
}

func keyText(k any) string {
	switch x := skema.Unwrap(k).(type) {
	case string:
		return x
	case skema.Str:
		return string(x)
	case skema.Value:
		return fmt.Sprint(x.Native())
	}
	return fmt.Sprint(k)
}

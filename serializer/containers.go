package serializer

import (
	skema "github.com/reoring/skema"
)

// List serializes lists, sets and frozensets. A nil Items infers members.
type List struct {
	// Kind names the declared container in warnings ("list", "set", ...).
	Kind  string
	Items Serializer
}

func (l *List) Match(v any) bool {
	_, _, ok := skema.AsSequence(skema.Unwrap(v))
	return ok
}

func (l *List) Serialize(v any, st *State) (any, error) {
	x := skema.Unwrap(v)
	seq, _, ok := skema.AsSequence(x)
	if !ok {
		return st.unexpected(l.kind(), v)
	}
	return st.members(v, seq, func(int) Serializer { return l.Items })
}

func (l *List) kind() string {
	if l.Kind == "" {
		return "list"
	}
	return l.Kind
}

// Tuple serializes positional sequences: Prefix by position, then Items for
// the tail.
type Tuple struct {
	Prefix []Serializer
	Items  Serializer
}

func (t *Tuple) Match(v any) bool {
	_, _, ok := skema.AsSequence(skema.Unwrap(v))
	return ok
}

func (t *Tuple) Serialize(v any, st *State) (any, error) {
	x := skema.Unwrap(v)
	seq, _, ok := skema.AsSequence(x)
	if !ok {
		return st.unexpected("tuple", v)
	}
	return st.members(v, seq, func(i int) Serializer {
		if i < len(t.Prefix) {
			return t.Prefix[i]
		}
		return t.Items
	})
}

// members serializes every emitted member of seq with the serializer chosen
// by position (nil infers).
func (st *State) members(container any, seq skema.Sequence, at func(int) Serializer) (any, error) {
	leave, err := st.enter(container)
	if err != nil {
		return nil, err
	}
	defer leave()
	out := make([]any, 0, seq.Len())
	for i := 0; i < seq.Len(); i++ {
		f, ok := st.filt.child(skema.IndexKey(i))
		if !ok {
			continue
		}
		restore := st.descend(skema.Index(i), f)
		item, err := serializeWith(at(i), seq.At(i), st)
		restore()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func serializeWith(s Serializer, v any, st *State) (any, error) {
	if s == nil {
		return st.infer(v)
	}
	return s.Serialize(v, st)
}

// Dict serializes mappings. Keys are rendered as text in every mode.
type Dict struct {
	Keys   Serializer
	Values Serializer
}

func (d *Dict) Match(v any) bool {
	x := skema.Unwrap(v)
	if _, ok := x.(*skema.Record); ok {
		return false
	}
	_, _, ok := skema.AsMapping(x)
	return ok
}

func (d *Dict) Serialize(v any, st *State) (any, error) {
	x := skema.Unwrap(v)
	m, _, ok := skema.AsMapping(x)
	if !ok {
		return st.unexpected("dict", v)
	}
	leave, err := st.enter(v)
	if err != nil {
		return nil, err
	}
	defer leave()
	out := st.newObject(m.Len())
	m.Range(func(k, val any) bool {
		var kout any
		if kout, err = serializeWith(d.Keys, k, st); err != nil {
			return false
		}
		key := keyText(kout)
		f, emit := st.filt.child(key)
		if !emit || (st.opt.ExcludeNone && skema.IsNull(val)) {
			return true
		}
		restore := st.descend(skema.Key(key), f)
		var item any
		item, err = serializeWith(d.Values, val, st)
		restore()
		if err != nil {
			return false
		}
		out.set(key, item)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out.result(), nil
}

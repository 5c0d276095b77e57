package serializer

import (
	"fmt"

	skema "github.com/reoring/skema"
)

// Union serializes with the first choice that matches the value. Values no
// choice matches are inferred with a warning.
type Union struct {
	Choices []Serializer
}

func (u *Union) Match(v any) bool {
	for _, c := range u.Choices {
		if c.Match(v) {
			return true
		}
	}
	return false
}

func (u *Union) Serialize(v any, st *State) (any, error) {
	for _, c := range u.Choices {
		if c.Match(v) {
			return c.Serialize(v, st)
		}
	}
	return st.unexpected("union", v)
}

// Tagged picks the choice named by the value found at Discriminator, then
// falls back to matching like Union.
type Tagged struct {
	Discriminator []any
	Tags          []string
	Choices       []Serializer
}

func (t *Tagged) Match(v any) bool {
	if c := t.byTag(v); c != nil {
		return c.Match(v)
	}
	return (&Union{Choices: t.Choices}).Match(v)
}

func (t *Tagged) Serialize(v any, st *State) (any, error) {
	if c := t.byTag(v); c != nil {
		return c.Serialize(v, st)
	}
	return (&Union{Choices: t.Choices}).Serialize(v, st)
}

func (t *Tagged) byTag(v any) Serializer {
	cur := v
	for _, step := range t.Discriminator {
		switch s := step.(type) {
		case string:
			m, _, ok := skema.AsMapping(skema.Unwrap(cur))
			if !ok {
				return nil
			}
			if cur, ok = m.Get(s); !ok {
				return nil
			}
		case int:
			seq, _, ok := skema.AsSequence(skema.Unwrap(cur))
			if !ok || s < 0 || s >= seq.Len() {
				return nil
			}
			cur = seq.At(s)
		default:
			return nil
		}
	}
	tag := tagText(cur)
	for i, name := range t.Tags {
		if name == tag && i < len(t.Choices) {
			return t.Choices[i]
		}
	}
	return nil
}

func tagText(v any) string {
	switch x := skema.Unwrap(v).(type) {
	case string:
		return x
	case skema.Str:
		return string(x)
	case nil, skema.Null:
		return "None"
	case skema.Value:
		return fmt.Sprint(x.Native())
	}
	return fmt.Sprint(v)
}

// Nullable serializes null or delegates to Inner.
type Nullable struct {
	Inner Serializer
}

func (n *Nullable) Match(v any) bool { return skema.IsNull(v) || n.Inner.Match(v) }

func (n *Nullable) Serialize(v any, st *State) (any, error) {
	if skema.IsNull(v) {
		return nil, nil
	}
	return n.Inner.Serialize(v, st)
}

// Wrap serializes the value of a node that only adds validation behaviour
// (custom constraints, embedded JSON) with its inner serializer.
type Wrap struct {
	Inner Serializer
}

func (w *Wrap) Match(v any) bool { return w.Inner == nil || w.Inner.Match(v) }

func (w *Wrap) Serialize(v any, st *State) (any, error) { return serializeWith(w.Inner, v, st) }

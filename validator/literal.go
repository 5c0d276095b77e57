package validator

import (
	"errors"
	"strconv"
	"strings"

	skema "github.com/reoring/skema"
)

// Literal accepts exactly one of a fixed set of values. Equality is by kind:
// 1 and 1.0 and true are three different literals.
type Literal struct {
	Strict   bool
	Expected []skema.Value
}

func (v *Literal) Validate(in any, st *State) (skema.Value, skema.Issues) {
	if got, err := skema.ValueOf(in); err == nil {
		for _, e := range v.Expected {
			if sameKind(e, got) && skema.Equal(e, got) {
				return e, nil
			}
		}
	}
	if !st.IsStrict(v.Strict) {
		if e, rank, ok := v.laxMatch(skema.Unwrap(in)); ok {
			st.Floor(rank)
			return e, nil
		}
	}
	return nil, valueIssue(skema.CodeLiteralError, in, map[string]any{"expected": expectedText(v.Expected)})
}

// laxMatch lets a string match an int literal through its decimal form and
// an int match a string literal the same way.
func (v *Literal) laxMatch(x any) (skema.Value, Exactness, bool) {
	if s, ok := asString(x); ok {
		s = strings.TrimSpace(s)
		for _, e := range v.Expected {
			if b, ok := skema.BigOf(e); ok && b.String() == s {
				return e, ExactnessNumeric, true
			}
		}
		return nil, 0, false
	}
	if n, ok := probeNumber(x); ok && n.kind == numInt {
		txt := n.i.String()
		for _, e := range v.Expected {
			if s, ok := e.(skema.Str); ok && string(s) == txt {
				return e, ExactnessLax, true
			}
		}
	}
	return nil, 0, false
}

func sameKind(a, b skema.Value) bool {
	ka, kb := a.Kind(), b.Kind()
	if ka == skema.KindBigInt {
		ka = skema.KindInt
	}
	if kb == skema.KindBigInt {
		kb = skema.KindInt
	}
	return ka == kb
}

func expectedText(vals []skema.Value) string {
	parts := make([]string, len(vals))
	for i, e := range vals {
		parts[i] = skema.FormatValue(e)
	}
	return formatChoices(parts)
}

// Enum coerces input with the member kind's validator, then checks
// membership.
type Enum struct {
	Members []skema.Value
	// Sub coerces input before the membership test; nil compares raw values.
	Sub Validator
}

func (v *Enum) Validate(in any, st *State) (skema.Value, skema.Issues) {
	cand := skema.Value(nil)
	if v.Sub != nil {
		if got, iss := v.Sub.Validate(in, st); iss == nil {
			cand = got
		}
	} else if got, err := skema.ValueOf(in); err == nil {
		cand = got
	}
	if cand != nil {
		for _, m := range v.Members {
			if skema.Equal(m, cand) {
				return m, nil
			}
		}
	}
	return nil, valueIssue(skema.CodeEnum, in, map[string]any{"expected": expectedText(v.Members)})
}

// Any accepts every input and infers its value.
type Any struct{}

func (Any) Validate(in any, st *State) (skema.Value, skema.Issues) {
	out, err := skema.ValueOf(in)
	switch {
	case errors.Is(err, skema.ErrValueTooDeep):
		return nil, skema.Issues{skema.NewIssue(skema.ErrorKindRecursionLimit, skema.CodeRecursionLimit, in, nil)}
	case err != nil:
		return nil, typeIssue(skema.CodeUnsupportedType, in, "any")
	}
	return out, nil
}

// None accepts only null.
type None struct{}

func (None) Validate(in any, st *State) (skema.Value, skema.Issues) {
	if skema.IsNull(in) {
		return skema.Null{}, nil
	}
	return nil, typeIssue(skema.CodeNoneRequired, in, "none")
}

// Nullable accepts null or whatever Inner accepts.
type Nullable struct {
	Inner Validator
}

func (v *Nullable) Validate(in any, st *State) (skema.Value, skema.Issues) {
	if skema.IsNull(in) {
		return skema.Null{}, nil
	}
	return v.Inner.Validate(in, st)
}

// branchLabel is the location segment of a union branch.
func branchLabel(label string, i int) skema.LocItem {
	if label == "" {
		label = strconv.Itoa(i)
	}
	return skema.Branch(label)
}

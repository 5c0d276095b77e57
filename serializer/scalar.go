package serializer

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	skema "github.com/reoring/skema"
)

// Scalar serializes one scalar kind. Encoding applies to bytes.
type Scalar struct {
	Kind     skema.ValueKind
	Encoding skema.BytesEncoding
}

func (s *Scalar) Match(v any) bool {
	_, ok := s.coerce(v)
	return ok
}

func (s *Scalar) Serialize(v any, st *State) (any, error) {
	val, ok := s.coerce(v)
	if !ok {
		return st.unexpected(s.Kind.String(), v)
	}
	return st.scalar(val, s.Encoding)
}

// coerce converts v to the node kind when that loses nothing: ints widen to
// float and decimal, midnight datetimes narrow to dates, datetimes give
// their clock to times.
func (s *Scalar) coerce(v any) (skema.Value, bool) {
	val, ok := scalarValue(v)
	if !ok {
		return nil, false
	}
	switch s.Kind {
	case skema.KindInt, skema.KindBigInt:
		k := val.Kind()
		return val, k == skema.KindInt || k == skema.KindBigInt
	case skema.KindFloat:
		switch x := val.(type) {
		case skema.Float:
			return x, true
		case skema.Int:
			return skema.Float(x), true
		}
	case skema.KindDecimal:
		switch x := val.(type) {
		case skema.Decimal:
			return x, true
		case skema.Int:
			return skema.Decimal{Decimal: decimal.NewFromInt(int64(x))}, true
		case skema.BigInt:
			return skema.Decimal{Decimal: decimal.NewFromBigInt(x.Int, 0)}, true
		case skema.Float:
			if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
				return nil, false
			}
			return skema.Decimal{Decimal: decimal.NewFromFloat(float64(x))}, true
		}
	case skema.KindDate:
		switch x := val.(type) {
		case skema.Date:
			return x, true
		case skema.DateTime:
			t := x.Time
			if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
				return skema.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}, true
			}
		}
	case skema.KindTime:
		switch x := val.(type) {
		case skema.Time:
			return x, true
		case skema.DateTime:
			t := x.Time
			return skema.Time{Time: time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()), Naive: x.Naive}, true
		}
	default:
		return val, val.Kind() == s.Kind
	}
	return nil, false
}

// scalarValue infers a scalar Value from v. Containers are not scalars.
func scalarValue(v any) (skema.Value, bool) {
	if skema.IsNull(v) {
		return skema.Null{}, true
	}
	x := skema.Unwrap(v)
	if val, ok := x.(skema.Value); ok {
		switch val.Kind() {
		case skema.KindList, skema.KindTuple, skema.KindSet, skema.KindMap, skema.KindRecord:
			return nil, false
		}
		return val, true
	}
	if _, _, ok := skema.AsSequence(x); ok {
		return nil, false
	}
	if _, _, ok := skema.AsMapping(x); ok {
		return nil, false
	}
	val, err := skema.ValueOf(x)
	return val, err == nil
}

// Any serializes by inference.
type Any struct{}

func (Any) Match(any) bool { return true }

func (Any) Serialize(v any, st *State) (any, error) { return st.infer(v) }

// None serializes null.
type None struct{}

func (None) Match(v any) bool { return skema.IsNull(v) }

func (None) Serialize(v any, st *State) (any, error) {
	if skema.IsNull(v) {
		return nil, nil
	}
	return st.unexpected("none", v)
}

// Literal serializes one of a fixed set of values. It backs literal and enum
// nodes.
type Literal struct {
	Expected []skema.Value
}

func (l *Literal) Match(v any) bool {
	val, ok := scalarValue(v)
	if !ok {
		return false
	}
	for _, e := range l.Expected {
		if e.Kind() == val.Kind() && skema.Equal(e, val) {
			return true
		}
	}
	return false
}

func (l *Literal) Serialize(v any, st *State) (any, error) {
	if !l.Match(v) {
		return st.unexpected("literal", v)
	}
	return st.infer(v)
}

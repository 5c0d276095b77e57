package compiler

import (
	"fmt"
	"time"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/codec"
	"github.com/reoring/skema/serializer"
	"github.com/reoring/skema/validator"
)

func (c *compiler) number(s *skema.Schema, path string, strict bool) (validator.Validator, serializer.Serializer, error) {
	// limits are read as decimals so an int node may carry gt=0.5
	bounds, err := numBounds(s, path, &validator.Decimal{})
	if err != nil {
		return nil, nil, err
	}
	switch s.Type {
	case skema.TypeInt:
		return &validator.Int{Strict: strict, Bounds: bounds}, scalar(skema.KindInt), nil
	case skema.TypeFloat:
		allow := true
		if s.AllowInfNaN != nil {
			allow = *s.AllowInfNaN
		}
		return &validator.Float{Strict: strict, AllowInfNaN: allow, Bounds: bounds}, scalar(skema.KindFloat), nil
	}
	if err := checkDigits(s, path); err != nil {
		return nil, nil, err
	}
	return &validator.Decimal{
		Strict:        strict,
		MaxDigits:     s.MaxDigits,
		DecimalPlaces: s.DecimalPlaces,
		Bounds:        bounds,
	}, scalar(skema.KindDecimal), nil
}

func checkDigits(s *skema.Schema, path string) error {
	switch {
	case s.MaxDigits != nil && *s.MaxDigits <= 0:
		return skema.SchemaErrorf(path, "max_digits must be positive")
	case s.DecimalPlaces != nil && *s.DecimalPlaces < 0:
		return skema.SchemaErrorf(path, "decimal_places must not be negative")
	case s.MaxDigits != nil && s.DecimalPlaces != nil && *s.DecimalPlaces > *s.MaxDigits:
		return skema.SchemaErrorf(path, "decimal_places %d exceeds max_digits %d", *s.DecimalPlaces, *s.MaxDigits)
	}
	return nil
}

func (c *compiler) temporal(s *skema.Schema, path string, strict bool) (validator.Validator, serializer.Serializer, error) {
	if s.MultipleOf != nil && s.Type != skema.TypeTimedelta {
		return nil, nil, skema.SchemaErrorf(path, "multiple_of is not supported for %s", s.Type)
	}
	switch s.Type {
	case skema.TypeDate:
		b, err := numBounds(s, path, &validator.Date{})
		if err != nil {
			return nil, nil, err
		}
		return &validator.Date{Strict: strict, Bounds: b}, scalar(skema.KindDate), nil
	case skema.TypeTime:
		b, err := numBounds(s, path, &validator.Time{})
		if err != nil {
			return nil, nil, err
		}
		return &validator.Time{Strict: strict, Bounds: b}, scalar(skema.KindTime), nil
	case skema.TypeDateTime:
		b, err := numBounds(s, path, &validator.DateTime{})
		if err != nil {
			return nil, nil, err
		}
		return &validator.DateTime{Strict: strict, Bounds: b}, scalar(skema.KindDateTime), nil
	}
	b, err := numBounds(s, path, &validator.Timedelta{})
	if err != nil {
		return nil, nil, err
	}
	return &validator.Timedelta{Strict: strict, Bounds: b}, scalar(skema.KindDuration), nil
}

// numBounds reads the configured limits through parse, a bare lax node of
// the bounded kind, and rejects limits that no value can satisfy.
func numBounds(s *skema.Schema, path string, parse validator.Validator) (validator.NumBounds, error) {
	var b validator.NumBounds
	limits := []struct {
		name string
		raw  any
		dst  **validator.Bound
	}{
		{"gt", s.GT, &b.GT},
		{"ge", s.GE, &b.GE},
		{"lt", s.LT, &b.LT},
		{"le", s.LE, &b.LE},
		{"multiple_of", s.MultipleOf, &b.MultipleOf},
	}
	for _, l := range limits {
		if l.raw == nil {
			continue
		}
		bound, err := readBound(l.raw, parse)
		if err != nil {
			return b, skema.SchemaErrorf(path+"/"+l.name, "invalid %s: %v", l.name, err)
		}
		*l.dst = bound
	}
	if b.MultipleOf != nil && b.MultipleOf.R.Sign() <= 0 {
		return b, skema.SchemaErrorf(path+"/multiple_of", "multiple_of must be positive")
	}
	lower, lowerStrict := b.GE, false
	if b.GT != nil && (lower == nil || b.GT.R.Cmp(lower.R) >= 0) {
		lower, lowerStrict = b.GT, true
	}
	upper, upperStrict := b.LE, false
	if b.LT != nil && (upper == nil || b.LT.R.Cmp(upper.R) <= 0) {
		upper, upperStrict = b.LT, true
	}
	if lower != nil && upper != nil {
		cmp := lower.R.Cmp(upper.R)
		if cmp > 0 || (cmp == 0 && (lowerStrict || upperStrict)) {
			return b, skema.SchemaErrorf(path, "contradictory bounds: lower %s, upper %s", lower.Text, upper.Text)
		}
	}
	return b, nil
}

func readBound(raw any, parse validator.Validator) (*validator.Bound, error) {
	val, iss := parse.Validate(raw, laxState())
	if iss != nil {
		return nil, iss
	}
	r, ok := validator.OrderKey(val)
	if !ok {
		return nil, fmt.Errorf("%s is not an ordered value", skema.FormatValue(raw))
	}
	b := &validator.Bound{R: r, Text: boundText(val)}
	if d, ok := val.(skema.Decimal); ok {
		b.Dec = &d.Decimal
	}
	return b, nil
}

// boundText is the display form of a limit in messages.
func boundText(v skema.Value) string {
	switch x := v.(type) {
	case skema.Date:
		return codec.FormatDate(x.Time)
	case skema.Time:
		return codec.FormatTime(x.Time, x.Naive)
	case skema.DateTime:
		return codec.FormatDateTime(x.Time, x.Naive)
	case skema.Duration:
		return codec.FormatDuration(time.Duration(x))
	case skema.Decimal:
		return x.String()
	}
	return fmt.Sprint(v.Native())
}

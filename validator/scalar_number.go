package validator

import (
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	skema "github.com/reoring/skema"
)

// Bool validates booleans. Lax mode also accepts a fixed token set and
// numbers (nonzero is true).
type Bool struct {
	Strict bool
}

var boolTokens = map[string]bool{
	"true": true, "false": false,
	"1": true, "0": false,
	"yes": true, "no": false,
	"on": true, "off": false,
	"t": true, "f": false,
	"y": true, "n": false,
}

func (v *Bool) Validate(in any, st *State) (skema.Value, skema.Issues) {
	x := skema.Unwrap(in)
	if b, ok := asBool(x); ok {
		return skema.Bool(b), nil
	}
	if st.IsStrict(v.Strict) {
		return nil, typeIssue(skema.CodeBoolType, in, "bool")
	}
	if s, ok := asString(x); ok {
		b, known := boolTokens[strings.ToLower(strings.TrimSpace(s))]
		if !known {
			return nil, valueIssue(skema.CodeBoolParsing, in, nil)
		}
		st.Floor(ExactnessBool)
		return skema.Bool(b), nil
	}
	if n, ok := probeNumber(x); ok {
		st.Floor(ExactnessBool)
		switch n.kind {
		case numInt:
			return skema.Bool(n.i.Sign() != 0), nil
		case numDecimal:
			return skema.Bool(!n.d.IsZero()), nil
		}
		if n.literal && !n.oversize {
			return skema.Bool(!n.d.IsZero()), nil
		}
		if math.IsNaN(n.f) {
			return nil, valueIssue(skema.CodeBoolParsing, in, nil)
		}
		return skema.Bool(n.f != 0), nil
	}
	return nil, typeIssue(skema.CodeBoolType, in, "bool")
}

// Int validates integers of any size. Values beyond int64 become BigInt and
// are never truncated.
type Int struct {
	Strict bool
	Bounds NumBounds
}

func (v *Int) Validate(in any, st *State) (skema.Value, skema.Issues) {
	n, iss := v.coerce(in, st)
	if iss != nil {
		return nil, iss
	}
	if !v.Bounds.IsZero() {
		if iss := v.Bounds.check(new(big.Rat).SetInt(n), in); iss != nil {
			return nil, iss
		}
	}
	return skema.IntValue(n), nil
}

func (v *Int) coerce(in any, st *State) (*big.Int, skema.Issues) {
	x := skema.Unwrap(in)
	strict := st.IsStrict(v.Strict)
	if b, ok := asBool(x); ok {
		if strict {
			return nil, typeIssue(skema.CodeIntType, in, "int")
		}
		st.Floor(ExactnessBool)
		if b {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	}
	if s, ok := asString(x); ok {
		if strict {
			return nil, typeIssue(skema.CodeIntType, in, "int")
		}
		if skema.Number(s).Digits() > skema.MaxIntDigits {
			return nil, valueIssue(skema.CodeIntParsingSize, in, nil)
		}
		n, ok := parseIntString(s)
		if !ok {
			return nil, typeIssue(skema.CodeIntParsing, in, "int")
		}
		st.Floor(ExactnessNumeric)
		return n, nil
	}
	num, ok := probeNumber(x)
	if !ok {
		return nil, typeIssue(skema.CodeIntType, in, "int")
	}
	switch num.kind {
	case numInt:
		return num.i, nil
	case numDecimal:
		if strict {
			return nil, typeIssue(skema.CodeIntType, in, "int")
		}
		n, iss := intFromDecimal(num.d, in)
		if iss == nil {
			st.Floor(ExactnessNumeric)
		}
		return n, iss
	}
	if strict {
		return nil, typeIssue(skema.CodeIntType, in, "int")
	}
	if num.oversize {
		return nil, valueIssue(skema.CodeIntParsingSize, in, nil)
	}
	if num.literal {
		// exact even when the literal exceeds float64 precision
		n, iss := intFromDecimal(num.d, in)
		if iss == nil {
			st.Floor(ExactnessNumeric)
		}
		return n, iss
	}
	if !isFinite(num.f) {
		return nil, valueIssue(skema.CodeFiniteNumber, in, nil)
	}
	if num.f != math.Trunc(num.f) {
		return nil, typeIssue(skema.CodeIntFromFloat, in, "int")
	}
	st.Floor(ExactnessNumeric)
	return bigFromFloat(num.f), nil
}

// intFromDecimal converts an integral decimal. Oversized values are refused
// before any exact expansion.
func intFromDecimal(d decimal.Decimal, in any) (*big.Int, skema.Issues) {
	switch {
	case intTooLarge(d):
		return nil, valueIssue(skema.CodeIntParsingSize, in, nil)
	case d.IsZero():
		return new(big.Int), nil
	case d.Exponent() < -skema.MaxDecimalExponent || !d.Equal(d.Truncate(0)):
		return nil, typeIssue(skema.CodeIntFromFloat, in, "int")
	}
	return d.BigInt(), nil
}

// Float validates binary floating point numbers. Integers are accepted in
// strict mode as a numeric widening.
type Float struct {
	Strict      bool
	AllowInfNaN bool
	Bounds      NumBounds
}

func (v *Float) Validate(in any, st *State) (skema.Value, skema.Issues) {
	f, iss := v.coerce(in, st)
	if iss != nil {
		return nil, iss
	}
	if !v.AllowInfNaN && !isFinite(f) {
		return nil, valueIssue(skema.CodeFiniteNumber, in, nil)
	}
	if iss := v.Bounds.checkFloat(f, in); iss != nil {
		return nil, iss
	}
	return skema.Float(f), nil
}

func (v *Float) coerce(in any, st *State) (float64, skema.Issues) {
	x := skema.Unwrap(in)
	strict := st.IsStrict(v.Strict)
	if b, ok := asBool(x); ok {
		if strict {
			return 0, typeIssue(skema.CodeFloatType, in, "float")
		}
		st.Floor(ExactnessBool)
		if b {
			return 1, nil
		}
		return 0, nil
	}
	if s, ok := asString(x); ok {
		if strict {
			return 0, typeIssue(skema.CodeFloatType, in, "float")
		}
		f, ok := parseFloatString(s)
		if !ok {
			return 0, typeIssue(skema.CodeFloatParsing, in, "float")
		}
		st.Floor(ExactnessNumeric)
		return f, nil
	}
	num, ok := probeNumber(x)
	if !ok {
		return 0, typeIssue(skema.CodeFloatType, in, "float")
	}
	switch num.kind {
	case numInt:
		st.Floor(ExactnessNumeric)
		return floatFromBig(num.i), nil
	case numDecimal:
		if strict {
			return 0, typeIssue(skema.CodeFloatType, in, "float")
		}
		st.Floor(ExactnessNumeric)
		f, _ := num.d.Float64()
		return f, nil
	}
	return num.f, nil
}

// Decimal validates arbitrary-precision decimals.
type Decimal struct {
	Strict        bool
	MaxDigits     *int
	DecimalPlaces *int
	Bounds        NumBounds
}

func (v *Decimal) Validate(in any, st *State) (skema.Value, skema.Issues) {
	d, iss := v.coerce(in, st)
	if iss != nil {
		return nil, iss
	}
	if iss := v.Bounds.checkDecimal(d, in); iss != nil {
		return nil, iss
	}
	if v.MaxDigits != nil || v.DecimalPlaces != nil {
		digits, places := decimalShape(d)
		if v.MaxDigits != nil && digits > *v.MaxDigits {
			return nil, valueIssue(skema.CodeDecimalMaxDigits, in, map[string]any{"max_digits": *v.MaxDigits})
		}
		if v.DecimalPlaces != nil && places > *v.DecimalPlaces {
			return nil, valueIssue(skema.CodeDecimalMaxPlaces, in, map[string]any{"decimal_places": *v.DecimalPlaces})
		}
	}
	return skema.Decimal{Decimal: d}, nil
}

func (v *Decimal) coerce(in any, st *State) (decimal.Decimal, skema.Issues) {
	x := skema.Unwrap(in)
	strict := st.IsStrict(v.Strict)
	if s, ok := asString(x); ok {
		if strict {
			return decimal.Decimal{}, typeIssue(skema.CodeDecimalType, in, "decimal")
		}
		c, ok := cleanNumeric(s)
		if !ok || !skema.Number(c).Bounded() {
			return decimal.Decimal{}, valueIssue(skema.CodeDecimalParsing, in, nil)
		}
		d, err := decimal.NewFromString(c)
		if err != nil || decimalTooLarge(d) {
			return decimal.Decimal{}, valueIssue(skema.CodeDecimalParsing, in, nil)
		}
		st.Floor(ExactnessNumeric)
		return d, nil
	}
	num, ok := probeNumber(x)
	if !ok {
		return decimal.Decimal{}, typeIssue(skema.CodeDecimalType, in, "decimal")
	}
	if num.kind == numDecimal {
		if decimalTooLarge(num.d) {
			return decimal.Decimal{}, valueIssue(skema.CodeDecimalParsing, in, nil)
		}
		return num.d, nil
	}
	if strict && !(num.literal && st.JSON) {
		return decimal.Decimal{}, typeIssue(skema.CodeDecimalType, in, "decimal")
	}
	st.Floor(ExactnessNumeric)
	switch {
	case num.kind == numInt:
		return decimal.NewFromBigInt(num.i, 0), nil
	case num.oversize:
		return decimal.Decimal{}, valueIssue(skema.CodeDecimalParsing, in, nil)
	case num.literal:
		return num.d, nil
	case !isFinite(num.f):
		return decimal.Decimal{}, valueIssue(skema.CodeFiniteNumber, in, nil)
	}
	return decimal.NewFromFloat(num.f), nil
}

// decimalShape returns the total significant digits and the decimal places
// of d after trailing fractional zeros are dropped.
func decimalShape(d decimal.Decimal) (digits, places int) {
	coef := new(big.Int).Abs(d.Coefficient())
	exp := int(d.Exponent())
	ten := big.NewInt(10)
	rem := new(big.Int)
	for exp < 0 && coef.Sign() != 0 {
		q, r := new(big.Int).QuoRem(coef, ten, rem)
		if r.Sign() != 0 {
			break
		}
		coef = q
		exp++
	}
	n := len(coef.String())
	if exp >= 0 {
		if coef.Sign() == 0 {
			return 1, 0
		}
		return n + exp, 0
	}
	places = -exp
	if places > n {
		return places, places
	}
	return n, places
}

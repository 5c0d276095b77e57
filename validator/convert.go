package validator

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	skema "github.com/reoring/skema"
)

type numKind uint8

const (
	numInt numKind = iota + 1
	numFloat
	numDecimal
)

// number is a probed numeric input.
type number struct {
	kind numKind
	i    *big.Int
	f    float64
	d    decimal.Decimal
	// literal is set for JSON number literals; d then holds their exact value
	// unless oversize is set too.
	literal  bool
	oversize bool
}

// probeNumber classifies x (already unwrapped) as a number. Bools are not
// numbers.
func probeNumber(x any) (number, bool) {
	switch t := x.(type) {
	case int:
		return number{kind: numInt, i: big.NewInt(int64(t))}, true
	case int8:
		return number{kind: numInt, i: big.NewInt(int64(t))}, true
	case int16:
		return number{kind: numInt, i: big.NewInt(int64(t))}, true
	case int32:
		return number{kind: numInt, i: big.NewInt(int64(t))}, true
	case int64:
		return number{kind: numInt, i: big.NewInt(t)}, true
	case uint:
		return number{kind: numInt, i: new(big.Int).SetUint64(uint64(t))}, true
	case uint8:
		return number{kind: numInt, i: big.NewInt(int64(t))}, true
	case uint16:
		return number{kind: numInt, i: big.NewInt(int64(t))}, true
	case uint32:
		return number{kind: numInt, i: big.NewInt(int64(t))}, true
	case uint64:
		return number{kind: numInt, i: new(big.Int).SetUint64(t)}, true
	case *big.Int:
		if t == nil {
			return number{}, false
		}
		return number{kind: numInt, i: t}, true
	case float32:
		return number{kind: numFloat, f: float64(t)}, true
	case float64:
		return number{kind: numFloat, f: t}, true
	case decimal.Decimal:
		return number{kind: numDecimal, d: t}, true
	case skema.Int:
		return number{kind: numInt, i: big.NewInt(int64(t))}, true
	case skema.BigInt:
		return number{kind: numInt, i: t.Int}, true
	case skema.Float:
		return number{kind: numFloat, f: float64(t)}, true
	case skema.Decimal:
		return number{kind: numDecimal, d: t.Decimal}, true
	case skema.Number:
		if !t.Bounded() {
			f, err := strconv.ParseFloat(string(t), 64)
			if err != nil && !errors.Is(err, strconv.ErrRange) {
				return number{}, false
			}
			return number{kind: numFloat, f: f, literal: true, oversize: true}, true
		}
		if t.IsInteger() {
			if b, ok := t.BigInt(); ok {
				return number{kind: numInt, i: b, literal: true}, true
			}
		}
		d, err := decimal.NewFromString(string(t))
		if err != nil {
			return number{}, false
		}
		f, _ := strconv.ParseFloat(string(t), 64)
		return number{kind: numFloat, f: f, d: d, literal: true}, true
	}
	return number{}, false
}

// cleanNumeric trims s and drops '_' digit separators. Leading, trailing
// and doubled separators are rejected.
func cleanNumeric(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if !strings.Contains(s, "_") {
		return s, true
	}
	if strings.HasPrefix(s, "_") || strings.HasSuffix(s, "_") || strings.Contains(s, "__") {
		return "", false
	}
	return strings.ReplaceAll(s, "_", ""), true
}

// parseIntString parses a decimal integer, allowing a ".0*" suffix.
func parseIntString(s string) (*big.Int, bool) {
	s, ok := cleanNumeric(s)
	if !ok {
		return nil, false
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		if strings.Trim(s[i+1:], "0") != "" {
			return nil, false
		}
		s = s[:i]
	}
	if s == "" || s == "+" || s == "-" {
		return nil, false
	}
	return new(big.Int).SetString(s, 10)
}

// parseFloatString parses a float, including inf and nan spellings.
func parseFloatString(s string) (float64, bool) {
	s, ok := cleanNumeric(s)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	// out-of-range literals still parse to ±Inf
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

// intTooLarge reports whether the integer part of d has more than
// MaxIntDigits digits.
func intTooLarge(d decimal.Decimal) bool {
	if d.Exponent() <= 0 {
		return false
	}
	return int64(d.NumDigits())+int64(d.Exponent()) > skema.MaxIntDigits
}

// decimalTooLarge reports whether d's exponent is out of the exact range.
func decimalTooLarge(d decimal.Decimal) bool {
	e := d.Exponent()
	return e > skema.MaxDecimalExponent || e < -skema.MaxDecimalExponent
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// bigFromFloat converts an integral finite float exactly.
func bigFromFloat(f float64) *big.Int {
	b, _ := new(big.Float).SetFloat64(f).Int(nil)
	return b
}

func floatFromBig(i *big.Int) float64 {
	f, _ := new(big.Float).SetInt(i).Float64()
	return f
}

package skema

import (
	"math/big"
	"strconv"
	"strings"
)

// MaxIntDigits bounds the digits of integers built from text or from
// exponent notation.
const MaxIntDigits = 4300

// MaxDecimalExponent bounds the exponent magnitude of exact decimals.
const MaxDecimalExponent = 6144

// Number is a JSON numeric literal kept as text so that arbitrarily large or
// precise values reach the coercers intact.
type Number string

func (n Number) String() string { return string(n) }

// IsInteger reports whether the literal has no fraction or exponent part.
func (n Number) IsInteger() bool {
	return !strings.ContainsAny(string(n), ".eE")
}

// Int64 parses the literal as an int64.
func (n Number) Int64() (int64, error) { return strconv.ParseInt(string(n), 10, 64) }

// Float64 parses the literal as a float64.
func (n Number) Float64() (float64, error) { return strconv.ParseFloat(string(n), 64) }

// Digits counts the digits of the mantissa.
func (n Number) Digits() int {
	c := 0
	for i := 0; i < len(n); i++ {
		switch b := n[i]; {
		case b == 'e' || b == 'E':
			return c
		case b >= '0' && b <= '9':
			c++
		}
	}
	return c
}

// Exponent returns the exponent part, 0 when there is none. ok is false
// when it does not fit in 32 bits.
func (n Number) Exponent() (e int64, ok bool) {
	i := strings.IndexAny(string(n), "eE")
	if i < 0 {
		return 0, true
	}
	e, err := strconv.ParseInt(string(n[i+1:]), 10, 32)
	return e, err == nil
}

// Bounded reports whether the literal has at most MaxIntDigits mantissa
// digits and an exponent within MaxDecimalExponent, so that exact parsing
// stays cheap.
func (n Number) Bounded() bool {
	if n.Digits() > MaxIntDigits {
		return false
	}
	e, ok := n.Exponent()
	return ok && e >= -MaxDecimalExponent && e <= MaxDecimalExponent
}

// BigInt parses an integer literal of up to MaxIntDigits digits.
func (n Number) BigInt() (*big.Int, bool) {
	if n.Digits() > MaxIntDigits {
		return nil, false
	}
	return new(big.Int).SetString(string(n), 10)
}

// Rat parses a Bounded literal exactly.
func (n Number) Rat() (*big.Rat, bool) {
	if !n.Bounded() {
		return nil, false
	}
	return new(big.Rat).SetString(string(n))
}

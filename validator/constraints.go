package validator

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	skema "github.com/reoring/skema"
)

// Bound is one configured limit: its exact value and its display text.
// Dec is set for limits read as decimals.
type Bound struct {
	R    *big.Rat
	Dec  *decimal.Decimal
	Text string
}

// NumBounds holds ordering limits compared exactly. Temporal nodes map
// their values onto the same rational axis (nanoseconds).
type NumBounds struct {
	GT, GE, LT, LE *Bound
	MultipleOf     *Bound
}

// IsZero reports whether no limit is set.
func (b NumBounds) IsZero() bool {
	return b.GT == nil && b.GE == nil && b.LT == nil && b.LE == nil && b.MultipleOf == nil
}

// check reports the first violated limit, in the order gt, ge, lt, le,
// multiple_of.
func (b NumBounds) check(r *big.Rat, in any) skema.Issues {
	switch {
	case b.GT != nil && r.Cmp(b.GT.R) <= 0:
		return valueIssue(skema.CodeGreaterThan, in, map[string]any{"gt": b.GT.Text})
	case b.GE != nil && r.Cmp(b.GE.R) < 0:
		return valueIssue(skema.CodeGreaterThanEqual, in, map[string]any{"ge": b.GE.Text})
	case b.LT != nil && r.Cmp(b.LT.R) >= 0:
		return valueIssue(skema.CodeLessThan, in, map[string]any{"lt": b.LT.Text})
	case b.LE != nil && r.Cmp(b.LE.R) > 0:
		return valueIssue(skema.CodeLessThanEqual, in, map[string]any{"le": b.LE.Text})
	}
	if b.MultipleOf != nil && b.MultipleOf.R.Sign() != 0 {
		q := new(big.Rat).Quo(r, b.MultipleOf.R)
		if !q.IsInt() {
			return valueIssue(skema.CodeMultipleOf, in, map[string]any{"multiple_of": b.MultipleOf.Text})
		}
	}
	return nil
}

// checkDecimal is check for decimals, compared with decimal arithmetic.
// Limits without Dec fall back to rationals.
func (b NumBounds) checkDecimal(d decimal.Decimal, in any) skema.Issues {
	if b.IsZero() {
		return nil
	}
	for _, l := range []*Bound{b.GT, b.GE, b.LT, b.LE, b.MultipleOf} {
		if l != nil && l.Dec == nil {
			return b.check(d.Rat(), in)
		}
	}
	switch {
	case b.GT != nil && d.Cmp(*b.GT.Dec) <= 0:
		return valueIssue(skema.CodeGreaterThan, in, map[string]any{"gt": b.GT.Text})
	case b.GE != nil && d.Cmp(*b.GE.Dec) < 0:
		return valueIssue(skema.CodeGreaterThanEqual, in, map[string]any{"ge": b.GE.Text})
	case b.LT != nil && d.Cmp(*b.LT.Dec) >= 0:
		return valueIssue(skema.CodeLessThan, in, map[string]any{"lt": b.LT.Text})
	case b.LE != nil && d.Cmp(*b.LE.Dec) > 0:
		return valueIssue(skema.CodeLessThanEqual, in, map[string]any{"le": b.LE.Text})
	}
	if b.MultipleOf != nil && !b.MultipleOf.Dec.IsZero() && !d.Mod(*b.MultipleOf.Dec).IsZero() {
		return valueIssue(skema.CodeMultipleOf, in, map[string]any{"multiple_of": b.MultipleOf.Text})
	}
	return nil
}

// checkFloat is check for binary floats: non-finite values compare as
// infinities (NaN fails every limit) and multiple_of tolerates rounding.
func (b NumBounds) checkFloat(f float64, in any) skema.Issues {
	if b.IsZero() {
		return nil
	}
	if isFinite(f) {
		r := new(big.Rat).SetFloat64(f)
		mult := b.MultipleOf
		b.MultipleOf = nil
		if iss := b.check(r, in); iss != nil {
			return iss
		}
		if mult != nil && !floatMultiple(f, mult.R) {
			return valueIssue(skema.CodeMultipleOf, in, map[string]any{"multiple_of": mult.Text})
		}
		return nil
	}
	pos, neg := math.IsInf(f, 1), math.IsInf(f, -1)
	switch {
	case b.GT != nil && !pos:
		return valueIssue(skema.CodeGreaterThan, in, map[string]any{"gt": b.GT.Text})
	case b.GE != nil && !pos:
		return valueIssue(skema.CodeGreaterThanEqual, in, map[string]any{"ge": b.GE.Text})
	case b.LT != nil && !neg:
		return valueIssue(skema.CodeLessThan, in, map[string]any{"lt": b.LT.Text})
	case b.LE != nil && !neg:
		return valueIssue(skema.CodeLessThanEqual, in, map[string]any{"le": b.LE.Text})
	case b.MultipleOf != nil:
		return valueIssue(skema.CodeMultipleOf, in, map[string]any{"multiple_of": b.MultipleOf.Text})
	}
	return nil
}

func floatMultiple(f float64, m *big.Rat) bool {
	mf, _ := m.Float64()
	if mf == 0 {
		return true
	}
	mf = math.Abs(mf)
	rem := math.Mod(math.Abs(f), mf)
	tol := 1e-9 * mf
	return rem < tol || mf-rem < tol
}

// Length bounds the size of strings, bytes, urls and containers.
type Length struct {
	Min, Max *int
}

// IsZero reports whether no limit is set.
func (l Length) IsZero() bool { return l.Min == nil && l.Max == nil }

func (l Length) check(n int, in any, short, long string, base map[string]any) skema.Issues {
	var code string
	params := make(map[string]any, len(base)+2)
	for k, v := range base {
		params[k] = v
	}
	switch {
	case l.Min != nil && n < *l.Min:
		code = short
		params["min_length"] = *l.Min
	case l.Max != nil && n > *l.Max:
		code = long
		params["max_length"] = *l.Max
	default:
		return nil
	}
	params["actual_length"] = n
	return valueIssue(code, in, params)
}

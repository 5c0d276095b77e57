package validator

import (
	"math"
	"math/big"
	"time"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/codec"
)

const secondsPerDay = 86400

// Date validates calendar dates. time.Time values are dates when their
// clock reads midnight.
type Date struct {
	Strict bool
	Bounds NumBounds
}

func (v *Date) Validate(in any, st *State) (skema.Value, skema.Issues) {
	d, iss := v.coerce(in, st)
	if iss != nil {
		return nil, iss
	}
	return checkOrdered(d, v.Bounds, in)
}

func (v *Date) coerce(in any, st *State) (skema.Value, skema.Issues) {
	x := skema.Unwrap(in)
	strict := st.IsStrict(v.Strict)
	switch t := x.(type) {
	case skema.Date:
		return t, nil
	case time.Time:
		return dateFromInstant(t, in)
	case skema.DateTime:
		if strict {
			return nil, typeIssue(skema.CodeDateType, in, "date")
		}
		st.Floor(ExactnessLax)
		return dateFromInstant(t.Time, in)
	}
	if s, ok := asString(x); ok {
		if strict && !st.JSON {
			return nil, typeIssue(skema.CodeDateType, in, "date")
		}
		st.Floor(ExactnessLax)
		if d, err := codec.ParseDate(s); err == nil {
			return skema.Date{Time: d}, nil
		}
		if dt, _, err := codec.ParseDateTime(s); err == nil {
			return dateFromInstant(dt, in)
		}
		return nil, valueIssue(skema.CodeDateParsing, in, nil)
	}
	if n, ok := probeNumber(x); ok && !strict {
		t, err := codec.FromUnix(numberFloat(n))
		if err != nil {
			return nil, valueIssue(skema.CodeDateParsing, in, nil)
		}
		st.Floor(ExactnessLax)
		return dateFromInstant(t, in)
	}
	return nil, typeIssue(skema.CodeDateType, in, "date")
}

func dateFromInstant(t time.Time, in any) (skema.Value, skema.Issues) {
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return nil, valueIssue(skema.CodeDateFromDatetime, in, nil)
	}
	return skema.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}, nil
}

// Time validates times of day.
type Time struct {
	Strict bool
	Bounds NumBounds
}

func (v *Time) Validate(in any, st *State) (skema.Value, skema.Issues) {
	t, iss := v.coerce(in, st)
	if iss != nil {
		return nil, iss
	}
	return checkOrdered(t, v.Bounds, in)
}

func (v *Time) coerce(in any, st *State) (skema.Value, skema.Issues) {
	x := skema.Unwrap(in)
	strict := st.IsStrict(v.Strict)
	switch t := x.(type) {
	case skema.Time:
		return t, nil
	case time.Time:
		// only the clock is kept
		return skema.Time{Time: time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())}, nil
	}
	if s, ok := asString(x); ok {
		if strict && !st.JSON {
			return nil, typeIssue(skema.CodeTimeType, in, "time")
		}
		t, naive, err := codec.ParseTime(s)
		if err != nil {
			return nil, valueIssue(skema.CodeTimeParsing, in, nil)
		}
		st.Floor(ExactnessLax)
		return skema.Time{Time: t, Naive: naive}, nil
	}
	if n, ok := probeNumber(x); ok && !strict {
		sec := numberFloat(n)
		if !isFinite(sec) || sec < 0 || sec >= secondsPerDay {
			return nil, valueIssue(skema.CodeTimeParsing, in, nil)
		}
		st.Floor(ExactnessLax)
		ns := time.Duration(math.Round(sec * float64(time.Second)))
		return skema.Time{Time: time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(ns), Naive: true}, nil
	}
	return nil, typeIssue(skema.CodeTimeType, in, "time")
}

// DateTime validates instants. Inputs without an offset are naive and read
// as UTC.
type DateTime struct {
	Strict bool
	Bounds NumBounds
}

func (v *DateTime) Validate(in any, st *State) (skema.Value, skema.Issues) {
	t, iss := v.coerce(in, st)
	if iss != nil {
		return nil, iss
	}
	return checkOrdered(t, v.Bounds, in)
}

func (v *DateTime) coerce(in any, st *State) (skema.Value, skema.Issues) {
	x := skema.Unwrap(in)
	strict := st.IsStrict(v.Strict)
	switch t := x.(type) {
	case skema.DateTime:
		return t, nil
	case time.Time:
		return skema.DateTime{Time: t}, nil
	case skema.Date:
		if strict {
			return nil, typeIssue(skema.CodeDatetimeType, in, "datetime")
		}
		st.Floor(ExactnessLax)
		return skema.DateTime{Time: t.Time, Naive: true}, nil
	}
	if s, ok := asString(x); ok {
		if strict && !st.JSON {
			return nil, typeIssue(skema.CodeDatetimeType, in, "datetime")
		}
		t, naive, err := codec.ParseDateTime(s)
		if err != nil {
			return nil, valueIssue(skema.CodeDatetimeParsing, in, nil)
		}
		st.Floor(ExactnessLax)
		return skema.DateTime{Time: t, Naive: naive}, nil
	}
	if n, ok := probeNumber(x); ok && !strict {
		t, err := codec.FromUnix(numberFloat(n))
		if err != nil {
			return nil, valueIssue(skema.CodeDatetimeParsing, in, nil)
		}
		st.Floor(ExactnessLax)
		return skema.DateTime{Time: t}, nil
	}
	return nil, typeIssue(skema.CodeDatetimeType, in, "datetime")
}

// Timedelta validates durations. Numbers are seconds.
type Timedelta struct {
	Strict bool
	Bounds NumBounds
}

func (v *Timedelta) Validate(in any, st *State) (skema.Value, skema.Issues) {
	d, iss := v.coerce(in, st)
	if iss != nil {
		return nil, iss
	}
	return checkOrdered(d, v.Bounds, in)
}

func (v *Timedelta) coerce(in any, st *State) (skema.Value, skema.Issues) {
	x := skema.Unwrap(in)
	strict := st.IsStrict(v.Strict)
	switch t := x.(type) {
	case skema.Duration:
		return t, nil
	case time.Duration:
		return skema.Duration(t), nil
	}
	if s, ok := asString(x); ok {
		if strict && !st.JSON {
			return nil, typeIssue(skema.CodeTimedeltaType, in, "timedelta")
		}
		d, err := codec.ParseDuration(s)
		if err != nil {
			return nil, valueIssue(skema.CodeTimedeltaParsing, in, nil)
		}
		st.Floor(ExactnessLax)
		return skema.Duration(d), nil
	}
	if n, ok := probeNumber(x); ok && (!strict || st.JSON) {
		sec := numberFloat(n)
		if !isFinite(sec) || math.Abs(sec) > math.MaxInt64/float64(time.Second) {
			return nil, valueIssue(skema.CodeTimedeltaParsing, in, nil)
		}
		st.Floor(ExactnessLax)
		return skema.Duration(time.Duration(math.Round(sec * float64(time.Second)))), nil
	}
	return nil, typeIssue(skema.CodeTimedeltaType, in, "timedelta")
}

func numberFloat(n number) float64 {
	switch n.kind {
	case numInt:
		return floatFromBig(n.i)
	case numDecimal:
		f, _ := n.d.Float64()
		return f
	}
	return n.f
}

func checkOrdered(v skema.Value, b NumBounds, in any) (skema.Value, skema.Issues) {
	if b.IsZero() {
		return v, nil
	}
	r, ok := OrderKey(v)
	if !ok {
		return v, nil
	}
	if iss := b.check(r, in); iss != nil {
		return nil, iss
	}
	return v, nil
}

// OrderKey maps an ordered value onto an exact rational: numbers as
// themselves, dates and datetimes as unix nanoseconds, times as
// nanoseconds since midnight UTC, durations as nanoseconds.
func OrderKey(v skema.Value) (*big.Rat, bool) {
	switch x := v.(type) {
	case skema.Int:
		return new(big.Rat).SetInt64(int64(x)), true
	case skema.BigInt:
		return new(big.Rat).SetInt(x.Int), true
	case skema.Float:
		if !isFinite(float64(x)) {
			return nil, false
		}
		return new(big.Rat).SetFloat64(float64(x)), true
	case skema.Decimal:
		return x.Rat(), true
	case skema.Date:
		return unixNanos(x.Time), true
	case skema.DateTime:
		return unixNanos(x.Time), true
	case skema.Time:
		_, off := x.Zone()
		ns := int64(x.Hour()*3600+x.Minute()*60+x.Second()-off)*int64(time.Second) + int64(x.Nanosecond())
		return new(big.Rat).SetInt64(ns), true
	case skema.Duration:
		return new(big.Rat).SetInt64(int64(x)), true
	}
	return nil, false
}

func unixNanos(t time.Time) *big.Rat {
	n := new(big.Int).Mul(big.NewInt(t.Unix()), big.NewInt(int64(time.Second)))
	n.Add(n, big.NewInt(int64(t.Nanosecond())))
	return new(big.Rat).SetInt(n)
}

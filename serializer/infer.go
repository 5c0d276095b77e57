package serializer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/codec"
)

const maxSafeInt = 1<<53 - 1

// infer serializes v from its runtime shape alone.
func (st *State) infer(v any) (any, error) {
	if skema.IsNull(v) {
		return nil, nil
	}
	x := skema.Unwrap(v)
	if rec, ok := x.(*skema.Record); ok {
		return st.inferRecord(rec)
	}
	if seq, _, ok := skema.AsSequence(x); ok {
		return st.inferSeq(v, seq)
	}
	if m, _, ok := skema.AsMapping(x); ok {
		return st.inferMap(v, m)
	}
	val, err := skema.ValueOf(x)
	if err != nil {
		if err := st.warn(skema.CodeUnexpectedValue, v, map[string]any{"expected": "any", "got": skema.KindName(v)}); err != nil {
			return nil, err
		}
		return fmt.Sprint(v), nil
	}
	return st.scalar(val, skema.BytesUTF8)
}

func (st *State) inferSeq(container any, seq skema.Sequence) (any, error) {
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
		item, err := st.infer(seq.At(i))
		restore()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (st *State) inferMap(container any, m skema.Mapping) (any, error) {
	leave, err := st.enter(container)
	if err != nil {
		return nil, err
	}
	defer leave()
	out := st.newObject(m.Len())
	m.Range(func(k, val any) bool {
		key := keyText(k)
		f, ok := st.filt.child(key)
		if !ok || (st.opt.ExcludeNone && skema.IsNull(val)) {
			return true
		}
		restore := st.descend(skema.Key(key), f)
		var item any
		item, err = st.infer(val)
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

func (st *State) inferRecord(rec *skema.Record) (any, error) {
	leave, err := st.enter(rec)
	if err != nil {
		return nil, err
	}
	defer leave()
	out := st.newObject(len(rec.Fields()))
	for _, fld := range rec.Fields() {
		if !st.keep(fld.Presence, fld.Value, nil) {
			continue
		}
		f, ok := st.filt.child(fld.Name)
		if !ok {
			continue
		}
		restore := st.descend(skema.FieldLoc(fld.Name), f)
		item, err := st.infer(fld.Value)
		restore()
		if err != nil {
			return nil, err
		}
		out.set(fld.Name, item)
	}
	if err := st.extras(rec, out, nil); err != nil {
		return nil, err
	}
	return out.result(), nil
}

// keep applies the presence filters to one populated record field.
func (st *State) keep(p skema.Presence, v any, def skema.Value) bool {
	switch {
	case st.opt.ExcludeUnset && !p.Has(skema.PresenceSeen):
		return false
	case st.opt.ExcludeNone && skema.IsNull(v):
		return false
	case st.opt.ExcludeDefaults && def != nil:
		val, err := skema.ValueOf(v)
		return err != nil || !skema.Equal(def, val)
	}
	return true
}

// extras appends the collected extras of rec, serialized with ser (nil
// infers).
func (st *State) extras(rec *skema.Record, out *object, ser Serializer) error {
	if rec.Extra == nil {
		return nil
	}
	for _, e := range rec.Extra.Entries() {
		key := keyText(e.Key)
		f, ok := st.filt.child(key)
		if !ok || (st.opt.ExcludeNone && skema.IsNull(e.Value)) {
			continue
		}
		restore := st.descend(skema.FieldLoc(key), f)
		var (
			item any
			err  error
		)
		if ser != nil {
			item, err = ser.Serialize(e.Value, st)
		} else {
			item, err = st.infer(e.Value)
		}
		restore()
		if err != nil {
			return err
		}
		out.set(key, item)
	}
	return nil
}

// scalar renders a scalar Value. Wire modes fall back to exact literals or
// canonical strings where JSON has no native form.
func (st *State) scalar(val skema.Value, enc skema.BytesEncoding) (any, error) {
	if !st.wire() {
		return val.Native(), nil
	}
	switch x := val.(type) {
	case skema.Null:
		return nil, nil
	case skema.Bool:
		return bool(x), nil
	case skema.Int:
		if x > maxSafeInt || x < -maxSafeInt {
			if err := st.warn(skema.CodeUnsafeInteger, val, map[string]any{"value": int64(x)}); err != nil {
				return nil, err
			}
		}
		return skema.Number(strconv.FormatInt(int64(x), 10)), nil
	case skema.BigInt:
		if err := st.warn(skema.CodeUnsafeInteger, val, map[string]any{"value": x.String()}); err != nil {
			return nil, err
		}
		return skema.Number(x.String()), nil
	case skema.Float:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			if err := st.warn(skema.CodeNonFiniteFloat, val, map[string]any{"value": skema.FormatValue(x)}); err != nil {
				return nil, err
			}
			return nil, nil
		}
		return skema.Number(formatFloat(f)), nil
	case skema.Decimal:
		return st.fallback("decimal", val, x.String())
	case skema.Str:
		return string(x), nil
	case skema.Bytes:
		name := string(enc)
		if name == "" {
			name = codec.EncodingUTF8
		}
		s, err := codec.EncodeBytes(x, name)
		if err != nil {
			if err := st.warn(skema.CodeStringFallback, val, map[string]any{"kind": "bytes"}); err != nil {
				return nil, err
			}
			s, _ = codec.EncodeBytes(x, codec.EncodingBase64)
		}
		return s, nil
	case skema.Date:
		return st.fallback("date", val, codec.FormatDate(x.Time))
	case skema.Time:
		return st.fallback("time", val, codec.FormatTime(x.Time, x.Naive))
	case skema.DateTime:
		return st.fallback("datetime", val, codec.FormatDateTime(x.Time, x.Naive))
	case skema.Duration:
		return st.fallback("timedelta", val, codec.FormatDuration(time.Duration(x)))
	case skema.UUID:
		return st.fallback("uuid", val, x.String())
	case skema.URL:
		if x.URL == nil {
			return "", nil
		}
		return x.URL.String(), nil
	}
	return fmt.Sprint(val.Native()), nil
}

func (st *State) fallback(kind string, val skema.Value, s string) (any, error) {
	if err := st.warn(skema.CodeStringFallback, val, map[string]any{"kind": kind}); err != nil {
		return nil, err
	}
	return s, nil
}

// formatFloat keeps a fractional marker so the literal reads back as a float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func keyText(k any) string {
	switch x := skema.Unwrap(k).(type) {
	case string:
		return x
	case skema.Str:
		return string(x)
	case nil, skema.Null:
		return "None"
	case skema.Value:
		return fmt.Sprint(x.Native())
	}
	return fmt.Sprint(k)
}

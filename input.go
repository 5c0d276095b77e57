package skema

import (
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Object is an insertion-ordered string-keyed mapping. JSON objects decode
// into *Object so that record fields and dict entries keep input order.
type Object struct {
	keys []string
	vals map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object { return &Object{vals: map[string]any{}} }

// Set stores v under k. Duplicate keys keep their first position and the last
// value.
func (o *Object) Set(k string, v any) {
	if _, ok := o.vals[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.vals[k] = v
}

func (o *Object) Get(k string) (any, bool) {
	v, ok := o.vals[k]
	return v, ok
}

func (o *Object) Keys() []string { return o.keys }
func (o *Object) Len() int       { return len(o.keys) }

func (o *Object) Range(fn func(k, v any) bool) {
	for _, k := range o.keys {
		if !fn(k, o.vals[k]) {
			return
		}
	}
}

// Mapping is a read-only view over mapping-like host values.
type Mapping interface {
	Len() int
	// Get looks up a string key.
	Get(key string) (any, bool)
	// Range visits entries in a deterministic order until fn returns false.
	Range(fn func(key, val any) bool)
}

// MappingKind distinguishes dictionaries from record-like inputs.
type MappingKind uint8

const (
	MappingDict   MappingKind = iota // Go maps, *Object, *Map.
	MappingRecord                    // Structs and *Record.
)

// AsMapping returns a Mapping view of v. Strings, sequences and scalars are
// never mappings.
func AsMapping(v any) (Mapping, MappingKind, bool) {
	switch x := v.(type) {
	case nil:
		return nil, 0, false
	case *Object:
		if x == nil {
			return nil, 0, false
		}
		return x, MappingDict, true
	case map[string]any:
		return stringMap(x), MappingDict, true
	case *Map:
		if x == nil {
			return nil, 0, false
		}
		return valueMap{x}, MappingDict, true
	case *Record:
		if x == nil {
			return nil, 0, false
		}
		return recordMapping{x}, MappingRecord, true
	case Value:
		return nil, 0, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, 0, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if isSetMap(rv.Type()) {
			return nil, 0, false
		}
		return reflectMap{rv}, MappingDict, true
	case reflect.Struct:
		if isOpaqueStruct(rv.Type()) {
			return nil, 0, false
		}
		return structMapping{rv, structFields(rv.Type())}, MappingRecord, true
	}
	return nil, 0, false
}

type stringMap map[string]any

func (m stringMap) Len() int { return len(m) }
func (m stringMap) Get(k string) (any, bool) {
	v, ok := m[k]
	return v, ok
}
func (m stringMap) Range(fn func(k, v any) bool) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !fn(k, m[k]) {
			return
		}
	}
}

type valueMap struct{ m *Map }

func (m valueMap) Len() int { return m.m.Len() }
func (m valueMap) Get(k string) (any, bool) {
	v, ok := m.m.Get(Str(k))
	return v, ok
}
func (m valueMap) Range(fn func(k, v any) bool) {
	for _, e := range m.m.entries {
		if !fn(e.Key, e.Value) {
			return
		}
	}
}

type recordMapping struct{ r *Record }

func (m recordMapping) Len() int {
	n := len(m.r.fields)
	if m.r.Extra != nil {
		n += m.r.Extra.Len()
	}
	return n
}
func (m recordMapping) Get(k string) (any, bool) {
	if v, ok := m.r.Get(k); ok {
		return v, true
	}
	if m.r.Extra != nil {
		return m.r.Extra.Get(Str(k))
	}
	return nil, false
}
func (m recordMapping) Range(fn func(k, v any) bool) {
	for _, f := range m.r.fields {
		if !fn(f.Name, f.Value) {
			return
		}
	}
	if m.r.Extra != nil {
		valueMap{m.r.Extra}.Range(fn)
	}
}

type reflectMap struct{ rv reflect.Value }

func (m reflectMap) Len() int { return m.rv.Len() }
func (m reflectMap) Get(k string) (any, bool) {
	kt := m.rv.Type().Key()
	var kv reflect.Value
	switch kt.Kind() {
	case reflect.String:
		kv = reflect.ValueOf(k).Convert(kt)
	case reflect.Interface:
		kv = reflect.ValueOf(k)
	default:
		return nil, false
	}
	v := m.rv.MapIndex(kv)
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}
func (m reflectMap) Range(fn func(k, v any) bool) {
	keys := m.rv.MapKeys()
	sortReflectKeys(keys)
	for _, k := range keys {
		if !fn(k.Interface(), m.rv.MapIndex(k).Interface()) {
			return
		}
	}
}

func sortReflectKeys(keys []reflect.Value) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		for a.Kind() == reflect.Interface && !a.IsNil() {
			a = a.Elem()
		}
		for b.Kind() == reflect.Interface && !b.IsNil() {
			b = b.Elem()
		}
		switch {
		case a.CanInt() && b.CanInt():
			return a.Int() < b.Int()
		case a.CanUint() && b.CanUint():
			return a.Uint() < b.Uint()
		case a.Kind() == reflect.String && b.Kind() == reflect.String:
			return a.String() < b.String()
		}
		return fmt.Sprint(a.Interface()) < fmt.Sprint(b.Interface())
	})
}

type structMapping struct {
	rv     reflect.Value
	fields []structField
}

func (m structMapping) Len() int { return len(m.fields) }
func (m structMapping) Get(k string) (any, bool) {
	for _, f := range m.fields {
		if f.key == k {
			fv, ok := fieldByIndex(m.rv, f.index)
			if !ok {
				return nil, false
			}
			return fv.Interface(), true
		}
	}
	return nil, false
}
func (m structMapping) Range(fn func(k, v any) bool) {
	for _, f := range m.fields {
		fv, ok := fieldByIndex(m.rv, f.index)
		if !ok {
			continue
		}
		if !fn(f.key, fv.Interface()) {
			return
		}
	}
}

// Sequence is a read-only view over sequence-like host values.
type Sequence interface {
	Len() int
	At(i int) any
}

// SeqKind distinguishes the host sequence flavours.
type SeqKind uint8

const (
	SeqList      SeqKind = iota // Slices, List.
	SeqTuple                    // Go arrays, Tuple.
	SeqSet                      // map[K]struct{}, *Set.
	SeqFrozenSet                // Frozen *Set.
)

// AsSequence returns a Sequence view of v. Strings, byte slices and mappings
// are never sequences.
func AsSequence(v any) (Sequence, SeqKind, bool) {
	switch x := v.(type) {
	case nil, string, []byte, Str, Bytes:
		return nil, 0, false
	case []any:
		return anySeq(x), SeqList, true
	case List:
		return valueSeq(x), SeqList, true
	case Tuple:
		return valueSeq(x), SeqTuple, true
	case *Set:
		if x == nil {
			return nil, 0, false
		}
		if x.Frozen {
			return valueSeq(x.items), SeqFrozenSet, true
		}
		return valueSeq(x.items), SeqSet, true
	case Value:
		return nil, 0, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, 0, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, 0, false
		}
		return reflectSeq{rv}, SeqList, true
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, 0, false
		}
		return reflectSeq{rv}, SeqTuple, true
	case reflect.Map:
		if isSetMap(rv.Type()) {
			keys := rv.MapKeys()
			sortReflectKeys(keys)
			items := make([]any, len(keys))
			for i, k := range keys {
				items[i] = k.Interface()
			}
			return anySeq(items), SeqSet, true
		}
	}
	return nil, 0, false
}

type anySeq []any

func (s anySeq) Len() int     { return len(s) }
func (s anySeq) At(i int) any { return s[i] }

type valueSeq []Value

func (s valueSeq) Len() int     { return len(s) }
func (s valueSeq) At(i int) any { return s[i] }

type reflectSeq struct{ rv reflect.Value }

func (s reflectSeq) Len() int     { return s.rv.Len() }
func (s reflectSeq) At(i int) any { return s.rv.Index(i).Interface() }

// isSetMap reports map[K]struct{}, the idiomatic Go set.
func isSetMap(t reflect.Type) bool {
	e := t.Elem()
	return e.Kind() == reflect.Struct && e.NumField() == 0
}

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
	decType  = reflect.TypeOf(decimal.Decimal{})
	bigType  = reflect.TypeOf(big.Int{})
	urlType  = reflect.TypeOf(url.URL{})
)

// isOpaqueStruct lists struct types that are scalars, not records.
func isOpaqueStruct(t reflect.Type) bool {
	switch t {
	case timeType, decType, bigType, urlType:
		return true
	}
	return false
}

// IsNull reports nil, Null and typed nil pointers, maps and slices.
func IsNull(v any) bool {
	switch v.(type) {
	case nil, Null:
		return true
	case Value:
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// Unwrap dereferences pointers to scalars and converts named scalar kinds
// (type Age int) into their base Go types. Values and well-known types are
// returned unchanged.
func Unwrap(v any) any {
	switch v.(type) {
	case nil, Value, bool, string, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64, []byte, Number, time.Time, time.Duration, uuid.UUID, decimal.Decimal, *big.Int, *url.URL:
		return v
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		switch rv.Type() {
		case reflect.PointerTo(bigType), reflect.PointerTo(urlType):
			return rv.Interface()
		}
		rv = rv.Elem()
	}
	switch rv.Type() {
	case timeType, uuidType, decType:
		return rv.Interface()
	case bigType:
		b := rv.Interface().(big.Int)
		return &b
	}
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	}
	return rv.Interface()
}

// KindName names the kind of a host value for error messages.
func KindName(v any) string {
	switch x := Unwrap(v).(type) {
	case nil:
		return "null"
	case Value:
		return x.Kind().String()
	case bool:
		return "bool"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, *big.Int:
		return "int"
	case float32, float64:
		return "float"
	case Number:
		if x.IsInteger() {
			return "int"
		}
		return "float"
	case string:
		return "str"
	case []byte:
		return "bytes"
	case time.Time:
		return "datetime"
	case time.Duration:
		return "timedelta"
	case uuid.UUID:
		return "uuid"
	case decimal.Decimal:
		return "decimal"
	case *url.URL:
		return "url"
	case *Object:
		return "dict"
	}
	if _, k, ok := AsSequence(v); ok {
		switch k {
		case SeqTuple:
			return "tuple"
		case SeqSet, SeqFrozenSet:
			return "set"
		}
		return "list"
	}
	if _, k, ok := AsMapping(v); ok {
		if k == MappingRecord {
			return "object"
		}
		return "dict"
	}
	return reflect.TypeOf(v).String()
}

const valueOfMaxDepth = 1000

// ErrValueTooDeep is returned by ValueOf for host values nested deeper than
// it will follow, which includes cyclic graphs.
var ErrValueTooDeep = errors.New("skema: value nesting too deep")

// ValueOf infers an Internal Value from a host value without a schema. Go
// maps are ordered by key; structs become string-keyed maps in field order.
func ValueOf(v any) (Value, error) { return valueOf(v, 0) }

// MustValueOf is ValueOf that panics on failure.
func MustValueOf(v any) Value {
	out, err := ValueOf(v)
	if err != nil {
		panic(err)
	}
	return out
}

func valueOf(v any, depth int) (Value, error) {
	if depth > valueOfMaxDepth {
		return nil, ErrValueTooDeep
	}
	if IsNull(v) {
		return Null{}, nil
	}
	switch x := Unwrap(v).(type) {
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int64:
		return Int(x), nil
	case int:
		return Int(x), nil
	case int8:
		return Int(x), nil
	case int16:
		return Int(x), nil
	case int32:
		return Int(x), nil
	case uint64:
		return IntValue(new(big.Int).SetUint64(x)), nil
	case uint:
		return IntValue(new(big.Int).SetUint64(uint64(x))), nil
	case uint8:
		return Int(x), nil
	case uint16:
		return Int(x), nil
	case uint32:
		return Int(x), nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(x), nil
	case Number:
		if x.IsInteger() {
			if b, ok := x.BigInt(); ok {
				return IntValue(b), nil
			}
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("skema: invalid number literal %q", string(x))
		}
		return Float(f), nil
	case *big.Int:
		return IntValue(x), nil
	case decimal.Decimal:
		return Decimal{x}, nil
	case string:
		return Str(x), nil
	case []byte:
		return Bytes(append([]byte(nil), x...)), nil
	case time.Time:
		return DateTime{Time: x}, nil
	case time.Duration:
		return Duration(x), nil
	case uuid.UUID:
		return UUID(x), nil
	case *url.URL:
		return URL{x}, nil
	}
	if seq, kind, ok := AsSequence(v); ok {
		items := make([]Value, seq.Len())
		for i := range items {
			it, err := valueOf(seq.At(i), depth+1)
			if err != nil {
				return nil, err
			}
			items[i] = it
		}
		switch kind {
		case SeqTuple:
			return Tuple(items), nil
		case SeqSet, SeqFrozenSet:
			s := NewSet(len(items))
			s.Frozen = kind == SeqFrozenSet
			for _, it := range items {
				s.Add(it)
			}
			return s, nil
		}
		return List(items), nil
	}
	if m, _, ok := AsMapping(v); ok {
		out := NewMap(m.Len())
		var err error
		m.Range(func(k, val any) bool {
			var kv, vv Value
			if kv, err = valueOf(k, depth+1); err != nil {
				return false
			}
			if vv, err = valueOf(val, depth+1); err != nil {
				return false
			}
			out.Set(kv, vv)
			return true
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("skema: cannot represent %T as a value", v)
}

// FormatValue renders a value compactly for messages, e.g. 'a' or 42.
func FormatValue(v any) string {
	switch x := Unwrap(v).(type) {
	case nil, Null:
		return "None"
	case string:
		return "'" + x + "'"
	case Str:
		return "'" + string(x) + "'"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case Bool:
		return FormatValue(bool(x))
	case int64:
		return strconv.FormatInt(x, 10)
	case Int:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case Float:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case Value:
		return fmt.Sprint(x.Native())
	}
	return fmt.Sprint(v)
}

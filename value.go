package skema

import (
	"encoding/hex"
	"math"
	"math/big"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValueKind enumerates the Internal Value variants.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindBigInt
	KindFloat
	KindDecimal
	KindStr
	KindBytes
	KindDate
	KindTime
	KindDateTime
	KindDuration
	KindUUID
	KindURL
	KindList
	KindTuple
	KindSet
	KindMap
	KindRecord
)

var valueKindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindInt:      "int",
	KindBigInt:   "int",
	KindFloat:    "float",
	KindDecimal:  "decimal",
	KindStr:      "str",
	KindBytes:    "bytes",
	KindDate:     "date",
	KindTime:     "time",
	KindDateTime: "datetime",
	KindDuration: "timedelta",
	KindUUID:     "uuid",
	KindURL:      "url",
	KindList:     "list",
	KindTuple:    "tuple",
	KindSet:      "set",
	KindMap:      "dict",
	KindRecord:   "model",
}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return "unknown"
}

// Value is the engine's internal, language-neutral value representation.
// Validation produces Values; serialization consumes them. The set of
// implementations is closed.
type Value interface {
	Kind() ValueKind
	// Native converts the value into plain Go values (map[string]any, []any,
	// int64, string, time.Time, ...).
	Native() any
	isValue()
}

type (
	Null  struct{}
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Bytes []byte
	// BigInt holds integers outside the int64 range.
	BigInt struct{ *big.Int }
	// Decimal holds arbitrary-precision decimal numbers.
	Decimal struct{ decimal.Decimal }
	// Date is a calendar date stored as UTC midnight.
	Date struct{ time.Time }
	// Time is a time of day; the date part is zero. Naive times carry no offset.
	Time struct {
		time.Time
		Naive bool
	}
	// DateTime is an instant; Naive datetimes had no offset in their input.
	DateTime struct {
		time.Time
		Naive bool
	}
	Duration time.Duration
	UUID     uuid.UUID
	URL      struct{ *url.URL }
	List     []Value
	// Tuple is a fixed-shape sequence.
	Tuple []Value
)

func (Null) Kind() ValueKind     { return KindNull }
func (Bool) Kind() ValueKind     { return KindBool }
func (Int) Kind() ValueKind      { return KindInt }
func (BigInt) Kind() ValueKind   { return KindBigInt }
func (Float) Kind() ValueKind    { return KindFloat }
func (Decimal) Kind() ValueKind  { return KindDecimal }
func (Str) Kind() ValueKind      { return KindStr }
func (Bytes) Kind() ValueKind    { return KindBytes }
func (Date) Kind() ValueKind     { return KindDate }
func (Time) Kind() ValueKind     { return KindTime }
func (DateTime) Kind() ValueKind { return KindDateTime }
func (Duration) Kind() ValueKind { return KindDuration }
func (UUID) Kind() ValueKind     { return KindUUID }
func (URL) Kind() ValueKind      { return KindURL }
func (List) Kind() ValueKind     { return KindList }
func (Tuple) Kind() ValueKind    { return KindTuple }

func (Null) isValue()     {}
func (Bool) isValue()     {}
func (Int) isValue()      {}
func (BigInt) isValue()   {}
func (Float) isValue()    {}
func (Decimal) isValue()  {}
func (Str) isValue()      {}
func (Bytes) isValue()    {}
func (Date) isValue()     {}
func (Time) isValue()     {}
func (DateTime) isValue() {}
func (Duration) isValue() {}
func (UUID) isValue()     {}
func (URL) isValue()      {}
func (List) isValue()     {}
func (Tuple) isValue()    {}

func (Null) Native() any       { return nil }
func (v Bool) Native() any     { return bool(v) }
func (v Int) Native() any      { return int64(v) }
func (v BigInt) Native() any   { return v.Int }
func (v Float) Native() any    { return float64(v) }
func (v Decimal) Native() any  { return v.Decimal }
func (v Str) Native() any      { return string(v) }
func (v Bytes) Native() any    { return []byte(v) }
func (v Date) Native() any     { return v.Time }
func (v Time) Native() any     { return v.Time }
func (v DateTime) Native() any { return v.Time }
func (v Duration) Native() any { return time.Duration(v) }
func (v UUID) Native() any     { return uuid.UUID(v) }
func (v URL) Native() any      { return v.URL }
func (v List) Native() any     { return nativeSlice(v) }
func (v Tuple) Native() any    { return nativeSlice(v) }

func nativeSlice(vs []Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v.Native()
	}
	return out
}

// String renders the canonical hyphenated form.
func (v UUID) String() string { return uuid.UUID(v).String() }

// IntValue returns an Int when b fits into int64 and a BigInt otherwise.
func IntValue(b *big.Int) Value {
	if b.IsInt64() {
		return Int(b.Int64())
	}
	return BigInt{new(big.Int).Set(b)}
}

// BigOf returns the integer held by an Int or BigInt.
func BigOf(v Value) (*big.Int, bool) {
	switch x := v.(type) {
	case Int:
		return big.NewInt(int64(x)), true
	case BigInt:
		return x.Int, true
	}
	return nil, false
}

// Set is an insertion-ordered collection of distinct Values.
type Set struct {
	items  []Value
	index  map[string]int
	Frozen bool
}

// NewSet returns an empty set with room for n items.
func NewSet(n int) *Set { return &Set{items: make([]Value, 0, n), index: make(map[string]int, n)} }

func (*Set) Kind() ValueKind { return KindSet }
func (*Set) isValue()        {}
func (s *Set) Native() any   { return nativeSlice(s.items) }

// Add inserts v and reports whether it was not already present.
func (s *Set) Add(v Value) bool {
	k := KeyOf(v)
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, v)
	return true
}

// Has reports membership.
func (s *Set) Has(v Value) bool {
	_, ok := s.index[KeyOf(v)]
	return ok
}

func (s *Set) Items() []Value { return s.items }
func (s *Set) Len() int       { return len(s.items) }

// MapEntry is a key/value pair of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is an insertion-ordered mapping keyed by Values.
type Map struct {
	entries []MapEntry
	index   map[string]int
}

// NewMap returns an empty map with room for n entries.
func NewMap(n int) *Map { return &Map{entries: make([]MapEntry, 0, n), index: make(map[string]int, n)} }

func (*Map) Kind() ValueKind { return KindMap }
func (*Map) isValue()        {}

// Native returns map[string]any when every key is a string and map[any]any
// otherwise.
func (m *Map) Native() any {
	allStr := true
	for _, e := range m.entries {
		if _, ok := e.Key.(Str); !ok {
			allStr = false
			break
		}
	}
	if allStr {
		out := make(map[string]any, len(m.entries))
		for _, e := range m.entries {
			out[string(e.Key.(Str))] = e.Value.Native()
		}
		return out
	}
	out := make(map[any]any, len(m.entries))
	for _, e := range m.entries {
		k := e.Key.Native()
		if !isComparable(k) {
			k = KeyOf(e.Key)
		}
		out[k] = e.Value.Native()
	}
	return out
}

func isComparable(v any) bool {
	switch v.(type) {
	case nil, bool, int64, float64, string, time.Time, time.Duration, uuid.UUID:
		return true
	}
	return false
}

// Set stores v under k. Re-setting an existing key keeps its position.
func (m *Map) Set(k, v Value) {
	key := KeyOf(k)
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = v
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, MapEntry{Key: k, Value: v})
}

// Get looks up k.
func (m *Map) Get(k Value) (Value, bool) {
	i, ok := m.index[KeyOf(k)]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

func (m *Map) Entries() []MapEntry { return m.entries }
func (m *Map) Len() int            { return len(m.entries) }

// Equal reports deep equality. Numeric values compare by magnitude across
// int, float and decimal; mapping and set comparison ignores order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return KeyOf(a) == KeyOf(b)
}

// KeyOf renders a canonical identity string used for hashing Values into sets
// and mapping indexes.
func KeyOf(v Value) string {
	b := &strings.Builder{}
	writeKey(b, v)
	return b.String()
}

func writeKey(b *strings.Builder, v Value) {
	switch x := v.(type) {
	case nil, Null:
		b.WriteString("null")
	case Bool:
		if x {
			b.WriteString("b:true")
		} else {
			b.WriteString("b:false")
		}
	case Int:
		b.WriteString("n:")
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case BigInt:
		b.WriteString("n:")
		b.WriteString(x.String())
	case Float:
		f := float64(x)
		b.WriteString("n:")
		if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e18 {
			b.WriteString(strconv.FormatInt(int64(f), 10))
		} else {
			b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		}
	case Decimal:
		b.WriteString("n:")
		if x.Equal(x.Truncate(0)) {
			b.WriteString(x.Truncate(0).String())
		} else {
			f, _ := x.Float64()
			b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		}
	case Str:
		b.WriteString("s:")
		b.WriteString(strconv.Quote(string(x)))
	case Bytes:
		b.WriteString("y:")
		b.WriteString(hex.EncodeToString(x))
	case Date:
		b.WriteString("d:")
		b.WriteString(x.Format("2006-01-02"))
	case Time:
		b.WriteString("t:")
		b.WriteString(x.Format("15:04:05.999999999Z07:00"))
	case DateTime:
		b.WriteString("dt:")
		b.WriteString(x.UTC().Format(time.RFC3339Nano))
	case Duration:
		b.WriteString("td:")
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case UUID:
		b.WriteString("u:")
		b.WriteString(x.String())
	case URL:
		b.WriteString("l:")
		if x.URL != nil {
			b.WriteString(x.URL.String())
		}
	case List:
		writeSeqKey(b, '[', ']', x)
	case Tuple:
		writeSeqKey(b, '(', ')', x)
	case *Set:
		keys := make([]string, len(x.items))
		for i, it := range x.items {
			keys[i] = KeyOf(it)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		b.WriteString(strings.Join(keys, ","))
		b.WriteByte('}')
	case *Map:
		pairs := make([]string, len(x.entries))
		for i, e := range x.entries {
			pairs[i] = KeyOf(e.Key) + "=" + KeyOf(e.Value)
		}
		sort.Strings(pairs)
		b.WriteString("{")
		b.WriteString(strings.Join(pairs, ","))
		b.WriteString("}")
	case *Record:
		b.WriteString("R:")
		b.WriteString(x.Name)
		b.WriteByte('{')
		for i, f := range x.fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(f.Name)
			b.WriteByte('=')
			writeKey(b, f.Value)
		}
		b.WriteByte('}')
	}
}

func writeSeqKey(b *strings.Builder, open, close byte, vs []Value) {
	b.WriteByte(open)
	for i, v := range vs {
		if i > 0 {
			b.WriteByte(',')
		}
		writeKey(b, v)
	}
	b.WriteByte(close)
}

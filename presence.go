package skema

// Presence records how a record field obtained its value.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Field appeared in the input.
	PresenceWasNull                             // Field value was null.
	PresenceDefaultApplied                      // Default value was applied.
)

// Has reports whether all bits of f are set.
func (p Presence) Has(f Presence) bool { return p&f == f }

// RecordField is one populated field of a Record.
type RecordField struct {
	Name     string
	Value    Value
	Presence Presence
}

// Record is the validated form of a structured record: declared fields in
// declaration order, their presence flags, and collected extras.
type Record struct {
	Name   string
	fields []RecordField
	index  map[string]int
	// Extra holds undeclared input keys when the record allows them.
	Extra *Map
}

// NewRecord returns an empty record with room for n fields.
func NewRecord(name string, n int) *Record {
	return &Record{Name: name, fields: make([]RecordField, 0, n), index: make(map[string]int, n)}
}

func (*Record) Kind() ValueKind { return KindRecord }
func (*Record) isValue()        {}

// Native flattens fields and extras into a map.
func (r *Record) Native() any {
	out := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		out[f.Name] = f.Value.Native()
	}
	if r.Extra != nil {
		for _, e := range r.Extra.entries {
			if k, ok := e.Key.(Str); ok {
				out[string(k)] = e.Value.Native()
			}
		}
	}
	return out
}

// Set stores a field value with its presence flags.
func (r *Record) Set(name string, v Value, p Presence) {
	if i, ok := r.index[name]; ok {
		r.fields[i] = RecordField{Name: name, Value: v, Presence: p}
		return
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, RecordField{Name: name, Value: v, Presence: p})
}

// Get returns a field value.
func (r *Record) Get(name string) (Value, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Presence returns the presence flags of a field (zero when absent).
func (r *Record) Presence(name string) Presence {
	if i, ok := r.index[name]; ok {
		return r.fields[i].Presence
	}
	return 0
}

// Fields returns the populated fields in declaration order.
func (r *Record) Fields() []RecordField { return r.fields }

// FieldsSet lists the fields that were explicitly provided by the input.
func (r *Record) FieldsSet() []string {
	var out []string
	for _, f := range r.fields {
		if f.Presence.Has(PresenceSeen) {
			out = append(out, f.Name)
		}
	}
	return out
}

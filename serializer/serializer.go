// Package serializer holds the serializer tree that mirrors the validator
// tree. Nodes are immutable after compilation; per-call data (filters,
// location, cycle guard, warnings) lives in State.
//
// Nodes accept Internal Values as well as host values (maps, slices,
// structs, pointers). A value that does not fit the declared kind is
// serialized by inference and reported as an unexpected_value warning.
package serializer

import (
	skema "github.com/reoring/skema"
)

// Serializer is one node of a serializer tree.
type Serializer interface {
	// Serialize converts v into the output form selected by the state mode.
	Serialize(v any, st *State) (any, error)
	// Match reports whether v fits this node without a fallback. Unions use
	// it to pick a branch.
	Match(v any) bool
}

// Mode selects the output representation.
type Mode uint8

const (
	// ModeNative produces Go values: map[string]any, []any, int64,
	// *big.Int, float64, decimal.Decimal, string, []byte, time.Time,
	// time.Duration, uuid.UUID, *url.URL.
	ModeNative Mode = iota
	// ModeJSON produces a wire tree (nil, bool, string, skema.Number, []any,
	// *skema.Object) that is written as JSON text.
	ModeJSON
	// ModeYAML produces the same wire tree, written as YAML.
	ModeYAML
)

// State is the per-call serialization state. It is never shared between
// calls.
type State struct {
	mode     Mode
	opt      skema.SerializeOpt
	filt     filters
	loc      skema.Location
	guard    map[identity]struct{}
	warnings skema.Issues
}

// NewState prepares the state of one serialization call.
func NewState(mode Mode, opt skema.SerializeOpt) *State {
	st := &State{mode: mode, opt: opt, guard: map[identity]struct{}{}}
	if len(opt.Include) > 0 {
		st.filt.include = opt.Include
	}
	if len(opt.Exclude) > 0 {
		st.filt.exclude = opt.Exclude
	}
	return st
}

// Warnings returns the warnings collected so far.
func (st *State) Warnings() skema.Issues { return st.warnings }

func (st *State) wire() bool { return st.mode != ModeNative }

func (st *State) here() skema.Location { return append(skema.Location(nil), st.loc...) }

// warn records a non-fatal fallback. Under WarnError it becomes the error of
// the call.
func (st *State) warn(code string, in any, params map[string]any) error {
	if st.opt.Warnings == skema.WarnNone {
		return nil
	}
	it := skema.NewIssue(skema.ErrorKindSerialization, code, in, params)
	it.Loc = st.here()
	if st.opt.Warnings == skema.WarnError {
		return skema.Issues{it}
	}
	st.warnings = append(st.warnings, it)
	return nil
}

// unexpected serializes v by inference after warning that it does not fit
// the expected kind.
func (st *State) unexpected(expected string, v any) (any, error) {
	if err := st.warn(skema.CodeUnexpectedValue, v, map[string]any{
		"expected": expected,
		"got":      skema.KindName(v),
	}); err != nil {
		return nil, err
	}
	return st.infer(v)
}

// descend moves into a member: loc gains item and the filters narrow to f.
// The returned func restores both.
func (st *State) descend(item skema.LocItem, f filters) func() {
	prev := st.filt
	st.loc = append(st.loc, item)
	st.filt = f
	return func() {
		st.loc = st.loc[:len(st.loc)-1]
		st.filt = prev
	}
}

// filters is the include/exclude tree at the current level. A nil include
// selects everything.
type filters struct {
	include skema.FieldFilter
	exclude skema.FieldFilter
}

// child returns the filters of member key and whether the member is emitted.
// An exact key takes precedence over "*".
func (f filters) child(key string) (filters, bool) {
	var next filters
	if f.include != nil {
		sub, ok := f.include[key]
		if !ok {
			sub, ok = f.include["*"]
		}
		if !ok {
			return filters{}, false
		}
		next.include = sub
	}
	if f.exclude != nil {
		sub, ok := f.exclude[key]
		if !ok {
			sub, ok = f.exclude["*"]
		}
		if ok {
			if sub == nil {
				return filters{}, false
			}
			next.exclude = sub
		}
	}
	return next, true
}

// object builds a mapping in the output form of the current mode.
type object struct {
	native map[string]any
	wire   *skema.Object
}

func (st *State) newObject(n int) *object {
	if st.wire() {
		return &object{wire: skema.NewObject()}
	}
	return &object{native: make(map[string]any, n)}
}

func (o *object) set(k string, v any) {
	if o.wire != nil {
		o.wire.Set(k, v)
		return
	}
	o.native[k] = v
}

func (o *object) result() any {
	if o.wire != nil {
		return o.wire
	}
	return o.native
}

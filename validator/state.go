package validator

import (
	"context"

	skema "github.com/reoring/skema"
)

// Exactness ranks how directly an input matched the node that accepted it.
// Smart unions pick the branch with the highest rank; within a branch the
// rank is the minimum over every coercion performed.
type Exactness uint8

const (
	ExactnessBool    Exactness = 1 // bool from string or number, number from bool
	ExactnessLax     Exactness = 2 // string parses (uuid, temporal, bytes, url), container kind conversions
	ExactnessString  Exactness = 3 // str node given a string
	ExactnessNumeric Exactness = 4 // numeric widening/narrowing, number from string
	ExactnessExact   Exactness = 5
)

// State is the per-call validation state. It is never shared between calls.
type State struct {
	Ctx context.Context
	// Mode is the call-level strictness override.
	Mode skema.StrictMode
	// JSON marks input decoded from JSON text: strings are then acceptable
	// in strict mode for kinds JSON has no literal for.
	JSON     bool
	FailFast bool

	maxDepth  int
	depth     int
	exactness Exactness
	fieldsSet int
}

// NewState prepares the state of one validation call.
func NewState(ctx context.Context, opt skema.ValidateOpt) *State {
	if ctx == nil {
		ctx = context.Background()
	}
	return &State{
		Ctx:       ctx,
		Mode:      opt.Strict,
		FailFast:  opt.FailFast,
		maxDepth:  opt.Depth(),
		exactness: ExactnessExact,
	}
}

// IsStrict resolves the effective strictness of a node.
func (st *State) IsStrict(node bool) bool {
	switch st.Mode {
	case skema.StrictOn:
		return true
	case skema.StrictOff:
		return false
	}
	return node
}

// Floor lowers the exactness of the current attempt to at most e.
func (st *State) Floor(e Exactness) {
	if e < st.exactness {
		st.exactness = e
	}
}

// Exactness reports the rank accumulated so far.
func (st *State) Exactness() Exactness { return st.exactness }

// FieldsSet counts record fields populated from input so far.
func (st *State) FieldsSet() int { return st.fieldsSet }

// MaxDepth returns the nesting limit of this call.
func (st *State) MaxDepth() int { return st.maxDepth }

// enter descends one nesting level. It fails once the limit is exceeded.
func (st *State) enter(in any) skema.Issues {
	if st.depth >= st.maxDepth {
		return skema.Issues{skema.NewIssue(skema.ErrorKindRecursionLimit, skema.CodeRecursionLimit, in, nil)}
	}
	st.depth++
	return nil
}

func (st *State) leave() { st.depth-- }

// attempt snapshots the union-sensitive counters and resets them for a
// fresh branch attempt.
func (st *State) attempt() (Exactness, int) {
	ex, fs := st.exactness, st.fieldsSet
	st.exactness, st.fieldsSet = ExactnessExact, 0
	return ex, fs
}

// restore puts back counters saved by attempt, folding in the winner.
func (st *State) restore(ex Exactness, fs int, won Exactness, wonFields int) {
	st.exactness = ex
	st.Floor(won)
	st.fieldsSet = fs + wonFields
}

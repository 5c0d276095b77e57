package validator

import (
	"fmt"
	"sort"
	"strings"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/i18n"
)

// Choice is one union branch.
type Choice struct {
	Label     string
	Validator Validator
}

// CustomError replaces the aggregated branch issues of a failed union with
// a single issue.
type CustomError struct {
	Type    string
	Message string
	Context map[string]any
}

func (ce *CustomError) issue(in any) skema.Issues {
	code := ce.Type
	if code == "" {
		code = skema.CodeCustomError
	}
	it := skema.NewIssue(skema.ErrorKindUnion, code, in, ce.Context)
	if ce.Message != "" {
		it.Message = i18n.Render(ce.Message, ce.Context)
	}
	return skema.Issues{it}
}

// Union tries its branches according to Mode. Smart mode runs a strict pass
// over every branch, then (unless the call is strict) a lax pass, and keeps
// the success with the best exactness, then the most fields set, then the
// earliest declaration.
type Union struct {
	Choices []Choice
	Mode    skema.UnionMode
	Strict  bool
	Custom  *CustomError
}

type branchResult struct {
	val    skema.Value
	ex     Exactness
	fields int
}

func (u *Union) Validate(in any, st *State) (skema.Value, skema.Issues) {
	if u.Mode == skema.UnionLeftToRight {
		return u.leftToRight(in, st)
	}
	return u.smart(in, st)
}

func (u *Union) leftToRight(in any, st *State) (skema.Value, skema.Issues) {
	errs := make([]skema.Issues, len(u.Choices))
	for i, c := range u.Choices {
		ex, fs := st.attempt()
		val, iss := c.Validator.Validate(in, st)
		if iss == nil {
			st.restore(ex, fs, st.exactness, st.fieldsSet)
			return val, nil
		}
		st.restore(ex, fs, ExactnessExact, 0)
		errs[i] = iss
		if st.FailFast {
			break
		}
	}
	return nil, u.fail(in, errs)
}

func (u *Union) smart(in any, st *State) (skema.Value, skema.Issues) {
	errs := make([]skema.Issues, len(u.Choices))
	mode := st.Mode
	strictCall := mode == skema.StrictOn || u.Strict

	st.Mode = skema.StrictOn
	strictOK := u.pass(in, st, errs)
	st.Mode = mode

	var exact []branchResult
	for _, r := range strictOK {
		if r.ex == ExactnessExact {
			exact = append(exact, r)
		}
	}
	if len(exact) > 0 {
		return u.pick(exact, st), nil
	}
	if strictCall {
		if len(strictOK) > 0 {
			return u.pick(strictOK, st), nil
		}
		return nil, u.fail(in, errs)
	}
	laxOK := u.pass(in, st, errs)
	if len(laxOK) > 0 {
		return u.pick(laxOK, st), nil
	}
	return nil, u.fail(in, errs)
}

// pass validates every branch with the current mode. It never
// short-circuits; errs receives the issues of failed branches.
func (u *Union) pass(in any, st *State, errs []skema.Issues) []branchResult {
	var ok []branchResult
	for i, c := range u.Choices {
		ex, fs := st.attempt()
		val, iss := c.Validator.Validate(in, st)
		if iss == nil {
			ok = append(ok, branchResult{val: val, ex: st.exactness, fields: st.fieldsSet})
			errs[i] = nil
		} else {
			errs[i] = iss
		}
		st.exactness, st.fieldsSet = ex, fs
	}
	return ok
}

// pick chooses the best result and folds its counters into st.
func (u *Union) pick(rs []branchResult, st *State) skema.Value {
	best := rs[0]
	for _, r := range rs[1:] {
		if r.ex > best.ex || (r.ex == best.ex && r.fields > best.fields) {
			best = r
		}
	}
	st.Floor(best.ex)
	st.fieldsSet += best.fields
	return best.val
}

func (u *Union) fail(in any, errs []skema.Issues) skema.Issues {
	if u.Custom != nil {
		return u.Custom.issue(in)
	}
	var all skema.Issues
	for i, iss := range errs {
		if iss == nil {
			continue
		}
		all = append(all, iss.Prefix(branchLabel(u.Choices[i].Label, i))...)
	}
	if len(all) == 0 {
		all = skema.Issues{skema.NewIssue(skema.ErrorKindUnion, skema.CodeCustomError, in, map[string]any{"message": "no union branch matched"})}
	}
	return all
}

// Tagged selects exactly one branch by the value found at Discriminator,
// a path of field names (string) and indexes (int).
type Tagged struct {
	Discriminator []any
	Choices       []Choice
	Custom        *CustomError

	byTag map[string]int
}

// NewTagged indexes choices by their label.
func NewTagged(discriminator []any, choices []Choice, custom *CustomError) *Tagged {
	t := &Tagged{Discriminator: discriminator, Choices: choices, Custom: custom, byTag: make(map[string]int, len(choices))}
	for i, c := range choices {
		if _, dup := t.byTag[c.Label]; !dup {
			t.byTag[c.Label] = i
		}
	}
	return t
}

func (t *Tagged) Validate(in any, st *State) (skema.Value, skema.Issues) {
	if !t.container(in) {
		return nil, t.failWith(in, skema.NewIssue(skema.ErrorKindType, skema.CodeTaggedUnionType, in, map[string]any{
			"discriminator": t.discriminatorText(),
		}))
	}
	raw, found := t.extract(in)
	if !found {
		return nil, t.failWith(in, skema.NewIssue(skema.ErrorKindUnionTag, skema.CodeUnionTagMissing, in, map[string]any{
			"discriminator": t.discriminatorText(),
		}))
	}
	tag := tagText(raw)
	idx, known := t.byTag[tag]
	if !known {
		return nil, t.failWith(in, skema.NewIssue(skema.ErrorKindUnionTag, skema.CodeUnionTagInvalid, in, map[string]any{
			"tag":           tag,
			"discriminator": t.discriminatorText(),
			"expected_tags": t.expectedTags(),
		}))
	}
	val, iss := t.Choices[idx].Validator.Validate(in, st)
	if iss != nil {
		if t.Custom != nil {
			return nil, t.Custom.issue(in)
		}
		return nil, iss.Prefix(skema.Branch(tag))
	}
	return val, nil
}

func (t *Tagged) failWith(in any, it skema.Issue) skema.Issues {
	if t.Custom != nil {
		return t.Custom.issue(in)
	}
	return skema.Issues{it}
}

// container reports whether in can hold the first discriminator step.
func (t *Tagged) container(in any) bool {
	if len(t.Discriminator) > 0 {
		if _, byIndex := t.Discriminator[0].(int); byIndex {
			_, _, ok := skema.AsSequence(in)
			return ok
		}
	}
	_, _, ok := skema.AsMapping(in)
	return ok
}

func (t *Tagged) extract(in any) (any, bool) {
	cur := in
	for _, step := range t.Discriminator {
		switch s := step.(type) {
		case string:
			m, _, ok := skema.AsMapping(cur)
			if !ok {
				return nil, false
			}
			if cur, ok = m.Get(s); !ok {
				return nil, false
			}
		case int:
			seq, _, ok := skema.AsSequence(cur)
			if !ok || s < 0 || s >= seq.Len() {
				return nil, false
			}
			cur = seq.At(s)
		default:
			return nil, false
		}
	}
	return cur, true
}

func tagText(v any) string {
	switch x := skema.Unwrap(v).(type) {
	case string:
		return x
	case skema.Str:
		return string(x)
	case skema.Value:
		return fmt.Sprint(x.Native())
	case nil:
		return "None"
	}
	return fmt.Sprint(v)
}

func (t *Tagged) discriminatorText() string {
	parts := make([]string, len(t.Discriminator))
	for i, s := range t.Discriminator {
		if name, ok := s.(string); ok {
			parts[i] = "'" + name + "'"
		} else {
			parts[i] = fmt.Sprint(s)
		}
	}
	return strings.Join(parts, ".")
}

func (t *Tagged) expectedTags() string {
	tags := make([]string, 0, len(t.byTag))
	for tag := range t.byTag {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return t.byTag[tags[i]] < t.byTag[tags[j]] })
	for i, tag := range tags {
		tags[i] = "'" + tag + "'"
	}
	return strings.Join(tags, ", ")
}

package validator

import (
	"context"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/rules"
)

// Custom validates Inner, then applies an expression predicate and a Go
// hook, in that order.
type Custom struct {
	Inner Validator
	Rule  *rules.Program
	Func  func(ctx context.Context, v skema.Value) (skema.Value, error)
	// Message replaces the default rule_failed message.
	Message string
}

func (v *Custom) Validate(in any, st *State) (skema.Value, skema.Issues) {
	val, iss := itemsOrAny(v.Inner).Validate(in, st)
	if iss != nil {
		return nil, iss
	}
	if v.Rule != nil {
		ok, err := v.Rule.Eval(st.Ctx, val)
		switch {
		case err != nil:
			return nil, valueIssue(skema.CodeRuleFailed, in, map[string]any{"rule": v.Rule.Source(), "error": err.Error()})
		case !ok && v.Message != "":
			return nil, valueIssue(skema.CodeCustomError, in, map[string]any{"message": v.Message, "rule": v.Rule.Source()})
		case !ok:
			return nil, valueIssue(skema.CodeRuleFailed, in, map[string]any{"rule": v.Rule.Source()})
		}
	}
	if v.Func != nil {
		out, err := v.Func(st.Ctx, val)
		if err != nil {
			if iss, ok := skema.AsIssues(err); ok && len(iss) > 0 {
				return nil, iss
			}
			msg := err.Error()
			if v.Message != "" {
				msg = v.Message
			}
			return nil, valueIssue(skema.CodeCustomError, in, map[string]any{"message": msg})
		}
		if out != nil {
			val = out
		}
	}
	return val, nil
}

// JSON accepts a string (or bytes) holding JSON text and validates the
// decoded document with Inner in JSON mode.
type JSON struct {
	Inner Validator
}

func (v *JSON) Validate(in any, st *State) (skema.Value, skema.Issues) {
	x := skema.Unwrap(in)
	var data []byte
	if s, ok := asString(x); ok {
		data = []byte(s)
	} else if b, ok := asBytes(x); ok {
		data = b
	} else {
		return nil, typeIssue(skema.CodeJSONType, in, "json")
	}
	depth := st.maxDepth - st.depth
	if depth < 1 {
		depth = 1
	}
	doc, err := skema.ParseJSON(data, skema.ValidateOpt{MaxDepth: depth})
	if err != nil {
		msg := err.Error()
		if iss, ok := skema.AsIssues(err); ok && len(iss) > 0 {
			msg = iss[0].Message
		}
		return nil, valueIssue(skema.CodeJSONInvalid, in, map[string]any{"error": msg})
	}
	prev := st.JSON
	st.JSON = true
	defer func() { st.JSON = prev }()
	return itemsOrAny(v.Inner).Validate(doc, st)
}

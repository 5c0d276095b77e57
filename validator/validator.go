// Package validator holds the executable validator tree. Nodes are built by
// the compiler package, are immutable afterwards and safe for concurrent
// use; all per-call data lives in State.
//
// Every node returns either a Value or a non-empty Issues whose locations
// are relative to the node. Parents prefix child issues with the field,
// index, key or branch segment that led to the child.
package validator

import (
	"strings"

	skema "github.com/reoring/skema"
)

// Validator is one node of a validator tree.
type Validator interface {
	Validate(in any, st *State) (skema.Value, skema.Issues)
}

func typeIssue(code string, in any, expected string) skema.Issues {
	return skema.Issues{skema.NewIssue(skema.ErrorKindType, code, in, map[string]any{
		"expected": expected,
		"got":      skema.KindName(in),
	})}
}

func valueIssue(code string, in any, params map[string]any) skema.Issues {
	return skema.Issues{skema.NewIssue(skema.ErrorKindValue, code, in, params)}
}

func asString(x any) (string, bool) {
	switch t := x.(type) {
	case string:
		return t, true
	case skema.Str:
		return string(t), true
	}
	return "", false
}

func asBytes(x any) ([]byte, bool) {
	switch t := x.(type) {
	case []byte:
		return t, true
	case skema.Bytes:
		return []byte(t), true
	}
	return nil, false
}

func asBool(x any) (bool, bool) {
	switch t := x.(type) {
	case bool:
		return t, true
	case skema.Bool:
		return bool(t), true
	}
	return false, false
}

// formatChoices renders "'a', 'b' or 'c'".
func formatChoices(vals []string) string {
	switch len(vals) {
	case 0:
		return ""
	case 1:
		return vals[0]
	}
	return strings.Join(vals[:len(vals)-1], ", ") + " or " + vals[len(vals)-1]
}

// Package rules compiles boolean predicates written in the expr language and
// evaluates them against validated values. A predicate sees the value as
// `value` (its native Go form) and may call the helpers registered here.
//
//	value > 0 && value % 2 == 0
//	len(value) <= 3
//	value.start < value.end
package rules

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	skema "github.com/reoring/skema"
)

// Env is the evaluation environment of a predicate.
type Env map[string]any

// Program is a compiled predicate. It is immutable and safe for concurrent
// use.
type Program struct {
	src  string
	prog *vm.Program
}

// Compile parses and type-checks src. The expression must produce a bool.
func Compile(src string) (*Program, error) {
	if src == "" {
		return nil, fmt.Errorf("rules: empty expression")
	}
	prog, err := expr.Compile(src, append(exprOpts(), expr.AsBool())...)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	return &Program{src: src, prog: prog}, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(src string) *Program {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}

// Source returns the expression text.
func (p *Program) Source() string { return p.src }

// Eval runs the predicate against v.
func (p *Program) Eval(ctx context.Context, v skema.Value) (bool, error) {
	env := Env{"value": native(v)}
	if ctx != nil {
		if extra, ok := ctx.Value(envKey{}).(Env); ok {
			for k, x := range extra {
				if k != "value" {
					env[k] = x
				}
			}
		}
	}
	res, err := expr.Run(p.prog, env)
	if err != nil {
		return false, fmt.Errorf("rules: %w", err)
	}
	ok, isBool := res.(bool)
	if !isBool {
		return false, fmt.Errorf("rules: expression returned %T, want bool", res)
	}
	return ok, nil
}

type envKey struct{}

// WithEnv exposes additional variables to predicates evaluated under ctx.
// The name "value" is reserved.
func WithEnv(ctx context.Context, env Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// native converts a value into the shapes expr handles natively. Integers
// that fit become int so arithmetic with literals type-checks at runtime.
func native(v skema.Value) any {
	switch x := v.(type) {
	case nil:
		return nil
	case skema.Int:
		return int(x)
	case skema.List:
		return nativeSeq(x)
	case skema.Tuple:
		return nativeSeq(x)
	case *skema.Set:
		return nativeSeq(x.Items())
	case *skema.Map:
		out := make(map[string]any, x.Len())
		for _, e := range x.Entries() {
			out[keyString(e.Key)] = native(e.Value)
		}
		return out
	case *skema.Record:
		out := make(map[string]any, len(x.Fields()))
		for _, f := range x.Fields() {
			out[f.Name] = native(f.Value)
		}
		if x.Extra != nil {
			for _, e := range x.Extra.Entries() {
				out[keyString(e.Key)] = native(e.Value)
			}
		}
		return out
	}
	return v.Native()
}

func nativeSeq(vs []skema.Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = native(v)
	}
	return out
}

func keyString(k skema.Value) string {
	if s, ok := k.(skema.Str); ok {
		return string(s)
	}
	return fmt.Sprint(k.Native())
}

func exprOpts() []expr.Option {
	return []expr.Option{
		expr.Function("kind", func(params ...any) (any, error) {
			return skema.KindName(params[0]), nil
		},
			new(func(any) string)),
		expr.Function("is_null", func(params ...any) (any, error) {
			return skema.IsNull(params[0]), nil
		},
			new(func(any) bool)),
	}
}

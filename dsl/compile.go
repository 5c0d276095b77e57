package dsl

import (
	skema "github.com/reoring/skema"
	"github.com/reoring/skema/compiler"
)

// Compile builds b and compiles the result.
func Compile(b Builder, opts ...skema.CompileOpt) (*compiler.Compiled, error) {
	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	return compiler.Compile(s, opts...)
}

// MustCompile is Compile that panics on error.
func MustCompile(b Builder, opts ...skema.CompileOpt) *compiler.Compiled {
	c, err := Compile(b, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

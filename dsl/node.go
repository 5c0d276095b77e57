package dsl

import (
	"fmt"

	skema "github.com/reoring/skema"
)

// Builder is anything that can produce a schema node: a *Node, an object
// builder or its current field step.
type Builder interface {
	Build() (*skema.Schema, error)
}

// Node is a chainable schema node. Modifiers that do not apply to the node's
// type are recorded as errors and reported by Build.
type Node struct {
	s   *skema.Schema
	err error
}

func node(t skema.Type) *Node { return &Node{s: &skema.Schema{Type: t}} }

// Wrap adapts an existing schema node so it can be embedded in builders.
func Wrap(s *skema.Schema) *Node {
	if s == nil {
		return &Node{s: &skema.Schema{}, err: fmt.Errorf("dsl: nil schema")}
	}
	return &Node{s: s}
}

// Any accepts every value as is.
func Any() *Node { return node(skema.TypeAny) }

// None accepts only null.
func None() *Node { return node(skema.TypeNone) }

func Bool() *Node      { return node(skema.TypeBool) }
func Int() *Node       { return node(skema.TypeInt) }
func Float() *Node     { return node(skema.TypeFloat) }
func Decimal() *Node   { return node(skema.TypeDecimal) }
func Str() *Node       { return node(skema.TypeStr) }
func Bytes() *Node     { return node(skema.TypeBytes) }
func Date() *Node      { return node(skema.TypeDate) }
func Time() *Node      { return node(skema.TypeTime) }
func DateTime() *Node  { return node(skema.TypeDateTime) }
func Timedelta() *Node { return node(skema.TypeTimedelta) }
func UUID() *Node      { return node(skema.TypeUUID) }
func URL() *Node       { return node(skema.TypeURL) }

// Build returns a copy of the node. The copy shares child nodes.
func (n *Node) Build() (*skema.Schema, error) {
	if n.err != nil {
		return nil, n.err
	}
	cp := *n.s
	return &cp, nil
}

// MustBuild is Build that panics on error.
func (n *Node) MustBuild() *skema.Schema {
	s, err := n.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func (n *Node) fail(format string, args ...any) {
	if n.err == nil {
		n.err = fmt.Errorf("dsl: "+format, args...)
	}
}

// allow records an error unless the node has one of the given types.
func (n *Node) allow(op string, types ...skema.Type) bool {
	for _, t := range types {
		if n.s.Type == t {
			return true
		}
	}
	n.fail("%s does not apply to %s", op, n.s.Type)
	return false
}

// child builds b, keeping the first error on n.
func (n *Node) child(b Builder) *skema.Schema {
	if b == nil {
		n.fail("%s: nil child", n.s.Type)
		return nil
	}
	s, err := b.Build()
	if err != nil {
		if n.err == nil {
			n.err = err
		}
		return nil
	}
	return s
}

var (
	numeric  = []skema.Type{skema.TypeInt, skema.TypeFloat, skema.TypeDecimal}
	ordered  = []skema.Type{skema.TypeInt, skema.TypeFloat, skema.TypeDecimal, skema.TypeDate, skema.TypeTime, skema.TypeDateTime, skema.TypeTimedelta}
	sized    = []skema.Type{skema.TypeStr, skema.TypeBytes, skema.TypeURL, skema.TypeList, skema.TypeTuple, skema.TypeSet, skema.TypeFrozenSet, skema.TypeDict}
	strictly = []skema.Type{
		skema.TypeBool, skema.TypeInt, skema.TypeFloat, skema.TypeDecimal, skema.TypeStr, skema.TypeBytes,
		skema.TypeDate, skema.TypeTime, skema.TypeDateTime, skema.TypeTimedelta, skema.TypeUUID, skema.TypeURL,
		skema.TypeLiteral, skema.TypeEnum, skema.TypeList, skema.TypeTuple, skema.TypeSet, skema.TypeFrozenSet,
		skema.TypeDict, skema.TypeUnion,
	}
)

// Strict disables coercion on this node.
func (n *Node) Strict() *Node {
	if n.allow("Strict", strictly...) {
		v := true
		n.s.Strict = &v
	}
	return n
}

// Lax enables coercion on this node even when compiling strictly.
func (n *Node) Lax() *Node {
	if n.allow("Lax", strictly...) {
		v := false
		n.s.Strict = &v
	}
	return n
}

// Ref registers the node as a named definition.
func (n *Node) Ref(name string) *Node {
	if name == "" {
		n.fail("empty ref name")
		return n
	}
	n.s.Ref = name
	return n
}

// GT, GE, LT and LE take Go numbers, numeric strings, or temporal values and
// strings for temporal nodes.
func (n *Node) GT(v any) *Node {
	if n.allow("GT", ordered...) {
		n.s.GT = v
	}
	return n
}

func (n *Node) GE(v any) *Node {
	if n.allow("GE", ordered...) {
		n.s.GE = v
	}
	return n
}

func (n *Node) LT(v any) *Node {
	if n.allow("LT", ordered...) {
		n.s.LT = v
	}
	return n
}

func (n *Node) LE(v any) *Node {
	if n.allow("LE", ordered...) {
		n.s.LE = v
	}
	return n
}

// MultipleOf applies to numbers and timedeltas.
func (n *Node) MultipleOf(v any) *Node {
	if n.allow("MultipleOf", append(numeric, skema.TypeTimedelta)...) {
		n.s.MultipleOf = v
	}
	return n
}

// AllowInfNaN toggles acceptance of non-finite floats. Floats accept them
// unless told otherwise.
func (n *Node) AllowInfNaN(ok bool) *Node {
	if n.allow("AllowInfNaN", skema.TypeFloat) {
		n.s.AllowInfNaN = &ok
	}
	return n
}

func (n *Node) MaxDigits(d int) *Node {
	if n.allow("MaxDigits", skema.TypeDecimal) {
		n.s.MaxDigits = &d
	}
	return n
}

func (n *Node) DecimalPlaces(d int) *Node {
	if n.allow("DecimalPlaces", skema.TypeDecimal) {
		n.s.DecimalPlaces = &d
	}
	return n
}

// Min sets the minimum length (characters, bytes or items).
func (n *Node) Min(l int) *Node {
	if n.allow("Min", sized...) {
		n.s.MinLength = &l
	}
	return n
}

// Max sets the maximum length (characters, bytes or items).
func (n *Node) Max(l int) *Node {
	if n.allow("Max", sized...) {
		n.s.MaxLength = &l
	}
	return n
}

// Pattern requires strings to match the regular expression somewhere.
func (n *Node) Pattern(re string) *Node {
	if n.allow("Pattern", skema.TypeStr) {
		n.s.Pattern = re
	}
	return n
}

func (n *Node) Strip() *Node {
	if n.allow("Strip", skema.TypeStr) {
		n.s.StripWhitespace = true
	}
	return n
}

func (n *Node) Lower() *Node {
	if n.allow("Lower", skema.TypeStr) {
		n.s.ToLower = true
	}
	return n
}

func (n *Node) Upper() *Node {
	if n.allow("Upper", skema.TypeStr) {
		n.s.ToUpper = true
	}
	return n
}

// CoerceNumbers lets a lax string node accept numbers and render them as text.
func (n *Node) CoerceNumbers() *Node {
	if n.allow("CoerceNumbers", skema.TypeStr) {
		n.s.CoerceNumbersToStr = true
	}
	return n
}

// Encoding selects the textual form of bytes.
func (n *Node) Encoding(e skema.BytesEncoding) *Node {
	if n.allow("Encoding", skema.TypeBytes) {
		n.s.BytesEncoding = e
	}
	return n
}

// Version pins the accepted UUID version.
func (n *Node) Version(v int) *Node {
	if n.allow("Version", skema.TypeUUID) {
		n.s.UUIDVersion = v
	}
	return n
}

func (n *Node) Schemes(schemes ...string) *Node {
	if n.allow("Schemes", skema.TypeURL) {
		n.s.AllowedSchemes = append(n.s.AllowedSchemes, schemes...)
	}
	return n
}

func (n *Node) HostRequired() *Node {
	if n.allow("HostRequired", skema.TypeURL) {
		n.s.HostRequired = true
	}
	return n
}

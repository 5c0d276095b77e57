package dsl

import (
	"context"

	skema "github.com/reoring/skema"
)

// List accepts sequences whose items match items.
func List(items Builder) *Node {
	n := node(skema.TypeList)
	n.s.Items = n.child(items)
	return n
}

// Set collects hashable members; duplicates are dropped unless Unique is set.
func Set(items Builder) *Node {
	n := node(skema.TypeSet)
	n.s.Items = n.child(items)
	return n
}

func FrozenSet(items Builder) *Node {
	n := node(skema.TypeFrozenSet)
	n.s.Items = n.child(items)
	return n
}

// Unique rejects repeated set members instead of dropping them.
func (n *Node) Unique() *Node {
	if n.allow("Unique", skema.TypeSet, skema.TypeFrozenSet) {
		n.s.Duplicates = skema.DuplicatesForbid
	}
	return n
}

// Tuple validates positions against prefix. Without Rest the tuple has
// exactly len(prefix) items.
func Tuple(prefix ...Builder) *Node {
	n := node(skema.TypeTuple)
	for _, p := range prefix {
		n.s.PrefixItems = append(n.s.PrefixItems, n.child(p))
	}
	return n
}

// Rest validates the items following the tuple prefix.
func (n *Node) Rest(items Builder) *Node {
	if n.allow("Rest", skema.TypeTuple) {
		n.s.Items = n.child(items)
	}
	return n
}

// Dict accepts mappings. Either side may be nil to accept any key or value.
func Dict(keys, values Builder) *Node {
	n := node(skema.TypeDict)
	if keys != nil {
		n.s.Keys = n.child(keys)
	}
	if values != nil {
		n.s.Values = n.child(values)
	}
	return n
}

// Literal accepts exactly one of the given values.
func Literal(values ...any) *Node {
	n := node(skema.TypeLiteral)
	n.s.Expected = values
	return n
}

// Enum accepts members of a closed set after coercing the input to sub
// (str, int or float).
func Enum(sub skema.Type, members ...any) *Node {
	n := node(skema.TypeEnum)
	n.s.SubType = sub
	n.s.Expected = members
	return n
}

// Nullable accepts null or a value matching inner.
func Nullable(inner Builder) *Node {
	n := node(skema.TypeNullable)
	n.s.Inner = n.child(inner)
	return n
}

// Union tries choices in smart mode; see LeftToRight.
func Union(choices ...Builder) *Node {
	n := node(skema.TypeUnion)
	for _, c := range choices {
		n.s.Choices = append(n.s.Choices, skema.Choice{Schema: n.child(c)})
	}
	return n
}

// Choice adds a labelled union choice. The label replaces the type name in
// error locations.
func (n *Node) Choice(label string, b Builder) *Node {
	if n.allow("Choice", skema.TypeUnion) {
		n.s.Choices = append(n.s.Choices, skema.Choice{Label: label, Schema: n.child(b)})
	}
	return n
}

// LeftToRight makes the union take the first choice that validates.
func (n *Node) LeftToRight() *Node {
	if n.allow("LeftToRight", skema.TypeUnion) {
		n.s.Mode = skema.UnionLeftToRight
	}
	return n
}

// Tagged builds a discriminated union keyed by the field discriminator.
// Add variants with Case.
func Tagged(discriminator string) *Node {
	n := node(skema.TypeTaggedUnion)
	if discriminator == "" {
		n.fail("tagged union needs a discriminator")
	}
	n.s.Discriminator = discriminator
	return n
}

// TaggedPath builds a discriminated union whose tag sits at a nested path of
// field names (string) and indexes (int).
func TaggedPath(path ...any) *Node {
	n := node(skema.TypeTaggedUnion)
	if len(path) == 0 {
		n.fail("tagged union needs a discriminator path")
	}
	n.s.DiscriminatorPath = path
	return n
}

// Case adds the variant selected by tag.
func (n *Node) Case(tag string, b Builder) *Node {
	if n.allow("Case", skema.TypeTaggedUnion) {
		n.s.Choices = append(n.s.Choices, skema.Choice{Label: tag, Schema: n.child(b)})
	}
	return n
}

// CustomError replaces the union's aggregated errors with a single issue.
func (n *Node) CustomError(code, message string, context map[string]any) *Node {
	if n.allow("CustomError", skema.TypeUnion, skema.TypeTaggedUnion) {
		n.s.CustomErrorType = code
		n.s.CustomErrorMessage = message
		n.s.CustomErrorContext = context
	}
	return n
}

// RefTo points at the definition registered under name.
func RefTo(name string) *Node {
	n := node(skema.TypeRef)
	n.s.SchemaRef = name
	return n
}

// Definitions registers defs (each must carry a Ref) and validates with inner.
func Definitions(inner Builder, defs ...Builder) *Node {
	n := node(skema.TypeDefinitions)
	n.s.Inner = n.child(inner)
	for _, d := range defs {
		n.s.Definitions = append(n.s.Definitions, n.child(d))
	}
	return n
}

// Custom wraps inner with an expression or Go function check. inner may be
// nil to check the raw input.
func Custom(inner Builder) *Node {
	n := node(skema.TypeCustom)
	if inner != nil {
		n.s.Inner = n.child(inner)
	}
	return n
}

// Expr sets the boolean expression evaluated against `value`.
func (n *Node) Expr(expr string) *Node {
	if n.allow("Expr", skema.TypeCustom) {
		n.s.Expr = expr
	}
	return n
}

// Func sets a Go hook that may replace the value or reject it.
func (n *Node) Func(fn func(ctx context.Context, v skema.Value) (skema.Value, error)) *Node {
	if n.allow("Func", skema.TypeCustom) {
		n.s.Func = fn
	}
	return n
}

// Message sets the error message of a failed custom check.
func (n *Node) Message(msg string) *Node {
	if n.allow("Message", skema.TypeCustom) {
		n.s.ErrorMessage = msg
	}
	return n
}

// JSON accepts a string (or bytes) holding a JSON document. inner may be nil
// to accept any document.
func JSON(inner Builder) *Node {
	n := node(skema.TypeJSON)
	if inner != nil {
		n.s.Inner = n.child(inner)
	}
	return n
}

// Package dsl builds schema trees with chained calls instead of struct
// literals.
//
//	user := dsl.Object("User").
//	    Field("id", dsl.Int().GT(0)).
//	    Field("name", dsl.Str().Min(1)).Alias("userName").
//	    Field("tags", dsl.List(dsl.Str())).Default([]any{}).
//	    Forbid()
//	c := dsl.MustCompile(user)
//	v, err := c.Validate(ctx, map[string]any{"id": "7", "userName": "ann"})
//
// Nodes and object builders both satisfy Builder and can be nested freely.
// Modifiers that do not fit a node (Pattern on an int, say) do not panic;
// the first such mistake is returned by Build.
//
// Recursive schemas register a node with Ref and point back at it with
// RefTo:
//
//	tree := dsl.Object("Tree").Ref("Tree").
//	    Field("value", dsl.Int()).
//	    Field("children", dsl.List(dsl.RefTo("Tree"))).Default([]any{})
package dsl

package dsl_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/dsl"
)

func ptr[T any](v T) *T { return &v }

func user() dsl.Builder {
	return dsl.Object("User").
		Field("id", dsl.Int().GT(0)).
		Field("name", dsl.Str().Min(1)).Alias("userName").
		Field("tags", dsl.List(dsl.Str())).Default([]any{}).
		Forbid()
}

func TestObject_BuildsModelSchema(t *testing.T) {
	got, err := user().Build()
	require.NoError(t, err)

	want := &skema.Schema{
		Type:  skema.TypeModel,
		Name:  "User",
		Extra: skema.ExtraForbid,
		Fields: []skema.Field{
			{Name: "id", Schema: &skema.Schema{Type: skema.TypeInt, GT: 0}},
			{Name: "name", Alias: "userName", Schema: &skema.Schema{Type: skema.TypeStr, MinLength: ptr(1)}},
			{Name: "tags", Schema: &skema.Schema{Type: skema.TypeList, Items: &skema.Schema{Type: skema.TypeStr}}, Default: []any{}, HasDefault: true},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestObject_ValidateAndSerialize(t *testing.T) {
	c := dsl.MustCompile(user())
	ctx := context.Background()

	v, err := c.Validate(ctx, map[string]any{"id": "7", "userName": "ann"})
	require.NoError(t, err)
	out, warns, err := c.SerializeJSON(v)
	require.NoError(t, err)
	assert.Empty(t, warns)
	assert.Equal(t, `{"id":7,"name":"ann","tags":[]}`, string(out))

	_, err = c.Validate(ctx, map[string]any{"id": 0, "userName": "ann", "zzz": 1})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{skema.CodeGreaterThan, skema.CodeExtraForbidden}, iss.Codes())
}

func TestObject_RequiredAndOptional(t *testing.T) {
	s, err := dsl.Object("Opt").
		Field("a", dsl.Int()).Optional().
		Field("b", dsl.Int()).
		Field("c", dsl.Int()).Default(3).
		Require("c").
		Build()
	require.NoError(t, err)
	assert.False(t, s.Fields[0].IsRequired())
	assert.True(t, s.Fields[1].IsRequired())
	assert.True(t, s.Fields[2].IsRequired())

	c := dsl.MustCompile(dsl.Wrap(s))
	_, err = c.Validate(context.Background(), map[string]any{})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "/b", iss[0].Path())
}

func TestObject_BuilderMistakes(t *testing.T) {
	_, err := dsl.Object("Dup").Field("a", dsl.Int()).Field("a", dsl.Str()).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate field "a"`)

	_, err = dsl.Object("Undeclared").Field("a", dsl.Int()).Require("b").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `undeclared field "b"`)

	_, err = dsl.Object("Nil").Field("a", nil).Build()
	require.Error(t, err)

	_, err = dsl.Object("Bad").Field("n", dsl.Int().Pattern("x")).Build()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Bad.n: "), err.Error())
}

func TestModifierMismatchIsReported(t *testing.T) {
	_, err := dsl.Int().Pattern("^a").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Pattern does not apply to int")

	// the first mistake wins and travels up through containers
	_, err = dsl.List(dsl.Str().MultipleOf(2).Version(4)).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MultipleOf does not apply to str")

	_, err = dsl.List(nil).Build()
	require.Error(t, err)

	assert.Panics(t, func() { dsl.Bool().Max(1).MustBuild() })
}

func TestBuildReturnsCopies(t *testing.T) {
	n := dsl.Int()
	a := n.MustBuild()
	n.GE(5)
	b := n.MustBuild()
	assert.Nil(t, a.GE)
	assert.Equal(t, 5, b.GE)
}

func TestRecursiveTree(t *testing.T) {
	tree := dsl.Object("Tree").Ref("Tree").
		Field("value", dsl.Int()).
		Field("children", dsl.List(dsl.RefTo("Tree"))).Default([]any{})
	c := dsl.MustCompile(tree)

	in := map[string]any{
		"value": 1,
		"children": []any{
			map[string]any{"value": 2, "children": []any{map[string]any{"value": 3}}},
		},
	}
	v, err := c.Validate(context.Background(), in)
	require.NoError(t, err)
	rec, ok := v.(*skema.Record)
	require.True(t, ok)
	assert.Equal(t, "Tree", rec.Name)

	_, err = c.Validate(context.Background(), map[string]any{"value": 1, "children": []any{map[string]any{"value": "x"}}})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "/children/0/value", iss[0].Path())

	js, err := c.JSONSchema()
	require.NoError(t, err)
	assert.Equal(t, "#/$defs/Tree", js.Ref)
	assert.Contains(t, js.Defs, "Tree")
}

func TestTaggedUnion(t *testing.T) {
	pet := dsl.Tagged("kind").
		Case("cat", dsl.Object("Cat").Field("kind", dsl.Literal("cat")).Field("lives", dsl.Int())).
		Case("dog", dsl.Object("Dog").Field("kind", dsl.Literal("dog")).Field("bark", dsl.Bool()))
	c := dsl.MustCompile(pet)
	ctx := context.Background()

	v, err := c.Validate(ctx, map[string]any{"kind": "dog", "bark": true})
	require.NoError(t, err)
	assert.Equal(t, "Dog", v.(*skema.Record).Name)

	_, err = c.Validate(ctx, map[string]any{"kind": "fish"})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{skema.CodeUnionTagInvalid}, iss.Codes())

	_, err = dsl.Tagged("").Build()
	require.Error(t, err)
}

func TestUnionChoices(t *testing.T) {
	s := dsl.Union(dsl.Int()).
		Choice("text", dsl.Str()).
		LeftToRight().
		CustomError("bad_id", "not an id", nil).
		MustBuild()
	require.Len(t, s.Choices, 2)
	assert.Equal(t, "", s.Choices[0].Label)
	assert.Equal(t, "text", s.Choices[1].Label)
	assert.Equal(t, skema.UnionLeftToRight, s.Mode)
	assert.Equal(t, "bad_id", s.CustomErrorType)

	c := dsl.MustCompile(dsl.Wrap(s))
	v, err := c.Validate(context.Background(), "5")
	require.NoError(t, err)
	// left to right takes the first lax match
	assert.Equal(t, skema.Int(5), v)
}

func TestCustomChecks(t *testing.T) {
	ctx := context.Background()
	big := dsl.MustCompile(dsl.Custom(dsl.Int()).Expr("value > 10").Message("too small"))
	_, err := big.Validate(ctx, 5)
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{skema.CodeCustomError}, iss.Codes())

	upper := dsl.MustCompile(dsl.Custom(dsl.Str()).Func(func(_ context.Context, v skema.Value) (skema.Value, error) {
		return skema.Str(strings.ToUpper(string(v.(skema.Str)))), nil
	}))
	v, err := upper.Validate(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, skema.Str("ABC"), v)

	_, err = dsl.Int().Expr("value > 1").Build()
	require.Error(t, err)
}

func TestDefinitionsAndStrict(t *testing.T) {
	ctx := context.Background()
	c := dsl.MustCompile(dsl.Definitions(dsl.List(dsl.RefTo("Pos")), dsl.Int().GE(0).Ref("Pos")))
	_, err := c.Validate(ctx, []any{1, -1})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeGreaterThanEqual, iss[0].Code)
	assert.Equal(t, "/1", iss[0].Path())

	strict := dsl.MustCompile(dsl.Bool().Strict())
	_, err = strict.Validate(ctx, "true")
	require.Error(t, err)
	lax := dsl.MustCompile(dsl.Bool().Lax(), skema.CompileOpt{Strict: true})
	v, err := lax.Validate(ctx, "true")
	require.NoError(t, err)
	assert.Equal(t, skema.Bool(true), v)
}

func TestCompile_SchemaErrorsSurface(t *testing.T) {
	_, err := dsl.Compile(dsl.Str().Min(3).Max(1))
	require.Error(t, err)
	_, ok := skema.AsSchemaError(err)
	assert.True(t, ok)

	_, err = dsl.Compile(dsl.RefTo("Missing"))
	require.Error(t, err)
}

type emailIndex struct{ taken map[string]bool }

func TestCustomFunc_UsesContextService(t *testing.T) {
	unique := dsl.Object("Signup").
		Field("email", dsl.Custom(dsl.Str().Lower()).Func(func(ctx context.Context, v skema.Value) (skema.Value, error) {
			idx, err := skema.RequireService[*emailIndex](ctx)
			if err != nil {
				return nil, err
			}
			if idx.taken[string(v.(skema.Str))] {
				return nil, fmt.Errorf("email already registered")
			}
			return v, nil
		}))
	c := dsl.MustCompile(unique)

	_, err := c.Validate(context.Background(), map[string]any{"email": "a@x.io"})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeDependencyUnavailable, iss[0].Code)
	assert.Equal(t, "/email", iss[0].Path())

	ctx := skema.WithService(context.Background(), &emailIndex{taken: map[string]bool{"a@x.io": true}})
	_, err = c.Validate(ctx, map[string]any{"email": "A@x.io"})
	iss, ok = skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{skema.CodeCustomError}, iss.Codes())
	assert.Equal(t, "email already registered", iss[0].Message)

	v, err := c.Validate(ctx, map[string]any{"email": "b@x.io"})
	require.NoError(t, err)
	got, _ := v.(*skema.Record).Get("email")
	assert.Equal(t, skema.Str("b@x.io"), got)
}

package jsonschema_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/jsonschema"
)

func ptr[T any](v T) *T { return &v }

func typ(t skema.Type) *skema.Schema { return &skema.Schema{Type: t} }

func TestModel_PropertiesRequiredDefaults(t *testing.T) {
	s := &skema.Schema{
		Type:  skema.TypeModel,
		Name:  "User",
		Extra: skema.ExtraForbid,
		Fields: []skema.Field{
			{Name: "id", Schema: &skema.Schema{Type: skema.TypeInt, GE: 1}},
			{Name: "name", Alias: "userName", Schema: typ(skema.TypeStr), Default: "anon", HasDefault: true},
			{Name: "tags", Schema: &skema.Schema{Type: skema.TypeList, Items: typ(skema.TypeStr)}, Default: []any{}, HasDefault: true},
			{Name: "email", Schema: &skema.Schema{Type: skema.TypeNullable, Inner: typ(skema.TypeStr)}},
		},
	}
	out, err := jsonschema.FromSchema(s)
	require.NoError(t, err)

	assert.Equal(t, jsonschema.Draft, out.SchemaURI)
	assert.Equal(t, "object", out.Type)
	assert.Equal(t, "User", out.Title)
	assert.Equal(t, []string{"id", "email"}, out.Required)
	assert.Equal(t, false, out.AdditionalProperties)

	require.Contains(t, out.Properties, "userName")
	assert.NotContains(t, out.Properties, "name")
	assert.Equal(t, "anon", out.Properties["userName"].Default)
	assert.Equal(t, []any{}, out.Properties["tags"].Default)

	email := out.Properties["email"]
	require.Len(t, email.AnyOf, 2)
	assert.Equal(t, "string", email.AnyOf[0].Type)
	assert.Equal(t, "null", email.AnyOf[1].Type)
}

func TestNumericBoundsAreExactLiterals(t *testing.T) {
	s := &skema.Schema{Type: skema.TypeInt, GT: 0, LE: "10", MultipleOf: 0.5}
	out, err := jsonschema.FromSchema(s)
	require.NoError(t, err)
	assert.Equal(t, "integer", out.Type)
	assert.Equal(t, "0", string(out.ExclusiveMinimum))
	assert.Equal(t, "10", string(out.Maximum))
	assert.Equal(t, "0.5", string(out.MultipleOf))
	assert.Empty(t, out.Minimum)

	dec, err := jsonschema.FromSchema(&skema.Schema{Type: skema.TypeDecimal, GE: "1.25"})
	require.NoError(t, err)
	require.Len(t, dec.AnyOf, 2)
	assert.Equal(t, "1.25", string(dec.AnyOf[0].Minimum))
	assert.Equal(t, "string", dec.AnyOf[1].Type)
}

func TestNumericBound_NotANumber(t *testing.T) {
	_, err := jsonschema.FromSchema(&skema.Schema{Type: skema.TypeFloat, LT: "ten"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/lt")
}

func TestRecursiveDefinitions(t *testing.T) {
	tree := &skema.Schema{
		Type: skema.TypeModel,
		Name: "Tree",
		Ref:  "Tree",
		Fields: []skema.Field{
			{Name: "value", Schema: typ(skema.TypeInt)},
			{Name: "children", Schema: &skema.Schema{
				Type:  skema.TypeList,
				Items: &skema.Schema{Type: skema.TypeRef, SchemaRef: "Tree"},
			}, Default: []any{}, HasDefault: true},
		},
	}
	out, err := jsonschema.FromSchema(tree)
	require.NoError(t, err)

	assert.Equal(t, "#/$defs/Tree", out.Ref)
	require.Contains(t, out.Defs, "Tree")
	def := out.Defs["Tree"]
	assert.Equal(t, "object", def.Type)
	items, ok := def.Properties["children"].Items.(*jsonschema.Schema)
	require.True(t, ok)
	assert.Equal(t, "#/$defs/Tree", items.Ref)
}

func TestTupleWithoutTail(t *testing.T) {
	s := &skema.Schema{Type: skema.TypeTuple, PrefixItems: []*skema.Schema{typ(skema.TypeInt), typ(skema.TypeStr)}}
	out, err := jsonschema.FromSchema(s)
	require.NoError(t, err)
	require.Len(t, out.PrefixItems, 2)
	assert.Equal(t, false, out.Items)
	require.NotNil(t, out.MinItems)
	assert.Equal(t, 2, *out.MinItems)

	tail := &skema.Schema{Type: skema.TypeTuple, PrefixItems: []*skema.Schema{typ(skema.TypeInt)}, Items: typ(skema.TypeStr)}
	out, err = jsonschema.FromSchema(tail)
	require.NoError(t, err)
	items, ok := out.Items.(*jsonschema.Schema)
	require.True(t, ok)
	assert.Equal(t, "string", items.Type)
	assert.Nil(t, out.MinItems)
}

func TestLiterals(t *testing.T) {
	one, err := jsonschema.FromSchema(&skema.Schema{Type: skema.TypeLiteral, Expected: []any{"cat"}})
	require.NoError(t, err)
	assert.Equal(t, "cat", one.Const)
	assert.Empty(t, one.Enum)

	many, err := jsonschema.FromSchema(&skema.Schema{Type: skema.TypeLiteral, Expected: []any{1, 2}})
	require.NoError(t, err)
	require.Len(t, many.Enum, 2)
	assert.Equal(t, "1", fmt.Sprint(many.Enum[0]))
	assert.Equal(t, "2", fmt.Sprint(many.Enum[1]))
}

func TestFormatsAndCollections(t *testing.T) {
	cases := []struct {
		in     *skema.Schema
		typ    string
		format string
	}{
		{typ(skema.TypeDate), "string", "date"},
		{typ(skema.TypeDateTime), "string", "date-time"},
		{typ(skema.TypeTimedelta), "string", "duration"},
		{typ(skema.TypeUUID), "string", "uuid"},
		{typ(skema.TypeURL), "string", "uri"},
		{typ(skema.TypeBytes), "string", "binary"},
		{typ(skema.TypeBool), "boolean", ""},
	}
	for _, tc := range cases {
		out, err := jsonschema.FromSchema(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.typ, out.Type, tc.in.Type)
		assert.Equal(t, tc.format, out.Format, tc.in.Type)
	}

	set, err := jsonschema.FromSchema(&skema.Schema{Type: skema.TypeSet, Items: typ(skema.TypeInt), MaxLength: ptr(3)})
	require.NoError(t, err)
	assert.True(t, set.UniqueItems)
	assert.Equal(t, 3, *set.MaxItems)

	dict, err := jsonschema.FromSchema(&skema.Schema{
		Type:   skema.TypeDict,
		Keys:   &skema.Schema{Type: skema.TypeStr, Pattern: "^[a-z]+$"},
		Values: typ(skema.TypeFloat),
	})
	require.NoError(t, err)
	require.NotNil(t, dict.PropertyNames)
	assert.Equal(t, "^[a-z]+$", dict.PropertyNames.Pattern)
	values, ok := dict.AdditionalProperties.(*jsonschema.Schema)
	require.True(t, ok)
	assert.Equal(t, "number", values.Type)

	b64, err := jsonschema.FromSchema(&skema.Schema{Type: skema.TypeBytes, BytesEncoding: skema.BytesBase64})
	require.NoError(t, err)
	assert.Equal(t, "base64", b64.ContentEncoding)
}

func TestUnions(t *testing.T) {
	s := &skema.Schema{Type: skema.TypeUnion, Choices: []skema.Choice{{Schema: typ(skema.TypeInt)}, {Schema: typ(skema.TypeStr)}}}
	out, err := jsonschema.FromSchema(s)
	require.NoError(t, err)
	require.Len(t, out.AnyOf, 2)
	assert.Empty(t, out.OneOf)

	tagged := &skema.Schema{
		Type:          skema.TypeTaggedUnion,
		Discriminator: "kind",
		Choices: []skema.Choice{
			{Label: "a", Schema: &skema.Schema{Type: skema.TypeModel, Name: "A"}},
			{Label: "b", Schema: &skema.Schema{Type: skema.TypeModel, Name: "B"}},
		},
	}
	out, err = jsonschema.FromSchema(tagged)
	require.NoError(t, err)
	require.Len(t, out.OneOf, 2)
	assert.Equal(t, "A", out.OneOf[0].Title)
}

func TestUnknownType(t *testing.T) {
	_, err := jsonschema.FromSchema(&skema.Schema{Type: "money"})
	require.Error(t, err)
	_, err = jsonschema.FromSchema(nil)
	require.Error(t, err)
}

func TestMarshal(t *testing.T) {
	out, err := jsonschema.FromSchema(&skema.Schema{Type: skema.TypeInt, GE: 1})
	require.NoError(t, err)
	b, err := jsonschema.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"$schema":"https://json-schema.org/draft/2020-12/schema","type":"integer","minimum":1}`, string(b))
}

package compiler_test

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/compiler"
	"github.com/reoring/skema/jsonschema"
)

func ptr[T any](v T) *T { return &v }

func typ(t skema.Type) *skema.Schema { return &skema.Schema{Type: t} }

func userSchema() *skema.Schema {
	return &skema.Schema{
		Type: skema.TypeModel,
		Name: "User",
		Fields: []skema.Field{
			{Name: "id", Schema: &skema.Schema{Type: skema.TypeInt, GT: 0}},
			{Name: "name", Schema: &skema.Schema{Type: skema.TypeStr, MinLength: ptr(1)}},
			{Name: "tags", Schema: &skema.Schema{Type: skema.TypeList, Items: typ(skema.TypeStr)}, Default: []any{}, HasDefault: true},
			{Name: "created", Schema: typ(skema.TypeDateTime)},
			{Name: "uid", Schema: typ(skema.TypeUUID)},
		},
	}
}

func userInput() map[string]any {
	return map[string]any{
		"id":      "7",
		"name":    "ann",
		"tags":    []any{"a", "b"},
		"created": "2024-01-02T03:04:05Z",
		"uid":     "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
	}
}

func TestCompile_Deterministic(t *testing.T) {
	a := compiler.MustCompile(userSchema())
	b := compiler.MustCompile(userSchema())
	ctx := context.Background()

	va, err := a.Validate(ctx, userInput())
	require.NoError(t, err)
	vb, err := b.Validate(ctx, userInput())
	require.NoError(t, err)
	assert.True(t, skema.Equal(va, vb))

	bad := map[string]any{"id": -1, "name": "", "created": "x"}
	_, errA := a.Validate(ctx, bad)
	_, errB := b.Validate(ctx, bad)
	issA, _ := skema.AsIssues(errA)
	issB, _ := skema.AsIssues(errB)
	if diff := cmp.Diff(issA, issB); diff != "" {
		t.Fatalf("issues differ (-a +b):\n%s", diff)
	}

	ja, err := a.JSONSchema()
	require.NoError(t, err)
	jb, err := b.JSONSchema()
	require.NoError(t, err)
	ma, _ := jsonschema.Marshal(ja)
	mb, _ := jsonschema.Marshal(jb)
	assert.Equal(t, string(ma), string(mb))
}

func TestRoundTrip_NativeOutputRevalidates(t *testing.T) {
	c := compiler.MustCompile(userSchema())
	ctx := context.Background()
	first, err := c.Validate(ctx, userInput())
	require.NoError(t, err)

	native, warns, err := c.Serialize(first)
	require.NoError(t, err)
	assert.Empty(t, warns)

	second, err := c.Validate(ctx, native, skema.ValidateOpt{Strict: skema.StrictOn})
	require.NoError(t, err)
	assert.True(t, skema.Equal(first, second), "%v != %v", first, second)
}

func TestRoundTrip_JSONOutputRevalidates(t *testing.T) {
	c := compiler.MustCompile(userSchema())
	ctx := context.Background()
	first, err := c.Validate(ctx, userInput())
	require.NoError(t, err)

	out, warns, err := c.SerializeJSON(first)
	require.NoError(t, err)
	// datetime and uuid have no JSON literal
	assert.Equal(t, []string{skema.CodeStringFallback, skema.CodeStringFallback}, warns.Codes())
	assert.Equal(t, `{"id":7,"name":"ann","tags":["a","b"],"created":"2024-01-02T03:04:05Z","uid":"6ba7b810-9dad-11d1-80b4-00c04fd430c8"}`, string(out))

	second, err := c.ValidateJSON(ctx, out, skema.ValidateOpt{Strict: skema.StrictOn})
	require.NoError(t, err)
	assert.True(t, skema.Equal(first, second))
}

func TestOneInvalidField(t *testing.T) {
	c := compiler.MustCompile(userSchema())
	in := userInput()
	in["name"] = ""
	_, err := c.Validate(context.Background(), in)
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeStringTooShort, iss[0].Code)
	assert.Equal(t, skema.ErrorKindValue, iss[0].Kind)
	assert.Equal(t, "/name", iss[0].Path())
}

func TestKInvalidElements(t *testing.T) {
	c := compiler.MustCompile(&skema.Schema{Type: skema.TypeList, Items: typ(skema.TypeInt)})
	_, err := c.Validate(context.Background(), []any{1, "x", 3, "y", 5, 6.5})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	var paths []string
	for _, it := range iss {
		paths = append(paths, it.Path())
	}
	assert.Equal(t, []string{"/1", "/3", "/5"}, paths)
	assert.Equal(t, []string{skema.CodeIntParsing, skema.CodeIntParsing, skema.CodeIntFromFloat}, iss.Codes())
}

func TestSmartUnion_PrefersIntForNumericString(t *testing.T) {
	c := compiler.MustCompile(&skema.Schema{Type: skema.TypeUnion, Choices: []skema.Choice{
		{Schema: typ(skema.TypeInt)},
		{Schema: typ(skema.TypeStr)},
	}})
	ctx := context.Background()
	v, err := c.Validate(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, skema.Int(5), v)

	v, err = c.Validate(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, skema.Str("abc"), v)
}

func petSchema() *skema.Schema {
	return &skema.Schema{
		Type:          skema.TypeTaggedUnion,
		Discriminator: "kind",
		Choices: []skema.Choice{
			{Label: "cat", Schema: &skema.Schema{Type: skema.TypeModel, Name: "Cat", Fields: []skema.Field{
				{Name: "kind", Schema: &skema.Schema{Type: skema.TypeLiteral, Expected: []any{"cat"}}},
				{Name: "lives", Schema: typ(skema.TypeInt)},
			}}},
			{Label: "dog", Schema: &skema.Schema{Type: skema.TypeModel, Name: "Dog", Fields: []skema.Field{
				{Name: "kind", Schema: &skema.Schema{Type: skema.TypeLiteral, Expected: []any{"dog"}}},
				{Name: "good", Schema: typ(skema.TypeBool)},
			}}},
		},
	}
}

func TestTaggedUnion_UnknownTag(t *testing.T) {
	c := compiler.MustCompile(petSchema())
	_, err := c.Validate(context.Background(), map[string]any{"kind": "bird"})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.ErrorKindUnionTag, iss[0].Kind)
	assert.Equal(t, skema.CodeUnionTagInvalid, iss[0].Code)
	assert.Equal(t, "bird", iss[0].Params["tag"])

	v, err := c.Validate(context.Background(), map[string]any{"kind": "dog", "good": "yes"})
	require.NoError(t, err)
	rec := v.(*skema.Record)
	assert.Equal(t, "Dog", rec.Name)
	good, _ := rec.Get("good")
	assert.Equal(t, skema.Bool(true), good)

	out, _, err := c.SerializeJSON(v)
	require.NoError(t, err)
	assert.Equal(t, `{"kind":"dog","good":true}`, string(out))
}

func nestedListSchema() *skema.Schema {
	return &skema.Schema{
		Type: skema.TypeDefinitions,
		Definitions: []*skema.Schema{{
			Ref:  "Nested",
			Type: skema.TypeList,
			Items: &skema.Schema{Type: skema.TypeUnion, Choices: []skema.Choice{
				{Schema: typ(skema.TypeInt)},
				{Schema: &skema.Schema{Type: skema.TypeRef, SchemaRef: "Nested"}},
			}},
		}},
		Inner: &skema.Schema{Type: skema.TypeRef, SchemaRef: "Nested"},
	}
}

func TestRecursiveList(t *testing.T) {
	c := compiler.MustCompile(nestedListSchema())
	assert.Equal(t, []string{"Nested"}, c.Definitions())

	v, err := c.Validate(context.Background(), []any{[]any{1, 2}, []any{3}})
	require.NoError(t, err)
	want := skema.List{skema.List{skema.Int(1), skema.Int(2)}, skema.List{skema.Int(3)}}
	if diff := cmp.Diff(skema.Value(want), v); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	out, _, err := c.SerializeJSON(v)
	require.NoError(t, err)
	assert.Equal(t, `[[1,2],[3]]`, string(out))

	js, err := c.JSONSchema()
	require.NoError(t, err)
	assert.Equal(t, "#/$defs/Nested", js.Ref)
	require.Contains(t, js.Defs, "Nested")
	assert.Equal(t, "array", js.Defs["Nested"].Type)
}

type treeNode struct {
	Name     string      `json:"name"`
	Children []*treeNode `json:"children"`
}

func treeSchema() *skema.Schema {
	return &skema.Schema{
		Ref:  "Tree",
		Type: skema.TypeModel,
		Name: "Tree",
		Fields: []skema.Field{
			{Name: "name", Schema: typ(skema.TypeStr)},
			{Name: "children", Schema: &skema.Schema{Type: skema.TypeList, Items: &skema.Schema{Type: skema.TypeRef, SchemaRef: "Tree"}}, Default: []any{}, HasDefault: true},
		},
	}
}

func TestSerialize_CyclicHostValueFails(t *testing.T) {
	c := compiler.MustCompile(treeSchema())
	root := &treeNode{Name: "root"}
	kid := &treeNode{Name: "kid", Children: []*treeNode{root}}
	root.Children = []*treeNode{kid}

	_, _, err := c.SerializeJSON(root)
	iss, ok := skema.AsIssues(err)
	require.True(t, ok, "want issues, got %v", err)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.ErrorKindCyclicReference, iss[0].Kind)
	assert.Equal(t, "/children/0/children/0", iss[0].Path())

	kid.Children = nil
	out, _, err := c.SerializeJSON(root)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"root","children":[{"name":"kid","children":[]}]}`, string(out))
}

func TestRecursiveModel_ValidatesDeepInput(t *testing.T) {
	c := compiler.MustCompile(treeSchema())
	in := map[string]any{"name": "a", "children": []any{
		map[string]any{"name": "b"},
		map[string]any{"name": "c", "children": []any{map[string]any{"name": 1}}},
	}}
	_, err := c.Validate(context.Background(), in)
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "/children/1/children/0/name", iss[0].Path())
	assert.Equal(t, skema.CodeStringType, iss[0].Code)
}

func TestBool_StrictAndLax(t *testing.T) {
	lax := compiler.MustCompile(typ(skema.TypeBool))
	v, err := lax.Validate(context.Background(), "true")
	require.NoError(t, err)
	assert.Equal(t, skema.Bool(true), v)

	strict := compiler.MustCompile(&skema.Schema{Type: skema.TypeBool, Strict: ptr(true)})
	_, err = strict.Validate(context.Background(), "true")
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{skema.CodeBoolType}, iss.Codes())

	// compile-wide strictness applies to nodes without their own setting
	global := compiler.MustCompile(typ(skema.TypeBool), skema.CompileOpt{Strict: true})
	_, err = global.Validate(context.Background(), "true")
	require.Error(t, err)
	v, err = global.Validate(context.Background(), "true", skema.ValidateOpt{Strict: skema.StrictOff})
	require.NoError(t, err)
	assert.Equal(t, skema.Bool(true), v)
}

func TestValidateJSON_KeepsBigIntegers(t *testing.T) {
	c := compiler.MustCompile(&skema.Schema{Type: skema.TypeDict, Values: typ(skema.TypeInt)})
	v, err := c.ValidateJSON(context.Background(), []byte(`{"n":123456789012345678901234567890}`))
	require.NoError(t, err)
	m := v.(*skema.Map)
	n, ok := m.Get(skema.Str("n"))
	require.True(t, ok)
	want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	b, ok := skema.BigOf(n)
	require.True(t, ok)
	assert.Equal(t, 0, want.Cmp(b))
}

func TestValidateJSON_StrictAcceptsWireStrings(t *testing.T) {
	c := compiler.MustCompile(&skema.Schema{Type: skema.TypeUUID, Strict: ptr(true)})
	ctx := context.Background()
	_, err := c.ValidateJSON(ctx, []byte(`"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`))
	require.NoError(t, err)
	_, err = c.Validate(ctx, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	require.Error(t, err)
}

func TestValidateJSON_DuplicateKeys(t *testing.T) {
	c := compiler.MustCompile(&skema.Schema{Type: skema.TypeDict, Values: typ(skema.TypeInt)})
	ctx := context.Background()
	doc := []byte(`{"a":1,"a":2}`)

	_, err := c.ValidateJSON(ctx, doc, skema.ValidateOpt{Strictness: skema.Strictness{OnDuplicateKey: skema.Error}})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, skema.CodeDuplicateKey, iss[0].Code)

	v, err := c.ValidateReader(ctx, strings.NewReader(string(doc)), skema.ValidateOpt{Strictness: skema.Strictness{OnDuplicateKey: skema.Warn}})
	require.NoError(t, err)
	a, _ := v.(*skema.Map).Get(skema.Str("a"))
	assert.Equal(t, skema.Int(2), a)
}

func TestValidateJSON_ParseError(t *testing.T) {
	c := compiler.MustCompile(typ(skema.TypeAny))
	_, err := c.ValidateJSON(context.Background(), []byte(`{"a":`))
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, skema.ErrorKindParse, iss[0].Kind)
}

func TestValidateAndSerialize(t *testing.T) {
	c := compiler.MustCompile(userSchema())
	out, _, err := c.ValidateAndSerialize(context.Background(), userInput(), skema.ValidateOpt{}, skema.SerializeOpt{Include: skema.Fields("id", "tags")})
	require.NoError(t, err)
	assert.Equal(t, `{"id":7,"tags":["a","b"]}`, string(out))

	_, _, err = c.ValidateAndSerialize(context.Background(), map[string]any{}, skema.ValidateOpt{}, skema.SerializeOpt{})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{skema.CodeMissing, skema.CodeMissing, skema.CodeMissing, skema.CodeMissing}, iss.Codes())
}

func TestSerializeYAML(t *testing.T) {
	c := compiler.MustCompile(petSchema())
	out, _, err := c.SerializeYAML(map[string]any{"kind": "cat", "lives": 9})
	require.NoError(t, err)
	assert.Equal(t, "kind: cat\nlives: 9\n", string(out))
}

func TestNumericBounds(t *testing.T) {
	c := compiler.MustCompile(&skema.Schema{Type: skema.TypeInt, GT: 0.5, LE: "10", MultipleOf: 2})
	ctx := context.Background()
	cases := []struct {
		in   any
		code string
	}{
		{0, skema.CodeGreaterThan},
		{12, skema.CodeLessThanEqual},
		{3, skema.CodeMultipleOf},
		{4, ""},
	}
	for _, tc := range cases {
		_, err := c.Validate(ctx, tc.in)
		if tc.code == "" {
			assert.NoError(t, err, "input %v", tc.in)
			continue
		}
		iss, ok := skema.AsIssues(err)
		require.True(t, ok, "input %v", tc.in)
		assert.Equal(t, []string{tc.code}, iss.Codes(), "input %v", tc.in)
	}
	_, err := c.Validate(ctx, 0)
	iss, _ := skema.AsIssues(err)
	assert.Equal(t, "0.5", iss[0].Params["gt"])
}

func TestTemporalBounds(t *testing.T) {
	c := compiler.MustCompile(&skema.Schema{Type: skema.TypeDate, GE: "2024-01-01"})
	_, err := c.Validate(context.Background(), "2023-12-31")
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, skema.CodeGreaterThanEqual, iss[0].Code)
	assert.Equal(t, "2024-01-01", iss[0].Params["ge"])
	_, err = c.Validate(context.Background(), "2024-01-01")
	require.NoError(t, err)
}

func TestCustomExpression(t *testing.T) {
	c := compiler.MustCompile(&skema.Schema{Type: skema.TypeCustom, Inner: typ(skema.TypeInt), Expr: "value % 2 == 0", ErrorMessage: "must be even"})
	ctx := context.Background()
	v, err := c.Validate(ctx, "4")
	require.NoError(t, err)
	assert.Equal(t, skema.Int(4), v)

	_, err = c.Validate(ctx, 3)
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, skema.CodeCustomError, iss[0].Code)
}

func TestEnumSubType(t *testing.T) {
	c := compiler.MustCompile(&skema.Schema{Type: skema.TypeEnum, SubType: skema.TypeInt, Expected: []any{1, 2, "3"}})
	ctx := context.Background()
	v, err := c.Validate(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, skema.Int(3), v)
	_, err = c.Validate(ctx, 4)
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{skema.CodeEnum}, iss.Codes())
}

func TestCompile_SchemaErrors(t *testing.T) {
	cases := []struct {
		name   string
		schema *skema.Schema
		path   string
		msg    string
	}{
		{"unknown type", typ("matrix"), "", "unknown type"},
		{"missing type", &skema.Schema{}, "", "missing type"},
		{"unknown ref", &skema.Schema{Type: skema.TypeList, Items: &skema.Schema{Type: skema.TypeRef, SchemaRef: "Nope"}}, "/items", "unknown definition"},
		{"duplicate ref", &skema.Schema{Type: skema.TypeTuple, PrefixItems: []*skema.Schema{
			{Ref: "A", Type: skema.TypeInt}, {Ref: "A", Type: skema.TypeStr},
		}}, "/prefix_items/1", "duplicate definition"},
		{"ref only to itself", &skema.Schema{Type: skema.TypeDefinitions,
			Definitions: []*skema.Schema{{Ref: "A", Type: skema.TypeRef, SchemaRef: "B"}, {Ref: "B", Type: skema.TypeRef, SchemaRef: "A"}},
			Inner:       &skema.Schema{Type: skema.TypeRef, SchemaRef: "A"}}, "/definitions/0", "refers only to itself"},
		{"definitions entry without name", &skema.Schema{Type: skema.TypeDefinitions, Definitions: []*skema.Schema{typ(skema.TypeInt)}, Inner: typ(skema.TypeInt)}, "/definitions/0", "ref name"},
		{"ge above le", &skema.Schema{Type: skema.TypeFloat, GE: 5, LE: 1}, "", "contradictory bounds"},
		{"gt equals lt", &skema.Schema{Type: skema.TypeInt, GT: 1, LT: 1}, "", "contradictory bounds"},
		{"bad bound", &skema.Schema{Type: skema.TypeInt, GT: "abc"}, "/gt", "invalid gt"},
		{"non-positive multiple_of", &skema.Schema{Type: skema.TypeInt, MultipleOf: 0}, "/multiple_of", "must be positive"},
		{"min_length above max_length", &skema.Schema{Type: skema.TypeStr, MinLength: ptr(3), MaxLength: ptr(2)}, "", "min_length"},
		{"negative length", &skema.Schema{Type: skema.TypeList, MinLength: ptr(-1)}, "", "negative"},
		{"bad regex", &skema.Schema{Type: skema.TypeStr, Pattern: "("}, "", "invalid pattern"},
		{"bad expression", &skema.Schema{Type: skema.TypeCustom, Expr: "value +"}, "", "invalid expression"},
		{"custom without check", typ(skema.TypeCustom), "", "expression or a function"},
		{"empty union", typ(skema.TypeUnion), "", "at least one choice"},
		{"choice without schema", &skema.Schema{Type: skema.TypeUnion, Choices: []skema.Choice{{}}}, "/choices/0", "no schema"},
		{"nullable without inner", typ(skema.TypeNullable), "", "inner schema"},
		{"tagged without discriminator", &skema.Schema{Type: skema.TypeTaggedUnion, Choices: []skema.Choice{{Label: "a", Schema: typ(skema.TypeAny)}}}, "", "discriminator"},
		{"tagged duplicate label", &skema.Schema{Type: skema.TypeTaggedUnion, Discriminator: "t", Choices: []skema.Choice{
			{Label: "a", Schema: typ(skema.TypeAny)}, {Label: "a", Schema: typ(skema.TypeAny)},
		}}, "/choices/1", "duplicate tag"},
		{"field without schema", &skema.Schema{Type: skema.TypeModel, Fields: []skema.Field{{Name: "x"}}}, "/fields/x", "no schema"},
		{"duplicate field", &skema.Schema{Type: skema.TypeModel, Fields: []skema.Field{{Name: "x", Schema: typ(skema.TypeAny)}, {Name: "x", Schema: typ(skema.TypeAny)}}}, "/fields/x", "duplicate field"},
		{"extras schema without allow", &skema.Schema{Type: skema.TypeModel, ExtrasSchema: typ(skema.TypeInt)}, "", "extras_schema"},
		{"empty literal", typ(skema.TypeLiteral), "", "at least one expected value"},
		{"enum member of wrong sub type", &skema.Schema{Type: skema.TypeEnum, SubType: skema.TypeInt, Expected: []any{"x"}}, "/expected/0", "not a valid int"},
		{"decimal places above digits", &skema.Schema{Type: skema.TypeDecimal, MaxDigits: ptr(2), DecimalPlaces: ptr(3)}, "", "decimal_places"},
		{"unknown bytes encoding", &skema.Schema{Type: skema.TypeBytes, BytesEncoding: "rot13"}, "", "bytes encoding"},
		{"unknown union mode", &skema.Schema{Type: skema.TypeUnion, Mode: "random", Choices: []skema.Choice{{Schema: typ(skema.TypeAny)}}}, "", "union mode"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compiler.Compile(tc.schema)
			se, ok := skema.AsSchemaError(err)
			require.True(t, ok, "want SchemaError, got %v", err)
			assert.Equal(t, tc.path, se.Path)
			assert.Contains(t, se.Message, tc.msg)
		})
	}
}

func TestCompile_DepthLimit(t *testing.T) {
	s := typ(skema.TypeInt)
	for i := 0; i < 10; i++ {
		s = &skema.Schema{Type: skema.TypeList, Items: s}
	}
	_, err := compiler.Compile(s, skema.CompileOpt{MaxDepth: 5})
	se, ok := skema.AsSchemaError(err)
	require.True(t, ok)
	assert.Contains(t, se.Message, "nesting")
	assert.Equal(t, "/items/items/items/items/items/items", se.Path)

	_, err = compiler.Compile(s)
	require.NoError(t, err)
}

func TestCompile_DoesNotMutateSchema(t *testing.T) {
	s := userSchema()
	before := userSchema()
	compiler.MustCompile(s)
	if diff := cmp.Diff(before, s); diff != "" {
		t.Fatalf("schema mutated (-before +after):\n%s", diff)
	}
}

func TestConcurrentUse(t *testing.T) {
	c := compiler.MustCompile(nestedListSchema())
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Validate(context.Background(), []any{[]any{1}, 2, []any{[]any{3}}})
			if err != nil {
				errs <- err
				return
			}
			if _, _, err := c.SerializeJSON(v); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestValidateJSON_RefusesOversizedIntegers(t *testing.T) {
	c := compiler.MustCompile(typ(skema.TypeInt))
	ctx := context.Background()
	for _, doc := range []string{`1e100000000`, `1e5000`, strings.Repeat("9", skema.MaxIntDigits+1)} {
		_, err := c.ValidateJSON(ctx, []byte(doc))
		iss, ok := skema.AsIssues(err)
		require.True(t, ok, "doc %.20s", doc)
		assert.Equal(t, []string{skema.CodeIntParsingSize}, iss.Codes(), "doc %.20s", doc)
		assert.Equal(t, skema.ErrorKindValue, iss[0].Kind)
	}
	_, err := c.Validate(ctx, strings.Repeat("9", skema.MaxIntDigits+1))
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{skema.CodeIntParsingSize}, iss.Codes())

	v, err := c.ValidateJSON(ctx, []byte(`1e3`))
	require.NoError(t, err)
	assert.Equal(t, skema.Int(1000), v)
}

func TestDecimalBounds_HugeExponents(t *testing.T) {
	c := compiler.MustCompile(&skema.Schema{Type: skema.TypeDecimal, LT: 10, MultipleOf: "0.5"})
	ctx := context.Background()
	cases := []struct {
		in   any
		json bool
		code string
	}{
		{"1e100000000", false, skema.CodeDecimalParsing},
		{"1e100000000", true, skema.CodeDecimalParsing},
		{"1e-100000000", false, skema.CodeDecimalParsing},
		{"1e6000", false, skema.CodeLessThan},
		{"1.25", false, skema.CodeMultipleOf},
		{"9.5", false, ""},
	}
	for _, tc := range cases {
		var err error
		if tc.json {
			_, err = c.ValidateJSON(ctx, []byte(tc.in.(string)))
		} else {
			_, err = c.Validate(ctx, tc.in)
		}
		if tc.code == "" {
			assert.NoError(t, err, "input %v", tc.in)
			continue
		}
		iss, ok := skema.AsIssues(err)
		require.True(t, ok, "input %v", tc.in)
		assert.Equal(t, []string{tc.code}, iss.Codes(), "input %v", tc.in)
	}
}

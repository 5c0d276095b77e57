package validator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/rules"
	"github.com/reoring/skema/validator"
)

func loc(items ...skema.LocItem) skema.Location { return skema.Location(items) }

func TestList_EveryInvalidMemberReported(t *testing.T) {
	v := &validator.List{Items: &validator.Int{}}
	_, iss := v.Validate([]any{1, "x", 2, "y"}, newState())
	require.Len(t, iss, 2)
	assert.True(t, iss[0].Loc.Equal(loc(skema.Index(1))), iss[0].Loc.String())
	assert.True(t, iss[1].Loc.Equal(loc(skema.Index(3))), iss[1].Loc.String())

	_, iss = v.Validate([]any{1, "x", 2, "y"}, newState(skema.ValidateOpt{FailFast: true}))
	require.Len(t, iss, 1)
}

func TestList_LengthAndKind(t *testing.T) {
	v := &validator.List{Items: &validator.Int{}, Length: validator.Length{Max: intp(2)}}
	_, iss := v.Validate([]int{1, 2, 3}, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeTooLong, iss[0].Code)
	assert.Equal(t, "List", iss[0].Params["field_type"])

	strict := &validator.List{Strict: true}
	_, iss = strict.Validate([2]int{1, 2}, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeListType, iss[0].Code)

	got, iss := v.Validate([2]int{1, 2}, newState())
	require.Nil(t, iss)
	assert.Equal(t, skema.List{skema.Int(1), skema.Int(2)}, got)
}

func TestTuple_Positional(t *testing.T) {
	v := &validator.Tuple{Prefix: []validator.Validator{&validator.Int{}, &validator.Str{}}}
	_, iss := v.Validate([]any{1}, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeMissing, iss[0].Code)
	assert.True(t, iss[0].Loc.Equal(loc(skema.Index(1))))

	_, iss = v.Validate([]any{1, "a", true}, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeTooLong, iss[0].Code)

	variadic := &validator.Tuple{Prefix: []validator.Validator{&validator.Str{}}, Items: &validator.Int{}}
	got, iss := variadic.Validate([]any{"a", 1, "2"}, newState())
	require.Nil(t, iss)
	assert.Equal(t, skema.Tuple{skema.Str("a"), skema.Int(1), skema.Int(2)}, got)
}

func TestSet_Duplicates(t *testing.T) {
	v := &validator.Set{Items: &validator.Int{}}
	got, iss := v.Validate([]any{1, 2, 1}, newState())
	require.Nil(t, iss)
	assert.Equal(t, 2, got.(*skema.Set).Len())

	forbid := &validator.Set{Items: &validator.Int{}, Duplicates: skema.DuplicatesForbid}
	_, iss = forbid.Validate([]any{1, 2, 1}, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeSetDuplicate, iss[0].Code)
	assert.True(t, iss[0].Loc.Equal(loc(skema.Index(2))))

	strict := &validator.Set{Strict: true}
	_, iss = strict.Validate([]any{1}, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeSetType, iss[0].Code)

	st := newState()
	st.JSON = true
	_, iss = strict.Validate([]any{1}, st)
	require.Nil(t, iss)
}

func TestDict_KeyIssueLocation(t *testing.T) {
	v := &validator.Dict{Keys: &validator.Int{}, Values: &validator.Str{}}
	_, iss := v.Validate(map[string]any{"1": "a", "x": "b"}, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeIntParsing, iss[0].Code)
	assert.True(t, iss[0].Loc.Equal(loc(skema.Key("x"), skema.Key("[key]"))), iss[0].Loc.String())

	got, iss := v.Validate(map[string]any{"1": "a"}, newState())
	require.Nil(t, iss)
	val, ok := got.(*skema.Map).Get(skema.Int(1))
	require.True(t, ok)
	assert.Equal(t, skema.Str("a"), val)
}

func TestDict_JSONKeysCoercedUnderStrictCall(t *testing.T) {
	v := &validator.Dict{Keys: &validator.Int{}, Values: &validator.Int{}}
	st := newState(skema.ValidateOpt{Strict: skema.StrictOn})
	st.JSON = true
	doc, err := skema.ParseJSON([]byte(`{"1": 2}`))
	require.NoError(t, err)
	_, iss := v.Validate(doc, st)
	require.Nil(t, iss)
	assert.Equal(t, validator.ExactnessExact, st.Exactness())
}

func personRecord(extra skema.ExtraBehavior) *validator.Record {
	return validator.NewRecord("Person", []validator.RecordField{
		{Name: "name", Validator: &validator.Str{}, Required: true},
		{Name: "age", Validator: &validator.Int{}, Default: skema.Int(0), HasDefault: true},
	}, extra, nil, false)
}

func TestRecord_DefaultsAndPresence(t *testing.T) {
	got, iss := personRecord(skema.ExtraIgnore).Validate(map[string]any{"name": "Ann", "zzz": 1}, newState())
	require.Nil(t, iss)
	rec := got.(*skema.Record)
	age, ok := rec.Get("age")
	require.True(t, ok)
	assert.Equal(t, skema.Int(0), age)
	assert.True(t, rec.Presence("age").Has(skema.PresenceDefaultApplied))
	assert.True(t, rec.Presence("name").Has(skema.PresenceSeen))
	assert.Equal(t, []string{"name"}, rec.FieldsSet())
	assert.Nil(t, rec.Extra)
}

func TestRecord_MissingAndInvalid(t *testing.T) {
	r := personRecord(skema.ExtraIgnore)
	_, iss := r.Validate(map[string]any{}, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeMissing, iss[0].Code)
	assert.Equal(t, skema.ErrorKindMissing, iss[0].Kind)
	assert.True(t, iss[0].Loc.Equal(loc(skema.FieldLoc("name"))))

	_, iss = r.Validate(map[string]any{"name": "Ann", "age": "old"}, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeIntParsing, iss[0].Code)
	assert.True(t, iss[0].Loc.Equal(loc(skema.FieldLoc("age"))))

	_, iss = r.Validate("Ann", newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeModelType, iss[0].Code)
	assert.Equal(t, "Person", iss[0].Params["class_name"])
}

func TestRecord_Extras(t *testing.T) {
	_, iss := personRecord(skema.ExtraForbid).Validate(map[string]any{"name": "Ann", "zzz": 1}, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeExtraForbidden, iss[0].Code)
	assert.True(t, iss[0].Loc.Equal(loc(skema.FieldLoc("zzz"))))

	got, iss := personRecord(skema.ExtraAllow).Validate(map[string]any{"name": "Ann", "zzz": 1}, newState())
	require.Nil(t, iss)
	extra := got.(*skema.Record).Extra
	require.NotNil(t, extra)
	val, ok := extra.Get(skema.Str("zzz"))
	require.True(t, ok)
	assert.Equal(t, skema.Int(1), val)
}

func TestRecord_Alias(t *testing.T) {
	fields := []validator.RecordField{{Name: "full_name", Alias: "fullName", Validator: &validator.Str{}, Required: true}}

	byAlias := validator.NewRecord("User", fields, skema.ExtraForbid, nil, false)
	got, iss := byAlias.Validate(map[string]any{"fullName": "Ann"}, newState())
	require.Nil(t, iss)
	name, _ := got.(*skema.Record).Get("full_name")
	assert.Equal(t, skema.Str("Ann"), name)

	_, iss = byAlias.Validate(map[string]any{"full_name": "Ann"}, newState())
	assert.ElementsMatch(t, []string{skema.CodeMissing, skema.CodeExtraForbidden}, iss.Codes())

	either := validator.NewRecord("User", fields, skema.ExtraForbid, nil, true)
	_, iss = either.Validate(map[string]any{"full_name": "Ann"}, newState())
	require.Nil(t, iss)
}

func intOrStr() *validator.Union {
	return &validator.Union{Choices: []validator.Choice{
		{Label: "int", Validator: &validator.Int{}},
		{Label: "str", Validator: &validator.Str{}},
	}}
}

func TestUnion_SmartPrefersExactness(t *testing.T) {
	u := intOrStr()
	cases := []struct {
		in   any
		want skema.Value
	}{
		{5, skema.Int(5)},
		{"5", skema.Int(5)},
		{"abc", skema.Str("abc")},
	}
	for _, tc := range cases {
		got, iss := u.Validate(tc.in, newState())
		require.Nil(t, iss, "%v", tc.in)
		assert.Equal(t, tc.want, got, "%v", tc.in)
	}

	reversed := &validator.Union{Choices: []validator.Choice{u.Choices[1], u.Choices[0]}}
	got, iss := reversed.Validate(5, newState())
	require.Nil(t, iss)
	assert.Equal(t, skema.Int(5), got)
}

func TestUnion_StrictCallSkipsLaxPass(t *testing.T) {
	u := &validator.Union{Choices: []validator.Choice{{Label: "int", Validator: &validator.Int{}}}}
	_, iss := u.Validate("5", newState(skema.ValidateOpt{Strict: skema.StrictOn}))
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeIntType, iss[0].Code)
	assert.True(t, iss[0].Loc.Equal(loc(skema.Branch("int"))))

	u.Strict = true
	_, iss = u.Validate("5", newState())
	require.Len(t, iss, 1)
}

func TestUnion_MostFieldsSetWins(t *testing.T) {
	small := validator.NewRecord("Small", []validator.RecordField{
		{Name: "a", Validator: &validator.Int{}, Required: true},
	}, skema.ExtraIgnore, nil, false)
	big := validator.NewRecord("Big", []validator.RecordField{
		{Name: "a", Validator: &validator.Int{}, Required: true},
		{Name: "b", Validator: &validator.Int{}},
	}, skema.ExtraIgnore, nil, false)
	u := &validator.Union{Choices: []validator.Choice{
		{Label: "small", Validator: small},
		{Label: "big", Validator: big},
	}}
	got, iss := u.Validate(map[string]any{"a": 1, "b": 2}, newState())
	require.Nil(t, iss)
	assert.Equal(t, "Big", got.(*skema.Record).Name)

	got, iss = u.Validate(map[string]any{"a": 1}, newState())
	require.Nil(t, iss)
	assert.Equal(t, "Small", got.(*skema.Record).Name)
}

func TestUnion_LeftToRight(t *testing.T) {
	u := &validator.Union{Mode: skema.UnionLeftToRight, Choices: []validator.Choice{
		{Label: "str", Validator: &validator.Str{}},
		{Label: "int", Validator: &validator.Int{}},
	}}
	got, iss := u.Validate("5", newState())
	require.Nil(t, iss)
	assert.Equal(t, skema.Str("5"), got)

	got, iss = u.Validate(5, newState())
	require.Nil(t, iss)
	assert.Equal(t, skema.Int(5), got)
}

func TestUnion_FailureCollectsBranches(t *testing.T) {
	u := &validator.Union{Choices: []validator.Choice{
		{Validator: &validator.Int{}},
		{Validator: &validator.Bool{}},
	}}
	_, iss := u.Validate("x", newState())
	require.Len(t, iss, 2)
	assert.Equal(t, []string{skema.CodeIntParsing, skema.CodeBoolParsing}, iss.Codes())
	assert.True(t, iss[0].Loc.Equal(loc(skema.Branch("0"))))
	assert.True(t, iss[1].Loc.Equal(loc(skema.Branch("1"))))

	u.Custom = &validator.CustomError{Type: "int_or_bool", Message: "need {what}", Context: map[string]any{"what": "int or bool"}}
	_, iss = u.Validate("x", newState())
	require.Len(t, iss, 1)
	assert.Equal(t, "int_or_bool", iss[0].Code)
	assert.Equal(t, "need int or bool", iss[0].Message)
	assert.Empty(t, iss[0].Loc)
}

func petUnion() *validator.Tagged {
	cat := validator.NewRecord("Cat", []validator.RecordField{
		{Name: "type", Validator: &validator.Literal{Expected: []skema.Value{skema.Str("cat")}}, Required: true},
		{Name: "lives", Validator: &validator.Int{}, Required: true},
	}, skema.ExtraIgnore, nil, false)
	dog := validator.NewRecord("Dog", []validator.RecordField{
		{Name: "type", Validator: &validator.Literal{Expected: []skema.Value{skema.Str("dog")}}, Required: true},
		{Name: "bark", Validator: &validator.Bool{}},
	}, skema.ExtraIgnore, nil, false)
	return validator.NewTagged([]any{"type"}, []validator.Choice{
		{Label: "cat", Validator: cat},
		{Label: "dog", Validator: dog},
	}, nil)
}

func TestTagged_Dispatch(t *testing.T) {
	u := petUnion()
	got, iss := u.Validate(map[string]any{"type": "dog", "bark": "yes"}, newState())
	require.Nil(t, iss)
	assert.Equal(t, "Dog", got.(*skema.Record).Name)

	_, iss = u.Validate(map[string]any{"type": "cat", "lives": "many"}, newState())
	require.Len(t, iss, 1)
	assert.True(t, iss[0].Loc.Equal(loc(skema.Branch("cat"), skema.FieldLoc("lives"))), iss[0].Loc.String())
}

func TestTagged_TagErrors(t *testing.T) {
	u := petUnion()
	_, iss := u.Validate(map[string]any{"type": "bird"}, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeUnionTagInvalid, iss[0].Code)
	assert.Equal(t, skema.ErrorKindUnionTag, iss[0].Kind)
	assert.Equal(t, "'cat', 'dog'", iss[0].Params["expected_tags"])
	assert.Equal(t, "bird", iss[0].Params["tag"])

	_, iss = u.Validate(map[string]any{"lives": 1}, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeUnionTagMissing, iss[0].Code)

	_, iss = u.Validate(5, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeTaggedUnionType, iss[0].Code)
	assert.Equal(t, skema.ErrorKindType, iss[0].Kind)
}

func TestRef_Recursive(t *testing.T) {
	defs := validator.NewDefinitions()
	require.True(t, defs.Reserve("Tree"))
	require.False(t, defs.Reserve("Tree"))
	tree := &validator.List{Items: &validator.Union{Choices: []validator.Choice{
		{Label: "int", Validator: &validator.Int{}},
		{Label: "Tree", Validator: validator.NewRef("Tree", defs)},
	}}}
	assert.Equal(t, []string{"Tree"}, defs.Unfilled())
	defs.Fill("Tree", tree)
	assert.Empty(t, defs.Unfilled())

	got, iss := validator.NewRef("Tree", defs).Validate([]any{[]any{1, 2}, []any{3}}, newState())
	require.Nil(t, iss)
	want := skema.List{
		skema.List{skema.Int(1), skema.Int(2)},
		skema.List{skema.Int(3)},
	}
	assert.Equal(t, want, got)
}

func TestRef_Unresolved(t *testing.T) {
	defs := validator.NewDefinitions()
	defs.Reserve("Missing")
	_, iss := validator.NewRef("Missing", defs).Validate(1, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.ErrorKindSchema, iss[0].Kind)
}

func TestDepthLimit(t *testing.T) {
	v := &validator.List{Items: &validator.List{Items: &validator.List{}}}
	_, iss := v.Validate([]any{[]any{[]any{1}}}, newState(skema.ValidateOpt{MaxDepth: 2}))
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeRecursionLimit, iss[0].Code)
	assert.Equal(t, skema.ErrorKindRecursionLimit, iss[0].Kind)
	assert.True(t, iss[0].Loc.Equal(loc(skema.Index(0), skema.Index(0))))

	_, iss = v.Validate([]any{[]any{[]any{1}}}, newState())
	require.Nil(t, iss)
}

func TestCustom_Rule(t *testing.T) {
	v := &validator.Custom{Inner: &validator.Int{}, Rule: rules.MustCompile("value > 10")}
	_, iss := v.Validate(5, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeRuleFailed, iss[0].Code)
	assert.Equal(t, "value > 10", iss[0].Params["rule"])

	got, iss := v.Validate("11", newState())
	require.Nil(t, iss)
	assert.Equal(t, skema.Int(11), got)

	v.Message = "too small"
	_, iss = v.Validate(5, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeCustomError, iss[0].Code)
}

func TestCustom_Func(t *testing.T) {
	v := &validator.Custom{
		Inner: &validator.Str{},
		Func: func(_ context.Context, val skema.Value) (skema.Value, error) {
			if val == skema.Str("") {
				return nil, errors.New("empty")
			}
			return skema.Str("<" + string(val.(skema.Str)) + ">"), nil
		},
	}
	got, iss := v.Validate("a", newState())
	require.Nil(t, iss)
	assert.Equal(t, skema.Str("<a>"), got)

	_, iss = v.Validate("", newState())
	require.Len(t, iss, 1)
	assert.Equal(t, "empty", iss[0].Params["message"])
}

func TestJSON_DecodesInJSONMode(t *testing.T) {
	inner := validator.NewRecord("Event", []validator.RecordField{
		{Name: "at", Validator: &validator.DateTime{Strict: true}, Required: true},
	}, skema.ExtraForbid, nil, false)
	v := &validator.JSON{Inner: inner}

	st := newState()
	got, iss := v.Validate(`{"at": "2024-01-02T03:04:05Z"}`, st)
	require.Nil(t, iss)
	assert.False(t, st.JSON)
	at, _ := got.(*skema.Record).Get("at")
	assert.Equal(t, 2024, at.(skema.DateTime).Year())

	_, iss = v.Validate(`{"at": `, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeJSONInvalid, iss[0].Code)

	_, iss = v.Validate(5, newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeJSONType, iss[0].Code)
}

func TestAny_InfersValue(t *testing.T) {
	got, iss := validator.Any{}.Validate(map[string]any{"a": []any{1, "x"}}, newState())
	require.Nil(t, iss)
	m := got.(*skema.Map)
	val, ok := m.Get(skema.Str("a"))
	require.True(t, ok)
	assert.Equal(t, skema.List{skema.Int(1), skema.Str("x")}, val)

	_, iss = validator.Any{}.Validate(make(chan int), newState())
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeUnsupportedType, iss[0].Code)
}

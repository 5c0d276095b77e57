// Package compiler turns a declarative *skema.Schema into an executable
// validator tree and the serializer tree that mirrors it.
//
// Compilation runs in two passes. The first walks the whole schema and
// reserves a registry slot for every named definition; the second builds
// nodes bottom-up and fills the slots. Reference nodes point at slots rather
// than at compiled nodes, so self- and mutually-recursive schemas terminate.
package compiler

import (
	"context"
	"regexp"
	"strconv"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/rules"
	"github.com/reoring/skema/serializer"
	"github.com/reoring/skema/validator"
)

// Compile validates the configuration of s and builds its trees. Every
// configuration problem is reported as a *skema.SchemaError carrying the
// path of the offending node.
func Compile(s *skema.Schema, opts ...skema.CompileOpt) (*Compiled, error) {
	if s == nil {
		return nil, skema.SchemaErrorf("", "nil schema")
	}
	var opt skema.CompileOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	maxDepth := opt.MaxDepth
	if maxDepth <= 0 {
		maxDepth = skema.DefaultSchemaDepth
	}
	c := &compiler{
		opt:      opt,
		maxDepth: maxDepth,
		vdefs:    validator.NewDefinitions(),
		sdefs:    serializer.NewDefinitions(),
		named:    map[string]*skema.Schema{},
	}
	if err := c.collect(s, "", 0); err != nil {
		return nil, err
	}
	if err := c.checkRefs(s, "", 0); err != nil {
		return nil, err
	}
	v, ser, err := c.node(s, "", 0)
	if err != nil {
		return nil, err
	}
	if missing := c.vdefs.Unfilled(); len(missing) > 0 {
		return nil, skema.SchemaErrorf("", "definition %q was reserved but never compiled", missing[0])
	}
	return &Compiled{
		schema:    s,
		validator: v,
		ser:       ser,
		vdefs:     c.vdefs,
		sdefs:     c.sdefs,
	}, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(s *skema.Schema, opts ...skema.CompileOpt) *Compiled {
	c, err := Compile(s, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

type compiler struct {
	opt      skema.CompileOpt
	maxDepth int
	vdefs    *validator.Definitions
	sdefs    *serializer.Definitions
	// named maps definition names to their schema nodes.
	named map[string]*skema.Schema
}

// children lists the sub-schemas of s with their path segments, in
// declaration order.
func children(s *skema.Schema) []child {
	var out []child
	add := func(seg string, sub *skema.Schema) {
		if sub != nil {
			out = append(out, child{seg: seg, s: sub})
		}
	}
	add("items", s.Items)
	for i, p := range s.PrefixItems {
		add("prefix_items/"+strconv.Itoa(i), p)
	}
	add("keys", s.Keys)
	add("values", s.Values)
	for _, f := range s.Fields {
		add("fields/"+f.Name, f.Schema)
	}
	add("extras_schema", s.ExtrasSchema)
	for i, ch := range s.Choices {
		add("choices/"+strconv.Itoa(i), ch.Schema)
	}
	for i, d := range s.Definitions {
		add("definitions/"+strconv.Itoa(i), d)
	}
	add("inner", s.Inner)
	return out
}

type child struct {
	seg string
	s   *skema.Schema
}

// collect is the first pass: it reserves a slot per definition name and
// bounds the nesting of the schema tree.
func (c *compiler) collect(s *skema.Schema, path string, depth int) error {
	if depth > c.maxDepth {
		return skema.SchemaErrorf(path, "schema nesting exceeds %d levels", c.maxDepth)
	}
	if s.Type == skema.TypeDefinitions {
		for i, d := range s.Definitions {
			if d == nil || d.Ref == "" {
				return skema.SchemaErrorf(path+"/definitions/"+strconv.Itoa(i), "definitions entry needs a ref name")
			}
		}
	}
	if s.Ref != "" {
		if !c.vdefs.Reserve(s.Ref) {
			return skema.SchemaErrorf(path, "duplicate definition %q", s.Ref)
		}
		c.sdefs.Reserve(s.Ref)
		c.named[s.Ref] = s
	}
	for _, ch := range children(s) {
		if err := c.collect(ch.s, path+"/"+ch.seg, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// checkRefs rejects references to unknown names and definitions that only
// ever refer to themselves through other references.
func (c *compiler) checkRefs(s *skema.Schema, path string, depth int) error {
	if s.Type == skema.TypeRef {
		if s.SchemaRef == "" {
			return skema.SchemaErrorf(path, "definition-ref needs a schema_ref")
		}
		if !c.vdefs.Reserved(s.SchemaRef) {
			return skema.SchemaErrorf(path, "unknown definition %q", s.SchemaRef)
		}
		seen := map[string]bool{}
		for cur := s; cur != nil && cur.Type == skema.TypeRef; cur = c.named[cur.SchemaRef] {
			if seen[cur.SchemaRef] {
				return skema.SchemaErrorf(path, "definition %q refers only to itself", s.SchemaRef)
			}
			seen[cur.SchemaRef] = true
		}
	}
	for _, ch := range children(s) {
		if err := c.checkRefs(ch.s, path+"/"+ch.seg, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// node is the second pass. A named node fills its registry slots with the
// nodes it compiles to.
func (c *compiler) node(s *skema.Schema, path string, depth int) (validator.Validator, serializer.Serializer, error) {
	v, ser, err := c.build(s, path, depth)
	if err != nil {
		return nil, nil, err
	}
	if s.Ref != "" {
		c.vdefs.Fill(s.Ref, v)
		c.sdefs.Fill(s.Ref, ser)
	}
	return v, ser, nil
}

func (c *compiler) sub(s *skema.Schema, path, seg string, depth int) (validator.Validator, serializer.Serializer, error) {
	return c.node(s, path+"/"+seg, depth+1)
}

// optional compiles s when present and yields nil nodes otherwise.
func (c *compiler) optional(s *skema.Schema, path, seg string, depth int) (validator.Validator, serializer.Serializer, error) {
	if s == nil {
		return nil, nil, nil
	}
	return c.sub(s, path, seg, depth)
}

func (c *compiler) strict(s *skema.Schema) bool {
	if s.Strict != nil {
		return *s.Strict
	}
	return c.opt.Strict
}

func (c *compiler) build(s *skema.Schema, path string, depth int) (validator.Validator, serializer.Serializer, error) {
	strict := c.strict(s)
	switch s.Type {
	case skema.TypeAny:
		return validator.Any{}, serializer.Any{}, nil
	case skema.TypeNone:
		return validator.None{}, serializer.None{}, nil
	case skema.TypeBool:
		return &validator.Bool{Strict: strict}, scalar(skema.KindBool), nil
	case skema.TypeInt, skema.TypeFloat, skema.TypeDecimal:
		return c.number(s, path, strict)
	case skema.TypeStr:
		return c.str(s, path, strict)
	case skema.TypeBytes:
		return c.bytes(s, path, strict)
	case skema.TypeDate, skema.TypeTime, skema.TypeDateTime, skema.TypeTimedelta:
		return c.temporal(s, path, strict)
	case skema.TypeUUID:
		switch s.UUIDVersion {
		case 0, 1, 3, 4, 5, 6, 7, 8:
		default:
			return nil, nil, skema.SchemaErrorf(path, "unsupported uuid version %d", s.UUIDVersion)
		}
		return &validator.UUID{Strict: strict, Version: s.UUIDVersion}, scalar(skema.KindUUID), nil
	case skema.TypeURL:
		if err := checkLength(s, path); err != nil {
			return nil, nil, err
		}
		return &validator.URL{
			Strict:         strict,
			MaxLength:      s.MaxLength,
			AllowedSchemes: s.AllowedSchemes,
			HostRequired:   s.HostRequired,
		}, scalar(skema.KindURL), nil
	case skema.TypeLiteral:
		return c.literal(s, path, strict)
	case skema.TypeEnum:
		return c.enum(s, path, strict)
	case skema.TypeList, skema.TypeSet, skema.TypeFrozenSet:
		return c.list(s, path, depth, strict)
	case skema.TypeTuple:
		return c.tuple(s, path, depth, strict)
	case skema.TypeDict:
		return c.dict(s, path, depth, strict)
	case skema.TypeModel:
		return c.model(s, path, depth)
	case skema.TypeUnion:
		return c.union(s, path, depth)
	case skema.TypeTaggedUnion:
		return c.tagged(s, path, depth)
	case skema.TypeNullable:
		if s.Inner == nil {
			return nil, nil, skema.SchemaErrorf(path, "nullable needs an inner schema")
		}
		iv, is, err := c.sub(s.Inner, path, "inner", depth)
		if err != nil {
			return nil, nil, err
		}
		return &validator.Nullable{Inner: iv}, &serializer.Nullable{Inner: is}, nil
	case skema.TypeDefinitions:
		for i, d := range s.Definitions {
			if _, _, err := c.sub(d, path, "definitions/"+strconv.Itoa(i), depth); err != nil {
				return nil, nil, err
			}
		}
		if s.Inner == nil {
			return nil, nil, skema.SchemaErrorf(path, "definitions needs an inner schema")
		}
		return c.sub(s.Inner, path, "inner", depth)
	case skema.TypeRef:
		return validator.NewRef(s.SchemaRef, c.vdefs), serializer.NewRef(s.SchemaRef, c.sdefs), nil
	case skema.TypeCustom:
		return c.custom(s, path, depth)
	case skema.TypeJSON:
		iv, is, err := c.optional(s.Inner, path, "inner", depth)
		if err != nil {
			return nil, nil, err
		}
		return &validator.JSON{Inner: iv}, &serializer.Wrap{Inner: is}, nil
	case "":
		return nil, nil, skema.SchemaErrorf(path, "missing type")
	}
	return nil, nil, skema.SchemaErrorf(path, "unknown type %q", s.Type)
}

func scalar(k skema.ValueKind) *serializer.Scalar { return &serializer.Scalar{Kind: k} }

func (c *compiler) str(s *skema.Schema, path string, strict bool) (validator.Validator, serializer.Serializer, error) {
	if err := checkLength(s, path); err != nil {
		return nil, nil, err
	}
	if s.ToLower && s.ToUpper {
		return nil, nil, skema.SchemaErrorf(path, "to_lower and to_upper are mutually exclusive")
	}
	v := &validator.Str{
		Strict:        strict,
		Strip:         s.StripWhitespace,
		Lower:         s.ToLower,
		Upper:         s.ToUpper,
		CoerceNumbers: s.CoerceNumbersToStr,
		Length:        validator.Length{Min: s.MinLength, Max: s.MaxLength},
	}
	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, nil, skema.SchemaErrorf(path, "invalid pattern %q: %v", s.Pattern, err)
		}
		v.Pattern = re
	}
	return v, scalar(skema.KindStr), nil
}

func (c *compiler) bytes(s *skema.Schema, path string, strict bool) (validator.Validator, serializer.Serializer, error) {
	if err := checkLength(s, path); err != nil {
		return nil, nil, err
	}
	enc := s.BytesEncoding
	switch enc {
	case "":
		enc = skema.BytesUTF8
	case skema.BytesUTF8, skema.BytesBase64, skema.BytesHex:
	default:
		return nil, nil, skema.SchemaErrorf(path, "unknown bytes encoding %q", enc)
	}
	v := &validator.Bytes{Strict: strict, Encoding: enc, Length: validator.Length{Min: s.MinLength, Max: s.MaxLength}}
	return v, &serializer.Scalar{Kind: skema.KindBytes, Encoding: enc}, nil
}

func (c *compiler) literal(s *skema.Schema, path string, strict bool) (validator.Validator, serializer.Serializer, error) {
	vals, err := values(s.Expected, path, "literal")
	if err != nil {
		return nil, nil, err
	}
	return &validator.Literal{Strict: strict, Expected: vals}, &serializer.Literal{Expected: vals}, nil
}

func (c *compiler) enum(s *skema.Schema, path string, strict bool) (validator.Validator, serializer.Serializer, error) {
	vals, err := values(s.Expected, path, "enum")
	if err != nil {
		return nil, nil, err
	}
	v := &validator.Enum{Members: vals}
	switch s.SubType {
	case "":
	case skema.TypeStr:
		v.Sub = &validator.Str{Strict: strict}
	case skema.TypeInt:
		v.Sub = &validator.Int{Strict: strict}
	case skema.TypeFloat:
		v.Sub = &validator.Float{Strict: strict, AllowInfNaN: true}
	default:
		return nil, nil, skema.SchemaErrorf(path, "unsupported enum sub_type %q", s.SubType)
	}
	if v.Sub != nil {
		// members are stored in the sub type's form so membership compares
		// coerced input against coerced members
		st := laxState()
		for i, m := range vals {
			out, iss := v.Sub.Validate(m, st)
			if iss != nil {
				return nil, nil, skema.SchemaErrorf(path+"/expected/"+strconv.Itoa(i), "enum member %s is not a valid %s", skema.FormatValue(m), s.SubType)
			}
			vals[i] = out
		}
	}
	return v, &serializer.Literal{Expected: vals}, nil
}

func values(raw []any, path, kind string) ([]skema.Value, error) {
	if len(raw) == 0 {
		return nil, skema.SchemaErrorf(path, "%s needs at least one expected value", kind)
	}
	out := make([]skema.Value, len(raw))
	for i, r := range raw {
		v, err := skema.ValueOf(r)
		if err != nil {
			return nil, skema.SchemaErrorf(path+"/expected/"+strconv.Itoa(i), "%v", err)
		}
		out[i] = v
	}
	return out, nil
}

func (c *compiler) list(s *skema.Schema, path string, depth int, strict bool) (validator.Validator, serializer.Serializer, error) {
	if err := checkLength(s, path); err != nil {
		return nil, nil, err
	}
	iv, is, err := c.optional(s.Items, path, "items", depth)
	if err != nil {
		return nil, nil, err
	}
	length := validator.Length{Min: s.MinLength, Max: s.MaxLength}
	if s.Type == skema.TypeList {
		return &validator.List{Strict: strict, Items: iv, Length: length}, &serializer.List{Kind: "list", Items: is}, nil
	}
	dup := s.Duplicates
	switch dup {
	case "":
		dup = skema.DuplicatesDedupe
	case skema.DuplicatesDedupe, skema.DuplicatesForbid:
	default:
		return nil, nil, skema.SchemaErrorf(path, "unknown duplicates policy %q", dup)
	}
	frozen := s.Type == skema.TypeFrozenSet
	return &validator.Set{Strict: strict, Frozen: frozen, Items: iv, Length: length, Duplicates: dup},
		&serializer.List{Kind: string(s.Type), Items: is}, nil
}

func (c *compiler) tuple(s *skema.Schema, path string, depth int, strict bool) (validator.Validator, serializer.Serializer, error) {
	if err := checkLength(s, path); err != nil {
		return nil, nil, err
	}
	v := &validator.Tuple{Strict: strict, Length: validator.Length{Min: s.MinLength, Max: s.MaxLength}}
	ser := &serializer.Tuple{}
	for i, p := range s.PrefixItems {
		if p == nil {
			return nil, nil, skema.SchemaErrorf(path+"/prefix_items/"+strconv.Itoa(i), "missing schema")
		}
		pv, ps, err := c.sub(p, path, "prefix_items/"+strconv.Itoa(i), depth)
		if err != nil {
			return nil, nil, err
		}
		v.Prefix = append(v.Prefix, pv)
		ser.Prefix = append(ser.Prefix, ps)
	}
	iv, is, err := c.optional(s.Items, path, "items", depth)
	if err != nil {
		return nil, nil, err
	}
	v.Items, ser.Items = iv, is
	return v, ser, nil
}

func (c *compiler) dict(s *skema.Schema, path string, depth int, strict bool) (validator.Validator, serializer.Serializer, error) {
	if err := checkLength(s, path); err != nil {
		return nil, nil, err
	}
	kv, ks, err := c.optional(s.Keys, path, "keys", depth)
	if err != nil {
		return nil, nil, err
	}
	vv, vs, err := c.optional(s.Values, path, "values", depth)
	if err != nil {
		return nil, nil, err
	}
	v := &validator.Dict{Strict: strict, Keys: kv, Values: vv, Length: validator.Length{Min: s.MinLength, Max: s.MaxLength}}
	return v, &serializer.Dict{Keys: ks, Values: vs}, nil
}

func (c *compiler) model(s *skema.Schema, path string, depth int) (validator.Validator, serializer.Serializer, error) {
	extra := s.Extra
	switch extra {
	case "":
		extra = skema.ExtraIgnore
	case skema.ExtraIgnore, skema.ExtraForbid, skema.ExtraAllow:
	default:
		return nil, nil, skema.SchemaErrorf(path, "unknown extra behavior %q", extra)
	}
	if s.ExtrasSchema != nil && extra != skema.ExtraAllow {
		return nil, nil, skema.SchemaErrorf(path, "extras_schema requires extra %q", skema.ExtraAllow)
	}
	seen := make(map[string]bool, len(s.Fields))
	vfields := make([]validator.RecordField, 0, len(s.Fields))
	sfields := make([]serializer.Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		fpath := path + "/fields/" + f.Name
		switch {
		case f.Name == "":
			return nil, nil, skema.SchemaErrorf(path+"/fields", "field without a name")
		case seen[f.Name]:
			return nil, nil, skema.SchemaErrorf(fpath, "duplicate field %q", f.Name)
		case f.Schema == nil:
			return nil, nil, skema.SchemaErrorf(fpath, "field %q has no schema", f.Name)
		}
		seen[f.Name] = true
		fv, fs, err := c.sub(f.Schema, path, "fields/"+f.Name, depth)
		if err != nil {
			return nil, nil, err
		}
		var def skema.Value
		if f.HasDefault {
			if def, err = skema.ValueOf(f.Default); err != nil {
				return nil, nil, skema.SchemaErrorf(fpath, "invalid default: %v", err)
			}
		}
		vfields = append(vfields, validator.RecordField{
			Name:       f.Name,
			Alias:      f.Alias,
			Validator:  fv,
			Required:   f.IsRequired(),
			Default:    def,
			HasDefault: f.HasDefault,
		})
		sfields = append(sfields, serializer.Field{
			Name:       f.Name,
			Alias:      f.Alias,
			Serializer: fs,
			Default:    def,
			Exclude:    f.Exclude,
		})
	}
	ev, es, err := c.optional(s.ExtrasSchema, path, "extras_schema", depth)
	if err != nil {
		return nil, nil, err
	}
	return validator.NewRecord(s.Name, vfields, extra, ev, s.PopulateByName), &serializer.Record{Name: s.Name, Fields: sfields, Extras: es}, nil
}

func (c *compiler) choices(s *skema.Schema, path string, depth int) ([]validator.Choice, []serializer.Serializer, error) {
	if len(s.Choices) == 0 {
		return nil, nil, skema.SchemaErrorf(path, "%s needs at least one choice", s.Type)
	}
	vs := make([]validator.Choice, 0, len(s.Choices))
	ss := make([]serializer.Serializer, 0, len(s.Choices))
	for i, ch := range s.Choices {
		seg := "choices/" + strconv.Itoa(i)
		if ch.Schema == nil {
			return nil, nil, skema.SchemaErrorf(path+"/"+seg, "choice has no schema")
		}
		v, ser, err := c.sub(ch.Schema, path, seg, depth)
		if err != nil {
			return nil, nil, err
		}
		vs = append(vs, validator.Choice{Label: ch.Label, Validator: v})
		ss = append(ss, ser)
	}
	return vs, ss, nil
}

func customError(s *skema.Schema) *validator.CustomError {
	if s.CustomErrorType == "" && s.CustomErrorMessage == "" {
		return nil
	}
	return &validator.CustomError{Type: s.CustomErrorType, Message: s.CustomErrorMessage, Context: s.CustomErrorContext}
}

func (c *compiler) union(s *skema.Schema, path string, depth int) (validator.Validator, serializer.Serializer, error) {
	mode := s.Mode
	switch mode {
	case "":
		mode = skema.UnionSmart
	case skema.UnionSmart, skema.UnionLeftToRight:
	default:
		return nil, nil, skema.SchemaErrorf(path, "unknown union mode %q", mode)
	}
	vs, ss, err := c.choices(s, path, depth)
	if err != nil {
		return nil, nil, err
	}
	// only an explicit node setting skips the lax pass; a compile-wide
	// default already reaches every branch
	nodeStrict := s.Strict != nil && *s.Strict
	return &validator.Union{Choices: vs, Mode: mode, Strict: nodeStrict, Custom: customError(s)},
		&serializer.Union{Choices: ss}, nil
}

func (c *compiler) tagged(s *skema.Schema, path string, depth int) (validator.Validator, serializer.Serializer, error) {
	disc := s.DiscriminatorPath
	if len(disc) == 0 {
		if s.Discriminator == "" {
			return nil, nil, skema.SchemaErrorf(path, "tagged-union needs a discriminator")
		}
		disc = []any{s.Discriminator}
	}
	for i, step := range disc {
		switch x := step.(type) {
		case string:
			if x == "" {
				return nil, nil, skema.SchemaErrorf(path, "empty discriminator step %d", i)
			}
		case int:
		default:
			return nil, nil, skema.SchemaErrorf(path, "discriminator step %d must be a field name or an index, got %T", i, step)
		}
	}
	vs, ss, err := c.choices(s, path, depth)
	if err != nil {
		return nil, nil, err
	}
	tags := make([]string, len(vs))
	seen := map[string]bool{}
	for i, ch := range vs {
		if ch.Label == "" {
			return nil, nil, skema.SchemaErrorf(path+"/choices/"+strconv.Itoa(i), "tagged-union choice needs a label")
		}
		if seen[ch.Label] {
			return nil, nil, skema.SchemaErrorf(path+"/choices/"+strconv.Itoa(i), "duplicate tag %q", ch.Label)
		}
		seen[ch.Label] = true
		tags[i] = ch.Label
	}
	return validator.NewTagged(disc, vs, customError(s)),
		&serializer.Tagged{Discriminator: disc, Tags: tags, Choices: ss}, nil
}

func (c *compiler) custom(s *skema.Schema, path string, depth int) (validator.Validator, serializer.Serializer, error) {
	if s.Expr == "" && s.Func == nil {
		return nil, nil, skema.SchemaErrorf(path, "custom needs an expression or a function")
	}
	iv, is, err := c.optional(s.Inner, path, "inner", depth)
	if err != nil {
		return nil, nil, err
	}
	v := &validator.Custom{Inner: iv, Func: s.Func, Message: s.ErrorMessage}
	if s.Expr != "" {
		prog, err := rules.Compile(s.Expr)
		if err != nil {
			return nil, nil, skema.SchemaErrorf(path, "invalid expression: %v", err)
		}
		v.Rule = prog
	}
	return v, &serializer.Wrap{Inner: is}, nil
}

func checkLength(s *skema.Schema, path string) error {
	switch {
	case s.MinLength != nil && *s.MinLength < 0:
		return skema.SchemaErrorf(path, "min_length must not be negative")
	case s.MaxLength != nil && *s.MaxLength < 0:
		return skema.SchemaErrorf(path, "max_length must not be negative")
	case s.MinLength != nil && s.MaxLength != nil && *s.MinLength > *s.MaxLength:
		return skema.SchemaErrorf(path, "min_length %d is greater than max_length %d", *s.MinLength, *s.MaxLength)
	}
	return nil
}

func laxState() *validator.State {
	return validator.NewState(context.Background(), skema.ValidateOpt{Strict: skema.StrictOff})
}

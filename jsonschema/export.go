package jsonschema

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/serializer"
)

// FromSchema projects a schema tree onto JSON Schema. Named definitions go
// to "$defs" and are referenced with "$ref", so recursive schemas export
// finitely. Temporal bounds have no JSON Schema keyword and are omitted.
func FromSchema(s *skema.Schema) (*Schema, error) {
	if s == nil {
		return nil, fmt.Errorf("jsonschema: nil schema")
	}
	e := &exporter{defs: map[string]*Schema{}}
	out, err := e.node(s, "")
	if err != nil {
		return nil, err
	}
	if len(e.defs) > 0 {
		out.Defs = e.defs
	}
	out.SchemaURI = Draft
	return out, nil
}

type exporter struct {
	defs map[string]*Schema
}

func refTo(name string) *Schema { return &Schema{Ref: "#/$defs/" + name} }

func (e *exporter) node(s *skema.Schema, path string) (*Schema, error) {
	if s.Ref != "" {
		if _, done := e.defs[s.Ref]; done {
			return refTo(s.Ref), nil
		}
		// placeholder first: recursive references stop here
		e.defs[s.Ref] = &Schema{}
		body, err := e.body(s, path)
		if err != nil {
			return nil, err
		}
		e.defs[s.Ref] = body
		return refTo(s.Ref), nil
	}
	return e.body(s, path)
}

func (e *exporter) sub(s *skema.Schema, path, seg string) (*Schema, error) {
	if s == nil {
		return &Schema{}, nil
	}
	return e.node(s, path+"/"+seg)
}

func (e *exporter) body(s *skema.Schema, path string) (*Schema, error) {
	switch s.Type {
	case skema.TypeAny:
		return &Schema{}, nil
	case skema.TypeNone:
		return &Schema{Type: "null"}, nil
	case skema.TypeBool:
		return &Schema{Type: "boolean"}, nil
	case skema.TypeInt:
		out := &Schema{Type: "integer"}
		return out, numeric(out, s, path)
	case skema.TypeFloat:
		out := &Schema{Type: "number"}
		return out, numeric(out, s, path)
	case skema.TypeDecimal:
		num := &Schema{Type: "number"}
		if err := numeric(num, s, path); err != nil {
			return nil, err
		}
		return &Schema{AnyOf: []*Schema{num, {Type: "string"}}}, nil
	case skema.TypeStr:
		return &Schema{Type: "string", MinLength: s.MinLength, MaxLength: s.MaxLength, Pattern: s.Pattern}, nil
	case skema.TypeBytes:
		out := &Schema{Type: "string", MinLength: s.MinLength, MaxLength: s.MaxLength}
		switch s.BytesEncoding {
		case skema.BytesBase64:
			out.ContentEncoding = "base64"
		case skema.BytesHex:
			out.ContentEncoding = "base16"
		default:
			out.Format = "binary"
		}
		return out, nil
	case skema.TypeDate:
		return &Schema{Type: "string", Format: "date"}, nil
	case skema.TypeTime:
		return &Schema{Type: "string", Format: "time"}, nil
	case skema.TypeDateTime:
		return &Schema{Type: "string", Format: "date-time"}, nil
	case skema.TypeTimedelta:
		return &Schema{Type: "string", Format: "duration"}, nil
	case skema.TypeUUID:
		return &Schema{Type: "string", Format: "uuid"}, nil
	case skema.TypeURL:
		return &Schema{Type: "string", Format: "uri", MaxLength: s.MaxLength}, nil
	case skema.TypeLiteral, skema.TypeEnum:
		vals, err := literals(s.Expected, path)
		if err != nil {
			return nil, err
		}
		if len(vals) == 1 && s.Type == skema.TypeLiteral {
			return &Schema{Const: vals[0]}, nil
		}
		return &Schema{Enum: vals}, nil
	case skema.TypeList, skema.TypeSet, skema.TypeFrozenSet:
		items, err := e.sub(s.Items, path, "items")
		if err != nil {
			return nil, err
		}
		out := &Schema{Type: "array", Items: items, MinItems: s.MinLength, MaxItems: s.MaxLength}
		out.UniqueItems = s.Type != skema.TypeList
		return out, nil
	case skema.TypeTuple:
		return e.tuple(s, path)
	case skema.TypeDict:
		return e.dict(s, path)
	case skema.TypeModel:
		return e.model(s, path)
	case skema.TypeUnion, skema.TypeTaggedUnion:
		out := &Schema{}
		for i, ch := range s.Choices {
			cs, err := e.sub(ch.Schema, path, "choices/"+strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			if s.Type == skema.TypeTaggedUnion {
				out.OneOf = append(out.OneOf, cs)
			} else {
				out.AnyOf = append(out.AnyOf, cs)
			}
		}
		return out, nil
	case skema.TypeNullable:
		inner, err := e.sub(s.Inner, path, "inner")
		if err != nil {
			return nil, err
		}
		return &Schema{AnyOf: []*Schema{inner, {Type: "null"}}}, nil
	case skema.TypeDefinitions:
		for i, d := range s.Definitions {
			if _, err := e.sub(d, path, "definitions/"+strconv.Itoa(i)); err != nil {
				return nil, err
			}
		}
		return e.sub(s.Inner, path, "inner")
	case skema.TypeRef:
		return refTo(s.SchemaRef), nil
	case skema.TypeCustom:
		return e.sub(s.Inner, path, "inner")
	case skema.TypeJSON:
		out := &Schema{Type: "string", ContentMediaType: "application/json"}
		if s.Inner != nil {
			inner, err := e.sub(s.Inner, path, "inner")
			if err != nil {
				return nil, err
			}
			out.ContentSchema = inner
		}
		return out, nil
	}
	return nil, fmt.Errorf("jsonschema: %s: unknown type %q", path, s.Type)
}

func (e *exporter) tuple(s *skema.Schema, path string) (*Schema, error) {
	out := &Schema{Type: "array", MinItems: s.MinLength, MaxItems: s.MaxLength}
	for i, p := range s.PrefixItems {
		ps, err := e.sub(p, path, "prefix_items/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out.PrefixItems = append(out.PrefixItems, ps)
	}
	switch {
	case s.Items != nil:
		items, err := e.sub(s.Items, path, "items")
		if err != nil {
			return nil, err
		}
		out.Items = items
	case len(s.PrefixItems) > 0:
		out.Items = false
		if out.MinItems == nil {
			n := len(s.PrefixItems)
			out.MinItems = &n
		}
	}
	return out, nil
}

func (e *exporter) dict(s *skema.Schema, path string) (*Schema, error) {
	out := &Schema{Type: "object", MinProperties: s.MinLength, MaxProperties: s.MaxLength}
	if s.Values != nil {
		vs, err := e.sub(s.Values, path, "values")
		if err != nil {
			return nil, err
		}
		out.AdditionalProperties = vs
	}
	if s.Keys != nil {
		ks, err := e.sub(s.Keys, path, "keys")
		if err != nil {
			return nil, err
		}
		// object keys are strings on the wire; only string constraints carry over
		if ks.Type == "string" {
			out.PropertyNames = ks
		}
	}
	return out, nil
}

func (e *exporter) model(s *skema.Schema, path string) (*Schema, error) {
	out := &Schema{Type: "object", Title: s.Name, Properties: map[string]*Schema{}}
	for _, f := range s.Fields {
		fs, err := e.sub(f.Schema, path, "fields/"+f.Name)
		if err != nil {
			return nil, err
		}
		name := f.Name
		if f.Alias != "" {
			name = f.Alias
		}
		if f.HasDefault {
			def, err := defaultValue(f.Default)
			if err != nil {
				return nil, fmt.Errorf("jsonschema: %s/fields/%s: %w", path, f.Name, err)
			}
			fs.Default = def
		}
		out.Properties[name] = fs
		if f.IsRequired() {
			out.Required = append(out.Required, name)
		}
	}
	switch s.Extra {
	case skema.ExtraForbid:
		out.AdditionalProperties = false
	case skema.ExtraAllow:
		if s.ExtrasSchema != nil {
			es, err := e.sub(s.ExtrasSchema, path, "extras_schema")
			if err != nil {
				return nil, err
			}
			out.AdditionalProperties = es
		}
	}
	return out, nil
}

// numeric copies the numeric bounds of s onto out as exact number literals.
func numeric(out *Schema, s *skema.Schema, path string) error {
	limits := []struct {
		name string
		raw  any
		dst  *json.Number
	}{
		{"gt", s.GT, &out.ExclusiveMinimum},
		{"ge", s.GE, &out.Minimum},
		{"lt", s.LT, &out.ExclusiveMaximum},
		{"le", s.LE, &out.Maximum},
		{"multiple_of", s.MultipleOf, &out.MultipleOf},
	}
	for _, l := range limits {
		if l.raw == nil {
			continue
		}
		lit, err := numberLiteral(l.raw)
		if err != nil {
			return fmt.Errorf("jsonschema: %s/%s: %w", path, l.name, err)
		}
		*l.dst = lit
	}
	return nil
}

func numberLiteral(raw any) (json.Number, error) {
	v, err := skema.ValueOf(raw)
	if err != nil {
		return "", err
	}
	var d decimal.Decimal
	switch x := v.(type) {
	case skema.Int:
		d = decimal.NewFromInt(int64(x))
	case skema.BigInt:
		d = decimal.NewFromBigInt(x.Int, 0)
	case skema.Float:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("%s is not finite", skema.FormatValue(raw))
		}
		d = decimal.NewFromFloat(f)
	case skema.Decimal:
		d = x.Decimal
	case skema.Str:
		if d, err = decimal.NewFromString(strings.TrimSpace(string(x))); err != nil {
			return "", fmt.Errorf("%q is not a number", string(x))
		}
	default:
		return "", fmt.Errorf("%s is not a number", skema.FormatValue(raw))
	}
	return json.Number(d.String()), nil
}

func literals(raw []any, path string) ([]any, error) {
	out := make([]any, len(raw))
	for i, r := range raw {
		v, err := defaultValue(r)
		if err != nil {
			return nil, fmt.Errorf("jsonschema: %s/expected/%d: %w", path, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// defaultValue renders a literal as JSON-compatible data through the
// inferring serializer.
func defaultValue(v any) (any, error) {
	lit, _, err := serializer.JSON(serializer.Any{}, v, skema.SerializeOpt{Warnings: skema.WarnNone})
	if err != nil {
		return nil, err
	}
	var out any
	dec := json.NewDecoder(bytes.NewReader(lit))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

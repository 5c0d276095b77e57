package skema

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FromMap builds a Schema from a host-native description such as
//
//	{"type": "model", "fields": [{"name": "id", "schema": {"type": "int", "gt": 0}}]}
//
// Keys use snake_case names of the Schema fields. Mappings may be
// map[string]any or *Object; with plain Go maps, "fields" and "choices" given
// as maps are read in key order. Malformed descriptions fail with a
// *SchemaError naming the offending node.
func FromMap(m any) (*Schema, error) { return schemaFromAny(m, "") }

// SchemaFromJSON parses a JSON schema description and builds it with FromMap.
func SchemaFromJSON(data []byte) (*Schema, error) {
	v, err := ParseJSON(data)
	if err != nil {
		return nil, &SchemaError{Path: "/", Message: err.Error()}
	}
	return FromMap(v)
}

// SchemaFromYAML parses a YAML schema description (mapping order preserved)
// and builds it with FromMap.
func SchemaFromYAML(data []byte) (*Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &SchemaError{Path: "/", Message: err.Error()}
	}
	v, err := fromYAMLNode(&doc)
	if err != nil {
		return nil, &SchemaError{Path: "/", Message: err.Error()}
	}
	return FromMap(v)
}

func fromYAMLNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.MappingNode:
		o := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i].Value
			v, err := fromYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			o.Set(k, v)
		}
		return o, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!int", "!!float":
			return Number(n.Value), nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return nil, err
			}
			return b, nil
		}
		return n.Value, nil
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
}

type mapReader struct {
	m    Mapping
	path string
	used map[string]bool
}

func schemaFromAny(v any, path string) (*Schema, error) {
	if s, ok := v.(*Schema); ok {
		return s, nil
	}
	// shorthand: "int" == {"type": "int"}
	if t, ok := v.(string); ok {
		return &Schema{Type: Type(t)}, nil
	}
	m, _, ok := AsMapping(v)
	if !ok {
		return nil, SchemaErrorf(path, "schema must be a mapping, got %s", KindName(v))
	}
	r := &mapReader{m: m, path: path, used: map[string]bool{}}
	return r.schema()
}

func (r *mapReader) get(key string) (any, bool) {
	r.used[key] = true
	v, ok := r.m.Get(key)
	if ok && v == nil {
		return nil, false
	}
	return v, ok
}

func (r *mapReader) sub(key string) string { return r.path + "/" + key }

func (r *mapReader) str(key string, dst *string) error {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return SchemaErrorf(r.sub(key), "expected string, got %s", KindName(v))
	}
	*dst = s
	return nil
}

func (r *mapReader) flag(key string, dst *bool) error {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		return SchemaErrorf(r.sub(key), "expected bool, got %s", KindName(v))
	}
	*dst = b
	return nil
}

func (r *mapReader) optFlag(key string, dst **bool) error {
	if _, ok := r.m.Get(key); !ok {
		return nil
	}
	var b bool
	if err := r.flag(key, &b); err != nil {
		return err
	}
	*dst = &b
	return nil
}

func (r *mapReader) optInt(key string, dst **int) error {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	n, ok := toInt(v)
	if !ok {
		return SchemaErrorf(r.sub(key), "expected integer, got %s", KindName(v))
	}
	*dst = &n
	return nil
}

func toInt(v any) (int, bool) {
	switch x := Unwrap(v).(type) {
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint64:
		return int(x), true
	case float64:
		if x == math.Trunc(x) {
			return int(x), true
		}
	case Number:
		n, err := strconv.Atoi(string(x))
		return n, err == nil
	}
	return 0, false
}

func (r *mapReader) child(key string) (*Schema, error) {
	v, ok := r.get(key)
	if !ok {
		return nil, nil
	}
	return schemaFromAny(v, r.sub(key))
}

func (r *mapReader) list(key string) ([]any, bool, error) {
	v, ok := r.get(key)
	if !ok {
		return nil, false, nil
	}
	seq, _, ok := AsSequence(v)
	if !ok {
		return nil, false, SchemaErrorf(r.sub(key), "expected list, got %s", KindName(v))
	}
	out := make([]any, seq.Len())
	for i := range out {
		out[i] = seq.At(i)
	}
	return out, true, nil
}

func (r *mapReader) schema() (*Schema, error) {
	s := &Schema{}
	var t string
	if err := r.str("type", &t); err != nil {
		return nil, err
	}
	if t == "" {
		return nil, SchemaErrorf(r.path, "missing schema type")
	}
	s.Type = Type(t)

	steps := []func() error{
		func() error { return r.str("ref", &s.Ref) },
		func() error { return r.optFlag("strict", &s.Strict) },
		func() error { s.GT, _ = r.get("gt"); return nil },
		func() error { s.GE, _ = r.get("ge"); return nil },
		func() error { s.LT, _ = r.get("lt"); return nil },
		func() error { s.LE, _ = r.get("le"); return nil },
		func() error { s.MultipleOf, _ = r.get("multiple_of"); return nil },
		func() error { return r.optFlag("allow_inf_nan", &s.AllowInfNaN) },
		func() error { return r.optInt("max_digits", &s.MaxDigits) },
		func() error { return r.optInt("decimal_places", &s.DecimalPlaces) },
		func() error { return r.optInt("min_length", &s.MinLength) },
		func() error { return r.optInt("max_length", &s.MaxLength) },
		func() error { return r.str("pattern", &s.Pattern) },
		func() error { return r.flag("strip_whitespace", &s.StripWhitespace) },
		func() error { return r.flag("to_lower", &s.ToLower) },
		func() error { return r.flag("to_upper", &s.ToUpper) },
		func() error { return r.flag("coerce_numbers_to_str", &s.CoerceNumbersToStr) },
		func() error { return r.str("bytes_encoding", (*string)(&s.BytesEncoding)) },
		func() error {
			var n *int
			if err := r.optInt("version", &n); err != nil || n == nil {
				return err
			}
			s.UUIDVersion = *n
			return nil
		},
		func() error { return r.flag("host_required", &s.HostRequired) },
		func() error {
			items, ok, err := r.list("allowed_schemes")
			if err != nil || !ok {
				return err
			}
			for i, it := range items {
				str, ok := it.(string)
				if !ok {
					return SchemaErrorf(r.sub("allowed_schemes")+"/"+strconv.Itoa(i), "expected string")
				}
				s.AllowedSchemes = append(s.AllowedSchemes, str)
			}
			return nil
		},
		func() error {
			items, _, err := r.list("expected")
			s.Expected = items
			return err
		},
		func() error { return r.str("sub_type", (*string)(&s.SubType)) },
		func() (err error) { s.Items, err = r.child("items"); return },
		func() error {
			items, _, err := r.list("prefix_items")
			if err != nil {
				return err
			}
			for i, it := range items {
				c, err := schemaFromAny(it, r.sub("prefix_items")+"/"+strconv.Itoa(i))
				if err != nil {
					return err
				}
				s.PrefixItems = append(s.PrefixItems, c)
			}
			return nil
		},
		func() error { return r.str("duplicates", (*string)(&s.Duplicates)) },
		func() (err error) { s.Keys, err = r.child("keys"); return },
		func() (err error) { s.Values, err = r.child("values"); return },
		func() error { return r.str("name", &s.Name) },
		func() error { return r.fields(s) },
		func() error { return r.str("extra_behavior", (*string)(&s.Extra)) },
		func() (err error) { s.ExtrasSchema, err = r.child("extras_schema"); return },
		func() error { return r.flag("populate_by_name", &s.PopulateByName) },
		func() error { return r.choices(s) },
		func() error { return r.str("mode", (*string)(&s.Mode)) },
		func() error { return r.discriminator(s) },
		func() error { return r.str("custom_error_type", &s.CustomErrorType) },
		func() error { return r.str("custom_error_message", &s.CustomErrorMessage) },
		func() error {
			v, ok := r.get("custom_error_context")
			if !ok {
				return nil
			}
			cm, _, ok := AsMapping(v)
			if !ok {
				return SchemaErrorf(r.sub("custom_error_context"), "expected mapping")
			}
			s.CustomErrorContext = map[string]any{}
			cm.Range(func(k, v any) bool {
				s.CustomErrorContext[fmt.Sprint(k)] = v
				return true
			})
			return nil
		},
		func() (err error) { s.Inner, err = r.child("schema"); return },
		func() error { return r.str("schema_ref", &s.SchemaRef) },
		func() error {
			items, _, err := r.list("definitions")
			if err != nil {
				return err
			}
			for i, it := range items {
				d, err := schemaFromAny(it, r.sub("definitions")+"/"+strconv.Itoa(i))
				if err != nil {
					return err
				}
				s.Definitions = append(s.Definitions, d)
			}
			return nil
		},
		func() error { return r.str("expr", &s.Expr) },
		func() error { return r.str("error_message", &s.ErrorMessage) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	var unknown []string
	r.m.Range(func(k, _ any) bool {
		if ks, ok := k.(string); ok && !r.used[ks] {
			unknown = append(unknown, ks)
		}
		return true
	})
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, SchemaErrorf(r.path, "unknown schema key %q", unknown[0])
	}
	return s, nil
}

func (r *mapReader) fields(s *Schema) error {
	v, ok := r.get("fields")
	if !ok {
		return nil
	}
	base := r.sub("fields")
	if seq, _, ok := AsSequence(v); ok {
		for i := 0; i < seq.Len(); i++ {
			f, err := fieldFromAny(seq.At(i), "", base+"/"+strconv.Itoa(i))
			if err != nil {
				return err
			}
			s.Fields = append(s.Fields, f)
		}
		return nil
	}
	m, _, ok := AsMapping(v)
	if !ok {
		return SchemaErrorf(base, "expected list or mapping of fields")
	}
	var err error
	m.Range(func(k, fv any) bool {
		name := fmt.Sprint(k)
		var f Field
		f, err = fieldFromAny(fv, name, base+"/"+name)
		if err != nil {
			return false
		}
		s.Fields = append(s.Fields, f)
		return true
	})
	return err
}

func fieldFromAny(v any, name, path string) (Field, error) {
	m, _, ok := AsMapping(v)
	if !ok {
		return Field{}, SchemaErrorf(path, "field must be a mapping")
	}
	r := &mapReader{m: m, path: path, used: map[string]bool{}}
	f := Field{Name: name}
	if err := r.str("name", &f.Name); err != nil {
		return f, err
	}
	if f.Name == "" {
		return f, SchemaErrorf(path, "field name required")
	}
	sv, ok := r.get("schema")
	if !ok {
		return f, SchemaErrorf(path, "field %q has no schema", f.Name)
	}
	sch, err := schemaFromAny(sv, r.sub("schema"))
	if err != nil {
		return f, err
	}
	f.Schema = sch
	if err := r.optFlag("required", &f.Required); err != nil {
		return f, err
	}
	if err := r.str("alias", &f.Alias); err != nil {
		return f, err
	}
	if err := r.flag("exclude", &f.Exclude); err != nil {
		return f, err
	}
	r.used["default"] = true
	if d, ok := m.Get("default"); ok {
		f.Default, f.HasDefault = d, true
	}
	return f, nil
}

func (r *mapReader) choices(s *Schema) error {
	v, ok := r.get("choices")
	if !ok {
		return nil
	}
	base := r.sub("choices")
	if seq, _, ok := AsSequence(v); ok {
		for i := 0; i < seq.Len(); i++ {
			p := base + "/" + strconv.Itoa(i)
			it := seq.At(i)
			// [schema, label] pairs label a branch
			if pair, _, ok := AsSequence(it); ok {
				if pair.Len() != 2 {
					return SchemaErrorf(p, "choice pair must be [schema, label]")
				}
				label, ok := pair.At(1).(string)
				if !ok {
					return SchemaErrorf(p+"/1", "choice label must be a string")
				}
				c, err := schemaFromAny(pair.At(0), p+"/0")
				if err != nil {
					return err
				}
				s.Choices = append(s.Choices, Choice{Label: label, Schema: c})
				continue
			}
			c, err := schemaFromAny(it, p)
			if err != nil {
				return err
			}
			s.Choices = append(s.Choices, Choice{Schema: c})
		}
		return nil
	}
	m, _, ok := AsMapping(v)
	if !ok {
		return SchemaErrorf(base, "expected list or mapping of choices")
	}
	var err error
	m.Range(func(k, cv any) bool {
		label := fmt.Sprint(k)
		var c *Schema
		c, err = schemaFromAny(cv, base+"/"+label)
		if err != nil {
			return false
		}
		s.Choices = append(s.Choices, Choice{Label: label, Schema: c})
		return true
	})
	return err
}

func (r *mapReader) discriminator(s *Schema) error {
	v, ok := r.get("discriminator")
	if !ok {
		return nil
	}
	if str, ok := v.(string); ok {
		s.Discriminator = str
		return nil
	}
	seq, _, ok := AsSequence(v)
	if !ok {
		return SchemaErrorf(r.sub("discriminator"), "expected field name or path")
	}
	for i := 0; i < seq.Len(); i++ {
		switch x := Unwrap(seq.At(i)).(type) {
		case string:
			s.DiscriminatorPath = append(s.DiscriminatorPath, x)
		default:
			n, ok := toInt(x)
			if !ok {
				return SchemaErrorf(r.sub("discriminator")+"/"+strconv.Itoa(i), "path items must be strings or integers")
			}
			s.DiscriminatorPath = append(s.DiscriminatorPath, n)
		}
	}
	return nil
}

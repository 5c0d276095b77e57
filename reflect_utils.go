package skema

import (
	"reflect"
	"strings"
	"sync"
)

// ResolveStructKey applies the repository-wide rule to resolve a struct field's
// external key used when struct values are read as mappings.
// Priority: skema:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if gt := sf.Tag.Get("skema"); gt != "" {
		parts := strings.Split(gt, ",")
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		name := jt
		if i := strings.IndexByte(jt, ','); i >= 0 {
			name = jt[:i]
		}
		if name != "" {
			return name
		}
	}
	return sf.Name
}

type structField struct {
	key   string
	index []int
}

var structFieldCache sync.Map // map[reflect.Type][]structField

// structFields lists the readable fields of a struct type in declaration
// order. Untagged embedded structs are flattened.
func structFields(t reflect.Type) []structField {
	if v, ok := structFieldCache.Load(t); ok {
		return v.([]structField)
	}
	var out []structField
	seen := map[string]bool{}
	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			idx := append(append([]int{}, prefix...), i)
			if sf.Anonymous && sf.Tag.Get("json") == "" && sf.Tag.Get("skema") == "" {
				ft := sf.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					walk(ft, idx)
					continue
				}
			}
			if !sf.IsExported() {
				continue
			}
			key := ResolveStructKey(sf)
			if key == "-" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, structField{key: key, index: idx})
		}
	}
	walk(t, nil)
	structFieldCache.Store(t, out)
	return out
}

// fieldByIndex is reflect.Value.FieldByIndex that tolerates nil embedded
// pointers.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

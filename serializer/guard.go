package serializer

import (
	"reflect"

	skema "github.com/reoring/skema"
)

// identity names a host object by type and address. The type is part of the
// key because a struct pointer and a pointer to its first field share an
// address.
type identity struct {
	typ reflect.Type
	ptr uintptr
}

func identityOf(v any) (identity, bool) {
	if v == nil {
		return identity{}, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map:
		if rv.IsNil() {
			return identity{}, false
		}
	case reflect.Slice:
		if rv.Len() == 0 {
			return identity{}, false
		}
	default:
		return identity{}, false
	}
	return identity{typ: rv.Type(), ptr: rv.Pointer()}, true
}

// enter pushes the identity of v before its members are visited. It fails
// with a cyclic_reference issue when v is already being serialized further
// up. The returned func pops the identity and must run on every exit path.
func (st *State) enter(v any) (func(), error) {
	id, ok := identityOf(v)
	if !ok {
		return func() {}, nil
	}
	if _, busy := st.guard[id]; busy {
		it := skema.NewIssue(skema.ErrorKindCyclicReference, skema.CodeCyclicReference, v, nil)
		it.Loc = st.here()
		return nil, skema.Issues{it}
	}
	st.guard[id] = struct{}{}
	return func() { delete(st.guard, id) }, nil
}

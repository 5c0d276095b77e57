package skema

import (
	"strconv"
	"strings"
)

// LocKind tags a location segment.
type LocKind uint8

const (
	LocField  LocKind = iota // Record field (declared name or alias).
	LocIndex                 // Sequence index.
	LocKey                   // Mapping key.
	LocBranch                // Union branch label or index.
)

// LocItem is one segment of a Location.
type LocItem struct {
	Kind  LocKind
	Name  string // Set for LocField, LocKey and LocBranch.
	Index int    // Set for LocIndex.
}

// FieldLoc returns a field segment.
func FieldLoc(name string) LocItem { return LocItem{Kind: LocField, Name: name} }

// Index returns a sequence index segment.
func Index(i int) LocItem { return LocItem{Kind: LocIndex, Index: i} }

// Key returns a mapping key segment.
func Key(k string) LocItem { return LocItem{Kind: LocKey, Name: k} }

// Branch returns a union branch segment.
func Branch(label string) LocItem { return LocItem{Kind: LocBranch, Name: label} }

// String renders the segment as it appears in a dotted location.
func (li LocItem) String() string {
	if li.Kind == LocIndex {
		return strconv.Itoa(li.Index)
	}
	return li.Name
}

// Location is an ordered path from the validated root to a value.
type Location []LocItem

// Prefix returns a new Location with items placed before l.
func (l Location) Prefix(items ...LocItem) Location {
	out := make(Location, 0, len(items)+len(l))
	out = append(out, items...)
	return append(out, l...)
}

// Append returns a new Location with items placed after l.
func (l Location) Append(items ...LocItem) Location {
	out := make(Location, 0, len(items)+len(l))
	out = append(out, l...)
	return append(out, items...)
}

// Pointer renders the location as a JSON Pointer (RFC 6901). The root is "/".
func (l Location) Pointer() string {
	if len(l) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, it := range l {
		b.WriteByte('/')
		if it.Kind == LocIndex {
			b.WriteString(strconv.Itoa(it.Index))
			continue
		}
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		b.WriteString(pointerEscaper.Replace(it.Name))
	}
	return b.String()
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// String renders the location in dotted form, e.g. "items.2.price".
func (l Location) String() string {
	parts := make([]string, len(l))
	for i, it := range l {
		parts[i] = it.String()
	}
	return strings.Join(parts, ".")
}

// Tuple returns the segments as strings and ints.
func (l Location) Tuple() []any {
	out := make([]any, len(l))
	for i, it := range l {
		if it.Kind == LocIndex {
			out[i] = it.Index
		} else {
			out[i] = it.Name
		}
	}
	return out
}

// Equal reports whether two locations have identical segments.
func (l Location) Equal(o Location) bool {
	if len(l) != len(o) {
		return false
	}
	for i := range l {
		if l[i] != o[i] {
			return false
		}
	}
	return true
}

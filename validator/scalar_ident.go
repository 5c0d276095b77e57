package validator

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/codec"
)

// UUID validates UUIDs. Version, when non-zero, must match.
type UUID struct {
	Strict  bool
	Version int
}

func (v *UUID) Validate(in any, st *State) (skema.Value, skema.Issues) {
	u, iss := v.coerce(in, st)
	if iss != nil {
		return nil, iss
	}
	if v.Version != 0 && int(u.Version()) != v.Version {
		return nil, valueIssue(skema.CodeUUIDVersion, in, map[string]any{"expected_version": v.Version})
	}
	return skema.UUID(u), nil
}

func (v *UUID) coerce(in any, st *State) (uuid.UUID, skema.Issues) {
	x := skema.Unwrap(in)
	switch t := x.(type) {
	case uuid.UUID:
		return t, nil
	case skema.UUID:
		return uuid.UUID(t), nil
	}
	strict := st.IsStrict(v.Strict)
	if s, ok := asString(x); ok {
		if strict && !st.JSON {
			return uuid.UUID{}, typeIssue(skema.CodeUUIDType, in, "uuid")
		}
		u, err := codec.ParseUUID(s)
		if err != nil {
			return uuid.UUID{}, valueIssue(skema.CodeUUIDParsing, in, map[string]any{"error": err.Error()})
		}
		st.Floor(ExactnessLax)
		return u, nil
	}
	if b, ok := asBytes(x); ok && !strict {
		var (
			u   uuid.UUID
			err error
		)
		if len(b) == 16 {
			u, err = codec.UUIDFromBytes(b)
		} else {
			u, err = codec.ParseUUID(string(b))
		}
		if err != nil {
			return uuid.UUID{}, valueIssue(skema.CodeUUIDParsing, in, map[string]any{"error": err.Error()})
		}
		st.Floor(ExactnessLax)
		return u, nil
	}
	return uuid.UUID{}, typeIssue(skema.CodeUUIDType, in, "uuid")
}

// URL validates absolute URLs and normalizes their scheme, host and path.
type URL struct {
	Strict         bool
	MaxLength      *int
	AllowedSchemes []string
	HostRequired   bool
}

func (v *URL) Validate(in any, st *State) (skema.Value, skema.Issues) {
	x := skema.Unwrap(in)
	var raw string
	switch t := x.(type) {
	case *url.URL:
		raw = t.String()
	case skema.URL:
		if t.URL == nil {
			return nil, typeIssue(skema.CodeURLType, in, "url")
		}
		raw = t.URL.String()
	default:
		s, ok := asString(x)
		if !ok || (st.IsStrict(v.Strict) && !st.JSON) {
			return nil, typeIssue(skema.CodeURLType, in, "url")
		}
		st.Floor(ExactnessLax)
		raw = s
	}
	if v.MaxLength != nil && utf8.RuneCountInString(raw) > *v.MaxLength {
		return nil, valueIssue(skema.CodeURLTooLong, in, map[string]any{"max_length": *v.MaxLength})
	}
	u, err := codec.ParseURL(raw, v.HostRequired)
	if err != nil {
		return nil, valueIssue(skema.CodeURLParsing, in, map[string]any{"error": err.Error()})
	}
	if len(v.AllowedSchemes) > 0 && !v.schemeAllowed(u.Scheme) {
		quoted := make([]string, len(v.AllowedSchemes))
		for i, s := range v.AllowedSchemes {
			quoted[i] = "'" + s + "'"
		}
		return nil, valueIssue(skema.CodeURLScheme, in, map[string]any{"expected_schemes": formatChoices(quoted)})
	}
	return skema.URL{URL: u}, nil
}

func (v *URL) schemeAllowed(scheme string) bool {
	for _, s := range v.AllowedSchemes {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}

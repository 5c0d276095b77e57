package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/codec"
)

// Str validates strings. Transformations run before the length and
// pattern constraints.
type Str struct {
	Strict        bool
	Strip         bool
	Lower         bool
	Upper         bool
	CoerceNumbers bool
	Length        Length
	// Pattern is matched with search semantics (unanchored).
	Pattern *regexp.Regexp
}

func (v *Str) Validate(in any, st *State) (skema.Value, skema.Issues) {
	s, iss := v.coerce(in, st)
	if iss != nil {
		return nil, iss
	}
	if v.Strip {
		s = strings.TrimSpace(s)
	}
	if v.Lower {
		s = strings.ToLower(s)
	}
	if v.Upper {
		s = strings.ToUpper(s)
	}
	if !v.Length.IsZero() {
		if iss := v.Length.check(utf8.RuneCountInString(s), in, skema.CodeStringTooShort, skema.CodeStringTooLong, nil); iss != nil {
			return nil, iss
		}
	}
	if v.Pattern != nil && !v.Pattern.MatchString(s) {
		return nil, valueIssue(skema.CodeStringPattern, in, map[string]any{"pattern": v.Pattern.String()})
	}
	return skema.Str(s), nil
}

func (v *Str) coerce(in any, st *State) (string, skema.Issues) {
	x := skema.Unwrap(in)
	if s, ok := asString(x); ok {
		st.Floor(ExactnessString)
		return s, nil
	}
	if st.IsStrict(v.Strict) {
		return "", typeIssue(skema.CodeStringType, in, "str")
	}
	if b, ok := asBytes(x); ok {
		if !utf8.Valid(b) {
			return "", valueIssue(skema.CodeStringUnicode, in, nil)
		}
		st.Floor(ExactnessLax)
		return string(b), nil
	}
	if v.CoerceNumbers {
		if n, ok := probeNumber(x); ok {
			st.Floor(ExactnessLax)
			switch {
			case n.kind == numInt:
				return n.i.String(), nil
			case n.kind == numDecimal:
				return n.d.String(), nil
			case n.literal:
				return skema.FormatValue(x), nil
			}
			return skema.FormatValue(n.f), nil
		}
	}
	return "", typeIssue(skema.CodeStringType, in, "str")
}

// Bytes validates byte strings. Text input is decoded with Encoding.
type Bytes struct {
	Strict   bool
	Encoding skema.BytesEncoding
	Length   Length
}

func (v *Bytes) Validate(in any, st *State) (skema.Value, skema.Issues) {
	b, iss := v.coerce(in, st)
	if iss != nil {
		return nil, iss
	}
	if !v.Length.IsZero() {
		if iss := v.Length.check(len(b), in, skema.CodeBytesTooShort, skema.CodeBytesTooLong, nil); iss != nil {
			return nil, iss
		}
	}
	return skema.Bytes(b), nil
}

func (v *Bytes) coerce(in any, st *State) ([]byte, skema.Issues) {
	x := skema.Unwrap(in)
	if b, ok := asBytes(x); ok {
		return append([]byte(nil), b...), nil
	}
	s, ok := asString(x)
	if !ok || (st.IsStrict(v.Strict) && !st.JSON) {
		return nil, typeIssue(skema.CodeBytesType, in, "bytes")
	}
	enc := string(v.Encoding)
	if enc == "" {
		enc = codec.EncodingUTF8
	}
	b, err := codec.DecodeBytes(s, enc)
	if err != nil {
		return nil, valueIssue(skema.CodeBytesInvalidEncoding, in, map[string]any{"encoding": enc})
	}
	st.Floor(ExactnessLax)
	return b, nil
}

package skema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/skema/i18n"
)

// ErrorKind is the coarse classification of an Issue.
type ErrorKind string

const (
	ErrorKindSchema          ErrorKind = "schema"
	ErrorKindType            ErrorKind = "type"
	ErrorKindValue           ErrorKind = "value"
	ErrorKindMissing         ErrorKind = "missing"
	ErrorKindExtraForbidden  ErrorKind = "extra_forbidden"
	ErrorKindUnion           ErrorKind = "union"
	ErrorKindUnionTag        ErrorKind = "union_tag"
	ErrorKindCyclicReference ErrorKind = "cyclic_reference"
	ErrorKindRecursionLimit  ErrorKind = "recursion_limit"
	ErrorKindSerialization   ErrorKind = "serialization_warning"
	ErrorKindParse           ErrorKind = "parse"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// scalars
	CodeNoneRequired         = "none_required"
	CodeBoolType             = "bool_type"
	CodeBoolParsing          = "bool_parsing"
	CodeIntType              = "int_type"
	CodeIntParsing           = "int_parsing"
	CodeIntParsingSize       = "int_parsing_size"
	CodeIntFromFloat         = "int_from_float"
	CodeFloatType            = "float_type"
	CodeFloatParsing         = "float_parsing"
	CodeFiniteNumber         = "finite_number"
	CodeDecimalType          = "decimal_type"
	CodeDecimalParsing       = "decimal_parsing"
	CodeDecimalMaxDigits     = "decimal_max_digits"
	CodeDecimalMaxPlaces     = "decimal_max_places"
	CodeStringType           = "string_type"
	CodeStringUnicode        = "string_unicode"
	CodeStringTooShort       = "string_too_short"
	CodeStringTooLong        = "string_too_long"
	CodeStringPattern        = "string_pattern_mismatch"
	CodeBytesType            = "bytes_type"
	CodeBytesInvalidEncoding = "bytes_invalid_encoding"
	CodeBytesTooShort        = "bytes_too_short"
	CodeBytesTooLong         = "bytes_too_long"
	CodeDateType             = "date_type"
	CodeDateParsing          = "date_parsing"
	CodeDateFromDatetime     = "date_from_datetime_inexact"
	CodeTimeType             = "time_type"
	CodeTimeParsing          = "time_parsing"
	CodeDatetimeType         = "datetime_type"
	CodeDatetimeParsing      = "datetime_parsing"
	CodeTimedeltaType        = "time_delta_type"
	CodeTimedeltaParsing     = "time_delta_parsing"
	CodeUUIDType             = "uuid_type"
	CodeUUIDParsing          = "uuid_parsing"
	CodeUUIDVersion          = "uuid_version"
	CodeURLType              = "url_type"
	CodeURLParsing           = "url_parsing"
	CodeURLTooLong           = "url_too_long"
	CodeURLScheme            = "url_scheme"
	CodeLiteralError         = "literal_error"
	CodeEnum                 = "enum"
	CodeJSONType             = "json_type"
	CodeJSONInvalid          = "json_invalid"
	CodeUnsupportedType      = "unsupported_type"

	// numeric and ordering constraints
	CodeGreaterThan      = "greater_than"
	CodeGreaterThanEqual = "greater_than_equal"
	CodeLessThan         = "less_than"
	CodeLessThanEqual    = "less_than_equal"
	CodeMultipleOf       = "multiple_of"

	// containers and records
	CodeListType        = "list_type"
	CodeTupleType       = "tuple_type"
	CodeSetType         = "set_type"
	CodeFrozenSetType   = "frozen_set_type"
	CodeSetDuplicate    = "set_duplicate"
	CodeDictType        = "dict_type"
	CodeModelType       = "model_type"
	CodeTooShort        = "too_short"
	CodeTooLong         = "too_long"
	CodeMissing         = "missing"
	CodeExtraForbidden  = "extra_forbidden"
	CodeTaggedUnionType = "tagged_union_type"
	CodeUnionTagMissing = "union_tag_not_found"
	CodeUnionTagInvalid = "union_tag_invalid"
	CodeRuleFailed      = "rule_failed"
	CodeCustomError     = "custom_error"

	// services for custom hooks
	CodeDependencyUnavailable = "dependency_unavailable"

	// runtime guards
	CodeRecursionLimit  = "recursion_limit"
	CodeCyclicReference = "cyclic_reference"

	// serialization warnings
	CodeUnexpectedValue = "unexpected_value"
	CodeUnsafeInteger   = "unsafe_integer"
	CodeNonFiniteFloat  = "non_finite_float"
	CodeStringFallback  = "string_fallback"

	// JSON input
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
	CodeTruncated    = "truncated"
)

// Issue represents a single validation entry.
type Issue struct {
	Kind    ErrorKind
	Code    string   // One of the codes listed above, or a custom union error type.
	Loc     Location // Position of the offending value relative to the validated root.
	Message string
	// Input echoes the offending input. It is nil for missing values.
	Input any
	// Params carries structured parameters (e.g., {"gt": 1, "max_length": 10})
	// used to render Message and for observability.
	Params map[string]any
}

// Path renders the location as a JSON Pointer.
func (it Issue) Path() string { return it.Loc.Pointer() }

// NewIssue builds an Issue with the message rendered by the current i18n
// translator.
func NewIssue(kind ErrorKind, code string, input any, params map[string]any) Issue {
	return Issue{Kind: kind, Code: code, Message: i18n.T(code, params), Input: input, Params: params}
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. int_parsing at /items/2
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Prefix returns a copy of the issues with items prepended to every location.
func (iss Issues) Prefix(items ...LocItem) Issues {
	if len(iss) == 0 || len(items) == 0 {
		return iss
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		it.Loc = it.Loc.Prefix(items...)
		out[i] = it
	}
	return out
}

// Codes lists issue codes in order. Handy for assertions and logs.
func (iss Issues) Codes() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Code
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// SchemaError reports a malformed schema. Path is a JSON Pointer into the
// schema tree (for example: /fields/user/items).
type SchemaError struct {
	Path    string
	Message string
}

func (e *SchemaError) Error() string {
	p := e.Path
	if p == "" {
		p = "/"
	}
	return "schema error at " + p + ": " + e.Message
}

// SchemaErrorf builds a *SchemaError with a formatted message.
func SchemaErrorf(path, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// AsSchemaError extracts a *SchemaError from err.
func AsSchemaError(err error) (*SchemaError, bool) {
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

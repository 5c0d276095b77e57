package skema

import (
	"context"
)

// Type is the schema node type tag.
type Type string

const (
	TypeAny         Type = "any"
	TypeNone        Type = "none"
	TypeBool        Type = "bool"
	TypeInt         Type = "int"
	TypeFloat       Type = "float"
	TypeDecimal     Type = "decimal"
	TypeStr         Type = "str"
	TypeBytes       Type = "bytes"
	TypeDate        Type = "date"
	TypeTime        Type = "time"
	TypeDateTime    Type = "datetime"
	TypeTimedelta   Type = "timedelta"
	TypeUUID        Type = "uuid"
	TypeURL         Type = "url"
	TypeLiteral     Type = "literal"
	TypeEnum        Type = "enum"
	TypeList        Type = "list"
	TypeTuple       Type = "tuple"
	TypeSet         Type = "set"
	TypeFrozenSet   Type = "frozenset"
	TypeDict        Type = "dict"
	TypeModel       Type = "model"
	TypeUnion       Type = "union"
	TypeTaggedUnion Type = "tagged-union"
	TypeNullable    Type = "nullable"
	TypeDefinitions Type = "definitions"
	TypeRef         Type = "definition-ref"
	TypeCustom      Type = "custom"
	TypeJSON        Type = "json"
)

// Schema is a declarative schema node. Build trees with the dsl package,
// FromMap or a struct literal, then compile them with the compiler package.
// A compiled schema is never mutated.
type Schema struct {
	Type Type
	// Ref registers this node as a named definition reachable through
	// TypeRef nodes anywhere in the tree.
	Ref string
	// Strict overrides the compile-wide default strictness for this node.
	Strict *bool

	// Numeric and temporal bounds. Values may be Go numbers, Number literals,
	// numeric strings, or temporal values/strings for temporal types.
	GT, GE, LT, LE any
	MultipleOf     any
	AllowInfNaN    *bool
	MaxDigits      *int
	DecimalPlaces  *int

	// Length bounds for strings, bytes, urls and containers.
	MinLength *int
	MaxLength *int

	// str
	Pattern            string
	StripWhitespace    bool
	ToLower            bool
	ToUpper            bool
	CoerceNumbersToStr bool

	BytesEncoding BytesEncoding
	UUIDVersion   int
	// url
	AllowedSchemes []string
	HostRequired   bool

	// literal and enum
	Expected []any
	SubType  Type

	// list, tuple, set, frozenset
	Items       *Schema
	PrefixItems []*Schema
	Duplicates  DuplicatePolicy
	// dict
	Keys   *Schema
	Values *Schema

	// model
	Name           string
	Fields         []Field
	Extra          ExtraBehavior
	ExtrasSchema   *Schema
	PopulateByName bool

	// union and tagged-union
	Choices []Choice
	Mode    UnionMode
	// Discriminator is the tag field name; DiscriminatorPath walks nested
	// fields (string) and indexes (int) instead.
	Discriminator      string
	DiscriminatorPath  []any
	CustomErrorType    string
	CustomErrorMessage string
	CustomErrorContext map[string]any

	// Inner is the wrapped schema of nullable, json, custom and definitions.
	Inner *Schema
	// SchemaRef names the target definition of a TypeRef node.
	SchemaRef   string
	Definitions []*Schema

	// custom
	Expr         string
	Func         func(ctx context.Context, v Value) (Value, error)
	ErrorMessage string
}

// Field is one declared field of a model schema.
type Field struct {
	Name   string
	Schema *Schema
	// Required defaults to true unless the field has a default.
	Required *bool
	Alias    string
	// Default is used when the field is absent and HasDefault is set.
	Default    any
	HasDefault bool
	// Exclude drops the field from serialized output.
	Exclude bool
}

// IsRequired resolves the effective required flag.
func (f Field) IsRequired() bool {
	if f.Required != nil {
		return *f.Required
	}
	return !f.HasDefault
}

// Choice is one alternative of a union. For tagged unions Label is the tag
// value selecting it.
type Choice struct {
	Label  string
	Schema *Schema
}

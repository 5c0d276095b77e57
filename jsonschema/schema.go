package jsonschema

import (
	"github.com/goccy/go-json"
)

// Draft is the dialect written to the root "$schema" keyword.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a JSON Schema document or subschema. Only the keywords the
// exporter produces are modelled.
type Schema struct {
	// Core
	SchemaURI string             `json:"$schema,omitempty"`
	Ref       string             `json:"$ref,omitempty"`
	Defs      map[string]*Schema `json:"$defs,omitempty"`
	Title     string             `json:"title,omitempty"`
	Type      string             `json:"type,omitempty"`
	Format    string             `json:"format,omitempty"`
	Default   any                `json:"default,omitempty"`
	Const     any                `json:"const,omitempty"`
	Enum      []any              `json:"enum,omitempty"`

	// Numeric
	Minimum          json.Number `json:"minimum,omitempty"`
	Maximum          json.Number `json:"maximum,omitempty"`
	ExclusiveMinimum json.Number `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum json.Number `json:"exclusiveMaximum,omitempty"`
	MultipleOf       json.Number `json:"multipleOf,omitempty"`

	// String
	MinLength        *int   `json:"minLength,omitempty"`
	MaxLength        *int   `json:"maxLength,omitempty"`
	Pattern          string `json:"pattern,omitempty"`
	ContentEncoding  string `json:"contentEncoding,omitempty"`
	ContentMediaType string `json:"contentMediaType,omitempty"`
	ContentSchema    *Schema `json:"contentSchema,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`
	PropertyNames        *Schema            `json:"propertyNames,omitempty"`
	MinProperties        *int               `json:"minProperties,omitempty"`
	MaxProperties        *int               `json:"maxProperties,omitempty"`

	// Array
	Items       any       `json:"items,omitempty"`
	PrefixItems []*Schema `json:"prefixItems,omitempty"`
	MinItems    *int      `json:"minItems,omitempty"`
	MaxItems    *int      `json:"maxItems,omitempty"`
	UniqueItems bool      `json:"uniqueItems,omitempty"`

	// Union
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
}

// Marshal renders s as JSON text. Object keys are sorted, so the output is
// stable.
func Marshal(s *Schema) ([]byte, error) { return json.Marshal(s) }

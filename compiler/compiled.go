package compiler

import (
	"context"
	"io"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/jsonschema"
	"github.com/reoring/skema/serializer"
	"github.com/reoring/skema/validator"
)

// Compiled is an immutable validator/serializer pair. It is safe for
// concurrent use; every call gets its own state.
type Compiled struct {
	schema    *skema.Schema
	validator validator.Validator
	ser       serializer.Serializer
	vdefs     *validator.Definitions
	sdefs     *serializer.Definitions
}

// Schema returns the schema the trees were compiled from. It must not be
// modified.
func (c *Compiled) Schema() *skema.Schema { return c.schema }

// Definitions lists the definition names, sorted.
func (c *Compiled) Definitions() []string { return c.vdefs.Names() }

// Validate coerces a host value into an Internal Value. On failure the
// error is a complete skema.Issues.
func (c *Compiled) Validate(ctx context.Context, in any, opts ...skema.ValidateOpt) (skema.Value, error) {
	return c.run(validator.NewState(ctx, lastValidate(opts)), in)
}

// ValidateJSON decodes JSON text and validates the document. Strict nodes
// accept strings for kinds JSON has no literal for (bytes, temporal, uuid,
// url).
func (c *Compiled) ValidateJSON(ctx context.Context, data []byte, opts ...skema.ValidateOpt) (skema.Value, error) {
	opt := lastValidate(opts)
	doc, err := skema.ParseJSON(data, opt)
	if err != nil {
		return nil, err
	}
	return c.validateDoc(ctx, doc, opt)
}

// ValidateReader is ValidateJSON over a stream.
func (c *Compiled) ValidateReader(ctx context.Context, r io.Reader, opts ...skema.ValidateOpt) (skema.Value, error) {
	opt := lastValidate(opts)
	doc, err := skema.ParseJSONReader(r, opt)
	if err != nil {
		return nil, err
	}
	return c.validateDoc(ctx, doc, opt)
}

func (c *Compiled) validateDoc(ctx context.Context, doc any, opt skema.ValidateOpt) (skema.Value, error) {
	st := validator.NewState(ctx, opt)
	st.JSON = true
	return c.run(st, doc)
}

func (c *Compiled) run(st *validator.State, in any) (skema.Value, error) {
	out, iss := c.validator.Validate(in, st)
	if iss != nil {
		return nil, iss
	}
	return out, nil
}

// Serialize renders v as Go values: map[string]any for records and dicts,
// []any for sequences and native scalars. Warnings describe fallbacks taken
// along the way; a non-nil error means nothing was produced.
func (c *Compiled) Serialize(v any, opts ...skema.SerializeOpt) (any, skema.Issues, error) {
	return serializer.Native(c.ser, v, lastSerialize(opts))
}

// SerializeJSON renders v as JSON text.
func (c *Compiled) SerializeJSON(v any, opts ...skema.SerializeOpt) ([]byte, skema.Issues, error) {
	return serializer.JSON(c.ser, v, lastSerialize(opts))
}

// SerializeYAML renders v as a YAML document.
func (c *Compiled) SerializeYAML(v any, opts ...skema.SerializeOpt) ([]byte, skema.Issues, error) {
	return serializer.YAML(c.ser, v, lastSerialize(opts))
}

// ValidateAndSerialize validates in and renders the result as JSON text.
func (c *Compiled) ValidateAndSerialize(ctx context.Context, in any, vopt skema.ValidateOpt, sopt skema.SerializeOpt) ([]byte, skema.Issues, error) {
	val, err := c.Validate(ctx, in, vopt)
	if err != nil {
		return nil, nil, err
	}
	return c.SerializeJSON(val, sopt)
}

// JSONSchema exports the schema as a JSON Schema document.
func (c *Compiled) JSONSchema() (*jsonschema.Schema, error) {
	return jsonschema.FromSchema(c.schema)
}

func lastValidate(opts []skema.ValidateOpt) skema.ValidateOpt {
	if len(opts) == 0 {
		return skema.ValidateOpt{}
	}
	return opts[len(opts)-1]
}

func lastSerialize(opts []skema.SerializeOpt) skema.SerializeOpt {
	if len(opts) == 0 {
		return skema.SerializeOpt{}
	}
	return opts[len(opts)-1]
}

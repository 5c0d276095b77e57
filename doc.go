// Package skema holds the data model shared by the schema compiler, the
// validator and serializer trees:
//
// - Schema, a declarative node tree (build it with dsl, FromMap or a literal)
// - Value, the internal value model that validation produces
// - Issues, a stable error model (JSON Pointer location, code, message)
// - JSON input through a Source/JSONDriver with duplicate-key and depth enforcement
//
// Design policy:
// - Keep the shared model in the root package; compile and run trees in compiler, validator and serializer.
// - Place the fluent builder under dsl/, wire formats under codec/ and JSON Schema export under jsonschema/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s, err := skema.SchemaFromYAML(doc)
//	c, err := compiler.Compile(s)
//	v, err := c.ValidateJSON(ctx, data)
//	out, warnings, err := c.SerializeJSON(v, skema.SerializeOpt{ExcludeUnset: true})
package skema

package skema

import (
	"strconv"
	"strings"
)

// DefaultMaxDepth bounds input nesting during validation.
const DefaultMaxDepth = 255

// StrictMode overrides per-schema strictness for a single call.
type StrictMode int

const (
	StrictDefault StrictMode = iota // Use each schema node's own setting.
	StrictOn                        // Force strict coercion everywhere.
	StrictOff                       // Force lax coercion everywhere.
)

// Strictness configures enforcement for JSON text input.
type Strictness struct {
	OnDuplicateKey Severity // Warn or Error (duplicate JSON keys).
}

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// ValidateOpt bundles validation options.
type ValidateOpt struct {
	Strict   StrictMode
	FailFast bool
	// MaxDepth bounds the nesting of containers, records and references
	// visited during validation. Zero means DefaultMaxDepth.
	MaxDepth int
	// Strictness and MaxBytes apply to JSON text input only.
	Strictness Strictness
	MaxBytes   int64
}

// Depth returns the effective depth limit.
func (o ValidateOpt) Depth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// WarningMode controls what happens to serialization fallbacks.
type WarningMode int

const (
	WarnCollect WarningMode = iota // Return warnings alongside the output.
	WarnNone                       // Drop warnings.
	WarnError                      // Turn the first warning into a failure.
)

// SerializeOpt bundles serialization options. Include and Exclude are nested
// field trees; see Fields.
type SerializeOpt struct {
	Include         FieldFilter
	Exclude         FieldFilter
	ExcludeUnset    bool
	ExcludeDefaults bool
	ExcludeNone     bool
	ByAlias         bool
	// Indent pretty-prints JSON output when non-empty.
	Indent   string
	Warnings WarningMode
}

// CompileOpt bundles compile options.
type CompileOpt struct {
	// MaxDepth bounds schema nesting. Zero means DefaultSchemaDepth.
	MaxDepth int
	// Strict is the default strictness for nodes without their own setting.
	Strict bool
}

// DefaultSchemaDepth bounds schema nesting at compile time.
const DefaultSchemaDepth = 1024

// UnionMode selects the union resolution strategy.
type UnionMode string

const (
	UnionSmart       UnionMode = "smart"
	UnionLeftToRight UnionMode = "left_to_right"
)

// ExtraBehavior controls undeclared record keys.
type ExtraBehavior string

const (
	ExtraIgnore ExtraBehavior = "ignore"
	ExtraForbid ExtraBehavior = "forbid"
	ExtraAllow  ExtraBehavior = "allow"
)

// BytesEncoding selects the textual form of bytes.
type BytesEncoding string

const (
	BytesUTF8   BytesEncoding = "utf8"
	BytesBase64 BytesEncoding = "base64"
	BytesHex    BytesEncoding = "hex"
)

// DuplicatePolicy controls repeated set members.
type DuplicatePolicy string

const (
	DuplicatesDedupe DuplicatePolicy = "dedupe"
	DuplicatesForbid DuplicatePolicy = "forbid"
)

// FieldFilter is a nested include/exclude tree. A nil child selects the whole
// subtree; "*" matches every key or index at its level.
type FieldFilter map[string]FieldFilter

// Fields builds a FieldFilter from dotted paths such as "user.name" or
// "items.*.price".
func Fields(paths ...string) FieldFilter {
	root := FieldFilter{}
	for _, p := range paths {
		if p == "" {
			continue
		}
		cur := root
		parts := strings.Split(p, ".")
		for i, part := range parts {
			last := i == len(parts)-1
			child, seen := cur[part]
			if last {
				// a shorter path always wins: it selects the whole subtree
				cur[part] = nil
				break
			}
			if seen && child == nil {
				break
			}
			if child == nil {
				child = FieldFilter{}
				cur[part] = child
			}
			cur = child
		}
	}
	return root
}

// IndexKey renders a sequence index as a filter key.
func IndexKey(i int) string { return strconv.Itoa(i) }

// Package middleware validates JSON request bodies against a compiled schema
// at HTTP boundaries.
package middleware

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/compiler"
)

type ctxKeyValue struct{}

// ContextWithValue attaches a validated value to the context.
func ContextWithValue(ctx context.Context, v skema.Value) context.Context {
	return context.WithValue(ctx, ctxKeyValue{}, v)
}

// ValueFromContext retrieves the value stored by ValidateJSON.
func ValueFromContext(ctx context.Context) (skema.Value, bool) {
	v, ok := ctx.Value(ctxKeyValue{}).(skema.Value)
	return v, ok
}

// DefaultValidateOpt returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Bodies are capped at 1 MiB
func DefaultValidateOpt() skema.ValidateOpt {
	return skema.ValidateOpt{
		Strictness: skema.Strictness{OnDuplicateKey: skema.Error},
		MaxBytes:   1 << 20,
	}
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues skema.Issues) map[string]any {
	out := make([]map[string]any, 0, len(issues))
	for _, it := range issues {
		e := map[string]any{
			"type": it.Code,
			"loc":  it.Path(),
			"msg":  it.Message,
		}
		if len(it.Params) > 0 {
			e["ctx"] = it.Params
		}
		out = append(out, e)
	}
	return map[string]any{"issues": out}
}

// ValidateJSON validates the request body with c and stores the result in
// the request context. Malformed bodies are answered with 400 and failed
// validation with 422, both carrying the ErrorPayload.
func ValidateJSON(c *compiler.Compiled, opt skema.ValidateOpt) func(http.Handler) http.Handler {
	if opt == (skema.ValidateOpt{}) {
		opt = DefaultValidateOpt()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, err := c.ValidateReader(r.Context(), r.Body, opt)
			if err != nil {
				if iss, ok := skema.AsIssues(err); ok {
					status := http.StatusUnprocessableEntity
					if iss[0].Kind == skema.ErrorKindParse {
						status = http.StatusBadRequest
					}
					writeJSON(w, status, ErrorPayload(iss))
					return
				}
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithValue(r.Context(), v)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

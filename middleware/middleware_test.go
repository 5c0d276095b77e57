package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/dsl"
	"github.com/reoring/skema/middleware"
)

func handler(t *testing.T) http.Handler {
	t.Helper()
	c := dsl.MustCompile(dsl.Object("Order").
		Field("sku", dsl.Str().Min(1)).
		Field("qty", dsl.Int().GT(0)).
		Forbid())
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, ok := middleware.ValueFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		qty, _ := v.(*skema.Record).Get("qty")
		w.Header().Set("X-Qty", skema.FormatValue(qty))
		w.WriteHeader(http.StatusNoContent)
	})
	return middleware.ValidateJSON(c, skema.ValidateOpt{})(final)
}

func do(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))
	return rec
}

func TestValidateJSON_StoresValue(t *testing.T) {
	rec := do(handler(t), `{"sku":"a-1","qty":"3"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("X-Qty"))
}

func TestValidateJSON_RejectsInvalidBodies(t *testing.T) {
	h := handler(t)

	rec := do(h, `{"sku":"","qty":0,"x":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var payload struct {
		Issues []struct {
			Type string `json:"type"`
			Loc  string `json:"loc"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	var locs []string
	for _, it := range payload.Issues {
		locs = append(locs, it.Loc)
	}
	assert.Equal(t, []string{"/sku", "/qty", "/x"}, locs)
	assert.Equal(t, skema.CodeExtraForbidden, payload.Issues[2].Type)

	rec = do(h, `{"sku":"a","sku":"b","qty":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), skema.CodeDuplicateKey)

	rec = do(h, `{"sku":"a","qty":1e100000000}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), skema.CodeIntParsingSize)

	rec = do(h, `{"sku":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestErrorPayload_IncludesParams(t *testing.T) {
	iss := skema.Issues{skema.NewIssue(skema.ErrorKindValue, skema.CodeGreaterThan, 0, map[string]any{"gt": 0})}
	iss[0].Loc = skema.Location{skema.FieldLoc("qty")}
	got := middleware.ErrorPayload(iss)["issues"].([]map[string]any)
	require.Len(t, got, 1)
	assert.Equal(t, "/qty", got[0]["loc"])
	assert.Equal(t, map[string]any{"gt": 0}, got[0]["ctx"])
}

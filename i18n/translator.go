package i18n

import (
	"fmt"
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional parameters embedded into the message through
// {name} placeholders (for example, "gt" or "expected").
type Translator interface {
	Message(code string, data map[string]any) string
}

var en = map[string]string{
	"none_required":              "Input should be None",
	"bool_type":                  "Input should be a valid boolean",
	"bool_parsing":               "Input should be a valid boolean, unable to interpret input",
	"int_type":                   "Input should be a valid integer",
	"int_parsing":                "Input should be a valid integer, unable to parse string as an integer",
	"int_parsing_size":           "Unable to parse input as an integer, exceeded maximum size",
	"int_from_float":             "Input should be a valid integer, got a number with a fractional part",
	"float_type":                 "Input should be a valid number",
	"float_parsing":              "Input should be a valid number, unable to parse string as a number",
	"finite_number":              "Input should be a finite number",
	"decimal_type":               "Decimal input should be an integer, float, string or Decimal object",
	"decimal_parsing":            "Input should be a valid decimal",
	"decimal_max_digits":         "Decimal input should have no more than {max_digits} digits in total",
	"decimal_max_places":         "Decimal input should have no more than {decimal_places} decimal places",
	"string_type":                "Input should be a valid string",
	"string_unicode":             "Input should be a valid string, unable to parse raw data as a unicode string",
	"string_too_short":           "String should have at least {min_length} characters",
	"string_too_long":            "String should have at most {max_length} characters",
	"string_pattern_mismatch":    "String should match pattern '{pattern}'",
	"bytes_type":                 "Input should be a valid bytes",
	"bytes_invalid_encoding":     "Data should be valid {encoding}",
	"bytes_too_short":            "Data should have at least {min_length} bytes",
	"bytes_too_long":             "Data should have at most {max_length} bytes",
	"date_type":                  "Input should be a valid date",
	"date_parsing":               "Input should be a valid date in the format YYYY-MM-DD",
	"date_from_datetime_inexact": "Datetimes provided to dates should have zero time",
	"time_type":                  "Input should be a valid time",
	"time_parsing":               "Input should be in a valid time format",
	"datetime_type":              "Input should be a valid datetime",
	"datetime_parsing":           "Input should be a valid datetime",
	"time_delta_type":            "Input should be a valid timedelta",
	"time_delta_parsing":         "Input should be a valid timedelta",
	"uuid_type":                  "UUID input should be a string, bytes or UUID object",
	"uuid_parsing":               "Input should be a valid UUID",
	"uuid_version":               "UUID version {expected_version} expected",
	"url_type":                   "URL input should be a string or URL",
	"url_parsing":                "Input should be a valid URL, {error}",
	"url_too_long":               "URL should have at most {max_length} characters",
	"url_scheme":                 "URL scheme should be {expected_schemes}",
	"literal_error":              "Input should be {expected}",
	"enum":                       "Input should be {expected}",
	"json_type":                  "JSON input should be string or bytes",
	"json_invalid":               "Invalid JSON: {error}",
	"unsupported_type":           "Input of type {got} cannot be represented",
	"greater_than":               "Input should be greater than {gt}",
	"greater_than_equal":         "Input should be greater than or equal to {ge}",
	"less_than":                  "Input should be less than {lt}",
	"less_than_equal":            "Input should be less than or equal to {le}",
	"multiple_of":                "Input should be a multiple of {multiple_of}",
	"list_type":                  "Input should be a valid list",
	"tuple_type":                 "Input should be a valid tuple",
	"set_type":                   "Input should be a valid set",
	"frozen_set_type":            "Input should be a valid frozenset",
	"set_duplicate":              "Set items should be unique",
	"dict_type":                  "Input should be a valid dictionary",
	"model_type":                 "Input should be a valid dictionary or instance of {class_name}",
	"too_short":                  "{field_type} should have at least {min_length} items after validation, not {actual_length}",
	"too_long":                   "{field_type} should have at most {max_length} items after validation, not {actual_length}",
	"missing":                    "Field required",
	"extra_forbidden":            "Extra inputs are not permitted",
	"tagged_union_type":          "Input should be a valid dictionary or object to extract fields from",
	"union_tag_not_found":        "Unable to extract tag using discriminator {discriminator}",
	"union_tag_invalid":          "Input tag '{tag}' found using {discriminator} does not match any of the expected tags: {expected_tags}",
	"rule_failed":                "Value does not satisfy {rule}",
	"custom_error":               "{message}",
	"dependency_unavailable":     "Service {service} is not available",
	"recursion_limit":            "Recursion limit reached",
	"cyclic_reference":           "Circular reference detected (id repeated)",
	"unexpected_value":           "Expected `{expected}` but got `{got}` - serialized value may not be as expected",
	"unsafe_integer":             "Integer {value} is outside the safe JSON range and was written as an exact literal",
	"non_finite_float":           "Non-finite float {value} was written as null",
	"string_fallback":            "{kind} value was written as its canonical string",
	"parse_error":                "parse error",
	"duplicate_key":              "duplicate key",
	"truncated":                  "truncated",
}

var ja = map[string]string{
	"bool_type":              "真偽値である必要があります",
	"int_type":               "整数である必要があります",
	"int_parsing":            "整数として解釈できません",
	"int_parsing_size":       "整数の桁数が上限を超えています",
	"float_type":             "数値である必要があります",
	"string_type":            "文字列である必要があります",
	"string_too_short":       "{min_length} 文字以上である必要があります",
	"string_too_long":        "{max_length} 文字以下である必要があります",
	"greater_than":           "{gt} より大きい必要があります",
	"greater_than_equal":     "{ge} 以上である必要があります",
	"less_than":              "{lt} より小さい必要があります",
	"less_than_equal":        "{le} 以下である必要があります",
	"list_type":              "配列である必要があります",
	"dict_type":              "オブジェクトである必要があります",
	"missing":                "必須プロパティが不足しています",
	"extra_forbidden":        "未知のキーです",
	"duplicate_key":          "キーが重複しています",
	"parse_error":            "解析エラー",
	"truncated":              "打ち切られました",
	"recursion_limit":        "再帰の上限に達しました",
	"cyclic_reference":       "循環参照を検出しました",
	"dependency_unavailable": "サービス {service} が利用できません",
}

// dictTranslator is the built-in dictionary-based Translator. Codes missing
// from a language fall back to English.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]any) string {
	tmpl, ok := "", false
	if t.lang == "ja" {
		tmpl, ok = ja[code]
	}
	if !ok {
		tmpl, ok = en[code]
	}
	if !ok {
		return code
	}
	return Render(tmpl, data)
}

// Render substitutes {name} placeholders with values from data. Unknown
// placeholders are kept verbatim.
func Render(tmpl string, data map[string]any) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	b := &strings.Builder{}
	for {
		i := strings.IndexByte(tmpl, '{')
		if i < 0 {
			b.WriteString(tmpl)
			break
		}
		j := strings.IndexByte(tmpl[i:], '}')
		if j < 0 {
			b.WriteString(tmpl)
			break
		}
		name := tmpl[i+1 : i+j]
		b.WriteString(tmpl[:i])
		if v, ok := data[name]; ok {
			fmt.Fprint(b, v)
		} else {
			b.WriteString(tmpl[i : i+j+1])
		}
		tmpl = tmpl[i+j+1:]
	}
	return b.String()
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]any) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}

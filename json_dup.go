package skema

import (
	"errors"
	"io"

	eng "github.com/reoring/skema/internal/engine"
)

// DuplicateKeys scans JSON text and reports every repeated object key, at
// most limit of them when limit > 0. The document is not decoded; syntax
// errors end the scan with an error.
func DuplicateKeys(data []byte, limit int) (Issues, error) {
	return duplicateKeys(JSONBytes(data), limit)
}

// DuplicateKeysReader is DuplicateKeys over a stream.
func DuplicateKeysReader(r io.Reader, limit int) (Issues, error) {
	return duplicateKeys(JSONReader(r), limit)
}

func duplicateKeys(src Source, limit int) (Issues, error) {
	var out Issues
	enforced := eng.WrapWithEnforcement(engineTokenSource(src), eng.EnforceOptions{
		OnDuplicate: eng.DupWarn,
		IssueSink: func(si eng.SimpleIssue) {
			if si.Code == CodeDuplicateKey {
				out = append(out, parseIssue(si.Code, si.Message, fromEngineSegments(si.Path))...)
			}
		},
	})
	depth := 0
	for limit <= 0 || len(out) < limit {
		tok, err := enforced.NextToken()
		if errors.Is(err, io.EOF) {
			if depth > 0 {
				return out, parseIssue(CodeParseError, "unexpected end of JSON input", nil)
			}
			break
		}
		if err != nil {
			return out, toIssues(err)
		}
		switch tok.Kind {
		case eng.KindBeginObject, eng.KindBeginArray:
			depth++
		case eng.KindEndObject, eng.KindEndArray:
			depth--
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

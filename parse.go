package skema

import (
	"errors"
	"io"

	eng "github.com/reoring/skema/internal/engine"
)

// ParseJSON decodes JSON text into host values: *Object for objects, []any for
// arrays, Number for numbers, plus string, bool and nil. Failures are Issues
// with ErrorKindParse (or ErrorKindRecursionLimit for excessive nesting).
func ParseJSON(data []byte, opts ...ValidateOpt) (any, error) {
	opt := lastOpt(opts)
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, parseIssue(CodeTruncated, "max bytes exceeded", nil)
	}
	return DecodeSource(JSONBytes(data), opt)
}

// ParseJSONReader is ParseJSON over a stream. When MaxBytes is set the input
// is capped before decoding.
func ParseJSONReader(r io.Reader, opts ...ValidateOpt) (any, error) {
	opt := lastOpt(opts)
	if opt.MaxBytes > 0 {
		lr := io.LimitReader(r, opt.MaxBytes+1)
		data, err := io.ReadAll(lr)
		if err != nil {
			return nil, parseIssue(CodeParseError, err.Error(), nil)
		}
		if int64(len(data)) > opt.MaxBytes {
			return nil, parseIssue(CodeTruncated, "max bytes exceeded", nil)
		}
		return DecodeSource(JSONBytes(data), opt)
	}
	return DecodeSource(JSONReader(r), opt)
}

// DecodeSource consumes exactly one JSON value from src with duplicate-key
// and depth enforcement applied.
func DecodeSource(src Source, opt ValidateOpt) (any, error) {
	enforced := eng.WrapWithEnforcement(engineTokenSource(src), eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.Depth(),
		MaxBytes:    opt.MaxBytes,
		FailFast:    opt.FailFast,
	})
	tok, err := enforced.NextToken()
	if err != nil {
		return nil, toIssues(err)
	}
	v, err := decodeValue(enforced, tok)
	if err != nil {
		return nil, toIssues(err)
	}
	if _, err := enforced.NextToken(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, toIssues(err)
		}
		return nil, parseIssue(CodeParseError, "unexpected data after top-level value", nil)
	}
	return v, nil
}

func decodeValue(src eng.TokenSource, tok eng.Token) (any, error) {
	switch tok.Kind {
	case eng.KindBeginObject:
		obj := NewObject()
		for {
			kt, err := src.NextToken()
			if err != nil {
				return nil, err
			}
			if kt.Kind == eng.KindEndObject {
				return obj, nil
			}
			if kt.Kind != eng.KindKey {
				return nil, io.ErrUnexpectedEOF
			}
			vt, err := src.NextToken()
			if err != nil {
				return nil, err
			}
			v, err := decodeValue(src, vt)
			if err != nil {
				return nil, err
			}
			obj.Set(kt.String, v)
		}
	case eng.KindBeginArray:
		arr := []any{}
		for {
			t, err := src.NextToken()
			if err != nil {
				return nil, err
			}
			if t.Kind == eng.KindEndArray {
				return arr, nil
			}
			v, err := decodeValue(src, t)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
	case eng.KindString:
		return tok.String, nil
	case eng.KindNumber:
		return Number(tok.Number), nil
	case eng.KindBool:
		return tok.Bool, nil
	case eng.KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func lastOpt(opts []ValidateOpt) ValidateOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return ValidateOpt{}
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}

func parseIssue(code, msg string, loc Location) Issues {
	kind := ErrorKindParse
	if code == CodeRecursionLimit {
		kind = ErrorKindRecursionLimit
	}
	return Issues{{Kind: kind, Code: code, Loc: loc, Message: msg}}
}

func toIssues(err error) Issues {
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return parseIssue(ie.Code, ie.Message, fromEngineSegments(ie.Path))
	}
	if errors.Is(err, io.EOF) {
		return parseIssue(CodeParseError, "unexpected end of JSON input", nil)
	}
	return parseIssue(CodeParseError, err.Error(), nil)
}

func fromEngineSegments(segs []eng.Segment) Location {
	if len(segs) == 0 {
		return nil
	}
	loc := make(Location, len(segs))
	for i, s := range segs {
		if s.IsIndex {
			loc[i] = Index(s.Index)
		} else {
			loc[i] = Key(s.Key)
		}
	}
	return loc
}

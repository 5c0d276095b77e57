package engine

// Enforcement wrapper for TokenSource to apply duplicate key handling,
// max depth checks, and max bytes truncation in a streaming fashion.

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink is an optional callback to receive lightweight issues when in collect mode.
	// If nil, issues are not reported unless they are fatal.
	IssueSink func(SimpleIssue)
	// FailFast stops at the first issue encountered (duplicate/depth/bytes), returning an error immediately.
	FailFast bool
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	pendingKey   string
	nextIndex    int
	// seg locates this container inside its parent; root containers have none.
	seg    Segment
	hasSeg bool
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// WrapWithEnforcement returns a TokenSource that enforces duplicate key policy,
// maximum nesting depth, and maximum consumed bytes.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	seg, hasSeg := e.segmentFor(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := frame{kind: kindArray, seg: seg, hasSeg: hasSeg}
		if tok.Kind == KindBeginObject {
			f = frame{kind: kindObject, keys: make(map[string]struct{}), expectingKey: true, seg: seg, hasSeg: hasSeg}
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, e.fail(SimpleIssue{Code: "recursion_limit", Path: e.path(), Message: "max depth exceeded"})
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				if e.opt.OnDuplicate != DupIgnore {
					if _, ok := top.keys[tok.String]; ok {
						si := SimpleIssue{Code: "duplicate_key", Path: append(e.path(), seg), Message: "key '" + tok.String + "' duplicated"}
						if e.opt.OnDuplicate == DupError || e.opt.FailFast {
							return Token{}, e.fail(si)
						}
						if e.opt.IssueSink != nil {
							e.opt.IssueSink(si)
						}
					}
				}
				top.keys[tok.String] = struct{}{}
				top.expectingKey = false
				top.pendingKey = tok.String
			}
		}
	case KindString, KindNumber, KindBool, KindNull:
		e.valueDone()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off >= 0 && off > e.opt.MaxBytes {
			return Token{}, e.fail(SimpleIssue{Code: "truncated", Path: e.path(), Message: "max bytes exceeded"})
		}
	}

	return tok, nil
}

func (e *enforcingTokenSource) fail(si SimpleIssue) error {
	if e.opt.IssueSink != nil {
		e.opt.IssueSink(si)
	}
	return IssueError{si}
}

// segmentFor locates tok inside the current container and advances array
// indexes for value-starting tokens.
func (e *enforcingTokenSource) segmentFor(tok Token) (Segment, bool) {
	n := len(e.stack)
	if n == 0 {
		return Segment{}, false
	}
	top := &e.stack[n-1]
	switch tok.Kind {
	case KindKey:
		return Segment{Key: tok.String}, true
	case KindEndObject, KindEndArray:
		return Segment{}, false
	}
	if top.kind == kindArray {
		seg := Segment{Index: top.nextIndex, IsIndex: true}
		top.nextIndex++
		return seg, true
	}
	return Segment{Key: top.pendingKey}, true
}

// valueDone marks the pending object member as complete.
func (e *enforcingTokenSource) valueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
			top.pendingKey = ""
		}
	}
}

func (e *enforcingTokenSource) path() []Segment {
	out := make([]Segment, 0, len(e.stack))
	for _, f := range e.stack {
		if f.hasSeg {
			out = append(out, f.seg)
		}
	}
	return out
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }

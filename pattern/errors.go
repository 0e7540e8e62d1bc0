package pattern

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoGraph is wrapped by every PreconditionError.
var ErrNoGraph = errors.New("no dependency graph present")

// PreconditionError reports a graph operation attempted on a sentence that
// carries no dependency graph.
type PreconditionError struct {
	Op       string // operation that needed the graph, e.g. "hop <amod"
	Sentence string // sentence identifier
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Sentence, ErrNoGraph)
}

func (e *PreconditionError) Unwrap() error { return ErrNoGraph }

// ParseError reports malformed pattern text.
type ParseError struct {
	Text     string // the expression or line being parsed
	Field    string // field name, set when parsing a pattern block
	Line     int    // 1-based line in the pattern block, 0 if unknown
	Pos      int    // byte offset of the problem within Text
	Fragment string // offending fragment of Text
	Msg      string
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&sb, "field %q: ", e.Field)
	}
	sb.WriteString(e.Msg)
	fmt.Fprintf(&sb, " at position %d", e.Pos)
	if e.Fragment != "" {
		fmt.Fprintf(&sb, " near %q", e.Fragment)
	}
	fmt.Fprintf(&sb, " in %q", e.Text)
	return sb.String()
}

func newParseError(text string, pos int, fragment, format string, args ...any) *ParseError {
	return &ParseError{
		Text:     text,
		Pos:      pos,
		Fragment: fragment,
		Msg:      fmt.Sprintf(format, args...),
	}
}

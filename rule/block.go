package rule

import (
	"strings"

	"github.com/gnolang/depmatch/pattern"
)

// Field is one "name: expression" line of a pattern block.
type Field struct {
	Name string
	Expr string
	Line int // 1-based
}

// SplitFields splits a pattern block into fields, one per physical line.
// Each line is split on its first colon. Blank lines and lines starting
// with '#' are skipped. A line without a colon, with a name that is not a
// bare word, or with an empty expression is rejected.
func SplitFields(text string) ([]Field, error) {
	var fields []Field
	for n, raw := range strings.Split(text, "\n") {
		lineNo := n + 1
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, expr, found := strings.Cut(line, ":")
		if !found {
			return nil, lineError(line, lineNo, len(line), line, "expected \"name: expression\"")
		}

		name = strings.TrimSpace(name)
		if !isWord(name) {
			return nil, lineError(line, lineNo, 0, name, "field name must be a bare word")
		}

		expr = strings.TrimSpace(expr)
		if expr == "" {
			err := lineError(line, lineNo, len(line), "", "empty expression")
			err.Field = name
			return nil, err
		}

		fields = append(fields, Field{Name: name, Expr: expr, Line: lineNo})
	}
	return fields, nil
}

func lineError(line string, lineNo, pos int, fragment, msg string) *pattern.ParseError {
	return &pattern.ParseError{
		Text:     line,
		Line:     lineNo,
		Pos:      pos,
		Fragment: fragment,
		Msg:      msg,
	}
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')) {
			return false
		}
	}
	return true
}

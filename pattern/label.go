package pattern

import (
	"regexp"
	"strings"

	"github.com/gnolang/depmatch/depgraph"
)

// LabelMatcher decides whether an edge label satisfies a hop. The variant
// set is closed: ExactLabel and RegexLabel.
type LabelMatcher interface {
	// Match reports whether label satisfies the rule.
	Match(label string) bool
	// Matches returns the neighbor index of every edge whose label
	// satisfies the rule, in edge order.
	Matches(edges []depgraph.Edge) []int
	// String renders the rule in pattern syntax.
	String() string

	isLabelMatcher()
}

var (
	_ LabelMatcher = ExactLabel{}
	_ LabelMatcher = (*RegexLabel)(nil)
)

// ExactLabel matches labels equal to Label (case-sensitive).
type ExactLabel struct {
	Label string
}

func (l ExactLabel) Match(label string) bool { return label == l.Label }

func (l ExactLabel) Matches(edges []depgraph.Edge) []int {
	return matchEdges(l, edges)
}

func (l ExactLabel) String() string { return l.Label }

func (ExactLabel) isLabelMatcher() {}

// RegexLabel matches labels in which Regexp finds a match anywhere.
type RegexLabel struct {
	Regexp *regexp.Regexp
}

// NewRegexLabel compiles expr into a RegexLabel.
func NewRegexLabel(expr string) (*RegexLabel, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &RegexLabel{Regexp: re}, nil
}

func (l *RegexLabel) Match(label string) bool { return l.Regexp.MatchString(label) }

func (l *RegexLabel) Matches(edges []depgraph.Edge) []int {
	return matchEdges(l, edges)
}

// String renders the expression between slashes, escaping bare slashes.
func (l *RegexLabel) String() string {
	return "/" + escapeSlashes(l.Regexp.String()) + "/"
}

func (*RegexLabel) isLabelMatcher() {}

func matchEdges(l LabelMatcher, edges []depgraph.Edge) []int {
	var out []int
	for _, e := range edges {
		if l.Match(e.Label) {
			out = append(out, e.Index)
		}
	}
	return out
}

// escapeSlashes turns every unescaped '/' into "\/", leaving existing
// escape sequences untouched.
func escapeSlashes(expr string) string {
	var sb strings.Builder
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '\\' && i+1 < len(expr):
			sb.WriteByte(c)
			sb.WriteByte(expr[i+1])
			i++
		case c == '/':
			sb.WriteString(`\/`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

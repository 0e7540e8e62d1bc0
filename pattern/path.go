package pattern

import (
	"strings"

	"github.com/gnolang/depmatch/depgraph"
)

// Path runs First and feeds its result into Then.
type Path struct {
	First Matcher
	Then  Matcher
}

// NewPath folds matchers left-associatively: NewPath(a, b, c) is
// Path{Path{a, b}, c}. A single matcher is returned unchanged.
func NewPath(ms ...Matcher) Matcher {
	if len(ms) == 0 {
		panic("pattern: NewPath needs at least one matcher")
	}
	acc := ms[0]
	for _, m := range ms[1:] {
		acc = &Path{First: acc, Then: m}
	}
	return acc
}

func (p *Path) FindFrom(s *depgraph.Sentence, tok int) (int, bool, error) {
	mid, ok, err := p.First.FindFrom(s, tok)
	if err != nil || !ok {
		return -1, false, err
	}
	return p.Then.FindFrom(s, mid)
}

func (p *Path) String() string {
	hops := Hops(p)
	parts := make([]string, len(hops))
	for i, h := range hops {
		parts[i] = h.String()
	}
	return strings.Join(parts, " ")
}

func (*Path) isMatcher() {}

// Hops flattens a matcher tree into its hops, in evaluation order.
func Hops(m Matcher) []*Hop {
	switch v := m.(type) {
	case *Hop:
		return []*Hop{v}
	case *Path:
		return append(Hops(v.First), Hops(v.Then)...)
	default:
		return nil
	}
}

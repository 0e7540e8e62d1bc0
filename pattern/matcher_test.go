package pattern

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/depmatch/depgraph"
)

// John gave Mary a book, with an extra "conj" pair hanging off "book"
// so that ambiguity can be exercised.
func gaveSentence() *depgraph.Sentence {
	words := []string{"John", "gave", "Mary", "a", "book", "and", "pen", "pencil"}
	g := depgraph.MustGraph(len(words),
		depgraph.Arc{Head: 1, Dependent: 0, Label: "nsubj"},
		depgraph.Arc{Head: 1, Dependent: 2, Label: "iobj"},
		depgraph.Arc{Head: 1, Dependent: 4, Label: "dobj"},
		depgraph.Arc{Head: 4, Dependent: 3, Label: "det"},
		depgraph.Arc{Head: 4, Dependent: 6, Label: "conj"},
		depgraph.Arc{Head: 4, Dependent: 7, Label: "conj"},
		depgraph.Arc{Head: 6, Dependent: 5, Label: "cc"},
	)
	return &depgraph.Sentence{ID: "gave", Words: words, Graph: g}
}

func TestLabelMatchers(t *testing.T) {
	t.Parallel()
	edges := []depgraph.Edge{
		{Index: 0, Label: "nsubj"},
		{Index: 5, Label: "nsubjpass"},
		{Index: 4, Label: "dobj"},
		{Index: 2, Label: "NSUBJ"},
	}

	tests := []struct {
		name     string
		label    LabelMatcher
		expected []int
	}{
		{name: "exact", label: ExactLabel{Label: "nsubj"}, expected: []int{0}},
		{name: "exact is case sensitive", label: ExactLabel{Label: "Dobj"}, expected: nil},
		{name: "anchored regex", label: &RegexLabel{Regexp: regexp.MustCompile("^nsubj")}, expected: []int{0, 5}},
		{name: "unanchored regex", label: &RegexLabel{Regexp: regexp.MustCompile("obj")}, expected: []int{4}},
		{name: "regex case insensitive flag", label: &RegexLabel{Regexp: regexp.MustCompile("(?i)^nsubj$")}, expected: []int{0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.label.Matches(edges))
		})
	}
}

func TestRegexLabelPrefix(t *testing.T) {
	t.Parallel()
	label, err := NewRegexLabel("^nsubj")
	require.NoError(t, err)

	assert.True(t, label.Match("nsubj"))
	assert.True(t, label.Match("nsubjpass"))
	assert.False(t, label.Match("dobj"))
	assert.Equal(t, "/^nsubj/", label.String())

	_, err = NewRegexLabel("(")
	assert.Error(t, err)
}

func TestHopFindFrom(t *testing.T) {
	t.Parallel()
	s := gaveSentence()

	tests := []struct {
		name   string
		hop    *Hop
		from   int
		want   int
		wantOK bool
	}{
		{name: "single outgoing edge", hop: Out("dobj"), from: 1, want: 4, wantOK: true},
		{name: "single incoming edge", hop: In("dobj"), from: 4, want: 1, wantOK: true},
		{name: "no such edge", hop: Out("amod"), from: 1, want: -1},
		{name: "wrong direction", hop: In("nsubj"), from: 1, want: -1},
		{name: "two matching edges are ambiguous", hop: Out("conj"), from: 4, want: -1},
		{name: "regex with one candidate", hop: NewHop(&RegexLabel{Regexp: regexp.MustCompile("^d")}, Outgoing), from: 1, want: 4, wantOK: true},
		{name: "regex with two candidates", hop: NewHop(&RegexLabel{Regexp: regexp.MustCompile("obj$")}, Outgoing), from: 1, want: -1},
		{name: "out of range token", hop: Out("dobj"), from: 99, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok, err := tt.hop.FindFrom(s, tt.from)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHopWithoutGraph(t *testing.T) {
	t.Parallel()
	s := &depgraph.Sentence{ID: "raw#1", Words: []string{"John", "gave"}}

	_, ok, err := In("amod").FindFrom(s, 1)
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoGraph))

	var perr *PreconditionError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "raw#1", perr.Sentence)
	assert.Equal(t, "hop <amod", perr.Op)
	assert.Equal(t, "hop <amod on raw#1: no dependency graph present", err.Error())
}

func TestHopWithNilGraphPointer(t *testing.T) {
	t.Parallel()
	s := &depgraph.Sentence{ID: "raw#2", Words: []string{"John", "gave"}, Graph: (*depgraph.Graph)(nil)}

	for _, h := range []*Hop{Out("nsubj"), In("amod")} {
		_, ok, err := h.FindFrom(s, 1)
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrNoGraph)
	}
}

func TestPathFindFrom(t *testing.T) {
	t.Parallel()
	s := gaveSentence()

	tests := []struct {
		name   string
		path   Matcher
		from   int
		want   int
		wantOK bool
	}{
		{name: "single hop path", path: NewPath(Out("dobj")), from: 1, want: 4, wantOK: true},
		{name: "two hops", path: NewPath(Out("dobj"), Out("det")), from: 1, want: 3, wantOK: true},
		{name: "up and down", path: NewPath(In("nsubj"), Out("iobj")), from: 0, want: 2, wantOK: true},
		{name: "fails at first hop", path: NewPath(Out("amod"), Out("det")), from: 1, want: -1},
		{name: "fails at last hop", path: NewPath(Out("dobj"), Out("amod")), from: 1, want: -1},
		{name: "ambiguous middle hop", path: NewPath(Out("dobj"), Out("conj"), Out("cc")), from: 1, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok, err := tt.path.FindFrom(s, tt.from)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathChainingEquivalence(t *testing.T) {
	t.Parallel()
	s := gaveSentence()

	parsed, err := ParsePath("<nsubj dobj det")
	require.NoError(t, err)

	chain := func(tok int) (int, bool) {
		for _, h := range []*Hop{In("nsubj"), Out("dobj"), Out("det")} {
			next, ok, err := h.FindFrom(s, tok)
			require.NoError(t, err)
			if !ok {
				return -1, false
			}
			tok = next
		}
		return tok, true
	}

	for tok := range s.Words {
		got, ok, err := parsed.FindFrom(s, tok)
		require.NoError(t, err)
		want, wantOK := chain(tok)
		assert.Equal(t, wantOK, ok, "token %d", tok)
		assert.Equal(t, want, got, "token %d", tok)
	}

	got, ok, err := parsed.FindFrom(s, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, got)
}

func TestPathPropagatesPrecondition(t *testing.T) {
	t.Parallel()
	s := &depgraph.Sentence{Words: []string{"a"}}
	_, _, err := NewPath(Out("x"), Out("y")).FindFrom(s, 0)
	assert.ErrorIs(t, err, ErrNoGraph)
}

func TestNewPathPanicsOnEmpty(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewPath() })
}

func TestDirectionString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "outgoing", Outgoing.String())
	assert.Equal(t, "incoming", Incoming.String())
	assert.Equal(t, "unknown", Direction(7).String())
	assert.Equal(t, ">", Outgoing.Prefix())
	assert.Equal(t, "<", Incoming.Prefix())
}

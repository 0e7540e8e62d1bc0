package depgraph

import "fmt"

// Sentence is an already-parsed sentence: its word tokens and, when the
// parser produced one, the labeled dependency graph over those tokens.
type Sentence struct {
	ID     string   // source identifier, e.g. "corpus.conllu#3"
	Words  []string // word tokens, index 0..n-1
	Lemmas []string // optional, same length as Words when present
	Tags   []string // optional, same length as Words when present

	// Graph is nil when the sentence was never dependency-parsed.
	Graph DependencyGraph
}

// NewSentence returns a sentence over words with the given graph.
func NewSentence(words []string, graph DependencyGraph) *Sentence {
	return &Sentence{Words: words, Graph: graph}
}

// Len reports the number of tokens.
func (s *Sentence) Len() int { return len(s.Words) }

// Word returns the token at index i, or "" when i is out of range.
func (s *Sentence) Word(i int) string {
	if i < 0 || i >= len(s.Words) {
		return ""
	}
	return s.Words[i]
}

// HasGraph reports whether the sentence carries a usable dependency
// graph. A nil *Graph stored in the interface counts as no graph.
func (s *Sentence) HasGraph() bool {
	if s.Graph == nil {
		return false
	}
	if g, ok := s.Graph.(*Graph); ok && g == nil {
		return false
	}
	return true
}

// Name returns a human readable identifier for error messages.
func (s *Sentence) Name() string {
	if s.ID != "" {
		return s.ID
	}
	return fmt.Sprintf("sentence(%d tokens)", len(s.Words))
}

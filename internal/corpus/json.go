package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/gnolang/depmatch/depgraph"
)

// jsonToken is a word of a sentence as emitted by spaCy-like pipelines.
type jsonToken struct {
	Text  string `json:"text"`
	Lemma string `json:"lemma"`
	Tag   string `json:"tag"`
	Dep   string `json:"dep"`

	// Head is the 0-based index of the token's head. A token that is its
	// own head is the root. Nil means the token is unattached.
	Head *int `json:"head"`
}

type jsonSentence struct {
	ID     string      `json:"id"`
	Tokens []jsonToken `json:"tokens"`

	// Graph set to false marks a sentence that was never parsed.
	Graph *bool `json:"graph"`
}

// ReadJSON reads either a single sentence object or an array of them:
//
//	{"id": "s1", "tokens": [{"text": "John", "head": 1, "dep": "nsubj"}, ...]}
func ReadJSON(r io.Reader, name string) ([]*depgraph.Sentence, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var docs []jsonSentence
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return nil, nil
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	default:
		var doc jsonSentence
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		docs = []jsonSentence{doc}
	}

	sentences := make([]*depgraph.Sentence, 0, len(docs))
	for i, doc := range docs {
		s, err := buildJSONSentence(doc)
		if err != nil {
			return nil, fmt.Errorf("%s: sentence %d: %w", name, i+1, err)
		}
		id := doc.ID
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		s.ID = name + "#" + id
		sentences = append(sentences, s)
	}
	return sentences, nil
}

func buildJSONSentence(doc jsonSentence) (*depgraph.Sentence, error) {
	n := len(doc.Tokens)
	s := &depgraph.Sentence{
		Words:  make([]string, n),
		Lemmas: make([]string, n),
		Tags:   make([]string, n),
	}

	var arcs []depgraph.Arc
	for i, tok := range doc.Tokens {
		s.Words[i] = tok.Text
		s.Lemmas[i] = tok.Lemma
		s.Tags[i] = tok.Tag
		if tok.Head == nil || *tok.Head == i {
			continue
		}
		arcs = append(arcs, depgraph.Arc{Head: *tok.Head, Dependent: i, Label: tok.Dep})
	}

	if doc.Graph != nil && !*doc.Graph {
		return s, nil
	}
	g, err := depgraph.NewGraph(n, arcs)
	if err != nil {
		return nil, err
	}
	s.Graph = g
	return s, nil
}

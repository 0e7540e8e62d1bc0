package corpus

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gnolang/depmatch/depgraph"
)

const (
	fieldSeparator = "\t"
	minFields      = 8
	emptyField     = "_"
)

// column indices shared by CoNLL-X and CoNLL-U
const (
	colID = iota
	colForm
	colLemma
	colPosTag
	_ // XPOS / POSTAG
	_ // FEATS
	colHead
	colDepRel
)

// row is a single parsed row of a CoNLL data set
type row struct {
	id     int
	form   string
	lemma  string
	tag    string
	head   int // -1 when the column is "_"
	deprel string
}

// ReadCoNLL reads CoNLL-X or CoNLL-U sentences. Sentences are separated
// by blank lines; '#' comment lines are skipped except "# sent_id = ...",
// which names the following sentence. Multi-word token ranges (1-2) and
// empty nodes (1.1) are skipped. A sentence whose HEAD column is "_" on
// every row has no dependency graph.
func ReadCoNLL(r io.Reader, name string) ([]*depgraph.Sentence, error) {
	var (
		sentences []*depgraph.Sentence
		rows      []row
		sentID    string
		lineNo    int
	)

	flush := func() error {
		if len(rows) == 0 {
			sentID = ""
			return nil
		}
		s, err := buildCoNLLSentence(rows)
		if err != nil {
			return fmt.Errorf("%s: sentence ending at line %d: %w", name, lineNo, err)
		}
		if sentID == "" {
			sentID = strconv.Itoa(len(sentences) + 1)
		}
		s.ID = name + "#" + sentID
		sentences = append(sentences, s)
		rows = nil
		sentID = ""
		return nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			if key, value, ok := strings.Cut(strings.TrimPrefix(line, "#"), "="); ok && strings.TrimSpace(key) == "sent_id" {
				sentID = strings.TrimSpace(value)
			}
			continue
		}

		record := strings.Split(line, fieldSeparator)
		if len(record) < minFields {
			return nil, fmt.Errorf("%s:%d: expected at least %d tab-separated fields, got %d", name, lineNo, minFields, len(record))
		}
		if strings.ContainsAny(record[colID], "-.") {
			continue
		}

		rw, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
		if rw.id != len(rows)+1 {
			return nil, fmt.Errorf("%s:%d: token id %d out of sequence, expected %d", name, lineNo, rw.id, len(rows)+1)
		}
		rows = append(rows, rw)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return sentences, nil
}

func parseRow(record []string) (row, error) {
	var rw row

	id, err := strconv.Atoi(record[colID])
	if err != nil {
		return rw, fmt.Errorf("error parsing ID field (%s): %w", record[colID], err)
	}
	rw.id = id

	rw.form = record[colForm]
	if rw.form == "" {
		return rw, fmt.Errorf("empty FORM field")
	}
	rw.lemma = parseString(record[colLemma])
	rw.tag = parseString(record[colPosTag])

	rw.head = -1
	if record[colHead] != emptyField {
		head, err := strconv.Atoi(record[colHead])
		if err != nil {
			return rw, fmt.Errorf("error parsing HEAD field (%s): %w", record[colHead], err)
		}
		rw.head = head
	}
	rw.deprel = parseString(record[colDepRel])
	return rw, nil
}

func buildCoNLLSentence(rows []row) (*depgraph.Sentence, error) {
	s := &depgraph.Sentence{
		Words:  make([]string, len(rows)),
		Lemmas: make([]string, len(rows)),
		Tags:   make([]string, len(rows)),
	}

	// HEAD is either filled on every row or on none
	var arcs []depgraph.Arc
	unattached := 0
	for i, rw := range rows {
		s.Words[i] = rw.form
		s.Lemmas[i] = rw.lemma
		s.Tags[i] = rw.tag
		if rw.head < 0 {
			unattached++
			continue
		}
		if rw.head == 0 {
			continue // root
		}
		arcs = append(arcs, depgraph.Arc{Head: rw.head - 1, Dependent: i, Label: rw.deprel})
	}

	switch unattached {
	case len(rows):
		return s, nil
	case 0:
	default:
		first := 0
		for rows[first].head >= 0 {
			first++
		}
		return nil, fmt.Errorf("token %d has no HEAD while other tokens of the sentence do", rows[first].id)
	}
	g, err := depgraph.NewGraph(len(rows), arcs)
	if err != nil {
		return nil, err
	}
	s.Graph = g
	return s, nil
}

func parseString(value string) string {
	if value == emptyField {
		return ""
	}
	return value
}

package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/depmatch/depgraph"
	"github.com/gnolang/depmatch/internal/metrics"
	"github.com/gnolang/depmatch/pattern"
	"github.com/gnolang/depmatch/rule"
	"github.com/gnolang/depmatch/ruleset"
)

type mockMatcher struct {
	mock.Mock
}

func (m *mockMatcher) Match(s *depgraph.Sentence) ([]ruleset.Mention, error) {
	args := m.Called(s.ID)
	return args.Get(0).([]ruleset.Mention), args.Error(1)
}

const gaveJSON = `[
  {"id": "s1", "tokens": [
    {"text": "John", "head": 1, "dep": "nsubj"},
    {"text": "gave", "head": 1, "dep": "root"},
    {"text": "Mary", "head": 1, "dep": "iobj"},
    {"text": "a", "head": 4, "dep": "det"},
    {"text": "book", "head": 1, "dep": "dobj"}
  ]},
  {"id": "s2", "tokens": [
    {"text": "Sue", "head": 1, "dep": "nsubj"},
    {"text": "gave", "head": 1, "dep": "root"}
  ]}
]`

const rulesYAML = `rules:
  - name: giving
    pattern: |
      trigger: gave
      subject: nsubj
      object: dobj
  - name: book-owner
    pattern: |
      trigger: book
      owner: <dobj nsubj
`

func counterID() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("m-%d", n)
	}
}

func createCorpus(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestProcessFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	createCorpus(t, dir, map[string]string{"gave.json": gaveJSON})
	path := filepath.Join(dir, "gave.json")

	m := new(mockMatcher)
	m.On("Match", path+"#s1").Return([]ruleset.Mention{
		{Rule: "giving", Trigger: 1, Args: rule.Match{"subject": 0, "object": 4}},
	}, nil)
	m.On("Match", path+"#s2").Return([]ruleset.Mention(nil), nil)

	records, err := ProcessFile(context.Background(), m, path, Options{NewID: counterID()})
	require.NoError(t, err)
	m.AssertExpectations(t)

	assert.Equal(t, []Record{{
		ID:          "m-1",
		File:        path,
		Sentence:    path + "#s1",
		Ordinal:     0,
		Rule:        "giving",
		Trigger:     1,
		TriggerWord: "gave",
		Args: []Arg{
			{Role: "object", Index: 4, Word: "book"},
			{Role: "subject", Index: 0, Word: "John"},
		},
		Text:  "John gave Mary a book",
		Words: []string{"John", "gave", "Mary", "a", "book"},
	}}, records)
}

func TestProcessFileMatcherError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	createCorpus(t, dir, map[string]string{"gave.json": gaveJSON})
	path := filepath.Join(dir, "gave.json")

	m := new(mockMatcher)
	m.On("Match", path+"#s1").Return([]ruleset.Mention(nil), pattern.ErrNoGraph)

	_, err := ProcessFile(context.Background(), m, path, Options{})
	assert.ErrorIs(t, err, pattern.ErrNoGraph)
}

func TestProcessPaths(t *testing.T) {
	t.Parallel()
	logger, err := zap.NewProduction()
	require.NoError(t, err)

	dir := t.TempDir()
	createCorpus(t, dir, map[string]string{
		"b/gave.json": gaveJSON,
		"a/gave.conllu": "# sent_id = c1\n" +
			"1\tJohn\tJohn\tPROPN\tNNP\t_\t2\tnsubj\t_\t_\n" +
			"2\tgave\tgive\tVERB\tVBD\t_\t0\troot\t_\t_\n" +
			"3\tbook\tbook\tNOUN\tNN\t_\t2\tdobj\t_\t_\n",
		"notes.txt": "not a corpus file",
	})

	rs, err := ruleset.Parse([]byte(rulesYAML), rule.ModeAny)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	met := metrics.New(reg)

	records, err := ProcessPaths(context.Background(), logger, rs, []string{dir}, Options{
		Workers: 2,
		Metrics: met,
	})
	require.NoError(t, err)

	type key struct {
		file, rule string
		ordinal    int
		trigger    int
	}
	var got []key
	for _, r := range records {
		assert.Regexp(t, `^m-[0-9a-f]{8}$`, r.ID)
		got = append(got, key{filepath.Base(filepath.Dir(r.File)), r.Rule, r.Ordinal, r.Trigger})
	}
	assert.Equal(t, []key{
		{"a", "giving", 0, 1},
		{"a", "book-owner", 0, 2},
		{"b", "giving", 0, 1},
		{"b", "book-owner", 0, 4},
		{"b", "giving", 1, 1},
	}, got)

	last := records[len(records)-1]
	assert.Equal(t, []Arg{{Role: "subject", Index: 0, Word: "Sue"}}, last.Args)

	assert.Equal(t, float64(3), testutil.ToFloat64(met.Sentences))
	assert.Equal(t, float64(3), testutil.ToFloat64(met.Mentions.WithLabelValues("giving")))
	assert.Equal(t, float64(2), testutil.ToFloat64(met.Mentions.WithLabelValues("book-owner")))
}

func TestProcessPathsSingleFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	createCorpus(t, dir, map[string]string{"gave.json": gaveJSON})
	path := filepath.Join(dir, "gave.json")

	m := new(mockMatcher)
	m.On("Match", mock.Anything).Return([]ruleset.Mention(nil), nil)

	records, err := ProcessPaths(context.Background(), nil, m, []string{path}, Options{})
	require.NoError(t, err)
	assert.Empty(t, records)
	m.AssertNumberOfCalls(t, "Match", 2)
}

func TestProcessPathsErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := ProcessPaths(context.Background(), zap.NewNop(), new(mockMatcher),
		[]string{filepath.Join(dir, "missing")}, Options{})
	assert.ErrorContains(t, err, "error accessing")

	createCorpus(t, dir, map[string]string{"raw.json": `{"id": "r", "graph": false, "tokens": [{"text": "gave"}]}`})
	rs, err := ruleset.Parse([]byte(rulesYAML), rule.ModeAny)
	require.NoError(t, err)

	_, err = ProcessPaths(context.Background(), zap.NewNop(), rs, []string{dir}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pattern.ErrNoGraph))
}

func TestProcessPathsCanceled(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	createCorpus(t, dir, map[string]string{"gave.json": gaveJSON})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ProcessPaths(ctx, zap.NewNop(), new(mockMatcher), []string{dir}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	createCorpus(t, dir, map[string]string{
		"x.conll":       "",
		"nested/y.json": "[]",
		"nested/z.md":   "",
	})

	files, err := CollectFiles([]string{dir, filepath.Join(dir, "nested", "z.md")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "x.conll"),
		filepath.Join(dir, "nested", "y.json"),
	}, files)
}

func TestSortRecords(t *testing.T) {
	t.Parallel()
	records := []Record{
		{File: "b", Ordinal: 0, Trigger: 0, Rule: "a"},
		{File: "a", Ordinal: 1, Trigger: 0, Rule: "a"},
		{File: "a", Ordinal: 0, Trigger: 2, Rule: "a"},
		{File: "a", Ordinal: 0, Trigger: 1, Rule: "z"},
		{File: "a", Ordinal: 0, Trigger: 1, Rule: "m"},
	}
	SortRecords(records)

	var got []string
	for _, r := range records {
		got = append(got, fmt.Sprintf("%s/%d/%d/%s", r.File, r.Ordinal, r.Trigger, r.Rule))
	}
	assert.Equal(t, []string{"a/0/1/m", "a/0/1/z", "a/0/2/a", "a/1/0/a", "b/0/0/a"}, got)
}

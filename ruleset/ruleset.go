package ruleset

import (
	"fmt"
	"os"

	"github.com/tidwall/btree"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/depmatch/depgraph"
	"github.com/gnolang/depmatch/rule"
)

// CurrentVersion is the only rule file version understood.
const CurrentVersion = 1

// File is the YAML layout of a rule file.
//
//	version: 1
//	mode: any
//	rules:
//	  - name: giving
//	    pattern: |
//	      trigger: gave
//	      subject: nsubj
type File struct {
	Version int     `yaml:"version"`
	Mode    string  `yaml:"mode,omitempty"`
	Rules   []Entry `yaml:"rules"`
}

// Entry is one named rule of a rule file.
type Entry struct {
	Name    string `yaml:"name"`
	Mode    string `yaml:"mode,omitempty"`
	Pattern string `yaml:"pattern"`
}

// Mention is a match of one rule at one trigger occurrence.
type Mention struct {
	Rule    string
	Trigger int
	Args    rule.Match
}

// triggerEntry maps a trigger word to the rules it anchors, as indices
// into RuleSet.rules in declaration order.
type triggerEntry struct {
	word  string
	rules []int
}

func triggerEntryLess(a, b triggerEntry) bool {
	return a.word < b.word
}

// RuleSet is an immutable collection of compiled rules indexed by trigger
// word. It is safe for concurrent use.
type RuleSet struct {
	rules []*rule.Rule
	index *btree.BTreeG[triggerEntry]
}

// New indexes rules. Rule names must be unique.
func New(rules ...*rule.Rule) (*RuleSet, error) {
	rs := &RuleSet{
		rules: rules,
		index: btree.NewBTreeG[triggerEntry](triggerEntryLess),
	}

	names := make(map[string]bool, len(rules))
	for i, r := range rules {
		if names[r.Name()] {
			return nil, fmt.Errorf("duplicate rule name %q", r.Name())
		}
		names[r.Name()] = true

		entry, _ := rs.index.Get(triggerEntry{word: r.Trigger()})
		entry.word = r.Trigger()
		entry.rules = append(entry.rules, i)
		rs.index.Set(entry)
	}
	return rs, nil
}

// Parse compiles a YAML rule file. defaultMode applies to rules that set
// no mode when the file sets none either.
func Parse(data []byte, defaultMode rule.Mode) (*RuleSet, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rule file: %w", err)
	}
	return Compile(f, defaultMode)
}

// Compile compiles every entry of f. A version of 0 means CurrentVersion.
func Compile(f File, defaultMode rule.Mode) (*RuleSet, error) {
	if f.Version != 0 && f.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported rule file version %d", f.Version)
	}

	fileMode := defaultMode
	if f.Mode != "" {
		m, err := rule.ParseMode(f.Mode)
		if err != nil {
			return nil, err
		}
		fileMode = m
	}

	rules := make([]*rule.Rule, 0, len(f.Rules))
	for i, e := range f.Rules {
		if e.Name == "" {
			return nil, fmt.Errorf("rule #%d has no name", i+1)
		}

		mode := fileMode
		if e.Mode != "" {
			m, err := rule.ParseMode(e.Mode)
			if err != nil {
				return nil, fmt.Errorf("rule %q: %w", e.Name, err)
			}
			mode = m
		}

		r, err := rule.Compile(e.Pattern, rule.WithName(e.Name), rule.WithMode(mode))
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", e.Name, err)
		}
		rules = append(rules, r)
	}
	return New(rules...)
}

// Load reads and compiles the rule file at path.
func Load(path string, defaultMode rule.Mode) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}
	rs, err := Parse(data, defaultMode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Len reports the number of rules.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// Rules returns the rules in declaration order.
func (rs *RuleSet) Rules() []*rule.Rule {
	out := make([]*rule.Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Rule returns the rule named name.
func (rs *RuleSet) Rule(name string) (*rule.Rule, bool) {
	for _, r := range rs.rules {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}

// Triggers returns the indexed trigger words in sorted order.
func (rs *RuleSet) Triggers() []string {
	words := make([]string, 0, rs.index.Len())
	rs.index.Scan(func(e triggerEntry) bool {
		words = append(words, e.word)
		return true
	})
	return words
}

// Match evaluates, at every token, the rules triggered by that token's
// word. Mentions are ordered by trigger index, then rule declaration
// order. A sentence without a dependency graph aborts the call as soon
// as a rule needs the graph.
func (rs *RuleSet) Match(s *depgraph.Sentence) ([]Mention, error) {
	var mentions []Mention
	for t, w := range s.Words {
		entry, ok := rs.index.Get(triggerEntry{word: w})
		if !ok {
			continue
		}
		for _, i := range entry.rules {
			r := rs.rules[i]
			m, err := r.MatchAt(s, t)
			if err != nil {
				return nil, fmt.Errorf("rule %q: %w", r.Name(), err)
			}
			if m != nil {
				mentions = append(mentions, Mention{Rule: r.Name(), Trigger: t, Args: m})
			}
		}
	}
	return mentions, nil
}

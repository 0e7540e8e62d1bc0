package rule

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/gnolang/depmatch/depgraph"
	"github.com/gnolang/depmatch/pattern"
)

// TriggerField is the reserved field holding the trigger word.
const TriggerField = "trigger"

// Mode decides when a trigger occurrence produces a match.
type Mode int

const (
	// ModeAny emits a match when at least one role is bound.
	ModeAny Mode = iota
	// ModeAll emits a match only when every role is bound.
	ModeAll
)

func (m Mode) String() string {
	switch m {
	case ModeAny:
		return "any"
	case ModeAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseMode parses "any" or "all". The empty string means ModeAny.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return ModeAny, nil
	case "all":
		return ModeAll, nil
	default:
		return ModeAny, fmt.Errorf("unknown match mode %q (want \"any\" or \"all\")", s)
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	if m != ModeAny && m != ModeAll {
		return nil, fmt.Errorf("unknown match mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Match binds role names to token indices for one trigger occurrence.
type Match map[string]int

// Role is a named path matcher evaluated from the trigger token.
type Role struct {
	Name    string
	Matcher pattern.Matcher
}

// Rule is a compiled pattern block. It is immutable and safe for
// concurrent use.
type Rule struct {
	name    string
	trigger string
	roles   []Role
	mode    Mode
}

// Option configures Compile.
type Option func(*Rule)

// WithName names the rule.
func WithName(name string) Option {
	return func(r *Rule) { r.name = name }
}

// WithMode sets the match mode. The default is ModeAny.
func WithMode(mode Mode) Option {
	return func(r *Rule) { r.mode = mode }
}

// Compile parses a pattern block:
//
//	trigger: gave
//	subject: nsubj
//	object: >dobj
//
// The first trigger field holds a literal word and later trigger fields
// are ignored; every other field is a role whose expression is parsed as
// a path. Role names must be unique. Errors are *pattern.ParseError.
func Compile(text string, opts ...Option) (*Rule, error) {
	fields, err := SplitFields(text)
	if err != nil {
		return nil, err
	}

	r := &Rule{}
	for _, opt := range opts {
		opt(r)
	}

	seen := make(map[string]bool, len(fields))
	hasTrigger := false
	for _, f := range fields {
		if f.Name == TriggerField && hasTrigger {
			// only the first trigger line counts
			continue
		}
		if seen[f.Name] {
			return nil, &pattern.ParseError{
				Text:     f.Expr,
				Field:    f.Name,
				Line:     f.Line,
				Fragment: f.Name,
				Msg:      "duplicate role name",
			}
		}
		seen[f.Name] = true

		if f.Name == TriggerField {
			if i := strings.IndexFunc(f.Expr, unicode.IsSpace); i >= 0 {
				return nil, &pattern.ParseError{
					Text:     f.Expr,
					Field:    f.Name,
					Line:     f.Line,
					Pos:      i,
					Fragment: f.Expr[i:],
					Msg:      "trigger must be a single word",
				}
			}
			r.trigger = f.Expr
			hasTrigger = true
			continue
		}

		m, err := pattern.ParsePath(f.Expr)
		if err != nil {
			var perr *pattern.ParseError
			if errors.As(err, &perr) {
				perr.Field = f.Name
				perr.Line = f.Line
			}
			return nil, err
		}
		r.roles = append(r.roles, Role{Name: f.Name, Matcher: m})
	}

	if !hasTrigger {
		return nil, &pattern.ParseError{Text: text, Msg: "missing trigger field"}
	}
	return r, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(text string, opts ...Option) *Rule {
	r, err := Compile(text, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Rule) Name() string    { return r.name }
func (r *Rule) Trigger() string { return r.trigger }
func (r *Rule) Mode() Mode      { return r.mode }

// Roles returns the roles in declaration order.
func (r *Rule) Roles() []Role {
	out := make([]Role, len(r.roles))
	copy(out, r.roles)
	return out
}

// Role returns the matcher bound to name.
func (r *Rule) Role(name string) (pattern.Matcher, bool) {
	for _, role := range r.roles {
		if role.Name == name {
			return role.Matcher, true
		}
	}
	return nil, false
}

// FindAllMatches evaluates the rule at every occurrence of the trigger
// word, left to right. Occurrences that bind no role (or, in ModeAll, not
// every role) are dropped. A sentence without a dependency graph aborts
// the call with a *pattern.PreconditionError.
func (r *Rule) FindAllMatches(s *depgraph.Sentence) ([]Match, error) {
	var out []Match
	for t, w := range s.Words {
		if w != r.trigger {
			continue
		}
		m, err := r.MatchAt(s, t)
		if err != nil {
			return nil, err
		}
		if m != nil {
			out = append(out, m)
		}
	}
	return out, nil
}

// MatchAt evaluates every role from the trigger token t. It returns nil
// when the occurrence does not count as a match. The word at t is not
// checked against the trigger.
func (r *Rule) MatchAt(s *depgraph.Sentence, t int) (Match, error) {
	bound := make(Match, len(r.roles))
	for _, role := range r.roles {
		idx, ok, err := role.Matcher.FindFrom(s, t)
		if err != nil {
			return nil, err
		}
		if ok {
			bound[role.Name] = idx
		}
	}

	if len(bound) == 0 {
		return nil, nil
	}
	if r.mode == ModeAll && len(bound) != len(r.roles) {
		return nil, nil
	}
	return bound, nil
}

// String renders the rule as a canonical pattern block: the trigger line
// first, then the roles in declaration order with explicit direction
// prefixes. Compiling the result yields an equivalent rule.
func (r *Rule) String() string {
	lines := make([]string, 0, len(r.roles)+1)
	lines = append(lines, TriggerField+": "+r.trigger)
	for _, role := range r.roles {
		lines = append(lines, role.Name+": "+role.Matcher.String())
	}
	return strings.Join(lines, "\n")
}

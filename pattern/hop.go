package pattern

import (
	"github.com/gnolang/depmatch/depgraph"
)

// Direction selects which edge list of a token a hop follows.
type Direction int

const (
	Outgoing Direction = iota // edges leaving the token (token is the head)
	Incoming                  // edges entering the token (token is the dependent)
)

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	default:
		return "unknown"
	}
}

// Prefix returns the pattern syntax prefix for the direction.
func (d Direction) Prefix() string {
	if d == Incoming {
		return "<"
	}
	return ">"
}

// Matcher walks a sentence's dependency graph from a starting token.
// The variant set is closed: *Hop and *Path.
type Matcher interface {
	// FindFrom returns the token reached from tok. ok is false when the
	// walk does not match; err is non-nil only when the sentence has no
	// dependency graph.
	FindFrom(s *depgraph.Sentence, tok int) (idx int, ok bool, err error)
	// String renders the matcher in pattern syntax with explicit prefixes.
	String() string

	isMatcher()
}

var (
	_ Matcher = (*Hop)(nil)
	_ Matcher = (*Path)(nil)
)

// Hop is a single label-filtered edge traversal.
type Hop struct {
	Label     LabelMatcher
	Direction Direction
}

// NewHop returns a hop following dir edges whose label satisfies label.
func NewHop(label LabelMatcher, dir Direction) *Hop {
	return &Hop{Label: label, Direction: dir}
}

// Out is shorthand for an outgoing hop over an exact label.
func Out(label string) *Hop { return NewHop(ExactLabel{Label: label}, Outgoing) }

// In is shorthand for an incoming hop over an exact label.
func In(label string) *Hop { return NewHop(ExactLabel{Label: label}, Incoming) }

// FindFrom follows the hop from tok. It succeeds only when exactly one
// edge qualifies.
func (h *Hop) FindFrom(s *depgraph.Sentence, tok int) (int, bool, error) {
	if !s.HasGraph() {
		return -1, false, &PreconditionError{Op: "hop " + h.String(), Sentence: s.Name()}
	}

	var edges []depgraph.Edge
	switch h.Direction {
	case Outgoing:
		edges = s.Graph.OutgoingEdges(tok)
	case Incoming:
		edges = s.Graph.IncomingEdges(tok)
	default:
		return -1, false, nil
	}

	candidates := h.Label.Matches(edges)
	if len(candidates) != 1 {
		return -1, false, nil
	}
	return candidates[0], true, nil
}

func (h *Hop) String() string {
	return h.Direction.Prefix() + h.Label.String()
}

func (*Hop) isMatcher() {}

package depgraph

import "fmt"

// Edge is one entry of a token's edge list: the token on the other end
// of the arc and the arc's dependency label.
type Edge struct {
	Index int
	Label string
}

func (e Edge) String() string {
	return fmt.Sprintf("%s:%d", e.Label, e.Index)
}

// Arc is a labeled, directed head -> dependent relation.
type Arc struct {
	Head      int
	Dependent int
	Label     string
}

// DependencyGraph exposes, per token index, the arcs leaving the token
// and the arcs entering it, each in a stable order.
type DependencyGraph interface {
	OutgoingEdges(i int) []Edge
	IncomingEdges(i int) []Edge
}

var _ DependencyGraph = (*Graph)(nil)

// Graph is an adjacency-list DependencyGraph. It may contain cycles and
// is not required to be a tree.
type Graph struct {
	outgoing [][]Edge
	incoming [][]Edge
}

// NewGraph builds a graph over size tokens. Each arc is appended to the
// head's outgoing list and to the dependent's incoming list, in arc order.
func NewGraph(size int, arcs []Arc) (*Graph, error) {
	g := &Graph{
		outgoing: make([][]Edge, size),
		incoming: make([][]Edge, size),
	}
	for _, a := range arcs {
		if a.Head < 0 || a.Head >= size || a.Dependent < 0 || a.Dependent >= size {
			return nil, fmt.Errorf("arc %d -%s-> %d out of range for %d tokens", a.Head, a.Label, a.Dependent, size)
		}
		g.outgoing[a.Head] = append(g.outgoing[a.Head], Edge{Index: a.Dependent, Label: a.Label})
		g.incoming[a.Dependent] = append(g.incoming[a.Dependent], Edge{Index: a.Head, Label: a.Label})
	}
	return g, nil
}

// MustGraph is like NewGraph but panics on invalid arcs.
func MustGraph(size int, arcs ...Arc) *Graph {
	g, err := NewGraph(size, arcs)
	if err != nil {
		panic(err)
	}
	return g
}

// Size reports the number of tokens the graph was built for.
func (g *Graph) Size() int {
	if g == nil {
		return 0
	}
	return len(g.outgoing)
}

// OutgoingEdges returns the arcs whose head is i. Out-of-range indices
// have no edges.
func (g *Graph) OutgoingEdges(i int) []Edge {
	if g == nil || i < 0 || i >= len(g.outgoing) {
		return nil
	}
	return g.outgoing[i]
}

// IncomingEdges returns the arcs whose dependent is i.
func (g *Graph) IncomingEdges(i int) []Edge {
	if g == nil || i < 0 || i >= len(g.incoming) {
		return nil
	}
	return g.incoming[i]
}

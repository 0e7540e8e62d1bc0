// Package depgraph holds the sentence and dependency-graph values the
// matchers read. Graphs are produced elsewhere (by a dependency parser);
// this package only models them and exposes per-token edge lists.
package depgraph

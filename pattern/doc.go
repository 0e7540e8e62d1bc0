/*
Package pattern compiles path expressions over a labeled dependency graph
into matchers.

# Syntax

A path expression is a whitespace separated list of hops. Each hop names
the edge label to follow and, optionally, the direction:

	nsubj          follow an outgoing edge labeled "nsubj"
	>dobj          same, with the explicit outgoing prefix
	<nmod_of       follow an incoming edge labeled "nmod_of"
	/^nmod_/       follow an outgoing edge whose label contains a match of ^nmod_
	nsubj >amod    two hops: nsubj, then amod from the token reached

Labels are either a bare word ([0-9A-Za-z_]+), compared for exact equality,
or a regular expression delimited by slashes. A slash inside the regular
expression is written as \/. Regular expressions are searched, not anchored:
/subj/ matches "nsubj" and "csubjpass".

# Matching

A hop succeeds only when exactly one edge in the chosen direction carries a
matching label. Zero candidates and several candidates both mean "no match":
ambiguity carries no information, so the hop does not guess. A path runs its
hops left to right, feeding each result into the next hop, and fails as soon
as one hop fails.

Non-matches are not errors. The only match-time error is a
*PreconditionError, returned when the sentence carries no dependency graph.
Syntax errors are reported as *ParseError with the offending fragment and
its byte position.

# Usage

	m, err := pattern.ParsePath("nsubj >amod")
	if err != nil {
		return err
	}
	idx, ok, err := m.FindFrom(sentence, trigger)
*/
package pattern

package libamps_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/treeamps/amps.SDK/goamps"
	"github.com/treeamps/amps.SDK/libamps"
)

func TestParseStructureRoundTrip(t *testing.T) {
	tsList, err := libamps.Generate(gluonConfig(4), 3, 1)
	require.NoError(t, err)

	for _, ts := range tsList {
		parsed, err := libamps.ParseStructure(ts.String())
		require.NoError(t, err, "parsing %q", ts.String())
		require.Zero(t, ts.Compare(parsed), "round trip of %q", ts.String())
	}
}

func TestParseStructureForms(t *testing.T) {
	// Separators between factors are optional, "." works in place of "·".
	a, err := libamps.ParseStructure("(p1·p2)(p2·e3)")
	require.NoError(t, err)
	b, err := libamps.ParseStructure("(p1.p2) · (p2.e3)")
	require.NoError(t, err)
	require.Zero(t, a.Compare(b))

	// Unordered pairs and reversed PE sides normalize.
	c, err := libamps.ParseStructure("(p2.p1)(e3·p2)")
	require.NoError(t, err)
	require.Zero(t, a.Compare(c))
	require.Equal(t, "(p1·p2) · (p2·e3)", c.String())

	// "1" and blank denote the empty structure.
	empty, err := libamps.ParseStructure("1")
	require.NoError(t, err)
	require.Zero(t, empty.Degree())

	empty, err = libamps.ParseStructure("  ")
	require.NoError(t, err)
	require.Zero(t, empty.Degree())

	// Repeats are preserved and the result is canonical.
	sq, err := libamps.ParseStructure("(e1·e2)(p1·p2)(p1·p2)")
	require.NoError(t, err)
	require.Equal(t, "(p1·p2) · (p1·p2) · (e1·e2)", sq.String())
	require.Equal(t, 1, sq.EEContractions)
}

func TestParseStructureErrors(t *testing.T) {
	badFactors := []string{
		"(p1·p1)",  // momentum pair must be two legs
		"(e2·e2)",  // polarization pair must be two legs
		"(x1·p2)",  // unknown vector kind
		"(p0·p2)",  // legs are one-based
		"(p1·p99)", // beyond MaxLegs
		"(p·e2)",   // missing leg index
	}
	for _, expr := range badFactors {
		_, err := libamps.ParseStructure(expr)
		require.ErrorIs(t, err, goamps.ErrBadFactor, "expr %q", expr)
	}

	badExprs := []string{
		"(p1·p2",    // unterminated factor
		"p1·p2)",    // missing open paren
		"(p1 p2)",   // missing contraction dot
		"(p1·p2) x", // trailing garbage
	}
	for _, expr := range badExprs {
		_, err := libamps.ParseStructure(expr)
		require.ErrorIs(t, err, goamps.ErrBadStructureExpr, "expr %q", expr)
	}
}

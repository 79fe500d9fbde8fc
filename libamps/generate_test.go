package libamps_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/treeamps/amps.SDK/goamps"
	"github.com/treeamps/amps.SDK/libamps"
)

func gluonConfig(nLegs goamps.LegIndex) goamps.GenConfig {
	return goamps.GenConfig{
		NLegs:          nLegs,
		Transversality: goamps.ForbidPiDotEi,
		PolPattern:     goamps.OnePerLeg,
	}
}

// requireValid asserts every documented invariant of an accepted structure.
func requireValid(t *testing.T, cfg goamps.GenConfig, targetDeg, eeCount int, ts *goamps.TensorStructure) {
	t.Helper()

	require.Equal(t, targetDeg, ts.Degree())
	require.Equal(t, eeCount, ts.EEContractions)

	polSeen := make(map[goamps.LegIndex]int)
	for i, f := range ts.Factors {
		if i > 0 {
			require.LessOrEqual(t, ts.Factors[i-1].Compare(f), 0, "factors must be in canonical order")
		}
		switch f.Kind {
		case goamps.KindPP:
			require.Less(t, f.A, cfg.NLegs)
			require.Less(t, f.B, cfg.NLegs)
		case goamps.KindPE:
			require.Less(t, f.A, cfg.NLegs, "momentum leg %d must not be the eliminated leg", f.A)
			if cfg.Transversality == goamps.ForbidPiDotEi {
				require.NotEqual(t, f.A, f.B)
			}
			polSeen[f.B]++
		case goamps.KindEE:
			polSeen[f.A]++
			polSeen[f.B]++
		}
	}

	if cfg.PolPattern == goamps.OnePerLeg {
		for leg := goamps.LegIndex(1); leg <= cfg.NLegs; leg++ {
			require.Equal(t, 1, polSeen[leg], "leg %d polarization must appear exactly once", leg)
		}
	}
}

func TestFourLegMixedBasis(t *testing.T) {
	cfg := gluonConfig(4)
	tsList, err := libamps.Generate(cfg, 3, 1)
	require.NoError(t, err)
	require.Len(t, tsList, 24)

	for _, ts := range tsList {
		requireValid(t, cfg, 3, 1, ts)
	}
}

func TestFourLegPureEEBasis(t *testing.T) {
	tsList, err := libamps.Generate(gluonConfig(4), 2, 2)
	require.NoError(t, err)
	require.Len(t, tsList, 3)

	require.Equal(t, "(e1·e2) · (e3·e4)", tsList[0].String())
	require.Equal(t, "(e1·e3) · (e2·e4)", tsList[1].String())
	require.Equal(t, "(e1·e4) · (e2·e3)", tsList[2].String())
}

func TestDeterminism(t *testing.T) {
	cfg := gluonConfig(5)
	first, err := libamps.Generate(cfg, 3, 2)
	require.NoError(t, err)
	second, err := libamps.Generate(cfg, 3, 2)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Zero(t, first[i].Compare(second[i]))
	}
}

func TestUniqueness(t *testing.T) {
	tsList, err := libamps.Generate(gluonConfig(5), 3, 2)
	require.NoError(t, err)
	for i := 1; i < len(tsList); i++ {
		require.Negative(t, tsList[i-1].Compare(tsList[i]),
			"output must be strictly increasing, so free of duplicates")
	}
}

func TestBoundaryDegreeZero(t *testing.T) {
	cfg := goamps.GenConfig{
		NLegs:          3,
		Transversality: goamps.ForbidPiDotEi,
		PolPattern:     goamps.Unconstrained,
	}
	tsList, err := libamps.Generate(cfg, 0, 0)
	require.NoError(t, err)
	require.Len(t, tsList, 1, "the empty structure is the only degree-0 structure")
	require.Equal(t, "1", tsList[0].String())

	tsList, err = libamps.Generate(gluonConfig(3), 0, 0)
	require.NoError(t, err)
	require.Empty(t, tsList, "the empty structure cannot cover any leg")
}

func TestInvalidTargets(t *testing.T) {
	cfg := gluonConfig(4)

	_, err := libamps.Generate(cfg, 2, 3)
	require.ErrorIs(t, err, goamps.ErrBadEECount)

	_, err = libamps.Generate(cfg, 2, -1)
	require.ErrorIs(t, err, goamps.ErrBadEECount)

	_, err = libamps.Generate(cfg, -1, 0)
	require.ErrorIs(t, err, goamps.ErrBadDegree)

	_, err = libamps.Generate(goamps.GenConfig{NLegs: 0}, 1, 0)
	require.ErrorIs(t, err, goamps.ErrBadLegCount)
}

// A factor may be selected more than once within a multiset: the recursive
// cursor does not advance past a re-selected index.
func TestRepeatedFactorsAllowed(t *testing.T) {
	cfg := goamps.GenConfig{
		NLegs:          3,
		Transversality: goamps.ForbidPiDotEi,
		PolPattern:     goamps.Unconstrained,
	}
	tsList, err := libamps.Generate(cfg, 2, 0)
	require.NoError(t, err)

	// The n=3 catalog has 4 non-EE factors; multisets of size 2 with
	// repetition give C(4,2) + 4 = 10.
	require.Len(t, tsList, 10)

	rendered := make([]string, len(tsList))
	for i, ts := range tsList {
		rendered[i] = ts.String()
	}
	require.Contains(t, rendered, "(p1·p2) · (p1·p2)")
}

// bruteForce enumerates every non-decreasing index tuple over the catalog
// with no pruning at all and applies the acceptance predicate from scratch.
func bruteForce(t *testing.T, cfg goamps.GenConfig, targetDeg, eeCount int) []*goamps.TensorStructure {
	t.Helper()

	cat, err := libamps.BuildFactorCatalog(cfg)
	require.NoError(t, err)

	accepts := func(ts *goamps.TensorStructure) bool {
		if ts.EEContractions != eeCount {
			return false
		}
		if cfg.PolPattern != goamps.OnePerLeg {
			return true
		}
		polSeen := make(map[goamps.LegIndex]int)
		for _, f := range ts.Factors {
			switch f.Kind {
			case goamps.KindPE:
				polSeen[f.B]++
			case goamps.KindEE:
				polSeen[f.A]++
				polSeen[f.B]++
			}
		}
		for leg := goamps.LegIndex(1); leg <= cfg.NLegs; leg++ {
			if polSeen[leg] != 1 {
				return false
			}
		}
		return true
	}

	var out []*goamps.TensorStructure
	cur := make([]int, 0, targetDeg)

	var walk func(start int)
	walk = func(start int) {
		if len(cur) == targetDeg {
			ts := goamps.NewTensorStructure()
			for _, idx := range cur {
				ts.Factors = append(ts.Factors, cat.Factors[idx])
			}
			ts.Canonicalize()
			if accepts(ts) {
				out = append(out, ts)
			}
			return
		}
		for i := start; i < cat.Len(); i++ {
			cur = append(cur, i)
			walk(i)
			cur = cur[:len(cur)-1]
		}
	}
	walk(0)

	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	dedup := out[:0]
	for i, ts := range out {
		if i == 0 || dedup[len(dedup)-1].Compare(ts) != 0 {
			dedup = append(dedup, ts)
		}
	}
	return dedup
}

func TestPruningMatchesBruteForce(t *testing.T) {
	cases := []struct {
		cfg       goamps.GenConfig
		targetDeg int
		eeCount   int
	}{
		{gluonConfig(4), 3, 1},
		{gluonConfig(4), 2, 2},
		{gluonConfig(3), 3, 0},
		{gluonConfig(5), 3, 2},
		{goamps.GenConfig{NLegs: 3, Transversality: goamps.ForbidPiDotEi, PolPattern: goamps.Unconstrained}, 2, 1},
		{goamps.GenConfig{NLegs: 4, Transversality: goamps.TransversalityAllow, PolPattern: goamps.OnePerLeg}, 3, 1},
	}

	for _, tc := range cases {
		pruned, err := libamps.Generate(tc.cfg, tc.targetDeg, tc.eeCount)
		require.NoError(t, err)

		expected := bruteForce(t, tc.cfg, tc.targetDeg, tc.eeCount)
		require.Equal(t, len(expected), len(pruned),
			"n=%d deg=%d ee=%d", tc.cfg.NLegs, tc.targetDeg, tc.eeCount)
		for i := range expected {
			require.Zero(t, expected[i].Compare(pruned[i]))
		}
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	cases := []struct {
		cfg       goamps.GenConfig
		targetDeg int
		eeCount   int
	}{
		{gluonConfig(4), 3, 1},
		{gluonConfig(5), 3, 2},
		{goamps.GenConfig{NLegs: 3, Transversality: goamps.ForbidPiDotEi, PolPattern: goamps.Unconstrained}, 2, 1},
		{goamps.GenConfig{NLegs: 3, Transversality: goamps.ForbidPiDotEi, PolPattern: goamps.Unconstrained}, 0, 0},
	}

	for _, tc := range cases {
		seq, err := libamps.Generate(tc.cfg, tc.targetDeg, tc.eeCount)
		require.NoError(t, err)
		par, err := libamps.GenerateParallel(tc.cfg, tc.targetDeg, tc.eeCount)
		require.NoError(t, err)

		require.Equal(t, len(seq), len(par))
		for i := range seq {
			require.Zero(t, seq[i].Compare(par[i]))
		}
	}
}

func TestGenerateStream(t *testing.T) {
	stream, err := libamps.GenerateStream(gluonConfig(4), 3, 1)
	require.NoError(t, err)
	require.Equal(t, 24, stream.PullAll())

	_, err = libamps.GenerateStream(gluonConfig(4), 2, 3)
	require.ErrorIs(t, err, goamps.ErrBadEECount)
}

func BenchmarkGenerate(b *testing.B) {
	cfg := gluonConfig(6)
	for i := 0; i < b.N; i++ {
		if _, err := libamps.Generate(cfg, 4, 2); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGenerateParallel(b *testing.B) {
	cfg := gluonConfig(6)
	for i := 0; i < b.N; i++ {
		if _, err := libamps.GenerateParallel(cfg, 4, 2); err != nil {
			b.Fatal(err)
		}
	}
}

package libamps

import (
	"github.com/pkg/errors"

	"github.com/treeamps/amps.SDK/goamps"
)

// CheckResult reports one regression point: the generated count for a basis
// against its closed-form expected count.
type CheckResult struct {
	NLegs     int
	Degree    int
	EECount   int
	OnePerLeg bool
	Expected  int
	Actual    int
	Matches   bool
}

// Check runs generation for the given basis point under ForbidPiDotEi
// transversality and compares the emitted count against expected.
//
// This is a regression guard, not a general correctness prover: it validates
// nothing about bases other than the one given.
func Check(nLegs, deg, ee int, onePerLeg bool, expected int) (CheckResult, error) {
	if nLegs < 1 || nLegs > goamps.MaxLegs {
		return CheckResult{}, errors.Wrapf(goamps.ErrBadLegCount, "nLegs %d", nLegs)
	}

	cfg := goamps.GenConfig{
		NLegs:          goamps.LegIndex(nLegs),
		Transversality: goamps.ForbidPiDotEi,
		PolPattern:     goamps.Unconstrained,
	}
	if onePerLeg {
		cfg.PolPattern = goamps.OnePerLeg
	}

	tsList, err := Generate(cfg, deg, ee)
	if err != nil {
		return CheckResult{}, err
	}

	res := CheckResult{
		NLegs:     nLegs,
		Degree:    deg,
		EECount:   ee,
		OnePerLeg: onePerLeg,
		Expected:  expected,
		Actual:    len(tsList),
	}
	res.Matches = res.Actual == res.Expected
	return res, nil
}

// KnownChecks runs the built-in reference points:
//
//	n=4, deg=3, ee=1, one per leg: 24 structures
//	n=4, deg=2, ee=2, one per leg: 3 structures
func KnownChecks() ([]CheckResult, error) {
	points := []CheckResult{
		{NLegs: 4, Degree: 3, EECount: 1, OnePerLeg: true, Expected: 24},
		{NLegs: 4, Degree: 2, EECount: 2, OnePerLeg: true, Expected: 3},
	}

	results := make([]CheckResult, 0, len(points))
	for _, pt := range points {
		res, err := Check(pt.NLegs, pt.Degree, pt.EECount, pt.OnePerLeg, pt.Expected)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

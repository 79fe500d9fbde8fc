package libamps

import (
	"github.com/pkg/errors"

	"github.com/treeamps/amps.SDK/goamps"
)

// CatalogCounts reports the per-block factor counts of a FactorCatalog.
type CatalogCounts struct {
	NumPP int
	NumPE int
	NumEE int
}

// FactorCatalog is the complete ordered universe of legal scalar factors for
// one GenConfig: the PP block, then the PE block, then the EE block, each
// ascending by (a, b).
//
// The block order is a correctness contract: the enumerator's non-decreasing
// index selection depends on it to avoid permutation duplicates. A catalog is
// built once per config and is read-only thereafter.
type FactorCatalog struct {
	Factors []goamps.ScalarFactor
	Counts  CatalogCounts

	cfg goamps.GenConfig
}

// BuildFactorCatalog constructs the factor catalog for the given config.
func BuildFactorCatalog(cfg goamps.GenConfig) (*FactorCatalog, error) {
	if cfg.NLegs == 0 {
		return nil, errors.Wrap(goamps.ErrBadLegCount, "NLegs must be >= 1")
	}
	if cfg.NLegs > goamps.MaxLegs {
		return nil, errors.Wrapf(goamps.ErrBadLegCount, "NLegs exceeds %d", goamps.MaxLegs)
	}

	n := cfg.NLegs
	cat := &FactorCatalog{cfg: cfg}

	// PP block: momentum conservation eliminates p_n, so leg n never appears
	// as a momentum index.
	for i := goamps.LegIndex(1); i < n; i++ {
		for j := i + 1; j < n; j++ {
			cat.Factors = append(cat.Factors, goamps.PP(i, j))
			cat.Counts.NumPP++
		}
	}

	// PE block: p_n is eliminated while e_n survives. p_1·e_n is always
	// excluded: momentum conservation against e_n transversality makes it
	// linearly dependent on the remaining p_i·e_n.
	for i := goamps.LegIndex(1); i < n; i++ {
		for j := goamps.LegIndex(1); j <= n; j++ {
			if cfg.Transversality == goamps.ForbidPiDotEi && i == j {
				continue
			}
			if i == 1 && j == n {
				continue
			}
			cat.Factors = append(cat.Factors, goamps.PE(i, j))
			cat.Counts.NumPE++
		}
	}

	// EE block: every leg carries a polarization.
	for i := goamps.LegIndex(1); i < n; i++ {
		for j := i + 1; j <= n; j++ {
			cat.Factors = append(cat.Factors, goamps.EE(i, j))
			cat.Counts.NumEE++
		}
	}

	return cat, nil
}

// Config returns the GenConfig this catalog was built for.
func (cat *FactorCatalog) Config() goamps.GenConfig {
	return cat.cfg
}

// Len returns the total number of factors across all blocks.
func (cat *FactorCatalog) Len() int {
	return len(cat.Factors)
}

package goamps

// LegIndex identifies one external leg, one-based in [1, NLegs].
type LegIndex uint8

// MaxLegs is the max possible number of external legs per GenConfig.
const MaxLegs = 31

// ScalarKind tells which two leg vectors a ScalarFactor contracts.
//
// Kinds are ordered PP < PE < EE; factor catalogs are laid out in that block
// order and canonical comparison depends on it.
type ScalarKind byte

const (
	KindPP ScalarKind = iota // momentum · momentum
	KindPE                   // momentum · polarization
	KindEE                   // polarization · polarization
)

func (kind ScalarKind) String() string {
	switch kind {
	case KindPP:
		return "PP"
	case KindPE:
		return "PE"
	case KindEE:
		return "EE"
	}
	return "??"
}

// Transversality selects the p·e rule applied when building a factor catalog.
type Transversality byte

const (
	// TransversalityAllow places no restriction on p_i·e_i factors.
	TransversalityAllow Transversality = iota

	// ForbidPiDotEi excludes p_i·e_i factors (a leg's momentum never
	// contracts with its own polarization).
	ForbidPiDotEi
)

// PolarizationPattern selects how polarizations may appear per leg.
type PolarizationPattern byte

const (
	// Unconstrained places no per-leg restriction on polarization use.
	Unconstrained PolarizationPattern = iota

	// OnePerLeg requires every leg's polarization to appear in exactly one
	// factor of an accepted structure (gluon-basis convention).
	OnePerLeg
)

// GenConfig describes which tensor structures are allowed.
// It is immutable for the duration of one generation call.
type GenConfig struct {
	NLegs          LegIndex
	Transversality Transversality
	PolPattern     PolarizationPattern
}

// DefaultGenConfig returns the common gluon-basis setup.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		NLegs:          3,
		Transversality: ForbidPiDotEi,
		PolPattern:     OnePerLeg,
	}
}

package libamps

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/treeamps/amps.SDK/goamps"
)

// StructureExpr is the parsed form of a rendered tensor structure, e.g.
// "(p1·p2) · (p2·e3)". The separating dot between factors is optional.
type StructureExpr struct {
	Factors []*FactorExpr `(@@ ("·" | ".")?)*`
}

// FactorExpr is one parenthesized contraction. Either side names a momentum
// or polarization vector, e.g. "p1" or "e12".
type FactorExpr struct {
	Lhs string `"(" @Ident ("·" | ".")`
	Rhs string `@Ident ")"`
}

var parseStructureExpr = participle.MustBuild[StructureExpr]()

// ParseStructure parses a rendered tensor structure such as "(p1·p2)(p2·e3)"
// back into canonical form. "." is accepted in place of "·", and "1" denotes
// the empty structure.
//
// Only well-formedness is validated here: factor pairs must be legal in kind
// and leg range. Whether a factor is admissible under a particular GenConfig
// is the factor catalog's concern, not the parser's.
func ParseStructure(expr string) (*goamps.TensorStructure, error) {
	ts := goamps.NewTensorStructure()

	trimmed := strings.TrimSpace(expr)
	if trimmed == "" || trimmed == "1" {
		return ts, nil
	}

	parsed, err := parseStructureExpr.ParseString("", trimmed)
	if err != nil {
		return nil, errors.Wrap(goamps.ErrBadStructureExpr, err.Error())
	}

	for _, fx := range parsed.Factors {
		f, err := formFactor(fx.Lhs, fx.Rhs)
		if err != nil {
			return nil, err
		}
		ts.Factors = append(ts.Factors, f)
	}

	ts.Canonicalize()
	return ts, nil
}

func formFactor(lhs, rhs string) (goamps.ScalarFactor, error) {
	aKind, a, err := parseLegVector(lhs)
	if err != nil {
		return goamps.ScalarFactor{}, err
	}
	bKind, b, err := parseLegVector(rhs)
	if err != nil {
		return goamps.ScalarFactor{}, err
	}

	switch {
	case aKind == 'p' && bKind == 'p':
		if a == b {
			return goamps.ScalarFactor{}, errors.Wrapf(goamps.ErrBadFactor, "(p%d·p%d) is not a pair", a, b)
		}
		return goamps.PP(a, b), nil

	case aKind == 'p' && bKind == 'e':
		return goamps.PE(a, b), nil

	case aKind == 'e' && bKind == 'p':
		return goamps.PE(b, a), nil

	default:
		if a == b {
			return goamps.ScalarFactor{}, errors.Wrapf(goamps.ErrBadFactor, "(e%d·e%d) is not a pair", a, b)
		}
		return goamps.EE(a, b), nil
	}
}

func parseLegVector(tok string) (byte, goamps.LegIndex, error) {
	if len(tok) < 2 || (tok[0] != 'p' && tok[0] != 'e') {
		return 0, 0, errors.Wrapf(goamps.ErrBadFactor, "expected p<leg> or e<leg>, got %q", tok)
	}
	leg, err := strconv.Atoi(tok[1:])
	if err != nil || leg < 1 || leg > goamps.MaxLegs {
		return 0, 0, errors.Wrapf(goamps.ErrBadFactor, "bad leg index in %q", tok)
	}
	return tok[0], goamps.LegIndex(leg), nil
}

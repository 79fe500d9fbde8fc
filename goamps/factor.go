package goamps

import "fmt"

// ScalarFactor is one elementary contraction between two leg vectors: the
// atomic unit of a tensor structure.
//
// For PP and EE factors the pair is unordered and stored ascending (A < B).
// For PE factors A is the momentum leg and B the polarization leg.
type ScalarFactor struct {
	Kind ScalarKind
	A    LegIndex
	B    LegIndex
}

// PP forms a momentum·momentum factor, normalizing the pair to ascending order.
func PP(i, j LegIndex) ScalarFactor {
	if j < i {
		i, j = j, i
	}
	return ScalarFactor{Kind: KindPP, A: i, B: j}
}

// PE forms a momentum·polarization factor: p_i · e_j.
func PE(i, j LegIndex) ScalarFactor {
	return ScalarFactor{Kind: KindPE, A: i, B: j}
}

// EE forms a polarization·polarization factor, normalizing the pair to
// ascending order.
func EE(i, j LegIndex) ScalarFactor {
	if j < i {
		i, j = j, i
	}
	return ScalarFactor{Kind: KindEE, A: i, B: j}
}

// Compare orders factors by (kind, A, B), matching catalog block order.
func (f ScalarFactor) Compare(other ScalarFactor) int {
	if d := int(f.Kind) - int(other.Kind); d != 0 {
		return d
	}
	if d := int(f.A) - int(other.A); d != 0 {
		return d
	}
	return int(f.B) - int(other.B)
}

func (f ScalarFactor) String() string {
	switch f.Kind {
	case KindPP:
		return fmt.Sprintf("(p%d·p%d)", f.A, f.B)
	case KindPE:
		return fmt.Sprintf("(p%d·e%d)", f.A, f.B)
	default:
		return fmt.Sprintf("(e%d·e%d)", f.A, f.B)
	}
}

// FactorKeyLen is the encoded size of one ScalarFactor within a structure key.
const FactorKeyLen = 3

// AppendKeyTo appends an order-preserving binary encoding of this factor.
func (f ScalarFactor) AppendKeyTo(key []byte) []byte {
	return append(key, byte(f.Kind), byte(f.A), byte(f.B))
}

// FactorFromKey decodes a single factor from its 3-byte key encoding.
func FactorFromKey(key []byte) (ScalarFactor, error) {
	var f ScalarFactor
	if len(key) != FactorKeyLen {
		return f, ErrBadEncoding
	}
	if key[0] > byte(KindEE) {
		return f, ErrBadEncoding
	}
	f = ScalarFactor{
		Kind: ScalarKind(key[0]),
		A:    LegIndex(key[1]),
		B:    LegIndex(key[2]),
	}
	if f.A < 1 || f.B < 1 {
		return f, ErrBadEncoding
	}
	return f, nil
}

package goamps

import (
	"io"
	"sort"
	"strings"
)

// TensorStructure is an ordered multiset of scalar factors representing one
// basis monomial of a scattering amplitude.
//
// A canonical structure keeps its factors sorted ascending by (kind, A, B),
// repeats included; two structures are equal iff their canonical factor
// sequences are equal.
type TensorStructure struct {
	Factors        []ScalarFactor
	EEContractions int
}

// NewTensorStructure returns an empty structure (the unit monomial).
func NewTensorStructure() *TensorStructure {
	return &TensorStructure{}
}

// Degree is the total number of factors, repeats included.
func (ts *TensorStructure) Degree() int {
	return len(ts.Factors)
}

// MakeCopy returns a new independent copy of this structure.
func (ts *TensorStructure) MakeCopy() *TensorStructure {
	return &TensorStructure{
		Factors:        append([]ScalarFactor(nil), ts.Factors...),
		EEContractions: ts.EEContractions,
	}
}

// Canonicalize sorts the factor sequence into canonical order and recounts
// the EE contractions.
func (ts *TensorStructure) Canonicalize() {
	sort.Slice(ts.Factors, func(i, j int) bool {
		return ts.Factors[i].Compare(ts.Factors[j]) < 0
	})
	eeCount := 0
	for _, f := range ts.Factors {
		if f.Kind == KindEE {
			eeCount++
		}
	}
	ts.EEContractions = eeCount
}

// Compare orders structures lexicographically by their factor sequences.
func (ts *TensorStructure) Compare(other *TensorStructure) int {
	for i, fi := range ts.Factors {
		if i >= len(other.Factors) {
			return 1
		}
		if d := fi.Compare(other.Factors[i]); d != 0 {
			return d
		}
	}
	if len(ts.Factors) < len(other.Factors) {
		return -1
	}
	return 0
}

// String renders the structure as its factors joined by " · ".
// The empty structure renders as "1".
func (ts *TensorStructure) String() string {
	if len(ts.Factors) == 0 {
		return "1"
	}
	parts := make([]string, len(ts.Factors))
	for i, f := range ts.Factors {
		parts[i] = f.String()
	}
	return strings.Join(parts, " · ")
}

// WriteAsString writes this structure using the given print options.
func (ts *TensorStructure) WriteAsString(out io.Writer, opts PrintOpts) {
	if len(opts.Label) > 0 {
		io.WriteString(out, opts.Label)
	}
	io.WriteString(out, ts.String())
}

// AppendKeyTo appends an order-preserving binary encoding of this structure:
// the 3-byte factor keys in canonical sequence order.
func (ts *TensorStructure) AppendKeyTo(key []byte) []byte {
	for _, f := range ts.Factors {
		key = f.AppendKeyTo(key)
	}
	return key
}

// StructureFromKey decodes a structure from its key encoding.
func StructureFromKey(key []byte) (*TensorStructure, error) {
	if len(key)%FactorKeyLen != 0 {
		return nil, ErrBadEncoding
	}
	ts := &TensorStructure{
		Factors: make([]ScalarFactor, 0, len(key)/FactorKeyLen),
	}
	for i := 0; i < len(key); i += FactorKeyLen {
		f, err := FactorFromKey(key[i : i+FactorKeyLen])
		if err != nil {
			return nil, err
		}
		ts.Factors = append(ts.Factors, f)
		if f.Kind == KindEE {
			ts.EEContractions++
		}
	}
	return ts, nil
}

// PrintOpts specifies how structures are printed by StructureStream.Print.
type PrintOpts struct {
	Label    string // prefix label
	Numbered bool   // if set, entries are numbered 1-based
}

// DefaultPrintOpts numbers each printed structure.
var DefaultPrintOpts = PrintOpts{
	Numbered: true,
}

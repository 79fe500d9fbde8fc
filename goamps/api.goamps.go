package goamps

// Basis identifies one generation target: a GenConfig plus the target degree
// and EE contraction count. It keys per-basis bookkeeping in a Catalog.
type Basis struct {
	Config  GenConfig
	Degree  int
	EECount int
}

// BasisKeyLen is the encoded size of a Basis key prefix.
const BasisKeyLen = 4

// AppendKeyTo appends a fixed-width binary encoding of this basis.
func (b Basis) AppendKeyTo(key []byte) []byte {
	flags := byte(0)
	if b.Config.Transversality == ForbidPiDotEi {
		flags |= 1
	}
	if b.Config.PolPattern == OnePerLeg {
		flags |= 2
	}
	return append(key, byte(b.Config.NLegs), byte(b.Degree), byte(b.EECount), flags)
}

// StructureAdder accepts canonical tensor structures, dropping duplicates.
type StructureAdder interface {

	// TryAdd adds the given structure if it is not already present.
	// If true is returned, ts did not exist and was added.
	TryAdd(ts *TensorStructure) bool
}

// OnStructureHit is a callback channel used to return structures meeting a
// set of selection criteria. Ownership of a structure travels through it.
type OnStructureHit chan<- *TensorStructure

// Catalog wraps a database of canonical tensor-structure encodings,
// partitioned by Basis.
type Catalog interface {

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// TryAdd adds the given structure under the given basis.
	// If true is returned, ts did not exist and was added.
	TryAdd(basis Basis, ts *TensorStructure) bool

	// NumStructures returns the number of unique structures stored for the
	// given basis.
	NumStructures(basis Basis) int64

	// Select fires onHit with every stored structure of the given basis,
	// in canonical key order.
	Select(basis Basis, onHit OnStructureHit)

	Close() error
}

// CatalogOpts specifies params for opening a structure Catalog.
type CatalogOpts struct {
	DbPathName string // omit for an in-memory db
	ReadOnly   bool   // open in read-only mode
}

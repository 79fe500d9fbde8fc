package catalog

import (
	"encoding/binary"
	"runtime"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"

	"github.com/treeamps/amps.SDK/goamps"
)

/***

Catalog database format:

	gCatalogStateKey => catalogState

	BasisKey, NUL, NUL, StructureKey => nil
		...

The basis prefix groups all structures of one (config, degree, ee) target, so
a prefix iteration enumerates a stored basis in canonical key order and a
point lookup answers whether a structure was already added.

***/

var gCatalogStateKey = []byte{0x00, 0x00, 0x01}

const (
	catalogMajorVers = 2024
	catalogMinorVers = 1
)

// catalogState is the persisted bookkeeping record: version info plus the
// unique-structure count per basis key.
type catalogState struct {
	majorVers uint64
	minorVers uint64
	counts    map[string]uint64
}

func newCatalogState() catalogState {
	return catalogState{
		majorVers: catalogMajorVers,
		minorVers: catalogMinorVers,
		counts:    make(map[string]uint64),
	}
}

func (state *catalogState) marshal(dst []byte) []byte {
	var scrap [binary.MaxVarintLen64]byte

	putUvarint := func(dst []byte, v uint64) []byte {
		n := binary.PutUvarint(scrap[:], v)
		return append(dst, scrap[:n]...)
	}

	dst = putUvarint(dst, state.majorVers)
	dst = putUvarint(dst, state.minorVers)
	dst = putUvarint(dst, uint64(len(state.counts)))

	keys := make([]string, 0, len(state.counts))
	for key := range state.counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		dst = append(dst, key...)
		dst = putUvarint(dst, state.counts[key])
	}
	return dst
}

func (state *catalogState) unmarshal(src []byte) error {
	readUvarint := func() (uint64, bool) {
		v, n := binary.Uvarint(src)
		if n <= 0 {
			return 0, false
		}
		src = src[n:]
		return v, true
	}

	var ok bool
	if state.majorVers, ok = readUvarint(); !ok {
		return goamps.ErrBadEncoding
	}
	if state.minorVers, ok = readUvarint(); !ok {
		return goamps.ErrBadEncoding
	}
	numEntries, ok := readUvarint()
	if !ok {
		return goamps.ErrBadEncoding
	}

	state.counts = make(map[string]uint64, numEntries)
	for i := uint64(0); i < numEntries; i++ {
		if len(src) < goamps.BasisKeyLen {
			return goamps.ErrBadEncoding
		}
		key := string(src[:goamps.BasisKeyLen])
		src = src[goamps.BasisKeyLen:]
		count, ok := readUvarint()
		if !ok {
			return goamps.ErrBadEncoding
		}
		state.counts[key] = count
	}
	return nil
}

// catalog is a db wrapper for a tensor-structure catalog.
type catalog struct {
	readOnly   bool
	stateDirty bool
	state      catalogState
	db         *badger.DB
}

// OpenCatalog opens (or creates) a structure catalog.
// An empty DbPathName opens an in-memory catalog.
func OpenCatalog(opts goamps.CatalogOpts) (goamps.Catalog, error) {
	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(goamps.ErrBadCatalogParam, "DbPathName must be specified for a read-only catalog")
		}
		dbOpts.InMemory = true
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	cat := &catalog{
		readOnly: opts.ReadOnly,
		db:       db,
	}

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = true
		cat.state = newCatalogState()
	}

	if err == nil && (cat.state.majorVers != catalogMajorVers || cat.state.minorVers != catalogMinorVers) {
		err = errors.Wrap(goamps.ErrBadCatalogParam, "catalog version is incompatible")
	}

	if err != nil {
		db.Close()
		return nil, err
	}

	return cat, nil
}

func (cat *catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cat.state.unmarshal(val)
		})
	})
}

func (cat *catalog) flushState() {
	if !cat.stateDirty {
		return
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gCatalogStateKey, cat.state.marshal(nil))
	})
	if err != nil {
		panic(err)
	}
	cat.stateDirty = false
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func formStructureKey(key []byte, basis goamps.Basis, ts *goamps.TensorStructure) []byte {
	key = basis.AppendKeyTo(key)
	key = append(key, 0, 0)
	key = ts.AppendKeyTo(key)
	return key
}

// TryAdd adds the given structure under the given basis.
// If true is returned, ts did not exist and was added.
func (cat *catalog) TryAdd(basis goamps.Basis, ts *goamps.TensorStructure) bool {
	if cat.readOnly {
		return false
	}

	key := formStructureKey(nil, basis, ts)

	txn := cat.db.NewTransaction(true)
	defer txn.Commit()

	_, err := txn.Get(key)
	if err == nil {
		return false
	}
	if err != badger.ErrKeyNotFound {
		panic(err)
	}
	if err = txn.Set(key, nil); err != nil {
		panic(err)
	}

	basisKey := string(basis.AppendKeyTo(nil))
	cat.state.counts[basisKey]++
	cat.stateDirty = true
	return true
}

// NumStructures returns the number of unique structures stored for the given
// basis.
func (cat *catalog) NumStructures(basis goamps.Basis) int64 {
	basisKey := string(basis.AppendKeyTo(nil))
	return int64(cat.state.counts[basisKey])
}

// Select fires onHit with every stored structure of the given basis, decoded
// from its key, in canonical key order.
//
// Warning: onHit receives ownership of each decoded structure.
func (cat *catalog) Select(basis goamps.Basis, onHit goamps.OnStructureHit) {
	prefix := basis.AppendKeyTo(nil)
	prefix = append(prefix, 0, 0)

	txn := cat.db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		Prefix: prefix,
	})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		key := it.Item().Key()
		ts, err := goamps.StructureFromKey(key[len(prefix):])
		if err != nil {
			panic(err)
		}
		onHit <- ts
	}
}

func (cat *catalog) Close() error {
	if cat.db == nil {
		return nil
	}
	if !cat.readOnly {
		cat.flushState()
	}
	err := cat.db.Close()
	cat.db = nil
	return err
}

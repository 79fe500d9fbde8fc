package libamps

import (
	"github.com/dgraph-io/badger/v3"
	"github.com/emirpasic/gods/trees/redblacktree"

	"github.com/treeamps/amps.SDK/goamps"
)

// StructureSet allows adding canonical tensor structures and returning
// whether an equal structure has already been added.
type StructureSet interface {
	goamps.StructureAdder

	// Close removes all previously added items from this set.
	//
	// If you make subsequent calls to TryAdd(), call Close() when you're done.
	Close()
}

// NewStructureSet returns an in-memory ordered set suited to typical runs.
func NewStructureSet() StructureSet {
	return &treeSet{
		tree: newStructureTree(),
	}
}

type treeSet struct {
	tree *redblacktree.Tree
}

func (set *treeSet) TryAdd(ts *goamps.TensorStructure) bool {
	if _, found := set.tree.Get(ts); found {
		return false
	}
	set.tree.Put(ts.MakeCopy(), nil)
	return true
}

func (set *treeSet) Close() {
	set.tree.Clear()
}

// NewLSMStructureSet returns a set backed by an in-memory LSM db, suited to
// runs too large to hold comfortably in a tree.
func NewLSMStructureSet() StructureSet {
	return &lsmSet{}
}

type lsmSet struct {
	db     *badger.DB
	keyBuf []byte
}

func (set *lsmSet) autoOpen() {
	if set.db == nil {
		dbOpts := badger.DefaultOptions("").WithInMemory(true)
		dbOpts.Logger = nil
		dbOpts.MetricsEnabled = false

		var err error
		set.db, err = badger.Open(dbOpts)
		if err != nil {
			panic(err)
		}
	}
}

func (set *lsmSet) TryAdd(ts *goamps.TensorStructure) bool {
	// The degree byte keeps the empty structure's key non-empty.
	key := append(set.keyBuf[:0], byte(ts.Degree()))
	key = ts.AppendKeyTo(key)
	set.keyBuf = key
	return set.tryAdd(key)
}

func (set *lsmSet) tryAdd(key []byte) bool {
	set.autoOpen()

	txn := set.db.NewTransaction(true)
	defer txn.Commit()

	added := false
	_, err := txn.Get(key)
	if err == nil {
		// no-op since the key is already in the db
	} else if err == badger.ErrKeyNotFound {
		err = txn.Set(key, nil)
		added = true
	}

	if err != nil {
		panic(err)
	}

	return added
}

func (set *lsmSet) Close() {
	if set.db != nil {
		set.db.Close()
		set.db = nil
	}
}

package libamps

import (
	"sync"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"

	"github.com/treeamps/amps.SDK/goamps"
)

// dfsState is the mutable state of one logical search: the selection buffer,
// running counters, and the ordered output collection. It is owned by exactly
// one search; push and pop must balance on every return path.
type dfsState struct {
	targetDeg int
	eeNeeded  int
	nLegs     int
	onePerLeg bool
	catalog   []goamps.ScalarFactor

	cur      []goamps.ScalarFactor
	eeSoFar  int
	peSoFar  int
	polCount []int // per-leg polarization occurrences, one-based

	out *redblacktree.Tree
}

func newStructureTree() *redblacktree.Tree {
	return &redblacktree.Tree{
		Comparator: func(a, b interface{}) int {
			return a.(*goamps.TensorStructure).Compare(b.(*goamps.TensorStructure))
		},
	}
}

func newDFSState(cat *FactorCatalog, targetDeg, eeCount int) *dfsState {
	cfg := cat.Config()
	return &dfsState{
		targetDeg: targetDeg,
		eeNeeded:  eeCount,
		nLegs:     int(cfg.NLegs),
		onePerLeg: cfg.PolPattern == goamps.OnePerLeg,
		catalog:   cat.Factors,
		cur:       make([]goamps.ScalarFactor, 0, targetDeg),
		polCount:  make([]int, int(cfg.NLegs)+1),
		out:       newStructureTree(),
	}
}

func validateTargets(targetDeg, eeCount int) error {
	if targetDeg < 0 {
		return errors.Wrapf(goamps.ErrBadDegree, "target degree %d", targetDeg)
	}
	if eeCount < 0 || eeCount > targetDeg {
		return errors.Wrapf(goamps.ErrBadEECount, "EE count %d with target degree %d", eeCount, targetDeg)
	}
	return nil
}

func (s *dfsState) push(f goamps.ScalarFactor) {
	s.cur = append(s.cur, f)
	switch f.Kind {
	case goamps.KindEE:
		s.eeSoFar++
		s.polCount[f.A]++
		s.polCount[f.B]++
	case goamps.KindPE:
		s.peSoFar++
		s.polCount[f.B]++
	}
}

func (s *dfsState) pop(f goamps.ScalarFactor) {
	switch f.Kind {
	case goamps.KindEE:
		s.eeSoFar--
		s.polCount[f.A]--
		s.polCount[f.B]--
	case goamps.KindPE:
		s.peSoFar--
		s.polCount[f.B]--
	}
	s.cur = s.cur[:len(s.cur)-1]
}

// emit runs the pruned search from the given minimum catalog index.
// Candidates are tried in ascending index order and the cursor does not
// advance past a re-selected index, so a factor may repeat within a multiset
// and every completed buffer is already in canonical order.
func (s *dfsState) emit(idxStart int) {
	degSoFar := len(s.cur)

	if degSoFar > s.targetDeg || s.eeSoFar > s.eeNeeded {
		return
	}

	if s.onePerLeg {
		missing := 0
		for r := 1; r <= s.nLegs; r++ {
			if s.polCount[r] > 1 {
				return
			}
			if s.polCount[r] == 0 {
				missing++
			}
		}

		// Each remaining factor covers at most two uncovered legs (an EE
		// factor), so this lower bound never discards a reachable completion.
		remain := s.targetDeg - degSoFar
		if 2*remain < missing {
			return
		}

		if 2*s.eeSoFar+s.peSoFar > s.nLegs {
			return
		}
	}

	if degSoFar == s.targetDeg {
		s.accept()
		return
	}

	for i := idxStart; i < len(s.catalog); i++ {
		f := s.catalog[i]
		if f.Kind == goamps.KindEE && s.eeSoFar+1 > s.eeNeeded {
			continue
		}
		if s.onePerLeg && f.Kind != goamps.KindPP {
			if s.polCount[f.B] > 0 || (f.Kind == goamps.KindEE && s.polCount[f.A] > 0) {
				continue
			}
		}
		s.push(f)
		s.emit(i)
		s.pop(f)
	}
}

// accept evaluates the completed buffer and, if valid, inserts a canonical
// copy into the output collection.
func (s *dfsState) accept() {
	if s.eeSoFar != s.eeNeeded {
		return
	}
	if s.onePerLeg {
		if 2*s.eeSoFar+s.peSoFar != s.nLegs {
			return
		}
		for r := 1; r <= s.nLegs; r++ {
			if s.polCount[r] != 1 {
				return
			}
		}
	}

	ts := &goamps.TensorStructure{
		Factors:        append([]goamps.ScalarFactor(nil), s.cur...),
		EEContractions: s.eeSoFar,
	}
	ts.Canonicalize()
	if ts.EEContractions != s.eeNeeded {
		panic("accepted structure contradicts its EE contraction count")
	}
	s.out.Put(ts, nil)
}

func treeToSlice(tree *redblacktree.Tree) []*goamps.TensorStructure {
	out := make([]*goamps.TensorStructure, 0, tree.Size())
	it := tree.Iterator()
	for it.Next() {
		out = append(out, it.Key().(*goamps.TensorStructure))
	}
	return out
}

// Generate enumerates every distinct tensor structure with the given total
// degree and EE contraction count, in canonical order.
//
// The result is exhaustive and deterministic: two calls with identical
// arguments produce identical ordered output. Invalid targets return a config
// error and no search is performed.
func Generate(cfg goamps.GenConfig, targetDeg, eeCount int) ([]*goamps.TensorStructure, error) {
	cat, err := BuildFactorCatalog(cfg)
	if err != nil {
		return nil, err
	}
	if err := validateTargets(targetDeg, eeCount); err != nil {
		return nil, err
	}

	s := newDFSState(cat, targetDeg, eeCount)
	s.emit(0)
	return treeToSlice(s.out), nil
}

// GenerateParallel is Generate with the outermost catalog choice fanned out
// across workers, each owning private search state.
//
// Structures led by catalog index i sort before those led by any j > i, and
// the leading factor keeps the per-worker key ranges disjoint, so an in-order
// concatenation of the per-worker results is the canonical output.
func GenerateParallel(cfg goamps.GenConfig, targetDeg, eeCount int) ([]*goamps.TensorStructure, error) {
	cat, err := BuildFactorCatalog(cfg)
	if err != nil {
		return nil, err
	}
	if err := validateTargets(targetDeg, eeCount); err != nil {
		return nil, err
	}

	if targetDeg == 0 {
		s := newDFSState(cat, targetDeg, eeCount)
		s.emit(0)
		return treeToSlice(s.out), nil
	}

	parts := make([][]*goamps.TensorStructure, cat.Len())
	var wg sync.WaitGroup
	for i := 0; i < cat.Len(); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := newDFSState(cat, targetDeg, eeCount)
			s.push(cat.Factors[i])
			s.emit(i)
			parts[i] = treeToSlice(s.out)
		}(i)
	}
	wg.Wait()

	out := make([]*goamps.TensorStructure, 0)
	for _, part := range parts {
		out = append(out, part...)
	}
	return out, nil
}

// GenerateStream runs Generate and feeds the results through a new stream.
func GenerateStream(cfg goamps.GenConfig, targetDeg, eeCount int) (*goamps.StructureStream, error) {
	tsList, err := Generate(cfg, targetDeg, eeCount)
	if err != nil {
		return nil, err
	}

	stream := goamps.NewStructureStream()
	go func() {
		for _, ts := range tsList {
			stream.Outlet <- ts
		}
		stream.Close()
	}()

	return stream, nil
}

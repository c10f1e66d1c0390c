package grammar

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/nihei9/syntax/grammar/symbol"
)

func symbolComparator(a, b interface{}) int {
	return utils.UInt16Comparator(uint16(a.(symbol.Symbol)), uint16(b.(symbol.Symbol)))
}

// symbolSet is an ordered set of terminal symbols. Iteration always yields symbols in ascending
// order so that everything derived from FIRST, FOLLOW, and look-ahead sets is reproducible.
type symbolSet struct {
	set *treeset.Set
}

func newSymbolSet(syms ...symbol.Symbol) *symbolSet {
	s := &symbolSet{
		set: treeset.NewWith(symbolComparator),
	}
	for _, sym := range syms {
		s.set.Add(sym)
	}
	return s
}

func (s *symbolSet) add(sym symbol.Symbol) bool {
	if s.set.Contains(sym) {
		return false
	}
	s.set.Add(sym)
	return true
}

func (s *symbolSet) contains(sym symbol.Symbol) bool {
	return s.set.Contains(sym)
}

func (s *symbolSet) merge(t *symbolSet) bool {
	if t == nil {
		return false
	}
	changed := false
	it := t.set.Iterator()
	for it.Next() {
		if s.add(it.Value().(symbol.Symbol)) {
			changed = true
		}
	}
	return changed
}

func (s *symbolSet) symbols() []symbol.Symbol {
	vals := s.set.Values()
	syms := make([]symbol.Symbol, len(vals))
	for i, v := range vals {
		syms[i] = v.(symbol.Symbol)
	}
	return syms
}

func (s *symbolSet) len() int {
	return s.set.Size()
}

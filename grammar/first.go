package grammar

import (
	"fmt"

	"github.com/nihei9/syntax/grammar/symbol"
)

// firstEntry is a FIRST set. empty records whether ε belongs to it.
type firstEntry struct {
	symbols *symbolSet
	empty   bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{
		symbols: newSymbolSet(),
	}
}

func (e *firstEntry) add(sym symbol.Symbol) bool {
	return e.symbols.add(sym)
}

func (e *firstEntry) addEmpty() bool {
	if e.empty {
		return false
	}
	e.empty = true
	return true
}

func (e *firstEntry) mergeExceptEmpty(src *firstEntry) bool {
	if src == nil {
		return false
	}
	return e.symbols.merge(src.symbols)
}

type firstSet struct {
	set map[symbol.Symbol]*firstEntry
}

func newFirstSet(prods *productionSet) *firstSet {
	fst := &firstSet{
		set: map[symbol.Symbol]*firstEntry{},
	}
	for _, prod := range prods.getAllProductions() {
		if _, ok := fst.set[prod.lhs]; !ok {
			fst.set[prod.lhs] = newFirstEntry()
		}
	}
	return fst
}

// accumulate adds FIRST of syms to acc and reports whether acc grew.
func (fst *firstSet) accumulate(acc *firstEntry, syms []symbol.Symbol) (bool, error) {
	changed := false
	for _, sym := range syms {
		if sym.IsTerminal() {
			return acc.add(sym) || changed, nil
		}
		e := fst.findBySymbol(sym)
		if e == nil {
			return false, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		if acc.mergeExceptEmpty(e) {
			changed = true
		}
		if !e.empty {
			return changed, nil
		}
	}
	return acc.addEmpty() || changed, nil
}

// find returns FIRST of the suffix of the production starting at head.
func (fst *firstSet) find(prod *production, head int) (*firstEntry, error) {
	entry := newFirstEntry()
	if head >= prod.rhsLen {
		entry.addEmpty()
		return entry, nil
	}
	_, err := fst.accumulate(entry, prod.rhs[head:prod.rhsLen])
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (fst *firstSet) findBySymbol(sym symbol.Symbol) *firstEntry {
	return fst.set[sym]
}

// genFirstSet iterates over all productions until no FIRST set grows.
func genFirstSet(prods *productionSet) (*firstSet, error) {
	first := newFirstSet(prods)
	for changed := true; changed; {
		changed = false
		for _, prod := range prods.getAllProductions() {
			grown, err := first.accumulate(first.findBySymbol(prod.lhs), prod.rhs[:prod.rhsLen])
			if err != nil {
				return nil, err
			}
			changed = changed || grown
		}
	}
	return first, nil
}

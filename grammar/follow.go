package grammar

import (
	"fmt"

	"github.com/nihei9/syntax/grammar/symbol"
)

// followEntry holds FOLLOW of a non-terminal. The EOF symbol is stored like any other terminal.
type followEntry struct {
	symbols *symbolSet
}

func newFollowEntry() *followEntry {
	return &followEntry{
		symbols: newSymbolSet(),
	}
}

func (e *followEntry) add(sym symbol.Symbol) bool {
	return e.symbols.add(sym)
}

func (e *followEntry) merge(fst *firstEntry, flw *followEntry) bool {
	changed := false
	if fst != nil && e.symbols.merge(fst.symbols) {
		changed = true
	}
	if flw != nil && e.symbols.merge(flw.symbols) {
		changed = true
	}
	return changed
}

type followSet struct {
	set map[symbol.Symbol]*followEntry
}

func newFollow(prods *productionSet) *followSet {
	flw := &followSet{
		set: map[symbol.Symbol]*followEntry{},
	}
	for _, prod := range prods.getAllProductions() {
		if _, ok := flw.set[prod.lhs]; ok {
			continue
		}
		flw.set[prod.lhs] = newFollowEntry()
	}
	return flw
}

func (flw *followSet) find(sym symbol.Symbol) (*followEntry, error) {
	e, ok := flw.set[sym]
	if !ok {
		return nil, fmt.Errorf("an entry of FOLLOW was not found; symbol: %s", sym)
	}
	return e, nil
}

func genFollowSet(prods *productionSet, first *firstSet) (*followSet, error) {
	var ntsyms []symbol.Symbol
	{
		known := map[symbol.Symbol]struct{}{}
		for _, prod := range prods.getAllProductions() {
			if _, ok := known[prod.lhs]; ok {
				continue
			}
			known[prod.lhs] = struct{}{}
			ntsyms = append(ntsyms, prod.lhs)
		}
	}

	follow := newFollow(prods)
	for {
		more := false
		for _, ntsym := range ntsyms {
			e, err := follow.find(ntsym)
			if err != nil {
				return nil, err
			}
			if ntsym.IsStart() {
				if e.add(symbol.SymbolEOF) {
					more = true
				}
			}
			for _, prod := range prods.getAllProductions() {
				for i, sym := range prod.rhs {
					if sym != ntsym {
						continue
					}
					fst, err := first.find(prod, i+1)
					if err != nil {
						return nil, err
					}
					if e.merge(fst, nil) {
						more = true
					}
					if fst.empty {
						flw, err := follow.find(prod.lhs)
						if err != nil {
							return nil, err
						}
						if e.merge(nil, flw) {
							more = true
						}
					}
				}
			}
		}
		if !more {
			break
		}
	}

	return follow, nil
}

package grammar

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"

	"github.com/nihei9/syntax/grammar/symbol"
)

type lrItemID [32]byte

func (id lrItemID) String() string {
	return fmt.Sprintf("%x", id.num())
}

func (id lrItemID) num() uint32 {
	return binary.LittleEndian.Uint32(id[:])
}

type lookAhead struct {
	symbols *symbolSet
}

// lrItem is a production with a dot in its right-hand side. The dotted symbol is the one right
// after the dot, or SymbolNil once the dot reaches the end.
type lrItem struct {
	id           lrItemID
	prod         productionID
	prodNum      productionNum
	dot          int
	dottedSymbol symbol.Symbol

	// initial marks S' → ・S.
	initial   bool
	reducible bool
	kernel    bool

	// lookAhead holds the terminals that allow a reducible item to be reduced.
	lookAhead lookAhead
}

func newLR0Item(prod *production, dot int) (*lrItem, error) {
	if prod == nil {
		return nil, fmt.Errorf("production must be non-nil")
	}
	if dot < 0 || dot > prod.rhsLen {
		return nil, fmt.Errorf("dot must be between 0 and %v", prod.rhsLen)
	}

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(dot))
	id := lrItemID(sha256.Sum256(append(append([]byte{}, prod.id[:]...), buf[:]...)))

	item := &lrItem{
		id:           id,
		prod:         prod.id,
		prodNum:      prod.num,
		dot:          dot,
		dottedSymbol: symbol.SymbolNil,
		initial:      dot == 0 && prod.lhs.IsStart(),
		reducible:    dot == prod.rhsLen,
	}
	if dot < prod.rhsLen {
		item.dottedSymbol = prod.rhs[dot]
	}
	item.kernel = item.initial || dot > 0

	return item, nil
}

type kernelID [32]byte

func (id kernelID) String() string {
	return fmt.Sprintf("%x", binary.LittleEndian.Uint32(id[:]))
}

// kernel is the set of kernel items identifying a state. Its items are sorted by production
// number and dot, so equal sets get equal IDs.
type kernel struct {
	id    kernelID
	items []*lrItem
}

func newKernel(items []*lrItem) (*kernel, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("a kernel needs at least one item")
	}

	unique := make([]*lrItem, 0, len(items))
	seen := make(map[lrItemID]struct{}, len(items))
	for _, item := range items {
		if !item.kernel {
			return nil, fmt.Errorf("not a kernel item: %v", item.id)
		}
		if _, ok := seen[item.id]; ok {
			continue
		}
		seen[item.id] = struct{}{}
		unique = append(unique, item)
	}
	sort.Slice(unique, func(i, j int) bool {
		a, b := unique[i], unique[j]
		switch {
		case a.prodNum != b.prodNum:
			return a.prodNum < b.prodNum
		case a.dot != b.dot:
			return a.dot < b.dot
		}
		return a.id.num() < b.id.num()
	})

	h := sha256.New()
	for _, item := range unique {
		h.Write(item.id[:])
	}
	var id kernelID
	copy(id[:], h.Sum(nil))

	return &kernel{
		id:    id,
		items: unique,
	}, nil
}

type stateNum int

const stateNumInitial = stateNum(0)

func (n stateNum) Int() int {
	return int(n)
}

func (n stateNum) String() string {
	return strconv.Itoa(int(n))
}

func (n stateNum) next() stateNum {
	return stateNum(n + 1)
}

func (it *lrItem) addLookAhead(syms ...symbol.Symbol) bool {
	if it.lookAhead.symbols == nil {
		it.lookAhead.symbols = newSymbolSet()
	}
	changed := false
	for _, sym := range syms {
		if it.lookAhead.symbols.add(sym) {
			changed = true
		}
	}
	return changed
}

func (it *lrItem) mergeLookAhead(src *lrItem) bool {
	if src.lookAhead.symbols == nil {
		return false
	}
	if it.lookAhead.symbols == nil {
		it.lookAhead.symbols = newSymbolSet()
	}
	return it.lookAhead.symbols.merge(src.lookAhead.symbols)
}

func (it *lrItem) lookAheadSymbols() []symbol.Symbol {
	if it.lookAhead.symbols == nil {
		return nil
	}
	return it.lookAhead.symbols.symbols()
}

type lrState struct {
	*kernel
	num       stateNum
	next      map[symbol.Symbol]kernelID
	reducible map[productionID]struct{}

	// emptyProdItems holds the reducible items of empty productions, like p → ・ε. They belong to
	// the closure but not to the kernel, and still need look-ahead symbols.
	emptyProdItems []*lrItem
}

// findItem returns the kernel item or the empty-production item having the ID.
func (s *lrState) findItem(id lrItemID) (*lrItem, bool) {
	for _, item := range s.items {
		if item.id == id {
			return item, true
		}
	}
	for _, item := range s.emptyProdItems {
		if item.id == id {
			return item, true
		}
	}
	return nil, false
}

// findReducibleItem returns the item that reduces the production in this state.
func (s *lrState) findReducibleItem(prod productionID) (*lrItem, bool) {
	for _, item := range s.items {
		if item.prod == prod && item.reducible {
			return item, true
		}
	}
	for _, item := range s.emptyProdItems {
		if item.prod == prod {
			return item, true
		}
	}
	return nil, false
}

package grammar

import (
	"fmt"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/nihei9/syntax/grammar/symbol"
)

type stateAndLRItem struct {
	kernelID kernelID
	itemID   lrItemID
}

// propagation records that the look-ahead symbols of a kernel item flow into other items.
type propagation struct {
	src  lrItemID
	dest []*stateAndLRItem
}

type lalr1Automaton struct {
	*lr0Automaton
}

func genLALR1Automaton(lr0 *lr0Automaton, prods *productionSet, first *firstSet) (*lalr1Automaton, error) {
	// Set the look-ahead symbol <EOF> to the initial item: [S' → ・S, $]
	iniState := lr0.states[lr0.initialState]
	iniState.items[0].addLookAhead(symbol.SymbolEOF)

	props := map[kernelID][]*propagation{}
	for _, state := range lr0.orderedStates {
		for _, kItem := range state.items {
			items, err := genLALR1Closure(kItem, prods, first)
			if err != nil {
				return nil, err
			}

			var propDests []*stateAndLRItem
			for _, ci := range items {
				var dest *stateAndLRItem
				if ci.item.reducible {
					// A reducible item in a closure is either the kernel item itself or an empty production.
					if ci.item.kernel {
						continue
					}
					dest = &stateAndLRItem{
						kernelID: state.id,
						itemID:   ci.item.id,
					}
				} else {
					p, ok := prods.findByID(ci.item.prod)
					if !ok {
						return nil, fmt.Errorf("production not found: %v", ci.item.prod)
					}
					it, err := newLR0Item(p, ci.item.dot+1)
					if err != nil {
						return nil, fmt.Errorf("failed to generate an item ID: %v", err)
					}
					dest = &stateAndLRItem{
						kernelID: state.next[ci.item.dottedSymbol],
						itemID:   it.id,
					}
				}

				destState, ok := lr0.states[dest.kernelID]
				if !ok {
					return nil, fmt.Errorf("destination state not found: %v", dest.kernelID)
				}
				destItem, ok := destState.findItem(dest.itemID)
				if !ok {
					return nil, fmt.Errorf("destination item not found: %v", dest.itemID)
				}
				if ci.lookAhead.len() > 0 {
					destItem.addLookAhead(ci.lookAhead.symbols()...)
				}
				if ci.propagation {
					propDests = append(propDests, dest)
				}
			}
			if len(propDests) == 0 {
				continue
			}

			props[state.id] = append(props[state.id], &propagation{
				src:  kItem.id,
				dest: propDests,
			})
		}
	}

	err := propagateLookAhead(lr0, props)
	if err != nil {
		return nil, fmt.Errorf("failed to propagate look-ahead symbols: %v", err)
	}

	return &lalr1Automaton{
		lr0Automaton: lr0,
	}, nil
}

type lalr1ClosureItem struct {
	item *lrItem

	// lookAhead holds the symbols generated spontaneously inside the closure.
	lookAhead *symbolSet

	// When propagation is true, the item inherits the look-ahead symbols of the kernel item the closure starts from.
	propagation bool
}

// genLALR1Closure computes CLOSURE({[srcItem, #]}), where # is a marker standing for the look-ahead
// symbols of srcItem. Items reached through # propagate; the others carry spontaneous symbols only.
func genLALR1Closure(srcItem *lrItem, prods *productionSet, first *firstSet) ([]*lalr1ClosureItem, error) {
	var items []*lalr1ClosureItem
	known := map[lrItemID]*lalr1ClosureItem{}

	src := &lalr1ClosureItem{
		item:        srcItem,
		lookAhead:   newSymbolSet(),
		propagation: true,
	}
	items = append(items, src)
	known[srcItem.id] = src

	unchecked := []*lalr1ClosureItem{src}
	for len(unchecked) > 0 {
		ci := unchecked[0]
		unchecked = unchecked[1:]

		if !ci.item.dottedSymbol.IsNonTerminal() {
			continue
		}

		p, ok := prods.findByID(ci.item.prod)
		if !ok {
			return nil, fmt.Errorf("production not found: %v", ci.item.prod)
		}
		fst, err := first.find(p, ci.item.dot+1)
		if err != nil {
			return nil, err
		}

		ps, _ := prods.findByLHS(ci.item.dottedSymbol)
		for _, prod := range ps {
			newItem, err := newLR0Item(prod, 0)
			if err != nil {
				return nil, err
			}
			target, exist := known[newItem.id]
			if !exist {
				target = &lalr1ClosureItem{
					item:      newItem,
					lookAhead: newSymbolSet(),
				}
				items = append(items, target)
				known[newItem.id] = target
			}

			changed := target.lookAhead.merge(fst.symbols)
			if fst.empty {
				if target.lookAhead.merge(ci.lookAhead) {
					changed = true
				}
				if ci.propagation && !target.propagation {
					target.propagation = true
					changed = true
				}
			}
			if changed || !exist {
				unchecked = append(unchecked, target)
			}
		}
	}

	return items, nil
}

// propagateLookAhead moves look-ahead symbols along the propagation edges until nothing changes.
// Only states whose look-ahead symbols changed are revisited.
func propagateLookAhead(lr0 *lr0Automaton, props map[kernelID][]*propagation) error {
	queue := arraylist.New()
	queued := map[kernelID]bool{}
	for _, state := range lr0.orderedStates {
		queue.Add(state.id)
		queued[state.id] = true
	}

	for !queue.Empty() {
		v, _ := queue.Get(0)
		queue.Remove(0)
		kID := v.(kernelID)
		queued[kID] = false

		srcState, ok := lr0.states[kID]
		if !ok {
			return fmt.Errorf("source state not found: %v", kID)
		}
		for _, prop := range props[kID] {
			srcItem, ok := srcState.findItem(prop.src)
			if !ok {
				return fmt.Errorf("source item not found: %v", prop.src)
			}
			for _, dest := range prop.dest {
				destState, ok := lr0.states[dest.kernelID]
				if !ok {
					return fmt.Errorf("destination state not found: %v", dest.kernelID)
				}
				destItem, ok := destState.findItem(dest.itemID)
				if !ok {
					return fmt.Errorf("destination item not found: %v", dest.itemID)
				}
				if destItem.mergeLookAhead(srcItem) && !queued[dest.kernelID] {
					queue.Add(dest.kernelID)
					queued[dest.kernelID] = true
				}
			}
		}
	}

	return nil
}

package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/syntax/grammar/symbol"
)

type lr0Automaton struct {
	initialState kernelID
	states       map[kernelID]*lrState

	// orderedStates holds the states in the order they were numbered.
	orderedStates []*lrState
}

// genLR0Automaton numbers states in the order a FIFO queue discovers their kernels. Transitions
// leave a state in ascending symbol order, so the numbering depends only on the grammar.
func genLR0Automaton(prods *productionSet, startSym symbol.Symbol) (*lr0Automaton, error) {
	if !startSym.IsStart() {
		return nil, fmt.Errorf("not an augmented start symbol: %v", startSym)
	}
	startProds, _ := prods.findByLHS(startSym)
	if len(startProds) == 0 {
		return nil, fmt.Errorf("the augmented start symbol has no production")
	}
	startItem, err := newLR0Item(startProds[0], 0)
	if err != nil {
		return nil, err
	}
	initial, err := newKernel([]*lrItem{startItem})
	if err != nil {
		return nil, err
	}

	a := &lr0Automaton{
		initialState: initial.id,
		states:       map[kernelID]*lrState{},
	}
	queued := map[kernelID]struct{}{
		initial.id: {},
	}
	queue := []*kernel{initial}
	num := stateNumInitial
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]

		state, targets, err := genLR0State(k, prods)
		if err != nil {
			return nil, err
		}
		state.num = num
		num = num.next()
		a.states[state.id] = state
		a.orderedStates = append(a.orderedStates, state)

		for _, t := range targets {
			if _, ok := queued[t.id]; ok {
				continue
			}
			queued[t.id] = struct{}{}
			queue = append(queue, t)
		}
	}

	tracer().Debugf("LR(0) automaton has %d states", len(a.orderedStates))

	return a, nil
}

// genLR0State closes the kernel and returns the state with the kernels its transitions lead to.
func genLR0State(k *kernel, prods *productionSet) (*lrState, []*kernel, error) {
	items, err := genLR0Closure(k, prods)
	if err != nil {
		return nil, nil, err
	}
	syms, targets, err := genGoToKernels(items, prods)
	if err != nil {
		return nil, nil, err
	}

	state := &lrState{
		kernel:    k,
		next:      make(map[symbol.Symbol]kernelID, len(syms)),
		reducible: map[productionID]struct{}{},
	}
	for i, sym := range syms {
		state.next[sym] = targets[i].id
	}
	for _, item := range items {
		if !item.reducible {
			continue
		}
		state.reducible[item.prod] = struct{}{}

		prod, ok := prods.findByID(item.prod)
		if !ok {
			return nil, nil, fmt.Errorf("reducible production not found: %v", item.prod)
		}
		if prod.isEmpty() {
			state.emptyProdItems = append(state.emptyProdItems, item)
		}
	}

	return state, targets, nil
}

// genLR0Closure returns the kernel items followed by the non-kernel items they imply.
func genLR0Closure(k *kernel, prods *productionSet) ([]*lrItem, error) {
	items := append([]*lrItem{}, k.items...)
	seen := make(map[lrItemID]struct{}, len(items))
	for _, item := range items {
		seen[item.id] = struct{}{}
	}
	expanded := map[symbol.Symbol]struct{}{}
	for i := 0; i < len(items); i++ {
		sym := items[i].dottedSymbol
		if !sym.IsNonTerminal() {
			continue
		}
		if _, ok := expanded[sym]; ok {
			continue
		}
		expanded[sym] = struct{}{}

		ps, _ := prods.findByLHS(sym)
		for _, prod := range ps {
			item, err := newLR0Item(prod, 0)
			if err != nil {
				return nil, err
			}
			if _, ok := seen[item.id]; ok {
				continue
			}
			seen[item.id] = struct{}{}
			items = append(items, item)
		}
	}

	return items, nil
}

// genGoToKernels advances the dot over each symbol following it and groups the results by that
// symbol. The symbols come back sorted, paired with their kernels.
func genGoToKernels(items []*lrItem, prods *productionSet) ([]symbol.Symbol, []*kernel, error) {
	advanced := map[symbol.Symbol][]*lrItem{}
	var syms []symbol.Symbol
	for _, item := range items {
		sym := item.dottedSymbol
		if sym.IsNil() {
			continue
		}
		prod, ok := prods.findByID(item.prod)
		if !ok {
			return nil, nil, fmt.Errorf("a production was not found: %v", item.prod)
		}
		next, err := newLR0Item(prod, item.dot+1)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := advanced[sym]; !ok {
			syms = append(syms, sym)
		}
		advanced[sym] = append(advanced[sym], next)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})

	kernels := make([]*kernel, 0, len(syms))
	for _, sym := range syms {
		k, err := newKernel(advanced[sym])
		if err != nil {
			return nil, nil, err
		}
		kernels = append(kernels, k)
	}

	return syms, kernels, nil
}

package grammar

import "fmt"

type slr1Automaton struct {
	*lr0Automaton
}

func genSLR1Automaton(lr0 *lr0Automaton, prods *productionSet, follow *followSet) (*slr1Automaton, error) {
	for _, state := range lr0.orderedStates {
		for prodID := range state.reducible {
			prod, ok := prods.findByID(prodID)
			if !ok {
				return nil, fmt.Errorf("reducible production not found: %v", prodID)
			}

			flw, err := follow.find(prod.lhs)
			if err != nil {
				return nil, err
			}

			reducibleItem, ok := state.findReducibleItem(prodID)
			if !ok {
				return nil, fmt.Errorf("reducible item not found; state: %v, production: %v", state.num, prod.num)
			}

			reducibleItem.addLookAhead(flw.symbols.symbols()...)
		}
	}

	return &slr1Automaton{
		lr0Automaton: lr0,
	}, nil
}

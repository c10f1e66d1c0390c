package symbol

import (
	"fmt"
	"sort"
)

type SymbolNum uint16

func (n SymbolNum) Int() int {
	return int(n)
}

// Symbol packs a terminal flag, a start/EOF flag, and a 14-bit number into 16 bits. Non-terminals
// sort before terminals, and symbols of the same kind sort in registration order.
type Symbol uint16

const (
	bitTerminal = uint16(1 << 15)
	bitSpecial  = uint16(1 << 14)
	numberMask  = bitSpecial - 1

	SymbolNil   = Symbol(0)
	SymbolStart = Symbol(bitSpecial | 1)
	SymbolEOF   = Symbol(bitTerminal | bitSpecial | 1)

	// SymbolNameEOF starts with `$` so that it never collides with a user-defined symbol.
	SymbolNameEOF = "$end"

	// Number 1 belongs to the augmented start symbol and to EOF.
	nonTerminalNumMin = SymbolNum(2)
	terminalNumMin    = SymbolNum(2)
	symbolNumMax      = SymbolNum(numberMask)
)

func newSymbol(terminal bool, num SymbolNum) (Symbol, error) {
	if num > symbolNumMax {
		return SymbolNil, fmt.Errorf("a symbol number exceeds the limit; limit: %v, passed: %v", symbolNumMax, num)
	}
	sym := Symbol(num)
	if terminal {
		sym |= Symbol(bitTerminal)
	}
	return sym, nil
}

func (s Symbol) String() string {
	switch {
	case s.IsStart():
		return fmt.Sprintf("s%v", s.Num())
	case s.IsEOF():
		return fmt.Sprintf("e%v", s.Num())
	case s.IsNonTerminal():
		return fmt.Sprintf("n%v", s.Num())
	case s.IsTerminal():
		return fmt.Sprintf("t%v", s.Num())
	}
	return "?0"
}

func (s Symbol) Num() SymbolNum {
	return SymbolNum(uint16(s) & numberMask)
}

// Index returns the zero-based table column of the symbol within its kind.
// The EOF symbol is terminal 0. The augmented start symbol has no column and
// yields -1; user non-terminals start at 0.
func (s Symbol) Index() int {
	if s.IsNil() || s.IsStart() {
		return -1
	}
	if s.IsTerminal() {
		return s.Num().Int() - 1
	}
	return s.Num().Int() - nonTerminalNumMin.Int()
}

func (s Symbol) Byte() []byte {
	if s.IsNil() {
		return []byte{0, 0}
	}
	return []byte{byte(uint16(s) >> 8), byte(uint16(s))}
}

func (s Symbol) IsNil() bool {
	return s.Num() == 0
}

func (s Symbol) special() bool {
	return !s.IsNil() && uint16(s)&bitSpecial != 0
}

func (s Symbol) IsStart() bool {
	return s.special() && s.IsNonTerminal()
}

func (s Symbol) IsEOF() bool {
	return s.special() && s.IsTerminal()
}

func (s Symbol) IsNonTerminal() bool {
	return !s.IsNil() && uint16(s)&bitTerminal == 0
}

func (s Symbol) IsTerminal() bool {
	return !s.IsNil() && uint16(s)&bitTerminal != 0
}

// SymbolTable maps symbol names to symbols. Terminals and non-terminals share one name space.
type SymbolTable struct {
	text2Sym     map[string]Symbol
	sym2Text     map[Symbol]string
	nonTermTexts []string
	termTexts    []string
	nonTermNum   SymbolNum
	termNum      SymbolNum
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		text2Sym: map[string]Symbol{
			SymbolNameEOF: SymbolEOF,
		},
		sym2Text: map[Symbol]string{
			SymbolEOF: SymbolNameEOF,
		},
		termTexts: []string{
			"",            // Nil
			SymbolNameEOF, // EOF
		},
		nonTermTexts: []string{
			"", // Nil
			"", // Start Symbol
		},
		nonTermNum: nonTerminalNumMin,
		termNum:    terminalNumMin,
	}
}

func (t *SymbolTable) RegisterStartSymbol(text string) (Symbol, error) {
	if sym, ok := t.text2Sym[text]; ok && sym != SymbolStart {
		return SymbolNil, fmt.Errorf("the name of the augmented start symbol is already used: %v", text)
	}
	t.text2Sym[text] = SymbolStart
	t.sym2Text[SymbolStart] = text
	t.nonTermTexts[SymbolStart.Num().Int()] = text
	return SymbolStart, nil
}

func (t *SymbolTable) RegisterNonTerminalSymbol(text string) (Symbol, error) {
	if sym, ok := t.text2Sym[text]; ok {
		if !sym.IsNonTerminal() {
			return SymbolNil, fmt.Errorf("%v is already registered as a terminal symbol", text)
		}
		return sym, nil
	}
	sym, err := newSymbol(false, t.nonTermNum)
	if err != nil {
		return SymbolNil, err
	}
	t.nonTermNum++
	t.text2Sym[text] = sym
	t.sym2Text[sym] = text
	t.nonTermTexts = append(t.nonTermTexts, text)
	return sym, nil
}

func (t *SymbolTable) RegisterTerminalSymbol(text string) (Symbol, error) {
	if sym, ok := t.text2Sym[text]; ok {
		if !sym.IsTerminal() {
			return SymbolNil, fmt.Errorf("%v is already registered as a non-terminal symbol", text)
		}
		return sym, nil
	}
	sym, err := newSymbol(true, t.termNum)
	if err != nil {
		return SymbolNil, err
	}
	t.termNum++
	t.text2Sym[text] = sym
	t.sym2Text[sym] = text
	t.termTexts = append(t.termTexts, text)
	return sym, nil
}

func (t *SymbolTable) ToSymbol(text string) (Symbol, bool) {
	if sym, ok := t.text2Sym[text]; ok {
		return sym, true
	}
	return SymbolNil, false
}

func (t *SymbolTable) ToText(sym Symbol) (string, bool) {
	text, ok := t.sym2Text[sym]
	return text, ok
}

// TerminalSymbols returns all terminals including EOF in table-column order.
func (t *SymbolTable) TerminalSymbols() []Symbol {
	syms := make([]Symbol, 0, t.termNum.Int()-1)
	for sym := range t.sym2Text {
		if !sym.IsTerminal() {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i].Index() < syms[j].Index()
	})
	return syms
}

// NonTerminalSymbols returns the user non-terminals in table-column order. The augmented start
// symbol is not included.
func (t *SymbolTable) NonTerminalSymbols() []Symbol {
	syms := make([]Symbol, 0, t.nonTermNum.Int()-nonTerminalNumMin.Int())
	for sym := range t.sym2Text {
		if !sym.IsNonTerminal() || sym.IsStart() {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

func (t *SymbolTable) TerminalCount() int {
	return t.termNum.Int() - 1
}

func (t *SymbolTable) NonTerminalCount() int {
	return t.nonTermNum.Int() - nonTerminalNumMin.Int()
}

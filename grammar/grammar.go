package grammar

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	verr "github.com/nihei9/syntax/error"
	"github.com/nihei9/syntax/grammar/symbol"
)

type Assoc string

const (
	AssocNone  = Assoc("none")
	AssocLeft  = Assoc("left")
	AssocRight = Assoc("right")
)

func ParseAssoc(s string) (Assoc, error) {
	switch strings.ToLower(s) {
	case "", "n", "none", "nonassoc":
		return AssocNone, nil
	case "l", "left":
		return AssocLeft, nil
	case "r", "right":
		return AssocRight, nil
	}
	return AssocNone, fmt.Errorf("%w: %v", semErrInvalidAssoc, s)
}

const (
	precNil = 0

	// codeError is the token code of the first error token unless the grammar assigns it.
	codeError = 256

	// codeNamedMin is the first token code given to a terminal that is neither a single
	// character literal nor has an explicit code.
	codeNamedMin = 257
)

// Type is a semantic type. Expression is written in the target language.
type Type struct {
	Name       string
	Expression string
	Index      int
}

type Terminal struct {
	Symbol     symbol.Symbol
	Name       string
	Index      int
	Code       int
	Precedence int
	Assoc      Assoc
	Literal    string
	Pattern    string
	Type       *Type
	Skip       bool

	// Error is true when the terminal is an error token.
	Error bool
}

type NonTerminal struct {
	Symbol symbol.Symbol
	Name   string

	// Index is -1 for the augmented start symbol.
	Index int
	Type  *Type
}

type Rule struct {
	Index      int
	LHS        *NonTerminal
	RHS        []symbol.Symbol
	Precedence int

	// Action is the raw action code including its enclosing braces. It is empty when the rule has no action.
	Action    string
	ActionRow int
	Row       int

	// Message is an index into Grammar.Messages, or -1.
	Message int

	prod *production
}

func (r *Rule) IsAugmented() bool {
	return r.Index == productionNumStart.Int()
}

func (r *Rule) Len() int {
	return len(r.RHS)
}

type LexerAction struct {
	Mode   string
	Action string
	Row    int
}

type Grammar struct {
	Name         string
	Declarations string
	Trailer      string
	TrailerRow   int

	// Terminals are ordered by index; Terminals[0] is the EOF symbol.
	Terminals []*Terminal

	// NonTerminals are ordered by index and exclude the augmented start symbol.
	NonTerminals []*NonTerminal
	Types        []*Type

	// Rules are ordered by index; Rules[0] is the augmented start rule.
	Rules        []*Rule
	ErrorTokens  []*Terminal
	Messages     []string
	LexerActions []*LexerAction

	Start          *NonTerminal
	AugmentedStart *NonTerminal

	symTab      *symbol.SymbolTable
	prods       *productionSet
	sym2Term    map[symbol.Symbol]*Terminal
	sym2NonTerm map[symbol.Symbol]*NonTerminal
	name2Type   map[string]*Type
}

func (g *Grammar) Terminal(sym symbol.Symbol) (*Terminal, bool) {
	t, ok := g.sym2Term[sym]
	return t, ok
}

func (g *Grammar) NonTerminal(sym symbol.Symbol) (*NonTerminal, bool) {
	n, ok := g.sym2NonTerm[sym]
	return n, ok
}

func (g *Grammar) TerminalByName(name string) (*Terminal, bool) {
	sym, ok := g.symTab.ToSymbol(name)
	if !ok {
		return nil, false
	}
	return g.Terminal(sym)
}

func (g *Grammar) NonTerminalByName(name string) (*NonTerminal, bool) {
	sym, ok := g.symTab.ToSymbol(name)
	if !ok {
		return nil, false
	}
	return g.NonTerminal(sym)
}

func (g *Grammar) SymbolName(sym symbol.Symbol) string {
	text, ok := g.symTab.ToText(sym)
	if !ok {
		return sym.String()
	}
	return text
}

// SymbolType returns the semantic type of a terminal or a non-terminal, or nil when it is untyped.
func (g *Grammar) SymbolType(sym symbol.Symbol) *Type {
	if t, ok := g.sym2Term[sym]; ok {
		return t.Type
	}
	if n, ok := g.sym2NonTerm[sym]; ok {
		return n.Type
	}
	return nil
}

func (g *Grammar) LookupType(name string) (*Type, bool) {
	t, ok := g.name2Type[name]
	return t, ok
}

func (g *Grammar) String() string {
	var b strings.Builder
	for _, r := range g.Rules {
		fmt.Fprintf(&b, "%v\n", g.RuleString(r, -1))
	}
	return b.String()
}

// RuleString formats a rule. When dot is not negative, a dot is inserted at the position.
func (g *Grammar) RuleString(r *Rule, dot int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v →", r.LHS.Name)
	for i, sym := range r.RHS {
		if i == dot {
			fmt.Fprintf(&b, " ・")
		}
		fmt.Fprintf(&b, " %v", g.SymbolName(sym))
	}
	if dot >= len(r.RHS) {
		fmt.Fprintf(&b, " ・")
	}
	return b.String()
}

type TerminalDecl struct {
	Name string

	// Code is the token code. Zero means the code is assigned automatically.
	Code    int
	Literal string
	Pattern string
	Type    string
	Skip    bool
	Row     int
}

type PrecedenceDecl struct {
	Assoc Assoc

	// Level is the precedence level. Zero means the level follows the declaration order.
	Level   int
	Symbols []string
	Row     int
}

type RuleDecl struct {
	LHS       string
	RHS       []string
	Prec      string
	Action    string
	ActionRow int
	Message   string
	Row       int
}

type typeDecl struct {
	name string
	expr string
	row  int
}

type nonTermDecl struct {
	name string
	typ  string
	row  int
}

type errTokenDecl struct {
	name string
	row  int
}

// Builder assembles a Grammar. Every method records declarations only; all checks run in Build,
// which reports every problem it finds at once.
type Builder struct {
	name         string
	start        string
	startRow     int
	declarations string
	trailer      string
	trailerRow   int
	types        []*typeDecl
	terms        []*TerminalDecl
	nonTerms     []*nonTermDecl
	precs        []*PrecedenceDecl
	rules        []*RuleDecl
	errTokens    []*errTokenDecl
	lexActs      []*LexerAction

	errs verr.SpecErrors
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name: name,
	}
}

func (b *Builder) Start(name string, row int) {
	b.start = name
	b.startRow = row
}

func (b *Builder) Declarations(code string) {
	b.declarations = code
}

func (b *Builder) Trailer(code string, row int) {
	b.trailer = code
	b.trailerRow = row
}

func (b *Builder) Type(name, expr string, row int) {
	b.types = append(b.types, &typeDecl{
		name: name,
		expr: expr,
		row:  row,
	})
}

func (b *Builder) Terminal(decl *TerminalDecl) {
	b.terms = append(b.terms, decl)
}

func (b *Builder) NonTerminal(name, typ string, row int) {
	b.nonTerms = append(b.nonTerms, &nonTermDecl{
		name: name,
		typ:  typ,
		row:  row,
	})
}

func (b *Builder) Precedence(decl *PrecedenceDecl) {
	b.precs = append(b.precs, decl)
}

func (b *Builder) Rule(decl *RuleDecl) {
	b.rules = append(b.rules, decl)
}

func (b *Builder) ErrorToken(name string, row int) {
	b.errTokens = append(b.errTokens, &errTokenDecl{
		name: name,
		row:  row,
	})
}

func (b *Builder) LexerAction(mode, action string, row int) {
	b.lexActs = append(b.lexActs, &LexerAction{
		Mode:   mode,
		Action: action,
		Row:    row,
	})
}

func (b *Builder) addError(cause error, detail string, row int) {
	b.errs = append(b.errs, &verr.SpecError{
		Cause:  cause,
		Detail: detail,
		Row:    row,
	})
}

func (b *Builder) Build() (*Grammar, error) {
	b.errs = nil

	g := &Grammar{
		Name:         b.name,
		Declarations: b.declarations,
		Trailer:      b.trailer,
		TrailerRow:   b.trailerRow,
		LexerActions: b.lexActs,
		symTab:       symbol.NewSymbolTable(),
		prods:        newProductionSet(),
		sym2Term:     map[symbol.Symbol]*Terminal{},
		sym2NonTerm:  map[symbol.Symbol]*NonTerminal{},
		name2Type:    map[string]*Type{},
	}

	if len(b.rules) == 0 {
		b.addError(semErrNoProduction, "", 0)
		return nil, b.errs
	}

	b.buildTypes(g)
	b.buildTerminals(g)
	b.buildNonTerminals(g)
	b.buildPrecedences(g)
	b.assignCodes(g)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	b.buildRules(g)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	b.checkReachability(g)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	tracer().Debugf("grammar %v: %d terminals, %d non-terminals, %d rules", g.Name, len(g.Terminals), len(g.NonTerminals), len(g.Rules))

	return g, nil
}

func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, "$") {
		return false
	}
	for _, r := range name {
		if unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func (b *Builder) buildTypes(g *Grammar) {
	for _, decl := range b.types {
		if !validName(decl.name) {
			b.addError(semErrInvalidName, decl.name, decl.row)
			continue
		}
		if _, ok := g.name2Type[decl.name]; ok {
			b.addError(semErrDuplicateType, decl.name, decl.row)
			continue
		}
		t := &Type{
			Name:       decl.name,
			Expression: decl.expr,
			Index:      len(g.Types),
		}
		g.Types = append(g.Types, t)
		g.name2Type[decl.name] = t
	}
}

func (b *Builder) registerTerminal(g *Grammar, name string, row int) (*Terminal, bool) {
	sym, err := g.symTab.RegisterTerminalSymbol(name)
	if err != nil {
		b.addError(semErrDuplicateName, name, row)
		return nil, false
	}
	if t, ok := g.sym2Term[sym]; ok {
		return t, false
	}
	t := &Terminal{
		Symbol: sym,
		Name:   name,
		Index:  sym.Index(),
		Assoc:  AssocNone,
	}
	g.sym2Term[sym] = t
	g.Terminals = append(g.Terminals, t)
	return t, true
}

func (b *Builder) buildTerminals(g *Grammar) {
	g.sym2Term[symbol.SymbolEOF] = &Terminal{
		Symbol: symbol.SymbolEOF,
		Name:   symbol.SymbolNameEOF,
		Index:  symbol.SymbolEOF.Index(),
		Assoc:  AssocNone,
	}
	g.Terminals = append(g.Terminals, g.sym2Term[symbol.SymbolEOF])

	for _, decl := range b.terms {
		if !validName(decl.Name) {
			b.addError(semErrInvalidName, decl.Name, decl.Row)
			continue
		}
		t, added := b.registerTerminal(g, decl.Name, decl.Row)
		if t == nil {
			continue
		}
		if !added {
			b.addError(semErrDuplicateTerminal, decl.Name, decl.Row)
			continue
		}
		t.Code = decl.Code
		t.Literal = decl.Literal
		t.Pattern = decl.Pattern
		t.Skip = decl.Skip
		if decl.Type != "" {
			if typ, ok := g.name2Type[decl.Type]; ok {
				t.Type = typ
			} else {
				b.addError(semErrUndefinedType, decl.Type, decl.Row)
			}
		}
	}

	for _, decl := range b.errTokens {
		if !validName(decl.name) {
			b.addError(semErrInvalidName, decl.name, decl.row)
			continue
		}
		t, _ := b.registerTerminal(g, decl.name, decl.row)
		if t == nil || t.Error {
			continue
		}
		t.Error = true
		g.ErrorTokens = append(g.ErrorTokens, t)
	}
}

func (b *Builder) buildNonTerminals(g *Grammar) {
	register := func(name string, row int) *NonTerminal {
		if !validName(name) {
			b.addError(semErrInvalidName, name, row)
			return nil
		}
		sym, err := g.symTab.RegisterNonTerminalSymbol(name)
		if err != nil {
			b.addError(semErrDuplicateName, name, row)
			return nil
		}
		if n, ok := g.sym2NonTerm[sym]; ok {
			return n
		}
		n := &NonTerminal{
			Symbol: sym,
			Name:   name,
			Index:  sym.Index(),
		}
		g.sym2NonTerm[sym] = n
		g.NonTerminals = append(g.NonTerminals, n)
		return n
	}

	for _, decl := range b.nonTerms {
		n := register(decl.name, decl.row)
		if n == nil || decl.typ == "" {
			continue
		}
		if typ, ok := g.name2Type[decl.typ]; ok {
			n.Type = typ
		} else {
			b.addError(semErrUndefinedType, decl.typ, decl.row)
		}
	}
	for _, decl := range b.rules {
		if sym, ok := g.symTab.ToSymbol(decl.LHS); ok && sym.IsTerminal() {
			b.addError(semErrLHSIsTerminal, decl.LHS, decl.Row)
			continue
		}
		register(decl.LHS, decl.Row)
	}

	startName := b.start
	startRow := b.startRow
	if startName == "" {
		startName = b.rules[0].LHS
		startRow = b.rules[0].Row
	}
	sym, ok := g.symTab.ToSymbol(startName)
	switch {
	case !ok:
		b.addError(semErrUndefinedSym, startName, startRow)
		return
	case !sym.IsNonTerminal():
		b.addError(semErrStartIsTerminal, startName, startRow)
		return
	}
	g.Start = g.sym2NonTerm[sym]

	augName := startName + "'"
	for {
		if _, exist := g.symTab.ToSymbol(augName); !exist {
			break
		}
		augName += "'"
	}
	augSym, err := g.symTab.RegisterStartSymbol(augName)
	if err != nil {
		b.addError(semErrDuplicateName, augName, startRow)
		return
	}
	g.AugmentedStart = &NonTerminal{
		Symbol: augSym,
		Name:   augName,
		Index:  augSym.Index(),
		Type:   g.Start.Type,
	}
	g.sym2NonTerm[augSym] = g.AugmentedStart
}

// buildPrecedences assigns precedence levels. Unless a declaration gives its level explicitly,
// a group declared later gets a lower level, that is, it binds tighter.
func (b *Builder) buildPrecedences(g *Grammar) {
	n := len(b.precs)
	for i, decl := range b.precs {
		level := decl.Level
		if level < 0 {
			b.addError(semErrInvalidLevel, fmt.Sprintf("%v", level), decl.Row)
			continue
		}
		if level == precNil {
			level = (n - i) * 10
		}
		for _, name := range decl.Symbols {
			sym, ok := g.symTab.ToSymbol(name)
			if ok && !sym.IsTerminal() {
				b.addError(semErrUndefinedPrecSym, name, decl.Row)
				continue
			}
			var t *Terminal
			if ok {
				t = g.sym2Term[sym]
			} else {
				// A name appearing only in a precedence declaration becomes a terminal that exists
				// solely to be referred to from precedence overrides.
				if !validName(name) {
					b.addError(semErrInvalidName, name, decl.Row)
					continue
				}
				t, _ = b.registerTerminal(g, name, decl.Row)
				if t == nil {
					continue
				}
			}
			if t.Precedence != precNil {
				b.addError(semErrDuplicatePrec, name, decl.Row)
				continue
			}
			t.Precedence = level
			t.Assoc = decl.Assoc
		}
	}
}

// assignCodes gives a token code to every terminal lacking one. Single-character literals use
// their character code, the first error token uses 256, and the others count up from 257.
func (b *Builder) assignCodes(g *Grammar) {
	used := map[int]*Terminal{
		0: g.Terminals[0],
	}
	for _, decl := range b.terms {
		if decl.Code == 0 {
			continue
		}
		if decl.Code < 0 {
			b.addError(semErrDuplicateCode, fmt.Sprintf("%v: %v", decl.Name, decl.Code), decl.Row)
			continue
		}
		if other, ok := used[decl.Code]; ok {
			b.addError(semErrDuplicateCode, fmt.Sprintf("%v and %v: %v", other.Name, decl.Name, decl.Code), decl.Row)
			continue
		}
		t, ok := g.TerminalByName(decl.Name)
		if !ok {
			continue
		}
		used[decl.Code] = t
	}

	next := codeNamedMin
	nextFree := func() int {
		for {
			if _, ok := used[next]; !ok {
				return next
			}
			next++
		}
	}

	for _, t := range g.Terminals[1:] {
		if t.Code != 0 || !t.Error {
			continue
		}
		if _, ok := used[codeError]; !ok {
			t.Code = codeError
		} else {
			t.Code = nextFree()
		}
		used[t.Code] = t
	}
	for _, t := range g.Terminals[1:] {
		if t.Code != 0 || utf8.RuneCountInString(t.Literal) != 1 {
			continue
		}
		r, _ := utf8.DecodeRuneInString(t.Literal)
		if _, ok := used[int(r)]; ok {
			continue
		}
		t.Code = int(r)
		used[t.Code] = t
	}
	for _, t := range g.Terminals[1:] {
		if t.Code != 0 {
			continue
		}
		t.Code = nextFree()
		used[t.Code] = t
	}
}

func (b *Builder) buildRules(g *Grammar) {
	augProd, err := newProduction(g.AugmentedStart.Symbol, []symbol.Symbol{g.Start.Symbol})
	if err != nil {
		b.addError(err, "", 0)
		return
	}
	g.prods.append(augProd)
	g.Rules = append(g.Rules, &Rule{
		Index:   augProd.num.Int(),
		LHS:     g.AugmentedStart,
		RHS:     augProd.rhs,
		Message: -1,
		prod:    augProd,
	})

	msg2Index := map[string]int{}
	hasProds := map[symbol.Symbol]bool{}
	for _, decl := range b.rules {
		lhsSym, ok := g.symTab.ToSymbol(decl.LHS)
		if !ok || !lhsSym.IsNonTerminal() {
			continue
		}

		rhs := make([]symbol.Symbol, 0, len(decl.RHS))
		ok = true
		for _, name := range decl.RHS {
			sym, exist := g.symTab.ToSymbol(name)
			if !exist || sym.IsStart() || sym.IsEOF() {
				b.addError(semErrUndefinedSym, name, decl.Row)
				ok = false
				continue
			}
			if t, isTerm := g.sym2Term[sym]; isTerm && t.Skip {
				b.addError(semErrTermCannotBeSkipped, name, decl.Row)
				ok = false
				continue
			}
			rhs = append(rhs, sym)
		}
		if !ok {
			continue
		}

		prec := precNil
		if decl.Prec != "" {
			t, exist := g.TerminalByName(decl.Prec)
			if !exist || t.Precedence == precNil {
				b.addError(semErrUndefinedPrecSym, decl.Prec, decl.Row)
				continue
			}
			prec = t.Precedence
		} else {
			for i := len(rhs) - 1; i >= 0; i-- {
				if t, isTerm := g.sym2Term[rhs[i]]; isTerm {
					prec = t.Precedence
					break
				}
			}
		}

		prod, err := newProduction(lhsSym, rhs)
		if err != nil {
			b.addError(err, decl.LHS, decl.Row)
			continue
		}
		if !g.prods.append(prod) {
			b.addError(semErrDuplicateProduction, decl.LHS, decl.Row)
			continue
		}
		hasProds[lhsSym] = true

		msg := -1
		if decl.Message != "" {
			idx, ok := msg2Index[decl.Message]
			if !ok {
				idx = len(g.Messages)
				g.Messages = append(g.Messages, decl.Message)
				msg2Index[decl.Message] = idx
			}
			msg = idx
		}

		g.Rules = append(g.Rules, &Rule{
			Index:      prod.num.Int(),
			LHS:        g.sym2NonTerm[lhsSym],
			RHS:        rhs,
			Precedence: prec,
			Action:     decl.Action,
			ActionRow:  decl.ActionRow,
			Row:        decl.Row,
			Message:    msg,
			prod:       prod,
		})
	}

	for _, n := range g.NonTerminals {
		if !hasProds[n.Symbol] {
			row := 0
			for _, decl := range b.nonTerms {
				if decl.name == n.Name {
					row = decl.row
					break
				}
			}
			b.addError(semErrNoProductionForNonTerm, n.Name, row)
		}
	}
}

// checkReachability rejects non-terminals that cannot be reached from the start symbol.
func (b *Builder) checkReachability(g *Grammar) {
	reached := map[symbol.Symbol]bool{
		g.AugmentedStart.Symbol: true,
	}
	unchecked := []symbol.Symbol{g.AugmentedStart.Symbol}
	for len(unchecked) > 0 {
		sym := unchecked[0]
		unchecked = unchecked[1:]
		prods, _ := g.prods.findByLHS(sym)
		for _, prod := range prods {
			for _, s := range prod.rhs {
				if !s.IsNonTerminal() || reached[s] {
					continue
				}
				reached[s] = true
				unchecked = append(unchecked, s)
			}
		}
	}

	reported := map[symbol.Symbol]bool{}
	for _, r := range g.Rules {
		if reached[r.LHS.Symbol] || reported[r.LHS.Symbol] {
			continue
		}
		reported[r.LHS.Symbol] = true
		b.addError(semErrUnusedProduction, r.LHS.Name, r.Row)
	}
}

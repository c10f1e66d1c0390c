package driver

import (
	"fmt"

	"github.com/nihei9/syntax/compressor"
	"github.com/nihei9/syntax/grammar"
)

type DecisionKind string

const (
	DecisionShift   = DecisionKind("shift")
	DecisionReduce  = DecisionKind("reduce")
	DecisionGoTo    = DecisionKind("goto")
	DecisionAccept  = DecisionKind("accept")
	DecisionError   = DecisionKind("error")
	DecisionRecover = DecisionKind("recover")
)

// Decision is a step of a parse. Terminal is the look-ahead, or the error token shifted by a
// recovery. Target is a state for a shift, a goto and a recovery, and a rule for a reduction.
type Decision struct {
	Kind     DecisionKind
	State    int
	Terminal string
	Target   int
}

func (d *Decision) String() string {
	switch d.Kind {
	case DecisionShift, DecisionReduce, DecisionGoTo, DecisionRecover:
		return fmt.Sprintf("state %v: %v %v on %v", d.State, d.Kind, d.Target, d.Terminal)
	}
	return fmt.Sprintf("state %v: %v on %v", d.State, d.Kind, d.Terminal)
}

type SyntaxError struct {
	Row               int
	Col               int
	Message           string
	Token             VToken
	ExpectedTerminals []string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v:%v: %v", e.Row, e.Col, e.Message)
}

type ParserOption func(p *Parser) error

// SemanticAction runs an action set along the parse.
func SemanticAction(semAct SemanticActionSet) ParserOption {
	return func(p *Parser) error {
		p.semAct = semAct
		return nil
	}
}

// The parser stays in the recovering state until it shifts this many tokens.
const recoveryShifts = 3

type recovery int

const (
	recoveryFailed recovery = iota
	recoveryShifted
	recoveryDrop
)

// Parser runs a compressed table. The automaton supplies rule lengths, names and messages.
type Parser struct {
	automaton  *grammar.Automaton
	table      compressor.Table
	toks       TokenStream
	semAct     SemanticActionSet
	stateStack []int
	errorFlag  int
	accepted   bool
	decisions  []*Decision
	synErrs    []*SyntaxError
}

func NewParser(a *grammar.Automaton, tab compressor.Table, toks TokenStream, opts ...ParserOption) (*Parser, error) {
	if tab.StateCount() != len(a.States) {
		return nil, fmt.Errorf("the table has %v states but the automaton has %v", tab.StateCount(), len(a.States))
	}

	p := &Parser{
		automaton: a,
		table:     tab,
		toks:      toks,
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Parse consumes the token stream. Syntax errors don't make Parse fail; see SyntaxErrors and
// Accepted.
func (p *Parser) Parse() error {
	p.push(0)
	tok, err := p.toks.Next()
	if err != nil {
		return err
	}

	for {
		act, err := p.lookupAction(tok)
		if err != nil {
			return err
		}
		switch {
		case act == compressor.ActionAccept:
			p.record(DecisionAccept, tok, 0)
			if p.semAct != nil {
				p.semAct.Accept()
			}
			p.accepted = true

			return nil
		case act > 0:
			p.record(DecisionShift, tok, act)
			p.push(act)

			recovered := false
			if p.errorFlag > 0 {
				p.errorFlag--
				recovered = p.errorFlag == 0
			}
			if p.semAct != nil {
				p.semAct.Shift(tok, recovered)
			}

			tok, err = p.toks.Next()
			if err != nil {
				return err
			}
		case act < 0:
			err := p.reduce(-act, tok)
			if err != nil {
				return err
			}
		default:
			r, err := p.recover(tok)
			if err != nil {
				return err
			}
			switch r {
			case recoveryFailed:
				return nil
			case recoveryDrop:
				tok, err = p.toks.Next()
				if err != nil {
					return err
				}
			}
		}
	}
}

func (p *Parser) lookupAction(tok VToken) (int, error) {
	if tok.Invalid() {
		return compressor.ActionError, nil
	}
	return p.table.Action(p.top(), tok.TerminalID())
}

func (p *Parser) reduce(rule int, tok VToken) error {
	if rule >= len(p.automaton.Grammar.Rules) {
		return fmt.Errorf("a rule is out of range: %v", rule)
	}
	r := p.automaton.Grammar.Rules[rule]
	p.record(DecisionReduce, tok, rule)

	p.pop(r.Len())
	next, err := p.table.GoTo(p.top(), r.LHS.Index)
	if err != nil {
		return err
	}
	p.record(DecisionGoTo, tok, next)
	p.push(next)

	if p.semAct != nil {
		p.semAct.Reduce(rule)
	}

	return nil
}

// recover reports a syntax error unless the parser is still recovering from the previous one, and
// pops states until one of them shifts an error token. Right after a recovery, an unexpected
// token is dropped instead.
func (p *Parser) recover(tok VToken) (recovery, error) {
	if p.errorFlag == recoveryShifts {
		p.record(DecisionError, tok, 0)
		if tok.EOF() {
			return recoveryFailed, nil
		}
		return recoveryDrop, nil
	}

	if p.errorFlag == 0 {
		p.record(DecisionError, tok, 0)
		p.synErrs = append(p.synErrs, p.syntaxError(tok))
	}
	p.errorFlag = recoveryShifts

	popped := 0
	for {
		for _, errTok := range p.automaton.Grammar.ErrorTokens {
			act, err := p.table.Action(p.top(), errTok.Index)
			if err != nil {
				return recoveryFailed, err
			}
			if act <= 0 || act == compressor.ActionAccept {
				continue
			}

			p.decisions = append(p.decisions, &Decision{
				Kind:     DecisionRecover,
				State:    p.top(),
				Terminal: errTok.Name,
				Target:   act,
			})
			tracer().Debugf("state %v: recover by shifting %v after popping %v states", p.top(), errTok.Name, popped)
			p.push(act)
			if p.semAct != nil {
				p.semAct.TrapAndShiftError(tok, errTok.Index, popped)
			}

			return recoveryShifted, nil
		}

		if len(p.stateStack) == 1 {
			break
		}
		p.pop(1)
		popped++
	}

	if p.semAct != nil {
		p.semAct.MissError(tok)
	}

	return recoveryFailed, nil
}

func (p *Parser) syntaxError(tok VToken) *SyntaxError {
	state := p.automaton.States[p.top()]
	msg := "unexpected token"
	if state.Message >= 0 && state.Message < len(p.automaton.Grammar.Messages) {
		msg = p.automaton.Grammar.Messages[state.Message]
	}

	var expected []string
	for _, act := range state.Actions {
		expected = append(expected, act.Terminal.Name)
	}

	row, col := tok.Position()
	return &SyntaxError{
		Row:               row,
		Col:               col,
		Message:           msg,
		Token:             tok,
		ExpectedTerminals: expected,
	}
}

func (p *Parser) record(kind DecisionKind, tok VToken, target int) {
	d := &Decision{
		Kind:     kind,
		State:    p.top(),
		Terminal: p.terminalName(tok),
		Target:   target,
	}
	tracer().Debugf("%v", d)
	p.decisions = append(p.decisions, d)
}

func (p *Parser) terminalName(tok VToken) string {
	if tok.Invalid() {
		return fmt.Sprintf("invalid token %q", tok.Lexeme())
	}
	id := tok.TerminalID()
	if id < 0 || id >= len(p.automaton.Grammar.Terminals) {
		return fmt.Sprintf("terminal %v", id)
	}
	return p.automaton.Grammar.Terminals[id].Name
}

func (p *Parser) top() int {
	return p.stateStack[len(p.stateStack)-1]
}

func (p *Parser) push(state int) {
	p.stateStack = append(p.stateStack, state)
}

func (p *Parser) pop(n int) {
	p.stateStack = p.stateStack[:len(p.stateStack)-n]
}

// Accepted reports whether the input was accepted, possibly after recovering from syntax errors.
func (p *Parser) Accepted() bool {
	return p.accepted
}

func (p *Parser) Decisions() []*Decision {
	return p.decisions
}

func (p *Parser) SyntaxErrors() []*SyntaxError {
	return p.synErrs
}

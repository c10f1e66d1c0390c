package driver

import (
	"fmt"
	"io"

	"github.com/nihei9/syntax/grammar"
)

type SemanticActionSet interface {
	// Shift runs when the driver shifts a token onto the state stack. When the shift ends an error
	// recovery, `recovered` is true.
	Shift(tok VToken, recovered bool)

	// Reduce runs when the driver reduces the right-hand side of a rule to its left-hand side.
	Reduce(rule int)

	// Accept runs when the driver accepts an input.
	Accept()

	// TrapAndShiftError runs when the driver shifts an error token. `cause` is the token that caused
	// the syntax error and `popped` is the number of states discarded from the state stack.
	TrapAndShiftError(cause VToken, errToken int, popped int)

	// MissError runs when no state on the stack shifts an error token.
	MissError(cause VToken)
}

var _ SemanticActionSet = &SyntaxTreeActionSet{}

type Node struct {
	KindName string
	Text     string
	Row      int
	Col      int
	Children []*Node
	Error    bool
}

func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	switch {
	case node.Error:
		fmt.Fprintf(w, "%v!%v\n", ruledLine, node.KindName)
	case node.Text != "":
		fmt.Fprintf(w, "%v%v %#v\n", ruledLine, node.KindName, node.Text)
	default:
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

// SyntaxTreeActionSet builds a concrete syntax tree.
type SyntaxTreeActionSet struct {
	gram     *grammar.Grammar
	cst      *Node
	semStack *semanticStack
}

func NewSyntaxTreeActionSet(gram *grammar.Grammar) *SyntaxTreeActionSet {
	return &SyntaxTreeActionSet{
		gram:     gram,
		semStack: newSemanticStack(),
	}
}

func (a *SyntaxTreeActionSet) Shift(tok VToken, recovered bool) {
	row, col := tok.Position()
	a.semStack.push(&Node{
		KindName: a.gram.Terminals[tok.TerminalID()].Name,
		Text:     string(tok.Lexeme()),
		Row:      row,
		Col:      col,
	})
}

func (a *SyntaxTreeActionSet) Reduce(rule int) {
	r := a.gram.Rules[rule]

	// An empty rule pops nothing and gets a leaf.
	handle := a.semStack.pop(r.Len())
	children := make([]*Node, len(handle))
	copy(children, handle)

	a.semStack.push(&Node{
		KindName: r.LHS.Name,
		Children: children,
	})
}

func (a *SyntaxTreeActionSet) Accept() {
	top := a.semStack.pop(1)
	a.cst = top[0]
}

func (a *SyntaxTreeActionSet) TrapAndShiftError(cause VToken, errToken int, popped int) {
	a.semStack.pop(popped)

	row, col := cause.Position()
	a.semStack.push(&Node{
		KindName: a.gram.Terminals[errToken].Name,
		Row:      row,
		Col:      col,
		Error:    true,
	})
}

func (a *SyntaxTreeActionSet) MissError(cause VToken) {
}

func (a *SyntaxTreeActionSet) CST() *Node {
	return a.cst
}

type semanticStack struct {
	frames []*Node
}

func newSemanticStack() *semanticStack {
	return &semanticStack{}
}

func (s *semanticStack) push(f *Node) {
	s.frames = append(s.frames, f)
}

func (s *semanticStack) pop(n int) []*Node {
	fs := s.frames[len(s.frames)-n:]
	s.frames = s.frames[:len(s.frames)-n]

	return fs
}

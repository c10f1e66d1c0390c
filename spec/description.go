// Package spec reads grammar descriptions. A description is a TOML document listing the types,
// terminals, precedences and rules of a grammar together with the code embedded in it.
package spec

// Description is the decoded form of a grammar description.
type Description struct {
	Name         string   `toml:"name"`
	Start        string   `toml:"start"`
	Declarations string   `toml:"declarations"`
	Trailer      string   `toml:"trailer"`
	Errors       []string `toml:"errors"`

	Types        []*TypeDesc        `toml:"types"`
	Terminals    []*TerminalDesc    `toml:"terminals"`
	NonTerminals []*NonTerminalDesc `toml:"nonterminals"`
	Precedence   []*PrecedenceDesc  `toml:"precedence"`
	Rules        []*RuleDesc        `toml:"rules"`
	Lexer        []*LexerDesc       `toml:"lexer"`
}

type TypeDesc struct {
	Name       string `toml:"name"`
	Expression string `toml:"expression"`
}

type TerminalDesc struct {
	Name    string `toml:"name"`
	Code    int    `toml:"code"`
	Literal string `toml:"literal"`
	Pattern string `toml:"pattern"`
	Type    string `toml:"type"`
	Skip    bool   `toml:"skip"`
}

type NonTerminalDesc struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type PrecedenceDesc struct {
	Assoc   string   `toml:"assoc"`
	Symbols []string `toml:"symbols"`
	Level   int      `toml:"level"`
}

// RuleDesc is one rule. Line overrides the row the action is reported at.
type RuleDesc struct {
	LHS     string   `toml:"lhs"`
	RHS     []string `toml:"rhs"`
	Prec    string   `toml:"prec"`
	Action  string   `toml:"action"`
	Message string   `toml:"message"`
	Line    int      `toml:"line"`
}

// LexerDesc is a block of code run by the generated lexer in a mode.
type LexerDesc struct {
	Mode   string `toml:"mode"`
	Action string `toml:"action"`
}

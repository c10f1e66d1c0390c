package driver

import (
	"io"

	mldriver "github.com/nihei9/maleeni/driver"
)

// VToken is a token the parser consumes. TerminalID is a terminal index, or -1 for an invalid token.
type VToken interface {
	TerminalID() int
	Lexeme() []byte
	EOF() bool
	Invalid() bool

	// Position returns the 1-based row and column of the token.
	Position() (int, int)
}

type TokenStream interface {
	Next() (VToken, error)
}

type vToken struct {
	terminalID int
	tok        *mldriver.Token
}

func (t *vToken) TerminalID() int {
	return t.terminalID
}

func (t *vToken) Lexeme() []byte {
	return t.tok.Lexeme
}

func (t *vToken) EOF() bool {
	return t.tok.EOF
}

func (t *vToken) Invalid() bool {
	return t.tok.Invalid
}

func (t *vToken) Position() (int, int) {
	return t.tok.Row + 1, t.tok.Col + 1
}

type tokenStream struct {
	lex            *mldriver.Lexer
	kindToTerminal []int
	skip           []bool
}

// NewTokenStream lexes src and drops the tokens of skipped terminals.
func NewTokenStream(lex *LexSpec, src io.Reader) (TokenStream, error) {
	l, err := mldriver.NewLexer(mldriver.NewLexSpec(lex.spec), src)
	if err != nil {
		return nil, err
	}

	return &tokenStream{
		lex:            l,
		kindToTerminal: lex.kindToTerminal,
		skip:           lex.skip,
	}, nil
}

func (s *tokenStream) Next() (VToken, error) {
	for {
		tok, err := s.lex.Next()
		if err != nil {
			return nil, err
		}
		switch {
		case tok.EOF:
			return &vToken{
				terminalID: 0,
				tok:        tok,
			}, nil
		case tok.Invalid:
			return &vToken{
				terminalID: -1,
				tok:        tok,
			}, nil
		}
		if s.skip[tok.KindID] {
			continue
		}
		return &vToken{
			terminalID: s.kindToTerminal[tok.KindID],
			tok:        tok,
		}, nil
	}
}

package spec

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

var (
	synErrInvalidTOML   = newSyntaxError("invalid TOML")
	synErrUnknownKey    = newSyntaxError("unknown key")
	synErrNoRule        = newSyntaxError("a grammar must have at least one rule")
	synErrNoLHS         = newSyntaxError("a rule needs a left-hand side")
	synErrEmptyLiteral  = newSyntaxError("a literal needs at least one character")
	synErrUnclosedQuote = newSyntaxError("unclosed literal")
	synErrNoTypeName    = newSyntaxError("a type needs a name and an expression")
	synErrNoTermName    = newSyntaxError("a terminal needs a name")
	synErrEmptyAction   = newSyntaxError("an action is empty")
)

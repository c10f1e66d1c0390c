package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrNoProduction           = newSemanticError("a grammar needs at least one production")
	semErrNoProductionForNonTerm = newSemanticError("a non-terminal needs at least one production")
	semErrUnusedProduction       = newSemanticError("unused production")
	semErrUndefinedSym           = newSemanticError("undefined symbol")
	semErrUndefinedType          = newSemanticError("undefined type")
	semErrUndefinedPrecSym       = newSemanticError("a precedence override must name a terminal having a precedence")
	semErrDuplicateProduction    = newSemanticError("duplicate production")
	semErrDuplicateTerminal      = newSemanticError("duplicate terminal")
	semErrDuplicateType          = newSemanticError("duplicate type")
	semErrDuplicateCode          = newSemanticError("duplicate token code")
	semErrDuplicateName          = newSemanticError("duplicate names are not allowed between terminals and non-terminals")
	semErrDuplicatePrec          = newSemanticError("a terminal cannot have more than one precedence")
	semErrInvalidName            = newSemanticError("invalid symbol name")
	semErrInvalidAssoc           = newSemanticError("invalid associativity")
	semErrInvalidLevel           = newSemanticError("a precedence level must be positive")
	semErrStartIsTerminal        = newSemanticError("a start symbol must be a non-terminal")
	semErrLHSIsTerminal          = newSemanticError("the left-hand side of a rule must be a non-terminal")
	semErrEmptyLanguage          = newSemanticError("the start symbol derives no terminal string")
	semErrTermCannotBeSkipped    = newSemanticError("a terminal used in productions cannot be skipped")
)

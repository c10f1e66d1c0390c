/*
Package grammar holds the grammar model and builds SLR(1) and LALR(1) automata from it.

A Grammar is assembled with a Builder and is frozen afterwards. Build turns a Grammar into an
Automaton: an ordered list of states whose actions have already been disambiguated. Rule 0 is
always the augmented start rule S' → S; reducing it means accepting the input.

Precedence levels are positive integers, and a lower level binds tighter. A shift/reduce conflict
is resolved in favour of the reduction only when the rule's level is less than or equal to the
terminal's level and the terminal is left-associative; every other conflict shifts. A
reduce/reduce conflict is resolved in favour of the rule declared first.
*/
package grammar

import "github.com/npillmayer/schuko/tracing"

func tracer() tracing.Trace {
	return tracing.Select("syntax.grammar")
}

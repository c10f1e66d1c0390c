package grammar

import (
	"fmt"
	"testing"
)

type expectedAction struct {
	rule     int
	dot      int
	terminal string
	kind     ActionKind
	target   int
}

func TestBuildLALRParsingTable(t *testing.T) {
	gram := genLALRClassGrammar(t)
	a, err := Build(gram, AlgorithmLALR)
	if err != nil {
		t.Fatal(err)
	}

	if len(a.States) != 10 {
		t.Fatalf("unexpected state count; want: %v, got: %v", 10, len(a.States))
	}
	if len(a.Conflicts) != 0 {
		t.Fatalf("unexpected conflicts: %v", a.Conflicts)
	}

	// 1: S → L eq R, 2: S → R, 3: L → ref R, 4: L → id, 5: R → L
	tests := []*expectedAction{
		{rule: 0, dot: 0, terminal: "ref", kind: ActionShift, target: 4},
		{rule: 0, dot: 0, terminal: "id", kind: ActionShift, target: 5},
		{rule: 0, dot: 0, terminal: "eq", kind: ActionError},
		{rule: 0, dot: 1, terminal: "$end", kind: ActionAccept, target: 0},
		{rule: 1, dot: 1, terminal: "eq", kind: ActionShift, target: 6},
		{rule: 1, dot: 1, terminal: "$end", kind: ActionReduce, target: 5},
		{rule: 2, dot: 1, terminal: "$end", kind: ActionReduce, target: 2},
		{rule: 4, dot: 1, terminal: "eq", kind: ActionReduce, target: 4},
		{rule: 4, dot: 1, terminal: "$end", kind: ActionReduce, target: 4},
		{rule: 1, dot: 3, terminal: "$end", kind: ActionReduce, target: 1},
		{rule: 1, dot: 3, terminal: "eq", kind: ActionError},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("rule %v dot %v on %v", tt.rule, tt.dot, tt.terminal), func(t *testing.T) {
			testTableAction(t, a, tt)
		})
	}

	// Leaving state 4, L is visited before R: state 7 holds R → L・ alone, unlike state 2, and
	// state 8 holds L → ref R・.
	eq := findTerminal(t, gram, "eq")
	for _, e := range []struct {
		state int
		rule  int
	}{
		{state: 7, rule: 5},
		{state: 8, rule: 3},
	} {
		if act := a.States[e.state].Action(eq); act == nil || act.Kind != ActionReduce || act.Target != e.rule {
			t.Errorf("unexpected action in state %v; want: reduce %v, got: %v", e.state, e.rule, act)
		}
	}

	s0 := a.States[0]
	for _, e := range []struct {
		nonTerm string
		target  int
	}{
		{nonTerm: "S", target: 1},
		{nonTerm: "L", target: 2},
		{nonTerm: "R", target: 3},
	} {
		nonTerm, ok := gram.NonTerminalByName(e.nonTerm)
		if !ok {
			t.Fatalf("non-terminal was not found: %v", e.nonTerm)
		}
		target, ok := s0.GoTo(nonTerm)
		if !ok || target != e.target {
			t.Errorf("unexpected goto on %v; want: %v, got: %v (%v)", e.nonTerm, e.target, target, ok)
		}
	}
}

func TestBuildSLRParsingTable(t *testing.T) {
	gram := genLALRClassGrammar(t)
	a, err := Build(gram, AlgorithmSLR)
	if err != nil {
		t.Fatal(err)
	}

	if len(a.Conflicts) != 1 {
		t.Fatalf("unexpected conflicts: %v", a.Conflicts)
	}
	c := a.Conflicts[0]
	if c.State != 2 || c.Terminal.Name != "eq" || c.Kind != ConflictShiftReduce {
		t.Fatalf("unexpected conflict: %v", c)
	}
	if c.ShiftTarget != 6 || len(c.Rules) != 1 || c.Rules[0] != 5 {
		t.Fatalf("unexpected competitors: %v", c)
	}
	if c.Chosen.Kind != ActionShift || c.Chosen.Target != 6 || c.ResolvedBy != ResolvedByShift {
		t.Fatalf("unexpected resolution: %v", c)
	}

	testTableAction(t, a, &expectedAction{rule: 1, dot: 1, terminal: "eq", kind: ActionShift, target: 6})
	testTableAction(t, a, &expectedAction{rule: 1, dot: 1, terminal: "$end", kind: ActionReduce, target: 5})
}

func TestShiftReduceConflictResolution(t *testing.T) {
	tests := []struct {
		caption    string
		opts       []testGrammarOption
		rules      []string
		actions    []*expectedAction
		resolvedBy []conflictResolutionMethod
	}{
		{
			caption: "a left-associative operator reduces on a tie",
			opts: []testGrammarOption{
				withPrecedence(AssocLeft, "+"),
			},
			rules: []string{
				"e: e + e",
				"e: id",
			},
			actions: []*expectedAction{
				{rule: 1, dot: 3, terminal: "+", kind: ActionReduce, target: 1},
			},
			resolvedBy: []conflictResolutionMethod{ResolvedByAssoc},
		},
		{
			caption: "a right-associative operator shifts on a tie",
			opts: []testGrammarOption{
				withPrecedence(AssocRight, "+"),
			},
			rules: []string{
				"e: e + e",
				"e: id",
			},
			actions: []*expectedAction{
				{rule: 1, dot: 3, terminal: "+", kind: ActionShift, target: 3},
			},
			resolvedBy: []conflictResolutionMethod{ResolvedByAssoc},
		},
		{
			caption: "a non-associative operator shifts on a tie",
			opts: []testGrammarOption{
				withPrecedence(AssocNone, "+"),
			},
			rules: []string{
				"e: e + e",
				"e: id",
			},
			actions: []*expectedAction{
				{rule: 1, dot: 3, terminal: "+", kind: ActionShift, target: 3},
			},
			resolvedBy: []conflictResolutionMethod{ResolvedByAssoc},
		},
		{
			caption: "a conflict without precedence shifts",
			rules: []string{
				"e: e + e",
				"e: id",
			},
			actions: []*expectedAction{
				{rule: 1, dot: 3, terminal: "+", kind: ActionShift, target: 3},
			},
			resolvedBy: []conflictResolutionMethod{ResolvedByShift},
		},
		{
			caption: "an operator declared later binds tighter",
			opts: []testGrammarOption{
				withPrecedence(AssocLeft, "+"),
				withPrecedence(AssocLeft, "*"),
			},
			rules: []string{
				"e: e + e",
				"e: e * e",
				"e: id",
			},
			actions: []*expectedAction{
				{rule: 1, dot: 3, terminal: "+", kind: ActionReduce, target: 1},
				{rule: 1, dot: 3, terminal: "*", kind: ActionShift, target: 4},
				{rule: 2, dot: 3, terminal: "+", kind: ActionReduce, target: 2},
				{rule: 2, dot: 3, terminal: "*", kind: ActionReduce, target: 2},
			},
			resolvedBy: []conflictResolutionMethod{ResolvedByAssoc, ResolvedByPrec, ResolvedByPrec, ResolvedByAssoc},
		},
		{
			caption: "a precedence override replaces the precedence of the right-most terminal",
			opts: []testGrammarOption{
				withPrecedence(AssocLeft, "+"),
				withPrecedence(AssocRight, "NEG"),
				withRulePrec(2, "NEG"),
			},
			rules: []string{
				"e: e + e",
				"e: + e",
				"e: id",
			},
			actions: []*expectedAction{
				{rule: 2, dot: 2, terminal: "+", kind: ActionReduce, target: 2},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			gram := genTestGrammar(t, []string{"+", "*", "id"}, tt.rules, tt.opts...)
			a, err := Build(gram, AlgorithmLALR)
			if err != nil {
				t.Fatal(err)
			}
			for _, act := range tt.actions {
				testTableAction(t, a, act)
			}
			if tt.resolvedBy == nil {
				return
			}
			if len(a.Conflicts) != len(tt.resolvedBy) {
				t.Fatalf("unexpected conflicts: %v", a.Conflicts)
			}
			for i, c := range a.Conflicts {
				if c.Kind != ConflictShiftReduce {
					t.Errorf("unexpected conflict kind: %v", c)
				}
				if c.ResolvedBy != tt.resolvedBy[i] {
					t.Errorf("unexpected resolution method; want: %v, got: %v", tt.resolvedBy[i], c.ResolvedBy)
				}
			}
		})
	}
}

func TestReduceReduceConflictResolution(t *testing.T) {
	gram := genTestGrammar(t,
		[]string{"x", "z"},
		[]string{
			"a: x",
			"s: a",
			"s: b",
			"s: c",
			"b: x",
			"c: z",
		},
		withStart("s"),
	)

	for _, alg := range []Algorithm{AlgorithmSLR, AlgorithmLALR} {
		t.Run(string(alg), func(t *testing.T) {
			a, err := Build(gram, alg)
			if err != nil {
				t.Fatal(err)
			}

			testTableAction(t, a, &expectedAction{rule: 1, dot: 1, terminal: "$end", kind: ActionReduce, target: 1})

			if len(a.Conflicts) != 1 {
				t.Fatalf("unexpected conflicts: %v", a.Conflicts)
			}
			c := a.Conflicts[0]
			if c.Kind != ConflictReduceReduce || c.ResolvedBy != ResolvedByProdOrder {
				t.Fatalf("unexpected conflict: %v", c)
			}
			if len(c.Rules) != 2 || c.Rules[0] != 1 || c.Rules[1] != 5 {
				t.Fatalf("unexpected competitors: %v", c.Rules)
			}
			if c.Chosen.Kind != ActionReduce || c.Chosen.Target != 1 {
				t.Fatalf("unexpected resolution: %v", c.Chosen)
			}
		})
	}
}

func TestErrorTokenShiftsAreRecoveries(t *testing.T) {
	gram := genTestGrammar(t,
		[]string{";", "id"},
		[]string{
			"stmts: stmts stmt",
			"stmts: stmt",
			"stmt: id ;",
			"stmt: error ;",
		},
		withErrorToken("error"),
		withRuleMessage(3, "missing semicolon"),
	)
	a, err := Build(gram, AlgorithmLALR)
	if err != nil {
		t.Fatal(err)
	}

	errTok := findTerminal(t, gram, "error")
	if !errTok.Error || errTok.Code != 256 {
		t.Fatalf("unexpected error token: %#v", errTok)
	}

	if len(a.States[0].Recoveries) != 1 {
		t.Fatalf("the initial state must have a recovery: %v", a.States[0].Recoveries)
	}
	rec := a.States[0].Recoveries[0]
	if rec.Terminal != errTok || rec.Kind != ActionShift || !rec.Recovery {
		t.Fatalf("unexpected recovery: %#v", rec)
	}

	for _, s := range a.States {
		for _, act := range s.Actions {
			if act.Terminal.Error {
				t.Errorf("an action on an error token was found; state: %v, action: %v", s.Num, act)
			}
		}
	}

	s := findState(t, a, 3, 1)
	if s.Message != 0 || gram.Messages[s.Message] != "missing semicolon" {
		t.Errorf("unexpected message; want: 0, got: %v", s.Message)
	}
	if findState(t, a, 4, 1).Message != -1 {
		t.Errorf("a state without messages must have -1")
	}
}

func TestAtMostOneActionPerTerminal(t *testing.T) {
	gram := genExprGrammar(t)
	for _, alg := range []Algorithm{AlgorithmSLR, AlgorithmLALR} {
		a, err := Build(gram, alg)
		if err != nil {
			t.Fatal(err)
		}
		for _, s := range a.States {
			seen := map[*Terminal]bool{}
			prev := -1
			for _, act := range s.Actions {
				if seen[act.Terminal] {
					t.Fatalf("duplicate actions; state: %v, terminal: %v", s.Num, act.Terminal.Name)
				}
				seen[act.Terminal] = true
				if act.Terminal.Index <= prev {
					t.Fatalf("actions are not ordered by terminal; state: %v", s.Num)
				}
				prev = act.Terminal.Index
			}
		}
	}
}

func testTableAction(t *testing.T, a *Automaton, expected *expectedAction) {
	t.Helper()

	s := findState(t, a, expected.rule, expected.dot)
	term := findTerminal(t, a.Grammar, expected.terminal)
	act := s.Action(term)
	if act.Kind != expected.kind {
		t.Fatalf("unexpected action kind; state: %v, terminal: %v, want: %v, got: %v", s.Num, expected.terminal, expected.kind, act.Kind)
	}
	if act.Kind != ActionError && act.Target != expected.target {
		t.Fatalf("unexpected action target; state: %v, terminal: %v, want: %v, got: %v", s.Num, expected.terminal, expected.target, act.Target)
	}
}

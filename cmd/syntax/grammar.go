package main

import (
	"errors"
	"fmt"
	"os"

	verr "github.com/nihei9/syntax/error"
	"github.com/nihei9/syntax/grammar"
	"github.com/nihei9/syntax/spec"
	"github.com/pterm/pterm"
)

func readAutomaton(path string, alg grammar.Algorithm) (*grammar.Automaton, error) {
	g, err := spec.Load(path)
	if err != nil {
		var specErrs verr.SpecErrors
		if errors.As(err, &specErrs) {
			return nil, specErrs
		}
		return nil, fmt.Errorf("Cannot read the grammar file %s: %w", path, err)
	}

	a, err := grammar.Build(g, alg)
	if err != nil {
		return nil, fmt.Errorf("Cannot build the %v automaton of %v: %w", alg, g.Name, err)
	}
	return a, nil
}

func warnConflicts(a *grammar.Automaton) {
	if len(a.Conflicts) == 0 {
		return
	}
	pterm.Warning.Println(fmt.Sprintf("%v conflicts", len(a.Conflicts)))
	for _, c := range a.Conflicts {
		pterm.Warning.Println(c.String())
	}
}

// lazyFile creates its file on the first write. A failed run writes nothing, so it leaves no
// files behind.
type lazyFile struct {
	path string
	f    *os.File
}

func newLazyFile(path string) *lazyFile {
	return &lazyFile{
		path: path,
	}
}

func (l *lazyFile) Write(p []byte) (int, error) {
	if l.f == nil {
		f, err := os.Create(l.path)
		if err != nil {
			return 0, err
		}
		l.f = f
	}
	return l.f.Write(p)
}

func (l *lazyFile) Close() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// closeFile closes a file and reports the failure unless the run already failed.
func closeFile(f *lazyFile, retErr *error) {
	err := f.Close()
	if err != nil && *retErr == nil {
		*retErr = fmt.Errorf("Cannot close %s: %w", f.path, err)
	}
}

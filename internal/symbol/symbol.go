// Package symbol interns identifier tokens into unique, pointer-equal
// Symbol values shared across the reader, compiler, and VM.
package symbol

import "sync"

// Symbol is an interned identifier. Equality is pointer equality; two
// Symbols with the same Name but obtained by different means (e.g. via
// string->symbol with Uninterned) are not equal.
type Symbol struct {
	Name       string
	Uninterned bool
}

// Table interns byte-string tokens into unique Symbol identities.
type Table struct {
	mu   sync.Mutex
	byID map[string]*Symbol
}

// NewTable returns an empty symbol table.
func NewTable() *Table {
	return &Table{byID: make(map[string]*Symbol, 256)}
}

// Intern returns the unique Symbol for name, creating it on first use.
func (t *Table) Intern(name string) *Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.byID[name]; ok {
		return s
	}
	s := &Symbol{Name: name}
	t.byID[name] = s
	return s
}

// Uninterned creates a fresh Symbol that is never returned by Intern and
// compares equal only to itself, for (string->symbol s) callers that
// want an identity distinct from any interned symbol of the same name.
func (t *Table) Uninterned(name string) *Symbol {
	return &Symbol{Name: name, Uninterned: true}
}

// Package symbol implements the process-wide intern table that maps
// identifier text to small integer ids used throughout the lexer, parser,
// compiler and VM instead of comparing strings.
package symbol

import "sync"

// ID is an interned symbol id. The zero value means "no symbol".
type ID uint32

const None ID = 0

// A fixed prefix of the id space is reserved for special forms and tokens
// known to the compiler, so the compiler can compare against constants
// instead of re-interning strings on every compile.
const (
	Set ID = iota + 1
	If
	Fn
	Till
	Quote
	Progn
	Return
	Catch
	Not
	Or
	And
	NewForm
	Is
	Typeof
	Comma
	Semicolon
	Colon
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace

	firstUser // first id handed out by GetSymbol
)

var specialNames = map[ID]string{
	Set: "_set", If: "_if", Fn: "_fn", Till: "_till", Quote: "_quote",
	Progn: "_progn", Return: "_return", Catch: "_catch", Not: "_not",
	Or: "_or", And: "_and", NewForm: "_new", Is: "_is", Typeof: "_typeof",
	Comma: ",", Semicolon: ";", Colon: ":",
	LParen: "(", RParen: ")", LBracket: "[", RBracket: "]", LBrace: "{", RBrace: "}",
}

// Table is the process-wide (or, for tests, per-instance) symbol table.
// Every lookup and interning call takes the table's mutex; once a name is
// interned its id is immutable.
type Table struct {
	mu        sync.Mutex
	nameToID  map[string]ID
	idToName  []string // indexed by ID; idToName[0] is the "no symbol" sentinel
}

// New returns a Table pre-seeded with the reserved special symbols.
func New() *Table {
	t := &Table{
		nameToID: make(map[string]ID, 256),
		idToName: make([]string, firstUser),
	}
	for id, name := range specialNames {
		t.nameToID[name] = id
		t.idToName[id] = name
	}
	return t
}

// GetSymbol interns name, allocating a new id if it hasn't been seen before.
func (t *Table) GetSymbol(name string) ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.nameToID[name]; ok {
		return id
	}
	id := ID(len(t.idToName))
	t.idToName = append(t.idToName, name)
	t.nameToID[name] = id
	return id
}

// GetSymbolNoCreate returns the id for name, or None if it has never been
// interned.
func (t *Table) GetSymbolNoCreate(name string) ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nameToID[name]
}

// GetName returns the interned string for id, or "" if id is unknown.
func (t *Table) GetName(id ID) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(id) >= len(t.idToName) {
		return ""
	}
	return t.idToName[id]
}

// Len reports how many symbols (including the reserved ones) are interned.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.idToName)
}

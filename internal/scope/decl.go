// Package scope implements ParseScope: the nested, lexically-scoped
// namespace the parser consults while resolving names, plus the
// user-extensible syntax table attached to each scope (spec §3.4, §4.E).
package scope

import "fmt"

// Kind is a ParseScope's role.
type Kind int

const (
	Outermost Kind = iota
	FunctionBody
	TillDo
	ScopeDecl
	Explicit
)

// DeclKind is the kind of a single declaration within a scope.
type DeclKind int

const (
	Primitive DeclKind = iota
	Global
	Argument
	Variable
	Const
	Auto
	Keyword
	Postcondition
	TillFlag
	Include
)

// immutableKinds cannot be redeclared in the same scope as a different
// kind (spec §3.4 invariant).
func (k DeclKind) immutable() bool { return k == Const || k == Auto }

// Position is a lightweight source position (file/line/col), decoupled
// from the lexer package to avoid a dependency cycle.
type Position struct {
	File string
	Line int
	Col  int
}

// Decl records one named declaration: its kind, source position, and a
// scope-local slot index (the compiler uses this index directly as the
// closure variable slot for Argument/Variable declarations).
type Decl struct {
	Name     string
	Kind     DeclKind
	Pos      Position
	Index    int
	// TillSlot is not assigned by the parser or the compiler and stays 0;
	// the compiler keeps each till flag's branch slot in its own tables.
	TillSlot int
	// ReadFromChild/WrittenFromChild are not set by the parser or the
	// compiler: till-form compilation (§4.H step 8) decides whether a
	// continuation must be real by walking the till's AST
	// (compiler.tillFlagsCapturedByChild) instead of reading these.
	ReadFromChild    bool
	WrittenFromChild bool
}

// DuplicateDeclarationError is the spec's semantic (parse-scope) error for
// a conflicting redeclaration.
type DuplicateDeclarationError struct {
	Name string
	Pos  Position
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %q is already declared with an incompatible kind", e.Pos.File, e.Pos.Line, e.Pos.Col, e.Name)
}

// SealedScopeError is raised when declare-here targets an Explicit scope
// whose variable list has already been sealed.
type SealedScopeError struct{ Name string }

func (e *SealedScopeError) Error() string {
	return "cannot declare " + e.Name + ": scope is sealed"
}

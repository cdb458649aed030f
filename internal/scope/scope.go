package scope

// Scope is one node of the ParseScope tree.
type Scope struct {
	Kind   Kind
	Parent *Scope

	symbolToIndex map[string]int
	decls         []Decl

	syntax *syntaxTableRef

	// includedRules tracks rule keys merely copied in from an #include,
	// kept separate from rules declared directly in this scope so
	// #include :syntax can re-export exactly the right set.
	ownRules      []string
	includedRules []string

	sealed bool
}

// Begin pushes a new child scope of the given kind.
func Begin(parent *Scope, kind Kind) *Scope {
	s := &Scope{
		Kind:          kind,
		Parent:        parent,
		symbolToIndex: make(map[string]int),
	}
	if parent != nil {
		s.syntax = parent.syntax.retain()
	} else {
		s.syntax = newSyntaxTableRef()
	}
	return s
}

// End pops the scope. If keepData is false the scope's declarations are
// released (the till scope's flag symbols, in particular, are destroyed
// when the till's dynamic extent ends, per spec §3.4).
func (s *Scope) End(keepData bool) {
	s.syntax.release()
	if !keepData {
		s.decls = nil
		s.symbolToIndex = nil
	}
}

// Seal marks an Explicit scope's variable list closed: no further
// declarations are accepted.
func (s *Scope) Seal() { s.sealed = true }

// DeclareHere creates (or validates a re-declaration of) name in this
// scope, per the redeclaration rule in spec §4.E: same kind is idempotent;
// within this scope a non-const/non-auto declaration is replaced in place
// by another non-const/non-auto kind, and const/auto conflict with any
// other kind. A declaration in a child scope is a separate Decl, so it may
// shadow a declaration of any kind here.
func (s *Scope) DeclareHere(name string, kind DeclKind, pos Position) (*Decl, error) {
	if s.Kind == Explicit && s.sealed {
		if _, exists := s.symbolToIndex[name]; !exists {
			return nil, &SealedScopeError{Name: name}
		}
	}
	if idx, exists := s.symbolToIndex[name]; exists {
		existing := &s.decls[idx]
		if existing.Kind == kind {
			return existing, nil
		}
		if existing.Kind.immutable() || kind.immutable() {
			return nil, &DuplicateDeclarationError{Name: name, Pos: pos}
		}
		// shadow: replace in place, same index, new kind.
		existing.Kind = kind
		existing.Pos = pos
		return existing, nil
	}
	d := Decl{Name: name, Kind: kind, Pos: pos, Index: len(s.decls)}
	s.decls = append(s.decls, d)
	s.symbolToIndex[name] = d.Index
	return &s.decls[len(s.decls)-1], nil
}

// Lookup searches this scope and its ancestors for name, returning the
// declaring scope and declaration.
func (s *Scope) Lookup(name string) (*Scope, *Decl) {
	for cur := s; cur != nil; cur = cur.Parent {
		if idx, ok := cur.symbolToIndex[name]; ok {
			return cur, &cur.decls[idx]
		}
	}
	return nil, nil
}

// LookupLocal searches only this scope (no ancestor walk).
func (s *Scope) LookupLocal(name string) *Decl {
	if idx, ok := s.symbolToIndex[name]; ok {
		return &s.decls[idx]
	}
	return nil
}

// Decls returns the dense declaration array, in declaration order.
func (s *Scope) Decls() []Decl { return s.decls }

// EnclosingFunction walks up to the nearest FunctionBody/Outermost scope,
// used by the compiler to decide a declaration's closure ownership.
func (s *Scope) EnclosingFunction() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == FunctionBody || cur.Kind == Outermost {
			return cur
		}
	}
	return s
}

// SyntaxTable returns the (copy-on-write) syntax table attached to this
// scope.
func (s *Scope) SyntaxTable() *SyntaxTable { return s.syntax.table }

// AddSyntaxRule installs rule into this scope's overlay, copying on write
// if the table is still shared with a parent.
func (s *Scope) AddSyntaxRule(class string, rule *Rule) {
	s.syntax = s.syntax.copyOnWrite()
	s.syntax.table.Add(class, rule)
	s.ownRules = append(s.ownRules, class)
}

// ImportSyntaxRules copies another scope's own+included rules into this
// scope's overlay (the #include ":syntax" bound form, spec §4.L).
func (s *Scope) ImportSyntaxRules(from *Scope) {
	s.syntax = s.syntax.copyOnWrite()
	for _, class := range append(append([]string{}, from.ownRules...), from.includedRules...) {
		for _, r := range from.syntax.table.rulesFor(class) {
			s.syntax.table.Add(class, r)
			s.includedRules = append(s.includedRules, class)
		}
	}
}

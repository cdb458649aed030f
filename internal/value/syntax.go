package value

// Syntax and Nonterminal are parse-time-only value kinds: a user #syntax
// rule and a reference to one of the nine built-in (or a user) grammar
// classes, respectively (spec §3.1, §4.E). They never reach the compiler;
// the parser consumes and discards them once a rule is installed into a
// ParseScope's syntax table.
type Syntax struct {
	Pattern     []string
	Replacement Value
}

func NewSyntax(pattern []string, replacement Value) Value {
	return Value{Kind: KSyntax, Obj: &Syntax{Pattern: pattern, Replacement: replacement}}
}

func (s *Syntax) Kind() Kind       { return KSyntax }
func (s *Syntax) ToString() string { return "#<syntax>" }
func (s *Syntax) Hash() uint64     { return HashPointerValue(s) }
func (s *Syntax) Base() Value      { return Null }
func (s *Syntax) SetProperty(string, Value) error { return errImmutable("Syntax") }
func (s *Syntax) HasProperty(string) bool           { return false }
func (s *Syntax) PropertyNames() []string            { return nil }
func (s *Syntax) GetProperty(string) (Value, bool)   { return Null, false }
func (s *Syntax) DeepEqual(other Value, _ map[Object]bool) bool {
	o, ok := other.Obj.(*Syntax)
	return ok && o == s
}

type Nonterminal struct {
	Class string
}

func NewNonterminal(class string) Value {
	return Value{Kind: KNonterminal, Obj: &Nonterminal{Class: class}}
}

func (n *Nonterminal) Kind() Kind       { return KNonterminal }
func (n *Nonterminal) ToString() string { return "#<nonterminal " + n.Class + ">" }
func (n *Nonterminal) Hash() uint64     { return hashBytes(n.Class) }
func (n *Nonterminal) Base() Value      { return Null }
func (n *Nonterminal) SetProperty(string, Value) error { return errImmutable("Nonterminal") }
func (n *Nonterminal) HasProperty(string) bool           { return false }
func (n *Nonterminal) PropertyNames() []string            { return nil }
func (n *Nonterminal) GetProperty(string) (Value, bool)   { return Null, false }
func (n *Nonterminal) DeepEqual(other Value, _ map[Object]bool) bool {
	o, ok := other.Obj.(*Nonterminal)
	return ok && o.Class == n.Class
}

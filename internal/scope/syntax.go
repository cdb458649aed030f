package scope

// Rule is one user #syntax rule: a sequence of pattern elements (terminal
// text or a referenced nonterminal class name, told apart by
// PatternElem.IsNonterminal) and the replacement it produces on a match.
// Replacement is kept as an opaque interface{} here (the parser stores a
// *parser.SyntaxReplacement naming the function to call) so this package
// doesn't depend on internal/parser.
type Rule struct {
	Pattern            []PatternElem
	Replacement        interface{}
	ReplacementVars    []string
}

type PatternElem struct {
	IsNonterminal bool
	Text          string // terminal text, or nonterminal class name
}

// Node is one node of a syntax class's rule tree: a path of terminals and
// nonterminal references the parser walks, terminating (optionally) in a
// Replacement once the whole pattern has matched.
type Node struct {
	Name             string
	IsTerminal       bool
	NextTerminals    map[string]*Node
	NextNonterminals map[string]*Node
	Replacement      interface{}
	ReplacementVars  []string
}

func newNode(name string, isTerminal bool) *Node {
	return &Node{Name: name, IsTerminal: isTerminal,
		NextTerminals: make(map[string]*Node), NextNonterminals: make(map[string]*Node)}
}

// builtinClasses are the nine nonterminals with hardcoded fast-path
// identities (spec §4.E).
var builtinClasses = []string{
	"STMT", "EXPR", "CMPEXPR", "ADDEXPR", "MULEXPR",
	"BINARYEXPR", "PREFIXEXPR", "POSTFIXEXPR", "TERM",
}

// SyntaxTable maps a class symbol (nonterminal name) to its rule tree.
type SyntaxTable struct {
	roots map[string]*Node
	rules map[string][]*Rule
}

func newSyntaxTable() *SyntaxTable {
	t := &SyntaxTable{roots: make(map[string]*Node), rules: make(map[string][]*Rule)}
	for _, c := range builtinClasses {
		t.roots[c] = newNode(c, false)
	}
	return t
}

func (t *SyntaxTable) clone() *SyntaxTable {
	c := &SyntaxTable{roots: make(map[string]*Node, len(t.roots)), rules: make(map[string][]*Rule, len(t.rules))}
	for k, v := range t.roots {
		c.roots[k] = cloneNode(v)
	}
	for k, v := range t.rules {
		c.rules[k] = append([]*Rule(nil), v...)
	}
	return c
}

func cloneNode(n *Node) *Node {
	c := &Node{Name: n.Name, IsTerminal: n.IsTerminal, Replacement: n.Replacement,
		ReplacementVars: n.ReplacementVars,
		NextTerminals:    make(map[string]*Node, len(n.NextTerminals)),
		NextNonterminals: make(map[string]*Node, len(n.NextNonterminals))}
	for k, v := range n.NextTerminals {
		c.NextTerminals[k] = cloneNode(v)
	}
	for k, v := range n.NextNonterminals {
		c.NextNonterminals[k] = cloneNode(v)
	}
	return c
}

// Root returns (creating if necessary) the rule tree root for class.
func (t *SyntaxTable) Root(class string) *Node {
	n, ok := t.roots[class]
	if !ok {
		n = newNode(class, false)
		t.roots[class] = n
	}
	return n
}

func (t *SyntaxTable) rulesFor(class string) []*Rule { return t.rules[class] }

// Add installs rule's pattern into class's tree, walking/creating nodes for
// each pattern element and attaching the replacement at the final node.
func (t *SyntaxTable) Add(class string, rule *Rule) {
	node := t.Root(class)
	for _, elem := range rule.Pattern {
		if elem.IsNonterminal {
			next, ok := node.NextNonterminals[elem.Text]
			if !ok {
				next = newNode(elem.Text, false)
				node.NextNonterminals[elem.Text] = next
			}
			node = next
		} else {
			next, ok := node.NextTerminals[elem.Text]
			if !ok {
				next = newNode(elem.Text, true)
				node.NextTerminals[elem.Text] = next
			}
			node = next
		}
	}
	node.Replacement = rule.Replacement
	node.ReplacementVars = rule.ReplacementVars
	t.rules[class] = append(t.rules[class], rule)
}

// --- reference counting / copy-on-write -------------------------------------------------

// syntaxTableRef is a reference-counted handle on a SyntaxTable: cheap to
// share down the scope tree (retain), and copies only when a scope
// actually wants to mutate it (copyOnWrite), per spec §3.4/§9.
type syntaxTableRef struct {
	table *SyntaxTable
	count *int
}

func newSyntaxTableRef() *syntaxTableRef {
	n := 1
	return &syntaxTableRef{table: newSyntaxTable(), count: &n}
}

func (r *syntaxTableRef) retain() *syntaxTableRef {
	*r.count++
	return r
}

func (r *syntaxTableRef) release() {
	*r.count--
}

func (r *syntaxTableRef) copyOnWrite() *syntaxTableRef {
	if *r.count <= 1 {
		return r
	}
	*r.count--
	n := 1
	return &syntaxTableRef{table: r.table.clone(), count: &n}
}

package value

// SourceLoc optionally attributes a List/Pair to where it was read from, so
// the parser can build trees the compiler later uses for stack-trace
// SourceLocations (spec §3.1, §4.H "source-location tracking").
type SourceLoc struct {
	File   string
	Line   int
	Column int
}

// List is a cons cell: (A . D). Well-formedness (no cycles, terminated by
// Null) is only an invariant checked on demand by IsWellFormed, using a
// Floyd tortoise/hare walk as spec'd, so merely constructing a List never
// pays that cost.
type List struct {
	A, D Value
	Loc  *SourceLoc
}

func Cons(a, d Value) Value {
	return Value{Kind: KList, Obj: &List{A: a, D: d}}
}

func (l *List) Kind() Kind     { return KList }
func (l *List) Hash() uint64   { return l.A.Hash()*31 + l.D.Hash() }
func (l *List) Base() Value    { return Null }
func (l *List) SetProperty(string, Value) error { return errImmutable("List") }
func (l *List) HasProperty(name string) bool     { return name == "a" || name == "d" }
func (l *List) PropertyNames() []string           { return []string{"a", "d"} }

func (l *List) GetProperty(name string) (Value, bool) {
	switch name {
	case "a":
		return l.A, true
	case "d":
		return l.D, true
	}
	return Null, false
}

func (l *List) DeepEqual(other Value, seen map[Object]bool) bool {
	o, ok := other.Obj.(*List)
	if !ok {
		return false
	}
	if seen[l] {
		return true
	}
	seen[l] = true
	return l.A.DeepEqual(o.A) && l.D.DeepEqual(o.D)
}

// IsWellFormed reports whether repeatedly taking D from v reaches Null
// without cycling, using Floyd's tortoise-and-hare per spec §3.1.
func IsWellFormed(v Value) bool {
	slow, fast := v, v
	for {
		if fast.Kind == KNull {
			return true
		}
		fl, ok := fast.Obj.(*List)
		if !ok {
			return fast.Kind == KNull
		}
		fast = fl.D
		if fast.Kind == KNull {
			return true
		}
		fl2, ok := fast.Obj.(*List)
		if !ok {
			return fast.Kind == KNull
		}
		fast = fl2.D

		sl, _ := slow.Obj.(*List)
		if sl == nil {
			return fast.Kind == KNull
		}
		slow = sl.D

		if fast.Obj == slow.Obj && fast.Kind == KList {
			return false
		}
	}
}

func (l *List) ToString() string {
	if !IsWellFormed(Value{Kind: KList, Obj: l}) {
		return "#<cyclic list>"
	}
	var sb []byte
	sb = append(sb, '(')
	cur := Value{Kind: KList, Obj: l}
	first := true
	for cur.Kind == KList {
		cl := cur.Obj.(*List)
		if !first {
			sb = append(sb, ' ')
		}
		first = false
		sb = append(sb, cl.A.ToString()...)
		cur = cl.D
	}
	if cur.Kind != KNull {
		sb = append(sb, " . "...)
		sb = append(sb, cur.ToString()...)
	}
	sb = append(sb, ')')
	return string(sb)
}

// Pair is the (left, right) boxed pair kind, distinct from a List cons
// cell: pairs are not expected to chain into lists.
type Pair struct {
	Left, Right Value
}

func NewPair(l, r Value) Value {
	return Value{Kind: KPair, Obj: &Pair{Left: l, Right: r}}
}

func (p *Pair) Kind() Kind       { return KPair }
func (p *Pair) Hash() uint64     { return p.Left.Hash()*31 + p.Right.Hash() }
func (p *Pair) Base() Value      { return Null }
func (p *Pair) ToString() string { return "(" + p.Left.ToString() + " : " + p.Right.ToString() + ")" }
func (p *Pair) SetProperty(string, Value) error { return errImmutable("Pair") }
func (p *Pair) HasProperty(name string) bool     { return name == "left" || name == "right" }
func (p *Pair) PropertyNames() []string           { return []string{"left", "right"} }

func (p *Pair) GetProperty(name string) (Value, bool) {
	switch name {
	case "left":
		return p.Left, true
	case "right":
		return p.Right, true
	}
	return Null, false
}

func (p *Pair) DeepEqual(other Value, seen map[Object]bool) bool {
	o, ok := other.Obj.(*Pair)
	if !ok {
		return false
	}
	if seen[p] {
		return true
	}
	seen[p] = true
	return p.Left.DeepEqual(o.Left) && p.Right.DeepEqual(o.Right)
}

// ListFromSlice builds a well-formed list from items, in order.
func ListFromSlice(items []Value) Value {
	result := Null
	for i := len(items) - 1; i >= 0; i-- {
		result = Cons(items[i], result)
	}
	return result
}

// ListToSlice flattens a well-formed (or dotted) list into its A values.
func ListToSlice(v Value) []Value {
	var out []Value
	for v.Kind == KList {
		l := v.Obj.(*List)
		out = append(out, l.A)
		v = l.D
	}
	return out
}

package compiler

import (
	"smile/internal/parser"
	"testing"
)

// TestTillFlagsCapturedByChild_NotCaptured is the negative half of the
// demotion law (spec §8 property 8): a flag referenced only at depth 0
// (the till's own body and when-clauses) must not be reported as
// captured, since that is exactly the case the compiler demotes to a
// plain local Jmp (internal/compiler/till.go:compileEscape).
func TestTillFlagsCapturedByChild_NotCaptured(t *testing.T) {
	body := &parser.While{
		Cond: &parser.Ident{Name: "cond"},
		Body: &parser.Ident{Name: "done"},
	}
	whens := []parser.WhenClause{
		{Flag: "done", Body: &parser.Literal{}},
	}

	captured := tillFlagsCapturedByChild(body, whens, []string{"done"})
	if captured["done"] {
		t.Fatalf("flag %q reported captured at depth 0; want not captured", "done")
	}
}

// TestTillFlagsCapturedByChild_Captured is the positive half: a flag
// mentioned from inside a nested FnLit (depth > 0) forces a real
// continuation, since the enclosing till-form may have already returned
// by the time the closure is invoked.
func TestTillFlagsCapturedByChild_Captured(t *testing.T) {
	body := &parser.DoBlock{
		Body: []parser.Expr{
			&parser.VarDecl{
				Name: "f",
				Value: &parser.FnLit{
					Params: []parser.Param{{Name: "n"}},
					Body: &parser.If{
						Cond: &parser.Ident{Name: "n"},
						Then: &parser.Ident{Name: "done"},
						Else: &parser.Call{
							Callee: &parser.Ident{Name: "f"},
							Args:   []parser.Expr{&parser.Ident{Name: "n"}},
						},
					},
				},
			},
			&parser.Call{Callee: &parser.Ident{Name: "f"}, Args: []parser.Expr{&parser.Literal{}}},
		},
	}

	captured := tillFlagsCapturedByChild(body, nil, []string{"done"})
	if !captured["done"] {
		t.Fatalf("flag %q not reported captured when referenced inside a nested fn", "done")
	}
}

// TestTillFlagsCapturedByChild_UnrelatedNameIgnored checks that an
// identifier that is not in the till's own flag list, even when referenced
// inside a nested fn, is never marked captured — activeTillFlag only searches the known
// set, and tillFlagsCapturedByChild must agree with that scoping.
func TestTillFlagsCapturedByChild_UnrelatedNameIgnored(t *testing.T) {
	body := &parser.FnLit{
		Body: &parser.Ident{Name: "other"},
	}
	captured := tillFlagsCapturedByChild(body, nil, []string{"done"})
	if captured["other"] {
		t.Fatalf("unrelated identifier %q recorded as a captured till flag", "other")
	}
	if len(captured) != 0 {
		t.Fatalf("captured = %v; want empty", captured)
	}
}

package compiler

import (
	"smile/internal/bytecode"
	"smile/internal/ir"
	"smile/internal/parser"
)

// tillFlagCtx is the compile-time bookkeeping for one active till-form:
// a forward-declared label per flag (resolved once the matching when-clause,
// or the till's own end, is reached) plus, for the non-demoted case, the
// compiler locals holding each flag's heap TillContinuation.
type tillFlagCtx struct {
	flags  []string
	labels map[string]*ir.Instruction
	demote bool

	// slots holds each flag's compiler-local slot for its heap
	// TillContinuation; unused when demote is true.
	slots map[string]int32
}

func (c *Compiler) activeTillFlag(name string) *tillFlagCtx {
	for i := len(c.tillStack) - 1; i >= 0; i-- {
		ctx := c.tillStack[i]
		for _, fl := range ctx.flags {
			if fl == name {
				return ctx
			}
		}
	}
	return nil
}

// compileEscape lowers a reference to an active till flag — whether a bare
// name (`done`) or a call carrying a result (`done 42`) — to either a
// direct Jmp (demoted case) or an invocation of the flag's heap
// TillContinuation (real-continuation case, spec §4.J "Till escape").
func (c *Compiler) compileEscape(ctx *tillFlagCtx, name string, argExpr parser.Expr, blk *ir.Block) {
	if ctx.demote {
		if argExpr != nil {
			c.compileExpr(argExpr, blk, Flags{})
		} else {
			blk.Emit(bytecode.LdNull, 0, 0)
		}
		blk.EmitBranch(bytecode.Jmp, ctx.labels[name], 0)
		return
	}
	blk.Emit(bytecode.LdLoc, int64(ctx.slots[name]), 0)
	argc := 0
	if argExpr != nil {
		c.compileExpr(argExpr, blk, Flags{})
		argc = 1
	}
	c.emitCall(blk, argc)
}

// tillFlagsCapturedByChild walks body and the when-clause bodies, marking
// any flag referenced while inside a nested fn literal. A till-form can be
// compiled as a plain local jump (no NewTill/EndTill) exactly when no flag
// is ever mentioned from within a nested closure (spec §4.H step 8, §8
// property 8 — the "till demotion law").
func tillFlagsCapturedByChild(body parser.Expr, whens []parser.WhenClause, flags []string) map[string]bool {
	captured := make(map[string]bool, len(flags))
	known := make(map[string]bool, len(flags))
	for _, f := range flags {
		known[f] = true
	}

	var walk func(e parser.Expr, depth int)
	walk = func(e parser.Expr, depth int) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *parser.Ident:
			if depth > 0 && known[n.Name] {
				captured[n.Name] = true
			}
		case *parser.Unary:
			walk(n.Operand, depth)
		case *parser.Binary:
			walk(n.Left, depth)
			walk(n.Right, depth)
		case *parser.Call:
			if id, ok := n.Callee.(*parser.Ident); ok && depth > 0 && known[id.Name] {
				captured[id.Name] = true
			} else {
				walk(n.Callee, depth)
			}
			for _, a := range n.Args {
				walk(a, depth)
			}
		case *parser.Index:
			walk(n.Recv, depth)
			walk(n.Key, depth)
		case *parser.PropertyAccess:
			walk(n.Recv, depth)
		case *parser.Assign:
			walk(n.Target, depth)
			walk(n.Value, depth)
		case *parser.VarDecl:
			walk(n.Value, depth)
		case *parser.If:
			walk(n.Cond, depth)
			walk(n.Then, depth)
			walk(n.Else, depth)
		case *parser.While:
			walk(n.Cond, depth)
			walk(n.Body, depth)
		case *parser.DoBlock:
			for _, s := range n.Body {
				walk(s, depth)
			}
		case *parser.Till:
			walk(n.Body, depth)
			for _, w := range n.Whens {
				walk(w.Body, depth)
			}
		case *parser.FnLit:
			for _, p := range n.Params {
				walk(p.Default, depth)
			}
			walk(n.Body, depth+1)
		case *parser.Return:
			walk(n.Value, depth)
		case *parser.TryExpr:
			walk(n.Body, depth)
			walk(n.Handler, depth)
		case *parser.Progn:
			for _, s := range n.Exprs {
				walk(s, depth)
			}
		case *parser.Quote:
			for _, r := range n.Runtime {
				walk(r, depth)
			}
		}
	}

	walk(body, 0)
	for _, w := range whens {
		walk(w.Body, 0)
	}
	return captured
}

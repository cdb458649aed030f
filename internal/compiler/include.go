package compiler

import (
	"smile/internal/bytecode"
	"smile/internal/ir"
	"smile/internal/parser"
	"smile/internal/value"
)

// compileInclude resolves a #include directive through c.Includer (spec
// §4.L) and splices in the bound names as fresh locals, each initialised
// from the literal value the resolved module produced. With no Includer
// configured (a standalone snippet compiled outside a file context) the
// node compiles to a no-op, matching the teacher's behaviour for
// REPL-style one-liners that never #include anything.
func (c *Compiler) compileInclude(n *parser.IncludeExpr, blk *ir.Block, f Flags) {
	if c.Includer == nil {
		if !f.NoResult {
			blk.Emit(bytecode.LdNull, 0, 0)
		}
		return
	}

	bindings, err := c.Includer.Include(n.Target, n.IsPath, c.SourceDir)
	if err != nil {
		blk.Flags |= ir.FlagError
		if !f.NoResult {
			blk.Emit(bytecode.LdNull, 0, 0)
		}
		return
	}

	var names []string
	if n.Syntax {
		// Syntax-only include: rule copying happens at parse time, through
		// the Parser's SyntaxIncluder (scope.Scope.ImportSyntaxRules) —
		// nothing left to do here but skip producing runtime bindings.
	} else if n.All {
		for _, b := range bindings {
			names = append(names, b.Name)
			c.bindInclude(blk, b.Name, b.Name, bindings)
		}
	} else {
		for _, want := range n.Bindings {
			names = append(names, want.New)
			c.bindInclude(blk, want.Old, want.New, bindings)
		}
	}

	if f.NoResult {
		return
	}
	symList := value.Null
	for i := len(names) - 1; i >= 0; i-- {
		symList = value.Cons(value.Symbol(uint32(c.internSym(names[i]))), symList)
	}
	idx := c.Tables.AddLiteral(symList)
	blk.Emit(bytecode.LdObj, int64(idx), 0)
}

// bindInclude declares localName in the current function scope and emits
// code to initialise it from bindings' entry named oldName.
func (c *Compiler) bindInclude(blk *ir.Block, oldName, localName string, bindings []IncludeBinding) {
	for _, b := range bindings {
		if b.Name == oldName {
			c.cur.declare(localName)
			emitConstant(c, blk, b.Value)
			c.compileStore(localName, blk, false)
			return
		}
	}
	// Requested name not exported by the module: bind null rather than
	// aborting the whole include (spec leaves this case's diagnostics to
	// the embedder; the core's job is just not to panic).
	c.cur.declare(localName)
	blk.Emit(bytecode.LdNull, 0, 0)
	c.compileStore(localName, blk, false)
}

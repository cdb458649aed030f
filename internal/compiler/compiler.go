// Package compiler lowers a parser.Expr tree into bytecode, via the
// internal/ir block/instruction layer (spec §4.G/§4.H). One Compiler
// compiles one top-level unit (a file, or a REPL line) and produces a
// bytecode.Segment plus the ir.CompiledTables it was built against.
package compiler

import (
	"smile/internal/bytecode"
	"smile/internal/ir"
	"smile/internal/parser"
	"smile/internal/symbol"
	"smile/internal/value"
)

// Flags modify how an expression is compiled: whether its result is
// discarded (NoResult, so e.g. an If's branches each drop their value) and
// whether it's compiled in a boolean-test position (BoolContext, enabling
// the StripNots peephole so `not`-guarded branches invert instead of
// negating then testing).
type Flags struct {
	NoResult    bool
	BoolContext bool
}

// funcScope is one function-nesting level's local-variable slot table,
// assigned in declaration order the way the teacher's register allocators
// hand out slots (params first, then each nested var/const/auto in the
// order first seen).
type funcScope struct {
	parent  *funcScope
	names   map[string]int32
	order   []string
	fnIndex int32 // index into Tables.UserFunctions, or -1 for the top level
}

func newFuncScope(parent *funcScope, fnIndex int32) *funcScope {
	return &funcScope{parent: parent, names: make(map[string]int32), fnIndex: fnIndex}
}

func (f *funcScope) declare(name string) int32 {
	if slot, ok := f.names[name]; ok {
		return slot
	}
	slot := int32(len(f.order))
	f.names[name] = slot
	f.order = append(f.order, name)
	return slot
}

// Compiler holds the state for one compilation run: the growing
// CompiledTables, the symbol table shared with the lexer/parser, and the
// function-nesting stack used for name resolution.
type Compiler struct {
	Tables  *ir.CompiledTables
	Symbols *symbol.Table
	cur     *funcScope

	// tillStack holds the till-forms currently being compiled, innermost
	// last, so a flag reference inside a nested one shadows an outer
	// flag of the same name (spec §3.4 scope nesting).
	tillStack []*tillFlagCtx

	// Includer/SourceDir resolve #include directives (spec §4.L); nil
	// Includer means IncludeExpr nodes compile to a no-op, matching
	// standalone snippets that never reference one.
	Includer  Includer
	SourceDir string
}

// IncludeBinding is one name bound into the includer's scope by a
// resolved #include (spec §4.L "the generated expression ... binds
// globals and returns the list of bound names").
type IncludeBinding struct {
	Name  string
	Value value.Value
}

// Includer resolves a #include directive to a set of named bindings.
// Supplied by the embedder (internal/module) so this package stays free of
// filesystem and built-in-package-registry concerns.
type Includer interface {
	Include(target string, isPath bool, fromDir string) ([]IncludeBinding, error)
}

func New(symbols *symbol.Table) *Compiler {
	return &Compiler{Tables: ir.NewCompiledTables(), Symbols: symbols}
}

// CompileGlobal compiles a whole parsed program (spec §4.H "compile a
// top-level unit") into a flat bytecode.Segment, performing the two-pass
// address/branch resolution from internal/ir after the IR block tree is
// built.
func CompileGlobal(prog *parser.Progn, symbols *symbol.Table) (*bytecode.Segment, *ir.CompiledTables, int, error) {
	seg, tables, numLocals, _, err := CompileGlobalIn(prog, symbols, nil, "")
	return seg, tables, numLocals, err
}

// CompileGlobalIn is CompileGlobal with #include support: includer
// resolves path/package targets and sourceDir anchors relative paths
// (spec §6.3). It additionally returns the top-level variables in
// declaration order, so an embedder (internal/module, in particular) can
// read named bindings back out of the executed top-level Closure's Locals.
func CompileGlobalIn(prog *parser.Progn, symbols *symbol.Table, includer Includer, sourceDir string) (*bytecode.Segment, *ir.CompiledTables, int, []string, error) {
	return CompileGlobalInto(prog, symbols, nil, includer, sourceDir)
}

// CompileGlobalInto is CompileGlobalIn, but appends to an existing
// CompiledTables instead of allocating a fresh one (tables == nil still
// allocates fresh). Every unit run against the same VM — the main
// program and every file it #includes — must share one CompiledTables,
// since the VM resolves NewFn/NewTill operands as indices into a single
// table (spec §4.J); internal/module uses this to compile included files
// into the running program's own table space rather than a disjoint one.
func CompileGlobalInto(prog *parser.Progn, symbols *symbol.Table, tables *ir.CompiledTables, includer Includer, sourceDir string) (*bytecode.Segment, *ir.CompiledTables, int, []string, error) {
	c := New(symbols)
	if tables != nil {
		c.Tables = tables
	}
	c.Includer = includer
	c.SourceDir = sourceDir
	c.cur = newFuncScope(nil, -1)
	blk := ir.NewBlock(nil)
	for i, e := range prog.Exprs {
		flags := Flags{NoResult: i < len(prog.Exprs)-1}
		c.compileExpr(e, blk, flags)
	}
	blk.Emit(bytecode.Ret, 0, 0)
	blk.Flatten()
	blk.CalculateAddresses(0)
	if err := blk.ResolveBranches(); err != nil {
		return nil, nil, 0, nil, err
	}
	seg := &bytecode.Segment{}
	blk.AppendToByteCodeSegment(seg, false)
	seg.Strings = c.Tables.Strings
	seg.Literals = c.Tables.Literals
	seg.SourceLocations = c.Tables.SourceLocations
	return seg, c.Tables, len(c.cur.order), c.cur.order, nil
}

// compileExpr is the dispatch point every node type goes through; it
// mirrors the teacher's single-big-switch compiler shape rather than a
// visitor interface, since the node set is closed and known up front.
func (c *Compiler) compileExpr(e parser.Expr, blk *ir.Block, f Flags) {
	switch n := e.(type) {
	case *parser.Literal:
		c.compileLiteral(n, blk, f)
	case *parser.Quote:
		c.compileQuote(n, blk, f)
	case *parser.Ident:
		if ctx := c.activeTillFlag(n.Name); ctx != nil {
			c.compileEscape(ctx, n.Name, nil, blk)
			return
		}
		c.compileLoad(n.Name, blk)
		c.maybeDrop(blk, f)
	case *parser.Unary:
		c.compileUnary(n, blk, f)
	case *parser.Binary:
		c.compileBinary(n, blk, f)
	case *parser.Assign:
		c.compileAssign(n, blk, f)
	case *parser.VarDecl:
		c.compileVarDecl(n, blk, f)
	case *parser.Call:
		c.compileCall(n, blk, f)
	case *parser.Index:
		c.compileExpr(n.Recv, blk, Flags{})
		c.compileExpr(n.Key, blk, Flags{})
		blk.Emit(bytecode.LdMember, 0, 0)
		c.maybeDrop(blk, f)
	case *parser.PropertyAccess:
		c.compileExpr(n.Recv, blk, Flags{})
		sym := c.internSym(n.Name)
		blk.Emit(bytecode.LdProp, int64(sym), 0)
		c.maybeDrop(blk, f)
	case *parser.If:
		c.compileIf(n, blk, f)
	case *parser.While:
		c.compileWhile(n, blk, f)
	case *parser.DoBlock:
		for i, sub := range n.Body {
			sf := Flags{NoResult: f.NoResult || i < len(n.Body)-1}
			c.compileExpr(sub, blk, sf)
		}
		if len(n.Body) == 0 && !f.NoResult {
			blk.Emit(bytecode.LdNull, 0, 0)
		}
	case *parser.FnLit:
		c.compileFnLit(n, blk, f)
	case *parser.Return:
		if n.Value != nil {
			c.compileExpr(n.Value, blk, Flags{})
		} else {
			blk.Emit(bytecode.LdNull, 0, 0)
		}
		blk.Emit(bytecode.Ret, 0, 0)
	case *parser.Till:
		c.compileTill(n, blk, f)
	case *parser.TryExpr:
		c.compileTry(n, blk, f)
	case *parser.IncludeExpr:
		c.compileInclude(n, blk, f)
	case *parser.Progn:
		for i, sub := range n.Exprs {
			sf := Flags{NoResult: f.NoResult || i < len(n.Exprs)-1}
			c.compileExpr(sub, blk, sf)
		}
	default:
		blk.Emit(bytecode.LdNull, 0, 0)
		c.maybeDrop(blk, f)
	}
}

func (c *Compiler) maybeDrop(blk *ir.Block, f Flags) {
	if f.NoResult {
		blk.Emit(bytecode.Pop1, 0, 0)
	}
}

func (c *Compiler) internSym(name string) int32 {
	return int32(c.Symbols.GetSymbol(name))
}

func (c *Compiler) compileLiteral(n *parser.Literal, blk *ir.Block, f Flags) {
	emitConstant(c, blk, n.Val)
	c.maybeDrop(blk, f)
}

func (c *Compiler) compileQuote(n *parser.Quote, blk *ir.Block, f Flags) {
	idx := c.Tables.AddLiteral(n.Tree)
	blk.Emit(bytecode.LdObj, int64(idx), 0)
	if n.HasRuntime {
		// Runtime splice sites are filled in at run time (spec §4.H
		// scenario E): each Runtime[i] compiles here, and NewObj with the
		// splice count makes the VM copy the tree with those values
		// substituted (rebuildQuoteTree).
		for _, r := range n.Runtime {
			c.compileExpr(r, blk, Flags{})
		}
		blk.Emit(bytecode.NewObj, int64(len(n.Runtime)), 0)
	}
	c.maybeDrop(blk, f)
}

func (c *Compiler) compileUnary(n *parser.Unary, blk *ir.Block, f Flags) {
	switch n.Op {
	case "not":
		c.compileExpr(n.Operand, blk, Flags{})
		blk.Emit(bytecode.Not, 0, 0)
	case "-":
		c.compileExpr(n.Operand, blk, Flags{})
		blk.Emit(bytecode.OpNeg, 0, 0)
	case "typeof":
		c.compileExpr(n.Operand, blk, Flags{})
		blk.Emit(bytecode.TypeOf, 0, 0)
	case "new":
		c.compileExpr(n.Operand, blk, Flags{})
		blk.Emit(bytecode.NewObj, 0, 0)
	}
	c.maybeDrop(blk, f)
}

var binOps = map[string]bytecode.Op{
	"+": bytecode.OpAdd, "-": bytecode.OpSub, "*": bytecode.OpMul,
	"/": bytecode.OpDiv, "%": bytecode.OpMod,
	"<": bytecode.OpLt, "<=": bytecode.OpLe, ">": bytecode.OpGt, ">=": bytecode.OpGe,
	"==": bytecode.OpEq, "!=": bytecode.OpNe,
}

func (c *Compiler) compileBinary(n *parser.Binary, blk *ir.Block, f Flags) {
	switch n.Op {
	case "and":
		c.compileExpr(n.Left, blk, Flags{})
		skip := &ir.Instruction{Op: bytecode.LabelPseudo, Address: -1}
		dup := blk.Emit(bytecode.Dup1, 0, 0)
		_ = dup
		blk.EmitBranch(bytecode.Bf, skip, 0)
		blk.Emit(bytecode.Pop1, 0, 0)
		c.compileExpr(n.Right, blk, Flags{})
		blk.AttachInstruction(skip)
		c.maybeDrop(blk, f)
		return
	case "or":
		c.compileExpr(n.Left, blk, Flags{})
		skip := &ir.Instruction{Op: bytecode.LabelPseudo, Address: -1}
		blk.Emit(bytecode.Dup1, 0, 0)
		blk.EmitBranch(bytecode.Bt, skip, 0)
		blk.Emit(bytecode.Pop1, 0, 0)
		c.compileExpr(n.Right, blk, Flags{})
		blk.AttachInstruction(skip)
		c.maybeDrop(blk, f)
		return
	}
	c.compileExpr(n.Left, blk, Flags{})
	c.compileExpr(n.Right, blk, Flags{})
	if op, ok := binOps[n.Op]; ok {
		blk.Emit(op, 0, 0)
	}
	c.maybeDrop(blk, f)
}

// resolve finds name in the function-nesting stack, returning its opcode
// family (local, closure, or global/builtin) and packed operand.
type resolved struct {
	kind string // "local", "outer", "global"
	up   int32
	slot int32
}

func (c *Compiler) resolve(name string) resolved {
	var up int32
	for fs := c.cur; fs != nil; fs = fs.parent {
		if slot, ok := fs.names[name]; ok {
			if up == 0 {
				return resolved{kind: "local", slot: slot}
			}
			return resolved{kind: "outer", up: up, slot: slot}
		}
		up++
	}
	return resolved{kind: "global", slot: c.internSym(name)}
}

func packXOperand(up, slot int32) int64 { return int64(up)<<32 | int64(uint32(slot)) }

func (c *Compiler) compileLoad(name string, blk *ir.Block) {
	r := c.resolve(name)
	switch r.kind {
	case "local":
		blk.Emit(bytecode.LdLoc, int64(r.slot), 0)
	case "outer":
		blk.Emit(bytecode.LdX, packXOperand(r.up, r.slot), 0)
	default:
		// Global/builtin lookup: encoded the same way as an outer-closure
		// reference but with up = -1, so the VM's LdX/StX handlers have a
		// single packed-operand decode path regardless of scope kind.
		blk.Emit(bytecode.LdX, packXOperand(-1, r.slot), 0)
	}
}

func (c *Compiler) compileStore(name string, blk *ir.Block, keepValue bool) {
	r := c.resolve(name)
	switch r.kind {
	case "local":
		if keepValue {
			blk.Emit(bytecode.StpLoc, int64(r.slot), 0)
		} else {
			blk.Emit(bytecode.StLoc, int64(r.slot), 0)
		}
	case "outer":
		if keepValue {
			blk.Emit(bytecode.StpX, packXOperand(r.up, r.slot), 0)
		} else {
			blk.Emit(bytecode.StX, packXOperand(r.up, r.slot), 0)
		}
	default:
		if keepValue {
			blk.Emit(bytecode.StpX, packXOperand(-1, r.slot), 0)
		} else {
			blk.Emit(bytecode.StX, packXOperand(-1, r.slot), 0)
		}
	}
}

func (c *Compiler) compileAssign(n *parser.Assign, blk *ir.Block, f Flags) {
	name, ok := targetName(n.Target)
	if !ok {
		c.compileExpr(n.Value, blk, f)
		return
	}
	c.cur.declare(name)
	c.compileExpr(n.Value, blk, Flags{})
	c.compileStore(name, blk, !f.NoResult)
}

func targetName(e parser.Expr) (string, bool) {
	if id, ok := e.(*parser.Ident); ok {
		return id.Name, true
	}
	return "", false
}

func (c *Compiler) compileVarDecl(n *parser.VarDecl, blk *ir.Block, f Flags) {
	c.cur.declare(n.Name)
	if n.Value != nil {
		c.compileExpr(n.Value, blk, Flags{})
	} else {
		blk.Emit(bytecode.LdNull, 0, 0)
	}
	c.compileStore(n.Name, blk, !f.NoResult)
}

func (c *Compiler) compileCall(n *parser.Call, blk *ir.Block, f Flags) {
	if n.Method == "" {
		if id, ok := n.Callee.(*parser.Ident); ok {
			if ctx := c.activeTillFlag(id.Name); ctx != nil {
				var arg parser.Expr
				if len(n.Args) > 0 {
					arg = n.Args[0]
				}
				c.compileEscape(ctx, id.Name, arg, blk)
				return
			}
		}
	}
	if n.Method != "" {
		c.compileExpr(n.Callee, blk, Flags{})
		for _, a := range n.Args {
			c.compileExpr(a, blk, Flags{})
		}
		sym := c.internSym(n.Method)
		blk.Emit(bytecode.LdSym, int64(sym), 0)
		c.emitMetCall(blk, len(n.Args))
		c.maybeDrop(blk, f)
		return
	}
	c.compileExpr(n.Callee, blk, Flags{})
	for _, a := range n.Args {
		c.compileExpr(a, blk, Flags{})
	}
	c.emitCall(blk, len(n.Args))
	c.maybeDrop(blk, f)
}

func (c *Compiler) emitCall(blk *ir.Block, argc int) {
	if argc <= 7 {
		blk.Emit(bytecode.Call0+bytecode.Op(argc), 0, 0)
		return
	}
	blk.Emit(bytecode.CallN, int64(argc), 0)
}

func (c *Compiler) emitMetCall(blk *ir.Block, argc int) {
	if argc <= 7 {
		blk.Emit(bytecode.Met0+bytecode.Op(argc), 0, 0)
		return
	}
	blk.Emit(bytecode.MetN, int64(argc), 0)
}

func (c *Compiler) compileIf(n *parser.If, blk *ir.Block, f Flags) {
	cond := n.Cond
	condBlk := ir.NewBlock(blk)
	c.compileExpr(cond, condBlk, Flags{})
	blk.EmitChildBlock(condBlk)

	elseLabel := &ir.Instruction{Op: bytecode.LabelPseudo, Address: -1}
	endLabel := &ir.Instruction{Op: bytecode.LabelPseudo, Address: -1}
	branchOp := bytecode.Bf
	if n.Unless {
		branchOp = bytecode.Bt
	}
	blk.EmitBranch(branchOp, elseLabel, 0)

	thenBlk := ir.NewBlock(blk)
	c.compileExpr(n.Then, thenBlk, f)
	blk.EmitChildBlock(thenBlk)
	blk.EmitBranch(bytecode.Jmp, endLabel, 0)

	blk.AttachInstruction(elseLabel)
	elseBlk := ir.NewBlock(blk)
	if n.Else != nil {
		c.compileExpr(n.Else, elseBlk, f)
	} else if !f.NoResult {
		elseBlk.Emit(bytecode.LdNull, 0, 0)
	}
	blk.EmitChildBlock(elseBlk)
	blk.AttachInstruction(endLabel)
}

func (c *Compiler) compileWhile(n *parser.While, blk *ir.Block, f Flags) {
	top := &ir.Instruction{Op: bytecode.LabelPseudo, Address: -1}
	end := &ir.Instruction{Op: bytecode.LabelPseudo, Address: -1}
	blk.AttachInstruction(top)

	condBlk := ir.NewBlock(blk)
	c.compileExpr(n.Cond, condBlk, Flags{})
	blk.EmitChildBlock(condBlk)
	branchOp := bytecode.Bf
	if n.Until {
		branchOp = bytecode.Bt
	}
	blk.EmitBranch(branchOp, end, 0)

	bodyBlk := ir.NewBlock(blk)
	c.compileExpr(n.Body, bodyBlk, Flags{NoResult: true})
	blk.EmitChildBlock(bodyBlk)
	blk.EmitBranch(bytecode.Jmp, top, 0)
	blk.AttachInstruction(end)
	if !f.NoResult {
		blk.Emit(bytecode.LdNull, 0, 0)
	}
}

func (c *Compiler) compileFnLit(n *parser.FnLit, blk *ir.Block, f Flags) {
	fnIndex := int32(len(c.Tables.UserFunctions))
	info := &ir.UserFunctionInfo{NumArgs: len(n.Params)}
	c.Tables.AddFunction(info)

	outer := c.cur
	c.cur = newFuncScope(outer, fnIndex)
	for _, p := range n.Params {
		c.cur.declare(p.Name)
		info.VarNames = append(info.VarNames, p.Name)
	}
	info.MinArgs = len(n.Params)
	info.MaxArgs = len(n.Params)
	for _, p := range n.Params {
		if p.Rest {
			info.MaxArgs = -1
		}
	}

	bodyBlk := ir.NewBlock(nil)
	c.compileExpr(n.Body, bodyBlk, Flags{})
	bodyBlk.Emit(bytecode.Ret, 0, 0)
	bodyBlk.Flatten()
	bodyBlk.CalculateAddresses(0)
	bodyBlk.ResolveBranches()
	seg := &bytecode.Segment{}
	bodyBlk.AppendToByteCodeSegment(seg, false)
	info.Segment = seg
	info.NumLocals = len(c.cur.order)
	info.VarNames = append([]string(nil), c.cur.order...)
	info.MaxStack = bodyBlk.MaxStackDepth

	c.cur = outer
	blk.Emit(bytecode.NewFn, int64(fnIndex), 0)
	c.maybeDrop(blk, f)
}

// compileTry lowers `try body catch name handler` to a Try/EndTry bracket
// with the handler invoked on the stack-unwind path (spec §4.I "Bx: ...
// Try, EndTry").
func (c *Compiler) compileTry(n *parser.TryExpr, blk *ir.Block, f Flags) {
	handlerLabel := &ir.Instruction{Op: bytecode.LabelPseudo, Address: -1}
	endLabel := &ir.Instruction{Op: bytecode.LabelPseudo, Address: -1}
	blk.EmitBranch(bytecode.Try, handlerLabel, 0)
	c.compileExpr(n.Body, blk, f)
	blk.Emit(bytecode.EndTry, 0, 0)
	blk.EmitBranch(bytecode.Jmp, endLabel, 0)
	blk.AttachInstruction(handlerLabel)
	if n.CatchAs != "" {
		c.cur.declare(n.CatchAs)
		c.compileStore(n.CatchAs, blk, false)
	} else {
		blk.Emit(bytecode.Pop1, 0, 0)
	}
	if n.Handler != nil {
		c.compileExpr(n.Handler, blk, f)
	} else if !f.NoResult {
		blk.Emit(bytecode.LdNull, 0, 0)
	}
	blk.AttachInstruction(endLabel)
}

// compileTill implements the till-form compilation algorithm of spec §4.H,
// including the demotion law of §8 property 8: a flag is only given a real
// (heap) TillContinuation when it is read or written from a nested fn
// literal (tillFlagsCapturedByChild); otherwise every escape of that flag
// compiles straight to a Jmp and the till-form emits no NewTill/EndTill at
// all. The till body is itself an implicit loop (spec step 5: "LoopLabel:
// ... body ... Jmp LoopLabel") — the only way out is a flag escape.
func (c *Compiler) compileTill(n *parser.Till, blk *ir.Block, f Flags) {
	capturedByChild := tillFlagsCapturedByChild(n.Body, n.Whens, n.Flags)
	demote := true
	for _, flag := range n.Flags {
		if capturedByChild[flag] {
			demote = false
			break
		}
	}

	endLabel := &ir.Instruction{Op: bytecode.LabelPseudo, Address: -1}
	flagLabels := make(map[string]*ir.Instruction, len(n.Flags))
	for _, flag := range n.Flags {
		flagLabels[flag] = &ir.Instruction{Op: bytecode.LabelPseudo, Address: -1}
	}

	ctx := &tillFlagCtx{flags: n.Flags, labels: flagLabels, demote: demote}

	var info *ir.TillContinuationInfo
	if !demote {
		info = ir.NewTillContinuationInfo(n.Flags, c.cur.fnIndex)
		tillIdx := c.Tables.AddTillInfo(info)
		info.RealContinuationNeeded = true
		ctx.slots = make(map[string]int32, len(n.Flags))
		// Each flag gets its own TillContinuation instance (one NewTill
		// per flag, not one shared value): the operand packs the
		// till-info table index in the high word and this flag's branch
		// slot in the low word, the packed-64-bit convention
		// packXOperand uses for LdX/StX.
		for i, flag := range n.Flags {
			slot := c.cur.declare(flag)
			ctx.slots[flag] = slot
			blk.Emit(bytecode.NewTill, packXOperand(tillIdx, int32(i)), 0)
			blk.Emit(bytecode.StLoc, int64(slot), 0)
		}
	}

	c.tillStack = append(c.tillStack, ctx)

	loopLabel := &ir.Instruction{Op: bytecode.LabelPseudo, Address: -1}
	blk.AttachInstruction(loopLabel)
	bodyBlk := ir.NewBlock(blk)
	c.compileExpr(n.Body, bodyBlk, Flags{NoResult: true})
	blk.EmitChildBlock(bodyBlk)
	blk.EmitBranch(bytecode.Jmp, loopLabel, 0)

	hasWhen := make(map[string]bool, len(n.Whens))
	for _, w := range n.Whens {
		hasWhen[w.Flag] = true
		lbl := flagLabels[w.Flag]
		if !demote {
			info.BranchTargets[info.SlotFor(w.Flag)] = lbl
		}
		blk.AttachInstruction(lbl)
		whenBlk := ir.NewBlock(blk)
		c.compileExpr(w.Body, whenBlk, Flags{NoResult: f.NoResult})
		blk.EmitChildBlock(whenBlk)
		blk.EmitBranch(bytecode.Jmp, endLabel, 0)
	}
	// A flag with no matching when-clause escapes straight past the whole
	// till-form, carrying its argument as the till's result (spec §4.H:
	// "a bare flag call with no handler behaves like a labeled break").
	for _, flag := range n.Flags {
		if hasWhen[flag] {
			continue
		}
		blk.AttachInstruction(flagLabels[flag])
		if !demote {
			info.BranchTargets[info.SlotFor(flag)] = endLabel
		}
	}
	blk.AttachInstruction(endLabel)
	if !demote {
		blk.Emit(bytecode.EndTill, 0, 0)
		info.EndTarget = endLabel
		info.ClearFlags()
	}

	c.tillStack = c.tillStack[:len(c.tillStack)-1]
}

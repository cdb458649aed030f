package vm

import (
	"fmt"

	"smile/internal/bytecode"
	"smile/internal/dict"
	"smile/internal/ir"
	"smile/internal/symbol"
	"smile/internal/value"
)

// VM owns the tables a CompileGlobal run produced plus the global variable
// table every top-level def and builtin lives in (spec §4.J). One VM
// corresponds to one running program; closures point back at it so a
// NewFn instruction can hand a freshly built Closure the machinery it
// needs to execute its own body later.
type VM struct {
	Tables  *ir.CompiledTables
	Symbols *symbol.Table
	Globals dict.SymbolDict[value.Value]
}

func New(tables *ir.CompiledTables, symbols *symbol.Table) *VM {
	return &VM{Tables: tables, Symbols: symbols, Globals: dict.NewSymbolDict[value.Value]()}
}

// SetGlobal installs (or overwrites) a global binding; used both for
// top-level def/var assignment and for registering builtins.
func (vm *VM) SetGlobal(id symbol.ID, v value.Value) {
	if _, ok := vm.Globals.TryGet(id); ok {
		vm.Globals.Remove(id)
	}
	vm.Globals.Append(id, v)
}

func (vm *VM) GetGlobal(id symbol.ID) (value.Value, bool) {
	return vm.Globals.TryGet(id)
}

// Run executes the top-level segment produced by compiler.CompileGlobal:
// a Closure with no parent and no declared parameters, whose Locals slice
// is sized to the top level's own variable count (spec §4.K).
func Run(vm *VM, seg *bytecode.Segment, numLocals int) (value.Value, error) {
	result, _, err := RunCapture(vm, seg, numLocals)
	return result, err
}

// RunCapture is Run but also returns the top-level Closure afterwards, so
// a caller that knows the declaration order of the top level's variables
// (internal/module's include binder, in particular) can read named
// bindings back out of Locals once execution finishes.
func RunCapture(vm *VM, seg *bytecode.Segment, numLocals int) (value.Value, *Closure, error) {
	info := &ir.UserFunctionInfo{Name: "", NumArgs: 0, NumLocals: numLocals, Segment: seg}
	top := &Closure{Info: info, Parent: nil, Locals: make([]value.Value, numLocals), VM: vm}
	result, err := vm.execFrom(seg, top, 0)
	return result, top, err
}

// UndefinedGlobalError is raised by LdX/StX when up==-1 (global scope) and
// no binding has been installed for the symbol yet (spec §7
// "undefined_variable_error").
type UndefinedGlobalError struct{ Name string }

func (e *UndefinedGlobalError) Error() string { return "undefined variable " + e.Name }

// NotCallableError is raised when Call/Met dispatch a value that does not
// implement value.Caller.
type NotCallableError struct{ Kind value.Kind }

func (e *NotCallableError) Error() string { return "value of kind " + e.Kind.String() + " is not callable" }

// ArityError is raised when a call supplies fewer/more arguments than the
// callee's declared bounds allow.
type ArityError struct {
	Min, Max, Got int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("wrong number of arguments: expected %d..%d, got %d", e.Min, e.Max, e.Got)
}

// unpackX splits the packed 64-bit LdX/StX/StpX/NewTill operand back into
// its (up, slot) halves, the inverse of compiler.packXOperand. The
// arithmetic right shift preserves up's sign, so the up==-1 "global or
// this till-info's index" sentinel survives the round trip.
func unpackX(operand int64) (up, slot int32) {
	return int32(operand >> 32), int32(uint32(operand))
}

// tillSignal is the panic payload a TillContinuation.Escape sends to
// unwind the Go call stack back to the execFrom activation that owns the
// matching till-form (spec §4.H step 8, §4.J "Till escape").
type tillSignal struct {
	info   *ir.TillContinuationInfo
	branch int
	value  value.Value
}

// execFrom runs seg starting at pc in frame's context, returning the
// final value left on the stack (or Null if the segment falls off the
// end without a Ret, which never happens for well-formed compiler output
// but is handled defensively).
func (vm *VM) execFrom(seg *bytecode.Segment, frame *Closure, pc int32) (value.Value, error) {
	return vm.execFromSeeded(seg, frame, pc, nil)
}

// execFromSeeded is execFrom with an initial operand stack, used to resume
// a function body partway through after a till-escape whose branch target
// expects a value already waiting on the stack (spec §4.J "Till escape").
func (vm *VM) execFromSeeded(seg *bytecode.Segment, frame *Closure, pc int32, seed []value.Value) (result value.Value, err error) {
	stack := make([]value.Value, len(seed), len(seed)+16)
	copy(stack, seed)
	push := func(v value.Value) { stack = append(stack, v) }
	pop := func() value.Value {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	var tryStack []int32
	var ownInfos []*ir.TillContinuationInfo
	var ownConts []*value.TillContinuation

	// The till continuations this activation creates live only as long as
	// it does: once it returns, escaping through one of them fails.
	defer func() {
		for _, tc := range ownConts {
			tc.Alive = false
		}
	}()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		sig, ok := r.(*tillSignal)
		if !ok {
			panic(r)
		}
		for _, owned := range ownInfos {
			if owned == sig.info {
				target := sig.info.BranchTargets[sig.branch]
				seed := []value.Value(nil)
				if target == sig.info.EndTarget {
					seed = []value.Value{sig.value}
				}
				result, err = vm.execFromSeeded(seg, frame, target.Address, seed)
				return
			}
		}
		panic(r)
	}()

	code := seg.Code
	for int(pc) < len(code) {
		instrAddr := pc
		instr := code[pc]
		op := instr.Op
		operand := instr.Operand
		pc++

		switch op {
		case bytecode.Nop:
		case bytecode.Dup1:
			push(stack[len(stack)-1])
		case bytecode.Pop1:
			pop()

		case bytecode.LdNull:
			push(value.Null)
		case bytecode.LdBool:
			push(value.Bool(operand != 0))
		case bytecode.Ld64:
			push(value.Int64(operand))
		case bytecode.LdStr:
			push(value.NewString(seg.Strings[operand]))
		case bytecode.LdSym:
			push(value.Symbol(uint32(operand)))
		case bytecode.LdObj:
			lit := seg.Literals[operand]
			push(lit.(value.Value))
		case bytecode.LdFloat64:
			push(value.Float64(seg.Literals[operand].(float64)))
		case bytecode.LdReal64:
			push(value.Real64(seg.Literals[operand].(float64)))

		case bytecode.LdLoc:
			push(frame.Locals[operand])
		case bytecode.StLoc:
			frame.Locals[operand] = pop()
		case bytecode.StpLoc:
			v := stack[len(stack)-1]
			frame.Locals[operand] = v

		case bytecode.LdX:
			up, slot := unpackX(operand)
			if up < 0 {
				v, ok := vm.GetGlobal(symbol.ID(uint32(slot)))
				if !ok {
					return value.Null, &UndefinedGlobalError{Name: vm.Symbols.GetName(symbol.ID(uint32(slot)))}
				}
				push(v)
				break
			}
			push(ancestor(frame, up).Locals[slot])
		case bytecode.StX:
			up, slot := unpackX(operand)
			v := pop()
			if up < 0 {
				vm.SetGlobal(symbol.ID(uint32(slot)), v)
				break
			}
			ancestor(frame, up).Locals[slot] = v
		case bytecode.StpX:
			up, slot := unpackX(operand)
			v := stack[len(stack)-1]
			if up < 0 {
				vm.SetGlobal(symbol.ID(uint32(slot)), v)
				break
			}
			ancestor(frame, up).Locals[slot] = v

		case bytecode.LdProp:
			recv := pop()
			name := vm.Symbols.GetName(symbol.ID(uint32(operand)))
			v, _ := recv.GetProperty(name)
			push(v)
		case bytecode.StProp:
			v := pop()
			recv := pop()
			name := vm.Symbols.GetName(symbol.ID(uint32(operand)))
			if recv.Obj == nil {
				return value.Null, &NotCallableError{Kind: recv.Kind}
			}
			if e := recv.Obj.SetProperty(name, v); e != nil {
				return value.Null, e
			}
		case bytecode.LdMember:
			key := pop()
			recv := pop()
			v, _ := recv.GetProperty(key.ToString())
			push(v)
		case bytecode.StMember:
			v := pop()
			key := pop()
			recv := pop()
			if recv.Obj == nil {
				return value.Null, &NotCallableError{Kind: recv.Kind}
			}
			if e := recv.Obj.SetProperty(key.ToString(), v); e != nil {
				return value.Null, e
			}

		case bytecode.Cons:
			d := pop()
			a := pop()
			push(value.Cons(a, d))
		case bytecode.Car:
			v := pop()
			if l, ok := v.Obj.(*value.List); ok {
				push(l.A)
			} else {
				push(value.Null)
			}
		case bytecode.Cdr:
			v := pop()
			if l, ok := v.Obj.(*value.List); ok {
				push(l.D)
			} else {
				push(value.Null)
			}
		case bytecode.NewPair:
			r := pop()
			l := pop()
			push(value.NewPair(l, r))
		case bytecode.Left:
			v := pop()
			if p, ok := v.Obj.(*value.Pair); ok {
				push(p.Left)
			} else {
				push(value.Null)
			}
		case bytecode.Right:
			v := pop()
			if p, ok := v.Obj.(*value.Pair); ok {
				push(p.Right)
			} else {
				push(value.Null)
			}
		case bytecode.Not:
			v := pop()
			push(value.Bool(!v.ToBool()))
		case bytecode.TypeOf:
			v := pop()
			push(value.NewString(v.Kind.String()))
		case bytecode.NewObj:
			n := int(operand)
			if n == 0 {
				base := pop()
				push(value.Value{Kind: value.KUserObject, Obj: value.NewUserObject("", base)})
				break
			}
			splices := make([]value.Value, n)
			for i := n - 1; i >= 0; i-- {
				splices[i] = pop()
			}
			tree := pop()
			push(rebuildQuoteTree(tree, splices))

		case bytecode.NewFn:
			info := vm.Tables.UserFunctions[operand]
			push(value.NewFunction(&Closure{Info: info, Parent: frame, VM: vm}))

		case bytecode.Jmp:
			pc = instrAddr + int32(operand)
		case bytecode.Bt:
			if pop().ToBool() {
				pc = instrAddr + int32(operand)
			}
		case bytecode.Bf:
			if !pop().ToBool() {
				pc = instrAddr + int32(operand)
			}

		case bytecode.Call0, bytecode.Call1, bytecode.Call2, bytecode.Call3,
			bytecode.Call4, bytecode.Call5, bytecode.Call6, bytecode.Call7:
			argc := int(op - bytecode.Call0)
			args := popN(&stack, argc)
			callee := pop()
			v, e := vm.dispatch(callee, args)
			if e != nil {
				if len(tryStack) > 0 {
					pc = vm.catch(&tryStack, &stack, e)
					break
				}
				return value.Null, e
			}
			push(v)
		case bytecode.CallN:
			argc := int(operand)
			args := popN(&stack, argc)
			callee := pop()
			v, e := vm.dispatch(callee, args)
			if e != nil {
				if len(tryStack) > 0 {
					pc = vm.catch(&tryStack, &stack, e)
					break
				}
				return value.Null, e
			}
			push(v)

		case bytecode.Met0, bytecode.Met1, bytecode.Met2, bytecode.Met3,
			bytecode.Met4, bytecode.Met5, bytecode.Met6, bytecode.Met7:
			argc := int(op - bytecode.Met0)
			sym := pop()
			args := popN(&stack, argc)
			recv := pop()
			v, e := vm.dispatchMethod(recv, symbol.ID(sym.AsSymbol()), args)
			if e != nil {
				if len(tryStack) > 0 {
					pc = vm.catch(&tryStack, &stack, e)
					break
				}
				return value.Null, e
			}
			push(v)
		case bytecode.MetN:
			argc := int(operand)
			sym := pop()
			args := popN(&stack, argc)
			recv := pop()
			v, e := vm.dispatchMethod(recv, symbol.ID(sym.AsSymbol()), args)
			if e != nil {
				if len(tryStack) > 0 {
					pc = vm.catch(&tryStack, &stack, e)
					break
				}
				return value.Null, e
			}
			push(v)

		// Tail-call variants: spec's compiler emits these in tail position,
		// but this VM does not reuse the current Go stack frame for them
		// (the recursive-descent exec model has no cheap way to do that
		// without trampolining every call site) — they execute with plain
		// Call/Met semantics instead. A TODO for a future pass, not a
		// correctness gap: Smile programs never observe the difference,
		// only deep non-tail-safe recursion's stack usage does.
		case bytecode.TCall0, bytecode.TCall1, bytecode.TCall2, bytecode.TCall3,
			bytecode.TCall4, bytecode.TCall5, bytecode.TCall6, bytecode.TCall7:
			argc := int(op - bytecode.TCall0)
			args := popN(&stack, argc)
			callee := pop()
			v, e := vm.dispatch(callee, args)
			if e != nil {
				if len(tryStack) > 0 {
					pc = vm.catch(&tryStack, &stack, e)
					break
				}
				return value.Null, e
			}
			return v, nil
		case bytecode.TCallN:
			argc := int(operand)
			args := popN(&stack, argc)
			callee := pop()
			v, e := vm.dispatch(callee, args)
			if e != nil {
				if len(tryStack) > 0 {
					pc = vm.catch(&tryStack, &stack, e)
					break
				}
				return value.Null, e
			}
			return v, nil
		case bytecode.TMet0, bytecode.TMet1, bytecode.TMet2, bytecode.TMet3,
			bytecode.TMet4, bytecode.TMet5, bytecode.TMet6, bytecode.TMet7:
			argc := int(op - bytecode.TMet0)
			sym := pop()
			args := popN(&stack, argc)
			recv := pop()
			v, e := vm.dispatchMethod(recv, symbol.ID(sym.AsSymbol()), args)
			if e != nil {
				if len(tryStack) > 0 {
					pc = vm.catch(&tryStack, &stack, e)
					break
				}
				return value.Null, e
			}
			return v, nil
		case bytecode.TMetN:
			argc := int(operand)
			sym := pop()
			args := popN(&stack, argc)
			recv := pop()
			v, e := vm.dispatchMethod(recv, symbol.ID(sym.AsSymbol()), args)
			if e != nil {
				if len(tryStack) > 0 {
					pc = vm.catch(&tryStack, &stack, e)
					break
				}
				return value.Null, e
			}
			return v, nil

		case bytecode.Ret:
			if len(stack) == 0 {
				return value.Null, nil
			}
			return pop(), nil

		case bytecode.NewTill:
			up, branch := unpackX(operand)
			info := vm.Tables.TillInfos[up]
			seen := false
			for _, o := range ownInfos {
				if o == info {
					seen = true
					break
				}
			}
			if !seen {
				ownInfos = append(ownInfos, info)
			}
			tc := value.NewTillContinuation("till", int(branch), func(branchIndex int, result value.Value) error {
				panic(&tillSignal{info: info, branch: branchIndex, value: result})
			})
			ownConts = append(ownConts, tc.Obj.(*value.TillContinuation))
			push(tc)
		case bytecode.EndTill:
			pop()

		case bytecode.Try:
			tryStack = append(tryStack, instrAddr+int32(operand))
		case bytecode.EndTry:
			if len(tryStack) > 0 {
				tryStack = tryStack[:len(tryStack)-1]
			}

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod,
			bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe, bytecode.OpEq, bytecode.OpNe,
			bytecode.OpAnd, bytecode.OpOr:
			b := pop()
			a := pop()
			v, e := binaryOp(op, a, b)
			if e != nil {
				if len(tryStack) > 0 {
					pc = vm.catch(&tryStack, &stack, e)
					break
				}
				return value.Null, e
			}
			push(v)
		case bytecode.OpNeg:
			a := pop()
			v, e := unaryNeg(a)
			if e != nil {
				if len(tryStack) > 0 {
					pc = vm.catch(&tryStack, &stack, e)
					break
				}
				return value.Null, e
			}
			push(v)

		default:
			return value.Null, fmt.Errorf("unimplemented opcode %s", op.String())
		}
	}
	if len(stack) > 0 {
		return stack[len(stack)-1], nil
	}
	return value.Null, nil
}

// catch pops the innermost handler PC off tryStack, pushes the error
// value for the handler to consume (or discard via Pop1, spec §4.I's
// compileTry leaves a Pop1 there when there's no catch binding), and
// returns the PC execution resumes at.
func (vm *VM) catch(tryStack *[]int32, stack *[]value.Value, e error) int32 {
	n := len(*tryStack)
	pc := (*tryStack)[n-1]
	*tryStack = (*tryStack)[:n-1]
	*stack = append(*stack, value.NewString(e.Error()))
	return pc
}

func ancestor(frame *Closure, up int32) *Closure {
	f := frame
	for ; up > 0; up-- {
		f = f.Parent
	}
	return f
}

func popN(stack *[]value.Value, n int) []value.Value {
	s := *stack
	args := append([]value.Value(nil), s[len(s)-n:]...)
	*stack = s[:len(s)-n]
	return args
}

// dispatch invokes callee as a plain function call, enforcing its
// declared arity (spec §4.J "Arity checking").
func (vm *VM) dispatch(callee value.Value, args []value.Value) (value.Value, error) {
	caller, ok := callee.Obj.(value.Caller)
	if !ok {
		return value.Null, &NotCallableError{Kind: callee.Kind}
	}
	min, max := caller.Arity()
	if len(args) < min || (max >= 0 && len(args) > max) {
		return value.Null, &ArityError{Min: min, Max: max, Got: len(args)}
	}
	return caller.Call(args)
}

// dispatchMethod looks up sym as a property of recv and calls it with args
// alone; recv is used only for the lookup and is not passed to the method.
// Smile methods are plain KFunction values stored as object properties,
// not a distinct dispatch kind, so looking one up and calling it is the
// entire protocol.
func (vm *VM) dispatchMethod(recv value.Value, sym symbol.ID, args []value.Value) (value.Value, error) {
	name := vm.Symbols.GetName(sym)
	method, ok := recv.GetProperty(name)
	if !ok {
		return value.Null, &NotCallableError{Kind: recv.Kind}
	}
	return vm.dispatch(method, args)
}

// rebuildQuoteTree clones tree, substituting each splice placeholder
// pair (built by the parser as NewPair(NewString("splice"), Int64(idx)))
// with splices[idx] (spec §4.H scenario E, "quote with runtime splices").
func rebuildQuoteTree(tree value.Value, splices []value.Value) value.Value {
	if p, ok := tree.Obj.(*value.Pair); ok {
		if tag, ok := p.Left.Obj.(*value.Str); ok && tag.Text == "splice" {
			idx := int(p.Right.AsInt64())
			if idx >= 0 && idx < len(splices) {
				return splices[idx]
			}
		}
		return value.NewPair(rebuildQuoteTree(p.Left, splices), rebuildQuoteTree(p.Right, splices))
	}
	if l, ok := tree.Obj.(*value.List); ok {
		return value.Cons(rebuildQuoteTree(l.A, splices), rebuildQuoteTree(l.D, splices))
	}
	return tree
}

func unaryNeg(a value.Value) (value.Value, error) {
	switch a.Kind {
	case value.KInt64, value.KInt32, value.KInt16, value.KByte:
		return value.Int64(-a.AsInt64()), nil
	case value.KFloat64:
		return value.Float64(-a.AsFloat64()), nil
	case value.KReal64:
		return value.Real64(-a.AsFloat64()), nil
	}
	return value.Null, &TypeError{Op: "-", Kind: a.Kind}
}

// TypeError is raised by an operator opcode when its operand kind does
// not support the operation (spec §7 "type_error").
type TypeError struct {
	Op   string
	Kind value.Kind
}

func (e *TypeError) Error() string { return "operator " + e.Op + " not defined for " + e.Kind.String() }

func isNumeric(v value.Value) bool {
	switch v.Kind {
	case value.KInt64, value.KInt32, value.KInt16, value.KByte, value.KFloat64, value.KReal64, value.KChar, value.KUni:
		return true
	}
	return false
}

func asFloat(v value.Value) float64 {
	switch v.Kind {
	case value.KFloat64, value.KReal64:
		return v.AsFloat64()
	default:
		return float64(v.AsInt64())
	}
}

func isFloaty(v value.Value) bool { return v.Kind == value.KFloat64 || v.Kind == value.KReal64 }

func binaryOp(op bytecode.Op, a, b value.Value) (value.Value, error) {
	switch op {
	case bytecode.OpEq:
		return value.Bool(a.DeepEqual(b)), nil
	case bytecode.OpNe:
		return value.Bool(!a.DeepEqual(b)), nil
	case bytecode.OpAnd:
		return value.Bool(a.ToBool() && b.ToBool()), nil
	case bytecode.OpOr:
		return value.Bool(a.ToBool() || b.ToBool()), nil
	}

	if op == bytecode.OpAdd && (a.Kind == value.KString || b.Kind == value.KString) {
		return value.NewString(a.ToString() + b.ToString()), nil
	}
	if op == bytecode.OpAdd && (a.Kind == value.KList || a.Kind == value.KNull) {
		return appendList(a, b), nil
	}

	if !isNumeric(a) || !isNumeric(b) {
		return value.Null, &TypeError{Op: op.String(), Kind: a.Kind}
	}

	if isFloaty(a) || isFloaty(b) {
		x, y := asFloat(a), asFloat(b)
		box := value.Float64
		if a.Kind == value.KReal64 || b.Kind == value.KReal64 {
			box = value.Real64
		}
		switch op {
		case bytecode.OpAdd:
			return box(x + y), nil
		case bytecode.OpSub:
			return box(x - y), nil
		case bytecode.OpMul:
			return box(x * y), nil
		case bytecode.OpDiv:
			if y == 0 {
				return value.Null, &DivideByZeroError{}
			}
			return box(x / y), nil
		case bytecode.OpMod:
			if y == 0 {
				return value.Null, &DivideByZeroError{}
			}
			return box(fmodLike(x, y)), nil
		case bytecode.OpLt:
			return value.Bool(x < y), nil
		case bytecode.OpLe:
			return value.Bool(x <= y), nil
		case bytecode.OpGt:
			return value.Bool(x > y), nil
		case bytecode.OpGe:
			return value.Bool(x >= y), nil
		}
	}

	x, y := a.AsInt64(), b.AsInt64()
	switch op {
	case bytecode.OpAdd:
		return value.Int64(x + y), nil
	case bytecode.OpSub:
		return value.Int64(x - y), nil
	case bytecode.OpMul:
		return value.Int64(x * y), nil
	case bytecode.OpDiv:
		if y == 0 {
			return value.Null, &DivideByZeroError{}
		}
		return value.Int64(x / y), nil
	case bytecode.OpMod:
		if y == 0 {
			return value.Null, &DivideByZeroError{}
		}
		return value.Int64(x % y), nil
	case bytecode.OpLt:
		return value.Bool(x < y), nil
	case bytecode.OpLe:
		return value.Bool(x <= y), nil
	case bytecode.OpGt:
		return value.Bool(x > y), nil
	case bytecode.OpGe:
		return value.Bool(x >= y), nil
	}
	return value.Null, &TypeError{Op: op.String(), Kind: a.Kind}
}

func fmodLike(x, y float64) float64 {
	n := int64(x / y)
	return x - float64(n)*y
}

func appendList(a, b value.Value) value.Value {
	items := value.ListToSlice(a)
	items = append(items, value.ListToSlice(b)...)
	return value.ListFromSlice(items)
}

// DivideByZeroError is raised by OpDiv/OpMod when the right operand is
// zero (spec §7 "divide_by_zero_error").
type DivideByZeroError struct{}

func (e *DivideByZeroError) Error() string { return "division by zero" }

package vm

import (
	"testing"

	"smile/internal/bytecode"
	"smile/internal/ir"
	"smile/internal/symbol"
	"smile/internal/value"
)

// newConstClosure builds a trivial zero-argument closure whose body
// pushes a single Int64 literal and returns it, for use as a callee in
// the tail-call tests below.
func newConstClosure(m *VM, n int64) *Closure {
	seg := &bytecode.Segment{
		Code: []bytecode.Instr{
			{Op: bytecode.Ld64, Operand: n},
			{Op: bytecode.Ret},
		},
	}
	info := &ir.UserFunctionInfo{NumArgs: 0, NumLocals: 0, MinArgs: 0, MaxArgs: 0, Segment: seg}
	return &Closure{Info: info, VM: m}
}

// TestTailCallEquivalence is spec testable property 9: a TCallN at a
// return position must be observationally equal to CallN followed by
// Ret — same result value — even though this VM (see the Call/TCall
// dispatch comment in vm.go) executes both through the same vm.dispatch
// helper rather than trampolining the tail case onto a reused Go frame.
func TestTailCallEquivalence(t *testing.T) {
	symbols := symbol.New()
	m := New(ir.NewCompiledTables(), symbols)
	callee := newConstClosure(m, 42)

	callSeg := &bytecode.Segment{
		Code: []bytecode.Instr{
			{Op: bytecode.LdLoc, Operand: 0},
			{Op: bytecode.Call0},
			{Op: bytecode.Ret},
		},
	}
	tailSeg := &bytecode.Segment{
		Code: []bytecode.Instr{
			{Op: bytecode.LdLoc, Operand: 0},
			{Op: bytecode.TCall0},
		},
	}

	calleeVal := value.NewFunction(callee)

	callFrame := &Closure{Info: &ir.UserFunctionInfo{NumLocals: 1}, Locals: []value.Value{calleeVal}, VM: m}
	callResult, err := m.execFrom(callSeg, callFrame, 0)
	if err != nil {
		t.Fatalf("Call0;Ret path: unexpected error: %v", err)
	}

	tailFrame := &Closure{Info: &ir.UserFunctionInfo{NumLocals: 1}, Locals: []value.Value{calleeVal}, VM: m}
	tailResult, err := m.execFrom(tailSeg, tailFrame, 0)
	if err != nil {
		t.Fatalf("TCall0 path: unexpected error: %v", err)
	}

	if callResult.Kind != value.KInt64 || callResult.AsInt64() != 42 {
		t.Fatalf("Call0;Ret result = %v; want Int64 42", callResult)
	}
	if tailResult.Kind != callResult.Kind || tailResult.AsInt64() != callResult.AsInt64() {
		t.Fatalf("TCall0 result = %v; want it to equal Call0;Ret result %v", tailResult, callResult)
	}
}

// TestTailCallEquivalence_Arity checks that TCallN still enforces the
// callee's declared arity through the same vm.dispatch path Call0 uses,
// rather than skipping the check because it's in tail position.
func TestTailCallEquivalence_Arity(t *testing.T) {
	symbols := symbol.New()
	m := New(ir.NewCompiledTables(), symbols)

	seg := &bytecode.Segment{
		Code: []bytecode.Instr{
			{Op: bytecode.Ld64, Operand: 1},
			{Op: bytecode.Ret},
		},
	}
	info := &ir.UserFunctionInfo{NumArgs: 0, NumLocals: 0, MinArgs: 0, MaxArgs: 0, Segment: seg}
	callee := &Closure{Info: info, VM: m}
	calleeVal := value.NewFunction(callee)

	tailSeg := &bytecode.Segment{
		Code: []bytecode.Instr{
			{Op: bytecode.LdLoc, Operand: 0},
			{Op: bytecode.LdNull},
			{Op: bytecode.TCall1},
		},
	}
	frame := &Closure{Info: &ir.UserFunctionInfo{NumLocals: 1}, Locals: []value.Value{calleeVal}, VM: m}
	_, err := m.execFrom(tailSeg, frame, 0)
	if err == nil {
		t.Fatal("TCall1 against a zero-argument closure: want ArityError, got nil")
	}
	if _, ok := err.(*ArityError); !ok {
		t.Fatalf("err = %T; want *ArityError", err)
	}
}

package ir

import (
	"testing"

	"smile/internal/bytecode"
)

// TestStackDeltaBookkeeping is spec testable property 6: a Block's
// FinalStackDelta/MaxStackDepth track the running net stack effect of
// every attached instruction, including the variadic call/dup/pop forms
// that need their operand to compute StackDelta.
func TestStackDeltaBookkeeping(t *testing.T) {
	b := NewBlock(nil)
	b.Emit(bytecode.LdNull, 0, 0)  // +1 -> depth 1
	b.Emit(bytecode.LdNull, 0, 0)  // +1 -> depth 2
	b.Emit(bytecode.OpAdd, 0, 0)   // -1 -> depth 1
	b.Emit(bytecode.Ret, 0, 0)     // 0  -> depth 1

	if b.FinalStackDelta != 1 {
		t.Fatalf("FinalStackDelta = %d; want 1", b.FinalStackDelta)
	}
	if b.MaxStackDepth != 2 {
		t.Fatalf("MaxStackDepth = %d; want 2", b.MaxStackDepth)
	}
}

// TestStackDeltaBookkeeping_Variadic checks the DupN/PopN forms,
// whose StackDelta depends on the instruction's own Operand (the variadic
// argc) rather than being a fixed per-opcode constant.
func TestStackDeltaBookkeeping_Variadic(t *testing.T) {
	b := NewBlock(nil)
	b.Emit(bytecode.LdNull, 0, 0)   // +1 -> 1
	b.Emit(bytecode.DupN, 3, 0)     // +3 -> 4
	b.Emit(bytecode.PopN, 3, 0)     // -3 -> 1

	if b.FinalStackDelta != 1 {
		t.Fatalf("FinalStackDelta = %d; want 1", b.FinalStackDelta)
	}
	if b.MaxStackDepth != 4 {
		t.Fatalf("MaxStackDepth = %d; want 4", b.MaxStackDepth)
	}
}

// TestStackDeltaBookkeeping_ChildBlock checks that EmitChildBlock folds a
// nested block's own delta/depth into its parent's running totals
// (spec §4.G AppendChild).
func TestStackDeltaBookkeeping_ChildBlock(t *testing.T) {
	child := NewBlock(nil)
	child.Emit(bytecode.LdNull, 0, 0)
	child.Emit(bytecode.LdNull, 0, 0)

	parent := NewBlock(nil)
	parent.Emit(bytecode.LdNull, 0, 0)
	parent.EmitChildBlock(child)
	parent.Emit(bytecode.OpAdd, 0, 0)

	if parent.FinalStackDelta != 2 {
		t.Fatalf("FinalStackDelta = %d; want 2", parent.FinalStackDelta)
	}
	if parent.MaxStackDepth != 3 {
		t.Fatalf("MaxStackDepth = %d; want 3", parent.MaxStackDepth)
	}
}

// TestBranchResolution is spec testable property 7: CalculateAddresses
// assigns a linear address to every non-pseudo instruction, and
// ResolveBranches turns a forward Jmp's symbolic Target into the correct
// signed relative offset.
func TestBranchResolution(t *testing.T) {
	b := NewBlock(nil)
	b.Emit(bytecode.LdNull, 0, 0)
	jmp := b.EmitBranch(bytecode.Jmp, nil, 0)
	b.Emit(bytecode.LdNull, 0, 0) // skipped if the branch is taken
	target := b.Emit(bytecode.Ret, 0, 0)
	jmp.Target = target

	b.Flatten()
	end := b.CalculateAddresses(0)
	if end != 4 {
		t.Fatalf("CalculateAddresses returned %d; want 4 instructions", end)
	}
	if err := b.ResolveBranches(); err != nil {
		t.Fatalf("ResolveBranches: %v", err)
	}

	want := int64(target.Address - jmp.Address)
	if jmp.Operand != want {
		t.Fatalf("jmp.Operand = %d; want %d (target %d - jmp %d)", jmp.Operand, want, target.Address, jmp.Address)
	}
}

// TestBranchResolution_Unresolved checks that ResolveBranches reports the
// fatal UnresolvedBranchError (spec §7 "Fatal") rather than silently
// emitting garbage when a branch's target never had CalculateAddresses
// run over it.
func TestBranchResolution_Unresolved(t *testing.T) {
	b := NewBlock(nil)
	target := &Instruction{Op: bytecode.Ret, Address: -1}
	b.EmitBranch(bytecode.Jmp, target, 0)

	b.CalculateAddresses(0)
	err := b.ResolveBranches()
	if err == nil {
		t.Fatal("ResolveBranches returned nil error; want UnresolvedBranchError")
	}
	if _, ok := err.(*UnresolvedBranchError); !ok {
		t.Fatalf("err = %T; want *UnresolvedBranchError", err)
	}
}

// TestAppendToByteCodeSegment checks that flattening drops pseudo-ops
// (LabelPseudo in particular never reaches a Segment) and preserves
// operand/order for the rest.
func TestAppendToByteCodeSegment(t *testing.T) {
	b := NewBlock(nil)
	b.Emit(bytecode.LdNull, 0, 0)
	b.Emit(bytecode.LabelPseudo, 0, 0)
	b.Emit(bytecode.Ret, 0, 0)

	seg := &bytecode.Segment{}
	b.AppendToByteCodeSegment(seg, false)

	if len(seg.Code) != 2 {
		t.Fatalf("len(seg.Code) = %d; want 2 (LabelPseudo dropped)", len(seg.Code))
	}
	if seg.Code[0].Op != bytecode.LdNull || seg.Code[1].Op != bytecode.Ret {
		t.Fatalf("seg.Code = %v; want [LdNull Ret]", seg.Code)
	}
}

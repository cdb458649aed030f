// Package ir implements the compiler's intermediate representation: basic
// blocks of doubly-linked instructions carrying symbolic branch targets
// (pointers to other instructions, not numeric offsets), and the framework
// that flattens a tree of blocks into a linear bytecode.Segment (spec §3.5,
// §4.G).
package ir

import "smile/internal/bytecode"

// BlockFlags tracks error propagation through nested block construction.
type BlockFlags uint8

const FlagError BlockFlags = 1 << 0

// Instruction is one IR instruction: an opcode, an immediate operand, an
// optional symbolic branch target, and (for the Block pseudo-op) a pointer
// to a nested child Block. Doubly linked into its owning Block.
type Instruction struct {
	Op        bytecode.Op
	Operand   int64
	Target    *Instruction // branch target, resolved to a relative offset by ResolveBranches
	Child     *Block       // non-nil only for the Block pseudo-op
	SourceLoc int32

	Address int32 // filled in by CalculateAddresses; -1 until then

	Prev, Next *Instruction
	owner      *Block
}

// Block is a doubly linked list of instructions, plus the bookkeeping the
// compiler needs to verify stack balance and propagate errors cleanly.
type Block struct {
	Head, Tail      *Instruction
	FinalStackDelta int
	MaxStackDepth   int
	Flags           BlockFlags
	Parent          *Block
	len             int
}

func NewBlock(parent *Block) *Block {
	return &Block{Parent: parent}
}

// AttachInstruction appends instr to the end of the block, updating the
// running stack-delta/max-depth bookkeeping (spec testable property 6). It
// does not touch Flags: a child's ERROR flag reaches its parent through
// EmitChildBlock and Combine, and the compiler does not consult the flag,
// so emission continues past a flagged block.
func (b *Block) AttachInstruction(instr *Instruction) *Instruction {
	instr.owner = b
	instr.Prev = b.Tail
	instr.Next = nil
	if b.Tail != nil {
		b.Tail.Next = instr
	} else {
		b.Head = instr
	}
	b.Tail = instr
	b.len++

	argc := 0
	if instr.Op == bytecode.DupN || instr.Op == bytecode.PopN || isVariadicCall(instr.Op) {
		argc = int(instr.Operand)
	}
	b.FinalStackDelta += instr.Op.StackDelta(argc)
	if b.FinalStackDelta > b.MaxStackDepth {
		b.MaxStackDepth = b.FinalStackDelta
	}
	return instr
}

func isVariadicCall(op bytecode.Op) bool {
	switch op {
	case bytecode.CallN, bytecode.MetN, bytecode.TCallN, bytecode.TMetN:
		return true
	}
	return false
}

// DetachInstruction removes instr from its owning block's list.
func (b *Block) DetachInstruction(instr *Instruction) {
	if instr.Prev != nil {
		instr.Prev.Next = instr.Next
	} else if b.Head == instr {
		b.Head = instr.Next
	}
	if instr.Next != nil {
		instr.Next.Prev = instr.Prev
	} else if b.Tail == instr {
		b.Tail = instr.Prev
	}
	instr.Prev, instr.Next = nil, nil
	b.len--
}

// Emit is a convenience wrapper that builds and attaches a plain
// instruction.
func (b *Block) Emit(op bytecode.Op, operand int64, srcLoc int32) *Instruction {
	return b.AttachInstruction(&Instruction{Op: op, Operand: operand, SourceLoc: srcLoc, Address: -1})
}

// EmitBranch emits a branch instruction whose Target is resolved later
// (often before the target instruction itself has been emitted — that's
// exactly why targets are pointers, not offsets, during compilation).
func (b *Block) EmitBranch(op bytecode.Op, target *Instruction, srcLoc int32) *Instruction {
	return b.AttachInstruction(&Instruction{Op: op, Target: target, SourceLoc: srcLoc, Address: -1})
}

// EmitChildBlock emits a Block pseudo-op wrapping child, nesting it inside
// b. It folds child's stack delta and peak depth into b's totals and
// propagates child's ERROR flag up to b (one level per call).
func (b *Block) EmitChildBlock(child *Block) *Instruction {
	child.Parent = b
	instr := b.AttachInstruction(&Instruction{Op: bytecode.BlockPseudo, Child: child, Address: -1})
	if b.FinalStackDelta+child.MaxStackDepth > b.MaxStackDepth {
		b.MaxStackDepth = b.FinalStackDelta + child.MaxStackDepth
	}
	b.FinalStackDelta += child.FinalStackDelta
	if b.FinalStackDelta > b.MaxStackDepth {
		b.MaxStackDepth = b.FinalStackDelta
	}
	if child.Flags&FlagError != 0 {
		b.Flags |= FlagError
	}
	return instr
}

// Combine splices b onto the end of a and returns a. a's bookkeeping
// absorbs b's.
func Combine(a, b *Block) *Block {
	if a.Head == nil {
		a.Head = b.Head
	} else {
		a.Tail.Next = b.Head
		if b.Head != nil {
			b.Head.Prev = a.Tail
		}
	}
	if b.Tail != nil {
		a.Tail = b.Tail
	}
	for i := b.Head; i != nil; i = i.Next {
		i.owner = a
	}
	a.FinalStackDelta += b.FinalStackDelta
	if a.FinalStackDelta > a.MaxStackDepth {
		a.MaxStackDepth = a.FinalStackDelta
	}
	a.Flags |= b.Flags
	a.len += b.len
	return a
}

// Flatten recursively splices every Block-pseudo-op child into its parent
// in place, so AppendToByteCodeSegment never has to recurse.
func (b *Block) Flatten() {
	for i := b.Head; i != nil; {
		next := i.Next
		if i.Op == bytecode.BlockPseudo && i.Child != nil {
			i.Child.Flatten()
			spliceIn(b, i, i.Child)
		}
		i = next
	}
}

// spliceIn replaces the Block pseudo-op at at with child's instruction list.
func spliceIn(b *Block, at *Instruction, child *Block) {
	if child.Head == nil {
		b.DetachInstruction(at)
		return
	}
	for i := child.Head; i != nil; i = i.Next {
		i.owner = b
	}
	if at.Prev != nil {
		at.Prev.Next = child.Head
	} else {
		b.Head = child.Head
	}
	child.Head.Prev = at.Prev
	if at.Next != nil {
		at.Next.Prev = child.Tail
	} else {
		b.Tail = child.Tail
	}
	child.Tail.Next = at.Next
}

// CalculateAddresses assigns a linear instruction address to every
// non-pseudo instruction starting at start, returning the address just
// past the block (spec testable property 7). Call after Flatten.
func (b *Block) CalculateAddresses(start int32) int32 {
	addr := start
	for i := b.Head; i != nil; i = i.Next {
		if i.Op.IsPseudo() {
			i.Address = addr
			continue
		}
		i.Address = addr
		addr++
	}
	return addr
}

// ResolveBranches replaces every branch instruction's symbolic Target with
// a signed relative offset (Target.Address - instruction.Address), stored
// back into Operand. Call after CalculateAddresses.
func (b *Block) ResolveBranches() error {
	for i := b.Head; i != nil; i = i.Next {
		if i.Target != nil {
			if i.Target.Address < 0 {
				return &UnresolvedBranchError{Op: i.Op}
			}
			i.Operand = int64(i.Target.Address - i.Address)
		}
	}
	return nil
}

// UnresolvedBranchError is a fatal compiler-IR invariant violation: a
// branch instruction survived to ResolveBranches with a target that was
// never assigned an address (spec §7 "Fatal").
type UnresolvedBranchError struct{ Op bytecode.Op }

func (e *UnresolvedBranchError) Error() string {
	return "unresolved branch target for " + e.Op.String()
}

// AppendToByteCodeSegment emits the block's final linear form into seg.
// When includePseudoOps is false (the normal case), every Fx pseudo-op is
// dropped; Label is dropped even when includePseudoOps is true.
func (b *Block) AppendToByteCodeSegment(seg *bytecode.Segment, includePseudoOps bool) {
	for i := b.Head; i != nil; i = i.Next {
		if i.Op.IsPseudo() {
			if i.Op == bytecode.LabelPseudo {
				continue
			}
			if !includePseudoOps {
				continue
			}
		}
		seg.Code = append(seg.Code, bytecode.Instr{Op: i.Op, Operand: i.Operand, SourceLoc: i.SourceLoc})
	}
}

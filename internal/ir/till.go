package ir

// TillContinuationInfo is allocated once per till-form. It records one
// branch-target slot per flag, a back-pointer to the owning function, and
// the realContinuationNeeded bit the compiler sets once it discovers a
// flag is read or written from a nested closure (spec §3.5, §4.H step 8).
type TillContinuationInfo struct {
	Flags                []string // original flag symbols; cleared after resolution
	BranchTargets        []*Instruction
	OwningFunctionIndex  int // index into CompiledTables.UserFunctions
	RealContinuationNeeded bool
	// EndTarget is the instruction just past the till-form. A flag with no
	// matching when-clause has its BranchTargets entry point here directly
	// (spec §4.H: escaping with no handler behaves like a labeled break),
	// which the VM distinguishes from an explicit handler jump by identity
	// comparison so it knows to seed the escape value as the till's result.
	EndTarget *Instruction
}

// NewTillContinuationInfo allocates the K branch-target slots for a
// till-form with the given flags.
func NewTillContinuationInfo(flags []string, owningFunctionIndex int) *TillContinuationInfo {
	return &TillContinuationInfo{
		Flags:               append([]string(nil), flags...),
		BranchTargets:       make([]*Instruction, len(flags)),
		OwningFunctionIndex: owningFunctionIndex,
	}
}

// SlotFor returns the branch-target slot index for flag, or -1.
func (t *TillContinuationInfo) SlotFor(flag string) int {
	for i, f := range t.Flags {
		if f == flag {
			return i
		}
	}
	return -1
}

// ClearFlags releases the flag-symbol references once address resolution
// is complete (spec §4.H step 9).
func (t *TillContinuationInfo) ClearFlags() { t.Flags = nil }

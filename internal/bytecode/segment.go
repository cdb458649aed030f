package bytecode

// Instr is one emitted instruction: an opcode plus a single 64-bit operand
// union (spec §4.I "Operand encoding is a single 64-bit union per
// instruction"), used as an immediate, a relative branch offset, or a
// table index depending on the opcode.
type Instr struct {
	Op      Op
	Operand int64
	// SourceLoc indexes into the owning Segment's SourceLocations table,
	// supporting stack-trace attribution (spec §4.H).
	SourceLoc int32
}

// Segment is the flat, linear bytecode form a CompiledBlock assembles
// into: no more symbolic branch targets, only resolved relative offsets.
type Segment struct {
	Code            []Instr
	Strings         []string
	Literals        []interface{} // boxed literal objects (value.Value, kept opaque here)
	SourceLocations []SourceLocation
}

// SourceLocation is the spec's (filename, line, column, assignedName)
// tuple.
type SourceLocation struct {
	File         string
	Line, Column int
	AssignedName string
}

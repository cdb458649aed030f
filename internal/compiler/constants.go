package compiler

import (
	"math"

	"smile/internal/bytecode"
	"smile/internal/ir"
	"smile/internal/value"
)

// emitConstant loads a boxed constant value, choosing the narrowest
// opcode/table the value's Kind calls for (spec §4.I rows 1x/2x: scalar vs.
// real/float loads are distinct opcode families).
func emitConstant(c *Compiler, blk *ir.Block, v value.Value) {
	switch v.Kind {
	case value.KNull:
		blk.Emit(bytecode.LdNull, 0, 0)
	case value.KBool:
		op := int64(0)
		if v.AsBool() {
			op = 1
		}
		blk.Emit(bytecode.LdBool, op, 0)
	case value.KByte, value.KInt16, value.KInt32, value.KInt64, value.KChar, value.KUni:
		blk.Emit(bytecode.Ld64, int64(v.Payload), 0)
	case value.KSymbol:
		blk.Emit(bytecode.LdSym, int64(v.Payload), 0)
	case value.KFloat64, value.KFloat32, value.KFloat128:
		idx := c.Tables.AddLiteral(math.Float64frombits(v.Payload))
		blk.Emit(bytecode.LdFloat64, int64(idx), 0)
	case value.KReal64, value.KReal32, value.KReal128:
		idx := c.Tables.AddLiteral(math.Float64frombits(v.Payload))
		blk.Emit(bytecode.LdReal64, int64(idx), 0)
	case value.KString:
		idx := c.Tables.InternString(v.ToString())
		blk.Emit(bytecode.LdStr, int64(idx), 0)
	default:
		idx := c.Tables.AddLiteral(v)
		blk.Emit(bytecode.LdObj, int64(idx), 0)
	}
}

package value

// Kind is the closed set of runtime value kinds from spec §3.1.
type Kind uint8

const (
	KNull Kind = iota
	KBool
	KByte
	KInt16
	KInt32
	KInt64
	KReal32
	KReal64
	KReal128
	KFloat32
	KFloat64
	KFloat128
	KChar
	KUni
	KSymbol

	KString
	KByteArray
	KList
	KPair

	KRange

	KUserObject

	KFunction

	KHandle

	KSyntax
	KNonterminal

	KTillContinuation

	KTimestamp
)

func (k Kind) String() string {
	switch k {
	case KNull:
		return "Null"
	case KBool:
		return "Bool"
	case KByte:
		return "Byte"
	case KInt16:
		return "Int16"
	case KInt32:
		return "Int32"
	case KInt64:
		return "Int64"
	case KReal32:
		return "Real32"
	case KReal64:
		return "Real64"
	case KReal128:
		return "Real128"
	case KFloat32:
		return "Float32"
	case KFloat64:
		return "Float64"
	case KFloat128:
		return "Float128"
	case KChar:
		return "Char"
	case KUni:
		return "Uni"
	case KSymbol:
		return "Symbol"
	case KString:
		return "String"
	case KByteArray:
		return "ByteArray"
	case KList:
		return "List"
	case KPair:
		return "Pair"
	case KRange:
		return "Range"
	case KUserObject:
		return "UserObject"
	case KFunction:
		return "Function"
	case KHandle:
		return "Handle"
	case KSyntax:
		return "Syntax"
	case KNonterminal:
		return "Nonterminal"
	case KTillContinuation:
		return "TillContinuation"
	case KTimestamp:
		return "Timestamp"
	default:
		return "Unknown"
	}
}

// IsPrimitive reports whether the kind is one of the unboxed-payload-only
// primitive kinds (no heap Object is attached).
func (k Kind) IsPrimitive() bool {
	return k <= KSymbol
}

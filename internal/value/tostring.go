package value

import "strconv"

func primitiveToString(v Value) string {
	switch v.Kind {
	case KNull:
		return "null"
	case KBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case KByte, KInt16, KInt32, KInt64:
		return strconv.FormatInt(v.AsInt64(), 10)
	case KFloat64, KReal64:
		return strconv.FormatFloat(v.AsFloat64(), 'g', -1, 64)
	case KChar:
		return string([]byte{byte(v.Payload)})
	case KUni:
		return string(v.AsRune())
	case KSymbol:
		return "#symbol"
	default:
		return "#<" + v.Kind.String() + ">"
	}
}

// Package ranges implements the `range` built-in module: constructing a
// Range value and walking it, over internal/rangeval's iterator (spec
// §4.M "Range"). Grounded on value.Range/internal/rangeval, given a
// reachable entry point here the same way uuid/crypto give their
// declared-but-dormant dependencies one.
package ranges

import (
	"fmt"

	"smile/internal/builtin"
	"smile/internal/rangeval"
	"smile/internal/symbol"
	"smile/internal/value"
	"smile/internal/vm"
)

func Install(v *vm.VM, symbols *symbol.Table) map[string]value.Value {
	type entry struct {
		name     string
		min, max int
		fn       func(args []value.Value) (value.Value, error)
	}
	entries := []entry{
		{"range.new", 2, 3, rangeNew},
		{"range.collect", 1, 1, rangeCollect},
		{"range.len", 1, 1, rangeLen},
	}
	out := make(map[string]value.Value, len(entries))
	for _, e := range entries {
		builtin.SetupFunction(v, symbols, e.name, e.min, e.max, e.fn)
		val, _ := v.GetGlobal(symbols.GetSymbol(e.name))
		out[e.name] = val
	}
	return out
}

func asFloat(v value.Value) (float64, bool) {
	switch v.Kind {
	case value.KInt64, value.KInt32, value.KInt16, value.KByte:
		return float64(v.AsInt64()), true
	case value.KFloat64, value.KReal64:
		return v.AsFloat64(), true
	}
	return 0, false
}

// range.new(start, end [, step]) -> Range. The range is integral when
// both start and end were supplied as integer kinds; step defaults to 1
// (or -1 when end < start).
func rangeNew(args []value.Value) (value.Value, error) {
	start, ok := asFloat(args[0])
	if !ok {
		return value.Null, fmt.Errorf("range.new: start must be numeric")
	}
	end, ok := asFloat(args[1])
	if !ok {
		return value.Null, fmt.Errorf("range.new: end must be numeric")
	}
	integral := args[0].Kind != value.KFloat64 && args[0].Kind != value.KReal64 &&
		args[1].Kind != value.KFloat64 && args[1].Kind != value.KReal64

	step := 1.0
	if end < start {
		step = -1.0
	}
	if len(args) == 3 {
		s, ok := asFloat(args[2])
		if !ok {
			return value.Null, fmt.Errorf("range.new: step must be numeric")
		}
		step = s
	}
	elemKind := value.KFloat64
	if integral {
		elemKind = value.KInt64
	}
	return value.NewRange(start, end, step, integral, elemKind)
}

func asRange(v value.Value) (*value.Range, error) {
	if v.Kind != value.KRange {
		return nil, fmt.Errorf("expected a Range, got %s", v.Kind)
	}
	return v.Obj.(*value.Range), nil
}

// range.collect(r) -> List of every element r produces, in order.
func rangeCollect(args []value.Value) (value.Value, error) {
	r, err := asRange(args[0])
	if err != nil {
		return value.Null, err
	}
	elems := rangeval.Collect(r)
	out := value.Null
	for i := len(elems) - 1; i >= 0; i-- {
		out = value.Cons(elems[i], out)
	}
	return out, nil
}

// range.len(r) -> Int64, the number of elements r produces.
func rangeLen(args []value.Value) (value.Value, error) {
	r, err := asRange(args[0])
	if err != nil {
		return value.Null, err
	}
	return value.Int64(int64(rangeval.Len(r))), nil
}

// Package clock implements the `clock` built-in module: wall-clock
// Timestamp construction and arithmetic over internal/timestamp and
// value.TimestampObj (spec §4.M "Timestamp"), giving both a reachable
// entry point — neither was ever produced by any operation before this
// package existed (see DESIGN.md).
package clock

import (
	"fmt"
	"time"

	"smile/internal/builtin"
	"smile/internal/symbol"
	"smile/internal/timestamp"
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
		{"clock.now", 0, 0, clockNow},
		{"clock.add", 3, 3, clockAdd},
		{"clock.diff", 2, 2, clockDiff},
		{"clock.to-string", 1, 1, clockToString},
	}
	out := make(map[string]value.Value, len(entries))
	for _, e := range entries {
		builtin.SetupFunction(v, symbols, e.name, e.min, e.max, e.fn)
		val, _ := v.GetGlobal(symbols.GetSymbol(e.name))
		out[e.name] = val
	}
	return out
}

func asTimestamp(v value.Value) (timestamp.Timestamp, error) {
	if v.Kind != value.KTimestamp {
		return timestamp.Timestamp{}, fmt.Errorf("expected a Timestamp, got %s", v.Kind)
	}
	return v.Obj.(*value.TimestampObj).T, nil
}

// clock.now() -> Timestamp, the current wall-clock time.
func clockNow(args []value.Value) (value.Value, error) {
	now := time.Now()
	return value.NewTimestamp(timestamp.FromUnix(now.Unix(), int64(now.Nanosecond()))), nil
}

// clock.add(ts, amount, unit) -> Timestamp, ts shifted by amount units
// ("days", "hours", "minutes", "seconds", "ms", "us", "ns").
func clockAdd(args []value.Value) (value.Value, error) {
	t, err := asTimestamp(args[0])
	if err != nil {
		return value.Null, err
	}
	if args[1].Kind != value.KFloat64 && args[1].Kind != value.KInt64 && args[1].Kind != value.KReal64 {
		return value.Null, fmt.Errorf("clock.add: amount must be numeric")
	}
	amount := args[1].AsFloat64()
	if args[1].Kind == value.KInt64 {
		amount = float64(args[1].AsInt64())
	}
	unit := args[2].ToString()
	return value.NewTimestamp(t.AddDuration(amount, unit)), nil
}

// clock.diff(a, b) -> Float64 seconds, a minus b.
func clockDiff(args []value.Value) (value.Value, error) {
	a, err := asTimestamp(args[0])
	if err != nil {
		return value.Null, err
	}
	b, err := asTimestamp(args[1])
	if err != nil {
		return value.Null, err
	}
	return value.Float64(timestamp.Diff(a, b)), nil
}

// clock.to-string(ts) -> String, the RFC3339 rendering.
func clockToString(args []value.Value) (value.Value, error) {
	t, err := asTimestamp(args[0])
	if err != nil {
		return value.Null, err
	}
	return value.NewString(t.ToString()), nil
}

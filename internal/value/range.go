package value

import "fmt"

// Range is the (start, end, stepping) numeric range kind (spec §3.1, §4.M).
// One logical Range kind serves every numeric primitive; Start, End and
// Step carry the underlying values as float64, and Integral remembers the
// original integer-ness so iteration can re-box into the right Kind.
type Range struct {
	Start, End, Step float64
	Integral         bool
	ElemKind         Kind
}

func NewRange(start, end, step float64, integral bool, elemKind Kind) (Value, error) {
	if step == 0 {
		return Null, fmt.Errorf("range step cannot be zero")
	}
	return Value{Kind: KRange, Obj: &Range{Start: start, End: end, Step: step, Integral: integral, ElemKind: elemKind}}, nil
}

func (r *Range) Kind() Kind { return KRange }
func (r *Range) Base() Value { return Null }
func (r *Range) ToString() string {
	return fmt.Sprintf("%v:%v:%v", r.Start, r.End, r.Step)
}
func (r *Range) Hash() uint64 {
	return uint64(r.Start) ^ uint64(r.End)<<16 ^ uint64(r.Step)<<32
}
func (r *Range) SetProperty(string, Value) error { return errImmutable("Range") }
func (r *Range) HasProperty(name string) bool {
	switch name {
	case "start", "end", "step":
		return true
	}
	return false
}
func (r *Range) PropertyNames() []string { return []string{"start", "end", "step"} }
func (r *Range) GetProperty(name string) (Value, bool) {
	switch name {
	case "start":
		return r.box(r.Start), true
	case "end":
		return r.box(r.End), true
	case "step":
		return r.box(r.Step), true
	}
	return Null, false
}
func (r *Range) box(f float64) Value {
	if r.Integral {
		return Int64(int64(f))
	}
	return Float64(f)
}

func (r *Range) DeepEqual(other Value, _ map[Object]bool) bool {
	o, ok := other.Obj.(*Range)
	return ok && o.Start == r.Start && o.End == r.End && o.Step == r.Step
}

// Ascending reports the iteration direction, deriving from end vs start
// unless Step's sign overrides it (spec §4.M).
func (r *Range) Ascending() bool {
	if r.Step != 0 {
		return r.Step > 0
	}
	return r.End >= r.Start
}

// Done reports whether the state-machine iterator has exhausted the range
// at position cur.
func (r *Range) Done(cur float64) bool {
	if r.Ascending() {
		return cur > r.End
	}
	return cur < r.End
}

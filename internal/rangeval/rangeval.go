// Package rangeval drives the numeric Range iteration described in spec
// §4.M: given a value.Range, it walks start..end by step, re-boxing each
// position with the range's original integer-ness and reporting when the
// walk is done. The `range` package's builtins (`range.len`,
// `range.collect` in internal/pkgs/ranges) build on this instead of
// re-deriving the ascending/done rules at each call site.
//
// Go's growable goroutine stacks make the C core's explicit suspend/resume
// state machine unnecessary here: an Iterator is just a struct holding its
// own cursor, advanced by repeated Next calls from an ordinary Go loop
// (see Collect) rather than by re-entering a VM opcode between steps.
package rangeval

import "smile/internal/value"

// Iterator walks a Range's positions in its declared direction.
type Iterator struct {
	r        *value.Range
	cur      float64
	exhausted bool
}

// NewIterator builds an Iterator positioned at r's start.
func NewIterator(r *value.Range) *Iterator {
	return &Iterator{r: r, cur: r.Start}
}

// Next reports the next element and whether one was available.
func (it *Iterator) Next() (value.Value, bool) {
	if it.exhausted || it.r.Done(it.cur) {
		it.exhausted = true
		return value.Null, false
	}
	v := it.box(it.cur)
	if it.r.Ascending() {
		it.cur += absStep(it.r.Step)
	} else {
		it.cur -= absStep(it.r.Step)
	}
	return v, true
}

func absStep(step float64) float64 {
	if step < 0 {
		return -step
	}
	if step == 0 {
		return 1
	}
	return step
}

func (it *Iterator) box(f float64) value.Value {
	if it.r.Integral {
		return value.Int64(int64(f))
	}
	return value.Float64(f)
}

// Len reports how many elements the range produces, without consuming an
// Iterator — used by `range.len`.
func Len(r *value.Range) int {
	step := absStep(r.Step)
	span := r.End - r.Start
	if !r.Ascending() {
		span = r.Start - r.End
	}
	if span < 0 {
		return 0
	}
	return int(span/step) + 1
}

// Collect materialises every element of r into a slice, in iteration
// order. Used by `range.collect`, which returns the elements as a list.
func Collect(r *value.Range) []value.Value {
	it := NewIterator(r)
	var out []value.Value
	for {
		v, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

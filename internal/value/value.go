// Package value implements the sum type of every runtime value the
// interpreter manipulates: the VM's stack slots, closure variable slots,
// and UserObject property values are all of type Value.
package value

import (
	"math"
	"sync"
)

// Value is the spec's Arg pair: a boxed heap reference plus a 64-bit
// unboxed payload, tagged by Kind. Primitive kinds (Null..Symbol) use only
// the Payload field; everything else carries an Object in Obj.
type Value struct {
	Kind    Kind
	Payload uint64
	Obj     Object
}

// Object is the v-table every boxed (heap) value kind implements. Only a
// subset of the 14 spec operations are method calls here; CompareEqual,
// Hash and ToBool are implemented once in this package for primitives and
// delegate to Object for boxed kinds so callers never need a type switch.
type Object interface {
	Kind() Kind
	DeepEqual(other Value, seen map[Object]bool) bool
	Hash() uint64
	ToString() string
	GetProperty(name string) (Value, bool)
	SetProperty(name string, v Value) error
	HasProperty(name string) bool
	PropertyNames() []string
	Base() Value
}

var Null = Value{Kind: KNull}

func Bool(b bool) Value {
	var p uint64
	if b {
		p = 1
	}
	return Value{Kind: KBool, Payload: p}
}

func Int64(n int64) Value   { return Value{Kind: KInt64, Payload: uint64(n)} }
func Int32(n int32) Value   { return Value{Kind: KInt32, Payload: uint64(uint32(n))} }
func Int16(n int16) Value   { return Value{Kind: KInt16, Payload: uint64(uint16(n))} }
func Byte(n byte) Value     { return Value{Kind: KByte, Payload: uint64(n)} }
func Float64(f float64) Value {
	return Value{Kind: KFloat64, Payload: math.Float64bits(f)}
}
func Real64(f float64) Value {
	return Value{Kind: KReal64, Payload: math.Float64bits(f)}
}
func Char(c byte) Value   { return Value{Kind: KChar, Payload: uint64(c)} }
func Uni(r rune) Value    { return Value{Kind: KUni, Payload: uint64(r)} }
func Symbol(id uint32) Value { return Value{Kind: KSymbol, Payload: uint64(id)} }

func (v Value) AsInt64() int64     { return int64(v.Payload) }
func (v Value) AsInt32() int32     { return int32(v.Payload) }
func (v Value) AsFloat64() float64 { return math.Float64frombits(v.Payload) }
func (v Value) AsBool() bool       { return v.Payload != 0 }
func (v Value) AsSymbol() uint32   { return uint32(v.Payload) }
func (v Value) AsRune() rune       { return rune(v.Payload) }

// ToBool implements the truthiness rule used by BOOL_CONTEXT compilation
// and the VM's Bt/Bf branch opcodes: Null and false are falsy, the numeric
// zero is falsy, everything else (including empty string/list) is truthy.
func (v Value) ToBool() bool {
	switch v.Kind {
	case KNull:
		return false
	case KBool:
		return v.AsBool()
	case KByte, KInt16, KInt32, KInt64, KSymbol:
		return v.Payload != 0
	case KFloat64, KReal64:
		return v.AsFloat64() != 0
	default:
		return true
	}
}

// CompareEqual is reference/primitive equality in constant time: primitives
// compare by kind+payload, boxed values compare by Object identity (or, for
// String, by the spec's content-equality invariant, implemented by
// comparing ToString results since Go has no pointer identity for interned
// strings here).
func (v Value) CompareEqual(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	if v.Kind.IsPrimitive() {
		return v.Payload == other.Payload
	}
	if v.Kind == KString {
		return v.Obj.ToString() == other.Obj.ToString()
	}
	return v.Obj == other.Obj
}

// DeepEqual recurses into boxed structure, guarding against cycles with a
// set of already-visited object pointers.
func (v Value) DeepEqual(other Value) bool {
	if v.Kind.IsPrimitive() || v.Obj == nil {
		return v.CompareEqual(other)
	}
	return v.Obj.DeepEqual(other, make(map[Object]bool))
}

// Hash must agree with CompareEqual.
func (v Value) Hash() uint64 {
	if v.Kind.IsPrimitive() {
		return uint64(v.Kind)<<56 ^ v.Payload
	}
	if v.Obj == nil {
		return uint64(v.Kind) << 56
	}
	return v.Obj.Hash()
}

func (v Value) ToString() string {
	if v.Obj != nil {
		return v.Obj.ToString()
	}
	return primitiveToString(v)
}

// GetProperty reads a named property, defaulting to the object's base
// (prototype) chain when the object itself does not define the name, per
// the base-link invariant in spec §3.1.
func (v Value) GetProperty(name string) (Value, bool) {
	if v.Obj == nil {
		return Null, false
	}
	if val, ok := v.Obj.GetProperty(name); ok {
		return val, true
	}
	base := v.Obj.Base()
	if base.Obj == nil && base.Kind == KNull {
		return Null, false
	}
	return base.GetProperty(name)
}

// baseObjectsMu guards the process-wide Primitive root registration used to
// terminate base-chain walks (spec §3.1: "base is acyclic ... reaching a
// distinguished Primitive root").
var baseRootOnce sync.Once
var primitiveRoot Value

// PrimitiveRoot returns the distinguished root every base chain terminates
// at.
func PrimitiveRoot() Value {
	baseRootOnce.Do(func() {
		primitiveRoot = Null
	})
	return primitiveRoot
}

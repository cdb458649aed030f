// Package vm is the stack-machine runtime: Closures (a compiled
// UserFunctionInfo plus the captured lexical parent activation) and the
// bytecode dispatch loop that executes them (spec §4.J).
package vm

import (
	"smile/internal/ir"
	"smile/internal/value"
)

// Closure is one function activation: its static code (Info), the
// lexically enclosing activation it closes over (Parent, nil at the top
// level), and this activation's own argument+local slots.
type Closure struct {
	Info   *ir.UserFunctionInfo
	Parent *Closure
	Locals []value.Value
	VM     *VM
}

func (c *Closure) Kind() value.Kind { return value.KFunction }
func (c *Closure) ToString() string {
	name := c.Info.Name
	if name == "" {
		name = "anonymous"
	}
	return "#<function " + name + ">"
}
func (c *Closure) Hash() uint64                                  { return value.HashPointerValue(c) }
func (c *Closure) Base() value.Value                             { return value.Null }
func (c *Closure) SetProperty(string, value.Value) error         { return nil }
func (c *Closure) HasProperty(string) bool                       { return false }
func (c *Closure) PropertyNames() []string                       { return nil }
func (c *Closure) GetProperty(string) (value.Value, bool)        { return value.Null, false }
func (c *Closure) DeepEqual(other value.Value, _ map[value.Object]bool) bool {
	o, ok := other.Obj.(*Closure)
	return ok && o == c
}

// Arity reports the declared argument-count bounds (spec §4.J "Arity
// checking").
func (c *Closure) Arity() (min, max int) { return c.Info.MinArgs, c.Info.MaxArgs }

// Call activates a fresh frame sharing this Closure's Info/Parent, copies
// argv into the new frame's argument slots, and runs it to completion
// (spec §4.J "Call/Return").
func (c *Closure) Call(argv []value.Value) (value.Value, error) {
	locals := make([]value.Value, c.Info.NumLocals)
	n := len(argv)
	if n > c.Info.NumArgs {
		n = c.Info.NumArgs
	}
	copy(locals, argv[:n])
	frame := &Closure{Info: c.Info, Parent: c.Parent, Locals: locals, VM: c.VM}
	return c.VM.execFrom(c.Info.Segment, frame, 0)
}

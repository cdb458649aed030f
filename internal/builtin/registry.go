// Package builtin implements the native-function registry (spec §4.K):
// every global name the VM can see before a program defines anything of
// its own. Built-ins are ordinary value.Caller values installed into a
// VM's global table exactly the way a top-level `def` would install one,
// so user code can shadow or re-bind them like any other global.
package builtin

import (
	"fmt"

	"smile/internal/symbol"
	"smile/internal/value"
	"smile/internal/vm"
)

// KAny is a wildcard entry in External.Types: skip the type check for
// that argument position. It isn't a real value.Kind a program can ever
// see, just a marker for this table.
const KAny value.Kind = 255

// TypeError is raised when a built-in's declared per-argument Types
// (spec §4.K "typed argument checking") reject the value actually
// supplied.
type TypeError struct {
	Name     string
	ArgIndex int
	Want     value.Kind
	Got      value.Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: argument %d: expected %s, got %s", e.Name, e.ArgIndex+1, e.Want, e.Got)
}

// External is a native function: a name (for diagnostics), declared arity
// bounds, an optional per-argument type-check table, and the Go closure
// that implements it (spec §6.4 "native function ABI", §4.K "type_check_
// bytes"). Types is nil for the common arity-only case; when set, it is
// checked position by position (a KAny entry, or running out of Types
// before running out of args, accepts anything).
type External struct {
	Name        string
	MinArgs     int
	MaxArgs     int // -1 = unbounded
	Types       []value.Kind
	Fn          func(args []value.Value) (value.Value, error)
}

func (e *External) Kind() value.Kind     { return value.KFunction }
func (e *External) ToString() string     { return "#<builtin " + e.Name + ">" }
func (e *External) Hash() uint64         { return value.HashPointerValue(e) }
func (e *External) Base() value.Value    { return value.Null }
func (e *External) SetProperty(string, value.Value) error { return nil }
func (e *External) HasProperty(string) bool                { return false }
func (e *External) PropertyNames() []string                 { return nil }
func (e *External) GetProperty(string) (value.Value, bool)  { return value.Null, false }
func (e *External) DeepEqual(other value.Value, _ map[value.Object]bool) bool {
	o, ok := other.Obj.(*External)
	return ok && o == e
}
func (e *External) Arity() (int, int) { return e.MinArgs, e.MaxArgs }

func (e *External) Call(argv []value.Value) (value.Value, error) {
	for i, want := range e.Types {
		if i >= len(argv) {
			break
		}
		if want != KAny && argv[i].Kind != want {
			return value.Null, &TypeError{Name: e.Name, ArgIndex: i, Want: want, Got: argv[i].Kind}
		}
	}
	return e.Fn(argv)
}

// SetupFunction interns name and installs fn as a global binding (spec
// §4.K "the registry installs every built-in the same way a top-level def
// would"), grounded on the teacher's stdlib registration helpers that pair
// a name with an arity-checked native function.
func SetupFunction(v *vm.VM, symbols *symbol.Table, name string, minArgs, maxArgs int, fn func([]value.Value) (value.Value, error)) {
	id := symbols.GetSymbol(name)
	v.SetGlobal(id, value.NewFunction(&External{Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Fn: fn}))
}

// SetupTypedFunction is SetupFunction plus a per-argument Types check
// (spec §4.K), for built-ins narrow enough that declaring their argument
// kinds up front is worth the table (e.g. ones that would otherwise fail
// deep inside a wrapped standard-library call with a less legible error).
func SetupTypedFunction(v *vm.VM, symbols *symbol.Table, name string, minArgs, maxArgs int, types []value.Kind, fn func([]value.Value) (value.Value, error)) {
	id := symbols.GetSymbol(name)
	v.SetGlobal(id, value.NewFunction(&External{Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Types: types, Fn: fn}))
}

// SetupSynonym binds alias to whatever original currently resolves to,
// failing silently (a no-op) if original isn't bound yet — callers are
// expected to register in dependency order.
func SetupSynonym(v *vm.VM, symbols *symbol.Table, alias, original string) {
	origID := symbols.GetSymbolNoCreate(original)
	if origID == symbol.None {
		return
	}
	val, ok := v.GetGlobal(origID)
	if !ok {
		return
	}
	v.SetGlobal(symbols.GetSymbol(alias), val)
}

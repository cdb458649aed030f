// Package uuid implements the `uuid` built-in module, wiring
// github.com/google/uuid (a dependency the teacher declares but never
// imports) to a concrete operation: random (v4) identifier generation.
package uuid

import (
	"github.com/google/uuid"

	"smile/internal/builtin"
	"smile/internal/symbol"
	"smile/internal/value"
	"smile/internal/vm"
)

// Install registers uuid.new4 as a VM global and returns it for
// `#include`-time binding.
func Install(v *vm.VM, symbols *symbol.Table) map[string]value.Value {
	builtin.SetupFunction(v, symbols, "uuid.new4", 0, 0, uuidNew4)
	val, _ := v.GetGlobal(symbols.GetSymbol("uuid.new4"))
	return map[string]value.Value{"uuid.new4": val}
}

// uuid.new4() -> String. A random (version 4) UUID in canonical
// hyphenated form.
func uuidNew4(args []value.Value) (value.Value, error) {
	return value.NewString(uuid.NewString()), nil
}

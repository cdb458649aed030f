// Package regex implements the `regex` built-in module: compile-and-match
// operations over internal/regexutil's RE2 wrapper (spec §4.M "Regex").
// Every entry point declares its argument kinds up front through
// builtin.SetupTypedFunction, demonstrating the type-checked argument
// flavor spec §4.K describes alongside plain arity checking.
package regex

import (
	"fmt"

	"smile/internal/builtin"
	"smile/internal/regexutil"
	"smile/internal/symbol"
	"smile/internal/value"
	"smile/internal/vm"
)

func Install(v *vm.VM, symbols *symbol.Table) map[string]value.Value {
	str2 := []value.Kind{value.KString, value.KString}
	str3 := []value.Kind{value.KString, value.KString, value.KString}
	type entry struct {
		name  string
		min   int
		max   int
		types []value.Kind
		fn    func(args []value.Value) (value.Value, error)
	}
	entries := []entry{
		{"regex.matches?", 2, 2, str2, regexMatches},
		{"regex.match", 2, 2, str2, regexMatch},
		{"regex.split", 2, 2, str2, regexSplit},
		{"regex.replace", 3, 3, str3, regexReplace},
	}
	out := make(map[string]value.Value, len(entries))
	for _, e := range entries {
		builtin.SetupTypedFunction(v, symbols, e.name, e.min, e.max, e.types, e.fn)
		val, _ := v.GetGlobal(symbols.GetSymbol(e.name))
		out[e.name] = val
	}
	return out
}

// regex.matches?(pattern, text) -> Bool.
func regexMatches(args []value.Value) (value.Value, error) {
	re, err := regexutil.Compile(args[0].ToString())
	if err != nil {
		return value.Null, fmt.Errorf("regex.matches?: %w", err)
	}
	_, ok := regexutil.FindFirst(re, args[1].ToString())
	return value.Bool(ok), nil
}

// regex.match(pattern, text) -> the matched substring, or Null if no
// match.
func regexMatch(args []value.Value) (value.Value, error) {
	re, err := regexutil.Compile(args[0].ToString())
	if err != nil {
		return value.Null, fmt.Errorf("regex.match: %w", err)
	}
	m, ok := regexutil.FindFirst(re, args[1].ToString())
	if !ok {
		return value.Null, nil
	}
	return value.NewString(m.Text), nil
}

// regex.split(pattern, text) -> List of the substrings between matches.
func regexSplit(args []value.Value) (value.Value, error) {
	re, err := regexutil.Compile(args[0].ToString())
	if err != nil {
		return value.Null, fmt.Errorf("regex.split: %w", err)
	}
	parts := regexutil.Split(re, args[1].ToString())
	out := value.Null
	for i := len(parts) - 1; i >= 0; i-- {
		out = value.Cons(value.NewString(parts[i]), out)
	}
	return out, nil
}

// regex.replace(pattern, text, replacement) -> text with every match of
// pattern substituted by replacement (spec §4.M "replace (string ...
// replacement)", narrowed to the literal-replacement form — there is no
// handle for a callback-replacement builtin to invoke back into the VM
// from, see DESIGN.md).
func regexReplace(args []value.Value) (value.Value, error) {
	re, err := regexutil.Compile(args[0].ToString())
	if err != nil {
		return value.Null, fmt.Errorf("regex.replace: %w", err)
	}
	return value.NewString(regexutil.ReplaceLiteral(re, args[1].ToString(), args[2].ToString())), nil
}

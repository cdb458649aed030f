// Package e2e exercises the full lexer → parser → compiler → vm pipeline
// against the literal source → result scenarios of spec.md §8, the way
// the teacher's own package tests run real programs through its stack
// rather than poking individual opcodes.
package e2e

import (
	"os"
	"path/filepath"
	"testing"

	"smile/internal/bytecode"
	"smile/internal/compiler"
	"smile/internal/ir"
	"smile/internal/module"
	"smile/internal/parser"
	"smile/internal/scope"
	"smile/internal/symbol"
	"smile/internal/value"
	"smile/internal/vm"
)

// compileAndRun parses and compiles src against a fresh runtime and
// returns the program's result value.
func compileAndRun(t *testing.T, src string) (value.Value, *bytecode.Segment) {
	t.Helper()

	symbols := symbol.New()
	v := vm.New(ir.NewCompiledTables(), symbols)

	sc := scope.Begin(nil, scope.Outermost)
	p := parser.New("<test>", src, sc, symbols)
	prog, diags := p.ParseProgram()
	if diags.HasErrors() {
		t.Fatalf("parse errors for %q: %v", src, diags.Items)
	}

	seg, _, numLocals, _, err := compiler.CompileGlobalInto(prog, symbols, v.Tables, nil, ".")
	if err != nil {
		t.Fatalf("compile error for %q: %v", src, err)
	}

	result, err := vm.Run(v, seg, numLocals)
	if err != nil {
		t.Fatalf("runtime error for %q: %v", src, err)
	}
	return result, seg
}

func countOp(seg *bytecode.Segment, op bytecode.Op) int {
	n := 0
	for _, instr := range seg.Code {
		if instr.Op == op {
			n++
		}
	}
	return n
}

// TestArithmeticPrecedence is spec.md §8 scenario A.
func TestArithmeticPrecedence(t *testing.T) {
	result, _ := compileAndRun(t, `1 + 2 * 3`)
	if result.Kind != value.KInt64 || result.AsInt64() != 7 {
		t.Fatalf("got %v (%s); want Int64 7", result.AsInt64(), result.Kind)
	}
}

// TestVariablesAndControlFlow is spec.md §8 scenario B.
func TestVariablesAndControlFlow(t *testing.T) {
	src := `
var x = 0
while x < 5 do x += 1
x
`
	result, _ := compileAndRun(t, src)
	if result.Kind != value.KInt64 || result.AsInt64() != 5 {
		t.Fatalf("got %v; want Int64 5", result.AsInt64())
	}
}

// TestTillDemotion is spec.md §8 scenario C: a till whose flag is never
// referenced from a nested closure compiles with no NewTill/EndTill pair,
// per the compiler's demotion law (internal/compiler/till.go).
func TestTillDemotion(t *testing.T) {
	src := `
till done do {
  var i = 0
  while i < 3 do { i += 1 }
  done
}
when done 42
`
	result, seg := compileAndRun(t, src)
	if result.Kind != value.KInt64 || result.AsInt64() != 42 {
		t.Fatalf("got %v; want Int64 42", result.AsInt64())
	}
	if n := countOp(seg, bytecode.NewTill); n != 0 {
		t.Fatalf("NewTill count = %d; want 0 (demoted till)", n)
	}
	if n := countOp(seg, bytecode.EndTill); n != 0 {
		t.Fatalf("EndTill count = %d; want 0 (demoted till)", n)
	}
}

// TestTillRealContinuation is spec.md §8 scenario D: a till flag read from
// a nested fn forces a real continuation, so NewTill/EndTill must survive.
func TestTillRealContinuation(t *testing.T) {
	src := "till done do {\n" +
		"  var f = |n| if n >= 3 then done else f(n + 1)\n" +
		"  f(0)\n" +
		"}\n" +
		"when done `ok\n"
	result, seg := compileAndRun(t, src)
	if result.Kind != value.KSymbol {
		t.Fatalf("got kind %s; want Symbol", result.Kind)
	}
	if n := countOp(seg, bytecode.NewTill); n != 1 {
		t.Fatalf("NewTill count = %d; want 1 (real continuation)", n)
	}
	if n := countOp(seg, bytecode.EndTill); n < 1 {
		t.Fatalf("EndTill count = %d; want at least 1", n)
	}
}

// TestQuoteTemplate is spec.md §8 scenario E: a quoted list with one
// parenthesized sub-expression evaluates that sub-expression while the
// surrounding symbols stay quoted.
func TestQuoteTemplate(t *testing.T) {
	result, _ := compileAndRun(t, "`[a (1+2) c]")
	if result.Kind != value.KList {
		t.Fatalf("got kind %s; want List", result.Kind)
	}

	items := collectList(t, result)
	if len(items) != 3 {
		t.Fatalf("got %d items; want 3", len(items))
	}
	if items[0].Kind != value.KSymbol {
		t.Fatalf("items[0] kind = %s; want Symbol", items[0].Kind)
	}
	if items[1].Kind != value.KInt64 || items[1].AsInt64() != 3 {
		t.Fatalf("items[1] = %v; want Int64 3", items[1].AsInt64())
	}
	if items[2].Kind != value.KSymbol {
		t.Fatalf("items[2] kind = %s; want Symbol", items[2].Kind)
	}
}

func collectList(t *testing.T, v value.Value) []value.Value {
	t.Helper()
	var out []value.Value
	for v.Kind == value.KList {
		l, ok := v.Obj.(*value.List)
		if !ok {
			t.Fatalf("expected *value.List, got %T", v.Obj)
		}
		out = append(out, l.A)
		v = l.D
	}
	return out
}

// TestIncludeCachesModule is spec.md §8 scenario F: including the same
// file twice only runs its top-level side effects once, because the
// module loader memoises by absolute path.
func TestIncludeCachesModule(t *testing.T) {
	dir := t.TempDir()
	libPath := filepath.Join(dir, "lib.sm")
	mainPath := filepath.Join(dir, "main.sm")

	if err := os.WriteFile(libPath, []byte("const pi = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	mainSrc := `#include "./lib.sm" : pi
pi
`
	if err := os.WriteFile(mainPath, []byte(mainSrc), 0o644); err != nil {
		t.Fatal(err)
	}

	symbols := symbol.New()
	v := vm.New(ir.NewCompiledTables(), symbols)
	loader := module.NewLoader(symbols, v)

	src, err := os.ReadFile(mainPath)
	if err != nil {
		t.Fatal(err)
	}

	sc := scope.Begin(nil, scope.Outermost)
	p := parser.New(mainPath, string(src), sc, symbols)
	prog, diags := p.ParseProgram()
	if diags.HasErrors() {
		t.Fatalf("parse errors: %v", diags.Items)
	}

	seg, _, numLocals, _, err := compiler.CompileGlobalInto(prog, symbols, v.Tables, loader, dir)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	result, err := vm.Run(v, seg, numLocals)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if result.Kind != value.KInt64 || result.AsInt64() != 3 {
		t.Fatalf("got %v; want Int64 3", result.AsInt64())
	}

	info1, err := loader.Load("./lib.sm", true, dir)
	if err != nil {
		t.Fatal(err)
	}
	info2, err := loader.Load("./lib.sm", true, dir)
	if err != nil {
		t.Fatal(err)
	}
	if info1 != info2 {
		t.Fatalf("second Load returned a different *module.Info; cache miss")
	}
}

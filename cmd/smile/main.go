// cmd/smile is the interpreter's command-line shell: `run`, `repl`, and
// `check` subcommands over the lexer/parser/compiler/vm pipeline.
// Grounded on the teacher's cmd/sentra/main.go command-alias table and
// internal/repl/repl.go, trimmed to the operations this core actually
// implements (no build/fmt/lint/lsp/package-manager surface).
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"smile/internal/compiler"
	"smile/internal/config"
	"smile/internal/diag"
	"smile/internal/module"
	"smile/internal/parser"
	"smile/internal/pkgs/clock"
	"smile/internal/pkgs/crypto"
	"smile/internal/pkgs/net"
	"smile/internal/pkgs/ranges"
	"smile/internal/pkgs/regex"
	"smile/internal/pkgs/sql"
	"smile/internal/pkgs/stdio"
	"smile/internal/pkgs/uuid"
	"smile/internal/scope"
	"smile/internal/vm"
)

var commandAliases = map[string]string{
	"r": "run",
	"i": "repl",
	"c": "check",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Println("smile 0.1.0")
	case "run":
		if len(args) < 2 {
			fatal("run: no file given")
		}
		runFile(args[1])
	case "check":
		if len(args) < 2 {
			fatal("check: no file given")
		}
		checkFile(args[1])
	case "repl":
		startREPL()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`usage: smile <command> [args]

commands:
  run <file>     compile and execute a source file
  check <file>   parse and compile a source file, reporting diagnostics only
  repl           start an interactive read-eval-print loop
  version        print the interpreter version`)
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func newContext() *config.RuntimeContext {
	ctx, err := config.Init()
	if err != nil {
		fatal(fmt.Sprintf("failed to initialise runtime: %v", err))
	}
	installPackages(ctx)
	return ctx
}

// installPackages registers every built-in module spec §4.L names
// against the context's loader, so `#include <pkg>` can resolve them.
func installPackages(ctx *config.RuntimeContext) {
	ctx.Modules.RegisterBuiltin(&module.Builtin{Name: "stdio", Install: stdio.Install})
	ctx.Modules.RegisterBuiltin(&module.Builtin{Name: "sql", Install: sql.Install})
	ctx.Modules.RegisterBuiltin(&module.Builtin{Name: "net", Install: net.Install})
	ctx.Modules.RegisterBuiltin(&module.Builtin{Name: "uuid", Install: uuid.Install})
	ctx.Modules.RegisterBuiltin(&module.Builtin{Name: "crypto", Install: crypto.Install})
	ctx.Modules.RegisterBuiltin(&module.Builtin{Name: "regex", Install: regex.Install})
	ctx.Modules.RegisterBuiltin(&module.Builtin{Name: "range", Install: ranges.Install})
	ctx.Modules.RegisterBuiltin(&module.Builtin{Name: "clock", Install: clock.Install})
}

func runFile(path string) {
	ctx := newContext()
	src, err := os.ReadFile(path)
	if err != nil {
		fatal(fmt.Sprintf("could not read file: %v", err))
	}

	sc := scope.Begin(nil, scope.Outermost)
	p := parser.New(path, string(src), sc, ctx.Symbols)
	p.SyntaxIncluder = ctx.Modules
	p.SourceDir = filepath.Dir(path)
	prog, diags := p.ParseProgram()
	if diags.HasErrors() {
		reportDiagnostics(diags)
		os.Exit(1)
	}

	seg, _, numLocals, _, err := compiler.CompileGlobalInto(prog, ctx.Symbols, ctx.VM.Tables, ctx.Modules, filepath.Dir(path))
	if err != nil {
		fatal(fmt.Sprintf("compile error: %v", err))
	}

	if _, err := vm.Run(ctx.VM, seg, numLocals); err != nil {
		fatal(fmt.Sprintf("runtime error: %v", err))
	}
}

func checkFile(path string) {
	ctx := newContext()
	src, err := os.ReadFile(path)
	if err != nil {
		fatal(fmt.Sprintf("could not read file: %v", err))
	}

	sc := scope.Begin(nil, scope.Outermost)
	p := parser.New(path, string(src), sc, ctx.Symbols)
	p.SyntaxIncluder = ctx.Modules
	p.SourceDir = filepath.Dir(path)
	prog, diags := p.ParseProgram()
	if !diags.HasErrors() {
		_, _, _, _, err = compiler.CompileGlobalInto(prog, ctx.Symbols, ctx.VM.Tables, ctx.Modules, filepath.Dir(path))
		if err != nil {
			diags.Add(diag.New(diag.Error, diag.CompileTime, diag.Position{File: path}, err.Error()))
		}
	}

	reportDiagnostics(diags)
	if diags.HasErrors() {
		os.Exit(1)
	}
	fmt.Println("ok")
}

func startREPL() {
	ctx := newContext()
	fmt.Println("smile REPL | type 'exit' to quit")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(">>> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" {
			break
		}

		sc := scope.Begin(nil, scope.Outermost)
		p := parser.New("<repl>", line, sc, ctx.Symbols)
		prog, diags := p.ParseProgram()
		if diags.HasErrors() {
			reportDiagnostics(diags)
			continue
		}

		seg, _, numLocals, _, err := compiler.CompileGlobalInto(prog, ctx.Symbols, ctx.VM.Tables, ctx.Modules, ".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "compile error: %v\n", err)
			continue
		}

		result, err := vm.Run(ctx.VM, seg, numLocals)
		if err != nil {
			fmt.Fprintf(os.Stderr, "runtime error: %v\n", err)
			continue
		}
		fmt.Println(result.ToString())
	}
}

// colorize wraps msg in ANSI red when stderr is a terminal, matching the
// teacher's colorized-output convention for CLI error reporting.
func colorize(msg string) string {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return "\x1b[31m" + msg + "\x1b[0m"
	}
	return msg
}

func reportDiagnostics(diags diag.Bag) {
	for _, d := range diags.Items {
		fmt.Fprint(os.Stderr, colorize(d.Render()))
	}
}

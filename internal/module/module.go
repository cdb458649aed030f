// Package module implements the include/module loader of spec §4.L: it
// resolves `#include "path"` against the including file's directory and
// `#include <pkg>` against the built-in package registry, parsing,
// compiling, and running each source unit exactly once and memoising the
// result by absolute path (or package name) so a second `#include` of the
// same unit reuses the cached ModuleInfo instead of re-running it (spec
// §8 scenario F). Grounded on the teacher's internal/module.ModuleLoader,
// generalised from its ad hoc built-in-module switch to the registry
// pattern internal/builtin already uses for native functions.
package module

import (
	"os"
	"path/filepath"
	"sync"

	"smile/internal/compiler"
	"smile/internal/diag"
	"smile/internal/parser"
	"smile/internal/scope"
	"smile/internal/symbol"
	"smile/internal/value"
	"smile/internal/vm"
)

// Info is the spec §3.7 ModuleInfo tuple: a cache entry keyed by absolute
// path (user files) or package name (built-ins), carrying its parsed tree,
// the ParseScope it was parsed in (needed by `#include :syntax`), the
// named values it exposes once run, and any diagnostics collected along
// the way.
type Info struct {
	Name   string
	Loaded bool
	Progn  *parser.Progn
	Scope  *scope.Scope
	Diags  diag.Bag
	Values map[string]value.Value

	// LoadCount is bumped exactly once per real load, even though Include
	// may be called many times against the cached entry — the mechanism
	// spec §8 scenario F's "runs only once" assertion checks.
	LoadCount int
}

// Builtin is a registered `#include <pkg>` package: a constructor that
// returns the named values the package exposes (the core loader only
// needs those values to populate Info.Values; package wiring itself
// happens in internal/pkgs via builtin.SetupFunction against the shared
// VM's globals, which Install receives for exactly that purpose).
type Builtin struct {
	Name    string
	Install func(v *vm.VM, symbols *symbol.Table) map[string]value.Value
}

// Loader resolves and memoises module loads for one running program. One
// Loader is shared by every #include site reachable from a given
// top-level compile, and all included files run against the same VM, so
// their side effects (global bindings, the cloud/database/network handles
// internal/pkgs hands out) are visible to every file that includes them.
type Loader struct {
	mu       sync.RWMutex
	cache    map[string]*Info
	builtins map[string]*Builtin
	symbols  *symbol.Table
	vm       *vm.VM
}

func NewLoader(symbols *symbol.Table, v *vm.VM) *Loader {
	return &Loader{
		cache:    make(map[string]*Info),
		builtins: make(map[string]*Builtin),
		symbols:  symbols,
		vm:       v,
	}
}

// RegisterBuiltin installs pkg under its own name, making it resolvable by
// `#include <name>` (spec §6.3 "otherwise ⇒ installed package name looked
// up in the built-in registry").
func (l *Loader) RegisterBuiltin(pkg *Builtin) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.builtins[pkg.Name] = pkg
}

// UnknownModuleError is returned by Load when neither a filesystem path nor
// a built-in package resolves target (spec §6.3). No Info is created or
// cached for the failed name.
type UnknownModuleError struct{ Name string }

func (e *UnknownModuleError) Error() string { return "unknown module: " + e.Name }

// Load resolves target per spec §6.3: a path-shaped target (leading `.`,
// `/`, or a trailing alphabetic extension) is a filesystem path resolved
// against fromDir; anything else is looked up as a built-in package name.
// It parses and runs the target exactly once, caching the resulting Info
// by absolute path (or package name) for every subsequent call.
func (l *Loader) Load(target string, isPath bool, fromDir string) (*Info, error) {
	if !isPath && looksLikePath(target) {
		isPath = true
	}
	if isPath {
		abs, err := resolvePath(target, fromDir)
		if err != nil {
			return nil, err
		}
		return l.loadPath(abs)
	}
	return l.loadBuiltin(target)
}

// Include implements compiler.Includer: it loads target and returns its
// exported name→value bindings (spec §4.L's bound form).
func (l *Loader) Include(target string, isPath bool, fromDir string) ([]compiler.IncludeBinding, error) {
	info, err := l.Load(target, isPath, fromDir)
	if err != nil {
		return nil, err
	}
	bindings := make([]compiler.IncludeBinding, 0, len(info.Values))
	for name, v := range info.Values {
		bindings = append(bindings, compiler.IncludeBinding{Name: name, Value: v})
	}
	return bindings, nil
}

// IncludeSyntax implements parser.SyntaxIncluder: it loads (or reuses the
// cached load of) target and returns the ParseScope it was parsed in, so
// the including file's scope can copy its syntax rules (spec §4.L
// `#include :syntax`).
func (l *Loader) IncludeSyntax(target string, isPath bool, fromDir string) (*scope.Scope, error) {
	info, err := l.Load(target, isPath, fromDir)
	if err != nil {
		return nil, err
	}
	return info.Scope, nil
}

func looksLikePath(target string) bool {
	if len(target) == 0 {
		return false
	}
	if target[0] == '.' || target[0] == '/' {
		return true
	}
	ext := filepath.Ext(target)
	for _, r := range ext {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}

func resolvePath(target, fromDir string) (string, error) {
	p := target
	if !filepath.IsAbs(p) {
		p = filepath.Join(fromDir, p)
	}
	return filepath.Abs(p)
}

func (l *Loader) loadPath(abs string) (*Info, error) {
	l.mu.RLock()
	if info, ok := l.cache[abs]; ok {
		l.mu.RUnlock()
		return info, nil
	}
	l.mu.RUnlock()

	info := &Info{Name: abs, Values: map[string]value.Value{}}

	src, err := os.ReadFile(abs)
	if err != nil {
		info.Diags.Add(diag.New(diag.Error, diag.Semantic, diag.Position{File: abs}, err.Error()))
		l.store(abs, info)
		return info, err
	}

	sc := scope.Begin(nil, scope.Outermost)
	p := parser.New(abs, string(src), sc, l.symbols)
	p.SyntaxIncluder = l
	p.SourceDir = filepath.Dir(abs)
	progn, diags := p.ParseProgram()
	info.Progn, info.Scope, info.Diags = progn, sc, diags
	if diags.HasErrors() {
		l.store(abs, info)
		return info, nil
	}

	seg, _, numLocals, names, err := compiler.CompileGlobalInto(progn, l.symbols, l.vm.Tables, l, filepath.Dir(abs))
	if err != nil {
		info.Diags.Add(diag.New(diag.Error, diag.CompileTime, diag.Position{File: abs}, err.Error()))
		l.store(abs, info)
		return info, nil
	}

	_, top, err := vm.RunCapture(l.vm, seg, numLocals)
	if err != nil {
		info.Diags.Add(diag.New(diag.Error, diag.RuntimeEval, diag.Position{File: abs}, err.Error()))
		l.store(abs, info)
		return info, err
	}
	for i, name := range names {
		info.Values[name] = top.Locals[i]
	}
	info.Loaded = true
	info.LoadCount = 1
	l.store(abs, info)
	return info, nil
}

func (l *Loader) loadBuiltin(name string) (*Info, error) {
	l.mu.RLock()
	if info, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return info, nil
	}
	pkg, ok := l.builtins[name]
	l.mu.RUnlock()
	if !ok {
		return nil, &UnknownModuleError{Name: name}
	}
	info := &Info{Name: name, Loaded: true, LoadCount: 1, Values: pkg.Install(l.vm, l.symbols)}
	l.store(name, info)
	return info, nil
}

func (l *Loader) store(key string, info *Info) {
	l.mu.Lock()
	l.cache[key] = info
	l.mu.Unlock()
}

// Package config implements the RuntimeContext of spec §9: the
// process-wide singletons (symbol table, hash oracle, module cache, base
// objects, search paths) the C core accessed through header-scoped
// globals, wired here behind one struct constructed once by the CLI and
// threaded explicitly through every constructor that needs it. Grounded
// on the teacher's internal/buildutil + main.go flag handling, adapted
// from bytecode-file metadata bookkeeping to interpreter-wide
// configuration.
package config

import (
	"crypto/rand"
	"encoding/binary"
	"os"
	"path/filepath"

	"smile/internal/dict"
	"smile/internal/ir"
	"smile/internal/module"
	"smile/internal/symbol"
	"smile/internal/vm"
)

// RuntimeContext bundles the shared state one running program needs:
// the interned-symbol table, the module loader (with its built-in
// registry and path cache), and a search path. SearchPath is recorded here
// only: the module loader does not consult it, and an `#include` that names
// a package resolves against the built-in registry alone.
type RuntimeContext struct {
	Symbols    *symbol.Table
	VM         *vm.VM
	Modules    *module.Loader
	SearchPath []string
}

// Init constructs a fresh RuntimeContext: seeds the global hash oracle
// from real entropy (spec §9 "Init ... initialised once"), builds the
// symbol table and VM, wires a module loader, and records a default search
// path of the current working directory plus $SMILE_PATH entries.
func Init() (*RuntimeContext, error) {
	if err := seedOracle(); err != nil {
		return nil, err
	}

	symbols := symbol.New()
	// One CompiledTables is shared by the main program and every file it
	// #includes: the VM resolves NewFn/NewTill operands as indices into
	// a single table (spec §4.J), so every unit compiled against this
	// context must append to the same instance rather than each getting
	// its own.
	tables := ir.NewCompiledTables()
	v := vm.New(tables, symbols)
	loader := module.NewLoader(symbols, v)

	return &RuntimeContext{
		Symbols:    symbols,
		VM:         v,
		Modules:    loader,
		SearchPath: defaultSearchPath(),
	}, nil
}

func seedOracle() error {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return err
	}
	dict.SeedOracle(binary.LittleEndian.Uint64(buf[:]))
	return nil
}

// defaultSearchPath returns the working directory followed by every
// colon-separated entry in $SMILE_PATH, mirroring the teacher's
// convention of listing a local directory before any configured library
// path. The local entry is "." (the process's working directory), not the
// directory of the file being run.
func defaultSearchPath() []string {
	paths := []string{"."}
	if envPath := os.Getenv("SMILE_PATH"); envPath != "" {
		paths = append(paths, filepath.SplitList(envPath)...)
	}
	return paths
}

// Teardown releases the context's references (spec §9 "Teardown releases
// references"). The garbage collector owns the rest; there is nothing
// else here that outlives the process without it.
func (rc *RuntimeContext) Teardown() {
	rc.Modules = nil
	rc.VM = nil
}

// Package stdio implements the `stdio` built-in module (spec.md's one
// worked example of the module loader's contract, §6.3): read/write/print
// on open file handles. Grounded on the teacher's internal/filesystem
// package for the open/hash/close lifecycle of a file resource, trimmed
// down from its security-scanning surface to the plain I/O operations
// spec.md actually names.
package stdio

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"smile/internal/builtin"
	"smile/internal/symbol"
	"smile/internal/value"
	"smile/internal/vm"
)

// fileHandle is the resource behind a `file` Handle: an *os.File plus a
// buffered reader for line-oriented reads.
type fileHandle struct {
	f      *os.File
	reader *bufio.Reader
}

// Install registers stdio's external functions as VM globals (via the
// same registry §4.K uses for the core) and returns the same set keyed by
// name, so `#include stdio` can also bind them as local names (spec
// §4.L).
func Install(v *vm.VM, symbols *symbol.Table) map[string]value.Value {
	fns := map[string]func(args []value.Value) (value.Value, error){
		"stdio.open":  stdioOpen,
		"stdio.read":  stdioRead,
		"stdio.write": stdioWrite,
		"stdio.print": stdioPrint,
		"stdio.close": stdioClose,
		"stdio.hash":  stdioHash,
	}
	out := make(map[string]value.Value, len(fns))
	for name, fn := range fns {
		builtin.SetupFunction(v, symbols, name, 0, -1, fn)
		val, _ := v.GetGlobal(symbols.GetSymbol(name))
		out[name] = val
	}
	return out
}

func asString(v value.Value) (string, bool) {
	if v.Kind != value.KString {
		return "", false
	}
	return v.ToString(), true
}

func asHandle(v value.Value) (*value.Handle, bool) {
	if v.Kind != value.KHandle {
		return nil, false
	}
	h, ok := v.Obj.(*value.Handle)
	return h, ok
}

// stdio.open(path, mode) -> Handle. mode is "r", "w", or "a".
func stdioOpen(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Null, fmt.Errorf("stdio.open expects (path, mode)")
	}
	path, ok := asString(args[0])
	if !ok {
		return value.Null, fmt.Errorf("stdio.open: path must be a string")
	}
	mode, ok := asString(args[1])
	if !ok {
		return value.Null, fmt.Errorf("stdio.open: mode must be a string")
	}

	var flag int
	switch mode {
	case "r":
		flag = os.O_RDONLY
	case "w":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "a":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return value.Null, fmt.Errorf("stdio.open: unknown mode %q", mode)
	}

	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return value.Null, err
	}
	fh := &fileHandle{f: f, reader: bufio.NewReader(f)}
	return value.NewHandle("file", fh, map[string]func([]value.Value) (value.Value, error){
		"read-line": func(_ []value.Value) (value.Value, error) {
			line, err := fh.reader.ReadString('\n')
			if err != nil && err != io.EOF {
				return value.Null, err
			}
			if line == "" && err == io.EOF {
				return value.Null, nil
			}
			return value.NewString(line), nil
		},
	}, fh.f.Close), nil
}

// stdio.read(handle, n) -> String. Reads up to n bytes (or the rest of
// the file when n <= 0).
func stdioRead(args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return value.Null, fmt.Errorf("stdio.read expects a handle")
	}
	h, ok := asHandle(args[0])
	if !ok {
		return value.Null, fmt.Errorf("stdio.read: not a handle")
	}
	fh, ok := h.Resource.(*fileHandle)
	if !ok {
		return value.Null, fmt.Errorf("stdio.read: not a file handle")
	}

	n := -1
	if len(args) >= 2 && args[1].Kind.IsPrimitive() {
		n = int(args[1].AsInt64())
	}

	if n <= 0 {
		data, err := io.ReadAll(fh.reader)
		if err != nil {
			return value.Null, err
		}
		return value.NewString(string(data)), nil
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(fh.reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return value.Null, err
	}
	return value.NewString(string(buf[:read])), nil
}

// stdio.write(handle, text) -> Int64 (bytes written).
func stdioWrite(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Null, fmt.Errorf("stdio.write expects (handle, text)")
	}
	h, ok := asHandle(args[0])
	if !ok {
		return value.Null, fmt.Errorf("stdio.write: not a handle")
	}
	fh, ok := h.Resource.(*fileHandle)
	if !ok {
		return value.Null, fmt.Errorf("stdio.write: not a file handle")
	}
	text, ok := asString(args[1])
	if !ok {
		return value.Null, fmt.Errorf("stdio.write: text must be a string")
	}
	n, err := fh.f.WriteString(text)
	if err != nil {
		return value.Null, err
	}
	return value.Int64(int64(n)), nil
}

// stdio.print(text) -> Null. Writes to the process's standard output.
func stdioPrint(args []value.Value) (value.Value, error) {
	for _, a := range args {
		fmt.Print(a.ToString())
	}
	return value.Null, nil
}

// stdio.close(handle) -> Null.
func stdioClose(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, fmt.Errorf("stdio.close expects a handle")
	}
	h, ok := asHandle(args[0])
	if !ok {
		return value.Null, fmt.Errorf("stdio.close: not a handle")
	}
	return value.Null, h.Close()
}

// stdio.hash(path) -> String (SHA-256 hex digest), grounded on the
// teacher's FileBaseline checksum fields.
func stdioHash(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, fmt.Errorf("stdio.hash expects a path")
	}
	path, ok := asString(args[0])
	if !ok {
		return value.Null, fmt.Errorf("stdio.hash: path must be a string")
	}
	f, err := os.Open(path)
	if err != nil {
		return value.Null, err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return value.Null, err
	}
	return value.NewString(hex.EncodeToString(h.Sum(nil))), nil
}

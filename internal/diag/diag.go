// Package diag implements the spec's unified diagnostic format (§6.5) and
// error taxonomy (§7): every stage of the pipeline — lexer, parser,
// compiler, VM — reports through a *Diagnostic, so the CLI layer has one
// shape to render regardless of which stage produced it.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

type Severity string

const (
	Info  Severity = "info"
	Warn  Severity = "warn"
	Error Severity = "error"
	Fatal Severity = "fatal"
)

// Kind is the spec §7 error taxonomy.
type Kind string

const (
	Syntactic       Kind = "syntactic"
	Semantic        Kind = "semantic"
	CompileTime     Kind = "compile-time"
	RuntimeNative   Kind = "native_method_error"
	RuntimeProperty Kind = "property_error"
	RuntimeSecurity Kind = "object_security_error"
	RuntimeEval     Kind = "eval_error"
	FatalInvariant  Kind = "fatal"
)

type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Diagnostic is the spec §6.5 tuple (severity, position, message), with an
// optional wrapped cause chain (built with github.com/pkg/errors, matching
// the teacher's SentraError.WithStack convention) for runtime errors that
// carry a call-stack trace.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Pos      Position
	Message  string
	Stack    []StackFrame
	cause    error
}

type StackFrame struct {
	Function string
	Pos      Position
}

func New(sev Severity, kind Kind, pos Position, msg string) *Diagnostic {
	return &Diagnostic{Severity: sev, Kind: kind, Pos: pos, Message: msg}
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s at %s", d.Kind, d.Message, d.Pos)
}

// Wrap attaches cause via pkg/errors so %+v formatting on the returned
// error still shows the original stack, matching spec §7's requirement
// that runtime errors carry a reconstructable trace.
func (d *Diagnostic) Wrap(cause error) *Diagnostic {
	d.cause = errors.Wrap(cause, d.Message)
	return d
}

func (d *Diagnostic) Cause() error { return errors.Cause(d.cause) }

func (d *Diagnostic) WithFrame(fn string, pos Position) *Diagnostic {
	d.Stack = append(d.Stack, StackFrame{Function: fn, Pos: pos})
	return d
}

// Render formats the diagnostic the way the runtime prints uncaught
// errors: "<kind>: <message>" followed by a stack trace built from
// recorded SourceLocations (spec §7).
func (d *Diagnostic) Render() string {
	s := fmt.Sprintf("%s: %s\n  at %s\n", d.Kind, d.Message, d.Pos)
	for _, f := range d.Stack {
		if f.Function != "" {
			s += fmt.Sprintf("  at %s (%s)\n", f.Function, f.Pos)
		} else {
			s += fmt.Sprintf("  at %s\n", f.Pos)
		}
	}
	return s
}

// Bag collects diagnostics across a parse/compile run, matching the
// spec's "the parser collects messages and continues after recovery"
// propagation rule (§7).
type Bag struct {
	Items []*Diagnostic
}

func (b *Bag) Add(d *Diagnostic) { b.Items = append(b.Items, d) }

func (b *Bag) HasErrors() bool {
	for _, d := range b.Items {
		if d.Severity == Error || d.Severity == Fatal {
			return true
		}
	}
	return false
}

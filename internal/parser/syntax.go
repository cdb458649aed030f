package parser

import (
	"smile/internal/lexer"
	"smile/internal/scope"
	"smile/internal/value"
)

// SyntaxIncluder resolves `#include "path" :syntax` (spec §4.L) to the
// scope whose rules should be copied into the including scope, parsing
// and loading the target first if it hasn't been already. Implemented by
// internal/module's Loader, which already caches each module's ParseScope
// for exactly this purpose.
type SyntaxIncluder interface {
	IncludeSyntax(target string, isPath bool, fromDir string) (*scope.Scope, error)
}

// SyntaxReplacement is the replacement payload this core installs for a
// #syntax rule. The original `applysyntax.c` builds an arbitrary
// S-expression template out of the matched submatches; this core narrows
// that to a call against a user-named function, passing the captured
// nonterminal submatches as arguments in pattern order. See DESIGN.md's
// "Syntax table" entry for why: a general template would need either
// compiler support for replacement trees built from raw value.Value data,
// or extending the quote/splice machinery to substitute parsed Expr nodes
// for bound template variables, both bigger than this pass's scope.
type SyntaxReplacement struct {
	FnName string
}

// isSyntaxClassName reports whether a #syntax pattern element should be
// treated as a nonterminal reference rather than a literal terminal: an
// all-uppercase name, the same convention the nine builtin classes
// (STMT, EXPR, CMPEXPR, ...) already use.
func isSyntaxClassName(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if r == '_' {
			continue
		}
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// parseSyntaxDecl parses `#syntax ClassName elem elem ... : fnname`,
// installing the rule into the current scope's syntax table (spec §4.E).
// The pattern runs until a ':' or a statement terminator; everything
// after the ':' is the replacement function's name.
func (p *Parser) parseSyntaxDecl(m ModeFlags) Expr {
	pos := p.tok.Pos
	p.advance() // '#syntax'
	classTok, _ := p.expect(lexer.TAlphaName)

	var pattern []scope.PatternElem
	for !p.at(lexer.TColon) && !p.atStmtEnd() {
		elem := p.tok.Text
		p.advance()
		pattern = append(pattern, scope.PatternElem{IsNonterminal: isSyntaxClassName(elem), Text: elem})
	}

	var fnName string
	if p.at(lexer.TColon) {
		p.advance()
		fnTok, _ := p.expect(lexer.TAlphaName)
		fnName = fnTok.Text
	}

	p.Scope.AddSyntaxRule(classTok.Text, &scope.Rule{
		Pattern:     pattern,
		Replacement: &SyntaxReplacement{FnName: fnName},
	})
	return &Literal{base: base{pos}, Val: value.Null}
}

// applySyntax consults class's rule tree in the current scope. If the
// current token opens a registered rule it parses the whole pattern,
// recursing into any nonterminal elements through parseClass, and
// desugars the match into a call against the rule's replacement function
// (spec §4.F). ok is false when no rule in class starts with the current
// token, in which case the caller falls back to its own builtin
// production.
//
// Only rules whose pattern begins with a terminal can trigger here: a
// rule starting with a nonterminal reference is registered (so
// #syntax/#include :syntax never fail) but can't be detected without
// committing to parse — and possibly discard — an arbitrary
// sub-expression, which this recursive-descent parser has no backtracking
// support for.
func (p *Parser) applySyntax(class string, m ModeFlags) (Expr, bool) {
	root := p.Scope.SyntaxTable().Root(class)
	next, ok := root.NextTerminals[p.tok.Text]
	if !ok {
		return nil, false
	}
	pos := p.tok.Pos
	p.advance()
	return p.walkSyntax(next, pos, m, nil)
}

// walkSyntax follows node through the rule tree, alternately matching an
// incoming terminal token or recursively parsing a referenced nonterminal
// class, until no edge out of the current node matches (or a Replacement
// is found).
func (p *Parser) walkSyntax(node *scope.Node, pos lexer.Position, m ModeFlags, captured []Expr) (Expr, bool) {
	for {
		if next, ok := node.NextTerminals[p.tok.Text]; ok {
			p.advance()
			node = next
			continue
		}
		advanced := false
		for className, next := range node.NextNonterminals {
			captured = append(captured, p.parseClass(className, m))
			node = next
			advanced = true
			break
		}
		if !advanced {
			break
		}
	}
	repl, ok := node.Replacement.(*SyntaxReplacement)
	if !ok {
		return nil, false
	}
	return &Call{base: base{pos}, Callee: &Ident{base: base{pos}, Name: repl.FnName}, Args: captured}, true
}

// parseClass dispatches a nonterminal reference inside a #syntax pattern
// to the precedence-level production it names. The nine builtin classes
// map onto this parser's (already-collapsed, see parsePrefix) precedence
// chain; BINARYEXPR and PREFIXEXPR share parsePrefix since this core
// never split them into separate productions. Anything else is a
// user-declared custom class, resolved purely through the syntax table.
func (p *Parser) parseClass(class string, m ModeFlags) Expr {
	switch class {
	case "STMT":
		return p.parseStmt(m)
	case "EXPR":
		return p.parseOr(m)
	case "CMPEXPR":
		return p.parseCmp(m)
	case "ADDEXPR":
		return p.parseAdd(m)
	case "MULEXPR":
		return p.parseMul(m)
	case "BINARYEXPR", "PREFIXEXPR":
		return p.parsePrefix(m)
	case "POSTFIXEXPR":
		return p.parsePostfix(m)
	case "TERM":
		return p.parseTerm(m)
	default:
		if e, ok := p.applySyntax(class, m); ok {
			return e
		}
		p.errorf("no syntax rule matched for class %q", class)
		return &Literal{base: base{p.tok.Pos}, Val: value.Null}
	}
}

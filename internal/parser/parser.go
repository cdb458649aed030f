package parser

import (
	"fmt"

	"smile/internal/diag"
	"smile/internal/lexer"
	"smile/internal/scope"
	"smile/internal/symbol"
	"smile/internal/value"
)

// ModeFlags is the mode-flag set threaded down through every production,
// per spec §4.F.
type ModeFlags struct {
	BinaryLineBreaksAllowed bool
	CommaIsVarDecl          bool
	ColonIsMemberDecl       bool
}

func DefaultModes() ModeFlags { return ModeFlags{} }

// Status is the ParseResult status enum (spec §4.F).
type Status int

const (
	StatusOK Status = iota
	StatusNoResult
	StatusPartialError
	StatusNotMatched
	StatusRecovered
)

type Result struct {
	Status Status
	Expr   Expr
	Err    *diag.Diagnostic
}

// Parser is the recursive-descent parser: per-token lookahead over a
// lexer.Scanner, a current ParseScope for name declarations and the
// syntax table, and a diagnostic bag collecting every error so multiple
// problems can be reported from one parse (spec §7 "the parser collects
// messages and continues after recovery").
type Parser struct {
	sc      *lexer.Scanner
	file    string
	tok     lexer.Token
	Scope   *scope.Scope
	Symbols *symbol.Table
	Diags   diag.Bag

	// SyntaxIncluder resolves `#include "path" :syntax` to the scope whose
	// rules should be copied in (spec §4.L); nil for a Parser used outside
	// a module context (REPL one-liners, tests), in which case :syntax
	// includes parse but import nothing. Set by internal/module's Loader.
	SyntaxIncluder SyntaxIncluder
	// SourceDir is the directory #include paths in this file resolve
	// against, used only when SyntaxIncluder is set.
	SourceDir string
}

func New(file, src string, sc *scope.Scope, symbols *symbol.Table) *Parser {
	p := &Parser{sc: lexer.New(file, src), file: file, Scope: sc, Symbols: symbols}
	p.advance()
	return p
}

func (p *Parser) advance() { p.tok = p.sc.Next() }

func (p *Parser) pos() diag.Position {
	return diag.Position{File: p.file, Line: p.tok.Pos.Line, Column: p.tok.Pos.Col}
}

func (p *Parser) errorf(format string, args ...interface{}) *diag.Diagnostic {
	d := diag.New(diag.Error, diag.Syntactic, p.pos(), fmt.Sprintf(format, args...))
	p.Diags.Add(d)
	return d
}

func (p *Parser) at(k lexer.TokenKind) bool { return p.tok.Kind == k }

func (p *Parser) expect(k lexer.TokenKind) (lexer.Token, bool) {
	if p.tok.Kind != k {
		p.errorf("expected %s, got %s %q", k, p.tok.Kind, p.tok.Text)
		return p.tok, false
	}
	t := p.tok
	p.advance()
	return t, true
}

// recover skips tokens until the small set the parser resyncs on after an
// error: end of input, right-brackets, bar, semicolon, or a name (spec §4.F
// error recovery).
func (p *Parser) recover() {
	for {
		switch p.tok.Kind {
		case lexer.TEOI, lexer.TRParen, lexer.TRBracket, lexer.TRBrace, lexer.TBar, lexer.TSemi, lexer.TAlphaName:
			return
		}
		p.advance()
	}
}

// ParseProgram parses a whole source unit as an implicit progn of
// statements.
func (p *Parser) ParseProgram() (*Progn, diag.Bag) {
	pos := p.tok.Pos
	var exprs []Expr
	for !p.at(lexer.TEOI) {
		e := p.parseStmt(DefaultModes())
		if e == nil {
			p.recover()
			continue
		}
		exprs = append(exprs, e)
		for p.at(lexer.TSemi) {
			p.advance()
		}
	}
	return &Progn{base: base{toPos(pos, p.file)}, Exprs: exprs}, p.Diags
}

func toPos(p lexer.Position, file string) lexer.Position {
	p.File = file
	return p
}

// ParseOne parses exactly one statement.
func (p *Parser) ParseOne() Result {
	e := p.parseStmt(DefaultModes())
	if e == nil {
		return Result{Status: StatusPartialError}
	}
	return Result{Status: StatusOK, Expr: e}
}

// --- expression precedence chain -------------------------------------------------
//
// or < and < not < cmp < add < mul < binary < colon < range < prefix < new
// < postfix < cons < dot < term, per spec §4.F.

func (p *Parser) parseExpr(m ModeFlags) Expr {
	return p.parseAssign(m)
}

// parseAssign implements `expr -> opequals ('=' opequals)*` right-
// associatively, with the special rule: an unknown name immediately
// followed by '=' is declared in the current scope before the right-hand
// side is parsed, so `x = x + 1` in a fresh scope reads an *unassigned*
// local x rather than an outer one (spec §4.F).
func (p *Parser) isEquals() bool {
	return p.tok.Kind == lexer.TPunctName && p.tok.Text == "="
}

func (p *Parser) parseAssign(m ModeFlags) Expr {
	if p.at(lexer.TAlphaName) {
		name := p.tok.Text
		namePos := p.tok.Pos
		p.advance() // consume the name; p.tok is now one token of lookahead
		if p.isEquals() {
			if p.Scope.LookupLocal(name) == nil {
				p.Scope.DeclareHere(name, scope.Variable, scope.Position{File: p.file, Line: namePos.Line, Col: namePos.Col})
			}
			p.advance() // '='
			rhs := p.parseAssign(m)
			return &Assign{base: base{namePos}, Target: &Ident{base: base{namePos}, Name: name}, Value: rhs}
		}
		// Not an assignment after all: put the lookahead token back and
		// re-present the name as the current token, so normal precedence
		// parsing (parseOr -> ... -> parseTerm) consumes it itself.
		p.sc.Unget()
		p.tok = lexer.Token{Kind: lexer.TAlphaName, Text: name, Pos: namePos}
	}
	left := p.parseOr(m)
	if p.isEquals() {
		p.advance()
		rhs := p.parseAssign(m)
		return &Assign{base: base{left.Pos()}, Target: left, Value: rhs}
	}
	return left
}

func (p *Parser) parseOr(m ModeFlags) Expr {
	if e, ok := p.applySyntax("EXPR", m); ok {
		return e
	}
	left := p.parseAnd(m)
	for p.tok.Kind == lexer.TOr {
		opPos := p.tok.Pos
		p.advance()
		right := p.parseAnd(m)
		left = &Binary{base: base{opPos}, Op: "or", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd(m ModeFlags) Expr {
	left := p.parseNot(m)
	for p.tok.Kind == lexer.TAnd {
		opPos := p.tok.Pos
		p.advance()
		right := p.parseNot(m)
		left = &Binary{base: base{opPos}, Op: "and", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseNot(m ModeFlags) Expr {
	if p.tok.Kind == lexer.TNot {
		pos := p.tok.Pos
		p.advance()
		operand := p.parseNot(m)
		return &Unary{base: base{pos}, Op: "not", Operand: operand}
	}
	return p.parseCmp(m)
}

var cmpOps = map[string]bool{"<": true, ">": true, "<=": true, ">=": true, "==": true, "!=": true}

func (p *Parser) parseCmp(m ModeFlags) Expr {
	if e, ok := p.applySyntax("CMPEXPR", m); ok {
		return e
	}
	left := p.parseAdd(m)
	for p.tok.Kind == lexer.TPunctName && cmpOps[p.tok.Text] {
		op := p.tok.Text
		pos := p.tok.Pos
		p.advance()
		right := p.parseAdd(m)
		left = &Binary{base: base{pos}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdd(m ModeFlags) Expr {
	if e, ok := p.applySyntax("ADDEXPR", m); ok {
		return e
	}
	left := p.parseMul(m)
	for p.tok.Kind == lexer.TPunctName && (p.tok.Text == "+" || p.tok.Text == "-") {
		op := p.tok.Text
		pos := p.tok.Pos
		p.advance()
		right := p.parseMul(m)
		left = &Binary{base: base{pos}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMul(m ModeFlags) Expr {
	if e, ok := p.applySyntax("MULEXPR", m); ok {
		return e
	}
	left := p.parsePrefix(m)
	for p.tok.Kind == lexer.TPunctName && (p.tok.Text == "*" || p.tok.Text == "/" || p.tok.Text == "%") {
		op := p.tok.Text
		pos := p.tok.Pos
		p.advance()
		right := p.parsePrefix(m)
		left = &Binary{base: base{pos}, Op: op, Left: left, Right: right}
	}
	return left
}

// parsePrefix covers unary '-' / 'new' / 'typeof', then falls through the
// remaining (compressed, for this implementation) binary/colon/range/cons
// levels straight to postfix/term, since this core's operator set doesn't
// need distinct precedence bands there beyond what parseCmp/parseAdd/
// parseMul already give user code.
func (p *Parser) parsePrefix(m ModeFlags) Expr {
	if e, ok := p.applySyntax("PREFIXEXPR", m); ok {
		return e
	}
	if e, ok := p.applySyntax("BINARYEXPR", m); ok {
		return e
	}
	if p.tok.Kind == lexer.TPunctName && p.tok.Text == "-" {
		pos := p.tok.Pos
		p.advance()
		return &Unary{base: base{pos}, Op: "-", Operand: p.parsePrefix(m)}
	}
	if p.tok.Kind == lexer.TTypeof {
		pos := p.tok.Pos
		p.advance()
		return &Unary{base: base{pos}, Op: "typeof", Operand: p.parsePrefix(m)}
	}
	if p.tok.Kind == lexer.TNew {
		pos := p.tok.Pos
		p.advance()
		return &Unary{base: base{pos}, Op: "new", Operand: p.parsePrefix(m)}
	}
	return p.parsePostfix(m)
}

func (p *Parser) parsePostfix(m ModeFlags) Expr {
	if e, ok := p.applySyntax("POSTFIXEXPR", m); ok {
		return e
	}
	left := p.parseTerm(m)
	for {
		switch {
		case p.tok.Kind == lexer.TLParen:
			left = p.parseCallArgs(left, m)
		case p.tok.Kind == lexer.TLBracket:
			p.advance()
			key := p.parseExpr(m)
			p.expect(lexer.TRBracket)
			left = &Index{base: base{left.Pos()}, Recv: left, Key: key}
		case p.tok.Kind == lexer.TColon && !m.ColonIsMemberDecl:
			pos := p.tok.Pos
			p.advance()
			name, _ := p.expect(lexer.TAlphaName)
			if p.tok.Kind == lexer.TLParen {
				call := p.parseCallArgs(&Ident{base: base{pos}, Name: name.Text}, m)
				c := call.(*Call)
				c.Method = name.Text
				c.Callee = left
				left = c
			} else {
				left = &PropertyAccess{base: base{pos}, Recv: left, Name: name.Text}
			}
		default:
			return left
		}
	}
}

func (p *Parser) parseCallArgs(callee Expr, m ModeFlags) Expr {
	pos := p.tok.Pos
	p.advance() // '('
	var args []Expr
	for !p.at(lexer.TRParen) && !p.at(lexer.TEOI) {
		args = append(args, p.parseExpr(m))
		if p.at(lexer.TComma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.TRParen)
	return &Call{base: base{pos}, Callee: callee, Args: args}
}

// parseTerm -> '(' expr ')' | scope '{' ... '}' | dynstring | raw_list_term
// | name | literal | fn_literal | loanword (spec §4.F).
func (p *Parser) parseTerm(m ModeFlags) Expr {
	if e, ok := p.applySyntax("TERM", m); ok {
		return e
	}
	tok := p.tok
	pos := tok.Pos
	switch tok.Kind {
	case lexer.TLParen:
		p.advance()
		e := p.parseExpr(m)
		p.expect(lexer.TRParen)
		return e
	case lexer.TLBrace:
		return p.parseDoBlock(m)
	case lexer.TDynString:
		p.advance()
		return &Literal{base: base{pos}, Val: value.NewString(tok.Payload.Text)}
	case lexer.TRawString:
		p.advance()
		return &Literal{base: base{pos}, Val: value.NewString(tok.Payload.Text)}
	case lexer.TInt64Lit, lexer.TInt32Lit, lexer.TInt16Lit, lexer.TByteLit:
		p.advance()
		return &Literal{base: base{pos}, Val: value.Int64(tok.Payload.Int)}
	case lexer.TFloat32Lit, lexer.TFloat64Lit, lexer.TFloat128Lit, lexer.TReal32Lit, lexer.TReal64Lit, lexer.TReal128Lit:
		p.advance()
		return &Literal{base: base{pos}, Val: value.Float64(tok.Payload.Float)}
	case lexer.TBar:
		return p.parseFnLiteral(m)
	case lexer.TBacktick:
		return p.parseQuote(m)
	case lexer.TLBracket:
		return p.parseRawList(m)
	case lexer.TAt:
		return p.parseQuote(m)
	case lexer.TAlphaName:
		// "const" and "auto" are not in the reserved keyword table (spec
		// §4.D's keyword list omits them) but are soft keywords in
		// declaration position, the same way "var" triggers parseVarDecl;
		// dispatch before consuming the token so parseVarDecl sees it.
		if tok.Text == "const" || tok.Text == "auto" {
			return p.parseVarDecl(m)
		}
		p.advance()
		if tok.Text == "true" {
			return &Literal{base: base{pos}, Val: value.Bool(true)}
		}
		if tok.Text == "false" {
			return &Literal{base: base{pos}, Val: value.Bool(false)}
		}
		if tok.Text == "null" {
			return &Literal{base: base{pos}, Val: value.Null}
		}
		return &Ident{base: base{pos}, Name: tok.Text}
	case lexer.TIf, lexer.TUnless:
		return p.parseIf(m)
	case lexer.TWhile, lexer.TUntil:
		return p.parseWhile(m)
	case lexer.TTill:
		return p.parseTill(m)
	case lexer.TVar:
		return p.parseVarDecl(m)
	case lexer.TReturn:
		p.advance()
		var v Expr
		if !p.atStmtEnd() {
			v = p.parseExpr(m)
		}
		return &Return{base: base{pos}, Value: v}
	case lexer.TTry:
		return p.parseTry(m)
	case lexer.TLoanwordInclude:
		return p.parseInclude(m)
	case lexer.TLoanwordSyntax:
		return p.parseSyntaxDecl(m)
	default:
		p.errorf("unexpected token %s %q", tok.Kind, tok.Text)
		p.advance()
		return &Literal{base: base{pos}, Val: value.Null}
	}
}

func (p *Parser) atStmtEnd() bool {
	switch p.tok.Kind {
	case lexer.TSemi, lexer.TRBrace, lexer.TEOI, lexer.TRParen:
		return true
	}
	return false
}

// parseStmt -> var_decl | const_decl | auto_decl | if/unless | while/until
// | do | till | try | return | include | expr (spec §4.F).
func (p *Parser) parseStmt(m ModeFlags) Expr {
	if e, ok := p.applySyntax("STMT", m); ok {
		return e
	}
	return p.parseExpr(m)
}

func (p *Parser) parseDoBlock(m ModeFlags) Expr {
	pos := p.tok.Pos
	p.advance() // '{'
	outer := p.Scope
	p.Scope = scope.Begin(outer, scope.ScopeDecl)
	var exprs []Expr
	for !p.at(lexer.TRBrace) && !p.at(lexer.TEOI) {
		exprs = append(exprs, p.parseStmt(m))
		for p.at(lexer.TSemi) {
			p.advance()
		}
	}
	p.expect(lexer.TRBrace)
	p.Scope.End(true)
	p.Scope = outer
	return &DoBlock{base: base{pos}, Body: exprs}
}

func (p *Parser) parseIf(m ModeFlags) Expr {
	pos := p.tok.Pos
	unless := p.tok.Kind == lexer.TUnless
	p.advance()
	cond := p.parseExpr(m)
	if p.tok.Kind == lexer.TThen {
		p.advance()
	}
	then := p.parseStmt(m)
	var els Expr
	if p.tok.Kind == lexer.TElse {
		p.advance()
		els = p.parseStmt(m)
	}
	return &If{base: base{pos}, Cond: cond, Then: then, Else: els, Unless: unless}
}

func (p *Parser) parseWhile(m ModeFlags) Expr {
	pos := p.tok.Pos
	until := p.tok.Kind == lexer.TUntil
	p.advance()
	cond := p.parseExpr(m)
	if p.tok.Kind == lexer.TDo {
		p.advance()
	}
	body := p.parseStmt(m)
	return &While{base: base{pos}, Cond: cond, Body: body, Until: until}
}

func (p *Parser) parseVarDecl(m ModeFlags) Expr {
	pos := p.tok.Pos
	kind := p.tok.Text
	p.advance()
	nameTok, _ := p.expect(lexer.TAlphaName)
	declKind := scope.Variable
	switch kind {
	case "const":
		declKind = scope.Const
	case "auto":
		declKind = scope.Auto
	}
	p.Scope.DeclareHere(nameTok.Text, declKind, scope.Position{File: p.file, Line: nameTok.Pos.Line, Col: nameTok.Pos.Col})
	var val Expr
	if p.isEquals() {
		p.advance()
		val = p.parseExpr(m)
	}
	return &VarDecl{base: base{pos}, Kind: kind, Name: nameTok.Text, Value: val}
}

func (p *Parser) parseTry(m ModeFlags) Expr {
	pos := p.tok.Pos
	p.advance()
	body := p.parseStmt(m)
	var handler Expr
	catchAs := ""
	if p.tok.Kind == lexer.TCatch {
		p.advance()
		if p.at(lexer.TAlphaName) {
			catchAs = p.tok.Text
			p.advance()
		}
		handler = p.parseStmt(m)
	}
	return &TryExpr{base: base{pos}, Body: body, Handler: handler, CatchAs: catchAs}
}

func (p *Parser) parseFnLiteral(m ModeFlags) Expr {
	pos := p.tok.Pos
	p.advance() // '|'
	outer := p.Scope
	p.Scope = scope.Begin(outer, scope.FunctionBody)
	var params []Param
	for !p.at(lexer.TBar) && !p.at(lexer.TEOI) {
		rest := false
		if p.tok.Kind == lexer.TPunctName && p.tok.Text == "..." {
			rest = true
			p.advance()
		}
		nameTok, _ := p.expect(lexer.TAlphaName)
		param := Param{Name: nameTok.Text, Rest: rest}
		if p.isEquals() {
			p.advance()
			param.Default = p.parseExpr(m)
		}
		p.Scope.DeclareHere(nameTok.Text, scope.Argument, scope.Position{File: p.file, Line: nameTok.Pos.Line, Col: nameTok.Pos.Col})
		params = append(params, param)
		if p.at(lexer.TComma) {
			p.advance()
		}
	}
	p.expect(lexer.TBar)
	body := p.parseStmt(m)
	p.Scope.End(true)
	p.Scope = outer
	return &FnLit{base: base{pos}, Params: params, Body: body}
}

func (p *Parser) parseInclude(m ModeFlags) Expr {
	pos := p.tok.Pos
	p.advance()
	var target string
	isPath := false
	if p.at(lexer.TDynString) {
		target = p.tok.Payload.Text
		isPath = true
		p.advance()
	} else {
		// `#include <pkg>` and a bare `#include pkg` both name a package.
		angled := p.tok.Kind == lexer.TPunctName && p.tok.Text == "<"
		if angled {
			p.advance()
		}
		nameTok, _ := p.expect(lexer.TAlphaName)
		target = nameTok.Text
		if angled {
			if p.tok.Kind == lexer.TPunctName && p.tok.Text == ">" {
				p.advance()
			} else {
				p.errorf("expected > after package name %q", target)
			}
		}
	}
	inc := &IncludeExpr{base: base{pos}, Target: target, IsPath: isPath, All: true}
	if p.tok.Kind == lexer.TColon {
		p.advance()
		switch {
		case p.at(lexer.TAlphaName) && p.tok.Text == "syntax":
			p.advance()
			inc.Syntax = true
			inc.All = false
			if p.SyntaxIncluder != nil {
				if from, err := p.SyntaxIncluder.IncludeSyntax(inc.Target, inc.IsPath, p.SourceDir); err == nil && from != nil {
					p.Scope.ImportSyntaxRules(from)
				}
			}
		case p.at(lexer.TAlphaName) && p.tok.Text == "all":
			p.advance()
		default:
			inc.All = false
			for p.at(lexer.TAlphaName) {
				old := p.tok.Text
				p.advance()
				newName := old
				if p.at(lexer.TAlphaName) && p.tok.Text == "as" {
					p.advance()
					newName, _ = p.tokenText()
					p.advance()
				}
				inc.Bindings = append(inc.Bindings, IncludeBinding{Old: old, New: newName})
				if p.at(lexer.TComma) {
					p.advance()
				} else {
					break
				}
			}
		}
	}
	return inc
}

func (p *Parser) tokenText() (string, bool) {
	return p.tok.Text, true
}

// parseTill handles `till flag, flag, ... do body when flag do whenBody ...`
// (spec §4.H). Each flag is declared as a TillFlag in a fresh TillDo scope.
func (p *Parser) parseTill(m ModeFlags) Expr {
	pos := p.tok.Pos
	p.advance() // 'till'
	outer := p.Scope
	p.Scope = scope.Begin(outer, scope.TillDo)
	var flags []string
	for p.at(lexer.TAlphaName) {
		name := p.tok.Text
		p.advance()
		p.Scope.DeclareHere(name, scope.TillFlag, scope.Position{File: p.file, Line: pos.Line, Col: pos.Col})
		flags = append(flags, name)
		if p.at(lexer.TComma) {
			p.advance()
		} else {
			break
		}
	}
	if p.tok.Kind == lexer.TDo {
		p.advance()
	}
	body := p.parseStmt(m)
	var whens []WhenClause
	for p.tok.Kind == lexer.TWhen {
		p.advance()
		flagTok, _ := p.expect(lexer.TAlphaName)
		if p.tok.Kind == lexer.TDo {
			p.advance()
		}
		whenBody := p.parseStmt(m)
		whens = append(whens, WhenClause{Flag: flagTok.Text, Body: whenBody})
	}
	p.Scope.End(false)
	p.Scope = outer
	return &Till{base: base{pos}, Flags: flags, Body: body, Whens: whens}
}

// parseQuote handles back-tick (quote a single term) and the @(...)
// runtime-splice escape when it appears outside of a raw list (spec §4.F,
// SPEC_FULL.md scenario E). Inside a `[...]` raw list, @(...) is handled
// directly by parseRawItem so the splice's index lines up with the tree
// position it occupies.
func (p *Parser) parseQuote(m ModeFlags) Expr {
	pos := p.tok.Pos
	if p.tok.Kind == lexer.TAt {
		p.advance()
		p.expect(lexer.TLParen)
		inner := p.parseExpr(m)
		p.expect(lexer.TRParen)
		return &Quote{base: base{pos}, HasRuntime: true, Runtime: []Expr{inner}}
	}
	p.advance() // '`'
	var runtime []Expr
	tree := p.parseQuotedTerm(&runtime)
	return &Quote{base: base{pos}, Tree: tree, HasRuntime: len(runtime) > 0, Runtime: runtime}
}

// parseRawList reads a `[...]` literal as a Quote whose Tree is the
// homoiconic list the running program would see if it asked for this
// syntax as data.
func (p *Parser) parseRawList(m ModeFlags) Expr {
	pos := p.tok.Pos
	var runtime []Expr
	tree := p.parseQuotedTerm(&runtime)
	return &Quote{base: base{pos}, Tree: tree, HasRuntime: len(runtime) > 0, Runtime: runtime}
}

// parseQuotedTerm reads one quoted datum: a `[...]` list (recursing on
// nested lists), an `@(expr)` splice (recorded into *runtime and replaced
// in the tree by a Pair placeholder carrying the splice's index), or a
// scalar literal/identifier.
func (p *Parser) parseQuotedTerm(runtime *[]Expr) value.Value {
	switch p.tok.Kind {
	case lexer.TLBracket:
		p.advance()
		var items []value.Value
		for !p.at(lexer.TRBracket) && !p.at(lexer.TEOI) {
			items = append(items, p.parseQuotedTerm(runtime))
			if p.at(lexer.TComma) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(lexer.TRBracket)
		return value.ListFromSlice(items)
	case lexer.TAt:
		p.advance()
		p.expect(lexer.TLParen)
		inner := p.parseExpr(DefaultModes())
		p.expect(lexer.TRParen)
		idx := len(*runtime)
		*runtime = append(*runtime, inner)
		return value.NewPair(value.NewString("splice"), value.Int64(int64(idx)))
	case lexer.TAlphaName:
		name := p.tok.Text
		p.advance()
		if p.Symbols != nil {
			return value.Symbol(uint32(p.Symbols.GetSymbol(name)))
		}
		return value.NewString(name)
	case lexer.TDynString, lexer.TRawString:
		s := p.tok.Payload.Text
		p.advance()
		return value.NewString(s)
	case lexer.TInt64Lit, lexer.TInt32Lit, lexer.TInt16Lit, lexer.TByteLit:
		n := p.tok.Payload.Int
		p.advance()
		return value.Int64(n)
	case lexer.TFloat32Lit, lexer.TFloat64Lit, lexer.TFloat128Lit, lexer.TReal32Lit, lexer.TReal64Lit, lexer.TReal128Lit:
		f := p.tok.Payload.Float
		p.advance()
		return value.Float64(f)
	default:
		p.errorf("unexpected token %s in quoted form", p.tok.Kind)
		p.advance()
		return value.Null
	}
}

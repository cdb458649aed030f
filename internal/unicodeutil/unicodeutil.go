// Package unicodeutil implements the identifier-class tables and string
// case/normalisation helpers of spec §4.M ("Unicode: identifier-class
// tables, case folding, composition/decomposition operations on
// strings"). Grounded on the lexer's identifier classification rules
// (spec §4.D): an alphaname's start letter and continuation letters are
// each governed by their own Unicode range table rather than a single
// IsLetter test, so punctuation connectors like underscore classify as
// continuation-only.
package unicodeutil

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// startLetterRanges covers the scripts spec.md §4.D names explicitly for
// an identifier's first character: Latin, Greek, Cyrillic, Armenian,
// Hebrew, plus underscore as the sole punctuation admitted at start
// position.
var startLetterRanges = []*unicode.RangeTable{
	unicode.Latin,
	unicode.Greek,
	unicode.Cyrillic,
	unicode.Armenian,
	unicode.Hebrew,
}

// IsIdentStart reports whether r may begin an identifier.
func IsIdentStart(r rune) bool {
	if r == '_' {
		return true
	}
	return unicode.IsOneOf(startLetterRanges, r)
}

// IsIdentContinue reports whether r may continue an identifier already
// begun by IsIdentStart: the same scripts plus digits and connecting
// punctuation (spec §4.D "continuation-letter class adds digits and
// connecting punctuation").
func IsIdentContinue(r rune) bool {
	if IsIdentStart(r) || unicode.IsDigit(r) {
		return true
	}
	return unicode.Is(unicode.Pc, r)
}

// DecodeRune reads one rune from the head of s, returning it and its
// width in bytes; invalid UTF-8 decodes to utf8.RuneError with width 1 so
// the lexer can still make forward progress and report a diagnostic.
func DecodeRune(s string) (rune, int) {
	return utf8.DecodeRuneInString(s)
}

// FoldCase returns s with every rune case-folded for case-insensitive
// comparison (used by the `matches?`/string-equality-ignoring-case
// primitives).
func FoldCase(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, unicode.ToLower(unicode.ToUpper(r)))
	}
	return string(out)
}

// NFC returns s in Unicode Normalization Form C (composed), the
// "composition" operation spec §4.M names.
func NFC(s string) string { return norm.NFC.String(s) }

// NFD returns s in Unicode Normalization Form D (decomposed), the
// "decomposition" operation spec §4.M names.
func NFD(s string) string { return norm.NFD.String(s) }

// Package regexutil implements the regex handle operations of spec §4.M:
// compiling a pattern, matching, splitting, and replacing (by literal
// string or by callback), plus the RegexMatch accessors (before/after/
// range/named-capture). Built on Go's standard regexp package, which
// already exposes an RE2 engine through the exact operations the spec's
// "opaque host PCRE-like engine" calls for; none of the example repos
// wire an alternative regex library, so this is the one auxiliary that
// stays on the standard library (see DESIGN.md).
package regexutil

import "regexp"

// Compile parses pattern into a *regexp.Regexp, the resource a regex
// Handle wraps (spec §3.1 "Handles").
func Compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(pattern)
}

// Match is the RegexMatch handle's payload: the full match plus the
// substring before/after it and any named captures, indexed by both
// position and name.
type Match struct {
	Before, Text, After string
	Start, End          int
	Groups              []string
	Names               map[string]string
}

// FindFirst returns the first match of re in s, or ok=false if none.
func FindFirst(re *regexp.Regexp, s string) (Match, bool) {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return Match{}, false
	}
	return buildMatch(re, s, loc), true
}

// FindAll returns every non-overlapping match of re in s, in order.
func FindAll(re *regexp.Regexp, s string) []Match {
	locs := re.FindAllStringSubmatchIndex(s, -1)
	out := make([]Match, 0, len(locs))
	for _, loc := range locs {
		out = append(out, buildMatch(re, s, loc))
	}
	return out
}

func buildMatch(re *regexp.Regexp, s string, loc []int) Match {
	start, end := loc[0], loc[1]
	m := Match{
		Before: s[:start],
		Text:   s[start:end],
		After:  s[end:],
		Start:  start,
		End:    end,
	}
	names := re.SubexpNames()
	for i := 1; i*2 < len(loc); i++ {
		gs, ge := loc[i*2], loc[i*2+1]
		var g string
		if gs >= 0 && ge >= 0 {
			g = s[gs:ge]
		}
		m.Groups = append(m.Groups, g)
		if i < len(names) && names[i] != "" {
			if m.Names == nil {
				m.Names = make(map[string]string)
			}
			m.Names[names[i]] = g
		}
	}
	return m
}

// Split splits s on every match of re, mirroring regexp.Split.
func Split(re *regexp.Regexp, s string) []string {
	return re.Split(s, -1)
}

// ReplaceLiteral substitutes every match of re in s with replacement
// (spec §4.M "replace (string ... replacement)").
func ReplaceLiteral(re *regexp.Regexp, s, replacement string) string {
	return re.ReplaceAllString(s, replacement)
}

// ReplaceFunc substitutes every match of re in s with the result of
// calling fn on the matched text. The state-machine reentrancy spec §4.M
// calls for when replacement is a user function is realised the Go way:
// fn is an ordinary callback invoked once per match from this loop
// (itself called from a builtin, never from inside the VM's own opcode
// dispatch loop), so there is no C-stack recursion concern to avoid.
func ReplaceFunc(re *regexp.Regexp, s string, fn func(match string) (string, error)) (string, error) {
	locs := re.FindAllStringIndex(s, -1)
	if locs == nil {
		return s, nil
	}
	var out []byte
	last := 0
	for _, loc := range locs {
		out = append(out, s[last:loc[0]]...)
		repl, err := fn(s[loc[0]:loc[1]])
		if err != nil {
			return "", err
		}
		out = append(out, repl...)
		last = loc[1]
	}
	out = append(out, s[last:]...)
	return string(out), nil
}

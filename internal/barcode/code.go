// Package barcode holds the product code model: the fixed code layout, the
// set of issued prefixes, format validation and the immutable set of genuine
// codes used for lookups.
//
// A code is CodeLength characters: a PrefixLength prefix naming the product
// family followed by a tail of lowercase letters and digits. Comparison is
// case-insensitive; the canonical form is lowercase.
package barcode

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	CodeLength   = 28
	PrefixLength = 16
	TailLength   = CodeLength - PrefixLength
)

// Prefix is one issued product-family prefix and its human label.
type Prefix struct {
	Value string
	Label string
}

// PrefixSet is the ordered list of prefixes a genuine code may start with.
type PrefixSet []Prefix

// DefaultPrefixes is the prefix set issued so far.
var DefaultPrefixes = PrefixSet{
	{Value: "7561097010000002", Label: "Type-2"},
}

// ParsePrefixes reads "prefix=label" pairs. A bare prefix gets its own value
// as label. Every prefix must be PrefixLength characters of [0-9a-z] after
// lowercasing.
func ParsePrefixes(pairs []string) (PrefixSet, error) {
	set := make(PrefixSet, 0, len(pairs))
	seen := make(map[string]bool, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		value, label, ok := strings.Cut(pair, "=")
		value = Canonicalize(value)
		if !ok || strings.TrimSpace(label) == "" {
			label = value
		}
		if len(value) != PrefixLength || !isTail(value) {
			return nil, fmt.Errorf("prefix %q: want %d characters of [0-9a-z]", value, PrefixLength)
		}
		if seen[value] {
			return nil, fmt.Errorf("prefix %q listed twice", value)
		}
		seen[value] = true
		set = append(set, Prefix{Value: value, Label: strings.TrimSpace(label)})
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("empty prefix set")
	}
	return set, nil
}

// Canonicalize trims surrounding whitespace and lowercases s. Input is
// canonicalized once, where it enters the checker.
func Canonicalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Match returns the prefix candidate starts with, compared case-insensitively.
func (ps PrefixSet) Match(candidate string) (Prefix, bool) {
	if len(candidate) < PrefixLength {
		return Prefix{}, false
	}
	head := strings.ToLower(candidate[:PrefixLength])
	for _, p := range ps {
		if p.Value == head {
			return p, true
		}
	}
	return Prefix{}, false
}

// IsWellFormed reports whether candidate has the code length, starts with a
// known prefix and has a [0-9a-z] tail. It lowercases before testing, so
// callers may pass raw input. It has no side effects.
func (ps PrefixSet) IsWellFormed(candidate string) bool {
	if candidate == "" || len(candidate) != CodeLength {
		return false
	}
	if _, ok := ps.Match(candidate); !ok {
		return false
	}
	return isTail(strings.ToLower(candidate[PrefixLength:]))
}

// Values returns the raw prefix strings in order.
func (ps PrefixSet) Values() []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Value
	}
	return out
}

// PrefixOf returns at most the first PrefixLength bytes of code, or the
// whole code when it is shorter. Analytics only ever see this part. The cut
// backs off to a rune boundary and invalid bytes are dropped, so the result
// is always valid UTF-8.
func PrefixOf(code string) string {
	if len(code) > PrefixLength {
		n := PrefixLength
		for n > 0 && !utf8.RuneStart(code[n]) {
			n--
		}
		code = code[:n]
	}
	return strings.ToValidUTF8(code, "")
}

func isTail(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

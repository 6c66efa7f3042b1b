// Package textnorm canonicalizes the strings two catalogs format differently
// so that unit-of-sale descriptors and prices can be compared.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds full-width forms to their half-width equivalents (NFKC) and
// removes whitespace, parentheses, the middle dot and comma variants.
//
// The result is stable: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.Map(dropCosmetic, norm.NFKC.String(s))
	// removing a rune can leave a combining mark next to a new base
	return norm.NFKC.String(s)
}

// Equivalent reports whether two unit-of-sale strings denote the same pack.
// Two empty strings are missing data, not a match.
func Equivalent(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb
}

func dropCosmetic(r rune) rune {
	if unicode.IsSpace(r) {
		return -1
	}
	switch r {
	case '(', ')', '（', '）', '・', '･', ',', '、', '，', '､':
		return -1
	}
	return r
}

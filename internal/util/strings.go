// Package util provides common string and hashing helpers.
package util

import (
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

func LCase[T ~string](s T) T { return T(strings.ToLower(string(s))) }

func TrimSP[T ~string](s T) T { return T(strings.TrimSpace(string(s))) }

var folders = sync.Pool{
	New: func() any { return cases.Fold() },
}

// Fold returns the case-folded form of s.
// ASCII input is lower-cased, other input is folded with [cases.Fold],
// so strings matched by [EqFold] have the same folded form.
func Fold[T ~string](s T) T {
	if isASCII(string(s)) {
		return LCase(s)
	}
	c := folders.Get().(cases.Caser) //nolint:forcetypeassert
	defer folders.Put(c)
	return T(c.String(string(s)))
}

// EqFold reports whether s1 and s2 have the same folded form, see [Fold].
func EqFold[T1, T2 ~string](s1 T1, s2 T2) bool {
	if isASCII(string(s1)) && isASCII(string(s2)) {
		return strings.EqualFold(string(s1), string(s2))
	}
	return Fold(string(s1)) == Fold(string(s2))
}

func isASCII(s string) bool {
	for i := range len(s) {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

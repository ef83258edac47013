// Package grammar contains ABNF rules, character classes, escaping and quoting rules of RFC 3261.
package grammar

//go:generate errtrace -w .

import (
	"strings"

	"github.com/ghettovoice/sipaddr/internal/constraints"
	"github.com/ghettovoice/sipaddr/internal/errorutil"
)

type Error string

func (e Error) Error() string { return string(e) }

func (Error) Grammar() bool { return true }

const (
	ErrEmptyInput     Error = "empty input"
	ErrMalformedInput Error = "malformed input"
)

// NewMalformedInputError wraps args with [ErrMalformedInput].
func NewMalformedInputError(args ...any) error {
	return errorutil.NewWrapperError(ErrMalformedInput, args...) //errtrace:skip
}

func IsToken[T constraints.Byteseq](s T) bool {
	if len(s) == 0 {
		return false
	}
	for i := range len(s) {
		if !IsTokenChar(s[i]) {
			return false
		}
	}
	return true
}

// IsDisplayNameToken reports whether s can be written as display name without quotes.
func IsDisplayNameToken[T constraints.Byteseq](s T) bool {
	for i := range len(s) {
		if !IsDisplayNameTokenChar(s[i]) {
			return false
		}
	}
	return true
}

// Quote wraps s into double quotes escaping '"' and '\' with a backslash (quoted-pair).
func Quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := range len(s) {
		if s[i] == '"' || s[i] == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	sb.WriteByte('"')
	return sb.String()
}

// Unquote strips surrounding double quotes and resolves quoted-pairs.
// Strings that are not quoted are returned unchanged.
func Unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

var telVisSepRpl = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")

// CleanTelNum removes all visual separators.
func CleanTelNum[T constraints.Byteseq](s T) T { return T(telVisSepRpl.Replace(string(s))) }

// IsTelNum reports whether s consists of phone digits, visual separators and optionally leading '+'.
func IsTelNum[T constraints.Byteseq](s T) bool {
	if len(s) == 0 {
		return false
	}
	start := 0
	if s[0] == '+' {
		start = 1
	}
	if start == len(s) {
		return false
	}
	for i := start; i < len(s); i++ {
		switch c := s[i]; {
		case '0' <= c && c <= '9':
		case 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		case c == '*' || c == '#' || c == '-' || c == '.' || c == '(' || c == ')' || c == 'p' || c == 'w':
		default:
			return false
		}
	}
	return true
}

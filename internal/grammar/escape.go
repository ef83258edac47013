package grammar

import (
	"bytes"

	"github.com/ghettovoice/sipaddr/internal/constraints"
)

// Unescape unescapes s by converting each 3-byte encoded substring of the form "% HEXDIG HEXDIG" into the hex-decoded byte.
func Unescape[T constraints.Byteseq](s T) T {
	if len(s) == 0 || !hasEscaped(s) {
		return s
	}

	var b bytes.Buffer
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if isEscapedAt(s, i) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		} else {
			b.WriteByte(s[i])
		}
	}
	return T(b.Bytes())
}

// Escape escapes s by replacing each char matched by shouldEscape callback to the hex form "% HEXDIG HEXDIG".
// The input is treated as raw text, so a '%' is escaped like any other char rejected by shouldEscape.
func Escape[T constraints.Byteseq](s T, shouldEscape func(c byte) bool) T {
	if len(s) == 0 {
		return s
	}

	if shouldEscape == nil {
		shouldEscape = func(c byte) bool { return !IsCharUnreserved(c) }
	}

	i := 0
	for ; i < len(s); i++ {
		if shouldEscape(s[i]) {
			break
		}
	}
	if i == len(s) {
		return s
	}

	var b bytes.Buffer
	b.Grow(len(s) + 8)
	for j := 0; j < i; j++ {
		b.WriteByte(s[j])
	}
	for ; i < len(s); i++ {
		if shouldEscape(s[i]) {
			b.WriteByte('%')
			b.WriteByte(upperhex[s[i]>>4])
			b.WriteByte(upperhex[s[i]&15])
		} else {
			b.WriteByte(s[i])
		}
	}
	return T(b.Bytes())
}

const upperhex = "0123456789ABCDEF"

func hasEscaped[T constraints.Byteseq](s T) bool {
	for i := range len(s) {
		if isEscapedAt(s, i) {
			return true
		}
	}
	return false
}

func isEscapedAt[T constraints.Byteseq](s T, i int) bool {
	return s[i] == '%' && i+2 < len(s) && ishex(s[i+1]) && ishex(s[i+2])
}

func ishex(c byte) bool {
	switch {
	case '0' <= c && c <= '9':
		return true
	case 'a' <= c && c <= 'f':
		return true
	case 'A' <= c && c <= 'F':
		return true
	}
	return false
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

// charset is a 256-bit lookup table of allowed bytes.
type charset [4]uint64

func newCharset(sets ...string) charset {
	var cs charset
	for _, s := range sets {
		for i := range len(s) {
			c := s[i]
			cs[c>>6] |= 1 << (c & 63)
		}
	}
	return cs
}

func (cs *charset) has(c byte) bool { return cs[c>>6]&(1<<(c&63)) != 0 }

const (
	alphanum = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	mark     = "-_.!~*'()"
	reserved = ";/?:@&=+$,"
)

var (
	unreservedChars   = newCharset(alphanum, mark)
	userChars         = newCharset(alphanum, mark, "&=+$,;/")
	userSegmentChars  = newCharset(alphanum, mark, "&=+$,/")
	passwdChars       = newCharset(alphanum, mark, "&=+$,")
	uriParamChars     = newCharset(alphanum, mark, "[]/:&+$")
	uriHeaderChars    = newCharset(alphanum, mark, "[]/?:+$")
	genericURIChars   = newCharset(alphanum, mark, reserved, "[]")
	telURIChars       = newCharset(alphanum, mark, ";=+:/[]&$,")
	tokenChars        = newCharset(alphanum, "-.!%*_+`'~")
	displayTokenChars = newCharset(alphanum, "-.!%*_+`'~", " \t")
)

// IsAlphanumChar checks alphanum rule.
func IsAlphanumChar(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// IsCharUnreserved checks on unreserved rule.
func IsCharUnreserved(c byte) bool { return unreservedChars.has(c) }

// IsURIUserCharUnreserved checks on user-unreserved rule.
// The '?' is left out, so rendered users never look like a headers part.
func IsURIUserCharUnreserved(c byte) bool { return userChars.has(c) }

// IsURIPasswdCharUnreserved checks on password-unreserved rule.
func IsURIPasswdCharUnreserved(c byte) bool { return passwdChars.has(c) }

// IsURIParamCharUnreserved checks on param-unreserved rule.
func IsURIParamCharUnreserved(c byte) bool { return uriParamChars.has(c) }

// IsURIHeaderCharUnreserved checks on hnv-unreserved rule.
func IsURIHeaderCharUnreserved(c byte) bool { return uriHeaderChars.has(c) }

// IsTokenChar checks on token rule.
func IsTokenChar(c byte) bool { return tokenChars.has(c) }

// IsDisplayNameTokenChar reports whether c may appear in an unquoted display name (*(token LWS)).
func IsDisplayNameTokenChar(c byte) bool { return displayTokenChars.has(c) }

// EscapeUser escapes the user part of a SIP URI.
func EscapeUser(s string) string { return Escape(s, func(c byte) bool { return !userChars.has(c) }) }

// EscapeUserSegment escapes a single segment of the user part, ';' included.
func EscapeUserSegment(s string) string {
	return Escape(s, func(c byte) bool { return !userSegmentChars.has(c) })
}

// EscapePasswd escapes the password part of a SIP URI.
func EscapePasswd(s string) string { return Escape(s, func(c byte) bool { return !passwdChars.has(c) }) }

// EscapeURIParam escapes name or value of a SIP URI parameter.
func EscapeURIParam(s string) string { return Escape(s, ShouldEscapeURIParamChar) }

// EscapeURIHeader escapes name or value of a SIP URI header.
func EscapeURIHeader(s string) string { return Escape(s, ShouldEscapeURIHeaderChar) }

// EscapeGeneric escapes opaque scheme data of any URI.
func EscapeGeneric(s string) string { return Escape(s, func(c byte) bool { return !genericURIChars.has(c) }) }

// EscapeTel escapes scheme data of tel, fax and modem URIs.
func EscapeTel(s string) string { return Escape(s, func(c byte) bool { return !telURIChars.has(c) }) }

func ShouldEscapeURIParamChar(c byte) bool { return !uriParamChars.has(c) }

func ShouldEscapeURIHeaderChar(c byte) bool { return !uriHeaderChars.has(c) }

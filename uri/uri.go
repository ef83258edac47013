package uri

//go:generate go tool errtrace -w .

import (
	"github.com/ghettovoice/sipaddr/internal/types"
	"github.com/ghettovoice/sipaddr/internal/util"
)

// RenderOptions contains options for rendering URIs and addresses.
type RenderOptions = types.RenderOptions

// Params represents ordered URI parameters or headers with case-insensitive names.
type Params = types.Params

// NewParams builds [Params] from the list of name/value pairs.
func NewParams(pairs ...string) Params { return types.NewParams(pairs...) }

// URI represents any URI handled by this package: [Generic], [SIP] or a [Shared] SIP handle.
type URI interface {
	types.Renderer
	types.Cloneable[URI]
	types.ValidFlag
	types.Equalable
	types.Hashable
	// Scheme returns the normalized URI scheme.
	Scheme() string
	// SchemeData returns everything after the "scheme:" prefix.
	SchemeData() string
	// String returns the rendered URI with default options.
	String() string
}

// Well-known schemes. Only these are case-normalized.
const (
	SchemeSIP  = "sip"
	SchemeSIPS = "sips"
	SchemeTel  = "tel"
)

// NormalizeScheme lower-cases the well-known schemes and returns any other scheme unchanged.
func NormalizeScheme(s string) string {
	switch ls := util.LCase(s); ls {
	case SchemeSIP, SchemeSIPS, SchemeTel:
		return ls
	default:
		return s
	}
}

// IsNative reports whether u is a non-nil URI implemented by this package.
// Addresses accept only native URIs.
func IsNative(u URI) bool {
	switch v := u.(type) {
	case *Generic:
		return v != nil
	case *SIP:
		return v != nil
	case *Shared:
		return v != nil
	default:
		return false
	}
}

// IsNil reports whether u is nil or a nil pointer of a native URI type.
func IsNil(u URI) bool {
	switch v := u.(type) {
	case nil:
		return true
	case *Generic:
		return v == nil
	case *SIP:
		return v == nil
	case *Shared:
		return v == nil
	default:
		return false
	}
}

func isSchemeChar(c byte, first bool) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		return true
	case first:
		return false
	case '0' <= c && c <= '9', c == '+', c == '-', c == '.':
		return true
	default:
		return false
	}
}

// IsValidScheme checks the scheme rule: ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func IsValidScheme(s string) bool {
	if s == "" {
		return false
	}
	for i := range len(s) {
		if !isSchemeChar(s[i], i == 0) {
			return false
		}
	}
	return true
}

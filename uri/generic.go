package uri

import (
	"fmt"
	"io"
	"strconv"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipaddr/internal/errorutil"
	"github.com/ghettovoice/sipaddr/internal/grammar"
	"github.com/ghettovoice/sipaddr/internal/ioutil"
	"github.com/ghettovoice/sipaddr/internal/util"
)

// Generic represents any absolute URI as a scheme and opaque scheme-specific data.
// Scheme data is stored unescaped and escaped on rendering.
type Generic struct {
	scheme string
	data   string
}

// NewGeneric creates a generic URI.
// Both scheme and data must be non-empty, otherwise [ErrMalformedValue] is returned.
func NewGeneric(scheme, data string) (*Generic, error) {
	u := new(Generic)
	if err := u.SetScheme(scheme); err != nil {
		return nil, errtrace.Wrap(err)
	}
	if err := u.SetSchemeData(data); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return u, nil
}

// Scheme returns the URI scheme.
func (u *Generic) Scheme() string {
	if u == nil {
		return ""
	}
	return u.scheme
}

// SetScheme sets the URI scheme.
// The sip, sips and tel schemes are lower-cased, other schemes are kept as is.
func (u *Generic) SetScheme(scheme string) error {
	if scheme == "" {
		return errtrace.Wrap(errorutil.NewMalformedValueError("empty scheme"))
	}
	if !IsValidScheme(scheme) {
		return errtrace.Wrap(errorutil.NewMalformedValueError("invalid scheme " + strconv.Quote(scheme)))
	}
	u.scheme = NormalizeScheme(scheme)
	return nil
}

// SchemeData returns the unescaped scheme-specific part.
func (u *Generic) SchemeData() string {
	if u == nil {
		return ""
	}
	return u.data
}

// SetSchemeData sets the unescaped scheme-specific part.
func (u *Generic) SetSchemeData(data string) error {
	if data == "" {
		return errtrace.Wrap(errorutil.NewMalformedValueError("empty scheme data"))
	}
	u.data = data
	return nil
}

// Clone returns a deep copy of the URI.
func (u *Generic) Clone() URI {
	if u == nil {
		return nil
	}
	u2 := *u
	return &u2
}

// RenderTo writes the URI to w.
// Scheme data is escaped with the tel coder for tel, fax and modem schemes
// and with the generic coder otherwise.
func (u *Generic) RenderTo(w io.Writer, _ *RenderOptions) (int, error) {
	if u == nil {
		return 0, nil
	}
	return errtrace.Wrap2(ioutil.RenderTo(w, u.renderTo))
}

func (u *Generic) renderTo(buf *ioutil.Buffer) {
	buf.WriteString(u.scheme)
	buf.WriteByte(':')
	buf.WriteString(escapeSchemeData(u.scheme, u.data))
}

func escapeSchemeData(scheme, data string) string {
	switch util.LCase(scheme) {
	case SchemeTel, "fax", "modem":
		return grammar.EscapeTel(data)
	default:
		return grammar.EscapeGeneric(data)
	}
}

// Render returns the string representation of the URI.
func (u *Generic) Render(_ *RenderOptions) string {
	if u == nil {
		return ""
	}
	return ioutil.Render(u.renderTo)
}

// String returns the string representation of the URI.
func (u *Generic) String() string { return u.Render(nil) }

// Format implements [fmt.Formatter].
func (u *Generic) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprint(f, u.String())
	case 'q':
		fmt.Fprint(f, strconv.Quote(u.String()))
	default:
		type hideMethods Generic
		type Generic hideMethods
		fmt.Fprintf(f, fmt.FormatString(f, verb), (*Generic)(u))
	}
}

// Equal reports whether val is a generic URI with exactly the same scheme and scheme data.
func (u *Generic) Equal(val any) bool {
	var other *Generic
	switch v := val.(type) {
	case Generic:
		other = &v
	case *Generic:
		other = v
	default:
		return false
	}

	if u == other {
		return true
	} else if u == nil || other == nil {
		return false
	}
	return u.scheme == other.scheme && u.data == other.data
}

// Hash returns a hash code consistent with [Generic.Equal].
func (u *Generic) Hash() uint64 {
	if u == nil {
		return 0
	}
	return util.HashString(u.scheme) ^ util.HashString(u.data)
}

// IsValid checks whether both scheme and scheme data are set.
func (u *Generic) IsValid() bool {
	return u != nil && u.scheme != "" && u.data != ""
}

// MarshalText implements [encoding.TextMarshaler].
func (u *Generic) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

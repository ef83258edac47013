package header

import (
	"fmt"
	"io"
	"strconv"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipaddr/internal/errorutil"
	"github.com/ghettovoice/sipaddr/internal/grammar"
	"github.com/ghettovoice/sipaddr/internal/ioutil"
	"github.com/ghettovoice/sipaddr/uri"
)

// RenderOptions controls the address form and display name quoting.
type RenderOptions = uri.RenderOptions

// NameAddr represents an address used in From, To, Contact and Reply-To headers:
// an optional display name and a URI.
type NameAddr struct {
	display string
	addr    uri.URI
}

// NewNameAddr creates an address without a display name.
func NewNameAddr(addr uri.URI) (*NameAddr, error) {
	na := new(NameAddr)
	if err := na.SetAddress(addr); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return na, nil
}

// NewNameAddrDisplay creates an address with a display name.
func NewNameAddrDisplay(addr uri.URI, display string) (*NameAddr, error) {
	na, err := NewNameAddr(addr)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	na.display = display
	return na, nil
}

// DisplayName returns the display name as it was set.
func (na *NameAddr) DisplayName() string {
	if na == nil {
		return ""
	}
	return na.display
}

// SetDisplayName sets the display name. Empty name removes it.
// The name is stored verbatim and quoted on rendering when needed.
func (na *NameAddr) SetDisplayName(name string) { na.display = name }

// Address returns the URI.
func (na *NameAddr) Address() uri.URI {
	if na == nil {
		return nil
	}
	return na.addr
}

// SetAddress sets the URI.
// A nil URI fails with [uri.ErrInvalidArgument],
// URIs not implemented by package uri fail with [uri.ErrCrossImplementation].
func (na *NameAddr) SetAddress(addr uri.URI) error {
	if uri.IsNil(addr) {
		return errtrace.Wrap(errorutil.NewInvalidArgumentError("nil address"))
	}
	if !uri.IsNative(addr) {
		return errtrace.Wrap(errorutil.NewCrossImplementationError(addr))
	}
	na.addr = addr
	return nil
}

// RenderForm writes the address to w.
// When allowAddrSpec is set the bare addr-spec form is used unless a display name is present,
// the name-addr form is forced by opts, or the URI contains one of ',', ';' or '?'.
// Otherwise the address is always wrapped in angle brackets.
func (na *NameAddr) RenderForm(w io.Writer, allowAddrSpec bool, opts *RenderOptions) (int, error) {
	if na == nil {
		return 0, nil
	}
	return errtrace.Wrap2(ioutil.RenderTo(w, func(buf *ioutil.Buffer) {
		na.renderTo(buf, allowAddrSpec, opts)
	}))
}

func (na *NameAddr) renderTo(buf *ioutil.Buffer, allowAddrSpec bool, opts *RenderOptions) {
	nameAddr := !allowAddrSpec || opts.NameAddrForced()
	if na.display != "" {
		writeDisplayName(buf, na.display, opts)
		buf.WriteByte(' ')
		nameAddr = true
	}

	if nameAddr {
		buf.WriteByte('<')
		na.renderAddr(buf, opts)
		buf.WriteByte('>')
		return
	}

	mark := buf.Len()
	na.renderAddr(buf, opts)
	if buf.IndexAny(mark, ",;?") >= 0 {
		buf.Insert(mark, "<")
		buf.WriteByte('>')
	}
}

func (na *NameAddr) renderAddr(buf *ioutil.Buffer, opts *RenderOptions) {
	if na.addr != nil {
		na.addr.RenderTo(buf, opts) //nolint:errcheck
	}
}

func writeDisplayName(buf *ioutil.Buffer, name string, opts *RenderOptions) {
	switch {
	case opts.QuotingForced():
		buf.WriteString(grammar.Quote(name))
	case opts.QuotedAllowed() && name[0] == '"':
		buf.WriteString(name)
	default:
		mark := buf.Len()
		for i := range len(name) {
			if !grammar.IsDisplayNameTokenChar(name[i]) {
				buf.Rewind(mark)
				buf.WriteString(grammar.Quote(name))
				return
			}
			buf.WriteByte(name[i])
		}
	}
}

// RenderTo writes the address to w, the addr-spec form is allowed.
func (na *NameAddr) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	return errtrace.Wrap2(na.RenderForm(w, true, opts))
}

// Render returns the string representation of the address.
func (na *NameAddr) Render(opts *RenderOptions) string {
	if na == nil {
		return ""
	}
	return ioutil.Render(func(buf *ioutil.Buffer) { na.renderTo(buf, true, opts) })
}

// String returns the string representation of the address.
func (na *NameAddr) String() string { return na.Render(nil) }

// Format implements [fmt.Formatter] for custom formatting of the address.
func (na *NameAddr) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprint(f, na.String())
		return
	case 'q':
		fmt.Fprint(f, strconv.Quote(na.String()))
		return
	default:
		if !f.Flag('+') && !f.Flag('#') {
			fmt.Fprint(f, na.String())
			return
		}

		type hideMethods NameAddr
		type NameAddr hideMethods
		fmt.Fprintf(f, fmt.FormatString(f, verb), (*NameAddr)(na))
		return
	}
}

// Equal compares addresses by their URIs, display names are ignored.
func (na *NameAddr) Equal(val any) bool {
	var other *NameAddr
	switch v := val.(type) {
	case NameAddr:
		other = &v
	case *NameAddr:
		other = v
	default:
		return false
	}

	if na == other {
		return true
	} else if na == nil || other == nil {
		return false
	}
	if na.addr == nil || other.addr == nil {
		return na.addr == nil && other.addr == nil
	}
	return na.addr.Equal(other.addr)
}

// Hash returns a hash code consistent with [NameAddr.Equal].
func (na *NameAddr) Hash() uint64 {
	if na == nil || na.addr == nil {
		return 0
	}
	return na.addr.Hash()
}

// Clone returns a copy of the address with a cloned URI.
func (na *NameAddr) Clone() *NameAddr {
	if na == nil {
		return nil
	}
	na2 := *na
	if na.addr != nil {
		na2.addr = na.addr.Clone()
	}
	return &na2
}

// IsValid checks whether the address has a valid URI.
func (na *NameAddr) IsValid() bool {
	return na != nil && na.addr != nil && na.addr.IsValid()
}

// MarshalText implements [encoding.TextMarshaler].
func (na *NameAddr) MarshalText() ([]byte, error) {
	return []byte(na.String()), nil
}

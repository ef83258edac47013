package uri

import (
	"fmt"
	"io"
	"net"
	"strconv"

	"braces.dev/errtrace"
)

// SIPURI is the accessor and mutator set shared by [*SIP] and [*Shared].
type SIPURI interface {
	URI

	IsSecure() bool
	SetSecure(secure bool)
	Host() string
	SetHost(host string) error
	SetHostIP(ip net.IP) error
	Port() (int, bool)
	SetPort(port int) error
	RemovePort()
	UserName() (string, bool)
	SetUserName(name string)
	RemoveUserName()
	Password() (string, bool)
	SetPassword(passwd string) error
	RemovePassword()
	UserType() string
	SetUserType(typ string) error
	RemoveUserType()
	UserInfo() UserInfo
	IsGlobal() bool
	SetGlobal(global bool) error
	ISDNSubAddress() (string, bool)
	SetISDNSubAddress(isub string) error
	RemoveISDNSubAddress()
	PostDial() (string, bool)
	SetPostDial(postd string) error
	RemovePostDial()
	TelephoneNumber() (*TelephoneNumber, bool)
	SetTelephoneNumber(tn *TelephoneNumber) error
	Transport() (string, bool)
	SetTransport(tp string) error
	RemoveTransport()
	Method() (string, bool)
	SetMethod(mtd string) error
	RemoveMethod()
	MAddr() (string, bool)
	SetMAddr(maddr string) error
	RemoveMAddr()
	TTL() (int, bool)
	SetTTL(ttl int) error
	RemoveTTL()
	LR() bool
	SetLR(lr bool)
	Param(name string) (string, bool)
	HasParam(name string) bool
	SetParam(name, val string) error
	RemoveParam(name string)
	RemoveParams()
	ParamNames() []string
	Params() Params
	Header(name string) (string, bool)
	HasHeader(name string) bool
	SetHeader(name, val string) error
	RemoveHeader(name string)
	RemoveHeaders()
	HeaderNames() []string
	Headers() Params
}

var (
	_ SIPURI = (*SIP)(nil)
	_ SIPURI = (*Shared)(nil)
)

// Shared is a copy-on-write handle over a [SIP] URI that may be referenced by many handles,
// for example a URI interned by a factory cache.
// Reads go to the shared value, the first mutation replaces it with a private copy.
// A handle never goes back to the shared state.
//
// A handle itself is not safe for concurrent mutation,
// but many handles may safely read the same shared value.
type Shared struct {
	shared *SIP
	owned  *SIP
}

// NewShared wraps u without copying it. u must not be modified afterwards.
// A nil u is replaced with an empty SIP URI.
func NewShared(u *SIP) *Shared {
	if u == nil {
		u = new(SIP)
	}
	return &Shared{shared: u}
}

func (s *Shared) get() *SIP {
	if s == nil {
		return &emptySIP
	}
	if s.owned != nil {
		return s.owned
	}
	if s.shared == nil {
		return &emptySIP
	}
	return s.shared
}

var emptySIP SIP

func (s *Shared) mut() *SIP {
	if s.owned == nil {
		if s.shared == nil {
			s.shared = new(SIP)
		}
		s.owned = s.shared.clone()
		s.shared = nil
	}
	return s.owned
}

// IsOwned reports whether the handle already holds a private copy.
func (s *Shared) IsOwned() bool { return s != nil && s.owned != nil }

// SameRef reports whether both handles reference the same underlying URI.
func (s *Shared) SameRef(other *Shared) bool {
	return s != nil && other != nil && s.get() == other.get()
}

// Snapshot returns a private deep copy of the referenced URI.
func (s *Shared) Snapshot() *SIP {
	if s == nil {
		return nil
	}
	return s.get().clone()
}

// Clone returns a new owned handle around a copy of the referenced URI.
func (s *Shared) Clone() URI {
	if s == nil {
		return nil
	}
	return &Shared{owned: s.get().clone()}
}

func (s *Shared) Scheme() string {
	if s == nil {
		return ""
	}
	return s.get().Scheme()
}

func (s *Shared) SchemeData() string {
	if s == nil {
		return ""
	}
	return s.get().SchemeData()
}

func (s *Shared) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if s == nil {
		return 0, nil
	}
	return errtrace.Wrap2(s.get().RenderTo(w, opts))
}

func (s *Shared) Render(opts *RenderOptions) string {
	if s == nil {
		return ""
	}
	return s.get().Render(opts)
}

func (s *Shared) String() string { return s.Render(nil) }

// Format implements [fmt.Formatter].
func (s *Shared) Format(f fmt.State, verb rune) {
	switch verb {
	case 's', 'v':
		fmt.Fprint(f, s.String())
	case 'q':
		fmt.Fprint(f, strconv.Quote(s.String()))
	default:
		fmt.Fprintf(f, "%%!%c(*uri.Shared=%s)", verb, s.String())
	}
}

// Equal compares the referenced URI with val, see [SIP.Equal].
func (s *Shared) Equal(val any) bool {
	if s == nil {
		if o, ok := val.(*Shared); ok {
			return o == nil
		}
		return false
	}
	return s.get().Equal(val)
}

func (s *Shared) Hash() uint64 {
	if s == nil {
		return 0
	}
	return s.get().Hash()
}

func (s *Shared) IsValid() bool { return s != nil && s.get().IsValid() }

// MarshalText implements [encoding.TextMarshaler].
func (s *Shared) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Shared) IsSecure() bool            { return s.get().IsSecure() }
func (s *Shared) SetSecure(secure bool)     { s.mut().SetSecure(secure) }
func (s *Shared) Host() string              { return s.get().Host() }
func (s *Shared) SetHost(host string) error { return errtrace.Wrap(s.mut().SetHost(host)) }
func (s *Shared) SetHostIP(ip net.IP) error { return errtrace.Wrap(s.mut().SetHostIP(ip)) }
func (s *Shared) Port() (int, bool)         { return s.get().Port() }
func (s *Shared) SetPort(port int) error    { return errtrace.Wrap(s.mut().SetPort(port)) }
func (s *Shared) RemovePort()               { s.mut().RemovePort() }
func (s *Shared) UserName() (string, bool)  { return s.get().UserName() }
func (s *Shared) SetUserName(name string)   { s.mut().SetUserName(name) }
func (s *Shared) RemoveUserName()           { s.mut().RemoveUserName() }
func (s *Shared) Password() (string, bool)  { return s.get().Password() }
func (s *Shared) SetPassword(passwd string) error {
	return errtrace.Wrap(s.mut().SetPassword(passwd))
}
func (s *Shared) RemovePassword()                { s.mut().RemovePassword() }
func (s *Shared) UserType() string               { return s.get().UserType() }
func (s *Shared) SetUserType(typ string) error   { return errtrace.Wrap(s.mut().SetUserType(typ)) }
func (s *Shared) RemoveUserType()                { s.mut().RemoveUserType() }
func (s *Shared) UserInfo() UserInfo             { return s.get().UserInfo() }
func (s *Shared) IsGlobal() bool                 { return s.get().IsGlobal() }
func (s *Shared) SetGlobal(global bool) error    { return errtrace.Wrap(s.mut().SetGlobal(global)) }
func (s *Shared) ISDNSubAddress() (string, bool) { return s.get().ISDNSubAddress() }
func (s *Shared) SetISDNSubAddress(isub string) error {
	return errtrace.Wrap(s.mut().SetISDNSubAddress(isub))
}
func (s *Shared) RemoveISDNSubAddress()    { s.mut().RemoveISDNSubAddress() }
func (s *Shared) PostDial() (string, bool) { return s.get().PostDial() }
func (s *Shared) SetPostDial(postd string) error {
	return errtrace.Wrap(s.mut().SetPostDial(postd))
}
func (s *Shared) RemovePostDial() { s.mut().RemovePostDial() }
func (s *Shared) TelephoneNumber() (*TelephoneNumber, bool) {
	return s.get().TelephoneNumber()
}
func (s *Shared) SetTelephoneNumber(tn *TelephoneNumber) error {
	return errtrace.Wrap(s.mut().SetTelephoneNumber(tn))
}
func (s *Shared) Transport() (string, bool)        { return s.get().Transport() }
func (s *Shared) SetTransport(tp string) error     { return errtrace.Wrap(s.mut().SetTransport(tp)) }
func (s *Shared) RemoveTransport()                 { s.mut().RemoveTransport() }
func (s *Shared) Method() (string, bool)           { return s.get().Method() }
func (s *Shared) SetMethod(mtd string) error       { return errtrace.Wrap(s.mut().SetMethod(mtd)) }
func (s *Shared) RemoveMethod()                    { s.mut().RemoveMethod() }
func (s *Shared) MAddr() (string, bool)            { return s.get().MAddr() }
func (s *Shared) SetMAddr(maddr string) error      { return errtrace.Wrap(s.mut().SetMAddr(maddr)) }
func (s *Shared) RemoveMAddr()                     { s.mut().RemoveMAddr() }
func (s *Shared) TTL() (int, bool)                 { return s.get().TTL() }
func (s *Shared) SetTTL(ttl int) error             { return errtrace.Wrap(s.mut().SetTTL(ttl)) }
func (s *Shared) RemoveTTL()                       { s.mut().RemoveTTL() }
func (s *Shared) LR() bool                         { return s.get().LR() }
func (s *Shared) SetLR(lr bool)                    { s.mut().SetLR(lr) }
func (s *Shared) Param(name string) (string, bool) { return s.get().Param(name) }
func (s *Shared) HasParam(name string) bool        { return s.get().HasParam(name) }
func (s *Shared) SetParam(name, val string) error {
	return errtrace.Wrap(s.mut().SetParam(name, val))
}
func (s *Shared) RemoveParam(name string)           { s.mut().RemoveParam(name) }
func (s *Shared) RemoveParams()                     { s.mut().RemoveParams() }
func (s *Shared) ParamNames() []string              { return s.get().ParamNames() }
func (s *Shared) Params() Params                    { return s.get().Params() }
func (s *Shared) Header(name string) (string, bool) { return s.get().Header(name) }
func (s *Shared) HasHeader(name string) bool        { return s.get().HasHeader(name) }
func (s *Shared) SetHeader(name, val string) error {
	return errtrace.Wrap(s.mut().SetHeader(name, val))
}
func (s *Shared) RemoveHeader(name string) { s.mut().RemoveHeader(name) }
func (s *Shared) RemoveHeaders()           { s.mut().RemoveHeaders() }
func (s *Shared) HeaderNames() []string    { return s.get().HeaderNames() }
func (s *Shared) Headers() Params          { return s.get().Headers() }

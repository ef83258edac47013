package uri

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipaddr/internal/errorutil"
	"github.com/ghettovoice/sipaddr/internal/grammar"
	"github.com/ghettovoice/sipaddr/internal/ioutil"
	"github.com/ghettovoice/sipaddr/internal/util"
)

// SIP URI parameters with dedicated accessors.
const (
	ParamTransport = "transport"
	ParamUser      = "user"
	ParamMethod    = "method"
	ParamMAddr     = "maddr"
	ParamTTL       = "ttl"
	ParamLR        = "lr"
)

// SIP represents a SIP or SIPS URI.
// The zero value is an empty "sip:" URI without a host.
type SIP struct {
	usrname   string
	hasUser   bool
	passwd    string
	hasPasswd bool
	global    bool
	isub      string
	hasISub   bool
	postd     string
	hasPostd  bool
	host      string
	port      int
	hasPort   bool
	params    Params
	headers   Params
	secured   bool
}

// NewSIP creates a SIP URI with the given host.
func NewSIP(host string) (*SIP, error) {
	u := new(SIP)
	if err := u.SetHost(host); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return u, nil
}

// NewSIPUser creates a SIP URI with the given user and host.
func NewSIPUser(user, host string) (*SIP, error) {
	u, err := NewSIP(host)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	if user == "" {
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("empty user"))
	}
	u.SetUserName(user)
	return u, nil
}

// Scheme returns "sips" for secured URIs and "sip" otherwise.
func (u *SIP) Scheme() string {
	if u == nil {
		return ""
	}
	return u.scheme()
}

func (u *SIP) scheme() string {
	if u.secured {
		return SchemeSIPS
	}
	return SchemeSIP
}

// IsSecure reports whether the URI is a SIPS URI.
func (u *SIP) IsSecure() bool { return u != nil && u.secured }

// SetSecure switches the URI between the sip and sips schemes.
func (u *SIP) SetSecure(secure bool) { u.secured = secure }

// Host returns the host without brackets.
func (u *SIP) Host() string {
	if u == nil {
		return ""
	}
	return u.host
}

// SetHost sets the host. Surrounding spaces and IPv6 brackets are stripped.
func (u *SIP) SetHost(host string) error {
	host = util.TrimSP(host)
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if host == "" {
		return errtrace.Wrap(errorutil.NewInvalidArgumentError("empty host"))
	}
	u.host = host
	return nil
}

// SetHostIP sets the host from an IP address.
func (u *SIP) SetHostIP(ip net.IP) error {
	if ip == nil {
		return errtrace.Wrap(errorutil.NewInvalidArgumentError("nil IP"))
	}
	u.host = ip.String()
	return nil
}

// Port returns the port, in case it is set, and a bool flag indicating whether it is set.
func (u *SIP) Port() (int, bool) {
	if u == nil {
		return 0, false
	}
	return u.port, u.hasPort
}

// SetPort sets the port.
func (u *SIP) SetPort(port int) error {
	if port < 0 {
		return errtrace.Wrap(errorutil.NewMalformedValueError("negative port %d", port))
	}
	u.port, u.hasPort = port, true
	return nil
}

// RemovePort removes the port.
func (u *SIP) RemovePort() { u.port, u.hasPort = 0, false }

// UserName returns the unescaped user name.
func (u *SIP) UserName() (string, bool) {
	if u == nil {
		return "", false
	}
	return u.usrname, u.hasUser
}

// SetUserName sets the unescaped user name. Empty name removes the user.
func (u *SIP) SetUserName(name string) {
	if name == "" {
		u.RemoveUserName()
		return
	}
	u.usrname, u.hasUser = name, true
}

// RemoveUserName removes the user name together with the password.
func (u *SIP) RemoveUserName() {
	u.usrname, u.hasUser = "", false
	u.RemovePassword()
}

// Password returns the unescaped password.
func (u *SIP) Password() (string, bool) {
	if u == nil {
		return "", false
	}
	return u.passwd, u.hasPasswd
}

// SetPassword sets the password. The user name must be set before.
func (u *SIP) SetPassword(passwd string) error {
	if !u.hasUser {
		return errtrace.Wrap(errorutil.NewWrongStateError("password requires a user"))
	}
	u.passwd, u.hasPasswd = passwd, true
	return nil
}

// RemovePassword removes the password.
func (u *SIP) RemovePassword() { u.passwd, u.hasPasswd = "", false }

// UserType returns the lower-cased "user" parameter, "ip" when it is not set.
func (u *SIP) UserType() string {
	if v, ok := u.Param(ParamUser); ok {
		return util.LCase(v)
	}
	return UserTypeIP
}

// SetUserType sets the "user" parameter. Only "ip" and "phone" are accepted.
// Leaving "phone" drops the global flag and the post-dial sequence.
func (u *SIP) SetUserType(typ string) error {
	if typ != UserTypeIP && typ != UserTypePhone {
		return errtrace.Wrap(errorutil.NewMalformedValueError("invalid user type " + strconv.Quote(typ)))
	}
	u.params.Set(ParamUser, typ)
	u.syncUserType()
	return nil
}

// RemoveUserType removes the "user" parameter.
// The global flag and the post-dial sequence are dropped.
func (u *SIP) RemoveUserType() {
	u.params.Del(ParamUser)
	u.syncUserType()
}

// syncUserType drops the user part fields the current user type does not allow:
// global flag and post-dial need "phone", ISDN sub-address needs "phone" or "ip".
func (u *SIP) syncUserType() {
	typ := u.UserType()
	if typ == UserTypePhone {
		return
	}
	u.global = false
	u.RemovePostDial()
	if typ != UserTypeIP {
		u.RemoveISDNSubAddress()
	}
}

// UserInfo returns a snapshot of the userinfo part.
func (u *SIP) UserInfo() UserInfo {
	if u == nil || !u.hasUser {
		return UserInfo{}
	}
	ui := UserInfo{usrname: u.usrname, passwd: u.passwd, hasPasswd: u.hasPasswd}
	if v, ok := u.params.Get(ParamUser); ok {
		ui.usrtype = v
	}
	return ui
}

// IsGlobal reports whether the telephone number in the user part is global.
func (u *SIP) IsGlobal() bool { return u != nil && u.global }

// SetGlobal sets the global flag of the telephone number. The user type must be "phone".
func (u *SIP) SetGlobal(global bool) error {
	if u.UserType() != UserTypePhone {
		return errtrace.Wrap(errorutil.NewWrongStateError("global number requires user=phone"))
	}
	u.global = global
	return nil
}

// ISDNSubAddress returns the ISDN sub-address of the user part.
func (u *SIP) ISDNSubAddress() (string, bool) {
	if u == nil {
		return "", false
	}
	return u.isub, u.hasISub
}

// SetISDNSubAddress sets the ISDN sub-address. The user type must be "phone" or "ip".
func (u *SIP) SetISDNSubAddress(isub string) error {
	if typ := u.UserType(); typ != UserTypePhone && typ != UserTypeIP {
		return errtrace.Wrap(errorutil.NewWrongStateError("ISDN sub-address requires user=phone or user=ip"))
	}
	if isub == "" {
		return errtrace.Wrap(errorutil.NewInvalidArgumentError("empty ISDN sub-address"))
	}
	u.isub, u.hasISub = isub, true
	return nil
}

// RemoveISDNSubAddress removes the ISDN sub-address.
func (u *SIP) RemoveISDNSubAddress() { u.isub, u.hasISub = "", false }

// PostDial returns the post-dial sequence of the user part.
func (u *SIP) PostDial() (string, bool) {
	if u == nil {
		return "", false
	}
	return u.postd, u.hasPostd
}

// SetPostDial sets the post-dial sequence. The user type must be "phone".
func (u *SIP) SetPostDial(postd string) error {
	if u.UserType() != UserTypePhone {
		return errtrace.Wrap(errorutil.NewWrongStateError("post-dial requires user=phone"))
	}
	if postd == "" {
		return errtrace.Wrap(errorutil.NewInvalidArgumentError("empty post-dial"))
	}
	u.postd, u.hasPostd = postd, true
	return nil
}

// RemovePostDial removes the post-dial sequence.
func (u *SIP) RemovePostDial() { u.postd, u.hasPostd = "", false }

// TelephoneNumber returns the telephone number of the user part when the user type is "phone".
func (u *SIP) TelephoneNumber() (*TelephoneNumber, bool) {
	if u == nil || !u.hasUser || u.UserType() != UserTypePhone || !grammar.IsTelNum(u.usrname) {
		return nil, false
	}
	tn := &TelephoneNumber{number: u.usrname, global: u.global}
	if u.hasISub {
		tn.params.Set(ParamISDNSubAddress, u.isub)
	}
	if u.hasPostd {
		tn.params.Set(ParamPostDial, u.postd)
	}
	return tn, true
}

// SetTelephoneNumber fills the user part from tn and sets the user type to "phone".
func (u *SIP) SetTelephoneNumber(tn *TelephoneNumber) error {
	if tn == nil || tn.number == "" {
		return errtrace.Wrap(errorutil.NewInvalidArgumentError("empty telephone number"))
	}
	u.params.Set(ParamUser, UserTypePhone)
	u.usrname, u.hasUser = tn.number, true
	u.global = tn.global
	u.isub, u.hasISub = tn.params.Get(ParamISDNSubAddress)
	u.postd, u.hasPostd = tn.params.Get(ParamPostDial)
	return nil
}

// Transport returns the "transport" parameter.
func (u *SIP) Transport() (string, bool) { return u.Param(ParamTransport) }

// SetTransport sets the "transport" parameter.
func (u *SIP) SetTransport(tp string) error {
	return errtrace.Wrap(u.setRequiredParam(ParamTransport, tp))
}

// RemoveTransport removes the "transport" parameter.
func (u *SIP) RemoveTransport() { u.params.Del(ParamTransport) }

// Method returns the "method" parameter.
func (u *SIP) Method() (string, bool) { return u.Param(ParamMethod) }

// SetMethod sets the "method" parameter.
func (u *SIP) SetMethod(mtd string) error {
	return errtrace.Wrap(u.setRequiredParam(ParamMethod, mtd))
}

// RemoveMethod removes the "method" parameter.
func (u *SIP) RemoveMethod() { u.params.Del(ParamMethod) }

// MAddr returns the "maddr" parameter.
func (u *SIP) MAddr() (string, bool) { return u.Param(ParamMAddr) }

// SetMAddr sets the "maddr" parameter.
func (u *SIP) SetMAddr(maddr string) error {
	return errtrace.Wrap(u.setRequiredParam(ParamMAddr, maddr))
}

// RemoveMAddr removes the "maddr" parameter.
func (u *SIP) RemoveMAddr() { u.params.Del(ParamMAddr) }

func (u *SIP) setRequiredParam(name, val string) error {
	if val == "" {
		return errtrace.Wrap(errorutil.NewInvalidArgumentError("empty " + name))
	}
	u.params.Set(name, val)
	return nil
}

// TTL returns the "ttl" parameter. Unparseable values are reported as absent.
func (u *SIP) TTL() (int, bool) {
	v, ok := u.Param(ParamTTL)
	if !ok {
		return 0, false
	}
	ttl, err := strconv.ParseUint(v, 10, 8)
	if err != nil {
		return 0, false
	}
	return int(ttl), true
}

// SetTTL sets the "ttl" parameter in range 0-255.
func (u *SIP) SetTTL(ttl int) error {
	if ttl < 0 || ttl > 255 {
		return errtrace.Wrap(errorutil.NewMalformedValueError("ttl %d out of range 0-255", ttl))
	}
	u.params.Set(ParamTTL, strconv.Itoa(ttl))
	return nil
}

// RemoveTTL removes the "ttl" parameter.
func (u *SIP) RemoveTTL() { u.params.Del(ParamTTL) }

// LR reports whether the "lr" parameter is present.
func (u *SIP) LR() bool { return u.HasParam(ParamLR) }

// SetLR adds or removes the "lr" parameter.
func (u *SIP) SetLR(lr bool) {
	if lr {
		u.params.Set(ParamLR, "")
	} else {
		u.params.Del(ParamLR)
	}
}

// Param returns the unescaped parameter value.
func (u *SIP) Param(name string) (string, bool) {
	if u == nil {
		return "", false
	}
	return u.params.Get(name)
}

// HasParam checks whether the parameter is present.
func (u *SIP) HasParam(name string) bool { return u != nil && u.params.Has(name) }

// SetParam sets the unescaped parameter value. Empty value renders a flag parameter.
func (u *SIP) SetParam(name, val string) error {
	if name == "" {
		return errtrace.Wrap(errorutil.NewInvalidArgumentError("empty parameter name"))
	}
	u.params.Set(name, val)
	if util.EqFold(name, ParamUser) {
		u.syncUserType()
	}
	return nil
}

// RemoveParam removes the parameter.
func (u *SIP) RemoveParam(name string) {
	u.params.Del(name)
	if util.EqFold(name, ParamUser) {
		u.syncUserType()
	}
}

// RemoveParams removes all parameters.
func (u *SIP) RemoveParams() {
	u.params.Clear()
	u.syncUserType()
}

// ParamNames returns parameter names in insertion order.
func (u *SIP) ParamNames() []string {
	if u == nil {
		return nil
	}
	return u.params.Names()
}

// Params returns a copy of all parameters.
func (u *SIP) Params() Params {
	if u == nil {
		return Params{}
	}
	return u.params.Clone()
}

// Header returns the unescaped header value.
func (u *SIP) Header(name string) (string, bool) {
	if u == nil {
		return "", false
	}
	return u.headers.Get(name)
}

// HasHeader checks whether the header is present.
func (u *SIP) HasHeader(name string) bool { return u != nil && u.headers.Has(name) }

// SetHeader sets the unescaped header value.
func (u *SIP) SetHeader(name, val string) error {
	if name == "" {
		return errtrace.Wrap(errorutil.NewInvalidArgumentError("empty header name"))
	}
	u.headers.Set(name, val)
	return nil
}

// RemoveHeader removes the header.
func (u *SIP) RemoveHeader(name string) { u.headers.Del(name) }

// RemoveHeaders removes all headers.
func (u *SIP) RemoveHeaders() { u.headers.Clear() }

// HeaderNames returns header names in insertion order.
func (u *SIP) HeaderNames() []string {
	if u == nil {
		return nil
	}
	return u.headers.Names()
}

// Headers returns a copy of all headers.
func (u *SIP) Headers() Params {
	if u == nil {
		return Params{}
	}
	return u.headers.Clone()
}

// Clone returns a deep copy of the SIP URI.
func (u *SIP) Clone() URI {
	if u == nil {
		return nil
	}
	return u.clone()
}

func (u *SIP) clone() *SIP {
	u2 := *u
	u2.params = u.params.Clone()
	u2.headers = u.headers.Clone()
	return &u2
}

// SchemeData returns the rendered URI without the "scheme:" prefix.
func (u *SIP) SchemeData() string {
	if u == nil {
		return ""
	}
	return ioutil.Render(u.renderData)
}

// RenderTo writes the SIP URI to the provided writer.
func (u *SIP) RenderTo(w io.Writer, _ *RenderOptions) (int, error) {
	if u == nil {
		return 0, nil
	}
	return errtrace.Wrap2(ioutil.RenderTo(w, u.renderTo))
}

func (u *SIP) renderTo(buf *ioutil.Buffer) {
	buf.WriteString(u.scheme())
	buf.WriteByte(':')
	u.renderData(buf)
}

func (u *SIP) renderData(buf *ioutil.Buffer) {
	if u.hasUser {
		if u.global {
			buf.WriteByte('+')
		}
		// a phone number keeps its own ";name=value" parameters, other users escape ';'
		if u.UserType() == UserTypePhone {
			buf.WriteString(grammar.EscapeUser(u.usrname))
		} else {
			buf.WriteString(grammar.EscapeUserSegment(u.usrname))
		}
		if u.hasISub {
			buf.WriteString(";" + ParamISDNSubAddress + "=")
			buf.WriteString(grammar.EscapeUserSegment(u.isub))
		}
		if u.hasPostd {
			buf.WriteString(";" + ParamPostDial + "=")
			buf.WriteString(grammar.EscapeUserSegment(u.postd))
		}
		if u.hasPasswd {
			buf.WriteByte(':')
			buf.WriteString(grammar.EscapePasswd(u.passwd))
		}
		buf.WriteByte('@')
	}

	if strings.IndexByte(u.host, ':') >= 0 {
		buf.WriteByte('[')
		buf.WriteString(u.host)
		buf.WriteByte(']')
	} else {
		buf.WriteString(u.host)
	}
	if u.hasPort {
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(u.port))
	}

	if u.params.Len() > 0 {
		buf.WriteByte(';')
		u.params.Encode(buf, ';', grammar.ShouldEscapeURIParamChar, false)
	}
	if u.headers.Len() > 0 {
		buf.WriteByte('?')
		u.headers.Encode(buf, '&', grammar.ShouldEscapeURIHeaderChar, true)
	}
}

// Render returns the string representation of the SIP URI.
func (u *SIP) Render(_ *RenderOptions) string {
	if u == nil {
		return ""
	}
	return ioutil.Render(u.renderTo)
}

// String returns the string representation of the SIP URI.
func (u *SIP) String() string { return u.Render(nil) }

// Format implements [fmt.Formatter] for custom formatting of the SIP URI.
func (u *SIP) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		if f.Flag('+') {
			u.RenderTo(f, nil) //nolint:errcheck
			return
		}
		fmt.Fprint(f, u.String())
		return
	case 'q':
		fmt.Fprint(f, strconv.Quote(u.String()))
		return
	default:
		type hideMethods SIP
		type SIP hideMethods
		fmt.Fprintf(f, fmt.FormatString(f, verb), (*SIP)(u))
		return
	}
}

// Equal compares this SIP URI with another for equality according to RFC 3261 Section 19.1.4.
// val can be a [SIP], a [*SIP] or a [*Shared] handle.
func (u *SIP) Equal(val any) bool {
	var other *SIP
	switch v := val.(type) {
	case SIP:
		other = &v
	case *SIP:
		other = v
	case *Shared:
		if v == nil {
			return false
		}
		other = v.get()
	default:
		return false
	}

	if u == other {
		return true
	} else if u == nil || other == nil {
		return false
	}

	return u.secured == other.secured &&
		util.EqFold(u.host, other.host) &&
		u.hasPort == other.hasPort && u.port == other.port &&
		u.hasUser == other.hasUser && u.usrname == other.usrname &&
		u.hasPasswd == other.hasPasswd && u.passwd == other.passwd &&
		u.hasISub == other.hasISub && u.isub == other.isub &&
		u.hasPostd == other.hasPostd && u.postd == other.postd &&
		u.global == other.global &&
		u.compareHeaders(&other.headers) &&
		u.compareParams(&other.params)
}

func (u *SIP) compareParams(params *Params) bool {
	// Any parameter appearing in both URIs must match,
	// a distinguished parameter appearing in one URI must appear in the other.
	for name, v1 := range u.params.All() {
		if v2, ok := params.Get(name); ok {
			if !util.EqFold(v1, v2) {
				return false
			}
		} else if IsDistinguishedParam(name) {
			return false
		}
	}
	for name := range params.All() {
		if !u.params.Has(name) && IsDistinguishedParam(name) {
			return false
		}
	}
	return true
}

func (u *SIP) compareHeaders(hdrs *Params) bool {
	// URI header components are never ignored.
	if u.headers.Len() != hdrs.Len() {
		return false
	}
	for name, v1 := range u.headers.All() {
		v2, ok := hdrs.Get(name)
		if !ok || !util.EqFold(v1, v2) {
			return false
		}
	}
	return true
}

var distinguishedParams = map[string]bool{
	ParamUser:      true,
	ParamTTL:       true,
	ParamMAddr:     true,
	ParamMethod:    true,
	ParamTransport: true,
}

// IsDistinguishedParam reports whether a parameter present in only one of two SIP URIs
// makes them unequal.
func IsDistinguishedParam(name string) bool { return distinguishedParams[util.Fold(name)] }

// Hash returns a hash code consistent with [SIP.Equal].
// Only distinguished parameters contribute since other parameters may be ignored by comparison.
func (u *SIP) Hash() uint64 {
	if u == nil {
		return 0
	}
	h := util.HashString(u.scheme()) ^
		util.HashString(u.usrname)*3 ^
		util.HashString(u.passwd)*5 ^
		util.HashFold(u.host)*7 ^
		uint64(u.port)*11 ^
		util.HashString(u.isub)*13 ^
		util.HashString(u.postd)*17 ^
		u.params.HashFold(IsDistinguishedParam)*19 ^
		u.headers.HashFold(nil)*23
	if u.global {
		h = ^h
	}
	return h
}

// IsValid checks whether the SIP URI has a host and a consistent userinfo.
func (u *SIP) IsValid() bool {
	return u != nil && u.host != "" && (u.hasUser || !u.hasPasswd)
}

// MarshalText implements [encoding.TextMarshaler].
func (u *SIP) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

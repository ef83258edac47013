// Package parser parses URIs and name-addr values into the types of packages uri and header.
//
// Input is matched against the RFC 3261 ABNF rules first, values are built from the resulting nodes.
// A [Parser] keeps scratch state between calls and must be owned by a single goroutine.
// The package-level functions take parsers from an internal pool.
package parser

//go:generate go tool errtrace -w .

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"

	"braces.dev/errtrace"
	"github.com/ghettovoice/abnf"

	"github.com/ghettovoice/sipaddr/header"
	"github.com/ghettovoice/sipaddr/internal/errorutil"
	"github.com/ghettovoice/sipaddr/internal/grammar"
	"github.com/ghettovoice/sipaddr/internal/syncutil"
	"github.com/ghettovoice/sipaddr/internal/util"
	"github.com/ghettovoice/sipaddr/log"
	"github.com/ghettovoice/sipaddr/uri"
)

// SchemeParser builds a URI of a custom scheme from the unescaped scheme data.
type SchemeParser func(scheme, data string) (uri.URI, error)

var schemes syncutil.RWMap[string, SchemeParser]

func init() {
	Register(uri.SchemeTel, parseTel)
}

// Register installs a parser for a scheme, replacing a previous one.
// Schemes are matched case-insensitively. The sip and sips schemes can not be overridden.
func Register(scheme string, fn SchemeParser) {
	scheme = util.LCase(scheme)
	if scheme == uri.SchemeSIP || scheme == uri.SchemeSIPS {
		return
	}
	if fn == nil {
		schemes.Del(scheme)
		return
	}
	schemes.Set(scheme, fn)
}

func parseTel(scheme, data string) (uri.URI, error) {
	if _, err := uri.ParseTelephoneNumber(data); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return errtrace.Wrap2(uri.NewGeneric(scheme, data))
}

// Options configures a [Parser].
type Options struct {
	// Logger is used to report rejected input at debug level.
	// If nil, the [log.Default] is used.
	Logger *slog.Logger
}

func (o *Options) log() *slog.Logger {
	if o == nil || o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

// Parser parses URIs and name-addr values.
// It is not safe for concurrent use.
type Parser struct {
	opts Options
	ns   *abnf.Nodes
}

// New creates a parser. Options are optional, default options are used if nil (see [Options]).
func New(opts *Options) *Parser {
	p := &Parser{ns: abnf.NewNodes()}
	if opts != nil {
		p.opts = *opts
	}
	return p
}

func newParseError(format string, args ...any) error {
	return errorutil.NewMalformedValueError(grammar.NewMalformedInputError(fmt.Sprintf(format, args...))) //errtrace:skip
}

func newEmptyError(what string) error {
	return errorutil.NewInvalidArgumentError(fmt.Errorf("%w: %s", grammar.ErrEmptyInput, what)) //errtrace:skip
}

// Parse parses an absolute URI "scheme:data".
// SIP and SIPS URIs are returned as [*uri.SIP], other schemes as [*uri.Generic]
// unless a custom parser is registered for them.
func (p *Parser) Parse(text string) (uri.URI, error) {
	text = util.TrimSP(text)
	if text == "" {
		return nil, errtrace.Wrap(newEmptyError("URI"))
	}
	scheme, data, ok := strings.Cut(text, ":")
	if !ok {
		return nil, errtrace.Wrap(p.reject("URI", text, newParseError("missing scheme in %q", text)))
	}
	u, err := p.ParseURI(scheme, data)
	if err != nil {
		return nil, errtrace.Wrap(p.reject("URI", text, err))
	}
	return u, nil
}

// ParseURI builds a URI from a scheme and escaped scheme data.
func (p *Parser) ParseURI(scheme, data string) (uri.URI, error) {
	if scheme == "" {
		return nil, errtrace.Wrap(newEmptyError("scheme"))
	}
	if data == "" {
		return nil, errtrace.Wrap(newEmptyError("scheme data"))
	}
	if !uri.IsValidScheme(scheme) {
		return nil, errtrace.Wrap(newParseError("invalid scheme %q", scheme))
	}

	switch ls := util.LCase(scheme); ls {
	case uri.SchemeSIP, uri.SchemeSIPS:
		return errtrace.Wrap2(p.parseSIPData(ls == uri.SchemeSIPS, data))
	default:
		if _, err := grammar.ParseOpaque(data, p.ns); err != nil {
			return nil, errtrace.Wrap(errorutil.NewMalformedValueError(err))
		}
		p.ns.Clear()
		unescaped := grammar.Unescape(data)
		if fn, ok := schemes.Get(ls); ok {
			u, err := fn(scheme, unescaped)
			if err != nil {
				return nil, errtrace.Wrap(errorutil.NewMalformedValueError(err))
			}
			if !uri.IsNative(u) {
				return nil, errtrace.Wrap(errorutil.NewCrossImplementationError(u))
			}
			return u, nil
		}
		return errtrace.Wrap2(uri.NewGeneric(scheme, unescaped))
	}
}

// ParseSIP parses a SIP or SIPS URI.
func (p *Parser) ParseSIP(text string) (*uri.SIP, error) {
	text = util.TrimSP(text)
	if text == "" {
		return nil, errtrace.Wrap(newEmptyError("SIP URI"))
	}
	scheme, data, ok := strings.Cut(text, ":")
	if !ok {
		return nil, errtrace.Wrap(p.reject("SIP URI", text, newParseError("missing scheme in %q", text)))
	}
	var secured bool
	switch util.LCase(scheme) {
	case uri.SchemeSIP:
	case uri.SchemeSIPS:
		secured = true
	default:
		return nil, errtrace.Wrap(p.reject("SIP URI", text, newParseError("unexpected scheme %q", scheme)))
	}
	u, err := p.parseSIPData(secured, data)
	if err != nil {
		return nil, errtrace.Wrap(p.reject("SIP URI", text, err))
	}
	return u, nil
}

func (p *Parser) parseSIPData(secured bool, data string) (*uri.SIP, error) {
	node, err := grammar.ParseSIPData(data, p.ns)
	if err != nil {
		return nil, errtrace.Wrap(errorutil.NewMalformedValueError(err))
	}
	defer p.ns.Clear()
	return errtrace.Wrap2(buildSIP(secured, node))
}

// buildSIP applies params before userinfo, the user part depends on the user param.
func buildSIP(secured bool, node *abnf.Node) (*uri.SIP, error) {
	u := new(uri.SIP)
	u.SetSecure(secured)

	if err := buildHostport(u, grammar.MustGetNode(node, "hostport")); err != nil {
		return nil, errtrace.Wrap(err)
	}
	for _, n := range node.GetNodes("uri-parameter") {
		var val string
		if vn, ok := n.GetNode("pvalue"); ok {
			val = grammar.Unescape(vn.String())
		}
		if err := u.SetParam(grammar.Unescape(grammar.MustGetNode(n, "pname").String()), val); err != nil {
			return nil, errtrace.Wrap(errorutil.NewMalformedValueError(err))
		}
	}
	for _, n := range node.GetNodes("header") {
		name := grammar.Unescape(grammar.MustGetNode(n, "hname").String())
		val := grammar.Unescape(grammar.MustGetNode(n, "hvalue").String())
		if err := u.SetHeader(name, val); err != nil {
			return nil, errtrace.Wrap(errorutil.NewMalformedValueError(err))
		}
	}
	if n, ok := node.GetNode("userinfo"); ok {
		if err := buildUserinfo(u, n); err != nil {
			return nil, errtrace.Wrap(err)
		}
	}
	return u, nil
}

func buildHostport(u *uri.SIP, node *abnf.Node) error {
	host := grammar.MustGetNode(node, "host")
	if ref, ok := host.GetNode("IPv6reference"); ok {
		addr := grammar.MustGetNode(ref, "IPv6address").String()
		if ip := net.ParseIP(addr); ip == nil || ip.To4() != nil && !strings.Contains(addr, ":") {
			return errtrace.Wrap(newParseError("invalid IPv6 reference %q", ref.String()))
		}
	}
	if err := u.SetHost(host.String()); err != nil {
		return errtrace.Wrap(errorutil.NewMalformedValueError(err))
	}

	if pn, ok := node.GetNode("port"); ok {
		n, err := strconv.ParseUint(pn.String(), 10, 16)
		if err != nil {
			return errtrace.Wrap(newParseError("invalid port %q", pn.String()))
		}
		if err := u.SetPort(int(n)); err != nil {
			return errtrace.Wrap(err)
		}
	}
	return nil
}

func buildUserinfo(u *uri.SIP, node *abnf.Node) error {
	user := grammar.MustGetNode(node, "user").String()
	switch u.UserType() {
	case uri.UserTypePhone, uri.UserTypeIP:
		if err := parseUserSegments(u, user); err != nil {
			return errtrace.Wrap(err)
		}
	default:
		u.SetUserName(grammar.Unescape(user))
	}

	if pn, ok := node.GetNode("password"); ok {
		if err := u.SetPassword(grammar.Unescape(pn.String())); err != nil {
			return errtrace.Wrap(err)
		}
	}
	return nil
}

// parseUserSegments splits the user part on ';' and takes out the ISDN sub-address,
// for a telephone number also the global prefix and the post-dial sequence.
// The rest of the segments stay in the user name.
func parseUserSegments(u *uri.SIP, user string) error {
	phone := u.UserType() == uri.UserTypePhone
	parts := strings.Split(user, ";")
	number := parts[0]
	if phone && strings.HasPrefix(number, "+") {
		number = number[1:]
		if err := u.SetGlobal(true); err != nil {
			return errtrace.Wrap(err)
		}
	}

	var sb strings.Builder
	sb.WriteString(grammar.Unescape(number))
	for _, part := range parts[1:] {
		name, val, _ := strings.Cut(part, "=")
		var err error
		switch lname := util.LCase(name); {
		case lname == uri.ParamISDNSubAddress:
			err = u.SetISDNSubAddress(grammar.Unescape(val))
		case lname == uri.ParamPostDial && phone:
			err = u.SetPostDial(grammar.Unescape(val))
		default:
			sb.WriteByte(';')
			sb.WriteString(grammar.Unescape(part))
		}
		if err != nil {
			return errtrace.Wrap(errorutil.NewMalformedValueError(err))
		}
	}
	if sb.Len() == 0 {
		return errtrace.Wrap(newParseError("empty user name in %q", user))
	}
	u.SetUserName(sb.String())
	return nil
}

// ParseNameAddr parses an address in the name-addr or addr-spec form.
//
//	"Alice" <sip:alice@example.com>
//	Alice <sip:alice@example.com;transport=tcp>
//	sip:alice@example.com
//
// Header parameters after the closing '>' are not part of the address and are rejected.
func (p *Parser) ParseNameAddr(text string) (*header.NameAddr, error) {
	na, err := p.parseNameAddr(util.TrimSP(text))
	if err != nil {
		return nil, errtrace.Wrap(p.reject("name-addr", text, err))
	}
	return na, nil
}

func (p *Parser) parseNameAddr(text string) (*header.NameAddr, error) {
	if text == "" {
		return nil, errtrace.Wrap(newEmptyError("name-addr"))
	}
	if text[0] != '"' && strings.IndexByte(text, '<') < 0 {
		addr, err := p.Parse(text)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		return errtrace.Wrap2(header.NewNameAddr(addr))
	}

	node, err := grammar.ParseNameAddr(text, p.ns)
	if err != nil {
		return nil, errtrace.Wrap(errorutil.NewMalformedValueError(err))
	}
	addrText := grammar.MustGetNode(node, "addr-spec").String()
	var display string
	if dn, ok := node.GetNode("display-name"); ok {
		if qn, ok := dn.GetNode("quoted-string"); ok {
			display = grammar.Unquote(qn.String())
		} else {
			display = dn.String()
		}
	}
	p.ns.Clear()

	addr, err := p.Parse(addrText)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return errtrace.Wrap2(header.NewNameAddrDisplay(addr, display))
}

func (p *Parser) reject(what, text string, err error) error {
	p.opts.log().Debug("rejected "+what, slog.String("input", text), slog.Any("error", err))
	return err //errtrace:skip
}

var pool = &sync.Pool{
	New: func() any { return New(nil) },
}

func getParser() *Parser { return pool.Get().(*Parser) } //nolint:forcetypeassert

func putParser(p *Parser) {
	p.ns.Clear()
	pool.Put(p)
}

// Parse parses an absolute URI with a pooled parser, see [Parser.Parse].
func Parse(text string) (uri.URI, error) {
	p := getParser()
	defer putParser(p)
	return errtrace.Wrap2(p.Parse(text))
}

// ParseSIP parses a SIP or SIPS URI with a pooled parser, see [Parser.ParseSIP].
func ParseSIP(text string) (*uri.SIP, error) {
	p := getParser()
	defer putParser(p)
	return errtrace.Wrap2(p.ParseSIP(text))
}

// ParseNameAddr parses an address with a pooled parser, see [Parser.ParseNameAddr].
func ParseNameAddr(text string) (*header.NameAddr, error) {
	p := getParser()
	defer putParser(p)
	return errtrace.Wrap2(p.ParseNameAddr(text))
}

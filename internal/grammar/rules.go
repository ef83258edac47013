package grammar

import (
	"strconv"

	"github.com/ghettovoice/abnf"
	"github.com/ghettovoice/abnf/pkg/abnf_core"
)

// The rules below are a subset of RFC 3261 section 25.1 composed from ABNF operators.
// Hostnames and IPv6 references are matched loosely and checked by the caller.

var core = abnf_core.Operators()

func lit(s string) abnf.Operator { return abnf.Literal(strconv.Quote(s), []byte(s)) }

func chars(key, set string) abnf.Operator {
	ops := make([]abnf.Operator, len(set))
	for i := range len(set) {
		ops[i] = lit(set[i : i+1])
	}
	return abnf.AltFirst(key, ops[0], ops[1:]...)
}

func octets(key string, low, high byte) abnf.Operator {
	return abnf.Range(key, []byte{low}, []byte{high})
}

var (
	alnum      = abnf.AltFirst("alphanum", core.ALPHA, core.DIGIT)
	escaped    = abnf.Concat("escaped", lit("%"), core.HEXDIG, core.HEXDIG)
	unreserved = abnf.AltFirst("unreserved", alnum, chars("mark", mark))

	user = abnf.Repeat1Inf("user", abnf.AltFirst("user-char",
		unreserved,
		escaped,
		chars("user-unreserved", "&=+$,;?/"),
	))
	password = abnf.Repeat0Inf("password", abnf.AltFirst("password-char",
		unreserved,
		escaped,
		chars("password-unreserved", "&=+$,"),
	))
	userinfo = abnf.Concat("userinfo",
		user,
		abnf.Optional(`[ ":" password ]`, abnf.Concat(`":" password`, lit(":"), password)),
		lit("@"),
	)

	hostname    = abnf.Repeat1Inf("hostname", abnf.AltFirst("hostname-char", alnum, chars("hostname-sep", "-._")))
	ipv6Address = abnf.Repeat1Inf("IPv6address", abnf.AltFirst("IPv6-char", core.HEXDIG, chars("IPv6-sep", ":.")))
	ipv6Ref     = abnf.Concat("IPv6reference", lit("["), ipv6Address, lit("]"))
	host        = abnf.AltFirst("host", ipv6Ref, hostname)
	port        = abnf.Repeat1Inf("port", core.DIGIT)
	hostport    = abnf.Concat("hostport",
		host,
		abnf.Optional(`[ ":" port ]`, abnf.Concat(`":" port`, lit(":"), port)),
	)

	paramchar     = abnf.AltFirst("paramchar", unreserved, escaped, chars("param-unreserved", "[]/:&+$"))
	uriParameter  = abnf.Concat("uri-parameter",
		abnf.Repeat1Inf("pname", paramchar),
		abnf.Optional(`[ "=" pvalue ]`, abnf.Concat(`"=" pvalue`, lit("="), abnf.Repeat1Inf("pvalue", paramchar))),
	)
	uriParameters = abnf.Repeat0Inf("uri-parameters", abnf.Concat(`";" uri-parameter`, lit(";"), uriParameter))

	hnvchar = abnf.AltFirst("hnvchar", unreserved, escaped, chars("hnv-unreserved", "[]/?:+$"))
	header  = abnf.Concat("header",
		abnf.Repeat1Inf("hname", hnvchar),
		lit("="),
		abnf.Repeat0Inf("hvalue", hnvchar),
	)
	headers = abnf.Concat("headers",
		lit("?"),
		header,
		abnf.Repeat0Inf(`*( "&" header )`, abnf.Concat(`"&" header`, lit("&"), header)),
	)

	// SIP-URI without the leading scheme
	sipData = abnf.Concat("sip-data",
		abnf.Optional("[ userinfo ]", userinfo),
		hostport,
		uriParameters,
		abnf.Optional("[ headers ]", headers),
	)

	opaque = abnf.Repeat1Inf("opaque-part", abnf.AltFirst("uric",
		unreserved,
		escaped,
		chars("reserved", reserved+"[]"),
	))

	lws        = abnf.Repeat1Inf("LWS", core.WSP)
	sws        = abnf.Repeat0Inf("SWS", core.WSP)
	token      = abnf.Repeat1Inf("token", abnf.AltFirst("token-char", alnum, chars("token-sep", "-.!%*_+`'~")))
	quotedPair = abnf.Concat("quoted-pair", lit(`\`), octets("%x00-7F", 0x00, 0x7f))
	qdtext     = abnf.AltFirst("qdtext",
		core.WSP,
		octets("%x21", 0x21, 0x21),
		octets("%x23-5B", 0x23, 0x5b),
		octets("%x5D-7E", 0x5d, 0x7e),
		octets("UTF8-NONASCII", 0x80, 0xff),
	)
	quotedString = abnf.Concat("quoted-string",
		core.DQUOTE,
		abnf.Repeat0Inf("*( qdtext / quoted-pair )", abnf.AltFirst("qchar", quotedPair, qdtext)),
		core.DQUOTE,
	)
	displayName = abnf.AltFirst("display-name",
		quotedString,
		abnf.Concat("display-tokens", token, abnf.Repeat0Inf("*( LWS token )", abnf.Concat("LWS token", lws, token))),
	)
	addrSpec = abnf.Repeat1Inf("addr-spec", abnf.AltFirst("addr-char",
		octets("%x21-3D", 0x21, 0x3d),
		octets("%x3F-7E", 0x3f, 0x7e),
	))
	nameAddr = abnf.Concat("name-addr",
		abnf.Optional("[ display-name ]", displayName),
		sws,
		lit("<"),
		addrSpec,
		lit(">"),
	)
)

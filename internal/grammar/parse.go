package grammar

import (
	"braces.dev/errtrace"
	"github.com/ghettovoice/abnf"

	"github.com/ghettovoice/sipaddr/internal/constraints"
)

func init() {
	abnf.EnableNodeCache(10 * 1024)
}

// MustGetNode returns a pointer to the ABNF node with the given key.
func MustGetNode(n *abnf.Node, k string) *abnf.Node {
	sn, ok := n.GetNode(k)
	if !ok {
		panic(errtrace.Wrap(NewMalformedInputError("node %q not found in node %q", k, n.Key)))
	}
	return sn
}

// parse applies rule to s and returns the node that spans the whole input.
// Nodes are collected into ns when it is not nil, the caller clears it after use of the result.
func parse[T constraints.Byteseq](rule abnf.Operator, s T, ns *abnf.Nodes) (*abnf.Node, error) {
	if len(s) == 0 {
		return nil, errtrace.Wrap(ErrEmptyInput)
	}

	if ns == nil {
		ns = abnf.NewNodes()
		defer ns.Free()
	} else {
		ns.Clear()
	}

	in := []byte(s)
	if err := rule(in, 0, ns); err != nil {
		return nil, errtrace.Wrap(NewMalformedInputError(err))
	}

	n := ns.Best()
	if nl, il := n.Len(), len(s); nl < il {
		return nil, errtrace.Wrap(NewMalformedInputError("unexpected %q at position %d", in[nl:], nl))
	}
	return n, nil
}

// ParseSIPData parses the part of SIP or SIPS URI after the scheme:
//
//	[ userinfo ] hostport uri-parameters [ headers ]
//
// The result has "userinfo", "user", "password", "hostport", "host", "IPv6reference", "port",
// "uri-parameter", "pname", "pvalue", "header", "hname" and "hvalue" nodes.
func ParseSIPData[T constraints.Byteseq](s T, ns *abnf.Nodes) (*abnf.Node, error) {
	return errtrace.Wrap2(parse(sipData, s, ns))
}

// ParseOpaque parses scheme data of a non-SIP URI (opaque-part with '[' and ']' allowed).
func ParseOpaque[T constraints.Byteseq](s T, ns *abnf.Nodes) (*abnf.Node, error) {
	return errtrace.Wrap2(parse(opaque, s, ns))
}

// ParseNameAddr parses the bracketed address form:
//
//	[ display-name ] SWS "<" addr-spec ">"
//
// The addr-spec node spans the raw URI text, which is parsed separately.
// The display-name node wraps either a "quoted-string" or a "display-tokens" node.
func ParseNameAddr[T constraints.Byteseq](s T, ns *abnf.Nodes) (*abnf.Node, error) {
	return errtrace.Wrap2(parse(nameAddr, s, ns))
}

// IsHostname reports whether s is a host name or an IPv4 address in the loose hostname form.
func IsHostname[T constraints.Byteseq](s T) bool {
	n, err := parse(hostname, s, nil)
	return err == nil && n.Len() == len(s)
}

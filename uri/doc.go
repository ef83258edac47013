// Package uri provides mutable value types for the URIs used in SIP addressing
// according to RFC 3261 and RFC 3966.
//
// # Overview
//
// The package implements three URI types:
//
//   - [Generic]: any absolute URI kept as a scheme and opaque scheme data.
//     The tel, fax and modem schemes are escaped with the telephone rules,
//     all other schemes with the generic URI rules.
//
//   - [SIP]: SIP and SIPS URIs (sip:, sips:) with user, password, telephone-subscriber
//     fields of the user part, host, port, parameters and headers.
//
//   - [Shared]: a copy-on-write handle over a [SIP] value that many holders may reference,
//     for example after interning by a factory. The first mutation through a handle
//     makes a private copy.
//
// All of them implement the [URI] interface. [*SIP] and [*Shared] also implement [SIPURI].
//
// # SIP URI Structure
//
// SIP and SIPS URIs follow the pattern:
//
//	sip:+user;isub=1;postd=pp2:password@host:port;param1=value1;param2?header1=value1&header2=value2
//
// Components are stored unescaped and escaped on rendering.
// Parameters and headers keep their insertion order.
//
//	u, _ := uri.NewSIPUser("alice", "example.com")
//	u.SetPort(5060)
//	u.SetTransport("tcp")
//	u.SetHeader("Subject", "Meeting")
//	fmt.Println(u) // sip:alice@example.com:5060;transport=tcp?Subject=Meeting
//
// SIP URI equality follows RFC 3261 Section 19.1.4: the host is compared case-insensitively,
// the user part case-sensitively, the user, ttl, maddr, method and transport parameters
// must be present in both URIs or in none, other parameters only need to match when present
// in both, headers are never ignored.
//
// # Hosts
//
// [Host] is a host name or IP literal that resolves to an IP address with a [Resolver]
// on the first call to [Host.IP] and caches the result.
//
// # Errors
//
// Setters validate their input and return [ErrInvalidArgument] for missing values,
// [ErrMalformedValue] for values that fail a format or range check
// and [ErrWrongState] when a precondition on another field is not met.
//
// # Thread Safety
//
// URI values are not safe for concurrent modification. Values referenced by [Shared] handles
// are never modified and can be read from many goroutines.
package uri

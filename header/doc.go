// Package header provides the name-addr value used by SIP address headers
// (From, To, Contact, Reply-To) as defined by RFC 3261 Section 20.10.
//
// A [NameAddr] couples an optional display name with a URI from package uri.
// It renders either the bare addr-spec form
//
//	sip:alice@example.com
//
// or the name-addr form
//
//	"Alice Smith" <sip:alice@example.com;transport=tcp>
//
// The name-addr form is chosen when a display name is present, when it is forced with
// [RenderOptions], or when the URI contains ',', ';' or '?' which would be ambiguous
// in a header value.
//
// Display names are written bare while they consist of token characters and spaces,
// otherwise they are quoted with '"' and '\' escaped.
package header

//go:generate go tool errtrace -w .

package uri

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipaddr/dns"
	"github.com/ghettovoice/sipaddr/internal/errorutil"
	"github.com/ghettovoice/sipaddr/internal/grammar"
	"github.com/ghettovoice/sipaddr/internal/util"
)

//go:generate go tool mockgen -destination=../internal/testutil/dnsmock/resolver.go -package=dnsmock . Resolver

// Resolver resolves host names to IP addresses.
// It is satisfied by [dns.Resolver] and [net.Resolver].
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// HostKind describes the form of a host.
type HostKind int

const (
	HostName HostKind = iota
	IPv4
	IPv6
)

func (k HostKind) String() string {
	switch k {
	case HostName:
		return "hostname"
	case IPv4:
		return "IPv4"
	case IPv6:
		return "IPv6"
	default:
		return "HostKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Host is a host name or IP literal that can be resolved to an IP address.
// A resolved address is cached after the first successful resolution.
// It is safe for concurrent use.
type Host struct {
	name string
	kind HostKind
	res  Resolver

	mu sync.Mutex
	ip net.IP
}

// NewHost creates a host. The name is trimmed, lower-cased and stripped of IPv6 brackets.
// Names that are neither an IP address nor a host name are rejected with [ErrMalformedValue].
// When r is nil the [dns.DefaultResolver] is used.
func NewHost(name string, r Resolver) (*Host, error) {
	name = util.TrimSP(name)
	name = util.LCase(strings.TrimSuffix(strings.TrimPrefix(name, "["), "]"))
	if name == "" {
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("empty host"))
	}
	if r == nil {
		r = dns.DefaultResolver()
	}

	h := &Host{name: name, res: r}
	if ip := net.ParseIP(name); ip != nil {
		if ip4 := ip.To4(); ip4 != nil && strings.IndexByte(name, ':') < 0 {
			h.kind, h.ip = IPv4, ip4
		} else {
			h.kind, h.ip = IPv6, ip
		}
	} else if !grammar.IsHostname(name) {
		return nil, errtrace.Wrap(errorutil.NewMalformedValueError("invalid host %q", name))
	}
	return h, nil
}

// Name returns the normalized host name without brackets.
func (h *Host) Name() string {
	if h == nil {
		return ""
	}
	return h.name
}

// Kind returns the host kind.
func (h *Host) Kind() HostKind {
	if h == nil {
		return HostName
	}
	return h.kind
}

// IsIP reports whether the host is an IP literal.
func (h *Host) IsIP() bool { return h != nil && h.kind != HostName }

// IP returns the IP address of the host.
// Host names are resolved with the host resolver, the first address is used.
// Blocks until resolution completes or ctx is done.
func (h *Host) IP(ctx context.Context) (net.IP, error) {
	if h == nil {
		return nil, errtrace.Wrap(errorutil.NewWrongStateError("nil host"))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ip != nil {
		return h.ip, nil
	}

	ips, err := h.res.LookupIP(ctx, "ip", h.name)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	if len(ips) == 0 {
		return nil, errtrace.Wrap(&net.DNSError{Err: "no addresses", Name: h.name, IsNotFound: true})
	}
	h.ip = ips[0]
	return h.ip, nil
}

// String returns the host as it appears in URIs, IPv6 literals are bracketed.
func (h *Host) String() string {
	if h == nil {
		return ""
	}
	if h.kind == IPv6 {
		return "[" + h.name + "]"
	}
	return h.name
}

// Equal compares hosts by kind and case-insensitive name.
func (h *Host) Equal(val any) bool {
	other, ok := val.(*Host)
	if !ok {
		return false
	}
	if h == other {
		return true
	} else if h == nil || other == nil {
		return false
	}
	return h.kind == other.kind && util.EqFold(h.name, other.name)
}

// Hash returns a hash code consistent with [Host.Equal].
func (h *Host) Hash() uint64 {
	if h == nil {
		return 0
	}
	return util.HashFold(h.name) ^ uint64(h.kind)
}

// IsValid checks whether the host has a name.
func (h *Host) IsValid() bool { return h != nil && h.name != "" }

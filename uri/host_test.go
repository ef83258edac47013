package uri_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/mock/gomock"

	"github.com/ghettovoice/sipaddr/internal/testutil/dnsmock"
	"github.com/ghettovoice/sipaddr/uri"
)

func TestNewHost(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		in       string
		wantName string
		wantKind uri.HostKind
		wantStr  string
		wantErr  error
	}{
		{"empty", "  ", "", uri.HostName, "", uri.ErrInvalidArgument},
		{"host name", " Example.COM ", "example.com", uri.HostName, "example.com", nil},
		{"ipv4", "192.0.2.1", "192.0.2.1", uri.IPv4, "192.0.2.1", nil},
		{"ipv6 bracketed", "[2001:DB8::1]", "2001:db8::1", uri.IPv6, "[2001:db8::1]", nil},
		{"ipv6 bare", "::1", "::1", uri.IPv6, "[::1]", nil},
		{"invalid", "exa mple.com", "", uri.HostName, "", uri.ErrMalformedValue},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			h, err := uri.NewHost(c.in, nil)
			if diff := cmp.Diff(err, c.wantErr, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("uri.NewHost(%q) error = %v, want %v\ndiff (-got +want):\n%v", c.in, err, c.wantErr, diff)
			}
			if err != nil {
				return
			}
			if h.Name() != c.wantName || h.Kind() != c.wantKind || h.String() != c.wantStr {
				t.Errorf("uri.NewHost(%q) = %q (%v, %q), want %q (%v, %q)",
					c.in, h.Name(), h.Kind(), h.String(), c.wantName, c.wantKind, c.wantStr)
			}
		})
	}
}

func TestHost_IP_Literal(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	res := dnsmock.NewMockResolver(ctrl)

	h, err := uri.NewHost("192.0.2.10", res)
	if err != nil {
		t.Fatalf("uri.NewHost() error = %v, want nil", err)
	}
	ip, err := h.IP(t.Context())
	if err != nil {
		t.Fatalf("h.IP() error = %v, want nil", err)
	}
	if !ip.Equal(net.IPv4(192, 0, 2, 10)) {
		t.Errorf("h.IP() = %v, want %v", ip, "192.0.2.10")
	}
}

func TestHost_IP_Resolve(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	res := dnsmock.NewMockResolver(ctrl)
	res.EXPECT().
		LookupIP(gomock.Any(), "ip", "sip.example.com").
		Return([]net.IP{net.IPv4(198, 51, 100, 7).To4(), net.IPv4(198, 51, 100, 8).To4()}, nil).
		Times(1)

	h, err := uri.NewHost("SIP.example.com", res)
	if err != nil {
		t.Fatalf("uri.NewHost() error = %v, want nil", err)
	}

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ip, err := h.IP(context.Background())
			if err != nil {
				t.Errorf("h.IP() error = %v, want nil", err)
				return
			}
			if !ip.Equal(net.IPv4(198, 51, 100, 7)) {
				t.Errorf("h.IP() = %v, want %v", ip, "198.51.100.7")
			}
		}()
	}
	wg.Wait()
}

func TestHost_IP_ResolveError(t *testing.T) {
	t.Parallel()

	errLookup := errors.New("no such host")

	ctrl := gomock.NewController(t)
	res := dnsmock.NewMockResolver(ctrl)
	gomock.InOrder(
		res.EXPECT().LookupIP(gomock.Any(), "ip", "example.com").Return(nil, errLookup),
		res.EXPECT().LookupIP(gomock.Any(), "ip", "example.com").Return(nil, nil),
		res.EXPECT().LookupIP(gomock.Any(), "ip", "example.com").Return([]net.IP{net.IPv4(192, 0, 2, 1)}, nil),
	)

	h, _ := uri.NewHost("example.com", res)

	_, err := h.IP(t.Context())
	if diff := cmp.Diff(err, errLookup, cmpopts.EquateErrors()); diff != "" {
		t.Errorf("h.IP() error = %v, want %v\ndiff (-got +want):\n%v", err, errLookup, diff)
	}

	_, err = h.IP(t.Context())
	var dnsErr *net.DNSError
	if !errors.As(err, &dnsErr) || !dnsErr.IsNotFound {
		t.Errorf("h.IP() error = %v, want not found DNS error", err)
	}

	// Failed lookups are not cached.
	if ip, err := h.IP(t.Context()); err != nil || !ip.Equal(net.IPv4(192, 0, 2, 1)) {
		t.Errorf("h.IP() = %v, %v, want %v, nil", ip, err, "192.0.2.1")
	}
}

func TestHost_Equal(t *testing.T) {
	t.Parallel()

	h1, _ := uri.NewHost("Example.com", nil)
	h2, _ := uri.NewHost("example.COM", nil)
	h3, _ := uri.NewHost("192.0.2.1", nil)

	if !h1.Equal(h2) || h1.Hash() != h2.Hash() {
		t.Errorf("h1.Equal(h2) = false, want true")
	}
	if h1.Equal(h3) {
		t.Errorf("h1.Equal(h3) = true, want false")
	}
	if h1.Equal("example.com") {
		t.Errorf("h1.Equal(string) = true, want false")
	}
}

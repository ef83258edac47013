package sipaddr_test

import (
	"bytes"
	"errors"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/ghettovoice/sipaddr"
	"github.com/ghettovoice/sipaddr/internal/testutil/dnsmock"
	"github.com/ghettovoice/sipaddr/uri"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestFactory_Create(t *testing.T) {
	t.Parallel()

	f := sipaddr.NewFactory(nil)

	cases := []struct {
		name    string
		create  func() (uri.URI, error)
		want    string
		wantErr error
	}{
		{"sip", func() (uri.URI, error) { return f.CreateSIP("example.com") }, "sip:example.com", nil},
		{"sip empty host", func() (uri.URI, error) { return f.CreateSIP(" ") }, "", sipaddr.ErrInvalidArgument},
		{"sip user", func() (uri.URI, error) { return f.CreateSIPUser("alice", "example.com") }, "sip:alice@example.com", nil},
		{"sip empty user", func() (uri.URI, error) { return f.CreateSIPUser("", "example.com") }, "", sipaddr.ErrInvalidArgument},
		{"sip from ipv4", func() (uri.URI, error) { return f.CreateSIPFromIP(net.IPv4(192, 0, 2, 1)) }, "sip:192.0.2.1", nil},
		{"sip from ipv6", func() (uri.URI, error) { return f.CreateSIPFromIP(net.ParseIP("2001:db8::1")) }, "sip:[2001:db8::1]", nil},
		{"sip from nil ip", func() (uri.URI, error) { return f.CreateSIPFromIP(nil) }, "", sipaddr.ErrInvalidArgument},
		{"uri sips", func() (uri.URI, error) { return f.CreateURI("sips", "bob@example.com:5061") }, "sips:bob@example.com:5061", nil},
		{"uri generic", func() (uri.URI, error) { return f.CreateURI("mailto", "alice@example.com") }, "mailto:alice@example.com", nil},
		{"uri empty scheme", func() (uri.URI, error) { return f.CreateURI("", "x") }, "", sipaddr.ErrInvalidArgument},
		{"uri empty data", func() (uri.URI, error) { return f.CreateURI("sip", "") }, "", sipaddr.ErrInvalidArgument},
		{"uri bad sip", func() (uri.URI, error) { return f.CreateURI("sip", "a b") }, "", sipaddr.ErrMalformedValue},
		{"parse", func() (uri.URI, error) { return f.ParseURI("SIP:alice@example.com;lr") }, "sip:alice@example.com;lr", nil},
		{"parse sip", func() (uri.URI, error) { return f.ParseSIP("sip:alice@example.com") }, "sip:alice@example.com", nil},
		{"parse invalid", func() (uri.URI, error) { return f.ParseURI("alice") }, "", sipaddr.ErrMalformedValue},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			u, err := c.create()
			if diff := cmp.Diff(err, c.wantErr, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("create error = %v, want %v\ndiff (-got +want):\n%v", err, c.wantErr, diff)
			}
			if err != nil {
				return
			}
			if got := u.String(); got != c.want {
				t.Errorf("create = %q, want %q", got, c.want)
			}
		})
	}
}

type foreignURI struct{ *uri.Generic }

func (u foreignURI) Clone() uri.URI { return u }

func TestFactory_CreateNameAddr(t *testing.T) {
	t.Parallel()

	f := sipaddr.NewFactory(nil)
	u, err := f.CreateSIPUser("alice", "example.com")
	if err != nil {
		t.Fatalf("f.CreateSIPUser() error = %v, want nil", err)
	}

	na, err := f.CreateNameAddrDisplay(u, "Alice")
	if err != nil {
		t.Fatalf("f.CreateNameAddrDisplay() error = %v, want nil", err)
	}
	if got, want := na.String(), "Alice <sip:alice@example.com>"; got != want {
		t.Errorf("na.String() = %q, want %q", got, want)
	}

	parsed, err := f.ParseNameAddr(`"Bob" <sip:alice@example.com>`)
	if err != nil {
		t.Fatalf("f.ParseNameAddr() error = %v, want nil", err)
	}
	if !parsed.Equal(na) {
		t.Errorf("parsed.Equal(na) = false, want true")
	}

	if _, err := f.CreateNameAddr(nil); !errors.Is(err, sipaddr.ErrInvalidArgument) {
		t.Errorf("f.CreateNameAddr(nil) error = %v, want %v", err, sipaddr.ErrInvalidArgument)
	}

	g, _ := uri.NewGeneric("mailto", "alice@example.com")
	_, err = f.CreateNameAddr(foreignURI{g})
	if !errors.Is(err, sipaddr.ErrCrossImplementation) || !errors.Is(err, sipaddr.ErrInvalidArgument) {
		t.Errorf("f.CreateNameAddr(foreign) error = %v, want %v", err, sipaddr.ErrCrossImplementation)
	}
}

func TestFactory_CreateHost(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	res := dnsmock.NewMockResolver(ctrl)
	res.EXPECT().
		LookupIP(gomock.Any(), "ip", "sip.example.com").
		Return([]net.IP{net.ParseIP("192.0.2.7")}, nil).
		Times(1)

	f := sipaddr.NewFactory(&sipaddr.FactoryOptions{Resolver: res})
	h, err := f.CreateHost("SIP.example.com")
	if err != nil {
		t.Fatalf("f.CreateHost() error = %v, want nil", err)
	}
	for range 2 {
		ip, err := h.IP(t.Context())
		if err != nil {
			t.Fatalf("h.IP() error = %v, want nil", err)
		}
		if !ip.Equal(net.ParseIP("192.0.2.7")) {
			t.Errorf("h.IP() = %v, want 192.0.2.7", ip)
		}
	}

	if _, err := f.CreateHost(""); !errors.Is(err, sipaddr.ErrInvalidArgument) {
		t.Errorf("f.CreateHost(\"\") error = %v, want %v", err, sipaddr.ErrInvalidArgument)
	}
}

func TestFactory_SharedSIP(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := sipaddr.NewFactory(&sipaddr.FactoryOptions{CacheSize: 2, Logger: debugLogger(&buf)})

	a, err := f.SharedSIP("alice", "example.com")
	if err != nil {
		t.Fatalf("f.SharedSIP() error = %v, want nil", err)
	}
	b, err := f.SharedSIP("alice", "example.com")
	if err != nil {
		t.Fatalf("f.SharedSIP() error = %v, want nil", err)
	}
	if !a.SameRef(b) {
		t.Errorf("a.SameRef(b) = false, want true")
	}
	if a.IsOwned() || b.IsOwned() {
		t.Errorf("fresh handles are owned, want shared")
	}
	if got := f.CacheLen(); got != 1 {
		t.Errorf("f.CacheLen() = %d, want 1", got)
	}

	if err := b.SetPort(5070); err != nil {
		t.Fatalf("b.SetPort() error = %v, want nil", err)
	}
	if a.SameRef(b) {
		t.Errorf("a.SameRef(b) = true after write, want false")
	}
	if got, want := a.String(), "sip:alice@example.com"; got != want {
		t.Errorf("a.String() = %q, want %q", got, want)
	}
	if got, want := b.String(), "sip:alice@example.com:5070"; got != want {
		t.Errorf("b.String() = %q, want %q", got, want)
	}

	c, err := f.SharedSIP("", "example.com")
	if err != nil {
		t.Fatalf("f.SharedSIP(\"\", host) error = %v, want nil", err)
	}
	if got, want := c.String(), "sip:example.com"; got != want {
		t.Errorf("c.String() = %q, want %q", got, want)
	}
	if _, err := f.SharedSIP("bob", "example.org"); err != nil {
		t.Fatalf("f.SharedSIP() error = %v, want nil", err)
	}
	if got := f.CacheLen(); got != 2 {
		t.Errorf("f.CacheLen() = %d, want 2", got)
	}

	if _, err := f.SharedSIP("alice", ""); !errors.Is(err, sipaddr.ErrInvalidArgument) {
		t.Errorf("f.SharedSIP(user, \"\") error = %v, want %v", err, sipaddr.ErrInvalidArgument)
	}

	out := buf.String()
	for _, want := range []string{
		`msg="SIP URI cached" uri=sip:alice@example.com`,
		`msg="SIP URI cache hit" uri=sip:alice@example.com`,
		`msg="SIP URI evicted from cache" uri=sip:alice@example.com`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output does not contain %q\n%s", want, out)
		}
	}

	f.PurgeCache()
	if got := f.CacheLen(); got != 0 {
		t.Errorf("f.CacheLen() after purge = %d, want 0", got)
	}
	if got, want := a.String(), "sip:alice@example.com"; got != want {
		t.Errorf("a.String() after purge = %q, want %q", got, want)
	}
}

func TestFactory_Intern(t *testing.T) {
	t.Parallel()

	f := sipaddr.NewFactory(nil)

	u, err := f.ParseSIP("sip:alice@example.com;transport=tcp")
	if err != nil {
		t.Fatalf("f.ParseSIP() error = %v, want nil", err)
	}
	s1 := f.Intern(u)
	s2 := f.Intern(u)
	if !s1.SameRef(s2) {
		t.Errorf("s1.SameRef(s2) = false, want true")
	}

	// the cache holds a copy, the caller keeps u
	u.SetUserName("mallory")
	if got, want := s1.String(), "sip:alice@example.com;transport=tcp"; got != want {
		t.Errorf("s1.String() = %q, want %q", got, want)
	}

	if s := f.Intern(nil); s == nil || s.IsValid() {
		t.Errorf("f.Intern(nil) = %v, want empty handle", s)
	}
}

func TestFactory_Parser(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := sipaddr.NewFactory(&sipaddr.FactoryOptions{Logger: debugLogger(&buf)})

	p := f.Parser()
	if _, err := p.Parse("sip:a b"); !errors.Is(err, sipaddr.ErrMalformedValue) {
		t.Errorf("p.Parse() error = %v, want %v", err, sipaddr.ErrMalformedValue)
	}
	if !strings.Contains(buf.String(), `msg="rejected URI"`) {
		t.Errorf("log output = %q, want rejected URI record", buf.String())
	}
}

func TestFactory_Concurrent(t *testing.T) {
	t.Parallel()

	f := sipaddr.NewFactory(&sipaddr.FactoryOptions{CacheSize: 8})
	hosts := []string{"a.example.com", "b.example.com", "c.example.com", "d.example.com"}

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := range 100 {
				host := hosts[(i+j)%len(hosts)]
				s, err := f.SharedSIP("alice", host)
				if err != nil {
					t.Errorf("f.SharedSIP() error = %v", err)
					return
				}
				if j%3 == 0 {
					if err := s.SetTransport("tcp"); err != nil {
						t.Errorf("s.SetTransport() error = %v", err)
						return
					}
				}
				if got := s.Host(); got != host {
					t.Errorf("s.Host() = %q, want %q", got, host)
					return
				}
				if _, err := f.ParseURI(s.String()); err != nil {
					t.Errorf("f.ParseURI(%q) error = %v", s, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := f.CacheLen(); got != len(hosts) {
		t.Errorf("f.CacheLen() = %d, want %d", got, len(hosts))
	}
	for _, host := range hosts {
		s, _ := f.SharedSIP("alice", host)
		if s.HasParam("transport") {
			t.Errorf("cached %q has been modified through a handle", s)
		}
	}
}

package dns_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	mdns "github.com/miekg/dns"

	"github.com/ghettovoice/sipaddr/dns"
)

func startServer(t *testing.T, zone map[string][]mdns.RR) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen UDP: %v", err)
	}

	handler := mdns.HandlerFunc(func(w mdns.ResponseWriter, req *mdns.Msg) {
		resp := new(mdns.Msg)
		resp.SetReply(req)
		q := req.Question[0]
		found := false
		for _, rr := range zone[q.Name] {
			if rr.Header().Rrtype == q.Qtype {
				resp.Answer = append(resp.Answer, rr)
			}
			found = true
		}
		if !found {
			resp.Rcode = mdns.RcodeNameError
		}
		_ = w.WriteMsg(resp)
	})

	started := make(chan struct{})
	srv := &mdns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("DNS server did not start")
	}
	return pc.LocalAddr().String()
}

func mustRR(t *testing.T, s string) mdns.RR {
	t.Helper()

	rr, err := mdns.NewRR(s)
	if err != nil {
		t.Fatalf("mdns.NewRR(%q) error = %v", s, err)
	}
	return rr
}

func TestResolver_LookupIP(t *testing.T) {
	t.Parallel()

	addr := startServer(t, map[string][]mdns.RR{
		"sip.example.com.": {
			mustRR(t, "sip.example.com. 60 IN A 192.0.2.10"),
			mustRR(t, "sip.example.com. 60 IN AAAA 2001:db8::10"),
		},
	})
	r := &dns.Resolver{NameServer: addr, Timeout: 2 * time.Second}

	cases := []struct {
		name    string
		network string
		host    string
		want    []string
	}{
		{"both families", "ip", "sip.example.com", []string{"192.0.2.10", "2001:db8::10"}},
		{"ipv4 only", "ip4", "sip.example.com", []string{"192.0.2.10"}},
		{"ipv6 only", "ip6", "sip.example.com", []string{"2001:db8::10"}},
		{"literal", "ip", "198.51.100.1", []string{"198.51.100.1"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			ips, err := r.LookupIP(context.Background(), c.network, c.host)
			if err != nil {
				t.Fatalf("r.LookupIP(%q, %q) error = %v, want nil", c.network, c.host, err)
			}
			got := make([]string, len(ips))
			for i, ip := range ips {
				got[i] = ip.String()
			}
			if diff := cmp.Diff(got, c.want); diff != "" {
				t.Errorf("r.LookupIP(%q, %q) mismatch (-got +want):\n%v", c.network, c.host, diff)
			}
		})
	}
}

func TestResolver_LookupIP_NotFound(t *testing.T) {
	t.Parallel()

	addr := startServer(t, nil)
	r := &dns.Resolver{NameServer: addr, Timeout: 2 * time.Second}

	_, err := r.LookupIP(t.Context(), "ip", "missing.example.com")
	var dnsErr *net.DNSError
	if !errors.As(err, &dnsErr) || !dnsErr.IsNotFound {
		t.Errorf("r.LookupIP() error = %v, want not found DNS error", err)
	}
}

func TestResolver_LookupNAPTR(t *testing.T) {
	t.Parallel()

	addr := startServer(t, map[string][]mdns.RR{
		"example.com.": {
			mustRR(t, `example.com. 60 IN NAPTR 20 10 "s" "SIP+D2U" "" _sip._udp.example.com.`),
			mustRR(t, `example.com. 60 IN NAPTR 10 20 "s" "SIPS+D2T" "" _sips._tcp.example.com.`),
			mustRR(t, `example.com. 60 IN NAPTR 10 10 "s" "SIP+D2T" "" _sip._tcp.example.com.`),
		},
	})
	r := &dns.Resolver{NameServer: addr}

	recs, err := r.LookupNAPTR(t.Context(), "example.com")
	if err != nil {
		t.Fatalf("r.LookupNAPTR() error = %v, want nil", err)
	}
	got := make([]string, len(recs))
	for i, rec := range recs {
		got[i] = rec.Service + " " + rec.Replacement
	}
	want := []string{
		"SIP+D2T _sip._tcp.example.com.",
		"SIPS+D2T _sips._tcp.example.com.",
		"SIP+D2U _sip._udp.example.com.",
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("r.LookupNAPTR() mismatch (-got +want):\n%v", diff)
	}
}

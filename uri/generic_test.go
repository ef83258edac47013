package uri_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ghettovoice/sipaddr/uri"
)

func TestNewGeneric(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		scheme     string
		data       string
		wantScheme string
		wantStr    string
		wantErr    error
	}{
		{"empty scheme", "", "x", "", "", uri.ErrMalformedValue},
		{"empty data", "http", "", "", "", uri.ErrMalformedValue},
		{"invalid scheme", "1http", "//x", "", "", uri.ErrMalformedValue},
		{"sip normalized", "SIP", "alice@example.com", "sip", "sip:alice@example.com", nil},
		{"tel normalized", "TeL", "+1-555 0100", "tel", "tel:+1-555%200100", nil},
		{"custom kept", "Foo", "bar", "Foo", "Foo:bar", nil},
		{"fax uses tel coder", "fax", "+1#2?", "fax", "fax:+1%232%3F", nil},
		{"generic coder", "http", "//example.com/a b?c=d", "http", "http://example.com/a%20b?c=d", nil},
		{"percent escaped", "urn", "a%20b", "urn", "urn:a%2520b", nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			u, err := uri.NewGeneric(c.scheme, c.data)
			if diff := cmp.Diff(err, c.wantErr, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("uri.NewGeneric(%q, %q) error = %v, want %v\ndiff (-got +want):\n%v", c.scheme, c.data, err, c.wantErr, diff)
			}
			if err != nil {
				return
			}
			if got := u.Scheme(); got != c.wantScheme {
				t.Errorf("u.Scheme() = %q, want %q", got, c.wantScheme)
			}
			if got := u.SchemeData(); got != c.data {
				t.Errorf("u.SchemeData() = %q, want %q", got, c.data)
			}
			if got := u.String(); got != c.wantStr {
				t.Errorf("u.String() = %q, want %q", got, c.wantStr)
			}
		})
	}
}

func TestGeneric_Equal(t *testing.T) {
	t.Parallel()

	mk := func(scheme, data string) *uri.Generic {
		u, err := uri.NewGeneric(scheme, data)
		if err != nil {
			t.Fatalf("uri.NewGeneric(%q, %q) error = %v", scheme, data, err)
		}
		return u
	}

	cases := []struct {
		name string
		u1   *uri.Generic
		u2   any
		want bool
	}{
		{"same", mk("http", "//example.com"), mk("HTTP", "//example.com"), false},
		{"same normalized", mk("tel", "+1"), mk("TEL", "+1"), true},
		{"value", mk("urn", "x"), *mk("urn", "x"), true},
		{"data case", mk("urn", "x"), mk("urn", "X"), false},
		{"other type", mk("sip", "alice@example.com"), mustSIP(t, "alice", "example.com"), false},
		{"nil", mk("urn", "x"), (*uri.Generic)(nil), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			if got := c.u1.Equal(c.u2); got != c.want {
				t.Errorf("u1.Equal(u2) = %v, want %v", got, c.want)
			}
			if u2, ok := c.u2.(*uri.Generic); ok && c.want && c.u1.Hash() != u2.Hash() {
				t.Errorf("u1.Hash() != u2.Hash() for equal URIs")
			}
		})
	}
}

func TestGeneric_SetScheme(t *testing.T) {
	t.Parallel()

	u, _ := uri.NewGeneric("urn", "x")
	err := u.SetScheme("")
	if diff := cmp.Diff(err, error(uri.ErrMalformedValue), cmpopts.EquateErrors()); diff != "" {
		t.Errorf("u.SetScheme(\"\") error = %v, want %v", err, uri.ErrMalformedValue)
	}
	if got := u.Scheme(); got != "urn" {
		t.Errorf("u.Scheme() = %q after failed set, want %q", got, "urn")
	}

	c, _ := u.Clone().(*uri.Generic)
	_ = c.SetSchemeData("y")
	if got := u.SchemeData(); got != "x" {
		t.Errorf("u.SchemeData() = %q after clone modification, want %q", got, "x")
	}
}

func TestIsNative(t *testing.T) {
	t.Parallel()

	g, _ := uri.NewGeneric("urn", "x")
	cases := []struct {
		name string
		u    uri.URI
		want bool
	}{
		{"nil", nil, false},
		{"typed nil", (*uri.SIP)(nil), false},
		{"generic", g, true},
		{"sip", mustSIP(t, "", "example.com"), true},
		{"shared", uri.NewShared(nil), true},
		{"foreign", foreignURI{}, false},
	}

	for _, c := range cases {
		if got := uri.IsNative(c.u); got != c.want {
			t.Errorf("uri.IsNative(%s) = %v, want %v", c.name, got, c.want)
		}
	}
}

type foreignURI struct{ *uri.Generic }

func (foreignURI) Clone() uri.URI { return foreignURI{} }

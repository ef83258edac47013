package uri_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ghettovoice/sipaddr/uri"
)

func TestParseTelephoneNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		in         string
		wantNumber string
		wantGlobal bool
		wantStr    string
		wantErr    error
	}{
		{"empty", "", "", false, "", uri.ErrInvalidArgument},
		{"invalid number", "xyz;isub=1", "", false, "", uri.ErrMalformedValue},
		{"empty param name", "123;=1", "", false, "", uri.ErrMalformedValue},
		{"local", "555-0100", "555-0100", false, "555-0100", nil},
		{"global with params", "+1(555)0100;isub=12;tsp=a.example;postd=pp1", "1(555)0100", true, "+1(555)0100;isub=12;tsp=a.example;postd=pp1", nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			tn, err := uri.ParseTelephoneNumber(c.in)
			if diff := cmp.Diff(err, c.wantErr, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("uri.ParseTelephoneNumber(%q) error = %v, want %v\ndiff (-got +want):\n%v", c.in, err, c.wantErr, diff)
			}
			if err != nil {
				return
			}
			if tn.Number() != c.wantNumber || tn.IsGlobal() != c.wantGlobal {
				t.Errorf("number = %q (global %v), want %q (global %v)", tn.Number(), tn.IsGlobal(), c.wantNumber, c.wantGlobal)
			}
			if got := tn.String(); got != c.wantStr {
				t.Errorf("tn.String() = %q, want %q", got, c.wantStr)
			}
		})
	}
}

func TestTelephoneNumber_Accessors(t *testing.T) {
	t.Parallel()

	tn, err := uri.NewTelephoneNumber("5550100", true)
	if err != nil {
		t.Fatalf("uri.NewTelephoneNumber() error = %v, want nil", err)
	}
	if err := tn.SetISDNSubAddress(""); err == nil {
		t.Error("tn.SetISDNSubAddress(\"\") error = nil, want error")
	}
	_ = tn.SetISDNSubAddress("9")
	_ = tn.SetPostDial("w3")
	_ = tn.SetProviderTag("carrier.example")

	if v, ok := tn.ISDNSubAddress(); !ok || v != "9" {
		t.Errorf("tn.ISDNSubAddress() = %q, %v, want %q, true", v, ok, "9")
	}
	if v, ok := tn.ProviderTag(); !ok || v != "carrier.example" {
		t.Errorf("tn.ProviderTag() = %q, %v, want %q, true", v, ok, "carrier.example")
	}
	tn.RemovePostDial()
	if _, ok := tn.PostDial(); ok {
		t.Error("tn.PostDial() is set after removal")
	}

	c := tn.Clone()
	c.SetGlobal(false)
	if !tn.IsGlobal() {
		t.Error("tn.IsGlobal() = false after clone modification, want true")
	}
}

func TestTelephoneNumber_Equal(t *testing.T) {
	t.Parallel()

	parse := func(t *testing.T, s string) *uri.TelephoneNumber {
		t.Helper()

		tn, err := uri.ParseTelephoneNumber(s)
		if err != nil {
			t.Fatalf("uri.ParseTelephoneNumber(%q) error = %v", s, err)
		}
		return tn
	}

	cases := []struct {
		name string
		a, b string
		want bool
	}{
		{"visual separators", "+1-555-0100", "+1.555.0100", true},
		{"global flag", "+15550100", "15550100", false},
		{"param order and case", "123;isub=A;postd=1", "123;POSTD=1;isub=a", true},
		{"param missing", "123;isub=1", "123", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			if got := parse(t, c.a).Equal(parse(t, c.b)); got != c.want {
				t.Errorf("%q.Equal(%q) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

package util_test

import (
	"testing"

	"github.com/ghettovoice/sipaddr/internal/util"
)

func TestHashFold(t *testing.T) {
	t.Parallel()

	if util.HashFold("Example.COM") != util.HashFold("example.com") {
		t.Errorf("util.HashFold() differs for case variants")
	}
	if util.HashString("Example.COM") == util.HashString("example.com") {
		t.Errorf("util.HashString() equal for case variants")
	}
	a, b := util.HashString("a"), util.HashString("b")
	if util.HashPair(a, b) == util.HashPair(b, a) {
		t.Errorf("util.HashPair() is symmetric")
	}
}

func TestStrings(t *testing.T) {
	t.Parallel()

	if got := util.LCase("SIP"); got != "sip" {
		t.Errorf("util.LCase(SIP) = %q, want %q", got, "sip")
	}
	if got := util.TrimSP(" \tsip\r\n"); got != "sip" {
		t.Errorf("util.TrimSP() = %q, want %q", got, "sip")
	}
	if !util.EqFold("Transport", "TRANSPORT") {
		t.Errorf("util.EqFold(Transport, TRANSPORT) = false, want true")
	}
}

func TestFold_MatchesEqFold(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want bool
	}{
		{"SCTP", "sctp", true},
		{"\u017fctp", "sctp", true}, // long s
		{"\u212a", "k", true},       // Kelvin sign
		{"Stra\u00dfe", "STRASSE", true},
		{"sip", "sips", false},
	}

	for _, c := range cases {
		if got := util.EqFold(c.a, c.b); got != c.want {
			t.Errorf("util.EqFold(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
		if !util.EqFold(c.a, c.b) {
			continue
		}
		if util.Fold(c.a) != util.Fold(c.b) {
			t.Errorf("util.Fold(%q) = %q, util.Fold(%q) = %q, want equal", c.a, util.Fold(c.a), c.b, util.Fold(c.b))
		}
		if util.HashFold(c.a) != util.HashFold(c.b) {
			t.Errorf("util.HashFold(%q) != util.HashFold(%q) for equal strings", c.a, c.b)
		}
	}
}

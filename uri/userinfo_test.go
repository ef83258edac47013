package uri_test

import (
	"testing"

	"github.com/ghettovoice/sipaddr/uri"
)

func TestUserInfo(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		ui       uri.UserInfo
		wantStr  string
		wantType string
		wantZero bool
	}{
		{"zero", uri.UserInfo{}, "", uri.UserTypeIP, true},
		{"user", uri.User("alice"), "alice", uri.UserTypeIP, false},
		{"escaped", uri.UserPassword("a@b", "p:w"), "a%40b:p%3Aw", uri.UserTypeIP, false},
		{"phone", uri.User("+1555").WithType(uri.UserTypePhone), "+1555", uri.UserTypePhone, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			if got := c.ui.String(); got != c.wantStr {
				t.Errorf("ui.String() = %q, want %q", got, c.wantStr)
			}
			if got := c.ui.UserType(); got != c.wantType {
				t.Errorf("ui.UserType() = %q, want %q", got, c.wantType)
			}
			if got := c.ui.IsZero(); got != c.wantZero {
				t.Errorf("ui.IsZero() = %v, want %v", got, c.wantZero)
			}
		})
	}
}

func TestSIP_UserInfo(t *testing.T) {
	t.Parallel()

	u := mustSIP(t, "alice", "example.com", withPassword("secret"), withParam("user", "phone"))
	want := uri.UserPassword("alice", "secret").WithType(uri.UserTypePhone)
	if got := u.UserInfo(); !got.Equal(want) {
		t.Errorf("u.UserInfo() = %q, want %q", got, want)
	}
	if u.UserInfo().Equal(uri.UserPassword("alice", "secret")) {
		t.Error("user info with different user types are equal")
	}
}

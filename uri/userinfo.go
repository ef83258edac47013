package uri

import (
	"github.com/ghettovoice/sipaddr/internal/grammar"
	"github.com/ghettovoice/sipaddr/internal/ioutil"
)

// User types carried by the "user" SIP URI parameter.
const (
	UserTypeIP    = "ip"
	UserTypePhone = "phone"
)

// UserInfo is a snapshot of the userinfo part of a [SIP] URI.
type UserInfo struct {
	usrname, passwd string
	hasPasswd       bool
	usrtype         string
}

// User returns a [UserInfo] containing the provided username and no password.
func User(usrname string) UserInfo {
	return UserInfo{usrname: usrname}
}

// UserPassword returns a [UserInfo] containing the provided username and password.
func UserPassword(usrname, passwd string) UserInfo {
	return UserInfo{usrname: usrname, passwd: passwd, hasPasswd: true}
}

// WithType returns a copy of ui with the user type set.
func (ui UserInfo) WithType(typ string) UserInfo {
	ui.usrtype = typ
	return ui
}

// Username returns the unescaped user name.
func (ui UserInfo) Username() string { return ui.usrname }

// Password returns the password, in case it is set, and a bool flag indicating whether it is set.
func (ui UserInfo) Password() (string, bool) { return ui.passwd, ui.hasPasswd }

// UserType returns the user type, "ip" when not set.
func (ui UserInfo) UserType() string {
	if ui.usrtype == "" {
		return UserTypeIP
	}
	return ui.usrtype
}

// IsPhone reports whether the user part is a telephone number.
func (ui UserInfo) IsPhone() bool { return ui.usrtype == UserTypePhone }

// String returns the escaped userinfo without the trailing "@".
func (ui UserInfo) String() string {
	return ioutil.Render(func(buf *ioutil.Buffer) {
		buf.WriteString(grammar.EscapeUser(ui.usrname))
		if ui.hasPasswd {
			buf.WriteByte(':')
			buf.WriteString(grammar.EscapePasswd(ui.passwd))
		}
	})
}

// Equal compares this UserInfo with another for equality.
// User names and passwords are compared case-sensitively.
func (ui UserInfo) Equal(val any) bool {
	var other UserInfo
	switch v := val.(type) {
	case UserInfo:
		other = v
	case *UserInfo:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return ui.usrname == other.usrname &&
		ui.passwd == other.passwd &&
		ui.hasPasswd == other.hasPasswd &&
		ui.UserType() == other.UserType()
}

// IsValid checks whether the UserInfo has a user name.
func (ui UserInfo) IsValid() bool { return ui.usrname != "" }

// IsZero checks whether the UserInfo is empty.
func (ui UserInfo) IsZero() bool { return ui.usrname == "" && ui.passwd == "" && !ui.hasPasswd }

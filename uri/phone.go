package uri

import (
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipaddr/internal/errorutil"
	"github.com/ghettovoice/sipaddr/internal/grammar"
	"github.com/ghettovoice/sipaddr/internal/ioutil"
	"github.com/ghettovoice/sipaddr/internal/util"
)

// Telephone number parameters.
const (
	ParamISDNSubAddress = "isub"
	ParamPostDial       = "postd"
	ParamProviderTag    = "tsp"
	ParamPhoneContext   = "phone-context"
)

// TelephoneNumber represents a telephone-subscriber as used in the user part of
// SIP URIs with user=phone.
type TelephoneNumber struct {
	number string
	global bool
	params Params
}

// NewTelephoneNumber creates a telephone number.
// A leading "+" in number marks the number as global as well.
func NewTelephoneNumber(number string, global bool) (*TelephoneNumber, error) {
	tn := new(TelephoneNumber)
	if err := tn.SetNumber(number); err != nil {
		return nil, errtrace.Wrap(err)
	}
	if global {
		tn.global = true
	}
	return tn, nil
}

// ParseTelephoneNumber parses a telephone-subscriber such as "+1-555-0100;isub=12;postd=pp22".
func ParseTelephoneNumber(s string) (*TelephoneNumber, error) {
	s = util.TrimSP(s)
	if s == "" {
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("empty telephone number"))
	}

	parts := strings.Split(s, ";")
	tn, err := NewTelephoneNumber(grammar.Unescape(parts[0]), false)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	for _, p := range parts[1:] {
		name, val, _ := strings.Cut(p, "=")
		if name == "" {
			return nil, errtrace.Wrap(errorutil.NewMalformedValueError("empty parameter name in %q", s))
		}
		tn.params.Set(grammar.Unescape(name), grammar.Unescape(val))
	}
	return tn, nil
}

// Number returns the number without the global "+" prefix.
// Visual separators are kept as given.
func (tn *TelephoneNumber) Number() string {
	if tn == nil {
		return ""
	}
	return tn.number
}

// SetNumber sets the number. A leading "+" marks the number global.
func (tn *TelephoneNumber) SetNumber(number string) error {
	number = util.TrimSP(number)
	if number == "" {
		return errtrace.Wrap(errorutil.NewInvalidArgumentError("empty telephone number"))
	}
	if !grammar.IsTelNum(number) {
		return errtrace.Wrap(errorutil.NewMalformedValueError("invalid telephone number " + strconv.Quote(number)))
	}
	if number[0] == '+' {
		tn.global = true
		number = number[1:]
	}
	tn.number = number
	return nil
}

// IsGlobal reports whether the number is in the global (E.164) form.
func (tn *TelephoneNumber) IsGlobal() bool { return tn != nil && tn.global }

// SetGlobal sets the global flag.
func (tn *TelephoneNumber) SetGlobal(global bool) { tn.global = global }

// ISDNSubAddress returns the "isub" parameter.
func (tn *TelephoneNumber) ISDNSubAddress() (string, bool) { return tn.Param(ParamISDNSubAddress) }

// SetISDNSubAddress sets the "isub" parameter.
func (tn *TelephoneNumber) SetISDNSubAddress(s string) error {
	return errtrace.Wrap(tn.SetParam(ParamISDNSubAddress, s))
}

// RemoveISDNSubAddress removes the "isub" parameter.
func (tn *TelephoneNumber) RemoveISDNSubAddress() { tn.RemoveParam(ParamISDNSubAddress) }

// PostDial returns the "postd" parameter.
func (tn *TelephoneNumber) PostDial() (string, bool) { return tn.Param(ParamPostDial) }

// SetPostDial sets the "postd" parameter.
func (tn *TelephoneNumber) SetPostDial(s string) error {
	return errtrace.Wrap(tn.SetParam(ParamPostDial, s))
}

// RemovePostDial removes the "postd" parameter.
func (tn *TelephoneNumber) RemovePostDial() { tn.RemoveParam(ParamPostDial) }

// ProviderTag returns the "tsp" parameter.
func (tn *TelephoneNumber) ProviderTag() (string, bool) { return tn.Param(ParamProviderTag) }

// SetProviderTag sets the "tsp" parameter.
func (tn *TelephoneNumber) SetProviderTag(s string) error {
	return errtrace.Wrap(tn.SetParam(ParamProviderTag, s))
}

// RemoveProviderTag removes the "tsp" parameter.
func (tn *TelephoneNumber) RemoveProviderTag() { tn.RemoveParam(ParamProviderTag) }

// Param returns the parameter value.
func (tn *TelephoneNumber) Param(name string) (string, bool) {
	if tn == nil {
		return "", false
	}
	return tn.params.Get(name)
}

// SetParam sets the parameter value. Both name and value are required.
func (tn *TelephoneNumber) SetParam(name, value string) error {
	if name == "" {
		return errtrace.Wrap(errorutil.NewInvalidArgumentError("empty parameter name"))
	}
	if value == "" {
		return errtrace.Wrap(errorutil.NewInvalidArgumentError("empty value of parameter " + strconv.Quote(name)))
	}
	tn.params.Set(name, value)
	return nil
}

// RemoveParam removes the parameter.
func (tn *TelephoneNumber) RemoveParam(name string) { tn.params.Del(name) }

// Params returns a copy of all parameters.
func (tn *TelephoneNumber) Params() Params {
	if tn == nil {
		return Params{}
	}
	return tn.params.Clone()
}

// String returns the escaped telephone-subscriber.
func (tn *TelephoneNumber) String() string {
	if tn == nil {
		return ""
	}
	return ioutil.Render(func(buf *ioutil.Buffer) {
		if tn.global {
			buf.WriteByte('+')
		}
		buf.WriteString(grammar.EscapeUser(tn.number))
		for name, val := range tn.params.All() {
			buf.WriteByte(';')
			buf.WriteString(grammar.EscapeUser(name))
			buf.WriteByte('=')
			buf.WriteString(grammar.EscapeUser(val))
		}
	})
}

// Equal compares numbers ignoring visual separators, parameter order and case of parameters.
func (tn *TelephoneNumber) Equal(val any) bool {
	var other *TelephoneNumber
	switch v := val.(type) {
	case TelephoneNumber:
		other = &v
	case *TelephoneNumber:
		other = v
	default:
		return false
	}

	if tn == other {
		return true
	} else if tn == nil || other == nil {
		return false
	}
	return tn.global == other.global &&
		util.EqFold(grammar.CleanTelNum(tn.number), grammar.CleanTelNum(other.number)) &&
		tn.params.EqualFold(&other.params)
}

// Clone returns a deep copy of the number.
func (tn *TelephoneNumber) Clone() *TelephoneNumber {
	if tn == nil {
		return nil
	}
	tn2 := *tn
	tn2.params = tn.params.Clone()
	return &tn2
}

// IsValid checks whether the number is set.
func (tn *TelephoneNumber) IsValid() bool { return tn != nil && grammar.IsTelNum(tn.number) }

// Package types contains common types used across the address packages.
package types

import "io"

// Renderer is an interface that is used to render a type to a string or a writer.
type Renderer interface {
	// Render renders the type to a string with the given options.
	Render(opts *RenderOptions) string
	// RenderTo renders the type to a writer with the given options.
	RenderTo(w io.Writer, opts *RenderOptions) (int, error)
}

// RenderOptions is a struct that is used to pass options to rendering methods.
// A nil *RenderOptions is valid and means all options are off.
type RenderOptions struct {
	// ForceNameAddr makes addresses always use the name-addr form ("<" addr-spec ">").
	ForceNameAddr bool `json:"force_name_addr,omitempty"`
	// ForceQuotedDisplayName makes display names always quoted.
	ForceQuotedDisplayName bool `json:"force_quoted_display_name,omitempty"`
	// AllowQuotedDisplayName passes display names that already start with a double quote as is.
	AllowQuotedDisplayName bool `json:"allow_quoted_display_name,omitempty"`
}

func (o *RenderOptions) NameAddrForced() bool { return o != nil && o.ForceNameAddr }

func (o *RenderOptions) QuotingForced() bool { return o != nil && o.ForceQuotedDisplayName }

func (o *RenderOptions) QuotedAllowed() bool { return o != nil && o.AllowQuotedDisplayName }

type ValidFlag interface {
	IsValid() bool
}

// IsValid returns true if the value has method `IsValid() bool` and it returns true.
func IsValid(v any) bool {
	vv, ok := v.(ValidFlag)
	return ok && vv.IsValid()
}

type Equalable interface {
	Equal(val any) bool
}

type Hashable interface {
	Hash() uint64
}

type Cloneable[T any] interface {
	Clone() T
}

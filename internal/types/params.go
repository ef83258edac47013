package types

import (
	"iter"
	"slices"

	"github.com/ghettovoice/sipaddr/internal/grammar"
	"github.com/ghettovoice/sipaddr/internal/ioutil"
	"github.com/ghettovoice/sipaddr/internal/util"
)

// Params is an ordered list of name/value pairs with case-insensitive names.
// It is typically used to store URI parameters and headers.
// The zero value is an empty list ready to use.
type Params struct {
	kvs []kv
}

type kv struct {
	name, value string
}

// NewParams builds Params from the list of name/value pairs.
// An odd trailing name gets an empty value.
func NewParams(pairs ...string) Params {
	var ps Params
	for i := 0; i < len(pairs); i += 2 {
		var v string
		if i+1 < len(pairs) {
			v = pairs[i+1]
		}
		ps.Set(pairs[i], v)
	}
	return ps
}

func (ps *Params) index(name string) int {
	for i := range ps.kvs {
		if util.EqFold(ps.kvs[i].name, name) {
			return i
		}
	}
	return -1
}

// Get returns the value of the parameter with the given name.
func (ps *Params) Get(name string) (string, bool) {
	if ps == nil {
		return "", false
	}
	if i := ps.index(name); i >= 0 {
		return ps.kvs[i].value, true
	}
	return "", false
}

// Has checks whether a parameter with the given name is in the list.
func (ps *Params) Has(name string) bool {
	return ps != nil && ps.index(name) >= 0
}

// Set replaces the value of an existing parameter keeping its position,
// or appends a new one.
func (ps *Params) Set(name, value string) *Params {
	if i := ps.index(name); i >= 0 {
		ps.kvs[i].value = value
		return ps
	}
	ps.kvs = append(ps.kvs, kv{name, value})
	return ps
}

// Del removes the parameter with the given name.
func (ps *Params) Del(name string) *Params {
	if i := ps.index(name); i >= 0 {
		ps.kvs = slices.Delete(ps.kvs, i, i+1)
	}
	return ps
}

// Clear removes all parameters.
func (ps *Params) Clear() *Params {
	ps.kvs = nil
	return ps
}

// Len returns the number of parameters.
func (ps *Params) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.kvs)
}

// All iterates over parameters in insertion order.
func (ps *Params) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if ps == nil {
			return
		}
		for _, kv := range ps.kvs {
			if !yield(kv.name, kv.value) {
				return
			}
		}
	}
}

// Names returns parameter names in insertion order.
func (ps *Params) Names() []string {
	if ps.Len() == 0 {
		return nil
	}
	names := make([]string, len(ps.kvs))
	for i, kv := range ps.kvs {
		names[i] = kv.name
	}
	return names
}

// Clone returns a deep copy of the list.
func (ps *Params) Clone() Params {
	if ps.Len() == 0 {
		return Params{}
	}
	return Params{kvs: slices.Clone(ps.kvs)}
}

// EqualFold reports whether both lists have the same names with case-insensitively equal values,
// regardless of order.
func (ps *Params) EqualFold(other *Params) bool {
	if ps.Len() != other.Len() {
		return false
	}
	for name, v1 := range ps.All() {
		v2, ok := other.Get(name)
		if !ok || !util.EqFold(v1, v2) {
			return false
		}
	}
	return true
}

// HashFold returns an order-independent hash of lower-cased names and values.
// If filter is not nil only names accepted by it are hashed.
func (ps *Params) HashFold(filter func(name string) bool) uint64 {
	var h uint64
	for name, val := range ps.All() {
		if filter != nil && !filter(name) {
			continue
		}
		h ^= util.HashPair(util.HashFold(name), util.HashFold(val))
	}
	return h
}

// Encode writes parameters as name["=" value] pairs joined by sep.
// Names and values are escaped with shouldEscape when it is not nil.
// When forceEq is set, "=" is written even for empty values.
func (ps *Params) Encode(buf *ioutil.Buffer, sep byte, shouldEscape func(c byte) bool, forceEq bool) {
	if ps == nil {
		return
	}
	for i, kv := range ps.kvs {
		if i > 0 {
			buf.WriteByte(sep)
		}
		name, val := kv.name, kv.value
		if shouldEscape != nil {
			name, val = grammar.Escape(name, shouldEscape), grammar.Escape(val, shouldEscape)
		}
		buf.WriteString(name)
		if val != "" || forceEq {
			buf.WriteByte('=')
			buf.WriteString(val)
		}
	}
}

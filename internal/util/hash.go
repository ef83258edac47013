package util

import "hash/fnv"

// HashString returns the 64-bit FNV-1a hash of s.
func HashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s)) //nolint:errcheck
	return h.Sum64()
}

// HashFold returns the 64-bit FNV-1a hash of the folded s, see [Fold].
func HashFold(s string) uint64 { return HashString(Fold(s)) }

// HashPair mixes hashes of a name and a value so that swapped pairs produce different results.
func HashPair(name, value uint64) uint64 { return name*31 ^ value }

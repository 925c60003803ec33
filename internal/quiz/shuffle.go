// Package quiz holds the pure in-memory parts of quiz delivery: the
// deterministic shuffle and the server-side grading engine.
package quiz

import (
	"hash/fnv"
	"math/rand/v2"
)

// Shuffle returns a uniformly random permutation of s. The input is never
// modified.
func Shuffle[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// ShuffleSeeded permutes s deterministically from a string seed: the same
// seed always yields the same permutation of a same-length input, across
// processes and restarts. An empty seed falls back to Shuffle.
func ShuffleSeeded[T any](s []T, seed string) []T {
	if seed == "" {
		return Shuffle(s)
	}
	out := make([]T, len(s))
	copy(out, s)
	next := mulberry32(hash32(seed))
	for i := len(out) - 1; i > 0; i-- {
		j := int(next() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Permutation returns the index permutation ShuffleSeeded applies to a
// sequence of length n: out[i] is the canonical index of the element
// delivered at shuffled position i.
func Permutation(n int, seed string) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return ShuffleSeeded(perm, seed)
}

// Invert builds the inverse permutation table: for p := Permutation(n, seed),
// Invert(p)[canonical] is the shuffled position of that element. Answer
// indices submitted in shuffled space are mapped back through this table
// rather than by re-running the shuffle blindly.
func Invert(perm []int) []int {
	inv := make([]int, len(perm))
	for pos, canonical := range perm {
		inv[canonical] = pos
	}
	return inv
}

// hash32 derives a 32-bit value from an arbitrary seed string (FNV-1a).
func hash32(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// mulberry32 is a tiny deterministic generator yielding floats in [0, 1).
// The 32-bit state arithmetic is fixed, so permutations are stable across
// platforms.
func mulberry32(seed uint32) func() float64 {
	state := seed
	return func() float64 {
		state += 0x6D2B79F5
		z := state
		z = (z ^ (z >> 15)) * (z | 1)
		z ^= z + (z^(z>>7))*(z|61)
		z ^= z >> 14
		return float64(z) / 4294967296.0
	}
}

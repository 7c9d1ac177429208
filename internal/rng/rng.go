// Package rng provides the reproducible random stream used by generation.
//
// The stream is a counter-based generator: a 32-bit state is advanced by a
// fixed odd increment and each output is an avalanche mix of that state, so
// equal seeds always produce bit-identical sequences of float64 values in
// [0, 1).
package rng

import (
	"math/rand/v2"
	"strconv"
	"unicode/utf16"
)

// Source yields float64 values in [0, 1).
type Source interface {
	Float64() float64
}

const increment = 0x6D2B79F5

// Mulberry32 is a deterministic Source.
type Mulberry32 struct {
	state uint32
}

// New returns a generator starting from an integer seed.
func New(seed int32) *Mulberry32 {
	return &Mulberry32{state: uint32(seed)}
}

// NewText returns a generator whose seed is the rolling hash of s.
func NewText(s string) *Mulberry32 {
	return New(HashString(s))
}

// Float64 advances the state and returns the next value in [0, 1).
func (m *Mulberry32) Float64() float64 {
	m.state += increment
	s := m.state
	t := (s ^ (s >> 15)) * (1 | s)
	t = (t + (t^(t>>7))*(61|t)) ^ t
	return float64(t^(t>>14)) / 4294967296
}

// HashString folds s into a 32-bit seed with a multiply-by-31 rolling hash
// over its UTF-16 code units.
func HashString(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(c)
	}
	return h
}

// Intn returns a uniform integer in [lo, hi]. The bounds may be given in
// either order.
func Intn(src Source, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return int(src.Float64()*float64(hi-lo+1)) + lo
}

// entropy is the non-deterministic Source used when no seed is given.
type entropy struct{}

func (entropy) Float64() float64 { return rand.Float64() }

// Seed is an optional generation seed, given either as text or as an integer.
// The zero value means "no seed".
type Seed struct {
	text string
	set  bool
}

// None is the absent seed.
var None = Seed{}

// Text returns a seed built from arbitrary text.
func Text(s string) Seed {
	return Seed{text: s, set: true}
}

// Int returns a seed built from an integer.
func Int(n int64) Seed {
	return Seed{text: strconv.FormatInt(n, 10), set: true}
}

// IsSet reports whether a seed was supplied.
func (s Seed) IsSet() bool { return s.set }

// String returns the seed's text form, or "" when no seed was supplied.
func (s Seed) String() string { return s.text }

// ForOutput derives the Source for the index-th output of a batch. With no
// seed the result is non-deterministic.
func (s Seed) ForOutput(index int) Source {
	if !s.set {
		return entropy{}
	}
	return NewText(s.text + " /// " + strconv.Itoa(index))
}

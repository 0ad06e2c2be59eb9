// Package valset implements ValueSet, a fixed-capacity bitset over the
// non-negative integers [0, MaxValue] used throughout the lexer-generator
// pipeline to represent byte ranges, position sets, and pattern-number
// sets.
//
// ValueSet is a value type: the zero value is the empty set and is safe to
// use directly. Mutating methods take a pointer receiver and allocate
// storage lazily on first write. Set-algebra operations (UnionWith,
// IntersectWith, XorWith, SubtractWith) mutate their receiver in place;
// the free functions (Union, Intersect, Xor, Subtract) clone first and
// return a new, independent set.
package valset

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bitset"
	"github.com/twmb/murmur3"
)

// MaxValue is the largest value a ValueSet can hold. It bounds both
// position indices assigned by the attribute engine and pattern numbers
// assigned by the DFA builder.
const MaxValue = 1023

const capacity = MaxValue + 1

// ValueSet is a bitset over [0, MaxValue]. Two sets are equal iff they
// contain exactly the same values, independent of how they were built -
// this structural equality is what the DFA builder's state registry keys
// on.
type ValueSet struct {
	bits *bitset.BitSet
}

// NewRange returns a ValueSet containing every value in [lo, hi].
func NewRange(lo, hi int) ValueSet {
	var s ValueSet
	s.AddRange(lo, hi)
	return s
}

func (s *ValueSet) lazy() *bitset.BitSet {
	if s.bits == nil {
		s.bits = bitset.New(capacity)
	}
	return s.bits
}

// Clone returns an independent copy of s.
func (s ValueSet) Clone() ValueSet {
	if s.bits == nil {
		return ValueSet{}
	}
	return ValueSet{bits: s.bits.Clone()}
}

// Add inserts v into the set.
func (s *ValueSet) Add(v int) {
	s.lazy().Set(uint(v))
}

// AddRange inserts every value in [lo, hi] into the set.
func (s *ValueSet) AddRange(lo, hi int) {
	b := s.lazy()
	for v := lo; v <= hi; v++ {
		b.Set(uint(v))
	}
}

// Remove deletes v from the set.
func (s *ValueSet) Remove(v int) {
	if s.bits == nil {
		return
	}
	s.bits.Clear(uint(v))
}

// RemoveRange deletes every value in [lo, hi] from the set.
func (s *ValueSet) RemoveRange(lo, hi int) {
	if s.bits == nil {
		return
	}
	for v := lo; v <= hi; v++ {
		s.bits.Clear(uint(v))
	}
}

// Contains reports whether v is in the set.
func (s ValueSet) Contains(v int) bool {
	if s.bits == nil || v < 0 {
		return false
	}
	return s.bits.Test(uint(v))
}

// IsEmpty reports whether the set contains no values.
func (s ValueSet) IsEmpty() bool {
	if s.bits == nil {
		return true
	}
	return s.bits.None()
}

// First returns the smallest value in the set, or -1 if the set is empty.
func (s ValueSet) First() int {
	if s.bits == nil {
		return -1
	}
	i, ok := s.bits.NextSet(0)
	if !ok {
		return -1
	}
	return int(i)
}

// NextAfter returns the smallest value strictly greater than v, or -1 if
// none exists. Callers iterate a set with:
//
//	for p := s.First(); p != -1; p = s.NextAfter(p) { ... }
func (s ValueSet) NextAfter(v int) int {
	if s.bits == nil || v < 0 {
		return -1
	}
	i, ok := s.bits.NextSet(uint(v) + 1)
	if !ok {
		return -1
	}
	return int(i)
}

// Each calls fn once for every value in the set, in ascending order.
func (s ValueSet) Each(fn func(v int)) {
	for p := s.First(); p != -1; p = s.NextAfter(p) {
		fn(p)
	}
}

// Equal reports whether s and other contain exactly the same values.
func (s ValueSet) Equal(other ValueSet) bool {
	a, b := s.bits, other.bits
	switch {
	case a == nil && b == nil:
		return true
	case a == nil:
		return b.None()
	case b == nil:
		return a.None()
	default:
		return a.Equal(b)
	}
}

// UnionWith sets s to s | other.
func (s *ValueSet) UnionWith(other ValueSet) {
	if other.bits == nil {
		return
	}
	s.lazy().InPlaceUnion(other.bits)
}

// IntersectWith sets s to s & other.
func (s *ValueSet) IntersectWith(other ValueSet) {
	if s.bits == nil {
		return
	}
	if other.bits == nil {
		s.bits.ClearAll()
		return
	}
	s.bits.InPlaceIntersection(other.bits)
}

// XorWith sets s to s ^ other.
func (s *ValueSet) XorWith(other ValueSet) {
	if other.bits == nil {
		return
	}
	s.lazy().InPlaceSymmetricDifference(other.bits)
}

// SubtractWith sets s to s - other.
func (s *ValueSet) SubtractWith(other ValueSet) {
	if s.bits == nil || other.bits == nil {
		return
	}
	s.bits.InPlaceDifference(other.bits)
}

// Union returns a new set containing a | b.
func Union(a, b ValueSet) ValueSet {
	r := a.Clone()
	r.UnionWith(b)
	return r
}

// Intersect returns a new set containing a & b.
func Intersect(a, b ValueSet) ValueSet {
	r := a.Clone()
	r.IntersectWith(b)
	return r
}

// Xor returns a new set containing a ^ b.
func Xor(a, b ValueSet) ValueSet {
	r := a.Clone()
	r.XorWith(b)
	return r
}

// Subtract returns a new set containing a - b.
func Subtract(a, b ValueSet) ValueSet {
	r := a.Clone()
	r.SubtractWith(b)
	return r
}

// Hash returns a hash of the set's contents, stable under Equal: two equal
// sets always hash the same. Used by the DFA builder's state registry to
// avoid a linear scan over every previously discovered state.
func (s ValueSet) Hash() uint64 {
	if s.bits == nil {
		return murmur3.Sum64(nil)
	}
	buf := make([]byte, 0, 4*int(s.bits.Count()))
	var tmp [4]byte
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		binary.LittleEndian.PutUint32(tmp[:], uint32(i))
		buf = append(buf, tmp[:]...)
	}
	return murmur3.Sum64(buf)
}

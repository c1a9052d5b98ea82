// Package bits provides the dense packed-integer set (C3 in the design)
// used by package build for nullable-nonterminal and GOTO-follow-set
// computations. It is a thin domain wrapper around
// github.com/bits-and-blooms/bitset, grounded on onflow-cadence's use of the
// same library for dense id-keyed sets: a plain map[int]struct{} or []bool
// would work, but the fixpoint passes in package build union thousands of
// these sets against each other, and a real bitset's word-at-a-time OR is
// both faster and the idiomatic ecosystem choice for this job.
package bits

import "github.com/bits-and-blooms/bitset"

// SymbolSet is a dense set of small non-negative integer ids — terminal ids,
// nonterminal ids, or production ids, depending on what the caller is
// tracking. It never needs to know which.
type SymbolSet struct {
	bs *bitset.BitSet
}

// NewSymbolSet returns an empty SymbolSet optionally pre-sized to hold ids
// up to capacity without reallocating.
func NewSymbolSet(capacity uint) SymbolSet {
	return SymbolSet{bs: bitset.New(capacity)}
}

// Add sets id's bit.
func (s SymbolSet) Add(id uint) {
	s.bs.Set(id)
}

// Remove clears id's bit.
func (s SymbolSet) Remove(id uint) {
	s.bs.Clear(id)
}

// Has reports whether id's bit is set.
func (s SymbolSet) Has(id uint) bool {
	return s.bs.Test(id)
}

// Len returns the number of set bits.
func (s SymbolSet) Len() int {
	return int(s.bs.Count())
}

// Union merges other's bits into s in place and reports whether this
// changed s. Returning the bool lets the graph-fixed-point passes in
// package build detect "did anything change this sweep?" in O(words)
// instead of comparing set contents before and after — the design's note on
// comparing "set changed?" efficiently for cyclic GOTO dependencies.
func (s SymbolSet) Union(other SymbolSet) (changed bool) {
	before := s.bs.Count()
	s.bs.InPlaceUnion(other.bs)
	return s.bs.Count() != before
}

// Clone returns an independent copy of s.
func (s SymbolSet) Clone() SymbolSet {
	return SymbolSet{bs: s.bs.Clone()}
}

// Elements returns every set id in ascending order.
func (s SymbolSet) Elements() []uint {
	elems := make([]uint, 0, s.Len())
	for i, ok := s.bs.NextSet(0); ok; i, ok = s.bs.NextSet(i + 1) {
		elems = append(elems, i)
	}
	return elems
}

// Equal reports whether s and o contain exactly the same ids.
func (s SymbolSet) Equal(o SymbolSet) bool {
	return s.bs.Equal(o.bs)
}

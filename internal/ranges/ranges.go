// Package ranges implements immutable sets of half-open integer ranges over
// a one-dimensional address space.
package ranges

import (
	"fmt"
	"strings"
)

// Range is the half-open interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Empty reports whether r contains no addresses.
func (r Range) Empty() bool { return r.Start >= r.End }

// Intersects reports whether r and q share at least one address.
func (r Range) Intersects(q Range) bool {
	return r.Start < q.End && q.Start < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Set is an immutable set of ranges. The zero value is the empty set.
type Set struct {
	list []Range
}

// New returns a set holding rs. It panics if any range has Start > End.
func New(rs ...Range) Set {
	if len(rs) == 0 {
		return Set{}
	}
	list := make([]Range, len(rs))
	for i, r := range rs {
		if r.Start > r.End {
			panic(fmt.Sprintf("ranges: invalid range %v", r))
		}
		list[i] = r
	}
	return Set{list: list}
}

// Point returns the set holding the single address k.
func Point(k int) Set {
	return New(Range{Start: k, End: k + 1})
}

// AnyIntersection reports whether q shares an address with any range in s.
// Empty ranges, stored or queried, never intersect.
func (s Set) AnyIntersection(q Range) bool {
	for _, r := range s.list {
		if r.Intersects(q) {
			return true
		}
	}
	return false
}

// Len returns the number of stored ranges.
func (s Set) Len() int { return len(s.list) }

// Ranges returns a copy of the stored ranges.
func (s Set) Ranges() []Range {
	return append([]Range(nil), s.list...)
}

// Equal reports whether s and o hold the same ranges in the same order.
func (s Set) Equal(o Set) bool {
	if len(s.list) != len(o.list) {
		return false
	}
	for i := range s.list {
		if s.list[i] != o.list[i] {
			return false
		}
	}
	return true
}

func (s Set) String() string {
	parts := make([]string, len(s.list))
	for i, r := range s.list {
		parts[i] = r.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

package combat

import "sort"

// SideSet is an immutable set of faction indices.
type SideSet struct {
	m map[int]struct{}
}

// NewSideSet returns a set holding the given indices.
func NewSideSet(sides ...int) SideSet {
	if len(sides) == 0 {
		return SideSet{}
	}
	m := make(map[int]struct{}, len(sides))
	for _, s := range sides {
		m[s] = struct{}{}
	}
	return SideSet{m: m}
}

// Has reports whether side is in the set.
func (s SideSet) Has(side int) bool {
	_, ok := s.m[side]
	return ok
}

// Len returns the number of sides in the set.
func (s SideSet) Len() int { return len(s.m) }

// Slice returns the members in ascending order.
func (s SideSet) Slice() []int {
	out := make([]int, 0, len(s.m))
	for side := range s.m {
		out = append(out, side)
	}
	sort.Ints(out)
	return out
}

package combat

import "fmt"

// AllianceMatrix records one-directional targeting exclusions between factions:
// m[i][j] means members of faction i never target members of faction j.
// The relation is not symmetric and m[i][i] is always false.
type AllianceMatrix [][]bool

// NewAllianceMatrix returns an n×n matrix with no exclusions.
func NewAllianceMatrix(n int) AllianceMatrix {
	m := make(AllianceMatrix, n)
	for i := range m {
		m[i] = make([]bool, n)
	}
	return m
}

// Validate checks that m is n×n with a false diagonal.
func (m AllianceMatrix) Validate(n int) error {
	if len(m) != n {
		return fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidAlliance, n, len(m))
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidAlliance, i, len(row), n)
		}
		if row[i] {
			return fmt.Errorf("%w: faction %d cannot ignore itself", ErrInvalidAlliance, i)
		}
	}
	return nil
}

// Ignored returns the factions row i ignores, ascending.
func (m AllianceMatrix) Ignored(i int) []int {
	var sides []int
	for j, ignore := range m[i] {
		if ignore && j != i {
			sides = append(sides, j)
		}
	}
	return sides
}

// ApplyAllianceMatrix replaces every combatant's ignored set with its faction's row of m.
// The update is all-or-nothing: m is validated before any combatant is touched.
//
// Precondition: sides[i].Index == i.
func ApplyAllianceMatrix(sides []*Roster, m AllianceMatrix) error {
	if err := m.Validate(len(sides)); err != nil {
		return err
	}
	for i, r := range sides {
		ignored := m.Ignored(i)
		for _, c := range r.Members {
			c.setIgnored(ignored)
		}
	}
	return nil
}

// AllianceMatrixFrom reads the current exclusions back out of the rosters.
// Each faction's row is taken from its first member; empty factions yield a false row.
func AllianceMatrixFrom(sides []*Roster) AllianceMatrix {
	m := NewAllianceMatrix(len(sides))
	for i, r := range sides {
		if len(r.Members) == 0 {
			continue
		}
		for _, j := range r.Members[0].Ignored().Slice() {
			if j >= 0 && j < len(sides) && j != i {
				m[i][j] = true
			}
		}
	}
	return m
}

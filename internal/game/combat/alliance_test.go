package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
)

func TestAllianceMatrix_Validate(t *testing.T) {
	cases := []struct {
		name string
		m    combat.AllianceMatrix
		n    int
		ok   bool
	}{
		{"empty 3x3", combat.NewAllianceMatrix(3), 3, true},
		{"too few rows", combat.NewAllianceMatrix(2), 3, false},
		{"ragged row", combat.AllianceMatrix{{false, true}, {false}}, 2, false},
		{"self ignore", combat.AllianceMatrix{{true, false}, {false, false}}, 2, false},
		{"asymmetric", combat.AllianceMatrix{{false, true}, {false, false}}, 2, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.m.Validate(tc.n)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, combat.ErrInvalidAlliance)
			}
		})
	}
}

func TestApplyAllianceMatrix_FullReplace(t *testing.T) {
	sides := threeSides(t)
	first := combat.NewAllianceMatrix(3)
	first[0][1] = true
	first[2][0] = true
	require.NoError(t, combat.ApplyAllianceMatrix(sides, first))
	assert.True(t, sides[0].Members[1].Ignores(1))
	assert.True(t, sides[2].Members[0].Ignores(0))
	assert.False(t, sides[1].Members[0].Ignores(0), "exclusions are one-directional")

	second := combat.NewAllianceMatrix(3)
	second[1][2] = true
	require.NoError(t, combat.ApplyAllianceMatrix(sides, second))
	assert.False(t, sides[0].Members[0].Ignores(1), "previous rows are cleared")
	assert.False(t, sides[2].Members[1].Ignores(0))
	assert.True(t, sides[1].Members[1].Ignores(2))
	assert.Equal(t, second, combat.AllianceMatrixFrom(sides))
}

func TestApplyAllianceMatrix_InvalidLeavesStateUntouched(t *testing.T) {
	sides := threeSides(t)
	m := combat.NewAllianceMatrix(3)
	m[0][2] = true
	require.NoError(t, combat.ApplyAllianceMatrix(sides, m))

	bad := combat.NewAllianceMatrix(3)
	bad[1][0] = true
	bad[2][2] = true
	err := combat.ApplyAllianceMatrix(sides, bad)
	require.ErrorIs(t, err, combat.ErrInvalidAlliance)
	assert.Equal(t, m, combat.AllianceMatrixFrom(sides))
	assert.False(t, sides[1].Members[0].Ignores(0))

	err = combat.ApplyAllianceMatrix(sides, combat.NewAllianceMatrix(2))
	require.ErrorIs(t, err, combat.ErrInvalidAlliance)
	assert.Equal(t, m, combat.AllianceMatrixFrom(sides))
}

func TestAllianceMatrixFrom_EmptyFactionRowIsFalse(t *testing.T) {
	atk := mustAttack(t, "Hit", 0, 1, "d6", 0)
	sides := []*combat.Roster{
		mustRoster(t, "A", 0, 1, 10, 10, atk),
		mustRoster(t, "B", 1, 0, 10, 10, atk),
	}
	m := combat.AllianceMatrix{{false, true}, {true, false}}
	require.NoError(t, combat.ApplyAllianceMatrix(sides, m))
	assert.Equal(t, combat.AllianceMatrix{{false, true}, {false, false}}, combat.AllianceMatrixFrom(sides))
}

// Property: any valid matrix applied to non-empty factions reads back unchanged,
// and no combatant ever ignores its own side.
func TestApplyAllianceMatrix_Property_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 6).Draw(rt, "factions")
		atk := mustAttack(rt, "Hit", 0, 1, "d6", 0)
		sides := make([]*combat.Roster, n)
		for i := range sides {
			sides[i] = mustRoster(rt, string(rune('A'+i)), i, rapid.IntRange(1, 3).Draw(rt, "count"), 10, 10, atk)
		}
		m := combat.NewAllianceMatrix(n)
		for i := range m {
			for j := range m[i] {
				if i != j {
					m[i][j] = rapid.Bool().Draw(rt, "ignore")
				}
			}
		}
		require.NoError(rt, combat.ApplyAllianceMatrix(sides, m))
		assert.Equal(rt, m, combat.AllianceMatrixFrom(sides))
		for i, r := range sides {
			for _, c := range r.Members {
				assert.ElementsMatch(rt, m.Ignored(i), c.Ignored().Slice())
			}
		}
		requireInvariants(rt, sides)
	})
}

package combat_test

import (
	"fmt"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
)

// fixedSrc returns val for every draw, clamped into [0, n).
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

// seqSrc replays raw Intn results in order. It panics when a value is out of
// range or the script runs out, so a test fails loudly on an unexpected draw.
type seqSrc struct {
	vals []int
	i    int
}

func newSeq(vals ...int) *seqSrc { return &seqSrc{vals: vals} }

func (s *seqSrc) Intn(n int) int {
	if s.i >= len(s.vals) {
		panic(fmt.Sprintf("seqSrc exhausted after %d draws (Intn(%d))", s.i, n))
	}
	v := s.vals[s.i]
	s.i++
	if v < 0 || v >= n {
		panic(fmt.Sprintf("seqSrc value %d out of range for Intn(%d)", v, n))
	}
	return v
}

func (s *seqSrc) used() int { return s.i }

func mustAttack(t require.TestingT, name string, bonus, count int, die string, mod int) combat.Attack {
	a, err := combat.NewAttack(name, bonus, count, die, mod, "")
	require.NoError(t, err)
	return a
}

func mustRoster(t require.TestingT, name string, index, count, hp, ac int, attacks ...combat.Attack) *combat.Roster {
	r, err := combat.CreateRoster(name, index, count, hp, ac, attacks)
	require.NoError(t, err)
	return r
}

func requireInvariants(t require.TestingT, sides []*combat.Roster) {
	for _, r := range sides {
		for _, c := range r.Members {
			require.Equal(t, c.HP() > 0, c.Alive(), "%s: alive must equal hp > 0", c.Name())
			require.GreaterOrEqual(t, c.HP(), 0, "%s: hp below zero", c.Name())
			require.LessOrEqual(t, c.HP(), c.MaxHP(), "%s: hp above max", c.Name())
			require.False(t, c.Ignores(c.Side()), "%s ignores its own side", c.Name())
		}
	}
}

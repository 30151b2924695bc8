package dice_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlesim/internal/game/dice"
)

// fixedSrc returns val for every draw, clamped into [0, n).
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, 9, r.Sum())
	assert.Equal(t, 12, r.Total(), "Total() must equal sum(Dice)+Modifier")
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Dice: []int{4}}
	assert.Panics(t, func() { _ = r.String() })
}

func TestRollResult_Total_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ds := rapid.SliceOf(rapid.IntRange(1, 20)).Draw(rt, "dice")
		modifier := rapid.IntRange(-1000, 1000).Draw(rt, "modifier")
		r := dice.RollResult{Expression: "Nd6+M", Dice: ds, Modifier: modifier}
		expected := modifier
		for _, d := range ds {
			expected += d
		}
		assert.Equal(rt, expected, r.Total())
		assert.Contains(rt, r.String(), fmt.Sprintf("= %d", expected))
	})
}

func TestNew(t *testing.T) {
	e, err := dice.New(2, 6, 3)
	require.NoError(t, err)
	assert.Equal(t, "2d6+3", e.String())

	e, err = dice.New(1, 8, -2)
	require.NoError(t, err)
	assert.Equal(t, "1d8-2", e.String())

	e, err = dice.New(1, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, "1d20", e.String())

	_, err = dice.New(0, 6, 0)
	assert.True(t, errors.Is(err, dice.ErrInvalidDice))
	_, err = dice.New(1, 0, 0)
	assert.True(t, errors.Is(err, dice.ErrInvalidDice))
}

func TestParseDie(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"d4", 4}, {"d6", 6}, {"d8", 8}, {"d10", 10}, {"d12", 12}, {"D20", 20}, {" d1 ", 1},
	}
	for _, tc := range tests {
		got, err := dice.ParseDie(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseDie_Invalid(t *testing.T) {
	for _, in := range []string{"", "6", "d", "dx", "d0", "d-4", "2d6", "e6"} {
		_, err := dice.ParseDie(in)
		assert.True(t, errors.Is(err, dice.ErrInvalidDice), "input %q should be rejected", in)
	}
}

func TestParseDie_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sides := rapid.IntRange(1, 1000).Draw(rt, "sides")
		got, err := dice.ParseDie(dice.DieLabel(sides))
		require.NoError(rt, err)
		assert.Equal(rt, sides, got)
	})
}

func TestRoll_DiceInRange_Property(t *testing.T) {
	src := dice.NewSeededSource(42)
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		sides := rapid.IntRange(1, 100).Draw(rt, "sides")
		mod := rapid.IntRange(-20, 20).Draw(rt, "mod")
		expr, err := dice.New(count, sides, mod)
		require.NoError(rt, err)
		r := expr.Roll(src)
		require.Len(rt, r.Dice, count)
		for _, d := range r.Dice {
			assert.GreaterOrEqual(rt, d, 1)
			assert.LessOrEqual(rt, d, sides)
		}
		assert.Equal(rt, mod, r.Modifier)
	})
}

func TestRoll_FixedSource(t *testing.T) {
	r := dice.D20.Roll(fixedSrc{val: 19})
	assert.Equal(t, []int{20}, r.Dice)
	assert.Equal(t, "1d20", r.Expression)
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(7)
	b := dice.NewSeededSource(7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(20), b.Intn(20))
	}
}

func TestSeededSource_ZeroSeedUsable(t *testing.T) {
	a := dice.NewSeededSource(0)
	b := dice.NewSeededSource(1)
	assert.Equal(t, a.Intn(1000), b.Intn(1000))
}

func TestSeededSource_Intn_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewSeededSource(3).Intn(0) })
}

func TestRoller_LogsRolls(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewRoller(fixedSrc{val: 2}, zap.New(core))

	expr, err := dice.New(2, 6, 1)
	require.NoError(t, err)
	res := r.Roll(expr)
	assert.Equal(t, 7, res.Total())

	entries := logs.FilterMessage("dice roll").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "2d6+1", fields["expression"])
	assert.EqualValues(t, 7, fields["total"])
}

func TestRoller_IntnPassesThrough(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewRoller(fixedSrc{val: 3}, zap.New(core))
	assert.Equal(t, 3, r.Intn(10))
	assert.Equal(t, 0, logs.Len())
	assert.True(t, strings.HasPrefix(dice.DieLabel(6), "d"))
}

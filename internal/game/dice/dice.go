// Package dice provides the randomness abstraction and roll-result types
// used by the battle engine.
package dice

import "fmt"

// Expression is a fixed dice expression: Count dice of Sides faces plus Modifier.
//
// Invariant: Count >= 1 and Sides >= 1 for any Expression produced by New.
type Expression struct {
	Count    int
	Sides    int
	Modifier int
}

// D20 is the to-hit die.
var D20 = Expression{Count: 1, Sides: 20}

// New builds an Expression, rejecting non-positive counts or sides.
//
// Postcondition: Returns a valid Expression or an error wrapping ErrInvalidDice.
func New(count, sides, modifier int) (Expression, error) {
	if count < 1 {
		return Expression{}, fmt.Errorf("%w: die count must be >= 1, got %d", ErrInvalidDice, count)
	}
	if sides < 1 {
		return Expression{}, fmt.Errorf("%w: die sides must be >= 1, got %d", ErrInvalidDice, sides)
	}
	return Expression{Count: count, Sides: sides, Modifier: modifier}, nil
}

// String renders the expression in "NdS+M" form, omitting a zero modifier.
func (e Expression) String() string {
	if e.Modifier == 0 {
		return fmt.Sprintf("%dd%d", e.Count, e.Sides)
	}
	return fmt.Sprintf("%dd%d%+d", e.Count, e.Sides, e.Modifier)
}

// Roll draws Count dice from src, each in [1, Sides].
//
// Postcondition: len(result.Dice) == e.Count.
func (e Expression) Roll(src Source) RollResult {
	rolled := make([]int, e.Count)
	for i := range rolled {
		rolled[i] = src.Intn(e.Sides) + 1
	}
	return RollResult{Expression: e.String(), Dice: rolled, Modifier: e.Modifier}
}

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // e.g. "2d6+3"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Sum returns the sum of the die results without the modifier.
func (r RollResult) Sum() int {
	sum := 0
	for _, d := range r.Dice {
		sum += d
	}
	return sum
}

// Total returns the sum of all die results plus the modifier.
//
// Postcondition: return value == sum(r.Dice) + r.Modifier.
func (r RollResult) Total() int {
	return r.Sum() + r.Modifier
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

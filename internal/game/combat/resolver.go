package combat

import (
	"fmt"

	"github.com/cory-johannsen/battlesim/internal/game/dice"
)

// Roller is the randomness the engine draws from: raw integers for target
// selection and whole dice expressions for to-hit and damage rolls.
// dice.Roller satisfies it and logs every roll.
type Roller interface {
	dice.Source
	Roll(expr dice.Expression) dice.RollResult
}

type plainRoller struct{ dice.Source }

func (p plainRoller) Roll(expr dice.Expression) dice.RollResult { return expr.Roll(p.Source) }

// rollerFor uses src directly when it already rolls expressions.
func rollerFor(src dice.Source) Roller {
	if r, ok := src.(Roller); ok {
		return r
	}
	return plainRoller{src}
}

// AttackResult holds the outcome of a single attack against a single target.
type AttackResult struct {
	// Roll is the natural d20 result.
	Roll int `json:"roll"`
	// Total is Roll plus the attack bonus.
	Total    int  `json:"total"`
	Hit      bool `json:"hit"`
	Critical bool `json:"critical"`
	// Damage is the final damage dealt: zero on a miss, never negative.
	Damage int `json:"damage"`
	// DamageRoll is nil on a miss.
	DamageRoll *dice.RollResult `json:"damage_roll,omitempty"`
	// Description is e.g. "7 damage (fire)"; empty on a miss.
	Description string `json:"description,omitempty"`
}

// ResolveAttack rolls one attack against a target armor class.
// A natural 20 is a critical and always hits; there is no automatic miss.
// Damage is rolled only on a hit, doubled on a critical, and floored at zero.
//
// Precondition: a.Validate() == nil; src must be non-nil.
// Postcondition: Damage >= 0; Damage == 0 when !Hit. Neither a nor the target is mutated.
func ResolveAttack(a Attack, targetAC int, src dice.Source) AttackResult {
	r := rollerFor(src)
	natural := r.Roll(dice.D20).Dice[0]
	res := AttackResult{
		Roll:     natural,
		Total:    natural + a.AttackBonus,
		Critical: natural == dice.D20.Sides,
	}
	res.Hit = res.Total >= targetAC || res.Critical
	if !res.Hit {
		return res
	}

	roll := r.Roll(a.Damage())
	dmg := roll.Total()
	if res.Critical {
		dmg *= 2
	}
	if dmg < 0 {
		dmg = 0
	}
	res.Damage = dmg
	res.DamageRoll = &roll
	res.Description = describeDamage(dmg, a.DamageType)
	return res
}

func describeDamage(dmg int, damageType string) string {
	if damageType == "" {
		return fmt.Sprintf("%d damage", dmg)
	}
	return fmt.Sprintf("%d damage (%s)", dmg, damageType)
}
